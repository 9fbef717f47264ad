package testing

import (
	"github.com/tarantool/go-iproto"
	"github.com/tarantool/go-tarantool/v2"
	"github.com/vmihailenco/msgpack/v5"
)

// MockResponse is a successful IPROTO response to be returned by MockDoer.
type MockResponse struct {
	header tarantool.Header
	data   []byte
}

// NewMockResponse encodes data as the IPROTO_DATA of a response body.
// For a call request data is the list of values returned by the function.
func NewMockResponse(t T, data any) *MockResponse {
	t.Helper()

	body, err := msgpack.Marshal(map[iproto.Key]any{iproto.IPROTO_DATA: data})
	if err != nil {
		t.Fatalf("failed to encode response body: %s", err)
	}

	return &MockResponse{
		header: tarantool.Header{}, //nolint:exhaustruct
		data:   body,
	}
}
