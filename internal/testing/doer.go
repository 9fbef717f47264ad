package testing

import (
	"bytes"
	"errors"
	"sync"

	"github.com/tarantool/go-tarantool/v2"
)

var errNoReplies = errors.New("no replies left")

// reply completes the future of one request.
type reply func(t T, fut *tarantool.Future)

func replyWith(resp *MockResponse) reply {
	return func(t T, fut *tarantool.Future) {
		if err := fut.SetResponse(resp.header, bytes.NewBuffer(resp.data)); err != nil {
			t.Fatalf("failed to set response: %s", err)
		}
	}
}

func failWith(err error) reply {
	return func(_ T, fut *tarantool.Future) {
		fut.SetError(err)
	}
}

// MockDoer is a tarantool.Doer that answers requests from a queue
// prepared in advance, one reply per request.
type MockDoer struct {
	mu      sync.Mutex
	t       T
	replies []reply

	// Requests holds the received requests in order.
	Requests []tarantool.Request
}

var _ tarantool.Doer = &MockDoer{} //nolint:exhaustruct

// NewMockDoer creates a MockDoer answering with the given replies in order.
// A *MockResponse completes the request successfully, an error fails it.
func NewMockDoer(t T, replies ...any) *MockDoer {
	t.Helper()

	queue := make([]reply, 0, len(replies))

	for _, r := range replies {
		switch typed := r.(type) {
		case *MockResponse:
			queue = append(queue, replyWith(typed))
		case error:
			queue = append(queue, failWith(typed))
		default:
			t.Fatalf("unsupported reply type: %T", r)
		}
	}

	return &MockDoer{
		mu:       sync.Mutex{},
		t:        t,
		replies:  queue,
		Requests: []tarantool.Request{},
	}
}

// Do records req and completes its future with the next queued reply.
func (d *MockDoer) Do(req tarantool.Request) *tarantool.Future {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.Requests = append(d.Requests, req)
	fut := tarantool.NewFuture(req)

	if len(d.replies) == 0 {
		d.t.Fatalf("unexpected request %d: no replies left", len(d.Requests))
		fut.SetError(errNoReplies)

		return fut
	}

	next := d.replies[0]
	d.replies = d.replies[1:]
	next(d.t, fut)

	return fut
}

// Remaining returns the number of replies not consumed yet.
func (d *MockDoer) Remaining() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	return len(d.replies)
}
