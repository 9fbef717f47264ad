package tkv //nolint:testpackage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/tarantool/go-kvclient/driver"
	"github.com/tarantool/go-kvclient/keyrange"
	"github.com/tarantool/go-kvclient/operation"
)

func TestPathOf(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		r        keyrange.KeyRange
		expected string
		ok       bool
	}{
		{"key", keyrange.Key([]byte("/a/b")), "/a/b", true},
		{"all", keyrange.All(), "/", true},
		{"slash prefix", keyrange.Prefix([]byte("/a/")), "/a/", true},
		{"plain prefix", keyrange.Prefix([]byte("/a")), "", false},
		{"key with slash", keyrange.Key([]byte("/a/")), "", false},
		{"empty key", keyrange.Key(nil), "", false},
		{"range", keyrange.Range([]byte("/a"), []byte("/c")), "", false},
		{"from", keyrange.From([]byte("/a")), "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			path, ok := pathOf(tt.r)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, path)
		})
	}
}

func encodeOperation(t *testing.T, op operation.Operation) []any {
	t.Helper()

	converted, err := newTKVOperation(op)
	require.NoError(t, err)

	data, err := msgpack.Marshal(converted)
	require.NoError(t, err)

	var decoded []any
	require.NoError(t, msgpack.Unmarshal(data, &decoded))

	return decoded
}

func TestTKVOperation_Encode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		op       operation.Operation
		expected []any
	}{
		{"put", operation.Put([]byte("/a"), []byte("1")), []any{"put", "/a", "1"}},
		{"get key", operation.GetKey([]byte("/a")), []any{"get", "/a"}},
		{"get prefix", operation.GetPrefix([]byte("/dir/")), []any{"get", "/dir/"}},
		{"get all", operation.GetAll(), []any{"get", "/"}},
		{"delete", operation.DeleteKey([]byte("/a")), []any{"delete", "/a"}},
		{"delete prefix", operation.DeletePrefix([]byte("/dir/")), []any{"delete", "/dir/"}},
		{"get with local options", operation.GetAll(operation.WithLimit(1), operation.WithKeysOnly()), []any{"get", "/"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.expected, encodeOperation(t, tt.op))
		})
	}
}

func TestNewTKVOperation_Unsupported(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		op     operation.Operation
		opType string
	}{
		{"put lease", operation.Put([]byte("/a"), nil, operation.WithLease(1)), "Put"},
		{"put prev kv", operation.Put([]byte("/a"), nil, operation.WithPrevKV()), "Put"},
		{"put ignore value", operation.Put([]byte("/a"), nil, operation.WithIgnoreValue()), "Put"},
		{"put prefix path", operation.Put([]byte("/a/"), nil), "Put"},
		{"get revision", operation.GetKey([]byte("/a"), operation.WithRevision(3)), "Get"},
		{"get create revision", operation.GetAll(operation.WithCreateRevisionBetween(1, 0)), "Get"},
		{"get sort by version", operation.GetAll(operation.WithSort(operation.SortByVersion, operation.SortAscend)), "Get"},
		{"get range", operation.GetRange([]byte("/a"), []byte("/c")), "Get"},
		{"delete range", operation.DeleteRange([]byte("/a"), []byte("/c")), "Delete"},
		{"nested txn", operation.Txn(nil, nil, nil), "Txn"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := newTKVOperation(tt.op)
			require.True(t, driver.IsCode(err, driver.CodeUnsupported), "got %v", err)

			var storeErr driver.StoreError
			require.ErrorAs(t, err, &storeErr)
			assert.Equal(t, tt.opType, storeErr.Op)
		})
	}
}
