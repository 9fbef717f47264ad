package operation

import (
	"github.com/tarantool/go-kvclient/internal/options"
	"github.com/tarantool/go-kvclient/keyrange"
)

type deleteOptions struct {
	prevKV bool
}

// DeleteOption configures a DeleteRequest.
type DeleteOption = options.OptionCallback[deleteOptions]

// WithPrevKVs asks the store to return the deleted key-value pairs.
func WithPrevKVs() DeleteOption {
	return func(opts *deleteOptions) {
		opts.prevKV = true
	}
}

// DeleteRequest removes every key of a KeyRange.
type DeleteRequest struct {
	keyRange keyrange.KeyRange
	opts     deleteOptions
}

// Delete creates a request that removes the keys of the range.
func Delete(keyRange keyrange.KeyRange, opts ...DeleteOption) DeleteRequest {
	return DeleteRequest{
		keyRange: keyRange,
		opts:     options.ApplyOptions[deleteOptions](nil, opts),
	}
}

// DeleteKey removes a single key.
func DeleteKey(key []byte, opts ...DeleteOption) DeleteRequest {
	return Delete(keyrange.Key(key), opts...)
}

// DeleteAll removes every key.
func DeleteAll(opts ...DeleteOption) DeleteRequest {
	return Delete(keyrange.All(), opts...)
}

// DeletePrefix removes every key with the given prefix.
func DeletePrefix(prefix []byte, opts ...DeleteOption) DeleteRequest {
	return Delete(keyrange.Prefix(prefix), opts...)
}

// DeleteRange removes every key in [from, end).
func DeleteRange(from, end []byte, opts ...DeleteOption) DeleteRequest {
	return Delete(keyrange.Range(from, end), opts...)
}

// Type implements Operation.
func (r DeleteRequest) Type() Type { return TypeDelete }

// KeyRange returns the keys to delete.
func (r DeleteRequest) KeyRange() keyrange.KeyRange { return r.keyRange }

// PrevKV reports whether the deleted key-value pairs are requested.
func (r DeleteRequest) PrevKV() bool { return r.opts.prevKV }
