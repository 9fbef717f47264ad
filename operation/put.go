package operation

import (
	"bytes"

	"github.com/tarantool/go-kvclient/internal/options"
	"github.com/tarantool/go-kvclient/kv"
)

type putOptions struct {
	lease       kv.LeaseID
	prevKV      bool
	ignoreValue bool
	ignoreLease bool
}

// PutOption configures a PutRequest.
type PutOption = options.OptionCallback[putOptions]

// WithLease attaches the key to the lease.
func WithLease(lease kv.LeaseID) PutOption {
	return func(opts *putOptions) {
		opts.lease = lease
	}
}

// WithPrevKV asks the store to return the key-value pair before the put.
func WithPrevKV() PutOption {
	return func(opts *putOptions) {
		opts.prevKV = true
	}
}

// WithIgnoreValue updates the key using its current value.
// The put fails if the key does not exist.
func WithIgnoreValue() PutOption {
	return func(opts *putOptions) {
		opts.ignoreValue = true
	}
}

// WithIgnoreLease updates the key using its current lease.
// The put fails if the key does not exist.
func WithIgnoreLease() PutOption {
	return func(opts *putOptions) {
		opts.ignoreLease = true
	}
}

// PutRequest writes one key.
type PutRequest struct {
	key   []byte
	value []byte
	opts  putOptions
}

// Put creates a request that upserts key with value.
func Put(key, value []byte, opts ...PutOption) PutRequest {
	return PutRequest{
		key:   bytes.Clone(key),
		value: bytes.Clone(value),
		opts:  options.ApplyOptions[putOptions](nil, opts),
	}
}

// Type implements Operation.
func (r PutRequest) Type() Type { return TypePut }

// Key returns the key to write.
func (r PutRequest) Key() []byte { return bytes.Clone(r.key) }

// Value returns the value to write.
func (r PutRequest) Value() []byte { return bytes.Clone(r.value) }

// Lease returns the lease to attach, kv.NoLease if none.
func (r PutRequest) Lease() kv.LeaseID { return r.opts.lease }

// PrevKV reports whether the previous key-value pair is requested.
func (r PutRequest) PrevKV() bool { return r.opts.prevKV }

// IgnoreValue reports whether the current value must be kept.
func (r PutRequest) IgnoreValue() bool { return r.opts.ignoreValue }

// IgnoreLease reports whether the current lease must be kept.
func (r PutRequest) IgnoreLease() bool { return r.opts.ignoreLease }
