// Package kv provides key-value data structures and interfaces for storage operations.
// It defines the versioned KeyValue record returned by every read and by
// mutations that ask for the previous value.
package kv

import (
	"fmt"
	"unicode/utf8"
)

// LeaseID is an opaque lease identifier in the store's lease domain.
type LeaseID int64

// NoLease means that a key is not attached to any lease.
const NoLease LeaseID = 0

// KeyValue represents a key-value pair with revision metadata.
// KeyValue records are produced by storage drivers from the store's wire
// representation and must be treated as read-only.
type KeyValue struct {
	// Key is the raw key.
	Key []byte
	// Value is the raw value.
	Value []byte

	// CreateRevision is the revision of the last creation of this key.
	CreateRevision int64
	// ModRevision is the revision number of the last modification to this key.
	ModRevision int64
	// Version is the number of modifications since the key was created.
	Version int64
	// Lease is the lease attached to the key, NoLease if none.
	Lease LeaseID
}

// KeyString returns the key as text. It panics if the key is not valid UTF-8,
// use Key for binary keys.
func (k KeyValue) KeyString() string {
	return mustString("key", k.Key)
}

// ValueString returns the value as text. It panics if the value is not
// valid UTF-8, use Value for binary values.
func (k KeyValue) ValueString() string {
	return mustString("value", k.Value)
}

// HasLease reports whether the key is attached to a lease.
func (k KeyValue) HasLease() bool {
	return k.Lease != NoLease
}

func (k KeyValue) String() string {
	return fmt.Sprintf("%q=%q (create=%d, mod=%d, version=%d, lease=%d)",
		k.Key, k.Value, k.CreateRevision, k.ModRevision, k.Version, k.Lease)
}

func mustString(field string, data []byte) string {
	if !utf8.Valid(data) {
		panic(fmt.Sprintf("kv: %s is not valid UTF-8: %q", field, data))
	}

	return string(data)
}
