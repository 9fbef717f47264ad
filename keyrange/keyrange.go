// Package keyrange provides the addressing algebra for key-value requests.
// A KeyRange describes which keys an operation touches: a single key,
// an explicit half-open interval, a prefix, an open-ended interval or
// the whole keyspace.
package keyrange

import (
	"bytes"
	"fmt"
)

// Kind is the addressing intent of a KeyRange.
type Kind int

const (
	// KindKey addresses exactly one key.
	KindKey Kind = iota
	// KindRange addresses the half-open interval [key, end).
	KindRange
	// KindFrom addresses every key greater than or equal to key.
	KindFrom
	// KindAll addresses every key in the store.
	KindAll
)

func (k Kind) String() string {
	switch k {
	case KindKey:
		return "Key"
	case KindRange:
		return "Range"
	case KindFrom:
		return "From"
	case KindAll:
		return "All"
	default:
		return "Unknown"
	}
}

// sentinel is the reserved wire byte used both for "all keys"
// (key = end = sentinel) and for "no upper bound" (end = sentinel).
const sentinel = 0x00

// KeyRange is an immutable description of a set of keys.
// The zero value addresses the empty key.
type KeyRange struct {
	kind Kind
	key  []byte
	end  []byte
}

// Key creates a KeyRange addressing exactly the given key.
func Key(key []byte) KeyRange {
	return KeyRange{
		kind: KindKey,
		key:  bytes.Clone(key),
		end:  nil,
	}
}

// Range creates a KeyRange addressing [key, end). Both boundaries are taken
// verbatim and interpreted the way the store interprets them: an empty end
// is a single key, a sentinel end is open-ended, and a sentinel pair is
// the whole keyspace.
func Range(key, end []byte) KeyRange {
	return FromWire(key, end)
}

func newRange(key, end []byte) KeyRange {
	return KeyRange{
		kind: KindRange,
		key:  bytes.Clone(key),
		end:  bytes.Clone(end),
	}
}

// From creates a KeyRange addressing every key greater than or equal to key.
func From(key []byte) KeyRange {
	return KeyRange{
		kind: KindFrom,
		key:  bytes.Clone(key),
		end:  nil,
	}
}

// All creates a KeyRange addressing every key.
func All() KeyRange {
	return KeyRange{
		kind: KindAll,
		key:  nil,
		end:  nil,
	}
}

// Prefix creates a KeyRange addressing every key that starts with prefix.
// An empty prefix is no constraint at all and yields All. A prefix made
// only of 0xFF bytes has no finite upper bound and yields From(prefix).
func Prefix(prefix []byte) KeyRange {
	if len(prefix) == 0 {
		return All()
	}

	end, ok := PrefixEnd(prefix)
	if !ok {
		return From(prefix)
	}

	return newRange(prefix, end)
}

// PrefixEnd returns the smallest byte sequence greater than every sequence
// that has prefix as a prefix. It finds the rightmost byte below 0xFF,
// increments it and drops everything after it. The second result is false
// when no such byte exists (empty prefix or all 0xFF bytes).
func PrefixEnd(prefix []byte) ([]byte, bool) {
	for i := len(prefix) - 1; i >= 0; i-- {
		if prefix[i] < 0xff {
			end := make([]byte, i+1)
			copy(end, prefix[:i+1])
			end[i]++

			return end, true
		}
	}

	return nil, false
}

// FromWire translates the wire pair (key, range_end) into a KeyRange.
// It is the inverse of Key/End.
func FromWire(key, end []byte) KeyRange {
	switch {
	case len(end) == 0:
		return Key(key)
	case len(end) == 1 && end[0] == sentinel && len(key) == 1 && key[0] == sentinel:
		return All()
	case len(end) == 1 && end[0] == sentinel:
		return From(key)
	default:
		return newRange(key, end)
	}
}

// Kind returns the addressing intent.
func (r KeyRange) Kind() Kind {
	return r.kind
}

// Key returns the lower boundary in wire form.
func (r KeyRange) Key() []byte {
	if r.kind == KindAll {
		return []byte{sentinel}
	}

	return bytes.Clone(r.key)
}

// End returns the upper boundary in wire form: empty for a single key,
// the sentinel for open-ended and all-keys ranges.
func (r KeyRange) End() []byte {
	switch r.kind {
	case KindKey:
		return []byte{}
	case KindAll, KindFrom:
		return []byte{sentinel}
	default:
		return bytes.Clone(r.end)
	}
}

// IsPoint reports whether the range addresses a single key.
func (r KeyRange) IsPoint() bool {
	return r.kind == KindKey
}

// IsAll reports whether the range addresses the whole keyspace.
func (r KeyRange) IsAll() bool {
	return r.kind == KindAll
}

// IsUnbounded reports whether the range has no upper boundary.
func (r KeyRange) IsUnbounded() bool {
	return r.kind == KindAll || r.kind == KindFrom
}

// Contains reports whether key belongs to the range.
func (r KeyRange) Contains(key []byte) bool {
	switch r.kind {
	case KindKey:
		return bytes.Equal(r.key, key)
	case KindRange:
		return bytes.Compare(key, r.key) >= 0 && bytes.Compare(key, r.end) < 0
	case KindFrom:
		return bytes.Compare(key, r.key) >= 0
	case KindAll:
		return true
	default:
		return false
	}
}

// PrefixOf returns the prefix this range was built from, if the range
// is exactly the set of keys sharing some non-empty prefix.
func (r KeyRange) PrefixOf() ([]byte, bool) {
	switch r.kind {
	case KindRange:
		end, ok := PrefixEnd(r.key)
		if ok && bytes.Equal(end, r.end) {
			return bytes.Clone(r.key), true
		}
	case KindFrom:
		if len(r.key) > 0 && bytes.Count(r.key, []byte{0xff}) == len(r.key) {
			return bytes.Clone(r.key), true
		}
	case KindKey, KindAll:
	}

	return nil, false
}

// Equal reports whether both ranges address the same keys in the same way.
func (r KeyRange) Equal(other KeyRange) bool {
	return bytes.Equal(r.Key(), other.Key()) && bytes.Equal(r.End(), other.End())
}

func (r KeyRange) String() string {
	switch r.kind {
	case KindKey:
		return fmt.Sprintf("%q", r.key)
	case KindRange:
		return fmt.Sprintf("[%q, %q)", r.key, r.end)
	case KindFrom:
		return fmt.Sprintf("[%q, +inf)", r.key)
	case KindAll:
		return "<all>"
	default:
		return "<unknown>"
	}
}
