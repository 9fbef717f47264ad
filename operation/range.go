package operation

import (
	"github.com/tarantool/go-option"

	"github.com/tarantool/go-kvclient/internal/options"
	"github.com/tarantool/go-kvclient/keyrange"
)

// SortTarget is the field a range result is ordered by.
type SortTarget int

const (
	// SortByKey orders by key.
	SortByKey SortTarget = iota
	// SortByVersion orders by version.
	SortByVersion
	// SortByCreateRevision orders by creation revision.
	SortByCreateRevision
	// SortByModRevision orders by last modification revision.
	SortByModRevision
	// SortByValue orders by value.
	SortByValue
)

func (t SortTarget) String() string {
	switch t {
	case SortByKey:
		return "Key"
	case SortByVersion:
		return "Version"
	case SortByCreateRevision:
		return "CreateRevision"
	case SortByModRevision:
		return "ModRevision"
	case SortByValue:
		return "Value"
	default:
		return "Unknown"
	}
}

// SortOrder is the direction of a range result ordering.
type SortOrder int

const (
	// SortNone keeps the store order, which is ascending by key.
	SortNone SortOrder = iota
	// SortAscend orders ascending.
	SortAscend
	// SortDescend orders descending.
	SortDescend
)

func (o SortOrder) String() string {
	switch o {
	case SortNone:
		return "None"
	case SortAscend:
		return "Ascend"
	case SortDescend:
		return "Descend"
	default:
		return "Unknown"
	}
}

type rangeOptions struct {
	limit          option.Generic[int64]
	revision       option.Generic[int64]
	sortTarget     SortTarget
	sortOrder      SortOrder
	serializable   bool
	keysOnly       bool
	countOnly      bool
	minModRevision int64
	maxModRevision int64
	minCreateRev   int64
	maxCreateRev   int64
}

func defaultRangeOptions() rangeOptions {
	return rangeOptions{
		limit:          option.None[int64](),
		revision:       option.None[int64](),
		sortTarget:     SortByKey,
		sortOrder:      SortNone,
		serializable:   false,
		keysOnly:       false,
		countOnly:      false,
		minModRevision: 0,
		maxModRevision: 0,
		minCreateRev:   0,
		maxCreateRev:   0,
	}
}

// RangeOption configures a RangeRequest.
type RangeOption = options.OptionCallback[rangeOptions]

// WithLimit limits the number of returned key-value pairs.
// A non-positive limit means no limit.
func WithLimit(limit int64) RangeOption {
	return func(opts *rangeOptions) {
		if limit > 0 {
			opts.limit = option.Some(limit)
		} else {
			opts.limit = option.None[int64]()
		}
	}
}

// WithRevision reads the keys as of the given revision.
// A non-positive revision means the latest one.
func WithRevision(revision int64) RangeOption {
	return func(opts *rangeOptions) {
		if revision > 0 {
			opts.revision = option.Some(revision)
		} else {
			opts.revision = option.None[int64]()
		}
	}
}

// WithSort orders the result.
func WithSort(target SortTarget, order SortOrder) RangeOption {
	return func(opts *rangeOptions) {
		opts.sortTarget = target
		opts.sortOrder = order
	}
}

// WithSerializable allows the read to be served by any member,
// possibly returning stale data.
func WithSerializable() RangeOption {
	return func(opts *rangeOptions) {
		opts.serializable = true
	}
}

// WithKeysOnly returns keys without values.
func WithKeysOnly() RangeOption {
	return func(opts *rangeOptions) {
		opts.keysOnly = true
	}
}

// WithCountOnly returns only the number of matching keys.
func WithCountOnly() RangeOption {
	return func(opts *rangeOptions) {
		opts.countOnly = true
	}
}

// WithModRevisionBetween keeps keys whose last modification revision
// is within [minRev, maxRev]. Zero disables the corresponding bound.
func WithModRevisionBetween(minRev, maxRev int64) RangeOption {
	return func(opts *rangeOptions) {
		opts.minModRevision = minRev
		opts.maxModRevision = maxRev
	}
}

// WithCreateRevisionBetween keeps keys whose creation revision
// is within [minRev, maxRev]. Zero disables the corresponding bound.
func WithCreateRevisionBetween(minRev, maxRev int64) RangeOption {
	return func(opts *rangeOptions) {
		opts.minCreateRev = minRev
		opts.maxCreateRev = maxRev
	}
}

// RangeRequest reads the keys of a KeyRange.
type RangeRequest struct {
	keyRange keyrange.KeyRange
	opts     rangeOptions
}

// Get creates a request that reads the keys of the range.
func Get(keyRange keyrange.KeyRange, opts ...RangeOption) RangeRequest {
	return RangeRequest{
		keyRange: keyRange,
		opts:     options.ApplyOptions[rangeOptions](defaultRangeOptions, opts),
	}
}

// GetKey reads a single key.
func GetKey(key []byte, opts ...RangeOption) RangeRequest {
	return Get(keyrange.Key(key), opts...)
}

// GetAll reads every key.
func GetAll(opts ...RangeOption) RangeRequest {
	return Get(keyrange.All(), opts...)
}

// GetPrefix reads every key with the given prefix.
func GetPrefix(prefix []byte, opts ...RangeOption) RangeRequest {
	return Get(keyrange.Prefix(prefix), opts...)
}

// GetRange reads every key in [from, end).
func GetRange(from, end []byte, opts ...RangeOption) RangeRequest {
	return Get(keyrange.Range(from, end), opts...)
}

// Type implements Operation.
func (r RangeRequest) Type() Type { return TypeGet }

// KeyRange returns the keys to read.
func (r RangeRequest) KeyRange() keyrange.KeyRange { return r.keyRange }

// Limit returns the result limit, if any.
func (r RangeRequest) Limit() option.Generic[int64] { return r.opts.limit }

// Revision returns the revision to read at, if any.
func (r RangeRequest) Revision() option.Generic[int64] { return r.opts.revision }

// Sort returns the result ordering.
func (r RangeRequest) Sort() (SortTarget, SortOrder) { return r.opts.sortTarget, r.opts.sortOrder }

// Serializable reports whether a stale read is acceptable.
func (r RangeRequest) Serializable() bool { return r.opts.serializable }

// KeysOnly reports whether values are omitted.
func (r RangeRequest) KeysOnly() bool { return r.opts.keysOnly }

// CountOnly reports whether only the count is returned.
func (r RangeRequest) CountOnly() bool { return r.opts.countOnly }

// ModRevisionBetween returns the modification revision filter bounds.
func (r RangeRequest) ModRevisionBetween() (int64, int64) {
	return r.opts.minModRevision, r.opts.maxModRevision
}

// CreateRevisionBetween returns the creation revision filter bounds.
func (r RangeRequest) CreateRevisionBetween() (int64, int64) {
	return r.opts.minCreateRev, r.opts.maxCreateRev
}
