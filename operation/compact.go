package operation

import (
	"github.com/tarantool/go-kvclient/internal/options"
)

type compactOptions struct {
	physical bool
}

// CompactOption configures a CompactRequest.
type CompactOption = options.OptionCallback[compactOptions]

// WithPhysical makes the compaction wait until the compacted revisions
// are physically removed from the backend.
func WithPhysical() CompactOption {
	return func(opts *compactOptions) {
		opts.physical = true
	}
}

// CompactRequest asks the store to discard the history below a revision.
// Compaction is not an Operation: it cannot be part of a transaction.
type CompactRequest struct {
	revision int64
	opts     compactOptions
}

// Compact creates a request that discards every revision below revision.
func Compact(revision int64, opts ...CompactOption) CompactRequest {
	return CompactRequest{
		revision: revision,
		opts:     options.ApplyOptions[compactOptions](nil, opts),
	}
}

// Type returns TypeCompact.
func (r CompactRequest) Type() Type { return TypeCompact }

// Revision returns the compaction boundary.
func (r CompactRequest) Revision() int64 { return r.revision }

// Physical reports whether the call waits for physical removal.
func (r CompactRequest) Physical() bool { return r.opts.physical }
