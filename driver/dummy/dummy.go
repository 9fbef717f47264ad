// Package dummy provides a base in-memory implementation
// of the storage driver interface for demonstration and tests.
//
// The driver keeps a multi-version history of every key, so it behaves like
// a revisioned store: every mutating request creates one new revision, reads
// may target past revisions and compaction discards old ones.
package dummy

import (
	"context"
	"slices"
	"sync"

	"github.com/tarantool/go-kvclient/driver"
	"github.com/tarantool/go-kvclient/keyrange"
	"github.com/tarantool/go-kvclient/kv"
	"github.com/tarantool/go-kvclient/operation"
	"github.com/tarantool/go-kvclient/response"
)

const (
	detailCompacted = "mvcc: required revision has been compacted"
	detailFutureRev = "mvcc: required revision is a future revision"
	detailNotFound  = "key not found"

	detailDuplicateKey = "duplicate key given in txn request"
)

// entry is one revision of a key; a tombstone marks a deletion.
type entry struct {
	kv        kv.KeyValue
	tombstone bool
}

// dummyStorage is a thread-safe structure that holds the key history.
type dummyStorage struct {
	history   map[string][]entry
	revision  int64
	compacted int64
	mu        sync.RWMutex
}

// Driver is an in-memory implementation of driver.Driver.
type Driver struct {
	data dummyStorage
}

var _ driver.Driver = &Driver{} //nolint:exhaustruct

// New creates an empty store at revision 1.
func New() *Driver {
	return &Driver{
		data: dummyStorage{
			history:   make(map[string][]entry),
			revision:  1,
			compacted: 0,
			mu:        sync.RWMutex{},
		},
	}
}

// Revision returns the current store revision.
func (d *Driver) Revision() int64 {
	d.data.mu.RLock()
	defer d.data.mu.RUnlock()

	return d.data.revision
}

// Put implements driver.Driver.
func (d *Driver) Put(ctx context.Context, req operation.PutRequest) (response.PutResponse, error) {
	var resp response.PutResponse

	header, err := d.write(ctx, func(state *txnState) error {
		var err error

		resp, err = state.put(req)

		return err
	})
	if err != nil {
		return response.PutResponse{}, err
	}

	resp.Header = header

	return resp, nil
}

// Range implements driver.Driver.
func (d *Driver) Range(ctx context.Context, req operation.RangeRequest) (response.RangeResponse, error) {
	if err := ctx.Err(); err != nil {
		return response.RangeResponse{}, err
	}

	d.data.mu.RLock()
	defer d.data.mu.RUnlock()

	state := d.begin()

	resp, err := state.rangeKeys(req)
	if err != nil {
		return response.RangeResponse{}, err
	}

	resp.Header = d.headerLocked()

	return resp, nil
}

// Delete implements driver.Driver.
func (d *Driver) Delete(ctx context.Context, req operation.DeleteRequest) (response.DeleteResponse, error) {
	var resp response.DeleteResponse

	header, err := d.write(ctx, func(state *txnState) error {
		var err error

		resp, err = state.delete(req)

		return err
	})
	if err != nil {
		return response.DeleteResponse{}, err
	}

	resp.Header = header

	return resp, nil
}

// Txn implements driver.Driver. The whole transaction, nested ones included,
// runs under one lock and one revision; a failing operation discards it.
func (d *Driver) Txn(ctx context.Context, req operation.TxnRequest) (response.TxnResponse, error) {
	if err := req.Validate(); err != nil {
		return response.TxnResponse{}, driver.StoreError{
			Op:     operation.TypeTxn.String(),
			Code:   driver.CodeInvalidArgument,
			Detail: err.Error(),
			Err:    err,
		}
	}

	var resp response.TxnResponse

	header, err := d.write(ctx, func(state *txnState) error {
		var err error

		resp, err = state.txn(req)

		return err
	})
	if err != nil {
		return response.TxnResponse{}, err
	}

	setHeader(&resp, header)

	return resp, nil
}

// Compact implements driver.Driver.
func (d *Driver) Compact(ctx context.Context, req operation.CompactRequest) (response.CompactResponse, error) {
	if err := ctx.Err(); err != nil {
		return response.CompactResponse{}, err
	}

	d.data.mu.Lock()
	defer d.data.mu.Unlock()

	rev := req.Revision()

	switch {
	case rev <= d.data.compacted:
		return response.CompactResponse{}, storeError(operation.TypeCompact, driver.CodeCompacted, detailCompacted)
	case rev > d.data.revision:
		return response.CompactResponse{}, storeError(operation.TypeCompact, driver.CodeFutureRevision, detailFutureRev)
	}

	for key, entries := range d.data.history {
		keep := 0

		for i, e := range entries {
			if e.kv.ModRevision <= rev {
				keep = i
			}
		}

		entries = entries[keep:]
		if entries[0].kv.ModRevision <= rev && entries[0].tombstone {
			entries = entries[1:]
		}

		if len(entries) == 0 {
			delete(d.data.history, key)
		} else {
			d.data.history[key] = entries
		}
	}

	d.data.compacted = rev

	return response.CompactResponse{Header: d.headerLocked()}, nil
}

// write runs fn on a fresh transaction state and commits it on success.
// The returned header describes the store right after the commit.
func (d *Driver) write(ctx context.Context, fn func(state *txnState) error) (response.Header, error) {
	if err := ctx.Err(); err != nil {
		return response.Header{}, err //nolint:exhaustruct
	}

	// We use a mutex to ensure that the execution of
	// operations is atomic and thread-safe.
	d.data.mu.Lock()
	defer d.data.mu.Unlock()

	state := d.begin()
	if err := fn(state); err != nil {
		return response.Header{}, err //nolint:exhaustruct
	}

	d.commit(state)

	return d.headerLocked(), nil
}

func (d *Driver) begin() *txnState {
	return &txnState{
		data:    &d.data,
		rev:     d.data.revision + 1,
		pending: make(map[string]entry),
		puts:    make(map[string]struct{}),
		deletes: nil,
	}
}

func (d *Driver) commit(state *txnState) {
	if len(state.pending) == 0 {
		return
	}

	for key, e := range state.pending {
		d.data.history[key] = append(d.data.history[key], e)
	}

	d.data.revision = state.rev
}

func (d *Driver) headerLocked() response.Header {
	return response.Header{
		ClusterID: 0,
		MemberID:  0,
		Revision:  d.data.revision,
		RaftTerm:  0,
	}
}

// setHeader stamps the header on a transaction response and every nested one.
func setHeader(resp *response.TxnResponse, header response.Header) {
	resp.Header = header

	for i, r := range resp.Responses {
		switch typed := r.(type) {
		case response.PutResponse:
			typed.Header = header
			resp.Responses[i] = typed
		case response.RangeResponse:
			typed.Header = header
			resp.Responses[i] = typed
		case response.DeleteResponse:
			typed.Header = header
			resp.Responses[i] = typed
		case response.TxnResponse:
			setHeader(&typed, header)
			resp.Responses[i] = typed
		}
	}
}

func storeError(op operation.Type, code driver.Code, detail string) error {
	return driver.StoreError{
		Op:     op.String(),
		Code:   code,
		Detail: detail,
		Err:    nil,
	}
}

// latestAt returns the state of the key as of rev.
func (s *dummyStorage) latestAt(key string, rev int64) (kv.KeyValue, bool) {
	entries := s.history[key]

	for i := len(entries) - 1; i >= 0; i-- {
		if entries[i].kv.ModRevision <= rev {
			if entries[i].tombstone {
				return kv.KeyValue{}, false //nolint:exhaustruct
			}

			return entries[i].kv, true
		}
	}

	return kv.KeyValue{}, false //nolint:exhaustruct
}

// keysIn returns the sorted keys of the history that belong to the range.
func (s *dummyStorage) keysIn(r keyrange.KeyRange) []string {
	if r.IsPoint() {
		return []string{string(r.Key())}
	}

	keys := make([]string, 0, len(s.history))

	for key := range s.history {
		if r.Contains([]byte(key)) {
			keys = append(keys, key)
		}
	}

	slices.Sort(keys)

	return keys
}
