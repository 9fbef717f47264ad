// Package response provides the results of storage operations.
// Responses are built by storage drivers from the store's decoded messages.
package response

import (
	"github.com/tarantool/go-option"

	"github.com/tarantool/go-kvclient/kv"
	"github.com/tarantool/go-kvclient/operation"
)

// Header carries the store metadata attached to every response.
type Header struct {
	// ClusterID is the identifier of the cluster that served the request.
	ClusterID uint64
	// MemberID is the identifier of the member that served the request.
	MemberID uint64
	// Revision is the store revision when the request was applied.
	Revision int64
	// RaftTerm is the consensus term when the request was applied.
	RaftTerm uint64
}

// OpResponse is the result of a single transaction branch operation.
// It is implemented by PutResponse, RangeResponse, DeleteResponse and
// TxnResponse, matching the kind of the operation that produced it.
type OpResponse interface {
	// Type returns the kind of the operation that produced the response.
	Type() operation.Type

	isOpResponse()
}

var (
	_ OpResponse = PutResponse{}    //nolint:exhaustruct
	_ OpResponse = RangeResponse{}  //nolint:exhaustruct
	_ OpResponse = DeleteResponse{} //nolint:exhaustruct
	_ OpResponse = TxnResponse{}    //nolint:exhaustruct
)

// PutResponse is the result of a put.
type PutResponse struct {
	Header Header
	// PrevKV holds the overwritten pair when requested and the key existed.
	PrevKV option.Generic[kv.KeyValue]
}

// Type implements OpResponse.
func (PutResponse) Type() operation.Type { return operation.TypePut }

func (PutResponse) isOpResponse() {}

// RangeResponse is the result of a range read.
type RangeResponse struct {
	Header Header
	// KeyValues holds the matching pairs, ordered by key unless sorted otherwise.
	KeyValues []kv.KeyValue
	// Count is the number of matching keys, regardless of the limit.
	Count int64
	// More reports that the limit cut off some matching keys.
	More bool
}

// Type implements OpResponse.
func (RangeResponse) Type() operation.Type { return operation.TypeGet }

func (RangeResponse) isOpResponse() {}

// First returns the first returned pair, if any.
func (r RangeResponse) First() (kv.KeyValue, bool) {
	if len(r.KeyValues) == 0 {
		return kv.KeyValue{}, false //nolint:exhaustruct
	}

	return r.KeyValues[0], true
}

// DeleteResponse is the result of a delete.
type DeleteResponse struct {
	Header Header
	// Deleted is the number of removed keys.
	Deleted int64
	// PrevKVs holds the removed pairs when requested.
	PrevKVs []kv.KeyValue
}

// Type implements OpResponse.
func (DeleteResponse) Type() operation.Type { return operation.TypeDelete }

func (DeleteResponse) isOpResponse() {}

// CompactResponse is the result of a compaction.
type CompactResponse struct {
	Header Header
}

// TxnResponse is the result of a transaction. Responses holds exactly one
// entry per operation of the executed branch, in branch order.
type TxnResponse struct {
	Header Header
	// Succeeded reports whether every predicate held and the success branch ran.
	Succeeded bool
	// Responses holds the results of the executed branch.
	Responses []OpResponse
}

// Type implements OpResponse.
func (TxnResponse) Type() operation.Type { return operation.TypeTxn }

func (TxnResponse) isOpResponse() {}

// Put returns the i-th result as a put result.
func (r TxnResponse) Put(i int) (PutResponse, bool) {
	return at[PutResponse](r.Responses, i)
}

// Range returns the i-th result as a range result.
func (r TxnResponse) Range(i int) (RangeResponse, bool) {
	return at[RangeResponse](r.Responses, i)
}

// Delete returns the i-th result as a delete result.
func (r TxnResponse) Delete(i int) (DeleteResponse, bool) {
	return at[DeleteResponse](r.Responses, i)
}

// Txn returns the i-th result as a nested transaction result.
func (r TxnResponse) Txn(i int) (TxnResponse, bool) {
	return at[TxnResponse](r.Responses, i)
}

func at[T OpResponse](responses []OpResponse, i int) (T, bool) {
	var zero T

	if i < 0 || i >= len(responses) {
		return zero, false
	}

	typed, ok := responses[i].(T)

	return typed, ok
}
