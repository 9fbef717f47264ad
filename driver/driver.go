// Package driver defines the interface for storage driver implementations.
// A driver is the transport collaborator: it marshals canonical requests
// to a concrete store and converts the decoded replies into responses.
package driver

import (
	"context"

	"github.com/tarantool/go-kvclient/operation"
	"github.com/tarantool/go-kvclient/response"
)

// Driver is the interface that storage drivers must implement.
// Implementations must be safe for concurrent use and must not retry:
// every failure is returned to the caller.
type Driver interface {
	// Put writes a single key.
	Put(ctx context.Context, req operation.PutRequest) (response.PutResponse, error)
	// Range reads the keys of a key range.
	Range(ctx context.Context, req operation.RangeRequest) (response.RangeResponse, error)
	// Delete removes the keys of a key range.
	Delete(ctx context.Context, req operation.DeleteRequest) (response.DeleteResponse, error)
	// Txn executes a compare-and-branch transaction atomically.
	// The transaction will execute the success branch if all predicates
	// evaluate to true, otherwise it will execute the failure branch.
	Txn(ctx context.Context, req operation.TxnRequest) (response.TxnResponse, error)
	// Compact discards the history below the requested revision.
	Compact(ctx context.Context, req operation.CompactRequest) (response.CompactResponse, error)
}
