// Package operation provides types and interfaces for storage operations.
// It defines the canonical request of every operation kind and the
// Operation variant used in transaction branches.
//
// Every request is an immutable value. Each accepted call-site shape
// (a bare key, a byte range, a prefix, a KeyRange) has its own named
// constructor that converges on the canonical request type.
package operation

// Operation represents a storage operation to be executed inside a
// transaction branch. It is implemented by PutRequest, RangeRequest,
// DeleteRequest and TxnRequest only; a TxnRequest may therefore nest
// other transactions to any depth.
type Operation interface {
	// Type returns the kind of the operation.
	Type() Type

	isOperation()
}

var (
	_ Operation = PutRequest{}    //nolint:exhaustruct
	_ Operation = RangeRequest{}  //nolint:exhaustruct
	_ Operation = DeleteRequest{} //nolint:exhaustruct
	_ Operation = TxnRequest{}    //nolint:exhaustruct
)

func (PutRequest) isOperation()    {}
func (RangeRequest) isOperation()  {}
func (DeleteRequest) isOperation() {}
func (TxnRequest) isOperation()    {}
