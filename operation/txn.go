package operation

import (
	"fmt"
	"slices"

	"github.com/tarantool/go-kvclient/predicate"
)

// TxnRequest is a compare-and-branch transaction. The store evaluates all
// predicates atomically; if every one holds it executes the success branch,
// otherwise the failure branch. Exactly one branch is executed as a whole.
type TxnRequest struct {
	compare []predicate.Predicate
	success []Operation
	failure []Operation
}

// Txn creates a transaction. Nil slices are treated as empty ones:
// no predicates means that the success branch is always taken.
func Txn(compare []predicate.Predicate, success []Operation, failure []Operation) TxnRequest {
	return TxnRequest{
		compare: slices.Clone(compare),
		success: slices.Clone(success),
		failure: slices.Clone(failure),
	}
}

// Type implements Operation.
func (r TxnRequest) Type() Type { return TypeTxn }

// Compare returns the predicates of the transaction.
func (r TxnRequest) Compare() []predicate.Predicate { return slices.Clone(r.compare) }

// Success returns the operations executed when every predicate holds.
func (r TxnRequest) Success() []Operation { return slices.Clone(r.success) }

// Failure returns the operations executed otherwise.
func (r TxnRequest) Failure() []Operation { return slices.Clone(r.failure) }

// Depth returns the nesting depth of the transaction, 1 for a flat one.
func (r TxnRequest) Depth() int {
	depth := 0

	for _, op := range slices.Concat(r.success, r.failure) {
		if nested, ok := op.(TxnRequest); ok {
			depth = max(depth, nested.Depth())
		}
	}

	return depth + 1
}

// Validate checks the shape of the transaction: predicate operands must
// match their targets and branches may only hold known operations.
// Nested transactions are validated recursively. Predicates are never
// evaluated locally.
func (r TxnRequest) Validate() error {
	for i, pred := range r.compare {
		if err := pred.Validate(); err != nil {
			return ShapeError{Path: fmt.Sprintf("compare[%d]", i), Err: err}
		}
	}

	if err := validateBranch("success", r.success); err != nil {
		return err
	}

	return validateBranch("failure", r.failure)
}

func validateBranch(name string, ops []Operation) error {
	for i, op := range ops {
		path := fmt.Sprintf("%s[%d]", name, i)

		switch typed := op.(type) {
		case PutRequest, RangeRequest, DeleteRequest:
		case TxnRequest:
			if err := typed.Validate(); err != nil {
				return nestShapeError(path, err)
			}
		default:
			return ShapeError{Path: path, Err: fmt.Errorf("%w: %T", ErrUnknownOperation, op)}
		}
	}

	return nil
}
