// Package tx provides a fluent builder for compare-and-branch transactions.
// It supports conditional execution with predicates for complex transaction logic.
package tx

import (
	"context"
	"fmt"

	"github.com/tarantool/go-option"

	"github.com/tarantool/go-kvclient/operation"
	"github.com/tarantool/go-kvclient/predicate"
	"github.com/tarantool/go-kvclient/response"
)

// Tx represents a transactional interface for atomic operations.
// Transactions support conditional execution with predicates.
type Tx interface {
	// If specifies predicates for conditional transaction execution.
	// Empty predicate list means always true (unconditional execution).
	If(predicates ...predicate.Predicate) Tx
	// Then specifies operations to execute if predicates evaluate to true.
	Then(operations ...operation.Operation) Tx
	// Else specifies operations to execute if predicates evaluate to false.
	// This is optional.
	Else(operations ...operation.Operation) Tx
	// Request returns the transaction request built so far.
	Request() operation.TxnRequest
	// Commit atomically executes the transaction and returns the result.
	Commit() (response.TxnResponse, error)
}

// Committer executes a transaction request.
type Committer interface {
	Txn(ctx context.Context, req operation.TxnRequest) (response.TxnResponse, error)
}

// tx is the internal implementation of the Tx interface.
type tx struct {
	committer Committer
	ctx       context.Context //nolint:containedctx // Context is stored for transaction execution

	predicates option.Generic[[]predicate.Predicate]
	thenOps    option.Generic[[]operation.Operation]
	elseOps    option.Generic[[]operation.Operation]
}

// New creates a new transaction builder committed through committer with ctx.
func New(ctx context.Context, committer Committer) Tx {
	return &tx{
		committer:  committer,
		ctx:        ctx,
		predicates: option.None[[]predicate.Predicate](),
		thenOps:    option.None[[]operation.Operation](),
		elseOps:    option.None[[]operation.Operation](),
	}
}

// If adds predicates to the transaction condition.
// If should be called before Then/Else.
func (tb *tx) If(predicates ...predicate.Predicate) Tx {
	if tb.predicates.IsSome() {
		panic("predicates are already set")
	} else if tb.thenOps.IsSome() || tb.elseOps.IsSome() {
		panic("If can only be called before Then/Else")
	}

	tb.predicates = option.Some(predicates)

	return tb
}

// Then adds operations to execute if predicates evaluate to true.
// Then can only be called before Else.
func (tb *tx) Then(operations ...operation.Operation) Tx {
	if tb.thenOps.IsSome() {
		panic("then operations are already set")
	} else if tb.elseOps.IsSome() {
		panic("Then can only be called before Else")
	}

	tb.thenOps = option.Some(operations)

	return tb
}

// Else adds operations to execute if predicates evaluate to false.
// Else can only be called before Commit.
func (tb *tx) Else(operations ...operation.Operation) Tx {
	if tb.elseOps.IsSome() {
		panic("else operations are already set")
	}

	tb.elseOps = option.Some(operations)

	return tb
}

// Request builds the transaction request. Missing parts are empty.
func (tb *tx) Request() operation.TxnRequest {
	return operation.Txn(
		tb.predicates.UnwrapOr(nil),
		tb.thenOps.UnwrapOr(nil),
		tb.elseOps.UnwrapOr(nil),
	)
}

// Commit atomically executes the transaction by delegating to the committer.
func (tb *tx) Commit() (response.TxnResponse, error) {
	resp, err := tb.committer.Txn(tb.ctx, tb.Request())
	if err != nil {
		return response.TxnResponse{}, fmt.Errorf("tx execute failed: %w", err)
	}

	return resp, nil
}
