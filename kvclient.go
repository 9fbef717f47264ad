package kvclient

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/tarantool/go-kvclient/driver"
	"github.com/tarantool/go-kvclient/internal/options"
	"github.com/tarantool/go-kvclient/keyrange"
	"github.com/tarantool/go-kvclient/operation"
	"github.com/tarantool/go-kvclient/response"
	"github.com/tarantool/go-kvclient/tx"
)

// KV is the main interface for key-value operations.
// Convenience forms build the request and delegate to the primitive
// operation of the same kind.
type KV interface {
	// Put upserts one key.
	Put(ctx context.Context, req operation.PutRequest) (response.PutResponse, error)

	// Get reads the keys addressed by the request.
	Get(ctx context.Context, req operation.RangeRequest) (response.RangeResponse, error)
	// GetKey reads a single key.
	GetKey(ctx context.Context, key []byte, opts ...operation.RangeOption) (response.RangeResponse, error)
	// GetAll reads every key.
	GetAll(ctx context.Context, opts ...operation.RangeOption) (response.RangeResponse, error)
	// GetByPrefix reads every key that starts with prefix.
	GetByPrefix(ctx context.Context, prefix []byte, opts ...operation.RangeOption) (response.RangeResponse, error)
	// GetRange reads the keys in [from, end).
	GetRange(ctx context.Context, from, end []byte, opts ...operation.RangeOption) (response.RangeResponse, error)

	// Delete removes the keys addressed by the request.
	Delete(ctx context.Context, req operation.DeleteRequest) (response.DeleteResponse, error)
	// DeleteKey removes a single key.
	DeleteKey(ctx context.Context, key []byte, opts ...operation.DeleteOption) (response.DeleteResponse, error)
	// DeleteAll removes every key.
	DeleteAll(ctx context.Context, opts ...operation.DeleteOption) (response.DeleteResponse, error)
	// DeleteByPrefix removes every key that starts with prefix.
	DeleteByPrefix(ctx context.Context, prefix []byte, opts ...operation.DeleteOption) (response.DeleteResponse, error)
	// DeleteRange removes the keys in [from, end).
	DeleteRange(ctx context.Context, from, end []byte, opts ...operation.DeleteOption) (response.DeleteResponse, error)

	// Txn submits a compare-and-branch transaction. The request shape is
	// validated before it is sent.
	Txn(ctx context.Context, req operation.TxnRequest) (response.TxnResponse, error)
	// Tx creates a new transaction builder committed through Txn.
	// The context manages timeouts and cancellation for the transaction.
	Tx(ctx context.Context) tx.Tx

	// Compact discards the store history below the given revision.
	Compact(ctx context.Context, req operation.CompactRequest) (response.CompactResponse, error)
}

// client is the concrete implementation of the KV interface.
type client struct {
	driver driver.Driver // Underlying storage driver.
	opts   clientOptions
}

var _ KV = &client{} //nolint:exhaustruct

// New creates a new KV instance with the specified driver.
func New(drv driver.Driver, opts ...Option) KV {
	return &client{
		driver: drv,
		opts:   options.ApplyOptions[clientOptions](defaultClientOptions, opts),
	}
}

// Put implements KV.
func (c *client) Put(ctx context.Context, req operation.PutRequest) (response.PutResponse, error) {
	return dispatch(ctx, c, req.Type(), keyrange.Key(req.Key()), func(ctx context.Context) (response.PutResponse, error) {
		return c.driver.Put(ctx, req)
	})
}

// Get implements KV.
func (c *client) Get(ctx context.Context, req operation.RangeRequest) (response.RangeResponse, error) {
	return dispatch(ctx, c, req.Type(), req.KeyRange(), func(ctx context.Context) (response.RangeResponse, error) {
		return c.driver.Range(ctx, req)
	})
}

// GetKey implements KV.
func (c *client) GetKey(
	ctx context.Context,
	key []byte,
	opts ...operation.RangeOption,
) (response.RangeResponse, error) {
	return c.Get(ctx, operation.GetKey(key, opts...))
}

// GetAll implements KV.
func (c *client) GetAll(ctx context.Context, opts ...operation.RangeOption) (response.RangeResponse, error) {
	return c.Get(ctx, operation.GetAll(opts...))
}

// GetByPrefix implements KV.
func (c *client) GetByPrefix(
	ctx context.Context,
	prefix []byte,
	opts ...operation.RangeOption,
) (response.RangeResponse, error) {
	return c.Get(ctx, operation.GetPrefix(prefix, opts...))
}

// GetRange implements KV.
func (c *client) GetRange(
	ctx context.Context,
	from, end []byte,
	opts ...operation.RangeOption,
) (response.RangeResponse, error) {
	return c.Get(ctx, operation.GetRange(from, end, opts...))
}

// Delete implements KV.
func (c *client) Delete(ctx context.Context, req operation.DeleteRequest) (response.DeleteResponse, error) {
	return dispatch(ctx, c, req.Type(), req.KeyRange(), func(ctx context.Context) (response.DeleteResponse, error) {
		return c.driver.Delete(ctx, req)
	})
}

// DeleteKey implements KV.
func (c *client) DeleteKey(
	ctx context.Context,
	key []byte,
	opts ...operation.DeleteOption,
) (response.DeleteResponse, error) {
	return c.Delete(ctx, operation.DeleteKey(key, opts...))
}

// DeleteAll implements KV.
func (c *client) DeleteAll(ctx context.Context, opts ...operation.DeleteOption) (response.DeleteResponse, error) {
	return c.Delete(ctx, operation.DeleteAll(opts...))
}

// DeleteByPrefix implements KV.
func (c *client) DeleteByPrefix(
	ctx context.Context,
	prefix []byte,
	opts ...operation.DeleteOption,
) (response.DeleteResponse, error) {
	return c.Delete(ctx, operation.DeletePrefix(prefix, opts...))
}

// DeleteRange implements KV.
func (c *client) DeleteRange(
	ctx context.Context,
	from, end []byte,
	opts ...operation.DeleteOption,
) (response.DeleteResponse, error) {
	return c.Delete(ctx, operation.DeleteRange(from, end, opts...))
}

// Txn implements KV.
func (c *client) Txn(ctx context.Context, req operation.TxnRequest) (response.TxnResponse, error) {
	if err := req.Validate(); err != nil {
		c.opts.logger.Warn("invalid transaction", zap.Error(err))

		return response.TxnResponse{}, fmt.Errorf("failed to execute %s: %w", req.Type(), err)
	}

	return dispatch(ctx, c, req.Type(), nil, func(ctx context.Context) (response.TxnResponse, error) {
		return c.driver.Txn(ctx, req)
	})
}

// Tx implements KV.
func (c *client) Tx(ctx context.Context) tx.Tx {
	return tx.New(ctx, c)
}

// Compact implements KV.
func (c *client) Compact(ctx context.Context, req operation.CompactRequest) (response.CompactResponse, error) {
	return dispatch(ctx, c, req.Type(), nil, func(ctx context.Context) (response.CompactResponse, error) {
		return c.driver.Compact(ctx, req)
	})
}

// dispatch hands one request to the driver, applying the request timeout
// and logging the outcome. Failures are wrapped, never replaced.
func dispatch[Resp any](
	ctx context.Context,
	c *client,
	opType operation.Type,
	target fmt.Stringer,
	call func(ctx context.Context) (Resp, error),
) (Resp, error) {
	if c.opts.requestTimeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, c.opts.requestTimeout)
		defer cancel()
	}

	fields := []zap.Field{zap.Stringer("op", opType)}
	if target != nil {
		fields = append(fields, zap.Stringer("range", target))
	}

	started := time.Now()
	resp, err := call(ctx)

	fields = append(fields, zap.Duration("duration", time.Since(started)))

	if err != nil {
		c.opts.logger.Warn("operation failed", append(fields, zap.Error(err))...)

		var zero Resp

		return zero, fmt.Errorf("failed to execute %s: %w", opType, err)
	}

	c.opts.logger.Debug("operation done", fields...)

	return resp, nil
}
