// Package tkv provides a Tarantool config storage driver implementation.
// It enables using Tarantool as a distributed key-value storage backend.
//
// Every request is sent as a config.storage.txn call. The storage addresses
// keys by path: a single key, a prefix ending with a slash, or "/" for the
// whole keyspace. Requests it cannot express fail with driver.CodeUnsupported.
package tkv

import (
	"context"
	"errors"
	"fmt"

	"github.com/tarantool/go-tarantool/v2"
	"github.com/tarantool/go-tarantool/v2/pool"

	"github.com/tarantool/go-kvclient/config"
	"github.com/tarantool/go-kvclient/driver"
	"github.com/tarantool/go-kvclient/operation"
	"github.com/tarantool/go-kvclient/response"
)

const txnFunction = "config.storage.txn"

// Driver is a Tarantool implementation of the storage driver interface.
// It uses the config storage as the underlying key-value storage backend.
type Driver struct {
	conn   tarantool.Doer
	closer func() error
}

var (
	_ driver.Driver = &Driver{} //nolint:exhaustruct

	// ErrUnexpectedResponse is returned when the response from tarantool has unexpected format.
	ErrUnexpectedResponse = errors.New("unexpected response from tarantool")
)

// New creates a new Tarantool driver over an existing connection.
// tarantool.Connection and pool.ConnectorAdapter can be used.
func New(doer tarantool.Doer) *Driver {
	return &Driver{conn: doer, closer: nil}
}

// Connect creates a connection pool to the configured instances and
// returns a driver that sends requests to a read-write instance.
func Connect(ctx context.Context, cfg config.Config) (*Driver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("failed to connect to tarantool: %w", err)
	}

	instances := make([]pool.Instance, 0, len(cfg.Endpoints))
	for i, addr := range cfg.Endpoints {
		instances = append(instances, pool.Instance{
			Name: fmt.Sprintf("instance-%d", i),
			Dialer: &tarantool.NetDialer{
				Address:  addr,
				User:     cfg.Username,
				Password: cfg.Password,
				RequiredProtocolInfo: tarantool.ProtocolInfo{
					Auth:     tarantool.AutoAuth,
					Version:  tarantool.ProtocolVersion(0),
					Features: nil,
				},
			},
			Opts: tarantool.Opts{
				Timeout:       cfg.RequestTimeout,
				Reconnect:     0,
				MaxReconnects: 0,
				RateLimit:     0,
				RLimitAction:  tarantool.RLimitAction(0),
				Concurrency:   0,
				SkipSchema:    false,
				Notify:        nil,
				Handle:        nil,
				Logger:        nil,
			},
		})
	}

	dialCtx, cancel := context.WithTimeout(ctx, cfg.DialTimeout)
	defer cancel()

	conn, err := pool.Connect(dialCtx, instances)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to tarantool pool: %w", err)
	}

	adapter := pool.NewConnectorAdapter(conn, pool.RW)

	return &Driver{conn: adapter, closer: adapter.Close}, nil
}

// Close closes the connection pool if the driver owns it.
func (d *Driver) Close() error {
	if d.closer == nil {
		return nil
	}

	if err := d.closer(); err != nil {
		return fmt.Errorf("failed to close tarantool pool: %w", err)
	}

	return nil
}

// Put implements driver.Driver.
func (d *Driver) Put(ctx context.Context, req operation.PutRequest) (response.PutResponse, error) {
	resp, err := d.single(ctx, req)
	if err != nil {
		return response.PutResponse{}, err
	}

	result, _ := resp.Put(0)

	return result, nil
}

// Range implements driver.Driver.
func (d *Driver) Range(ctx context.Context, req operation.RangeRequest) (response.RangeResponse, error) {
	resp, err := d.single(ctx, req)
	if err != nil {
		return response.RangeResponse{}, err
	}

	result, _ := resp.Range(0)

	return result, nil
}

// Delete implements driver.Driver.
func (d *Driver) Delete(ctx context.Context, req operation.DeleteRequest) (response.DeleteResponse, error) {
	resp, err := d.single(ctx, req)
	if err != nil {
		return response.DeleteResponse{}, err
	}

	result, _ := resp.Delete(0)

	return result, nil
}

// Txn implements driver.Driver.
// It processes predicates to determine whether to execute the success or the failure branch.
func (d *Driver) Txn(ctx context.Context, req operation.TxnRequest) (response.TxnResponse, error) {
	txnArg, err := newTxnRequest(req)
	if err != nil {
		return response.TxnResponse{}, err
	}

	call := tarantool.NewCallRequest(txnFunction).
		Args([]any{txnArg}).Context(ctx)

	var result []txnResponse

	switch err := d.conn.Do(call).GetTyped(&result); {
	case err != nil:
		return response.TxnResponse{}, wrapError(err)
	case len(result) != 1:
		return response.TxnResponse{}, fmt.Errorf("%w: expected 1 response, got %d", ErrUnexpectedResponse, len(result))
	}

	return result[0].asTxnResponse(req)
}

// Compact implements driver.Driver. The config storage keeps no history.
func (d *Driver) Compact(_ context.Context, _ operation.CompactRequest) (response.CompactResponse, error) {
	return response.CompactResponse{}, errUnsupported(operation.TypeCompact, "the storage keeps no history")
}

// single runs one operation as an unconditional transaction.
func (d *Driver) single(ctx context.Context, op operation.Operation) (response.TxnResponse, error) {
	resp, err := d.Txn(ctx, operation.Txn(nil, []operation.Operation{op}, nil))
	if err != nil {
		return response.TxnResponse{}, err
	}

	if len(resp.Responses) != 1 || resp.Responses[0].Type() != op.Type() {
		return response.TxnResponse{}, fmt.Errorf("%w: expected a %s result", ErrUnexpectedResponse, op.Type())
	}

	return resp, nil
}

// wrapError reports errors raised by the storage as driver.StoreError,
// transport failures are returned unchanged.
func wrapError(err error) error {
	var tntErr tarantool.Error
	if errors.As(err, &tntErr) {
		return driver.StoreError{
			Op:     operation.TypeTxn.String(),
			Code:   driver.CodeUnknown,
			Detail: tntErr.Msg,
			Err:    err,
		}
	}

	return err
}
