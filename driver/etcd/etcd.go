// Package etcd provides an etcd implementation of the storage driver interface.
// It enables using etcd as a distributed key-value storage backend.
package etcd

import (
	"context"
	"errors"
	"fmt"

	pb "go.etcd.io/etcd/api/v3/etcdserverpb"
	etcd "go.etcd.io/etcd/client/v3"
	"go.uber.org/zap"

	"github.com/tarantool/go-kvclient/config"
	"github.com/tarantool/go-kvclient/driver"
	"github.com/tarantool/go-kvclient/operation"
	"github.com/tarantool/go-kvclient/response"
)

// Client defines the minimal interface needed for etcd operations.
// *etcd.Client implements it; the narrow interface allows fake clients in tests.
type Client interface {
	// Do executes a single operation, transactions included.
	Do(ctx context.Context, op etcd.Op) (etcd.OpResponse, error)
	// Compact compacts the key-value history up to the given revision.
	Compact(ctx context.Context, rev int64, opts ...etcd.CompactOption) (*etcd.CompactResponse, error)
}

// Driver is an etcd implementation of the storage driver interface.
// It uses etcd as the underlying key-value storage backend.
type Driver struct {
	client Client
	closer func() error
}

var (
	_ driver.Driver = &Driver{} //nolint:exhaustruct

	// Static error definitions to avoid dynamic errors.
	errUnsupportedPredicateTarget = errors.New("unsupported predicate target")
	errUnsupportedPredicateOp     = errors.New("unsupported predicate operation")
	errUnsupportedOperationType   = errors.New("unsupported operation type")
	errUnexpectedResponse         = errors.New("unexpected response type")
)

// New creates a new etcd driver instance using an existing etcd client.
// The client should be properly configured and connected to an etcd cluster.
// The driver does not own the client.
func New(client Client) *Driver {
	return &Driver{
		client: client,
		closer: nil,
	}
}

// Dial connects a new etcd client and returns a driver that owns it.
func Dial(cfg etcd.Config) (*Driver, error) {
	client, err := etcd.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to etcd: %w", err)
	}

	return &Driver{
		client: client,
		closer: client.Close,
	}, nil
}

// Connect dials an etcd cluster described by the client configuration.
// The logger is handed to the etcd client.
func Connect(cfg config.Config, logger *zap.Logger) (*Driver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("failed to connect to etcd: %w", err)
	}

	return Dial(cfg.EtcdConfig(logger))
}

// Close closes the underlying client if the driver owns it.
func (d *Driver) Close() error {
	if d.closer == nil {
		return nil
	}

	if err := d.closer(); err != nil {
		return fmt.Errorf("failed to close etcd client: %w", err)
	}

	return nil
}

// Put implements driver.Driver.
func (d *Driver) Put(ctx context.Context, req operation.PutRequest) (response.PutResponse, error) {
	resp, err := d.client.Do(ctx, putToEtcdOp(req))
	if err != nil {
		return response.PutResponse{}, wrapError(operation.TypePut, err)
	}

	if resp.Put() == nil {
		return response.PutResponse{}, fmt.Errorf("%w: expected put response", errUnexpectedResponse)
	}

	return putResponseFromProto((*pb.PutResponse)(resp.Put())), nil
}

// Range implements driver.Driver.
func (d *Driver) Range(ctx context.Context, req operation.RangeRequest) (response.RangeResponse, error) {
	resp, err := d.client.Do(ctx, rangeToEtcdOp(req))
	if err != nil {
		return response.RangeResponse{}, wrapError(operation.TypeGet, err)
	}

	if resp.Get() == nil {
		return response.RangeResponse{}, fmt.Errorf("%w: expected range response", errUnexpectedResponse)
	}

	return rangeResponseFromProto((*pb.RangeResponse)(resp.Get())), nil
}

// Delete implements driver.Driver.
func (d *Driver) Delete(ctx context.Context, req operation.DeleteRequest) (response.DeleteResponse, error) {
	resp, err := d.client.Do(ctx, deleteToEtcdOp(req))
	if err != nil {
		return response.DeleteResponse{}, wrapError(operation.TypeDelete, err)
	}

	if resp.Del() == nil {
		return response.DeleteResponse{}, fmt.Errorf("%w: expected delete response", errUnexpectedResponse)
	}

	return deleteResponseFromProto((*pb.DeleteRangeResponse)(resp.Del())), nil
}

// Txn implements driver.Driver.
// Nested transactions are sent as nested etcd transactions.
func (d *Driver) Txn(ctx context.Context, req operation.TxnRequest) (response.TxnResponse, error) {
	op, err := txnToEtcdOp(req)
	if err != nil {
		return response.TxnResponse{}, fmt.Errorf("failed to convert transaction: %w", err)
	}

	resp, err := d.client.Do(ctx, op)
	if err != nil {
		return response.TxnResponse{}, wrapError(operation.TypeTxn, err)
	}

	if resp.Txn() == nil {
		return response.TxnResponse{}, fmt.Errorf("%w: expected txn response", errUnexpectedResponse)
	}

	return txnResponseFromProto((*pb.TxnResponse)(resp.Txn()))
}

// Compact implements driver.Driver.
func (d *Driver) Compact(ctx context.Context, req operation.CompactRequest) (response.CompactResponse, error) {
	var opts []etcd.CompactOption
	if req.Physical() {
		opts = append(opts, etcd.WithCompactPhysical())
	}

	resp, err := d.client.Compact(ctx, req.Revision(), opts...)
	if err != nil {
		return response.CompactResponse{}, wrapError(operation.TypeCompact, err)
	}

	return response.CompactResponse{Header: headerFromProto(resp.Header)}, nil
}
