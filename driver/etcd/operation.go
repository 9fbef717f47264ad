package etcd

import (
	"fmt"

	etcd "go.etcd.io/etcd/client/v3"

	"github.com/tarantool/go-kvclient/keyrange"
	"github.com/tarantool/go-kvclient/kv"
	"github.com/tarantool/go-kvclient/operation"
)

//nolint:gochecknoglobals
var (
	sortTargets = map[operation.SortTarget]etcd.SortTarget{
		operation.SortByKey:            etcd.SortByKey,
		operation.SortByVersion:        etcd.SortByVersion,
		operation.SortByCreateRevision: etcd.SortByCreateRevision,
		operation.SortByModRevision:    etcd.SortByModRevision,
		operation.SortByValue:          etcd.SortByValue,
	}

	sortOrders = map[operation.SortOrder]etcd.SortOrder{
		operation.SortNone:    etcd.SortNone,
		operation.SortAscend:  etcd.SortAscend,
		operation.SortDescend: etcd.SortDescend,
	}
)

// keyRangeToEtcd translates a key range into the etcd key and range options.
// The all-keys and open-ended sentinels are passed byte-exact.
func keyRangeToEtcd(r keyrange.KeyRange) (string, []etcd.OpOption) {
	key := string(r.Key())
	if r.IsPoint() {
		return key, nil
	}

	return key, []etcd.OpOption{etcd.WithRange(string(r.End()))}
}

// operationsToEtcdOps converts operations to etcd operations.
func operationsToEtcdOps(ops []operation.Operation) ([]etcd.Op, error) {
	etcdOps := make([]etcd.Op, 0, len(ops))
	for _, op := range ops {
		etcdOp, err := operationToEtcdOp(op)
		if err != nil {
			return nil, err
		}

		etcdOps = append(etcdOps, etcdOp)
	}

	return etcdOps, nil
}

// operationToEtcdOp converts an operation to an etcd operation.
func operationToEtcdOp(op operation.Operation) (etcd.Op, error) {
	switch typed := op.(type) {
	case operation.PutRequest:
		return putToEtcdOp(typed), nil
	case operation.RangeRequest:
		return rangeToEtcdOp(typed), nil
	case operation.DeleteRequest:
		return deleteToEtcdOp(typed), nil
	case operation.TxnRequest:
		return txnToEtcdOp(typed)
	default:
		return etcd.Op{}, fmt.Errorf("%w: %T", errUnsupportedOperationType, op)
	}
}

func putToEtcdOp(req operation.PutRequest) etcd.Op {
	var opts []etcd.OpOption

	if req.Lease() != kv.NoLease {
		opts = append(opts, etcd.WithLease(etcd.LeaseID(req.Lease())))
	}

	if req.PrevKV() {
		opts = append(opts, etcd.WithPrevKV())
	}

	if req.IgnoreValue() {
		opts = append(opts, etcd.WithIgnoreValue())
	}

	if req.IgnoreLease() {
		opts = append(opts, etcd.WithIgnoreLease())
	}

	return etcd.OpPut(string(req.Key()), string(req.Value()), opts...)
}

func rangeToEtcdOp(req operation.RangeRequest) etcd.Op {
	key, opts := keyRangeToEtcd(req.KeyRange())

	if limit := req.Limit(); limit.IsSome() {
		opts = append(opts, etcd.WithLimit(limit.UnwrapOr(0)))
	}

	if revision := req.Revision(); revision.IsSome() {
		opts = append(opts, etcd.WithRev(revision.UnwrapOr(0)))
	}

	if target, order := req.Sort(); target != operation.SortByKey || order != operation.SortNone {
		opts = append(opts, etcd.WithSort(sortTargets[target], sortOrders[order]))
	}

	if req.Serializable() {
		opts = append(opts, etcd.WithSerializable())
	}

	if req.KeysOnly() {
		opts = append(opts, etcd.WithKeysOnly())
	}

	if req.CountOnly() {
		opts = append(opts, etcd.WithCountOnly())
	}

	minMod, maxMod := req.ModRevisionBetween()
	if minMod > 0 {
		opts = append(opts, etcd.WithMinModRev(minMod))
	}

	if maxMod > 0 {
		opts = append(opts, etcd.WithMaxModRev(maxMod))
	}

	minCreate, maxCreate := req.CreateRevisionBetween()
	if minCreate > 0 {
		opts = append(opts, etcd.WithMinCreateRev(minCreate))
	}

	if maxCreate > 0 {
		opts = append(opts, etcd.WithMaxCreateRev(maxCreate))
	}

	return etcd.OpGet(key, opts...)
}

func deleteToEtcdOp(req operation.DeleteRequest) etcd.Op {
	key, opts := keyRangeToEtcd(req.KeyRange())

	if req.PrevKV() {
		opts = append(opts, etcd.WithPrevKV())
	}

	return etcd.OpDelete(key, opts...)
}

func txnToEtcdOp(req operation.TxnRequest) (etcd.Op, error) {
	cmps, err := predicatesToCmps(req.Compare())
	if err != nil {
		return etcd.Op{}, fmt.Errorf("failed to convert predicates: %w", err)
	}

	thenOps, err := operationsToEtcdOps(req.Success())
	if err != nil {
		return etcd.Op{}, fmt.Errorf("failed to convert then operations: %w", err)
	}

	elseOps, err := operationsToEtcdOps(req.Failure())
	if err != nil {
		return etcd.Op{}, fmt.Errorf("failed to convert else operations: %w", err)
	}

	return etcd.OpTxn(cmps, thenOps, elseOps), nil
}
