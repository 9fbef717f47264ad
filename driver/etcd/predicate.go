package etcd

import (
	"fmt"

	etcd "go.etcd.io/etcd/client/v3"

	"github.com/tarantool/go-kvclient/kv"
	"github.com/tarantool/go-kvclient/predicate"
)

//nolint:gochecknoglobals
var operators = map[predicate.Op]string{
	predicate.OpEqual:    "=",
	predicate.OpNotEqual: "!=",
	predicate.OpGreater:  ">",
	predicate.OpLess:     "<",
}

// predicatesToCmps converts a predicate list to an etcd comparison list.
func predicatesToCmps(predicates []predicate.Predicate) ([]etcd.Cmp, error) {
	convertedPredicates := make([]etcd.Cmp, 0, len(predicates))
	for _, pred := range predicates {
		convertedPredicate, err := predicateToCmp(pred)
		if err != nil {
			return nil, err
		}

		convertedPredicates = append(convertedPredicates, convertedPredicate)
	}

	return convertedPredicates, nil
}

// predicateToCmp converts a predicate to an etcd comparison.
func predicateToCmp(pred predicate.Predicate) (etcd.Cmp, error) {
	if err := pred.Validate(); err != nil {
		return etcd.Cmp{}, fmt.Errorf("invalid predicate %v: %w", pred, err)
	}

	key := string(pred.Key())

	op, ok := operators[pred.Operation()]
	if !ok {
		return etcd.Cmp{}, fmt.Errorf("%w: %v", errUnsupportedPredicateOp, pred.Operation())
	}

	switch pred.Target() {
	case predicate.TargetValue:
		return etcd.Compare(etcd.Value(key), op, string(pred.Value().([]byte))), nil //nolint:forcetypeassert
	case predicate.TargetVersion:
		return etcd.Compare(etcd.Version(key), op, pred.Value().(int64)), nil //nolint:forcetypeassert
	case predicate.TargetCreateRevision:
		return etcd.Compare(etcd.CreateRevision(key), op, pred.Value().(int64)), nil //nolint:forcetypeassert
	case predicate.TargetModRevision:
		return etcd.Compare(etcd.ModRevision(key), op, pred.Value().(int64)), nil //nolint:forcetypeassert
	case predicate.TargetLease:
		lease := pred.Value().(kv.LeaseID) //nolint:forcetypeassert
		return etcd.Compare(etcd.LeaseValue(key), op, int64(lease)), nil
	default:
		return etcd.Cmp{}, fmt.Errorf("%w: %v", errUnsupportedPredicateTarget, pred.Target())
	}
}
