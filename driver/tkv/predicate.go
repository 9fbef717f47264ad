package tkv

import (
	"github.com/vmihailenco/msgpack/v5"

	"github.com/tarantool/go-kvclient/operation"
	"github.com/tarantool/go-kvclient/predicate"
)

const (
	defaultPredicateArrayLen = 4
)

var (
	_ msgpack.CustomEncoder = tkvPredicate{} //nolint:exhaustruct

	//nolint: gochecknoglobals
	operators = map[predicate.Op]string{
		predicate.OpEqual:    "==",
		predicate.OpNotEqual: "!=",
		predicate.OpGreater:  ">",
		predicate.OpLess:     "<",
	}

	//nolint: gochecknoglobals
	targets = map[predicate.Target]string{
		predicate.TargetValue:       "value",
		predicate.TargetModRevision: "mod_revision",
	}
)

// tkvPredicate is a config storage predicate, encoded as [target, op, value, path].
type tkvPredicate struct {
	target   string
	operator string
	pred     predicate.Predicate
}

// newTKVPredicates converts the predicates of a transaction. The config
// storage compares values and modification revisions only.
func newTKVPredicates(predicates []predicate.Predicate) ([]tkvPredicate, error) {
	tkvPredicates := make([]tkvPredicate, 0, len(predicates))

	for _, pred := range predicates {
		target, ok := targets[pred.Target()]
		if !ok {
			return nil, errUnsupported(operation.TypeTxn, "comparing "+pred.Target().String()+" is not supported")
		}

		operator, ok := operators[pred.Operation()]
		if !ok {
			return nil, errUnsupported(operation.TypeTxn, "operation "+pred.Operation().String()+" is not supported")
		}

		tkvPredicates = append(tkvPredicates, tkvPredicate{
			target:   target,
			operator: operator,
			pred:     pred,
		})
	}

	return tkvPredicates, nil
}

// EncodeMsgpack encodes the predicate as [target, op, value, path].
func (p tkvPredicate) EncodeMsgpack(encoder *msgpack.Encoder) error {
	err := encoder.EncodeArrayLen(defaultPredicateArrayLen)
	if err != nil {
		return errEncodePredicate("encode array length", err)
	}

	err = encoder.EncodeString(p.target)
	if err != nil {
		return errEncodePredicate("encode target", err)
	}

	err = encoder.EncodeString(p.operator)
	if err != nil {
		return errEncodePredicate("encode operator", err)
	}

	switch value := p.pred.Value().(type) {
	case []byte:
		err = encoder.EncodeString(string(value))
	case int64:
		err = encoder.EncodeInt(value)
	default:
		err = predicate.ErrInvalidOperand
	}

	if err != nil {
		return errEncodePredicate("encode value", err)
	}

	// We're deliberately using here conversion from byte to string, since MsgPack API doesn't have a way to
	// write byte array as string.
	err = encoder.EncodeString(string(p.pred.Key()))
	if err != nil {
		return errEncodePredicate("encode key", err)
	}

	return nil
}
