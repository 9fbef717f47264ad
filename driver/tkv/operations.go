package tkv

import (
	"bytes"
	"strings"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/tarantool/go-kvclient/keyrange"
	"github.com/tarantool/go-kvclient/kv"
	"github.com/tarantool/go-kvclient/operation"
)

const (
	// putOperationArrayLen is the length of the array that is used to encode a put operation.
	putOperationArrayLen = 3
	// otherOperationArrayLen is the length of the array that is used to encode get and delete operations.
	otherOperationArrayLen = 2

	// pathSeparator ends every prefix path of the config storage.
	pathSeparator = "/"
)

var (
	_ msgpack.CustomEncoder = tkvOperation{} //nolint:exhaustruct

	//nolint: gochecknoglobals
	ops = map[operation.Type]string{
		operation.TypeGet:    "get",
		operation.TypePut:    "put",
		operation.TypeDelete: "delete",
	}
)

// tkvOperation is a single config storage operation. A path that ends
// with a slash addresses every key under it.
type tkvOperation struct {
	op    operation.Operation
	path  string
	value []byte
}

// pathOf translates a key range into a config storage path.
// Only single keys, slash-terminated prefixes and the whole keyspace
// have a path.
func pathOf(r keyrange.KeyRange) (string, bool) {
	switch r.Kind() {
	case keyrange.KindAll:
		return pathSeparator, true
	case keyrange.KindKey:
		key := string(r.Key())
		if key == "" || strings.HasSuffix(key, pathSeparator) {
			return "", false
		}

		return key, true
	case keyrange.KindRange, keyrange.KindFrom:
		prefix, ok := r.PrefixOf()
		if !ok || !bytes.HasSuffix(prefix, []byte(pathSeparator)) {
			return "", false
		}

		return string(prefix), true
	default:
		return "", false
	}
}

// newTKVOperations converts the operations of a transaction branch.
func newTKVOperations(operations []operation.Operation) ([]tkvOperation, error) {
	tkvOperations := make([]tkvOperation, 0, len(operations))

	for _, o := range operations {
		converted, err := newTKVOperation(o)
		if err != nil {
			return nil, err
		}

		tkvOperations = append(tkvOperations, converted)
	}

	return tkvOperations, nil
}

func newTKVOperation(op operation.Operation) (tkvOperation, error) {
	switch typed := op.(type) {
	case operation.PutRequest:
		return newPutOperation(typed)
	case operation.RangeRequest:
		return newRangeOperation(typed)
	case operation.DeleteRequest:
		path, ok := pathOf(typed.KeyRange())
		if !ok {
			return tkvOperation{}, errUnsupported(operation.TypeDelete, "range "+typed.KeyRange().String()+" has no path")
		}

		return tkvOperation{op: typed, path: path, value: nil}, nil
	case operation.TxnRequest:
		return tkvOperation{}, errUnsupported(operation.TypeTxn, "nested transactions are not supported")
	default:
		return tkvOperation{}, errUnsupported(operation.TypeTxn, "unknown operation")
	}
}

func newPutOperation(req operation.PutRequest) (tkvOperation, error) {
	switch {
	case req.Lease() != kv.NoLease:
		return tkvOperation{}, errUnsupported(operation.TypePut, "leases are not supported")
	case req.PrevKV():
		return tkvOperation{}, errUnsupported(operation.TypePut, "previous values are not returned")
	case req.IgnoreValue() || req.IgnoreLease():
		return tkvOperation{}, errUnsupported(operation.TypePut, "partial updates are not supported")
	}

	path, ok := pathOf(keyrange.Key(req.Key()))
	if !ok {
		return tkvOperation{}, errUnsupported(operation.TypePut, "key "+string(req.Key())+" is not a path")
	}

	return tkvOperation{op: req, path: path, value: req.Value()}, nil
}

func newRangeOperation(req operation.RangeRequest) (tkvOperation, error) {
	if req.Revision().IsSome() {
		return tkvOperation{}, errUnsupported(operation.TypeGet, "historical reads are not supported")
	}

	if minCreate, maxCreate := req.CreateRevisionBetween(); minCreate > 0 || maxCreate > 0 {
		return tkvOperation{}, errUnsupported(operation.TypeGet, "creation revisions are not tracked")
	}

	switch target, _ := req.Sort(); target {
	case operation.SortByKey, operation.SortByModRevision, operation.SortByValue:
	default:
		return tkvOperation{}, errUnsupported(operation.TypeGet, "sorting by "+target.String()+" is not supported")
	}

	path, ok := pathOf(req.KeyRange())
	if !ok {
		return tkvOperation{}, errUnsupported(operation.TypeGet, "range "+req.KeyRange().String()+" has no path")
	}

	return tkvOperation{op: req, path: path, value: nil}, nil
}

// EncodeMsgpack encodes the operation as ["get"|"delete", path] or ["put", path, value].
func (o tkvOperation) EncodeMsgpack(encoder *msgpack.Encoder) error {
	op, ok := ops[o.op.Type()] //nolint:varnamelen
	if !ok {
		return errEncodeOperation("encode operation", operation.ErrUnknownOperation)
	}

	arrayLen := otherOperationArrayLen
	if o.op.Type() == operation.TypePut {
		arrayLen = putOperationArrayLen
	}

	err := encoder.EncodeArrayLen(arrayLen)
	if err != nil {
		return errEncodeOperation("encode array length", err)
	}

	err = encoder.EncodeString(op)
	if err != nil {
		return errEncodeOperation("encode operation", err)
	}

	err = encoder.EncodeString(o.path)
	if err != nil {
		return errEncodeOperation("encode path", err)
	}

	if o.op.Type() != operation.TypePut {
		return nil
	}

	// MsgPack API doesn't have a way to write byte array as string.
	err = encoder.EncodeString(string(o.value))
	if err != nil {
		return errEncodeOperation("encode value", err)
	}

	return nil
}
