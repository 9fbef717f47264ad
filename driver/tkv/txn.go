package tkv

import (
	"bytes"
	"cmp"
	"fmt"
	"slices"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/tarantool/go-option"

	"github.com/tarantool/go-kvclient/kv"
	"github.com/tarantool/go-kvclient/operation"
	"github.com/tarantool/go-kvclient/response"
)

type txnRequest struct {
	_msgpack struct{} `msgpack:",omitempty"`

	Predicates []tkvPredicate `msgpack:"predicates"`
	OnSuccess  []tkvOperation `msgpack:"on_success"`
	OnFailure  []tkvOperation `msgpack:"on_failure"`
}

func newTxnRequest(req operation.TxnRequest) (txnRequest, error) {
	predicates, err := newTKVPredicates(req.Compare())
	if err != nil {
		return txnRequest{}, err
	}

	onSuccess, err := newTKVOperations(req.Success())
	if err != nil {
		return txnRequest{}, err
	}

	onFailure, err := newTKVOperations(req.Failure())
	if err != nil {
		return txnRequest{}, err
	}

	return txnRequest{
		_msgpack:   struct{}{},
		Predicates: predicates,
		OnSuccess:  onSuccess,
		OnFailure:  onFailure,
	}, nil
}

type txnOpRecord struct {
	Path        []byte `msgpack:"path"`
	ModRevision int64  `msgpack:"mod_revision"`
	Value       []byte `msgpack:"value"`
}

// txnOpResponse holds the records returned by one operation.
type txnOpResponse struct {
	Response []txnOpRecord
}

func (t *txnOpResponse) DecodeMsgpack(decoder *msgpack.Decoder) error {
	err := decoder.Decode(&t.Response)
	if err != nil {
		return DecodingError{ObjectType: "txnOpResponse", Text: "", Err: err}
	}

	return nil
}

type txnResponse struct {
	Data struct {
		IsSuccess bool            `msgpack:"is_success"`
		Responses []txnOpResponse `msgpack:"responses"`
	} `msgpack:"data"`
	Revision int64 `msgpack:"revision"`
}

func (r txnResponse) header() response.Header {
	return response.Header{
		ClusterID: 0,
		MemberID:  0,
		Revision:  r.Revision,
		RaftTerm:  0,
	}
}

func (r txnResponse) keyValues(records []txnOpRecord) []kv.KeyValue {
	keyValues := make([]kv.KeyValue, 0, len(records))

	for _, record := range records {
		modRevision := record.ModRevision
		if modRevision == 0 && r.Revision != 0 {
			modRevision = r.Revision
		}

		keyValues = append(keyValues, kv.KeyValue{
			Key:            record.Path,
			Value:          record.Value,
			CreateRevision: 0,
			ModRevision:    modRevision,
			Version:        0,
			Lease:          kv.NoLease,
		})
	}

	return keyValues
}

// asTxnResponse matches the results to the operations of the executed branch.
func (r txnResponse) asTxnResponse(req operation.TxnRequest) (response.TxnResponse, error) {
	executed := req.Failure()
	if r.Data.IsSuccess {
		executed = req.Success()
	}

	if len(executed) != len(r.Data.Responses) {
		return response.TxnResponse{}, fmt.Errorf("%w: expected %d results, got %d",
			ErrUnexpectedResponse, len(executed), len(r.Data.Responses))
	}

	header := r.header()
	results := make([]response.OpResponse, 0, len(executed))

	for i, op := range executed {
		keyValues := r.keyValues(r.Data.Responses[i].Response)

		switch typed := op.(type) {
		case operation.PutRequest:
			results = append(results, response.PutResponse{
				Header: header,
				PrevKV: option.None[kv.KeyValue](),
			})
		case operation.RangeRequest:
			results = append(results, shapeRange(typed, header, keyValues))
		case operation.DeleteRequest:
			deleted := response.DeleteResponse{
				Header:  header,
				Deleted: int64(len(keyValues)),
				PrevKVs: nil,
			}

			if typed.PrevKV() {
				deleted.PrevKVs = keyValues
			}

			results = append(results, deleted)
		default:
			return response.TxnResponse{}, fmt.Errorf("%w: result %d for %T", ErrUnexpectedResponse, i, op)
		}
	}

	return response.TxnResponse{
		Header:    header,
		Succeeded: r.Data.IsSuccess,
		Responses: results,
	}, nil
}

// shapeRange applies the range options the config storage does not
// understand to the returned records.
func shapeRange(req operation.RangeRequest, header response.Header, values []kv.KeyValue) response.RangeResponse {
	minMod, maxMod := req.ModRevisionBetween()
	values = slices.DeleteFunc(values, func(record kv.KeyValue) bool {
		return (minMod > 0 && record.ModRevision < minMod) || (maxMod > 0 && record.ModRevision > maxMod)
	})

	slices.SortFunc(values, func(a, b kv.KeyValue) int {
		return bytes.Compare(a.Key, b.Key)
	})

	target, order := req.Sort()
	if order == operation.SortNone && target != operation.SortByKey {
		order = operation.SortAscend
	}

	if order != operation.SortNone {
		slices.SortStableFunc(values, func(a, b kv.KeyValue) int {
			var result int

			switch target { //nolint:exhaustive
			case operation.SortByModRevision:
				result = cmp.Compare(a.ModRevision, b.ModRevision)
			case operation.SortByValue:
				result = bytes.Compare(a.Value, b.Value)
			default:
				result = bytes.Compare(a.Key, b.Key)
			}

			if order == operation.SortDescend {
				return -result
			}

			return result
		})
	}

	resp := response.RangeResponse{
		Header:    header,
		KeyValues: values,
		Count:     int64(len(values)),
		More:      false,
	}

	if limit := req.Limit().UnwrapOr(0); limit > 0 && int64(len(values)) > limit {
		resp.KeyValues = values[:limit]
		resp.More = true
	}

	switch {
	case req.CountOnly():
		resp.KeyValues = nil
	case req.KeysOnly():
		for i := range resp.KeyValues {
			resp.KeyValues[i].Value = nil
		}
	}

	return resp
}
