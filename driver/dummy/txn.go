package dummy

import (
	"bytes"
	"cmp"
	"slices"

	"github.com/tarantool/go-option"

	"github.com/tarantool/go-kvclient/driver"
	"github.com/tarantool/go-kvclient/keyrange"
	"github.com/tarantool/go-kvclient/kv"
	"github.com/tarantool/go-kvclient/operation"
	"github.com/tarantool/go-kvclient/predicate"
	"github.com/tarantool/go-kvclient/response"
)

// txnState stages the writes of one request. Reads observe the staged
// writes, so later operations of a branch see the earlier ones.
// A key may be put at most once per request and never inside a deleted range.
type txnState struct {
	data    *dummyStorage
	rev     int64
	pending map[string]entry
	puts    map[string]struct{}
	deletes []keyrange.KeyRange
}

// checkPut rejects a second write to the same key within one request.
func (s *txnState) checkPut(key []byte) error {
	if _, ok := s.puts[string(key)]; ok {
		return storeError(operation.TypePut, driver.CodeInvalidArgument, detailDuplicateKey)
	}

	for _, r := range s.deletes {
		if r.Contains(key) {
			return storeError(operation.TypePut, driver.CodeInvalidArgument, detailDuplicateKey)
		}
	}

	return nil
}

// checkDelete rejects a delete covering a key put within the same request.
func (s *txnState) checkDelete(r keyrange.KeyRange) error {
	for key := range s.puts {
		if r.Contains([]byte(key)) {
			return storeError(operation.TypeDelete, driver.CodeInvalidArgument, detailDuplicateKey)
		}
	}

	return nil
}

func (s *txnState) get(key string) (kv.KeyValue, bool) {
	if e, ok := s.pending[key]; ok {
		return cloneKV(e.kv), !e.tombstone
	}

	record, ok := s.data.latestAt(key, s.data.revision)

	return cloneKV(record), ok
}

// cloneKV detaches a record from the stored history.
func cloneKV(record kv.KeyValue) kv.KeyValue {
	record.Key = bytes.Clone(record.Key)
	record.Value = bytes.Clone(record.Value)

	return record
}

// view returns the current pairs of the range ordered by key.
func (s *txnState) view(r keyrange.KeyRange) []kv.KeyValue {
	keys := s.data.keysIn(r)

	for key := range s.pending {
		if r.Contains([]byte(key)) {
			keys = append(keys, key)
		}
	}

	slices.Sort(keys)
	keys = slices.Compact(keys)

	values := make([]kv.KeyValue, 0, len(keys))

	for _, key := range keys {
		if record, ok := s.get(key); ok {
			values = append(values, record)
		}
	}

	return values
}

// viewAt returns the pairs of the range as of a committed revision.
func (s *txnState) viewAt(r keyrange.KeyRange, rev int64) []kv.KeyValue {
	keys := s.data.keysIn(r)
	values := make([]kv.KeyValue, 0, len(keys))

	for _, key := range keys {
		if record, ok := s.data.latestAt(key, rev); ok {
			values = append(values, cloneKV(record))
		}
	}

	return values
}

func (s *txnState) put(req operation.PutRequest) (response.PutResponse, error) {
	if err := s.checkPut(req.Key()); err != nil {
		return response.PutResponse{}, err
	}

	key := string(req.Key())
	prev, exists := s.get(key)

	value := req.Value()
	lease := req.Lease()

	if req.IgnoreValue() || req.IgnoreLease() {
		if !exists {
			return response.PutResponse{}, storeError(operation.TypePut, driver.CodeKeyNotFound, detailNotFound)
		}

		if req.IgnoreValue() {
			value = prev.Value
		}

		if req.IgnoreLease() {
			lease = prev.Lease
		}
	}

	record := kv.KeyValue{
		Key:            []byte(key),
		Value:          value,
		CreateRevision: s.rev,
		ModRevision:    s.rev,
		Version:        1,
		Lease:          lease,
	}

	if exists {
		record.CreateRevision = prev.CreateRevision
		record.Version = prev.Version + 1
	}

	s.pending[key] = entry{kv: record, tombstone: false}
	s.puts[key] = struct{}{}

	resp := response.PutResponse{
		Header: response.Header{}, //nolint:exhaustruct
		PrevKV: option.None[kv.KeyValue](),
	}

	if req.PrevKV() && exists {
		resp.PrevKV = option.Some(prev)
	}

	return resp, nil
}

func (s *txnState) rangeKeys(req operation.RangeRequest) (response.RangeResponse, error) {
	var values []kv.KeyValue

	if req.Revision().IsSome() {
		rev := req.Revision().UnwrapOr(0)

		switch {
		case rev > s.data.revision:
			return response.RangeResponse{}, storeError(operation.TypeGet, driver.CodeFutureRevision, detailFutureRev)
		case rev < s.data.compacted:
			return response.RangeResponse{}, storeError(operation.TypeGet, driver.CodeCompacted, detailCompacted)
		}

		values = s.viewAt(req.KeyRange(), rev)
	} else {
		values = s.view(req.KeyRange())
	}

	values = filterRevisions(req, values)
	sortValues(req, values)

	resp := response.RangeResponse{
		Header:    response.Header{}, //nolint:exhaustruct
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

	return resp, nil
}

func filterRevisions(req operation.RangeRequest, values []kv.KeyValue) []kv.KeyValue {
	minMod, maxMod := req.ModRevisionBetween()
	minCreate, maxCreate := req.CreateRevisionBetween()

	return slices.DeleteFunc(values, func(record kv.KeyValue) bool {
		return (minMod > 0 && record.ModRevision < minMod) ||
			(maxMod > 0 && record.ModRevision > maxMod) ||
			(minCreate > 0 && record.CreateRevision < minCreate) ||
			(maxCreate > 0 && record.CreateRevision > maxCreate)
	})
}

// sortValues orders values that are already sorted by key. Ordering by a
// field other than the key without a direction means ascending.
func sortValues(req operation.RangeRequest, values []kv.KeyValue) {
	target, order := req.Sort()
	if order == operation.SortNone {
		if target == operation.SortByKey {
			return
		}

		order = operation.SortAscend
	}

	slices.SortStableFunc(values, func(a, b kv.KeyValue) int {
		var result int

		switch target {
		case operation.SortByKey:
			result = bytes.Compare(a.Key, b.Key)
		case operation.SortByVersion:
			result = cmp.Compare(a.Version, b.Version)
		case operation.SortByCreateRevision:
			result = cmp.Compare(a.CreateRevision, b.CreateRevision)
		case operation.SortByModRevision:
			result = cmp.Compare(a.ModRevision, b.ModRevision)
		case operation.SortByValue:
			result = bytes.Compare(a.Value, b.Value)
		}

		if order == operation.SortDescend {
			return -result
		}

		return result
	})
}

func (s *txnState) delete(req operation.DeleteRequest) (response.DeleteResponse, error) {
	if err := s.checkDelete(req.KeyRange()); err != nil {
		return response.DeleteResponse{}, err
	}

	s.deletes = append(s.deletes, req.KeyRange())
	values := s.view(req.KeyRange())

	for _, record := range values {
		s.pending[string(record.Key)] = entry{
			kv: kv.KeyValue{
				Key:            record.Key,
				Value:          nil,
				CreateRevision: 0,
				ModRevision:    s.rev,
				Version:        0,
				Lease:          kv.NoLease,
			},
			tombstone: true,
		}
	}

	resp := response.DeleteResponse{
		Header:  response.Header{}, //nolint:exhaustruct
		Deleted: int64(len(values)),
		PrevKVs: nil,
	}

	if req.PrevKV() {
		resp.PrevKVs = values
	}

	return resp, nil
}

// checkPredicates checks if the given predicates are satisfied by
// the current state of the storage.
func (s *txnState) checkPredicates(predicates []predicate.Predicate) bool {
	for _, pred := range predicates {
		record, exists := s.get(string(pred.Key()))
		if !pred.Evaluate(record, exists) {
			return false
		}
	}

	return true
}

func (s *txnState) txn(req operation.TxnRequest) (response.TxnResponse, error) {
	ops := req.Failure()

	success := s.checkPredicates(req.Compare())
	if success {
		ops = req.Success()
	}

	results := make([]response.OpResponse, 0, len(ops))

	for _, op := range ops {
		result, err := s.execute(op)
		if err != nil {
			return response.TxnResponse{}, err
		}

		results = append(results, result)
	}

	return response.TxnResponse{
		Header:    response.Header{}, //nolint:exhaustruct
		Succeeded: success,
		Responses: results,
	}, nil
}

func (s *txnState) execute(op operation.Operation) (response.OpResponse, error) {
	switch typed := op.(type) {
	case operation.PutRequest:
		return s.put(typed)
	case operation.RangeRequest:
		return s.rangeKeys(typed)
	case operation.DeleteRequest:
		return s.delete(typed)
	case operation.TxnRequest:
		return s.txn(typed)
	default:
		return nil, storeError(operation.TypeTxn, driver.CodeInvalidArgument, "unknown operation")
	}
}
