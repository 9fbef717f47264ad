package etcd

import (
	"fmt"

	pb "go.etcd.io/etcd/api/v3/etcdserverpb"
	"go.etcd.io/etcd/api/v3/mvccpb"

	"github.com/tarantool/go-option"

	"github.com/tarantool/go-kvclient/kv"
	"github.com/tarantool/go-kvclient/response"
)

// headerFromProto converts an etcd response header. A missing header
// converts to the zero header.
func headerFromProto(header *pb.ResponseHeader) response.Header {
	return response.Header{
		ClusterID: header.GetClusterId(),
		MemberID:  header.GetMemberId(),
		Revision:  header.GetRevision(),
		RaftTerm:  header.GetRaftTerm(),
	}
}

// keyValueFromProto converts an etcd key-value pair field by field.
func keyValueFromProto(record *mvccpb.KeyValue) kv.KeyValue {
	return kv.KeyValue{
		Key:            record.Key,
		Value:          record.Value,
		CreateRevision: record.CreateRevision,
		ModRevision:    record.ModRevision,
		Version:        record.Version,
		Lease:          kv.LeaseID(record.Lease),
	}
}

func keyValuesFromProto(records []*mvccpb.KeyValue) []kv.KeyValue {
	if len(records) == 0 {
		return nil
	}

	values := make([]kv.KeyValue, 0, len(records))
	for _, record := range records {
		values = append(values, keyValueFromProto(record))
	}

	return values
}

func putResponseFromProto(resp *pb.PutResponse) response.PutResponse {
	prev := option.None[kv.KeyValue]()
	if resp.PrevKv != nil {
		prev = option.Some(keyValueFromProto(resp.PrevKv))
	}

	return response.PutResponse{
		Header: headerFromProto(resp.Header),
		PrevKV: prev,
	}
}

func rangeResponseFromProto(resp *pb.RangeResponse) response.RangeResponse {
	return response.RangeResponse{
		Header:    headerFromProto(resp.Header),
		KeyValues: keyValuesFromProto(resp.Kvs),
		Count:     resp.Count,
		More:      resp.More,
	}
}

func deleteResponseFromProto(resp *pb.DeleteRangeResponse) response.DeleteResponse {
	return response.DeleteResponse{
		Header:  headerFromProto(resp.Header),
		Deleted: resp.Deleted,
		PrevKVs: keyValuesFromProto(resp.PrevKvs),
	}
}

// txnResponseFromProto converts a transaction response, nested
// transaction responses included.
func txnResponseFromProto(resp *pb.TxnResponse) (response.TxnResponse, error) {
	results := make([]response.OpResponse, 0, len(resp.Responses))

	for i, op := range resp.Responses {
		result, err := opResponseFromProto(op)
		if err != nil {
			return response.TxnResponse{}, fmt.Errorf("failed to convert response %d: %w", i, err)
		}

		results = append(results, result)
	}

	return response.TxnResponse{
		Header:    headerFromProto(resp.Header),
		Succeeded: resp.Succeeded,
		Responses: results,
	}, nil
}

func opResponseFromProto(op *pb.ResponseOp) (response.OpResponse, error) {
	switch {
	case op.GetResponseRange() != nil:
		return rangeResponseFromProto(op.GetResponseRange()), nil
	case op.GetResponsePut() != nil:
		return putResponseFromProto(op.GetResponsePut()), nil
	case op.GetResponseDeleteRange() != nil:
		return deleteResponseFromProto(op.GetResponseDeleteRange()), nil
	case op.GetResponseTxn() != nil:
		return txnResponseFromProto(op.GetResponseTxn())
	default:
		return nil, fmt.Errorf("%w: %T", errUnexpectedResponse, op.GetResponse())
	}
}
