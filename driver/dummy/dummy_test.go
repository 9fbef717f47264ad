package dummy_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tarantool/go-kvclient/driver"
	"github.com/tarantool/go-kvclient/driver/dummy"
	"github.com/tarantool/go-kvclient/kv"
	"github.com/tarantool/go-kvclient/operation"
	"github.com/tarantool/go-kvclient/predicate"
	"github.com/tarantool/go-kvclient/response"
)

func put(t *testing.T, d *dummy.Driver, key, value string, opts ...operation.PutOption) response.PutResponse {
	t.Helper()

	resp, err := d.Put(context.Background(), operation.Put([]byte(key), []byte(value), opts...))
	require.NoError(t, err)

	return resp
}

func keys(values []kv.KeyValue) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		out = append(out, string(v.Key))
	}

	return out
}

func TestPut_Bookkeeping(t *testing.T) {
	t.Parallel()

	d := dummy.New()
	ctx := context.Background()

	first := put(t, d, "a", "1", operation.WithLease(99))
	assert.Equal(t, int64(2), first.Header.Revision)
	assert.False(t, first.PrevKV.IsSome())

	second := put(t, d, "a", "2", operation.WithPrevKV())
	assert.Equal(t, int64(3), second.Header.Revision)
	require.True(t, second.PrevKV.IsSome())

	prev := second.PrevKV.UnwrapOr(kv.KeyValue{}) //nolint:exhaustruct
	assert.Equal(t, "1", prev.ValueString())
	assert.Equal(t, kv.LeaseID(99), prev.Lease)

	resp, err := d.Range(ctx, operation.GetKey([]byte("a")))
	require.NoError(t, err)
	require.Len(t, resp.KeyValues, 1)

	record := resp.KeyValues[0]
	assert.Equal(t, "2", record.ValueString())
	assert.Equal(t, int64(2), record.CreateRevision)
	assert.Equal(t, int64(3), record.ModRevision)
	assert.Equal(t, int64(2), record.Version)
	assert.Equal(t, kv.NoLease, record.Lease)
	assert.GreaterOrEqual(t, record.ModRevision, record.CreateRevision)
}

func TestPut_IgnoreValueAndLease(t *testing.T) {
	t.Parallel()

	d := dummy.New()
	ctx := context.Background()

	_, err := d.Put(ctx, operation.Put([]byte("missing"), nil, operation.WithIgnoreValue()))
	require.True(t, driver.IsCode(err, driver.CodeKeyNotFound))

	put(t, d, "a", "keep", operation.WithLease(7))
	put(t, d, "a", "", operation.WithIgnoreValue(), operation.WithIgnoreLease())

	resp, err := d.Range(ctx, operation.GetKey([]byte("a")))
	require.NoError(t, err)
	require.Len(t, resp.KeyValues, 1)
	assert.Equal(t, "keep", resp.KeyValues[0].ValueString())
	assert.Equal(t, kv.LeaseID(7), resp.KeyValues[0].Lease)
	assert.Equal(t, int64(2), resp.KeyValues[0].Version)
}

func TestRange_Shapes(t *testing.T) {
	t.Parallel()

	d := dummy.New()
	ctx := context.Background()

	for _, key := range []string{"a", "dir/1", "dir/2", "dir0", "z", "\xff\xff", "\xff\xff\x01"} {
		put(t, d, key, "v")
	}

	tests := []struct {
		name     string
		request  operation.RangeRequest
		expected []string
	}{
		{"key", operation.GetKey([]byte("dir/1")), []string{"dir/1"}},
		{"missing key", operation.GetKey([]byte("nope")), []string{}},
		{"prefix", operation.GetPrefix([]byte("dir/")), []string{"dir/1", "dir/2"}},
		{"range", operation.GetRange([]byte("dir/2"), []byte("z")), []string{"dir/2", "dir0"}},
		{"all-0xff prefix", operation.GetPrefix([]byte("\xff\xff")), []string{"\xff\xff", "\xff\xff\x01"}},
		{"all", operation.GetAll(), []string{"a", "dir/1", "dir/2", "dir0", "z", "\xff\xff", "\xff\xff\x01"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			resp, err := d.Range(ctx, tt.request)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, keys(resp.KeyValues))
			assert.Equal(t, int64(len(tt.expected)), resp.Count)
			assert.False(t, resp.More)
		})
	}
}

func TestRange_LimitSortAndProjection(t *testing.T) {
	t.Parallel()

	d := dummy.New()
	ctx := context.Background()

	put(t, d, "c", "1")
	put(t, d, "a", "3")
	put(t, d, "b", "2")
	put(t, d, "c", "4")

	resp, err := d.Range(ctx, operation.GetAll(operation.WithLimit(2)))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, keys(resp.KeyValues))
	assert.Equal(t, int64(3), resp.Count)
	assert.True(t, resp.More)

	resp, err = d.Range(ctx, operation.GetAll(operation.WithSort(operation.SortByKey, operation.SortDescend)))
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "b", "a"}, keys(resp.KeyValues))

	resp, err = d.Range(ctx, operation.GetAll(operation.WithSort(operation.SortByValue, operation.SortNone)))
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a", "c"}, keys(resp.KeyValues))

	resp, err = d.Range(ctx, operation.GetAll(operation.WithSort(operation.SortByCreateRevision, operation.SortAscend)))
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "a", "b"}, keys(resp.KeyValues))

	resp, err = d.Range(ctx, operation.GetAll(operation.WithSort(operation.SortByVersion, operation.SortDescend)))
	require.NoError(t, err)
	assert.Equal(t, "c", string(resp.KeyValues[0].Key))

	resp, err = d.Range(ctx, operation.GetAll(operation.WithKeysOnly()))
	require.NoError(t, err)
	require.Len(t, resp.KeyValues, 3)

	for _, record := range resp.KeyValues {
		assert.Empty(t, record.Value)
	}

	resp, err = d.Range(ctx, operation.GetAll(operation.WithCountOnly()))
	require.NoError(t, err)
	assert.Empty(t, resp.KeyValues)
	assert.Equal(t, int64(3), resp.Count)

	resp, err = d.Range(ctx, operation.GetAll(operation.WithModRevisionBetween(4, 0)))
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c"}, keys(resp.KeyValues))

	resp, err = d.Range(ctx, operation.GetAll(operation.WithCreateRevisionBetween(0, 2)))
	require.NoError(t, err)
	assert.Equal(t, []string{"c"}, keys(resp.KeyValues))
}

func TestRange_Revision(t *testing.T) {
	t.Parallel()

	d := dummy.New()
	ctx := context.Background()

	put(t, d, "a", "1") // revision 2
	put(t, d, "a", "2") // revision 3

	_, err := d.Delete(ctx, operation.DeleteKey([]byte("a"))) // revision 4
	require.NoError(t, err)

	tests := []struct {
		revision int64
		expected []string
	}{
		{1, []string{}},
		{2, []string{"1"}},
		{3, []string{"2"}},
		{4, []string{}},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.revision), func(t *testing.T) {
			t.Parallel()

			resp, err := d.Range(ctx, operation.GetKey([]byte("a"), operation.WithRevision(tt.revision)))
			require.NoError(t, err)

			values := make([]string, 0, len(resp.KeyValues))
			for _, record := range resp.KeyValues {
				values = append(values, record.ValueString())
			}

			assert.Equal(t, tt.expected, values)
		})
	}

	_, err = d.Range(ctx, operation.GetKey([]byte("a"), operation.WithRevision(100)))
	require.True(t, driver.IsCode(err, driver.CodeFutureRevision))
}

func TestDelete(t *testing.T) {
	t.Parallel()

	d := dummy.New()
	ctx := context.Background()

	put(t, d, "dir/1", "1")
	put(t, d, "dir/2", "2")
	put(t, d, "other", "3")

	resp, err := d.Delete(ctx, operation.DeletePrefix([]byte("dir/"), operation.WithPrevKVs()))
	require.NoError(t, err)
	assert.Equal(t, int64(2), resp.Deleted)
	assert.Equal(t, []string{"dir/1", "dir/2"}, keys(resp.PrevKVs))
	assert.Equal(t, int64(5), resp.Header.Revision)

	resp, err = d.Delete(ctx, operation.DeleteKey([]byte("missing")))
	require.NoError(t, err)
	assert.Equal(t, int64(0), resp.Deleted)
	assert.Nil(t, resp.PrevKVs)
	assert.Equal(t, int64(5), resp.Header.Revision, "no-op delete does not create a revision")

	put(t, d, "dir/1", "again")

	rng, err := d.Range(ctx, operation.GetKey([]byte("dir/1")))
	require.NoError(t, err)
	require.Len(t, rng.KeyValues, 1)
	assert.Equal(t, int64(1), rng.KeyValues[0].Version, "recreated key starts over")
	assert.Equal(t, int64(6), rng.KeyValues[0].CreateRevision)

	resp, err = d.Delete(ctx, operation.DeleteAll())
	require.NoError(t, err)
	assert.Equal(t, int64(2), resp.Deleted)
}

func versionTxn(key []byte) operation.TxnRequest {
	return operation.Txn(
		[]predicate.Predicate{predicate.VersionEqual(key, 1)},
		[]operation.Operation{operation.Put(key, []byte("v2"))},
		[]operation.Operation{operation.GetKey(key)},
	)
}

func TestTxn_CompareAndBranch(t *testing.T) {
	t.Parallel()

	d := dummy.New()
	ctx := context.Background()
	key := []byte("key")

	put(t, d, "key", "v1")

	resp, err := d.Txn(ctx, versionTxn(key))
	require.NoError(t, err)
	assert.True(t, resp.Succeeded)
	require.Len(t, resp.Responses, 1)
	assert.Equal(t, operation.TypePut, resp.Responses[0].Type())

	// The version is 2 now, so the failure branch runs.
	resp, err = d.Txn(ctx, versionTxn(key))
	require.NoError(t, err)
	assert.False(t, resp.Succeeded)
	require.Len(t, resp.Responses, 1)
	assert.Equal(t, operation.TypeGet, resp.Responses[0].Type())

	rng, ok := resp.Range(0)
	require.True(t, ok)

	record, ok := rng.First()
	require.True(t, ok)
	assert.Equal(t, "v2", record.ValueString())
	assert.Equal(t, int64(2), record.Version)
}

func TestTxn_EmptyCompareRunsSuccess(t *testing.T) {
	t.Parallel()

	d := dummy.New()

	resp, err := d.Txn(context.Background(), operation.Txn(nil, []operation.Operation{operation.GetAll()}, nil))
	require.NoError(t, err)
	assert.True(t, resp.Succeeded)
	assert.Len(t, resp.Responses, 1)
}

func TestTxn_BranchSeesEarlierWritesAndSharesRevision(t *testing.T) {
	t.Parallel()

	d := dummy.New()
	ctx := context.Background()

	_, err := d.Put(ctx, operation.Put([]byte("c"), []byte("0")))
	require.NoError(t, err)

	resp, err := d.Txn(ctx, operation.Txn(nil, []operation.Operation{
		operation.Put([]byte("a"), []byte("1")),
		operation.Put([]byte("b"), []byte("2")),
		operation.GetAll(),
		operation.DeleteKey([]byte("c"), operation.WithPrevKVs()),
	}, nil))
	require.NoError(t, err)
	require.Len(t, resp.Responses, 4)
	assert.Equal(t, int64(3), resp.Header.Revision)

	rng, ok := resp.Range(2)
	require.True(t, ok)
	assert.Equal(t, []string{"a", "b", "c"}, keys(rng.KeyValues))
	assert.Equal(t, int64(3), rng.Header.Revision)

	del, ok := resp.Delete(3)
	require.True(t, ok)
	assert.Equal(t, int64(1), del.Deleted)

	after, err := d.Range(ctx, operation.GetAll())
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, keys(after.KeyValues))
}

func TestTxn_DuplicateKeyRejected(t *testing.T) {
	t.Parallel()

	key := []byte("dir/a")

	tests := []struct {
		name string
		ops  []operation.Operation
	}{
		{"put twice", []operation.Operation{
			operation.Put(key, []byte("1")),
			operation.Put(key, []byte("2")),
		}},
		{"delete after put", []operation.Operation{
			operation.Put(key, []byte("1")),
			operation.DeletePrefix([]byte("dir/")),
		}},
		{"put after delete", []operation.Operation{
			operation.DeletePrefix([]byte("dir/")),
			operation.Put(key, []byte("1")),
		}},
		{"put in nested txn", []operation.Operation{
			operation.Put(key, []byte("1")),
			operation.Txn(nil, []operation.Operation{operation.Put(key, []byte("2"))}, nil),
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			d := dummy.New()
			ctx := context.Background()

			_, err := d.Put(ctx, operation.Put(key, []byte("0")))
			require.NoError(t, err)

			_, err = d.Txn(ctx, operation.Txn(nil, tt.ops, nil))
			require.True(t, driver.IsCode(err, driver.CodeInvalidArgument))
			assert.Equal(t, int64(2), d.Revision())

			resp, err := d.Range(ctx, operation.GetKey(key))
			require.NoError(t, err)
			require.Len(t, resp.KeyValues, 1)
			assert.Equal(t, int64(1), resp.KeyValues[0].Version)
			assert.Equal(t, "0", resp.KeyValues[0].ValueString())
		})
	}
}

func TestTxn_OverlappingDeletesAllowed(t *testing.T) {
	t.Parallel()

	d := dummy.New()
	ctx := context.Background()

	_, err := d.Put(ctx, operation.Put([]byte("dir/a"), []byte("1")))
	require.NoError(t, err)

	resp, err := d.Txn(ctx, operation.Txn(nil, []operation.Operation{
		operation.DeletePrefix([]byte("dir/")),
		operation.DeleteKey([]byte("dir/a")),
		operation.Put([]byte("other"), []byte("2")),
	}, nil))
	require.NoError(t, err)

	first, ok := resp.Delete(0)
	require.True(t, ok)
	assert.Equal(t, int64(1), first.Deleted)

	second, ok := resp.Delete(1)
	require.True(t, ok)
	assert.Equal(t, int64(0), second.Deleted)
}

func TestTxn_Nested(t *testing.T) {
	t.Parallel()

	d := dummy.New()
	ctx := context.Background()
	key := []byte("nested")

	inner := operation.Txn(
		[]predicate.Predicate{predicate.VersionEqual(key, 1)},
		[]operation.Operation{operation.GetKey(key)},
		[]operation.Operation{operation.DeleteKey(key)},
	)

	outer := operation.Txn(
		[]predicate.Predicate{predicate.VersionEqual(key, 0)},
		[]operation.Operation{operation.Put(key, []byte("x")), inner},
		nil,
	)

	resp, err := d.Txn(ctx, outer)
	require.NoError(t, err)
	assert.True(t, resp.Succeeded)
	require.Len(t, resp.Responses, 2)

	nested, ok := resp.Txn(1)
	require.True(t, ok)
	assert.True(t, nested.Succeeded)
	require.Len(t, nested.Responses, 1)
	assert.Equal(t, operation.TypeGet, nested.Responses[0].Type())
	assert.Equal(t, resp.Header, nested.Header)
}

func TestTxn_FailureIsAtomic(t *testing.T) {
	t.Parallel()

	d := dummy.New()
	ctx := context.Background()

	_, err := d.Txn(ctx, operation.Txn(nil, []operation.Operation{
		operation.Put([]byte("a"), []byte("1")),
		operation.Put([]byte("missing"), nil, operation.WithIgnoreValue()),
	}, nil))
	require.True(t, driver.IsCode(err, driver.CodeKeyNotFound))

	resp, err := d.Range(ctx, operation.GetAll())
	require.NoError(t, err)
	assert.Empty(t, resp.KeyValues)
	assert.Equal(t, int64(1), d.Revision())
}

func TestTxn_InvalidShape(t *testing.T) {
	t.Parallel()

	d := dummy.New()

	bad := predicate.New([]byte("k"), predicate.TargetValue, predicate.OpEqual, 1)
	_, err := d.Txn(context.Background(), operation.Txn([]predicate.Predicate{bad}, nil, nil))

	require.True(t, driver.IsCode(err, driver.CodeInvalidArgument))
	require.ErrorIs(t, err, predicate.ErrInvalidOperand)
}

func TestCompact(t *testing.T) {
	t.Parallel()

	d := dummy.New()
	ctx := context.Background()

	put(t, d, "a", "1") // 2
	put(t, d, "a", "2") // 3
	put(t, d, "b", "1") // 4

	_, err := d.Delete(ctx, operation.DeleteKey([]byte("b"))) // 5
	require.NoError(t, err)

	resp, err := d.Compact(ctx, operation.Compact(5))
	require.NoError(t, err)
	assert.Equal(t, int64(5), resp.Header.Revision)

	_, err = d.Range(ctx, operation.GetKey([]byte("a"), operation.WithRevision(2)))
	require.True(t, driver.IsCode(err, driver.CodeCompacted))

	rng, err := d.Range(ctx, operation.GetAll(operation.WithRevision(5)))
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, keys(rng.KeyValues))

	_, err = d.Compact(ctx, operation.Compact(5))
	require.True(t, driver.IsCode(err, driver.CodeCompacted))

	_, err = d.Compact(ctx, operation.Compact(50))
	require.True(t, driver.IsCode(err, driver.CodeFutureRevision))

	var storeErr driver.StoreError
	require.ErrorAs(t, err, &storeErr)
	assert.Equal(t, "Compact", storeErr.Op)
	assert.NotEmpty(t, storeErr.Detail)
}

func TestCanceledContext(t *testing.T) {
	t.Parallel()

	d := dummy.New()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := d.Put(ctx, operation.Put([]byte("a"), []byte("1")))
	require.ErrorIs(t, err, context.Canceled)

	_, err = d.Range(ctx, operation.GetAll())
	require.ErrorIs(t, err, context.Canceled)

	_, err = d.Compact(ctx, operation.Compact(1))
	require.ErrorIs(t, err, context.Canceled)

	assert.Equal(t, int64(1), d.Revision())
}

func TestReturnedValuesAreDetached(t *testing.T) {
	t.Parallel()

	d := dummy.New()
	ctx := context.Background()

	put(t, d, "a", "value")

	resp, err := d.Range(ctx, operation.GetKey([]byte("a")))
	require.NoError(t, err)

	resp.KeyValues[0].Value[0] = 'X'

	resp, err = d.Range(ctx, operation.GetKey([]byte("a")))
	require.NoError(t, err)
	assert.Equal(t, "value", resp.KeyValues[0].ValueString())
}

func TestConcurrentIncrements(t *testing.T) {
	t.Parallel()

	d := dummy.New()
	ctx := context.Background()
	key := []byte("counter")

	const workers = 8

	var wg sync.WaitGroup

	for range workers {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for {
				rng, err := d.Range(ctx, operation.GetKey(key))
				if !assert.NoError(t, err) {
					return
				}

				var version int64
				if record, ok := rng.First(); ok {
					version = record.Version
				}

				resp, err := d.Txn(ctx, operation.Txn(
					[]predicate.Predicate{predicate.VersionEqual(key, version)},
					[]operation.Operation{operation.Put(key, []byte("x"))},
					nil,
				))
				if !assert.NoError(t, err) || resp.Succeeded {
					return
				}
			}
		}()
	}

	wg.Wait()

	rng, err := d.Range(ctx, operation.GetKey(key))
	require.NoError(t, err)
	require.Len(t, rng.KeyValues, 1)
	assert.Equal(t, int64(workers), rng.KeyValues[0].Version)
}

func TestConcurrentWritesReportOwnRevision(t *testing.T) {
	t.Parallel()

	d := dummy.New()
	ctx := context.Background()

	const (
		workers = 8
		writes  = 50
	)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		revisions = make(map[string]int64, workers*writes)
	)

	for w := range workers {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for i := range writes {
				key := fmt.Sprintf("w%d/%d", w, i)

				resp, err := d.Put(ctx, operation.Put([]byte(key), []byte("x")))
				if !assert.NoError(t, err) {
					return
				}

				mu.Lock()
				revisions[key] = resp.Header.Revision
				mu.Unlock()
			}
		}()
	}

	wg.Wait()

	rng, err := d.Range(ctx, operation.GetAll())
	require.NoError(t, err)
	require.Len(t, rng.KeyValues, workers*writes)

	seen := make(map[int64]bool, len(rng.KeyValues))

	for _, record := range rng.KeyValues {
		assert.Equal(t, record.ModRevision, revisions[record.KeyString()], "header of %s", record.KeyString())
		assert.False(t, seen[record.ModRevision])
		seen[record.ModRevision] = true
	}
}
