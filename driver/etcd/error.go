package etcd

import (
	"errors"

	"go.etcd.io/etcd/api/v3/v3rpc/rpctypes"
	"google.golang.org/grpc/codes"

	"github.com/tarantool/go-kvclient/driver"
	"github.com/tarantool/go-kvclient/operation"
)

//nolint:gochecknoglobals
var knownErrors = []struct {
	err  error
	code driver.Code
}{
	{rpctypes.ErrCompacted, driver.CodeCompacted},
	{rpctypes.ErrFutureRev, driver.CodeFutureRevision},
	{rpctypes.ErrLeaseNotFound, driver.CodeLeaseNotFound},
	{rpctypes.ErrKeyNotFound, driver.CodeKeyNotFound},
}

// wrapError turns an error returned by the etcd client into a driver error.
// Rejections by the store become driver.StoreError, transport failures
// are returned unchanged.
func wrapError(op operation.Type, err error) error {
	var etcdErr rpctypes.EtcdError
	if !errors.As(err, &etcdErr) || isTransportCode(etcdErr.Code()) {
		return err
	}

	return driver.StoreError{
		Op:     op.String(),
		Code:   storeCode(err, etcdErr.Code()),
		Detail: etcdErr.Error(),
		Err:    err,
	}
}

func storeCode(err error, code codes.Code) driver.Code {
	for _, known := range knownErrors {
		if errors.Is(err, known.err) {
			return known.code
		}
	}

	switch code { //nolint:exhaustive
	case codes.InvalidArgument, codes.OutOfRange, codes.FailedPrecondition:
		return driver.CodeInvalidArgument
	case codes.Unimplemented:
		return driver.CodeUnsupported
	default:
		return driver.CodeUnknown
	}
}

func isTransportCode(code codes.Code) bool {
	switch code { //nolint:exhaustive
	case codes.Unavailable, codes.DeadlineExceeded, codes.Canceled:
		return true
	default:
		return false
	}
}
