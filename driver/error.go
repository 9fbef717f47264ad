package driver

import (
	"errors"
	"fmt"
)

// Code classifies a rejection reported by the store.
type Code int

const (
	// CodeUnknown is a rejection the driver could not classify.
	CodeUnknown Code = iota
	// CodeCompacted means that the requested revision has been compacted.
	CodeCompacted
	// CodeFutureRevision means that the requested revision is not reached yet.
	CodeFutureRevision
	// CodeLeaseNotFound means that the referenced lease does not exist.
	CodeLeaseNotFound
	// CodeKeyNotFound means that an update referenced a missing key.
	CodeKeyNotFound
	// CodeInvalidArgument means that the store rejected the request shape.
	CodeInvalidArgument
	// CodeUnsupported means that the store cannot express the request.
	CodeUnsupported
)

func (c Code) String() string {
	switch c {
	case CodeUnknown:
		return "Unknown"
	case CodeCompacted:
		return "Compacted"
	case CodeFutureRevision:
		return "FutureRevision"
	case CodeLeaseNotFound:
		return "LeaseNotFound"
	case CodeKeyNotFound:
		return "KeyNotFound"
	case CodeInvalidArgument:
		return "InvalidArgument"
	case CodeUnsupported:
		return "Unsupported"
	default:
		return fmt.Sprintf("Code(%d)", int(c))
	}
}

// StoreError is returned when the store rejects an operation.
// Transport failures are never reported as StoreError.
type StoreError struct {
	// Op is the kind of the rejected operation.
	Op string
	// Code classifies the rejection.
	Code Code
	// Detail is the store's own description.
	Detail string
	// Err is the original error, if any.
	Err error
}

// Error returns the error message.
func (e StoreError) Error() string {
	return fmt.Sprintf("store rejected %s (%s): %s", e.Op, e.Code, e.Detail)
}

// Unwrap returns the original error.
func (e StoreError) Unwrap() error {
	return e.Err
}

// IsCode reports whether err is a StoreError with the given code.
func IsCode(err error, code Code) bool {
	var storeErr StoreError

	return errors.As(err, &storeErr) && storeErr.Code == code
}
