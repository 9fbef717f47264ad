package tkv

import (
	"fmt"

	"github.com/tarantool/go-kvclient/driver"
	"github.com/tarantool/go-kvclient/operation"
)

// DecodingError represents an error that occurs during decoding operations.
type DecodingError struct {
	ObjectType string
	Text       string
	Err        error
}

// Error returns the error message.
func (e DecodingError) Error() string {
	suffix := e.ObjectType
	if e.Text != "" {
		suffix = fmt.Sprintf("%s, %s", suffix, e.Text)
	}

	return fmt.Sprintf("failed to decode %s: %s", suffix, e.Err)
}

func (e DecodingError) Unwrap() error {
	return e.Err
}

// EncodingError represents an error that occurs during encoding operations.
type EncodingError struct {
	ObjectType string
	Text       string
	Err        error
}

// Error returns the error message.
func (e EncodingError) Error() string {
	if e.Text == "" {
		return fmt.Sprintf("failed to encode %s: %s", e.ObjectType, e.Err)
	}

	return fmt.Sprintf("failed to encode %s, %s: %s", e.ObjectType, e.Text, e.Err)
}

func (e EncodingError) Unwrap() error {
	return e.Err
}

func errEncodeOperation(text string, err error) error {
	return EncodingError{ObjectType: "tkvOperation", Text: text, Err: err}
}

func errEncodePredicate(text string, err error) error {
	return EncodingError{ObjectType: "tkvPredicate", Text: text, Err: err}
}

// errUnsupported reports a request the Tarantool config storage cannot express.
func errUnsupported(op operation.Type, detail string) error {
	return driver.StoreError{
		Op:     op.String(),
		Code:   driver.CodeUnsupported,
		Detail: detail,
		Err:    nil,
	}
}
