package operation

import (
	"errors"
	"fmt"
)

// ErrUnknownOperation is returned when a branch holds an unsupported operation.
var ErrUnknownOperation = errors.New("unknown operation")

// ShapeError reports a malformed transaction, Path points to the offending element.
type ShapeError struct {
	Path string
	Err  error
}

// Error returns the error message.
func (e ShapeError) Error() string {
	return fmt.Sprintf("invalid transaction at %s: %s", e.Path, e.Err)
}

// Unwrap returns the underlying cause.
func (e ShapeError) Unwrap() error {
	return e.Err
}

func nestShapeError(path string, err error) error {
	var shapeErr ShapeError
	if errors.As(err, &shapeErr) {
		return ShapeError{Path: path + "." + shapeErr.Path, Err: shapeErr.Err}
	}

	return ShapeError{Path: path, Err: err}
}
