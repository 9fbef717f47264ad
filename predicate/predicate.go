// Package predicate provides types and interfaces for conditional operations.
// It defines predicate logic used in transactional conditional execution.
//
// Predicates of one transaction are always combined with logical AND.
package predicate

import (
	"bytes"
	"cmp"
	"errors"
	"fmt"

	"github.com/tarantool/go-kvclient/kv"
)

var (
	// ErrInvalidOperand is returned when the operand type does not match the target.
	ErrInvalidOperand = errors.New("invalid predicate operand")
	// ErrUnknownTarget is returned for targets outside of the known set.
	ErrUnknownTarget = errors.New("unknown predicate target")
	// ErrUnknownOp is returned for operations outside of the known set.
	ErrUnknownOp = errors.New("unknown predicate operation")
)

// Predicate represents a condition used for conditional operations.
// Predicates are used in transactions to specify conditions for execution.
type Predicate struct {
	key    []byte
	target Target
	op     Op
	value  any
}

// New creates a predicate from its parts. Operand types are checked by
// Validate: []byte for TargetValue, kv.LeaseID for TargetLease, int64 otherwise.
func New(key []byte, target Target, op Op, value any) Predicate {
	if b, ok := value.([]byte); ok {
		value = bytes.Clone(b)
	}

	return Predicate{
		key:    bytes.Clone(key),
		target: target,
		op:     op,
		value:  value,
	}
}

// Value compares the value of the key.
func Value(key []byte, op Op, value []byte) Predicate {
	return New(key, TargetValue, op, value)
}

// Version compares the version of the key. A missing key has version 0.
func Version(key []byte, op Op, version int64) Predicate {
	return New(key, TargetVersion, op, version)
}

// CreateRevision compares the creation revision of the key.
func CreateRevision(key []byte, op Op, revision int64) Predicate {
	return New(key, TargetCreateRevision, op, revision)
}

// ModRevision compares the last modification revision of the key.
func ModRevision(key []byte, op Op, revision int64) Predicate {
	return New(key, TargetModRevision, op, revision)
}

// Lease compares the lease of the key.
func Lease(key []byte, op Op, lease kv.LeaseID) Predicate {
	return New(key, TargetLease, op, lease)
}

// ValueEqual checks that the key holds the given value.
func ValueEqual(key []byte, value []byte) Predicate {
	return Value(key, OpEqual, value)
}

// VersionEqual checks the version of the key, 0 means that the key does not exist.
func VersionEqual(key []byte, version int64) Predicate {
	return Version(key, OpEqual, version)
}

// ModRevisionEqual checks the last modification revision of the key.
func ModRevisionEqual(key []byte, revision int64) Predicate {
	return ModRevision(key, OpEqual, revision)
}

// Key returns the key that this predicate applies to.
func (p Predicate) Key() []byte {
	return bytes.Clone(p.key)
}

// Operation returns the comparison operation.
func (p Predicate) Operation() Op {
	return p.op
}

// Target returns what aspect of the key to compare.
func (p Predicate) Target() Target {
	return p.target
}

// Value returns the comparison operand.
func (p Predicate) Value() any {
	if b, ok := p.value.([]byte); ok {
		return bytes.Clone(b)
	}

	return p.value
}

// Validate checks that the target, the operation and the operand type fit together.
func (p Predicate) Validate() error {
	switch p.op {
	case OpEqual, OpNotEqual, OpGreater, OpLess:
	default:
		return fmt.Errorf("%w: %v", ErrUnknownOp, p.op)
	}

	switch p.target {
	case TargetValue:
		if _, ok := p.value.([]byte); !ok {
			return fmt.Errorf("%w: %v requires []byte, got %T", ErrInvalidOperand, p.target, p.value)
		}
	case TargetLease:
		if _, ok := p.value.(kv.LeaseID); !ok {
			return fmt.Errorf("%w: %v requires kv.LeaseID, got %T", ErrInvalidOperand, p.target, p.value)
		}
	case TargetVersion, TargetCreateRevision, TargetModRevision:
		if _, ok := p.value.(int64); !ok {
			return fmt.Errorf("%w: %v requires int64, got %T", ErrInvalidOperand, p.target, p.value)
		}
	default:
		return fmt.Errorf("%w: %v", ErrUnknownTarget, p.target)
	}

	return nil
}

// Evaluate checks the predicate against a key-value record; exists is false
// when the key is missing. A missing key has zero revisions, zero version
// and no lease, and never satisfies a value comparison.
// Storage drivers that evaluate transactions locally use it.
func (p Predicate) Evaluate(record kv.KeyValue, exists bool) bool {
	if p.Validate() != nil {
		return false
	}

	if !exists {
		record = kv.KeyValue{} //nolint:exhaustruct
	}

	switch p.target {
	case TargetValue:
		if !exists {
			return false
		}

		return p.op.Holds(bytes.Compare(record.Value, p.value.([]byte))) //nolint:forcetypeassert
	case TargetLease:
		return p.op.Holds(cmp.Compare(record.Lease, p.value.(kv.LeaseID))) //nolint:forcetypeassert
	case TargetVersion:
		return p.op.Holds(cmp.Compare(record.Version, p.value.(int64))) //nolint:forcetypeassert
	case TargetCreateRevision:
		return p.op.Holds(cmp.Compare(record.CreateRevision, p.value.(int64))) //nolint:forcetypeassert
	case TargetModRevision:
		return p.op.Holds(cmp.Compare(record.ModRevision, p.value.(int64))) //nolint:forcetypeassert
	default:
		return false
	}
}

func (p Predicate) String() string {
	return fmt.Sprintf("%v(%q) %v %v", p.target, p.key, p.op, p.value)
}
