// Package testing provides test doubles shared by the package tests and examples.
package testing

import (
	"fmt"
	"os"
)

// T is the subset of testing.TB used by the test doubles.
type T interface {
	Helper()
	Log(args ...any)
	Logf(format string, args ...any)
	Fatalf(format string, args ...any)
	Errorf(format string, args ...any)
}

// DummyT is an implementation of T to use in examples, where no
// testing.T is available. Failures panic.
type DummyT struct{}

var _ T = DummyT{}

// NewT returns a new dummy T instance.
func NewT() DummyT {
	return DummyT{}
}

// Helper does nothing.
func (DummyT) Helper() {}

// Log prints to stderr.
func (DummyT) Log(args ...any) {
	_, _ = fmt.Fprintln(os.Stderr, args...)
}

// Logf prints to stderr.
func (DummyT) Logf(format string, args ...any) {
	_, _ = fmt.Fprintf(os.Stderr, format, args...)
}

// Fatalf panics with the formatted message.
func (DummyT) Fatalf(format string, args ...any) {
	panic("fatal error: " + fmt.Sprintf(format, args...))
}

// Errorf panics with the formatted message.
func (DummyT) Errorf(format string, args ...any) {
	panic("error: " + fmt.Sprintf(format, args...))
}
