// Package options implements the functional options shared by the request
// constructors and the client.
package options

// OptionConstructor returns the defaults an option set starts from.
type OptionConstructor[T any] func() T

// OptionCallback mutates one field of an option set.
type OptionCallback[T any] func(*T)

// ApplyOptions builds an option set: the defaults from constructor (or the
// zero value when it is nil) with every callback applied in order.
func ApplyOptions[T any](constructor OptionConstructor[T], cbs []OptionCallback[T]) T {
	var opts T

	if constructor != nil {
		opts = constructor()
	}

	for _, cb := range cbs {
		if cb != nil {
			cb(&opts)
		}
	}

	return opts
}
