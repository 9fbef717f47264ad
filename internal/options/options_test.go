package options_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/tarantool/go-kvclient/internal/options"
)

type requestOptions struct {
	limit   int64
	prevKV  bool
	timeout time.Duration
}

func defaults() requestOptions {
	return requestOptions{limit: 0, prevKV: false, timeout: time.Second}
}

func withLimit(limit int64) options.OptionCallback[requestOptions] {
	return func(o *requestOptions) { o.limit = limit }
}

func withPrevKV() options.OptionCallback[requestOptions] {
	return func(o *requestOptions) { o.prevKV = true }
}

func withTimeout(timeout time.Duration) options.OptionCallback[requestOptions] {
	return func(o *requestOptions) { o.timeout = timeout }
}

func TestApplyOptions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		constructor options.OptionConstructor[requestOptions]
		callbacks   []options.OptionCallback[requestOptions]
		expected    requestOptions
	}{
		{
			name:        "zero value without constructor",
			constructor: nil,
			callbacks:   nil,
			expected:    requestOptions{}, //nolint:exhaustruct
		},
		{
			name:        "defaults",
			constructor: defaults,
			callbacks:   []options.OptionCallback[requestOptions]{},
			expected:    defaults(),
		},
		{
			name:        "callbacks over zero value",
			constructor: nil,
			callbacks:   []options.OptionCallback[requestOptions]{withLimit(10), withPrevKV()},
			expected:    requestOptions{limit: 10, prevKV: true, timeout: 0},
		},
		{
			name:        "callbacks over defaults",
			constructor: defaults,
			callbacks:   []options.OptionCallback[requestOptions]{withPrevKV()},
			expected:    requestOptions{limit: 0, prevKV: true, timeout: time.Second},
		},
		{
			name:        "last callback wins",
			constructor: defaults,
			callbacks: []options.OptionCallback[requestOptions]{
				withTimeout(time.Minute),
				withLimit(1),
				withTimeout(3 * time.Second),
			},
			expected: requestOptions{limit: 1, prevKV: false, timeout: 3 * time.Second},
		},
		{
			name:        "nil callbacks are skipped",
			constructor: defaults,
			callbacks:   []options.OptionCallback[requestOptions]{nil, withLimit(5), nil},
			expected:    requestOptions{limit: 5, prevKV: false, timeout: time.Second},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.expected, options.ApplyOptions(tt.constructor, tt.callbacks))
		})
	}
}

func TestApplyOptions_ConstructorCalledPerApply(t *testing.T) {
	t.Parallel()

	shared := []options.OptionCallback[[]string]{
		func(s *[]string) { *s = append(*s, "b") },
	}

	constructor := func() []string { return []string{"a"} }

	first := options.ApplyOptions(constructor, shared)
	second := options.ApplyOptions(constructor, shared)

	assert.Equal(t, []string{"a", "b"}, first)
	assert.Equal(t, []string{"a", "b"}, second)
}
