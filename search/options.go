// ABOUTME: Functional options shared by Search and Navigator: starting scope, depth guard, trace hook.
// ABOUTME: The depth guard turns an unexpectedly long backward walk into a non-match.
package search

// DefaultMaxDepth bounds the number of links a single backward walk follows.
const DefaultMaxDepth = 256

// Option configures a Search or Navigator.
type Option func(*options)

type options struct {
	scope    Scope
	maxDepth int
	logf     func(format string, args ...any)
}

// WithScope sets the scope the walk starts in, for ports inside a group graph.
func WithScope(s Scope) Option {
	return func(o *options) { o.scope = s.Clone() }
}

// WithMaxDepth overrides DefaultMaxDepth. Values below 1 keep the default.
func WithMaxDepth(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxDepth = n
		}
	}
}

// WithTrace installs a hook receiving one line per traversal step.
func WithTrace(logf func(format string, args ...any)) Option {
	return func(o *options) { o.logf = logf }
}

func newOptions(opts []Option) options {
	o := options{maxDepth: DefaultMaxDepth}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (o *options) tracef(format string, args ...any) {
	if o.logf != nil {
		o.logf(format, args...)
	}
}
