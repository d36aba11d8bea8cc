// Package filter matches log events against JMESPath expressions.
//
// An expression is evaluated over a plain document view of the event; an
// event matches when the result is truthy (anything but null, false, an
// empty string, an empty array or an empty map). Channels use filters to
// decide which events to forward.
package filter

import (
	"fmt"

	"github.com/jmespath/go-jmespath"

	"github.com/logpack/logpack-go/event"
)

// Filter is a compiled event predicate. Safe for concurrent use.
type Filter struct {
	expr     *jmespath.JMESPath
	original string
}

// Compile parses a JMESPath expression.
func Compile(expression string) (*Filter, error) {
	expr, err := jmespath.Compile(expression)
	if err != nil {
		return nil, fmt.Errorf("filter: compile %q: %w", expression, err)
	}
	return &Filter{expr: expr, original: expression}, nil
}

// String returns the original expression.
func (f *Filter) String() string {
	return f.original
}

// Match evaluates the filter against e.
func (f *Filter) Match(e event.Event) (bool, error) {
	result, err := f.expr.Search(document(e))
	if err != nil {
		return false, fmt.Errorf("filter: evaluate %q: %w", f.original, err)
	}
	return truthy(result), nil
}

// document is the event view expressions run against. The level is
// exposed both numerically (as a float, the JMESPath number type) and by
// name, so expressions can use ordering or equality as they prefer.
func document(e event.Event) map[string]any {
	return map[string]any{
		"level":      float64(e.Level),
		"level_name": e.Level.String(),
		"scope":      e.Scope,
		"message":    e.Message,
		"metadata":   e.Metadata,
	}
}

func truthy(v any) bool {
	switch v := v.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return v != ""
	case []any:
		return len(v) > 0
	case map[string]any:
		return len(v) > 0
	default:
		return true
	}
}
