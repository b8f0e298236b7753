package capture

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/chainspec/chainspec/packages/builtin"
)

var placeholderPattern = regexp.MustCompile(`\{\{([^}]+)\}\}`)

// WarnFunc is called for placeholders that cannot be resolved.
type WarnFunc func(format string, args ...any)

// Resolver expands {{...}} placeholders in request paths, headers, and
// bodies. An expression resolves, in order, to: an OS environment variable
// ({{$VAR}}), a builtin function call ({{uuid()}}), or a captured value from
// the run's store.
type Resolver struct {
	store    *Store
	funcs    *builtin.Registry
	warnFunc WarnFunc
}

func NewResolver(store *Store) *Resolver {
	return &Resolver{
		store: store,
		funcs: builtin.NewRegistry(),
	}
}

// SetWarnFunc sets a function to be called when a placeholder stays
// unresolved.
func (r *Resolver) SetWarnFunc(fn WarnFunc) {
	r.warnFunc = fn
}

func (r *Resolver) warn(format string, args ...any) {
	if r.warnFunc != nil {
		r.warnFunc(format, args...)
	}
}

func (r *Resolver) Resolve(input string) string {
	return placeholderPattern.ReplaceAllStringFunc(input, func(match string) string {
		expr := strings.TrimSpace(match[2 : len(match)-2])

		if strings.HasPrefix(expr, "$") {
			envVar := expr[1:]
			if val := os.Getenv(envVar); val != "" {
				return val
			}
			r.warn("unresolved environment variable: $%s", envVar)
			return match
		}

		if strings.Contains(expr, "(") {
			if result, ok := r.funcs.Call(expr); ok {
				return fmt.Sprintf("%v", result)
			}
			r.warn("unresolved function call: %s", expr)
			return match
		}

		if val, ok := r.store.GetString(expr); ok {
			return val
		}

		r.warn("unresolved capture: %s", expr)
		return match
	})
}

// ResolveAll resolves every value of a string map.
func (r *Resolver) ResolveAll(values map[string]string) map[string]string {
	result := make(map[string]string, len(values))
	for k, v := range values {
		result[k] = r.Resolve(v)
	}
	return result
}
