package hostfuncs

import (
	"context"
	"fmt"
	"sort"

	"github.com/reglet-dev/reglet-abi/abi"
)

// HandlerRegistry is an immutable collection of imports.
// Once created via NewRegistry, imports cannot be added or removed, so
// lookups during execution need no locking.
type HandlerRegistry struct {
	funcs      map[string]HostFunc
	names      []string // sorted for consistent iteration
	middleware []Middleware
}

// registryBuilder accumulates configuration during registry construction.
type registryBuilder struct {
	funcs      map[string]HostFunc
	middleware []Middleware
	errors     []error
}

// NewRegistry creates an immutable HandlerRegistry with the given options.
// Returns an error if any import name is registered twice.
//
// Example usage:
//
//	registry, err := NewRegistry(
//	    WithMiddleware(PanicRecoveryMiddleware()),
//	    WithBundle(AllBundles()),
//	)
func NewRegistry(opts ...RegistryOption) (*HandlerRegistry, error) {
	b := &registryBuilder{
		funcs: make(map[string]HostFunc),
	}

	for _, opt := range opts {
		opt(b)
	}

	if len(b.errors) > 0 {
		return nil, b.errors[0]
	}

	names := make([]string, 0, len(b.funcs))
	for name := range b.funcs {
		names = append(names, name)
	}
	sort.Strings(names)

	// Apply middleware in reverse order so the first one wraps outermost.
	wrapped := make(map[string]HostFunc, len(b.funcs))
	for name, fn := range b.funcs {
		h := fn.Handler
		for i := len(b.middleware) - 1; i >= 0; i-- {
			h = b.middleware[i](h)
		}
		fn.Handler = h
		wrapped[name] = fn
	}

	return &HandlerRegistry{
		funcs:      wrapped,
		names:      names,
		middleware: b.middleware,
	}, nil
}

// Invoke dispatches an import by name. call.Function is set to name.
func (r *HandlerRegistry) Invoke(ctx context.Context, name string, call *Call) error {
	fn, ok := r.funcs[name]
	if !ok {
		return &NotFoundError{Name: name}
	}
	call.Function = name
	return fn.Handler(ctx, call)
}

// Has returns true if an import with the given name is registered.
func (r *HandlerRegistry) Has(name string) bool {
	_, ok := r.funcs[name]
	return ok
}

// Lookup returns the import registered under name, with middleware applied.
func (r *HandlerRegistry) Lookup(name string) (HostFunc, bool) {
	fn, ok := r.funcs[name]
	return fn, ok
}

// Names returns a sorted list of all registered import names.
func (r *HandlerRegistry) Names() []string {
	result := make([]string, len(r.names))
	copy(result, r.names)
	return result
}

// Available returns the imports a context of the given version provides,
// sorted by name.
func (r *HandlerRegistry) Available(version int) []HostFunc {
	var out []HostFunc
	for _, name := range r.names {
		if fn := r.funcs[name]; fn.Since <= version {
			out = append(out, fn)
		}
	}
	return out
}

// addFunc registers fn under its name. Since defaults to the version that
// introduced the context field of the same name.
func (b *registryBuilder) addFunc(fn HostFunc) error {
	if fn.Name == "" {
		return fmt.Errorf("handler name cannot be empty")
	}
	if fn.Handler == nil {
		return fmt.Errorf("handler %q has no implementation", fn.Name)
	}
	if _, exists := b.funcs[fn.Name]; exists {
		return fmt.Errorf("duplicate handler name: %q", fn.Name)
	}
	if fn.Since == 0 {
		fn.Since = abi.Version1
		if info, ok := abi.Lookup(fn.Name); ok {
			fn.Since = info.Since
		}
	}
	b.funcs[fn.Name] = fn
	return nil
}

// WithFunc registers a single import.
func WithFunc(fn HostFunc) RegistryOption {
	return func(b *registryBuilder) {
		if err := b.addFunc(fn); err != nil {
			b.errors = append(b.errors, err)
		}
	}
}

// WithMiddleware adds middleware to the registry.
// Middleware executes in FIFO order (first added wraps first).
func WithMiddleware(mw ...Middleware) RegistryOption {
	return func(b *registryBuilder) {
		b.middleware = append(b.middleware, mw...)
	}
}
