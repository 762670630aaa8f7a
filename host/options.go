package host

import (
	"log/slog"

	"github.com/reglet-dev/reglet-abi/abi"
	"github.com/reglet-dev/reglet-abi/domain/ports"
	"github.com/reglet-dev/reglet-abi/hostfuncs"
	abiwazero "github.com/reglet-dev/reglet-abi/infrastructure/wazero"
	"github.com/reglet-dev/reglet-abi/internal/handles"
)

// contextConfig holds the settings NewContext builds a table from.
type contextConfig struct {
	logger     *slog.Logger
	fatal      func(msg string)
	name       string
	version    int
	maxHandles int
	debug      bool
}

func defaultContextConfig() contextConfig {
	return contextConfig{
		name:       "reglet-abi",
		version:    abi.CurrentVersion,
		maxHandles: handles.DefaultLimit,
	}
}

// ContextOption configures a context created by NewContext.
type ContextOption func(*contextConfig)

// WithVersion selects the table version. Fields newer than v stay zero.
func WithVersion(v int) ContextOption {
	return func(c *contextConfig) {
		c.version = v
	}
}

// WithDebug enables stale-handle and cross-context detection, origin
// tracking and leak reports at CloseContext.
func WithDebug(enabled bool) ContextOption {
	return func(c *contextConfig) {
		c.debug = enabled
	}
}

// WithMaxHandles caps the number of live handles. Hitting the cap raises
// MemoryError.
func WithMaxHandles(n int) ContextOption {
	return func(c *contextConfig) {
		c.maxHandles = n
	}
}

// WithLogger sets the logger used for unraisable errors, leaks and fatal
// errors. The default is slog.Default().
func WithLogger(l *slog.Logger) ContextOption {
	return func(c *contextConfig) {
		c.logger = l
	}
}

// WithFatalHandler replaces the process exit performed by FatalError. The
// slot still never returns: after fn returns it panics with *errors.FatalError.
func WithFatalHandler(fn func(msg string)) ContextOption {
	return func(c *contextConfig) {
		c.fatal = fn
	}
}

// WithName sets abi.Context.Name.
func WithName(name string) ContextOption {
	return func(c *contextConfig) {
		c.name = name
	}
}

// Option defines a functional option for configuring the Executor.
type Option func(*Executor)

// WithHostFunctions configures the executor with the wasm-facing slot
// registry. The default exports every slot.
func WithHostFunctions(registry *hostfuncs.HandlerRegistry) Option {
	return func(e *Executor) {
		e.handlers = registry
	}
}

// WithExtensions sets the registry Go extensions are resolved from.
func WithExtensions(registry ports.ExtensionRegistry) Option {
	return func(e *Executor) {
		e.extensions = registry
	}
}

// WithContextOptions passes options to the executor's context.
func WithContextOptions(opts ...ContextOption) Option {
	return func(e *Executor) {
		e.contextOpts = append(e.contextOpts, opts...)
	}
}

// WithLoader replaces the manifest loader. The default checks manifests
// against the executor's context version.
func WithLoader(l *Loader) Option {
	return func(e *Executor) {
		e.loader = l
	}
}

// WithWasmOptions passes options to the wazero adapter, after the executor's
// own logger and log_message handler.
func WithWasmOptions(opts ...abiwazero.AdapterOption) Option {
	return func(e *Executor) {
		e.wasmOpts = append(e.wasmOpts, opts...)
	}
}
