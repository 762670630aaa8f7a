package wazero

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/reglet-dev/reglet-abi/abi"
	"github.com/reglet-dev/reglet-abi/hostfuncs"
	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
)

// DefaultModuleName is the import module guests link the context against.
const DefaultModuleName = "abi_ctx"

// AdapterConfig holds configuration for the wazero adapter.
type AdapterConfig struct {
	// Logger receives import failures. Default is slog.Default().
	Logger *slog.Logger

	// ModuleName is the host module name (default: "abi_ctx").
	ModuleName string

	// CustomHandlers adds wazero-specific imports that are not context
	// slots, such as log_message.
	CustomHandlers []CustomHandler

	// MaxStringSize limits strings and arrays read from guest memory.
	// Default is 1MB.
	MaxStringSize uint32
}

// CustomHandler is an import that bypasses the slot registry.
type CustomHandler struct {
	// Handler is the wazero GoModuleFunc implementation.
	Handler api.GoModuleFunc

	// Name is the exported function name.
	Name string

	// ParamTypes are the WASM parameter types.
	ParamTypes []api.ValueType

	// ResultTypes are the WASM result types.
	ResultTypes []api.ValueType
}

// AdapterOption configures the adapter.
type AdapterOption func(*AdapterConfig)

// WithModuleName sets the host module name.
func WithModuleName(name string) AdapterOption {
	return func(c *AdapterConfig) {
		c.ModuleName = name
	}
}

// WithMaxStringSize sets the maximum string or array size read from guest
// memory.
func WithMaxStringSize(size uint32) AdapterOption {
	return func(c *AdapterConfig) {
		c.MaxStringSize = size
	}
}

// WithCustomHandler adds a custom wazero handler.
func WithCustomHandler(h CustomHandler) AdapterOption {
	return func(c *AdapterConfig) {
		c.CustomHandlers = append(c.CustomHandlers, h)
	}
}

// WithLogger sets the logger import failures are reported to.
func WithLogger(l *slog.Logger) AdapterOption {
	return func(c *AdapterConfig) {
		c.Logger = l
	}
}

func defaultAdapterConfig() AdapterConfig {
	return AdapterConfig{
		ModuleName:    DefaultModuleName,
		MaxStringSize: hostfuncs.DefaultMaxStringSize,
	}
}

// RegisterWithRuntime instantiates a host module exposing every import of
// registry that abiCtx's version provides. Each import is bound to abiCtx.
//
// A failing import traps the calling guest: the error is logged and raised
// as a panic, which wazero returns from the guest call wrapped with %w.
// Contract violations propagate the same way, so callers can still find a
// *errors.ContractViolation with errors.As.
//
// Example:
//
//	registry, _ := hostfuncs.NewRegistry(
//	    hostfuncs.WithBundle(hostfuncs.AllBundles()),
//	)
//	err := wazero.RegisterWithRuntime(ctx, runtime, abiCtx, registry)
func RegisterWithRuntime(ctx context.Context, runtime wazero.Runtime, abiCtx *abi.Context, registry *hostfuncs.HandlerRegistry, opts ...AdapterOption) error {
	if abiCtx == nil || registry == nil {
		return fmt.Errorf("wazero: context and registry are required")
	}

	cfg := defaultAdapterConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	builder := runtime.NewHostModuleBuilder(cfg.ModuleName)

	for _, fn := range registry.Available(abiCtx.Version) {
		name := fn.Name
		builder.NewFunctionBuilder().
			WithGoModuleFunction(api.GoModuleFunc(func(ctx context.Context, mod api.Module, stack []uint64) {
				call := &hostfuncs.Call{
					ABI:           abiCtx,
					Guest:         NewGuest(mod),
					Stack:         stack,
					MaxStringSize: cfg.MaxStringSize,
				}
				if err := registry.Invoke(ctx, name, call); err != nil {
					cfg.Logger.ErrorContext(ctx, "wazero: import failed",
						"function", name, "extension", GetExtensionName(ctx, mod), "error", err)
					panic(err)
				}
			}), valueTypes(fn.Params), valueTypes(fn.Results)).
			WithName(name).
			Export(name)
	}

	for _, ch := range cfg.CustomHandlers {
		if registry.Has(ch.Name) {
			return fmt.Errorf("wazero: custom handler %q shadows a context import", ch.Name)
		}
		builder.NewFunctionBuilder().
			WithGoModuleFunction(ch.Handler, ch.ParamTypes, ch.ResultTypes).
			Export(ch.Name)
	}

	_, err := builder.Instantiate(ctx)
	return err
}

// valueTypes maps hostfuncs value types to wazero's. The encodings match
// the wasm binary format, so the conversion is direct.
func valueTypes(in []hostfuncs.ValueType) []api.ValueType {
	out := make([]api.ValueType, len(in))
	for i, t := range in {
		out[i] = api.ValueType(t)
	}
	return out
}
