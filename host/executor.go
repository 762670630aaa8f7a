package host

import (
	"context"
	stdErrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/reglet-dev/reglet-abi/abi"
	"github.com/reglet-dev/reglet-abi/domain/entities"
	"github.com/reglet-dev/reglet-abi/domain/errors"
	"github.com/reglet-dev/reglet-abi/domain/ports"
	"github.com/reglet-dev/reglet-abi/host/registry"
	"github.com/reglet-dev/reglet-abi/hostfuncs"
	abiwazero "github.com/reglet-dev/reglet-abi/infrastructure/wazero"
	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
)

// Executor owns one context and the extensions loaded into it. Go
// extensions are resolved through an ExtensionRegistry; WASM extensions run
// on a wazero runtime that imports the context from module "abi_ctx".
//
// An Executor is bound to its context and, like the context, must not be
// used from more than one goroutine at a time.
type Executor struct {
	ctx         *abi.Context
	runtime     wazero.Runtime
	handlers    *hostfuncs.HandlerRegistry
	extensions  ports.ExtensionRegistry
	loader      *Loader
	modules     map[string]abi.Handle
	contextOpts []ContextOption
	wasmOpts    []abiwazero.AdapterOption
}

// NewExecutor creates a context and a wazero runtime exposing it.
func NewExecutor(ctx context.Context, opts ...Option) (*Executor, error) {
	e := &Executor{modules: make(map[string]abi.Handle)}
	for _, opt := range opts {
		opt(e)
	}

	abiCtx, err := NewContext(e.contextOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create context: %w", err)
	}
	e.ctx = abiCtx
	logger := stateOf(abiCtx, "NewExecutor").logger

	if e.handlers == nil {
		reg, err := hostfuncs.NewRegistry(
			hostfuncs.WithMiddleware(hostfuncs.PanicRecoveryMiddleware()),
			hostfuncs.WithBundle(hostfuncs.AllBundles()),
		)
		if err != nil {
			_ = CloseContext(abiCtx)
			return nil, fmt.Errorf("failed to create default registry: %w", err)
		}
		e.handlers = reg
	}
	if e.extensions == nil {
		e.extensions = registry.Default
	}
	if e.loader == nil {
		e.loader = NewLoader(WithContextVersion(abiCtx.Version))
	}

	rt := wazero.NewRuntime(ctx)
	wasi_snapshot_preview1.MustInstantiate(ctx, rt)
	e.runtime = rt

	wasmOpts := append([]abiwazero.AdapterOption{
		abiwazero.WithLogger(logger),
		abiwazero.WithCustomHandler(abiwazero.LogMessageHandler(logger, 0)),
	}, e.wasmOpts...)
	err = abiwazero.RegisterWithRuntime(ctx, rt, abiCtx, e.handlers, wasmOpts...)
	if err != nil {
		_ = rt.Close(ctx)
		_ = CloseContext(abiCtx)
		return nil, fmt.Errorf("failed to register host functions: %w", err)
	}

	return e, nil
}

// Context returns the executor's context.
func (e *Executor) Context() *abi.Context {
	return e.ctx
}

// Module returns the handle of a loaded module. The handle stays owned by
// the executor.
func (e *Executor) Module(name string) (abi.Handle, bool) {
	h, ok := e.modules[name]
	return h, ok
}

// Modules lists loaded module names, sorted.
func (e *Executor) Modules() []string {
	names := make([]string, 0, len(e.modules))
	for name := range e.modules {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// LoadGo runs the init function registered under name and keeps the module
// it returns.
func (e *Executor) LoadGo(name string) (abi.Handle, error) {
	return e.loadGo(name, name)
}

func (e *Executor) loadGo(module, initName string) (abi.Handle, error) {
	if err := e.claim(module); err != nil {
		return abi.Null, err
	}
	init, ok := e.extensions.Lookup(initName)
	if !ok {
		return abi.Null, &errors.LoadError{Extension: module, Stage: "lookup",
			Err: fmt.Errorf("no Go extension registered as %q", initName)}
	}
	h := init(e.ctx)
	if h.IsNull() {
		return abi.Null, &errors.LoadError{Extension: module, Stage: "init", Err: e.pendingOr("init returned NULL")}
	}
	e.modules[module] = h
	return h, nil
}

// LoadWasm instantiates a WASM extension and builds a module from the
// exports manifest.Methods names. When manifest.Entry is set, that export
// runs first and must return 0; any other value fails the load with the
// pending error.
func (e *Executor) LoadWasm(ctx context.Context, manifest *entities.ExtensionManifest, wasmBytes []byte) (abi.Handle, error) {
	if err := e.claim(manifest.Name); err != nil {
		return abi.Null, err
	}
	fail := func(stage string, err error) (abi.Handle, error) {
		return abi.Null, &errors.LoadError{Extension: manifest.Name, Stage: stage, Err: err}
	}

	ctx = abiwazero.WithExtensionName(ctx, manifest.Name)
	mod, err := e.runtime.InstantiateWithConfig(ctx, wasmBytes,
		wazero.NewModuleConfig().WithName(manifest.Name).WithStartFunctions("_initialize"))
	if err != nil {
		return fail("instantiate", err)
	}
	loaded := false
	defer func() {
		if !loaded {
			_ = mod.Close(ctx)
		}
	}()

	if manifest.Entry != "" {
		entry := mod.ExportedFunction(manifest.Entry)
		if entry == nil {
			return fail("init", fmt.Errorf("missing entry export %q", manifest.Entry))
		}
		results, err := entry.Call(ctx)
		if err != nil {
			return fail("init", err)
		}
		if len(results) > 0 && results[0] != 0 {
			return fail("init", e.pendingOr(fmt.Sprintf("%s returned status %d", manifest.Entry, int64(results[0]))))
		}
	}

	def := &abi.ModuleDef{Name: manifest.Name, Doc: manifest.Description}
	for _, m := range manifest.Methods {
		impl, err := abiwazero.GuestMethod(ctx, mod, m.Export)
		if err != nil {
			return fail("init", err)
		}
		def.Methods = append(def.Methods, abi.MethodDef{Name: m.Name, Doc: m.Doc, Impl: impl, Signature: abi.SigVarArgs})
	}

	h := e.ctx.ModuleCreate(e.ctx, def)
	if h.IsNull() {
		return fail("init", e.pendingOr("ModuleCreate returned NULL"))
	}
	e.modules[manifest.Name] = h
	loaded = true
	return h, nil
}

// LoadManifest reads an extension.yaml, checks it against the context and
// loads the extension it describes. A wasm module path is resolved relative
// to the manifest.
func (e *Executor) LoadManifest(ctx context.Context, path string) (abi.Handle, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return abi.Null, &errors.LoadError{Extension: path, Stage: "manifest", Err: err}
	}
	manifest, err := e.loader.LoadManifest(raw)
	if err != nil {
		return abi.Null, &errors.LoadError{Extension: path, Stage: "manifest", Err: err}
	}

	switch manifest.Kind {
	case entities.KindGo:
		return e.loadGo(manifest.Name, manifest.Module)
	case entities.KindWasm:
		wasmPath := manifest.Module
		if !filepath.IsAbs(wasmPath) {
			wasmPath = filepath.Join(filepath.Dir(path), wasmPath)
		}
		wasmBytes, err := os.ReadFile(wasmPath)
		if err != nil {
			return abi.Null, &errors.LoadError{Extension: manifest.Name, Stage: "instantiate", Err: err}
		}
		return e.LoadWasm(ctx, manifest, wasmBytes)
	default:
		return abi.Null, &errors.LoadError{Extension: manifest.Name, Stage: "manifest",
			Err: fmt.Errorf("unknown extension kind %q", manifest.Kind)}
	}
}

// Close releases loaded modules, the wazero runtime and the context.
func (e *Executor) Close(ctx context.Context) error {
	for _, name := range e.Modules() {
		e.ctx.Close(e.ctx, e.modules[name])
		delete(e.modules, name)
	}
	return stdErrors.Join(e.runtime.Close(ctx), CloseContext(e.ctx))
}

func (e *Executor) claim(name string) error {
	if _, loaded := e.modules[name]; loaded {
		return &errors.LoadError{Extension: name, Stage: "lookup", Err: fmt.Errorf("module already loaded")}
	}
	return nil
}

// pendingOr takes the pending exception as an error, or reports msg when the
// extension failed without raising one.
func (e *Executor) pendingOr(msg string) error {
	if err := TakeError(e.ctx); err != nil {
		return err
	}
	return fmt.Errorf("%s without setting an error", msg)
}
