// Package registry resolves Go extensions by name. Extensions register their
// init function, typically from an init func, and the executor looks them up
// when a manifest of kind "go" is loaded.
package registry

import (
	"fmt"
	"slices"
	"sync"

	"github.com/reglet-dev/reglet-abi/abi"
	"github.com/reglet-dev/reglet-abi/domain/ports"
)

// registryConfig holds configuration for the Registry.
type registryConfig struct {
	strictMode bool // Fail on duplicate registrations
}

func defaultRegistryConfig() registryConfig {
	return registryConfig{
		strictMode: true,
	}
}

// RegistryOption configures a Registry instance.
type RegistryOption func(*registryConfig)

// WithStrictMode enables/disables strict mode for duplicate registrations.
// Default is true (fail on duplicates). Disable only for testing or hot-reloading.
func WithStrictMode(enabled bool) RegistryOption {
	return func(c *registryConfig) {
		c.strictMode = enabled
	}
}

// Registry implements ExtensionRegistry.
type Registry struct {
	config registryConfig
	inits  sync.Map // map[string]abi.InitFunc
}

// NewRegistry creates a new Registry with the given options.
func NewRegistry(opts ...RegistryOption) ports.ExtensionRegistry {
	cfg := defaultRegistryConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Registry{config: cfg}
}

// Register adds an extension's init function.
func (r *Registry) Register(name string, init abi.InitFunc) error {
	if name == "" {
		return fmt.Errorf("extension name cannot be empty")
	}
	if init == nil {
		return fmt.Errorf("extension %q has no init function", name)
	}
	if !r.config.strictMode {
		r.inits.Store(name, init)
		return nil
	}
	if _, loaded := r.inits.LoadOrStore(name, init); loaded {
		return fmt.Errorf("extension %q already registered", name)
	}
	return nil
}

// Lookup returns the init function registered under name.
func (r *Registry) Lookup(name string) (abi.InitFunc, bool) {
	v, ok := r.inits.Load(name)
	if !ok {
		return nil, false
	}
	return v.(abi.InitFunc), true
}

// List returns all registered extension names, sorted.
func (r *Registry) List() []string {
	var keys []string
	r.inits.Range(func(k, _ any) bool {
		keys = append(keys, k.(string))
		return true
	})
	slices.Sort(keys)
	return keys
}

// Default is the registry executors use unless configured otherwise.
var Default = NewRegistry()

// MustRegister adds init to Default and panics on failure. It is meant for
// init functions of extension packages.
func MustRegister(name string, init abi.InitFunc) {
	if err := Default.Register(name, init); err != nil {
		panic(err)
	}
}
