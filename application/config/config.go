// Package config loads the host configuration file (abi-host.toml) and
// turns it into executor options.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/reglet-dev/reglet-abi/abi"
	"github.com/reglet-dev/reglet-abi/application/validation"
	"github.com/reglet-dev/reglet-abi/domain/errors"
	"github.com/reglet-dev/reglet-abi/host"
	"github.com/reglet-dev/reglet-abi/hostfuncs"
	abiwazero "github.com/reglet-dev/reglet-abi/infrastructure/wazero"
	"github.com/reglet-dev/reglet-abi/internal/handles"
)

// FileName is the conventional name of the host configuration file.
const FileName = "abi-host.toml"

// HostConfig represents an abi-host.toml file.
type HostConfig struct {
	Context    ContextConfig    `toml:"context" json:"context"`
	Wasm       WasmConfig       `toml:"wasm" json:"wasm"`
	Log        LogConfig        `toml:"log" json:"log"`
	Extensions []ExtensionEntry `toml:"extension" json:"extension,omitempty" validate:"dive"`

	// Vars are exposed to manifest templates as {{.config.<key>}}.
	Vars map[string]any `toml:"vars" json:"vars,omitempty"`

	// Dir is the directory containing the file (set at load time).
	Dir string `toml:"-" json:"-"`
}

// ContextConfig configures the context table.
type ContextConfig struct {
	Name       string `toml:"name" json:"name" validate:"required"`
	Version    int    `toml:"version" json:"version" validate:"min=1" jsonschema:"minimum=1"`
	MaxHandles int    `toml:"max_handles" json:"max_handles" validate:"min=1" jsonschema:"minimum=1"`
	Debug      bool   `toml:"debug" json:"debug"`
}

// WasmConfig configures the wazero adapter.
type WasmConfig struct {
	ModuleName    string `toml:"module_name" json:"module_name" validate:"required"`
	MaxStringSize uint32 `toml:"max_string_size" json:"max_string_size" validate:"min=1"`
}

// LogConfig configures the host logger.
type LogConfig struct {
	Level  string `toml:"level" json:"level" validate:"oneof=debug info warn error" jsonschema:"enum=debug,enum=info,enum=warn,enum=error"`
	Format string `toml:"format" json:"format" validate:"oneof=text json" jsonschema:"enum=text,enum=json"`
}

// ExtensionEntry points at an extension manifest, relative to Dir.
type ExtensionEntry struct {
	Manifest string `toml:"manifest" json:"manifest" validate:"required"`
}

// Default returns the configuration used when a file leaves a key unset.
func Default() *HostConfig {
	return &HostConfig{
		Context: ContextConfig{
			Name:       "reglet-abi",
			Version:    abi.CurrentVersion,
			MaxHandles: handles.DefaultLimit,
		},
		Wasm: WasmConfig{
			ModuleName:    abiwazero.DefaultModuleName,
			MaxStringSize: hostfuncs.DefaultMaxStringSize,
		},
		Log: LogConfig{Level: "info", Format: "text"},
	}
}

// Load reads and validates the configuration at path.
func Load(path string) (*HostConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}
	dir, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}
	cfg.Dir = dir
	return cfg, nil
}

// Parse decodes TOML over Default and validates the result. Unknown keys
// are rejected.
func Parse(data []byte) (*HostConfig, error) {
	cfg := Default()
	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return nil, &errors.ConfigError{Err: err}
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, &errors.ConfigError{Field: undecoded[0].String(), Err: fmt.Errorf("unknown key")}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks tag constraints and the supported context version.
// Failures are *errors.ConfigError.
func (c *HostConfig) Validate() error {
	res := validation.ValidateStruct(c)
	if !res.Valid {
		first := res.Errors[0]
		return &errors.ConfigError{Field: first.Field, Err: fmt.Errorf("%s", first.Message)}
	}
	if c.Context.Version > abi.CurrentVersion {
		return &errors.ConfigError{
			Field: "HostConfig.Context.Version",
			Err:   &errors.VersionError{Required: c.Context.Version, Available: abi.CurrentVersion},
		}
	}
	return nil
}

// ManifestPaths resolves extension manifest paths against Dir.
func (c *HostConfig) ManifestPaths() []string {
	paths := make([]string, 0, len(c.Extensions))
	for _, ext := range c.Extensions {
		p := ext.Manifest
		if !filepath.IsAbs(p) {
			p = filepath.Join(c.Dir, p)
		}
		paths = append(paths, p)
	}
	return paths
}

// NewLogger builds the host logger described by the [log] table.
func (c *HostConfig) NewLogger(w io.Writer) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(c.Log.Level))); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// ContextOptions converts the [context] table.
func (c *HostConfig) ContextOptions() []host.ContextOption {
	return []host.ContextOption{
		host.WithName(c.Context.Name),
		host.WithVersion(c.Context.Version),
		host.WithMaxHandles(c.Context.MaxHandles),
		host.WithDebug(c.Context.Debug),
	}
}

// ExecutorOptions converts the whole file. logger may be nil.
func (c *HostConfig) ExecutorOptions(logger *slog.Logger) []host.Option {
	ctxOpts := c.ContextOptions()
	if logger != nil {
		ctxOpts = append(ctxOpts, host.WithLogger(logger))
	}
	return []host.Option{
		host.WithContextOptions(ctxOpts...),
		host.WithWasmOptions(
			abiwazero.WithModuleName(c.Wasm.ModuleName),
			abiwazero.WithMaxStringSize(c.Wasm.MaxStringSize),
		),
		host.WithLoader(host.NewLoader(
			host.WithContextVersion(c.Context.Version),
			host.WithTemplateVars(c.Vars),
		)),
	}
}
