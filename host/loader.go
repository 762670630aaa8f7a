package host

import (
	"fmt"

	"github.com/reglet-dev/reglet-abi/abi"
	apptemplate "github.com/reglet-dev/reglet-abi/application/template"
	"github.com/reglet-dev/reglet-abi/application/validation"
	"github.com/reglet-dev/reglet-abi/domain/entities"
	"github.com/reglet-dev/reglet-abi/domain/errors"
	"github.com/reglet-dev/reglet-abi/domain/ports"
	"github.com/reglet-dev/reglet-abi/infrastructure/parser"
	"github.com/reglet-dev/reglet-abi/wireformat"
)

// loaderConfig holds configuration for the Loader.
type loaderConfig struct {
	parser          ports.ManifestParser
	validator       ports.ManifestValidator
	templateEngine  ports.TemplateEngine
	vars            map[string]any
	version         int
	strictTemplates bool // Fail on missing template keys
}

func defaultLoaderConfig() loaderConfig {
	return loaderConfig{
		parser:          parser.NewYamlManifestParser(),
		validator:       validation.NewManifestValidator(),
		version:         abi.CurrentVersion,
		strictTemplates: true,
	}
}

// Loader turns extension.yaml bytes into a manifest the current context
// can honor: render, parse, validate, then check compatibility.
type Loader struct {
	config loaderConfig
}

// LoaderOption configures the Loader.
type LoaderOption func(*loaderConfig)

// WithParser sets a custom manifest parser.
func WithParser(p ports.ManifestParser) LoaderOption {
	return func(c *loaderConfig) {
		c.parser = p
	}
}

// WithValidator sets a custom manifest validator.
func WithValidator(v ports.ManifestValidator) LoaderOption {
	return func(c *loaderConfig) {
		c.validator = v
	}
}

// WithTemplateEngine sets a template engine.
func WithTemplateEngine(t ports.TemplateEngine) LoaderOption {
	return func(c *loaderConfig) {
		c.templateEngine = t
	}
}

// WithStrictTemplates enables/disables strict template mode.
// When enabled (default), rendering fails if a referenced key is missing.
func WithStrictTemplates(enabled bool) LoaderOption {
	return func(c *loaderConfig) {
		c.strictTemplates = enabled
	}
}

// WithTemplateVars exposes vars to manifest templates as .config.
func WithTemplateVars(vars map[string]any) LoaderOption {
	return func(c *loaderConfig) {
		c.vars = vars
	}
}

// WithContextVersion sets the context version manifests are checked
// against. The default is abi.CurrentVersion.
func WithContextVersion(v int) LoaderOption {
	return func(c *loaderConfig) {
		c.version = v
	}
}

// NewLoader creates a new Loader with defaults.
func NewLoader(opts ...LoaderOption) *Loader {
	cfg := defaultLoaderConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.templateEngine == nil {
		cfg.templateEngine = apptemplate.NewRenderer(
			apptemplate.WithLenientKeys(!cfg.strictTemplates),
		)
	}
	return &Loader{config: cfg}
}

// LoadManifest renders, parses and validates a manifest, then checks it
// against the configured context version. Incompatible manifests fail with
// an error wrapping *errors.VersionError or wireformat.ErrFingerprintMismatch.
func (l *Loader) LoadManifest(raw []byte) (*entities.ExtensionManifest, error) {
	data, err := l.config.templateEngine.Render(raw, map[string]any{
		"config": l.config.vars,
		"ctx":    map[string]any{"version": l.config.version},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to render manifest: %w", err)
	}

	manifest, err := l.config.parser.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}

	res, err := l.config.validator.Validate(manifest)
	if err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}
	if !res.Valid {
		msg := "manifest validation failed:"
		for _, e := range res.Errors {
			msg += fmt.Sprintf("\n- %s: %s", e.Field, e.Message)
		}
		return nil, &errors.SpecError{Kind: "manifest", Name: manifest.Name, Err: fmt.Errorf("%s", msg)}
	}

	if err := CheckCompatibility(manifest, l.config.version); err != nil {
		return nil, err
	}
	return manifest, nil
}

// CheckCompatibility reports whether a context of the given version provides
// everything manifest links against.
func CheckCompatibility(manifest *entities.ExtensionManifest, version int) error {
	if manifest.MinCtxVersion > version {
		return &errors.VersionError{Extension: manifest.Name, Required: manifest.MinCtxVersion, Available: version}
	}
	for _, name := range manifest.Slots {
		info, ok := abi.Lookup(name)
		if !ok {
			return fmt.Errorf("extension %s links against unknown field %q", manifest.Name, name)
		}
		if info.Since > version {
			return &errors.VersionError{Extension: manifest.Name, Slot: name, Required: info.Since, Available: version}
		}
	}
	if manifest.LayoutFingerprint != "" {
		if err := wireformat.Verify(manifest.MinCtxVersion, manifest.LayoutFingerprint); err != nil {
			return fmt.Errorf("extension %s: %w", manifest.Name, err)
		}
	}
	return nil
}
