// Package template renders extension manifests with text/template so one
// manifest can serve several hosts, e.g. by picking a build per context
// version.
//
// Besides the data passed to Render, manifests can call:
//
//	since "FieldStore"   context version that introduced a table field
//	fingerprint 2        layout fingerprint of a context version
//
// so a manifest can write
//
//	{{if ge .ctx.version (since "FieldLoad")}}module: pairs-v2.wasm{{end}}
package template

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/reglet-dev/reglet-abi/abi"
	"github.com/reglet-dev/reglet-abi/domain/ports"
	"github.com/reglet-dev/reglet-abi/wireformat"
)

type rendererConfig struct {
	lenient bool
}

// Option configures a Renderer.
type Option func(*rendererConfig)

// WithLenientKeys renders references to missing keys as "<no value>"
// instead of failing.
func WithLenientKeys(enabled bool) Option {
	return func(c *rendererConfig) {
		c.lenient = enabled
	}
}

// Renderer is the manifest ports.TemplateEngine.
type Renderer struct {
	funcs  template.FuncMap
	config rendererConfig
}

// NewRenderer creates a Renderer.
func NewRenderer(opts ...Option) ports.TemplateEngine {
	var cfg rendererConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Renderer{config: cfg, funcs: template.FuncMap{
		"since":       since,
		"fingerprint": wireformat.Fingerprint,
	}}
}

func since(field string) (int, error) {
	info, ok := abi.Lookup(field)
	if !ok {
		return 0, fmt.Errorf("unknown context field %q", field)
	}
	return info.Since, nil
}

// Render executes raw over data. Manifests without actions are returned
// unchanged.
func (r *Renderer) Render(raw []byte, data map[string]any) ([]byte, error) {
	if !bytes.Contains(raw, []byte("{{")) {
		return raw, nil
	}

	tmpl := template.New("manifest").Funcs(r.funcs)
	if !r.config.lenient {
		tmpl = tmpl.Option("missingkey=error")
	}
	tmpl, err := tmpl.Parse(string(raw))
	if err != nil {
		return nil, fmt.Errorf("manifest template is malformed: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("manifest template cannot be rendered: %w", err)
	}
	return buf.Bytes(), nil
}
