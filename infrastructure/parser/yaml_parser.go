// Package parser decodes extension manifests.
package parser

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/reglet-dev/reglet-abi/abi"
	"github.com/reglet-dev/reglet-abi/domain/entities"
	"github.com/reglet-dev/reglet-abi/domain/ports"
	"gopkg.in/yaml.v3"
)

// YamlManifestParser implements ManifestParser for extension.yaml files.
type YamlManifestParser struct {
	strict bool
}

// ParserOption configures a YamlManifestParser.
type ParserOption func(*YamlManifestParser)

// WithStrict rejects unknown keys. Enabled by default.
func WithStrict(enabled bool) ParserOption {
	return func(p *YamlManifestParser) {
		p.strict = enabled
	}
}

// NewYamlManifestParser creates a new YamlManifestParser.
func NewYamlManifestParser(opts ...ParserOption) ports.ManifestParser {
	p := &YamlManifestParser{strict: true}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse unmarshals YAML bytes into an ExtensionManifest. A missing
// min_ctx_version defaults to version 1.
func (p *YamlManifestParser) Parse(data []byte) (*entities.ExtensionManifest, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(p.strict)

	var manifest entities.ExtensionManifest
	if err := dec.Decode(&manifest); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("manifest is empty")
		}
		return nil, err
	}
	if manifest.MinCtxVersion == 0 {
		manifest.MinCtxVersion = abi.Version1
	}
	return &manifest, nil
}
