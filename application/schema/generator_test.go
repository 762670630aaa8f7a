//go:build !wasip1

package schema

import (
	"encoding/json"
	"testing"

	"github.com/reglet-dev/reglet-abi/domain/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, raw []byte) map[string]any {
	t.Helper()
	var doc map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))
	return doc
}

func TestGenerate_Manifest(t *testing.T) {
	raw, err := Generate(Manifest)
	require.NoError(t, err)
	doc := decode(t, raw)

	assert.Equal(t, "Extension manifest", doc["title"])
	props, ok := doc["properties"].(map[string]any)
	require.True(t, ok, "properties should be a map")
	for _, key := range []string{"name", "kind", "module", "min_ctx_version", "slots", "layout_fingerprint", "methods"} {
		assert.Contains(t, props, key)
	}

	kind := props["kind"].(map[string]any)
	assert.ElementsMatch(t, []any{"go", "wasm"}, kind["enum"])

	required, ok := doc["required"].([]any)
	require.True(t, ok, "required should be an array")
	assert.Contains(t, required, "name")
	assert.NotContains(t, required, "entry", "omitempty fields are optional")
}

func TestGenerate_HostConfig(t *testing.T) {
	raw, err := Generate(HostConfig)
	require.NoError(t, err)
	doc := decode(t, raw)

	assert.Contains(t, doc["title"], "abi-host.toml")
	props := doc["properties"].(map[string]any)
	assert.Contains(t, props, "context")
	assert.Contains(t, props, "wasm")
	assert.Contains(t, props, "log")
	assert.Contains(t, props, "extension")
	assert.NotContains(t, props, "Dir")
	assert.Contains(t, string(raw), "max_handles")
}

func TestGenerate_Unknown(t *testing.T) {
	_, err := Generate("plugin")
	var schemaErr *errors.SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, "plugin", schemaErr.Type)
	assert.Equal(t, []string{HostConfig, Manifest}, Names())
}

func TestGenerateSchema(t *testing.T) {
	type Method struct {
		Name   string `json:"name"`
		Export string `json:"export"`
	}
	type Definition struct {
		Name    string   `json:"name"`
		Doc     *string  `json:"doc,omitempty"`
		Methods []Method `json:"methods"`
	}

	raw, err := GenerateSchema(Definition{})
	require.NoError(t, err)
	doc := decode(t, raw)

	props := doc["properties"].(map[string]any)
	assert.Len(t, props, 3)
	required := doc["required"].([]any)
	assert.Contains(t, required, "name")
	assert.Contains(t, required, "methods")
	assert.NotContains(t, required, "doc")
	assert.Contains(t, string(raw), "export")
	assert.Nil(t, doc["title"])
}

func TestGenerateSchema_EmptyStruct(t *testing.T) {
	type Empty struct{}

	raw, err := GenerateSchema(Empty{})
	require.NoError(t, err)
	assert.NotEmpty(t, decode(t, raw))
}
