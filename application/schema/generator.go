// Package schema generates JSON schemas for the documents the host reads:
// extension manifests and the host configuration file.
package schema

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/invopop/jsonschema"
	"github.com/reglet-dev/reglet-abi/application/config"
	"github.com/reglet-dev/reglet-abi/domain/entities"
	"github.com/reglet-dev/reglet-abi/domain/errors"
)

// Schema names accepted by Generate.
const (
	Manifest   = "manifest"
	HostConfig = "config"
)

var documents = map[string]struct {
	title string
	value any
}{
	Manifest:   {title: "Extension manifest", value: &entities.ExtensionManifest{}},
	HostConfig: {title: "Host configuration (" + config.FileName + ")", value: &config.HostConfig{}},
}

// Names lists the documents Generate knows, sorted.
func Names() []string {
	names := make([]string, 0, len(documents))
	for name := range documents {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Generate returns the schema of a named document. An unknown name is a
// *errors.SchemaError.
func Generate(name string) ([]byte, error) {
	doc, ok := documents[name]
	if !ok {
		return nil, &errors.SchemaError{Type: name, Err: fmt.Errorf("unknown document, want one of %v", Names())}
	}
	return generate(doc.value, doc.title)
}

// GenerateSchema creates a JSON schema from a Go struct.
// It uses the `invopop/jsonschema` library to reflect on the struct
// and generate a standard JSON Schema (Draft 2020-12).
func GenerateSchema(v any) ([]byte, error) {
	return generate(v, "")
}

func generate(v any, title string) ([]byte, error) {
	reflector := jsonschema.Reflector{
		ExpandedStruct: true, // Expand struct definitions inline
	}
	schema := reflector.Reflect(v)
	if title != "" {
		schema.Title = title
	}

	jsonBytes, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, &errors.SchemaError{Type: fmt.Sprintf("%T", v), Err: fmt.Errorf("failed to marshal schema: %w", err)}
	}

	return jsonBytes, nil
}
