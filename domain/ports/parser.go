package ports

import "github.com/reglet-dev/reglet-abi/domain/entities"

// ManifestParser parses raw bytes into an ExtensionManifest.
type ManifestParser interface {
	// Parse unmarshals manifest bytes into an ExtensionManifest struct.
	Parse(data []byte) (*entities.ExtensionManifest, error)
}
