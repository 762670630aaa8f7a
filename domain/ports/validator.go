package ports

import "github.com/reglet-dev/reglet-abi/domain/entities"

// ManifestValidator checks a manifest for structural errors.
type ManifestValidator interface {
	// Validate reports every problem found in the manifest.
	Validate(manifest *entities.ExtensionManifest) (*entities.ValidationResult, error)
}
