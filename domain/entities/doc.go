// Package entities provides the plain data types shared across the ABI layer:
// structured error details, extension manifests and validation results.
package entities
