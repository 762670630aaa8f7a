package entities

// Extension kinds.
const (
	KindGo   = "go"
	KindWasm = "wasm"
)

// ExtensionManifest describes an extension before any of its code runs. The
// loader rejects a manifest whose requirements exceed the context.
type ExtensionManifest struct {
	// Name is the module name the extension registers.
	Name string `json:"name" yaml:"name" validate:"required" jsonschema:"description=Module name registered by the extension"`

	// Version is the extension's own release version.
	Version string `json:"version,omitempty" yaml:"version,omitempty"`

	// Description is free text.
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	// Kind selects the loader: "go" for registered init functions, "wasm"
	// for WebAssembly modules.
	Kind string `json:"kind" yaml:"kind" validate:"required,oneof=go wasm" jsonschema:"enum=go,enum=wasm"`

	// Module is the registry name (go) or the .wasm path relative to the
	// manifest (wasm).
	Module string `json:"module" yaml:"module" validate:"required"`

	// Entry is the init export of a wasm module.
	Entry string `json:"entry,omitempty" yaml:"entry,omitempty"`

	// MinCtxVersion is the lowest context version the extension accepts.
	MinCtxVersion int `json:"min_ctx_version" yaml:"min_ctx_version" validate:"min=1" jsonschema:"minimum=1"`

	// Slots lists the context fields the extension links against.
	Slots []string `json:"slots,omitempty" yaml:"slots,omitempty" validate:"dive,required"`

	// LayoutFingerprint pins the exact table layout (hex SHA-256).
	LayoutFingerprint string `json:"layout_fingerprint,omitempty" yaml:"layout_fingerprint,omitempty" validate:"omitempty,hexadecimal,len=64"`

	// Methods maps wasm exports to module methods.
	Methods []ManifestMethod `json:"methods,omitempty" yaml:"methods,omitempty" validate:"dive"`
}

// ManifestMethod binds a guest export to a module-level method.
type ManifestMethod struct {
	Name   string `json:"name" yaml:"name" validate:"required"`
	Export string `json:"export" yaml:"export" validate:"required"`
	Doc    string `json:"doc,omitempty" yaml:"doc,omitempty"`
}
