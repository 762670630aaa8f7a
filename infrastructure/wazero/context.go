package wazero

import (
	"context"

	"github.com/tetratelabs/wazero/api"
)

// contextKey is a private type for context keys.
type contextKey struct {
	name string
}

var extensionNameKey = &contextKey{name: "extension_name"}

// WithExtensionName records which extension a guest call belongs to.
func WithExtensionName(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, extensionNameKey, name)
}

// ExtensionNameFromContext retrieves the extension name from the context.
func ExtensionNameFromContext(ctx context.Context) (string, bool) {
	name, ok := ctx.Value(extensionNameKey).(string)
	return name, ok
}

// GetExtensionName extracts the extension name from context, falling back
// to the module name.
func GetExtensionName(ctx context.Context, mod api.Module) string {
	if name, ok := ExtensionNameFromContext(ctx); ok {
		return name
	}
	return mod.Name()
}
