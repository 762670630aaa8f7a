package ports

import "github.com/reglet-dev/reglet-abi/abi"

// ExtensionRegistry resolves the init functions of Go extensions by name.
type ExtensionRegistry interface {
	// Register adds an init function. Registering a name twice is an error.
	Register(name string, init abi.InitFunc) error

	// Lookup returns the init function registered under name.
	Lookup(name string) (abi.InitFunc, bool)

	// List returns all registered names, sorted.
	List() []string
}
