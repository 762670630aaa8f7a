// Package ports defines the interfaces the host depends on for loading
// extensions. Infrastructure adapters implement them.
package ports
