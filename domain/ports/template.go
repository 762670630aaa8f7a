package ports

// TemplateEngine renders manifest templates before they are parsed.
type TemplateEngine interface {
	// Render resolves every placeholder in raw against data.
	Render(raw []byte, data map[string]any) ([]byte, error)
}
