package ports

import "context"

// TemplateRenderer renders a named template with a data context.
type TemplateRenderer interface {
	// Render returns the rendered text.
	// Returns domain.ErrNotFound if no template with that name exists.
	Render(ctx context.Context, name string, data any) (string, error)

	// ContentType reports the MIME type produced by the named template.
	ContentType(name string) string
}
