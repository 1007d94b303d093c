// Package templates renders notification bodies from embedded or on-disk templates.
package templates

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	htmltemplate "html/template"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"strings"
	"sync"
	texttemplate "text/template"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"

	"github.com/jsamuelsen/message-notifier/internal/app"
	"github.com/jsamuelsen/message-notifier/internal/domain"
)

//go:embed defaults
var embedded embed.FS

// QuoteFunc formats a quoted reply for a sender and body.
type QuoteFunc func(sender any, body string) string

// Options configures a Renderer.
type Options struct {
	// Dir holds templates that take precedence over the embedded set.
	Dir string

	// Quote backs the "quote" template func. Defaults to an untranslated
	// app.QuoteFormatter, so the body is wrapped and quoted the same way.
	Quote QuoteFunc

	Logger *slog.Logger
}

// Renderer renders named templates. Names ending in .html use html/template
// and produce text/html; every other name uses text/template.
type Renderer struct {
	sources  []fs.FS
	quote    QuoteFunc
	markdown goldmark.Markdown
	policy   *bluemonday.Policy
	logger   *slog.Logger

	mu    sync.RWMutex
	cache map[string]func(*bytes.Buffer, any) error
}

// NewRenderer creates a renderer. An override Dir must exist when set.
func NewRenderer(opts Options) (*Renderer, error) {
	defaults, err := fs.Sub(embedded, "defaults")
	if err != nil {
		return nil, fmt.Errorf("loading embedded templates: %w", err)
	}

	sources := []fs.FS{defaults}

	if opts.Dir != "" {
		info, err := os.Stat(opts.Dir)
		if err != nil {
			return nil, fmt.Errorf("template dir: %w", err)
		}

		if !info.IsDir() {
			return nil, fmt.Errorf("template dir %q is not a directory", opts.Dir)
		}

		sources = append([]fs.FS{os.DirFS(opts.Dir)}, sources...)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	quote := opts.Quote
	if quote == nil {
		quote = app.NewQuoteFormatter(nil).FormatQuote
	}

	return &Renderer{
		sources:  sources,
		quote:    quote,
		markdown: goldmark.New(),
		policy:   bluemonday.UGCPolicy(),
		logger:   logger.With(slog.String("component", "templates.Renderer")),
		cache:    make(map[string]func(*bytes.Buffer, any) error),
	}, nil
}

// Render executes the named template with data.
func (r *Renderer) Render(ctx context.Context, name string, data any) (string, error) {
	exec, err := r.lookup(name)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := exec(&buf, data); err != nil {
		return "", fmt.Errorf("rendering template %q: %w", name, err)
	}

	r.logger.DebugContext(ctx, "template rendered",
		slog.String("template", name),
		slog.Int("bytes", buf.Len()),
	)

	return buf.String(), nil
}

// ContentType reports text/html for .html templates and text/plain otherwise.
func (r *Renderer) ContentType(name string) string {
	if isHTML(name) {
		return domain.ContentTypeHTML
	}

	return domain.ContentTypePlain
}

func (r *Renderer) lookup(name string) (func(*bytes.Buffer, any) error, error) {
	r.mu.RLock()
	exec, ok := r.cache[name]
	r.mu.RUnlock()

	if ok {
		return exec, nil
	}

	src, err := r.read(name)
	if err != nil {
		return nil, err
	}

	exec, err = r.parse(name, string(src))
	if err != nil {
		return nil, fmt.Errorf("parsing template %q: %w", name, err)
	}

	r.mu.Lock()
	r.cache[name] = exec
	r.mu.Unlock()

	return exec, nil
}

func (r *Renderer) read(name string) ([]byte, error) {
	clean := path.Clean(strings.TrimPrefix(name, "/"))
	if !fs.ValidPath(clean) {
		return nil, domain.NewNotFoundError("template", name)
	}

	for _, src := range r.sources {
		b, err := fs.ReadFile(src, clean)
		if err == nil {
			return b, nil
		}

		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("reading template %q: %w", name, err)
		}
	}

	return nil, domain.NewNotFoundError("template", name)
}

func (r *Renderer) parse(name, src string) (func(*bytes.Buffer, any) error, error) {
	if isHTML(name) {
		tmpl, err := htmltemplate.New(name).Funcs(htmltemplate.FuncMap{
			"markdown": r.markdownHTML,
			"quote":    r.quote,
		}).Parse(src)
		if err != nil {
			return nil, err
		}

		return func(buf *bytes.Buffer, data any) error { return tmpl.Execute(buf, data) }, nil
	}

	tmpl, err := texttemplate.New(name).Funcs(texttemplate.FuncMap{
		"markdown": r.markdownText,
		"quote":    r.quote,
	}).Parse(src)
	if err != nil {
		return nil, err
	}

	return func(buf *bytes.Buffer, data any) error { return tmpl.Execute(buf, data) }, nil
}

// markdownHTML converts markdown to sanitized HTML.
func (r *Renderer) markdownHTML(src string) (htmltemplate.HTML, error) {
	out, err := r.markdownText(src)
	if err != nil {
		return "", err
	}

	//nolint:gosec // output already passed through the UGC policy
	return htmltemplate.HTML(out), nil
}

func (r *Renderer) markdownText(src string) (string, error) {
	var buf bytes.Buffer
	if err := r.markdown.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("converting markdown: %w", err)
	}

	return r.policy.Sanitize(buf.String()), nil
}

func isHTML(name string) bool {
	return strings.EqualFold(path.Ext(name), ".html")
}
