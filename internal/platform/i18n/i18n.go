// Package i18n looks up translated format strings from embedded YAML catalogs.
//
// Each file under locales/ is named after a BCP 47 tag and maps an English
// format string to its translation. Keys missing from a catalog, and
// languages without a catalog, print the English format unchanged.
package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
	"gopkg.in/yaml.v3"
)

//go:embed locales/*.yaml
var locales embed.FS

// Bundle holds every loaded catalog.
type Bundle struct {
	catalog *catalog.Builder
	tags    []language.Tag
}

// NewBundle loads the embedded locale files.
func NewBundle() (*Bundle, error) {
	return LoadBundle(locales, "locales")
}

// LoadBundle loads every *.yaml file in dir of fsys.
func LoadBundle(fsys fs.FS, dir string) (*Bundle, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("reading locales: %w", err)
	}

	b := &Bundle{catalog: catalog.NewBuilder(catalog.Fallback(language.English))}

	for _, entry := range entries {
		if entry.IsDir() || path.Ext(entry.Name()) != ".yaml" {
			continue
		}

		name := strings.TrimSuffix(entry.Name(), ".yaml")

		tag, err := language.Parse(name)
		if err != nil {
			return nil, fmt.Errorf("locale file %q: %w", entry.Name(), err)
		}

		raw, err := fs.ReadFile(fsys, path.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("reading locale %q: %w", name, err)
		}

		var messages map[string]string
		if err := yaml.Unmarshal(raw, &messages); err != nil {
			return nil, fmt.Errorf("parsing locale %q: %w", name, err)
		}

		for key, msg := range messages {
			if err := b.catalog.SetString(tag, key, msg); err != nil {
				return nil, fmt.Errorf("locale %q key %q: %w", name, key, err)
			}
		}

		b.tags = append(b.tags, tag)
	}

	sort.Slice(b.tags, func(i, j int) bool { return b.tags[i].String() < b.tags[j].String() })

	return b, nil
}

// Languages lists the tags that have a catalog.
func (b *Bundle) Languages() []string {
	out := make([]string, len(b.tags))
	for i, t := range b.tags {
		out[i] = t.String()
	}

	return out
}

// Localizer returns a localizer for lang. An empty lang selects English.
func (b *Bundle) Localizer(lang string) (*Localizer, error) {
	tag := language.English

	if lang != "" {
		parsed, err := language.Parse(lang)
		if err != nil {
			return nil, fmt.Errorf("parsing language %q: %w", lang, err)
		}

		tag = parsed
	}

	return &Localizer{
		tag:     tag,
		printer: message.NewPrinter(tag, message.Catalog(b.catalog)),
	}, nil
}

// Localizer formats strings for a single language.
type Localizer struct {
	tag     language.Tag
	printer *message.Printer
}

// Sprintf formats the translation of key with args.
func (l *Localizer) Sprintf(key string, args ...any) string {
	return l.printer.Sprintf(key, args...)
}

// Language reports the tag this localizer prints for.
func (l *Localizer) Language() string {
	return l.tag.String()
}
