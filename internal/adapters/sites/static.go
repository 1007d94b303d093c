// Package sites provides [ports.SiteRegistry] implementations.
package sites

import (
	"context"

	"github.com/jsamuelsen/message-notifier/internal/domain"
	"github.com/jsamuelsen/message-notifier/internal/platform/config"
)

// Static serves a single site fixed at startup.
type Static struct {
	site domain.Site
}

// NewStatic creates a registry from site configuration.
// The name falls back to the domain.
func NewStatic(cfg config.SiteConfig) *Static {
	name := cfg.Name
	if name == "" {
		name = cfg.Domain
	}

	return &Static{site: domain.Site{ID: cfg.ID, Domain: cfg.Domain, Name: name}}
}

// CurrentSite returns a copy of the configured site.
func (s *Static) CurrentSite(_ context.Context) (*domain.Site, error) {
	if s.site.Domain == "" {
		return nil, domain.NewNotFoundError("site", s.site.ID)
	}

	site := s.site

	return &site, nil
}
