package ports

import (
	"context"

	"github.com/jsamuelsen/message-notifier/internal/domain"
)

// SiteRegistry provides the host site the application is serving.
type SiteRegistry interface {
	// CurrentSite returns the active site.
	// Returns domain.ErrNotFound if no site is configured.
	CurrentSite(ctx context.Context) (*domain.Site, error)
}
