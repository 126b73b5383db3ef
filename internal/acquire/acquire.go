// Package acquire discovers businesses for a search term and location.
// Two strategies implement the same Searcher contract: a Google Maps API
// client and a chromedp-driven scrape of the public maps UI. The strategy
// is chosen once, at construction, from credential availability.
package acquire

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/prospecta/leads-cli/internal/config"
	"github.com/prospecta/leads-cli/internal/model"
	"github.com/prospecta/leads-cli/pkg/gmaps"
)

// ErrLocationNotFound indicates the provider could not geocode the
// requested location. Callers should abort the run rather than retry.
var ErrLocationNotFound = eris.New("acquire: location not found")

// Query describes one business search.
type Query struct {
	Term         string
	Location     string
	RadiusMeters int
	MaxResults   int
}

// Validate checks the search preconditions.
func (q Query) Validate() error {
	if q.Term == "" {
		return eris.New("acquire: empty search term")
	}
	if q.RadiusMeters <= 0 {
		return eris.Errorf("acquire: radius must be positive, got %d", q.RadiusMeters)
	}
	if q.MaxResults <= 0 {
		return eris.Errorf("acquire: max results must be positive, got %d", q.MaxResults)
	}
	return nil
}

// Searcher finds businesses matching a query. Implementations return at
// most q.MaxResults records, in provider order, each with a non-empty name.
type Searcher interface {
	Search(ctx context.Context, q Query) ([]model.Business, error)
}

// New selects the acquisition strategy from configuration: the structured
// API path when an API key is present, the browser fallback otherwise.
func New(cfg *config.Config) Searcher {
	delay := time.Duration(cfg.Search.DelaySecs) * time.Second
	if cfg.GMaps.APIKey != "" {
		return NewAPISearcher(gmaps.NewClient(cfg.GMaps.APIKey), delay)
	}
	return NewBrowserSearcher(BrowserOptions{
		Headless:   cfg.Browser.Headless,
		ChromePath: cfg.Browser.ChromePath,
		Delay:      delay,
	})
}

// pace sleeps for d or returns early when ctx is done.
func pace(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
