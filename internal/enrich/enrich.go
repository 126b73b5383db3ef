// Package enrich augments discovered businesses with contact and
// descriptive detail mined from their websites. Enrichment is best-effort:
// it never fails a lead, it only adds fields it could extract.
package enrich

import (
	"context"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/prospecta/leads-cli/internal/model"
)

const maxBodyBytes = 1 << 20

// Enricher fetches business websites and extracts additional fields.
type Enricher struct {
	client *http.Client
	delay  time.Duration
}

// Option configures the Enricher.
type Option func(*Enricher)

// WithHTTPClient overrides the default HTTP client (for testing).
func WithHTTPClient(hc *http.Client) Option {
	return func(e *Enricher) {
		e.client = hc
	}
}

// NewEnricher creates an Enricher. delay is the fixed pacing pause applied
// once per website fetch.
func NewEnricher(delay time.Duration, opts ...Option) *Enricher {
	e := &Enricher{
		delay: delay,
		client: &http.Client{
			Timeout: 10 * time.Second,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: 10 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		},
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Enrich returns a new EnrichedLead for b. The Business fields are copied
// untouched; website-derived fields are filled when extraction finds them.
// Any failure degrades to returning the input fields unchanged.
func (e *Enricher) Enrich(ctx context.Context, b model.Business) model.EnrichedLead {
	lead := model.EnrichedLead{Business: b}
	if b.Website == "" {
		return lead
	}
	log := zap.L().With(zap.String("business", b.Name), zap.String("website", b.Website))

	doc, err := e.fetch(ctx, b.Website)
	if err != nil {
		log.Warn("enrich: website fetch failed", zap.Error(err))
		return lead
	}
	pace(ctx, e.delay)

	if emails, ok := extractEmails(doc); ok {
		lead.Email = emails[0]
		lead.AdditionalEmails = emails
	}
	if socials, ok := extractSocialLinks(doc); ok {
		lead.SocialLinks = socials
	}
	if desc, ok := extractDescription(doc); ok {
		lead.Description = desc
	}
	if phones, ok := extractPhones(doc); ok {
		lead.AdditionalPhones = phones
	}
	if id, ok := extractRegistrationID(doc); ok {
		lead.RegistrationID = id
	}
	if year, ok := extractFoundingYear(doc); ok {
		lead.FoundingYear = year
	}

	validate(&lead)
	return lead
}

// fetch downloads the website and prepares it for extraction.
func (e *Enricher) fetch(ctx context.Context, website string) (*document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, website, nil)
	if err != nil {
		return nil, eris.Wrap(err, "enrich: build request")
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) "+
		"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "enrich: fetch website")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode >= 400 {
		return nil, eris.Errorf("enrich: website returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, eris.Wrap(err, "enrich: read body")
	}

	return newDocument(string(body)), nil
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
