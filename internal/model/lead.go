// Package model defines the record types that flow through the lead
// capture pipeline: Business (acquisition output), EnrichedLead
// (enrichment output) and QualifiedLead (qualification output).
package model

import "strings"

// Coordinate is a WGS84 point. Records carry a *Coordinate so that an
// unknown position is nil rather than a 0,0 sentinel.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Business is one establishment discovered during acquisition. Name is the
// only required field; everything else is best-effort.
type Business struct {
	Name         string      `json:"name"`
	Address      string      `json:"address,omitempty"`
	Phone        string      `json:"phone,omitempty"`
	Website      string      `json:"website,omitempty"`
	Category     string      `json:"category,omitempty"`
	Rating       float64     `json:"rating,omitempty"`
	RatingCount  int         `json:"rating_count,omitempty"`
	OpeningHours string      `json:"opening_hours,omitempty"`
	Location     *Coordinate `json:"location,omitempty"`
	PlaceID      string      `json:"place_id,omitempty"`
	PhotoURLs    []string    `json:"photo_urls,omitempty"`
}

// EnrichedLead is a Business augmented with contact detail mined from its
// website. Enrichment copies the Business and only fills fields that were
// empty; it never clears acquisition data.
type EnrichedLead struct {
	Business

	Email            string            `json:"email,omitempty"`
	AdditionalEmails []string          `json:"additional_emails,omitempty"`
	SocialLinks      map[string]string `json:"social_links,omitempty"`
	Description      string            `json:"description,omitempty"`
	AdditionalPhones []string          `json:"additional_phones,omitempty"`
	RegistrationID   string            `json:"registration_id,omitempty"`
	FoundingYear     string            `json:"founding_year,omitempty"`
}

// QualityTier buckets a lead by field completeness.
type QualityTier string

const (
	TierHigh   QualityTier = "high"
	TierMedium QualityTier = "medium"
	TierLow    QualityTier = "low"
)

// QualifiedLead is an EnrichedLead with its quality assessment attached.
type QualifiedLead struct {
	EnrichedLead

	Tier        QualityTier `json:"quality_tier"`
	Score       float64     `json:"quality_score"`
	IsDuplicate bool        `json:"is_duplicate,omitempty"`
}

// NormalizedName returns the duplicate-detection key for a business:
// lowercased with runs of whitespace collapsed to single spaces.
func (b Business) NormalizedName() string {
	return strings.Join(strings.Fields(strings.ToLower(b.Name)), " ")
}
