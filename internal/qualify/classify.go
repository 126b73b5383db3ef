// Package qualify scores enriched leads by field completeness, removes
// duplicates and filters out low-quality records.
package qualify

import (
	"go.uber.org/zap"

	"github.com/prospecta/leads-cli/internal/model"
)

// Classify assigns a quality tier and 1-10 score to each lead, marks
// duplicates (same normalized name, first occurrence wins) and returns only
// high/medium tier, non-duplicate leads in input order. The function is
// idempotent: classifying its own output changes nothing.
func Classify(leads []model.EnrichedLead) []model.QualifiedLead {
	seen := make(map[string]bool, len(leads))
	qualified := make([]model.QualifiedLead, 0, len(leads))

	var duplicates, lowTier int
	for _, lead := range leads {
		q := model.QualifiedLead{EnrichedLead: lead}
		q.Score = score(lead)
		q.Tier = tier(lead)

		key := lead.NormalizedName()
		if seen[key] {
			q.IsDuplicate = true
			duplicates++
			continue
		}
		seen[key] = true

		if q.Tier == model.TierLow {
			lowTier++
			continue
		}
		qualified = append(qualified, q)
	}

	zap.L().Info("qualify: classification complete",
		zap.Int("input", len(leads)),
		zap.Int("kept", len(qualified)),
		zap.Int("duplicates", duplicates),
		zap.Int("low_tier", lowTier),
	)
	return qualified
}

// contactFields counts how many of the four core contact fields (phone,
// email, website, address) are present. An email or phone found during
// enrichment counts the same as one captured at acquisition time.
func contactFields(lead model.EnrichedLead) int {
	present := 0
	if lead.Phone != "" || len(lead.AdditionalPhones) > 0 {
		present++
	}
	if lead.Email != "" {
		present++
	}
	if lead.Website != "" {
		present++
	}
	if lead.Address != "" {
		present++
	}
	return present
}

// score maps field completeness onto a 1.0-10.0 scale: each core contact
// field is worth 2 points and an active rating 1 point, on top of a base
// of 1.
func score(lead model.EnrichedLead) float64 {
	s := 1.0 + float64(contactFields(lead))*2.0
	if lead.Rating > 0 && lead.RatingCount > 0 {
		s += 1.0
	}
	if s > 10 {
		s = 10
	}
	return s
}

// tier buckets a lead: high needs all four contact fields plus rating
// data, medium needs at least three contact fields, low is the rest.
func tier(lead model.EnrichedLead) model.QualityTier {
	present := contactFields(lead)

	switch {
	case present == 4 && lead.RatingCount > 0:
		return model.TierHigh
	case present >= 3:
		return model.TierMedium
	default:
		return model.TierLow
	}
}
