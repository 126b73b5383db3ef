package enrich

import (
	"regexp"
	"strings"

	"github.com/prospecta/leads-cli/internal/model"
)

var (
	emailShapeRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	phoneCharRe  = regexp.MustCompile(`[^\d+()-]`)
)

// validate applies the unconditional post-extraction cleanup pass: a
// malformed primary email is dropped, additional phones are normalized and
// length-checked, and schemeless social URLs get an https prefix.
func validate(lead *model.EnrichedLead) {
	if lead.Email != "" && !emailShapeRe.MatchString(lead.Email) {
		lead.Email = ""
	}

	if len(lead.AdditionalPhones) > 0 {
		cleaned := make([]string, 0, len(lead.AdditionalPhones))
		for _, phone := range lead.AdditionalPhones {
			normalized := phoneCharRe.ReplaceAllString(phone, "")
			if len(normalized) >= 10 {
				cleaned = append(cleaned, normalized)
			}
		}
		lead.AdditionalPhones = cleaned
	}

	for platform, u := range lead.SocialLinks {
		if !strings.HasPrefix(u, "http") {
			lead.SocialLinks[platform] = "https://" + u
		}
	}
}
