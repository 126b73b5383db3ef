package enrich

import (
	"regexp"
	"strings"
)

// document is a fetched page prepared for pattern extraction: the raw HTML
// plus its tag-stripped visible text.
type document struct {
	html string
	text string
}

func newDocument(html string) *document {
	return &document{html: html, text: stripHTML(html)}
}

var (
	emailRe  = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)
	mailtoRe = regexp.MustCompile(`(?i)href=["']mailto:([^"'?]+)["']`)

	anchorHrefRe = regexp.MustCompile(`(?i)<a\s[^>]*href=["']([^"']+)["']`)

	// The content capture matches the opening quote style so the value may
	// contain the other quote character.
	metaDescRe    = regexp.MustCompile(`(?is)<meta\s[^>]*name=["']description["'][^>]*content=(?:"([^"]*)"|'([^']*)')`)
	metaDescRevRe = regexp.MustCompile(`(?is)<meta\s[^>]*content=(?:"([^"]*)"|'([^']*)')[^>]*name=["']description["']`)
	aboutRe       = regexp.MustCompile(`(?is)<(?:h[1-6]|div|section)[^>]*>[^<]*(?:sobre|about|quem somos)[^<]*</[^>]+>\s*(?:<[^>]+>\s*)*([^<]+)`)
	paragraphRe   = regexp.MustCompile(`(?is)<p[^>]*>(.*?)</p>`)

	phoneRes = []*regexp.Regexp{
		regexp.MustCompile(`\(\d{2}\)\s?\d{4,5}-?\d{4}`),     // (11) 99999-9999
		regexp.MustCompile(`\b\d{2}\s?\d{4,5}-?\d{4}\b`),     // 11 99999-9999
		regexp.MustCompile(`\+55\s?\d{2}\s?\d{4,5}-?\d{4}`),  // +55 11 99999-9999
	}

	cnpjRe         = regexp.MustCompile(`\d{2}\.\d{3}\.\d{3}/\d{4}-\d{2}`)
	foundingYearRe = regexp.MustCompile(`(?i)desde\s+(\d{4})|fundad[ao]\s+em\s+(\d{4})`)
)

// socialPatterns maps each supported platform to its link pattern.
// platformOrder fixes the scan order so the first-match-wins rule is
// deterministic.
var (
	platformOrder  = []string{"facebook", "instagram", "linkedin", "twitter", "youtube", "whatsapp"}
	socialPatterns = map[string]*regexp.Regexp{
		"facebook":  regexp.MustCompile(`(?i)facebook\.com/[^/\s"']+`),
		"instagram": regexp.MustCompile(`(?i)instagram\.com/[^/\s"']+`),
		"linkedin":  regexp.MustCompile(`(?i)linkedin\.com/[^/\s"']+`),
		"twitter":   regexp.MustCompile(`(?i)twitter\.com/[^/\s"']+`),
		"youtube":   regexp.MustCompile(`(?i)youtube\.com/[^/\s"']+`),
		"whatsapp":  regexp.MustCompile(`(?i)wa\.me/[^/\s"']+|whatsapp\.com/[^/\s"']+`),
	}
)

// placeholderEmails are common sample addresses never worth keeping.
var placeholderEmails = map[string]bool{
	"example@example.com": true,
	"test@test.com":       true,
	"admin@domain.com":    true,
}

// extractEmails scans visible text and mailto anchors. The first surviving
// address is the primary email; all of them are the additional set.
func extractEmails(doc *document) ([]string, bool) {
	var emails []string
	seen := make(map[string]bool)

	add := func(email string) {
		email = strings.TrimSpace(email)
		key := strings.ToLower(email)
		if email == "" || seen[key] || placeholderEmails[key] {
			return
		}
		seen[key] = true
		emails = append(emails, email)
	}

	for _, m := range emailRe.FindAllString(doc.text, -1) {
		add(m)
	}
	for _, m := range mailtoRe.FindAllStringSubmatch(doc.html, -1) {
		add(m[1])
	}

	return emails, len(emails) > 0
}

// extractSocialLinks scans anchor hrefs for the supported platforms; the
// first matching href wins per platform.
func extractSocialLinks(doc *document) (map[string]string, bool) {
	links := make(map[string]string)

	for _, m := range anchorHrefRe.FindAllStringSubmatch(doc.html, -1) {
		href := m[1]
		for _, platform := range platformOrder {
			if _, done := links[platform]; done {
				continue
			}
			if socialPatterns[platform].MatchString(href) {
				links[platform] = href
				break
			}
		}
	}

	return links, len(links) > 0
}

// extractDescription prefers the meta description, then an "about us"
// section, then the first paragraph.
func extractDescription(doc *document) (string, bool) {
	for _, re := range []*regexp.Regexp{metaDescRe, metaDescRevRe} {
		if m := re.FindStringSubmatch(doc.html); m != nil {
			desc := m[1]
			if desc == "" {
				desc = m[2]
			}
			if desc = strings.TrimSpace(desc); desc != "" {
				return truncate(desc, 500), true
			}
		}
	}

	if m := aboutRe.FindStringSubmatch(doc.html); m != nil {
		if desc := collapseSpace(m[1]); desc != "" {
			return truncate(desc, 500), true
		}
	}

	if m := paragraphRe.FindStringSubmatch(doc.html); m != nil {
		if desc := collapseSpace(stripHTML(m[1])); desc != "" {
			return truncate(desc, 300), true
		}
	}

	return "", false
}

// extractPhones unions the matches of the three Brazilian phone shapes
// over the visible text.
func extractPhones(doc *document) ([]string, bool) {
	var phones []string
	seen := make(map[string]bool)

	for _, re := range phoneRes {
		for _, m := range re.FindAllString(doc.text, -1) {
			if seen[m] {
				continue
			}
			seen[m] = true
			phones = append(phones, m)
		}
	}

	return phones, len(phones) > 0
}

// extractRegistrationID returns the first CNPJ-shaped identifier.
func extractRegistrationID(doc *document) (string, bool) {
	m := cnpjRe.FindString(doc.text)
	return m, m != ""
}

// extractFoundingYear returns the year from a "desde <year>" or
// "fundada em <year>" phrase, whichever capture group matched.
func extractFoundingYear(doc *document) (string, bool) {
	m := foundingYearRe.FindStringSubmatch(doc.text)
	if m == nil {
		return "", false
	}
	if m[1] != "" {
		return m[1], true
	}
	return m[2], m[2] != ""
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// stripHTML removes script and style blocks, strips tags, decodes common
// entities and collapses whitespace, leaving the page's visible text.
func stripHTML(html string) string {
	for _, tag := range []string{"script", "style"} {
		re := regexp.MustCompile(`(?is)<` + tag + `[^>]*>.*?</` + tag + `>`)
		html = re.ReplaceAllString(html, " ")
	}

	tagRe := regexp.MustCompile(`<[^>]+>`)
	html = tagRe.ReplaceAllString(html, " ")

	r := strings.NewReplacer(
		"&amp;", "&",
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
		"&#39;", "'",
		"&nbsp;", " ",
	)
	html = r.Replace(html)

	return collapseSpace(html)
}
