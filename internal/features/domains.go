package features

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Word classes are spelled out as Unicode letters, digits and underscore
// since RE2's \w and \b only cover ASCII.
var (
	emailAddressExpr = regexp.MustCompile(`[\p{L}\p{N}_.-]+@[\p{L}\p{N}_.-]+\.[\p{L}\p{N}_]+`)
	rawURLExpr       = regexp.MustCompile(`(?i)\b(?:https?://|www\.)[^\s<>"'@]+`)
	edgeNoiseExpr    = regexp.MustCompile(`^[<\["'\(\s]+|[>\]"')\s.,;:=]+$`)
	embeddedURLExpr  = regexp.MustCompile(`https?://[^\s<>"'\]\)]+`)
	bareHostExpr     = regexp.MustCompile(`^[\p{L}\p{N}_.-]+\.[a-z]{2,}$`)
	portSuffixExpr   = regexp.MustCompile(`:\d+$`)
	trailingJunkExpr = regexp.MustCompile(`[^\p{L}\p{N}_.-]+$`)
	schemeNetlocExpr = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9+.-]*://([^/?#]*)`)
)

// DomainExtractor pulls destination domains out of free-form email text.
// It is stateless and safe for concurrent use.
type DomainExtractor struct{}

// NewDomainExtractor creates a new domain extractor
func NewDomainExtractor() *DomainExtractor {
	return &DomainExtractor{}
}

// ExtractDomains returns the distinct domains referenced by text, in the
// order they were discovered: anchor hrefs in document order first, then
// raw URL-like substrings in text order.
func (e *DomainExtractor) ExtractDomains(text string) []string {
	text = emailAddressExpr.ReplaceAllString(text, "")

	candidates := anchorHrefs(text)
	candidates = append(candidates, rawURLExpr.FindAllString(text, -1)...)

	seen := make(StringSet, len(candidates))
	domains := make([]string, 0, len(candidates))
	for _, candidate := range candidates {
		domain, ok := CleanAndExtractDomain(candidate)
		if !ok || seen.Has(domain) {
			continue
		}
		seen.Add(domain)
		domains = append(domains, domain)
	}
	return domains
}

// anchorHrefs collects every <a href> value. Markup that cannot be parsed
// yields no anchors.
func anchorHrefs(text string) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(text))
	if err != nil {
		return nil
	}

	var hrefs []string
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		if href, ok := s.Attr("href"); ok {
			hrefs = append(hrefs, href)
		}
	})
	return hrefs
}

// CleanAndExtractDomain normalizes one URL candidate to a lowercase host.
// It returns false when the candidate does not yield a plausible domain.
func CleanAndExtractDomain(candidate string) (string, bool) {
	candidate = strings.TrimSpace(candidate)
	candidate = edgeNoiseExpr.ReplaceAllString(candidate, "")
	candidate, _, _ = strings.Cut(candidate, ",")

	if embedded := embeddedURLExpr.FindString(candidate); embedded != "" {
		candidate = embedded
	}

	domain, path := splitAuthority(candidate)
	if domain == "" && bareHostExpr.MatchString(path) {
		domain = path
	}

	domain = portSuffixExpr.ReplaceAllString(domain, "")
	domain = strings.ToLower(domain)
	domain = strings.TrimPrefix(domain, "www.")
	domain = trailingJunkExpr.ReplaceAllString(domain, "")

	if !strings.Contains(domain, ".") || strings.Contains(domain, "@") {
		return "", false
	}
	return domain, true
}

// splitAuthority returns the network location and path of candidate. When
// url.Parse rejects the candidate, the authority is taken verbatim from
// between "scheme://" and the first of '/', '?' or '#'.
func splitAuthority(candidate string) (string, string) {
	if parsed, err := url.Parse(candidate); err == nil {
		return netloc(parsed), parsed.Path
	}

	if m := schemeNetlocExpr.FindStringSubmatch(candidate); m != nil {
		return m[1], ""
	}
	path, _, _ := strings.Cut(candidate, "#")
	path, _, _ = strings.Cut(path, "?")
	return "", path
}

// netloc rebuilds the network-location component, keeping userinfo so that
// address-like authorities are rejected by the caller.
func netloc(u *url.URL) string {
	if u.User != nil {
		return u.User.String() + "@" + u.Host
	}
	return u.Host
}
