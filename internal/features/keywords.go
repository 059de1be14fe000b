package features

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DefaultPhishyKeywords are social-engineering and urgency phrases commonly
// found in credential-harvesting mail
var DefaultPhishyKeywords = []string{
	"verify", "reset your password", "confirm your identity", "sign in", "unauthorized login",
	"your account", "update your account", "security alert", "click here", "login attempt",
	"secure message", "reactivate", "reset password", "confirm account", "your credentials",
	"important notice", "urgent", "immediate action", "unusual activity", "suspicious login",
	"account locked", "account suspended", "you must", "action required", "follow the link",
	"verify your email", "check the attachment", "shared document", "document has been shared",
	"view document", "dropbox", "onedrive", "sharepoint", "google drive", "view attachment",
	"encrypted message", "compliance notice", "security update", "new device", "you have received a message",
}

// KeywordMatcher tests text against a fixed list of lowercase phrases
type KeywordMatcher struct {
	keywords []string
}

// NewKeywordMatcher lowercases and trims the keywords; blanks are dropped.
// An empty list falls back to DefaultPhishyKeywords.
func NewKeywordMatcher(keywords []string) *KeywordMatcher {
	if len(keywords) == 0 {
		keywords = DefaultPhishyKeywords
	}
	lower := cases.Lower(language.Und)
	normalized := make([]string, 0, len(keywords))
	for _, k := range keywords {
		k = strings.TrimSpace(lower.String(k))
		if k != "" {
			normalized = append(normalized, k)
		}
	}
	return &KeywordMatcher{keywords: normalized}
}

// Keywords returns the normalized keyword list
func (m *KeywordMatcher) Keywords() []string {
	return m.keywords
}

// HasPhishyKeywords returns 1 if any keyword is a case-insensitive substring
// of text, else 0
func (m *KeywordMatcher) HasPhishyKeywords(text string) int {
	// Casers are stateful, so each call gets its own.
	text = cases.Lower(language.Und).String(text)
	for _, keyword := range m.keywords {
		if strings.Contains(text, keyword) {
			return 1
		}
	}
	return 0
}
