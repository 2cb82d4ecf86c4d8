package render

import (
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	markupPolicyOnce sync.Once
	markupPolicy     *bluemonday.Policy
)

// SanitizeMarkup cleans author supplied rich text (item text, help, legal and
// flyover content) down to inline formatting and links. The result is safe to
// emit unescaped.
func SanitizeMarkup(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	return strings.TrimSpace(markupSanitizer().Sanitize(trimmed))
}

func markupSanitizer() *bluemonday.Policy {
	markupPolicyOnce.Do(func() {
		policy := bluemonday.StrictPolicy()
		policy.AllowElements("b", "strong", "i", "em", "u", "br", "p", "span", "ul", "ol", "li", "code", "sub", "sup")
		policy.AllowAttrs("href").OnElements("a")
		policy.AllowStandardURLs()
		policy.RequireNoFollowOnLinks(true)
		policy.AddTargetBlankToFullyQualifiedLinks(true)
		policy.AllowAttrs("lang").Globally()
		markupPolicy = policy
	})
	return markupPolicy
}
