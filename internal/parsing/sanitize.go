package parsing

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// strictPolicy strips every tag. Policies are safe for concurrent use once built.
var strictPolicy = bluemonday.StrictPolicy()

// SanitizeText removes markup from scraped text and returns the remaining
// text as displayed. The policy escapes what it keeps, so the result is
// unescaped again: "<1s" and "Foo & Bar's" come back unchanged.
func SanitizeText(s string) string {
	return strings.TrimSpace(html.UnescapeString(strictPolicy.Sanitize(s)))
}
