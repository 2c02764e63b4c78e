// Package htmlsanitize cleans user-supplied text before it is stored.
//
// Sanitize keeps a safe subset of HTML for long-form fields such as project
// descriptions. PlainText strips all markup for short fields such as comments.
package htmlsanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	ugcPolicy    = newUGCPolicy()
	strictPolicy = bluemonday.StrictPolicy()
)

func newUGCPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("class").OnElements("table", "th", "td", "code", "pre")
	return p
}

// Sanitize returns s with unsafe elements and attributes removed.
func Sanitize(s string) string {
	if s == "" {
		return ""
	}
	return strings.TrimSpace(ugcPolicy.Sanitize(s))
}

// PlainText returns s with all markup removed. Entities produced by the
// policy are decoded so "A & B" round-trips unchanged.
func PlainText(s string) string {
	if s == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(strictPolicy.Sanitize(s)))
}

// IsPlainText reports whether s looks like it contains no HTML tags.
func IsPlainText(s string) bool {
	for i := 0; i < len(s)-1; i++ {
		if s[i] != '<' {
			continue
		}
		c := s[i+1]
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '/' || c == '!' {
			return false
		}
	}
	return true
}
