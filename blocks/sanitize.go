package blocks

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	richTextPolicy = newRichTextPolicy()
	strictPolicy   = bluemonday.StrictPolicy()
)

func newRichTextPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.RequireNoFollowOnLinks(true)
	p.AddTargetBlankToFullyQualifiedLinks(true)
	return p
}

// SanitizeRichText strips unsafe markup from inline HTML, keeping the
// user-generated-content subset (links, emphasis, code, lists).
func SanitizeRichText(s string) string {
	return strings.TrimSpace(richTextPolicy.Sanitize(s))
}

// PlainText removes all markup from s, decodes entities and collapses
// whitespace.
func PlainText(s string) string {
	if s == "" {
		return ""
	}
	text := html.UnescapeString(strictPolicy.Sanitize(s))
	return strings.Join(strings.Fields(text), " ")
}
