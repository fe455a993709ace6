package views

import (
	"context"
	"strconv"
	"strings"

	"github.com/a-h/templ"

	"github.com/eringen/folio/meta"
)

// Head renders the <head> tags for m: title, description, canonical link,
// OpenGraph and Twitter tags, robots and JSON-LD scripts.
func (r *Renderer) Head(m meta.PageMetadata) templ.Component {
	return component(func(_ context.Context, b *htmlBuf) error {
		b.raw(`<meta charset="utf-8"/>`)
		b.raw(`<meta name="viewport" content="width=device-width, initial-scale=1"/>`)
		b.raw("<title>").text(r.title(m)).raw("</title>\n")
		if m.Description != "" {
			b.raw(`<meta name="description"`).attr("content", m.Description).raw("/>\n")
		}
		if m.NoIndex {
			b.raw(`<meta name="robots" content="noindex"/>` + "\n")
		}
		if m.CanonicalURL != "" && !m.NotFound() {
			b.raw(`<link rel="canonical"`).href("href", m.CanonicalURL).raw("/>\n")
			b.raw(`<meta property="og:url"`).attr("content", m.CanonicalURL).raw("/>\n")
		}
		b.raw(`<meta property="og:site_name"`).attr("content", r.site.Name).raw("/>\n")
		b.raw(`<meta property="og:title"`).attr("content", m.Title).raw("/>\n")
		if m.OGType != "" {
			b.raw(`<meta property="og:type"`).attr("content", m.OGType).raw("/>\n")
		}
		if m.Description != "" {
			b.raw(`<meta property="og:description"`).attr("content", m.Description).raw("/>\n")
		}
		card := "summary"
		if img := m.OGImage; img != nil {
			card = "summary_large_image"
			b.raw(`<meta property="og:image"`).attr("content", img.DeliveryURL).raw("/>\n")
			if img.Width != nil {
				b.raw(`<meta property="og:image:width"`).attr("content", strconv.Itoa(*img.Width)).raw("/>\n")
			}
			if img.Height != nil {
				b.raw(`<meta property="og:image:height"`).attr("content", strconv.Itoa(*img.Height)).raw("/>\n")
			}
		}
		b.raw(`<meta name="twitter:card"`).attr("content", card).raw("/>\n")
		for _, s := range m.Scripts() {
			// encoding/json escapes <, > and &, so the payload cannot close the tag.
			b.raw(`<script type="application/ld+json">`).raw(s).raw("</script>\n")
		}
		b.raw(`<link rel="alternate" type="application/rss+xml"`).attr("title", r.site.Name).
			href("href", strings.TrimRight(r.site.URL, "/")+"/feed.xml").raw("/>\n")
		return nil
	})
}

func (r *Renderer) title(m meta.PageMetadata) string {
	if m.Title == "" || m.Title == r.site.Name {
		return r.site.Name
	}
	return m.Title + " | " + r.site.Name
}
