package views

import (
	"context"
	"strconv"
	"strings"

	"github.com/a-h/templ"

	"github.com/eringen/folio/blocks"
	"github.com/eringen/folio/content"
	"github.com/eringen/folio/imaging"
	"github.com/eringen/folio/meta"
)

const dateFormat = "January 2, 2006"

// layout wraps body in the document shell with the head for m.
func (r *Renderer) layout(m meta.PageMetadata, body func(ctx context.Context, b *htmlBuf) error) templ.Component {
	return component(func(ctx context.Context, b *htmlBuf) error {
		b.raw("<!DOCTYPE html>\n<html lang=\"en\"><head>\n")
		if err := renderInto(ctx, b, r.Head(m)); err != nil {
			return err
		}
		b.raw(`<link rel="stylesheet" href="/public/styles.css"/>`)
		b.raw("</head>\n<body><header class=\"site-header\"><a class=\"site-name\" href=\"/\">").
			text(r.site.Name).raw("</a><nav>")
		for _, c := range r.site.Collections {
			b.raw("<a").href("href", "/"+c+"/").raw(">").text(collectionLabel(c)).raw("</a>")
		}
		b.raw("</nav></header>\n<main>\n")
		if err := body(ctx, b); err != nil {
			return err
		}
		b.raw("</main>\n<footer class=\"site-footer\"><a href=\"/about/\">About</a> <a href=\"/privacy/\">Privacy</a> <a href=\"/terms/\">Terms</a> <a href=\"/feed.xml\">RSS</a></footer>\n")
		b.raw("</body></html>\n")
		return nil
	})
}

// Home renders the front page with the most recent entries.
func (r *Renderer) Home(page meta.Page, recent []content.Entry) templ.Component {
	return r.layout(page.Meta, func(_ context.Context, b *htmlBuf) error {
		b.raw("<section class=\"intro\"><h1>").text(r.site.Name).raw("</h1>")
		if r.site.Description != "" {
			b.raw("<p>").text(r.site.Description).raw("</p>")
		}
		b.raw("</section>\n")
		r.cards(b, recent)
		return nil
	})
}

// Static renders a fixed page such as the privacy policy.
func (r *Renderer) Static(page meta.Page) templ.Component {
	return r.layout(page.Meta, func(_ context.Context, b *htmlBuf) error {
		b.raw("<article class=\"static\"><h1>").text(page.Meta.Title).raw("</h1>")
		if page.Meta.Description != "" {
			b.raw("<p>").text(page.Meta.Description).raw("</p>")
		}
		b.raw("</article>\n")
		return nil
	})
}

// Listing renders a collection index.
func (r *Renderer) Listing(page meta.Page) templ.Component {
	return r.layout(page.Meta, func(_ context.Context, b *htmlBuf) error {
		b.raw("<h1>").text(page.Meta.Title).raw("</h1>\n")
		if len(page.Items) == 0 {
			b.raw("<p class=\"empty\">Nothing published yet.</p>\n")
			return nil
		}
		r.cards(b, page.Items)
		pager(b, page)
		return nil
	})
}

// pager links to the neighbouring listing pages.
func pager(b *htmlBuf, page meta.Page) {
	n := max(page.PageNumber, 1)
	if n == 1 && !page.HasNext {
		return
	}
	base := "/" + page.Collection + "/"
	b.raw("<nav class=\"pager\">")
	switch {
	case n == 2:
		b.raw("<a").href("href", base).attr("rel", "prev").raw(">Newer</a>")
	case n > 2:
		b.raw("<a").href("href", base+"?page="+strconv.Itoa(n-1)).attr("rel", "prev").raw(">Newer</a>")
	}
	if page.HasNext {
		b.raw("<a").href("href", base+"?page="+strconv.Itoa(n+1)).attr("rel", "next").raw(">Older</a>")
	}
	b.raw("</nav>\n")
}

// Entry renders a single article with its blocks and related entries.
func (r *Renderer) Entry(page meta.Page, related []content.Entry) templ.Component {
	return r.layout(page.Meta, func(ctx context.Context, b *htmlBuf) error {
		e := page.Entry
		b.raw("<article class=\"entry\"><header><h1>").text(e.Title).raw("</h1>")
		if !e.PublishedAt.IsZero() {
			b.raw("<time").attr("datetime", e.PublishedAt.UTC().Format("2006-01-02")).raw(">").
				text(e.PublishedAt.UTC().Format(dateFormat)).raw("</time>")
		}
		if len(e.Tags) > 0 {
			b.raw("<ul class=\"tags\">")
			for _, t := range e.Tags {
				b.raw("<li>").text(t).raw("</li>")
			}
			b.raw("</ul>")
		}
		if ref, ok := e.CoverRef(); ok {
			b.raw("<figure class=\"cover\">")
			r.img(b, ref, e.CoverFocus, e.Title, imaging.PresetHero, true)
			b.raw("</figure>")
		}
		b.raw("</header>\n")

		if outline := blocks.Outline(page.Blocks); len(outline) >= 3 {
			b.raw("<nav class=\"toc\"><ol>")
			for _, o := range outline {
				b.raw("<li").attr("class", "toc-h"+strconv.Itoa(o.Level)).raw("><a").
					href("href", "#"+o.Anchor).raw(">").text(o.Text).raw("</a></li>")
			}
			b.raw("</ol></nav>\n")
		}

		b.raw("<div class=\"entry-body\">\n")
		if err := renderInto(ctx, b, r.Blocks(page.Blocks)); err != nil {
			return err
		}
		b.raw("</div></article>\n")

		if len(related) > 0 {
			b.raw("<aside class=\"related\"><h2>Related</h2>\n")
			r.cards(b, related)
			b.raw("</aside>\n")
		}
		return nil
	})
}

// NotFound renders the 404 page.
func (r *Renderer) NotFound(m meta.PageMetadata) templ.Component {
	return r.layout(m, func(_ context.Context, b *htmlBuf) error {
		b.raw("<section class=\"not-found\"><h1>").text(meta.NotFoundTitle).
			raw("</h1><p>The page you are looking for does not exist or is not published yet.</p>").
			raw("<p><a href=\"/\">Back to the front page</a></p></section>\n")
		return nil
	})
}

// ServerError renders the 500 page.
func (r *Renderer) ServerError() templ.Component {
	m := meta.PageMetadata{Title: "Server Error", NoIndex: true}
	return r.layout(m, func(_ context.Context, b *htmlBuf) error {
		b.raw("<section class=\"server-error\"><h1>Something went wrong</h1>").
			raw("<p>Please try again in a moment.</p></section>\n")
		return nil
	})
}

func (r *Renderer) cards(b *htmlBuf, entries []content.Entry) {
	b.raw("<div class=\"cards\">\n")
	for _, e := range entries {
		link := "/" + e.Collection + "/" + e.Slug + "/"
		b.raw("<article class=\"card\"><a").href("href", link).raw(">")
		if ref, ok := e.CoverRef(); ok {
			r.img(b, ref, e.CoverFocus, e.Title, imaging.PresetCard, false)
		}
		b.raw("<h2>").text(e.Title).raw("</h2>")
		if s := summary(e); s != "" {
			b.raw("<p>").text(s).raw("</p>")
		}
		b.raw("</a></article>\n")
	}
	b.raw("</div>\n")
}

func summary(e content.Entry) string {
	if s := blocks.PlainText(e.Summary); s != "" {
		return meta.Truncate(s, 200)
	}
	return meta.Truncate(blocks.FirstParagraphText(blocks.NormalizeJSON(e.Content)), 200)
}

func collectionLabel(name string) string {
	if name == "" {
		return ""
	}
	return strings.ToUpper(name[:1]) + name[1:]
}
