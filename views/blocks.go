package views

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/a-h/templ"

	"github.com/eringen/folio/blocks"
	"github.com/eringen/folio/imaging"
)

// Providers whose embed URLs are rendered as iframes. Others become links.
var iframeProviders = map[string]bool{
	"youtube":   true,
	"vimeo":     true,
	"sketchfab": true,
	"codepen":   true,
}

// Blocks renders a normalized block sequence. Each block is wrapped with
// its positional anchor.
func (r *Renderer) Blocks(bs []blocks.Block) templ.Component {
	return component(func(_ context.Context, b *htmlBuf) error {
		images := 0
		for i, blk := range bs {
			r.block(b, i, blk, &images)
		}
		return nil
	})
}

func (r *Renderer) block(b *htmlBuf, i int, blk blocks.Block, images *int) {
	anchor := blocks.Anchor(i)
	switch v := blk.(type) {
	case blocks.Paragraph:
		b.raw("<p").attr("id", anchor).raw(">").raw(v.Text).raw("</p>\n")
	case blocks.Heading:
		tag := "h" + strconv.Itoa(v.Level)
		b.raw("<" + tag).attr("id", anchor).raw(">").text(v.Text).raw("</" + tag + ">\n")
	case blocks.Image:
		b.raw("<figure").attr("id", anchor).attr("class", "block-image").raw(">")
		r.img(b, v.Ref, v.FocalPoint(), v.Alt, imaging.PresetFull, *images == 0)
		*images++
		if v.Caption != "" {
			b.raw("<figcaption>").text(v.Caption).raw("</figcaption>")
		}
		b.raw("</figure>\n")
	case blocks.Gallery:
		b.raw("<div").attr("id", anchor).attr("class", "block-gallery").raw(">")
		for _, item := range v.Images {
			b.raw("<figure>")
			r.img(b, item.Ref, item.FocalPoint(), item.Alt, imaging.PresetGallery, false)
			if item.Caption != "" {
				b.raw("<figcaption>").text(item.Caption).raw("</figcaption>")
			}
			b.raw("</figure>")
		}
		b.raw("</div>\n")
	case blocks.Code:
		b.raw("<pre").attr("id", anchor).attr("class", "block-code").raw("><code")
		if v.Language != "" {
			b.attr("class", "language-"+v.Language)
		}
		b.raw(">").text(v.Source).raw("</code></pre>\n")
	case blocks.Embed:
		embed(b, anchor, v)
	case blocks.Unknown:
		// Content from newer editors renders as nothing.
	}
}

func embed(b *htmlBuf, anchor string, v blocks.Embed) {
	u, err := url.Parse(v.Ref)
	if err != nil || (u.Scheme != "https" && u.Scheme != "http") || u.Host == "" {
		return
	}
	title := v.Title
	if title == "" {
		title = v.Provider
	}
	if u.Scheme == "https" && iframeProviders[v.Provider] {
		b.raw("<div").attr("id", anchor).attr("class", "block-embed embed-"+v.Provider).raw(">")
		b.raw("<iframe").href("src", u.String()).attr("title", title).
			attr("loading", "lazy").attr("allow", "fullscreen; xr-spatial-tracking").
			attr("referrerpolicy", "strict-origin-when-cross-origin").raw("></iframe></div>\n")
		return
	}
	if title == "" {
		title = u.Host
	}
	b.raw("<p").attr("id", anchor).attr("class", "block-embed").raw("><a").href("href", u.String()).
		attr("rel", "noopener nofollow").attr("target", "_blank").raw(">").text(title).raw("</a></p>\n")
}

// img writes an <img> for ref resolved with preset. Managed images get a
// srcset of narrower variants.
func (r *Renderer) img(b *htmlBuf, ref imaging.Reference, focus *imaging.FocalPoint, alt, preset string, eager bool) {
	img, ok := r.resolver.Resolve(ref, imaging.UsePreset(preset), focus)
	if !ok {
		return
	}
	b.raw("<img").href("src", img.DeliveryURL)
	if set := srcset(r.resolver.Srcset(ref, preset, focus, img), img); set != "" {
		b.attr("srcset", set).attr("sizes", "(min-width: 1024px) 960px, 100vw")
	}
	if img.Width != nil && img.Height != nil && img.ResizeMode != imaging.ResizeContain {
		b.intAttr("width", *img.Width).intAttr("height", *img.Height)
	}
	b.attr("alt", alt)
	if eager {
		b.attr("fetchpriority", "high")
	} else {
		b.attr("loading", "lazy")
	}
	b.attr("decoding", "async").raw("/>")
}

func srcset(narrow []imaging.ResolvedImage, full imaging.ResolvedImage) string {
	if len(narrow) == 0 {
		return ""
	}
	parts := make([]string, 0, len(narrow)+1)
	for _, v := range narrow {
		parts = append(parts, candidate(v))
	}
	return strings.Join(append(parts, candidate(full)), ", ")
}

func candidate(v imaging.ResolvedImage) string {
	return string(templ.URL(v.DeliveryURL)) + " " + strconv.Itoa(*v.Width) + "w"
}
