package blocks

import (
	"strconv"

	"github.com/eringen/folio/imaging"
)

// ImageUse is one image reference found while walking a block sequence.
// Index is the position of the owning block; Item is the position inside a
// gallery, or -1 for image blocks.
type ImageUse struct {
	Index int
	Item  int
	Ref   imaging.Reference
	Focus *imaging.FocalPoint
	Alt   string
}

// Images returns every image reference in document order.
func Images(bs []Block) []ImageUse {
	var uses []ImageUse
	for i, b := range bs {
		switch v := b.(type) {
		case Image:
			uses = append(uses, ImageUse{Index: i, Item: -1, Ref: v.Ref, Focus: v.FocalPoint(), Alt: v.Alt})
		case Gallery:
			for j, item := range v.Images {
				uses = append(uses, ImageUse{Index: i, Item: j, Ref: item.Ref, Focus: item.FocalPoint(), Alt: item.Alt})
			}
		}
	}
	return uses
}

// FirstParagraphText returns the plain text of the first paragraph that has
// any, or "".
func FirstParagraphText(bs []Block) string {
	for _, b := range bs {
		if p, ok := b.(Paragraph); ok {
			if text := PlainText(p.Text); text != "" {
				return text
			}
		}
	}
	return ""
}

// Anchor returns the fragment identifier of the block at index i. Anchors
// are positional, which is why normalization never drops blocks.
func Anchor(i int) string {
	return "block-" + strconv.Itoa(i)
}

// OutlineEntry is a heading in the document outline.
type OutlineEntry struct {
	Level  int
	Text   string
	Anchor string
}

// Outline lists the headings of bs with their anchors.
func Outline(bs []Block) []OutlineEntry {
	var out []OutlineEntry
	for i, b := range bs {
		if h, ok := b.(Heading); ok {
			out = append(out, OutlineEntry{Level: h.Level, Text: h.Text, Anchor: Anchor(i)})
		}
	}
	return out
}

// Count tallies blocks by kind.
func Count(bs []Block) map[Kind]int {
	counts := make(map[Kind]int)
	for _, b := range bs {
		counts[b.Kind()]++
	}
	return counts
}
