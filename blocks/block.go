// Package blocks normalizes raw content payloads into a closed set of typed
// content blocks that the rendering layer can dispatch on exhaustively.
package blocks

import (
	"encoding/json"

	"github.com/eringen/folio/imaging"
)

// Kind is the block discriminant.
type Kind string

const (
	KindParagraph Kind = "paragraph"
	KindHeading   Kind = "heading"
	KindImage     Kind = "image"
	KindGallery   Kind = "gallery"
	KindCode      Kind = "code"
	KindEmbed     Kind = "embed"
	// KindUnknown marks blocks from a newer schema or with a broken shape.
	// They render as nothing.
	KindUnknown Kind = "unknown"
)

// Kinds lists the known kinds, excluding KindUnknown.
var Kinds = []Kind{KindParagraph, KindHeading, KindImage, KindGallery, KindCode, KindEmbed}

// Block is one typed unit of content. The set of implementations is closed.
type Block interface {
	Kind() Kind
	sealed()
}

// Paragraph is sanitized rich text (inline HTML).
type Paragraph struct {
	Text string `json:"text"`
}

// Heading is a section title of level 1 to 6.
type Heading struct {
	Level int    `json:"level"`
	Text  string `json:"text"`
}

// Image is a single figure.
type Image struct {
	Ref     imaging.Reference   `json:"image"`
	Alt     string              `json:"alt"`
	Caption string              `json:"caption,omitempty"`
	Focus   *imaging.FocalPoint `json:"focalPoint,omitempty"`
}

// FocalPoint returns the block's focal point, falling back to the one on
// the reference.
func (b Image) FocalPoint() *imaging.FocalPoint {
	if b.Focus != nil {
		return b.Focus
	}
	return b.Ref.Focus
}

// GalleryItem is one image of a gallery.
type GalleryItem struct {
	Ref     imaging.Reference   `json:"image"`
	Alt     string              `json:"alt,omitempty"`
	Caption string              `json:"caption,omitempty"`
	Focus   *imaging.FocalPoint `json:"focalPoint,omitempty"`
}

// FocalPoint returns the item's focal point, falling back to the reference's.
func (g GalleryItem) FocalPoint() *imaging.FocalPoint {
	if g.Focus != nil {
		return g.Focus
	}
	return g.Ref.Focus
}

// Gallery is an ordered set of images.
type Gallery struct {
	Images []GalleryItem `json:"images"`
}

// Code is literal source text.
type Code struct {
	Language string `json:"language,omitempty"`
	Source   string `json:"code"`
}

// Embed is an opaque external reference such as a video or 3D model.
type Embed struct {
	Provider string `json:"provider,omitempty"`
	Ref      string `json:"url"`
	Title    string `json:"title,omitempty"`
}

// Unknown preserves a block that could not be classified. DeclaredKind is
// the type string found in the payload, if any.
type Unknown struct {
	DeclaredKind string         `json:"declaredKind,omitempty"`
	Raw          map[string]any `json:"raw,omitempty"`
}

func (Paragraph) Kind() Kind { return KindParagraph }
func (Heading) Kind() Kind   { return KindHeading }
func (Image) Kind() Kind     { return KindImage }
func (Gallery) Kind() Kind   { return KindGallery }
func (Code) Kind() Kind      { return KindCode }
func (Embed) Kind() Kind     { return KindEmbed }
func (Unknown) Kind() Kind   { return KindUnknown }

func (Paragraph) sealed() {}
func (Heading) sealed()   {}
func (Image) sealed()     {}
func (Gallery) sealed()   {}
func (Code) sealed()      {}
func (Embed) sealed()     {}
func (Unknown) sealed()   {}

// MarshalJSON writes each block with its "kind" discriminant.
func (b Paragraph) MarshalJSON() ([]byte, error) {
	type plain Paragraph
	return marshalKind(KindParagraph, plain(b))
}

func (b Heading) MarshalJSON() ([]byte, error) {
	type plain Heading
	return marshalKind(KindHeading, plain(b))
}

func (b Image) MarshalJSON() ([]byte, error) {
	type plain Image
	return marshalKind(KindImage, plain(b))
}

func (b Gallery) MarshalJSON() ([]byte, error) {
	type plain Gallery
	if b.Images == nil {
		b.Images = []GalleryItem{}
	}
	return marshalKind(KindGallery, plain(b))
}

func (b Code) MarshalJSON() ([]byte, error) {
	type plain Code
	return marshalKind(KindCode, plain(b))
}

func (b Embed) MarshalJSON() ([]byte, error) {
	type plain Embed
	return marshalKind(KindEmbed, plain(b))
}

func (b Unknown) MarshalJSON() ([]byte, error) {
	type plain Unknown
	return marshalKind(KindUnknown, plain(b))
}

func marshalKind(k Kind, v any) ([]byte, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	out := append([]byte(`{"kind":"`), string(k)...)
	out = append(out, '"')
	if len(body) > 2 {
		out = append(out, ',')
	}
	return append(out, body[1:]...), nil
}
