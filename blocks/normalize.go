package blocks

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/eringen/folio/imaging"
)

// Normalize converts a raw content value, as decoded from the document
// store, into an ordered block sequence. It accepts an array of block-shaped
// objects, a legacy plain string, or nothing. Elements that cannot be
// classified become Unknown blocks so indexes stay stable; any other input
// yields an empty sequence.
func Normalize(raw any) []Block {
	switch v := raw.(type) {
	case string:
		if strings.TrimSpace(v) == "" {
			return []Block{}
		}
		return []Block{LegacyStringToParagraph(v)}
	case []any:
		out := make([]Block, len(v))
		for i, el := range v {
			out[i] = classify(el)
		}
		return out
	case []map[string]any:
		out := make([]Block, len(v))
		for i, el := range v {
			out[i] = classify(el)
		}
		return out
	case json.RawMessage:
		return NormalizeJSON(v)
	case []byte:
		return NormalizeJSON(v)
	}
	return []Block{}
}

// NormalizeJSON decodes a stored content column and normalizes it. Bytes
// that are not valid JSON predate the block model and are treated as a
// legacy plain-text payload.
func NormalizeJSON(data []byte) []Block {
	if len(bytes.TrimSpace(data)) == 0 {
		return []Block{}
	}
	var raw any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil || dec.More() {
		return Normalize(string(data))
	}
	return Normalize(raw)
}

// LegacyStringToParagraph wraps content written before the block model as a
// single paragraph.
func LegacyStringToParagraph(s string) Paragraph {
	return Paragraph{Text: SanitizeRichText(s)}
}

func classify(el any) Block {
	m, ok := el.(map[string]any)
	if !ok {
		return Unknown{}
	}
	declared := strings.ToLower(firstString(m, "type", "kind"))

	var (
		b     Block
		valid bool
	)
	switch Kind(declared) {
	case KindParagraph:
		b, valid = parseParagraph(m)
	case KindHeading:
		b, valid = parseHeading(m)
	case KindImage:
		b, valid = parseImage(m)
	case KindGallery:
		b, valid = parseGallery(m)
	case KindCode:
		b, valid = parseCode(m)
	case KindEmbed:
		b, valid = parseEmbed(m)
	}
	if !valid {
		return Unknown{DeclaredKind: declared, Raw: m}
	}
	return b
}

func parseParagraph(m map[string]any) (Block, bool) {
	text, ok := firstStringValue(m, "text", "content", "html")
	if !ok {
		return nil, false
	}
	return Paragraph{Text: SanitizeRichText(text)}, true
}

func parseHeading(m map[string]any) (Block, bool) {
	level, ok := imaging.IntValue(m["level"])
	if !ok || level < 1 || level > 6 {
		return nil, false
	}
	text, _ := firstStringValue(m, "text", "content")
	text = PlainText(text)
	if text == "" {
		return nil, false
	}
	return Heading{Level: level, Text: text}, true
}

func parseImage(m map[string]any) (Block, bool) {
	ref, ok := referenceOf(m)
	if !ok {
		return nil, false
	}
	return Image{
		Ref:     ref,
		Alt:     PlainText(firstString(m, "alt", "altText")),
		Caption: PlainText(firstString(m, "caption")),
		Focus:   focusOf(m),
	}, true
}

func parseGallery(m map[string]any) (Block, bool) {
	var entries []any
	for _, key := range []string{"images", "items"} {
		if list, ok := m[key].([]any); ok {
			entries = list
			break
		}
	}
	if entries == nil {
		return nil, false
	}
	items := make([]GalleryItem, 0, len(entries))
	for _, el := range entries {
		item, ok := galleryItem(el)
		if !ok {
			continue
		}
		items = append(items, item)
	}
	return Gallery{Images: items}, true
}

func galleryItem(el any) (GalleryItem, bool) {
	if s, ok := el.(string); ok {
		ref, _ := imaging.ParseReference(s)
		return GalleryItem{Ref: ref}, ref.Location() != ""
	}
	m, ok := el.(map[string]any)
	if !ok {
		return GalleryItem{}, false
	}
	ref, ok := referenceOf(m)
	if !ok {
		return GalleryItem{}, false
	}
	return GalleryItem{
		Ref:     ref,
		Alt:     PlainText(firstString(m, "alt", "altText")),
		Caption: PlainText(firstString(m, "caption")),
		Focus:   focusOf(m),
	}, true
}

func parseCode(m map[string]any) (Block, bool) {
	src, ok := firstStringValue(m, "code", "source")
	if !ok {
		return nil, false
	}
	return Code{
		Language: strings.ToLower(firstString(m, "language", "lang")),
		Source:   src,
	}, true
}

func parseEmbed(m map[string]any) (Block, bool) {
	ref := firstString(m, "url", "src", "ref")
	if ref == "" {
		return nil, false
	}
	return Embed{
		Provider: strings.ToLower(firstString(m, "provider", "service")),
		Ref:      ref,
		Title:    PlainText(firstString(m, "title")),
	}, true
}

// referenceOf reads the image reference of an image-bearing object: a nested
// "image" value when present, otherwise the object's own url/src/path.
func referenceOf(m map[string]any) (imaging.Reference, bool) {
	var ref imaging.Reference
	if nested, ok := m["image"]; ok && nested != nil {
		ref, _ = imaging.ParseReference(nested)
	} else {
		ref, _ = imaging.ParseReference(m)
	}
	return ref, ref.Location() != ""
}

func focusOf(m map[string]any) *imaging.FocalPoint {
	for _, key := range []string{"focalPoint", "focal_point", "focus"} {
		if fp := imaging.ParseFocalPoint(m[key]); fp != nil {
			return fp
		}
	}
	return nil
}

func firstString(m map[string]any, keys ...string) string {
	s, _ := firstStringValue(m, keys...)
	return strings.TrimSpace(s)
}

// firstStringValue returns the first key holding a string, even an empty one.
func firstStringValue(m map[string]any, keys ...string) (string, bool) {
	for _, k := range keys {
		if s, ok := m[k].(string); ok {
			return s, true
		}
	}
	return "", false
}
