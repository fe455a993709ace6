package blocks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eringen/folio/imaging"
)

func TestImages(t *testing.T) {
	fp := &imaging.FocalPoint{X: 0.1, Y: 0.2}
	bs := []Block{
		Paragraph{Text: "x"},
		Image{Ref: imaging.Reference{URL: "a.jpg", Focus: fp}, Alt: "a"},
		Gallery{Images: []GalleryItem{
			{Ref: imaging.Reference{URL: "b.jpg"}},
			{Ref: imaging.Reference{URL: "c.jpg"}, Focus: fp},
		}},
		Unknown{DeclaredKind: "image"},
	}

	uses := Images(bs)
	require.Len(t, uses, 3)
	assert.Equal(t, ImageUse{Index: 1, Item: -1, Ref: imaging.Reference{URL: "a.jpg", Focus: fp}, Focus: fp, Alt: "a"}, uses[0])
	assert.Equal(t, 2, uses[1].Index)
	assert.Equal(t, 0, uses[1].Item)
	assert.Nil(t, uses[1].Focus)
	assert.Equal(t, fp, uses[2].Focus)
}

func TestFirstParagraphText(t *testing.T) {
	bs := []Block{
		Heading{Level: 1, Text: "Title"},
		Paragraph{Text: "  <br/> "},
		Paragraph{Text: "The <strong>first</strong> &amp; best\n paragraph."},
		Paragraph{Text: "second"},
	}
	assert.Equal(t, "The first & best paragraph.", FirstParagraphText(bs))
	assert.Equal(t, "", FirstParagraphText(nil))
}

func TestOutlineUsesBlockIndexes(t *testing.T) {
	bs := Normalize([]any{
		map[string]any{"type": "heading", "level": 2, "text": "One"},
		map[string]any{"type": "mystery"},
		map[string]any{"type": "heading", "level": 3, "text": "Two"},
	})
	assert.Equal(t, []OutlineEntry{
		{Level: 2, Text: "One", Anchor: "block-0"},
		{Level: 3, Text: "Two", Anchor: "block-2"},
	}, Outline(bs))
}

func TestCount(t *testing.T) {
	counts := Count([]Block{Paragraph{}, Paragraph{}, Unknown{}, Code{}})
	assert.Equal(t, map[Kind]int{KindParagraph: 2, KindUnknown: 1, KindCode: 1}, counts)
}

func TestPlainText(t *testing.T) {
	assert.Equal(t, "a < b", PlainText("a &lt; b"))
	assert.Equal(t, "link text", PlainText(`<a href="javascript:x">link</a>   text`))
	assert.Equal(t, "", PlainText(""))
}
