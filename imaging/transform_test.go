package imaging

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stripedPNG draws a 1000x500 image whose left tenth is red and the rest blue.
func stripedPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 1000, 500))
	for y := 0; y < 500; y++ {
		for x := 0; x < 1000; x++ {
			c := color.RGBA{B: 255, A: 255}
			if x < 100 {
				c = color.RGBA{R: 255, A: 255}
			}
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestProcessCoverCropFollowsFocalPoint(t *testing.T) {
	src := stripedPNG(t)
	out, err := Process(bytes.NewReader(src), Transform{
		Width:      250,
		Height:     250,
		Quality:    80,
		Format:     FormatPNG,
		ResizeMode: ResizeCover,
		Focus:      FocalPoint{X: 0.05, Y: 0.5},
	})
	require.NoError(t, err)
	assert.Equal(t, "image/png", out.ContentType)
	assert.Equal(t, 250, out.Width)
	assert.Equal(t, 250, out.Height)

	decoded, err := png.Decode(bytes.NewReader(out.Data))
	require.NoError(t, err)
	r, _, b, _ := decoded.At(5, 125).RGBA()
	assert.Greater(t, r, b, "left edge of the crop should contain the red subject")
}

func TestCardFocusChangesServedCrop(t *testing.T) {
	src := stripedPNG(t)
	r := NewResolver(ManagedStore{BaseURL: "https://example.com/media/", RenderPrefix: "/img/"})

	render := func(fx float64) (Output, image.Image) {
		img, ok := r.Resolve(Reference{Path: "a.png"}, UsePreset(PresetCard), &FocalPoint{X: fx, Y: 0.5})
		require.True(t, ok)
		u, err := url.Parse(img.DeliveryURL)
		require.NoError(t, err)
		tr, err := ParseTransform(u.Query())
		require.NoError(t, err)
		out, err := Process(bytes.NewReader(src), tr)
		require.NoError(t, err)
		decoded, _, err := image.Decode(bytes.NewReader(out.Data))
		require.NoError(t, err)
		return out, decoded
	}

	left, leftImg := render(0.05)
	right, rightImg := render(0.95)

	// 1000x500 cut to 3:2 keeps a 750x500 window; no upscaling to 900x600.
	assert.Equal(t, 750, left.Width)
	assert.Equal(t, 500, left.Height)
	assert.NotEqual(t, left.ETag, right.ETag)

	lr, _, lb, _ := leftImg.At(5, 250).RGBA()
	assert.Greater(t, lr, lb, "left crop keeps the red stripe")
	rr, _, rb, _ := rightImg.At(5, 250).RGBA()
	assert.Greater(t, rb, rr, "right crop starts past the red stripe")
}

func TestProcessContainJPEG(t *testing.T) {
	out, err := Process(bytes.NewReader(stripedPNG(t)), Transform{
		Width:      400,
		Quality:    70,
		Format:     FormatAuto,
		ResizeMode: ResizeContain,
		Focus:      Center,
	})
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", out.ContentType)
	assert.Equal(t, 400, out.Width)
	assert.Equal(t, 200, out.Height)
	assert.True(t, strings.HasPrefix(out.ETag, `"`))
}

func TestProcessIsDeterministic(t *testing.T) {
	src := stripedPNG(t)
	tr := Transform{Width: 300, Height: 300, Quality: 80, Format: FormatJPEG, ResizeMode: ResizeCover, Focus: Center}
	a, err := Process(bytes.NewReader(src), tr)
	require.NoError(t, err)
	b, err := Process(bytes.NewReader(src), tr)
	require.NoError(t, err)
	assert.Equal(t, a.ETag, b.ETag)
}

func TestProcessRejectsGarbage(t *testing.T) {
	_, err := Process(strings.NewReader("not an image"), Transform{Quality: 80, Format: FormatAuto, ResizeMode: ResizeContain})
	assert.True(t, errors.Is(err, ErrUnsupportedSource))
}

func TestParseTransform(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		want    Transform
		wantErr bool
	}{
		{
			name:  "defaults",
			query: "",
			want:  Transform{Quality: 80, Format: FormatAuto, ResizeMode: ResizeContain, Focus: Center},
		},
		{
			name:  "full",
			query: "width=900&height=300&quality=55&format=PNG&resize=cover&fx=0.1&fy=0.9",
			want:  Transform{Width: 900, Height: 300, Quality: 55, Format: FormatPNG, ResizeMode: ResizeCover, Focus: FocalPoint{X: 0.1, Y: 0.9}},
		},
		{name: "bad width", query: "width=abc", wantErr: true},
		{name: "too wide", query: "width=100000", wantErr: true},
		{name: "bad quality", query: "quality=0", wantErr: true},
		{name: "bad format", query: "format=bmp", wantErr: true},
		{name: "bad resize", query: "resize=squash", wantErr: true},
		{name: "half focal point", query: "fx=0.5", wantErr: true},
		{name: "focal out of range", query: "fx=1.5&fy=0.5", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := url.ParseQuery(tt.query)
			require.NoError(t, err)
			got, err := ParseTransform(q)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidTransform)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
