package imaging

import (
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testResolver() *Resolver {
	return NewResolver(ManagedStore{
		BaseURL:      "https://example.com/media/",
		Hosts:        []string{"cdn.example.com"},
		RenderPrefix: "/img/",
	})
}

func TestResolveNoLocation(t *testing.T) {
	r := testResolver()
	refs := []Reference{
		{},
		{URL: "  ", Src: "", Path: "\t"},
		{Width: 200, Quality: 50, Focus: &FocalPoint{X: 0.1, Y: 0.1}},
	}
	for _, ref := range refs {
		_, ok := r.Resolve(ref, UsePreset(PresetCard), nil)
		assert.False(t, ok, "ref %+v", ref)
	}
}

func TestResolveCardPreset(t *testing.T) {
	r := testResolver()
	img, ok := r.Resolve(Reference{URL: "https://example.com/media/covers/a.jpg"}, UsePreset(PresetCard), nil)
	require.True(t, ok)

	assert.Equal(t, ResizeCover, img.ResizeMode)
	require.NotNil(t, img.Width)
	assert.Equal(t, 900, *img.Width)
	require.NotNil(t, img.Height)
	assert.Equal(t, 600, *img.Height)
	assert.Equal(t, FormatAuto, img.Format)
	assert.Equal(t,
		"https://example.com/img/covers/a.jpg?format=auto&height=600&quality=80&resize=cover&width=900",
		img.DeliveryURL)
}

func TestResolvePresetDefaults(t *testing.T) {
	tests := []struct {
		preset string
		width  int
		height int
		mode   ResizeMode
	}{
		{PresetThumbnail, 400, 400, ResizeCover},
		{PresetCard, 900, 600, ResizeCover},
		{PresetHero, 1920, 0, ResizeContain},
		{PresetGallery, 1600, 0, ResizeContain},
		{PresetFull, 2400, 0, ResizeContain},
	}
	r := testResolver()
	for _, tt := range tests {
		t.Run(tt.preset, func(t *testing.T) {
			img, ok := r.Resolve(Reference{Path: "a.png"}, UsePreset(tt.preset), nil)
			require.True(t, ok)
			require.NotNil(t, img.Width)
			assert.Equal(t, tt.width, *img.Width)
			if tt.height == 0 {
				assert.Nil(t, img.Height)
			} else {
				require.NotNil(t, img.Height)
				assert.Equal(t, tt.height, *img.Height)
			}
			assert.Equal(t, tt.mode, img.ResizeMode)
		})
	}
}

func TestResolveLocationOrder(t *testing.T) {
	r := testResolver()
	img, ok := r.Resolve(Reference{
		URL:  "https://example.com/media/from-url.jpg",
		Src:  "https://example.com/media/from-src.jpg",
		Path: "from-path.jpg",
	}, Options{}, nil)
	require.True(t, ok)
	assert.Contains(t, img.DeliveryURL, "/img/from-url.jpg")

	img, ok = r.Resolve(Reference{Src: "from-src.jpg", Path: "from-path.jpg"}, Options{}, nil)
	require.True(t, ok)
	assert.Contains(t, img.DeliveryURL, "/img/from-src.jpg")

	img, ok = r.Resolve(Reference{Path: "nested/from-path.jpg"}, Options{}, nil)
	require.True(t, ok)
	assert.Equal(t, "https://example.com/img/nested/from-path.jpg?format=auto&quality=80&resize=contain", img.DeliveryURL)
}

func TestResolveExternalURLUnchanged(t *testing.T) {
	r := testResolver()
	urls := []string{
		"https://images.unsplash.com/photo-1?ixlib=rb",
		"https://example.com/assets/logo.png",
		"https://example.com/img/already/rendered.jpg?width=10",
		"ftp://example.com/media/file.jpg",
		"data:image/png;base64,AAAA",
	}
	for _, u := range urls {
		img, ok := r.Resolve(Reference{URL: u}, UsePreset(PresetHero), &FocalPoint{X: 0.2, Y: 0.2})
		require.True(t, ok)
		assert.Equal(t, u, img.DeliveryURL)
		assert.Nil(t, img.Width)
		assert.Nil(t, img.Focus)
	}
}

func TestResolveCDNAlias(t *testing.T) {
	r := testResolver()
	img, ok := r.Resolve(Reference{URL: "https://CDN.example.com/media/x.jpg"}, UsePreset(PresetThumbnail), nil)
	require.True(t, ok)
	assert.Equal(t, "https://CDN.example.com/img/x.jpg?format=auto&height=400&quality=80&resize=cover&width=400", img.DeliveryURL)
}

func TestResolveUnknownPresetFallsBackToOriginal(t *testing.T) {
	r := testResolver()
	img, ok := r.Resolve(Reference{Path: "covers/a.jpg"}, UsePreset("poster"), nil)
	require.True(t, ok)
	assert.Equal(t, "https://example.com/media/covers/a.jpg", img.DeliveryURL)
	assert.Nil(t, img.Width)
}

func TestResolveInvalidOverridesFallBackToOriginal(t *testing.T) {
	r := testResolver()
	for _, opts := range []Options{
		{Quality: 101},
		{Format: "tiff"},
		{ResizeMode: "stretch"},
		{Width: -5},
		{Width: MaxDimension + 1},
		{Height: 5000},
	} {
		img, ok := r.Resolve(Reference{Path: "a.jpg"}, opts, nil)
		require.True(t, ok)
		assert.Equal(t, "https://example.com/media/a.jpg", img.DeliveryURL, "opts %+v", opts)
	}
}

func TestResolvePriority(t *testing.T) {
	r := testResolver()
	ref := Reference{Path: "a.jpg", Width: 700, Quality: 60, Format: FormatPNG}

	// Reference overrides beat the preset.
	img, ok := r.Resolve(ref, UsePreset(PresetCard), nil)
	require.True(t, ok)
	assert.Equal(t, 700, *img.Width)
	assert.Equal(t, FormatPNG, img.Format)
	assert.Equal(t, ResizeCover, img.ResizeMode)

	// Explicit options beat both.
	img, ok = r.Resolve(ref, Options{Preset: PresetCard, Width: 320, Height: 200, Format: FormatWebP}, nil)
	require.True(t, ok)
	assert.Equal(t, 320, *img.Width)
	assert.Equal(t, 200, *img.Height)
	assert.Equal(t, FormatWebP, img.Format)
	assert.Equal(t, "https://example.com/img/a.jpg?format=webp&height=200&quality=60&resize=cover&width=320", img.DeliveryURL)
}

func TestResolveFocalPoint(t *testing.T) {
	r := testResolver()
	refFocus := &FocalPoint{X: 0.9, Y: 0.1}
	ref := Reference{Path: "a.jpg", Focus: refFocus}

	img, ok := r.Resolve(ref, UsePreset(PresetCard), nil)
	require.True(t, ok)
	require.NotNil(t, img.Focus)
	assert.Equal(t, *refFocus, *img.Focus)
	assert.Contains(t, img.DeliveryURL, "fx=0.900&fy=0.100")

	img, ok = r.Resolve(ref, UsePreset(PresetCard), &FocalPoint{X: 0.05, Y: 0.5})
	require.True(t, ok)
	assert.Contains(t, img.DeliveryURL, "fx=0.050&fy=0.500")

	// contain ignores focal points
	img, ok = r.Resolve(ref, UsePreset(PresetHero), &FocalPoint{X: 0.05, Y: 0.5})
	require.True(t, ok)
	assert.Nil(t, img.Focus)
	assert.NotContains(t, img.DeliveryURL, "fx=")

	// out-of-range focal points are ignored
	img, ok = r.Resolve(Reference{Path: "a.jpg"}, UsePreset(PresetCard), &FocalPoint{X: 1.5, Y: 0.5})
	require.True(t, ok)
	assert.Nil(t, img.Focus)
}

func TestResolveFocusOnlyWhenCropping(t *testing.T) {
	r := testResolver()
	focus := &FocalPoint{X: 0.05, Y: 0.5}

	// A cover with one free axis scales without cropping, so the focal point
	// would only split the cache.
	img, ok := r.Resolve(Reference{Path: "a.jpg"}, Options{Width: 900, ResizeMode: ResizeCover}, focus)
	require.True(t, ok)
	assert.Nil(t, img.Focus)
	assert.Equal(t, "https://example.com/img/a.jpg?format=auto&quality=80&resize=cover&width=900", img.DeliveryURL)

	for _, preset := range []string{PresetThumbnail, PresetCard} {
		img, ok = r.Resolve(Reference{Path: "a.jpg"}, UsePreset(preset), focus)
		require.True(t, ok)
		assert.Contains(t, img.DeliveryURL, "fx=0.050&fy=0.500", preset)
	}
}

func TestResolvedURLsParse(t *testing.T) {
	r := testResolver()
	refs := []Reference{
		{Path: "a.jpg"},
		{URL: "https://example.com/media/a.jpg?v=2", Width: 5000},
		{Path: "a.jpg", Height: MaxDimension, ResizeMode: ResizeCover},
		{Path: "a.jpg", Width: 700, Quality: 1, Format: FormatPNG},
		{Path: "a.jpg", Focus: &FocalPoint{X: 1, Y: 0}},
	}
	presets := []string{"", PresetThumbnail, PresetCard, PresetHero, PresetGallery, PresetFull}
	for _, ref := range refs {
		for _, preset := range presets {
			img, ok := r.Resolve(ref, UsePreset(preset), &FocalPoint{X: 0.3, Y: 0.7})
			require.True(t, ok)
			u, err := url.Parse(img.DeliveryURL)
			require.NoError(t, err)
			if !strings.HasPrefix(u.Path, "/img/") {
				assert.Equal(t, "/media/a.jpg", u.Path, "untransformed URLs must be the original")
				continue
			}
			_, err = ParseTransform(u.Query())
			assert.NoError(t, err, "ref %+v preset %q: %s", ref, preset, img.DeliveryURL)
		}
	}
}

func TestObjectPrefixMatchesWholeSegments(t *testing.T) {
	r := NewResolver(ManagedStore{
		BaseURL:      "https://example.com/",
		Hosts:        []string{"localhost:8080"},
		ObjectPrefix: "/media",
		RenderPrefix: "/img",
	})
	assert.False(t, r.Managed("https://example.com/mediafoo/a.jpg"))
	assert.False(t, r.Managed("https://example.com/media"))

	img, ok := r.Resolve(Reference{URL: "https://example.com/media/a.jpg"}, Options{}, nil)
	require.True(t, ok)
	assert.Equal(t, "https://example.com/img/a.jpg?format=auto&quality=80&resize=contain", img.DeliveryURL)

	key, ok := r.ObjectKey("http://localhost:8080/media/covers/b.png")
	require.True(t, ok)
	assert.Equal(t, "covers/b.png", key)
}

func TestResolveIsByteStable(t *testing.T) {
	r := testResolver()
	ref := Reference{URL: "https://example.com/media/a.jpg?v=3&b=1#frag", Height: 300}
	focus := &FocalPoint{X: 0.25, Y: 0.75}

	first, ok := r.Resolve(ref, UsePreset(PresetThumbnail), focus)
	require.True(t, ok)
	assert.Equal(t,
		"https://example.com/img/a.jpg?b=1&format=auto&fx=0.250&fy=0.750&height=300&quality=80&resize=cover&v=3&width=400",
		first.DeliveryURL)

	var wg sync.WaitGroup
	results := make([]string, 32)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			img, _ := r.Resolve(ref, UsePreset(PresetThumbnail), focus)
			results[i] = img.DeliveryURL
		}(i)
	}
	wg.Wait()
	for _, got := range results {
		assert.Equal(t, first.DeliveryURL, got)
	}
}

func TestResolveRoundTripsThroughParseTransform(t *testing.T) {
	r := testResolver()
	img, ok := r.Resolve(Reference{Path: "a.jpg"}, Options{Preset: PresetCard, Height: 600}, &FocalPoint{X: 0.05, Y: 0.5})
	require.True(t, ok)

	u, err := url.Parse(img.DeliveryURL)
	require.NoError(t, err)
	tr, err := ParseTransform(u.Query())
	require.NoError(t, err)
	assert.Equal(t, Transform{
		Width:      900,
		Height:     600,
		Quality:    80,
		Format:     FormatAuto,
		ResizeMode: ResizeCover,
		Focus:      FocalPoint{X: 0.05, Y: 0.5},
	}, tr)
}

func TestWithPreset(t *testing.T) {
	r := NewResolver(ManagedStore{BaseURL: "https://example.com/media"},
		WithPreset("avatar", Preset{Width: 96, Height: 96, ResizeMode: ResizeCover, Quality: 70}))

	img, ok := r.Resolve(Reference{Path: "me.jpg"}, UsePreset("avatar"), nil)
	require.True(t, ok)
	assert.Equal(t, "https://example.com/media/me.jpg?format=auto&height=96&quality=70&resize=cover&width=96", img.DeliveryURL)

	_, ok = NewResolver(ManagedStore{}).Preset("avatar")
	assert.False(t, ok, "presets must not leak between resolvers")
}

func TestObjectKey(t *testing.T) {
	r := testResolver()
	key, ok := r.ObjectKey("https://cdn.example.com/media/covers/a.jpg")
	require.True(t, ok)
	assert.Equal(t, "covers/a.jpg", key)

	_, ok = r.ObjectKey("https://other.org/media/covers/a.jpg")
	assert.False(t, ok)
	assert.True(t, r.Managed("covers/a.jpg"))
}
