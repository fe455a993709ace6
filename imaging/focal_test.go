package imaging

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCropWindowKeepsFocalPointNearEdge(t *testing.T) {
	// 1000x500 original, square output 500 wide: a centered crop would be
	// [250,750] and miss the subject at x=50.
	fp := FocalPoint{X: 0.05, Y: 0.5}
	r := CropWindow(1000, 500, 500, 500, fp)

	assert.Equal(t, Rect{X: 0, Y: 0, W: 500, H: 500}, r)
	assert.True(t, r.Contains(fp.X*1000, fp.Y*500))
	assert.GreaterOrEqual(t, r.X, 0)
	assert.LessOrEqual(t, r.X+r.W, 1000)
}

func TestCropWindow(t *testing.T) {
	tests := []struct {
		name       string
		srcW, srcH int
		outW, outH int
		fp         FocalPoint
		want       Rect
	}{
		{"centered landscape", 1000, 500, 500, 500, Center, Rect{X: 250, Y: 0, W: 500, H: 500}},
		{"subject right edge", 1000, 500, 1, 1, FocalPoint{X: 0.98, Y: 0.5}, Rect{X: 500, Y: 0, W: 500, H: 500}},
		{"subject inside, no clamp", 1000, 500, 1, 1, FocalPoint{X: 0.4, Y: 0.5}, Rect{X: 150, Y: 0, W: 500, H: 500}},
		{"portrait crop vertical bias", 600, 1200, 600, 600, FocalPoint{X: 0.5, Y: 0.1}, Rect{X: 0, Y: 0, W: 600, H: 600}},
		{"portrait crop bottom", 600, 1200, 2, 2, FocalPoint{X: 0.5, Y: 0.75}, Rect{X: 0, Y: 600, W: 600, H: 600}},
		{"same aspect uses whole image", 800, 400, 400, 200, FocalPoint{X: 0.1, Y: 0.9}, Rect{X: 0, Y: 0, W: 800, H: 400}},
		{"no output aspect", 800, 400, 400, 0, FocalPoint{X: 0.1, Y: 0.9}, Rect{W: 800, H: 400}},
		{"invalid focal point falls back to center", 1000, 500, 1, 1, FocalPoint{X: 2, Y: -1}, Rect{X: 250, Y: 0, W: 500, H: 500}},
		{"empty source", 0, 0, 100, 100, Center, Rect{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CropWindow(tt.srcW, tt.srcH, tt.outW, tt.outH, tt.fp)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCropWindowTieBreak(t *testing.T) {
	// Ideal left edge is 250.5; 250 and 251 are equally close to it and to
	// the centered position (250.5), so the lower coordinate wins.
	r := CropWindow(1001, 500, 1, 1, Center)
	assert.Equal(t, 250, r.X)

	// Ideal left edge 100.5 on a span whose centered position is 256: the
	// candidate nearer the center (101) wins.
	r = CropWindow(1024, 512, 1, 1, FocalPoint{X: 713.0 / 2048, Y: 0.5})
	assert.Equal(t, 101, r.X)
}

func TestCropWindowIsDeterministic(t *testing.T) {
	fp := FocalPoint{X: 0.33, Y: 0.71}
	first := CropWindow(1234, 987, 16, 9, fp)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, CropWindow(1234, 987, 16, 9, fp))
	}
}

func TestOutputSize(t *testing.T) {
	tests := []struct {
		name       string
		srcW, srcH int
		w, h       int
		mode       ResizeMode
		wantW      int
		wantH      int
	}{
		{"contain width only", 2000, 1000, 900, 0, ResizeContain, 900, 450},
		{"contain both", 2000, 1000, 900, 300, ResizeContain, 600, 300},
		{"contain never upscales", 400, 200, 900, 0, ResizeContain, 400, 200},
		{"cover square", 2000, 1000, 500, 500, ResizeCover, 500, 500},
		{"cover small source keeps crop size", 300, 200, 500, 500, ResizeCover, 200, 200},
		{"cover width only behaves like contain", 2000, 1000, 500, 0, ResizeCover, 500, 250},
		{"fill stretches", 2000, 1000, 300, 300, ResizeFill, 300, 300},
		{"no constraints", 640, 480, 0, 0, ResizeContain, 640, 480},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, w, h := OutputSize(tt.srcW, tt.srcH, tt.w, tt.h, tt.mode, Center)
			assert.Equal(t, tt.wantW, w)
			assert.Equal(t, tt.wantH, h)
		})
	}
}
