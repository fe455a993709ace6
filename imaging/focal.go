package imaging

import "math"

// Rect is a crop window in source pixel coordinates.
type Rect struct {
	X, Y, W, H int
}

// Contains reports whether the source pixel coordinate (px, py) lies inside r.
func (r Rect) Contains(px, py float64) bool {
	return px >= float64(r.X) && px <= float64(r.X+r.W) &&
		py >= float64(r.Y) && py <= float64(r.Y+r.H)
}

// CropWindow returns the largest window of the outW:outH aspect ratio that
// fits inside a srcW x srcH image, positioned so its center is as close to
// the focal point as the image bounds allow. When the output box has no
// fixed aspect ratio the whole image is returned.
//
// Positions are whole pixels. If the ideal position falls exactly between
// two pixels, the one nearer the centered position wins; if that is also a
// tie, the lower coordinate wins.
func CropWindow(srcW, srcH, outW, outH int, fp FocalPoint) Rect {
	if srcW <= 0 || srcH <= 0 {
		return Rect{}
	}
	if outW <= 0 || outH <= 0 {
		return Rect{W: srcW, H: srcH}
	}
	if !fp.Valid() {
		fp = Center
	}

	cw, ch := srcW, srcH
	wide := int64(srcW) * int64(outH)
	tall := int64(outW) * int64(srcH)
	switch {
	case wide > tall:
		cw = clampInt(int(math.Round(float64(srcH)*float64(outW)/float64(outH))), 1, srcW)
	case wide < tall:
		ch = clampInt(int(math.Round(float64(srcW)*float64(outH)/float64(outW))), 1, srcH)
	}

	return Rect{
		X: place(fp.X*float64(srcW), cw, srcW),
		Y: place(fp.Y*float64(srcH), ch, srcH),
		W: cw,
		H: ch,
	}
}

// place positions a span of length n inside [0, total] so that its midpoint
// is as close to focus as possible.
func place(focus float64, n, total int) int {
	limit := total - n
	if limit <= 0 {
		return 0
	}
	ideal := focus - float64(n)/2
	lo, hi := math.Floor(ideal), math.Ceil(ideal)

	pos := lo
	switch dl, dh := ideal-lo, hi-ideal; {
	case dh < dl:
		pos = hi
	case dh == dl && lo != hi:
		center := float64(limit) / 2
		if math.Abs(hi-center) < math.Abs(lo-center) {
			pos = hi
		}
	}
	return clampInt(int(pos), 0, limit)
}

// OutputSize computes the dimensions of the encoded image for a source of
// srcW x srcH. A zero width or height leaves that axis unconstrained.
// Images are never upscaled.
func OutputSize(srcW, srcH, w, h int, mode ResizeMode, fp FocalPoint) (crop Rect, outW, outH int) {
	crop = Rect{W: srcW, H: srcH}
	if srcW <= 0 || srcH <= 0 {
		return Rect{}, 0, 0
	}

	switch {
	case mode == ResizeFill && w > 0 && h > 0:
		return crop, min(w, srcW), min(h, srcH)
	case mode == ResizeCover && w > 0 && h > 0:
		crop = CropWindow(srcW, srcH, w, h, fp)
		scale := math.Min(1, float64(w)/float64(crop.W))
		return crop, scaled(crop.W, scale), scaled(crop.H, scale)
	}

	scale := 1.0
	if w > 0 {
		scale = math.Min(scale, float64(w)/float64(srcW))
	}
	if h > 0 {
		scale = math.Min(scale, float64(h)/float64(srcH))
	}
	return crop, scaled(srcW, scale), scaled(srcH, scale)
}

func scaled(n int, scale float64) int {
	return max(1, int(math.Round(float64(n)*scale)))
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
