package imaging

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/image/draw"
)

// MaxDimension bounds requested output sizes.
const MaxDimension = 4096

var (
	// ErrInvalidTransform is returned for malformed transform parameters.
	ErrInvalidTransform = errors.New("imaging: invalid transform")
	// ErrUnsupportedSource is returned when the original cannot be decoded.
	ErrUnsupportedSource = errors.New("imaging: unsupported source image")
)

// Transform is the decoded parameter set of a delivery URL.
type Transform struct {
	Width      int
	Height     int
	Quality    int
	Format     Format
	ResizeMode ResizeMode
	Focus      FocalPoint
}

// ParseTransform reads the parameters written by Resolver.Resolve. Missing
// values take the global defaults.
func ParseTransform(q url.Values) (Transform, error) {
	t := Transform{
		Quality:    DefaultQuality,
		Format:     DefaultFormat,
		ResizeMode: DefaultResizeMode,
		Focus:      Center,
	}
	var err error
	if t.Width, err = dimension(q, ParamWidth); err != nil {
		return Transform{}, err
	}
	if t.Height, err = dimension(q, ParamHeight); err != nil {
		return Transform{}, err
	}
	if v := q.Get(ParamQuality); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 100 {
			return Transform{}, fmt.Errorf("%w: quality %q", ErrInvalidTransform, v)
		}
		t.Quality = n
	}
	if v := q.Get(ParamFormat); v != "" {
		t.Format = Format(strings.ToLower(v))
		if !t.Format.Valid() {
			return Transform{}, fmt.Errorf("%w: format %q", ErrInvalidTransform, v)
		}
	}
	if v := q.Get(ParamResize); v != "" {
		t.ResizeMode = ResizeMode(strings.ToLower(v))
		if !t.ResizeMode.Valid() {
			return Transform{}, fmt.Errorf("%w: resize %q", ErrInvalidTransform, v)
		}
	}
	fx, fy := q.Get(ParamFocusX), q.Get(ParamFocusY)
	if fx != "" || fy != "" {
		x, errX := strconv.ParseFloat(fx, 64)
		y, errY := strconv.ParseFloat(fy, 64)
		fp := FocalPoint{X: x, Y: y}
		if errX != nil || errY != nil || !fp.Valid() {
			return Transform{}, fmt.Errorf("%w: focal point (%q, %q)", ErrInvalidTransform, fx, fy)
		}
		t.Focus = fp
	}
	return t, nil
}

func dimension(q url.Values, key string) (int, error) {
	v := q.Get(key)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 || n > MaxDimension {
		return 0, fmt.Errorf("%w: %s %q", ErrInvalidTransform, key, v)
	}
	return n, nil
}

// Output is an encoded image variant.
type Output struct {
	Data        []byte
	ContentType string
	Width       int
	Height      int
	ETag        string
}

// Process decodes an original, crops and scales it according to t, and
// re-encodes it. WebP has no encoder in the pure-Go stack, so webp and
// auto produce JPEG.
func Process(src io.Reader, t Transform) (Output, error) {
	img, _, err := image.Decode(src)
	if err != nil {
		return Output{}, fmt.Errorf("%w: %v", ErrUnsupportedSource, err)
	}

	bounds := img.Bounds()
	crop, w, h := OutputSize(bounds.Dx(), bounds.Dy(), t.Width, t.Height, t.ResizeMode, t.Focus)
	srcRect := image.Rect(crop.X, crop.Y, crop.X+crop.W, crop.Y+crop.H).Add(bounds.Min)

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, srcRect, draw.Over, nil)

	var buf bytes.Buffer
	contentType := "image/jpeg"
	if t.Format == FormatPNG {
		contentType = "image/png"
		err = png.Encode(&buf, dst)
	} else {
		err = jpeg.Encode(&buf, dst, &jpeg.Options{Quality: t.Quality})
	}
	if err != nil {
		return Output{}, fmt.Errorf("encode %s: %w", contentType, err)
	}

	hash := sha256.Sum256(buf.Bytes())
	return Output{
		Data:        buf.Bytes(),
		ContentType: contentType,
		Width:       w,
		Height:      h,
		ETag:        `"` + hex.EncodeToString(hash[:16]) + `"`,
	}, nil
}
