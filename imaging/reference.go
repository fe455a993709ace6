// Package imaging turns image references found in content into delivery URLs
// for the managed object store, and implements the transform backend that
// serves those URLs.
package imaging

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Format is the output encoding requested from the transform service.
type Format string

const (
	FormatAuto Format = "auto"
	FormatWebP Format = "webp"
	FormatJPEG Format = "jpeg"
	FormatPNG  Format = "png"
)

// Valid reports whether f is one of the supported formats.
func (f Format) Valid() bool {
	switch f {
	case FormatAuto, FormatWebP, FormatJPEG, FormatPNG:
		return true
	}
	return false
}

// ResizeMode controls how the source is fitted into the requested box.
type ResizeMode string

const (
	ResizeCover   ResizeMode = "cover"
	ResizeContain ResizeMode = "contain"
	ResizeFill    ResizeMode = "fill"
)

// Valid reports whether m is one of the supported resize modes.
func (m ResizeMode) Valid() bool {
	switch m {
	case ResizeCover, ResizeContain, ResizeFill:
		return true
	}
	return false
}

// FocalPoint is the fractional position of the subject within the original
// image. Both coordinates are in [0,1].
type FocalPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Center is the geometric center of an image.
var Center = FocalPoint{X: 0.5, Y: 0.5}

// Valid reports whether both coordinates lie in [0,1].
func (p FocalPoint) Valid() bool {
	return inUnit(p.X) && inUnit(p.Y)
}

func inUnit(v float64) bool {
	return !math.IsNaN(v) && v >= 0 && v <= 1
}

// Reference points at an image: either a bare URL or a structured object
// with url, src or path plus optional transform overrides. Exactly one
// location is authoritative; see Location.
type Reference struct {
	URL        string      `json:"url,omitempty"`
	Src        string      `json:"src,omitempty"`
	Path       string      `json:"path,omitempty"`
	Width      int         `json:"width,omitempty"`
	Height     int         `json:"height,omitempty"`
	Quality    int         `json:"quality,omitempty"`
	Format     Format      `json:"format,omitempty"`
	ResizeMode ResizeMode  `json:"resizeMode,omitempty"`
	Focus      *FocalPoint `json:"focalPoint,omitempty"`
}

// Location returns the authoritative location string, checking url, then
// src, then path. It returns "" when none is set.
func (r Reference) Location() string {
	for _, loc := range []string{r.URL, r.Src, r.Path} {
		if s := strings.TrimSpace(loc); s != "" {
			return s
		}
	}
	return ""
}

// UnmarshalJSON accepts either a JSON string or an object.
func (r *Reference) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	ref, _ := ParseReference(v)
	*r = ref
	return nil
}

// ParseReference builds a Reference from a decoded JSON value. ok is false
// when v is neither a string nor an object. A returned reference may still
// have an empty Location.
func ParseReference(v any) (ref Reference, ok bool) {
	switch t := v.(type) {
	case string:
		return Reference{URL: strings.TrimSpace(t)}, true
	case map[string]any:
		ref.URL = stringField(t, "url")
		ref.Src = stringField(t, "src")
		ref.Path = stringField(t, "path")
		ref.Width, _ = IntValue(t["width"])
		ref.Height, _ = IntValue(t["height"])
		ref.Quality, _ = IntValue(t["quality"])
		ref.Format = Format(strings.ToLower(stringField(t, "format")))
		ref.ResizeMode = ResizeMode(strings.ToLower(firstString(t, "resizeMode", "resize_mode", "resize")))
		ref.Focus = ParseFocalPoint(firstValue(t, "focalPoint", "focal_point", "focus"))
		return ref, true
	}
	return Reference{}, false
}

// ParseFocalPoint reads an {x, y} object. It returns nil when v is not a
// well-formed focal point or either coordinate falls outside [0,1].
func ParseFocalPoint(v any) *FocalPoint {
	m, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	x, okX := FloatValue(m["x"])
	y, okY := FloatValue(m["y"])
	if !okX || !okY {
		return nil
	}
	fp := FocalPoint{X: x, Y: y}
	if !fp.Valid() {
		return nil
	}
	return &fp
}

// IntValue converts JSON-ish numbers (float64, json.Number, ints and
// numeric strings) to int. Fractional values are rejected.
func IntValue(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if n != math.Trunc(n) || math.IsInf(n, 0) {
			return 0, false
		}
		return int(n), true
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, false
		}
		return int(i), true
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0, false
		}
		return i, true
	}
	return 0, false
}

// FloatValue converts JSON-ish numbers to float64.
func FloatValue(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	}
	return 0, false
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return strings.TrimSpace(s)
}

func firstString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if s := stringField(m, k); s != "" {
			return s
		}
	}
	return ""
}

func firstValue(m map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := m[k]; ok && v != nil {
			return v
		}
	}
	return nil
}
