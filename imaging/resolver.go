package imaging

import (
	"net/url"
	"strconv"
	"strings"
)

// Query parameter names of the managed store's transform scheme.
const (
	ParamWidth   = "width"
	ParamHeight  = "height"
	ParamQuality = "quality"
	ParamFormat  = "format"
	ParamResize  = "resize"
	ParamFocusX  = "fx"
	ParamFocusY  = "fy"
)

// ManagedStore describes where original images live. Only URLs under
// ObjectPrefix on one of Hosts (or BaseURL's host) are transformed.
type ManagedStore struct {
	// BaseURL is the public URL of the object prefix, e.g.
	// "https://example.com/media/". Relative locations resolve against it.
	BaseURL string
	// Hosts lists extra hostnames that serve the same objects (CDN aliases).
	Hosts []string
	// ObjectPrefix is the path prefix of originals. Defaults to BaseURL's path.
	ObjectPrefix string
	// RenderPrefix, when set, replaces ObjectPrefix in delivery URLs so
	// requests hit the transform endpoint instead of the raw object.
	RenderPrefix string
}

// Options are explicit transform parameters for one Resolve call. Preset
// names a row of the preset table; any non-zero field overrides it.
type Options struct {
	Preset     string
	Width      int
	Height     int
	Quality    int
	Format     Format
	ResizeMode ResizeMode
}

// UsePreset returns Options selecting only the named preset.
func UsePreset(name string) Options {
	return Options{Preset: name}
}

// ResolvedImage is a concrete delivery URL plus geometry hints.
type ResolvedImage struct {
	DeliveryURL string      `json:"deliveryUrl"`
	Width       *int        `json:"width"`
	Height      *int        `json:"height"`
	Format      Format      `json:"format"`
	ResizeMode  ResizeMode  `json:"resizeMode"`
	Focus       *FocalPoint `json:"focalPoint,omitempty"`
}

// Resolver builds delivery URLs. It holds no mutable state after
// construction and is safe for concurrent use.
type Resolver struct {
	base         *url.URL
	hosts        map[string]struct{}
	objectPrefix string
	renderPrefix string
	presets      map[string]Preset
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithPreset adds or replaces a preset.
func WithPreset(name string, p Preset) ResolverOption {
	return func(r *Resolver) {
		r.presets[name] = p
	}
}

// NewResolver creates a Resolver for the given managed store.
func NewResolver(store ManagedStore, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		hosts:        make(map[string]struct{}),
		objectPrefix: store.ObjectPrefix,
		renderPrefix: store.RenderPrefix,
		presets:      make(map[string]Preset, len(DefaultPresets)),
	}
	for name, p := range DefaultPresets {
		r.presets[name] = p
	}
	if u, err := url.Parse(store.BaseURL); err == nil && u.IsAbs() && u.Host != "" {
		if !strings.HasSuffix(u.Path, "/") {
			u.Path += "/"
		}
		r.base = u
		r.hosts[strings.ToLower(u.Hostname())] = struct{}{}
		if r.objectPrefix == "" {
			r.objectPrefix = u.Path
		}
	}
	for _, h := range store.Hosts {
		h = (&url.URL{Host: strings.TrimSpace(h)}).Hostname()
		if h != "" {
			r.hosts[strings.ToLower(h)] = struct{}{}
		}
	}
	r.objectPrefix = dirPrefix(r.objectPrefix)
	if r.renderPrefix != "" {
		r.renderPrefix = dirPrefix(r.renderPrefix)
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Preset returns the named preset.
func (r *Resolver) Preset(name string) (Preset, bool) {
	p, ok := r.presets[name]
	return p, ok
}

// Resolve turns ref into a delivery URL. ok is false when ref has no
// location, meaning there is no image to show. Images outside the managed
// store, and requests that cannot be transformed confidently, resolve to
// the original URL unchanged. An explicit focus overrides the reference's
// own focal point; focal points are only written for cover transforms with
// both a width and a height, the only ones that crop.
func (r *Resolver) Resolve(ref Reference, opts Options, focus *FocalPoint) (img ResolvedImage, ok bool) {
	loc := ref.Location()
	if loc == "" {
		return ResolvedImage{}, false
	}

	u, managed := r.managed(loc)
	if !managed {
		return passthrough(loc), true
	}

	p, valid := r.derive(ref, opts)
	if !valid {
		return passthrough(u.String()), true
	}

	if focus == nil {
		focus = ref.Focus
	}
	if focus != nil && (!focus.Valid() || !p.crops()) {
		focus = nil
	}

	out := *u
	if r.renderPrefix != "" {
		out.Path = r.renderPrefix + strings.TrimPrefix(u.Path, r.objectPrefix)
		out.RawPath = ""
	}
	q := u.Query()
	if p.Width > 0 {
		q.Set(ParamWidth, strconv.Itoa(p.Width))
	}
	if p.Height > 0 {
		q.Set(ParamHeight, strconv.Itoa(p.Height))
	}
	q.Set(ParamQuality, strconv.Itoa(p.Quality))
	q.Set(ParamFormat, string(p.Format))
	q.Set(ParamResize, string(p.ResizeMode))
	if focus != nil {
		q.Set(ParamFocusX, formatCoord(focus.X))
		q.Set(ParamFocusY, formatCoord(focus.Y))
	}
	// Encode sorts by key.
	out.RawQuery = q.Encode()
	out.Fragment = ""

	img = ResolvedImage{
		DeliveryURL: out.String(),
		Format:      p.Format,
		ResizeMode:  p.ResizeMode,
	}
	if p.Width > 0 {
		img.Width = intPtr(p.Width)
	}
	if p.Height > 0 {
		img.Height = intPtr(p.Height)
	}
	if focus != nil {
		fp := *focus
		img.Focus = &fp
	}
	return img, true
}

// SrcsetWidths are the narrower variants offered next to a preset's width.
var SrcsetWidths = []int{480, 960, 1440}

// Srcset resolves the narrower variants of full, which must be ref resolved
// with preset and focus. Images with a fixed box or outside the managed
// store have none.
func (r *Resolver) Srcset(ref Reference, preset string, focus *FocalPoint, full ResolvedImage) []ResolvedImage {
	if full.Width == nil || full.Height != nil || !r.Managed(ref.Location()) {
		return nil
	}
	var out []ResolvedImage
	for _, w := range SrcsetWidths {
		if w >= *full.Width {
			break
		}
		opts := UsePreset(preset)
		opts.Width = w
		if v, ok := r.Resolve(ref, opts, focus); ok {
			out = append(out, v)
		}
	}
	return out
}

// Managed reports whether loc addresses an original in the managed store.
func (r *Resolver) Managed(loc string) bool {
	_, ok := r.managed(strings.TrimSpace(loc))
	return ok
}

// ObjectKey returns the store key of a managed location, e.g.
// "covers/a.jpg" for "https://example.com/media/covers/a.jpg".
func (r *Resolver) ObjectKey(loc string) (string, bool) {
	u, ok := r.managed(strings.TrimSpace(loc))
	if !ok {
		return "", false
	}
	return strings.TrimPrefix(u.Path, r.objectPrefix), true
}

func (r *Resolver) managed(loc string) (*url.URL, bool) {
	u, err := url.Parse(loc)
	if err != nil {
		return nil, false
	}
	if !u.IsAbs() && u.Host == "" {
		if r.base == nil {
			return nil, false
		}
		u = r.base.ResolveReference(u)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, false
	}
	if _, ok := r.hosts[strings.ToLower(u.Hostname())]; !ok {
		return nil, false
	}
	if !strings.HasPrefix(u.Path, r.objectPrefix) || u.Path == r.objectPrefix {
		return nil, false
	}
	return u, true
}

// derive merges, highest priority first: explicit options, the reference's
// own overrides, the preset, and the global defaults.
func (r *Resolver) derive(ref Reference, opts Options) (Preset, bool) {
	p := Preset{
		Quality:    DefaultQuality,
		Format:     DefaultFormat,
		ResizeMode: DefaultResizeMode,
	}
	if opts.Preset != "" {
		named, ok := r.presets[opts.Preset]
		if !ok {
			return Preset{}, false
		}
		p = overlay(p, named)
	}
	p = overlay(p, Preset{
		Width:      ref.Width,
		Height:     ref.Height,
		Quality:    ref.Quality,
		Format:     ref.Format,
		ResizeMode: ref.ResizeMode,
	})
	p = overlay(p, Preset{
		Width:      opts.Width,
		Height:     opts.Height,
		Quality:    opts.Quality,
		Format:     opts.Format,
		ResizeMode: opts.ResizeMode,
	})

	if p.Width < 0 || p.Height < 0 || p.Quality < 1 || p.Quality > 100 {
		return Preset{}, false
	}
	if p.Width > MaxDimension || p.Height > MaxDimension {
		return Preset{}, false
	}
	if !p.Format.Valid() || !p.ResizeMode.Valid() {
		return Preset{}, false
	}
	return p, true
}

func overlay(dst, src Preset) Preset {
	if src.Width != 0 {
		dst.Width = src.Width
	}
	if src.Height != 0 {
		dst.Height = src.Height
	}
	if src.Quality != 0 {
		dst.Quality = src.Quality
	}
	if src.Format != "" {
		dst.Format = src.Format
	}
	if src.ResizeMode != "" {
		dst.ResizeMode = src.ResizeMode
	}
	return dst
}

// dirPrefix returns p with exactly one leading and trailing slash, so
// "/media" does not match "/mediafoo/".
func dirPrefix(p string) string {
	p = strings.Trim(p, "/")
	if p == "" {
		return "/"
	}
	return "/" + p + "/"
}

func passthrough(loc string) ResolvedImage {
	return ResolvedImage{
		DeliveryURL: loc,
		Format:      FormatAuto,
		ResizeMode:  DefaultResizeMode,
	}
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}

func intPtr(v int) *int {
	return &v
}
