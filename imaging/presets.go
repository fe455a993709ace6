package imaging

// Preset names understood by the default resolver.
const (
	PresetThumbnail = "thumbnail"
	PresetCard      = "card"
	PresetHero      = "hero"
	PresetGallery   = "gallery"
	PresetFull      = "full"
)

// Global defaults applied when neither options, reference nor preset
// specify a value.
const (
	DefaultQuality    = 80
	DefaultFormat     = FormatAuto
	DefaultResizeMode = ResizeContain
)

// Preset is a named bundle of transform defaults. Zero fields fall through
// to the global defaults.
type Preset struct {
	Width      int
	Height     int
	Quality    int
	Format     Format
	ResizeMode ResizeMode
}

// crops reports whether a transform with these parameters cuts the source
// to a fixed box, which is when a focal point matters.
func (p Preset) crops() bool {
	return p.ResizeMode == ResizeCover && p.Width > 0 && p.Height > 0
}

// DefaultPresets is the built-in preset table. Resolvers copy it on
// construction; add entries with WithPreset rather than mutating it.
var DefaultPresets = map[string]Preset{
	PresetThumbnail: {Width: 400, Height: 400, ResizeMode: ResizeCover},
	PresetCard:      {Width: 900, Height: 600, ResizeMode: ResizeCover},
	PresetHero:      {Width: 1920, ResizeMode: ResizeContain},
	PresetGallery:   {Width: 1600, ResizeMode: ResizeContain},
	PresetFull:      {Width: 2400, ResizeMode: ResizeContain},
}
