package meta

import (
	"encoding/json"

	"github.com/eringen/folio/blocks"
	"github.com/eringen/folio/content"
	"github.com/eringen/folio/imaging"
)

// State is the terminal state of one synthesis pass.
type State int

const (
	StateNotFound State = iota
	StateStatic
	StateEntry
	StateListing
)

func (s State) String() string {
	switch s {
	case StateStatic:
		return "static"
	case StateEntry:
		return "entry"
	case StateListing:
		return "listing"
	default:
		return "not_found"
	}
}

// NotFoundTitle is the title of every not-found record.
const NotFoundTitle = "Not Found"

// Object is a single JSON-LD node.
type Object = map[string]any

// PageMetadata is the head-tag data for one page. It is built per request.
type PageMetadata struct {
	State          State
	Title          string
	Description    string
	CanonicalURL   string
	OGType         string
	OGImage        *imaging.ResolvedImage
	StructuredData []Object
	NoIndex        bool
}

// NotFound reports whether the renderer should answer with a 404.
func (m PageMetadata) NotFound() bool {
	return m.State == StateNotFound
}

// Scripts returns each structured data object as JSON for an
// application/ld+json script tag. Objects that fail to encode are skipped.
// encoding/json escapes <, > and & so the output is safe inside a script
// element.
func (m PageMetadata) Scripts() []string {
	if len(m.StructuredData) == 0 {
		return nil
	}
	out := make([]string, 0, len(m.StructuredData))
	for _, obj := range m.StructuredData {
		b, err := json.Marshal(obj)
		if err != nil {
			continue
		}
		out = append(out, string(b))
	}
	return out
}

// Page is the result of a synthesis pass together with the data it looked
// up, so the renderer does not query the store a second time.
type Page struct {
	Meta       PageMetadata
	Collection string
	Entry      *content.Entry
	Blocks     []blocks.Block
	Items      []content.Entry
	// PageNumber is the 1-based listing page; HasNext reports a later one.
	PageNumber int
	HasNext    bool
}
