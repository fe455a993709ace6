// Package content defines the record shape persisted by the document store.
package content

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/eringen/folio/imaging"
)

// ErrNotFound is returned when no record matches a lookup.
var ErrNotFound = errors.New("content: not found")

// Entry is one article, tutorial or project page. Content and Cover are
// kept raw; the blocks and imaging packages interpret them on read.
type Entry struct {
	ID          uuid.UUID           `json:"id"`
	Collection  string              `json:"collection"`
	Slug        string              `json:"slug"`
	Title       string              `json:"title"`
	Summary     string              `json:"summary,omitempty"`
	Content     json.RawMessage     `json:"content,omitempty"`
	Cover       json.RawMessage     `json:"cover,omitempty"`
	CoverFocus  *imaging.FocalPoint `json:"coverFocus,omitempty"`
	Tags        []string            `json:"tags,omitempty"`
	Published   bool                `json:"published"`
	PublishedAt time.Time           `json:"publishedAt"`
	CreatedAt   time.Time           `json:"createdAt"`
	UpdatedAt   time.Time           `json:"updatedAt"`
}

// Path returns the entry's route path, e.g. "/news/launch".
func (e Entry) Path() string {
	return "/" + e.Collection + "/" + e.Slug
}

// CoverRef parses the stored cover image. ok is false when there is none.
func (e Entry) CoverRef() (imaging.Reference, bool) {
	if len(e.Cover) == 0 {
		return imaging.Reference{}, false
	}
	var ref imaging.Reference
	if err := json.Unmarshal(e.Cover, &ref); err != nil {
		// Unquoted text is a bare URL.
		ref = imaging.Reference{URL: string(e.Cover)}
	}
	return ref, ref.Location() != ""
}
