package folio

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/eringen/folio/content"
)

// ImportEntries reads a JSON array of entries from r and upserts each into
// s. Missing slugs are derived from titles. It stops at the first invalid
// entry and returns how many were saved before it.
func ImportEntries(ctx context.Context, s *Store, r io.Reader) (int, error) {
	var entries []content.Entry
	if err := json.NewDecoder(r).Decode(&entries); err != nil {
		return 0, fmt.Errorf("import: decode: %w", err)
	}
	for i := range entries {
		e := &entries[i]
		e.Collection = strings.ToLower(strings.TrimSpace(e.Collection))
		if e.Slug = Slugify(e.Slug); e.Slug == "" {
			e.Slug = Slugify(e.Title)
		}
		if e.Collection == "" || e.Slug == "" || strings.TrimSpace(e.Title) == "" {
			return i, fmt.Errorf("import: entry %d: collection, title and slug are required", i)
		}
		if err := s.SaveEntry(ctx, e); err != nil {
			return i, fmt.Errorf("import: entry %d: %w", i, err)
		}
	}
	return len(entries), nil
}
