package folio

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/eringen/folio/content"
)

func TestImportEntries(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	input := `[
		{"collection": " News ", "title": "Hello World", "published": true, "publishedAt": "2024-01-02T00:00:00Z",
		 "content": [{"type": "paragraph", "text": "Hi"}], "cover": "https://example.com/media/a.jpg"},
		{"collection": "tutorial", "slug": "Custom Slug", "title": "Tutorial", "content": "legacy text"}
	]`
	n, err := ImportEntries(ctx, s, strings.NewReader(input))
	if err != nil {
		t.Fatalf("ImportEntries failed: %v", err)
	}
	if n != 2 {
		t.Errorf("imported %d entries, want 2", n)
	}

	e, err := s.GetEntry(ctx, "news", "hello-world")
	if err != nil {
		t.Fatalf("GetEntry failed: %v", err)
	}
	if !e.Published || e.PublishedAt.Year() != 2024 {
		t.Errorf("imported entry publish state = %v at %v", e.Published, e.PublishedAt)
	}
	if ref, ok := e.CoverRef(); !ok || ref.URL != "https://example.com/media/a.jpg" {
		t.Errorf("CoverRef = %+v, %v", ref, ok)
	}

	draft, err := s.GetEntry(ctx, "tutorial", "custom-slug")
	if err != nil {
		t.Fatalf("GetEntry failed: %v", err)
	}
	if draft.Published {
		t.Error("entry without published flag should be a draft")
	}
	if string(draft.Content) != `"legacy text"` {
		t.Errorf("Content = %s", draft.Content)
	}
}

func TestImportEntriesStopsAtInvalid(t *testing.T) {
	s := setupTestStore(t)
	input := `[{"collection": "news", "title": "Ok"}, {"collection": "", "title": "Bad"}]`

	n, err := ImportEntries(context.Background(), s, strings.NewReader(input))
	if err == nil {
		t.Fatal("expected an error for the entry without collection")
	}
	if n != 1 {
		t.Errorf("imported %d entries before the error, want 1", n)
	}
	if _, err := s.GetEntry(context.Background(), "news", "ok"); errors.Is(err, content.ErrNotFound) {
		t.Error("valid entry before the error should be saved")
	}
}

func TestImportEntriesBadJSON(t *testing.T) {
	s := setupTestStore(t)
	if _, err := ImportEntries(context.Background(), s, strings.NewReader(`{"not": "an array"}`)); err == nil {
		t.Error("expected a decode error")
	}
}
