package folio

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/eringen/folio/content"
	"github.com/eringen/folio/imaging"
)

// Store wraps a SQLite database holding content entries.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// NewStore opens (or creates) the SQLite database at path, ensures the data
// directory exists, and creates the schema.
func NewStore(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// WAL lets readers proceed during writes; busy_timeout makes writers
	// wait instead of failing with SQLITE_BUSY.
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
		PRAGMA cache_size=-8000;
		PRAGMA mmap_size=268435456;
	`); err != nil {
		db.Close()
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	s := &Store{db: db, now: time.Now}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS entries (
    id TEXT PRIMARY KEY,
    collection TEXT NOT NULL,
    slug TEXT NOT NULL,
    title TEXT NOT NULL,
    summary TEXT NOT NULL DEFAULT '',
    content TEXT NOT NULL DEFAULT '',
    cover TEXT NOT NULL DEFAULT '',
    focal_x REAL,
    focal_y REAL,
    tags TEXT NOT NULL DEFAULT '',
    published INTEGER NOT NULL DEFAULT 0,
    published_at TEXT NOT NULL DEFAULT '',
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL,
    UNIQUE (collection, slug)
);
CREATE INDEX IF NOT EXISTS entries_recent ON entries (published, published_at DESC);
`)
	return err
}

const entryColumns = `id, collection, slug, title, summary, content, cover, focal_x, focal_y, tags, published, published_at, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (content.Entry, error) {
	var (
		e                                 content.Entry
		id, body, cover, tags             string
		publishedAt, createdAt, updatedAt string
		published                         int
		fx, fy                            sql.NullFloat64
	)
	err := row.Scan(&id, &e.Collection, &e.Slug, &e.Title, &e.Summary, &body, &cover,
		&fx, &fy, &tags, &published, &publishedAt, &createdAt, &updatedAt)
	if err != nil {
		return content.Entry{}, err
	}
	e.ID, err = uuid.Parse(id)
	if err != nil {
		return content.Entry{}, fmt.Errorf("entry %s/%s: bad id: %w", e.Collection, e.Slug, err)
	}
	if body != "" {
		e.Content = json.RawMessage(body)
	}
	if cover != "" {
		e.Cover = json.RawMessage(cover)
	}
	if fx.Valid && fy.Valid {
		fp := imaging.FocalPoint{X: fx.Float64, Y: fy.Float64}
		if fp.Valid() {
			e.CoverFocus = &fp
		}
	}
	e.Tags = ParseTags(tags)
	e.Published = published == 1
	e.PublishedAt = parseTime(publishedAt)
	e.CreatedAt = parseTime(createdAt)
	e.UpdatedAt = parseTime(updatedAt)
	return e, nil
}

// timeLayout is fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		if t, err = time.Parse(time.RFC3339, s); err != nil {
			return time.Time{}
		}
	}
	return t.UTC()
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(timeLayout)
}

func (s *Store) queryEntries(ctx context.Context, query string, args ...any) ([]content.Entry, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []content.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// GetEntry returns the entry for (collection, slug) whatever its publish
// state. It returns content.ErrNotFound when there is none.
func (s *Store) GetEntry(ctx context.Context, collection, slug string) (content.Entry, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+entryColumns+` FROM entries WHERE collection = ? AND slug = ?`, collection, slug)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return content.Entry{}, content.ErrNotFound
	}
	if err != nil {
		return content.Entry{}, fmt.Errorf("get entry %s/%s: %w", collection, slug, err)
	}
	return e, nil
}

// ListRecent returns up to limit published entries of collection, newest
// first. An empty collection lists all collections.
func (s *Store) ListRecent(ctx context.Context, collection string, limit int) ([]content.Entry, error) {
	if limit <= 0 {
		limit = -1
	}
	entries, err := s.queryEntries(ctx,
		`SELECT `+entryColumns+` FROM entries
		 WHERE published = 1 AND (? = '' OR collection = ?)
		 ORDER BY published_at DESC, slug ASC LIMIT ?`, collection, collection, limit)
	if err != nil {
		return nil, fmt.Errorf("list %q: %w", collection, err)
	}
	return entries, nil
}

// ListPublished returns every published entry, newest first.
func (s *Store) ListPublished(ctx context.Context) ([]content.Entry, error) {
	return s.ListRecent(ctx, "", 0)
}

// ListAll returns every entry including drafts, ordered by collection and slug.
func (s *Store) ListAll(ctx context.Context) ([]content.Entry, error) {
	entries, err := s.queryEntries(ctx,
		`SELECT `+entryColumns+` FROM entries ORDER BY collection, slug`)
	if err != nil {
		return nil, fmt.Errorf("list all: %w", err)
	}
	return entries, nil
}

// SaveEntry upserts e keyed by (collection, slug). Missing IDs and
// timestamps are filled in and written back to e. Tags are normalized to
// lowercase.
func (s *Store) SaveEntry(ctx context.Context, e *content.Entry) error {
	if e.Collection == "" || e.Slug == "" {
		return errors.New("save entry: collection and slug are required")
	}
	now := s.now().UTC()
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	e.UpdatedAt = now
	if e.Published && e.PublishedAt.IsZero() {
		e.PublishedAt = now
	}

	var fx, fy sql.NullFloat64
	if e.CoverFocus != nil && e.CoverFocus.Valid() {
		fx = sql.NullFloat64{Float64: e.CoverFocus.X, Valid: true}
		fy = sql.NullFloat64{Float64: e.CoverFocus.Y, Valid: true}
	}
	published := 0
	if e.Published {
		published = 1
	}

	var id, createdAt string
	err := s.db.QueryRowContext(ctx, `
INSERT INTO entries (`+entryColumns+`)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (collection, slug) DO UPDATE SET
    title = excluded.title,
    summary = excluded.summary,
    content = excluded.content,
    cover = excluded.cover,
    focal_x = excluded.focal_x,
    focal_y = excluded.focal_y,
    tags = excluded.tags,
    published = excluded.published,
    published_at = excluded.published_at,
    updated_at = excluded.updated_at
RETURNING id, created_at`,
		e.ID.String(), e.Collection, e.Slug, e.Title, e.Summary, string(e.Content), string(e.Cover),
		fx, fy, tagString(e.Tags), published, formatTime(e.PublishedAt), formatTime(e.CreatedAt), formatTime(e.UpdatedAt),
	).Scan(&id, &createdAt)
	if err != nil {
		return fmt.Errorf("save entry %s/%s: %w", e.Collection, e.Slug, err)
	}
	if e.ID, err = uuid.Parse(id); err != nil {
		return fmt.Errorf("save entry %s/%s: bad id: %w", e.Collection, e.Slug, err)
	}
	e.CreatedAt = parseTime(createdAt)
	return nil
}

// DeleteEntry removes an entry. Deleting a missing entry is not an error.
func (s *Store) DeleteEntry(ctx context.Context, collection, slug string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM entries WHERE collection = ? AND slug = ?`, collection, slug)
	return err
}

func tagString(tags []string) string {
	normalized := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
			normalized = append(normalized, t)
		}
	}
	if len(normalized) == 0 {
		return ""
	}
	return "," + strings.Join(normalized, ",") + ","
}

// ParseTags splits a comma-delimited tag string (e.g. ",go,web,") into a slice.
func ParseTags(tagString string) []string {
	tagString = strings.Trim(tagString, ",")
	if tagString == "" {
		return nil
	}
	parts := strings.Split(tagString, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
