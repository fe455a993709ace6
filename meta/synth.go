// Package meta derives per-route SEO metadata and JSON-LD structured data
// from content records.
package meta

import (
	"context"
	"errors"
	"log/slog"
	"strconv"

	"github.com/eringen/folio/blocks"
	"github.com/eringen/folio/content"
	"github.com/eringen/folio/imaging"
)

// MaxListingPage is the highest listing page served. Larger page numbers
// are not found.
const MaxListingPage = 1000

// EntryStore is the read side of the document store.
type EntryStore interface {
	GetEntry(ctx context.Context, collection, slug string) (content.Entry, error)
	ListRecent(ctx context.Context, collection string, limit int) ([]content.Entry, error)
}

// Collection describes one routable collection such as "news".
type Collection struct {
	Title       string
	Description string
	// SchemaType is the JSON-LD @type used for entries. Defaults to Article.
	SchemaType string
}

// Config holds the site identity and limits used while synthesizing.
type Config struct {
	Origin          string
	SiteName        string
	SiteDescription string
	Author          string

	Collections map[string]Collection
	Static      map[string]StaticPage

	TitleLimit       int
	DescriptionLimit int
	ListingLimit     int
}

func (c *Config) setDefaults() {
	if c.TitleLimit == 0 {
		c.TitleLimit = 60
	}
	if c.DescriptionLimit == 0 {
		c.DescriptionLimit = 160
	}
	if c.ListingLimit == 0 {
		c.ListingLimit = 10
	}
	if c.Static == nil {
		c.Static = DefaultStaticPages(c.SiteName, c.SiteDescription)
	}
}

// Option configures a Synthesizer.
type Option func(*Synthesizer)

// WithLogger sets the logger used for store failures.
func WithLogger(l *slog.Logger) Option {
	return func(s *Synthesizer) { s.logger = l }
}

// Synthesizer maps routes to PageMetadata. It is safe for concurrent use.
type Synthesizer struct {
	store    EntryStore
	resolver *imaging.Resolver
	cfg      Config
	logger   *slog.Logger
}

// New returns a Synthesizer. A nil resolver disables OG images.
func New(store EntryStore, resolver *imaging.Resolver, cfg Config, opts ...Option) *Synthesizer {
	cfg.setDefaults()
	s := &Synthesizer{
		store:    store,
		resolver: resolver,
		cfg:      cfg,
		logger:   slog.Default(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Synthesize returns the metadata for r. It never fails: lookup problems
// produce the not-found record.
func (s *Synthesizer) Synthesize(ctx context.Context, r Route) PageMetadata {
	return s.Page(ctx, r).Meta
}

// Page runs one synthesis pass and returns the metadata with the data it
// looked up. At most one store call is made.
func (s *Synthesizer) Page(ctx context.Context, r Route) Page {
	kind, collection, slug := s.classify(r)
	switch kind {
	case routeStatic:
		return Page{Meta: s.static(r)}
	case routeItem:
		return s.item(ctx, r, collection, slug)
	case routeListing:
		return s.listing(ctx, r, collection)
	}
	return Page{Meta: s.NotFound(r)}
}

// NotFound returns the not-found record for r.
func (s *Synthesizer) NotFound(r Route) PageMetadata {
	return PageMetadata{
		State:        StateNotFound,
		Title:        NotFoundTitle,
		CanonicalURL: joinURL(s.cfg.Origin, r.Clean()),
		OGType:       "website",
		NoIndex:      true,
	}
}

func (s *Synthesizer) item(ctx context.Context, r Route, collection, slug string) Page {
	e, err := s.store.GetEntry(ctx, collection, slug)
	if err != nil {
		if !errors.Is(err, content.ErrNotFound) {
			s.logger.WarnContext(ctx, "entry lookup failed",
				"collection", collection, "slug", slug, "err", err)
		}
		return Page{Meta: s.NotFound(r)}
	}
	if !e.Published {
		return Page{Meta: s.NotFound(r)}
	}

	bs := blocks.NormalizeJSON(e.Content)
	desc := blocks.PlainText(e.Summary)
	if desc == "" {
		desc = blocks.FirstParagraphText(bs)
	}
	m := PageMetadata{
		State:        StateEntry,
		Title:        Truncate(e.Title, s.cfg.TitleLimit),
		Description:  Truncate(desc, s.cfg.DescriptionLimit),
		CanonicalURL: joinURL(s.cfg.Origin, r.Clean()),
		OGType:       "article",
		OGImage:      s.primaryImage(e, bs),
	}
	m.StructuredData = []Object{s.article(e, s.schemaType(collection), m)}
	return Page{Meta: m, Collection: collection, Entry: &e, Blocks: bs}
}

func (s *Synthesizer) listing(ctx context.Context, r Route, collection string) Page {
	n := 1
	if v, err := strconv.Atoi(r.Query.Get("page")); err == nil && v > 1 {
		n = v
	}
	if n > MaxListingPage {
		return Page{Meta: s.NotFound(r)}
	}

	// One extra row tells whether a further page exists.
	limit := s.cfg.ListingLimit
	entries, err := s.store.ListRecent(ctx, collection, n*limit+1)
	if err != nil {
		s.logger.WarnContext(ctx, "listing lookup failed",
			"collection", collection, "err", err)
		return Page{Meta: s.NotFound(r)}
	}
	var published []content.Entry
	for _, e := range entries {
		if e.Published {
			published = append(published, e)
		}
	}
	start := (n - 1) * limit
	if n > 1 && start >= len(published) {
		return Page{Meta: s.NotFound(r)}
	}
	end := min(start+limit, len(published))
	items := make([]content.Entry, 0, end-start)
	items = append(items, published[start:end]...)

	c := s.cfg.Collections[collection]
	title := c.Title
	if title == "" {
		title = collection
	}
	canonical := joinURL(s.cfg.Origin, r.Clean())
	if n > 1 {
		canonical += "?page=" + strconv.Itoa(n)
	}
	m := PageMetadata{
		State:        StateListing,
		Title:        Truncate(title, s.cfg.TitleLimit),
		Description:  Truncate(c.Description, s.cfg.DescriptionLimit),
		CanonicalURL: canonical,
		OGType:       "website",
	}
	m.StructuredData = []Object{s.collectionPage(m, items)}
	return Page{
		Meta:       m,
		Collection: collection,
		Items:      items,
		PageNumber: n,
		HasNext:    len(published) > end,
	}
}

// primaryImage resolves the cover, or the first image block when the entry
// has no cover, with the hero preset.
func (s *Synthesizer) primaryImage(e content.Entry, bs []blocks.Block) *imaging.ResolvedImage {
	if s.resolver == nil {
		return nil
	}
	ref, ok := e.CoverRef()
	focus := e.CoverFocus
	if !ok {
		uses := blocks.Images(bs)
		if len(uses) == 0 {
			return nil
		}
		ref, focus = uses[0].Ref, uses[0].Focus
	}
	img, ok := s.resolver.Resolve(ref, imaging.UsePreset(imaging.PresetHero), focus)
	if !ok {
		return nil
	}
	return &img
}

func (s *Synthesizer) schemaType(collection string) string {
	if t := s.cfg.Collections[collection].SchemaType; validSchemaType(t) {
		return t
	}
	return TypeArticle
}
