package meta

// StaticPage is a fixed metadata record for a path with no dynamic segments.
type StaticPage struct {
	Title       string
	Description string
	NoIndex     bool
}

// DefaultStaticPages returns the built-in static table for a site.
func DefaultStaticPages(siteName, siteDescription string) map[string]StaticPage {
	return map[string]StaticPage{
		"/": {
			Title:       siteName,
			Description: siteDescription,
		},
		"/about": {
			Title:       "About",
			Description: "About " + siteName + ".",
		},
		"/privacy": {
			Title:       "Privacy Policy",
			Description: "How " + siteName + " collects and handles personal data.",
		},
		"/terms": {
			Title:       "Terms of Use",
			Description: "Terms that apply when using " + siteName + ".",
		},
		"/search": {
			Title:       "Search",
			Description: "Search articles, tutorials and projects on " + siteName + ".",
			NoIndex:     true,
		},
	}
}

// StaticPages returns a copy of the static table keyed by path.
func (s *Synthesizer) StaticPages() map[string]StaticPage {
	out := make(map[string]StaticPage, len(s.cfg.Static))
	for p, page := range s.cfg.Static {
		out[p] = page
	}
	return out
}

func (s *Synthesizer) static(r Route) PageMetadata {
	p := r.Clean()
	page := s.cfg.Static[p]
	m := PageMetadata{
		State:        StateStatic,
		Title:        Truncate(page.Title, s.cfg.TitleLimit),
		Description:  Truncate(page.Description, s.cfg.DescriptionLimit),
		CanonicalURL: joinURL(s.cfg.Origin, p),
		OGType:       "website",
		NoIndex:      page.NoIndex,
	}
	if p == "/" {
		m.StructuredData = []Object{s.website()}
	}
	return m
}
