package meta

import (
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/eringen/folio/content"
)

const schemaContext = "https://schema.org"

// Schema types a collection may map its entries to.
const (
	TypeArticle      = "Article"
	TypeTechArticle  = "TechArticle"
	TypeNewsArticle  = "NewsArticle"
	TypeCreativeWork = "CreativeWork"
)

func validSchemaType(t string) bool {
	switch t {
	case TypeArticle, TypeTechArticle, TypeNewsArticle, TypeCreativeWork:
		return true
	}
	return false
}

// joinURL joins origin and p, ending directory-style paths with a slash.
func joinURL(origin, p string) string {
	u, err := url.Parse(origin)
	if err != nil {
		return origin + p
	}
	u.Path = path.Join("/", u.Path, p)
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	u.RawQuery = ""
	u.Fragment = ""
	return u.String()
}

func (s *Synthesizer) website() Object {
	data := Object{
		"@context": schemaContext,
		"@type":    "WebSite",
		"name":     s.cfg.SiteName,
		"url":      joinURL(s.cfg.Origin, "/"),
	}
	if s.cfg.SiteDescription != "" {
		data["description"] = s.cfg.SiteDescription
	}
	if s.cfg.Author != "" {
		data["author"] = person(s.cfg.Author)
	}
	return data
}

func (s *Synthesizer) article(e content.Entry, schemaType string, m PageMetadata) Object {
	data := Object{
		"@context": schemaContext,
		"@type":    schemaType,
		"headline": m.Title,
		"url":      m.CanonicalURL,
		"mainEntityOfPage": map[string]string{
			"@type": "WebPage",
			"@id":   m.CanonicalURL,
		},
	}
	if m.Description != "" {
		data["description"] = m.Description
	}
	if !e.PublishedAt.IsZero() {
		data["datePublished"] = e.PublishedAt.UTC().Format(time.RFC3339)
	}
	if !e.UpdatedAt.IsZero() {
		data["dateModified"] = e.UpdatedAt.UTC().Format(time.RFC3339)
	}
	if m.OGImage != nil {
		data["image"] = m.OGImage.DeliveryURL
	}
	if s.cfg.Author != "" {
		data["author"] = person(s.cfg.Author)
	}
	if s.cfg.SiteName != "" {
		data["publisher"] = map[string]string{
			"@type": "Organization",
			"name":  s.cfg.SiteName,
		}
	}
	if len(e.Tags) > 0 {
		data["keywords"] = strings.Join(e.Tags, ", ")
	}
	return data
}

// collectionPage lists items as bare {name, url} pairs.
func (s *Synthesizer) collectionPage(m PageMetadata, items []content.Entry) Object {
	parts := make([]map[string]string, 0, len(items))
	for _, e := range items {
		parts = append(parts, map[string]string{
			"name": e.Title,
			"url":  joinURL(s.cfg.Origin, e.Path()),
		})
	}
	data := Object{
		"@context": schemaContext,
		"@type":    "CollectionPage",
		"name":     m.Title,
		"url":      m.CanonicalURL,
		"hasPart":  parts,
	}
	if m.Description != "" {
		data["description"] = m.Description
	}
	return data
}

func person(name string) map[string]string {
	return map[string]string{
		"@type": "Person",
		"name":  name,
	}
}
