package folio

import (
	"encoding/xml"
	"net/http"
	"sort"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/eringen/folio/content"
)

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

// sitemapURLs lists indexable static pages, collection listings and
// published entries.
func (a *App) sitemapURLs(entries []content.Entry) []sitemapURL {
	base := a.Config.URL
	urls := []sitemapURL{{Loc: BuildURL(base) + "/"}}

	var static []string
	for p, page := range a.Meta.StaticPages() {
		if p != "/" && !page.NoIndex {
			static = append(static, p)
		}
	}
	sort.Strings(static)
	for _, p := range static {
		urls = append(urls, sitemapURL{Loc: BuildURL(base, p)})
	}

	for _, name := range a.Config.CollectionNames() {
		urls = append(urls, sitemapURL{Loc: BuildURL(base, name)})
	}

	for _, e := range entries {
		lastMod := e.UpdatedAt
		if lastMod.IsZero() {
			lastMod = e.PublishedAt
		}
		u := sitemapURL{Loc: EntryURL(base, e)}
		if !lastMod.IsZero() {
			u.LastMod = lastMod.UTC().Format(time.DateOnly)
		}
		urls = append(urls, u)
	}
	return urls
}

func (a *App) renderSitemap(c echo.Context, entries []content.Entry) error {
	sitemap := sitemapURLSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  a.sitemapURLs(entries),
	}
	c.Response().Header().Set(echo.HeaderContentType, "application/xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	c.Response().Write([]byte(xml.Header))
	return xml.NewEncoder(c.Response()).Encode(sitemap)
}
