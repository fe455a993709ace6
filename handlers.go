package folio

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"

	"github.com/labstack/echo/v4"

	"github.com/eringen/folio/content"
	"github.com/eringen/folio/meta"
)

const (
	homeRecentLimit = 12
	relatedLimit    = 3
	feedLimit       = 20
)

func (a *App) handleHome(c echo.Context) error {
	ctx := c.Request().Context()
	page := a.Meta.Page(ctx, meta.RouteFromURL(c.Request().URL))
	recent, err := a.Cache.ListRecent(ctx, "", homeRecentLimit)
	if err != nil {
		a.Logger.WarnContext(ctx, "home listing failed", "err", err)
	}
	return Render(c, a.Views.Home(page, recent))
}

// handlePage renders static pages, collection listings and entries.
func (a *App) handlePage(c echo.Context) error {
	ctx := c.Request().Context()
	page := a.Meta.Page(ctx, meta.RouteFromURL(c.Request().URL))

	switch page.Meta.State {
	case meta.StateEntry:
		published, err := a.Cache.ListPublished(ctx)
		if err != nil {
			a.Logger.WarnContext(ctx, "related entries failed", "err", err)
		}
		return Render(c, a.Views.Entry(page, RelatedEntries(*page.Entry, published, relatedLimit)))
	case meta.StateListing:
		return Render(c, a.Views.Listing(page))
	case meta.StateStatic:
		return Render(c, a.Views.Static(page))
	}
	c.Response().Header().Set("Cache-Control", "no-cache")
	return RenderStatus(c, http.StatusNotFound, a.Views.NotFound(page.Meta))
}

func (a *App) handleSitemap(c echo.Context) error {
	entries, err := a.Cache.ListPublished(c.Request().Context())
	if err != nil {
		return err
	}
	return a.renderSitemap(c, entries)
}

func (a *App) handleFeed(c echo.Context) error {
	entries, err := a.Cache.ListRecent(c.Request().Context(), "", feedLimit)
	if err != nil {
		return err
	}
	return a.renderRSS(c, "", entries)
}

func (a *App) handleCollectionFeed(c echo.Context) error {
	collection := c.Param("collection")
	if _, ok := a.Config.Collections[collection]; !ok {
		return echo.ErrNotFound
	}
	entries, err := a.Cache.ListRecent(c.Request().Context(), collection, feedLimit)
	if err != nil {
		return err
	}
	return a.renderRSS(c, collection, entries)
}

func (a *App) handleFavicon(c echo.Context) error {
	return c.File(filepath.Join(a.staticDir, "favicon.svg"))
}

func (a *App) handleRobots(c echo.Context) error {
	p := filepath.Join(a.staticDir, "robots.txt")
	if _, err := os.Stat(p); err == nil {
		return c.File(p)
	}
	return c.String(http.StatusOK, "User-agent: *\nAllow: /\nDisallow: "+transformPrefix+"\nSitemap: "+a.Config.URL+"/sitemap.xml\n")
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	c.Response().Header().Set("Cache-Control", "no-cache")
	var he *echo.HTTPError
	ok := errors.As(err, &he)
	if errors.Is(err, content.ErrNotFound) || (ok && he.Code == http.StatusNotFound) {
		m := a.Meta.NotFound(meta.RouteFromURL(c.Request().URL))
		_ = RenderStatus(c, http.StatusNotFound, a.Views.NotFound(m))
		return
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		a.Logger.ErrorContext(c.Request().Context(), "server error",
			"method", c.Request().Method, "uri", c.Request().RequestURI, "err", err)
		_ = RenderStatus(c, code, a.Views.ServerError())
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}
