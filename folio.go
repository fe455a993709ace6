// Package folio serves long-form articles, tutorials and project pages
// built from typed content blocks, with focal-point aware image variants
// and per-route SEO metadata.
//
// Users provide their own templ components via the ViewFuncs struct; folio
// handles routing, middleware, storage, image transforms, sitemap and feeds.
package folio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"github.com/a-h/templ"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/labstack/echo/v4"
	"golang.org/x/sync/singleflight"

	"github.com/eringen/folio/content"
	"github.com/eringen/folio/imaging"
	"github.com/eringen/folio/meta"
)

// ViewFuncs holds user-provided templ components that the framework calls
// when rendering pages.
type ViewFuncs struct {
	Home        func(page meta.Page, recent []content.Entry) templ.Component
	Static      func(page meta.Page) templ.Component
	Listing     func(page meta.Page) templ.Component
	Entry       func(page meta.Page, related []content.Entry) templ.Component
	NotFound    func(m meta.PageMetadata) templ.Component
	ServerError func() templ.Component
}

// App is the central folio application. It wires together the store,
// cache, metadata synthesizer, image pipeline and user-provided templates.
type App struct {
	Config   SiteConfig
	Echo     *echo.Echo
	Store    *Store
	Cache    *EntryCache
	Resolver *imaging.Resolver
	Meta     *meta.Synthesizer
	Origin   Origin
	Logger   *slog.Logger
	Views    ViewFuncs

	transformLimiter *RateLimiter
	transforms       singleflight.Group
	variants         *lru.Cache[string, imaging.Output]
	customRoutes     []func(*App)
	staticDir        string
}

// New creates a new App with the given configuration and view functions.
func New(cfg SiteConfig, views ViewFuncs, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config:    cfg,
		Echo:      echo.New(),
		Views:     views,
		Logger:    slog.Default(),
		staticDir: "public",
	}
	a.Echo.HideBanner = true

	for _, opt := range opts {
		opt(a)
	}
	if a.Resolver == nil {
		a.Resolver = imaging.NewResolver(cfg.ManagedStore())
	}
	return a
}

// Setup opens the store and origin, then registers middleware and routes.
// Start calls it; tests call it directly and drive a.Echo.
func (a *App) Setup(ctx context.Context) error {
	if a.Store == nil {
		store, err := NewStore(a.Config.DatabasePath)
		if err != nil {
			return fmt.Errorf("folio: init store: %w", err)
		}
		a.Store = store
	}
	if a.Origin == nil {
		origin, err := NewOrigin(ctx, a.Config)
		if err != nil {
			return fmt.Errorf("folio: init origin: %w", err)
		}
		a.Origin = origin
	}

	a.Cache = NewEntryCache(a.Store, a.Config.EntryCacheTTL)
	a.Meta = meta.New(a.Cache, a.Resolver, a.Config.MetaConfig(), meta.WithLogger(a.Logger))
	a.transformLimiter = NewRateLimiter(a.Config.TransformRate, time.Minute)
	if a.Config.VariantCacheSize > 0 {
		variants, err := lru.New[string, imaging.Output](a.Config.VariantCacheSize)
		if err != nil {
			return fmt.Errorf("folio: init variant cache: %w", err)
		}
		a.variants = variants
	}

	a.setupMiddleware()
	a.setupRoutes()

	for _, fn := range a.customRoutes {
		fn(a)
	}
	return nil
}

// Start sets the app up and serves until ctx is cancelled, then shuts the
// server down gracefully.
func (a *App) Start(ctx context.Context) error {
	if err := a.Setup(ctx); err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info("listening", "addr", a.Config.Addr, "url", a.Config.URL)
		errCh <- a.Echo.Start(a.Config.Addr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return a.Echo.Shutdown(shutdownCtx)
	}
}

func (a *App) setupRoutes() {
	e := a.Echo

	e.Static("/public", a.staticDir)
	e.GET("/favicon.svg", a.handleFavicon)
	e.GET("/robots.txt", a.handleRobots)

	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)
	e.GET(originalsPrefix+"*", a.handleOriginal)
	e.GET(transformPrefix+"*", a.handleTransform)

	e.GET("/", a.handleHome)
	paths := make([]string, 0)
	for p := range a.Meta.StaticPages() {
		if p != "/" {
			paths = append(paths, p)
		}
	}
	sort.Strings(paths)
	for _, p := range paths {
		e.GET(p+"/", a.handlePage)
	}
	e.GET("/:collection/feed.xml", a.handleCollectionFeed)
	e.GET("/:collection/", a.handlePage)
	e.GET("/:collection/:slug/", a.handlePage)
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	if a.transformLimiter != nil {
		a.transformLimiter.Close()
	}
	if a.Store != nil {
		return a.Store.Close()
	}
	return nil
}
