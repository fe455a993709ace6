package folio

import (
	"fmt"
	"log/slog"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/eringen/folio/imaging"
	"github.com/eringen/folio/meta"
)

// SiteConfig holds all configuration for a folio site. Fields carry env tags
// so LoadConfig can fill them from the environment.
type SiteConfig struct {
	Name        string `env:"SITE_NAME" env-default:"Folio" env-description:"Site name"`
	URL         string `env:"SITE_URL" env-default:"http://localhost:3000" env-description:"Canonical origin"`
	Description string `env:"SITE_DESCRIPTION" env-description:"Site description for RSS and meta tags"`
	Author      string `env:"SITE_AUTHOR" env-description:"Author name for JSON-LD"`

	Addr         string `env:"ADDR" env-default:":3000"`
	DatabasePath string `env:"DATABASE_PATH" env-default:"data/folio.db"`

	// Collections maps each routable collection to its schema.org type,
	// e.g. "news:NewsArticle,tutorial:TechArticle".
	Collections map[string]string `env:"COLLECTIONS" env-default:"news:NewsArticle,tutorial:TechArticle,project:CreativeWork"`

	// MediaURL is the public base of original images. Defaults to URL + "/media/".
	MediaURL   string   `env:"MEDIA_URL"`
	MediaHosts []string `env:"MEDIA_HOSTS" env-separator:"," env-description:"Extra hosts serving managed originals"`
	MediaDir   string   `env:"MEDIA_DIR" env-default:"data/media"`

	S3 S3Config `env-prefix:"S3_"`

	EntryCacheTTL time.Duration `env:"ENTRY_CACHE_TTL" env-default:"5m"`
	// TransformRate is the number of image transforms allowed per IP per minute.
	TransformRate int `env:"TRANSFORM_RATE" env-default:"120"`
	// VariantCacheSize is how many rendered variants are kept in memory.
	// Zero disables the cache.
	VariantCacheSize int    `env:"VARIANT_CACHE_SIZE" env-default:"128"`
	LogLevel         string `env:"LOG_LEVEL" env-default:"info"`
}

// S3Config selects an S3 bucket as the origin for original images. When
// Bucket is empty originals are read from MediaDir.
type S3Config struct {
	Bucket          string `env:"BUCKET"`
	Prefix          string `env:"PREFIX"`
	Region          string `env:"REGION" env-default:"us-east-1"`
	Endpoint        string `env:"ENDPOINT"`
	AccessKeyID     string `env:"ACCESS_KEY_ID"`
	SecretAccessKey string `env:"SECRET_ACCESS_KEY"`
	UsePathStyle    bool   `env:"USE_PATH_STYLE"`
}

// LoadConfig reads a SiteConfig from the environment.
func LoadConfig() (SiteConfig, error) {
	var cfg SiteConfig
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return SiteConfig{}, fmt.Errorf("folio: read config: %w", err)
	}
	cfg.setDefaults()
	return cfg, nil
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "Folio"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	c.URL = strings.TrimRight(c.URL, "/")
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "data/folio.db"
	}
	if len(c.Collections) == 0 {
		c.Collections = map[string]string{
			"news":     meta.TypeNewsArticle,
			"tutorial": meta.TypeTechArticle,
			"project":  meta.TypeCreativeWork,
		}
	}
	if c.MediaURL == "" {
		c.MediaURL = c.URL + "/media/"
	}
	if c.MediaDir == "" {
		c.MediaDir = "data/media"
	}
	if c.S3.Region == "" {
		c.S3.Region = "us-east-1"
	}
	if c.EntryCacheTTL == 0 {
		c.EntryCacheTTL = 5 * time.Minute
	}
	if c.TransformRate == 0 {
		c.TransformRate = 120
	}
}

// CollectionNames returns the configured collections in sorted order.
func (c SiteConfig) CollectionNames() []string {
	names := make([]string, 0, len(c.Collections))
	for name := range c.Collections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ManagedStore describes where originals live and where transforms are
// served, for building an image resolver.
func (c SiteConfig) ManagedStore() imaging.ManagedStore {
	hosts := FilterEmpty(c.MediaHosts)
	if u, err := url.Parse(c.URL); err == nil && u.Hostname() != "" {
		hosts = append(hosts, u.Hostname())
	}
	return imaging.ManagedStore{
		BaseURL:      c.MediaURL,
		Hosts:        hosts,
		RenderPrefix: transformPrefix,
	}
}

// MetaConfig returns the synthesizer configuration for this site.
func (c SiteConfig) MetaConfig() meta.Config {
	collections := make(map[string]meta.Collection, len(c.Collections))
	for name, schemaType := range c.Collections {
		collections[name] = meta.Collection{
			Title:       collectionTitle(name),
			Description: collectionTitle(name) + " from " + c.Name + ".",
			SchemaType:  schemaType,
		}
	}
	return meta.Config{
		Origin:          c.URL,
		SiteName:        c.Name,
		SiteDescription: c.Description,
		Author:          c.Author,
		Collections:     collections,
	}
}

// Level parses LogLevel, defaulting to info.
func (c SiteConfig) Level() slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return l
}

func collectionTitle(name string) string {
	if name == "" {
		return ""
	}
	return strings.ToUpper(name[:1]) + name[1:]
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback receives the App before the server starts.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithStaticDir sets the directory for user-owned static assets (default "public").
func WithStaticDir(dir string) Option {
	return func(a *App) {
		a.staticDir = dir
	}
}

// WithLogger sets the structured logger (default slog.Default()).
func WithLogger(l *slog.Logger) Option {
	return func(a *App) {
		a.Logger = l
	}
}

// WithResolver replaces the image resolver built from the config.
func WithResolver(r *imaging.Resolver) Option {
	return func(a *App) {
		a.Resolver = r
	}
}

// WithOrigin sets where original images are read from.
func WithOrigin(o Origin) Option {
	return func(a *App) {
		a.Origin = o
	}
}
