package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/eringen/folio"
	"github.com/eringen/folio/imaging"
	"github.com/eringen/folio/views"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "serve":
		err = runServe()
	case "import":
		if len(os.Args) < 3 {
			fmt.Fprintln(os.Stderr, "Usage: folio import <entries.json>")
			os.Exit(1)
		}
		err = runImport(os.Args[2])
	case "list":
		err = runList()
	case "delete":
		if len(os.Args) < 4 {
			fmt.Fprintln(os.Stderr, "Usage: folio delete <collection> <slug>")
			os.Exit(1)
		}
		err = runDelete(os.Args[2], os.Args[3])
	case "warm":
		err = runWarm(os.Args[2:])
	case "version":
		fmt.Printf("folio %s\n", version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func setup() (folio.SiteConfig, *slog.Logger, error) {
	cfg, err := folio.LoadConfig()
	if err != nil {
		return folio.SiteConfig{}, nil, err
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.Level()}))
	slog.SetDefault(logger)
	return cfg, logger, nil
}

func runServe() error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	resolver := imaging.NewResolver(cfg.ManagedStore())
	app := folio.New(cfg, viewFuncs(cfg, resolver), folio.WithResolver(resolver), folio.WithLogger(logger))
	defer app.Close()
	return app.Start(ctx)
}

// viewFuncs wires the bundled renderer into the app.
func viewFuncs(cfg folio.SiteConfig, resolver *imaging.Resolver) folio.ViewFuncs {
	r := views.New(views.Site{
		Name:        cfg.Name,
		URL:         cfg.URL,
		Description: cfg.Description,
		Author:      cfg.Author,
		Collections: cfg.CollectionNames(),
	}, resolver)
	return folio.ViewFuncs{
		Home:        r.Home,
		Static:      r.Static,
		Listing:     r.Listing,
		Entry:       r.Entry,
		NotFound:    r.NotFound,
		ServerError: r.ServerError,
	}
}

func runImport(path string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	store, err := folio.NewStore(cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer store.Close()

	n, err := folio.ImportEntries(context.Background(), store, f)
	if err != nil {
		return err
	}
	logger.Info("imported entries", "count", n, "file", path)
	return nil
}

func runList() error {
	cfg, _, err := setup()
	if err != nil {
		return err
	}
	store, err := folio.NewStore(cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer store.Close()

	entries, err := store.ListAll(context.Background())
	if err != nil {
		return err
	}
	table := tablewriter.NewTable(os.Stdout,
		tablewriter.WithConfig(tablewriter.Config{
			Row: tw.CellConfig{
				Formatting: tw.CellFormatting{AutoWrap: tw.WrapNone},
				Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
			},
			Header: tw.CellConfig{
				Formatting: tw.CellFormatting{AutoFormat: tw.On},
				Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
			},
		}),
		tablewriter.WithRendition(tw.Rendition{Borders: tw.BorderNone}),
	)
	table.Header([]string{"Path", "State", "Published", "Title"})
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		state, published := "draft", "-"
		if e.Published {
			state = "live"
		}
		if !e.PublishedAt.IsZero() {
			published = e.PublishedAt.Format(time.DateOnly)
		}
		rows = append(rows, []string{e.Path() + "/", state, published, e.Title})
	}
	if err := table.Bulk(rows); err != nil {
		return err
	}
	return table.Render()
}

func runDelete(collection, slug string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	store, err := folio.NewStore(cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.DeleteEntry(context.Background(), collection, slug); err != nil {
		return err
	}
	logger.Info("deleted entry", "collection", collection, "slug", slug)
	return nil
}

func runWarm(args []string) error {
	fs := flag.NewFlagSet("warm", flag.ExitOnError)
	concurrency := fs.Int("concurrency", 4, "parallel requests")
	timeout := fs.Duration("timeout", 30*time.Second, "per-request timeout")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := folio.NewStore(cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer store.Close()

	app := folio.New(cfg, folio.ViewFuncs{}, folio.WithLogger(logger))
	app.Store = store
	stats, err := app.Warm(ctx, &http.Client{Timeout: *timeout}, *concurrency)
	logger.Info("warm finished", "urls", stats.URLs, "fetched", stats.Fetched, "failed", stats.Failed)
	return err
}

func printUsage() {
	fmt.Println(`folio - A long-form publishing engine built with Go, Echo, and templ

Usage:
  folio <command> [arguments]

Commands:
  serve                 Start the web server
  import <file.json>    Load entries from a JSON array into the database
  list                  List all entries, drafts included
  delete <coll> <slug>  Remove an entry
  warm [-concurrency N] Request every image variant of published entries
  version               Print the folio version
  help                  Show this help message

Configuration is read from the environment (SITE_URL, DATABASE_PATH,
MEDIA_DIR, S3_BUCKET, ...).`)
}
