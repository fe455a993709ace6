package folio

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/eringen/folio/blocks"
	"github.com/eringen/folio/content"
	"github.com/eringen/folio/imaging"
)

// Presets requested by the bundled views for each kind of image.
var (
	CoverPresets   = []string{imaging.PresetHero, imaging.PresetCard}
	ImagePresets   = []string{imaging.PresetFull}
	GalleryPresets = []string{imaging.PresetGallery}
)

// DeliveryURLs resolves every managed image used by entries with the
// presets above, srcset variants included. The result is sorted and free
// of duplicates.
func DeliveryURLs(r *imaging.Resolver, entries []content.Entry) []string {
	seen := make(map[string]struct{})
	add := func(ref imaging.Reference, focus *imaging.FocalPoint, presets []string) {
		if !r.Managed(ref.Location()) {
			return
		}
		for _, p := range presets {
			img, ok := r.Resolve(ref, imaging.UsePreset(p), focus)
			if !ok {
				continue
			}
			seen[img.DeliveryURL] = struct{}{}
			for _, v := range r.Srcset(ref, p, focus, img) {
				seen[v.DeliveryURL] = struct{}{}
			}
		}
	}

	for _, e := range entries {
		if ref, ok := e.CoverRef(); ok {
			add(ref, e.CoverFocus, CoverPresets)
		}
		for _, use := range blocks.Images(blocks.NormalizeJSON(e.Content)) {
			presets := ImagePresets
			if use.Item >= 0 {
				presets = GalleryPresets
			}
			add(use.Ref, use.Focus, presets)
		}
	}

	urls := make([]string, 0, len(seen))
	for u := range seen {
		urls = append(urls, u)
	}
	sort.Strings(urls)
	return urls
}

// WarmStats summarizes a warm run.
type WarmStats struct {
	URLs    int
	Fetched int
	Failed  int
}

// Warm requests every URL so caches in front of the transform endpoint hold
// each variant. Individual failures are counted and logged; only context
// cancellation aborts the run.
func Warm(ctx context.Context, client *http.Client, urls []string, concurrency int, logger *slog.Logger) (WarmStats, error) {
	if concurrency <= 0 {
		concurrency = 4
	}
	var fetched, failed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for _, u := range urls {
		u := u
		g.Go(func() error {
			if err := fetch(gctx, client, u); err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				failed.Add(1)
				logger.WarnContext(gctx, "warm failed", "url", u, "err", err)
				return nil
			}
			fetched.Add(1)
			return nil
		})
	}
	err := g.Wait()
	return WarmStats{
		URLs:    len(urls),
		Fetched: int(fetched.Load()),
		Failed:  int(failed.Load()),
	}, err
}

func fetch(ctx context.Context, client *http.Client, u string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if _, err := io.Copy(io.Discard, resp.Body); err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("status %d", resp.StatusCode)
	}
	return nil
}

// Warm fetches every image variant of the published entries.
func (a *App) Warm(ctx context.Context, client *http.Client, concurrency int) (WarmStats, error) {
	entries, err := a.Store.ListPublished(ctx)
	if err != nil {
		return WarmStats{}, fmt.Errorf("folio: warm: %w", err)
	}
	return Warm(ctx, client, DeliveryURLs(a.Resolver, entries), concurrency, a.Logger)
}
