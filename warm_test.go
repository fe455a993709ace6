package folio

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/eringen/folio/content"
	"github.com/eringen/folio/imaging"
)

func TestDeliveryURLs(t *testing.T) {
	r := imaging.NewResolver(imaging.ManagedStore{
		BaseURL:      "https://example.com/media/",
		RenderPrefix: transformPrefix,
	})
	entries := []content.Entry{
		{
			Cover:      json.RawMessage(`"covers/a.jpg"`),
			CoverFocus: &imaging.FocalPoint{X: 0.2, Y: 0.3},
			Content: json.RawMessage(`[
				{"type": "image", "url": "https://example.com/media/b.jpg"},
				{"type": "image", "url": "https://elsewhere.net/c.jpg"},
				{"type": "gallery", "images": ["g/1.jpg"]}
			]`),
		},
		{Cover: json.RawMessage(`"covers/a.jpg"`), CoverFocus: &imaging.FocalPoint{X: 0.2, Y: 0.3}},
	}

	got := DeliveryURLs(r, entries)
	const (
		img     = "https://example.com/img/"
		contain = "?format=auto&quality=80&resize=contain&width="
	)
	want := []string{
		img + "b.jpg" + contain + "1440",
		img + "b.jpg" + contain + "2400",
		img + "b.jpg" + contain + "480",
		img + "b.jpg" + contain + "960",
		img + "covers/a.jpg?format=auto&fx=0.200&fy=0.300&height=600&quality=80&resize=cover&width=900",
		img + "covers/a.jpg" + contain + "1440",
		img + "covers/a.jpg" + contain + "1920",
		img + "covers/a.jpg" + contain + "480",
		img + "covers/a.jpg" + contain + "960",
		img + "g/1.jpg" + contain + "1440",
		img + "g/1.jpg" + contain + "1600",
		img + "g/1.jpg" + contain + "480",
		img + "g/1.jpg" + contain + "960",
	}
	if len(got) != len(want) {
		t.Fatalf("DeliveryURLs = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("url %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestWarm(t *testing.T) {
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if strings.HasSuffix(r.URL.Path, "broken.jpg") {
			http.Error(w, "nope", http.StatusInternalServerError)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	urls := []string{srv.URL + "/img/a.jpg", srv.URL + "/img/b.jpg", srv.URL + "/img/broken.jpg"}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	stats, err := Warm(context.Background(), srv.Client(), urls, 2, logger)
	if err != nil {
		t.Fatalf("Warm failed: %v", err)
	}
	if stats.URLs != 3 || stats.Fetched != 2 || stats.Failed != 1 {
		t.Errorf("stats = %+v, want 3 urls, 2 fetched, 1 failed", stats)
	}
	if hits.Load() != 3 {
		t.Errorf("server saw %d requests, want 3", hits.Load())
	}
}

func TestWarmCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	_, err := Warm(ctx, http.DefaultClient, []string{"http://127.0.0.1:1/img/a.jpg"}, 1, logger)
	if err == nil {
		t.Error("expected an error from a cancelled context")
	}
}
