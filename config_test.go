package folio

import (
	"testing"

	"github.com/eringen/folio/imaging"
)

func TestManagedStoreHostsIgnorePorts(t *testing.T) {
	cfg := SiteConfig{
		URL:        "http://localhost:3000/",
		MediaURL:   "https://cdn.example.com/media/",
		MediaHosts: []string{"", "assets.example.com:8443"},
	}
	cfg.setDefaults()
	r := imaging.NewResolver(cfg.ManagedStore())

	tests := []struct {
		loc  string
		want bool
	}{
		{"https://cdn.example.com/media/a.jpg", true},
		{"http://localhost:3000/media/a.jpg", true},
		{"https://assets.example.com:8443/media/a.jpg", true},
		{"https://assets.example.com/media/a.jpg", true},
		{"http://localhost:3000/mediafoo/a.jpg", false},
		{"https://other.example.com/media/a.jpg", false},
	}
	for _, tt := range tests {
		if got := r.Managed(tt.loc); got != tt.want {
			t.Errorf("Managed(%q) = %v, want %v", tt.loc, got, tt.want)
		}
	}
}
