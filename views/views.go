// Package views renders folio pages as templ components.
package views

import (
	"github.com/eringen/folio/imaging"
)

// Site holds site-wide settings every page needs.
type Site struct {
	Name        string
	URL         string
	Description string
	Author      string
	Collections []string
}

// Renderer builds page components for one site. The resolver turns block
// and cover references into delivery URLs; it must not be nil.
type Renderer struct {
	site     Site
	resolver *imaging.Resolver
}

// New returns a Renderer.
func New(site Site, resolver *imaging.Resolver) *Renderer {
	return &Renderer{site: site, resolver: resolver}
}
