package meta

import (
	"net/url"
	"path"
	"strings"
)

// Route identifies the page being rendered.
type Route struct {
	Path  string
	Query url.Values
}

// RouteFromURL builds a Route from a request URL.
func RouteFromURL(u *url.URL) Route {
	return Route{Path: u.Path, Query: u.Query()}
}

// Clean returns the route path with duplicate and trailing slashes removed.
func (r Route) Clean() string {
	p := path.Clean("/" + strings.TrimSpace(r.Path))
	if p == "." {
		return "/"
	}
	return p
}

// Segments splits the cleaned path.
func (r Route) Segments() []string {
	p := strings.Trim(r.Clean(), "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}

type routeKind int

const (
	routeUnknown routeKind = iota
	routeStatic
	routeListing
	routeItem
)

// classify decides the route shape. Static paths win over collections.
func (s *Synthesizer) classify(r Route) (kind routeKind, collection, slug string) {
	if _, ok := s.cfg.Static[r.Clean()]; ok {
		return routeStatic, "", ""
	}
	segs := r.Segments()
	switch len(segs) {
	case 1:
		if _, ok := s.cfg.Collections[segs[0]]; ok {
			return routeListing, segs[0], ""
		}
	case 2:
		if _, ok := s.cfg.Collections[segs[0]]; ok && segs[1] != "" {
			return routeItem, segs[0], segs[1]
		}
	}
	return routeUnknown, "", ""
}
