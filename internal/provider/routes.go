package provider

import (
	"errors"
	"fmt"
	"strings"
)

// Route maps an authority and path pattern to a table. Pattern segments match
// literally, except "*" which matches any one segment and "#" which matches one
// segment of digits.
type Route struct {
	Authority string
	Path      string
	Table     string
}

func (r Route) matches(id ResourceID) bool {
	if r.Authority != id.Authority() {
		return false
	}
	pattern := splitPath(r.Path)
	segments := id.Segments()
	if len(pattern) != len(segments) {
		return false
	}
	for i, p := range pattern {
		switch p {
		case "*":
		case "#":
			if !isDigits(segments[i]) {
				return false
			}
		default:
			if p != segments[i] {
				return false
			}
		}
	}
	return true
}

// RouteTable resolves identifiers to table names. It is immutable once built and
// safe for concurrent use.
type RouteTable struct {
	routes []Route
}

// NewRouteTable builds a table from routes in match order.
func NewRouteTable(routes ...Route) (*RouteTable, error) {
	seen := make(map[string]bool, len(routes))
	for _, r := range routes {
		if r.Authority == "" {
			return nil, errors.New("route authority is empty")
		}
		if r.Table == "" {
			return nil, fmt.Errorf("route %s/%s has no table", r.Authority, r.Path)
		}
		key := r.Authority + "/" + strings.Join(splitPath(r.Path), "/")
		if seen[key] {
			return nil, fmt.Errorf("route %s registered twice", key)
		}
		seen[key] = true
	}
	return &RouteTable{routes: append([]Route(nil), routes...)}, nil
}

// DefaultRoutes returns the book and user registrations for authority.
func DefaultRoutes(authority string) []Route {
	return []Route{
		{Authority: authority, Path: "book", Table: "book"},
		{Authority: authority, Path: "user", Table: "user"},
	}
}

// Resolve returns the table of the first route matching id.
func (t *RouteTable) Resolve(id ResourceID) (string, error) {
	if t != nil {
		for _, r := range t.routes {
			if r.matches(id) {
				return r.Table, nil
			}
		}
	}
	return "", unsupported(id)
}

// Routes returns a copy of the registrations in match order.
func (t *RouteTable) Routes() []Route {
	return append([]Route(nil), t.routes...)
}

func splitPath(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
