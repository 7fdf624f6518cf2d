package provider

import (
	"fmt"
	"net/url"
	"strings"
)

const (
	// DefaultScheme is the scheme of the well-known identifiers.
	DefaultScheme = "content"

	// DefaultAuthority is the authority the book and user routes are registered under.
	DefaultAuthority = "org.example.book.provider"
)

// Well-known identifiers for the two tables.
var (
	BookURI = NewResourceID(DefaultScheme, DefaultAuthority, "book")
	UserURI = NewResourceID(DefaultScheme, DefaultAuthority, "user")
)

// ResourceID names a logical table as scheme://authority/path. It is a value type;
// the zero value matches no route.
type ResourceID struct {
	scheme    string
	authority string
	path      string
}

// NewResourceID builds an identifier. Leading and trailing slashes of path are dropped.
func NewResourceID(scheme, authority, path string) ResourceID {
	return ResourceID{
		scheme:    scheme,
		authority: authority,
		path:      strings.Trim(path, "/"),
	}
}

// ParseResourceID parses scheme://authority/path. Query strings and fragments are
// ignored. A malformed identifier is reported as ErrUnsupportedResource.
func ParseResourceID(raw string) (ResourceID, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return ResourceID{}, fmt.Errorf("%w: malformed identifier %q: %v", ErrUnsupportedResource, raw, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return ResourceID{}, fmt.Errorf("%w: identifier %q needs a scheme and an authority", ErrUnsupportedResource, raw)
	}
	return NewResourceID(u.Scheme, u.Host, u.Path), nil
}

// MustParseResourceID is ParseResourceID for identifiers known at compile time.
func MustParseResourceID(raw string) ResourceID {
	id, err := ParseResourceID(raw)
	if err != nil {
		panic(err)
	}
	return id
}

func (id ResourceID) Scheme() string    { return id.scheme }
func (id ResourceID) Authority() string { return id.authority }
func (id ResourceID) Path() string      { return id.path }

// Segments returns the path split on "/".
func (id ResourceID) Segments() []string {
	if id.path == "" {
		return nil
	}
	return strings.Split(id.path, "/")
}

// IsZero reports whether id is the zero identifier.
func (id ResourceID) IsZero() bool {
	return id == ResourceID{}
}

func (id ResourceID) String() string {
	if id.path == "" {
		return fmt.Sprintf("%s://%s", id.scheme, id.authority)
	}
	return fmt.Sprintf("%s://%s/%s", id.scheme, id.authority, id.path)
}
