package domain

import (
	"errors"
	"time"
)

// Post status values as reported by the content store.
const (
	StatusPublished = "published"
	StatusDraft     = "draft"
)

// ErrPostNotFound is returned when a slug does not resolve to a published
// post. A missing record and an unpublished one are deliberately
// indistinguishable so draft existence never leaks.
var ErrPostNotFound = errors.New("post not found")

// Post is the canonical blog post shape. Posts are authored and stored in the
// external content store; this system only ever reads them. Thumbnail is
// always a resolved absolute URL, never empty (a default asset is substituted
// upstream when no thumbnail is set).
type Post struct {
	ID            string
	Title         string
	Slug          string
	Preview       string
	Body          string
	Thumbnail     string
	DatePublished *time.Time
	Status        string
	Tags          []string
}

// Published reports whether the post should be visible on the site.
func (p *Post) Published() bool {
	return p.Status == StatusPublished
}
