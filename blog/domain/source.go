package domain

import "context"

// ContentSource defines the interface for fetching posts from the external
// content store. This allows the application to be decoupled from a specific
// headless CMS implementation.
type ContentSource interface {
	// ListPosts returns published posts, newest first, up to the source's
	// page limit.
	ListPosts(ctx context.Context) ([]Post, error)

	// GetPost returns the published post with the given slug, or
	// ErrPostNotFound. Lookup is exact-match and case-sensitive.
	GetPost(ctx context.Context, slug string) (*Post, error)
}
