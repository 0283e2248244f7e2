package rest

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/Sudhanshu2024/Client-portfolio/blog/domain"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// revalidateSecretHeader carries the shared secret when one is configured.
const revalidateSecretHeader = "X-Revalidate-Secret"

// PostInvalidator is the surface of the post service the revalidation
// endpoint drives. It writes into the same cache keyspace the page handlers
// read from.
type PostInvalidator interface {
	ListPosts(ctx context.Context) []domain.Post
	InvalidateList()
	InvalidatePost(slug string)
}

type revalidateRequest struct {
	Slug string `json:"slug"`
}

// RevalidateHandler lets the content store's publish webhook force cached
// blog pages to refresh without waiting for TTL expiry.
type RevalidateHandler struct {
	posts  PostInvalidator
	secret string
}

// NewRevalidateHandler creates the handler. secret may be empty, in which
// case requests are not authenticated.
func NewRevalidateHandler(posts PostInvalidator, secret string) *RevalidateHandler {
	return &RevalidateHandler{posts: posts, secret: secret}
}

// Revalidate invalidates cached blog entries. The body is optional JSON
// {"slug": "..."}; a missing or unparseable body means "revalidate
// everything". Invalidation only drops cache entries; refetching happens
// lazily on the next read, which also makes the call idempotent.
func (h *RevalidateHandler) Revalidate(c *gin.Context) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Error().Any("panic", rec).Msg("Revalidation failed")
			c.JSON(http.StatusInternalServerError, gin.H{
				"message": "Error revalidating blog pages",
				"error":   fmt.Sprint(rec),
			})
		}
	}()

	if h.secret != "" && c.GetHeader(revalidateSecretHeader) != h.secret {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid secret"})
		return
	}

	var req revalidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		// Body is optional; treat anything unparseable as "revalidate all".
		req = revalidateRequest{}
	}

	// The list view always changes when any post changes.
	h.posts.InvalidateList()

	timestamp := time.Now().UTC().Format(time.RFC3339)

	if req.Slug != "" {
		h.posts.InvalidatePost(req.Slug)
		log.Info().Str("slug", req.Slug).Msg("Revalidated post")
		c.JSON(http.StatusOK, gin.H{
			"revalidated": true,
			"message":     fmt.Sprintf("Blog post %q and listing page revalidated successfully", req.Slug),
			"timestamp":   timestamp,
		})
		return
	}

	// No slug given: enumerate what is currently published and drop each
	// detail entry. ListPosts degrades to an empty list if the store is
	// unreachable, so the list-level invalidation above still counts as a
	// successful, partial revalidation.
	paths := []string{"/blog"}
	for _, post := range h.posts.ListPosts(c.Request.Context()) {
		if post.Slug == "" {
			continue
		}
		h.posts.InvalidatePost(post.Slug)
		paths = append(paths, "/blog/"+post.Slug)
	}

	log.Info().Int("count", len(paths)).Msg("Revalidated all blog pages")
	c.JSON(http.StatusOK, gin.H{
		"revalidated": true,
		"message":     "All blog pages revalidated successfully",
		"paths":       paths,
		"count":       len(paths),
		"timestamp":   timestamp,
	})
}

// Usage documents the endpoint. It never invalidates anything, so it is safe
// to call for health checks.
func (h *RevalidateHandler) Usage(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message":  "Use POST to revalidate blog pages",
		"endpoint": "/api/revalidate-articles",
		"usage": gin.H{
			"body":   `{"slug": "my-post"} (optional; omit to revalidate everything)`,
			"header": revalidateSecretHeader + " (required only when a secret is configured)",
		},
	})
}
