package application

import (
	"context"
	"errors"
	"html/template"
	"strings"

	"github.com/Sudhanshu2024/Client-portfolio/blog/domain"
	"github.com/rs/zerolog/log"
)

const (
	listCacheKey = "posts:list"

	// cacheTagBlog groups every blog-derived entry so a publish event can
	// expire them all at once.
	cacheTagBlog = "blog"
)

func detailCacheKey(slug string) string {
	return "posts:detail:" + slug
}

// PostService is the read path for blog content. It wraps the content source
// with the shared cache and converts upstream failures into benign defaults:
// pages always get a renderable (possibly empty) list or a not-found outcome,
// never an error page.
type PostService struct {
	source   domain.ContentSource
	cache    *Cache
	markdown MarkdownRenderer
}

func NewPostService(source domain.ContentSource, cache *Cache, markdown MarkdownRenderer) *PostService {
	return &PostService{
		source:   source,
		cache:    cache,
		markdown: markdown,
	}
}

// ListPosts returns the published posts, newest first. On upstream failure it
// returns an empty list; the failure is logged for operators but end users
// just see an empty blog section.
func (s *PostService) ListPosts(ctx context.Context) []domain.Post {
	posts, err := GetOrLoad(ctx, s.cache, listCacheKey, []string{cacheTagBlog}, func(ctx context.Context) ([]domain.Post, error) {
		return s.source.ListPosts(ctx)
	})
	if err != nil {
		log.Error().Err(err).Msg("Failed to fetch post list")
		return []domain.Post{}
	}
	return posts
}

// GetPost returns the published post for slug, or domain.ErrPostNotFound.
// Transport failures are logged and reported as not-found; the two states are
// indistinguishable to callers by design.
func (s *PostService) GetPost(ctx context.Context, slug string) (*domain.Post, error) {
	if slug == "" {
		return nil, domain.ErrPostNotFound
	}

	key := detailCacheKey(slug)
	post, err := GetOrLoad(ctx, s.cache, key, []string{cacheTagBlog}, func(ctx context.Context) (domain.Post, error) {
		p, err := s.source.GetPost(ctx, slug)
		if err != nil {
			if errors.Is(err, domain.ErrPostNotFound) {
				// A definitive miss, not a transport blip. Drop any stale
				// entry so an unpublished post stops being served.
				s.cache.Invalidate(key)
			}
			return domain.Post{}, err
		}
		return *p, nil
	})
	if err != nil {
		if !errors.Is(err, domain.ErrPostNotFound) {
			log.Error().Err(err).Str("slug", slug).Msg("Failed to fetch post")
		}
		return nil, domain.ErrPostNotFound
	}
	return &post, nil
}

// RenderBody turns a post's raw body into a safe HTML fragment. It never
// fails; unrenderable content comes back as a marked fallback block.
func (s *PostService) RenderBody(post *domain.Post) template.HTML {
	return s.markdown.Render(post.Body)
}

// InvalidateList expires the cached list view.
func (s *PostService) InvalidateList() {
	s.cache.Invalidate(listCacheKey)
}

// InvalidatePost expires the cached detail entry for slug.
func (s *PostService) InvalidatePost(slug string) {
	s.cache.Invalidate(detailCacheKey(slug))
}

// InvalidateAll expires every blog-derived cache entry. Refetching happens
// lazily on the next read.
func (s *PostService) InvalidateAll() {
	s.cache.InvalidateTag(cacheTagBlog)
}

// ReadingTime estimates minutes to read a post body, assuming roughly 200
// words per minute. Always at least one minute.
func ReadingTime(body string) int {
	words := len(strings.Fields(body))
	minutes := (words + 199) / 200
	if minutes < 1 {
		minutes = 1
	}
	return minutes
}
