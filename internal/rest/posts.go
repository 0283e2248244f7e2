package rest

import (
	"context"
	"html/template"
	"net/http"

	"github.com/Sudhanshu2024/Client-portfolio/blog/application"
	"github.com/Sudhanshu2024/Client-portfolio/blog/domain"
	"github.com/gin-gonic/gin"
)

const dateDisplayFormat = "January 02, 2006"

// PostContent is the surface of the post service the blog pages use.
type PostContent interface {
	ListPosts(ctx context.Context) []domain.Post
	GetPost(ctx context.Context, slug string) (*domain.Post, error)
	RenderBody(post *domain.Post) template.HTML
}

type postView struct {
	Title     string
	Slug      string
	Preview   string
	Thumbnail string
	Date      string
	Tags      []string
}

func toPostView(p domain.Post) postView {
	v := postView{
		Title:     p.Title,
		Slug:      p.Slug,
		Preview:   p.Preview,
		Thumbnail: p.Thumbnail,
		Tags:      p.Tags,
	}
	if p.DatePublished != nil {
		v.Date = p.DatePublished.Format(dateDisplayFormat)
	}
	return v
}

func toPostViews(posts []domain.Post) []postView {
	views := make([]postView, 0, len(posts))
	for _, p := range posts {
		views = append(views, toPostView(p))
	}
	return views
}

type PostsHandler struct {
	posts PostContent
}

func NewPostsHandler(posts PostContent) *PostsHandler {
	return &PostsHandler{posts: posts}
}

// List renders the blog index. An upstream failure shows an empty section,
// never an error page.
func (h *PostsHandler) List(c *gin.Context) {
	posts := h.posts.ListPosts(c.Request.Context())
	c.HTML(http.StatusOK, "blog.html", gin.H{
		"Title": "Blog",
		"Posts": toPostViews(posts),
	})
}

// Detail renders a single post, or the not-found state when the slug does not
// resolve to a published post.
func (h *PostsHandler) Detail(c *gin.Context) {
	slug := c.Param("slug")

	post, err := h.posts.GetPost(c.Request.Context(), slug)
	if err != nil {
		// GetPost only reports not-found; transport failures were already
		// mapped and logged in the service.
		c.HTML(http.StatusNotFound, "not_found.html", gin.H{"Title": "Post Not Found"})
		return
	}

	c.HTML(http.StatusOK, "blog_post.html", gin.H{
		"Title":       post.Title,
		"Post":        toPostView(*post),
		"Body":        h.posts.RenderBody(post),
		"ReadingTime": application.ReadingTime(post.Body),
	})
}
