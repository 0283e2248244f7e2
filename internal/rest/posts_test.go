package rest

import (
	"context"
	"html/template"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Sudhanshu2024/Client-portfolio/blog/domain"
	"github.com/Sudhanshu2024/Client-portfolio/web"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type fakeContent struct {
	posts []domain.Post
}

func (f *fakeContent) ListPosts(ctx context.Context) []domain.Post {
	return f.posts
}

func (f *fakeContent) GetPost(ctx context.Context, slug string) (*domain.Post, error) {
	for _, p := range f.posts {
		if p.Slug == slug {
			post := p
			return &post, nil
		}
	}
	return nil, domain.ErrPostNotFound
}

func (f *fakeContent) RenderBody(post *domain.Post) template.HTML {
	return template.HTML("<p>" + template.HTMLEscapeString(post.Body) + "</p>")
}

func newPagesRouter(content *fakeContent) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.SetHTMLTemplate(web.Templates())
	NewApi(r, NewPagesHandler(content), NewPostsHandler(content), NewRevalidateHandler(&fakeInvalidator{}, ""))
	return r
}

func get(router *gin.Engine, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestBlogListPage(t *testing.T) {
	published := time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC)
	router := newPagesRouter(&fakeContent{posts: []domain.Post{
		{
			Slug:          "hello-world",
			Title:         "Hello World",
			Preview:       "the first post",
			Thumbnail:     "https://cms.example.com/assets/t1",
			DatePublished: &published,
			Status:        domain.StatusPublished,
			Tags:          []string{"go"},
		},
	}})

	w := get(router, "/blog")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Hello World")
	assert.Contains(t, w.Body.String(), "/blog/hello-world")
	assert.Contains(t, w.Body.String(), "June 02, 2024")
}

func TestBlogListPageEmpty(t *testing.T) {
	router := newPagesRouter(&fakeContent{})

	w := get(router, "/blog")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "No posts yet")
}

func TestBlogDetailPage(t *testing.T) {
	router := newPagesRouter(&fakeContent{posts: []domain.Post{
		{Slug: "hello-world", Title: "Hello World", Body: "some body text", Status: domain.StatusPublished},
	}})

	w := get(router, "/blog/hello-world")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Hello World")
	assert.Contains(t, w.Body.String(), "some body text")
	assert.Contains(t, w.Body.String(), "min read")
}

func TestBlogDetailNotFound(t *testing.T) {
	router := newPagesRouter(&fakeContent{})

	w := get(router, "/blog/missing")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Post Not Found")
}

func TestMarketingPages(t *testing.T) {
	router := newPagesRouter(&fakeContent{})

	tests := []struct {
		path string
		want string
	}{
		{path: "/", want: "Work with me"},
		{path: "/about", want: "About"},
		{path: "/hire", want: "Hire Me"},
		{path: "/projects", want: "Projects"},
		{path: "/projects/client-portfolio", want: "Client Portfolio"},
	}

	for _, tt := range tests {
		w := get(router, tt.path)
		assert.Equal(t, http.StatusOK, w.Code, tt.path)
		assert.Contains(t, w.Body.String(), tt.want, tt.path)
	}
}

func TestUnknownProjectIs404(t *testing.T) {
	router := newPagesRouter(&fakeContent{})

	w := get(router, "/projects/nope")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
