package rest

import (
	"context"
	"net/http"

	"github.com/Sudhanshu2024/Client-portfolio/blog/domain"
	"github.com/gin-gonic/gin"
)

// postLister is the slice of the post service the marketing pages need; the
// home page shows the latest few posts.
type postLister interface {
	ListPosts(ctx context.Context) []domain.Post
}

// Project is a portfolio entry. Projects are static fixtures, not content
// store records.
type Project struct {
	Slug    string
	Title   string
	Summary string
	Tech    []string
	Link    string
}

var projects = []Project{
	{
		Slug:    "client-portfolio",
		Title:   "Client Portfolio",
		Summary: "This site: a portfolio and blog backed by a headless CMS with on-demand cache revalidation.",
		Tech:    []string{"Go", "Gin", "Directus"},
		Link:    "https://github.com/Sudhanshu2024/Client-portfolio",
	},
	{
		Slug:    "inventory-dashboard",
		Title:   "Inventory Dashboard",
		Summary: "Internal dashboard for warehouse stock levels with live updates.",
		Tech:    []string{"Go", "PostgreSQL", "HTMX"},
	},
	{
		Slug:    "event-pipeline",
		Title:   "Event Pipeline",
		Summary: "Ingestion pipeline normalizing click events for analytics.",
		Tech:    []string{"Go", "Kafka"},
	},
}

type PagesHandler struct {
	posts postLister
}

func NewPagesHandler(posts postLister) *PagesHandler {
	return &PagesHandler{posts: posts}
}

func (h *PagesHandler) Home(c *gin.Context) {
	latest := h.posts.ListPosts(c.Request.Context())
	if len(latest) > 3 {
		latest = latest[:3]
	}
	c.HTML(http.StatusOK, "home.html", gin.H{
		"Title": "Home",
		"Posts": toPostViews(latest),
	})
}

func (h *PagesHandler) About(c *gin.Context) {
	c.HTML(http.StatusOK, "about.html", gin.H{"Title": "About"})
}

func (h *PagesHandler) Hire(c *gin.Context) {
	c.HTML(http.StatusOK, "hire.html", gin.H{"Title": "Hire Me"})
}

func (h *PagesHandler) Projects(c *gin.Context) {
	c.HTML(http.StatusOK, "projects.html", gin.H{
		"Title":    "Projects",
		"Projects": projects,
	})
}

func (h *PagesHandler) Project(c *gin.Context) {
	slug := c.Param("slug")
	for _, p := range projects {
		if p.Slug == slug {
			c.HTML(http.StatusOK, "project.html", gin.H{
				"Title":   p.Title,
				"Project": p,
			})
			return
		}
	}
	h.NotFound(c)
}

func (h *PagesHandler) NotFound(c *gin.Context) {
	c.HTML(http.StatusNotFound, "not_found.html", gin.H{"Title": "Not Found"})
}
