package rest

import "github.com/gin-gonic/gin"

// NewApi registers every route the site serves.
func NewApi(router *gin.Engine, pages *PagesHandler, posts *PostsHandler, revalidate *RevalidateHandler) {
	router.GET("/", pages.Home)
	router.GET("/about", pages.About)
	router.GET("/hire", pages.Hire)
	router.GET("/projects", pages.Projects)
	router.GET("/projects/:slug", pages.Project)

	blog := router.Group("/blog")
	{
		blog.GET("", posts.List)
		blog.GET("/:slug", posts.Detail)
	}

	api := router.Group("/api")
	{
		api.POST("/revalidate-articles", revalidate.Revalidate)
		api.GET("/revalidate-articles", revalidate.Usage)
	}

	router.NoRoute(pages.NotFound)
}
