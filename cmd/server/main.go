package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/Sudhanshu2024/Client-portfolio/blog/application"
	"github.com/Sudhanshu2024/Client-portfolio/blog/directus"
	"github.com/Sudhanshu2024/Client-portfolio/internal/config"
	"github.com/Sudhanshu2024/Client-portfolio/internal/middleware"
	"github.com/Sudhanshu2024/Client-portfolio/internal/rest"
	"github.com/Sudhanshu2024/Client-portfolio/web"
	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const shutdownTimeout = 5 * time.Second

func main() {
	cfg := config.Load()

	if cfg.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
		gin.SetMode(gin.ReleaseMode)
	}

	// Wire the content pipeline: Directus adapter -> cache -> renderer.
	source := directus.NewClient(cfg.DirectusURL, cfg.DirectusToken, cfg.DefaultThumbnailID, cfg.FetchTimeout)
	cache := application.NewCache(cfg.CacheTTL, application.SystemClock())
	renderer := application.NewMarkdownRenderer(cfg.SiteHost(), cfg.Debug)
	postService := application.NewPostService(source, cache, renderer)

	router := gin.New()
	router.Use(middleware.LoggingMiddleware())
	router.Use(gin.CustomRecovery(middleware.HandlePanics()))
	router.SetHTMLTemplate(web.Templates())
	router.StaticFS("/static", web.Static())

	rest.NewApi(
		router,
		rest.NewPagesHandler(postService),
		rest.NewPostsHandler(postService),
		rest.NewRevalidateHandler(postService, cfg.RevalidateSecret),
	)

	// The CMS admin calls the revalidation endpoint cross-origin.
	handler := cors.Default().Handler(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: handler,
	}

	go func() {
		log.Info().Int("port", cfg.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit

	log.Info().Msg("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to shutdown server")
	}

	log.Info().Msg("Server stopped")
}
