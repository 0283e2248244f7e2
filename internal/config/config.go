package config

import (
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// DefaultThumbnailFileID is the asset substituted when a post has no
// thumbnail of its own.
const DefaultThumbnailFileID = "fafde1a9-aaf3-4412-8f9a-6767b7bc5cbe"

// Config holds everything the server reads from the environment.
type Config struct {
	Port    int
	SiteURL string

	DirectusURL        string
	DirectusToken      string
	DefaultThumbnailID string

	CacheTTL     time.Duration
	FetchTimeout time.Duration

	// RevalidateSecret, when set, must accompany revalidation requests in the
	// X-Revalidate-Secret header.
	RevalidateSecret string

	// Debug exposes raw render errors in fallback blocks. Keep off in
	// production.
	Debug bool
}

// Load reads configuration from a .env file (if present) and the process
// environment, applying defaults for anything unset.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Debug().Err(err).Msg("No .env file loaded")
	}

	cfg := &Config{
		Port:               envInt("PORT", 8080),
		SiteURL:            envString("SITE_URL", "http://localhost:8080"),
		DirectusURL:        envString("DIRECTUS_URL", ""),
		DirectusToken:      envString("DIRECTUS_STATIC_TOKEN", ""),
		DefaultThumbnailID: envString("DEFAULT_THUMBNAIL_ID", DefaultThumbnailFileID),
		CacheTTL:           envDuration("CACHE_TTL", 60*time.Second),
		FetchTimeout:       envDuration("FETCH_TIMEOUT", 10*time.Second),
		RevalidateSecret:   envString("REVALIDATE_SECRET", ""),
		Debug:              envBool("DEBUG", false),
	}

	if cfg.DirectusURL == "" {
		log.Warn().Msg("DIRECTUS_URL is not set; blog content will be unavailable")
	}

	return cfg
}

// SiteHost returns the host part of SiteURL, used to tell in-app links from
// external ones.
func (c *Config) SiteHost() string {
	u, err := url.Parse(c.SiteURL)
	if err != nil {
		return ""
	}
	return u.Host
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Warn().Str("key", key).Str("value", v).Msg("Invalid integer in environment, using default")
		return fallback
	}
	return n
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Warn().Str("key", key).Str("value", v).Msg("Invalid duration in environment, using default")
		return fallback
	}
	return d
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
