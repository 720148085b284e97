package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Config holds the runtime configuration, read from the environment.
type Config struct {
	// ListenAddr is the address the HTTP server binds to.
	ListenAddr string

	// TMDBAPIKey authenticates catalog requests. Required.
	TMDBAPIKey string
	// TMDBBaseURL overrides the catalog API root, mainly for tests.
	TMDBBaseURL string
	// Language is the catalog content language.
	Language string
	// Region selects the certification country and watch-provider region.
	Region string

	// DataDir holds the library collections and the metadata cache.
	DataDir string
	// CacheTTL bounds how long genre and detail lookups are cached.
	CacheTTL time.Duration
}

// Load reads configuration from environment variables, applying defaults for
// everything but the TMDB API key.
func Load() Config {
	return Config{
		ListenAddr:  getEnv("BLUEFLIX_ADDR", ":8090"),
		TMDBAPIKey:  getEnv("TMDB_API_KEY", ""),
		TMDBBaseURL: getEnv("TMDB_BASE_URL", ""),
		Language:    getEnv("TMDB_LANGUAGE", "pt-BR"),
		Region:      getEnv("TMDB_REGION", "BR"),
		DataDir:     getEnv("BLUEFLIX_DATA_DIR", defaultDataDir()),
		CacheTTL:    time.Duration(getEnvInt("BLUEFLIX_CACHE_TTL_HOURS", 24)) * time.Hour,
	}
}

// CacheDir is where catalog lookups are cached on disk.
func (c Config) CacheDir() string {
	return filepath.Join(c.DataDir, "cache")
}

// LibraryDir is where the saved/watched collections are stored.
func (c Config) LibraryDir() string {
	return filepath.Join(c.DataDir, "library")
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "data"
	}
	return filepath.Join(home, ".blueflix")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed <= 0 {
		return defaultValue
	}
	return parsed
}
