package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/L0obo/BlueFlix/api"
	"github.com/L0obo/BlueFlix/config"
	"github.com/L0obo/BlueFlix/handlers"
	"github.com/L0obo/BlueFlix/services/catalog"
	"github.com/L0obo/BlueFlix/services/library"
	"github.com/L0obo/BlueFlix/utils"

	"github.com/joho/godotenv"
	"golang.org/x/time/rate"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("[main] no .env file loaded: %v", err)
	}

	cfg := config.Load()
	if cfg.TMDBAPIKey == "" {
		log.Fatal("[main] TMDB_API_KEY is required")
	}

	catalogClient := catalog.NewClient(catalog.Config{
		APIKey:   cfg.TMDBAPIKey,
		BaseURL:  cfg.TMDBBaseURL,
		Language: cfg.Language,
		Region:   cfg.Region,
		CacheDir: cfg.CacheDir(),
		CacheTTL: cfg.CacheTTL,
	})

	libraryStore, err := library.NewStore(cfg.LibraryDir())
	if err != nil {
		log.Fatalf("[main] failed to open library store: %v", err)
	}

	catalogHandler := handlers.NewCatalogHandler(catalogClient)
	libraryHandler := handlers.NewLibraryHandler(libraryStore)
	feedHandler := handlers.NewFeedHandler(catalogClient, libraryStore)

	router := utils.NewRouter()
	router.HandleFunc("/api/genres", catalogHandler.Genres).Methods(http.MethodGet)
	router.HandleFunc("/api/movies/discover", catalogHandler.Discover).Methods(http.MethodGet)
	router.HandleFunc("/api/movies/search", catalogHandler.Search).Methods(http.MethodGet)
	router.HandleFunc("/api/movies/{id}/bundle", catalogHandler.DetailsBundle).Methods(http.MethodGet)
	router.HandleFunc("/api/feed", feedHandler.Get).Methods(http.MethodGet)
	router.HandleFunc("/api/library/watched/recommend", libraryHandler.Recommend).Methods(http.MethodGet)
	router.HandleFunc("/api/library/{collection}", libraryHandler.List).Methods(http.MethodGet)
	router.HandleFunc("/api/library/{collection}", libraryHandler.Create).Methods(http.MethodPost)
	router.HandleFunc("/api/library/{collection}/{id}", libraryHandler.Delete).Methods(http.MethodDelete)

	// Generous limit: the feed issues one request per page plus a couple of
	// bundle fetches per details screen.
	limiter := api.NewIPRateLimiter(rate.Every(100*time.Millisecond), 30)

	server := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      api.RateLimitHandler(limiter, router),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("[main] listening on %s", cfg.ListenAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[main] server error: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Printf("[main] shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("[main] shutdown error: %v", err)
	}
}
