package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/L0obo/BlueFlix/models"
	"github.com/L0obo/BlueFlix/services/catalog"

	"github.com/gorilla/mux"
)

type catalogService interface {
	Discover(ctx context.Context, filters models.Filters, page int) ([]models.Movie, error)
	Search(ctx context.Context, query string, page int) ([]models.Movie, error)
	Genres(ctx context.Context) ([]models.Genre, error)
	MovieDetails(ctx context.Context, id int64) (*models.MovieDetails, error)
	TrailerKey(ctx context.Context, id int64) (string, error)
	WatchProviders(ctx context.Context, id int64) (*models.ProviderRegion, error)
}

var _ catalogService = (*catalog.Client)(nil)

// CatalogHandler exposes the catalog pass-through endpoints.
type CatalogHandler struct {
	Service catalogService
}

// NewCatalogHandler constructs a CatalogHandler.
func NewCatalogHandler(service catalogService) *CatalogHandler {
	return &CatalogHandler{Service: service}
}

// Discover handles GET /api/movies/discover.
func (h *CatalogHandler) Discover(w http.ResponseWriter, r *http.Request) {
	filters, ok := parseFilters(w, r)
	if !ok {
		return
	}
	page := parsePage(r)

	movies, err := h.Service.Discover(r.Context(), filters, page)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	writeJSON(w, emptyIfNil(movies))
}

// Search handles GET /api/movies/search.
func (h *CatalogHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("query"))
	if query == "" {
		http.Error(w, "query is required", http.StatusBadRequest)
		return
	}
	page := parsePage(r)

	movies, err := h.Service.Search(r.Context(), query, page)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	writeJSON(w, emptyIfNil(movies))
}

// Genres handles GET /api/genres.
func (h *CatalogHandler) Genres(w http.ResponseWriter, r *http.Request) {
	genres, err := h.Service.Genres(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	if genres == nil {
		genres = []models.Genre{}
	}
	writeJSON(w, genres)
}

// DetailsBundleResponse is the combined payload for the details screen:
// detail record, trailer key and watch providers in one round-trip.
type DetailsBundleResponse struct {
	Details    *models.MovieDetails   `json:"details"`
	TrailerKey string                 `json:"trailerKey,omitempty"`
	Providers  *models.ProviderRegion `json:"providers,omitempty"`
}

// DetailsBundle handles GET /api/movies/{id}/bundle. The three sub-fetches
// run concurrently; trailer and provider failures degrade to empty fields.
func (h *CatalogHandler) DetailsBundle(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, "invalid movie id", http.StatusBadRequest)
		return
	}

	var (
		resp       DetailsBundleResponse
		detailsErr error
		mu         sync.Mutex
		wg         sync.WaitGroup
	)

	wg.Add(1)
	go func() {
		defer wg.Done()
		details, err := h.Service.MovieDetails(r.Context(), id)
		mu.Lock()
		resp.Details, detailsErr = details, err
		mu.Unlock()
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		key, err := h.Service.TrailerKey(r.Context(), id)
		if err != nil {
			log.Printf("[catalog] trailer lookup for %d failed: %v", id, err)
			return
		}
		mu.Lock()
		resp.TrailerKey = key
		mu.Unlock()
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		providers, err := h.Service.WatchProviders(r.Context(), id)
		if err != nil {
			log.Printf("[catalog] provider lookup for %d failed: %v", id, err)
			return
		}
		mu.Lock()
		resp.Providers = providers
		mu.Unlock()
	}()

	wg.Wait()

	if detailsErr != nil {
		http.Error(w, detailsErr.Error(), http.StatusBadGateway)
		return
	}
	writeJSON(w, resp)
}

// parseFilters reads the discover filter dimensions from query parameters,
// rejecting malformed values. Absent parameters mean no constraint.
func parseFilters(w http.ResponseWriter, r *http.Request) (models.Filters, bool) {
	query := r.URL.Query()
	var filters models.Filters

	if raw := strings.TrimSpace(query.Get("genreId")); raw != "" {
		genreID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			http.Error(w, "invalid genreId", http.StatusBadRequest)
			return models.Filters{}, false
		}
		filters.GenreID = &genreID
	}

	if raw := strings.TrimSpace(query.Get("minRating")); raw != "" {
		minRating, err := strconv.ParseFloat(raw, 64)
		if err != nil || minRating < 0 || minRating > 10 {
			http.Error(w, "invalid minRating", http.StatusBadRequest)
			return models.Filters{}, false
		}
		filters.MinRating = &minRating
	}

	if raw := strings.TrimSpace(query.Get("maxAgeRating")); raw != "" {
		if !models.ValidCertification(raw) {
			http.Error(w, "invalid maxAgeRating", http.StatusBadRequest)
			return models.Filters{}, false
		}
		filters.MaxAgeRating = &raw
	}

	return filters, true
}

func parsePage(r *http.Request) int {
	page, err := strconv.Atoi(strings.TrimSpace(r.URL.Query().Get("page")))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func emptyIfNil(movies []models.Movie) []models.Movie {
	if movies == nil {
		return []models.Movie{}
	}
	return movies
}
