package handlers

import (
	"net/http"
	"strings"

	"github.com/L0obo/BlueFlix/feed"
	"github.com/L0obo/BlueFlix/models"
)

// FeedHandler serves a single merged feed page for thin clients: it picks
// search or discover mode the same way the feed controller does and tags
// every item with its ownership status, so the client renders one payload
// without joining the collections itself.
type FeedHandler struct {
	Catalog catalogService
	Library libraryService
}

// NewFeedHandler constructs a FeedHandler.
func NewFeedHandler(catalogSvc catalogService, librarySvc libraryService) *FeedHandler {
	return &FeedHandler{Catalog: catalogSvc, Library: librarySvc}
}

// FeedResponse is one tagged feed page.
type FeedResponse struct {
	Items   []models.TaggedMovie `json:"items"`
	Page    int                  `json:"page"`
	HasMore bool                 `json:"hasMore"`
}

// Get handles GET /api/feed. A non-empty query selects search mode and the
// filter dimensions are ignored; otherwise discover mode applies them.
func (h *FeedHandler) Get(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("query"))
	page := parsePage(r)

	var (
		movies []models.Movie
		err    error
	)
	if query != "" {
		movies, err = h.Catalog.Search(r.Context(), query, page)
	} else {
		filters, ok := parseFilters(w, r)
		if !ok {
			return
		}
		movies, err = h.Catalog.Discover(r.Context(), filters, page)
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}

	saved, err := h.Library.List(models.CollectionSaved)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	watched, err := h.Library.List(models.CollectionWatched)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, FeedResponse{
		Items:   feed.Reconcile(movies, saved, watched),
		Page:    page,
		HasMore: len(movies) > 0,
	})
}
