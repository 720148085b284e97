package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"github.com/L0obo/BlueFlix/models"
	"github.com/L0obo/BlueFlix/services/library"

	"github.com/gorilla/mux"
)

type libraryService interface {
	List(col models.Collection) ([]models.LibraryEntry, error)
	Create(col models.Collection, input models.LibraryUpsert) (models.LibraryEntry, error)
	Delete(col models.Collection, id string) (bool, error)
	Random(col models.Collection) (models.LibraryEntry, bool)
}

var _ libraryService = (*library.Store)(nil)

// LibraryHandler exposes the personal saved/watched collections as the CRUD
// surface the mobile app (and services/library.Client) consumes.
type LibraryHandler struct {
	Service libraryService
}

// NewLibraryHandler constructs a LibraryHandler.
func NewLibraryHandler(service libraryService) *LibraryHandler {
	return &LibraryHandler{Service: service}
}

// List handles GET /api/library/{collection}.
func (h *LibraryHandler) List(w http.ResponseWriter, r *http.Request) {
	col, ok := h.requireCollection(w, r)
	if !ok {
		return
	}

	entries, err := h.Service.List(col)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if entries == nil {
		entries = []models.LibraryEntry{}
	}
	writeJSON(w, entries)
}

// Create handles POST /api/library/{collection}.
func (h *LibraryHandler) Create(w http.ResponseWriter, r *http.Request) {
	col, ok := h.requireCollection(w, r)
	if !ok {
		return
	}

	var body models.LibraryUpsert
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	entry, err := h.Service.Create(col, body)
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, library.ErrTitleRequired), errors.Is(err, library.ErrTMDBIDRequired):
			status = http.StatusBadRequest
		}
		http.Error(w, err.Error(), status)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(entry)
}

// Delete handles DELETE /api/library/{collection}/{id}.
func (h *LibraryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	col, ok := h.requireCollection(w, r)
	if !ok {
		return
	}

	id, err := url.PathUnescape(mux.Vars(r)["id"])
	if err != nil || id == "" {
		http.Error(w, "entry id is required", http.StatusBadRequest)
		return
	}

	removed, err := h.Service.Delete(col, id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if !removed {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Recommend handles GET /api/library/watched/recommend: a random pick from
// the watched collection for the "worth watching again" screen.
func (h *LibraryHandler) Recommend(w http.ResponseWriter, r *http.Request) {
	entry, ok := h.Service.Random(models.CollectionWatched)
	if !ok {
		http.Error(w, "watched collection is empty", http.StatusNotFound)
		return
	}
	writeJSON(w, entry)
}

func (h *LibraryHandler) requireCollection(w http.ResponseWriter, r *http.Request) (models.Collection, bool) {
	col := models.Collection(mux.Vars(r)["collection"])
	if !col.Valid() {
		http.Error(w, "unknown collection", http.StatusNotFound)
		return "", false
	}
	return col, true
}
