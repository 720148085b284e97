package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/L0obo/BlueFlix/models"
	"github.com/L0obo/BlueFlix/services/library"

	"github.com/gorilla/mux"
)

func feedRouter(t *testing.T, catalogSvc *stubCatalog) (*mux.Router, *library.Store) {
	t.Helper()

	store, err := library.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	h := NewFeedHandler(catalogSvc, store)

	router := mux.NewRouter()
	router.HandleFunc("/api/feed", h.Get).Methods(http.MethodGet)
	return router, store
}

func decodeFeed(t *testing.T, body []byte) FeedResponse {
	t.Helper()
	var resp FeedResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		t.Fatalf("invalid feed body: %v", err)
	}
	return resp
}

func TestFeedDiscoverModeTagsOwnership(t *testing.T) {
	stub := &stubCatalog{
		discover: func(_ models.Filters, _ int) ([]models.Movie, error) {
			return []models.Movie{{ID: 1}, {ID: 2}, {ID: 3}}, nil
		},
	}
	router, store := feedRouter(t, stub)

	if _, err := store.Create(models.CollectionSaved, models.LibraryUpsert{TMDBID: 2, Title: "Salvo"}); err != nil {
		t.Fatalf("seed saved: %v", err)
	}
	if _, err := store.Create(models.CollectionWatched, models.LibraryUpsert{TMDBID: 3, Title: "Assistido"}); err != nil {
		t.Fatalf("seed watched: %v", err)
	}

	rec := doRequest(router, http.MethodGet, "/api/feed")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	resp := decodeFeed(t, rec.Body.Bytes())
	if len(resp.Items) != 3 || resp.Page != 1 || !resp.HasMore {
		t.Fatalf("unexpected response: %+v", resp)
	}
	want := []models.OwnershipStatus{models.OwnershipNone, models.OwnershipSaved, models.OwnershipWatched}
	for i, status := range want {
		if resp.Items[i].Status != status {
			t.Fatalf("item %d: expected %q, got %q", i, status, resp.Items[i].Status)
		}
	}
}

func TestFeedSearchModeIgnoresFilters(t *testing.T) {
	var searched string
	stub := &stubCatalog{
		search: func(query string, _ int) ([]models.Movie, error) {
			searched = query
			return []models.Movie{{ID: 268, Title: "Batman"}}, nil
		},
		discover: func(models.Filters, int) ([]models.Movie, error) {
			t.Fatal("discover must not run in search mode")
			return nil, nil
		},
	}
	router, _ := feedRouter(t, stub)

	// The bogus genreId would be a 400 in discover mode; the query wins.
	rec := doRequest(router, http.MethodGet, "/api/feed?query=batman&genreId=acao")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if searched != "batman" {
		t.Fatalf("expected search for batman, got %q", searched)
	}
}

func TestFeedEmptyPageReportsNoMore(t *testing.T) {
	stub := &stubCatalog{
		discover: func(_ models.Filters, _ int) ([]models.Movie, error) {
			return nil, nil
		},
	}
	router, _ := feedRouter(t, stub)

	rec := doRequest(router, http.MethodGet, "/api/feed?page=4")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	resp := decodeFeed(t, rec.Body.Bytes())
	if resp.HasMore {
		t.Fatal("empty page must report hasMore=false")
	}
	if resp.Page != 4 {
		t.Fatalf("expected page 4, got %d", resp.Page)
	}
}

func TestFeedRejectsBadFilters(t *testing.T) {
	router, _ := feedRouter(t, &stubCatalog{})

	if rec := doRequest(router, http.MethodGet, "/api/feed?minRating=onze"); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
