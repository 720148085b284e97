package catalog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/L0obo/BlueFlix/models"
)

// newTestClient points a client at a fake TMDB server and records each
// request's query parameters.
func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *[]url.Values) {
	t.Helper()

	var seen []url.Values
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.URL.Query())
		handler(w, r)
	}))
	t.Cleanup(server.Close)

	client := NewClient(Config{
		APIKey:     "test-key",
		BaseURL:    server.URL,
		HTTPClient: server.Client(),
	})
	return client, &seen
}

func serveJSON(v any) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(v)
	}
}

func TestDiscoverSendsFilterParams(t *testing.T) {
	client, seen := newTestClient(t, serveJSON(pagedResults{Page: 2, Results: []models.Movie{{ID: 1}}}))

	genre := int64(28)
	rating := 7.5
	max := "14"
	movies, err := client.Discover(context.Background(), models.Filters{
		GenreID:      &genre,
		MinRating:    &rating,
		MaxAgeRating: &max,
	}, 2)
	if err != nil {
		t.Fatalf("discover failed: %v", err)
	}
	if len(movies) != 1 {
		t.Fatalf("expected 1 movie, got %d", len(movies))
	}

	params := (*seen)[0]
	checks := map[string]string{
		"sort_by":               "popularity.desc",
		"page":                  "2",
		"with_genres":           "28",
		"vote_average.gte":      "7.5",
		"certification_country": "BR",
		"certification.lte":     "14",
		"api_key":               "test-key",
		"language":              "pt-BR",
	}
	for key, want := range checks {
		if got := params.Get(key); got != want {
			t.Fatalf("param %s = %q, want %q", key, got, want)
		}
	}
}

func TestDiscoverOmitsUnsetFilters(t *testing.T) {
	client, seen := newTestClient(t, serveJSON(pagedResults{Page: 1}))

	if _, err := client.Discover(context.Background(), models.Filters{}, 1); err != nil {
		t.Fatalf("discover failed: %v", err)
	}

	params := (*seen)[0]
	for _, key := range []string{"with_genres", "vote_average.gte", "certification_country", "certification.lte"} {
		if params.Has(key) {
			t.Fatalf("param %s should be absent, got %q", key, params.Get(key))
		}
	}
}

func TestSearchBlankQuerySkipsRequest(t *testing.T) {
	client, seen := newTestClient(t, serveJSON(pagedResults{}))

	movies, err := client.Search(context.Background(), "   ", 1)
	if err != nil {
		t.Fatalf("blank search failed: %v", err)
	}
	if movies != nil {
		t.Fatalf("expected nil result for blank query, got %v", movies)
	}
	if len(*seen) != 0 {
		t.Fatalf("blank query must not hit the network, saw %d requests", len(*seen))
	}
}

func TestSearchSendsQueryAndPage(t *testing.T) {
	client, seen := newTestClient(t, serveJSON(pagedResults{Results: []models.Movie{{ID: 268, Title: "Batman"}}}))

	movies, err := client.Search(context.Background(), "batman", 3)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(movies) != 1 || movies[0].Title != "Batman" {
		t.Fatalf("unexpected results: %+v", movies)
	}

	params := (*seen)[0]
	if params.Get("query") != "batman" || params.Get("page") != "3" {
		t.Fatalf("unexpected params: %v", params)
	}
}

func TestGenresUsesCache(t *testing.T) {
	var hits int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		serveJSON(map[string]any{"genres": []models.Genre{{ID: 28, Name: "Ação"}}})(w, r)
	}))
	t.Cleanup(server.Close)

	client := NewClient(Config{
		APIKey:     "test-key",
		BaseURL:    server.URL,
		CacheDir:   t.TempDir(),
		CacheTTL:   time.Hour,
		HTTPClient: server.Client(),
	})

	for i := 0; i < 3; i++ {
		genres, err := client.Genres(context.Background())
		if err != nil {
			t.Fatalf("genres call %d failed: %v", i, err)
		}
		if len(genres) != 1 || genres[0].Name != "Ação" {
			t.Fatalf("unexpected genres: %+v", genres)
		}
	}
	if hits != 1 {
		t.Fatalf("expected a single upstream request, got %d", hits)
	}
}

func TestMovieDetails(t *testing.T) {
	client, _ := newTestClient(t, serveJSON(models.MovieDetails{ID: 550, Title: "Clube da Luta", Runtime: 139}))

	details, err := client.MovieDetails(context.Background(), 550)
	if err != nil {
		t.Fatalf("details failed: %v", err)
	}
	if details.ID != 550 || details.Runtime != 139 {
		t.Fatalf("unexpected details: %+v", details)
	}
}

func TestTrailerKeyPicksFirstYouTubeTrailer(t *testing.T) {
	client, _ := newTestClient(t, serveJSON(map[string]any{
		"results": []map[string]string{
			{"key": "teaser1", "site": "YouTube", "type": "Teaser"},
			{"key": "vimeo1", "site": "Vimeo", "type": "Trailer"},
			{"key": "trailer1", "site": "YouTube", "type": "Trailer"},
			{"key": "trailer2", "site": "YouTube", "type": "Trailer"},
		},
	}))

	key, err := client.TrailerKey(context.Background(), 550)
	if err != nil {
		t.Fatalf("trailer key failed: %v", err)
	}
	if key != "trailer1" {
		t.Fatalf("expected trailer1, got %q", key)
	}
}

func TestTrailerKeyEmptyWhenNoneMatch(t *testing.T) {
	client, _ := newTestClient(t, serveJSON(map[string]any{"results": []map[string]string{}}))

	key, err := client.TrailerKey(context.Background(), 550)
	if err != nil {
		t.Fatalf("trailer key failed: %v", err)
	}
	if key != "" {
		t.Fatalf("expected empty key, got %q", key)
	}
}

func TestWatchProvidersRegionLookup(t *testing.T) {
	client, _ := newTestClient(t, serveJSON(map[string]any{
		"results": map[string]models.ProviderRegion{
			"BR": {Link: "https://example.com/br", Flatrate: []models.Provider{{ID: 8, Name: "Netflix"}}},
			"US": {Link: "https://example.com/us"},
		},
	}))

	region, err := client.WatchProviders(context.Background(), 550)
	if err != nil {
		t.Fatalf("watch providers failed: %v", err)
	}
	if region == nil || len(region.Flatrate) != 1 || region.Flatrate[0].Name != "Netflix" {
		t.Fatalf("unexpected region: %+v", region)
	}
}

func TestWatchProvidersAbsentRegion(t *testing.T) {
	client, _ := newTestClient(t, serveJSON(map[string]any{
		"results": map[string]models.ProviderRegion{"US": {}},
	}))

	region, err := client.WatchProviders(context.Background(), 550)
	if err != nil {
		t.Fatalf("watch providers failed: %v", err)
	}
	if region != nil {
		t.Fatalf("expected nil for an absent region, got %+v", region)
	}
}

func TestGetRejectsNonOKStatus(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid api key", http.StatusUnauthorized)
	})

	if _, err := client.Discover(context.Background(), models.Filters{}, 1); err == nil {
		t.Fatal("expected an error for a 401 response")
	}
}

func TestGetRequiresAPIKey(t *testing.T) {
	client := NewClient(Config{})
	if _, err := client.Genres(context.Background()); err == nil {
		t.Fatal("expected an error without an api key")
	}
}

func TestFileCacheExpiry(t *testing.T) {
	cache := newFileCache(t.TempDir(), 50*time.Millisecond)

	if err := cache.set("abc", map[string]int{"v": 1}); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	var got map[string]int
	ok, err := cache.get("abc", &got)
	if err != nil || !ok || got["v"] != 1 {
		t.Fatalf("expected cache hit, got ok=%v err=%v value=%v", ok, err, got)
	}

	time.Sleep(80 * time.Millisecond)
	ok, _ = cache.get("abc", &got)
	if ok {
		t.Fatal("expected cache miss after the TTL")
	}
}
