package catalog

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/L0obo/BlueFlix/models"

	"golang.org/x/time/rate"
)

const (
	defaultBaseURL  = "https://api.themoviedb.org/3"
	defaultLanguage = "pt-BR"
	defaultRegion   = "BR"

	// PosterBaseURL is the image CDN prefix for w500 posters.
	PosterBaseURL = "https://image.tmdb.org/t/p/w500"
)

// Client is a stateless wrapper around the TMDB discovery, search, genre,
// detail, video and watch-provider endpoints. It carries no retry logic; all
// retries are user-initiated upstream.
type Client struct {
	baseURL    string
	apiKey     string
	language   string
	region     string
	httpClient *http.Client
	limiter    *rate.Limiter
	cache      *fileCache
}

// Config holds catalog client construction options. APIKey is required;
// everything else has a sensible default.
type Config struct {
	APIKey     string
	BaseURL    string
	Language   string
	Region     string
	CacheDir   string
	CacheTTL   time.Duration
	HTTPClient *http.Client
}

// NewClient creates a catalog client. When CacheDir is set, slow-moving
// lookups (genre list, movie details) are cached on disk with the given TTL.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Language == "" {
		cfg.Language = defaultLanguage
	}
	if cfg.Region == "" {
		cfg.Region = defaultRegion
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}

	var cache *fileCache
	if cfg.CacheDir != "" {
		ttl := cfg.CacheTTL
		if ttl <= 0 {
			ttl = 24 * time.Hour
		}
		cache = newFileCache(cfg.CacheDir, ttl)
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		language:   cfg.Language,
		region:     cfg.Region,
		httpClient: cfg.HTTPClient,
		// TMDB allows roughly 40 requests per 10 seconds per client.
		limiter: rate.NewLimiter(rate.Every(250*time.Millisecond), 40),
		cache:   cache,
	}
}

type pagedResults struct {
	Page    int            `json:"page"`
	Results []models.Movie `json:"results"`
}

// Discover returns one page of movies matching the filter constraints,
// ordered by popularity. An empty page signals end-of-results.
func (c *Client) Discover(ctx context.Context, filters models.Filters, page int) ([]models.Movie, error) {
	if page < 1 {
		page = 1
	}

	params := url.Values{}
	params.Set("sort_by", "popularity.desc")
	params.Set("page", strconv.Itoa(page))
	if filters.GenreID != nil {
		params.Set("with_genres", strconv.FormatInt(*filters.GenreID, 10))
	}
	if filters.MinRating != nil {
		params.Set("vote_average.gte", strconv.FormatFloat(*filters.MinRating, 'f', -1, 64))
	}
	if filters.MaxAgeRating != nil && *filters.MaxAgeRating != "" {
		params.Set("certification_country", c.region)
		params.Set("certification.lte", *filters.MaxAgeRating)
	}

	var payload pagedResults
	if err := c.get(ctx, "/discover/movie", params, &payload); err != nil {
		return nil, fmt.Errorf("discover movies: %w", err)
	}
	return payload.Results, nil
}

// Search returns one page of movies matching a free-text query. A blank
// query returns an empty result without issuing a request.
func (c *Client) Search(ctx context.Context, query string, page int) ([]models.Movie, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}
	if page < 1 {
		page = 1
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("page", strconv.Itoa(page))

	var payload pagedResults
	if err := c.get(ctx, "/search/movie", params, &payload); err != nil {
		return nil, fmt.Errorf("search movies: %w", err)
	}
	return payload.Results, nil
}

// Genres returns the catalog genre list for the configured language.
func (c *Client) Genres(ctx context.Context) ([]models.Genre, error) {
	key := cacheKey("genres", c.language)
	var cached []models.Genre
	if c.cacheGet(key, &cached) && len(cached) > 0 {
		return cached, nil
	}

	var payload struct {
		Genres []models.Genre `json:"genres"`
	}
	if err := c.get(ctx, "/genre/movie/list", nil, &payload); err != nil {
		return nil, fmt.Errorf("fetch genres: %w", err)
	}

	c.cacheSet(key, payload.Genres)
	return payload.Genres, nil
}

// MovieDetails returns the full detail record for a movie.
func (c *Client) MovieDetails(ctx context.Context, id int64) (*models.MovieDetails, error) {
	key := cacheKey("details", c.language, strconv.FormatInt(id, 10))
	var cached models.MovieDetails
	if c.cacheGet(key, &cached) && cached.ID == id {
		return &cached, nil
	}

	var details models.MovieDetails
	if err := c.get(ctx, fmt.Sprintf("/movie/%d", id), nil, &details); err != nil {
		return nil, fmt.Errorf("fetch movie details: %w", err)
	}

	c.cacheSet(key, details)
	return &details, nil
}

// TrailerKey returns the YouTube key of the first trailer for a movie, or the
// empty string when none is available.
func (c *Client) TrailerKey(ctx context.Context, id int64) (string, error) {
	var payload struct {
		Results []struct {
			Key  string `json:"key"`
			Site string `json:"site"`
			Type string `json:"type"`
		} `json:"results"`
	}
	if err := c.get(ctx, fmt.Sprintf("/movie/%d/videos", id), nil, &payload); err != nil {
		return "", fmt.Errorf("fetch movie videos: %w", err)
	}

	for _, video := range payload.Results {
		if video.Type == "Trailer" && video.Site == "YouTube" {
			return video.Key, nil
		}
	}
	return "", nil
}

// WatchProviders returns the provider listing for the configured region, or
// nil when the movie has no providers there.
func (c *Client) WatchProviders(ctx context.Context, id int64) (*models.ProviderRegion, error) {
	var payload struct {
		Results map[string]models.ProviderRegion `json:"results"`
	}
	if err := c.get(ctx, fmt.Sprintf("/movie/%d/watch/providers", id), nil, &payload); err != nil {
		return nil, fmt.Errorf("fetch watch providers: %w", err)
	}

	region, ok := payload.Results[c.region]
	if !ok {
		return nil, nil
	}
	return &region, nil
}

// get performs a rate-limited GET against the catalog API and decodes the
// JSON response into v.
func (c *Client) get(ctx context.Context, path string, params url.Values, v any) error {
	if c.apiKey == "" {
		return fmt.Errorf("catalog api key not configured")
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	if params == nil {
		params = url.Values{}
	}
	params.Set("api_key", c.apiKey)
	params.Set("language", c.language)

	reqURL := c.baseURL + path + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("catalog request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("catalog %s: %s", path, resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

func (c *Client) cacheGet(key string, v any) bool {
	if c.cache == nil {
		return false
	}
	ok, _ := c.cache.get(key, v)
	return ok
}

func (c *Client) cacheSet(key string, v any) {
	if c.cache == nil {
		return
	}
	if err := c.cache.set(key, v); err != nil {
		log.Printf("[catalog] failed to cache %s: %v", key, err)
	}
}

func cacheKey(parts ...string) string {
	h := sha1.Sum([]byte(strings.Join(parts, ":")))
	return hex.EncodeToString(h[:])
}
