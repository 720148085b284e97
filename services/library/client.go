package library

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/L0obo/BlueFlix/models"
)

// ErrEntryNotFound is returned when deleting an entry the backend no longer
// has.
var ErrEntryNotFound = errors.New("library entry not found")

// Client is a stateless CRUD wrapper around the personal library backend. It
// speaks the same JSON-over-HTTP surface that handlers.LibraryHandler serves,
// so it can point at the built-in store or at an external backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a library client for the backend at baseURL.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// List returns all entries of a collection.
func (c *Client) List(ctx context.Context, col models.Collection) ([]models.LibraryEntry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.collectionURL(col), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", col, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("list %s: %s", col, responseError(resp))
	}

	var entries []models.LibraryEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, fmt.Errorf("decode %s list: %w", col, err)
	}
	return entries, nil
}

// Create adds an entry to a collection and returns it with its assigned
// local id.
func (c *Client) Create(ctx context.Context, col models.Collection, input models.LibraryUpsert) (models.LibraryEntry, error) {
	body, err := json.Marshal(input)
	if err != nil {
		return models.LibraryEntry{}, fmt.Errorf("marshal entry: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.collectionURL(col), bytes.NewReader(body))
	if err != nil {
		return models.LibraryEntry{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return models.LibraryEntry{}, fmt.Errorf("create %s entry: %w", col, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return models.LibraryEntry{}, fmt.Errorf("create %s entry: %s", col, responseError(resp))
	}

	var entry models.LibraryEntry
	if err := json.NewDecoder(resp.Body).Decode(&entry); err != nil {
		return models.LibraryEntry{}, fmt.Errorf("decode created entry: %w", err)
	}
	return entry, nil
}

// Delete removes an entry from a collection by its local id.
func (c *Client) Delete(ctx context.Context, col models.Collection, id string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.collectionURL(col)+"/"+id, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("delete %s entry: %w", col, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusNoContent, http.StatusOK:
		return nil
	case http.StatusNotFound:
		return ErrEntryNotFound
	default:
		return fmt.Errorf("delete %s entry: %s", col, responseError(resp))
	}
}

func (c *Client) collectionURL(col models.Collection) string {
	return c.baseURL + "/api/library/" + string(col)
}

func responseError(resp *http.Response) string {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	text := strings.TrimSpace(string(body))
	if text == "" {
		return resp.Status
	}
	return resp.Status + " - " + text
}
