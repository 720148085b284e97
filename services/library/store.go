package library

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/L0obo/BlueFlix/models"

	"github.com/google/uuid"
)

var (
	ErrStorageDirRequired = errors.New("storage directory not provided")
	ErrCollectionInvalid  = errors.New("unknown collection")
	ErrTitleRequired      = errors.New("title is required")
	ErrTMDBIDRequired     = errors.New("tmdb id is required")
)

// Store holds the personal saved and watched collections as per-collection
// JSON files. Each entry gets a locally assigned uuid; a catalog id appears
// at most once per collection (creates upsert by tmdb id).
type Store struct {
	mu      sync.RWMutex
	dir     string
	entries map[models.Collection][]models.LibraryEntry
}

// NewStore creates a library store rooted at storageDir, loading any existing
// collection files.
func NewStore(storageDir string) (*Store, error) {
	if strings.TrimSpace(storageDir) == "" {
		return nil, ErrStorageDirRequired
	}
	if err := os.MkdirAll(storageDir, 0o755); err != nil {
		return nil, fmt.Errorf("create library dir: %w", err)
	}

	s := &Store{
		dir:     storageDir,
		entries: make(map[models.Collection][]models.LibraryEntry),
	}
	for _, col := range []models.Collection{models.CollectionSaved, models.CollectionWatched} {
		if err := s.load(col); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// List returns the entries of a collection in insertion order.
func (s *Store) List(col models.Collection) ([]models.LibraryEntry, error) {
	if !col.Valid() {
		return nil, ErrCollectionInvalid
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]models.LibraryEntry, len(s.entries[col]))
	copy(entries, s.entries[col])
	return entries, nil
}

// Create adds an entry to a collection. When the catalog id is already
// present, the existing entry is returned unchanged rather than duplicated.
func (s *Store) Create(col models.Collection, input models.LibraryUpsert) (models.LibraryEntry, error) {
	if !col.Valid() {
		return models.LibraryEntry{}, ErrCollectionInvalid
	}
	if input.TMDBID <= 0 {
		return models.LibraryEntry{}, ErrTMDBIDRequired
	}
	if strings.TrimSpace(input.Title) == "" {
		return models.LibraryEntry{}, ErrTitleRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.entries[col] {
		if existing.TMDBID == input.TMDBID {
			return existing, nil
		}
	}

	entry := models.LibraryEntry{
		ID:        uuid.NewString(),
		TMDBID:    input.TMDBID,
		Title:     strings.TrimSpace(input.Title),
		Year:      input.Year,
		PosterURL: input.PosterURL,
		AddedAt:   time.Now().UTC(),
	}
	s.entries[col] = append(s.entries[col], entry)

	if err := s.saveLocked(col); err != nil {
		s.entries[col] = s.entries[col][:len(s.entries[col])-1]
		return models.LibraryEntry{}, err
	}
	return entry, nil
}

// Delete removes an entry by its local id. Returns false when the id is not
// present in the collection.
func (s *Store) Delete(col models.Collection, id string) (bool, error) {
	if !col.Valid() {
		return false, ErrCollectionInvalid
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.entries[col]
	for i, entry := range entries {
		if entry.ID == id {
			s.entries[col] = append(entries[:i:i], entries[i+1:]...)
			if err := s.saveLocked(col); err != nil {
				s.entries[col] = entries
				return false, err
			}
			return true, nil
		}
	}
	return false, nil
}

// Random returns a random entry of a collection, used by the re-watch
// recommendation endpoint. Returns false when the collection is empty.
func (s *Store) Random(col models.Collection) (models.LibraryEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := s.entries[col]
	if len(entries) == 0 {
		return models.LibraryEntry{}, false
	}
	return entries[rand.Intn(len(entries))], true
}

func (s *Store) path(col models.Collection) string {
	return filepath.Join(s.dir, string(col)+".json")
}

func (s *Store) load(col models.Collection) error {
	file, err := os.Open(s.path(col))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("open %s collection: %w", col, err)
	}
	defer file.Close()

	var stored []models.LibraryEntry
	if err := json.NewDecoder(file).Decode(&stored); err != nil {
		return fmt.Errorf("decode %s collection: %w", col, err)
	}
	s.entries[col] = stored
	return nil
}

// saveLocked writes one collection to disk. Must be called with mu held.
func (s *Store) saveLocked(col models.Collection) error {
	path := s.path(col)
	tmp := path + ".tmp"
	file, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create %s temp file: %w", col, err)
	}

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	entries := s.entries[col]
	if entries == nil {
		entries = []models.LibraryEntry{}
	}
	if err := enc.Encode(entries); err != nil {
		file.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("encode %s collection: %w", col, err)
	}
	if err := file.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("close %s temp file: %w", col, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace %s collection: %w", col, err)
	}
	return nil
}
