package models

import "time"

// Collection identifies one of the two personal movie lists. The lists are
// disjoint by design; the mark-as-watched move can leave an entry briefly
// present in both, which the reconciler resolves in favor of watched.
type Collection string

const (
	CollectionSaved   Collection = "saved"
	CollectionWatched Collection = "watched"
)

// Valid reports whether c names a known collection.
func (c Collection) Valid() bool {
	return c == CollectionSaved || c == CollectionWatched
}

// LibraryEntry is a movie stored in one of the personal collections. The ID
// is assigned by the backend; TMDBID is the stable catalog identifier.
type LibraryEntry struct {
	ID        string    `json:"id"`
	TMDBID    int64     `json:"tmdbId"`
	Title     string    `json:"title"`
	Year      int       `json:"year"`
	PosterURL string    `json:"posterURL,omitempty"`
	AddedAt   time.Time `json:"addedAt"`
}

// LibraryUpsert is the payload for creating a library entry.
type LibraryUpsert struct {
	TMDBID    int64  `json:"tmdbId"`
	Title     string `json:"title"`
	Year      int    `json:"year"`
	PosterURL string `json:"posterURL,omitempty"`
}

// EntryFromMovie builds the library payload for a catalog movie. The poster
// path is stored as-is; rendering layers prepend the image base URL.
func EntryFromMovie(m Movie) LibraryUpsert {
	poster := ""
	if m.PosterPath != nil {
		poster = *m.PosterPath
	}
	return LibraryUpsert{
		TMDBID:    m.ID,
		Title:     m.Title,
		Year:      m.Year(),
		PosterURL: poster,
	}
}
