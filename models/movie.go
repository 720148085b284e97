package models

import "strconv"

// Movie is a single catalog entry as returned by the TMDB discover and search
// endpoints. Movies are immutable once fetched and are never persisted
// locally; ownership status is derived at render time from the saved and
// watched collections.
type Movie struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	ReleaseDate string  `json:"release_date,omitempty"`
	PosterPath  *string `json:"poster_path"`
	VoteAverage float64 `json:"vote_average"`
	GenreIDs    []int64 `json:"genre_ids,omitempty"`
	Adult       bool    `json:"adult"`
	Overview    string  `json:"overview,omitempty"`
}

// Year derives the release year from the first four characters of the release
// date. Returns 0 when the date is absent or malformed.
func (m Movie) Year() int {
	if len(m.ReleaseDate) < 4 {
		return 0
	}
	year, err := strconv.Atoi(m.ReleaseDate[:4])
	if err != nil {
		return 0
	}
	return year
}

// Genre is a catalog genre as returned by the genre list endpoint.
type Genre struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// MovieDetails is the full detail record for a single catalog movie.
type MovieDetails struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Tagline     string  `json:"tagline,omitempty"`
	Overview    string  `json:"overview,omitempty"`
	ReleaseDate string  `json:"release_date,omitempty"`
	Runtime     int     `json:"runtime"`
	VoteAverage float64 `json:"vote_average"`
	PosterPath  *string `json:"poster_path"`
	Genres      []Genre `json:"genres,omitempty"`
}

// Provider is a single streaming/rental provider entry.
type Provider struct {
	ID   int64  `json:"provider_id"`
	Name string `json:"provider_name"`
	Logo string `json:"logo_path,omitempty"`
}

// ProviderRegion lists where a movie can be watched within one region.
type ProviderRegion struct {
	Link     string     `json:"link,omitempty"`
	Flatrate []Provider `json:"flatrate,omitempty"`
	Rent     []Provider `json:"rent,omitempty"`
	Buy      []Provider `json:"buy,omitempty"`
}

// Filters holds the discover constraints. All fields are independently
// optional; nil means no constraint on that dimension.
type Filters struct {
	GenreID      *int64   `json:"genreId,omitempty"`
	MinRating    *float64 `json:"minRating,omitempty"`
	MaxAgeRating *string  `json:"maxAgeRating,omitempty"`
}

// IsZero reports whether no filter dimension is constrained.
func (f Filters) IsZero() bool {
	return f.GenreID == nil && f.MinRating == nil && f.MaxAgeRating == nil
}

// OwnershipStatus tags a catalog movie with its membership in the personal
// collections. It is recomputed on every reconciliation pass, never stored.
type OwnershipStatus string

const (
	OwnershipNone    OwnershipStatus = "none"
	OwnershipSaved   OwnershipStatus = "saved"
	OwnershipWatched OwnershipStatus = "watched"
)

// TaggedMovie pairs a catalog movie with its derived ownership status.
type TaggedMovie struct {
	Movie
	Status OwnershipStatus `json:"status"`
}
