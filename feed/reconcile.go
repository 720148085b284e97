package feed

import "github.com/L0obo/BlueFlix/models"

// Reconcile tags each catalog movie with its membership in the saved and
// watched collections. Watched wins when a catalog id appears in both: the
// mark-as-watched move is not atomic, so the collections can briefly overlap,
// and the displayed state must already reflect the move.
func Reconcile(movies []models.Movie, saved, watched []models.LibraryEntry) []models.TaggedMovie {
	savedIDs := membership(saved)
	watchedIDs := membership(watched)

	tagged := make([]models.TaggedMovie, len(movies))
	for i, movie := range movies {
		status := models.OwnershipNone
		if _, ok := watchedIDs[movie.ID]; ok {
			status = models.OwnershipWatched
		} else if _, ok := savedIDs[movie.ID]; ok {
			status = models.OwnershipSaved
		}
		tagged[i] = models.TaggedMovie{Movie: movie, Status: status}
	}
	return tagged
}

func membership(entries []models.LibraryEntry) map[int64]struct{} {
	ids := make(map[int64]struct{}, len(entries))
	for _, entry := range entries {
		ids[entry.TMDBID] = struct{}{}
	}
	return ids
}
