package feed

import (
	"context"
	"fmt"
	"log"

	"github.com/L0obo/BlueFlix/models"
)

// Save creates a saved-collection entry for a catalog movie and patches the
// local collection on success. A per-movie in-flight marker absorbs
// double-taps so one gesture can never create two backend entries; the marker
// is surfaced to the renderer through Snapshot.Saving.
func (c *Controller) Save(ctx context.Context, movie models.Movie) error {
	if !c.beginMutation(movie.ID) {
		return nil
	}
	defer c.endMutation(movie.ID)

	c.mu.Lock()
	_, alreadySaved := findByTMDBID(c.saved, movie.ID)
	c.mu.Unlock()
	if alreadySaved {
		return nil
	}

	entry, err := c.library.Create(ctx, models.CollectionSaved, models.EntryFromMovie(movie))
	if err != nil {
		return fmt.Errorf("save movie %d: %w", movie.ID, err)
	}

	c.mu.Lock()
	c.saved = append(c.saved, entry)
	c.mu.Unlock()
	return nil
}

// Remove deletes a movie from the saved collection. A movie that is not in
// the collection is a no-op.
func (c *Controller) Remove(ctx context.Context, movie models.Movie) error {
	if !c.beginMutation(movie.ID) {
		return nil
	}
	defer c.endMutation(movie.ID)

	c.mu.Lock()
	entry, ok := findByTMDBID(c.saved, movie.ID)
	c.mu.Unlock()
	if !ok {
		return nil
	}

	if err := c.library.Delete(ctx, models.CollectionSaved, entry.ID); err != nil {
		return fmt.Errorf("remove movie %d: %w", movie.ID, err)
	}

	c.mu.Lock()
	c.saved = removeByID(c.saved, entry.ID)
	c.mu.Unlock()
	return nil
}

// MarkWatched moves a movie from the saved collection to the watched one:
// insert into watched first, then delete from saved. The move is not atomic;
// when the delete fails the entry stays in both collections until the next
// refresh, and the watched-wins tie-break in Reconcile keeps the displayed
// state correct in the meantime.
func (c *Controller) MarkWatched(ctx context.Context, movie models.Movie) error {
	if !c.beginMutation(movie.ID) {
		return nil
	}
	defer c.endMutation(movie.ID)

	watchedEntry, err := c.library.Create(ctx, models.CollectionWatched, models.EntryFromMovie(movie))
	if err != nil {
		return fmt.Errorf("mark movie %d watched: %w", movie.ID, err)
	}

	c.mu.Lock()
	if _, ok := findByTMDBID(c.watched, movie.ID); !ok {
		c.watched = append(c.watched, watchedEntry)
	}
	savedEntry, wasSaved := findByTMDBID(c.saved, movie.ID)
	c.mu.Unlock()

	if !wasSaved {
		return nil
	}

	if err := c.library.Delete(ctx, models.CollectionSaved, savedEntry.ID); err != nil {
		log.Printf("[feed] movie %d watched but still saved, will reconcile on refresh: %v", movie.ID, err)
		return fmt.Errorf("remove movie %d from saved after watch: %w", movie.ID, err)
	}

	c.mu.Lock()
	c.saved = removeByID(c.saved, savedEntry.ID)
	c.mu.Unlock()
	return nil
}

// Saving reports whether a mutation for the given catalog id is in flight,
// so the renderer can disable the per-item action.
func (c *Controller) Saving(tmdbID int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.saving[tmdbID]
}

// beginMutation claims the per-movie in-flight marker. Returns false when a
// mutation for this movie is already running.
func (c *Controller) beginMutation(tmdbID int64) bool {
	c.mu.Lock()
	if c.saving[tmdbID] {
		c.mu.Unlock()
		return false
	}
	c.saving[tmdbID] = true
	c.mu.Unlock()
	c.notify()
	return true
}

func (c *Controller) endMutation(tmdbID int64) {
	c.mu.Lock()
	delete(c.saving, tmdbID)
	c.mu.Unlock()
	c.notify()
}

func findByTMDBID(entries []models.LibraryEntry, tmdbID int64) (models.LibraryEntry, bool) {
	for _, entry := range entries {
		if entry.TMDBID == tmdbID {
			return entry, true
		}
	}
	return models.LibraryEntry{}, false
}

func removeByID(entries []models.LibraryEntry, id string) []models.LibraryEntry {
	for i := range entries {
		if entries[i].ID == id {
			return append(entries[:i:i], entries[i+1:]...)
		}
	}
	return entries
}
