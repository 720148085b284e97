package feed

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/L0obo/BlueFlix/models"

	"github.com/sourcegraph/conc/pool"
)

// DefaultFetchTimeout bounds a single catalog page request. A deadline hit is
// surfaced as ErrTimeout, distinct from network and decode failures.
const DefaultFetchTimeout = 10 * time.Second

// ErrTimeout is returned when a catalog page request exceeds the fetch
// timeout.
var ErrTimeout = errors.New("catalog request timed out")

// Phase is the lifecycle state of the current feed session.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseLoadingMore
	PhaseReady
	PhaseError
)

// String implements fmt.Stringer for log output.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseLoading:
		return "loading"
	case PhaseLoadingMore:
		return "loading-more"
	case PhaseReady:
		return "ready"
	case PhaseError:
		return "error"
	default:
		return "unknown"
	}
}

// CatalogSource is the slice of the catalog client the controller consumes.
type CatalogSource interface {
	Discover(ctx context.Context, filters models.Filters, page int) ([]models.Movie, error)
	Search(ctx context.Context, query string, page int) ([]models.Movie, error)
	Genres(ctx context.Context) ([]models.Genre, error)
}

// LibrarySource is the slice of the personal library client the controller
// consumes.
type LibrarySource interface {
	List(ctx context.Context, col models.Collection) ([]models.LibraryEntry, error)
	Create(ctx context.Context, col models.Collection, input models.LibraryUpsert) (models.LibraryEntry, error)
	Delete(ctx context.Context, col models.Collection, id string) error
}

// Snapshot is the rendered view of the feed: catalog items tagged with
// ownership, plus the session flags the rendering layer needs.
type Snapshot struct {
	Phase        Phase
	Items        []models.TaggedMovie
	Genres       []models.Genre
	Page         int
	HasMore      bool
	Query        string
	SettledQuery string
	Filters      models.Filters
	Saving       map[int64]bool
	Err          error
}

// Option configures a Controller.
type Option func(*Controller)

// WithFetchTimeout overrides the per-page fetch timeout.
func WithFetchTimeout(d time.Duration) Option {
	return func(c *Controller) { c.timeout = d }
}

// WithDebounceInterval overrides the search input quiescence window.
func WithDebounceInterval(d time.Duration) Option {
	return func(c *Controller) { c.debounceDelay = d }
}

// WithOnChange registers a callback invoked with a fresh snapshot after every
// state change. The callback runs on whichever goroutine caused the change.
func WithOnChange(fn func(Snapshot)) Option {
	return func(c *Controller) { c.onChange = fn }
}

// Controller owns the paginated discovery feed: the active query/filter
// session, in-flight request bookkeeping, and reconciliation with the saved
// and watched collections. It is the single writer of the feed state; the
// rendering layer reads snapshots and invokes the public operations.
type Controller struct {
	catalog       CatalogSource
	library       LibrarySource
	timeout       time.Duration
	debounceDelay time.Duration
	debouncer     *Debouncer
	onChange      func(Snapshot)

	mu           sync.Mutex
	phase        Phase
	movies       []models.Movie
	genres       []models.Genre
	page         int
	hasMore      bool
	rawQuery     string
	settledQuery string
	filters      models.Filters
	generation   uint64
	inFlight     int
	lastErr      error
	saving       map[int64]bool
	saved        []models.LibraryEntry
	watched      []models.LibraryEntry
}

// fetchSpec captures everything a page fetch needs at the moment it is
// issued, so a session reset while the request is in flight cannot leak into
// the response handling.
type fetchSpec struct {
	generation uint64
	page       int
	query      string
	filters    models.Filters
}

// NewController creates a feed controller over the given catalog and library
// sources.
func NewController(catalog CatalogSource, library LibrarySource, opts ...Option) *Controller {
	c := &Controller{
		catalog:       catalog,
		library:       library,
		timeout:       DefaultFetchTimeout,
		debounceDelay: DefaultDebounceInterval,
		phase:         PhaseIdle,
		page:          1,
		hasMore:       true,
		saving:        make(map[int64]bool),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.debouncer = NewDebouncer(c.debounceDelay, func(settled string) {
		c.applySettledQuery(context.Background(), settled)
	})
	return c
}

// Start loads the mount-time data: the genre list and both personal
// collections in parallel, then the first discovery page. The initial page
// fetch is gated on all three completing.
func (c *Controller) Start(ctx context.Context) error {
	p := pool.New().WithErrors().WithContext(ctx)
	p.Go(func(ctx context.Context) error {
		genres, err := c.catalog.Genres(ctx)
		if err != nil {
			return fmt.Errorf("fetch genres: %w", err)
		}
		c.mu.Lock()
		c.genres = genres
		c.mu.Unlock()
		return nil
	})
	p.Go(func(ctx context.Context) error {
		return c.syncCollection(ctx, models.CollectionSaved)
	})
	p.Go(func(ctx context.Context) error {
		return c.syncCollection(ctx, models.CollectionWatched)
	})

	if err := p.Wait(); err != nil {
		c.mu.Lock()
		c.phase = PhaseError
		c.lastErr = err
		c.mu.Unlock()
		c.notify()
		return err
	}

	spec := c.beginSession(func() {})
	return c.fetch(ctx, spec)
}

// SetQuery records new raw search input. The fetch is driven by the settled
// (debounced) value, not by this call.
func (c *Controller) SetQuery(text string) {
	c.mu.Lock()
	c.rawQuery = text
	c.mu.Unlock()
	c.notify()
	c.debouncer.Input(text)
}

// SetFilters replaces the filter state and clears both the raw and settled
// query: filters and search are mutually exclusive entry points. The session
// resets to page 1.
func (c *Controller) SetFilters(ctx context.Context, filters models.Filters) error {
	c.debouncer.Cancel()
	spec := c.beginSession(func() {
		c.rawQuery = ""
		c.settledQuery = ""
		c.filters = filters
	})
	return c.fetch(ctx, spec)
}

// LoadMore requests the next page. It is a no-op while a fetch is in flight,
// after the current session is exhausted, or from the error state.
func (c *Controller) LoadMore(ctx context.Context) error {
	c.mu.Lock()
	if c.inFlight > 0 || !c.hasMore || c.phase == PhaseError || c.phase == PhaseIdle {
		c.mu.Unlock()
		return nil
	}
	spec := fetchSpec{
		generation: c.generation,
		page:       c.page + 1,
		query:      c.settledQuery,
		filters:    c.filters,
	}
	c.inFlight++
	c.phase = PhaseLoadingMore
	c.mu.Unlock()
	c.notify()

	return c.fetch(ctx, spec)
}

// Refresh re-fetches page 1 for the current session and re-synchronizes both
// personal collections, without touching the settled query or filters.
func (c *Controller) Refresh(ctx context.Context) error {
	spec := c.beginSession(func() {})

	p := pool.New().WithErrors().WithContext(ctx)
	p.Go(func(ctx context.Context) error {
		return c.fetch(ctx, spec)
	})
	p.Go(func(ctx context.Context) error {
		return c.syncCollection(ctx, models.CollectionSaved)
	})
	p.Go(func(ctx context.Context) error {
		return c.syncCollection(ctx, models.CollectionWatched)
	})
	err := p.Wait()
	c.notify()
	return err
}

// Retry re-runs the page 1 fetch after an error. Errors are never retried
// automatically; this is the explicit user-initiated path.
func (c *Controller) Retry(ctx context.Context) error {
	c.mu.Lock()
	if c.phase != PhaseError {
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()

	spec := c.beginSession(func() {})
	return c.fetch(ctx, spec)
}

// Snapshot returns the current rendered view of the feed.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	saving := make(map[int64]bool, len(c.saving))
	for id := range c.saving {
		saving[id] = true
	}
	return Snapshot{
		Phase:        c.phase,
		Items:        Reconcile(c.movies, c.saved, c.watched),
		Genres:       append([]models.Genre(nil), c.genres...),
		Page:         c.page,
		HasMore:      c.hasMore,
		Query:        c.rawQuery,
		SettledQuery: c.settledQuery,
		Filters:      c.filters,
		Saving:       saving,
		Err:          c.lastErr,
	}
}

// applySettledQuery is invoked by the debouncer when the raw input has been
// quiescent for the full window.
func (c *Controller) applySettledQuery(ctx context.Context, settled string) {
	c.mu.Lock()
	if settled == c.settledQuery {
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	spec := c.beginSession(func() {
		c.settledQuery = settled
	})
	if err := c.fetch(ctx, spec); err != nil {
		log.Printf("[feed] settled query %q page 1 failed: %v", settled, err)
	}
}

// beginSession resets pagination, advances the generation so stale responses
// are discarded on arrival, applies the session mutation, and reserves the
// page 1 fetch. Must be called without the lock held.
func (c *Controller) beginSession(mutate func()) fetchSpec {
	c.mu.Lock()
	mutate()
	c.page = 1
	c.hasMore = true
	c.generation++
	c.lastErr = nil
	c.phase = PhaseLoading
	c.inFlight++
	spec := fetchSpec{
		generation: c.generation,
		page:       1,
		query:      c.settledQuery,
		filters:    c.filters,
	}
	c.mu.Unlock()
	c.notify()
	return spec
}

// fetch performs the catalog request for spec and applies the result unless
// the session has moved on in the meantime.
func (c *Controller) fetch(ctx context.Context, spec fetchSpec) error {
	fctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var (
		results []models.Movie
		err     error
	)
	if spec.query != "" {
		results, err = c.catalog.Search(fctx, spec.query, spec.page)
	} else {
		results, err = c.catalog.Discover(fctx, spec.filters, spec.page)
	}
	if err != nil && errors.Is(err, context.DeadlineExceeded) {
		err = ErrTimeout
	}

	c.mu.Lock()
	c.inFlight--
	if spec.generation != c.generation {
		// The session moved on while this request was in flight; the
		// response belongs to an abandoned generation.
		c.mu.Unlock()
		log.Printf("[feed] discarding stale page %d response (generation %d)", spec.page, spec.generation)
		return nil
	}

	if err != nil {
		if spec.page == 1 {
			// Never display a known-bad page 1.
			c.movies = nil
			c.phase = PhaseError
			c.lastErr = err
		} else {
			// Keep the pages the user is already scrolling through.
			c.phase = PhaseReady
		}
		c.mu.Unlock()
		c.notify()
		return err
	}

	if len(results) == 0 {
		c.hasMore = false
	}
	if spec.page == 1 {
		c.movies = results
	} else {
		c.movies = append(c.movies, results...)
	}
	c.page = spec.page
	c.phase = PhaseReady
	c.mu.Unlock()
	c.notify()
	return nil
}

// syncCollection replaces the local copy of one personal collection with the
// backend's current state.
func (c *Controller) syncCollection(ctx context.Context, col models.Collection) error {
	entries, err := c.library.List(ctx, col)
	if err != nil {
		return fmt.Errorf("list %s collection: %w", col, err)
	}

	c.mu.Lock()
	switch col {
	case models.CollectionSaved:
		c.saved = entries
	case models.CollectionWatched:
		c.watched = entries
	}
	c.mu.Unlock()
	return nil
}

func (c *Controller) notify() {
	if c.onChange == nil {
		return
	}
	c.onChange(c.Snapshot())
}
