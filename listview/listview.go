// Package listview implements the paginated, filterable, incrementally
// loaded list used by the hotel search and shared-resource screens. One
// View instance owns one list: the accumulated master list for the current
// query, the filter-derived visible list, the page cursor and the has-more
// flag. Fetching, matching and item identity are injected so the same unit
// serves every concrete list.
package listview

import (
	"context"
	"errors"
	"sync"
	"time"

	"travel-helper/filter"
)

// State describes where a View is in its query lifecycle
type State int

const (
	// StateIdle means no query has been submitted yet
	StateIdle State = iota
	// StateLoading means the first page of a query is in flight
	StateLoading
	// StateReady means a query settled with at least one item
	StateReady
	// StateEmpty means the first page came back with zero items
	StateEmpty
	// StateError means the first page fetch failed
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateEmpty:
		return "empty"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// Page is one fetched page of items plus the server's pagination flag
type Page[T any] struct {
	Items   []T
	HasMore bool
}

// Config wires a View to its concrete list type.
// Fetch is the only part of the View that touches the network.
type Config[Q, T any] struct {
	// Fetch retrieves one zero-based page for a query
	Fetch func(ctx context.Context, query Q, page int) (Page[T], error)
	// Fields extracts the text fields the filter matches against.
	// Absent fields should be returned as empty strings.
	Fields func(item T) []string
	// Key returns the item's identity, used to drop duplicates when a
	// later page overlaps an earlier one. Empty keys are never deduped.
	Key func(item T) string
	// Debounce is the minimum interval between TryLoadMore attempts.
	// Zero means the 100ms default.
	Debounce time.Duration
}

// View is a paginated filtered list. All methods are safe for use from
// the UI event goroutine and fetch-completion goroutines; responses that
// arrive after a newer query was submitted are discarded.
type View[Q, T any] struct {
	cfg Config[Q, T]

	mu          sync.Mutex
	query       Q
	gen         uint64
	master      []T
	visible     []T
	seen        map[string]bool
	page        int
	hasMore     bool
	state       State
	err         error
	matcher     *filter.Matcher
	loading     bool
	loadingMore bool
	lastAttempt time.Time
}

var errNoFetch = errors.New("listview: Fetch function is required")

// New creates a View from cfg
func New[Q, T any](cfg Config[Q, T]) (*View[Q, T], error) {
	if cfg.Fetch == nil {
		return nil, errNoFetch
	}
	if cfg.Fields == nil {
		cfg.Fields = func(T) []string { return nil }
	}
	if cfg.Key == nil {
		cfg.Key = func(T) string { return "" }
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = 100 * time.Millisecond
	}
	return &View[Q, T]{
		cfg:     cfg,
		state:   StateIdle,
		matcher: filter.NewMatcher(""),
	}, nil
}

// Submit starts a new query. The master and visible lists, the cursor and
// the filter term are reset synchronously, before the first page fetch is
// issued. If a previous fetch is still outstanding its response will be
// discarded when it lands.
func (v *View[Q, T]) Submit(ctx context.Context, query Q) error {
	v.mu.Lock()
	v.gen++
	gen := v.gen
	v.query = query
	v.master = nil
	v.visible = nil
	v.seen = make(map[string]bool)
	v.page = 0
	v.hasMore = false
	v.err = nil
	v.matcher = filter.NewMatcher("")
	v.state = StateLoading
	v.loading = true
	v.loadingMore = false
	v.mu.Unlock()

	page, err := v.cfg.Fetch(ctx, query, 0)

	v.mu.Lock()
	defer v.mu.Unlock()

	if gen != v.gen {
		// A newer query replaced this one while the fetch was in
		// flight. Its state must not be overwritten.
		return nil
	}

	v.loading = false

	if err != nil {
		v.state = StateError
		v.err = err
		return err
	}

	v.appendLocked(page.Items)
	v.hasMore = page.HasMore

	if len(v.master) == 0 {
		// Zero items on the very first page is "no results", not an
		// error and not the same as a later empty page.
		v.state = StateEmpty
	} else {
		v.state = StateReady
	}

	v.recomputeVisibleLocked()
	return nil
}

// LoadMore fetches the next page and appends it to the master list. It is
// a silent no-op while a fetch is in flight, while a filter term is
// active, or when the server said there is nothing more. It reports
// whether a fetch was actually issued.
func (v *View[Q, T]) LoadMore(ctx context.Context) (bool, error) {
	v.mu.Lock()
	if v.loading || v.loadingMore || !v.hasMore || v.matcher.Active() || v.state != StateReady {
		v.mu.Unlock()
		return false, nil
	}
	gen := v.gen
	query := v.query
	next := v.page + 1
	v.loadingMore = true
	v.mu.Unlock()

	page, err := v.cfg.Fetch(ctx, query, next)

	v.mu.Lock()
	defer v.mu.Unlock()

	if gen != v.gen {
		return false, nil
	}

	v.loadingMore = false

	if err != nil {
		// Cursor and master list stay untouched so the page can be
		// retried without skipping.
		v.err = err
		return true, err
	}

	v.err = nil
	v.page = next
	v.appendLocked(page.Items)
	v.hasMore = page.HasMore
	v.recomputeVisibleLocked()
	return true, nil
}

// TryLoadMore is the trigger-facing entry point: it applies the debounce
// and then the same guard clause as LoadMore. Dropped attempts are silent.
func (v *View[Q, T]) TryLoadMore(ctx context.Context) (bool, error) {
	v.mu.Lock()
	now := time.Now()
	if now.Sub(v.lastAttempt) < v.cfg.Debounce {
		v.mu.Unlock()
		return false, nil
	}
	v.lastAttempt = now
	v.mu.Unlock()

	return v.LoadMore(ctx)
}

// SetFilter replaces the filter term and recomputes the visible list in
// full. It never touches the network; clearing the term restores the
// visible list to the whole master list.
func (v *View[Q, T]) SetFilter(term string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.matcher = filter.NewMatcher(term)
	v.recomputeVisibleLocked()
}

// appendLocked appends items, dropping rows whose key was already seen.
// Caller holds v.mu.
func (v *View[Q, T]) appendLocked(items []T) {
	for _, item := range items {
		key := v.cfg.Key(item)
		if key != "" {
			if v.seen[key] {
				continue
			}
			v.seen[key] = true
		}
		v.master = append(v.master, item)
	}
}

// recomputeVisibleLocked derives the visible list from the master list and
// the current matcher. Caller holds v.mu.
func (v *View[Q, T]) recomputeVisibleLocked() {
	if !v.matcher.Active() {
		v.visible = v.master
		return
	}
	visible := make([]T, 0, len(v.master))
	for _, item := range v.master {
		if v.matcher.Match(v.cfg.Fields(item)) {
			visible = append(visible, item)
		}
	}
	v.visible = visible
}

// Items returns a copy of the master list
func (v *View[Q, T]) Items() []T {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]T, len(v.master))
	copy(out, v.master)
	return out
}

// Visible returns a copy of the filtered view of the master list
func (v *View[Q, T]) Visible() []T {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]T, len(v.visible))
	copy(out, v.visible)
	return out
}

// State returns the current lifecycle state
func (v *View[Q, T]) State() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

// HasMore reports the server's pagination flag from the last page
func (v *View[Q, T]) HasMore() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.hasMore
}

// Err returns the most recent fetch error, if any
func (v *View[Q, T]) Err() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.err
}

// FilterActive reports whether a non-empty filter term is set
func (v *View[Q, T]) FilterActive() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.matcher.Active()
}

// LoadMoreArmed reports whether a load-more affordance should be shown:
// there must be more results, no active filter, and a settled non-empty
// query. Filtering only searches what was already loaded, so an active
// term disarms the trigger regardless of HasMore.
func (v *View[Q, T]) LoadMoreArmed() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.hasMore && !v.matcher.Active() && v.state == StateReady
}
