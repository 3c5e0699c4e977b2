package listview

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type item struct {
	id   string
	name string
	addr string
	desc string
}

func itemFields(it item) []string {
	return []string{it.name, it.addr, it.desc}
}

func itemKey(it item) string {
	return it.id
}

// scriptedFetch serves pages from a fixed script and records every call
type scriptedFetch struct {
	mu    sync.Mutex
	pages map[int]Page[item]
	errs  map[int]error
	calls []int
}

func (s *scriptedFetch) fetch(_ context.Context, _ string, page int) (Page[item], error) {
	s.mu.Lock()
	s.calls = append(s.calls, page)
	s.mu.Unlock()
	if err, ok := s.errs[page]; ok {
		return Page[item]{}, err
	}
	return s.pages[page], nil
}

func (s *scriptedFetch) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func (s *scriptedFetch) calledPages() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]int, len(s.calls))
	copy(out, s.calls)
	return out
}

func newTestView(t *testing.T, fetch func(context.Context, string, int) (Page[item], error)) *View[string, item] {
	t.Helper()
	v, err := New(Config[string, item]{
		Fetch:    fetch,
		Fields:   itemFields,
		Key:      itemKey,
		Debounce: time.Nanosecond,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return v
}

// lagosPages is the two-page result set from the concrete scenarios:
// page 0 has two hotels with more available, page 1 has one and ends.
func lagosPages() *scriptedFetch {
	return &scriptedFetch{
		pages: map[int]Page[item]{
			0: {
				Items: []item{
					{id: "h1", name: "Eko Suites", addr: "Victoria Island, Lagos", desc: "City center business hotel"},
					{id: "h2", name: "Bar Beach Lodge", addr: "Ahmadu Bello Way, Lagos", desc: "Steps from the beach"},
				},
				HasMore: true,
			},
			1: {
				Items:   []item{{id: "h3", name: "Ikoyi Residence", addr: "Ikoyi, Lagos", desc: "Quiet residential stay"}},
				HasMore: false,
			},
		},
	}
}

func TestSubmitAndLoadMore(t *testing.T) {
	script := lagosPages()
	v := newTestView(t, script.fetch)

	if err := v.Submit(context.Background(), "Lagos,NG"); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	if got := len(v.Visible()); got != 2 {
		t.Errorf("Visible() len = %d, want 2", got)
	}
	if v.State() != StateReady {
		t.Errorf("State() = %v, want ready", v.State())
	}
	if !v.LoadMoreArmed() {
		t.Error("LoadMoreArmed() = false, want true after hasMore page")
	}

	issued, err := v.LoadMore(context.Background())
	if err != nil {
		t.Fatalf("LoadMore() error = %v", err)
	}
	if !issued {
		t.Fatal("LoadMore() issued = false, want true")
	}

	items := v.Items()
	if len(items) != 3 {
		t.Fatalf("Items() len = %d, want 3", len(items))
	}
	// Earlier items must keep their position after a load-more
	if items[0].id != "h1" || items[1].id != "h2" || items[2].id != "h3" {
		t.Errorf("Items() order = %v, want h1,h2,h3", []string{items[0].id, items[1].id, items[2].id})
	}
	if v.LoadMoreArmed() {
		t.Error("LoadMoreArmed() = true, want false after final page")
	}

	// Exhausted list: further load-more calls must not hit the network
	before := script.callCount()
	issued, err = v.LoadMore(context.Background())
	if issued || err != nil {
		t.Errorf("LoadMore() after exhaustion = (%v, %v), want (false, nil)", issued, err)
	}
	if script.callCount() != before {
		t.Errorf("fetch calls = %d, want %d (no fetch after hasMore=false)", script.callCount(), before)
	}
}

func TestFilterSubsetAndIdempotent(t *testing.T) {
	script := lagosPages()
	v := newTestView(t, script.fetch)
	if err := v.Submit(context.Background(), "Lagos,NG"); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	tests := []struct {
		name    string
		term    string
		wantIDs []string
	}{
		{"empty term returns master list", "", []string{"h1", "h2"}},
		{"whitespace-only term returns master list", "   ", []string{"h1", "h2"}},
		{"matches description", "beach", []string{"h2"}},
		{"case insensitive", "EKO", []string{"h1"}},
		{"matches address", "lagos", []string{"h1", "h2"}},
		{"no match", "zanzibar", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v.SetFilter(tt.term)
			first := v.Visible()
			// Idempotent: applying the same term again changes nothing
			v.SetFilter(tt.term)
			second := v.Visible()

			if len(first) != len(tt.wantIDs) || len(second) != len(tt.wantIDs) {
				t.Fatalf("Visible() len = %d/%d, want %d", len(first), len(second), len(tt.wantIDs))
			}
			master := v.Items()
			for i, want := range tt.wantIDs {
				if first[i].id != want || second[i].id != want {
					t.Errorf("Visible()[%d] = %s/%s, want %s", i, first[i].id, second[i].id, want)
				}
				// Subset: every visible item must exist in the master list
				found := false
				for _, m := range master {
					if m.id == want {
						found = true
					}
				}
				if !found {
					t.Errorf("visible item %s not in master list", want)
				}
			}
		})
	}
}

func TestFilterNeverTouchesNetwork(t *testing.T) {
	script := lagosPages()
	v := newTestView(t, script.fetch)
	if err := v.Submit(context.Background(), "Lagos,NG"); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	before := script.callCount()
	v.SetFilter("beach")
	v.SetFilter("")
	v.SetFilter("hotel")
	if script.callCount() != before {
		t.Errorf("fetch calls = %d, want %d (filtering must not fetch)", script.callCount(), before)
	}
}

func TestFilterDisarmsLoadMore(t *testing.T) {
	script := lagosPages()
	v := newTestView(t, script.fetch)
	if err := v.Submit(context.Background(), "Lagos,NG"); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	v.SetFilter("beach")

	if got := v.Visible(); len(got) != 1 || got[0].id != "h2" {
		t.Fatalf("Visible() = %v, want [h2]", got)
	}
	if v.LoadMoreArmed() {
		t.Error("LoadMoreArmed() = true, want false while filter active")
	}

	// Load-more while filtered is an explicit no-op, even with hasMore=true
	issued, err := v.LoadMore(context.Background())
	if issued || err != nil {
		t.Errorf("LoadMore() while filtered = (%v, %v), want (false, nil)", issued, err)
	}

	// Clearing the term restores the full master list and re-arms the trigger
	v.SetFilter("")
	if got := len(v.Visible()); got != 2 {
		t.Errorf("Visible() len = %d, want 2 after clearing filter", got)
	}
	if !v.LoadMoreArmed() {
		t.Error("LoadMoreArmed() = false, want true after clearing filter with hasMore=true")
	}
}

func TestFirstPageApplicationError(t *testing.T) {
	wantMsg := "No hotels found"
	script := &scriptedFetch{errs: map[int]error{0: errors.New(wantMsg)}}
	v := newTestView(t, script.fetch)

	err := v.Submit(context.Background(), "Lagos,NG")
	if err == nil || err.Error() != wantMsg {
		t.Fatalf("Submit() error = %v, want %q", err, wantMsg)
	}
	if v.State() != StateError {
		t.Errorf("State() = %v, want error", v.State())
	}
	if got := len(v.Visible()); got != 0 {
		t.Errorf("Visible() len = %d, want 0", got)
	}
	if v.Err() == nil || v.Err().Error() != wantMsg {
		t.Errorf("Err() = %v, want %q", v.Err(), wantMsg)
	}
	// No automatic retry
	if script.callCount() != 1 {
		t.Errorf("fetch calls = %d, want 1", script.callCount())
	}
}

func TestEmptyFirstPageIsNoResults(t *testing.T) {
	script := &scriptedFetch{pages: map[int]Page[item]{0: {}}}
	v := newTestView(t, script.fetch)

	if err := v.Submit(context.Background(), "Lagos,NG"); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if v.State() != StateEmpty {
		t.Errorf("State() = %v, want empty", v.State())
	}
	if v.Err() != nil {
		t.Errorf("Err() = %v, want nil (empty first page is not an error)", v.Err())
	}
}

func TestEmptyLaterPageClearsHasMore(t *testing.T) {
	script := &scriptedFetch{
		pages: map[int]Page[item]{
			0: {Items: []item{{id: "h1", name: "Eko Suites"}}, HasMore: true},
			1: {}, // server over-promised; no more results
		},
	}
	v := newTestView(t, script.fetch)
	if err := v.Submit(context.Background(), "Lagos,NG"); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	issued, err := v.LoadMore(context.Background())
	if !issued || err != nil {
		t.Fatalf("LoadMore() = (%v, %v), want (true, nil)", issued, err)
	}
	if v.HasMore() {
		t.Error("HasMore() = true, want false after empty later page")
	}
	if v.State() != StateReady {
		t.Errorf("State() = %v, want ready (empty later page is not an error)", v.State())
	}
	if got := len(v.Items()); got != 1 {
		t.Errorf("Items() len = %d, want 1", got)
	}
}

func TestFailedLoadMoreIsRetryable(t *testing.T) {
	script := lagosPages()
	script.errs = map[int]error{1: errors.New("service unavailable")}
	v := newTestView(t, script.fetch)
	if err := v.Submit(context.Background(), "Lagos,NG"); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	issued, err := v.LoadMore(context.Background())
	if !issued || err == nil {
		t.Fatalf("LoadMore() = (%v, %v), want issued with error", issued, err)
	}
	if got := len(v.Items()); got != 2 {
		t.Errorf("Items() len = %d after failed load-more, want 2 (no partial mutation)", got)
	}

	// Retry must ask for the same page, not silently skip one
	delete(script.errs, 1)
	issued, err = v.LoadMore(context.Background())
	if !issued || err != nil {
		t.Fatalf("retry LoadMore() = (%v, %v), want (true, nil)", issued, err)
	}
	pages := script.calledPages()
	if pages[len(pages)-1] != 1 || pages[len(pages)-2] != 1 {
		t.Errorf("fetched pages = %v, want page 1 requested twice", pages)
	}
	if got := len(v.Items()); got != 3 {
		t.Errorf("Items() len = %d, want 3 after retry", got)
	}
}

func TestLoadMoreReentrancyGuard(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	var mu sync.Mutex
	pageOneCalls := 0

	fetch := func(_ context.Context, _ string, page int) (Page[item], error) {
		if page == 0 {
			return Page[item]{Items: []item{{id: "h1", name: "Eko Suites"}}, HasMore: true}, nil
		}
		mu.Lock()
		pageOneCalls++
		mu.Unlock()
		close(entered)
		<-release
		return Page[item]{Items: []item{{id: "h2", name: "Ikoyi Residence"}}}, nil
	}

	v := newTestView(t, fetch)
	if err := v.Submit(context.Background(), "Lagos,NG"); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	done := make(chan struct{})
	go func() {
		v.LoadMore(context.Background())
		close(done)
	}()
	<-entered

	// Second call while the first is still pending must be dropped silently
	issued, err := v.LoadMore(context.Background())
	if issued || err != nil {
		t.Errorf("concurrent LoadMore() = (%v, %v), want (false, nil)", issued, err)
	}

	close(release)
	<-done

	mu.Lock()
	defer mu.Unlock()
	if pageOneCalls != 1 {
		t.Errorf("page 1 fetched %d times, want exactly 1", pageOneCalls)
	}
}

func TestSubmitResetsSynchronously(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})

	fetch := func(_ context.Context, query string, page int) (Page[item], error) {
		if query == "slow" {
			close(entered)
			<-release
		}
		return Page[item]{Items: []item{{id: query, name: query}}}, nil
	}

	v := newTestView(t, fetch)
	if err := v.Submit(context.Background(), "first"); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if got := len(v.Items()); got != 1 {
		t.Fatalf("Items() len = %d, want 1", got)
	}

	done := make(chan struct{})
	go func() {
		v.Submit(context.Background(), "slow")
		close(done)
	}()
	<-entered

	// The old master list must already be gone while the fetch is pending
	if got := len(v.Items()); got != 0 {
		t.Errorf("Items() len = %d during new query fetch, want 0", got)
	}
	if v.State() != StateLoading {
		t.Errorf("State() = %v, want loading", v.State())
	}

	close(release)
	<-done
}

func TestStaleResponseDiscarded(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})

	fetch := func(_ context.Context, query string, page int) (Page[item], error) {
		if query == "abandoned" {
			close(entered)
			<-release
			return Page[item]{Items: []item{{id: "stale", name: "Stale Hotel"}}}, nil
		}
		return Page[item]{Items: []item{{id: "fresh", name: "Fresh Hotel"}}}, nil
	}

	v := newTestView(t, fetch)

	done := make(chan struct{})
	go func() {
		v.Submit(context.Background(), "abandoned")
		close(done)
	}()
	<-entered

	// New query lands while the abandoned one is still in flight
	if err := v.Submit(context.Background(), "current"); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	close(release)
	<-done

	items := v.Items()
	if len(items) != 1 || items[0].id != "fresh" {
		t.Errorf("Items() = %v, want only the fresh result (stale response must be discarded)", items)
	}
	if v.State() != StateReady {
		t.Errorf("State() = %v, want ready", v.State())
	}
}

func TestOverlappingPagesDeduplicated(t *testing.T) {
	script := &scriptedFetch{
		pages: map[int]Page[item]{
			0: {Items: []item{{id: "h1"}, {id: "h2"}}, HasMore: true},
			// Offset drift on the server: page 1 repeats h2
			1: {Items: []item{{id: "h2"}, {id: "h3"}}, HasMore: false},
		},
	}
	v := newTestView(t, script.fetch)
	if err := v.Submit(context.Background(), "Lagos,NG"); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if _, err := v.LoadMore(context.Background()); err != nil {
		t.Fatalf("LoadMore() error = %v", err)
	}

	items := v.Items()
	if len(items) != 3 {
		t.Fatalf("Items() len = %d, want 3 (duplicate dropped)", len(items))
	}
	if items[0].id != "h1" || items[1].id != "h2" || items[2].id != "h3" {
		t.Errorf("Items() = %v, want h1,h2,h3", []string{items[0].id, items[1].id, items[2].id})
	}
}

func TestTryLoadMoreDebounce(t *testing.T) {
	script := &scriptedFetch{
		pages: map[int]Page[item]{
			0: {Items: []item{{id: "h1"}}, HasMore: true},
			1: {Items: []item{{id: "h2"}}, HasMore: true},
			2: {Items: []item{{id: "h3"}}, HasMore: true},
		},
	}
	v, err := New(Config[string, item]{
		Fetch:    script.fetch,
		Fields:   itemFields,
		Key:      itemKey,
		Debounce: time.Hour,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := v.Submit(context.Background(), "Lagos,NG"); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	issued, err := v.TryLoadMore(context.Background())
	if !issued || err != nil {
		t.Fatalf("first TryLoadMore() = (%v, %v), want (true, nil)", issued, err)
	}
	issued, err = v.TryLoadMore(context.Background())
	if issued || err != nil {
		t.Errorf("second TryLoadMore() = (%v, %v), want dropped by debounce", issued, err)
	}
	if got := len(v.Items()); got != 2 {
		t.Errorf("Items() len = %d, want 2", got)
	}
}
