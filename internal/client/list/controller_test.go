package list

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBackend serves pages of a fixed collection and records every query.
type fakeBackend struct {
	mu      sync.Mutex
	items   []string
	calls   []Query
	tokens  []string
	err     error
	onFetch func(ctx context.Context, q Query) error
}

func newFakeBackend(n int) *fakeBackend {
	items := make([]string, n)
	for i := range items {
		items[i] = fmt.Sprintf("item-%02d", i+1)
	}
	return &fakeBackend{items: items}
}

func (f *fakeBackend) fetch(ctx context.Context, token string, q Query) (Result[string], error) {
	f.mu.Lock()
	f.calls = append(f.calls, q)
	f.tokens = append(f.tokens, token)
	hook, failure := f.onFetch, f.err
	f.mu.Unlock()

	if hook != nil {
		if err := hook(ctx, q); err != nil {
			return Result[string]{}, err
		}
	}
	if failure != nil {
		return Result[string]{}, failure
	}

	var matched []string
	for _, it := range f.items {
		if strings.Contains(it, q.Search) {
			matched = append(matched, it)
		}
	}
	last := (len(matched) + q.PageSize - 1) / q.PageSize
	if last < 1 {
		last = 1
	}
	from := (q.Page - 1) * q.PageSize
	to := min(from+q.PageSize, len(matched))
	var page []string
	if from < to {
		page = matched[from:to]
	}
	return Result[string]{Items: page, CurrentPage: q.Page, LastPage: last, Total: len(matched), PerPage: q.PageSize}, nil
}

func (f *fakeBackend) queries() []Query {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Query(nil), f.calls...)
}

func TestLoad_FetchesFirstPage(t *testing.T) {
	be := newFakeBackend(25)
	c := New(be.fetch, WithTokenSource(func() string { return "tok" }))
	defer c.Close()

	c.Load(context.Background())
	c.Wait()

	s := c.Snapshot()
	assert.False(t, s.Loading)
	assert.NoError(t, s.Err)
	assert.Len(t, s.Items, 10)
	assert.Equal(t, Meta{CurrentPage: 1, LastPage: 3, Total: 25, PerPage: 10}, s.Meta)
	assert.Equal(t, []string{"tok"}, be.tokens)
}

func TestSetPage_SecondPageOfTwentyFive(t *testing.T) {
	be := newFakeBackend(25)
	c := New(be.fetch)
	defer c.Close()

	c.Load(context.Background())
	c.Wait()
	require.NoError(t, c.SetPage(2))
	c.Wait()

	s := c.Snapshot()
	assert.Len(t, s.Items, 10)
	assert.Equal(t, 2, s.Meta.CurrentPage)
	assert.Equal(t, 3, s.Meta.LastPage)
	assert.Equal(t, "item-11", s.Items[0])
}

func TestSetPage_OutOfRange_NoFetchNoChange(t *testing.T) {
	be := newFakeBackend(25)
	c := New(be.fetch)
	defer c.Close()

	c.Load(context.Background())
	c.Wait()
	before := c.Snapshot()

	for _, p := range []int{0, -1, 4, 100} {
		err := c.SetPage(p)
		require.ErrorIs(t, err, ErrPageOutOfRange, "page %d", p)
	}
	c.Wait()

	assert.Len(t, be.queries(), 1)
	assert.Equal(t, before, c.Snapshot())
}

func TestNextPrev(t *testing.T) {
	be := newFakeBackend(25)
	c := New(be.fetch)
	defer c.Close()

	c.Load(context.Background())
	c.Wait()

	require.ErrorIs(t, c.Prev(), ErrPageOutOfRange)
	require.NoError(t, c.Next())
	c.Wait()
	require.NoError(t, c.Next())
	c.Wait()
	require.ErrorIs(t, c.Next(), ErrPageOutOfRange)
	assert.Equal(t, 3, c.Snapshot().Meta.CurrentPage)
	assert.Len(t, c.Snapshot().Items, 5)
}

func TestSetSearch_DebouncesToOneFetch(t *testing.T) {
	be := newFakeBackend(25)
	c := New(be.fetch, WithDebounce(50*time.Millisecond))
	defer c.Close()

	c.Load(context.Background())
	c.Wait()

	// "eng" typed over ~30ms, well inside the window.
	for _, term := range []string{"e", "en", "eng"} {
		c.SetSearch(term)
		time.Sleep(10 * time.Millisecond)
	}
	assert.Len(t, be.queries(), 1, "keystrokes inside the window must not fetch")

	require.Eventually(t, func() bool { return len(be.queries()) == 2 }, time.Second, 5*time.Millisecond)
	time.Sleep(120 * time.Millisecond)
	c.Wait()

	qs := be.queries()
	require.Len(t, qs, 2)
	assert.Equal(t, "eng", qs[1].Search)
	assert.Equal(t, 1, qs[1].Page)
}

func TestSetSearch_ResetsPageToOne(t *testing.T) {
	be := newFakeBackend(25)
	c := New(be.fetch, WithDebounce(10*time.Millisecond))
	defer c.Close()

	c.Load(context.Background())
	c.Wait()
	require.NoError(t, c.SetPage(3))
	c.Wait()

	c.SetSearch("item-1")
	require.Eventually(t, func() bool { return len(be.queries()) == 3 }, time.Second, 5*time.Millisecond)
	c.Wait()

	s := c.Snapshot()
	assert.Equal(t, 1, s.Meta.CurrentPage)
	assert.Equal(t, "item-1", s.Query.Search)
	assert.Equal(t, 10, s.Meta.Total)
}

func TestSetSearch_SameTermDoesNotRefetch(t *testing.T) {
	be := newFakeBackend(5)
	c := New(be.fetch, WithDebounce(time.Hour))
	defer c.Close()

	c.Load(context.Background())
	c.Wait()

	c.SetSearch("x")
	c.SetSearch("")
	c.Flush()
	c.Wait()

	assert.Len(t, be.queries(), 1)
}

func TestFlush_AppliesPendingSearchImmediately(t *testing.T) {
	be := newFakeBackend(5)
	c := New(be.fetch, WithDebounce(time.Hour))
	defer c.Close()

	c.Load(context.Background())
	c.Wait()
	c.SetSearch("item-03")
	c.Flush()
	c.Wait()

	s := c.Snapshot()
	assert.Equal(t, []string{"item-03"}, s.Items)
	assert.Len(t, be.queries(), 2)
}

func TestStaleResponseIsDiscarded(t *testing.T) {
	be := newFakeBackend(25)
	release := make(chan struct{})
	started := make(chan struct{}, 1)
	be.onFetch = func(ctx context.Context, q Query) error {
		if q.Page == 2 {
			started <- struct{}{}
			<-release // ignores ctx
		}
		return nil
	}
	c := New(be.fetch)
	defer c.Close()

	c.Load(context.Background())
	c.Wait()

	require.NoError(t, c.SetPage(2))
	<-started
	require.NoError(t, c.SetPage(3))
	require.Eventually(t, func() bool {
		s := c.Snapshot()
		return !s.Loading && s.Meta.CurrentPage == 3
	}, time.Second, 5*time.Millisecond)

	close(release)
	c.Wait()

	s := c.Snapshot()
	assert.Equal(t, 3, s.Meta.CurrentPage)
	assert.Equal(t, "item-21", s.Items[0])
}

func TestNewFetchCancelsPrevious(t *testing.T) {
	be := newFakeBackend(25)
	cancelled := make(chan error, 1)
	be.onFetch = func(ctx context.Context, q Query) error {
		if q.Page == 2 {
			<-ctx.Done()
			cancelled <- ctx.Err()
			return ctx.Err()
		}
		return nil
	}
	c := New(be.fetch)
	defer c.Close()

	c.Load(context.Background())
	c.Wait()
	require.NoError(t, c.SetPage(2))
	require.NoError(t, c.SetPage(3))
	c.Wait()

	assert.ErrorIs(t, <-cancelled, context.Canceled)
	assert.NoError(t, c.Snapshot().Err)
}

func TestFailedFetch_ClearsItemsAndSetsError(t *testing.T) {
	be := newFakeBackend(25)
	c := New(be.fetch)
	defer c.Close()

	c.Load(context.Background())
	c.Wait()
	require.NotEmpty(t, c.Snapshot().Items)

	be.mu.Lock()
	be.err = errors.New("backend down")
	be.mu.Unlock()
	c.Refresh()
	c.Wait()

	s := c.Snapshot()
	assert.Empty(t, s.Items)
	assert.EqualError(t, s.Err, "backend down")
	assert.False(t, s.Loading)
}

func TestTimeout_SetsDeadlineError(t *testing.T) {
	be := newFakeBackend(3)
	be.onFetch = func(ctx context.Context, q Query) error {
		<-ctx.Done()
		return ctx.Err()
	}
	c := New(be.fetch, WithTimeout(20*time.Millisecond))
	defer c.Close()

	c.Load(context.Background())
	c.Wait()

	assert.ErrorIs(t, c.Snapshot().Err, context.DeadlineExceeded)
	assert.False(t, c.Snapshot().Loading)
}

func TestOnChange_SeesLoadingThenResult(t *testing.T) {
	be := newFakeBackend(3)
	gate := make(chan struct{})
	be.onFetch = func(ctx context.Context, q Query) error {
		<-gate
		return nil
	}
	c := New(be.fetch)
	defer c.Close()

	var mu sync.Mutex
	var seen []bool
	c.OnChange(func(s Snapshot[string]) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, s.Loading)
		if s.Loading {
			close(gate)
		}
	})

	c.Load(context.Background())
	c.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []bool{true, false}, seen)
}

func TestAttach_PublishRefetches(t *testing.T) {
	be := newFakeBackend(3)
	bus := NewBus()
	c := New(be.fetch)
	c.Attach(bus, "staff")

	c.Load(context.Background())
	c.Wait()

	bus.Publish("brands")
	c.Wait()
	assert.Len(t, be.queries(), 1)

	bus.Publish("staff")
	c.Wait()
	assert.Len(t, be.queries(), 2)

	c.Close()
	bus.Publish("staff")
	assert.Len(t, be.queries(), 2, "closed controller is detached")
}

func TestClose_StopsPendingSearch(t *testing.T) {
	be := newFakeBackend(3)
	c := New(be.fetch, WithDebounce(10*time.Millisecond))

	c.Load(context.Background())
	c.Wait()
	c.SetSearch("item")
	c.Close()

	time.Sleep(50 * time.Millisecond)
	assert.Len(t, be.queries(), 1)
}

func TestNormalize(t *testing.T) {
	q := Query{Page: 2, PageSize: 15}
	assert.Equal(t, Meta{CurrentPage: 2, LastPage: 2, PerPage: 15}, normalize(Meta{}, q))
	assert.Equal(t, Meta{CurrentPage: 1, LastPage: 4, PerPage: 10, Total: 40},
		normalize(Meta{CurrentPage: 1, LastPage: 4, PerPage: 10, Total: 40}, q))
}

func TestPastLastPage(t *testing.T) {
	q := Query{Page: 3, PageSize: 10}
	assert.True(t, pastLastPage(Meta{CurrentPage: 3, LastPage: 2}, q))
	assert.True(t, pastLastPage(Meta{LastPage: 2}, q))
	assert.False(t, pastLastPage(Meta{CurrentPage: 3, LastPage: 3}, q))
	assert.False(t, pastLastPage(Meta{CurrentPage: 3}, q), "a missing last page is not trusted")
}

func TestRefresh_AfterLastPageEmptiedMovesToNewLastPage(t *testing.T) {
	be := newFakeBackend(21)
	c := New(be.fetch)
	defer c.Close()

	c.Load(context.Background())
	c.Wait()
	require.NoError(t, c.SetPage(3))
	c.Wait()
	require.Len(t, c.Snapshot().Items, 1)

	be.mu.Lock()
	be.items = be.items[:20]
	be.mu.Unlock()

	c.Refresh()
	c.Wait()

	s := c.Snapshot()
	assert.False(t, s.Loading)
	assert.NoError(t, s.Err)
	assert.Equal(t, Meta{CurrentPage: 2, LastPage: 2, Total: 20, PerPage: 10}, s.Meta)
	assert.Len(t, s.Items, 10)
	assert.Equal(t, "item-11", s.Items[0])
	assert.ErrorIs(t, c.SetPage(3), ErrPageOutOfRange)

	calls := be.queries()
	assert.Equal(t, []int{3, 2}, []int{calls[len(calls)-2].Page, calls[len(calls)-1].Page})
}

func TestMeta_HasPrevNext(t *testing.T) {
	m := Meta{CurrentPage: 1, LastPage: 2}
	assert.False(t, m.HasPrev())
	assert.True(t, m.HasNext())
	m.CurrentPage = 2
	assert.True(t, m.HasPrev())
	assert.False(t, m.HasNext())
}
