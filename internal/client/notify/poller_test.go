package notify

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/backoffice/internal/client/models"
)

type fakeSource struct {
	mu     sync.Mutex
	items  []models.Notification
	err    error
	calls  atomic.Int32
	marked []int64
	block  chan struct{}
}

func (f *fakeSource) List(ctx context.Context) ([]models.Notification, error) {
	f.calls.Add(1)
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Notification(nil), f.items...), f.err
}

func (f *fakeSource) MarkRead(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.marked = append(f.marked, id)
	for i := range f.items {
		if f.items[i].ID == id {
			f.items[i].IsRead = true
		}
	}
	return nil
}

func (f *fakeSource) set(items ...models.Notification) {
	f.mu.Lock()
	f.items = items
	f.mu.Unlock()
}

type recordingAlerter struct {
	mu  sync.Mutex
	got []int64
}

func (r *recordingAlerter) Alert(n models.Notification) {
	r.mu.Lock()
	r.got = append(r.got, n.ID)
	r.mu.Unlock()
}

func (r *recordingAlerter) ids() []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int64(nil), r.got...)
}

var t0 = time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

func note(id int64, minutes int, read bool) models.Notification {
	return models.Notification{ID: id, Title: "n", IsRead: read, Audit: models.Audit{CreatedAt: t0.Add(time.Duration(minutes) * time.Minute)}}
}

func TestPoller_NewNotificationScenario(t *testing.T) {
	src := &fakeSource{}
	src.set(note(1, 1, false), note(2, 2, false), note(3, 0, true))
	al := &recordingAlerter{}
	p := New(src, WithAlerter(al))
	ctx := context.Background()

	require.NoError(t, p.Refresh(ctx))
	assert.Equal(t, 2, p.Unread())
	assert.Empty(t, al.ids(), "the first fetch does not alert")

	src.set(note(4, 5, false), note(1, 1, false), note(2, 2, false), note(3, 0, true))
	require.NoError(t, p.Refresh(ctx))
	require.NoError(t, p.Refresh(ctx))

	assert.Equal(t, []int64{4}, al.ids(), "exactly one alert")
	assert.Equal(t, "3", p.Badge())
}

func TestPoller_OlderUnreadDoesNotAlert(t *testing.T) {
	src := &fakeSource{}
	src.set(note(2, 10, false))
	al := &recordingAlerter{}
	p := New(src, WithAlerter(al))

	require.NoError(t, p.Refresh(context.Background()))
	src.set(note(2, 10, false), note(5, 1, false))
	require.NoError(t, p.Refresh(context.Background()))

	assert.Empty(t, al.ids())
	assert.Equal(t, 2, p.Unread())
}

func TestPoller_AlertsAfterEmptyStart(t *testing.T) {
	src := &fakeSource{}
	al := &recordingAlerter{}
	p := New(src, WithAlerter(al))

	require.NoError(t, p.Refresh(context.Background()))
	src.set(note(1, 0, false))
	require.NoError(t, p.Refresh(context.Background()))

	assert.Equal(t, []int64{1}, al.ids())
}

func TestPoller_ErrorSkipsCycle(t *testing.T) {
	src := &fakeSource{}
	src.set(note(1, 0, false))
	p := New(src)
	require.NoError(t, p.Refresh(context.Background()))

	src.err = errors.New("boom")
	assert.Error(t, p.Refresh(context.Background()))
	assert.Equal(t, 1, p.Unread(), "last good list is kept")
}

func TestPoller_MarkReadRefetches(t *testing.T) {
	src := &fakeSource{}
	src.set(note(1, 0, false), note(2, 1, false))
	p := New(src)
	require.NoError(t, p.Refresh(context.Background()))
	before := src.calls.Load()

	require.NoError(t, p.MarkRead(context.Background(), 2))

	assert.Equal(t, []int64{2}, src.marked)
	assert.Equal(t, before+1, src.calls.Load())
	assert.Equal(t, 1, p.Unread())
}

func TestPoller_MarkReadOfNewestDoesNotAlertForOlder(t *testing.T) {
	src := &fakeSource{}
	src.set(note(1, 1, false), note(2, 2, false))
	al := &recordingAlerter{}
	p := New(src, WithAlerter(al))
	ctx := context.Background()

	require.NoError(t, p.Refresh(ctx))
	require.NoError(t, p.MarkRead(ctx, 2))
	assert.Empty(t, al.ids())
	assert.Equal(t, 1, p.Unread())

	src.set(note(1, 1, false), note(2, 2, true), note(3, 3, false))
	require.NoError(t, p.Refresh(ctx))
	assert.Equal(t, []int64{3}, al.ids(), "a genuinely newer one still alerts")
}

func TestPoller_ResetForgetsPreviousSession(t *testing.T) {
	src := &fakeSource{}
	src.set(note(7, 30, false))
	al := &recordingAlerter{}
	p := New(src, WithAlerter(al))
	ctx := context.Background()

	require.NoError(t, p.Refresh(ctx))
	p.Reset()
	assert.Zero(t, p.Unread())
	assert.Empty(t, p.Items())

	// Another user's list: the first fetch seeds again instead of alerting.
	src.set(note(1, 1, false))
	require.NoError(t, p.Refresh(ctx))
	assert.Empty(t, al.ids())

	src.set(note(1, 1, false), note(2, 2, false))
	require.NoError(t, p.Refresh(ctx))
	assert.Equal(t, []int64{2}, al.ids())
}

func TestPoller_MarkReadFailure(t *testing.T) {
	src := &fakeSource{err: errors.New("down")}
	p := New(src)
	assert.Error(t, p.MarkRead(context.Background(), 2))
	assert.Zero(t, src.calls.Load(), "no refetch after a failed mark")
}

func TestPoller_ConcurrentRefreshesCollapse(t *testing.T) {
	src := &fakeSource{block: make(chan struct{})}
	p := New(src)

	var wg sync.WaitGroup
	for range 5 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = p.Refresh(context.Background())
		}()
	}
	require.Eventually(t, func() bool { return src.calls.Load() >= 1 }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(src.block)
	wg.Wait()

	assert.Equal(t, int32(1), src.calls.Load())
}

func TestPoller_RunPollsUntilCancelled(t *testing.T) {
	src := &fakeSource{}
	p := New(src, WithInterval(5*time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return src.calls.Load() >= 3 }, time.Second, time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop")
	}

	n := src.calls.Load()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, n, src.calls.Load(), "no polls after stop")
}

func TestPoller_ItemsIsACopy(t *testing.T) {
	src := &fakeSource{}
	src.set(note(1, 0, false))
	p := New(src)
	require.NoError(t, p.Refresh(context.Background()))

	items := p.Items()
	require.Len(t, items, 1)
	items[0].IsRead = true
	assert.Equal(t, 1, p.Unread())
}

func TestBadge(t *testing.T) {
	src := &fakeSource{}
	p := New(src)
	require.NoError(t, p.Refresh(context.Background()))
	assert.Equal(t, "", p.Badge())

	var many []models.Notification
	for i := range 120 {
		many = append(many, note(int64(i+1), i, false))
	}
	src.set(many...)
	require.NoError(t, p.Refresh(context.Background()))
	assert.Equal(t, "99+", p.Badge())
}
