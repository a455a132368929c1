package list

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/backoffice/internal/logging"
)

const (
	DefaultDebounce = 500 * time.Millisecond
	DefaultPageSize = 10
)

type options struct {
	debounce time.Duration
	timeout  time.Duration
	pageSize int
	token    func() string
	logger   logging.Logger
	name     string
}

type Option func(*options)

// WithDebounce sets the quiet period SetSearch waits for.
func WithDebounce(d time.Duration) Option { return func(o *options) { o.debounce = d } }

// WithTimeout bounds every fetch; zero means no limit.
func WithTimeout(d time.Duration) Option { return func(o *options) { o.timeout = d } }

func WithPageSize(n int) Option { return func(o *options) { o.pageSize = n } }

// WithTokenSource supplies the bearer token passed to the fetcher.
func WithTokenSource(fn func() string) Option { return func(o *options) { o.token = fn } }

func WithLogger(l logging.Logger) Option { return func(o *options) { o.logger = l } }

// WithName labels log lines, usually with the resource name.
func WithName(name string) Option { return func(o *options) { o.name = name } }

// Controller holds the query and the last result of one resource list.
// It is safe for concurrent use.
type Controller[T any] struct {
	fetch Fetcher[T]
	opts  options

	mu        sync.Mutex
	base      context.Context
	query     Query
	state     Snapshot[T]
	seq       uint64
	cancel    context.CancelFunc
	timer     *time.Timer
	searchGen uint64
	pending   *string
	observers []func(Snapshot[T])
	detach    []func()
	closed    bool
	version   uint64

	// notifyMu orders deliveries; a snapshot older than the last one
	// delivered is skipped.
	notifyMu  sync.Mutex
	delivered uint64

	inflight sync.WaitGroup
}

func New[T any](fetch Fetcher[T], opts ...Option) *Controller[T] {
	o := options{debounce: DefaultDebounce, pageSize: DefaultPageSize}
	for _, opt := range opts {
		opt(&o)
	}
	if o.pageSize <= 0 {
		o.pageSize = DefaultPageSize
	}
	if o.logger == nil {
		o.logger = logging.Nop()
	}
	if o.name != "" {
		o.logger = o.logger.With("list", o.name)
	}

	c := &Controller[T]{fetch: fetch, opts: o}
	c.query = Query{Page: 1, PageSize: o.pageSize}
	c.state.Query = c.query
	return c
}

// OnChange registers fn to be called with every new snapshot.
func (c *Controller[T]) OnChange(fn func(Snapshot[T])) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.observers = append(c.observers, fn)
}

// Snapshot returns the current state.
func (c *Controller[T]) Snapshot() Snapshot[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Load fetches page 1. ctx is the parent of every later fetch of this
// controller; cancelling it stops them.
func (c *Controller[T]) Load(ctx context.Context) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.base = ctx
	c.query.Page = 1
	ch := c.startLocked()
	c.mu.Unlock()

	c.deliver(ch)
}

// SetSearch schedules a search. Only the last term given within the
// debounce window is fetched.
func (c *Controller[T]) SetSearch(term string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}

	c.pending = &term
	c.searchGen++
	gen := c.searchGen
	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = time.AfterFunc(c.opts.debounce, func() { c.fireSearch(gen) })
}

// Flush applies a pending search now instead of waiting for the window.
func (c *Controller[T]) Flush() {
	c.mu.Lock()
	if c.timer != nil {
		c.timer.Stop()
	}
	c.searchGen++
	ch, ok := c.applySearchLocked()
	c.mu.Unlock()

	if ok {
		c.deliver(ch)
	}
}

func (c *Controller[T]) fireSearch(gen uint64) {
	c.mu.Lock()
	if gen != c.searchGen {
		c.mu.Unlock()
		return
	}
	ch, ok := c.applySearchLocked()
	c.mu.Unlock()

	if ok {
		c.deliver(ch)
	}
}

func (c *Controller[T]) applySearchLocked() (change[T], bool) {
	if c.closed || c.pending == nil {
		return change[T]{}, false
	}
	term := *c.pending
	c.pending = nil
	c.timer = nil

	if term == c.query.Search {
		return change[T]{}, false
	}
	c.query.Search = term
	c.query.Page = 1
	return c.startLocked(), true
}

// SetPage fetches page immediately. It returns ErrPageOutOfRange, and
// changes nothing, when page is outside [1, LastPage].
func (c *Controller[T]) SetPage(page int) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	last := c.state.Meta.LastPage
	if last < 1 {
		last = 1
	}
	if page < 1 || page > last {
		c.mu.Unlock()
		return fmt.Errorf("%w: %d not in [1, %d]", ErrPageOutOfRange, page, last)
	}
	c.query.Page = page
	ch := c.startLocked()
	c.mu.Unlock()

	c.deliver(ch)
	return nil
}

func (c *Controller[T]) Next() error {
	return c.SetPage(c.currentPage() + 1)
}

func (c *Controller[T]) Prev() error {
	return c.SetPage(c.currentPage() - 1)
}

func (c *Controller[T]) currentPage() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.Meta.CurrentPage > 0 {
		return c.state.Meta.CurrentPage
	}
	return c.query.Page
}

// Refresh refetches the current query.
func (c *Controller[T]) Refresh() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	ch := c.startLocked()
	c.mu.Unlock()

	c.deliver(ch)
}

// Attach makes the controller refetch whenever resource is published on bus.
func (c *Controller[T]) Attach(bus *Bus, resource string) {
	unsubscribe := bus.Subscribe(resource, c.Refresh)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.detach = append(c.detach, unsubscribe)
}

// Wait blocks until no fetch is in flight. A search still inside its
// debounce window is not waited for; call Flush first.
func (c *Controller[T]) Wait() {
	c.inflight.Wait()
}

// Close cancels pending work and detaches the controller from any bus.
func (c *Controller[T]) Close() {
	c.mu.Lock()
	c.closed = true
	c.seq++
	if c.timer != nil {
		c.timer.Stop()
	}
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	detach := c.detach
	c.detach = nil
	c.mu.Unlock()

	for _, fn := range detach {
		fn()
	}
	c.inflight.Wait()
}

func (c *Controller[T]) startLocked() change[T] {
	if c.cancel != nil {
		c.cancel()
	}
	c.seq++
	seq := c.seq
	q := c.query

	parent := c.base
	if parent == nil {
		parent = context.Background()
	}
	var (
		ctx    context.Context
		cancel context.CancelFunc
	)
	if c.opts.timeout > 0 {
		ctx, cancel = context.WithTimeout(parent, c.opts.timeout)
	} else {
		ctx, cancel = context.WithCancel(parent)
	}
	c.cancel = cancel

	token := ""
	if c.opts.token != nil {
		token = c.opts.token()
	}

	c.state.Loading = true
	c.state.Query = q

	c.inflight.Add(1)
	go c.run(ctx, cancel, seq, token, q)

	return c.changeLocked()
}

func (c *Controller[T]) run(ctx context.Context, cancel context.CancelFunc, seq uint64, token string, q Query) {
	defer c.inflight.Done()
	defer cancel()

	res, err := c.fetch(ctx, token, q)

	c.mu.Lock()
	if seq != c.seq {
		c.mu.Unlock()
		c.opts.logger.Debug(ctx, "stale list response dropped", "page", q.Page, "search", q.Search)
		return
	}
	c.cancel = nil
	if err == nil && pastLastPage(res.Meta(), q) {
		// The page shrank away under us, typically after a delete on the
		// last page. Fetch the new last page instead.
		c.query.Page = res.LastPage
		ch := c.startLocked()
		c.mu.Unlock()

		c.opts.logger.Debug(ctx, "page past the end, refetching", "page", q.Page, "last_page", res.LastPage)
		c.deliver(ch)
		return
	}
	c.state.Loading = false
	if err != nil {
		c.state.Items = nil
		c.state.Err = err
		c.opts.logger.Warn(ctx, "list fetch failed", "page", q.Page, "search", q.Search, "error", err)
	} else {
		c.state.Items = res.Items
		c.state.Err = nil
		c.state.Meta = normalize(res.Meta(), q)
	}
	ch := c.changeLocked()
	c.mu.Unlock()

	c.deliver(ch)
}

type change[T any] struct {
	version uint64
	snap    Snapshot[T]
	obs     []func(Snapshot[T])
}

func (c *Controller[T]) changeLocked() change[T] {
	c.version++
	return change[T]{
		version: c.version,
		snap:    c.state,
		obs:     append([]func(Snapshot[T]){}, c.observers...),
	}
}

// deliver runs outside c.mu so observers may call back into the controller.
func (c *Controller[T]) deliver(ch change[T]) {
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()
	if ch.version <= c.delivered {
		return
	}
	c.delivered = ch.version
	for _, fn := range ch.obs {
		fn(ch.snap)
	}
}

// pastLastPage reports whether the backend answered for a page beyond the
// last one it has.
func pastLastPage(m Meta, q Query) bool {
	current := m.CurrentPage
	if current < 1 {
		current = q.Page
	}
	return m.LastPage >= 1 && current > m.LastPage
}

// normalize repairs metadata from backends that omit fields. A reported
// LastPage is kept as is.
func normalize(m Meta, q Query) Meta {
	if m.CurrentPage < 1 {
		m.CurrentPage = q.Page
	}
	if m.LastPage < 1 {
		m.LastPage = max(1, m.CurrentPage)
	}
	if m.PerPage < 1 {
		m.PerPage = q.PageSize
	}
	return m
}
