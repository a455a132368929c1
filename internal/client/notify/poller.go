// Package notify keeps the notification list fresh by polling the backend
// and raises a one-time alert when a new unread notification shows up.
package notify

import (
	"context"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/dmitrijs2005/backoffice/internal/client/models"
	"github.com/dmitrijs2005/backoffice/internal/client/ui"
	"github.com/dmitrijs2005/backoffice/internal/logging"
)

const DefaultInterval = 10 * time.Second

// Source is the notifications endpoint; *api.Notifications implements it.
type Source interface {
	List(ctx context.Context) ([]models.Notification, error)
	MarkRead(ctx context.Context, id int64) error
}

type Poller struct {
	src      Source
	alerter  ui.Alerter
	logger   logging.Logger
	interval time.Duration

	sf singleflight.Group

	mu       sync.RWMutex
	items    []models.Notification
	lastSeen mark
	seeded   bool
	gen      uint64 // bumped by Reset; fetches of an older gen are dropped
}

type Option func(*Poller)

func WithInterval(d time.Duration) Option { return func(p *Poller) { p.interval = d } }

func WithAlerter(a ui.Alerter) Option { return func(p *Poller) { p.alerter = a } }

func WithLogger(l logging.Logger) Option { return func(p *Poller) { p.logger = l } }

func New(src Source, opts ...Option) *Poller {
	p := &Poller{src: src, interval: DefaultInterval, logger: logging.Nop()}
	for _, opt := range opts {
		opt(p)
	}
	if p.interval <= 0 {
		p.interval = DefaultInterval
	}
	return p
}

// Run fetches at once and then on every tick until ctx is done. A failed
// fetch is logged and the cycle skipped.
func (p *Poller) Run(ctx context.Context) {
	_ = p.Refresh(ctx)

	t := time.NewTicker(p.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			_ = p.Refresh(ctx)
		}
	}
}

// Refresh fetches now. Calls that overlap an in-flight fetch share its
// result.
func (p *Poller) Refresh(ctx context.Context) error {
	_, err, _ := p.sf.Do("list", func() (any, error) {
		return nil, p.fetch(ctx)
	})
	return err
}

func (p *Poller) fetch(ctx context.Context) error {
	p.mu.RLock()
	gen := p.gen
	p.mu.RUnlock()

	items, err := p.src.List(ctx)
	if err != nil {
		p.logger.Warn(ctx, "notification poll failed", "error", err)
		return err
	}

	newest, hasUnread := latestUnread(items)

	p.mu.Lock()
	if gen != p.gen {
		p.mu.Unlock()
		return nil
	}
	p.items = items
	var alert *models.Notification
	if hasUnread && markOf(newest).after(p.lastSeen) {
		// The first fetch only establishes what has been seen.
		if p.seeded {
			alert = &newest
		}
		p.lastSeen = markOf(newest)
	}
	p.seeded = true
	p.mu.Unlock()

	if alert != nil {
		p.logger.Info(ctx, "new notification", "id", alert.ID)
		if p.alerter != nil {
			p.alerter.Alert(*alert)
		}
	}
	return nil
}

// mark is the position of a notification in time; equal timestamps are
// ordered by ID.
type mark struct {
	at time.Time
	id int64
}

func markOf(n models.Notification) mark { return mark{at: n.CreatedAt, id: n.ID} }

func (m mark) after(o mark) bool {
	return m.at.After(o.at) || (m.at.Equal(o.at) && m.id > o.id)
}

// latestUnread picks the unread notification with the newest CreatedAt;
// equal timestamps are broken by the larger ID.
func latestUnread(items []models.Notification) (models.Notification, bool) {
	var (
		best  models.Notification
		found bool
	)
	for _, n := range items {
		if n.IsRead {
			continue
		}
		if !found || markOf(n).after(markOf(best)) {
			best, found = n, true
		}
	}
	return best, found
}

// MarkRead marks one notification and then refetches the whole list.
func (p *Poller) MarkRead(ctx context.Context, id int64) error {
	if err := p.src.MarkRead(ctx, id); err != nil {
		p.logger.Warn(ctx, "marking notification read failed", "id", id, "error", err)
		return err
	}
	// A poll started before the mark must not be reused.
	p.sf.Forget("list")
	return p.Refresh(ctx)
}

// Reset forgets the fetched list and what has been seen, so the next fetch
// seeds again. Used when the session changes hands.
func (p *Poller) Reset() {
	p.sf.Forget("list")
	p.mu.Lock()
	p.items = nil
	p.lastSeen = mark{}
	p.seeded = false
	p.gen++
	p.mu.Unlock()
}

func (p *Poller) Items() []models.Notification {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]models.Notification(nil), p.items...)
}

// Unread is derived from the last fetched list.
func (p *Poller) Unread() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	n := 0
	for _, it := range p.items {
		if !it.IsRead {
			n++
		}
	}
	return n
}

// Badge is the unread count as shown next to the bell; empty when zero.
func (p *Poller) Badge() string {
	switch n := p.Unread(); {
	case n == 0:
		return ""
	case n > 99:
		return "99+"
	default:
		return strconv.Itoa(n)
	}
}
