// Package store keeps the development backend's records in memory.
package store

import (
	"errors"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/backoffice/internal/client/models"
)

var ErrNotFound = errors.New("not found")

const (
	DefaultPerPage = 10
	MaxPerPage     = 100
)

// Accessor tells a Collection where a record keeps its id and timestamps,
// and which fields search looks at.
type Accessor[T any] struct {
	ID     func(*T) *int64
	Audit  func(*T) *models.Audit
	Search func(*T) []string
}

// Page is one slice of a listing, in the backend's pagination shape.
type Page[T any] struct {
	Data        []T `json:"data"`
	CurrentPage int `json:"current_page"`
	LastPage    int `json:"last_page"`
	PerPage     int `json:"per_page"`
	Total       int `json:"total"`
}

// Collection is a concurrency-safe list of records, newest first.
type Collection[T any] struct {
	mu     sync.RWMutex
	items  []T
	nextID int64
	acc    Accessor[T]
	now    func() time.Time
}

func NewCollection[T any](acc Accessor[T]) *Collection[T] {
	return &Collection[T]{acc: acc, nextID: 1, now: time.Now}
}

// Insert assigns an id and timestamps to v and stores it.
func (c *Collection[T]) Insert(v T) T {
	c.mu.Lock()
	defer c.mu.Unlock()

	*c.acc.ID(&v) = c.nextID
	c.nextID++
	ts := c.now().UTC()
	a := c.acc.Audit(&v)
	if a.CreatedAt.IsZero() {
		a.CreatedAt = ts
	}
	a.UpdatedAt = ts

	c.items = append([]T{v}, c.items...)
	return v
}

func (c *Collection[T]) Get(id int64) (T, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	i := c.indexLocked(id)
	if i < 0 {
		var zero T
		return zero, ErrNotFound
	}
	return c.items[i], nil
}

// Update applies fn to the stored record. fn may return an error to abort.
func (c *Collection[T]) Update(id int64, fn func(*T) error) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	i := c.indexLocked(id)
	if i < 0 {
		return zero, ErrNotFound
	}
	v := c.items[i]
	if err := fn(&v); err != nil {
		return zero, err
	}
	*c.acc.ID(&v) = id
	c.acc.Audit(&v).UpdatedAt = c.now().UTC()
	c.items[i] = v
	return v, nil
}

func (c *Collection[T]) Delete(id int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexLocked(id)
	if i < 0 {
		return ErrNotFound
	}
	c.items = slices.Delete(c.items, i, i+1)
	return nil
}

func (c *Collection[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// All returns a copy of every record, optionally filtered.
func (c *Collection[T]) All(keep func(T) bool) []T {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]T, 0, len(c.items))
	for _, v := range c.items {
		if keep == nil || keep(v) {
			out = append(out, v)
		}
	}
	return out
}

// List filters by search (case-insensitive substring over the accessor's
// search fields) and returns the requested page. Pages past the end are
// empty, not an error.
func (c *Collection[T]) List(page, perPage int, search string) Page[T] {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	perPage = min(perPage, MaxPerPage)

	needle := strings.ToLower(strings.TrimSpace(search))
	matched := c.All(func(v T) bool {
		if needle == "" || c.acc.Search == nil {
			return true
		}
		for _, f := range c.acc.Search(&v) {
			if strings.Contains(strings.ToLower(f), needle) {
				return true
			}
		}
		return false
	})

	last := max((len(matched)+perPage-1)/perPage, 1)
	from := min((page-1)*perPage, len(matched))
	to := min(from+perPage, len(matched))

	return Page[T]{
		Data:        matched[from:to],
		CurrentPage: page,
		LastPage:    last,
		PerPage:     perPage,
		Total:       len(matched),
	}
}

func (c *Collection[T]) indexLocked(id int64) int {
	return slices.IndexFunc(c.items, func(v T) bool { return *c.acc.ID(&v) == id })
}
