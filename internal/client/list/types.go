package list

import (
	"context"
	"errors"
)

var ErrPageOutOfRange = errors.New("page out of range")

// Query is what a controller asks the backend for.
type Query struct {
	Page     int
	PageSize int
	Search   string
}

// Meta is the pagination part of a Result.
type Meta struct {
	CurrentPage int
	LastPage    int
	Total       int
	PerPage     int
}

// HasPrev and HasNext drive the pager.
func (m Meta) HasPrev() bool { return m.CurrentPage > 1 }
func (m Meta) HasNext() bool { return m.CurrentPage < m.LastPage }

// Result is one page of a collection.
type Result[T any] struct {
	Items       []T
	CurrentPage int
	LastPage    int
	Total       int
	PerPage     int
}

func (r Result[T]) Meta() Meta {
	return Meta{CurrentPage: r.CurrentPage, LastPage: r.LastPage, Total: r.Total, PerPage: r.PerPage}
}

// Fetcher loads one page. token is the bearer token current when the fetch
// was started.
type Fetcher[T any] func(ctx context.Context, token string, q Query) (Result[T], error)

// Snapshot is the observable state of a controller.
type Snapshot[T any] struct {
	Items   []T
	Loading bool
	Err     error
	Meta    Meta
	Query   Query
}
