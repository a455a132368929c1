package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"github.com/dmitrijs2005/backoffice/internal/client/list"
	"github.com/dmitrijs2005/backoffice/internal/client/models"
)

// page is the paginated form of a list response's data.
type page[T any] struct {
	Data        []T `json:"data"`
	CurrentPage int `json:"current_page"`
	LastPage    int `json:"last_page"`
	PerPage     int `json:"per_page"`
	Total       int `json:"total"`
}

// decodeList accepts both a paginated object and a bare array.
func decodeList[T any](raw json.RawMessage, q list.Query) (list.Result[T], error) {
	if len(raw) > 0 && raw[0] == '[' {
		var items []T
		if err := json.Unmarshal(raw, &items); err != nil {
			return list.Result[T]{}, err
		}
		return list.Result[T]{Items: items, CurrentPage: 1, LastPage: 1, Total: len(items), PerPage: max(len(items), q.PageSize)}, nil
	}
	var p page[T]
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &p); err != nil {
			return list.Result[T]{}, err
		}
	}
	return list.Result[T]{Items: p.Data, CurrentPage: p.CurrentPage, LastPage: p.LastPage, Total: p.Total, PerPage: p.PerPage}, nil
}

// Resource is the CRUD surface shared by every admin collection. T is the
// record, In the create/edit payload.
type Resource[T any, In any] struct {
	c    *Client
	name string
}

func NewResource[T any, In any](c *Client, name string) *Resource[T, In] {
	return &Resource[T, In]{c: c, name: name}
}

func (r *Resource[T, In]) Name() string { return r.name }

func (r *Resource[T, In]) path(id ...int64) string {
	p := AdminPrefix + "/" + r.name
	for _, v := range id {
		p += "/" + strconv.FormatInt(v, 10)
	}
	return p
}

func listQuery(q list.Query) url.Values {
	v := url.Values{}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.PageSize > 0 {
		v.Set("per_page", strconv.Itoa(q.PageSize))
	}
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	return v
}

// List fetches one page with the client's current token.
func (r *Resource[T, In]) List(ctx context.Context, q list.Query) (list.Result[T], error) {
	return r.list(ctx, "", q)
}

// Fetcher adapts List for a list.Controller, which supplies the token.
func (r *Resource[T, In]) Fetcher() list.Fetcher[T] {
	return func(ctx context.Context, token string, q list.Query) (list.Result[T], error) {
		return r.list(ctx, token, q)
	}
}

func (r *Resource[T, In]) list(ctx context.Context, token string, q list.Query) (list.Result[T], error) {
	var raw json.RawMessage
	err := r.c.do(ctx, request{
		op:     r.name + ".list",
		method: http.MethodGet,
		path:   r.path(),
		query:  listQuery(q),
		token:  token,
	}, &raw)
	if err != nil {
		return list.Result[T]{}, err
	}
	res, err := decodeList[T](raw, q)
	if err != nil {
		return list.Result[T]{}, &Error{Kind: ErrRequestFailed, Message: DefaultMessage, cause: err}
	}
	return res, nil
}

func (r *Resource[T, In]) Get(ctx context.Context, id int64) (T, error) {
	var out T
	err := r.c.do(ctx, request{op: r.name + ".get", method: http.MethodGet, path: r.path(id)}, &out)
	return out, err
}

// Create sends in as JSON, or as multipart when files are attached.
func (r *Resource[T, In]) Create(ctx context.Context, in In, files ...models.Attachment) (T, error) {
	var out T
	err := r.c.do(ctx, request{
		op:     r.name + ".create",
		method: http.MethodPost,
		path:   r.path(),
		body:   in,
		files:  files,
	}, &out)
	return out, err
}

func (r *Resource[T, In]) Update(ctx context.Context, id int64, in In, files ...models.Attachment) (T, error) {
	var out T
	err := r.c.do(ctx, request{
		op:     r.name + ".update",
		method: http.MethodPut,
		path:   r.path(id),
		body:   in,
		files:  files,
	}, &out)
	return out, err
}

func (r *Resource[T, In]) Delete(ctx context.Context, id int64) error {
	return r.c.do(ctx, request{op: r.name + ".delete", method: http.MethodDelete, path: r.path(id)}, nil)
}
