// Package table turns a page of records into rows of display strings. A
// View is built once per resource from its column list and then asked for
// a Frame every time the owning list controller changes.
package table

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrNoColumns    = errors.New("table has no columns")
	ErrDuplicateKey = errors.New("duplicate column key")
)

// State says which one of the mutually exclusive frames is shown.
type State int

const (
	StateLoading State = iota
	StateError
	StateEmpty
	StateNoResults
	StateRows
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateError:
		return "error"
	case StateEmpty:
		return "empty"
	case StateNoResults:
		return "no-results"
	case StateRows:
		return "rows"
	}
	return "State(" + strconv.Itoa(int(s)) + ")"
}

const (
	MsgLoading   = "loading..."
	MsgEmpty     = "no data available"
	MsgNoResults = "no results found"
)

// Column describes one table column. Render defaults to the value found
// under Key in the row's JSON form; Key may be a dotted path such as
// "model.name". Search, when set, replaces the JSON walk used by
// client-side search for this column.
type Column[T any] struct {
	Key    string
	Label  string
	Render func(row T, index int) string
	Search func(row T) []string
}

// Row is one rendered line. Key is the record's identifier, or its
// position when the record has none.
type Row[T any] struct {
	Key   string
	Index int
	Item  T
	Cells []string
}

type Frame[T any] struct {
	State   State
	Message string
	Err     error
	Headers []string
	Rows    []Row[T]
}

type View[T any] struct {
	columns      []Column[T]
	rowKey       func(T) (string, bool)
	onRowClick   func(T)
	serverSearch bool
}

type Option[T any] func(*View[T])

// WithRowKey sets how a record's identifier is found. ok=false falls back
// to the row's position.
func WithRowKey[T any](fn func(T) (string, bool)) Option[T] {
	return func(v *View[T]) { v.rowKey = fn }
}

func WithRowClick[T any](fn func(T)) Option[T] {
	return func(v *View[T]) { v.onRowClick = fn }
}

// WithServerSearch marks the view as fed by a controller that searches on
// the backend. Client-side filtering is then never applied.
func WithServerSearch[T any]() Option[T] {
	return func(v *View[T]) { v.serverSearch = true }
}

func New[T any](columns []Column[T], opts ...Option[T]) (*View[T], error) {
	if len(columns) == 0 {
		return nil, ErrNoColumns
	}
	seen := make(map[string]bool, len(columns))
	for _, c := range columns {
		if seen[c.Key] {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateKey, c.Key)
		}
		seen[c.Key] = true
	}
	v := &View[T]{columns: columns}
	for _, opt := range opts {
		opt(v)
	}
	return v, nil
}

func (v *View[T]) ServerSearch() bool { return v.serverSearch }

// Clickable reports whether rows react to a click.
func (v *View[T]) Clickable() bool { return v.onRowClick != nil }

// Click runs the row-click handler for row i of f. It reports false when
// there is no handler or no such row.
func (v *View[T]) Click(f Frame[T], i int) bool {
	if v.onRowClick == nil || i < 0 || i >= len(f.Rows) {
		return false
	}
	v.onRowClick(f.Rows[i].Item)
	return true
}

func (v *View[T]) Headers() []string {
	out := make([]string, len(v.columns))
	for i, c := range v.columns {
		out[i] = c.Label
		if out[i] == "" {
			out[i] = c.Key
		}
	}
	return out
}

// Build decides the frame for one controller state. search filters rows
// locally when searchable is set and the view has no server search.
func (v *View[T]) Build(data []T, loading bool, err error, search string, searchable bool) Frame[T] {
	f := Frame[T]{Headers: v.Headers()}
	switch {
	case loading:
		f.State, f.Message = StateLoading, MsgLoading
		return f
	case err != nil:
		f.State, f.Err, f.Message = StateError, err, err.Error()
		return f
	case len(data) == 0:
		f.State, f.Message = StateEmpty, MsgEmpty
		return f
	}

	term := strings.ToLower(strings.TrimSpace(search))
	filter := searchable && !v.serverSearch && term != ""

	for i, item := range data {
		var proj any
		if filter || v.needsProjection() {
			proj = project(item)
		}
		if filter && !v.matches(item, proj, term) {
			continue
		}
		f.Rows = append(f.Rows, Row[T]{Key: v.key(item, i), Index: i, Item: item, Cells: v.cells(item, i, proj)})
	}
	if len(f.Rows) == 0 {
		f.State, f.Message = StateNoResults, MsgNoResults
		return f
	}
	f.State = StateRows
	return f
}

func (v *View[T]) needsProjection() bool {
	for _, c := range v.columns {
		if c.Render == nil {
			return true
		}
	}
	return false
}

func (v *View[T]) key(item T, i int) string {
	if v.rowKey != nil {
		if k, ok := v.rowKey(item); ok && k != "" {
			return k
		}
	}
	return strconv.Itoa(i)
}

func (v *View[T]) cells(item T, i int, proj any) []string {
	out := make([]string, len(v.columns))
	for n, c := range v.columns {
		if c.Render != nil {
			out[n] = c.Render(item, i)
			continue
		}
		out[n] = scalar(lookup(proj, c.Key))
	}
	return out
}

func (v *View[T]) matches(item T, proj any, term string) bool {
	custom := false
	for _, c := range v.columns {
		if c.Search == nil {
			continue
		}
		custom = true
		for _, s := range c.Search(item) {
			if strings.Contains(strings.ToLower(s), term) {
				return true
			}
		}
	}
	if custom {
		return false
	}
	return walk(proj, term)
}

// project returns the generic JSON form of v: maps, slices and scalars.
func project(v any) any {
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	dec := json.NewDecoder(strings.NewReader(string(b)))
	dec.UseNumber()
	var out any
	if err := dec.Decode(&out); err != nil {
		return nil
	}
	return out
}

func lookup(proj any, key string) any {
	cur := proj
	for _, part := range strings.Split(key, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur = m[part]
	}
	return cur
}

func scalar(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case json.Number:
		return x.String()
	case bool:
		return strconv.FormatBool(x)
	default:
		b, _ := json.Marshal(x)
		return string(b)
	}
}

// walk reports whether any scalar reachable from v contains term. Nested
// objects and arrays are descended into; nulls never match.
func walk(v any, term string) bool {
	switch x := v.(type) {
	case map[string]any:
		for _, val := range x {
			if walk(val, term) {
				return true
			}
		}
	case []any:
		for _, val := range x {
			if walk(val, term) {
				return true
			}
		}
	case nil:
	default:
		return strings.Contains(strings.ToLower(scalar(x)), term)
	}
	return false
}
