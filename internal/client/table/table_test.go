package table

import (
	"bytes"
	"errors"
	"strconv"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type brand struct {
	Name string `json:"name"`
	City string `json:"city"`
}

type part struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Stock  int    `json:"stock"`
	Active bool   `json:"active"`
	Brand  *brand `json:"brand,omitempty"`
}

var parts = []part{
	{ID: 7, Name: "Screen", Stock: 3, Active: true, Brand: &brand{Name: "Apple", City: "Cupertino"}},
	{ID: 9, Name: "Battery", Stock: 0, Brand: &brand{Name: "Samsung", City: "Suwon"}},
	{Name: "Loose screw"},
}

func columns() []Column[part] {
	return []Column[part]{
		{Key: "name", Label: "Name"},
		{Key: "brand.name", Label: "Brand"},
		{Key: "stock"},
		{Key: "no", Label: "No", Render: func(_ part, i int) string { return strconv.Itoa(i + 1) }},
	}
}

func partKey(p part) (string, bool) {
	if p.ID == 0 {
		return "", false
	}
	return strconv.FormatInt(p.ID, 10), true
}

func newView(t *testing.T, opts ...Option[part]) *View[part] {
	t.Helper()
	v, err := New(columns(), append([]Option[part]{WithRowKey(partKey)}, opts...)...)
	require.NoError(t, err)
	return v
}

func TestNew_Validation(t *testing.T) {
	_, err := New[part](nil)
	assert.ErrorIs(t, err, ErrNoColumns)

	_, err = New([]Column[part]{{Key: "name"}, {Key: "name"}})
	assert.ErrorIs(t, err, ErrDuplicateKey)
}

func TestBuild_States(t *testing.T) {
	v := newView(t)
	boom := errors.New("backend down")

	tests := []struct {
		name    string
		data    []part
		loading bool
		err     error
		search  string
		want    State
		msg     string
	}{
		{"loading wins", parts, true, boom, "", StateLoading, MsgLoading},
		{"error", parts, false, boom, "", StateError, "backend down"},
		{"empty source", nil, false, nil, "", StateEmpty, MsgEmpty},
		{"empty source with search", nil, false, nil, "zzz", StateEmpty, MsgEmpty},
		{"no matches", parts, false, nil, "zzz", StateNoResults, MsgNoResults},
		{"rows", parts, false, nil, "", StateRows, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := v.Build(tt.data, tt.loading, tt.err, tt.search, true)
			assert.Equal(t, tt.want, f.State)
			assert.Equal(t, tt.msg, f.Message)
			if tt.want != StateRows {
				assert.Empty(t, f.Rows)
			}
		})
	}
}

func TestBuild_CellsAndKeys(t *testing.T) {
	f := newView(t).Build(parts, false, nil, "", false)

	want := []Row[part]{
		{Key: "7", Index: 0, Item: parts[0], Cells: []string{"Screen", "Apple", "3", "1"}},
		{Key: "9", Index: 1, Item: parts[1], Cells: []string{"Battery", "Samsung", "0", "2"}},
		{Key: "2", Index: 2, Item: parts[2], Cells: []string{"Loose screw", "", "0", "3"}},
	}
	if diff := cmp.Diff(want, f.Rows); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []string{"Name", "Brand", "stock", "No"}, f.Headers)
}

func TestBuild_ClientSearchRecursesIntoNestedObjects(t *testing.T) {
	f := newView(t).Build(parts, false, nil, "SUWON", true)

	require.Equal(t, StateRows, f.State)
	require.Len(t, f.Rows, 1)
	assert.Equal(t, "Battery", f.Rows[0].Item.Name)
	assert.Equal(t, 1, f.Rows[0].Index, "index refers to the source position")
}

func TestBuild_ClientSearchMatchesScalars(t *testing.T) {
	v := newView(t)

	assert.Len(t, v.Build(parts, false, nil, "true", true).Rows, 1, "booleans are scalars")
	assert.Len(t, v.Build(parts, false, nil, "9", true).Rows, 1, "numbers are scalars")
	assert.Equal(t, StateNoResults, v.Build(parts, false, nil, "null", true).State, "nulls never match")
}

func TestBuild_SearchIgnoredWhenNotSearchable(t *testing.T) {
	f := newView(t).Build(parts, false, nil, "zzz", false)
	assert.Len(t, f.Rows, 3)
}

func TestBuild_ServerSearchDisablesLocalFilter(t *testing.T) {
	f := newView(t, WithServerSearch[part]()).Build(parts, false, nil, "zzz", true)
	assert.Equal(t, StateRows, f.State)
	assert.Len(t, f.Rows, 3)
}

func TestBuild_ColumnSearchProjection(t *testing.T) {
	cols := []Column[part]{
		{Key: "name", Search: func(p part) []string { return []string{p.Name} }},
	}
	v, err := New(cols)
	require.NoError(t, err)

	assert.Len(t, v.Build(parts, false, nil, "screen", true).Rows, 2)
	assert.Equal(t, StateNoResults, v.Build(parts, false, nil, "apple", true).State,
		"only the projection is searched when one is given")
}

func TestClick(t *testing.T) {
	var clicked []int64
	v := newView(t, WithRowClick(func(p part) { clicked = append(clicked, p.ID) }))
	f := v.Build(parts, false, nil, "", false)

	assert.True(t, v.Clickable())
	assert.True(t, v.Click(f, 1))
	assert.False(t, v.Click(f, 5))
	assert.Equal(t, []int64{9}, clicked)

	assert.False(t, newView(t).Click(f, 0))
}

func TestRender(t *testing.T) {
	v := newView(t)

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, v.Build(parts[:2], false, nil, "", false)))
	assert.Equal(t,
		"#  NAME     BRAND    STOCK  NO\n"+
			"7  Screen   Apple    3      1\n"+
			"9  Battery  Samsung  0      2\n",
		buf.String())

	buf.Reset()
	require.NoError(t, Render(&buf, v.Build(nil, false, nil, "", false)))
	assert.Equal(t, "[empty] no data available\n", buf.String())
}

func TestRender_KeepsCellsOnOneLine(t *testing.T) {
	v := newView(t)
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, v.Build([]part{{ID: 1, Name: "a\tb\nc"}}, false, nil, "", false)))
	assert.Contains(t, buf.String(), "a b c")
}

func TestPager(t *testing.T) {
	tests := []struct {
		p    Pager
		want string
	}{
		{Pager{CurrentPage: 1, LastPage: 3, Total: 25}, "page 1 of 3 (25 total) | next >"},
		{Pager{CurrentPage: 2, LastPage: 3, Total: 25}, "< prev | page 2 of 3 (25 total) | next >"},
		{Pager{CurrentPage: 3, LastPage: 3, Total: 25}, "< prev | page 3 of 3 (25 total)"},
		{Pager{}, "page 1 of 1 (0 total)"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.p.String())
	}
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "no-results", StateNoResults.String())
	assert.Equal(t, "State(42)", State(42).String())
}
