package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/dmitrijs2005/backoffice/internal/client/api"
	"github.com/dmitrijs2005/backoffice/internal/client/forms"
	"github.com/dmitrijs2005/backoffice/internal/client/list"
	"github.com/dmitrijs2005/backoffice/internal/client/models"
	"github.com/dmitrijs2005/backoffice/internal/client/table"
	"github.com/dmitrijs2005/backoffice/internal/client/ui"
	"github.com/dmitrijs2005/backoffice/internal/validation"
)

var (
	ErrNoScreen      = errors.New("no list is open")
	ErrNotSupported  = errors.New("not supported on this screen")
	ErrBadAssignment = errors.New("expected field=value")
	ErrNoRow         = errors.New("no such row")
)

// screen is one resource list of the shell.
type screen interface {
	title() string
	open(ctx context.Context)
	search(term string)
	setPage(n int) error
	next() error
	prev() error
	refresh()
	wait()
	render(w io.Writer) error
	rows() ([]string, [][]string)
	click(i int) (string, bool)
	show(ctx context.Context, id int64, w io.Writer) error
	remove(ctx context.Context, id int64) error
	create(ctx context.Context, values map[string][]string, files []models.Attachment) error
	edit(ctx context.Context, id int64, values map[string][]string, files []models.Attachment) error
	fields() []string
	close()
}

// listScreen binds a resource client, a list controller and a table view.
type listScreen[T any, In any] struct {
	name   string
	res    *api.Resource[T, In]
	ctrl   *list.Controller[T]
	view   *table.View[T]
	kit    forms.Kit
	caps   capability
	opened bool

	// target is set by the row-click handler during click.
	target string
}

// capability says which mutations a screen offers.
type capability uint8

const (
	canCreate capability = 1 << iota
	canEdit
	canDelete

	canAll = canCreate | canEdit | canDelete
)

func newListScreen[T any, In any](res *api.Resource[T, In], kit forms.Kit, columns []table.Column[T], id func(T) int64, opts []list.Option) *listScreen[T, In] {
	o := append(append([]list.Option{}, opts...), list.WithName(res.Name()))
	ctrl := list.New(res.Fetcher(), o...)
	if kit.Bus != nil {
		ctrl.Attach(kit.Bus, res.Name())
	}
	s := &listScreen[T, In]{name: res.Name(), res: res, ctrl: ctrl, kit: kit, caps: canAll}
	view, err := table.New(columns,
		table.WithServerSearch[T](),
		table.WithRowKey(func(item T) (string, bool) { return fmt.Sprint(id(item)), true }),
		table.WithRowClick(func(item T) { s.target = fmt.Sprintf("/%s/%d", s.name, id(item)) }),
	)
	if err != nil {
		panic(fmt.Sprintf("%s columns: %v", res.Name(), err))
	}
	s.view = view
	return s
}

func (s *listScreen[T, In]) title() string { return s.name }

// open loads page 1 the first time and afterwards refetches the query the
// user left the list with.
func (s *listScreen[T, In]) open(ctx context.Context) {
	if s.opened {
		s.ctrl.Refresh()
		return
	}
	s.opened = true
	s.ctrl.Load(ctx)
}

// search applies term at once; a shell command is already a complete term.
func (s *listScreen[T, In]) search(term string) {
	s.ctrl.SetSearch(term)
	s.ctrl.Flush()
}

func (s *listScreen[T, In]) setPage(n int) error { return s.ctrl.SetPage(n) }
func (s *listScreen[T, In]) next() error         { return s.ctrl.Next() }
func (s *listScreen[T, In]) prev() error         { return s.ctrl.Prev() }
func (s *listScreen[T, In]) refresh()            { s.ctrl.Refresh() }
func (s *listScreen[T, In]) wait()               { s.ctrl.Wait() }
func (s *listScreen[T, In]) close()              { s.ctrl.Close() }

func (s *listScreen[T, In]) frame() (table.Frame[T], list.Snapshot[T]) {
	snap := s.ctrl.Snapshot()
	return s.view.Build(snap.Items, snap.Loading, snap.Err, snap.Query.Search, true), snap
}

func (s *listScreen[T, In]) render(w io.Writer) error {
	f, snap := s.frame()
	if f.State == table.StateError {
		f.Message = api.Describe(f.Err)
	}
	fmt.Fprintf(w, "== %s ==\n", s.name)
	if snap.Query.Search != "" {
		fmt.Fprintf(w, "search: %q\n", snap.Query.Search)
	}
	if err := table.Render(w, f); err != nil {
		return err
	}
	if f.State == table.StateRows || f.State == table.StateNoResults {
		fmt.Fprintln(w, table.Pager{
			CurrentPage: snap.Meta.CurrentPage,
			LastPage:    snap.Meta.LastPage,
			Total:       snap.Meta.Total,
		})
	}
	if f.State == table.StateRows && s.view.Clickable() {
		fmt.Fprintln(w, "(row <n> opens the n-th row)")
	}
	return nil
}

// click selects row i (0-based) of the visible page and returns the
// detail route it leads to.
func (s *listScreen[T, In]) click(i int) (string, bool) {
	f, _ := s.frame()
	if f.State != table.StateRows {
		return "", false
	}
	s.target = ""
	if !s.view.Click(f, i) {
		return "", false
	}
	return s.target, s.target != ""
}

// rows returns the visible page as plain strings for export.
func (s *listScreen[T, In]) rows() ([]string, [][]string) {
	f, _ := s.frame()
	header := append([]string{"#"}, s.view.Headers()...)
	out := make([][]string, 0, len(f.Rows))
	for _, r := range f.Rows {
		out = append(out, append([]string{r.Key}, r.Cells...))
	}
	return header, out
}

func (s *listScreen[T, In]) show(ctx context.Context, id int64, w io.Writer) error {
	item, err := s.res.Get(ctx, id)
	if err != nil {
		if errors.Is(err, api.ErrNotFound) {
			fmt.Fprintf(w, "[not-found] %s #%d does not exist\n", s.name, id)
			return err
		}
		fmt.Fprintf(w, "[error] %s\n", api.Describe(err))
		return err
	}
	return renderDetail(w, fmt.Sprintf("%s #%d", s.name, id), item)
}

func (s *listScreen[T, In]) remove(ctx context.Context, id int64) error {
	if s.caps&canDelete == 0 {
		return ErrNotSupported
	}
	return forms.Delete(ctx, s.kit, s.name, id, s.res.Delete)
}

func (s *listScreen[T, In]) fields() []string {
	var in In
	return validation.Names(in)
}

func (s *listScreen[T, In]) create(ctx context.Context, values map[string][]string, files []models.Attachment) error {
	if s.caps&canCreate == 0 {
		return ErrNotSupported
	}
	var in In
	if err := s.decode(ctx, &in, values); err != nil {
		return err
	}
	_, err := forms.Flow[In, T]{
		Kit:      s.kit,
		Resource: s.name,
		Success:  "Created successfully.",
		Submit: func(ctx context.Context, in In) (T, error) {
			return s.res.Create(ctx, in, files...)
		},
	}.Run(ctx, in)
	return err
}

// edit starts from the stored record so only the given fields change.
func (s *listScreen[T, In]) edit(ctx context.Context, id int64, values map[string][]string, files []models.Attachment) error {
	if s.caps&canEdit == 0 {
		return ErrNotSupported
	}
	current, err := s.res.Get(ctx, id)
	if err != nil {
		s.kit.Toaster.Toast(ui.Failure, api.Describe(err))
		return err
	}
	var in In
	if err := prefill(&in, current); err != nil {
		return err
	}
	if err := s.decode(ctx, &in, values); err != nil {
		return err
	}
	_, err = forms.Flow[In, T]{
		Kit:      s.kit,
		Resource: s.name,
		Success:  "Updated successfully.",
		Submit: func(ctx context.Context, in In) (T, error) {
			return s.res.Update(ctx, id, in, files...)
		},
	}.Run(ctx, in)
	return err
}

func (s *listScreen[T, In]) decode(_ context.Context, in *In, values map[string][]string) error {
	if bad := decodeInput(in, values); bad != nil {
		toastInvalid(s.kit.Toaster, bad)
		return bad
	}
	return nil
}

// decodeInput applies values to in. Values that do not parse come back as
// an InvalidError, the same way failed validation does.
func decodeInput(in any, values map[string][]string) *forms.InvalidError {
	if bad := validation.Decode(in, values); len(bad) > 0 {
		return &forms.InvalidError{Fields: bad}
	}
	return nil
}

func toastInvalid(t ui.Toaster, err *forms.InvalidError) {
	t.Toast(ui.Failure, strings.Join(append([]string{"Please fix the following:"}, err.Messages()...), "\n"))
}

// prefill copies the fields a record shares with its input type.
func prefill(dst any, src any) error {
	b, err := json.Marshal(src)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, dst)
}

// renderDetail prints a record as aligned key/value lines. Nested objects
// are flattened with dotted keys.
func renderDetail(w io.Writer, title string, item any) error {
	b, err := json.Marshal(item)
	if err != nil {
		return err
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return err
	}
	flat := map[string]string{}
	flatten("", m, flat)
	keys := make([]string, 0, len(flat))
	for k := range flat {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fmt.Fprintf(w, "== %s ==\n", title)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, k := range keys {
		fmt.Fprintf(tw, "%s\t%s\n", k, flat[k])
	}
	return tw.Flush()
}

func flatten(prefix string, v any, out map[string]string) {
	switch t := v.(type) {
	case map[string]any:
		for k, vv := range t {
			key := k
			if prefix != "" {
				key = prefix + "." + k
			}
			flatten(key, vv, out)
		}
	case nil:
		out[prefix] = ""
	default:
		s := fmt.Sprint(t)
		if f, ok := t.(float64); ok {
			s = formatNumber(f)
		}
		out[prefix] = strings.ReplaceAll(s, "\n", " ")
	}
}

func formatNumber(f float64) string {
	if f == float64(int64(f)) {
		return fmt.Sprintf("%d", int64(f))
	}
	return fmt.Sprintf("%.2f", f)
}

// parseAssignments splits "field=value" arguments. Keys starting with '@'
// name a file to attach, as in "@logo=./logo.png".
func parseAssignments(args []string) (map[string][]string, []models.Attachment, error) {
	values := map[string][]string{}
	var files []models.Attachment
	for _, arg := range args {
		k, v, ok := strings.Cut(arg, "=")
		if !ok || k == "" || k == "@" {
			return nil, nil, fmt.Errorf("%w: %q", ErrBadAssignment, arg)
		}
		if strings.HasPrefix(k, "@") {
			files = append(files, models.Attachment{Field: k[1:], Path: v})
			continue
		}
		values[k] = append(values[k], v)
	}
	return values, files, nil
}
