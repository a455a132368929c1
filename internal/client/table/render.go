package table

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

// Render writes f as an aligned text table, or as its one-line message
// when there are no rows. Row keys prefix each line so they can be
// addressed by show/delete commands.
func Render[T any](w io.Writer, f Frame[T]) error {
	if f.State != StateRows {
		_, err := fmt.Fprintf(w, "[%s] %s\n", f.State, f.Message)
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\t"+strings.Join(upper(f.Headers), "\t"))
	for _, r := range f.Rows {
		fmt.Fprintln(tw, r.Key+"\t"+strings.Join(clean(r.Cells), "\t"))
	}
	return tw.Flush()
}

func upper(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToUpper(s)
	}
	return out
}

// clean keeps a cell on one line; tabs and newlines would break alignment.
func clean(in []string) []string {
	out := make([]string, len(in))
	r := strings.NewReplacer("\t", " ", "\r", " ", "\n", " ")
	for i, s := range in {
		out[i] = r.Replace(s)
	}
	return out
}

// Pager is the "page X of Y" line under a table.
type Pager struct {
	CurrentPage int
	LastPage    int
	Total       int
}

func (p Pager) HasPrev() bool { return p.CurrentPage > 1 }
func (p Pager) HasNext() bool { return p.CurrentPage < p.LastPage }

func (p Pager) String() string {
	last := max(p.LastPage, 1)
	cur := min(max(p.CurrentPage, 1), last)
	s := fmt.Sprintf("page %d of %d (%d total)", cur, last, p.Total)
	if p.HasPrev() {
		s = "< prev | " + s
	}
	if p.HasNext() {
		s += " | next >"
	}
	return s
}
