package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/dmitrijs2005/backoffice/internal/client/api"
	"github.com/dmitrijs2005/backoffice/internal/client/forms"
	"github.com/dmitrijs2005/backoffice/internal/client/guard"
	"github.com/dmitrijs2005/backoffice/internal/client/models"
	"github.com/dmitrijs2005/backoffice/internal/client/sheets"
	"github.com/dmitrijs2005/backoffice/internal/client/table"
	"github.com/dmitrijs2005/backoffice/internal/client/ui"
)

var ErrBadID = errors.New("invalid id")

// fail toasts err and returns it.
func (a *App) fail(err error) error {
	switch {
	case errors.Is(err, ErrNoScreen):
		a.console.Toast(ui.Failure, "Open a list first, e.g. 'open brands'.")
	case errors.Is(err, ErrNotSupported):
		a.console.Toast(ui.Failure, "That is not available here.")
	default:
		var apiErr *api.Error
		if errors.As(err, &apiErr) {
			a.console.Toast(ui.Failure, api.Describe(err))
		} else {
			a.console.Toast(ui.Failure, err.Error())
		}
	}
	return err
}

// navigate pushes path and shows whatever the guard lets through.
func (a *App) navigate(ctx context.Context, path string) error {
	v, err := a.router.Navigate(path)
	if err != nil {
		return a.fail(err)
	}
	return a.display(ctx, v)
}

// Open shows the screen at path, e.g. "brands", "/quotations/3".
func (a *App) Open(ctx context.Context, path string) error {
	path = strings.TrimSpace(path)
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return a.navigate(ctx, path)
}

// Back returns to the previous screen.
func (a *App) Back(ctx context.Context) error {
	v, ok, err := a.router.Back()
	if err != nil {
		return a.fail(err)
	}
	if !ok {
		fmt.Fprintln(a.out, "Nothing to go back to.")
		return nil
	}
	return a.display(ctx, v)
}

// display draws v. Only routes that passed the guard reach here, apart
// from the placeholder shown while the session is still being restored.
func (a *App) display(ctx context.Context, v guard.View) error {
	a.screen = nil
	if v.Placeholder {
		fmt.Fprintln(a.out, "[checking] restoring session...")
		return nil
	}

	switch v.Route.Pattern {
	case guard.LoginPath:
		fmt.Fprintln(a.out, "Please log in (type 'login').")
		return nil
	case guard.UnauthorizedPath:
		fmt.Fprintln(a.out, "[unauthorized] You do not have access to that page.")
		return nil
	case guard.DashboardPath:
		return a.Stats(ctx)
	}

	switch v.Route.Resource {
	case models.ResourceNotifications:
		return a.showNotifications(ctx, true)
	case models.ResourceSettings:
		return a.showSettings(ctx)
	}

	s, ok := a.screens[v.Route.Resource]
	if !ok {
		return nil
	}
	if raw, ok := v.Params["id"]; ok {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			fmt.Fprintf(a.out, "[not-found] %s %q does not exist\n", s.title(), raw)
			return ErrBadID
		}
		return s.show(ctx, id, a.out)
	}

	a.screen = s
	s.open(ctx)
	s.wait()
	return s.render(a.out)
}

func (a *App) current() (screen, error) {
	if a.screen == nil {
		return nil, ErrNoScreen
	}
	return a.screen, nil
}

func (a *App) onNotifications() bool {
	return a.router.Current().Route.Resource == models.ResourceNotifications
}

// Search filters the open list. An empty term clears the search.
func (a *App) Search(ctx context.Context, term string) error {
	if a.onNotifications() {
		a.notesSearch = term
		return a.showNotifications(ctx, false)
	}
	s, err := a.current()
	if err != nil {
		return a.fail(err)
	}
	s.search(term)
	s.wait()
	return s.render(a.out)
}

func (a *App) pageMove(move func(screen) error) error {
	s, err := a.current()
	if err != nil {
		return a.fail(err)
	}
	if err := move(s); err != nil {
		return a.fail(err)
	}
	s.wait()
	return s.render(a.out)
}

func (a *App) Page(_ context.Context, n int) error {
	return a.pageMove(func(s screen) error { return s.setPage(n) })
}

func (a *App) Next(_ context.Context) error {
	return a.pageMove(screen.next)
}

func (a *App) Prev(_ context.Context) error {
	return a.pageMove(screen.prev)
}

// Refresh refetches whatever is on screen.
func (a *App) Refresh(ctx context.Context) error {
	if a.screen == nil {
		return a.display(ctx, a.router.Current())
	}
	return a.pageMove(func(s screen) error { s.refresh(); return nil })
}

// Show opens the detail view of id in the open list.
func (a *App) Show(ctx context.Context, id int64) error {
	s, err := a.current()
	if err != nil {
		return a.fail(err)
	}
	return a.navigate(ctx, fmt.Sprintf("/%s/%d", s.title(), id))
}

// Row opens the n-th visible row (1-based) of the open list, as a click
// on it would.
func (a *App) Row(ctx context.Context, n int) error {
	s, err := a.current()
	if err != nil {
		return a.fail(err)
	}
	path, ok := s.click(n - 1)
	if !ok {
		a.console.Toast(ui.Failure, fmt.Sprintf("There is no row %d on this page.", n))
		return ErrNoRow
	}
	return a.navigate(ctx, path)
}

// Delete removes id from the open list after confirmation.
func (a *App) Delete(ctx context.Context, id int64) error {
	s, err := a.current()
	if err != nil {
		return a.fail(err)
	}
	if err := s.remove(ctx, id); err != nil {
		if errors.Is(err, ErrNotSupported) {
			return a.fail(err)
		}
		return err
	}
	s.wait()
	return s.render(a.out)
}

// Create adds a record to the open list from field=value arguments.
func (a *App) Create(ctx context.Context, args []string) error {
	s, err := a.current()
	if err != nil {
		return a.fail(err)
	}
	values, files, err := parseAssignments(args)
	if err != nil {
		return a.fail(err)
	}
	if len(values) == 0 {
		fmt.Fprintf(a.out, "Usage: create field=value ...\nFields: %s\n", strings.Join(s.fields(), ", "))
		return nil
	}
	if err := s.create(ctx, values, files); err != nil {
		if errors.Is(err, ErrNotSupported) {
			return a.fail(err)
		}
		return err
	}
	s.wait()
	return s.render(a.out)
}

// Edit changes a record of the open list, or the business settings when
// they are on screen. Only the given fields change.
func (a *App) Edit(ctx context.Context, args []string) error {
	if a.router.Current().Route.Resource == models.ResourceSettings {
		return a.editSettings(ctx, args)
	}
	s, err := a.current()
	if err != nil {
		return a.fail(err)
	}
	if len(args) < 2 {
		fmt.Fprintf(a.out, "Usage: edit <id> field=value ...\nFields: %s\n", strings.Join(s.fields(), ", "))
		return nil
	}
	id, err := parseID(args[0])
	if err != nil {
		return a.fail(err)
	}
	values, files, err := parseAssignments(args[1:])
	if err != nil {
		return a.fail(err)
	}
	if err := s.edit(ctx, id, values, files); err != nil {
		if errors.Is(err, ErrNotSupported) {
			return a.fail(err)
		}
		return err
	}
	s.wait()
	return s.render(a.out)
}

// Approve accepts a pending quotation.
func (a *App) Approve(ctx context.Context, id int64) error {
	err := forms.Action(ctx, a.kit, models.ResourceQuotations, "Quotation approved.", func(ctx context.Context) error {
		_, err := a.admin.Quotations.Approve(ctx, id)
		return err
	})
	if err != nil {
		return err
	}
	return a.afterMutation(models.ResourceQuotations)
}

// Reject declines a quotation; a reason is required.
func (a *App) Reject(ctx context.Context, id int64, reason string) error {
	if strings.TrimSpace(reason) == "" {
		r, err := getSimpleText(a.reader, "Reason for rejection", a.out)
		if err != nil {
			return err
		}
		reason = r
	}
	_, err := forms.Flow[models.QuotationDecision, models.Quotation]{
		Kit:      a.kit,
		Resource: models.ResourceQuotations,
		Success:  "Quotation rejected.",
		Submit: func(ctx context.Context, in models.QuotationDecision) (models.Quotation, error) {
			return a.admin.Quotations.Reject(ctx, id, in.Reason)
		},
	}.Run(ctx, models.QuotationDecision{Status: models.QuotationRejected, Reason: strings.TrimSpace(reason)})
	if err != nil {
		return err
	}
	return a.afterMutation(models.ResourceQuotations)
}

// afterMutation redraws the open list when it is the one just changed.
func (a *App) afterMutation(resource string) error {
	if a.screen == nil || a.screen.title() != resource {
		return nil
	}
	a.screen.wait()
	return a.screen.render(a.out)
}

// Notifications opens the notification panel, which refetches at once.
func (a *App) Notifications(ctx context.Context) error {
	return a.navigate(ctx, "/"+models.ResourceNotifications)
}

func (a *App) showNotifications(ctx context.Context, fetch bool) error {
	var err error
	if fetch {
		err = a.poller.Refresh(ctx)
	}
	f := a.notes.Build(a.poller.Items(), false, err, a.notesSearch, true)
	if f.State == table.StateError {
		f.Message = api.Describe(err)
	}
	fmt.Fprintf(a.out, "== notifications (%d unread) ==\n", a.poller.Unread())
	if a.notesSearch != "" {
		fmt.Fprintf(a.out, "search: %q\n", a.notesSearch)
	}
	return table.Render(a.out, f)
}

// Read marks a notification as read.
func (a *App) Read(ctx context.Context, id int64) error {
	if err := a.poller.MarkRead(ctx, id); err != nil {
		return a.fail(err)
	}
	a.console.Toast(ui.Success, "Marked as read.")
	if a.onNotifications() {
		return a.showNotifications(ctx, false)
	}
	return nil
}

// Export writes the visible page to an .xlsx file.
func (a *App) Export(_ context.Context, path string) error {
	var (
		title  string
		header []string
		rows   [][]string
	)
	switch {
	case a.onNotifications():
		f := a.notes.Build(a.poller.Items(), false, nil, a.notesSearch, true)
		title = models.ResourceNotifications
		header = append([]string{"#"}, a.notes.Headers()...)
		for _, r := range f.Rows {
			rows = append(rows, append([]string{r.Key}, r.Cells...))
		}
	case a.screen != nil:
		title = a.screen.title()
		header, rows = a.screen.rows()
	default:
		return a.fail(ErrNoScreen)
	}

	f, err := os.Create(path)
	if err != nil {
		return a.fail(err)
	}
	if err := sheets.Export(f, title, header, rows); err != nil {
		_ = f.Close()
		return a.fail(err)
	}
	if err := f.Close(); err != nil {
		return a.fail(err)
	}
	a.console.Toast(ui.Success, fmt.Sprintf("Exported %d rows to %s.", len(rows), path))
	return nil
}

// Import uploads a spare-part spreadsheet after checking its header row.
func (a *App) Import(ctx context.Context, path string) error {
	n, err := sheets.CheckImport(path, models.SparePartImportColumns)
	if err != nil {
		return a.fail(err)
	}
	a.logger.Info(ctx, "importing spare parts", "file", path, "rows", n)

	var report api.ImportReport
	err = forms.Action(ctx, a.kit, models.ResourceSpareParts, "Import finished.", func(ctx context.Context) error {
		var err error
		report, err = a.admin.SpareParts.Import(ctx, path)
		return err
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "imported: %d, skipped: %d\n", report.Imported, report.Skipped)
	for _, e := range report.Errors {
		fmt.Fprintln(a.out, "  "+e)
	}
	return a.afterMutation(models.ResourceSpareParts)
}

// Stats prints the dashboard counters.
func (a *App) Stats(ctx context.Context) error {
	counts, err := a.admin.Summary(ctx)
	if err != nil {
		return a.fail(err)
	}
	fmt.Fprintln(a.out, "== dashboard ==")
	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	for _, c := range counts {
		fmt.Fprintf(tw, "%s\t%d\n", c.Resource, c.Total)
	}
	if a.poller.Unread() > 0 {
		fmt.Fprintf(tw, "unread notifications\t%d\n", a.poller.Unread())
	}
	return tw.Flush()
}

func (a *App) showSettings(ctx context.Context) error {
	s, err := a.admin.Settings.Get(ctx)
	if err != nil {
		return a.fail(err)
	}
	return renderDetail(a.out, "business settings", s)
}

func (a *App) editSettings(ctx context.Context, args []string) error {
	values, files, err := parseAssignments(args)
	if err != nil {
		return a.fail(err)
	}
	current, err := a.admin.Settings.Get(ctx)
	if err != nil {
		return a.fail(err)
	}
	var in models.SettingsInput
	if err := prefill(&in, current); err != nil {
		return a.fail(err)
	}
	if bad := decodeInput(&in, values); bad != nil {
		toastInvalid(a.kit.Toaster, bad)
		return bad
	}
	_, err = forms.Flow[models.SettingsInput, models.BusinessSettings]{
		Kit:      a.kit,
		Resource: models.ResourceSettings,
		Success:  "Settings saved.",
		Submit: func(ctx context.Context, in models.SettingsInput) (models.BusinessSettings, error) {
			return a.admin.Settings.Update(ctx, in, files...)
		},
	}.Run(ctx, in)
	if err != nil {
		return err
	}
	return a.showSettings(ctx)
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrBadID, s)
	}
	return id, nil
}
