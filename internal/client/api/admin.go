package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strconv"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrijs2005/backoffice/internal/client/list"
	"github.com/dmitrijs2005/backoffice/internal/client/models"
)

// Admin groups one client per backend resource.
type Admin struct {
	Client *Client

	Staff          *Resource[models.Staff, models.StaffInput]
	Brands         *Resource[models.Brand, models.BrandInput]
	Models         *Resource[models.DeviceModel, models.DeviceModelInput]
	Engineers      *Resource[models.Engineer, models.EngineerInput]
	Partners       *Resource[models.Partner, models.PartnerInput]
	Suppliers      *Resource[models.Supplier, models.SupplierInput]
	ContactQueries *Resource[models.ContactQuery, models.ContactQueryInput]
	SpareParts     *SpareParts
	Quotations     *Quotations
	Notifications  *Notifications
	Settings       *Settings
}

func NewAdmin(c *Client) *Admin {
	return &Admin{
		Client:         c,
		Staff:          NewResource[models.Staff, models.StaffInput](c, models.ResourceStaff),
		Brands:         NewResource[models.Brand, models.BrandInput](c, models.ResourceBrands),
		Models:         NewResource[models.DeviceModel, models.DeviceModelInput](c, models.ResourceModels),
		Engineers:      NewResource[models.Engineer, models.EngineerInput](c, models.ResourceEngineers),
		Partners:       NewResource[models.Partner, models.PartnerInput](c, models.ResourcePartners),
		Suppliers:      NewResource[models.Supplier, models.SupplierInput](c, models.ResourceSuppliers),
		ContactQueries: NewResource[models.ContactQuery, models.ContactQueryInput](c, models.ResourceContactQueries),
		SpareParts:     &SpareParts{Resource: NewResource[models.SparePart, models.SparePartInput](c, models.ResourceSpareParts)},
		Quotations:     &Quotations{Resource: NewResource[models.Quotation, models.QuotationDecision](c, models.ResourceQuotations)},
		Notifications:  &Notifications{c: c},
		Settings:       &Settings{c: c},
	}
}

// Quotations adds the approval workflow to the generic resource.
type Quotations struct {
	*Resource[models.Quotation, models.QuotationDecision]
}

func (q *Quotations) Approve(ctx context.Context, id int64) (models.Quotation, error) {
	var out models.Quotation
	err := q.c.do(ctx, request{op: "quotations.approve", method: http.MethodPost, path: q.path(id) + "/approve"}, &out)
	return out, err
}

func (q *Quotations) Reject(ctx context.Context, id int64, reason string) (models.Quotation, error) {
	var out models.Quotation
	err := q.c.do(ctx, request{
		op:     "quotations.reject",
		method: http.MethodPost,
		path:   q.path(id) + "/reject",
		body:   map[string]string{"reason": reason},
	}, &out)
	return out, err
}

// SpareParts adds spreadsheet import to the generic resource.
type SpareParts struct {
	*Resource[models.SparePart, models.SparePartInput]
}

// ImportReport is what the backend says about an import upload.
type ImportReport struct {
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors,omitempty"`
}

// Import uploads a spreadsheet as the multipart field "file".
func (s *SpareParts) Import(ctx context.Context, path string) (ImportReport, error) {
	var out ImportReport
	err := s.c.do(ctx, request{
		op:     "spare-parts.import",
		method: http.MethodPost,
		path:   s.path() + "/import",
		files:  []models.Attachment{{Field: "file", Path: path}},
	}, &out)
	return out, err
}

type Notifications struct {
	c *Client
}

// maxNotificationPages bounds List when the backend keeps reporting more.
const maxNotificationPages = 20

// List returns the current notifications, newest first as sent by the
// backend. Pages are followed until last_page.
func (n *Notifications) List(ctx context.Context) ([]models.Notification, error) {
	var all []models.Notification
	for page := 1; page <= maxNotificationPages; page++ {
		var raw json.RawMessage
		err := n.c.do(ctx, request{
			op:     "notifications.list",
			method: http.MethodGet,
			path:   AdminPrefix + "/" + models.ResourceNotifications,
			query:  listQuery(list.Query{Page: page}),
		}, &raw)
		if err != nil {
			return nil, err
		}
		res, err := decodeList[models.Notification](raw, list.Query{})
		if err != nil {
			return nil, &Error{Kind: ErrRequestFailed, Message: DefaultMessage, cause: err}
		}
		all = append(all, res.Items...)
		if page >= res.LastPage || len(res.Items) == 0 {
			break
		}
	}
	return all, nil
}

func (n *Notifications) MarkRead(ctx context.Context, id int64) error {
	return n.c.do(ctx, request{
		op:     "notifications.read",
		method: http.MethodPost,
		path:   AdminPrefix + "/" + models.ResourceNotifications + "/" + strconv.FormatInt(id, 10) + "/read",
	}, nil)
}

type Settings struct {
	c *Client
}

func (s *Settings) Get(ctx context.Context) (models.BusinessSettings, error) {
	var out models.BusinessSettings
	err := s.c.do(ctx, request{op: "settings.get", method: http.MethodGet, path: AdminPrefix + "/" + models.ResourceSettings}, &out)
	return out, err
}

// Update saves the settings; attach a logo with files.
func (s *Settings) Update(ctx context.Context, in models.SettingsInput, files ...models.Attachment) (models.BusinessSettings, error) {
	var out models.BusinessSettings
	err := s.c.do(ctx, request{
		op:     "settings.update",
		method: http.MethodPut,
		path:   AdminPrefix + "/" + models.ResourceSettings,
		body:   in,
		files:  files,
	}, &out)
	return out, err
}

// Count is one line of the dashboard summary.
type Count struct {
	Resource string
	Total    int
}

// Summary asks every collection for its total in parallel. Collections the
// session may not read are left out.
func (a *Admin) Summary(ctx context.Context) ([]Count, error) {
	sources := map[string]func(context.Context, list.Query) (int, error){
		models.ResourceStaff:          totalOf(a.Staff),
		models.ResourceBrands:         totalOf(a.Brands),
		models.ResourceModels:         totalOf(a.Models),
		models.ResourceEngineers:      totalOf(a.Engineers),
		models.ResourcePartners:       totalOf(a.Partners),
		models.ResourceSuppliers:      totalOf(a.Suppliers),
		models.ResourceContactQueries: totalOf(a.ContactQueries),
		models.ResourceSpareParts:     totalOf(a.SpareParts.Resource),
		models.ResourceQuotations:     totalOf(a.Quotations.Resource),
	}

	var (
		mu  sync.Mutex
		out []Count
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for name, fn := range sources {
		g.Go(func() error {
			n, err := fn(gctx, list.Query{Page: 1, PageSize: 1})
			if errors.Is(err, ErrForbidden) {
				// Not this user's to see; leave it off the dashboard.
				return nil
			}
			if err != nil {
				return err
			}
			mu.Lock()
			out = append(out, Count{Resource: name, Total: n})
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Resource < out[j].Resource })
	return out, nil
}

func totalOf[T any, In any](r *Resource[T, In]) func(context.Context, list.Query) (int, error) {
	return func(ctx context.Context, q list.Query) (int, error) {
		res, err := r.List(ctx, q)
		if err != nil {
			return 0, err
		}
		return res.Total, nil
	}
}
