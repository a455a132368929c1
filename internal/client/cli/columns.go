package cli

import (
	"fmt"

	"github.com/dmitrijs2005/backoffice/internal/client/list"
	"github.com/dmitrijs2005/backoffice/internal/client/models"
	"github.com/dmitrijs2005/backoffice/internal/client/table"
)

func money(v float64) string { return fmt.Sprintf("%.2f", v) }

// buildScreens creates one list screen per resource, all sharing the
// session token and the invalidation bus.
func (a *App) buildScreens() map[string]screen {
	opts := []list.Option{
		list.WithDebounce(a.config.SearchDebounce),
		list.WithTimeout(a.config.RequestTimeout),
		list.WithPageSize(a.config.PageSize),
		list.WithTokenSource(a.token),
		list.WithLogger(a.logger),
	}

	staff := newListScreen(a.admin.Staff, a.kit, []table.Column[models.Staff]{
		{Key: "name", Label: "Name"},
		{Key: "email", Label: "Email"},
		{Key: "phone", Label: "Phone"},
		{Key: "role", Label: "Role"},
		{Key: "status", Label: "Status"},
	}, func(s models.Staff) int64 { return s.ID }, opts)

	brands := newListScreen(a.admin.Brands, a.kit, []table.Column[models.Brand]{
		{Key: "name", Label: "Name"},
		{Key: "logo", Label: "Logo"},
		{Key: "status", Label: "Status"},
	}, func(b models.Brand) int64 { return b.ID }, opts)

	deviceModels := newListScreen(a.admin.Models, a.kit, []table.Column[models.DeviceModel]{
		{Key: "name", Label: "Model"},
		{Key: "brand.name", Label: "Brand"},
		{Key: "status", Label: "Status"},
	}, func(m models.DeviceModel) int64 { return m.ID }, opts)

	engineers := newListScreen(a.admin.Engineers, a.kit, []table.Column[models.Engineer]{
		{Key: "name", Label: "Name"},
		{Key: "email", Label: "Email"},
		{Key: "city", Label: "City"},
		{Key: "specialization", Label: "Specialization"},
		{Key: "status", Label: "Status"},
	}, func(e models.Engineer) int64 { return e.ID }, opts)

	partners := newListScreen(a.admin.Partners, a.kit, []table.Column[models.Partner]{
		{Key: "name", Label: "Name"},
		{Key: "company_name", Label: "Company"},
		{Key: "email", Label: "Email"},
		{Key: "status", Label: "Status"},
	}, func(p models.Partner) int64 { return p.ID }, opts)

	suppliers := newListScreen(a.admin.Suppliers, a.kit, []table.Column[models.Supplier]{
		{Key: "name", Label: "Name"},
		{Key: "contact_person", Label: "Contact"},
		{Key: "email", Label: "Email"},
		{Key: "status", Label: "Status"},
	}, func(s models.Supplier) int64 { return s.ID }, opts)

	spareParts := newListScreen(a.admin.SpareParts.Resource, a.kit, []table.Column[models.SparePart]{
		{Key: "name", Label: "Name"},
		{Key: "sku", Label: "SKU"},
		{Key: "price", Label: "Price", Render: func(p models.SparePart, _ int) string { return money(p.Price) }},
		{Key: "stock", Label: "Stock"},
		{Key: "supplier.name", Label: "Supplier"},
		{Key: "status", Label: "Status"},
	}, func(p models.SparePart) int64 { return p.ID }, opts)

	quotations := newListScreen(a.admin.Quotations.Resource, a.kit, []table.Column[models.Quotation]{
		{Key: "quotation_number", Label: "Number"},
		{Key: "customer_name", Label: "Customer"},
		{Key: "model.name", Label: "Model"},
		{Key: "total_amount", Label: "Total", Render: func(q models.Quotation, _ int) string { return money(q.TotalAmount) }},
		{Key: "status", Label: "Status"},
	}, func(q models.Quotation) int64 { return q.ID }, opts)
	quotations.caps = canDelete

	contactQueries := newListScreen(a.admin.ContactQueries, a.kit, []table.Column[models.ContactQuery]{
		{Key: "name", Label: "Name"},
		{Key: "email", Label: "Email"},
		{Key: "subject", Label: "Subject"},
		{Key: "status", Label: "Status"},
	}, func(c models.ContactQuery) int64 { return c.ID }, opts)
	contactQueries.caps = canEdit | canDelete

	return map[string]screen{
		models.ResourceStaff:          staff,
		models.ResourceBrands:         brands,
		models.ResourceModels:         deviceModels,
		models.ResourceEngineers:      engineers,
		models.ResourcePartners:       partners,
		models.ResourceSuppliers:      suppliers,
		models.ResourceSpareParts:     spareParts,
		models.ResourceQuotations:     quotations,
		models.ResourceContactQueries: contactQueries,
	}
}

// notificationColumns is the notifications panel. It is searched on the
// client since the backend returns the whole list at once.
var notificationColumns = []table.Column[models.Notification]{
	{Key: "title", Label: "Title"},
	{Key: "message", Label: "Message"},
	{Key: "type", Label: "Type"},
	{Key: "is_read", Label: "Read", Render: func(n models.Notification, _ int) string {
		if n.IsRead {
			return "yes"
		}
		return "no"
	}},
	{Key: "created_at", Label: "Received", Render: func(n models.Notification, _ int) string {
		if n.CreatedAt.IsZero() {
			return ""
		}
		return n.CreatedAt.Format("2006-01-02 15:04")
	}},
}
