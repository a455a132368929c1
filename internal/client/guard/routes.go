package guard

import "github.com/dmitrijs2005/backoffice/internal/client/models"

// Routes is the back office screen map. Staff management and business
// settings are admin-only; every other screen needs a login.
func Routes() []Route {
	out := []Route{
		{Pattern: LoginPath, Require: Public},
		{Pattern: UnauthorizedPath, Require: Authenticated},
		{Pattern: DashboardPath, Require: Authenticated},
		{Pattern: "/notifications", Require: Authenticated, Resource: models.ResourceNotifications},
		{Pattern: "/settings", Require: Admin, Resource: models.ResourceSettings},
	}
	resources := []struct {
		name string
		req  Requirement
	}{
		{models.ResourceStaff, Admin},
		{models.ResourceBrands, Authenticated},
		{models.ResourceModels, Authenticated},
		{models.ResourceEngineers, Authenticated},
		{models.ResourcePartners, Authenticated},
		{models.ResourceSuppliers, Authenticated},
		{models.ResourceSpareParts, Authenticated},
		{models.ResourceQuotations, Authenticated},
		{models.ResourceContactQueries, Authenticated},
	}
	for _, r := range resources {
		out = append(out,
			Route{Pattern: "/" + r.name, Require: r.req, Resource: r.name},
			Route{Pattern: "/" + r.name + "/:id", Require: r.req, Resource: r.name},
		)
	}
	return out
}
