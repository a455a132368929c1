package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrijs2005/backoffice/internal/client/models"
	"github.com/dmitrijs2005/backoffice/internal/server/store"
	"github.com/dmitrijs2005/backoffice/internal/validation"
)

// crud serves list/get/create/update/delete for one collection. apply
// copies a validated input onto a record; it may reject the input with
// field errors. saved, when set, runs after the record is stored.
type crud[T any, In any] struct {
	coll  *store.Collection[T]
	apply func(rec *T, in In, files map[string]upload) validation.Fields
	saved func(rec T, in In)
}

func mount[T any, In any](r chi.Router, name string, h *crud[T, In], extra ...func(chi.Router)) {
	r.Route("/"+name, func(r chi.Router) {
		for _, fn := range extra {
			fn(r)
		}
		r.Get("/", h.list)
		r.Post("/", h.create)
		r.Get("/{id}", h.get)
		r.Put("/{id}", h.update)
		r.Post("/{id}", h.update)
		r.Delete("/{id}", h.remove)
	})
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusNotFound, "Not found.")
		return 0, false
	}
	return id, true
}

func queryInt(r *http.Request, key string, def int) int {
	n, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil {
		return def
	}
	return n
}

func (h *crud[T, In]) list(w http.ResponseWriter, r *http.Request) {
	page := h.coll.List(queryInt(r, "page", 1), queryInt(r, "per_page", store.DefaultPerPage), r.URL.Query().Get("search"))
	writeData(w, http.StatusOK, page, "")
}

func (h *crud[T, In]) get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	v, err := h.coll.Get(id)
	if err != nil {
		writeError(w, http.StatusNotFound, "Record not found.")
		return
	}
	writeData(w, http.StatusOK, v, "")
}

func (h *crud[T, In]) create(w http.ResponseWriter, r *http.Request) {
	var in In
	files, ok := decodeInput(w, r, &in)
	if !ok {
		return
	}
	var rec T
	if fields := h.apply(&rec, in, files); len(fields) > 0 {
		writeInvalid(w, fields)
		return
	}
	rec = h.coll.Insert(rec)
	if h.saved != nil {
		h.saved(rec, in)
	}
	writeData(w, http.StatusCreated, rec, "Created successfully.")
}

// update serves PUT, and POST with _method=PUT for multipart bodies.
func (h *crud[T, In]) update(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodPost && r.FormValue("_method") != http.MethodPut {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed.")
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var in In
	files, ok := decodeInput(w, r, &in)
	if !ok {
		return
	}

	var invalid validation.Fields
	v, err := h.coll.Update(id, func(rec *T) error {
		if invalid = h.apply(rec, in, files); len(invalid) > 0 {
			return errInvalid
		}
		return nil
	})
	switch {
	case errors.Is(err, errInvalid):
		writeInvalid(w, invalid)
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "Record not found.")
	case err != nil:
		writeError(w, http.StatusInternalServerError, "Server error.")
	default:
		if h.saved != nil {
			h.saved(v, in)
		}
		writeData(w, http.StatusOK, v, "Updated successfully.")
	}
}

func (h *crud[T, In]) remove(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.coll.Delete(id); err != nil {
		writeError(w, http.StatusNotFound, "Record not found.")
		return
	}
	writeData(w, http.StatusOK, nil, "Deleted successfully.")
}

var errInvalid = errors.New("invalid input")

func (b *Backend) staffHandler() *crud[models.Staff, models.StaffInput] {
	return &crud[models.Staff, models.StaffInput]{
		coll: b.staff,
		apply: func(rec *models.Staff, in models.StaffInput, files map[string]upload) validation.Fields {
			rec.Name, rec.Email, rec.Phone, rec.Role, rec.Status = in.Name, in.Email, in.Phone, in.Role, in.Status
			if f, ok := files["profile_image"]; ok {
				rec.ProfileImage = f.Stored
			}
			return nil
		},
		// A password makes the staff member able to log in.
		saved: func(rec models.Staff, in models.StaffInput) {
			if in.Password == "" {
				return
			}
			u := models.User{ID: rec.ID, Name: rec.Name, Email: rec.Email, UserType: rec.Role}
			if err := b.AddAccount(Account{User: u, Password: in.Password}); err != nil {
				b.logger.Error(context.Background(), "storing staff login failed", "email", rec.Email, "error", err)
			}
		},
	}
}

func (b *Backend) brandHandler() *crud[models.Brand, models.BrandInput] {
	return &crud[models.Brand, models.BrandInput]{coll: b.brands, apply: func(rec *models.Brand, in models.BrandInput, files map[string]upload) validation.Fields {
		rec.Name, rec.Status = in.Name, in.Status
		if f, ok := files["logo"]; ok {
			rec.Logo = f.Stored
		}
		return nil
	}}
}

func (b *Backend) deviceModelHandler() *crud[models.DeviceModel, models.DeviceModelInput] {
	return &crud[models.DeviceModel, models.DeviceModelInput]{coll: b.deviceModels, apply: func(rec *models.DeviceModel, in models.DeviceModelInput, _ map[string]upload) validation.Fields {
		brand, err := b.brands.Get(in.BrandID)
		if err != nil {
			return validation.Fields{"brand_id": {"does not exist"}}
		}
		rec.Name, rec.BrandID, rec.Status = in.Name, in.BrandID, in.Status
		rec.Brand = &brand
		return nil
	}}
}

func (b *Backend) engineerHandler() *crud[models.Engineer, models.EngineerInput] {
	return &crud[models.Engineer, models.EngineerInput]{coll: b.engineers, apply: func(rec *models.Engineer, in models.EngineerInput, _ map[string]upload) validation.Fields {
		rec.Name, rec.Email, rec.Phone, rec.City, rec.Specialization, rec.Status =
			in.Name, in.Email, in.Phone, in.City, in.Specialization, in.Status
		return nil
	}}
}

func (b *Backend) partnerHandler() *crud[models.Partner, models.PartnerInput] {
	return &crud[models.Partner, models.PartnerInput]{coll: b.partners, apply: func(rec *models.Partner, in models.PartnerInput, _ map[string]upload) validation.Fields {
		rec.Name, rec.CompanyName, rec.Email, rec.Phone, rec.Address, rec.Status =
			in.Name, in.CompanyName, in.Email, in.Phone, in.Address, in.Status
		return nil
	}}
}

func (b *Backend) supplierHandler() *crud[models.Supplier, models.SupplierInput] {
	return &crud[models.Supplier, models.SupplierInput]{coll: b.suppliers, apply: func(rec *models.Supplier, in models.SupplierInput, _ map[string]upload) validation.Fields {
		rec.Name, rec.ContactPerson, rec.Email, rec.Phone, rec.Status = in.Name, in.ContactPerson, in.Email, in.Phone, in.Status
		return nil
	}}
}

func (b *Backend) sparePartHandler() *crud[models.SparePart, models.SparePartInput] {
	return &crud[models.SparePart, models.SparePartInput]{coll: b.spareParts, apply: func(rec *models.SparePart, in models.SparePartInput, _ map[string]upload) validation.Fields {
		rec.Supplier = nil
		if in.SupplierID > 0 {
			s, err := b.suppliers.Get(in.SupplierID)
			if err != nil {
				return validation.Fields{"supplier_id": {"does not exist"}}
			}
			rec.Supplier = &s
		}
		rec.Name, rec.SKU, rec.Price, rec.Stock, rec.SupplierID, rec.Status =
			in.Name, in.SKU, in.Price, in.Stock, in.SupplierID, in.Status
		return nil
	}}
}

func (b *Backend) contactQueryHandler() *crud[models.ContactQuery, models.ContactQueryInput] {
	return &crud[models.ContactQuery, models.ContactQueryInput]{coll: b.contactQueries, apply: func(rec *models.ContactQuery, in models.ContactQueryInput, _ map[string]upload) validation.Fields {
		if rec.ID == 0 {
			return validation.Fields{"_": {"contact queries are submitted by customers"}}
		}
		rec.Status = in.Status
		return nil
	}}
}

// quotationHandler only lets the status be changed through the generic
// update; quotations are created by customers.
func (b *Backend) quotationHandler() *crud[models.Quotation, models.QuotationDecision] {
	return &crud[models.Quotation, models.QuotationDecision]{coll: b.quotations, apply: func(rec *models.Quotation, in models.QuotationDecision, _ map[string]upload) validation.Fields {
		if rec.ID == 0 {
			return validation.Fields{"_": {"quotations are submitted by customers"}}
		}
		if rec.Status != models.QuotationPending {
			return validation.Fields{"status": {"only pending quotations can be decided"}}
		}
		rec.Status, rec.Reason = in.Status, in.Reason
		return nil
	}}
}
