package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"

	"github.com/dmitrijs2005/backoffice/internal/client/models"
)

const prefix = "/api/admin"

// Handler returns the HTTP routes of the backend.
func (b *Backend) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(b.requestLogger)
	r.Use(middleware.Recoverer)
	if b.rateLimit > 0 {
		r.Use(httprate.LimitByIP(b.rateLimit, time.Minute))
	}

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeData(w, http.StatusOK, map[string]string{"status": "ok"}, "")
	})

	r.Route(prefix, func(r chi.Router) {
		r.Post("/login", b.handleLogin)

		r.Group(func(r chi.Router) {
			r.Use(b.authMiddleware)

			mount(r, models.ResourceBrands, b.brandHandler())
			mount(r, models.ResourceModels, b.deviceModelHandler())
			mount(r, models.ResourceEngineers, b.engineerHandler())
			mount(r, models.ResourcePartners, b.partnerHandler())
			mount(r, models.ResourceSuppliers, b.supplierHandler())
			mount(r, models.ResourceContactQueries, b.contactQueryHandler())
			mount(r, models.ResourceSpareParts, b.sparePartHandler(), func(r chi.Router) {
				r.Post("/import", b.handleSparePartImport)
			})
			mount(r, models.ResourceQuotations, b.quotationHandler(), func(r chi.Router) {
				r.Post("/{id}/approve", b.handleQuotationApprove)
				r.Post("/{id}/reject", b.handleQuotationReject)
			})

			r.Route("/"+models.ResourceNotifications, func(r chi.Router) {
				r.Get("/", b.handleNotificationList)
				r.Post("/{id}/read", b.handleNotificationRead)
			})

			r.Get("/"+models.ResourceSettings, b.handleSettingsGet)

			r.Group(func(r chi.Router) {
				r.Use(requireAdmin)
				mount(r, models.ResourceStaff, b.staffHandler())
				r.Put("/"+models.ResourceSettings, b.handleSettingsUpdate)
				r.Post("/"+models.ResourceSettings, b.handleSettingsUpdate)
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "Not found.")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed.")
	})
	return r
}
