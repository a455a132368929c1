package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/dmitrijs2005/backoffice/internal/client/models"
	"github.com/dmitrijs2005/backoffice/internal/server/auth"
	"github.com/dmitrijs2005/backoffice/internal/server/store"
	"github.com/dmitrijs2005/backoffice/internal/validation"
)

var errNotPending = errors.New("quotation is not pending")

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (b *Backend) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if _, ok := decodeInput(w, r, &req); !ok {
		return
	}

	user, ok := b.authenticate(req.Email, req.Password)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Invalid credentials.")
		return
	}

	token, err := auth.GenerateToken(user.ID, user.RoleName(), b.secret, b.ttl)
	if err != nil {
		b.logger.Error(r.Context(), "token generation failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Server error.")
		return
	}

	writeData(w, http.StatusOK, map[string]any{"token": token, "user": user}, "Login successful.")
}

func (b *Backend) handleQuotationApprove(w http.ResponseWriter, r *http.Request) {
	b.decideQuotation(w, r, models.QuotationDecision{Status: models.QuotationApproved})
}

func (b *Backend) handleQuotationReject(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Reason string `json:"reason"`
	}
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, errBadBody.Error())
			return
		}
	}
	b.decideQuotation(w, r, models.QuotationDecision{Status: models.QuotationRejected, Reason: body.Reason})
}

func (b *Backend) decideQuotation(w http.ResponseWriter, r *http.Request, d models.QuotationDecision) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if fields := validation.Struct(d); len(fields) > 0 {
		writeInvalid(w, fields)
		return
	}

	q, err := b.quotations.Update(id, func(q *models.Quotation) error {
		if q.Status != models.QuotationPending {
			return errNotPending
		}
		q.Status, q.Reason = d.Status, d.Reason
		return nil
	})
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "Record not found.")
		return
	case errors.Is(err, errNotPending):
		writeError(w, http.StatusUnprocessableEntity, "Only pending quotations can be "+string(d.Status)+".")
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, "Server error.")
		return
	}

	b.Notify("Quotation "+string(q.Status), fmt.Sprintf("Quotation %s was %s.", q.Number, q.Status))
	writeData(w, http.StatusOK, q, "Quotation "+string(q.Status)+".")
}

// Notifications default to a larger page so the bell sees every unread item.
const notificationsPerPage = 50

func (b *Backend) handleNotificationList(w http.ResponseWriter, r *http.Request) {
	page := b.notifications.List(queryInt(r, "page", 1), queryInt(r, "per_page", notificationsPerPage), r.URL.Query().Get("search"))
	writeData(w, http.StatusOK, page, "")
}

func (b *Backend) handleNotificationRead(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	n, err := b.notifications.Update(id, func(n *models.Notification) error {
		n.IsRead = true
		return nil
	})
	if err != nil {
		writeError(w, http.StatusNotFound, "Record not found.")
		return
	}
	writeData(w, http.StatusOK, n, "Notification marked as read.")
}

func (b *Backend) handleSettingsGet(w http.ResponseWriter, _ *http.Request) {
	b.settingsMu.RLock()
	s := b.settings
	b.settingsMu.RUnlock()
	writeData(w, http.StatusOK, s, "")
}

func (b *Backend) handleSettingsUpdate(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodPost && r.FormValue("_method") != http.MethodPut {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed.")
		return
	}
	var in models.SettingsInput
	files, ok := decodeInput(w, r, &in)
	if !ok {
		return
	}

	b.settingsMu.Lock()
	s := &b.settings
	s.BusinessName, s.Email, s.Phone, s.Address, s.Currency, s.TaxPercent =
		in.BusinessName, in.Email, in.Phone, in.Address, strings.ToUpper(in.Currency), in.TaxPercent
	if f, ok := files["logo"]; ok {
		s.Logo = f.Stored
	}
	out := *s
	b.settingsMu.Unlock()

	writeData(w, http.StatusOK, out, "Settings updated.")
}

type importReport struct {
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors,omitempty"`
}

// handleSparePartImport reads the first sheet of an uploaded workbook. Its
// first row must name the import columns; each later row becomes a part.
func (b *Backend) handleSparePartImport(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeInvalid(w, validation.Fields{"file": {"is required"}})
		return
	}
	f, _, err := r.FormFile("file")
	if err != nil {
		writeInvalid(w, validation.Fields{"file": {"is required"}})
		return
	}
	defer f.Close()

	wb, err := excelize.OpenReader(f)
	if err != nil {
		writeInvalid(w, validation.Fields{"file": {"must be an xlsx spreadsheet"}})
		return
	}
	defer wb.Close()

	rows, err := wb.GetRows(wb.GetSheetName(0))
	if err != nil || len(rows) == 0 {
		writeInvalid(w, validation.Fields{"file": {"is empty"}})
		return
	}

	col := map[string]int{}
	for i, h := range rows[0] {
		col[strings.ToLower(strings.TrimSpace(h))] = i
	}
	var missing []string
	for _, c := range models.SparePartImportColumns {
		if _, ok := col[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		writeInvalid(w, validation.Fields{"file": {"missing columns: " + strings.Join(missing, ", ")}})
		return
	}

	var rep importReport
	for n, row := range rows[1:] {
		cell := func(name string) string {
			if i := col[name]; i < len(row) {
				return strings.TrimSpace(row[i])
			}
			return ""
		}
		in := models.SparePartInput{Name: cell("name"), SKU: cell("sku"), Status: models.StatusActive}
		price, perr := strconv.ParseFloat(cell("price"), 64)
		stock, serr := strconv.Atoi(cell("stock"))
		in.Price, in.Stock = price, stock

		if perr != nil || serr != nil || len(validation.Struct(in)) > 0 {
			rep.Skipped++
			rep.Errors = append(rep.Errors, fmt.Sprintf("row %d: invalid", n+2))
			continue
		}
		b.spareParts.Insert(models.SparePart{Name: in.Name, SKU: in.SKU, Price: in.Price, Stock: in.Stock, Status: in.Status})
		rep.Imported++
	}

	writeData(w, http.StatusOK, rep, fmt.Sprintf("%d spare parts imported.", rep.Imported))
}
