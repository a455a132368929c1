package httpapi

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/dmitrijs2005/backoffice/internal/client/models"
)

var creds = Credentials{
	AdminEmail: "admin@test.local", AdminPassword: "secret",
	StaffEmail: "staff@test.local", StaffPassword: "secret",
}

type response struct {
	Status  bool                `json:"status"`
	Message string              `json:"message"`
	Data    json.RawMessage     `json:"data"`
	Errors  map[string][]string `json:"errors"`
}

func newServer(t *testing.T) (*Backend, *httptest.Server) {
	t.Helper()
	b := New(WithSecret("test-secret", time.Hour))
	require.NoError(t, b.Seed(creds))
	srv := httptest.NewServer(b.Handler())
	t.Cleanup(srv.Close)
	return b, srv
}

func call(t *testing.T, method, url, token string, body any) (int, response) {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, url, rd)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return send(t, req)
}

func send(t *testing.T, req *http.Request) (int, response) {
	t.Helper()
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out response
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func login(t *testing.T, srv *httptest.Server, email string) string {
	t.Helper()
	code, res := call(t, http.MethodPost, srv.URL+prefix+"/login", "", map[string]string{"email": email, "password": "secret"})
	require.Equal(t, http.StatusOK, code)

	var data struct {
		Token string      `json:"token"`
		User  models.User `json:"user"`
	}
	require.NoError(t, json.Unmarshal(res.Data, &data))
	require.NotEmpty(t, data.Token)
	return data.Token
}

func TestLogin(t *testing.T) {
	_, srv := newServer(t)

	code, res := call(t, http.MethodPost, srv.URL+prefix+"/login", "", map[string]string{"email": "ADMIN@test.local", "password": "secret"})
	require.Equal(t, http.StatusOK, code)
	assert.True(t, res.Status)
	assert.Contains(t, string(res.Data), `"user_type":"admin"`)

	code, res = call(t, http.MethodPost, srv.URL+prefix+"/login", "", map[string]string{"email": "admin@test.local", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.False(t, res.Status)
	assert.Equal(t, "Invalid credentials.", res.Message)

	code, res = call(t, http.MethodPost, srv.URL+prefix+"/login", "", map[string]string{"email": "not-an-email"})
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Contains(t, res.Errors, "email")
	assert.Contains(t, res.Errors, "password")
}

func TestProtectedRoutesNeedToken(t *testing.T) {
	_, srv := newServer(t)

	code, _ := call(t, http.MethodGet, srv.URL+prefix+"/brands", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = call(t, http.MethodGet, srv.URL+prefix+"/brands", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestStaffRoutesAreAdminOnly(t *testing.T) {
	_, srv := newServer(t)

	code, _ := call(t, http.MethodGet, srv.URL+prefix+"/staff", login(t, srv, creds.StaffEmail), nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = call(t, http.MethodGet, srv.URL+prefix+"/staff", login(t, srv, creds.AdminEmail), nil)
	assert.Equal(t, http.StatusOK, code)
}

func TestListPaginationAndSearch(t *testing.T) {
	_, srv := newServer(t)
	tok := login(t, srv, creds.AdminEmail)

	code, res := call(t, http.MethodGet, srv.URL+prefix+"/quotations?page=2&per_page=10", tok, nil)
	require.Equal(t, http.StatusOK, code)

	var page struct {
		Data        []models.Quotation `json:"data"`
		CurrentPage int                `json:"current_page"`
		LastPage    int                `json:"last_page"`
		Total       int                `json:"total"`
	}
	require.NoError(t, json.Unmarshal(res.Data, &page))
	assert.Len(t, page.Data, 5)
	assert.Equal(t, 2, page.CurrentPage)
	assert.Equal(t, 2, page.LastPage)
	assert.Equal(t, 15, page.Total)

	_, res = call(t, http.MethodGet, srv.URL+prefix+"/quotations?search=q-0007", tok, nil)
	require.NoError(t, json.Unmarshal(res.Data, &page))
	require.Len(t, page.Data, 1)
	assert.Equal(t, "Q-0007", page.Data[0].Number)
}

func TestCreateValidationAndCRUD(t *testing.T) {
	_, srv := newServer(t)
	tok := login(t, srv, creds.AdminEmail)

	code, res := call(t, http.MethodPost, srv.URL+prefix+"/brands", tok, map[string]any{"status": "bogus"})
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, []string{"is required"}, res.Errors["name"])
	assert.Equal(t, []string{"must be one of: active, inactive"}, res.Errors["status"])

	code, res = call(t, http.MethodPost, srv.URL+prefix+"/brands", tok, models.BrandInput{Name: "Nokia", Status: models.StatusActive})
	require.Equal(t, http.StatusCreated, code)
	var brand models.Brand
	require.NoError(t, json.Unmarshal(res.Data, &brand))
	assert.NotZero(t, brand.ID)

	url := srv.URL + prefix + "/brands/" + itoa(brand.ID)
	code, res = call(t, http.MethodPut, url, tok, models.BrandInput{Name: "Nokia Mobile", Status: models.StatusInactive})
	require.Equal(t, http.StatusOK, code)
	require.NoError(t, json.Unmarshal(res.Data, &brand))
	assert.Equal(t, "Nokia Mobile", brand.Name)

	code, _ = call(t, http.MethodDelete, url, tok, nil)
	assert.Equal(t, http.StatusOK, code)
	code, _ = call(t, http.MethodGet, url, tok, nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestModelRequiresExistingBrand(t *testing.T) {
	_, srv := newServer(t)
	tok := login(t, srv, creds.AdminEmail)

	code, res := call(t, http.MethodPost, srv.URL+prefix+"/models", tok, models.DeviceModelInput{Name: "X", BrandID: 999, Status: models.StatusActive})
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, []string{"does not exist"}, res.Errors["brand_id"])
}

func TestMultipartUpdateTunnelsPut(t *testing.T) {
	b, srv := newServer(t)
	tok := login(t, srv, creds.AdminEmail)

	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	require.NoError(t, mw.WriteField("_method", "PUT"))
	require.NoError(t, mw.WriteField("name", "Apple Inc"))
	require.NoError(t, mw.WriteField("status", "active"))
	fw, err := mw.CreateFormFile("logo", "apple.png")
	require.NoError(t, err)
	_, _ = fw.Write([]byte("png"))
	require.NoError(t, mw.Close())

	req, err := http.NewRequest(http.MethodPost, srv.URL+prefix+"/brands/1", body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+tok)

	code, _ := send(t, req)
	require.Equal(t, http.StatusOK, code)

	got, err := b.Brands().Get(1)
	require.NoError(t, err)
	assert.Equal(t, "Apple Inc", got.Name)
	assert.Equal(t, "uploads/logo/apple.png", got.Logo)
}

func TestPostWithoutMethodOverrideIsRejected(t *testing.T) {
	_, srv := newServer(t)
	tok := login(t, srv, creds.AdminEmail)

	code, _ := call(t, http.MethodPost, srv.URL+prefix+"/brands/1", tok, models.BrandInput{Name: "x", Status: models.StatusActive})
	assert.Equal(t, http.StatusMethodNotAllowed, code)
}

func TestQuotationDecisions(t *testing.T) {
	b, srv := newServer(t)
	tok := login(t, srv, creds.AdminEmail)
	before := b.Notifications().Len()

	code, _ := call(t, http.MethodPost, srv.URL+prefix+"/quotations/1/approve", tok, nil)
	require.Equal(t, http.StatusOK, code)
	q, err := b.Quotations().Get(1)
	require.NoError(t, err)
	assert.Equal(t, models.QuotationApproved, q.Status)
	assert.Equal(t, before+1, b.Notifications().Len())

	code, res := call(t, http.MethodPost, srv.URL+prefix+"/quotations/1/reject", tok, map[string]string{"reason": "late"})
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, "Only pending quotations can be rejected.", res.Message)

	code, res = call(t, http.MethodPost, srv.URL+prefix+"/quotations/2/reject", tok, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Contains(t, res.Errors, "reason")

	code, _ = call(t, http.MethodPost, srv.URL+prefix+"/quotations/2/reject", tok, map[string]string{"reason": "no parts"})
	require.Equal(t, http.StatusOK, code)
	q, _ = b.Quotations().Get(2)
	assert.Equal(t, "no parts", q.Reason)

	code, _ = call(t, http.MethodPost, srv.URL+prefix+"/quotations/999/approve", tok, nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestNotificationsReadFlow(t *testing.T) {
	b, srv := newServer(t)
	tok := login(t, srv, creds.StaffEmail)
	n := b.Notify("Hello", "world")

	code, _ := call(t, http.MethodPost, srv.URL+prefix+"/notifications/"+itoa(n.ID)+"/read", tok, nil)
	require.Equal(t, http.StatusOK, code)

	got, err := b.Notifications().Get(n.ID)
	require.NoError(t, err)
	assert.True(t, got.IsRead)

	code, res := call(t, http.MethodGet, srv.URL+prefix+"/notifications", tok, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(res.Data), `"is_read":true`)
}

func TestSettings(t *testing.T) {
	_, srv := newServer(t)

	in := models.SettingsInput{BusinessName: "Fixers", Email: "hi@fixers.test", Currency: "usd", TaxPercent: 21}
	code, _ := call(t, http.MethodPut, srv.URL+prefix+"/business-settings", login(t, srv, creds.StaffEmail), in)
	assert.Equal(t, http.StatusForbidden, code)

	tok := login(t, srv, creds.AdminEmail)
	code, _ = call(t, http.MethodPut, srv.URL+prefix+"/business-settings", tok, in)
	require.Equal(t, http.StatusOK, code)

	_, res := call(t, http.MethodGet, srv.URL+prefix+"/business-settings", tok, nil)
	var s models.BusinessSettings
	require.NoError(t, json.Unmarshal(res.Data, &s))
	assert.Equal(t, "Fixers", s.BusinessName)
	assert.Equal(t, "USD", s.Currency)
}

func TestSparePartImport(t *testing.T) {
	b, srv := newServer(t)
	tok := login(t, srv, creds.AdminEmail)
	before := b.SpareParts().Len()

	wb := excelize.NewFile()
	sheet := wb.GetSheetName(0)
	rows := [][]any{
		{"Name", "SKU", "Price", "Stock"},
		{"Battery", "BAT-1", 19.5, 4},
		{"", "BAT-2", 10, 1},
		{"Camera", "CAM-1", "cheap", 2},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, wb.SetSheetRow(sheet, cell, &row))
	}
	xlsx, err := wb.WriteToBuffer()
	require.NoError(t, err)

	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	fw, err := mw.CreateFormFile("file", "parts.xlsx")
	require.NoError(t, err)
	_, _ = fw.Write(xlsx.Bytes())
	require.NoError(t, mw.Close())

	req, err := http.NewRequest(http.MethodPost, srv.URL+prefix+"/spare-parts/import", body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+tok)

	code, res := send(t, req)
	require.Equal(t, http.StatusOK, code)

	var rep importReport
	require.NoError(t, json.Unmarshal(res.Data, &rep))
	assert.Equal(t, 1, rep.Imported)
	assert.Equal(t, 2, rep.Skipped)
	assert.Equal(t, []string{"row 3: invalid", "row 4: invalid"}, rep.Errors)
	assert.Equal(t, before+1, b.SpareParts().Len())
}

func TestSparePartImportRejectsNonSpreadsheet(t *testing.T) {
	_, srv := newServer(t)

	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	fw, err := mw.CreateFormFile("file", "parts.csv")
	require.NoError(t, err)
	_, _ = fw.Write([]byte("name,sku\n"))
	require.NoError(t, mw.Close())

	req, _ := http.NewRequest(http.MethodPost, srv.URL+prefix+"/spare-parts/import", body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+login(t, srv, creds.AdminEmail))

	code, res := send(t, req)
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, []string{"must be an xlsx spreadsheet"}, res.Errors["file"])
}

func TestStaffWithPasswordCanLogIn(t *testing.T) {
	_, srv := newServer(t)
	tok := login(t, srv, creds.AdminEmail)

	in := models.StaffInput{Name: "New", Email: "new@test.local", Role: "staff", Status: models.StatusActive, Password: "longsecret"}
	code, _ := call(t, http.MethodPost, srv.URL+prefix+"/staff", tok, in)
	require.Equal(t, http.StatusCreated, code)

	code, res := call(t, http.MethodPost, srv.URL+prefix+"/login", "", map[string]string{"email": in.Email, "password": in.Password})
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(res.Data), `"user_type":"staff"`)
}

func TestUnknownRoute(t *testing.T) {
	_, srv := newServer(t)
	code, res := call(t, http.MethodGet, srv.URL+"/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.True(t, strings.HasPrefix(res.Message, "Not found"))
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
