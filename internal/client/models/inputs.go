package models

// Attachment is a local file sent as one multipart field.
type Attachment struct {
	Field string
	Path  string
}

// The *Input types are the create/edit payloads. Validation tags are checked
// client-side before any request is made; the backend validates again.

type StaffInput struct {
	Name     string `json:"name" validate:"required,max=120"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone,omitempty" validate:"omitempty,max=32"`
	Role     string `json:"role" validate:"required,oneof=admin staff"`
	Status   Status `json:"status" validate:"required,oneof=active inactive"`
	Password string `json:"password,omitempty" validate:"omitempty,min=8"`
}

type BrandInput struct {
	Name   string `json:"name" validate:"required,max=120"`
	Status Status `json:"status" validate:"required,oneof=active inactive"`
}

type DeviceModelInput struct {
	Name    string `json:"name" validate:"required,max=120"`
	BrandID int64  `json:"brand_id" validate:"required,gt=0"`
	Status  Status `json:"status" validate:"required,oneof=active inactive"`
}

type EngineerInput struct {
	Name           string `json:"name" validate:"required,max=120"`
	Email          string `json:"email" validate:"required,email"`
	Phone          string `json:"phone,omitempty" validate:"omitempty,max=32"`
	City           string `json:"city,omitempty"`
	Specialization string `json:"specialization,omitempty"`
	Status         Status `json:"status" validate:"required,oneof=active inactive"`
}

type PartnerInput struct {
	Name        string        `json:"name" validate:"required,max=120"`
	CompanyName string        `json:"company_name" validate:"required"`
	Email       string        `json:"email" validate:"required,email"`
	Phone       string        `json:"phone,omitempty"`
	Address     string        `json:"address,omitempty"`
	Status      PartnerStatus `json:"status" validate:"required,oneof=pending approved suspended"`
}

type SupplierInput struct {
	Name          string `json:"name" validate:"required,max=120"`
	ContactPerson string `json:"contact_person,omitempty"`
	Email         string `json:"email" validate:"required,email"`
	Phone         string `json:"phone,omitempty"`
	Status        Status `json:"status" validate:"required,oneof=active inactive"`
}

// SparePartImportColumns is the header row an import spreadsheet must have.
var SparePartImportColumns = []string{"name", "sku", "price", "stock"}

type SparePartInput struct {
	Name       string  `json:"name" validate:"required,max=120"`
	SKU        string  `json:"sku" validate:"required,max=64"`
	Price      float64 `json:"price" validate:"gte=0"`
	Stock      int     `json:"stock" validate:"gte=0"`
	SupplierID int64   `json:"supplier_id,omitempty" validate:"omitempty,gt=0"`
	Status     Status  `json:"status" validate:"required,oneof=active inactive"`
}

type QuotationDecision struct {
	Status QuotationStatus `json:"status" validate:"required,oneof=approved rejected"`
	Reason string          `json:"reason,omitempty" validate:"required_if=Status rejected"`
}

type ContactQueryInput struct {
	Status ContactQueryStatus `json:"status" validate:"required,oneof=open resolved"`
}

type SettingsInput struct {
	BusinessName string  `json:"business_name" validate:"required"`
	Email        string  `json:"email" validate:"required,email"`
	Phone        string  `json:"phone,omitempty"`
	Address      string  `json:"address,omitempty"`
	Currency     string  `json:"currency" validate:"required,len=3"`
	TaxPercent   float64 `json:"tax_percent" validate:"gte=0,lte=100"`
}
