package models

import "time"

// Resource names double as REST path segments and invalidation keys.
const (
	ResourceStaff          = "staff"
	ResourceBrands         = "brands"
	ResourceModels         = "models"
	ResourceEngineers      = "engineers"
	ResourcePartners       = "partners"
	ResourceSuppliers      = "suppliers"
	ResourceQuotations     = "quotations"
	ResourceSpareParts     = "spare-parts"
	ResourceNotifications  = "notifications"
	ResourceContactQueries = "contact-queries"
	ResourceSettings       = "business-settings"
)

// Status is the generic active/inactive switch most catalogue records carry.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

type QuotationStatus string

const (
	QuotationPending  QuotationStatus = "pending"
	QuotationApproved QuotationStatus = "approved"
	QuotationRejected QuotationStatus = "rejected"
)

type PartnerStatus string

const (
	PartnerPending   PartnerStatus = "pending"
	PartnerApproved  PartnerStatus = "approved"
	PartnerSuspended PartnerStatus = "suspended"
)

type ContactQueryStatus string

const (
	ContactQueryOpen     ContactQueryStatus = "open"
	ContactQueryResolved ContactQueryStatus = "resolved"
)

// Audit carries the backend's timestamps.
type Audit struct {
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Staff struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Phone        string `json:"phone,omitempty"`
	Role         string `json:"role"`
	Status       Status `json:"status"`
	ProfileImage string `json:"profile_image,omitempty"`
	Audit
}

type Brand struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Logo   string `json:"logo,omitempty"`
	Status Status `json:"status"`
	Audit
}

// DeviceModel is a product model of a brand ("Model" on the admin screens).
type DeviceModel struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	BrandID int64  `json:"brand_id"`
	Brand   *Brand `json:"brand,omitempty"`
	Status  Status `json:"status"`
	Audit
}

type Engineer struct {
	ID             int64  `json:"id"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	Phone          string `json:"phone,omitempty"`
	City           string `json:"city,omitempty"`
	Specialization string `json:"specialization,omitempty"`
	Status         Status `json:"status"`
	Audit
}

type Partner struct {
	ID          int64         `json:"id"`
	Name        string        `json:"name"`
	CompanyName string        `json:"company_name"`
	Email       string        `json:"email"`
	Phone       string        `json:"phone,omitempty"`
	Address     string        `json:"address,omitempty"`
	Status      PartnerStatus `json:"status"`
	Audit
}

type Supplier struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	ContactPerson string `json:"contact_person,omitempty"`
	Email         string `json:"email"`
	Phone         string `json:"phone,omitempty"`
	Status        Status `json:"status"`
	Audit
}

type Quotation struct {
	ID            int64           `json:"id"`
	Number        string          `json:"quotation_number"`
	CustomerName  string          `json:"customer_name"`
	CustomerEmail string          `json:"customer_email,omitempty"`
	Model         *DeviceModel    `json:"model,omitempty"`
	Description   string          `json:"description,omitempty"`
	TotalAmount   float64         `json:"total_amount"`
	Status        QuotationStatus `json:"status"`
	Reason        string          `json:"rejection_reason,omitempty"`
	Audit
}

type SparePart struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	SKU        string    `json:"sku"`
	Price      float64   `json:"price"`
	Stock      int       `json:"stock"`
	SupplierID int64     `json:"supplier_id,omitempty"`
	Supplier   *Supplier `json:"supplier,omitempty"`
	Status     Status    `json:"status"`
	Audit
}

type Notification struct {
	ID      int64  `json:"id"`
	Title   string `json:"title"`
	Message string `json:"message"`
	Type    string `json:"type,omitempty"`
	IsRead  bool   `json:"is_read"`
	Audit
}

type ContactQuery struct {
	ID      int64              `json:"id"`
	Name    string             `json:"name"`
	Email   string             `json:"email"`
	Subject string             `json:"subject"`
	Message string             `json:"message"`
	Status  ContactQueryStatus `json:"status"`
	Audit
}

type BusinessSettings struct {
	ID           int64   `json:"id"`
	BusinessName string  `json:"business_name"`
	Email        string  `json:"email"`
	Phone        string  `json:"phone,omitempty"`
	Address      string  `json:"address,omitempty"`
	Currency     string  `json:"currency"`
	TaxPercent   float64 `json:"tax_percent"`
	Logo         string  `json:"logo,omitempty"`
	Audit
}
