// Package httpapi is an in-memory implementation of the admin REST API the
// back office talks to. It backs the client's tests and local development
// (cmd/server); it is not a production backend.
package httpapi

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/backoffice/internal/client/models"
	"github.com/dmitrijs2005/backoffice/internal/logging"
	"github.com/dmitrijs2005/backoffice/internal/server/auth"
	"github.com/dmitrijs2005/backoffice/internal/server/store"
)

// Account is a user allowed to log in.
type Account struct {
	User     models.User
	Password string
}

type account struct {
	user models.User
	hash string
}

// Backend holds all records and the auth settings.
type Backend struct {
	secret    []byte
	ttl       time.Duration
	rateLimit int
	logger    logging.Logger

	accountsMu sync.RWMutex
	accounts   map[string]account

	staff          *store.Collection[models.Staff]
	brands         *store.Collection[models.Brand]
	deviceModels   *store.Collection[models.DeviceModel]
	engineers      *store.Collection[models.Engineer]
	partners       *store.Collection[models.Partner]
	suppliers      *store.Collection[models.Supplier]
	quotations     *store.Collection[models.Quotation]
	spareParts     *store.Collection[models.SparePart]
	notifications  *store.Collection[models.Notification]
	contactQueries *store.Collection[models.ContactQuery]

	settingsMu sync.RWMutex
	settings   models.BusinessSettings
}

type Option func(*Backend)

// WithSecret sets the token signing key and lifetime.
func WithSecret(secret string, ttl time.Duration) Option {
	return func(b *Backend) {
		b.secret = []byte(secret)
		b.ttl = ttl
	}
}

// WithRateLimit allows perMinute requests per client IP; 0 disables it.
func WithRateLimit(perMinute int) Option { return func(b *Backend) { b.rateLimit = perMinute } }

func WithLogger(l logging.Logger) Option { return func(b *Backend) { b.logger = l } }

func New(opts ...Option) *Backend {
	b := &Backend{
		secret:   []byte("secretKey"),
		ttl:      time.Hour,
		logger:   logging.Nop(),
		accounts: map[string]account{},
	}
	for _, opt := range opts {
		opt(b)
	}

	b.staff = store.NewCollection(store.Accessor[models.Staff]{
		ID:     func(v *models.Staff) *int64 { return &v.ID },
		Audit:  func(v *models.Staff) *models.Audit { return &v.Audit },
		Search: func(v *models.Staff) []string { return []string{v.Name, v.Email, v.Phone, v.Role} },
	})
	b.brands = store.NewCollection(store.Accessor[models.Brand]{
		ID:     func(v *models.Brand) *int64 { return &v.ID },
		Audit:  func(v *models.Brand) *models.Audit { return &v.Audit },
		Search: func(v *models.Brand) []string { return []string{v.Name} },
	})
	b.deviceModels = store.NewCollection(store.Accessor[models.DeviceModel]{
		ID:    func(v *models.DeviceModel) *int64 { return &v.ID },
		Audit: func(v *models.DeviceModel) *models.Audit { return &v.Audit },
		Search: func(v *models.DeviceModel) []string {
			f := []string{v.Name}
			if v.Brand != nil {
				f = append(f, v.Brand.Name)
			}
			return f
		},
	})
	b.engineers = store.NewCollection(store.Accessor[models.Engineer]{
		ID:     func(v *models.Engineer) *int64 { return &v.ID },
		Audit:  func(v *models.Engineer) *models.Audit { return &v.Audit },
		Search: func(v *models.Engineer) []string { return []string{v.Name, v.Email, v.City, v.Specialization} },
	})
	b.partners = store.NewCollection(store.Accessor[models.Partner]{
		ID:     func(v *models.Partner) *int64 { return &v.ID },
		Audit:  func(v *models.Partner) *models.Audit { return &v.Audit },
		Search: func(v *models.Partner) []string { return []string{v.Name, v.CompanyName, v.Email} },
	})
	b.suppliers = store.NewCollection(store.Accessor[models.Supplier]{
		ID:     func(v *models.Supplier) *int64 { return &v.ID },
		Audit:  func(v *models.Supplier) *models.Audit { return &v.Audit },
		Search: func(v *models.Supplier) []string { return []string{v.Name, v.ContactPerson, v.Email} },
	})
	b.quotations = store.NewCollection(store.Accessor[models.Quotation]{
		ID:    func(v *models.Quotation) *int64 { return &v.ID },
		Audit: func(v *models.Quotation) *models.Audit { return &v.Audit },
		Search: func(v *models.Quotation) []string {
			return []string{v.Number, v.CustomerName, v.CustomerEmail, string(v.Status)}
		},
	})
	b.spareParts = store.NewCollection(store.Accessor[models.SparePart]{
		ID:     func(v *models.SparePart) *int64 { return &v.ID },
		Audit:  func(v *models.SparePart) *models.Audit { return &v.Audit },
		Search: func(v *models.SparePart) []string { return []string{v.Name, v.SKU} },
	})
	b.notifications = store.NewCollection(store.Accessor[models.Notification]{
		ID:     func(v *models.Notification) *int64 { return &v.ID },
		Audit:  func(v *models.Notification) *models.Audit { return &v.Audit },
		Search: func(v *models.Notification) []string { return []string{v.Title, v.Message} },
	})
	b.contactQueries = store.NewCollection(store.Accessor[models.ContactQuery]{
		ID:     func(v *models.ContactQuery) *int64 { return &v.ID },
		Audit:  func(v *models.ContactQuery) *models.Audit { return &v.Audit },
		Search: func(v *models.ContactQuery) []string { return []string{v.Name, v.Email, v.Subject} },
	})

	b.settings = models.BusinessSettings{ID: 1, BusinessName: "Back Office", Email: "office@backoffice.local", Currency: "EUR"}
	return b
}

// AddAccount registers a login. The password is stored as a bcrypt hash.
func (b *Backend) AddAccount(a Account) error {
	hash, err := auth.HashPassword(a.Password)
	if err != nil {
		return fmt.Errorf("hash password for %s: %w", a.User.Email, err)
	}
	b.accountsMu.Lock()
	defer b.accountsMu.Unlock()
	b.accounts[strings.ToLower(a.User.Email)] = account{user: a.User, hash: hash}
	return nil
}

func (b *Backend) authenticate(email, password string) (models.User, bool) {
	b.accountsMu.RLock()
	acc, ok := b.accounts[strings.ToLower(email)]
	b.accountsMu.RUnlock()
	if !ok || !auth.CheckPassword(acc.hash, password) {
		return models.User{}, false
	}
	return acc.user, true
}

// Notify adds an unread notification, as the real backend does when a
// customer submits something.
func (b *Backend) Notify(title, message string) models.Notification {
	return b.notifications.Insert(models.Notification{Title: title, Message: message, Type: "info"})
}

// Notifications exposes the notification store for tests and seeding.
func (b *Backend) Notifications() *store.Collection[models.Notification] { return b.notifications }

func (b *Backend) Brands() *store.Collection[models.Brand] { return b.brands }

func (b *Backend) Quotations() *store.Collection[models.Quotation] { return b.quotations }

func (b *Backend) SpareParts() *store.Collection[models.SparePart] { return b.spareParts }

func (b *Backend) Staff() *store.Collection[models.Staff] { return b.staff }
