package httpapi

import (
	"fmt"

	"github.com/dmitrijs2005/backoffice/internal/client/models"
)

// Credentials are the logins Seed creates.
type Credentials struct {
	AdminEmail, AdminPassword string
	StaffEmail, StaffPassword string
}

// Seed fills the backend with a small demo data set and two accounts.
func (b *Backend) Seed(c Credentials) error {
	admin := b.staff.Insert(models.Staff{Name: "Administrator", Email: c.AdminEmail, Role: models.RoleAdmin, Status: models.StatusActive})
	staff := b.staff.Insert(models.Staff{Name: "Front Desk", Email: c.StaffEmail, Role: models.RoleStaff, Status: models.StatusActive})

	for _, a := range []Account{
		{User: models.User{ID: admin.ID, Name: admin.Name, Email: admin.Email, UserType: models.RoleAdmin}, Password: c.AdminPassword},
		{User: models.User{ID: staff.ID, Name: staff.Name, Email: staff.Email, UserType: models.RoleStaff}, Password: c.StaffPassword},
	} {
		if err := b.AddAccount(a); err != nil {
			return err
		}
	}

	var brands []models.Brand
	for _, name := range []string{"Apple", "Samsung", "Xiaomi", "Google", "OnePlus"} {
		brands = append(brands, b.brands.Insert(models.Brand{Name: name, Status: models.StatusActive}))
	}

	var deviceModels []models.DeviceModel
	for i, name := range []string{"iPhone 13", "Galaxy S22", "Redmi Note 12", "Pixel 7", "Nord 3"} {
		br := brands[i]
		deviceModels = append(deviceModels, b.deviceModels.Insert(models.DeviceModel{Name: name, BrandID: br.ID, Brand: &br, Status: models.StatusActive}))
	}

	for i, city := range []string{"Riga", "Tallinn", "Vilnius", "Riga", "Helsinki", "Warsaw"} {
		b.engineers.Insert(models.Engineer{
			Name:           fmt.Sprintf("Engineer %d", i+1),
			Email:          fmt.Sprintf("engineer%d@backoffice.local", i+1),
			City:           city,
			Specialization: []string{"screens", "batteries", "boards"}[i%3],
			Status:         models.StatusActive,
		})
	}

	b.partners.Insert(models.Partner{Name: "Anna Ozola", CompanyName: "FixPoint", Email: "anna@fixpoint.test", Status: models.PartnerApproved})
	b.partners.Insert(models.Partner{Name: "Marek Nowak", CompanyName: "Repair Hub", Email: "marek@repairhub.test", Status: models.PartnerPending})

	sup := b.suppliers.Insert(models.Supplier{Name: "Parts Direct", ContactPerson: "Jonas", Email: "sales@partsdirect.test", Status: models.StatusActive})
	for i := 1; i <= 12; i++ {
		s := sup
		b.spareParts.Insert(models.SparePart{
			Name:       fmt.Sprintf("Display assembly %02d", i),
			SKU:        fmt.Sprintf("DSP-%03d", i),
			Price:      float64(40 + i*5),
			Stock:      i * 3,
			SupplierID: sup.ID,
			Supplier:   &s,
			Status:     models.StatusActive,
		})
	}

	for i := 1; i <= 15; i++ {
		m := deviceModels[i%len(deviceModels)]
		b.quotations.Insert(models.Quotation{
			Number:        fmt.Sprintf("Q-%04d", i),
			CustomerName:  fmt.Sprintf("Customer %d", i),
			CustomerEmail: fmt.Sprintf("customer%d@mail.test", i),
			Model:         &m,
			Description:   "Screen replacement",
			TotalAmount:   float64(80 + i*10),
			Status:        models.QuotationPending,
		})
	}

	b.contactQueries.Insert(models.ContactQuery{Name: "Ieva", Email: "ieva@mail.test", Subject: "Opening hours", Message: "Are you open on Sundays?", Status: models.ContactQueryOpen})
	b.contactQueries.Insert(models.ContactQuery{Name: "Tom", Email: "tom@mail.test", Subject: "Warranty", Message: "Is battery replacement covered?", Status: models.ContactQueryResolved})

	b.Notify("New quotation", "Quotation Q-0015 was submitted.")
	b.Notify("New contact query", "Ieva asked about opening hours.")
	return nil
}
