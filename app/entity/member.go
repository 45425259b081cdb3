package entity

import "strings"

type Member struct {
	UserID uint64

	FirstName   string
	LastName    string
	CompanyName string

	BillingAddress    string
	BillingPostalCode string
	BillingCity       string
	BillingState      string
	BillingCountry    string

	VATNumber string
	TaxCode   string
}

// DisplayName prefers the company name and falls back to the person's full name.
func (m *Member) DisplayName() string {
	if name := strings.TrimSpace(m.CompanyName); name != "" {
		return name
	}
	return strings.TrimSpace(m.FirstName + " " + m.LastName)
}
