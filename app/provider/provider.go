package provider

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"time"
)

const (
	TypeInvoice = "fattura"

	InfoCountries = "lista_paesi"

	// AmountAuto asks the provider to compute the payment line amount from the document total.
	AmountAuto = "auto"

	dateLayout = "02/01/2006"
)

type InvoiceClient interface {
	CreateDocument(ctx context.Context, docType string, req *DocumentRequest) (*CreateDocumentResult, error)
	GetDocumentDetails(ctx context.Context, docType string, req *DocumentDetailsRequest) (*DocumentDetailsResult, error)
	ListInfo(ctx context.Context, fields []string) (*InfoListResult, error)
}

// Date is a calendar date in the provider's dd/mm/yyyy wire format.
type Date struct {
	time.Time
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte(`""`), nil
	}
	return json.Marshal(d.Format(dateLayout))
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if strings.TrimSpace(raw) == "" {
		d.Time = time.Time{}
		return nil
	}
	parsed, err := time.Parse(dateLayout, raw)
	if err != nil {
		return err
	}
	d.Time = parsed
	return nil
}

type DocumentArticle struct {
	Name       string      `json:"nome"`
	GrossPrice json.Number `json:"prezzo_lordo"`
	VATCode    int         `json:"cod_iva"`
}

type DocumentPayment struct {
	DueDate     Date   `json:"data_scadenza"`
	Amount      string `json:"importo"`
	Method      string `json:"metodo"`
	SettledDate Date   `json:"data_saldo"`
}

type DocumentRequest struct {
	Name             string            `json:"nome"`
	Street           string            `json:"indirizzo_via,omitempty"`
	PostalCode       string            `json:"indirizzo_cap,omitempty"`
	City             string            `json:"indirizzo_citta,omitempty"`
	Province         string            `json:"indirizzo_provincia,omitempty"`
	Country          string            `json:"paese,omitempty"`
	VATNumber        string            `json:"piva,omitempty"`
	TaxCode          string            `json:"cf,omitempty"`
	Articles         []DocumentArticle `json:"lista_articoli"`
	Payments         []DocumentPayment `json:"lista_pagamenti"`
	PricesIncludeVAT bool              `json:"prezzi_ivati"`
}

type DocumentDetailsRequest struct {
	ID string `json:"id"`
}

type CreateDocumentResult struct {
	Success   bool        `json:"success"`
	NewID     json.Number `json:"new_id"`
	Token     string      `json:"token"`
	Error     string      `json:"error"`
	ErrorCode int         `json:"error_code"`
}

func (r *CreateDocumentResult) ID() string {
	if r == nil {
		return ""
	}
	return strings.TrimSpace(r.NewID.String())
}

type DocumentDetails struct {
	ID           string `json:"id"`
	Number       string `json:"numero"`
	Date         string `json:"data"`
	DocumentLink string `json:"link_doc"`
}

type DocumentDetailsResult struct {
	Success   bool             `json:"success"`
	Details   *DocumentDetails `json:"dettagli_documento"`
	Error     string           `json:"error"`
	ErrorCode int              `json:"error_code"`
}

func (r *DocumentDetailsResult) Link() string {
	if r == nil || r.Details == nil {
		return ""
	}
	return strings.TrimSpace(r.Details.DocumentLink)
}

type Country struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// CountryList maps a country code to its details. The provider answers
// either with a plain list of names or with a code to name object; the
// cached form is a code to Country object.
type CountryList map[string]Country

func (l *CountryList) UnmarshalJSON(data []byte) error {
	items := CountryList{}

	var names []string
	if err := json.Unmarshal(data, &names); err == nil {
		for _, name := range names {
			name = strings.TrimSpace(name)
			if name != "" {
				items[name] = Country{Code: name, Name: name}
			}
		}
		*l = items
		return nil
	}

	var byCode map[string]string
	if err := json.Unmarshal(data, &byCode); err == nil {
		for code, name := range byCode {
			items[code] = Country{Code: code, Name: name}
		}
		*l = items
		return nil
	}

	var byCountry map[string]Country
	if err := json.Unmarshal(data, &byCountry); err != nil {
		return errors.New("unsupported country list format")
	}
	for code, c := range byCountry {
		if c.Code == "" {
			c.Code = code
		}
		items[code] = c
	}
	*l = items
	return nil
}

// Sorted returns the countries ordered by name.
func (l CountryList) Sorted() []Country {
	items := make([]Country, 0, len(l))
	for _, c := range l {
		items = append(items, c)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })
	return items
}

type InfoListResult struct {
	Success   bool        `json:"success"`
	Countries CountryList `json:"lista_paesi"`
	Error     string      `json:"error"`
	ErrorCode int         `json:"error_code"`
}
