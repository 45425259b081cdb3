package entity

const (
	MetaInvoiceID  = "fattureincloud_invoice_id"
	MetaInvoiceURL = "fattureincloud_invoice_url"
)
