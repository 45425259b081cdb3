package entity

import "time"

const (
	InvoiceEventCreated      = "invoice_created"
	InvoiceEventCreateFailed = "invoice_create_failed"
	InvoiceEventOrphaned     = "invoice_orphaned"
	InvoiceEventURLResolved  = "invoice_url_resolved"
	InvoiceEventOverridden   = "invoice_overridden"
	InvoiceEventCleared      = "invoice_cleared"
)

// InvoiceEvent is an audit record of a change in a payment's invoice state.
type InvoiceEvent struct {
	ID uint64

	PaymentID uint64

	EventType string

	InvoiceID *string
	Error     *string

	CreatedAt time.Time
}
