package entity

const (
	PaymentStatusComplete = "complete"

	// PaymentDateLayout is the layout the membership plugin stores payment dates in.
	PaymentDateLayout = "2006-01-02 15:04:05"
)

// Payment is a row of the membership plugin's payments table. It is never
// written by this service.
type Payment struct {
	ID uint64

	UserID uint64

	Subscription string
	Amount       string
	Date         string

	Status  string
	Gateway string
}
