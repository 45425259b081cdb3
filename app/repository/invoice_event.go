package repository

import (
	"context"

	"github.com/vibast-solutions/ms-go-invoicing/app/entity"
)

type InvoiceEventRepository struct {
	db DBTX
}

func NewInvoiceEventRepository(db DBTX) *InvoiceEventRepository {
	return &InvoiceEventRepository{db: db}
}

func (r *InvoiceEventRepository) Create(ctx context.Context, event *entity.InvoiceEvent) error {
	query := `
		INSERT INTO invoice_events (
			payment_id, event_type, invoice_id, error, created_at
		)
		VALUES (?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		event.PaymentID,
		event.EventType,
		nullableStringValue(event.InvoiceID),
		nullableStringValue(event.Error),
		event.CreatedAt,
	)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	event.ID = uint64(id)

	return nil
}
