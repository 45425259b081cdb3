package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/vibast-solutions/ms-go-invoicing/app/entity"
)

// PaymentRepository reads the membership plugin's payments table.
type PaymentRepository struct {
	db     DBTX
	prefix string
}

func NewPaymentRepository(db DBTX, prefix string) *PaymentRepository {
	return &PaymentRepository{db: db, prefix: prefix}
}

func (r *PaymentRepository) FindByID(ctx context.Context, id uint64) (*entity.Payment, error) {
	query := `
		SELECT id, user_id, subscription, amount, date, status, gateway
		FROM ` + table(r.prefix, "rcp_payments") + `
		WHERE id = ?
	`

	var (
		payment      entity.Payment
		subscription sql.NullString
		amount       sql.NullString
		date         sql.NullString
		status       sql.NullString
		gateway      sql.NullString
	)
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&payment.ID,
		&payment.UserID,
		&subscription,
		&amount,
		&date,
		&status,
		&gateway,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	payment.Subscription = subscription.String
	payment.Amount = amount.String
	payment.Date = date.String
	payment.Status = status.String
	payment.Gateway = gateway.String

	return &payment, nil
}
