package repository

import (
	"context"
	"database/sql"
	"errors"
)

// PaymentMetaRepository is the per-payment key/value store. It relies on a
// unique (rcp_payment_id, meta_key) index so that AddIfAbsent is a single
// conditional write.
type PaymentMetaRepository struct {
	db     DBTX
	prefix string
}

func NewPaymentMetaRepository(db DBTX, prefix string) *PaymentMetaRepository {
	return &PaymentMetaRepository{db: db, prefix: prefix}
}

// Get returns the stored value of key. A row holding an empty value counts as
// absent, matching AddIfAbsent.
func (r *PaymentMetaRepository) Get(ctx context.Context, paymentID uint64, key string) (string, bool, error) {
	query := `
		SELECT meta_value
		FROM ` + table(r.prefix, "rcp_payment_meta") + `
		WHERE rcp_payment_id = ? AND meta_key = ?
		LIMIT 1
	`

	var value sql.NullString
	if err := r.db.QueryRowContext(ctx, query, paymentID, key).Scan(&value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, err
	}
	if !value.Valid || value.String == "" {
		return "", false, nil
	}
	return value.String, true, nil
}

// AddIfAbsent stores value only when the key is not set yet, either because
// no row exists or because the existing row is blank. It reports whether this
// call performed the write.
func (r *PaymentMetaRepository) AddIfAbsent(ctx context.Context, paymentID uint64, key, value string) (bool, error) {
	claim := `
		UPDATE ` + table(r.prefix, "rcp_payment_meta") + `
		SET meta_value = ?
		WHERE rcp_payment_id = ? AND meta_key = ? AND (meta_value IS NULL OR meta_value = '')
	`

	res, err := r.db.ExecContext(ctx, claim, value, paymentID, key)
	if err != nil {
		return false, err
	}
	if affected, err := res.RowsAffected(); err != nil {
		return false, err
	} else if affected > 0 {
		return true, nil
	}

	insert := `
		INSERT INTO ` + table(r.prefix, "rcp_payment_meta") + ` (rcp_payment_id, meta_key, meta_value)
		VALUES (?, ?, ?)
	`

	if _, err := r.db.ExecContext(ctx, insert, paymentID, key, value); err != nil {
		if isDuplicateEntryError(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *PaymentMetaRepository) Set(ctx context.Context, paymentID uint64, key, value string) error {
	query := `
		INSERT INTO ` + table(r.prefix, "rcp_payment_meta") + ` (rcp_payment_id, meta_key, meta_value)
		VALUES (?, ?, ?)
		ON DUPLICATE KEY UPDATE meta_value = VALUES(meta_value)
	`

	_, err := r.db.ExecContext(ctx, query, paymentID, key, value)
	return err
}

func (r *PaymentMetaRepository) Delete(ctx context.Context, paymentID uint64, key string) error {
	query := `DELETE FROM ` + table(r.prefix, "rcp_payment_meta") + ` WHERE rcp_payment_id = ? AND meta_key = ?`

	_, err := r.db.ExecContext(ctx, query, paymentID, key)
	return err
}
