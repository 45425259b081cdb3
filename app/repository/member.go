package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/vibast-solutions/ms-go-invoicing/app/entity"
)

var memberMetaKeys = []string{
	"first_name",
	"last_name",
	"rcp_company_name",
	"rcp_billing_address",
	"rcp_billing_postal_code",
	"rcp_billing_city",
	"rcp_billing_state",
	"rcp_billing_country",
	"rcp_vat_number",
	"rcp_tax_code",
}

// MemberRepository reads member profile and billing details from the host
// users and usermeta tables.
type MemberRepository struct {
	db     DBTX
	prefix string
}

func NewMemberRepository(db DBTX, prefix string) *MemberRepository {
	return &MemberRepository{db: db, prefix: prefix}
}

func (r *MemberRepository) FindByUserID(ctx context.Context, userID uint64) (*entity.Member, error) {
	var id uint64
	err := r.db.QueryRowContext(ctx, `SELECT ID FROM `+table(r.prefix, "users")+` WHERE ID = ?`, userID).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	args := make([]interface{}, 0, len(memberMetaKeys)+1)
	args = append(args, userID)
	for _, key := range memberMetaKeys {
		args = append(args, key)
	}

	query := `
		SELECT meta_key, meta_value
		FROM ` + table(r.prefix, "usermeta") + `
		WHERE user_id = ? AND meta_key IN (` + placeholders(len(memberMetaKeys)) + `)
	`
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	member := &entity.Member{UserID: id}
	for rows.Next() {
		var (
			key   string
			value sql.NullString
		)
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		assignMemberMeta(member, key, value.String)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return member, nil
}

func assignMemberMeta(member *entity.Member, key, value string) {
	switch key {
	case "first_name":
		member.FirstName = value
	case "last_name":
		member.LastName = value
	case "rcp_company_name":
		member.CompanyName = value
	case "rcp_billing_address":
		member.BillingAddress = value
	case "rcp_billing_postal_code":
		member.BillingPostalCode = value
	case "rcp_billing_city":
		member.BillingCity = value
	case "rcp_billing_state":
		member.BillingState = value
	case "rcp_billing_country":
		member.BillingCountry = value
	case "rcp_vat_number":
		member.VATNumber = value
	case "rcp_tax_code":
		member.TaxCode = value
	}
}
