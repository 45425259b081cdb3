package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	mysqlDriver "github.com/go-sql-driver/mysql"
	"github.com/vibast-solutions/ms-go-invoicing/app/entity"
)

var (
	claimMetaQuery  = regexp.QuoteMeta("UPDATE wp_rcp_payment_meta")
	insertMetaQuery = regexp.QuoteMeta("INSERT INTO wp_rcp_payment_meta")
	selectMetaQuery = regexp.QuoteMeta("SELECT meta_value")
)

func newMetaRepo(t *testing.T) (*PaymentMetaRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet expectations: %v", err)
		}
	})
	return NewPaymentMetaRepository(db, "wp_"), mock
}

func TestPaymentMetaGetTreatsBlankAsAbsent(t *testing.T) {
	repo, mock := newMetaRepo(t)
	mock.ExpectQuery(selectMetaQuery).
		WithArgs(10, entity.MetaInvoiceID).
		WillReturnRows(sqlmock.NewRows([]string{"meta_value"}).AddRow(""))
	mock.ExpectQuery(selectMetaQuery).
		WithArgs(10, entity.MetaInvoiceID).
		WillReturnRows(sqlmock.NewRows([]string{"meta_value"}).AddRow("555"))

	value, found, err := repo.Get(context.Background(), 10, entity.MetaInvoiceID)
	if err != nil || found || value != "" {
		t.Fatalf("expected blank row to be absent, got %q %v %v", value, found, err)
	}
	value, found, err = repo.Get(context.Background(), 10, entity.MetaInvoiceID)
	if err != nil || !found || value != "555" {
		t.Fatalf("unexpected stored value: %q %v %v", value, found, err)
	}
}

func TestPaymentMetaAddIfAbsentClaimsBlankRow(t *testing.T) {
	repo, mock := newMetaRepo(t)
	mock.ExpectExec(claimMetaQuery).
		WithArgs("555", 10, entity.MetaInvoiceID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	added, err := repo.AddIfAbsent(context.Background(), 10, entity.MetaInvoiceID, "555")
	if err != nil || !added {
		t.Fatalf("expected blank row to be claimed, got %v %v", added, err)
	}
}

func TestPaymentMetaAddIfAbsentInsertsMissingRow(t *testing.T) {
	repo, mock := newMetaRepo(t)
	mock.ExpectExec(claimMetaQuery).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(insertMetaQuery).
		WithArgs(10, entity.MetaInvoiceID, "555").
		WillReturnResult(sqlmock.NewResult(1, 1))

	added, err := repo.AddIfAbsent(context.Background(), 10, entity.MetaInvoiceID, "555")
	if err != nil || !added {
		t.Fatalf("expected insert, got %v %v", added, err)
	}
}

func TestPaymentMetaAddIfAbsentKeepsExistingValue(t *testing.T) {
	repo, mock := newMetaRepo(t)
	mock.ExpectExec(claimMetaQuery).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(insertMetaQuery).
		WillReturnError(&mysqlDriver.MySQLError{Number: 1062, Message: "Duplicate entry"})

	added, err := repo.AddIfAbsent(context.Background(), 10, entity.MetaInvoiceID, "555")
	if err != nil || added {
		t.Fatalf("expected duplicate to report not added, got %v %v", added, err)
	}
}

func TestPaymentMetaAddIfAbsentPassesOtherErrors(t *testing.T) {
	repo, mock := newMetaRepo(t)
	mock.ExpectExec(claimMetaQuery).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(insertMetaQuery).
		WillReturnError(&mysqlDriver.MySQLError{Number: 1213, Message: "Deadlock found"})

	added, err := repo.AddIfAbsent(context.Background(), 10, entity.MetaInvoiceID, "555")
	if added || err == nil {
		t.Fatalf("expected deadlock error, got %v %v", added, err)
	}

	repo, mock = newMetaRepo(t)
	mock.ExpectExec(claimMetaQuery).WillReturnError(errors.New("connection refused"))
	if _, err := repo.AddIfAbsent(context.Background(), 10, entity.MetaInvoiceID, "555"); err == nil {
		t.Fatal("expected claim error")
	}
}

func TestPaymentMetaSetUpserts(t *testing.T) {
	repo, mock := newMetaRepo(t)
	mock.ExpectExec(regexp.QuoteMeta("ON DUPLICATE KEY UPDATE meta_value = VALUES(meta_value)")).
		WithArgs(10, entity.MetaInvoiceID, "777").
		WillReturnResult(sqlmock.NewResult(0, 2))

	if err := repo.Set(context.Background(), 10, entity.MetaInvoiceID, "777"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
