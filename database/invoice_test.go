package database

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/kaptain9960/payflow/internal/apierror"
	"github.com/kaptain9960/payflow/model"
)

func testInvoice() model.Invoice {
	now := time.Now()
	return model.Invoice{
		InvoiceNumber: model.GenerateInvoiceNumber(),
		ClientName:    "Ada Lovelace",
		ClientEmail:   "ada@example.com",
		IssueDate:     now,
		DueDate:       now.AddDate(0, 0, 14),
		Description:   "Consulting",
		Amount:        decimal.RequireFromString("1200.00"),
		Currency:      "USD",
		Status:        model.InvoicePending,
		CreatedAt:     now,
	}
}

func TestCreateInvoice_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}
	invoice := testInvoice()

	mock.ExpectExec("INSERT INTO invoices").
		WithArgs(invoice.InvoiceNumber, invoice.ClientName, invoice.ClientEmail, sqlmock.AnyArg(), sqlmock.AnyArg(), invoice.Description, invoice.Amount, invoice.Currency, invoice.Status, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	created, err := ds.CreateInvoice(context.Background(), invoice)
	assert.NoError(t, err)
	assert.Equal(t, invoice.InvoiceNumber, created.InvoiceNumber)
}

func TestCreateInvoice_DuplicateNumber(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}
	invoice := testInvoice()

	mock.ExpectExec("INSERT INTO invoices").
		WillReturnError(&pq.Error{Code: "23505"})

	_, err = ds.CreateInvoice(context.Background(), invoice)
	assert.Error(t, err)

	apiErr, ok := err.(apierror.APIError)
	assert.True(t, ok)
	assert.Equal(t, apierror.ErrConflict, apiErr.Code)
}

func TestGetInvoice_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}

	mock.ExpectQuery("SELECT invoice_number, client_name").
		WithArgs("INV-20250101-0000").
		WillReturnRows(sqlmock.NewRows([]string{"invoice_number", "client_name", "client_email", "issue_date", "due_date", "description", "amount", "currency", "status", "created_at"}))

	_, err = ds.GetInvoice(context.Background(), "INV-20250101-0000")
	assert.Error(t, err)

	apiErr, ok := err.(apierror.APIError)
	assert.True(t, ok)
	assert.Equal(t, apierror.ErrNotFound, apiErr.Code)
}

func TestGetAllInvoices_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}

	now := time.Now()
	rows := sqlmock.NewRows([]string{"invoice_number", "client_name", "client_email", "issue_date", "due_date", "description", "amount", "currency", "status", "created_at"}).
		AddRow("INV-20250101-1000", "Ada Lovelace", "ada@example.com", now, now.AddDate(0, 0, 14), "Consulting", "1200.00", "USD", "Pending", now).
		AddRow("INV-20250102-2000", "Alan Turing", "alan@example.com", now, now.AddDate(0, 0, 7), "Hosting", "80.00", "USD", "Paid", now)

	mock.ExpectQuery("SELECT invoice_number, client_name").
		WithArgs(50, 0).
		WillReturnRows(rows)

	invoices, err := ds.GetAllInvoices(context.Background(), 50, 0)
	assert.NoError(t, err)
	assert.Len(t, invoices, 2)
	assert.Equal(t, model.InvoicePaid, invoices[1].Status)
}

func TestUpdateInvoiceStatus_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}

	mock.ExpectExec("UPDATE invoices").
		WithArgs("INV-20250101-0000", model.InvoicePaid).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = ds.UpdateInvoiceStatus(context.Background(), "INV-20250101-0000", model.InvoicePaid)
	assert.Error(t, err)

	apiErr, ok := err.(apierror.APIError)
	assert.True(t, ok)
	assert.Equal(t, apierror.ErrNotFound, apiErr.Code)
}
