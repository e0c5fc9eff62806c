package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/kaptain9960/payflow/internal/apierror"
	"github.com/kaptain9960/payflow/model"
)

func (d Datasource) CreateInvoice(ctx context.Context, invoice model.Invoice) (model.Invoice, error) {
	_, err := d.Conn.ExecContext(ctx,
		`INSERT INTO invoices(invoice_number,client_name,client_email,issue_date,due_date,description,amount,currency,status,created_at) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		invoice.InvoiceNumber, invoice.ClientName, invoice.ClientEmail, invoice.IssueDate, invoice.DueDate, invoice.Description, invoice.Amount, invoice.Currency, invoice.Status, invoice.CreatedAt,
	)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return model.Invoice{}, apierror.NewAPIError(apierror.ErrConflict, fmt.Sprintf("Invoice number '%s' already exists", invoice.InvoiceNumber), err)
		}
		return model.Invoice{}, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to create invoice", err)
	}

	return invoice, nil
}

func (d Datasource) GetInvoice(ctx context.Context, number string) (*model.Invoice, error) {
	row := d.Conn.QueryRowContext(ctx, `
		SELECT invoice_number, client_name, client_email, issue_date, due_date, description, amount, currency, status, created_at
		FROM invoices
		WHERE invoice_number = $1
	`, number)

	invoice := &model.Invoice{}
	err := row.Scan(&invoice.InvoiceNumber, &invoice.ClientName, &invoice.ClientEmail, &invoice.IssueDate, &invoice.DueDate, &invoice.Description, &invoice.Amount, &invoice.Currency, &invoice.Status, &invoice.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apierror.NewAPIError(apierror.ErrNotFound, fmt.Sprintf("Invoice with number '%s' not found", number), err)
		}
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve invoice", err)
	}

	return invoice, nil
}

func (d Datasource) GetAllInvoices(ctx context.Context, limit, offset int) ([]model.Invoice, error) {
	rows, err := d.Conn.QueryContext(ctx, `
		SELECT invoice_number, client_name, client_email, issue_date, due_date, description, amount, currency, status, created_at
		FROM invoices
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve invoices", err)
	}
	defer rows.Close()

	var invoices []model.Invoice

	for rows.Next() {
		invoice := model.Invoice{}
		err = rows.Scan(&invoice.InvoiceNumber, &invoice.ClientName, &invoice.ClientEmail, &invoice.IssueDate, &invoice.DueDate, &invoice.Description, &invoice.Amount, &invoice.Currency, &invoice.Status, &invoice.CreatedAt)
		if err != nil {
			return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to scan invoice data", err)
		}

		invoices = append(invoices, invoice)
	}

	if err = rows.Err(); err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Error occurred while iterating over invoices", err)
	}

	return invoices, nil
}

func (d Datasource) UpdateInvoiceStatus(ctx context.Context, number string, status model.InvoiceStatus) error {
	result, err := d.Conn.ExecContext(ctx, `
		UPDATE invoices
		SET status = $2
		WHERE invoice_number = $1
	`, number, status)
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to update invoice status", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to get rows affected", err)
	}

	if rowsAffected == 0 {
		return apierror.NewAPIError(apierror.ErrNotFound, fmt.Sprintf("Invoice with number '%s' not found", number), nil)
	}

	return nil
}
