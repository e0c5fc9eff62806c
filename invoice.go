package payflow

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/shopspring/decimal"

	"github.com/kaptain9960/payflow/config"
	"github.com/kaptain9960/payflow/internal/apierror"
	"github.com/kaptain9960/payflow/model"
)

// InvoiceInput is the typed payload of invoice creation.
type InvoiceInput struct {
	ClientName  string
	ClientEmail string
	DueDate     time.Time
	Description string
	Amount      decimal.Decimal
	Currency    string
}

// CreateInvoice generates an invoice number and persists the invoice. The
// number generator does not guarantee uniqueness, so a duplicate-key failure
// regenerates and retries up to the configured attempt count.
func (p *Payflow) CreateInvoice(ctx context.Context, input InvoiceInput) (model.Invoice, error) {
	ctx, span := tracer.Start(ctx, "CreateInvoice")
	defer span.End()

	if strings.TrimSpace(input.ClientName) == "" {
		return model.Invoice{}, apierror.NewAPIError(apierror.ErrInvalidInput, "Client name is required", nil)
	}
	if !model.KnownCurrency(input.Currency) {
		return model.Invoice{}, apierror.NewAPIError(apierror.ErrInvalidInput, "Unrecognized currency code", nil)
	}
	if !input.Amount.IsPositive() {
		return model.Invoice{}, apierror.NewAPIError(apierror.ErrInvalidInput, "Invoice amount must be positive", nil)
	}

	cfg, err := config.Fetch()
	if err != nil {
		return model.Invoice{}, err
	}

	now := time.Now().UTC()
	dueDate := input.DueDate
	if dueDate.IsZero() {
		dueDate = now.AddDate(0, 0, 14)
	} else if !dueDate.After(now.Truncate(24 * time.Hour)) {
		return model.Invoice{}, apierror.NewAPIError(apierror.ErrInvalidInput, "Due date must be after the issue date", nil)
	}

	var created model.Invoice
	operation := func() error {
		invoice := model.Invoice{
			InvoiceNumber: model.GenerateInvoiceNumber(),
			ClientName:    input.ClientName,
			ClientEmail:   input.ClientEmail,
			IssueDate:     now,
			DueDate:       dueDate,
			Description:   input.Description,
			Amount:        input.Amount,
			Currency:      input.Currency,
			Status:        model.InvoicePending,
			CreatedAt:     now,
		}
		saved, err := p.datasource.CreateInvoice(ctx, invoice)
		if err != nil {
			var apiErr apierror.APIError
			if errors.As(err, &apiErr) && apiErr.Code == apierror.ErrConflict {
				return err
			}
			return backoff.Permanent(err)
		}
		created = saved
		return nil
	}

	retries := uint64(cfg.Transaction.InvoiceMaxAttempts - 1)
	err = backoff.Retry(operation, backoff.WithMaxRetries(backoff.NewExponentialBackOff(), retries))
	if err != nil {
		var apiErr apierror.APIError
		if errors.As(err, &apiErr) && apiErr.Code != apierror.ErrConflict {
			return model.Invoice{}, err
		}
		return model.Invoice{}, apierror.NewAPIError(apierror.ErrInternalServer, "Could not allocate a unique invoice number", err)
	}

	return created, nil
}

// GetInvoice looks up an invoice and resolves its effective status; a pending
// invoice past its due date reads as overdue.
func (p *Payflow) GetInvoice(ctx context.Context, number string) (*model.Invoice, error) {
	invoice, err := p.datasource.GetInvoice(ctx, number)
	if err != nil {
		return nil, err
	}
	invoice.Status = invoice.EffectiveStatus(time.Now().UTC())
	return invoice, nil
}

// ListInvoices returns invoices newest first along with the dashboard
// counters.
func (p *Payflow) ListInvoices(ctx context.Context, limit, offset int) ([]model.Invoice, model.InvoiceStats, error) {
	invoices, err := p.datasource.GetAllInvoices(ctx, limit, offset)
	if err != nil {
		return nil, model.InvoiceStats{}, err
	}

	today := time.Now().UTC()
	stats := model.ComputeInvoiceStats(invoices, today)
	for i := range invoices {
		invoices[i].Status = invoices[i].EffectiveStatus(today)
	}
	return invoices, stats, nil
}

// MarkInvoicePaid settles an invoice. Paid is terminal for invoices; the
// overdue state is derived, never stored.
func (p *Payflow) MarkInvoicePaid(ctx context.Context, number string) error {
	ctx, span := tracer.Start(ctx, "MarkInvoicePaid")
	defer span.End()

	invoice, err := p.datasource.GetInvoice(ctx, number)
	if err != nil {
		return err
	}
	if invoice.Status == model.InvoicePaid {
		return apierror.NewAPIError(apierror.ErrConflict, "Invoice is already paid", nil)
	}
	return p.datasource.UpdateInvoiceStatus(ctx, number, model.InvoicePaid)
}
