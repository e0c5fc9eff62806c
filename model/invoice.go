package model

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"github.com/shopspring/decimal"
)

type InvoiceStatus string

const (
	InvoicePending InvoiceStatus = "Pending"
	InvoicePaid    InvoiceStatus = "Paid"
	InvoiceOverdue InvoiceStatus = "Overdue"
)

type Invoice struct {
	ID            int64           `json:"-"`
	InvoiceNumber string          `json:"invoice_number"`
	ClientName    string          `json:"client_name"`
	ClientEmail   string          `json:"client_email"`
	IssueDate     time.Time       `json:"issue_date"`
	DueDate       time.Time       `json:"due_date"`
	Description   string          `json:"description"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	Status        InvoiceStatus   `json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
}

func (invoice *Invoice) ToJSON() ([]byte, error) {
	return json.Marshal(invoice)
}

// EffectiveStatus resolves the display status against a reference date: a
// pending invoice past its due date reads as overdue without being rewritten
// in storage.
func (invoice *Invoice) EffectiveStatus(today time.Time) InvoiceStatus {
	if invoice.Status == InvoicePending && invoice.DueDate.Before(today.Truncate(24*time.Hour)) {
		return InvoiceOverdue
	}
	return invoice.Status
}

// GenerateInvoiceNumber produces an identifier of the shape
// INV-YYYYMMDD-XXXX with the suffix drawn uniformly from [1000, 9999].
// Collisions are possible; callers retry on a duplicate-key failure.
func GenerateInvoiceNumber() string {
	dateStr := time.Now().UTC().Format("20060102")
	randomNum := rand.Intn(9000) + 1000
	return fmt.Sprintf("INV-%s-%d", dateStr, randomNum)
}

// InvoiceStats are the dashboard counters shown on the invoice page.
type InvoiceStats struct {
	Total   int `json:"total_invoices"`
	Paid    int `json:"paid_invoices"`
	Pending int `json:"pending_invoices"`
	Overdue int `json:"overdue_invoices"`
}

// ComputeInvoiceStats tallies invoices by effective status.
func ComputeInvoiceStats(invoices []Invoice, today time.Time) InvoiceStats {
	stats := InvoiceStats{Total: len(invoices)}
	for i := range invoices {
		switch invoices[i].EffectiveStatus(today) {
		case InvoicePaid:
			stats.Paid++
		case InvoiceOverdue:
			stats.Overdue++
		default:
			stats.Pending++
		}
	}
	return stats
}
