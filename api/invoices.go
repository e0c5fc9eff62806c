package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/kaptain9960/payflow"
	model2 "github.com/kaptain9960/payflow/api/model"
)

// CreateInvoice creates an invoice with a generated number.
func (a Api) CreateInvoice(c *gin.Context) {
	var input model2.CreateInvoice
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}
	if err := input.ValidateCreateInvoice(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	amount, err := decimal.NewFromString(input.Amount)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": "amount must be a decimal number"})
		return
	}

	invoice, err := a.payflow.CreateInvoice(c.Request.Context(), payflow.InvoiceInput{
		ClientName:  input.ClientName,
		ClientEmail: input.ClientEmail,
		DueDate:     input.ParsedDueDate(),
		Description: input.Description,
		Amount:      amount,
		Currency:    input.Currency,
	})
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, invoice)
}

// ListInvoices returns invoices plus the dashboard counters.
func (a Api) ListInvoices(c *gin.Context) {
	limit, offset := pagination(c)
	invoices, stats, err := a.payflow.ListInvoices(c.Request.Context(), limit, offset)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"invoices": invoices, "statistics": stats})
}

// GetInvoice returns a single invoice with its effective status.
func (a Api) GetInvoice(c *gin.Context) {
	invoice, err := a.payflow.GetInvoice(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, invoice)
}

// UpdateInvoiceStatus marks an invoice as paid.
func (a Api) UpdateInvoiceStatus(c *gin.Context) {
	var input model2.UpdateInvoiceStatus
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}
	if err := input.ValidateUpdateInvoiceStatus(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	if err := a.payflow.MarkInvoicePaid(c.Request.Context(), c.Param("id")); err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "invoice marked as paid"})
}
