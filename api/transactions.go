/*
Copyright 2024 Payflow Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	model2 "github.com/kaptain9960/payflow/api/model"
	"github.com/kaptain9960/payflow/model"
)

// SearchAccount resolves a counterparty account number submitted from the
// search step. Serves both the transfer and the payment request flows.
func (a Api) SearchAccount(c *gin.Context) {
	var input model2.SearchAccount
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}
	if err := input.ValidateSearchAccount(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	account, err := a.payflow.SearchAccount(c.Request.Context(), input.AccountNumber)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, account)
}

// TransferAmountEntry returns the recipient context for the amount-entry step.
func (a Api) TransferAmountEntry(c *gin.Context) {
	account, err := a.payflow.GetAccount(c.Request.Context(), c.Param("account"))
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recipient": account})
}

// InitiateTransfer creates the transfer transaction in INITIATED. The
// recipient is the route account; the sender comes from the body.
func (a Api) InitiateTransfer(c *gin.Context) {
	var input model2.InitiateTransfer
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}
	if err := input.ValidateInitiateTransfer(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	txn, err := a.payflow.InitiateTransfer(c.Request.Context(), input.Sender, c.Param("account"), input.Amount, input.Description)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, txn)
}

// TransferConfirm shows the confirmation step. A transaction past this step
// redirects to where it actually is.
func (a Api) TransferConfirm(c *gin.Context) {
	txn, err := a.payflow.GetTransactionStep(c.Request.Context(), c.Param("txn"),
		model.StatusInitiated, model.StatusConfirmed, model.StatusProcessing)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, txn)
}

// ProcessTransfer confirms and applies the transfer.
func (a Api) ProcessTransfer(c *gin.Context) {
	txn, err := a.payflow.ProcessTransfer(c.Request.Context(), c.Param("txn"))
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, txn)
}

// TransferCompleted shows the completion step.
func (a Api) TransferCompleted(c *gin.Context) {
	txn, err := a.payflow.GetTransactionStep(c.Request.Context(), c.Param("txn"), model.StatusCompleted)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, txn)
}

// RequestAmountEntry returns the payer context for the amount-entry step.
func (a Api) RequestAmountEntry(c *gin.Context) {
	account, err := a.payflow.GetAccount(c.Request.Context(), c.Param("account"))
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payer": account})
}

// InitiateRequest creates the payment request in INITIATED. The payer is the
// route account; the requester comes from the body.
func (a Api) InitiateRequest(c *gin.Context) {
	var input model2.InitiateRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}
	if err := input.ValidateInitiateRequest(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	txn, err := a.payflow.InitiateRequest(c.Request.Context(), input.Requester, c.Param("account"), input.Amount, input.Description)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, txn)
}

// RequestConfirm shows the payer's confirmation step.
func (a Api) RequestConfirm(c *gin.Context) {
	txn, err := a.payflow.GetTransactionStep(c.Request.Context(), c.Param("txn"), model.StatusInitiated)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, txn)
}

// ProcessRequest records the payer's acknowledgment of the request.
func (a Api) ProcessRequest(c *gin.Context) {
	txn, err := a.payflow.ConfirmRequest(c.Request.Context(), c.Param("txn"))
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, txn)
}

// RequestCompleted shows the completion step of a settled request.
func (a Api) RequestCompleted(c *gin.Context) {
	txn, err := a.payflow.GetTransactionStep(c.Request.Context(), c.Param("txn"), model.StatusCompleted)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, txn)
}

// SettlementConfirmation shows the settlement review step.
func (a Api) SettlementConfirmation(c *gin.Context) {
	txn, err := a.payflow.GetTransactionStep(c.Request.Context(), c.Param("txn"),
		model.StatusConfirmed, model.StatusSettlementPending, model.StatusProcessing)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, txn)
}

// SettlementProcessing settles a confirmed payment request.
func (a Api) SettlementProcessing(c *gin.Context) {
	txn, err := a.payflow.SettleRequest(c.Request.Context(), c.Param("txn"))
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, txn)
}

// SettlementCompleted shows the completion step of a settlement.
func (a Api) SettlementCompleted(c *gin.Context) {
	txn, err := a.payflow.GetTransactionStep(c.Request.Context(), c.Param("txn"), model.StatusCompleted)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, txn)
}

// DeleteRequest removes an unacted payment request.
func (a Api) DeleteRequest(c *gin.Context) {
	if err := a.payflow.DeleteRequest(c.Request.Context(), c.Param("txn")); err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "request deleted"})
}

// CancelTransaction cancels a transaction the state machine still allows out.
func (a Api) CancelTransaction(c *gin.Context) {
	txn, err := a.payflow.CancelTransaction(c.Request.Context(), c.Param("txn"))
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, txn)
}

// TransactionHistory lists an account's transactions, both directions.
func (a Api) TransactionHistory(c *gin.Context) {
	account := c.Query("account")
	if account == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "account query parameter is required"})
		return
	}
	limit, offset := pagination(c)

	transactions, err := a.payflow.GetAccountTransactions(c.Request.Context(), account, limit, offset)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, transactions)
}

// GetTransaction returns a single transaction.
func (a Api) GetTransaction(c *gin.Context) {
	txn, err := a.payflow.GetTransaction(c.Request.Context(), c.Param("txn"))
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, txn)
}

func pagination(c *gin.Context) (int, int) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit <= 0 || limit > 200 {
		limit = 50
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}
	return limit, offset
}
