package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	model2 "github.com/kaptain9960/payflow/api/model"
)

// CreateAccount registers a new account.
func (a Api) CreateAccount(c *gin.Context) {
	var input model2.CreateAccount
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}
	if err := input.ValidateCreateAccount(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	openingBalance := decimal.Zero
	if input.OpeningBalance != "" {
		parsed, err := decimal.NewFromString(input.OpeningBalance)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"errors": "opening_balance must be a decimal number"})
			return
		}
		openingBalance = parsed
	}

	account, err := a.payflow.CreateAccount(c.Request.Context(), input.Name, input.Number, input.Currency, openingBalance)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, account)
}

// GetAccount returns a single account by number.
func (a Api) GetAccount(c *gin.Context) {
	account, err := a.payflow.GetAccount(c.Request.Context(), c.Param("number"))
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, account)
}

// GetAllAccounts lists accounts.
func (a Api) GetAllAccounts(c *gin.Context) {
	limit, offset := pagination(c)
	accounts, err := a.payflow.GetAllAccounts(c.Request.Context(), limit, offset)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, accounts)
}
