package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	model2 "github.com/kaptain9960/payflow/api/model"
)

// CreateCard registers a credit card against an account. Only the masked
// number leaves this handler.
func (a Api) CreateCard(c *gin.Context) {
	var input model2.CreateCard
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}
	if err := input.ValidateCreateCard(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	card, err := a.payflow.CreateCard(c.Request.Context(), input.AccountNumber, input.CardNumber)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, card)
}

// GetCard returns a single card.
func (a Api) GetCard(c *gin.Context) {
	card, err := a.payflow.GetCard(c.Request.Context(), c.Param("card"))
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, card)
}

// FundCard moves funds from the owning account onto the card.
func (a Api) FundCard(c *gin.Context) {
	var input model2.CardAmount
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}
	if err := input.ValidateCardAmount(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	txn, err := a.payflow.FundCard(c.Request.Context(), c.Param("card"), input.Amount)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, txn)
}

// WithdrawCard moves funds from the card back to the owning account.
func (a Api) WithdrawCard(c *gin.Context) {
	var input model2.CardAmount
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}
	if err := input.ValidateCardAmount(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	txn, err := a.payflow.WithdrawCard(c.Request.Context(), c.Param("card"), input.Amount)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, txn)
}

// DeleteCard removes a zero-balance card.
func (a Api) DeleteCard(c *gin.Context) {
	if err := a.payflow.DeleteCard(c.Request.Context(), c.Param("card")); err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "card deleted"})
}
