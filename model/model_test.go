package model

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestGenerateUUIDWithSuffix(t *testing.T) {
	module := "txn"
	id := GenerateUUIDWithSuffix(module)
	assert.Contains(t, id, module+"_")
}

func TestParseAmount(t *testing.T) {
	amount, err := ParseAmount("150.25")
	assert.NoError(t, err)
	assert.True(t, amount.Equal(decimal.RequireFromString("150.25")))

	_, err = ParseAmount("0")
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = ParseAmount("-10.00")
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = ParseAmount("10.123")
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = ParseAmount("not-a-number")
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestValidateTransferAmount(t *testing.T) {
	sender := &Account{Number: "1000000001", Balance: decimal.RequireFromString("100.00"), Currency: "USD"}
	receiver := &Account{Number: "1000000002", Balance: decimal.Zero, Currency: "USD"}

	err := ValidateTransferAmount(decimal.RequireFromString("50.00"), "USD", sender, receiver)
	assert.NoError(t, err)

	err = ValidateTransferAmount(decimal.RequireFromString("150.00"), "USD", sender, receiver)
	assert.ErrorIs(t, err, ErrInsufficientFunds)

	err = ValidateTransferAmount(decimal.RequireFromString("50.00"), "XXX", sender, receiver)
	assert.ErrorIs(t, err, ErrUnknownCurrency)

	receiver.Currency = "EUR"
	err = ValidateTransferAmount(decimal.RequireFromString("50.00"), "USD", sender, receiver)
	assert.ErrorIs(t, err, ErrCurrencyMismatch)
}

func TestValidateRequestAmount(t *testing.T) {
	payer := &Account{Number: "1000000001", Balance: decimal.Zero, Currency: "USD"}
	requester := &Account{Number: "1000000002", Balance: decimal.Zero, Currency: "USD"}
	maxAmount := decimal.RequireFromString("10000.00")

	// no balance check on the requester side
	err := ValidateRequestAmount(decimal.RequireFromString("9999.99"), "USD", maxAmount, payer, requester)
	assert.NoError(t, err)

	err = ValidateRequestAmount(decimal.RequireFromString("10000.01"), "USD", maxAmount, payer, requester)
	assert.ErrorContains(t, err, "per-transaction maximum")
}
