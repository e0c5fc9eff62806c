package model

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// GenerateUUIDWithSuffix generates a UUID with a given module name as a prefix.
// This is useful for creating unique identifiers with context-specific prefixes.
func GenerateUUIDWithSuffix(module string) string {
	id := uuid.New()
	uuidStr := id.String()
	idWithSuffix := fmt.Sprintf("%s_%s", module, uuidStr)
	return idWithSuffix
}

// knownCurrencies is the set of currency codes the workflow accepts. Cross
// currency movement is handled by the exchange flow, never implicitly here.
var knownCurrencies = map[string]struct{}{
	"USD": {},
	"EUR": {},
	"GBP": {},
	"NGN": {},
	"KES": {},
	"TZS": {},
}

// KnownCurrency reports whether code is a recognized currency code.
func KnownCurrency(code string) bool {
	_, ok := knownCurrencies[code]
	return ok
}

var (
	ErrInvalidAmount     = errors.New("amount must be a positive number with at most 2 decimal places")
	ErrUnknownCurrency   = errors.New("unrecognized currency code")
	ErrCurrencyMismatch  = errors.New("sender and receiver currencies do not match")
	ErrInsufficientFunds = errors.New("insufficient funds to cover this amount")
)

// ParseAmount parses a submitted amount string into a fixed-point decimal.
// Amounts must be strictly positive and carry at most two fraction digits.
func ParseAmount(raw string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if !amount.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}
	if amount.Exponent() < -2 {
		return decimal.Zero, ErrInvalidAmount
	}
	return amount, nil
}

// ValidateTransferAmount checks a parsed amount against the sender and
// receiver constraints for a direct transfer. Balances may have moved since
// the amount was first entered, so this runs again at confirmation time.
func ValidateTransferAmount(amount decimal.Decimal, currency string, sender, receiver *Account) error {
	if !KnownCurrency(currency) {
		return ErrUnknownCurrency
	}
	if sender.Currency != currency || receiver.Currency != currency {
		return ErrCurrencyMismatch
	}
	if !sender.CanCover(amount) {
		return ErrInsufficientFunds
	}
	return nil
}

// ValidateRequestAmount checks a parsed amount for a payment request. The
// requester holds no funds at this point; only the configured per-transaction
// maximum applies. The payer's balance is checked at settlement.
func ValidateRequestAmount(amount decimal.Decimal, currency string, maxAmount decimal.Decimal, payer, requester *Account) error {
	if !KnownCurrency(currency) {
		return ErrUnknownCurrency
	}
	if payer.Currency != currency || requester.Currency != currency {
		return ErrCurrencyMismatch
	}
	if amount.GreaterThan(maxAmount) {
		return fmt.Errorf("amount exceeds the per-transaction maximum of %s", maxAmount.StringFixed(2))
	}
	return nil
}
