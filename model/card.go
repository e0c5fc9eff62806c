package model

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type CardBrand string

const (
	BrandVisa       CardBrand = "VISA"
	BrandMastercard CardBrand = "MASTERCARD"
	BrandUnknown    CardBrand = "UNKNOWN"
)

// CreditCard is funded from and withdrawn to its owning account. Both
// directions are recorded on the shared transaction ledger.
type CreditCard struct {
	ID            int64           `json:"-"`
	CardID        string          `json:"id"`
	AccountNumber string          `json:"account_number"`
	MaskedNumber  string          `json:"masked_number"`
	Brand         CardBrand       `json:"brand"`
	Balance       decimal.Decimal `json:"balance"`
	Currency      string          `json:"currency"`
	CreatedAt     time.Time       `json:"created_at"`
}

var (
	visaPattern       = regexp.MustCompile(`^4[0-9]{12}(?:[0-9]{3})?$`)
	mastercardPattern = regexp.MustCompile(`^5[1-5][0-9]{14}$`)
)

// ValidateCardNumber checks a card number and reports its brand. Only Visa
// and Mastercard are accepted.
func ValidateCardNumber(number string) (bool, CardBrand) {
	cleanNum := strings.ReplaceAll(number, " ", "")
	cleanNum = strings.ReplaceAll(cleanNum, "-", "")

	if !passesLuhn(cleanNum) {
		return false, BrandUnknown
	}

	if visaPattern.MatchString(cleanNum) {
		return true, BrandVisa
	}
	if mastercardPattern.MatchString(cleanNum) {
		return true, BrandMastercard
	}
	return false, BrandUnknown
}

// MaskCardNumber keeps only the last four digits visible.
func MaskCardNumber(number string) string {
	cleanNum := strings.ReplaceAll(number, " ", "")
	cleanNum = strings.ReplaceAll(cleanNum, "-", "")
	if len(cleanNum) <= 4 {
		return cleanNum
	}
	return strings.Repeat("*", len(cleanNum)-4) + cleanNum[len(cleanNum)-4:]
}

// passesLuhn implements the standard Mod 10 check used by all banks
func passesLuhn(number string) bool {
	if number == "" {
		return false
	}
	sum := 0
	alternate := false
	for i := len(number) - 1; i >= 0; i-- {
		n, err := strconv.Atoi(string(number[i]))
		if err != nil {
			return false
		}
		if alternate {
			n *= 2
			if n > 9 {
				n -= 9
			}
		}
		sum += n
		alternate = !alternate
	}
	return sum%10 == 0
}
