package model

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Account is owned by the identity subsystem; the workflow reads it for
// validation and adjusts its balance only inside an atomic settlement.
type Account struct {
	ID        int64                  `json:"-"`
	AccountID string                 `json:"id"`
	Number    string                 `json:"number"`
	Name      string                 `json:"name"`
	Balance   decimal.Decimal        `json:"balance"`
	Currency  string                 `json:"currency"`
	CreatedAt time.Time              `json:"created_at"`
	MetaData  map[string]interface{} `json:"meta_data,omitempty"`
}

func (account *Account) ToJSON() ([]byte, error) {
	return json.Marshal(account)
}

// CanCover reports whether the current balance covers amount. Balances are
// non-negative by construction, so this is the only overdraft guard needed.
func (account *Account) CanCover(amount decimal.Decimal) bool {
	return account.Balance.GreaterThanOrEqual(amount)
}
