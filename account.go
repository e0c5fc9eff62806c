package payflow

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/kaptain9960/payflow/internal/apierror"
	"github.com/kaptain9960/payflow/model"
)

const accountCacheTTL = 5 * time.Minute

// CreateAccount registers a new account. When no number is supplied a random
// ten-digit one is generated.
func (p *Payflow) CreateAccount(ctx context.Context, name, number, currency string, openingBalance decimal.Decimal) (model.Account, error) {
	ctx, span := tracer.Start(ctx, "CreateAccount")
	defer span.End()

	name = strings.TrimSpace(name)
	if name == "" {
		return model.Account{}, apierror.NewAPIError(apierror.ErrInvalidInput, "Account name is required", nil)
	}
	if !model.KnownCurrency(currency) {
		return model.Account{}, apierror.NewAPIError(apierror.ErrInvalidInput, "Unrecognized currency code", nil)
	}
	if openingBalance.IsNegative() {
		return model.Account{}, apierror.NewAPIError(apierror.ErrInvalidInput, "Opening balance can not be negative", nil)
	}
	if number == "" {
		number = generateAccountNumber()
	}

	account := model.Account{
		AccountID: model.GenerateUUIDWithSuffix("acc"),
		Number:    number,
		Name:      name,
		Balance:   openingBalance,
		Currency:  currency,
		CreatedAt: time.Now(),
	}

	return p.datasource.CreateAccount(ctx, account)
}

// GetAccount reads an account through the cache. Balances shown here may be a
// few minutes stale; every funds movement re-reads the balance inside the
// database transaction.
func (p *Payflow) GetAccount(ctx context.Context, number string) (*model.Account, error) {
	var account model.Account
	key := fmt.Sprintf("account:%s", number)
	if err := p.cache.Get(ctx, key, &account); err == nil && account.Number != "" {
		return &account, nil
	}

	fetched, err := p.datasource.GetAccountByNumber(ctx, number)
	if err != nil {
		return nil, err
	}

	if err := p.cache.Set(ctx, key, fetched, accountCacheTTL); err != nil {
		logrus.Warnf("failed to cache account %s: %v", number, err)
	}
	return fetched, nil
}

// SearchAccount is the identifier-resolution step behind the search forms. An
// unknown number is NOT_FOUND, never an empty success.
func (p *Payflow) SearchAccount(ctx context.Context, identifier string) (*model.Account, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil, apierror.NewAPIError(apierror.ErrInvalidInput, "Account number is required", nil)
	}
	return p.datasource.GetAccountByNumber(ctx, identifier)
}

// GetAllAccounts lists accounts newest first.
func (p *Payflow) GetAllAccounts(ctx context.Context, limit, offset int) ([]model.Account, error) {
	return p.datasource.GetAllAccounts(ctx, limit, offset)
}

// GetAccountTransactions returns the account's transaction history, both
// sides of the movement included.
func (p *Payflow) GetAccountTransactions(ctx context.Context, number string, limit, offset int) ([]model.Transaction, error) {
	if _, err := p.datasource.GetAccountByNumber(ctx, number); err != nil {
		return nil, err
	}
	return p.datasource.GetTransactionsByAccount(ctx, number, limit, offset)
}

func generateAccountNumber() string {
	digits := make([]byte, 10)
	for i := range digits {
		digits[i] = byte('0' + rand.Intn(10))
	}
	// leading zero would drop on numeric displays
	if digits[0] == '0' {
		digits[0] = byte('1' + rand.Intn(9))
	}
	return string(digits)
}
