package payflow

import (
	"context"
	"fmt"
	"time"

	"github.com/kaptain9960/payflow/internal/apierror"
	"github.com/kaptain9960/payflow/model"
)

// CreateCard registers a credit card against an existing account. The full
// number is validated and never stored; only the masked form is kept.
func (p *Payflow) CreateCard(ctx context.Context, accountNumber, cardNumber string) (model.CreditCard, error) {
	ctx, span := tracer.Start(ctx, "CreateCard")
	defer span.End()

	account, err := p.datasource.GetAccountByNumber(ctx, accountNumber)
	if err != nil {
		return model.CreditCard{}, err
	}

	valid, brand := model.ValidateCardNumber(cardNumber)
	if !valid {
		return model.CreditCard{}, apierror.NewAPIError(apierror.ErrInvalidInput, "Card number is not a valid Visa or Mastercard number", nil)
	}

	card := model.CreditCard{
		CardID:        model.GenerateUUIDWithSuffix("crd"),
		AccountNumber: account.Number,
		MaskedNumber:  model.MaskCardNumber(cardNumber),
		Brand:         brand,
		Currency:      account.Currency,
		CreatedAt:     time.Now(),
	}

	return p.datasource.CreateCard(ctx, card)
}

// GetCard looks up a card by its identifier.
func (p *Payflow) GetCard(ctx context.Context, id string) (*model.CreditCard, error) {
	return p.datasource.GetCard(ctx, id)
}

// FundCard moves funds from the owning account onto the card. The movement is
// recorded on the shared ledger as a completed card_funding transaction.
func (p *Payflow) FundCard(ctx context.Context, id, rawAmount string) (*model.Transaction, error) {
	ctx, span := tracer.Start(ctx, "FundCard")
	defer span.End()

	card, err := p.datasource.GetCard(ctx, id)
	if err != nil {
		return nil, err
	}
	amount, err := model.ParseAmount(rawAmount)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInvalidInput, err.Error(), nil)
	}

	locker, err := p.acquireLock(ctx, card.AccountNumber)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to acquire account lock", err)
	}
	defer p.releaseLock(ctx, locker)

	txn := &model.Transaction{
		TransactionID: model.GenerateUUIDWithSuffix("txn"),
		Kind:          model.KindCardFunding,
		Source:        card.AccountNumber,
		Destination:   card.CardID,
		Amount:        amount,
		Currency:      card.Currency,
		Description:   fmt.Sprintf("Fund card %s", card.MaskedNumber),
		CreatedAt:     time.Now(),
	}

	applied, err := p.datasource.ApplyCardMovement(ctx, card, amount, txn)
	if err != nil {
		return nil, err
	}
	p.postTransactionActions(ctx, applied)
	return applied, nil
}

// WithdrawCard moves funds off the card back to the owning account.
func (p *Payflow) WithdrawCard(ctx context.Context, id, rawAmount string) (*model.Transaction, error) {
	ctx, span := tracer.Start(ctx, "WithdrawCard")
	defer span.End()

	card, err := p.datasource.GetCard(ctx, id)
	if err != nil {
		return nil, err
	}
	amount, err := model.ParseAmount(rawAmount)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInvalidInput, err.Error(), nil)
	}

	locker, err := p.acquireLock(ctx, card.AccountNumber)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to acquire account lock", err)
	}
	defer p.releaseLock(ctx, locker)

	txn := &model.Transaction{
		TransactionID: model.GenerateUUIDWithSuffix("txn"),
		Kind:          model.KindCardWithdrawal,
		Source:        card.CardID,
		Destination:   card.AccountNumber,
		Amount:        amount,
		Currency:      card.Currency,
		Description:   fmt.Sprintf("Withdraw from card %s", card.MaskedNumber),
		CreatedAt:     time.Now(),
	}

	applied, err := p.datasource.ApplyCardMovement(ctx, card, amount.Neg(), txn)
	if err != nil {
		return nil, err
	}
	p.postTransactionActions(ctx, applied)
	return applied, nil
}

// DeleteCard removes a card once its balance has been withdrawn to zero.
func (p *Payflow) DeleteCard(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "DeleteCard")
	defer span.End()

	return p.datasource.DeleteCard(ctx, id)
}
