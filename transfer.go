package payflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kaptain9960/payflow/internal/apierror"
	"github.com/kaptain9960/payflow/model"
)

// InitiateTransfer is the amount-entry step of the direct transfer flow. It
// validates the submitted amount against both accounts and records the
// transaction in INITIATED.
func (p *Payflow) InitiateTransfer(ctx context.Context, senderNumber, recipientNumber, rawAmount, description string) (*model.Transaction, error) {
	ctx, span := tracer.Start(ctx, "InitiateTransfer")
	defer span.End()

	sender, err := p.GetAccount(ctx, senderNumber)
	if err != nil {
		return nil, err
	}
	recipient, err := p.GetAccount(ctx, recipientNumber)
	if err != nil {
		return nil, err
	}
	if sender.Number == recipient.Number {
		return nil, apierror.NewAPIError(apierror.ErrInvalidInput, "Sender and recipient must be different accounts", nil)
	}

	amount, err := model.ParseAmount(rawAmount)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInvalidInput, err.Error(), nil)
	}

	if err := model.ValidateTransferAmount(amount, sender.Currency, sender, recipient); err != nil {
		if errors.Is(err, model.ErrInsufficientFunds) {
			return nil, apierror.NewInsufficientFunds(err.Error(), fmt.Sprintf("/amount-transfare/%s", recipient.Number))
		}
		return nil, apierror.NewAPIError(apierror.ErrInvalidInput, err.Error(), nil)
	}

	txn := &model.Transaction{
		TransactionID: model.GenerateUUIDWithSuffix("txn"),
		Kind:          model.KindTransfer,
		Source:        sender.Number,
		Destination:   recipient.Number,
		Amount:        amount,
		Currency:      sender.Currency,
		Description:   description,
		Status:        model.StatusInitiated,
		CreatedAt:     time.Now(),
		MetaData: map[string]interface{}{
			"initiated_by": sender.Number,
		},
	}

	return p.datasource.RecordTransaction(ctx, txn)
}

// ProcessTransfer is the confirmation step. It re-checks the sender's balance
// under the source lock, confirms the transaction, and applies the funds
// movement. A transaction that already completed redirects to its completion
// step with no second debit.
func (p *Payflow) ProcessTransfer(ctx context.Context, id string) (*model.Transaction, error) {
	ctx, span := tracer.Start(ctx, "ProcessTransfer")
	defer span.End()

	txn, err := p.datasource.GetTransaction(ctx, id)
	if err != nil {
		return nil, err
	}
	if txn.Kind != model.KindTransfer {
		return nil, apierror.NewAPIError(apierror.ErrConflict, fmt.Sprintf("Transaction '%s' is not a transfer", id), nil)
	}
	if txn.Status.Terminal() {
		return nil, apierror.NewStateConflict(
			fmt.Sprintf("Transaction '%s' is already %s", id, txn.Status), txn.StepURL())
	}

	locker, err := p.acquireLock(ctx, txn.Source)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to acquire transaction lock", err)
	}
	defer p.releaseLock(ctx, locker)

	sender, err := p.datasource.GetAccountByNumber(ctx, txn.Source)
	if err != nil {
		return nil, err
	}
	if !sender.CanCover(txn.Amount) {
		return nil, apierror.NewInsufficientFunds(
			fmt.Sprintf("Account '%s' can not cover %s %s", sender.Number, txn.Currency, txn.Amount.StringFixed(2)),
			amountEntryURL(txn))
	}

	// A transfer already sitting in CONFIRMED resumes at the funds
	// application; the CAS inside ApplyTransaction still admits a single
	// application.
	if txn.Status == model.StatusInitiated {
		if err := p.datasource.UpdateTransactionStatus(ctx, id, model.StatusInitiated, model.StatusConfirmed); err != nil {
			if apiErr, ok := err.(apierror.APIError); ok && apiErr.Code == apierror.ErrConflict {
				return nil, p.stateConflict(ctx, id, fmt.Sprintf("Transaction '%s' was already confirmed", id))
			}
			return nil, err
		}
	}

	applied, err := p.datasource.ApplyTransaction(ctx, txn, model.StatusConfirmed)
	if err != nil {
		apiErr, ok := err.(apierror.APIError)
		if ok && apiErr.Code == apierror.ErrInsufficientFunds {
			return nil, apierror.NewInsufficientFunds(apiErr.Message, amountEntryURL(txn))
		}
		if ok && apiErr.Code == apierror.ErrConflict {
			return nil, p.stateConflict(ctx, id, fmt.Sprintf("Transaction '%s' was already processed", id))
		}
		return nil, err
	}

	p.postTransactionActions(ctx, applied)
	return applied, nil
}
