package payflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kaptain9960/payflow/config"
	"github.com/kaptain9960/payflow/internal/apierror"
	"github.com/kaptain9960/payflow/model"
)

// InitiateRequest is the amount-entry step of the payment request flow. The
// requester names a payer and an amount; funds only move later, at
// settlement. The amount is capped by the configured per-transaction maximum.
func (p *Payflow) InitiateRequest(ctx context.Context, requesterNumber, payerNumber, rawAmount, description string) (*model.Transaction, error) {
	ctx, span := tracer.Start(ctx, "InitiateRequest")
	defer span.End()

	requester, err := p.GetAccount(ctx, requesterNumber)
	if err != nil {
		return nil, err
	}
	payer, err := p.GetAccount(ctx, payerNumber)
	if err != nil {
		return nil, err
	}
	if requester.Number == payer.Number {
		return nil, apierror.NewAPIError(apierror.ErrInvalidInput, "Requester and payer must be different accounts", nil)
	}

	amount, err := model.ParseAmount(rawAmount)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInvalidInput, err.Error(), nil)
	}

	cfg, err := config.Fetch()
	if err != nil {
		return nil, err
	}
	maxAmount, err := decimal.NewFromString(cfg.Transaction.MaxRequestAmount)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Invalid max request amount configured", err)
	}

	if err := model.ValidateRequestAmount(amount, requester.Currency, maxAmount, payer, requester); err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInvalidInput, err.Error(), nil)
	}

	txn := &model.Transaction{
		TransactionID: model.GenerateUUIDWithSuffix("txn"),
		Kind:          model.KindRequest,
		Source:        payer.Number,
		Destination:   requester.Number,
		Amount:        amount,
		Currency:      requester.Currency,
		Description:   description,
		Status:        model.StatusInitiated,
		CreatedAt:     time.Now(),
		MetaData: map[string]interface{}{
			"requested_by": requester.Number,
		},
	}

	return p.datasource.RecordTransaction(ctx, txn)
}

// ConfirmRequest is the payer's acknowledgment step. It moves the request to
// CONFIRMED without touching balances.
func (p *Payflow) ConfirmRequest(ctx context.Context, id string) (*model.Transaction, error) {
	ctx, span := tracer.Start(ctx, "ConfirmRequest")
	defer span.End()

	txn, err := p.datasource.GetTransaction(ctx, id)
	if err != nil {
		return nil, err
	}
	if txn.Kind != model.KindRequest {
		return nil, apierror.NewAPIError(apierror.ErrConflict, fmt.Sprintf("Transaction '%s' is not a payment request", id), nil)
	}

	if err := p.datasource.UpdateTransactionStatus(ctx, id, model.StatusInitiated, model.StatusConfirmed); err != nil {
		if apiErr, ok := err.(apierror.APIError); ok && apiErr.Code == apierror.ErrConflict {
			return nil, p.stateConflict(ctx, id, fmt.Sprintf("Transaction '%s' was already confirmed", id))
		}
		return nil, err
	}

	txn.Status = model.StatusConfirmed
	return txn, nil
}

// SettleRequest applies a confirmed payment request: the transaction's kind
// becomes settlement, the payer is debited and the requester credited under
// the payer's lock. Settling the same request twice redirects to the
// completion step with no second debit.
func (p *Payflow) SettleRequest(ctx context.Context, id string) (*model.Transaction, error) {
	ctx, span := tracer.Start(ctx, "SettleRequest")
	defer span.End()

	txn, err := p.datasource.GetTransaction(ctx, id)
	if err != nil {
		return nil, err
	}
	if txn.Kind != model.KindRequest && txn.Kind != model.KindSettlement {
		return nil, apierror.NewAPIError(apierror.ErrConflict, fmt.Sprintf("Transaction '%s' is not a payment request", id), nil)
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

	payer, err := p.datasource.GetAccountByNumber(ctx, txn.Source)
	if err != nil {
		return nil, err
	}
	if !payer.CanCover(txn.Amount) {
		return nil, apierror.NewInsufficientFunds(
			fmt.Sprintf("Account '%s' can not cover %s %s", payer.Number, txn.Currency, txn.Amount.StringFixed(2)),
			txn.StepURL())
	}

	// A request already in SETTLEMENT_PENDING resumes at the funds
	// application; the CAS inside ApplyTransaction still admits a single
	// application.
	if txn.Status != model.StatusSettlementPending {
		if err := p.datasource.UpdateTransactionKind(ctx, id, model.StatusConfirmed, model.KindSettlement); err != nil {
			if apiErr, ok := err.(apierror.APIError); ok && apiErr.Code == apierror.ErrConflict {
				return nil, p.stateConflict(ctx, id, fmt.Sprintf("Transaction '%s' is not awaiting settlement", id))
			}
			return nil, err
		}
		txn.Kind = model.KindSettlement

		if err := p.datasource.UpdateTransactionStatus(ctx, id, model.StatusConfirmed, model.StatusSettlementPending); err != nil {
			if apiErr, ok := err.(apierror.APIError); ok && apiErr.Code == apierror.ErrConflict {
				return nil, p.stateConflict(ctx, id, fmt.Sprintf("Transaction '%s' is not awaiting settlement", id))
			}
			return nil, err
		}
	}

	applied, err := p.datasource.ApplyTransaction(ctx, txn, model.StatusSettlementPending)
	if err != nil {
		apiErr, ok := err.(apierror.APIError)
		if ok && apiErr.Code == apierror.ErrInsufficientFunds {
			return nil, apierror.NewInsufficientFunds(apiErr.Message, txn.StepURL())
		}
		if ok && apiErr.Code == apierror.ErrConflict {
			return nil, p.stateConflict(ctx, id, fmt.Sprintf("Transaction '%s' was already settled", id))
		}
		return nil, err
	}

	p.postTransactionActions(ctx, applied)
	return applied, nil
}

// DeleteRequest removes a payment request nobody has acted on. Requests past
// INITIATED redirect to their current step instead of being deleted; other
// transaction kinds are never deletable through this step.
func (p *Payflow) DeleteRequest(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "DeleteRequest")
	defer span.End()

	txn, err := p.datasource.GetTransaction(ctx, id)
	if err != nil {
		return err
	}
	if txn.Kind != model.KindRequest {
		return apierror.NewAPIError(apierror.ErrConflict, fmt.Sprintf("Transaction '%s' is not a payment request", id), nil)
	}

	err = p.datasource.DeleteTransaction(ctx, id)
	if err != nil {
		var apiErr apierror.APIError
		if errors.As(err, &apiErr) && apiErr.Code == apierror.ErrConflict {
			return p.stateConflict(ctx, id, apiErr.Message)
		}
		return err
	}
	return nil
}
