package payflow

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/kaptain9960/payflow/internal/apierror"
	redlock "github.com/kaptain9960/payflow/internal/lock"
	"github.com/kaptain9960/payflow/internal/notification"
	"github.com/kaptain9960/payflow/model"
)

const (
	lockDuration  = time.Minute * 5
	lockWaitLimit = time.Second * 10
)

var tracer trace.Tracer = otel.Tracer("payflow.workflow")

// acquireLock serializes funds application per source account. A
// double-submitted step queues behind the first request instead of racing it
// to the balance.
func (p *Payflow) acquireLock(ctx context.Context, source string) (*redlock.Locker, error) {
	locker := redlock.NewLocker(p.redis, source, model.GenerateUUIDWithSuffix("loc"))
	err := locker.WaitLock(ctx, lockDuration, lockWaitLimit)
	if err != nil {
		return nil, err
	}
	return locker, nil
}

func (p *Payflow) releaseLock(ctx context.Context, locker *redlock.Locker) {
	if err := locker.Unlock(ctx); err != nil {
		logrus.Errorf("failed to release lock: %v", err)
	}
}

// stateConflict re-reads the transaction and points the caller at the
// canonical step for wherever it actually is now.
func (p *Payflow) stateConflict(ctx context.Context, id, message string) error {
	txn, err := p.datasource.GetTransaction(ctx, id)
	if err != nil {
		return err
	}
	return apierror.NewStateConflict(message, txn.StepURL())
}

// amountEntryURL is where a flow restarts after a failed balance check.
func amountEntryURL(txn *model.Transaction) string {
	if txn.Kind == model.KindTransfer {
		return fmt.Sprintf("/amount-transfare/%s", txn.Destination)
	}
	return fmt.Sprintf("/amount-request/%s", txn.Source)
}

// GetTransaction looks up a single transaction by its public identifier.
func (p *Payflow) GetTransaction(ctx context.Context, id string) (*model.Transaction, error) {
	return p.datasource.GetTransaction(ctx, id)
}

// GetTransactionStep resolves a transaction for a display step. Invoking a
// step that does not match the current status yields a STATE_CONFLICT with
// the step the caller should be on instead.
func (p *Payflow) GetTransactionStep(ctx context.Context, id string, expected ...model.Status) (*model.Transaction, error) {
	txn, err := p.datasource.GetTransaction(ctx, id)
	if err != nil {
		return nil, err
	}
	for _, status := range expected {
		if txn.Status == status {
			return txn, nil
		}
	}
	return nil, apierror.NewStateConflict(
		fmt.Sprintf("Transaction '%s' is in status '%s'", id, txn.Status), txn.StepURL())
}

// CancelTransaction moves a transaction to CANCELLED if the state machine
// still allows it. Anything in or past PROCESSING stays on its path.
func (p *Payflow) CancelTransaction(ctx context.Context, id string) (*model.Transaction, error) {
	ctx, span := tracer.Start(ctx, "CancelTransaction")
	defer span.End()

	txn, err := p.datasource.GetTransaction(ctx, id)
	if err != nil {
		return nil, err
	}
	if !txn.Status.CanTransitionTo(model.StatusCancelled) {
		return nil, apierror.NewStateConflict(
			fmt.Sprintf("Transaction '%s' can no longer be cancelled", id), txn.StepURL())
	}

	if err := p.datasource.UpdateTransactionStatus(ctx, id, txn.Status, model.StatusCancelled); err != nil {
		if apiErr, ok := err.(apierror.APIError); ok && apiErr.Code == apierror.ErrConflict {
			return nil, p.stateConflict(ctx, id, fmt.Sprintf("Transaction '%s' can no longer be cancelled", id))
		}
		return nil, err
	}

	txn.Status = model.StatusCancelled
	p.postTransactionActions(ctx, txn)
	return txn, nil
}

// postTransactionActions fires the webhook for a transaction that reached a
// terminal status. Delivery failures are reported, never surfaced to the
// caller.
func (p *Payflow) postTransactionActions(_ context.Context, txn *model.Transaction) {
	go func() {
		err := SendWebhook(NewWebhook{
			Event:   getEventFromStatus(txn.Status),
			Payload: txn,
		})
		if err != nil {
			notification.NotifyError(err)
		}
	}()
}
