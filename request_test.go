package payflow

import (
	"context"
	"fmt"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"

	"github.com/kaptain9960/payflow/internal/apierror"
	"github.com/kaptain9960/payflow/model"
)

func TestInitiateRequest(t *testing.T) {
	service, mock := newTestService(t)

	expectAccountFetch(mock, "1000000002", "0.00")
	expectAccountFetch(mock, "1000000001", "500.00")
	mock.ExpectExec("INSERT INTO transactions").
		WillReturnResult(sqlmock.NewResult(1, 1))

	// the requester holds no funds; only the configured maximum applies
	txn, err := service.InitiateRequest(context.Background(), "1000000002", "1000000001", "40.00", "Split bill")
	assert.NoError(t, err)
	assert.Equal(t, model.KindRequest, txn.Kind)
	assert.Equal(t, "1000000001", txn.Source)
	assert.Equal(t, "1000000002", txn.Destination)
	assert.Equal(t, model.StatusInitiated, txn.Status)
}

func TestInitiateRequest_ExceedsMaximum(t *testing.T) {
	service, mock := newTestService(t)

	expectAccountFetch(mock, "1000000002", "0.00")
	expectAccountFetch(mock, "1000000001", "500.00")

	_, err := service.InitiateRequest(context.Background(), "1000000002", "1000000001", "10000.01", "")
	assert.Error(t, err)

	apiErr, ok := err.(apierror.APIError)
	assert.True(t, ok)
	assert.Equal(t, apierror.ErrInvalidInput, apiErr.Code)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConfirmRequest(t *testing.T) {
	service, mock := newTestService(t)
	id := "txn_1"

	expectTransactionFetch(mock, id, model.KindRequest, model.StatusInitiated, "1000000001", "1000000002", "40.00")
	mock.ExpectExec("UPDATE transactions").
		WithArgs(id, model.StatusInitiated, model.StatusConfirmed).
		WillReturnResult(sqlmock.NewResult(0, 1))

	txn, err := service.ConfirmRequest(context.Background(), id)
	assert.NoError(t, err)
	assert.Equal(t, model.StatusConfirmed, txn.Status)
}

func TestConfirmRequest_WrongKind(t *testing.T) {
	service, mock := newTestService(t)
	id := "txn_1"

	expectTransactionFetch(mock, id, model.KindTransfer, model.StatusInitiated, "1000000001", "1000000002", "40.00")

	_, err := service.ConfirmRequest(context.Background(), id)
	assert.Error(t, err)

	apiErr, ok := err.(apierror.APIError)
	assert.True(t, ok)
	assert.Equal(t, apierror.ErrConflict, apiErr.Code)
}

func TestSettleRequest(t *testing.T) {
	service, mock := newTestService(t)
	id := "txn_1"

	expectTransactionFetch(mock, id, model.KindRequest, model.StatusConfirmed, "1000000001", "1000000002", "40.00")
	expectAccountFetch(mock, "1000000001", "500.00")

	mock.ExpectExec("UPDATE transactions").
		WithArgs(id, model.StatusConfirmed, model.KindSettlement).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE transactions").
		WithArgs(id, model.StatusConfirmed, model.StatusSettlementPending).
		WillReturnResult(sqlmock.NewResult(0, 1))

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE transactions").
		WithArgs(id, model.StatusSettlementPending, model.StatusProcessing).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE accounts").
		WithArgs("1000000001", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE accounts").
		WithArgs("1000000002", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE transactions").
		WithArgs(id, model.StatusCompleted).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	txn, err := service.SettleRequest(context.Background(), id)
	assert.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, txn.Status)
	assert.Equal(t, model.KindSettlement, txn.Kind)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSettleRequest_ResumesFromSettlementPending(t *testing.T) {
	service, mock := newTestService(t)
	id := "txn_1"

	// the request persisted SETTLEMENT_PENDING but funds never moved; the
	// step skips the kind and status rewrites and picks up at the application
	expectTransactionFetch(mock, id, model.KindSettlement, model.StatusSettlementPending, "1000000001", "1000000002", "40.00")
	expectAccountFetch(mock, "1000000001", "500.00")

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE transactions").
		WithArgs(id, model.StatusSettlementPending, model.StatusProcessing).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE accounts").
		WithArgs("1000000001", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE accounts").
		WithArgs("1000000002", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE transactions").
		WithArgs(id, model.StatusCompleted).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	txn, err := service.SettleRequest(context.Background(), id)
	assert.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, txn.Status)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSettleRequest_AlreadySettled(t *testing.T) {
	service, mock := newTestService(t)
	id := "txn_1"

	expectTransactionFetch(mock, id, model.KindSettlement, model.StatusCompleted, "1000000001", "1000000002", "40.00")

	_, err := service.SettleRequest(context.Background(), id)
	assert.Error(t, err)

	apiErr, ok := err.(apierror.APIError)
	assert.True(t, ok)
	assert.Equal(t, apierror.ErrStateConflict, apiErr.Code)
	assert.Equal(t, fmt.Sprintf("/settlement-completed/1000000001/%s", id), apiErr.RedirectTo)

	// the payer was not debited a second time
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSettleRequest_InsufficientFunds(t *testing.T) {
	service, mock := newTestService(t)
	id := "txn_1"

	expectTransactionFetch(mock, id, model.KindRequest, model.StatusConfirmed, "1000000001", "1000000002", "40.00")
	expectAccountFetch(mock, "1000000001", "5.00")

	_, err := service.SettleRequest(context.Background(), id)
	assert.Error(t, err)

	apiErr, ok := err.(apierror.APIError)
	assert.True(t, ok)
	assert.Equal(t, apierror.ErrInsufficientFunds, apiErr.Code)
}

func TestDeleteRequest(t *testing.T) {
	service, mock := newTestService(t)
	id := "txn_1"

	expectTransactionFetch(mock, id, model.KindRequest, model.StatusInitiated, "1000000001", "1000000002", "40.00")
	mock.ExpectExec("DELETE FROM transactions").
		WithArgs(id, model.StatusInitiated).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := service.DeleteRequest(context.Background(), id)
	assert.NoError(t, err)
}

func TestDeleteRequest_WrongKind(t *testing.T) {
	service, mock := newTestService(t)
	id := "txn_1"

	expectTransactionFetch(mock, id, model.KindTransfer, model.StatusInitiated, "1000000001", "1000000002", "150.00")

	err := service.DeleteRequest(context.Background(), id)
	assert.Error(t, err)

	apiErr, ok := err.(apierror.APIError)
	assert.True(t, ok)
	assert.Equal(t, apierror.ErrConflict, apiErr.Code)

	// the transfer row was never touched
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteRequest_PastInitiated(t *testing.T) {
	service, mock := newTestService(t)
	id := "txn_1"

	expectTransactionFetch(mock, id, model.KindRequest, model.StatusConfirmed, "1000000001", "1000000002", "40.00")
	mock.ExpectExec("DELETE FROM transactions").
		WithArgs(id, model.StatusInitiated).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	expectTransactionFetch(mock, id, model.KindRequest, model.StatusConfirmed, "1000000001", "1000000002", "40.00")

	err := service.DeleteRequest(context.Background(), id)
	assert.Error(t, err)

	apiErr, ok := err.(apierror.APIError)
	assert.True(t, ok)
	assert.Equal(t, apierror.ErrStateConflict, apiErr.Code)
	assert.Equal(t, fmt.Sprintf("/settlement-confirmation/1000000001/%s", id), apiErr.RedirectTo)
}
