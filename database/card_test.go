package database

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/kaptain9960/payflow/internal/apierror"
	"github.com/kaptain9960/payflow/model"
)

func testCard() *model.CreditCard {
	return &model.CreditCard{
		CardID:        "card_1",
		AccountNumber: "1000000001",
		MaskedNumber:  "**** **** **** 4242",
		Brand:         model.BrandVisa,
		Balance:       decimal.RequireFromString("100.00"),
		Currency:      "USD",
		CreatedAt:     time.Now(),
	}
}

func TestApplyCardMovement_Fund(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}
	card := testCard()

	txn := &model.Transaction{
		TransactionID: "txn_1",
		Kind:          model.KindCardFunding,
		Source:        card.AccountNumber,
		Destination:   card.CardID,
		Amount:        decimal.RequireFromString("50.00"),
		Currency:      "USD",
		CreatedAt:     time.Now(),
	}

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE accounts").
		WithArgs(card.AccountNumber, txn.Amount).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE credit_cards").
		WithArgs(card.CardID, txn.Amount).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO transactions").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	applied, err := ds.ApplyCardMovement(context.Background(), card, txn.Amount, txn)
	assert.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, applied.Status)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplyCardMovement_WithdrawInsufficient(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}
	card := testCard()

	amount := decimal.RequireFromString("-500.00")
	txn := &model.Transaction{
		TransactionID: "txn_1",
		Kind:          model.KindCardWithdrawal,
		Source:        card.CardID,
		Destination:   card.AccountNumber,
		Currency:      "USD",
		CreatedAt:     time.Now(),
	}

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE credit_cards").
		WithArgs(card.CardID, amount.Abs()).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, err = ds.ApplyCardMovement(context.Background(), card, amount, txn)
	assert.Error(t, err)

	apiErr, ok := err.(apierror.APIError)
	assert.True(t, ok)
	assert.Equal(t, apierror.ErrInsufficientFunds, apiErr.Code)
}

func TestDeleteCard_HoldsFunds(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}

	mock.ExpectExec("DELETE FROM credit_cards").
		WithArgs("card_1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("card_1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	err = ds.DeleteCard(context.Background(), "card_1")
	assert.Error(t, err)

	apiErr, ok := err.(apierror.APIError)
	assert.True(t, ok)
	assert.Equal(t, apierror.ErrConflict, apiErr.Code)
}

func TestDeleteCard_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}

	mock.ExpectExec("DELETE FROM credit_cards").
		WithArgs("card_1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = ds.DeleteCard(context.Background(), "card_1")
	assert.NoError(t, err)
}
