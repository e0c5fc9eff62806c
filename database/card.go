package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"

	"github.com/kaptain9960/payflow/internal/apierror"
	"github.com/kaptain9960/payflow/model"
)

func (d Datasource) CreateCard(ctx context.Context, card model.CreditCard) (model.CreditCard, error) {
	_, err := d.Conn.ExecContext(ctx,
		`INSERT INTO credit_cards(card_id,account_number,masked_number,brand,balance,currency,created_at) VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		card.CardID, card.AccountNumber, card.MaskedNumber, card.Brand, card.Balance, card.Currency, card.CreatedAt,
	)

	if err != nil {
		return model.CreditCard{}, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to create card", err)
	}

	return card, nil
}

func (d Datasource) GetCard(ctx context.Context, id string) (*model.CreditCard, error) {
	row := d.Conn.QueryRowContext(ctx, `
		SELECT card_id, account_number, masked_number, brand, balance, currency, created_at
		FROM credit_cards
		WHERE card_id = $1
	`, id)

	card := &model.CreditCard{}
	err := row.Scan(&card.CardID, &card.AccountNumber, &card.MaskedNumber, &card.Brand, &card.Balance, &card.Currency, &card.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apierror.NewAPIError(apierror.ErrNotFound, fmt.Sprintf("Card with ID '%s' not found", id), err)
		}
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve card", err)
	}

	return card, nil
}

// ApplyCardMovement moves funds between a card and its owning account and
// records the completed transaction in one atomic unit. A positive amount
// funds the card from the account, a negative amount withdraws back.
func (d Datasource) ApplyCardMovement(ctx context.Context, card *model.CreditCard, amount decimal.Decimal, txn *model.Transaction) (*model.Transaction, error) {
	ctx, span := otel.Tracer("payflow.database").Start(ctx, "Applying card movement")
	defer span.End()

	tx, err := d.Conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to begin transaction", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	magnitude := amount.Abs()

	if amount.Sign() > 0 {
		result, err := tx.ExecContext(ctx, `
			UPDATE accounts
			SET balance = balance - $2
			WHERE number = $1 AND balance >= $2
		`, card.AccountNumber, magnitude)
		if err != nil {
			return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to debit account", err)
		}
		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to get rows affected", err)
		}
		if rowsAffected == 0 {
			return nil, apierror.NewAPIError(apierror.ErrInsufficientFunds, fmt.Sprintf("Account '%s' can not cover %s %s", card.AccountNumber, card.Currency, magnitude.StringFixed(2)), nil)
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE credit_cards
			SET balance = balance + $2
			WHERE card_id = $1
		`, card.CardID, magnitude)
		if err != nil {
			return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to credit card", err)
		}
	} else {
		result, err := tx.ExecContext(ctx, `
			UPDATE credit_cards
			SET balance = balance - $2
			WHERE card_id = $1 AND balance >= $2
		`, card.CardID, magnitude)
		if err != nil {
			return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to debit card", err)
		}
		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to get rows affected", err)
		}
		if rowsAffected == 0 {
			return nil, apierror.NewAPIError(apierror.ErrInsufficientFunds, fmt.Sprintf("Card '%s' can not cover %s %s", card.MaskedNumber, card.Currency, magnitude.StringFixed(2)), nil)
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE accounts
			SET balance = balance + $2
			WHERE number = $1
		`, card.AccountNumber, magnitude)
		if err != nil {
			return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to credit account", err)
		}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO transactions(transaction_id,kind,source,destination,amount,currency,description,status,created_at) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		txn.TransactionID, txn.Kind, txn.Source, txn.Destination, magnitude, txn.Currency, txn.Description, model.StatusCompleted, txn.CreatedAt,
	)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to record card transaction", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to commit card movement", err)
	}

	txn.Status = model.StatusCompleted
	return txn, nil
}

// DeleteCard removes a card that holds no funds. Cards with a balance must be
// withdrawn first.
func (d Datasource) DeleteCard(ctx context.Context, id string) error {
	result, err := d.Conn.ExecContext(ctx, `
		DELETE FROM credit_cards
		WHERE card_id = $1 AND balance = 0
	`, id)
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to delete card", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to get rows affected", err)
	}

	if rowsAffected == 0 {
		var exists bool
		err = d.Conn.QueryRowContext(ctx, `
			SELECT EXISTS(SELECT 1 FROM credit_cards WHERE card_id = $1)
		`, id).Scan(&exists)
		if err != nil {
			return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to check card existence", err)
		}
		if exists {
			return apierror.NewAPIError(apierror.ErrConflict, fmt.Sprintf("Card '%s' still holds funds", id), nil)
		}
		return apierror.NewAPIError(apierror.ErrNotFound, fmt.Sprintf("Card with ID '%s' not found", id), nil)
	}

	return nil
}
