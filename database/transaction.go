package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"

	"github.com/kaptain9960/payflow/internal/apierror"
	"github.com/kaptain9960/payflow/model"

	_ "github.com/lib/pq"
)

func (d Datasource) RecordTransaction(ctx context.Context, txn *model.Transaction) (*model.Transaction, error) {
	ctx, span := otel.Tracer("payflow.database").Start(ctx, "Saving transaction to db")
	defer span.End()

	metaDataJSON, err := json.Marshal(txn.MetaData)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to marshal metadata", err)
	}

	_, err = d.Conn.ExecContext(ctx,
		`INSERT INTO transactions(transaction_id,kind,source,destination,amount,currency,description,status,created_at,meta_data) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		txn.TransactionID, txn.Kind, txn.Source, txn.Destination, txn.Amount, txn.Currency, txn.Description, txn.Status, txn.CreatedAt, metaDataJSON,
	)

	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to record transaction", err)
	}

	return txn, nil
}

func (d Datasource) GetTransaction(ctx context.Context, id string) (*model.Transaction, error) {
	row := d.Conn.QueryRowContext(ctx, `
		SELECT transaction_id, kind, source, destination, amount, currency, description, status, created_at, meta_data
		FROM transactions
		WHERE transaction_id = $1
	`, id)

	txn := &model.Transaction{}
	var metaDataJSON []byte
	err := row.Scan(&txn.TransactionID, &txn.Kind, &txn.Source, &txn.Destination, &txn.Amount, &txn.Currency, &txn.Description, &txn.Status, &txn.CreatedAt, &metaDataJSON)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apierror.NewAPIError(apierror.ErrNotFound, fmt.Sprintf("Transaction with ID '%s' not found", id), err)
		}
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve transaction", err)
	}

	if len(metaDataJSON) > 0 {
		err = json.Unmarshal(metaDataJSON, &txn.MetaData)
		if err != nil {
			return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to unmarshal metadata", err)
		}
	}

	return txn, nil
}

func (d Datasource) GetTransactionsByAccount(ctx context.Context, number string, limit, offset int) ([]model.Transaction, error) {
	rows, err := d.Conn.QueryContext(ctx, `
		SELECT transaction_id, kind, source, destination, amount, currency, description, status, created_at, meta_data
		FROM transactions
		WHERE source = $1 OR destination = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, number, limit, offset)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve transactions", err)
	}
	defer rows.Close()

	var transactions []model.Transaction

	for rows.Next() {
		transaction := model.Transaction{}
		var metaDataJSON []byte
		err = rows.Scan(
			&transaction.TransactionID,
			&transaction.Kind,
			&transaction.Source,
			&transaction.Destination,
			&transaction.Amount,
			&transaction.Currency,
			&transaction.Description,
			&transaction.Status,
			&transaction.CreatedAt,
			&metaDataJSON,
		)
		if err != nil {
			return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to scan transaction data", err)
		}

		if len(metaDataJSON) > 0 {
			err = json.Unmarshal(metaDataJSON, &transaction.MetaData)
			if err != nil {
				return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to unmarshal metadata", err)
			}
		}

		transactions = append(transactions, transaction)
	}

	if err = rows.Err(); err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Error occurred while iterating over transactions", err)
	}

	return transactions, nil
}

// UpdateTransactionStatus transitions a transaction from expected to next.
// The status predicate makes the update a compare-and-swap: of two racing
// requests only one sees rows affected.
func (d Datasource) UpdateTransactionStatus(ctx context.Context, id string, expected, next model.Status) error {
	result, err := d.Conn.ExecContext(ctx, `
		UPDATE transactions
		SET status = $3
		WHERE transaction_id = $1 AND status = $2
	`, id, expected, next)

	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to update transaction status", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to get rows affected", err)
	}

	if rowsAffected == 0 {
		return apierror.NewAPIError(apierror.ErrConflict, fmt.Sprintf("Transaction '%s' is no longer in status '%s'", id, expected), nil)
	}

	return nil
}

// UpdateTransactionKind rewrites the flow kind, guarded by the same status
// predicate as a status CAS. Used when a payment request enters settlement.
func (d Datasource) UpdateTransactionKind(ctx context.Context, id string, expected model.Status, kind model.Kind) error {
	result, err := d.Conn.ExecContext(ctx, `
		UPDATE transactions
		SET kind = $3
		WHERE transaction_id = $1 AND status = $2
	`, id, expected, kind)

	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to update transaction kind", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to get rows affected", err)
	}

	if rowsAffected == 0 {
		return apierror.NewAPIError(apierror.ErrConflict, fmt.Sprintf("Transaction '%s' is no longer in status '%s'", id, expected), nil)
	}

	return nil
}

// ApplyTransaction performs the funds movement as a single atomic unit. A
// crash between the debit and the credit can never leave funds in limbo: the
// whole block either commits or rolls back.
func (d Datasource) ApplyTransaction(ctx context.Context, txn *model.Transaction, expected model.Status) (*model.Transaction, error) {
	ctx, span := otel.Tracer("payflow.database").Start(ctx, "Applying transaction to balances")
	defer span.End()

	tx, err := d.Conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to begin transaction", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	result, err := tx.ExecContext(ctx, `
		UPDATE transactions
		SET status = $3
		WHERE transaction_id = $1 AND status = $2
	`, txn.TransactionID, expected, model.StatusProcessing)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to mark transaction processing", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return nil, apierror.NewAPIError(apierror.ErrConflict, fmt.Sprintf("Transaction '%s' is no longer in status '%s'", txn.TransactionID, expected), nil)
	}

	result, err = tx.ExecContext(ctx, `
		UPDATE accounts
		SET balance = balance - $2
		WHERE number = $1 AND balance >= $2
	`, txn.Source, txn.Amount)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to debit source account", err)
	}
	rowsAffected, err = result.RowsAffected()
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return nil, apierror.NewAPIError(apierror.ErrInsufficientFunds, fmt.Sprintf("Account '%s' can not cover %s %s", txn.Source, txn.Currency, txn.Amount.StringFixed(2)), nil)
	}

	result, err = tx.ExecContext(ctx, `
		UPDATE accounts
		SET balance = balance + $2
		WHERE number = $1
	`, txn.Destination, txn.Amount)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to credit destination account", err)
	}
	rowsAffected, err = result.RowsAffected()
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return nil, apierror.NewAPIError(apierror.ErrNotFound, fmt.Sprintf("Account with number '%s' not found", txn.Destination), nil)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE transactions
		SET status = $2
		WHERE transaction_id = $1
	`, txn.TransactionID, model.StatusCompleted)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to complete transaction", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to commit transaction", err)
	}

	txn.Status = model.StatusCompleted
	return txn, nil
}

// DeleteTransaction removes a transaction that is still in INITIATED status.
// Anything further along is protected from deletion.
func (d Datasource) DeleteTransaction(ctx context.Context, id string) error {
	result, err := d.Conn.ExecContext(ctx, `
		DELETE FROM transactions
		WHERE transaction_id = $1 AND status = $2
	`, id, model.StatusInitiated)
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to delete transaction", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to get rows affected", err)
	}

	if rowsAffected == 0 {
		var exists bool
		err = d.Conn.QueryRowContext(ctx, `
			SELECT EXISTS(SELECT 1 FROM transactions WHERE transaction_id = $1)
		`, id).Scan(&exists)
		if err != nil {
			return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to check transaction existence", err)
		}
		if exists {
			return apierror.NewAPIError(apierror.ErrConflict, fmt.Sprintf("Transaction '%s' is past the point of deletion", id), nil)
		}
		return apierror.NewAPIError(apierror.ErrNotFound, fmt.Sprintf("Transaction with ID '%s' not found", id), nil)
	}

	return nil
}
