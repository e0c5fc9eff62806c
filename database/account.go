package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/kaptain9960/payflow/internal/apierror"
	"github.com/kaptain9960/payflow/model"
)

func (d Datasource) CreateAccount(ctx context.Context, account model.Account) (model.Account, error) {
	metaDataJSON, err := json.Marshal(account.MetaData)
	if err != nil {
		return model.Account{}, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to marshal metadata", err)
	}

	_, err = d.Conn.ExecContext(ctx,
		`INSERT INTO accounts(account_id,number,name,balance,currency,created_at,meta_data) VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		account.AccountID, account.Number, account.Name, account.Balance, account.Currency, account.CreatedAt, metaDataJSON,
	)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return model.Account{}, apierror.NewAPIError(apierror.ErrConflict, fmt.Sprintf("Account with number '%s' already exists", account.Number), err)
		}
		return model.Account{}, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to create account", err)
	}

	return account, nil
}

func (d Datasource) GetAccountByNumber(ctx context.Context, number string) (*model.Account, error) {
	row := d.Conn.QueryRowContext(ctx, `
		SELECT account_id, number, name, balance, currency, created_at, meta_data
		FROM accounts
		WHERE number = $1
	`, number)

	account := &model.Account{}
	var metaDataJSON []byte
	err := row.Scan(&account.AccountID, &account.Number, &account.Name, &account.Balance, &account.Currency, &account.CreatedAt, &metaDataJSON)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apierror.NewAPIError(apierror.ErrNotFound, fmt.Sprintf("Account with number '%s' not found", number), err)
		}
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve account", err)
	}

	if len(metaDataJSON) > 0 {
		err = json.Unmarshal(metaDataJSON, &account.MetaData)
		if err != nil {
			return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to unmarshal metadata", err)
		}
	}

	return account, nil
}

func (d Datasource) GetAllAccounts(ctx context.Context, limit, offset int) ([]model.Account, error) {
	rows, err := d.Conn.QueryContext(ctx, `
		SELECT account_id, number, name, balance, currency, created_at, meta_data
		FROM accounts
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve accounts", err)
	}
	defer rows.Close()

	var accounts []model.Account

	for rows.Next() {
		account := model.Account{}
		var metaDataJSON []byte
		err = rows.Scan(&account.AccountID, &account.Number, &account.Name, &account.Balance, &account.Currency, &account.CreatedAt, &metaDataJSON)
		if err != nil {
			return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to scan account data", err)
		}

		if len(metaDataJSON) > 0 {
			err = json.Unmarshal(metaDataJSON, &account.MetaData)
			if err != nil {
				return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to unmarshal metadata", err)
			}
		}

		accounts = append(accounts, account)
	}

	if err = rows.Err(); err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Error occurred while iterating over accounts", err)
	}

	return accounts, nil
}
