/*
Copyright 2024 Payflow Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package database

import (
	"context"

	"github.com/kaptain9960/payflow/model"
	"github.com/shopspring/decimal"
)

// IDataSource defines the interface for data source operations, grouping related functionalities.
type IDataSource interface {
	transaction
	account
	card
	invoice
}

// transaction defines methods for handling workflow transactions.
type transaction interface {
	RecordTransaction(ctx context.Context, txn *model.Transaction) (*model.Transaction, error)
	GetTransaction(ctx context.Context, id string) (*model.Transaction, error)
	GetTransactionsByAccount(ctx context.Context, number string, limit, offset int) ([]model.Transaction, error)
	// UpdateTransactionStatus performs an optimistic compare-and-swap: the
	// row moves to next only if its status still equals expected. Zero rows
	// affected means another request got there first.
	UpdateTransactionStatus(ctx context.Context, id string, expected, next model.Status) error
	// ApplyTransaction moves the funds and completes the transaction as one
	// atomic unit: status CAS to PROCESSING, guarded debit of the source,
	// credit of the destination, status to COMPLETED.
	ApplyTransaction(ctx context.Context, txn *model.Transaction, expected model.Status) (*model.Transaction, error)
	UpdateTransactionKind(ctx context.Context, id string, expected model.Status, kind model.Kind) error
	DeleteTransaction(ctx context.Context, id string) error
}

// account defines methods for handling accounts.
type account interface {
	CreateAccount(ctx context.Context, account model.Account) (model.Account, error)
	GetAccountByNumber(ctx context.Context, number string) (*model.Account, error)
	GetAllAccounts(ctx context.Context, limit, offset int) ([]model.Account, error)
}

// card defines methods for handling credit cards.
type card interface {
	CreateCard(ctx context.Context, card model.CreditCard) (model.CreditCard, error)
	GetCard(ctx context.Context, id string) (*model.CreditCard, error)
	// ApplyCardMovement funds or withdraws a card against its owning account
	// and records the completed transaction, all in one atomic unit. A
	// positive amount moves account -> card, negative moves card -> account.
	ApplyCardMovement(ctx context.Context, card *model.CreditCard, amount decimal.Decimal, txn *model.Transaction) (*model.Transaction, error)
	DeleteCard(ctx context.Context, id string) error
}

// invoice defines methods for handling invoices.
type invoice interface {
	CreateInvoice(ctx context.Context, invoice model.Invoice) (model.Invoice, error)
	GetInvoice(ctx context.Context, number string) (*model.Invoice, error)
	GetAllInvoices(ctx context.Context, limit, offset int) ([]model.Invoice, error)
	UpdateInvoiceStatus(ctx context.Context, number string, status model.InvoiceStatus) error
}
