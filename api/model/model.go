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
package model

import (
	"errors"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// SearchAccount is the body of the account search steps. The acting user
// submits the counterparty's account number.
type SearchAccount struct {
	AccountNumber string `json:"account_number"`
}

func (s *SearchAccount) ValidateSearchAccount() error {
	return validation.ValidateStruct(s,
		validation.Field(&s.AccountNumber, validation.Required),
	)
}

// InitiateTransfer is the amount-entry body of the transfer flow. The
// recipient comes from the route; the sender is explicit in the body.
type InitiateTransfer struct {
	Sender      string `json:"sender"`
	Amount      string `json:"amount"`
	Description string `json:"description"`
}

func (t *InitiateTransfer) ValidateInitiateTransfer() error {
	return validation.ValidateStruct(t,
		validation.Field(&t.Sender, validation.Required),
		validation.Field(&t.Amount, validation.Required),
	)
}

// InitiateRequest is the amount-entry body of the payment request flow. The
// payer comes from the route; the requester is explicit in the body.
type InitiateRequest struct {
	Requester   string `json:"requester"`
	Amount      string `json:"amount"`
	Description string `json:"description"`
}

func (r *InitiateRequest) ValidateInitiateRequest() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Requester, validation.Required),
		validation.Field(&r.Amount, validation.Required),
	)
}

type CreateAccount struct {
	Name           string `json:"name"`
	Number         string `json:"number"`
	Currency       string `json:"currency"`
	OpeningBalance string `json:"opening_balance"`
}

func (a *CreateAccount) ValidateCreateAccount() error {
	return validation.ValidateStruct(a,
		validation.Field(&a.Name, validation.Required),
		validation.Field(&a.Currency, validation.Required, validation.Length(3, 3)),
	)
}

type CreateCard struct {
	AccountNumber string `json:"account_number"`
	CardNumber    string `json:"card_number"`
}

func (c *CreateCard) ValidateCreateCard() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.AccountNumber, validation.Required),
		validation.Field(&c.CardNumber, validation.Required),
	)
}

// CardAmount is the body of the card fund and withdraw operations.
type CardAmount struct {
	Amount string `json:"amount"`
}

func (c *CardAmount) ValidateCardAmount() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Amount, validation.Required),
	)
}

type CreateInvoice struct {
	ClientName  string `json:"client_name"`
	ClientEmail string `json:"client_email"`
	DueDate     string `json:"due_date"`
	Description string `json:"description"`
	Amount      string `json:"amount"`
	Currency    string `json:"currency"`
}

func (i *CreateInvoice) ValidateCreateInvoice() error {
	return validation.ValidateStruct(i,
		validation.Field(&i.ClientName, validation.Required),
		validation.Field(&i.ClientEmail, validation.Required, is.Email),
		validation.Field(&i.Amount, validation.Required),
		validation.Field(&i.Currency, validation.Required, validation.Length(3, 3)),
		validation.Field(&i.DueDate, validation.By(func(value interface{}) error {
			raw, _ := value.(string)
			if raw == "" {
				return nil
			}
			if _, err := time.Parse("2006-01-02", raw); err != nil {
				return errors.New("please format the due date as 'YYYY-MM-DD' (e.g., 2024-04-22)")
			}
			return nil
		})),
	)
}

// ParsedDueDate returns the due date or the zero time when none was given.
func (i *CreateInvoice) ParsedDueDate() time.Time {
	if i.DueDate == "" {
		return time.Time{}
	}
	parsed, _ := time.Parse("2006-01-02", i.DueDate)
	return parsed
}

type UpdateInvoiceStatus struct {
	Status string `json:"status"`
}

func (u *UpdateInvoiceStatus) ValidateUpdateInvoiceStatus() error {
	return validation.ValidateStruct(u,
		validation.Field(&u.Status, validation.Required, validation.In("Paid")),
	)
}
