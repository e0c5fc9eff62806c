package model

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Status is the lifecycle state of a transaction. Transitions move strictly
// forward through the table below; COMPLETED and CANCELLED are terminal.
type Status string

const (
	StatusInitiated         Status = "INITIATED"
	StatusConfirmed         Status = "CONFIRMED"
	StatusSettlementPending Status = "SETTLEMENT_PENDING"
	StatusProcessing        Status = "PROCESSING"
	StatusCompleted         Status = "COMPLETED"
	StatusCancelled         Status = "CANCELLED"
)

// Kind identifies which flow owns a transaction.
type Kind string

const (
	KindTransfer       Kind = "transfer"
	KindRequest        Kind = "request"
	KindSettlement     Kind = "settlement"
	KindCardFunding    Kind = "card_funding"
	KindCardWithdrawal Kind = "card_withdrawal"
)

// transitions is the explicit state machine. A transition missing here is
// illegal no matter which URL drove it.
var transitions = map[Status][]Status{
	StatusInitiated:         {StatusConfirmed, StatusCancelled},
	StatusConfirmed:         {StatusSettlementPending, StatusProcessing, StatusCancelled},
	StatusSettlementPending: {StatusProcessing},
	StatusProcessing:        {StatusCompleted},
	StatusCompleted:         {},
	StatusCancelled:         {},
}

// CanTransitionTo reports whether moving from s to next is a legal step.
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether a transaction in this status may never change again.
func (s Status) Terminal() bool {
	return len(transitions[s]) == 0
}

// Transaction is a persisted intent to move funds between two accounts. It is
// created by the amount-entry step of a flow and advanced one status at a
// time by the subsequent steps.
type Transaction struct {
	ID            int64                  `json:"-"`
	TransactionID string                 `json:"id"`
	Kind          Kind                   `json:"kind"`
	Source        string                 `json:"source"`
	Destination   string                 `json:"destination"`
	Amount        decimal.Decimal        `json:"amount"`
	Currency      string                 `json:"currency"`
	Description   string                 `json:"description"`
	Status        Status                 `json:"status"`
	CreatedAt     time.Time              `json:"created_at"`
	MetaData      map[string]interface{} `json:"meta_data,omitempty"`
}

func (transaction *Transaction) ToJSON() ([]byte, error) {
	return json.Marshal(transaction)
}

// Deletable reports whether user-initiated deletion is still allowed. Only a
// payment request that nobody has acted on may be removed.
func (transaction *Transaction) Deletable() bool {
	return transaction.Status == StatusInitiated
}

// StepURL returns the canonical step path for a transaction in its current
// status. Handlers redirect here when a stale or bookmarked URL invokes a
// step the status has already moved past.
func (transaction *Transaction) StepURL() string {
	account := transaction.Destination
	id := transaction.TransactionID

	switch transaction.Kind {
	case KindTransfer:
		switch transaction.Status {
		case StatusInitiated, StatusConfirmed, StatusProcessing:
			return fmt.Sprintf("/transfare-confirm/%s/%s", account, id)
		case StatusCompleted:
			return fmt.Sprintf("/transfare-completed/%s/%s", account, id)
		}
	case KindRequest:
		// For requests the path account is the payer, stored as source.
		switch transaction.Status {
		case StatusInitiated:
			return fmt.Sprintf("/request-confirm/%s/%s", transaction.Source, id)
		case StatusConfirmed:
			return fmt.Sprintf("/settlement-confirmation/%s/%s", transaction.Source, id)
		case StatusCompleted:
			return fmt.Sprintf("/request-completed/%s/%s", transaction.Source, id)
		}
	case KindSettlement:
		switch transaction.Status {
		case StatusSettlementPending, StatusProcessing:
			return fmt.Sprintf("/settlement-confirmation/%s/%s", transaction.Source, id)
		case StatusCompleted:
			return fmt.Sprintf("/settlement-completed/%s/%s", transaction.Source, id)
		}
	}
	return fmt.Sprintf("/transaction/%s", id)
}
