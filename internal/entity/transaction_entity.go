package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusCompleted TransactionStatus = "completed"
	TransactionStatusFailed    TransactionStatus = "failed"
	TransactionStatusRefunded  TransactionStatus = "refunded"
)

var transactionTransitions = map[TransactionStatus][]TransactionStatus{
	TransactionStatusPending:   {TransactionStatusCompleted, TransactionStatusFailed},
	TransactionStatusCompleted: {TransactionStatusRefunded},
}

func (s TransactionStatus) IsTerminal() bool {
	return len(transactionTransitions[s]) == 0
}

func (s TransactionStatus) CanTransitionTo(next TransactionStatus) bool {
	for _, allowed := range transactionTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Amount is immutable once Status leaves pending.
type Transaction struct {
	Id                     int64
	MatchRequestId         *int64
	InitiatingUserId       *int64
	ReceivingUserId        *int64
	Amount                 decimal.Decimal
	Currency               string
	Status                 TransactionStatus
	GatewayPaymentId       *string
	TransactionReferenceId string
	ApprovalURL            *string
	FailureReason          *string
	LastCallback           []byte
	SettledAt              *time.Time
	RefundedAt             *time.Time
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

func (t *Transaction) InvolvesUser(userId int64) bool {
	return (t.InitiatingUserId != nil && *t.InitiatingUserId == userId) ||
		(t.ReceivingUserId != nil && *t.ReceivingUserId == userId)
}
