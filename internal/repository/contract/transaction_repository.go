package contract

import (
	"context"
	"time"

	"carematch-be/internal/entity"
)

// TransactionChanges are the columns written alongside a status change.
// Amount is deliberately absent.
type TransactionChanges struct {
	FailureReason *string
	LastCallback  []byte
	SettledAt     *time.Time
	RefundedAt    *time.Time
}

type TransactionFilter struct {
	UserId *int64
	Status *entity.TransactionStatus
	Limit  int
	Offset int
}

type TransactionRepository interface {
	Create(ctx context.Context, transaction *entity.Transaction) error
	FindByID(ctx context.Context, id int64) (*entity.Transaction, error)
	FindByIDForUpdate(ctx context.Context, id int64) (*entity.Transaction, error)
	FindByGatewayPaymentIDForUpdate(ctx context.Context, gatewayPaymentId string) (*entity.Transaction, error)
	// AttachGatewayPayment records the gateway reference on a still-pending row.
	AttachGatewayPayment(ctx context.Context, id int64, gatewayPaymentId string, approvalURL string) (bool, error)
	// UpdateStatus applies from -> to only if the row is still in from.
	UpdateStatus(ctx context.Context, id int64, from, to entity.TransactionStatus, changes TransactionChanges) (bool, error)
	SaveCallback(ctx context.Context, id int64, payload []byte) error
	FailPendingBefore(ctx context.Context, cutoff time.Time, reason string) (int64, error)
	FindAll(ctx context.Context, filter TransactionFilter) ([]*entity.Transaction, int64, error)
}
