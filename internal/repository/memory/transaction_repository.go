package memory

import (
	"context"
	"fmt"
	"time"

	"carematch-be/internal/entity"
	"carematch-be/internal/repository/contract"
)

type transactionRepository struct {
	u *UnitOfWork
}

func (r *transactionRepository) Create(ctx context.Context, transaction *entity.Transaction) error {
	return r.u.run(func(t *tables) error {
		for _, existing := range t.transactions {
			if existing.TransactionReferenceId == transaction.TransactionReferenceId {
				return fmt.Errorf("%w: transactions.transaction_reference_id", contract.ErrDuplicate)
			}
			if transaction.GatewayPaymentId != nil && existing.GatewayPaymentId != nil && *existing.GatewayPaymentId == *transaction.GatewayPaymentId {
				return fmt.Errorf("%w: transactions.gateway_payment_id", contract.ErrDuplicate)
			}
		}
		row := *transaction
		if row.Status == "" {
			row.Status = entity.TransactionStatusPending
		}
		row.Id = t.nextID("transactions")
		row.CreatedAt = stamp(row.CreatedAt)
		if row.UpdatedAt.IsZero() {
			row.UpdatedAt = row.CreatedAt
		}
		t.transactions[row.Id] = row
		*transaction = row
		return nil
	})
}

func (r *transactionRepository) FindByID(ctx context.Context, id int64) (*entity.Transaction, error) {
	var found *entity.Transaction
	err := r.u.run(func(t *tables) error {
		if row, ok := t.transactions[id]; ok {
			found = &row
		}
		return nil
	})
	return found, err
}

func (r *transactionRepository) FindByIDForUpdate(ctx context.Context, id int64) (*entity.Transaction, error) {
	return r.FindByID(ctx, id)
}

func (r *transactionRepository) FindByGatewayPaymentIDForUpdate(ctx context.Context, gatewayPaymentId string) (*entity.Transaction, error) {
	var found *entity.Transaction
	err := r.u.run(func(t *tables) error {
		for _, row := range t.transactions {
			if row.GatewayPaymentId != nil && *row.GatewayPaymentId == gatewayPaymentId {
				row := row
				found = &row
				break
			}
		}
		return nil
	})
	return found, err
}

func (r *transactionRepository) AttachGatewayPayment(ctx context.Context, id int64, gatewayPaymentId string, approvalURL string) (bool, error) {
	var updated bool
	err := r.u.run(func(t *tables) error {
		row, ok := t.transactions[id]
		if !ok || row.Status != entity.TransactionStatusPending {
			return nil
		}
		for otherId, other := range t.transactions {
			if otherId != id && other.GatewayPaymentId != nil && *other.GatewayPaymentId == gatewayPaymentId {
				return fmt.Errorf("%w: transactions.gateway_payment_id", contract.ErrDuplicate)
			}
		}
		row.GatewayPaymentId = &gatewayPaymentId
		row.ApprovalURL = &approvalURL
		row.UpdatedAt = time.Now()
		t.transactions[id] = row
		updated = true
		return nil
	})
	return updated, err
}

func (r *transactionRepository) UpdateStatus(ctx context.Context, id int64, from, to entity.TransactionStatus, changes contract.TransactionChanges) (bool, error) {
	var updated bool
	err := r.u.run(func(t *tables) error {
		row, ok := t.transactions[id]
		if !ok || row.Status != from {
			return nil
		}
		row.Status = to
		if changes.FailureReason != nil {
			row.FailureReason = changes.FailureReason
		}
		if len(changes.LastCallback) > 0 {
			row.LastCallback = changes.LastCallback
		}
		if changes.SettledAt != nil {
			row.SettledAt = changes.SettledAt
		}
		if changes.RefundedAt != nil {
			row.RefundedAt = changes.RefundedAt
		}
		row.UpdatedAt = time.Now()
		t.transactions[id] = row
		updated = true
		return nil
	})
	return updated, err
}

func (r *transactionRepository) SaveCallback(ctx context.Context, id int64, payload []byte) error {
	return r.u.run(func(t *tables) error {
		row, ok := t.transactions[id]
		if !ok {
			return nil
		}
		row.LastCallback = payload
		t.transactions[id] = row
		return nil
	})
}

func (r *transactionRepository) FailPendingBefore(ctx context.Context, cutoff time.Time, reason string) (int64, error) {
	var count int64
	err := r.u.run(func(t *tables) error {
		for id, row := range t.transactions {
			if row.Status != entity.TransactionStatusPending || !row.CreatedAt.Before(cutoff) {
				continue
			}
			reason := reason
			row.Status = entity.TransactionStatusFailed
			row.FailureReason = &reason
			row.UpdatedAt = time.Now()
			t.transactions[id] = row
			count++
		}
		return nil
	})
	return count, err
}

func (r *transactionRepository) FindAll(ctx context.Context, filter contract.TransactionFilter) ([]*entity.Transaction, int64, error) {
	var (
		result []*entity.Transaction
		total  int64
	)
	err := r.u.run(func(t *tables) error {
		var rows []entity.Transaction
		for _, row := range t.transactions {
			if filter.UserId != nil && !row.InvolvesUser(*filter.UserId) {
				continue
			}
			if filter.Status != nil && row.Status != *filter.Status {
				continue
			}
			rows = append(rows, row)
		}
		total = int64(len(rows))
		newestFirst(rows, func(tx entity.Transaction) (time.Time, int64) { return tx.CreatedAt, tx.Id })
		for _, row := range paginate(rows, filter.Limit, filter.Offset) {
			row := row
			result = append(result, &row)
		}
		return nil
	})
	return result, total, err
}
