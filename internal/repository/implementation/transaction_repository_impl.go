package implementation

import (
	"context"
	"errors"
	"time"

	"carematch-be/internal/entity"
	"carematch-be/internal/mapper"
	"carematch-be/internal/model"
	"carematch-be/internal/repository/contract"
	"carematch-be/internal/repository/specification"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TransactionRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.TransactionMapper
}

func NewTransactionRepository(db *gorm.DB) contract.TransactionRepository {
	return &TransactionRepositoryImpl{
		db:     db,
		mapper: mapper.NewTransactionMapper(),
	}
}

func (r *TransactionRepositoryImpl) findOne(ctx context.Context, specs ...specification.Specification) (*entity.Transaction, error) {
	var m model.Transaction
	if err := specification.Apply(r.db.WithContext(ctx), specs...).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *TransactionRepositoryImpl) Create(ctx context.Context, transaction *entity.Transaction) error {
	m := r.mapper.ToModel(transaction)
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(m).Error; err != nil {
		return translateError(err)
	}
	*transaction = *r.mapper.ToEntity(m)
	return nil
}

func (r *TransactionRepositoryImpl) FindByID(ctx context.Context, id int64) (*entity.Transaction, error) {
	return r.findOne(ctx, specification.ByID{ID: id})
}

func (r *TransactionRepositoryImpl) FindByIDForUpdate(ctx context.Context, id int64) (*entity.Transaction, error) {
	return r.findOne(ctx, specification.ByID{ID: id}, specification.ForUpdate{})
}

func (r *TransactionRepositoryImpl) FindByGatewayPaymentIDForUpdate(ctx context.Context, gatewayPaymentId string) (*entity.Transaction, error) {
	return r.findOne(ctx, specification.ByGatewayPaymentID{GatewayPaymentID: gatewayPaymentId}, specification.ForUpdate{})
}

func (r *TransactionRepositoryImpl) AttachGatewayPayment(ctx context.Context, id int64, gatewayPaymentId string, approvalURL string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Transaction{}).
		Where("id = ? AND status = ?", id, string(entity.TransactionStatusPending)).
		Updates(map[string]interface{}{
			"gateway_payment_id": gatewayPaymentId,
			"approval_url":       approvalURL,
		})
	if res.Error != nil {
		return false, translateError(res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *TransactionRepositoryImpl) UpdateStatus(ctx context.Context, id int64, from, to entity.TransactionStatus, changes contract.TransactionChanges) (bool, error) {
	updates := map[string]interface{}{
		"status": string(to),
	}
	if changes.FailureReason != nil {
		updates["failure_reason"] = *changes.FailureReason
	}
	if len(changes.LastCallback) > 0 {
		updates["last_callback"] = datatypes.JSON(changes.LastCallback)
	}
	if changes.SettledAt != nil {
		updates["settled_at"] = *changes.SettledAt
	}
	if changes.RefundedAt != nil {
		updates["refunded_at"] = *changes.RefundedAt
	}

	res := r.db.WithContext(ctx).
		Model(&model.Transaction{}).
		Where("id = ? AND status = ?", id, string(from)).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *TransactionRepositoryImpl) SaveCallback(ctx context.Context, id int64, payload []byte) error {
	return r.db.WithContext(ctx).
		Model(&model.Transaction{}).
		Where("id = ?", id).
		Update("last_callback", datatypes.JSON(payload)).Error
}

func (r *TransactionRepositoryImpl) FailPendingBefore(ctx context.Context, cutoff time.Time, reason string) (int64, error) {
	res := specification.Apply(r.db.WithContext(ctx).Model(&model.Transaction{}),
		specification.ByStatus{Status: string(entity.TransactionStatusPending)},
		specification.CreatedBefore{Cutoff: cutoff},
	).Updates(map[string]interface{}{
		"status":         string(entity.TransactionStatusFailed),
		"failure_reason": reason,
	})
	return res.RowsAffected, res.Error
}

func (r *TransactionRepositoryImpl) FindAll(ctx context.Context, filter contract.TransactionFilter) ([]*entity.Transaction, int64, error) {
	var specs []specification.Specification
	if filter.UserId != nil {
		specs = append(specs, specification.TransactionInvolving{UserID: *filter.UserId})
	}
	if filter.Status != nil {
		specs = append(specs, specification.ByStatus{Status: string(*filter.Status)})
	}

	var total int64
	if err := specification.Apply(r.db.WithContext(ctx).Model(&model.Transaction{}), specs...).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	specs = append(specs,
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.OrderBy{Field: "id", Desc: true},
		specification.Pagination{Limit: filter.Limit, Offset: filter.Offset},
	)
	var models []*model.Transaction
	if err := specification.Apply(r.db.WithContext(ctx), specs...).Find(&models).Error; err != nil {
		return nil, 0, err
	}

	entities := make([]*entity.Transaction, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ToEntity(m)
	}
	return entities, total, nil
}
