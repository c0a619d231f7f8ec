package mapper

import (
	"carematch-be/internal/entity"
	"carematch-be/internal/model"

	"gorm.io/datatypes"
)

type TransactionMapper struct{}

func NewTransactionMapper() *TransactionMapper {
	return &TransactionMapper{}
}

func (m *TransactionMapper) ToEntity(t *model.Transaction) *entity.Transaction {
	if t == nil {
		return nil
	}
	return &entity.Transaction{
		Id:                     t.Id,
		MatchRequestId:         t.MatchRequestId,
		InitiatingUserId:       t.InitiatingUserId,
		ReceivingUserId:        t.ReceivingUserId,
		Amount:                 t.Amount,
		Currency:               t.Currency,
		Status:                 entity.TransactionStatus(t.Status),
		GatewayPaymentId:       t.GatewayPaymentId,
		TransactionReferenceId: t.TransactionReferenceId,
		ApprovalURL:            t.ApprovalURL,
		FailureReason:          t.FailureReason,
		LastCallback:           []byte(t.LastCallback),
		SettledAt:              t.SettledAt,
		RefundedAt:             t.RefundedAt,
		CreatedAt:              t.CreatedAt,
		UpdatedAt:              t.UpdatedAt,
	}
}

func (m *TransactionMapper) ToModel(t *entity.Transaction) *model.Transaction {
	if t == nil {
		return nil
	}
	var callback datatypes.JSON
	if len(t.LastCallback) > 0 {
		callback = datatypes.JSON(t.LastCallback)
	}
	return &model.Transaction{
		Id:                     t.Id,
		MatchRequestId:         t.MatchRequestId,
		InitiatingUserId:       t.InitiatingUserId,
		ReceivingUserId:        t.ReceivingUserId,
		Amount:                 t.Amount,
		Currency:               t.Currency,
		Status:                 string(t.Status),
		GatewayPaymentId:       t.GatewayPaymentId,
		TransactionReferenceId: t.TransactionReferenceId,
		ApprovalURL:            t.ApprovalURL,
		FailureReason:          t.FailureReason,
		LastCallback:           callback,
		SettledAt:              t.SettledAt,
		RefundedAt:             t.RefundedAt,
		CreatedAt:              t.CreatedAt,
		UpdatedAt:              t.UpdatedAt,
	}
}
