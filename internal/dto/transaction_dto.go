package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

type InitiatePaymentRequest struct {
	MatchRequestId int64           `json:"match_request_id" validate:"required,gt=0"`
	Amount         decimal.Decimal `json:"amount"`
	Currency       string          `json:"currency" validate:"omitempty,len=3"`
}

type ListTransactionsQuery struct {
	PaginationQuery
	Status string `query:"status" validate:"omitempty,oneof=pending completed failed refunded"`
}

type TransactionResponse struct {
	Id                     int64           `json:"id"`
	MatchRequestId         *int64          `json:"match_request_id"`
	InitiatingUserId       *int64          `json:"initiating_user_id"`
	ReceivingUserId        *int64          `json:"receiving_user_id"`
	Amount                 decimal.Decimal `json:"amount"`
	Currency               string          `json:"currency"`
	Status                 string          `json:"status"`
	GatewayPaymentId       *string         `json:"gateway_payment_id"`
	TransactionReferenceId string          `json:"transaction_reference_id"`
	ApprovalURL            *string         `json:"approval_url"`
	FailureReason          *string         `json:"failure_reason"`
	SettledAt              *time.Time      `json:"settled_at"`
	RefundedAt             *time.Time      `json:"refunded_at"`
	CreatedAt              time.Time       `json:"created_at"`
}
