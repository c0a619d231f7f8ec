package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"carematch-be/internal/dto"
	"carematch-be/internal/entity"
	"carematch-be/internal/pkg/apperror"
	"carematch-be/internal/pkg/logger"
	"carematch-be/internal/repository/contract"
	"carematch-be/internal/repository/unitofwork"
	"carematch-be/pkg/events"
	"carematch-be/pkg/gateway"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// maxGatewayAttempts is the first call plus one retry on transient errors.
const maxGatewayAttempts = 2

const defaultGatewayTimeout = 10 * time.Second

const expiredPaymentReason = "expired awaiting gateway confirmation"

type ITransactionService interface {
	InitiatePayment(ctx context.Context, matchRequestId int64, initiatingUserId int64, amount decimal.Decimal, currency string) (*dto.TransactionResponse, error)
	ReconcilePaymentCallback(ctx context.Context, gatewayPaymentId string, outcome gateway.Outcome, raw []byte) (*dto.TransactionResponse, error)
	// HandleGatewayCallback parses and reconciles a raw notification. The
	// caller acknowledges the gateway whatever this returns.
	HandleGatewayCallback(ctx context.Context, raw []byte) error
	Refund(ctx context.Context, transactionId int64, principal entity.Principal) (*dto.TransactionResponse, error)
	ExpireStalePayments(ctx context.Context, now time.Time) (int64, error)
	GetTransaction(ctx context.Context, transactionId int64, principal entity.Principal) (*dto.TransactionResponse, error)
	ListTransactions(ctx context.Context, principal entity.Principal, query *dto.ListTransactionsQuery) (*dto.PaginatedResponse[*dto.TransactionResponse], error)
}

type PaymentSettings struct {
	Currency       string
	ReturnURL      string
	CancelURL      string
	GatewayTimeout time.Duration
	PendingTTL     time.Duration
}

type transactionService struct {
	uowFactory unitofwork.RepositoryFactory
	gateway    gateway.Gateway
	settings   PaymentSettings
	events     emitter
	logger     logger.ILogger
	now        func() time.Time
}

func NewTransactionService(
	uowFactory unitofwork.RepositoryFactory,
	gw gateway.Gateway,
	publisher events.Publisher,
	logger logger.ILogger,
	settings PaymentSettings,
) ITransactionService {
	if settings.GatewayTimeout <= 0 {
		settings.GatewayTimeout = defaultGatewayTimeout
	}
	return &transactionService{
		uowFactory: uowFactory,
		gateway:    gw,
		settings:   settings,
		events:     newEmitter(publisher, logger),
		logger:     logger,
		now:        time.Now,
	}
}

func (s *transactionService) InitiatePayment(ctx context.Context, matchRequestId int64, initiatingUserId int64, amount decimal.Decimal, currency string) (*dto.TransactionResponse, error) {
	if !amount.IsPositive() {
		return nil, apperror.Validation("amount must be greater than zero")
	}
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" {
		currency = s.settings.Currency
	}

	transaction, payer, err := s.createPending(ctx, matchRequestId, initiatingUserId, amount.Round(2), currency)
	if err != nil {
		return nil, err
	}

	// The gateway call happens outside any store transaction: the pending
	// row is already committed and is finished by one of the branches below
	// or, failing that, by the expiry sweep.
	intent, err := s.createPayment(ctx, gateway.PaymentRequest{
		ReferenceID: transaction.TransactionReferenceId,
		Amount:      transaction.Amount,
		Currency:    transaction.Currency,
		Description: fmt.Sprintf("Care services for match request %d", matchRequestId),
		ReturnURL:   s.settings.ReturnURL,
		CancelURL:   s.settings.CancelURL,
		PayerEmail:  payer.Email,
		PayerName:   payer.FullName,
	})
	if err != nil {
		s.markInitiationFailed(ctx, transaction, err)
		return nil, apperror.Gateway("payment gateway could not create the payment", err)
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	attached, err := uow.TransactionRepository().AttachGatewayPayment(ctx, transaction.Id, intent.GatewayPaymentID, intent.ApprovalURL)
	if err != nil {
		return nil, err
	}
	if !attached {
		s.logger.Warn("PAYMENT", "Transaction left pending before gateway reference was stored", map[string]interface{}{
			"transaction_id":     transaction.Id,
			"gateway_payment_id": intent.GatewayPaymentID,
		})
		current, err := uow.TransactionRepository().FindByID(ctx, transaction.Id)
		if err != nil {
			return nil, err
		}
		return toTransactionResponse(current), nil
	}

	transaction.GatewayPaymentId = &intent.GatewayPaymentID
	transaction.ApprovalURL = &intent.ApprovalURL

	s.logger.Info("PAYMENT", "Payment initiated", map[string]interface{}{
		"transaction_id":     transaction.Id,
		"gateway":            s.gateway.Name(),
		"gateway_payment_id": intent.GatewayPaymentID,
		"amount":             transaction.Amount.String(),
	})
	s.events.emit(ctx, events.PaymentInitiated, s.now(), transactionEventData(transaction))

	return toTransactionResponse(transaction), nil
}

func (s *transactionService) createPending(ctx context.Context, matchRequestId, initiatingUserId int64, amount decimal.Decimal, currency string) (*entity.Transaction, *entity.User, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, nil, err
	}
	defer uow.Rollback()

	parties, err := uow.MatchRequestRepository().FindParties(ctx, matchRequestId, false)
	if err != nil {
		return nil, nil, err
	}
	if parties == nil {
		return nil, nil, apperror.NotFound("match request not found", apperror.Resource("match_request", matchRequestId))
	}
	if parties.FamilyUserId != initiatingUserId {
		return nil, nil, apperror.Forbidden("only the family of this match can pay for it")
	}
	status := parties.Request.Status
	if status != entity.MatchStatusAccepted && status != entity.MatchStatusCompleted {
		return nil, nil, apperror.InvalidState(
			fmt.Sprintf("match request is %s, payments need an accepted or completed match", status),
			apperror.Resource("match_request", matchRequestId),
		)
	}

	payer, err := uow.UserRepository().FindByID(ctx, initiatingUserId)
	if err != nil {
		return nil, nil, err
	}
	if payer == nil {
		return nil, nil, apperror.NotFound("user not found", apperror.Resource("user", initiatingUserId))
	}

	now := s.now()
	receivingUserId := parties.CaregiverUserId
	transaction := &entity.Transaction{
		MatchRequestId:         &matchRequestId,
		InitiatingUserId:       &initiatingUserId,
		ReceivingUserId:        &receivingUserId,
		Amount:                 amount,
		Currency:               currency,
		Status:                 entity.TransactionStatusPending,
		TransactionReferenceId: uuid.NewString(),
		CreatedAt:              now,
		UpdatedAt:              now,
	}
	if err := uow.TransactionRepository().Create(ctx, transaction); err != nil {
		return nil, nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, nil, err
	}
	return transaction, payer, nil
}

// createPayment bounds every attempt by the gateway timeout and retries
// once when the failure is transient.
func (s *transactionService) createPayment(ctx context.Context, req gateway.PaymentRequest) (*gateway.PaymentIntent, error) {
	var lastErr error
	for attempt := 1; attempt <= maxGatewayAttempts; attempt++ {
		callCtx, cancel := context.WithTimeout(ctx, s.settings.GatewayTimeout)
		intent, err := s.gateway.CreatePayment(callCtx, req)
		cancel()
		if err == nil {
			return intent, nil
		}
		lastErr = err

		if !gateway.IsTransient(err) || ctx.Err() != nil {
			break
		}
		s.logger.Warn("PAYMENT", "Transient gateway failure", map[string]interface{}{
			"reference_id": req.ReferenceID,
			"attempt":      attempt,
			"error":        err.Error(),
		})
	}
	return nil, lastErr
}

// markInitiationFailed keeps the row as an audit trail. The family can
// simply initiate a new payment.
func (s *transactionService) markInitiationFailed(ctx context.Context, transaction *entity.Transaction, cause error) {
	reason := "gateway error: " + cause.Error()
	// The caller's context may be the one that timed out.
	ctx = context.WithoutCancel(ctx)
	uow := s.uowFactory.NewUnitOfWork(ctx)

	updated, err := uow.TransactionRepository().UpdateStatus(ctx, transaction.Id, entity.TransactionStatusPending, entity.TransactionStatusFailed, contract.TransactionChanges{
		FailureReason: &reason,
	})
	if err != nil {
		s.logger.Error("PAYMENT", "Failed to record gateway failure", map[string]interface{}{
			"transaction_id": transaction.Id,
			"error":          err,
		})
		return
	}

	s.logger.Error("PAYMENT", "Gateway rejected payment creation", map[string]interface{}{
		"transaction_id": transaction.Id,
		"error":          cause,
	})
	if updated {
		transaction.Status = entity.TransactionStatusFailed
		transaction.FailureReason = &reason
		s.events.emit(ctx, events.PaymentFailed, s.now(), transactionEventData(transaction))
	}
}

func (s *transactionService) ReconcilePaymentCallback(ctx context.Context, gatewayPaymentId string, outcome gateway.Outcome, raw []byte) (*dto.TransactionResponse, error) {
	if !outcome.Valid() {
		return nil, apperror.Validation("unknown gateway outcome " + string(outcome))
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	transaction, err := uow.TransactionRepository().FindByGatewayPaymentIDForUpdate(ctx, gatewayPaymentId)
	if err != nil {
		return nil, err
	}
	if transaction == nil {
		s.logger.Warn("PAYMENT", "Callback for unknown gateway payment", map[string]interface{}{
			"gateway_payment_id": gatewayPaymentId,
			"outcome":            string(outcome),
		})
		return nil, apperror.NotFound("no transaction for gateway payment", "gateway_payment:"+gatewayPaymentId)
	}

	if transaction.Status == entity.TransactionStatusFailed && outcome == gateway.OutcomeApproved {
		// Money moved at the gateway but the row is already failed.
		s.logger.Error("PAYMENT", "Gateway approved a failed transaction, needs manual reconciliation", map[string]interface{}{
			"transaction_id":     transaction.Id,
			"gateway_payment_id": gatewayPaymentId,
			"failure_reason":     transaction.FailureReason,
			"outcome":            string(outcome),
		})
		return toTransactionResponse(transaction), nil
	}
	if transaction.Status != entity.TransactionStatusPending {
		s.logger.Info("PAYMENT", "Callback for settled transaction ignored", map[string]interface{}{
			"transaction_id": transaction.Id,
			"status":         string(transaction.Status),
			"outcome":        string(outcome),
		})
		return toTransactionResponse(transaction), nil
	}

	if outcome == gateway.OutcomePending {
		if err := uow.TransactionRepository().SaveCallback(ctx, transaction.Id, raw); err != nil {
			return nil, err
		}
		if err := uow.Commit(); err != nil {
			return nil, err
		}
		return toTransactionResponse(transaction), nil
	}

	now := s.now()
	target := entity.TransactionStatusFailed
	changes := contract.TransactionChanges{LastCallback: raw}
	if outcome == gateway.OutcomeApproved {
		target = entity.TransactionStatusCompleted
		changes.SettledAt = &now
	} else {
		reason := "gateway reported " + string(outcome)
		changes.FailureReason = &reason
	}

	updated, err := uow.TransactionRepository().UpdateStatus(ctx, transaction.Id, entity.TransactionStatusPending, target, changes)
	if err != nil {
		return nil, err
	}
	if !updated {
		return toTransactionResponse(transaction), nil
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	transaction.Status = target
	transaction.SettledAt = changes.SettledAt
	transaction.FailureReason = changes.FailureReason
	transaction.LastCallback = raw

	eventType := events.PaymentFailed
	if target == entity.TransactionStatusCompleted {
		eventType = events.PaymentCompleted
	}
	s.logger.Info("PAYMENT", "Payment reconciled", map[string]interface{}{
		"transaction_id":     transaction.Id,
		"gateway_payment_id": gatewayPaymentId,
		"status":             string(target),
	})
	s.events.emit(ctx, eventType, now, transactionEventData(transaction))

	return toTransactionResponse(transaction), nil
}

func (s *transactionService) HandleGatewayCallback(ctx context.Context, raw []byte) error {
	result, err := s.gateway.ParseCallback(ctx, raw)
	if err != nil {
		s.logger.Warn("PAYMENT", "Rejected gateway callback", map[string]interface{}{
			"gateway": s.gateway.Name(),
			"error":   err.Error(),
		})
		return err
	}

	_, err = s.ReconcilePaymentCallback(ctx, result.GatewayPaymentID, result.Outcome, result.Raw)
	return err
}

func (s *transactionService) Refund(ctx context.Context, transactionId int64, principal entity.Principal) (*dto.TransactionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	transaction, err := uow.TransactionRepository().FindByIDForUpdate(ctx, transactionId)
	if err != nil {
		return nil, err
	}
	if transaction == nil {
		return nil, apperror.NotFound("transaction not found", apperror.Resource("transaction", transactionId))
	}

	isReceiver := transaction.ReceivingUserId != nil && *transaction.ReceivingUserId == principal.UserId
	if !isReceiver && !principal.IsAdmin() {
		return nil, apperror.Forbidden("only the receiving user or an admin can refund a payment")
	}
	if !transaction.Status.CanTransitionTo(entity.TransactionStatusRefunded) {
		return nil, apperror.InvalidState(
			fmt.Sprintf("transaction is %s, only completed payments can be refunded", transaction.Status),
			apperror.Resource("transaction", transactionId),
		)
	}

	now := s.now()
	updated, err := uow.TransactionRepository().UpdateStatus(ctx, transactionId, entity.TransactionStatusCompleted, entity.TransactionStatusRefunded, contract.TransactionChanges{
		RefundedAt: &now,
	})
	if err != nil {
		return nil, err
	}
	if !updated {
		return nil, apperror.InvalidState("transaction changed concurrently", apperror.Resource("transaction", transactionId))
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	transaction.Status = entity.TransactionStatusRefunded
	transaction.RefundedAt = &now

	data := transactionEventData(transaction)
	data["refunded_by"] = principal.UserId
	s.events.emit(ctx, events.PaymentRefunded, now, data)

	return toTransactionResponse(transaction), nil
}

func (s *transactionService) ExpireStalePayments(ctx context.Context, now time.Time) (int64, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	expired, err := uow.TransactionRepository().FailPendingBefore(ctx, now.Add(-s.settings.PendingTTL), expiredPaymentReason)
	if err != nil {
		return 0, err
	}

	if expired > 0 {
		s.logger.Warn("PAYMENT", "Failed payments stuck in pending", map[string]interface{}{
			"count": expired,
			"ttl":   s.settings.PendingTTL.String(),
		})
		s.events.emit(ctx, events.PaymentsExpired, now, map[string]interface{}{"count": expired})
	}
	return expired, nil
}

func (s *transactionService) GetTransaction(ctx context.Context, transactionId int64, principal entity.Principal) (*dto.TransactionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	transaction, err := uow.TransactionRepository().FindByID(ctx, transactionId)
	if err != nil {
		return nil, err
	}
	if transaction == nil {
		return nil, apperror.NotFound("transaction not found", apperror.Resource("transaction", transactionId))
	}
	if !principal.IsAdmin() && !transaction.InvolvesUser(principal.UserId) {
		return nil, apperror.Forbidden("you are not a party to this transaction")
	}
	return toTransactionResponse(transaction), nil
}

func (s *transactionService) ListTransactions(ctx context.Context, principal entity.Principal, query *dto.ListTransactionsQuery) (*dto.PaginatedResponse[*dto.TransactionResponse], error) {
	limit, offset := query.Normalize()
	filter := contract.TransactionFilter{Limit: limit, Offset: offset}
	if !principal.IsAdmin() {
		userId := principal.UserId
		filter.UserId = &userId
	}
	if query.Status != "" {
		status := entity.TransactionStatus(query.Status)
		filter.Status = &status
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	transactions, total, err := uow.TransactionRepository().FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := make([]*dto.TransactionResponse, 0, len(transactions))
	for _, transaction := range transactions {
		items = append(items, toTransactionResponse(transaction))
	}

	return &dto.PaginatedResponse[*dto.TransactionResponse]{
		Items: items,
		Page:  query.Page,
		Limit: limit,
		Total: total,
	}, nil
}

func transactionEventData(t *entity.Transaction) map[string]interface{} {
	data := map[string]interface{}{
		"transaction_id": t.Id,
		"amount":         t.Amount.StringFixed(2),
		"currency":       t.Currency,
		"status":         string(t.Status),
	}
	if t.MatchRequestId != nil {
		data["match_request_id"] = *t.MatchRequestId
	}
	if t.InitiatingUserId != nil {
		data["initiating_user_id"] = *t.InitiatingUserId
	}
	if t.ReceivingUserId != nil {
		data["receiving_user_id"] = *t.ReceivingUserId
	}
	if t.GatewayPaymentId != nil {
		data["gateway_payment_id"] = *t.GatewayPaymentId
	}
	return data
}

func toTransactionResponse(t *entity.Transaction) *dto.TransactionResponse {
	return &dto.TransactionResponse{
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
		SettledAt:              t.SettledAt,
		RefundedAt:             t.RefundedAt,
		CreatedAt:              t.CreatedAt,
	}
}
