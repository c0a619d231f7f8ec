package service

import (
	"context"
	"encoding/json"
	"fmt"

	"carematch-be/internal/entity"
	"carematch-be/internal/pkg/logger"
	"carematch-be/internal/pkg/mailer"
	"carematch-be/internal/repository/unitofwork"
	"carematch-be/pkg/events"
)

// NotificationService emails the counter-party of a lifecycle event. It is
// fed by the in-process bus in the API and by NATS in the notifier worker.
type NotificationService struct {
	uowFactory unitofwork.RepositoryFactory
	mailer     mailer.IEmailService
	logger     logger.ILogger
}

func NewNotificationService(uowFactory unitofwork.RepositoryFactory, mailer mailer.IEmailService, log logger.ILogger) *NotificationService {
	return &NotificationService{
		uowFactory: uowFactory,
		mailer:     mailer,
		logger:     log,
	}
}

// HandleEvent returns an error only for failures worth redelivering.
func (s *NotificationService) HandleEvent(ctx context.Context, event events.Event) error {
	payload := event.Payload()

	switch event.EventType() {
	case events.MatchRequestCreated:
		caregiver, family, err := s.loadPair(ctx, payload, "caregiver_user_id", "family_user_id")
		if err != nil || caregiver == nil || family == nil {
			return err
		}
		return s.mailer.SendMatchRequestReceived(caregiver.Email, family.FullName)

	case events.MatchRequestAccepted, events.MatchRequestDeclined:
		family, caregiver, err := s.loadPair(ctx, payload, "family_user_id", "caregiver_user_id")
		if err != nil || family == nil || caregiver == nil {
			return err
		}
		accepted := event.EventType() == events.MatchRequestAccepted
		return s.mailer.SendMatchRequestAnswered(family.Email, caregiver.FullName, accepted)

	case events.PaymentCompleted:
		receiverId, ok := int64Field(payload, "receiving_user_id")
		if !ok {
			return nil
		}
		receiver, err := s.loadUser(ctx, receiverId)
		if err != nil || receiver == nil {
			return err
		}
		amount, _ := payload["amount"].(string)
		currency, _ := payload["currency"].(string)
		return s.mailer.SendPaymentReceived(receiver.Email, amount, currency)
	}

	return nil
}

// loadPair resolves the recipient and the other party named in the payload.
// A missing user (deleted since the event) yields nils and no error.
func (s *NotificationService) loadPair(ctx context.Context, payload map[string]interface{}, recipientKey, otherKey string) (*entity.User, *entity.User, error) {
	recipientId, ok := int64Field(payload, recipientKey)
	if !ok {
		return nil, nil, nil
	}
	otherId, ok := int64Field(payload, otherKey)
	if !ok {
		return nil, nil, nil
	}

	recipient, err := s.loadUser(ctx, recipientId)
	if err != nil || recipient == nil {
		return nil, nil, err
	}
	other, err := s.loadUser(ctx, otherId)
	if err != nil || other == nil {
		return nil, nil, err
	}
	return recipient, other, nil
}

func (s *NotificationService) loadUser(ctx context.Context, userId int64) (*entity.User, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	user, err := uow.UserRepository().FindByID(ctx, userId)
	if err != nil {
		return nil, fmt.Errorf("load user %d: %w", userId, err)
	}
	if user == nil {
		s.logger.Debug("NOTIFICATION", "Recipient no longer exists", map[string]interface{}{"user_id": userId})
	}
	return user, nil
}

// int64Field reads an id that may have travelled through JSON.
func int64Field(payload map[string]interface{}, key string) (int64, bool) {
	switch v := payload[key].(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case float64:
		return int64(v), true
	case json.Number:
		n, err := v.Int64()
		return n, err == nil
	}
	return 0, false
}
