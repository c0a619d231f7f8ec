package service

import (
	"context"
	"testing"
	"time"

	"carematch-be/pkg/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sentMail struct {
	kind string
	to   string
	arg  string
}

type recordingMailer struct {
	sent []sentMail
}

func (m *recordingMailer) SendMatchRequestReceived(toEmail, familyName string) error {
	m.sent = append(m.sent, sentMail{kind: "received", to: toEmail, arg: familyName})
	return nil
}

func (m *recordingMailer) SendMatchRequestAnswered(toEmail, caregiverName string, accepted bool) error {
	kind := "declined"
	if accepted {
		kind = "accepted"
	}
	m.sent = append(m.sent, sentMail{kind: kind, to: toEmail, arg: caregiverName})
	return nil
}

func (m *recordingMailer) SendPaymentReceived(toEmail, amount, currency string) error {
	m.sent = append(m.sent, sentMail{kind: "payment", to: toEmail, arg: amount + " " + currency})
	return nil
}

// roundTrip mimics delivery through a transport: ids arrive as float64.
func roundTrip(t *testing.T, eventType string, data map[string]interface{}) events.Event {
	t.Helper()
	raw, err := events.Marshal(events.BaseEvent{Type: eventType, Data: data, OccurredAt: time.Now()})
	require.NoError(t, err)
	event, err := events.Unmarshal(raw)
	require.NoError(t, err)
	return event
}

func TestNotificationServiceEmailsCounterParty(t *testing.T) {
	env := newTestEnv(t)
	mailer := &recordingMailer{}
	svc := NewNotificationService(env.store, mailer, env.logger)
	ctx := context.Background()

	pair := map[string]interface{}{
		"match_request_id":  1,
		"family_user_id":    env.family.Id,
		"caregiver_user_id": env.caregiver.Id,
	}

	require.NoError(t, svc.HandleEvent(ctx, roundTrip(t, events.MatchRequestCreated, pair)))
	require.NoError(t, svc.HandleEvent(ctx, roundTrip(t, events.MatchRequestAccepted, pair)))
	require.NoError(t, svc.HandleEvent(ctx, roundTrip(t, events.PaymentCompleted, map[string]interface{}{
		"receiving_user_id": env.caregiver.Id,
		"amount":            "50.00",
		"currency":          "USD",
	})))
	require.NoError(t, svc.HandleEvent(ctx, roundTrip(t, events.MessageSent, pair)))

	assert.Equal(t, []sentMail{
		{kind: "received", to: env.caregiver.Email, arg: "F"},
		{kind: "accepted", to: env.family.Email, arg: "C"},
		{kind: "payment", to: env.caregiver.Email, arg: "50.00 USD"},
	}, mailer.sent)
}

func TestNotificationServiceSkipsDeletedUsers(t *testing.T) {
	env := newTestEnv(t)
	mailer := &recordingMailer{}
	svc := NewNotificationService(env.store, mailer, env.logger)

	err := svc.HandleEvent(context.Background(), roundTrip(t, events.MatchRequestDeclined, map[string]interface{}{
		"family_user_id":    999,
		"caregiver_user_id": env.caregiver.Id,
	}))

	require.NoError(t, err)
	assert.Empty(t, mailer.sent)
}
