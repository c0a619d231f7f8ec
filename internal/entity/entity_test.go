package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchStatusTransitions(t *testing.T) {
	tests := []struct {
		from MatchStatus
		to   MatchStatus
		want bool
	}{
		{MatchStatusPending, MatchStatusAccepted, true},
		{MatchStatusPending, MatchStatusDeclined, true},
		{MatchStatusPending, MatchStatusExpired, true},
		{MatchStatusPending, MatchStatusCompleted, false},
		{MatchStatusAccepted, MatchStatusCompleted, true},
		{MatchStatusAccepted, MatchStatusPending, false},
		{MatchStatusAccepted, MatchStatusDeclined, false},
		{MatchStatusDeclined, MatchStatusAccepted, false},
		{MatchStatusExpired, MatchStatusPending, false},
		{MatchStatusCompleted, MatchStatusAccepted, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestMatchStatusTerminal(t *testing.T) {
	assert.False(t, MatchStatusPending.IsTerminal())
	assert.False(t, MatchStatusAccepted.IsTerminal())
	assert.True(t, MatchStatusDeclined.IsTerminal())
	assert.True(t, MatchStatusExpired.IsTerminal())
	assert.True(t, MatchStatusCompleted.IsTerminal())

	assert.True(t, MatchStatusAccepted.IsOpen())
	assert.False(t, MatchStatusCompleted.IsOpen())
}

func TestTransactionStatusTransitions(t *testing.T) {
	assert.True(t, TransactionStatusPending.CanTransitionTo(TransactionStatusCompleted))
	assert.True(t, TransactionStatusPending.CanTransitionTo(TransactionStatusFailed))
	assert.True(t, TransactionStatusCompleted.CanTransitionTo(TransactionStatusRefunded))
	assert.False(t, TransactionStatusCompleted.CanTransitionTo(TransactionStatusFailed))
	assert.False(t, TransactionStatusFailed.CanTransitionTo(TransactionStatusCompleted))
	assert.False(t, TransactionStatusRefunded.CanTransitionTo(TransactionStatusCompleted))

	assert.True(t, TransactionStatusFailed.IsTerminal())
	assert.True(t, TransactionStatusRefunded.IsTerminal())
	assert.False(t, TransactionStatusCompleted.IsTerminal())
}

func TestTransactionInvolvesUser(t *testing.T) {
	from, to := int64(1), int64(2)
	tx := &Transaction{InitiatingUserId: &from, ReceivingUserId: &to}

	assert.True(t, tx.InvolvesUser(1))
	assert.True(t, tx.InvolvesUser(2))
	assert.False(t, tx.InvolvesUser(3))

	orphan := &Transaction{}
	assert.False(t, orphan.InvolvesUser(1))
}
