package controller

import (
	"errors"
	"fmt"
	"testing"

	"carematch-be/internal/dto"
	"carematch-be/internal/entity"
	"carematch-be/pkg/gateway"
	"carematch-be/pkg/gateway/mock"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (h *harness) initiate(t *testing.T, matchId int64) response {
	t.Helper()
	return h.do(t, "POST", "/api/transactions", h.family, dto.InitiatePaymentRequest{
		MatchRequestId: matchId,
		Amount:         decimal.RequireFromString("50.00"),
	})
}

func TestPaymentFlowEndpoints(t *testing.T) {
	h := newHarness(t)
	match := h.acceptMatch(t)

	initiated := h.initiate(t, match.Id)
	require.Equal(t, fiber.StatusCreated, initiated.status)
	var tx dto.TransactionResponse
	initiated.decode(t, &tx)
	assert.Equal(t, string(entity.TransactionStatusPending), tx.Status)
	assert.Equal(t, "USD", tx.Currency)
	require.NotNil(t, tx.GatewayPaymentId)
	require.NotNil(t, tx.ApprovalURL)

	callback := h.do(t, "POST", "/api/payments/callback", entity.User{}, mock.Callback(*tx.GatewayPaymentId, gateway.OutcomeApproved))
	assert.Equal(t, fiber.StatusOK, callback.status)

	// Replays and unknown payments are still acknowledged.
	replay := h.do(t, "POST", "/api/payments/callback", entity.User{}, mock.Callback(*tx.GatewayPaymentId, gateway.OutcomeFailed))
	assert.Equal(t, fiber.StatusOK, replay.status)
	unknown := h.do(t, "POST", "/api/payments/callback", entity.User{}, mock.Callback("PAY-unknown", gateway.OutcomeApproved))
	assert.Equal(t, fiber.StatusOK, unknown.status)
	garbage := h.do(t, "POST", "/api/payments/callback", entity.User{}, []byte("not json"))
	assert.Equal(t, fiber.StatusOK, garbage.status)

	shown := h.do(t, "GET", fmt.Sprintf("/api/transactions/%d", tx.Id), h.caregiver, nil)
	require.Equal(t, fiber.StatusOK, shown.status)
	var settled dto.TransactionResponse
	shown.decode(t, &settled)
	assert.Equal(t, string(entity.TransactionStatusCompleted), settled.Status)
	assert.NotNil(t, settled.SettledAt)
	assert.True(t, decimal.NewFromInt(50).Equal(settled.Amount))

	familyRefund := h.do(t, "POST", fmt.Sprintf("/api/transactions/%d/refund", tx.Id), h.family, nil)
	assert.Equal(t, fiber.StatusForbidden, familyRefund.status)

	refunded := h.do(t, "POST", fmt.Sprintf("/api/transactions/%d/refund", tx.Id), h.caregiver, nil)
	require.Equal(t, fiber.StatusOK, refunded.status)
	var refund dto.TransactionResponse
	refunded.decode(t, &refund)
	assert.Equal(t, string(entity.TransactionStatusRefunded), refund.Status)

	list := h.do(t, "GET", "/api/transactions?status=refunded", h.family, nil)
	require.Equal(t, fiber.StatusOK, list.status)
	var page dto.PaginatedResponse[dto.TransactionResponse]
	list.decode(t, &page)
	assert.Equal(t, int64(1), page.Total)
}

func TestInitiatePaymentEndpointErrors(t *testing.T) {
	h := newHarness(t)
	pending := h.createMatch(t)

	notAccepted := h.initiate(t, pending.Id)
	assert.Equal(t, fiber.StatusConflict, notAccepted.status)

	zero := h.do(t, "POST", "/api/transactions", h.family, dto.InitiatePaymentRequest{MatchRequestId: pending.Id, Amount: decimal.Zero})
	assert.Equal(t, fiber.StatusUnprocessableEntity, zero.status)

	h.do(t, "POST", fmt.Sprintf("/api/match-requests/%d/respond", pending.Id), h.caregiver, dto.RespondMatchRequestRequest{Decision: "accept"})

	h.gw.FailNext(errors.New("card processor offline"))
	failed := h.initiate(t, pending.Id)
	assert.Equal(t, fiber.StatusBadGateway, failed.status)
	assert.NotContains(t, failed.body.Message, "card processor")

	// The failed attempt is recorded and a retry succeeds.
	retry := h.initiate(t, pending.Id)
	assert.Equal(t, fiber.StatusCreated, retry.status)

	list := h.do(t, "GET", "/api/transactions", h.family, nil)
	var page dto.PaginatedResponse[dto.TransactionResponse]
	list.decode(t, &page)
	assert.Equal(t, int64(2), page.Total)
}
