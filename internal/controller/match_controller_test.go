package controller

import (
	"fmt"
	"testing"

	"carematch-be/internal/dto"
	"carematch-be/internal/entity"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (h *harness) createMatch(t *testing.T) dto.MatchRequestResponse {
	t.Helper()
	res := h.do(t, "POST", "/api/match-requests", h.family, dto.CreateMatchRequestRequest{
		CaregiverProfileId: h.caregiverProfile.Id,
		Message:            "Weekday mornings",
	})
	require.Equal(t, fiber.StatusCreated, res.status)

	var match dto.MatchRequestResponse
	res.decode(t, &match)
	return match
}

func (h *harness) acceptMatch(t *testing.T) dto.MatchRequestResponse {
	t.Helper()
	match := h.createMatch(t)
	res := h.do(t, "POST", fmt.Sprintf("/api/match-requests/%d/respond", match.Id), h.caregiver, dto.RespondMatchRequestRequest{Decision: "accept"})
	require.Equal(t, fiber.StatusOK, res.status)

	var accepted dto.MatchRequestResponse
	res.decode(t, &accepted)
	return accepted
}

func TestCreateMatchRequestEndpoint(t *testing.T) {
	h := newHarness(t)

	match := h.createMatch(t)
	assert.Equal(t, string(entity.MatchStatusPending), match.Status)
	assert.Equal(t, h.familyProfile.Id, match.FamilyProfileId)

	dup := h.do(t, "POST", "/api/match-requests", h.family, dto.CreateMatchRequestRequest{CaregiverProfileId: h.caregiverProfile.Id})
	assert.Equal(t, fiber.StatusConflict, dup.status)
	assert.False(t, dup.body.Success)
	assert.Contains(t, dup.body.Message, fmt.Sprintf("caregiver_profile:%d", h.caregiverProfile.Id))

	asCaregiver := h.do(t, "POST", "/api/match-requests", h.caregiver, dto.CreateMatchRequestRequest{CaregiverProfileId: h.caregiverProfile.Id})
	assert.Equal(t, fiber.StatusForbidden, asCaregiver.status)

	missing := h.do(t, "POST", "/api/match-requests", h.family, map[string]interface{}{})
	assert.Equal(t, fiber.StatusUnprocessableEntity, missing.status)

	malformed := h.do(t, "POST", "/api/match-requests", h.family, []byte("{not json"))
	assert.Equal(t, fiber.StatusUnprocessableEntity, malformed.status)

	anonymous := h.do(t, "POST", "/api/match-requests", entity.User{}, dto.CreateMatchRequestRequest{CaregiverProfileId: h.caregiverProfile.Id})
	assert.Equal(t, fiber.StatusUnauthorized, anonymous.status)
}

func TestRespondEndpoint(t *testing.T) {
	h := newHarness(t)
	match := h.createMatch(t)
	path := fmt.Sprintf("/api/match-requests/%d/respond", match.Id)

	asFamily := h.do(t, "POST", path, h.family, dto.RespondMatchRequestRequest{Decision: "accept"})
	assert.Equal(t, fiber.StatusForbidden, asFamily.status)

	badDecision := h.do(t, "POST", path, h.caregiver, dto.RespondMatchRequestRequest{Decision: "maybe"})
	assert.Equal(t, fiber.StatusUnprocessableEntity, badDecision.status)

	accepted := h.do(t, "POST", path, h.caregiver, dto.RespondMatchRequestRequest{Decision: "accept"})
	require.Equal(t, fiber.StatusOK, accepted.status)
	var body dto.MatchRequestResponse
	accepted.decode(t, &body)
	assert.Equal(t, string(entity.MatchStatusAccepted), body.Status)
	require.NotNil(t, body.ConversationId)

	replay := h.do(t, "POST", path, h.caregiver, dto.RespondMatchRequestRequest{Decision: "accept"})
	assert.Equal(t, fiber.StatusOK, replay.status)

	decline := h.do(t, "POST", path, h.caregiver, dto.RespondMatchRequestRequest{Decision: "decline"})
	assert.Equal(t, fiber.StatusConflict, decline.status)
}

func TestCompleteAndShowEndpoints(t *testing.T) {
	h := newHarness(t)
	stranger, _ := h.addFamily(t, "stranger")
	match := h.acceptMatch(t)

	forbidden := h.do(t, "POST", fmt.Sprintf("/api/match-requests/%d/complete", match.Id), stranger, nil)
	assert.Equal(t, fiber.StatusForbidden, forbidden.status)

	completed := h.do(t, "POST", fmt.Sprintf("/api/match-requests/%d/complete", match.Id), h.family, nil)
	require.Equal(t, fiber.StatusOK, completed.status)

	shown := h.do(t, "GET", fmt.Sprintf("/api/match-requests/%d", match.Id), h.caregiver, nil)
	require.Equal(t, fiber.StatusOK, shown.status)
	var body dto.MatchRequestResponse
	shown.decode(t, &body)
	assert.Equal(t, string(entity.MatchStatusCompleted), body.Status)

	hidden := h.do(t, "GET", fmt.Sprintf("/api/match-requests/%d", match.Id), stranger, nil)
	assert.Equal(t, fiber.StatusForbidden, hidden.status)

	notFound := h.do(t, "GET", "/api/match-requests/9999", h.family, nil)
	assert.Equal(t, fiber.StatusNotFound, notFound.status)

	badID := h.do(t, "GET", "/api/match-requests/abc", h.family, nil)
	assert.Equal(t, fiber.StatusUnprocessableEntity, badID.status)
}

func TestListMatchRequestsEndpoint(t *testing.T) {
	h := newHarness(t)
	h.createMatch(t)

	res := h.do(t, "GET", "/api/match-requests?status=pending&limit=5", h.caregiver, nil)
	require.Equal(t, fiber.StatusOK, res.status)
	var page dto.PaginatedResponse[dto.MatchRequestResponse]
	res.decode(t, &page)
	assert.Equal(t, int64(1), page.Total)
	assert.Equal(t, 5, page.Limit)

	invalid := h.do(t, "GET", "/api/match-requests?status=bogus", h.caregiver, nil)
	assert.Equal(t, fiber.StatusUnprocessableEntity, invalid.status)
}
