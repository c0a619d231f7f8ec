package controller

import (
	"fmt"
	"testing"

	"carematch-be/internal/entity"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

func TestDeleteUserEndpoint(t *testing.T) {
	h := newHarness(t)
	other, _ := h.addFamily(t, "other")

	forbidden := h.do(t, "DELETE", fmt.Sprintf("/api/users/%d", other.Id), h.family, nil)
	assert.Equal(t, fiber.StatusForbidden, forbidden.status)

	admin := entity.User{Id: 1000, Role: entity.UserRoleAdmin}
	missing := h.do(t, "DELETE", "/api/users/9999", admin, nil)
	assert.Equal(t, fiber.StatusNotFound, missing.status)

	deleted := h.do(t, "DELETE", fmt.Sprintf("/api/users/%d", other.Id), other, nil)
	assert.Equal(t, fiber.StatusOK, deleted.status)
	assert.True(t, deleted.body.Success)
}

func TestHealthEndpoint(t *testing.T) {
	h := newHarness(t)

	res := h.do(t, "GET", "/api/health", entity.User{}, nil)
	assert.Equal(t, fiber.StatusOK, res.status)
	assert.Contains(t, string(res.body.Data), `"database":"ok"`)
}
