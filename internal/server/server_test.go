package server

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"carematch-be/internal/bootstrap"
	"carematch-be/internal/config"
	"carematch-be/internal/pkg/serverutils"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	cfg := &config.Config{}
	cfg.App.Port = "0"
	cfg.App.BaseURL = "http://localhost:3000"
	cfg.App.LogFilePath = t.TempDir() + "/app.log"
	cfg.App.CorsAllowedOrigins = "http://localhost:5173"
	cfg.Auth.JwtSecret = "secret"
	cfg.Payment.Provider = "mock"
	cfg.Payment.Currency = "USD"
	return cfg
}

func TestServerRoutes(t *testing.T) {
	cfg := testConfig(t)
	container := bootstrap.NewContainer(nil, cfg)
	defer container.Close()

	app := New(cfg, container).GetApp()

	resp, err := app.Test(httptest.NewRequest("GET", "/api/health", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/api/match-requests", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/api/does-not-exist", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(fiber.HeaderXRequestID))

	var body serverutils.BaseResponse[any]
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.False(t, body.Success)
	assert.Equal(t, fiber.StatusNotFound, body.Code)
	assert.Contains(t, body.Message, "GET /api/does-not-exist")
}
