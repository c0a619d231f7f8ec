package serverutils

import (
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"carematch-be/internal/entity"
	"carematch-be/internal/pkg/apperror"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, method jwt.SigningMethod, key interface{}, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func newTestApp() *fiber.App {
	app := fiber.New()
	app.Use(ErrorHandlerMiddleware())
	app.Get("/me", JwtMiddleware(testSecret), func(ctx *fiber.Ctx) error {
		principal, err := GetPrincipal(ctx)
		if err != nil {
			return err
		}
		return ctx.JSON(SuccessResponse("ok", principal))
	})
	return app
}

func decode(t *testing.T, body io.Reader) BaseResponse[json.RawMessage] {
	t.Helper()
	var res BaseResponse[json.RawMessage]
	require.NoError(t, json.NewDecoder(body).Decode(&res))
	return res
}

func TestJwtMiddleware(t *testing.T) {
	valid := signToken(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{
		"user_id": 42,
		"role":    "family",
		"exp":     time.Now().Add(time.Hour).Unix(),
	})

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"valid token", "Bearer " + valid, fiber.StatusOK},
		{"missing header", "", fiber.StatusUnauthorized},
		{"wrong secret", "Bearer " + signToken(t, jwt.SigningMethodHS256, []byte("other"), jwt.MapClaims{"user_id": 42, "role": "family"}), fiber.StatusUnauthorized},
		{"unknown role", "Bearer " + signToken(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{"user_id": 42, "role": "root"}), fiber.StatusUnauthorized},
		{"missing user", "Bearer " + signToken(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{"role": "family"}), fiber.StatusUnauthorized},
		{"expired", "Bearer " + signToken(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{"user_id": 42, "role": "family", "exp": time.Now().Add(-time.Hour).Unix()}), fiber.StatusUnauthorized},
		{"wrong algorithm", "Bearer " + signToken(t, jwt.SigningMethodHS512, []byte(testSecret), jwt.MapClaims{"user_id": 42, "role": "family"}), fiber.StatusUnauthorized},
	}

	app := newTestApp()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)

			res := decode(t, resp.Body)
			assert.Equal(t, tt.status == fiber.StatusOK, res.Success)
			if tt.status == fiber.StatusOK {
				var principal entity.Principal
				require.NoError(t, json.Unmarshal(res.Data, &principal))
				assert.Equal(t, int64(42), principal.UserId)
				assert.Equal(t, entity.UserRoleFamily, principal.Role)
			}
		})
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{apperror.Validation("bad"), fiber.StatusUnprocessableEntity},
		{apperror.Conflict("open", "match_request:1"), fiber.StatusConflict},
		{apperror.NotFound("missing", "match_request:1"), fiber.StatusNotFound},
		{apperror.Forbidden("no"), fiber.StatusForbidden},
		{apperror.InvalidState("not pending", "match_request:1"), fiber.StatusConflict},
		{apperror.Gateway("payment gateway unavailable", errors.New("dial tcp")), fiber.StatusBadGateway},
		{apperror.Unauthenticated("who"), fiber.StatusUnauthorized},
		{fiber.ErrMethodNotAllowed, fiber.StatusMethodNotAllowed},
		{errors.New("boom"), fiber.StatusInternalServerError},
	}

	for _, tt := range tests {
		status, _ := StatusFor(tt.err)
		assert.Equal(t, tt.status, status, tt.err.Error())
	}
}

func TestStatusForHidesInternalDetail(t *testing.T) {
	_, msg := StatusFor(errors.New("pq: password authentication failed"))
	assert.Equal(t, "internal server error", msg)

	_, msg = StatusFor(apperror.Gateway("payment gateway unavailable", errors.New("secret key rejected")))
	assert.Equal(t, "payment gateway unavailable", msg)

	_, msg = StatusFor(apperror.Conflict("open match request exists", "family_profile:1,caregiver_profile:2"))
	assert.Contains(t, msg, "caregiver_profile:2")
}

func TestValidateRequest(t *testing.T) {
	type payload struct {
		Name     string `validate:"required"`
		Decision string `validate:"required,oneof=accept decline"`
	}

	assert.NoError(t, ValidateRequest(payload{Name: "x", Decision: "accept"}))

	err := ValidateRequest(payload{Decision: "maybe"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperror.ErrValidation))
	assert.Contains(t, err.Error(), "name is required")
	assert.Contains(t, err.Error(), "decision must be one of [accept decline]")
}

func TestParamID(t *testing.T) {
	app := fiber.New()
	app.Use(ErrorHandlerMiddleware())
	app.Get("/items/:id", func(ctx *fiber.Ctx) error {
		id, err := ParamID(ctx, "id")
		if err != nil {
			return err
		}
		return ctx.JSON(SuccessResponse("ok", id))
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/items/17", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/items/abc", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
}
