package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"carematch-be/internal/entity"
	"carematch-be/internal/pkg/logger"
	"carematch-be/internal/pkg/serverutils"
	"carematch-be/internal/repository/memory"
	"carematch-be/internal/service"
	"carematch-be/pkg/gateway/mock"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

const testSecret = "controller-test-secret"

type harness struct {
	app   *fiber.App
	store *memory.Store
	gw    *mock.Gateway

	family           entity.User
	caregiver        entity.User
	familyProfile    entity.FamilyProfile
	caregiverProfile entity.CaregiverProfile
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		store: memory.NewStore(),
		gw:    mock.New("http://gateway.test"),
	}

	log := logger.NewNopLogger()
	profiles := service.NewProfileResolver(h.store, time.Minute)
	auth := serverutils.JwtMiddleware(testSecret)

	matches := service.NewMatchService(h.store, profiles, nil, log, 72*time.Hour)
	messaging := service.NewMessagingService(h.store, nil, log)
	reviews := service.NewReviewService(h.store, nil, log)
	transactions := service.NewTransactionService(h.store, h.gw, nil, log, service.PaymentSettings{
		Currency:   "USD",
		PendingTTL: 24 * time.Hour,
	})
	accounts := service.NewAccountService(h.store, profiles, log)

	h.app = fiber.New()
	h.app.Use(serverutils.ErrorHandlerMiddleware())
	api := h.app.Group("/api")
	NewMatchController(matches, profiles, auth).RegisterRoutes(api)
	NewConversationController(messaging, auth).RegisterRoutes(api)
	NewReviewController(reviews, auth).RegisterRoutes(api)
	NewTransactionController(transactions, auth).RegisterRoutes(api)
	NewUserController(accounts, auth).RegisterRoutes(api)
	NewHealthController(map[string]HealthCheck{
		"database": func(ctx context.Context) error { return nil },
	}).RegisterRoutes(api)

	h.family, h.familyProfile = h.addFamily(t, "family")
	h.caregiver, h.caregiverProfile = h.addCaregiver(t, "caregiver")
	return h
}

func (h *harness) addFamily(t *testing.T, name string) (entity.User, entity.FamilyProfile) {
	t.Helper()
	ctx := context.Background()
	uow := h.store.NewUnitOfWork(ctx)

	user := entity.User{Email: name + "@family.test", FullName: name, Role: entity.UserRoleFamily}
	require.NoError(t, uow.UserRepository().Create(ctx, &user))
	profile := entity.FamilyProfile{UserId: user.Id}
	require.NoError(t, uow.ProfileRepository().CreateFamilyProfile(ctx, &profile))
	return user, profile
}

func (h *harness) addCaregiver(t *testing.T, name string) (entity.User, entity.CaregiverProfile) {
	t.Helper()
	ctx := context.Background()
	uow := h.store.NewUnitOfWork(ctx)

	user := entity.User{Email: name + "@caregiver.test", FullName: name, Role: entity.UserRoleCaregiver}
	require.NoError(t, uow.UserRepository().Create(ctx, &user))
	profile := entity.CaregiverProfile{UserId: user.Id}
	require.NoError(t, uow.ProfileRepository().CreateCaregiverProfile(ctx, &profile))
	return user, profile
}

func token(t *testing.T, user entity.User) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": user.Id,
		"role":    string(user.Role),
		"exp":     time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

type response struct {
	status int
	body   serverutils.BaseResponse[json.RawMessage]
}

// do sends a request as user; a zero user sends no token. body may be
// nil, raw bytes, or anything encodable as JSON.
func (h *harness) do(t *testing.T, method, path string, user entity.User, body interface{}) response {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case []byte:
		reader = bytes.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if user.Id != 0 {
		req.Header.Set("Authorization", "Bearer "+token(t, user))
	}

	resp, err := h.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var res response
	res.status = resp.StatusCode
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&res.body))
	return res
}

func (r response) decode(t *testing.T, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(r.body.Data, out))
}
