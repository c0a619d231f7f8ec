package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"carematch-be/internal/dto"
	"carematch-be/internal/entity"
	"carematch-be/internal/pkg/logger"
	"carematch-be/internal/repository/memory"
	"carematch-be/pkg/events"

	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

// Now advances one second per call so every write gets a distinct time.
func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(ctx context.Context, event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) Types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	types := make([]string, 0, len(p.events))
	for _, e := range p.events {
		types = append(types, e.EventType())
	}
	return types
}

type testEnv struct {
	store     *memory.Store
	clock     *fakeClock
	publisher *recordingPublisher
	logger    logger.ILogger

	family           entity.User
	caregiver        entity.User
	familyProfile    entity.FamilyProfile
	caregiverProfile entity.CaregiverProfile
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		store:     memory.NewStore(),
		clock:     &fakeClock{now: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)},
		publisher: &recordingPublisher{},
		logger:    logger.NewNopLogger(),
	}
	env.family, env.familyProfile = env.addFamily(t, "F")
	env.caregiver, env.caregiverProfile = env.addCaregiver(t, "C")
	return env
}

func (env *testEnv) addFamily(t *testing.T, name string) (entity.User, entity.FamilyProfile) {
	t.Helper()
	ctx := context.Background()
	uow := env.store.NewUnitOfWork(ctx)

	user := entity.User{Email: name + "@family.test", FullName: name, Role: entity.UserRoleFamily}
	require.NoError(t, uow.UserRepository().Create(ctx, &user))
	profile := entity.FamilyProfile{UserId: user.Id}
	require.NoError(t, uow.ProfileRepository().CreateFamilyProfile(ctx, &profile))
	return user, profile
}

func (env *testEnv) addCaregiver(t *testing.T, name string) (entity.User, entity.CaregiverProfile) {
	t.Helper()
	ctx := context.Background()
	uow := env.store.NewUnitOfWork(ctx)

	user := entity.User{Email: name + "@caregiver.test", FullName: name, Role: entity.UserRoleCaregiver}
	require.NoError(t, uow.UserRepository().Create(ctx, &user))
	profile := entity.CaregiverProfile{UserId: user.Id}
	require.NoError(t, uow.ProfileRepository().CreateCaregiverProfile(ctx, &profile))
	return user, profile
}

func (env *testEnv) familyPrincipal() entity.Principal {
	return entity.Principal{UserId: env.family.Id, Role: entity.UserRoleFamily}
}

func (env *testEnv) caregiverPrincipal() entity.Principal {
	return entity.Principal{UserId: env.caregiver.Id, Role: entity.UserRoleCaregiver}
}

func (env *testEnv) profiles() IProfileResolver {
	return NewProfileResolver(env.store, time.Minute)
}

func (env *testEnv) matchService() *matchService {
	svc := NewMatchService(env.store, env.profiles(), env.publisher, env.logger, 72*time.Hour).(*matchService)
	svc.now = env.clock.Now
	return svc
}

func (env *testEnv) messagingService() *messagingService {
	svc := NewMessagingService(env.store, env.publisher, env.logger).(*messagingService)
	svc.now = env.clock.Now
	return svc
}

func (env *testEnv) reviewService() *reviewService {
	svc := NewReviewService(env.store, env.publisher, env.logger).(*reviewService)
	svc.now = env.clock.Now
	return svc
}

// createRequest files a pending request from the env family to the env caregiver.
func (env *testEnv) createRequest(t *testing.T) *dto.MatchRequestResponse {
	t.Helper()
	res, err := env.matchService().CreateMatchRequest(context.Background(), env.familyProfile.Id, &dto.CreateMatchRequestRequest{
		CaregiverProfileId: env.caregiverProfile.Id,
		Message:            "Weekday mornings",
	})
	require.NoError(t, err)
	return res
}

func (env *testEnv) acceptedRequest(t *testing.T) *dto.MatchRequestResponse {
	t.Helper()
	req := env.createRequest(t)
	res, err := env.matchService().RespondToMatchRequest(context.Background(), req.Id, env.caregiver.Id, entity.MatchDecisionAccept)
	require.NoError(t, err)
	return res
}

func (env *testEnv) completedRequest(t *testing.T) *dto.MatchRequestResponse {
	t.Helper()
	req := env.acceptedRequest(t)
	res, err := env.matchService().CompleteMatch(context.Background(), req.Id, env.family.Id)
	require.NoError(t, err)
	return res
}
