package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"carematch-be/internal/entity"
	"carematch-be/internal/repository/contract"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	store            *Store
	familyUser       entity.User
	caregiverUser    entity.User
	familyProfile    entity.FamilyProfile
	caregiverProfile entity.CaregiverProfile
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	f := &fixture{store: NewStore()}
	uow := f.store.NewUnitOfWork(ctx)

	f.familyUser = entity.User{Email: "f@example.com", FullName: "F", Role: entity.UserRoleFamily}
	f.caregiverUser = entity.User{Email: "c@example.com", FullName: "C", Role: entity.UserRoleCaregiver}
	require.NoError(t, uow.UserRepository().Create(ctx, &f.familyUser))
	require.NoError(t, uow.UserRepository().Create(ctx, &f.caregiverUser))

	f.familyProfile = entity.FamilyProfile{UserId: f.familyUser.Id}
	f.caregiverProfile = entity.CaregiverProfile{UserId: f.caregiverUser.Id}
	require.NoError(t, uow.ProfileRepository().CreateFamilyProfile(ctx, &f.familyProfile))
	require.NoError(t, uow.ProfileRepository().CreateCaregiverProfile(ctx, &f.caregiverProfile))
	return f
}

func TestRollbackRestoresSnapshot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	uow := f.store.NewUnitOfWork(ctx)
	require.NoError(t, uow.Begin(ctx))
	req := &entity.MatchRequest{FamilyProfileId: f.familyProfile.Id, CaregiverProfileId: f.caregiverProfile.Id}
	require.NoError(t, uow.MatchRequestRepository().Create(ctx, req))
	require.NoError(t, uow.Rollback())

	found, err := f.store.NewUnitOfWork(ctx).MatchRequestRepository().FindByID(ctx, req.Id)
	require.NoError(t, err)
	assert.Nil(t, found)

	// Rollback after rollback is harmless.
	assert.NoError(t, uow.Rollback())
}

func TestCommitThenRollbackKeepsWrites(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	uow := f.store.NewUnitOfWork(ctx)
	require.NoError(t, uow.Begin(ctx))
	req := &entity.MatchRequest{FamilyProfileId: f.familyProfile.Id, CaregiverProfileId: f.caregiverProfile.Id}
	require.NoError(t, uow.MatchRequestRepository().Create(ctx, req))
	require.NoError(t, uow.Commit())
	require.NoError(t, uow.Rollback())

	found, err := f.store.NewUnitOfWork(ctx).MatchRequestRepository().FindByID(ctx, req.Id)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, entity.MatchStatusPending, found.Status)
}

func TestOpenPairIsUnique(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	repo := f.store.NewUnitOfWork(ctx).MatchRequestRepository()

	first := &entity.MatchRequest{FamilyProfileId: f.familyProfile.Id, CaregiverProfileId: f.caregiverProfile.Id}
	require.NoError(t, repo.Create(ctx, first))

	second := &entity.MatchRequest{FamilyProfileId: f.familyProfile.Id, CaregiverProfileId: f.caregiverProfile.Id}
	err := repo.Create(ctx, second)
	assert.True(t, errors.Is(err, contract.ErrDuplicate))

	ok, err := repo.UpdateStatus(ctx, first.Id, entity.MatchStatusPending, entity.MatchStatusDeclined, time.Now())
	require.NoError(t, err)
	require.True(t, ok)

	assert.NoError(t, repo.Create(ctx, second))
}

func TestUpdateStatusIsConditional(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	repo := f.store.NewUnitOfWork(ctx).MatchRequestRepository()

	req := &entity.MatchRequest{FamilyProfileId: f.familyProfile.Id, CaregiverProfileId: f.caregiverProfile.Id}
	require.NoError(t, repo.Create(ctx, req))

	ok, err := repo.UpdateStatus(ctx, req.Id, entity.MatchStatusAccepted, entity.MatchStatusCompleted, time.Now())
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = repo.UpdateStatus(ctx, req.Id, entity.MatchStatusPending, entity.MatchStatusAccepted, time.Now())
	require.NoError(t, err)
	assert.True(t, ok)

	parties, err := repo.FindParties(ctx, req.Id, true)
	require.NoError(t, err)
	assert.Equal(t, f.familyUser.Id, parties.FamilyUserId)
	assert.Equal(t, f.caregiverUser.Id, parties.CaregiverUserId)
	assert.NotNil(t, parties.Request.RespondedAt)
}

func TestDeleteUserNullsHistory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	uow := f.store.NewUnitOfWork(ctx)

	req := &entity.MatchRequest{FamilyProfileId: f.familyProfile.Id, CaregiverProfileId: f.caregiverProfile.Id}
	require.NoError(t, uow.MatchRequestRepository().Create(ctx, req))

	conv, created, err := uow.ConversationRepository().CreateForMatchIfAbsent(ctx, req.Id, []int64{f.familyUser.Id, f.caregiverUser.Id}, time.Now())
	require.NoError(t, err)
	require.True(t, created)

	msg := &entity.Message{ConversationId: conv.Id, SenderId: &f.familyUser.Id, Content: "hi"}
	require.NoError(t, uow.MessageRepository().Create(ctx, msg))

	review := &entity.Review{
		MatchRequestId: &req.Id,
		ReviewType:     entity.ReviewTypeCaregiverToFamily,
		ReviewerId:     &f.caregiverUser.Id,
		RevieweeId:     &f.familyUser.Id,
		Rating:         5,
	}
	require.NoError(t, uow.ReviewRepository().Create(ctx, review))

	tx := &entity.Transaction{
		MatchRequestId:         &req.Id,
		InitiatingUserId:       &f.familyUser.Id,
		ReceivingUserId:        &f.caregiverUser.Id,
		Amount:                 decimal.NewFromInt(50),
		Currency:               "USD",
		TransactionReferenceId: "ref-1",
	}
	require.NoError(t, uow.TransactionRepository().Create(ctx, tx))

	require.NoError(t, uow.UserRepository().Delete(ctx, f.familyUser.Id))

	gotTx, err := uow.TransactionRepository().FindByID(ctx, tx.Id)
	require.NoError(t, err)
	require.NotNil(t, gotTx)
	assert.Nil(t, gotTx.InitiatingUserId)
	assert.Nil(t, gotTx.MatchRequestId)
	assert.Equal(t, f.caregiverUser.Id, *gotTx.ReceivingUserId)
	assert.True(t, decimal.NewFromInt(50).Equal(gotTx.Amount))

	reviews, total, err := uow.ReviewRepository().FindAllByReviewee(ctx, f.familyUser.Id, 10, 0)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, reviews)

	gotConv, err := uow.ConversationRepository().FindByID(ctx, conv.Id)
	require.NoError(t, err)
	require.NotNil(t, gotConv)
	assert.Nil(t, gotConv.MatchRequestId)

	latest, err := uow.MessageRepository().FindLatest(ctx, conv.Id)
	require.NoError(t, err)
	assert.Nil(t, latest.SenderId)

	gone, err := uow.MatchRequestRepository().FindByID(ctx, req.Id)
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestCreateForMatchIfAbsentIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	uow := f.store.NewUnitOfWork(ctx)

	req := &entity.MatchRequest{FamilyProfileId: f.familyProfile.Id, CaregiverProfileId: f.caregiverProfile.Id}
	require.NoError(t, uow.MatchRequestRepository().Create(ctx, req))

	users := []int64{f.familyUser.Id, f.caregiverUser.Id}
	first, created, err := uow.ConversationRepository().CreateForMatchIfAbsent(ctx, req.Id, users, time.Now())
	require.NoError(t, err)
	assert.True(t, created)

	second, created, err := uow.ConversationRepository().CreateForMatchIfAbsent(ctx, req.Id, users, time.Now())
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.Id, second.Id)

	ids, err := uow.ConversationRepository().ListParticipantIDs(ctx, first.Id)
	require.NoError(t, err)
	assert.ElementsMatch(t, users, ids)
}

func TestUnitsOfWorkAreSerialized(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	holder := f.store.NewUnitOfWork(ctx)
	require.NoError(t, holder.Begin(ctx))

	done := make(chan struct{})
	go func() {
		other := f.store.NewUnitOfWork(ctx)
		_ = other.Begin(ctx)
		_ = other.Commit()
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("second unit of work began while the first was open")
	case <-time.After(50 * time.Millisecond):
	}

	require.NoError(t, holder.Commit())
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("second unit of work never started")
	}
}

func TestProfileCache(t *testing.T) {
	c := NewProfileCache(time.Minute)

	_, ok := c.Get(entity.UserRoleFamily, 1)
	assert.False(t, ok)

	c.Save(entity.UserRoleFamily, 1, 10)
	c.Save(entity.UserRoleCaregiver, 2, 20)

	id, ok := c.Get(entity.UserRoleFamily, 1)
	assert.True(t, ok)
	assert.Equal(t, int64(10), id)

	_, ok = c.Get(entity.UserRoleCaregiver, 1)
	assert.False(t, ok)

	c.Forget(1)
	_, ok = c.Get(entity.UserRoleFamily, 1)
	assert.False(t, ok)
	_, ok = c.Get(entity.UserRoleCaregiver, 2)
	assert.True(t, ok)
}
