package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"carematch-be/internal/dto"
	"carematch-be/internal/entity"
	"carematch-be/internal/pkg/apperror"
	"carematch-be/pkg/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmitReviewRequiresCompletedMatch(t *testing.T) {
	setups := map[string]func(t *testing.T, env *testEnv) int64{
		"pending": func(t *testing.T, env *testEnv) int64 {
			return env.createRequest(t).Id
		},
		"accepted": func(t *testing.T, env *testEnv) int64 {
			return env.acceptedRequest(t).Id
		},
		"declined": func(t *testing.T, env *testEnv) int64 {
			req := env.createRequest(t)
			_, err := env.matchService().RespondToMatchRequest(context.Background(), req.Id, env.caregiver.Id, entity.MatchDecisionDecline)
			require.NoError(t, err)
			return req.Id
		},
		"expired": func(t *testing.T, env *testEnv) int64 {
			req := env.createRequest(t)
			_, err := env.matchService().ExpireStaleRequests(context.Background(), env.clock.Now().Add(100*time.Hour))
			require.NoError(t, err)
			return req.Id
		},
	}

	for status, setup := range setups {
		t.Run(status, func(t *testing.T) {
			env := newTestEnv(t)
			requestId := setup(t, env)

			got, err := env.matchService().GetMatchRequest(context.Background(), requestId, env.familyPrincipal())
			require.NoError(t, err)
			require.Equal(t, status, got.Status)

			_, err = env.reviewService().SubmitReview(context.Background(), requestId, env.family.Id, 5, "great")
			assert.True(t, errors.Is(err, apperror.ErrInvalidState))
		})
	}
}

func TestSubmitReviewRatingBounds(t *testing.T) {
	tests := []struct {
		rating int
		valid  bool
	}{
		{0, false},
		{1, true},
		{5, true},
		{6, false},
	}

	for _, tt := range tests {
		env := newTestEnv(t)
		requestId := env.completedRequest(t).Id

		res, err := env.reviewService().SubmitReview(context.Background(), requestId, env.family.Id, tt.rating, "")
		if tt.valid {
			require.NoError(t, err, "rating %d", tt.rating)
			assert.Equal(t, tt.rating, res.Rating)
		} else {
			assert.True(t, errors.Is(err, apperror.ErrValidation), "rating %d", tt.rating)
		}
	}
}

func TestSubmitReviewOncePerDirection(t *testing.T) {
	env := newTestEnv(t)
	svc := env.reviewService()
	ctx := context.Background()
	requestId := env.completedRequest(t).Id

	fromFamily, err := svc.SubmitReview(ctx, requestId, env.family.Id, 5, "Wonderful with mum")
	require.NoError(t, err)
	assert.Equal(t, string(entity.ReviewTypeFamilyToCaregiver), fromFamily.ReviewType)
	assert.Equal(t, env.caregiver.Id, *fromFamily.RevieweeId)

	_, err = svc.SubmitReview(ctx, requestId, env.family.Id, 4, "again")
	assert.True(t, errors.Is(err, apperror.ErrConflict))

	fromCaregiver, err := svc.SubmitReview(ctx, requestId, env.caregiver.Id, 4, "Lovely family")
	require.NoError(t, err)
	assert.Equal(t, string(entity.ReviewTypeCaregiverToFamily), fromCaregiver.ReviewType)
	assert.Equal(t, env.family.Id, *fromCaregiver.RevieweeId)
}

func TestSubmitReviewRejectsOutsiders(t *testing.T) {
	env := newTestEnv(t)
	requestId := env.completedRequest(t).Id
	stranger, _ := env.addFamily(t, "Stranger")

	_, err := env.reviewService().SubmitReview(context.Background(), requestId, stranger.Id, 3, "")
	assert.True(t, errors.Is(err, apperror.ErrForbidden))

	_, err = env.reviewService().SubmitReview(context.Background(), 999, env.family.Id, 3, "")
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}

func TestListReviewsForUser(t *testing.T) {
	env := newTestEnv(t)
	svc := env.reviewService()
	ctx := context.Background()

	first := env.completedRequest(t).Id
	second := env.completedRequest(t).Id
	_, err := svc.SubmitReview(ctx, first, env.family.Id, 5, "")
	require.NoError(t, err)
	_, err = svc.SubmitReview(ctx, second, env.family.Id, 4, "")
	require.NoError(t, err)

	res, err := svc.ListReviewsForUser(ctx, env.caregiver.Id, &dto.PaginationQuery{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.ReviewCount)
	assert.InDelta(t, 4.5, res.AverageRating, 0.001)
	assert.Len(t, res.Reviews.Items, 2)

	_, err = svc.ListReviewsForUser(ctx, 999, &dto.PaginationQuery{})
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}

func TestUpdateReview(t *testing.T) {
	env := newTestEnv(t)
	svc := env.reviewService()
	ctx := context.Background()
	requestId := env.completedRequest(t).Id

	review, err := svc.SubmitReview(ctx, requestId, env.family.Id, 3, "ok")
	require.NoError(t, err)

	_, err = svc.UpdateReview(ctx, review.Id, env.family.Id, 6, "")
	assert.True(t, errors.Is(err, apperror.ErrValidation))

	_, err = svc.UpdateReview(ctx, review.Id, env.caregiver.Id, 1, "")
	assert.True(t, errors.Is(err, apperror.ErrForbidden))

	_, err = svc.UpdateReview(ctx, 999, env.family.Id, 4, "")
	assert.True(t, errors.Is(err, apperror.ErrNotFound))

	updated, err := svc.UpdateReview(ctx, review.Id, env.family.Id, 5, "Much better")
	require.NoError(t, err)
	assert.Equal(t, 5, updated.Rating)
	assert.Equal(t, "Much better", updated.Comment)
	assert.Equal(t, review.ReviewType, updated.ReviewType)
	require.NotNil(t, updated.UpdatedAt)

	res, err := svc.ListReviewsForUser(ctx, env.caregiver.Id, &dto.PaginationQuery{})
	require.NoError(t, err)
	assert.InDelta(t, 5.0, res.AverageRating, 0.001)
	assert.Contains(t, env.publisher.Types(), events.ReviewUpdated)
}

func TestDeleteReview(t *testing.T) {
	env := newTestEnv(t)
	svc := env.reviewService()
	ctx := context.Background()
	requestId := env.completedRequest(t).Id

	fromFamily, err := svc.SubmitReview(ctx, requestId, env.family.Id, 2, "")
	require.NoError(t, err)
	fromCaregiver, err := svc.SubmitReview(ctx, requestId, env.caregiver.Id, 5, "")
	require.NoError(t, err)

	err = svc.DeleteReview(ctx, fromFamily.Id, env.caregiverPrincipal())
	assert.True(t, errors.Is(err, apperror.ErrForbidden))

	require.NoError(t, svc.DeleteReview(ctx, fromFamily.Id, env.familyPrincipal()))
	err = svc.DeleteReview(ctx, fromFamily.Id, env.familyPrincipal())
	assert.True(t, errors.Is(err, apperror.ErrNotFound))

	admin := entity.Principal{UserId: 999, Role: entity.UserRoleAdmin}
	require.NoError(t, svc.DeleteReview(ctx, fromCaregiver.Id, admin))

	// The direction is free again once its review is gone.
	_, err = svc.SubmitReview(ctx, requestId, env.family.Id, 4, "second try")
	require.NoError(t, err)
}
