package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"carematch-be/internal/dto"
	"carematch-be/internal/entity"
	"carematch-be/internal/pkg/apperror"
	"carematch-be/internal/pkg/logger"
	"carematch-be/internal/repository/contract"
	"carematch-be/internal/repository/unitofwork"
	"carematch-be/pkg/events"
)

type IReviewService interface {
	SubmitReview(ctx context.Context, matchRequestId int64, reviewerId int64, rating int, comment string) (*dto.ReviewResponse, error)
	UpdateReview(ctx context.Context, reviewId int64, reviewerId int64, rating int, comment string) (*dto.ReviewResponse, error)
	DeleteReview(ctx context.Context, reviewId int64, principal entity.Principal) error
	ListReviewsForUser(ctx context.Context, revieweeId int64, query *dto.PaginationQuery) (*dto.UserReviewsResponse, error)
}

type reviewService struct {
	uowFactory unitofwork.RepositoryFactory
	events     emitter
	logger     logger.ILogger
	now        func() time.Time
}

func NewReviewService(
	uowFactory unitofwork.RepositoryFactory,
	publisher events.Publisher,
	logger logger.ILogger,
) IReviewService {
	return &reviewService{
		uowFactory: uowFactory,
		events:     newEmitter(publisher, logger),
		logger:     logger,
		now:        time.Now,
	}
}

func validateRating(rating int) error {
	if rating < entity.MinRating || rating > entity.MaxRating {
		return apperror.Validation(fmt.Sprintf("rating must be between %d and %d", entity.MinRating, entity.MaxRating))
	}
	return nil
}

func (s *reviewService) SubmitReview(ctx context.Context, matchRequestId int64, reviewerId int64, rating int, comment string) (*dto.ReviewResponse, error) {
	if err := validateRating(rating); err != nil {
		return nil, err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	parties, err := uow.MatchRequestRepository().FindParties(ctx, matchRequestId, false)
	if err != nil {
		return nil, err
	}
	if parties == nil {
		return nil, apperror.NotFound("match request not found", apperror.Resource("match_request", matchRequestId))
	}
	if !parties.Involves(reviewerId) {
		return nil, apperror.Forbidden("only the family or the caregiver of this match can review it")
	}
	if parties.Request.Status != entity.MatchStatusCompleted {
		return nil, apperror.InvalidState(
			fmt.Sprintf("match request is %s, reviews need a completed match", parties.Request.Status),
			apperror.Resource("match_request", matchRequestId),
		)
	}

	reviewType := entity.ReviewTypeCaregiverToFamily
	revieweeId := parties.FamilyUserId
	if reviewerId == parties.FamilyUserId {
		reviewType = entity.ReviewTypeFamilyToCaregiver
		revieweeId = parties.CaregiverUserId
	}

	exists, err := uow.ReviewRepository().ExistsForDirection(ctx, matchRequestId, reviewType)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, duplicateReview(matchRequestId, reviewType)
	}

	review := &entity.Review{
		MatchRequestId: &matchRequestId,
		ReviewType:     reviewType,
		ReviewerId:     &reviewerId,
		RevieweeId:     &revieweeId,
		Rating:         rating,
		Comment:        comment,
		CreatedAt:      s.now(),
	}
	if err := uow.ReviewRepository().Create(ctx, review); err != nil {
		if errors.Is(err, contract.ErrDuplicate) {
			return nil, duplicateReview(matchRequestId, reviewType)
		}
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	s.events.emit(ctx, events.ReviewSubmitted, review.CreatedAt, map[string]interface{}{
		"review_id":        review.Id,
		"match_request_id": matchRequestId,
		"review_type":      string(reviewType),
		"reviewee_id":      revieweeId,
		"rating":           rating,
	})

	return toReviewResponse(review), nil
}

func duplicateReview(matchRequestId int64, reviewType entity.ReviewType) error {
	return apperror.Conflict(
		fmt.Sprintf("a %s review already exists for this match", reviewType),
		apperror.Resource("match_request", matchRequestId),
	)
}

// UpdateReview lets the author change rating and comment. The direction and
// the linked match never change.
func (s *reviewService) UpdateReview(ctx context.Context, reviewId int64, reviewerId int64, rating int, comment string) (*dto.ReviewResponse, error) {
	if err := validateRating(rating); err != nil {
		return nil, err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	review, err := uow.ReviewRepository().FindByIDForUpdate(ctx, reviewId)
	if err != nil {
		return nil, err
	}
	if review == nil {
		return nil, apperror.NotFound("review not found", apperror.Resource("review", reviewId))
	}
	if review.ReviewerId == nil || *review.ReviewerId != reviewerId {
		return nil, apperror.Forbidden("only the author can edit this review")
	}

	now := s.now()
	if err := uow.ReviewRepository().Update(ctx, reviewId, rating, comment, now); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	review.Rating = rating
	review.Comment = comment
	review.UpdatedAt = &now

	s.events.emit(ctx, events.ReviewUpdated, now, map[string]interface{}{
		"review_id":   review.Id,
		"reviewee_id": review.RevieweeId,
		"rating":      rating,
	})

	return toReviewResponse(review), nil
}

func (s *reviewService) DeleteReview(ctx context.Context, reviewId int64, principal entity.Principal) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	review, err := uow.ReviewRepository().FindByIDForUpdate(ctx, reviewId)
	if err != nil {
		return err
	}
	if review == nil {
		return apperror.NotFound("review not found", apperror.Resource("review", reviewId))
	}
	isAuthor := review.ReviewerId != nil && *review.ReviewerId == principal.UserId
	if !isAuthor && !principal.IsAdmin() {
		return apperror.Forbidden("only the author or an admin can delete this review")
	}

	if err := uow.ReviewRepository().Delete(ctx, reviewId); err != nil {
		return err
	}
	if err := uow.Commit(); err != nil {
		return err
	}

	s.events.emit(ctx, events.ReviewDeleted, s.now(), map[string]interface{}{
		"review_id":   reviewId,
		"reviewee_id": review.RevieweeId,
		"deleted_by":  principal.UserId,
	})
	return nil
}

func (s *reviewService) ListReviewsForUser(ctx context.Context, revieweeId int64, query *dto.PaginationQuery) (*dto.UserReviewsResponse, error) {
	limit, offset := query.Normalize()
	uow := s.uowFactory.NewUnitOfWork(ctx)

	user, err := uow.UserRepository().FindByID(ctx, revieweeId)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.NotFound("user not found", apperror.Resource("user", revieweeId))
	}

	reviews, total, err := uow.ReviewRepository().FindAllByReviewee(ctx, revieweeId, limit, offset)
	if err != nil {
		return nil, err
	}
	stats, err := uow.ReviewRepository().StatsForReviewee(ctx, revieweeId)
	if err != nil {
		return nil, err
	}

	items := make([]*dto.ReviewResponse, 0, len(reviews))
	for _, review := range reviews {
		items = append(items, toReviewResponse(review))
	}

	return &dto.UserReviewsResponse{
		Reviews: dto.PaginatedResponse[*dto.ReviewResponse]{
			Items: items,
			Page:  query.Page,
			Limit: limit,
			Total: total,
		},
		AverageRating: stats.AverageRating,
		ReviewCount:   stats.Count,
	}, nil
}

func toReviewResponse(r *entity.Review) *dto.ReviewResponse {
	return &dto.ReviewResponse{
		Id:             r.Id,
		MatchRequestId: r.MatchRequestId,
		ReviewType:     string(r.ReviewType),
		ReviewerId:     r.ReviewerId,
		RevieweeId:     r.RevieweeId,
		Rating:         r.Rating,
		Comment:        r.Comment,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}
