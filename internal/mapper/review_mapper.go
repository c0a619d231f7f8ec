package mapper

import (
	"carematch-be/internal/entity"
	"carematch-be/internal/model"
)

type ReviewMapper struct{}

func NewReviewMapper() *ReviewMapper {
	return &ReviewMapper{}
}

func (m *ReviewMapper) ToEntity(r *model.Review) *entity.Review {
	if r == nil {
		return nil
	}
	return &entity.Review{
		Id:             r.Id,
		MatchRequestId: r.MatchRequestId,
		ReviewType:     entity.ReviewType(r.ReviewType),
		ReviewerId:     r.ReviewerId,
		RevieweeId:     r.RevieweeId,
		Rating:         r.Rating,
		Comment:        r.Comment,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

func (m *ReviewMapper) ToModel(r *entity.Review) *model.Review {
	if r == nil {
		return nil
	}
	return &model.Review{
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
