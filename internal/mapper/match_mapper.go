package mapper

import (
	"carematch-be/internal/entity"
	"carematch-be/internal/model"
)

type MatchMapper struct{}

func NewMatchMapper() *MatchMapper {
	return &MatchMapper{}
}

func (m *MatchMapper) ToEntity(r *model.MatchRequest) *entity.MatchRequest {
	if r == nil {
		return nil
	}
	return &entity.MatchRequest{
		Id:                 r.Id,
		FamilyProfileId:    r.FamilyProfileId,
		CaregiverProfileId: r.CaregiverProfileId,
		Status:             entity.MatchStatus(r.Status),
		Message:            r.Message,
		ProposedStart:      r.ProposedStart,
		ProposedEnd:        r.ProposedEnd,
		RequestedHours:     r.RequestedHours,
		RespondedAt:        r.RespondedAt,
		CompletedAt:        r.CompletedAt,
		CreatedAt:          r.CreatedAt,
		UpdatedAt:          r.UpdatedAt,
	}
}

func (m *MatchMapper) ToModel(r *entity.MatchRequest) *model.MatchRequest {
	if r == nil {
		return nil
	}
	return &model.MatchRequest{
		Id:                 r.Id,
		FamilyProfileId:    r.FamilyProfileId,
		CaregiverProfileId: r.CaregiverProfileId,
		Status:             string(r.Status),
		Message:            r.Message,
		ProposedStart:      r.ProposedStart,
		ProposedEnd:        r.ProposedEnd,
		RequestedHours:     r.RequestedHours,
		RespondedAt:        r.RespondedAt,
		CompletedAt:        r.CompletedAt,
		CreatedAt:          r.CreatedAt,
		UpdatedAt:          r.UpdatedAt,
	}
}

func (m *MatchMapper) PartiesToEntity(r *model.MatchRequestWithUsers) *entity.MatchParties {
	if r == nil {
		return nil
	}
	return &entity.MatchParties{
		Request:         m.ToEntity(&r.MatchRequest),
		FamilyUserId:    r.FamilyUserId,
		CaregiverUserId: r.CaregiverUserId,
	}
}
