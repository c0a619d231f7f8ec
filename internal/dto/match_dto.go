package dto

import (
	"time"
)

type CreateMatchRequestRequest struct {
	CaregiverProfileId int64      `json:"caregiver_profile_id" validate:"required,gt=0"`
	Message            string     `json:"message" validate:"max=2000"`
	ProposedStart      *time.Time `json:"proposed_start"`
	ProposedEnd        *time.Time `json:"proposed_end"`
	RequestedHours     *int       `json:"requested_hours"`
}

type RespondMatchRequestRequest struct {
	Decision string `json:"decision" validate:"required,oneof=accept decline"`
}

type ListMatchRequestsQuery struct {
	PaginationQuery
	Status string `query:"status" validate:"omitempty,oneof=pending accepted declined expired completed"`
}

type MatchRequestResponse struct {
	Id                 int64      `json:"id"`
	FamilyProfileId    int64      `json:"family_profile_id"`
	CaregiverProfileId int64      `json:"caregiver_profile_id"`
	FamilyUserId       int64      `json:"family_user_id"`
	CaregiverUserId    int64      `json:"caregiver_user_id"`
	Status             string     `json:"status"`
	Message            string     `json:"message"`
	ProposedStart      *time.Time `json:"proposed_start"`
	ProposedEnd        *time.Time `json:"proposed_end"`
	RequestedHours     *int       `json:"requested_hours"`
	RespondedAt        *time.Time `json:"responded_at"`
	CompletedAt        *time.Time `json:"completed_at"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
	ConversationId     *int64     `json:"conversation_id,omitempty"`
}
