package dto

import (
	"time"
)

// Rating is range-checked by the service so out-of-range values surface
// as a validation error with the allowed bounds.
type SubmitReviewRequest struct {
	MatchRequestId int64  `json:"match_request_id" validate:"required,gt=0"`
	Rating         int    `json:"rating"`
	Comment        string `json:"comment" validate:"max=2000"`
}

type ReviewResponse struct {
	Id             int64      `json:"id"`
	MatchRequestId *int64     `json:"match_request_id"`
	ReviewType     string     `json:"review_type"`
	ReviewerId     *int64     `json:"reviewer_id"`
	RevieweeId     *int64     `json:"reviewee_id"`
	Rating         int        `json:"rating"`
	Comment        string     `json:"comment"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      *time.Time `json:"updated_at,omitempty"`
}

type UpdateReviewRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment" validate:"max=2000"`
}

type UserReviewsResponse struct {
	Reviews       PaginatedResponse[*ReviewResponse] `json:"reviews"`
	AverageRating float64                            `json:"average_rating"`
	ReviewCount   int64                              `json:"review_count"`
}
