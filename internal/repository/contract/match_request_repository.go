package contract

import (
	"context"
	"time"

	"carematch-be/internal/entity"
)

type MatchRequestFilter struct {
	FamilyProfileId    *int64
	CaregiverProfileId *int64
	Status             *entity.MatchStatus
	Limit              int
	Offset             int
}

type MatchRequestRepository interface {
	Create(ctx context.Context, request *entity.MatchRequest) error
	FindByID(ctx context.Context, id int64) (*entity.MatchRequest, error)
	// FindParties loads the request with the user ids behind both profiles.
	// forUpdate locks the request row.
	FindParties(ctx context.Context, id int64, forUpdate bool) (*entity.MatchParties, error)
	ExistsOpenForPair(ctx context.Context, familyProfileId, caregiverProfileId int64) (bool, error)
	// UpdateStatus moves the request from -> to only if it is still in from.
	// Returns false when the row was not in the expected status.
	UpdateStatus(ctx context.Context, id int64, from, to entity.MatchStatus, at time.Time) (bool, error)
	ExpirePendingBefore(ctx context.Context, cutoff, now time.Time) (int64, error)
	FindAll(ctx context.Context, filter MatchRequestFilter) ([]*entity.MatchParties, int64, error)
}
