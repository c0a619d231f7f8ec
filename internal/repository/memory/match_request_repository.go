package memory

import (
	"context"
	"fmt"
	"time"

	"carematch-be/internal/entity"
	"carematch-be/internal/repository/contract"
)

type matchRequestRepository struct {
	u *UnitOfWork
}

func parties(t *tables, m entity.MatchRequest) *entity.MatchParties {
	return &entity.MatchParties{
		Request:         &m,
		FamilyUserId:    t.families[m.FamilyProfileId].UserId,
		CaregiverUserId: t.caregivers[m.CaregiverProfileId].UserId,
	}
}

func openForPair(t *tables, familyProfileId, caregiverProfileId int64) bool {
	for _, m := range t.matches {
		if m.FamilyProfileId == familyProfileId && m.CaregiverProfileId == caregiverProfileId && m.Status.IsOpen() {
			return true
		}
	}
	return false
}

func (r *matchRequestRepository) Create(ctx context.Context, request *entity.MatchRequest) error {
	return r.u.run(func(t *tables) error {
		if _, ok := t.families[request.FamilyProfileId]; !ok {
			return fmt.Errorf("match_requests.family_profile_id: profile %d does not exist", request.FamilyProfileId)
		}
		if _, ok := t.caregivers[request.CaregiverProfileId]; !ok {
			return fmt.Errorf("match_requests.caregiver_profile_id: profile %d does not exist", request.CaregiverProfileId)
		}
		row := *request
		if row.Status == "" {
			row.Status = entity.MatchStatusPending
		}
		if row.Status.IsOpen() && openForPair(t, row.FamilyProfileId, row.CaregiverProfileId) {
			return fmt.Errorf("%w: ux_match_requests_open_pair", contract.ErrDuplicate)
		}
		row.Id = t.nextID("match_requests")
		row.CreatedAt = stamp(row.CreatedAt)
		if row.UpdatedAt.IsZero() {
			row.UpdatedAt = row.CreatedAt
		}
		t.matches[row.Id] = row
		*request = row
		return nil
	})
}

func (r *matchRequestRepository) FindByID(ctx context.Context, id int64) (*entity.MatchRequest, error) {
	var found *entity.MatchRequest
	err := r.u.run(func(t *tables) error {
		if row, ok := t.matches[id]; ok {
			found = &row
		}
		return nil
	})
	return found, err
}

func (r *matchRequestRepository) FindParties(ctx context.Context, id int64, forUpdate bool) (*entity.MatchParties, error) {
	var found *entity.MatchParties
	err := r.u.run(func(t *tables) error {
		if row, ok := t.matches[id]; ok {
			found = parties(t, row)
		}
		return nil
	})
	return found, err
}

func (r *matchRequestRepository) ExistsOpenForPair(ctx context.Context, familyProfileId, caregiverProfileId int64) (bool, error) {
	var exists bool
	err := r.u.run(func(t *tables) error {
		exists = openForPair(t, familyProfileId, caregiverProfileId)
		return nil
	})
	return exists, err
}

func (r *matchRequestRepository) UpdateStatus(ctx context.Context, id int64, from, to entity.MatchStatus, at time.Time) (bool, error) {
	var updated bool
	err := r.u.run(func(t *tables) error {
		row, ok := t.matches[id]
		if !ok || row.Status != from {
			return nil
		}
		row.Status = to
		row.UpdatedAt = at
		switch to {
		case entity.MatchStatusAccepted, entity.MatchStatusDeclined:
			row.RespondedAt = &at
		case entity.MatchStatusCompleted:
			row.CompletedAt = &at
		}
		t.matches[id] = row
		updated = true
		return nil
	})
	return updated, err
}

func (r *matchRequestRepository) ExpirePendingBefore(ctx context.Context, cutoff, now time.Time) (int64, error) {
	var count int64
	err := r.u.run(func(t *tables) error {
		for id, row := range t.matches {
			if row.Status == entity.MatchStatusPending && row.CreatedAt.Before(cutoff) {
				row.Status = entity.MatchStatusExpired
				row.UpdatedAt = now
				t.matches[id] = row
				count++
			}
		}
		return nil
	})
	return count, err
}

func (r *matchRequestRepository) FindAll(ctx context.Context, filter contract.MatchRequestFilter) ([]*entity.MatchParties, int64, error) {
	var (
		result []*entity.MatchParties
		total  int64
	)
	err := r.u.run(func(t *tables) error {
		var rows []entity.MatchRequest
		for _, row := range t.matches {
			if filter.FamilyProfileId != nil && row.FamilyProfileId != *filter.FamilyProfileId {
				continue
			}
			if filter.CaregiverProfileId != nil && row.CaregiverProfileId != *filter.CaregiverProfileId {
				continue
			}
			if filter.Status != nil && row.Status != *filter.Status {
				continue
			}
			rows = append(rows, row)
		}
		total = int64(len(rows))
		newestFirst(rows, func(m entity.MatchRequest) (time.Time, int64) { return m.CreatedAt, m.Id })
		for _, row := range paginate(rows, filter.Limit, filter.Offset) {
			result = append(result, parties(t, row))
		}
		return nil
	})
	return result, total, err
}
