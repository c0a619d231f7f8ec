package implementation

import (
	"context"
	"errors"
	"time"

	"carematch-be/internal/entity"
	"carematch-be/internal/mapper"
	"carematch-be/internal/model"
	"carematch-be/internal/repository/contract"
	"carematch-be/internal/repository/specification"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type MatchRequestRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.MatchMapper
}

func NewMatchRequestRepository(db *gorm.DB) contract.MatchRequestRepository {
	return &MatchRequestRepositoryImpl{
		db:     db,
		mapper: mapper.NewMatchMapper(),
	}
}

// withParties joins both profiles so every row carries the two user ids.
func (r *MatchRequestRepositoryImpl) withParties(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("match_requests").
		Select("match_requests.*, fp.user_id AS family_user_id, cp.user_id AS caregiver_user_id").
		Joins("JOIN family_profiles fp ON fp.id = match_requests.family_profile_id").
		Joins("JOIN caregiver_profiles cp ON cp.id = match_requests.caregiver_profile_id")
}

func (r *MatchRequestRepositoryImpl) Create(ctx context.Context, request *entity.MatchRequest) error {
	m := r.mapper.ToModel(request)
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(m).Error; err != nil {
		return translateError(err)
	}
	*request = *r.mapper.ToEntity(m)
	return nil
}

func (r *MatchRequestRepositoryImpl) FindByID(ctx context.Context, id int64) (*entity.MatchRequest, error) {
	var m model.MatchRequest
	if err := specification.Apply(r.db.WithContext(ctx), specification.ByID{ID: id}).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *MatchRequestRepositoryImpl) FindParties(ctx context.Context, id int64, forUpdate bool) (*entity.MatchParties, error) {
	query := r.withParties(ctx).Where("match_requests.id = ?", id)
	if forUpdate {
		query = query.Clauses(clause.Locking{Strength: "UPDATE", Table: clause.Table{Name: "match_requests"}})
	}

	var rows []model.MatchRequestWithUsers
	if err := query.Limit(1).Scan(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return r.mapper.PartiesToEntity(&rows[0]), nil
}

func (r *MatchRequestRepositoryImpl) ExistsOpenForPair(ctx context.Context, familyProfileId, caregiverProfileId int64) (bool, error) {
	var count int64
	query := specification.Apply(r.db.WithContext(ctx).Model(&model.MatchRequest{}),
		specification.MatchForPair{FamilyProfileID: familyProfileId, CaregiverProfileID: caregiverProfileId},
		specification.MatchOpen{},
	)
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *MatchRequestRepositoryImpl) UpdateStatus(ctx context.Context, id int64, from, to entity.MatchStatus, at time.Time) (bool, error) {
	updates := map[string]interface{}{
		"status":     string(to),
		"updated_at": at,
	}
	switch to {
	case entity.MatchStatusAccepted, entity.MatchStatusDeclined:
		updates["responded_at"] = at
	case entity.MatchStatusCompleted:
		updates["completed_at"] = at
	}

	res := r.db.WithContext(ctx).
		Model(&model.MatchRequest{}).
		Where("id = ? AND status = ?", id, string(from)).
		Updates(updates)
	if res.Error != nil {
		return false, translateError(res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *MatchRequestRepositoryImpl) ExpirePendingBefore(ctx context.Context, cutoff, now time.Time) (int64, error) {
	query := specification.Apply(r.db.WithContext(ctx).Model(&model.MatchRequest{}),
		specification.ByStatus{Status: string(entity.MatchStatusPending)},
		specification.CreatedBefore{Cutoff: cutoff},
	)
	res := query.Updates(map[string]interface{}{
		"status":     string(entity.MatchStatusExpired),
		"updated_at": now,
	})
	return res.RowsAffected, res.Error
}

func (r *MatchRequestRepositoryImpl) FindAll(ctx context.Context, filter contract.MatchRequestFilter) ([]*entity.MatchParties, int64, error) {
	var specs []specification.Specification
	if filter.FamilyProfileId != nil {
		specs = append(specs, specification.Filter("match_requests.family_profile_id", *filter.FamilyProfileId))
	}
	if filter.CaregiverProfileId != nil {
		specs = append(specs, specification.Filter("match_requests.caregiver_profile_id", *filter.CaregiverProfileId))
	}
	if filter.Status != nil {
		specs = append(specs, specification.Filter("match_requests.status", string(*filter.Status)))
	}

	var total int64
	if err := specification.Apply(r.db.WithContext(ctx).Model(&model.MatchRequest{}), specs...).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	specs = append(specs,
		specification.OrderBy{Field: "match_requests.created_at", Desc: true},
		specification.OrderBy{Field: "match_requests.id", Desc: true},
		specification.Pagination{Limit: filter.Limit, Offset: filter.Offset},
	)

	var rows []model.MatchRequestWithUsers
	if err := specification.Apply(r.withParties(ctx), specs...).Scan(&rows).Error; err != nil {
		return nil, 0, err
	}

	result := make([]*entity.MatchParties, len(rows))
	for i := range rows {
		result[i] = r.mapper.PartiesToEntity(&rows[i])
	}
	return result, total, nil
}
