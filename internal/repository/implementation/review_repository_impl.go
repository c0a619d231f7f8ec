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

type ReviewRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ReviewMapper
}

func NewReviewRepository(db *gorm.DB) contract.ReviewRepository {
	return &ReviewRepositoryImpl{
		db:     db,
		mapper: mapper.NewReviewMapper(),
	}
}

func (r *ReviewRepositoryImpl) Create(ctx context.Context, review *entity.Review) error {
	m := r.mapper.ToModel(review)
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(m).Error; err != nil {
		return translateError(err)
	}
	*review = *r.mapper.ToEntity(m)
	return nil
}

func (r *ReviewRepositoryImpl) FindByIDForUpdate(ctx context.Context, id int64) (*entity.Review, error) {
	var m model.Review
	err := specification.Apply(r.db.WithContext(ctx),
		specification.ByID{ID: id},
		specification.ForUpdate{},
	).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *ReviewRepositoryImpl) Update(ctx context.Context, id int64, rating int, comment string, updatedAt time.Time) error {
	err := r.db.WithContext(ctx).
		Model(&model.Review{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"rating":     rating,
			"comment":    comment,
			"updated_at": updatedAt,
		}).Error
	return translateError(err)
}

func (r *ReviewRepositoryImpl) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&model.Review{}, id).Error
}

func (r *ReviewRepositoryImpl) ExistsForDirection(ctx context.Context, matchRequestId int64, reviewType entity.ReviewType) (bool, error) {
	var count int64
	err := specification.Apply(r.db.WithContext(ctx).Model(&model.Review{}),
		specification.Filter("match_request_id", matchRequestId),
		specification.Filter("review_type", string(reviewType)),
	).Count(&count).Error
	return count > 0, err
}

func (r *ReviewRepositoryImpl) FindAllByReviewee(ctx context.Context, revieweeId int64, limit, offset int) ([]*entity.Review, int64, error) {
	var total int64
	if err := specification.Apply(r.db.WithContext(ctx).Model(&model.Review{}),
		specification.Filter("reviewee_id", revieweeId),
	).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var models []*model.Review
	err := specification.Apply(r.db.WithContext(ctx),
		specification.Filter("reviewee_id", revieweeId),
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.OrderBy{Field: "id", Desc: true},
		specification.Pagination{Limit: limit, Offset: offset},
	).Find(&models).Error
	if err != nil {
		return nil, 0, err
	}

	entities := make([]*entity.Review, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ToEntity(m)
	}
	return entities, total, nil
}

func (r *ReviewRepositoryImpl) StatsForReviewee(ctx context.Context, revieweeId int64) (*entity.ReviewStats, error) {
	var row struct {
		Count         int64
		AverageRating float64
	}
	err := specification.Apply(r.db.WithContext(ctx).Model(&model.Review{}),
		specification.Filter("reviewee_id", revieweeId),
	).Select("COUNT(*) AS count, COALESCE(AVG(rating), 0) AS average_rating").Scan(&row).Error
	if err != nil {
		return nil, err
	}
	return &entity.ReviewStats{Count: row.Count, AverageRating: row.AverageRating}, nil
}
