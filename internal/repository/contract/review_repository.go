package contract

import (
	"context"
	"time"

	"carematch-be/internal/entity"
)

type ReviewRepository interface {
	Create(ctx context.Context, review *entity.Review) error
	FindByIDForUpdate(ctx context.Context, id int64) (*entity.Review, error)
	Update(ctx context.Context, id int64, rating int, comment string, updatedAt time.Time) error
	Delete(ctx context.Context, id int64) error
	ExistsForDirection(ctx context.Context, matchRequestId int64, reviewType entity.ReviewType) (bool, error)
	FindAllByReviewee(ctx context.Context, revieweeId int64, limit, offset int) ([]*entity.Review, int64, error)
	StatsForReviewee(ctx context.Context, revieweeId int64) (*entity.ReviewStats, error)
}
