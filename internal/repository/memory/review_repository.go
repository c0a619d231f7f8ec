package memory

import (
	"context"
	"fmt"
	"time"

	"carematch-be/internal/entity"
	"carematch-be/internal/repository/contract"
)

type reviewRepository struct {
	u *UnitOfWork
}

func (r *reviewRepository) Create(ctx context.Context, review *entity.Review) error {
	return r.u.run(func(t *tables) error {
		if review.Rating < entity.MinRating || review.Rating > entity.MaxRating {
			return fmt.Errorf("reviews.rating: check constraint violated (%d)", review.Rating)
		}
		if review.MatchRequestId != nil {
			for _, existing := range t.reviews {
				if existing.MatchRequestId != nil && *existing.MatchRequestId == *review.MatchRequestId && existing.ReviewType == review.ReviewType {
					return fmt.Errorf("%w: ux_reviews_match_direction", contract.ErrDuplicate)
				}
			}
		}
		row := *review
		row.Id = t.nextID("reviews")
		row.CreatedAt = stamp(row.CreatedAt)
		t.reviews[row.Id] = row
		*review = row
		return nil
	})
}

func (r *reviewRepository) FindByIDForUpdate(ctx context.Context, id int64) (*entity.Review, error) {
	var found *entity.Review
	err := r.u.run(func(t *tables) error {
		if row, ok := t.reviews[id]; ok {
			found = &row
		}
		return nil
	})
	return found, err
}

func (r *reviewRepository) Update(ctx context.Context, id int64, rating int, comment string, updatedAt time.Time) error {
	return r.u.run(func(t *tables) error {
		row, ok := t.reviews[id]
		if !ok {
			return nil
		}
		if rating < entity.MinRating || rating > entity.MaxRating {
			return fmt.Errorf("reviews.rating: check constraint violated (%d)", rating)
		}
		row.Rating = rating
		row.Comment = comment
		row.UpdatedAt = &updatedAt
		t.reviews[id] = row
		return nil
	})
}

func (r *reviewRepository) Delete(ctx context.Context, id int64) error {
	return r.u.run(func(t *tables) error {
		delete(t.reviews, id)
		return nil
	})
}

func (r *reviewRepository) ExistsForDirection(ctx context.Context, matchRequestId int64, reviewType entity.ReviewType) (bool, error) {
	var exists bool
	err := r.u.run(func(t *tables) error {
		for _, existing := range t.reviews {
			if existing.MatchRequestId != nil && *existing.MatchRequestId == matchRequestId && existing.ReviewType == reviewType {
				exists = true
				break
			}
		}
		return nil
	})
	return exists, err
}

func reviewsOf(t *tables, revieweeId int64) []entity.Review {
	var rows []entity.Review
	for _, rv := range t.reviews {
		if rv.RevieweeId != nil && *rv.RevieweeId == revieweeId {
			rows = append(rows, rv)
		}
	}
	return rows
}

func (r *reviewRepository) FindAllByReviewee(ctx context.Context, revieweeId int64, limit, offset int) ([]*entity.Review, int64, error) {
	var (
		result []*entity.Review
		total  int64
	)
	err := r.u.run(func(t *tables) error {
		rows := reviewsOf(t, revieweeId)
		total = int64(len(rows))
		newestFirst(rows, func(rv entity.Review) (time.Time, int64) { return rv.CreatedAt, rv.Id })
		for _, row := range paginate(rows, limit, offset) {
			row := row
			result = append(result, &row)
		}
		return nil
	})
	return result, total, err
}

func (r *reviewRepository) StatsForReviewee(ctx context.Context, revieweeId int64) (*entity.ReviewStats, error) {
	stats := &entity.ReviewStats{}
	err := r.u.run(func(t *tables) error {
		rows := reviewsOf(t, revieweeId)
		if len(rows) == 0 {
			return nil
		}
		sum := 0
		for _, rv := range rows {
			sum += rv.Rating
		}
		stats.Count = int64(len(rows))
		stats.AverageRating = float64(sum) / float64(len(rows))
		return nil
	})
	return stats, err
}
