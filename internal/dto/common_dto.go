package dto

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

type PaginationQuery struct {
	Page  int `query:"page"`
	Limit int `query:"limit"`
}

// Normalize clamps page/limit and returns the row offset.
func (q *PaginationQuery) Normalize() (limit, offset int) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = DefaultPageLimit
	}
	if q.Limit > MaxPageLimit {
		q.Limit = MaxPageLimit
	}
	return q.Limit, (q.Page - 1) * q.Limit
}

type PaginatedResponse[T any] struct {
	Items []T   `json:"items"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
}
