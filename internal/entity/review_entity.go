package entity

import (
	"time"
)

type ReviewType string

const (
	ReviewTypeFamilyToCaregiver ReviewType = "family_to_caregiver"
	ReviewTypeCaregiverToFamily ReviewType = "caregiver_to_family"
)

const (
	MinRating = 1
	MaxRating = 5
)

type Review struct {
	Id             int64
	MatchRequestId *int64
	ReviewType     ReviewType
	ReviewerId     *int64
	RevieweeId     *int64
	Rating         int
	Comment        string
	CreatedAt      time.Time
	UpdatedAt      *time.Time
}

type ReviewStats struct {
	Count         int64
	AverageRating float64
}
