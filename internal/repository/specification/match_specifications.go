package specification

import (
	"time"

	"carematch-be/internal/entity"

	"gorm.io/gorm"
)

type MatchForPair struct {
	FamilyProfileID    int64
	CaregiverProfileID int64
}

func (s MatchForPair) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("family_profile_id = ? AND caregiver_profile_id = ?", s.FamilyProfileID, s.CaregiverProfileID)
}

type MatchOpen struct{}

func (s MatchOpen) Apply(db *gorm.DB) *gorm.DB {
	statuses := make([]string, len(entity.OpenMatchStatuses))
	for i, st := range entity.OpenMatchStatuses {
		statuses[i] = string(st)
	}
	return db.Where("status IN ?", statuses)
}

type ByStatus struct {
	Status string
}

func (s ByStatus) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status = ?", s.Status)
}

type CreatedBefore struct {
	Cutoff time.Time
}

func (s CreatedBefore) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("created_at < ?", s.Cutoff)
}
