package model

import (
	"time"
)

// The open-pair partial unique index is created by cmd/migrate; gorm tags
// cannot express the WHERE clause.
type MatchRequest struct {
	Id                 int64      `gorm:"primaryKey;autoIncrement"`
	FamilyProfileId    int64      `gorm:"not null;index:idx_match_requests_pair,priority:1"`
	CaregiverProfileId int64      `gorm:"not null;index:idx_match_requests_pair,priority:2;index"`
	Status             string     `gorm:"type:varchar(20);not null;default:'pending';index"`
	Message            string     `gorm:"type:text"`
	ProposedStart      *time.Time
	ProposedEnd        *time.Time
	RequestedHours     *int
	RespondedAt        *time.Time
	CompletedAt        *time.Time
	CreatedAt          time.Time `gorm:"autoCreateTime;index"`
	UpdatedAt          time.Time `gorm:"autoUpdateTime"`

	FamilyProfile    FamilyProfile    `gorm:"foreignKey:FamilyProfileId;constraint:OnDelete:CASCADE"`
	CaregiverProfile CaregiverProfile `gorm:"foreignKey:CaregiverProfileId;constraint:OnDelete:CASCADE"`
}

func (MatchRequest) TableName() string {
	return "match_requests"
}

// MatchRequestWithUsers is the scan target for the profile -> user join.
type MatchRequestWithUsers struct {
	MatchRequest
	FamilyUserId    int64
	CaregiverUserId int64
}
