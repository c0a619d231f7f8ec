package model

import (
	"time"
)

type Review struct {
	Id             int64      `gorm:"primaryKey;autoIncrement"`
	MatchRequestId *int64     `gorm:"uniqueIndex:ux_reviews_match_direction,priority:1"`
	ReviewType     string     `gorm:"type:varchar(30);not null;uniqueIndex:ux_reviews_match_direction,priority:2"`
	ReviewerId     *int64     `gorm:"index"`
	RevieweeId     *int64     `gorm:"index"`
	Rating         int        `gorm:"not null;check:rating >= 1 AND rating <= 5"`
	Comment        string     `gorm:"type:text"`
	CreatedAt      time.Time  `gorm:"autoCreateTime"`
	UpdatedAt      *time.Time

	MatchRequest *MatchRequest `gorm:"foreignKey:MatchRequestId;constraint:OnDelete:SET NULL"`
	Reviewer     *User         `gorm:"foreignKey:ReviewerId;constraint:OnDelete:SET NULL"`
	Reviewee     *User         `gorm:"foreignKey:RevieweeId;constraint:OnDelete:SET NULL"`
}

func (Review) TableName() string {
	return "reviews"
}
