package model

import (
	"time"
)

type User struct {
	Id        int64     `gorm:"primaryKey;autoIncrement"`
	Email     string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	FullName  string    `gorm:"type:varchar(255);not null"`
	Role      string    `gorm:"type:varchar(20);not null;check:role IN ('caregiver','family','admin')"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (User) TableName() string {
	return "users"
}

type CaregiverProfile struct {
	Id         int64     `gorm:"primaryKey;autoIncrement"`
	UserId     int64     `gorm:"not null;uniqueIndex"`
	HourlyRate *float64  `gorm:"type:decimal(10,2)"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`

	User User `gorm:"foreignKey:UserId;constraint:OnDelete:CASCADE"`
}

func (CaregiverProfile) TableName() string {
	return "caregiver_profiles"
}

type FamilyProfile struct {
	Id        int64     `gorm:"primaryKey;autoIncrement"`
	UserId    int64     `gorm:"not null;uniqueIndex"`
	CreatedAt time.Time `gorm:"autoCreateTime"`

	User User `gorm:"foreignKey:UserId;constraint:OnDelete:CASCADE"`
}

func (FamilyProfile) TableName() string {
	return "family_profiles"
}
