package entity

import (
	"time"
)

type UserRole string

const (
	UserRoleCaregiver UserRole = "caregiver"
	UserRoleFamily    UserRole = "family"
	UserRoleAdmin     UserRole = "admin"
)

func (r UserRole) Valid() bool {
	switch r {
	case UserRoleCaregiver, UserRoleFamily, UserRoleAdmin:
		return true
	}
	return false
}

// User role is fixed at creation; repositories never update it.
type User struct {
	Id        int64
	Email     string
	FullName  string
	Role      UserRole
	CreatedAt time.Time
	UpdatedAt time.Time
}

type CaregiverProfile struct {
	Id         int64
	UserId     int64
	HourlyRate *float64
	CreatedAt  time.Time
}

type FamilyProfile struct {
	Id        int64
	UserId    int64
	CreatedAt time.Time
}
