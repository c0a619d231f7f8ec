package contract

import (
	"context"

	"carematch-be/internal/entity"
)

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	FindByID(ctx context.Context, id int64) (*entity.User, error)
	// Delete is a hard delete. Profiles and match requests cascade; history
	// rows (messages, reviews, transactions) keep the row with the user nulled.
	Delete(ctx context.Context, id int64) error
}

type ProfileRepository interface {
	CreateCaregiverProfile(ctx context.Context, profile *entity.CaregiverProfile) error
	CreateFamilyProfile(ctx context.Context, profile *entity.FamilyProfile) error
	FindCaregiverProfileByID(ctx context.Context, id int64) (*entity.CaregiverProfile, error)
	FindCaregiverProfileByUserID(ctx context.Context, userId int64) (*entity.CaregiverProfile, error)
	FindFamilyProfileByUserID(ctx context.Context, userId int64) (*entity.FamilyProfile, error)
	// LockFamilyProfile takes a row lock on the family profile for the rest of
	// the unit of work.
	LockFamilyProfile(ctx context.Context, id int64) (*entity.FamilyProfile, error)
}
