package implementation

import (
	"context"
	"errors"

	"carematch-be/internal/entity"
	"carematch-be/internal/mapper"
	"carematch-be/internal/model"
	"carematch-be/internal/repository/contract"
	"carematch-be/internal/repository/specification"

	"gorm.io/gorm"
)

type UserRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.UserMapper
}

func NewUserRepository(db *gorm.DB) contract.UserRepository {
	return &UserRepositoryImpl{
		db:     db,
		mapper: mapper.NewUserMapper(),
	}
}

func (r *UserRepositoryImpl) Create(ctx context.Context, user *entity.User) error {
	m := r.mapper.ToModel(user)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return translateError(err)
	}
	*user = *r.mapper.ToEntity(m)
	return nil
}

func (r *UserRepositoryImpl) FindByID(ctx context.Context, id int64) (*entity.User, error) {
	var m model.User
	query := specification.Apply(r.db.WithContext(ctx), specification.ByID{ID: id})
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *UserRepositoryImpl) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&model.User{}, id).Error
}

type ProfileRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.UserMapper
}

func NewProfileRepository(db *gorm.DB) contract.ProfileRepository {
	return &ProfileRepositoryImpl{
		db:     db,
		mapper: mapper.NewUserMapper(),
	}
}

func (r *ProfileRepositoryImpl) CreateCaregiverProfile(ctx context.Context, profile *entity.CaregiverProfile) error {
	m := r.mapper.CaregiverProfileToModel(profile)
	if err := r.db.WithContext(ctx).Omit("User").Create(m).Error; err != nil {
		return translateError(err)
	}
	*profile = *r.mapper.CaregiverProfileToEntity(m)
	return nil
}

func (r *ProfileRepositoryImpl) CreateFamilyProfile(ctx context.Context, profile *entity.FamilyProfile) error {
	m := r.mapper.FamilyProfileToModel(profile)
	if err := r.db.WithContext(ctx).Omit("User").Create(m).Error; err != nil {
		return translateError(err)
	}
	*profile = *r.mapper.FamilyProfileToEntity(m)
	return nil
}

func (r *ProfileRepositoryImpl) findCaregiver(ctx context.Context, specs ...specification.Specification) (*entity.CaregiverProfile, error) {
	var m model.CaregiverProfile
	if err := specification.Apply(r.db.WithContext(ctx), specs...).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.CaregiverProfileToEntity(&m), nil
}

func (r *ProfileRepositoryImpl) findFamily(ctx context.Context, specs ...specification.Specification) (*entity.FamilyProfile, error) {
	var m model.FamilyProfile
	if err := specification.Apply(r.db.WithContext(ctx), specs...).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.FamilyProfileToEntity(&m), nil
}

func (r *ProfileRepositoryImpl) FindCaregiverProfileByID(ctx context.Context, id int64) (*entity.CaregiverProfile, error) {
	return r.findCaregiver(ctx, specification.ByID{ID: id})
}

func (r *ProfileRepositoryImpl) FindCaregiverProfileByUserID(ctx context.Context, userId int64) (*entity.CaregiverProfile, error) {
	return r.findCaregiver(ctx, specification.UserOwnedBy{UserID: userId})
}

func (r *ProfileRepositoryImpl) FindFamilyProfileByUserID(ctx context.Context, userId int64) (*entity.FamilyProfile, error) {
	return r.findFamily(ctx, specification.UserOwnedBy{UserID: userId})
}

func (r *ProfileRepositoryImpl) LockFamilyProfile(ctx context.Context, id int64) (*entity.FamilyProfile, error) {
	return r.findFamily(ctx, specification.ByID{ID: id}, specification.ForUpdate{})
}
