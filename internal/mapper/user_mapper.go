package mapper

import (
	"carematch-be/internal/entity"
	"carematch-be/internal/model"
)

type UserMapper struct{}

func NewUserMapper() *UserMapper {
	return &UserMapper{}
}

func (m *UserMapper) ToEntity(u *model.User) *entity.User {
	if u == nil {
		return nil
	}
	return &entity.User{
		Id:        u.Id,
		Email:     u.Email,
		FullName:  u.FullName,
		Role:      entity.UserRole(u.Role),
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func (m *UserMapper) ToModel(u *entity.User) *model.User {
	if u == nil {
		return nil
	}
	return &model.User{
		Id:        u.Id,
		Email:     u.Email,
		FullName:  u.FullName,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func (m *UserMapper) CaregiverProfileToEntity(p *model.CaregiverProfile) *entity.CaregiverProfile {
	if p == nil {
		return nil
	}
	return &entity.CaregiverProfile{
		Id:         p.Id,
		UserId:     p.UserId,
		HourlyRate: p.HourlyRate,
		CreatedAt:  p.CreatedAt,
	}
}

func (m *UserMapper) CaregiverProfileToModel(p *entity.CaregiverProfile) *model.CaregiverProfile {
	if p == nil {
		return nil
	}
	return &model.CaregiverProfile{
		Id:         p.Id,
		UserId:     p.UserId,
		HourlyRate: p.HourlyRate,
		CreatedAt:  p.CreatedAt,
	}
}

func (m *UserMapper) FamilyProfileToEntity(p *model.FamilyProfile) *entity.FamilyProfile {
	if p == nil {
		return nil
	}
	return &entity.FamilyProfile{
		Id:        p.Id,
		UserId:    p.UserId,
		CreatedAt: p.CreatedAt,
	}
}

func (m *UserMapper) FamilyProfileToModel(p *entity.FamilyProfile) *model.FamilyProfile {
	if p == nil {
		return nil
	}
	return &model.FamilyProfile{
		Id:        p.Id,
		UserId:    p.UserId,
		CreatedAt: p.CreatedAt,
	}
}
