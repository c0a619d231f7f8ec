package service

import (
	"context"
	"time"

	"carematch-be/internal/entity"
	"carematch-be/internal/pkg/apperror"
	"carematch-be/internal/repository/memory"
	"carematch-be/internal/repository/unitofwork"
)

// IProfileResolver maps an authenticated user to the profile id for their role.
type IProfileResolver interface {
	CaregiverProfileID(ctx context.Context, principal entity.Principal) (int64, error)
	FamilyProfileID(ctx context.Context, principal entity.Principal) (int64, error)
	Forget(userId int64)
}

type profileResolver struct {
	uowFactory unitofwork.RepositoryFactory
	cache      *memory.ProfileCache
}

func NewProfileResolver(uowFactory unitofwork.RepositoryFactory, cacheTTL time.Duration) IProfileResolver {
	return &profileResolver{
		uowFactory: uowFactory,
		cache:      memory.NewProfileCache(cacheTTL),
	}
}

func (r *profileResolver) CaregiverProfileID(ctx context.Context, principal entity.Principal) (int64, error) {
	if principal.Role != entity.UserRoleCaregiver {
		return 0, apperror.Forbidden("only caregivers can perform this action")
	}
	if id, ok := r.cache.Get(entity.UserRoleCaregiver, principal.UserId); ok {
		return id, nil
	}

	uow := r.uowFactory.NewUnitOfWork(ctx)
	profile, err := uow.ProfileRepository().FindCaregiverProfileByUserID(ctx, principal.UserId)
	if err != nil {
		return 0, err
	}
	if profile == nil {
		return 0, apperror.NotFound("caregiver profile not found", apperror.Resource("user", principal.UserId))
	}

	r.cache.Save(entity.UserRoleCaregiver, principal.UserId, profile.Id)
	return profile.Id, nil
}

func (r *profileResolver) FamilyProfileID(ctx context.Context, principal entity.Principal) (int64, error) {
	if principal.Role != entity.UserRoleFamily {
		return 0, apperror.Forbidden("only families can perform this action")
	}
	if id, ok := r.cache.Get(entity.UserRoleFamily, principal.UserId); ok {
		return id, nil
	}

	uow := r.uowFactory.NewUnitOfWork(ctx)
	profile, err := uow.ProfileRepository().FindFamilyProfileByUserID(ctx, principal.UserId)
	if err != nil {
		return 0, err
	}
	if profile == nil {
		return 0, apperror.NotFound("family profile not found", apperror.Resource("user", principal.UserId))
	}

	r.cache.Save(entity.UserRoleFamily, principal.UserId, profile.Id)
	return profile.Id, nil
}

func (r *profileResolver) Forget(userId int64) {
	r.cache.Forget(userId)
}
