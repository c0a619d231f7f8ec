package service

import (
	"context"

	"carematch-be/internal/entity"
	"carematch-be/internal/pkg/apperror"
	"carematch-be/internal/pkg/logger"
	"carematch-be/internal/repository/unitofwork"
)

type IAccountService interface {
	// DeleteUser hard-deletes the user. Messages, reviews and transactions
	// they took part in are kept with the reference cleared.
	DeleteUser(ctx context.Context, principal entity.Principal, userId int64) error
}

type accountService struct {
	uowFactory unitofwork.RepositoryFactory
	profiles   IProfileResolver
	logger     logger.ILogger
}

func NewAccountService(uowFactory unitofwork.RepositoryFactory, profiles IProfileResolver, logger logger.ILogger) IAccountService {
	return &accountService{
		uowFactory: uowFactory,
		profiles:   profiles,
		logger:     logger,
	}
}

func (s *accountService) DeleteUser(ctx context.Context, principal entity.Principal, userId int64) error {
	if principal.UserId != userId && !principal.IsAdmin() {
		return apperror.Forbidden("you can only delete your own account")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	user, err := uow.UserRepository().FindByID(ctx, userId)
	if err != nil {
		return err
	}
	if user == nil {
		return apperror.NotFound("user not found", apperror.Resource("user", userId))
	}

	if err := uow.UserRepository().Delete(ctx, userId); err != nil {
		return err
	}
	if err := uow.Commit(); err != nil {
		return err
	}

	s.profiles.Forget(userId)
	s.logger.Info("ACCOUNT", "User deleted", map[string]interface{}{
		"user_id":    userId,
		"deleted_by": principal.UserId,
	})
	return nil
}
