package unitofwork

import (
	"context"

	"carematch-be/internal/repository/contract"
)

// UnitOfWork groups repository calls into one store transaction. Callers
// Begin, defer Rollback and Commit on success; Rollback after Commit is a no-op.
type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	UserRepository() contract.UserRepository
	ProfileRepository() contract.ProfileRepository
	MatchRequestRepository() contract.MatchRequestRepository
	ConversationRepository() contract.ConversationRepository
	MessageRepository() contract.MessageRepository
	ReviewRepository() contract.ReviewRepository
	TransactionRepository() contract.TransactionRepository
}

// RepositoryFactory is implemented by the gorm factory and the in-memory store.
type RepositoryFactory interface {
	NewUnitOfWork(ctx context.Context) UnitOfWork
}
