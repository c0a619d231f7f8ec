package memory

import (
	"context"

	"carematch-be/internal/repository/contract"
	"carematch-be/internal/repository/unitofwork"
)

type UnitOfWork struct {
	store    *Store
	snapshot *tables
	inTx     bool
}

func (u *UnitOfWork) Begin(ctx context.Context) error {
	if u.inTx {
		return unitofwork.ErrTransactionStarted
	}
	u.store.mu.Lock()
	u.snapshot = u.store.data.clone()
	u.inTx = true
	return nil
}

func (u *UnitOfWork) Commit() error {
	if !u.inTx {
		return unitofwork.ErrNoTransaction
	}
	u.snapshot = nil
	u.inTx = false
	u.store.mu.Unlock()
	return nil
}

func (u *UnitOfWork) Rollback() error {
	if !u.inTx {
		return nil
	}
	u.store.data = u.snapshot
	u.snapshot = nil
	u.inTx = false
	u.store.mu.Unlock()
	return nil
}

// run executes fn against the live tables. Outside a transaction each call
// takes the store lock for its own duration.
func (u *UnitOfWork) run(fn func(t *tables) error) error {
	if !u.inTx {
		u.store.mu.Lock()
		defer u.store.mu.Unlock()
	}
	return fn(u.store.data)
}

func (u *UnitOfWork) UserRepository() contract.UserRepository {
	return &userRepository{u: u}
}

func (u *UnitOfWork) ProfileRepository() contract.ProfileRepository {
	return &profileRepository{u: u}
}

func (u *UnitOfWork) MatchRequestRepository() contract.MatchRequestRepository {
	return &matchRequestRepository{u: u}
}

func (u *UnitOfWork) ConversationRepository() contract.ConversationRepository {
	return &conversationRepository{u: u}
}

func (u *UnitOfWork) MessageRepository() contract.MessageRepository {
	return &messageRepository{u: u}
}

func (u *UnitOfWork) ReviewRepository() contract.ReviewRepository {
	return &reviewRepository{u: u}
}

func (u *UnitOfWork) TransactionRepository() contract.TransactionRepository {
	return &transactionRepository{u: u}
}
