package memory

import (
	"context"
	"fmt"

	"carematch-be/internal/entity"
	"carematch-be/internal/repository/contract"
)

type userRepository struct {
	u *UnitOfWork
}

func (r *userRepository) Create(ctx context.Context, user *entity.User) error {
	return r.u.run(func(t *tables) error {
		for _, existing := range t.users {
			if existing.Email == user.Email {
				return fmt.Errorf("%w: users.email", contract.ErrDuplicate)
			}
		}
		row := *user
		row.Id = t.nextID("users")
		row.CreatedAt = stamp(row.CreatedAt)
		row.UpdatedAt = row.CreatedAt
		t.users[row.Id] = row
		*user = row
		return nil
	})
}

func (r *userRepository) FindByID(ctx context.Context, id int64) (*entity.User, error) {
	var found *entity.User
	err := r.u.run(func(t *tables) error {
		if row, ok := t.users[id]; ok {
			found = &row
		}
		return nil
	})
	return found, err
}

// Delete mirrors the foreign keys: profiles and their match requests go,
// history rows keep existing with the references nulled.
func (r *userRepository) Delete(ctx context.Context, id int64) error {
	return r.u.run(func(t *tables) error {
		if _, ok := t.users[id]; !ok {
			return nil
		}
		delete(t.users, id)

		removedProfiles := map[int64]bool{}
		for pid, p := range t.caregivers {
			if p.UserId == id {
				delete(t.caregivers, pid)
				removedProfiles[pid] = true
			}
		}
		removedFamilies := map[int64]bool{}
		for pid, p := range t.families {
			if p.UserId == id {
				delete(t.families, pid)
				removedFamilies[pid] = true
			}
		}

		removedMatches := map[int64]bool{}
		for mid, m := range t.matches {
			if removedProfiles[m.CaregiverProfileId] || removedFamilies[m.FamilyProfileId] {
				delete(t.matches, mid)
				removedMatches[mid] = true
			}
		}

		for cid, c := range t.conversations {
			if c.MatchRequestId != nil && removedMatches[*c.MatchRequestId] {
				c.MatchRequestId = nil
				t.conversations[cid] = c
			}
		}
		for key := range t.participants {
			if key.userId == id {
				delete(t.participants, key)
			}
		}
		for mid, m := range t.messages {
			if m.SenderId != nil && *m.SenderId == id {
				m.SenderId = nil
				t.messages[mid] = m
			}
		}
		for rid, rv := range t.reviews {
			changed := false
			if rv.MatchRequestId != nil && removedMatches[*rv.MatchRequestId] {
				rv.MatchRequestId, changed = nil, true
			}
			if rv.ReviewerId != nil && *rv.ReviewerId == id {
				rv.ReviewerId, changed = nil, true
			}
			if rv.RevieweeId != nil && *rv.RevieweeId == id {
				rv.RevieweeId, changed = nil, true
			}
			if changed {
				t.reviews[rid] = rv
			}
		}
		for tid, tx := range t.transactions {
			changed := false
			if tx.MatchRequestId != nil && removedMatches[*tx.MatchRequestId] {
				tx.MatchRequestId, changed = nil, true
			}
			if tx.InitiatingUserId != nil && *tx.InitiatingUserId == id {
				tx.InitiatingUserId, changed = nil, true
			}
			if tx.ReceivingUserId != nil && *tx.ReceivingUserId == id {
				tx.ReceivingUserId, changed = nil, true
			}
			if changed {
				t.transactions[tid] = tx
			}
		}
		return nil
	})
}

type profileRepository struct {
	u *UnitOfWork
}

func (r *profileRepository) CreateCaregiverProfile(ctx context.Context, profile *entity.CaregiverProfile) error {
	return r.u.run(func(t *tables) error {
		if _, ok := t.users[profile.UserId]; !ok {
			return fmt.Errorf("caregiver_profiles.user_id: user %d does not exist", profile.UserId)
		}
		for _, existing := range t.caregivers {
			if existing.UserId == profile.UserId {
				return fmt.Errorf("%w: caregiver_profiles.user_id", contract.ErrDuplicate)
			}
		}
		row := *profile
		row.Id = t.nextID("caregiver_profiles")
		row.CreatedAt = stamp(row.CreatedAt)
		t.caregivers[row.Id] = row
		*profile = row
		return nil
	})
}

func (r *profileRepository) CreateFamilyProfile(ctx context.Context, profile *entity.FamilyProfile) error {
	return r.u.run(func(t *tables) error {
		if _, ok := t.users[profile.UserId]; !ok {
			return fmt.Errorf("family_profiles.user_id: user %d does not exist", profile.UserId)
		}
		for _, existing := range t.families {
			if existing.UserId == profile.UserId {
				return fmt.Errorf("%w: family_profiles.user_id", contract.ErrDuplicate)
			}
		}
		row := *profile
		row.Id = t.nextID("family_profiles")
		row.CreatedAt = stamp(row.CreatedAt)
		t.families[row.Id] = row
		*profile = row
		return nil
	})
}

func (r *profileRepository) FindCaregiverProfileByID(ctx context.Context, id int64) (*entity.CaregiverProfile, error) {
	var found *entity.CaregiverProfile
	err := r.u.run(func(t *tables) error {
		if row, ok := t.caregivers[id]; ok {
			found = &row
		}
		return nil
	})
	return found, err
}

func (r *profileRepository) FindCaregiverProfileByUserID(ctx context.Context, userId int64) (*entity.CaregiverProfile, error) {
	var found *entity.CaregiverProfile
	err := r.u.run(func(t *tables) error {
		for _, row := range t.caregivers {
			if row.UserId == userId {
				row := row
				found = &row
				break
			}
		}
		return nil
	})
	return found, err
}

func (r *profileRepository) FindFamilyProfileByUserID(ctx context.Context, userId int64) (*entity.FamilyProfile, error) {
	var found *entity.FamilyProfile
	err := r.u.run(func(t *tables) error {
		for _, row := range t.families {
			if row.UserId == userId {
				row := row
				found = &row
				break
			}
		}
		return nil
	})
	return found, err
}

// LockFamilyProfile is a plain read; the unit of work already holds the store lock.
func (r *profileRepository) LockFamilyProfile(ctx context.Context, id int64) (*entity.FamilyProfile, error) {
	var found *entity.FamilyProfile
	err := r.u.run(func(t *tables) error {
		if row, ok := t.families[id]; ok {
			found = &row
		}
		return nil
	})
	return found, err
}
