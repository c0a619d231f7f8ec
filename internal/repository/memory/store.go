// Package memory is a process-local store implementing the unit-of-work
// contract. Units of work are serialized by a single mutex and rolled back
// by restoring a snapshot, which gives the same isolation guarantees the
// services rely on from postgres row locks.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"carematch-be/internal/entity"
	"carematch-be/internal/repository/unitofwork"
)

type participantKey struct {
	conversationId int64
	userId         int64
}

type tables struct {
	seq           map[string]int64
	users         map[int64]entity.User
	caregivers    map[int64]entity.CaregiverProfile
	families      map[int64]entity.FamilyProfile
	matches       map[int64]entity.MatchRequest
	conversations map[int64]entity.Conversation
	participants  map[participantKey]entity.ConversationParticipant
	messages      map[int64]entity.Message
	reviews       map[int64]entity.Review
	transactions  map[int64]entity.Transaction
}

func newTables() *tables {
	return &tables{
		seq:           make(map[string]int64),
		users:         make(map[int64]entity.User),
		caregivers:    make(map[int64]entity.CaregiverProfile),
		families:      make(map[int64]entity.FamilyProfile),
		matches:       make(map[int64]entity.MatchRequest),
		conversations: make(map[int64]entity.Conversation),
		participants:  make(map[participantKey]entity.ConversationParticipant),
		messages:      make(map[int64]entity.Message),
		reviews:       make(map[int64]entity.Review),
		transactions:  make(map[int64]entity.Transaction),
	}
}

func copyMap[K comparable, V any](src map[K]V) map[K]V {
	dst := make(map[K]V, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

// clone is shallow per row. Rows are replaced, never mutated in place.
func (t *tables) clone() *tables {
	return &tables{
		seq:           copyMap(t.seq),
		users:         copyMap(t.users),
		caregivers:    copyMap(t.caregivers),
		families:      copyMap(t.families),
		matches:       copyMap(t.matches),
		conversations: copyMap(t.conversations),
		participants:  copyMap(t.participants),
		messages:      copyMap(t.messages),
		reviews:       copyMap(t.reviews),
		transactions:  copyMap(t.transactions),
	}
}

func (t *tables) nextID(table string) int64 {
	t.seq[table]++
	return t.seq[table]
}

type Store struct {
	mu   sync.Mutex
	data *tables
}

func NewStore() *Store {
	return &Store{data: newTables()}
}

func (s *Store) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &UnitOfWork{store: s}
}

var _ unitofwork.RepositoryFactory = (*Store)(nil)

func stamp(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now()
	}
	return t
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

// newestFirst orders by created time then id, both descending.
func newestFirst[T any](items []T, key func(T) (time.Time, int64)) {
	sort.Slice(items, func(i, j int) bool {
		ti, ii := key(items[i])
		tj, ij := key(items[j])
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return ii > ij
	})
}
