package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"carematch-be/internal/entity"
	"carematch-be/internal/repository/contract"
)

type conversationRepository struct {
	u *UnitOfWork
}

func addParticipants(t *tables, conversationId int64, participantIds []int64, joinedAt time.Time) error {
	for _, userId := range participantIds {
		if _, ok := t.users[userId]; !ok {
			return fmt.Errorf("conversation_participants.user_id: user %d does not exist", userId)
		}
		key := participantKey{conversationId: conversationId, userId: userId}
		if _, ok := t.participants[key]; ok {
			continue
		}
		t.participants[key] = entity.ConversationParticipant{
			ConversationId: conversationId,
			UserId:         userId,
			JoinedAt:       joinedAt,
		}
	}
	return nil
}

func participantIDs(t *tables, conversationId int64) []int64 {
	var ids []int64
	for key := range t.participants {
		if key.conversationId == conversationId {
			ids = append(ids, key.userId)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func lastActivity(t *tables, c entity.Conversation) time.Time {
	latest := c.CreatedAt
	for _, m := range t.messages {
		if m.ConversationId == c.Id && m.SentAt.After(latest) {
			latest = m.SentAt
		}
	}
	return latest
}

func (r *conversationRepository) CreateForMatchIfAbsent(ctx context.Context, matchRequestId int64, participantIds []int64, now time.Time) (*entity.Conversation, bool, error) {
	var (
		conversation *entity.Conversation
		created      bool
	)
	err := r.u.run(func(t *tables) error {
		for _, c := range t.conversations {
			if c.MatchRequestId != nil && *c.MatchRequestId == matchRequestId {
				c := c
				conversation = &c
				break
			}
		}
		if conversation == nil {
			if _, ok := t.matches[matchRequestId]; !ok {
				return fmt.Errorf("conversations.match_request_id: match request %d does not exist", matchRequestId)
			}
			mid := matchRequestId
			row := entity.Conversation{
				Id:             t.nextID("conversations"),
				MatchRequestId: &mid,
				CreatedAt:      now,
				UpdatedAt:      now,
			}
			t.conversations[row.Id] = row
			conversation = &row
			created = true
		}
		return addParticipants(t, conversation.Id, participantIds, now)
	})
	if err != nil {
		return nil, false, err
	}
	return conversation, created, nil
}

func (r *conversationRepository) Create(ctx context.Context, conversation *entity.Conversation, participantIds []int64) error {
	return r.u.run(func(t *tables) error {
		row := *conversation
		if row.MatchRequestId != nil {
			for _, c := range t.conversations {
				if c.MatchRequestId != nil && *c.MatchRequestId == *row.MatchRequestId {
					return fmt.Errorf("%w: ux_conversations_match_request", contract.ErrDuplicate)
				}
			}
		}
		row.Id = t.nextID("conversations")
		row.CreatedAt = stamp(row.CreatedAt)
		row.UpdatedAt = row.CreatedAt
		t.conversations[row.Id] = row
		*conversation = row
		return addParticipants(t, row.Id, participantIds, row.CreatedAt)
	})
}

func (r *conversationRepository) FindByID(ctx context.Context, id int64) (*entity.Conversation, error) {
	var found *entity.Conversation
	err := r.u.run(func(t *tables) error {
		if row, ok := t.conversations[id]; ok {
			found = &row
		}
		return nil
	})
	return found, err
}

func (r *conversationRepository) FindByMatchRequestID(ctx context.Context, matchRequestId int64) (*entity.Conversation, error) {
	var found *entity.Conversation
	err := r.u.run(func(t *tables) error {
		for _, row := range t.conversations {
			if row.MatchRequestId != nil && *row.MatchRequestId == matchRequestId {
				row := row
				found = &row
				break
			}
		}
		return nil
	})
	return found, err
}

func (r *conversationRepository) FindDirectBetween(ctx context.Context, userA, userB int64) (*entity.Conversation, error) {
	var found *entity.Conversation
	err := r.u.run(func(t *tables) error {
		for _, row := range t.conversations {
			if row.MatchRequestId != nil {
				continue
			}
			ids := participantIDs(t, row.Id)
			if len(ids) != 2 {
				continue
			}
			if (ids[0] == userA && ids[1] == userB) || (ids[0] == userB && ids[1] == userA) {
				if found == nil || row.Id < found.Id {
					row := row
					found = &row
				}
			}
		}
		return nil
	})
	return found, err
}

func (r *conversationRepository) FindParticipant(ctx context.Context, conversationId, userId int64) (*entity.ConversationParticipant, error) {
	var found *entity.ConversationParticipant
	err := r.u.run(func(t *tables) error {
		if row, ok := t.participants[participantKey{conversationId: conversationId, userId: userId}]; ok {
			found = &row
		}
		return nil
	})
	return found, err
}

func (r *conversationRepository) ListParticipantIDs(ctx context.Context, conversationId int64) ([]int64, error) {
	var ids []int64
	err := r.u.run(func(t *tables) error {
		ids = participantIDs(t, conversationId)
		return nil
	})
	return ids, err
}

func (r *conversationRepository) UpdateLastReadAt(ctx context.Context, conversationId, userId int64, at time.Time) error {
	return r.u.run(func(t *tables) error {
		key := participantKey{conversationId: conversationId, userId: userId}
		row, ok := t.participants[key]
		if !ok {
			return nil
		}
		row.LastReadAt = &at
		t.participants[key] = row
		return nil
	})
}

func (r *conversationRepository) FindAllForUser(ctx context.Context, userId int64, limit, offset int) ([]*entity.Conversation, int64, error) {
	var (
		result []*entity.Conversation
		total  int64
	)
	err := r.u.run(func(t *tables) error {
		var rows []entity.Conversation
		for key := range t.participants {
			if key.userId == userId {
				if c, ok := t.conversations[key.conversationId]; ok {
					rows = append(rows, c)
				}
			}
		}
		total = int64(len(rows))
		newestFirst(rows, func(c entity.Conversation) (time.Time, int64) { return lastActivity(t, c), c.Id })
		for _, row := range paginate(rows, limit, offset) {
			row := row
			result = append(result, &row)
		}
		return nil
	})
	return result, total, err
}

type messageRepository struct {
	u *UnitOfWork
}

func fromOthers(m entity.Message, userId int64) bool {
	return m.SenderId == nil || *m.SenderId != userId
}

func (r *messageRepository) Create(ctx context.Context, message *entity.Message) error {
	return r.u.run(func(t *tables) error {
		if _, ok := t.conversations[message.ConversationId]; !ok {
			return fmt.Errorf("messages.conversation_id: conversation %d does not exist", message.ConversationId)
		}
		row := *message
		row.Id = t.nextID("messages")
		row.SentAt = stamp(row.SentAt)
		t.messages[row.Id] = row
		*message = row
		return nil
	})
}

func (r *messageRepository) inConversation(t *tables, conversationId int64) []entity.Message {
	var rows []entity.Message
	for _, m := range t.messages {
		if m.ConversationId == conversationId {
			rows = append(rows, m)
		}
	}
	newestFirst(rows, func(m entity.Message) (time.Time, int64) { return m.SentAt, m.Id })
	return rows
}

func (r *messageRepository) FindAllByConversation(ctx context.Context, conversationId int64, limit, offset int) ([]*entity.Message, int64, error) {
	var (
		result []*entity.Message
		total  int64
	)
	err := r.u.run(func(t *tables) error {
		rows := r.inConversation(t, conversationId)
		total = int64(len(rows))
		for _, row := range paginate(rows, limit, offset) {
			row := row
			result = append(result, &row)
		}
		return nil
	})
	return result, total, err
}

func (r *messageRepository) FindLatest(ctx context.Context, conversationId int64) (*entity.Message, error) {
	var found *entity.Message
	err := r.u.run(func(t *tables) error {
		if rows := r.inConversation(t, conversationId); len(rows) > 0 {
			found = &rows[0]
		}
		return nil
	})
	return found, err
}

func (r *messageRepository) MarkReadUpTo(ctx context.Context, conversationId, readerId int64, upto time.Time) (int64, error) {
	var count int64
	err := r.u.run(func(t *tables) error {
		for id, m := range t.messages {
			if m.ConversationId != conversationId || !fromOthers(m, readerId) || m.IsRead || m.SentAt.After(upto) {
				continue
			}
			m.IsRead = true
			t.messages[id] = m
			count++
		}
		return nil
	})
	return count, err
}

func (r *messageRepository) CountUnread(ctx context.Context, conversationId, userId int64, since *time.Time) (int64, error) {
	var count int64
	err := r.u.run(func(t *tables) error {
		for _, m := range t.messages {
			if m.ConversationId != conversationId || !fromOthers(m, userId) {
				continue
			}
			if since != nil && !m.SentAt.After(*since) {
				continue
			}
			count++
		}
		return nil
	})
	return count, err
}
