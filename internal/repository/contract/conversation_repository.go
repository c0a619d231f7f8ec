package contract

import (
	"context"
	"time"

	"carematch-be/internal/entity"
)

type ConversationRepository interface {
	// CreateForMatchIfAbsent inserts the conversation for a match request
	// unless one already exists. created reports whether this call inserted it.
	CreateForMatchIfAbsent(ctx context.Context, matchRequestId int64, participantIds []int64, now time.Time) (conversation *entity.Conversation, created bool, err error)
	Create(ctx context.Context, conversation *entity.Conversation, participantIds []int64) error
	FindByID(ctx context.Context, id int64) (*entity.Conversation, error)
	FindByMatchRequestID(ctx context.Context, matchRequestId int64) (*entity.Conversation, error)
	// FindDirectBetween returns the conversation without a match request whose
	// only participants are the two users.
	FindDirectBetween(ctx context.Context, userA, userB int64) (*entity.Conversation, error)
	FindParticipant(ctx context.Context, conversationId, userId int64) (*entity.ConversationParticipant, error)
	ListParticipantIDs(ctx context.Context, conversationId int64) ([]int64, error)
	UpdateLastReadAt(ctx context.Context, conversationId, userId int64, at time.Time) error
	FindAllForUser(ctx context.Context, userId int64, limit, offset int) ([]*entity.Conversation, int64, error)
}

type MessageRepository interface {
	Create(ctx context.Context, message *entity.Message) error
	// FindAllByConversation returns newest first.
	FindAllByConversation(ctx context.Context, conversationId int64, limit, offset int) ([]*entity.Message, int64, error)
	FindLatest(ctx context.Context, conversationId int64) (*entity.Message, error)
	// MarkReadUpTo flips is_read on messages not sent by readerId with sent_at <= upto.
	MarkReadUpTo(ctx context.Context, conversationId, readerId int64, upto time.Time) (int64, error)
	// CountUnread counts messages not sent by userId with sent_at > since
	// (every such message when since is nil).
	CountUnread(ctx context.Context, conversationId, userId int64, since *time.Time) (int64, error)
}
