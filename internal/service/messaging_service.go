package service

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"carematch-be/internal/dto"
	"carematch-be/internal/entity"
	"carematch-be/internal/pkg/apperror"
	"carematch-be/internal/pkg/logger"
	"carematch-be/internal/repository/unitofwork"
	"carematch-be/pkg/events"
)

const MaxMessageLength = 4000

type IMessagingService interface {
	SendMessage(ctx context.Context, conversationId int64, senderId int64, content string) (*dto.MessageResponse, error)
	// MarkRead marks everything up to upto (now when nil) as read and
	// returns the remaining unread count.
	MarkRead(ctx context.Context, conversationId int64, userId int64, upto *time.Time) (*dto.UnreadCountResponse, error)
	UnreadCount(ctx context.Context, conversationId int64, userId int64) (*dto.UnreadCountResponse, error)
	// CreateDirectConversation returns the existing two-party conversation
	// when there is one; created reports whether a new one was made.
	CreateDirectConversation(ctx context.Context, initiatorId int64, otherUserId int64) (res *dto.ConversationResponse, created bool, err error)
	ListConversations(ctx context.Context, userId int64, query *dto.PaginationQuery) (*dto.PaginatedResponse[*dto.ConversationResponse], error)
	ListMessages(ctx context.Context, conversationId int64, userId int64, query *dto.PaginationQuery) (*dto.PaginatedResponse[*dto.MessageResponse], error)
}

type messagingService struct {
	uowFactory unitofwork.RepositoryFactory
	events     emitter
	logger     logger.ILogger
	now        func() time.Time
}

func NewMessagingService(
	uowFactory unitofwork.RepositoryFactory,
	publisher events.Publisher,
	logger logger.ILogger,
) IMessagingService {
	return &messagingService{
		uowFactory: uowFactory,
		events:     newEmitter(publisher, logger),
		logger:     logger,
		now:        time.Now,
	}
}

// requireParticipant returns NotFound for an unknown conversation and
// Forbidden for a user outside it.
func requireParticipant(ctx context.Context, uow unitofwork.UnitOfWork, conversationId, userId int64) (*entity.ConversationParticipant, error) {
	conversation, err := uow.ConversationRepository().FindByID(ctx, conversationId)
	if err != nil {
		return nil, err
	}
	if conversation == nil {
		return nil, apperror.NotFound("conversation not found", apperror.Resource("conversation", conversationId))
	}

	participant, err := uow.ConversationRepository().FindParticipant(ctx, conversationId, userId)
	if err != nil {
		return nil, err
	}
	if participant == nil {
		return nil, apperror.Forbidden("you are not a participant in this conversation")
	}
	return participant, nil
}

func (s *messagingService) SendMessage(ctx context.Context, conversationId int64, senderId int64, content string) (*dto.MessageResponse, error) {
	if strings.TrimSpace(content) == "" {
		return nil, apperror.Validation("message content must not be empty")
	}
	if utf8.RuneCountInString(content) > MaxMessageLength {
		return nil, apperror.Validation(fmt.Sprintf("message content must be at most %d characters", MaxMessageLength))
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if _, err := requireParticipant(ctx, uow, conversationId, senderId); err != nil {
		return nil, err
	}

	now := s.now()
	message := &entity.Message{
		ConversationId: conversationId,
		SenderId:       &senderId,
		Content:        content,
		SentAt:         now,
	}
	if err := uow.MessageRepository().Create(ctx, message); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	s.events.emit(ctx, events.MessageSent, now, map[string]interface{}{
		"conversation_id": conversationId,
		"message_id":      message.Id,
		"sender_id":       senderId,
	})

	return toMessageResponse(message), nil
}

func (s *messagingService) MarkRead(ctx context.Context, conversationId int64, userId int64, upto *time.Time) (*dto.UnreadCountResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	participant, err := requireParticipant(ctx, uow, conversationId, userId)
	if err != nil {
		return nil, err
	}

	now := s.now()
	readAt := now
	// A future upto is clamped so later messages still count as unread.
	if upto != nil && !upto.IsZero() && upto.Before(now) {
		readAt = *upto
	}
	// last_read_at never moves backwards.
	if participant.LastReadAt != nil && participant.LastReadAt.After(readAt) {
		readAt = *participant.LastReadAt
	}

	if err := uow.ConversationRepository().UpdateLastReadAt(ctx, conversationId, userId, readAt); err != nil {
		return nil, err
	}
	if _, err := uow.MessageRepository().MarkReadUpTo(ctx, conversationId, userId, readAt); err != nil {
		return nil, err
	}

	unread, err := uow.MessageRepository().CountUnread(ctx, conversationId, userId, &readAt)
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	return &dto.UnreadCountResponse{ConversationId: conversationId, UnreadCount: unread}, nil
}

func (s *messagingService) UnreadCount(ctx context.Context, conversationId int64, userId int64) (*dto.UnreadCountResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	participant, err := requireParticipant(ctx, uow, conversationId, userId)
	if err != nil {
		return nil, err
	}

	unread, err := uow.MessageRepository().CountUnread(ctx, conversationId, userId, participant.LastReadAt)
	if err != nil {
		return nil, err
	}
	return &dto.UnreadCountResponse{ConversationId: conversationId, UnreadCount: unread}, nil
}

func (s *messagingService) CreateDirectConversation(ctx context.Context, initiatorId int64, otherUserId int64) (*dto.ConversationResponse, bool, error) {
	if initiatorId == otherUserId {
		return nil, false, apperror.Validation("a conversation needs two different users")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, false, err
	}
	defer uow.Rollback()

	for _, id := range []int64{initiatorId, otherUserId} {
		user, err := uow.UserRepository().FindByID(ctx, id)
		if err != nil {
			return nil, false, err
		}
		if user == nil {
			return nil, false, apperror.NotFound("user not found", apperror.Resource("user", id))
		}
	}

	participantIds := []int64{initiatorId, otherUserId}

	existing, err := uow.ConversationRepository().FindDirectBetween(ctx, initiatorId, otherUserId)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return toConversationResponse(existing, participantIds, nil, 0), false, nil
	}

	now := s.now()
	conversation := &entity.Conversation{CreatedAt: now, UpdatedAt: now}
	if err := uow.ConversationRepository().Create(ctx, conversation, participantIds); err != nil {
		return nil, false, err
	}

	if err := uow.Commit(); err != nil {
		return nil, false, err
	}

	s.logger.Info("MESSAGING", "Direct conversation created", map[string]interface{}{
		"conversation_id": conversation.Id,
		"participants":    participantIds,
	})
	return toConversationResponse(conversation, participantIds, nil, 0), true, nil
}

func (s *messagingService) ListConversations(ctx context.Context, userId int64, query *dto.PaginationQuery) (*dto.PaginatedResponse[*dto.ConversationResponse], error) {
	limit, offset := query.Normalize()
	uow := s.uowFactory.NewUnitOfWork(ctx)

	conversations, total, err := uow.ConversationRepository().FindAllForUser(ctx, userId, limit, offset)
	if err != nil {
		return nil, err
	}

	items := make([]*dto.ConversationResponse, 0, len(conversations))
	for _, conversation := range conversations {
		participantIds, err := uow.ConversationRepository().ListParticipantIDs(ctx, conversation.Id)
		if err != nil {
			return nil, err
		}
		latest, err := uow.MessageRepository().FindLatest(ctx, conversation.Id)
		if err != nil {
			return nil, err
		}
		participant, err := uow.ConversationRepository().FindParticipant(ctx, conversation.Id, userId)
		if err != nil {
			return nil, err
		}

		var since *time.Time
		if participant != nil {
			since = participant.LastReadAt
		}
		unread, err := uow.MessageRepository().CountUnread(ctx, conversation.Id, userId, since)
		if err != nil {
			return nil, err
		}

		items = append(items, toConversationResponse(conversation, participantIds, latest, unread))
	}

	return &dto.PaginatedResponse[*dto.ConversationResponse]{
		Items: items,
		Page:  query.Page,
		Limit: limit,
		Total: total,
	}, nil
}

func (s *messagingService) ListMessages(ctx context.Context, conversationId int64, userId int64, query *dto.PaginationQuery) (*dto.PaginatedResponse[*dto.MessageResponse], error) {
	limit, offset := query.Normalize()
	uow := s.uowFactory.NewUnitOfWork(ctx)

	if _, err := requireParticipant(ctx, uow, conversationId, userId); err != nil {
		return nil, err
	}

	messages, total, err := uow.MessageRepository().FindAllByConversation(ctx, conversationId, limit, offset)
	if err != nil {
		return nil, err
	}

	items := make([]*dto.MessageResponse, 0, len(messages))
	for _, message := range messages {
		items = append(items, toMessageResponse(message))
	}

	return &dto.PaginatedResponse[*dto.MessageResponse]{
		Items: items,
		Page:  query.Page,
		Limit: limit,
		Total: total,
	}, nil
}

func toMessageResponse(m *entity.Message) *dto.MessageResponse {
	return &dto.MessageResponse{
		Id:             m.Id,
		ConversationId: m.ConversationId,
		SenderId:       m.SenderId,
		Content:        m.Content,
		SentAt:         m.SentAt,
		IsRead:         m.IsRead,
	}
}

func toConversationResponse(c *entity.Conversation, participantIds []int64, latest *entity.Message, unread int64) *dto.ConversationResponse {
	res := &dto.ConversationResponse{
		Id:             c.Id,
		MatchRequestId: c.MatchRequestId,
		ParticipantIds: participantIds,
		UnreadCount:    unread,
		CreatedAt:      c.CreatedAt,
	}
	if latest != nil {
		res.LastMessage = toMessageResponse(latest)
	}
	return res
}
