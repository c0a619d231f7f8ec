package implementation

import (
	"context"
	"errors"
	"time"

	"carematch-be/internal/entity"
	"carematch-be/internal/mapper"
	"carematch-be/internal/model"
	"carematch-be/internal/repository/contract"
	"carematch-be/internal/repository/specification"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ConversationRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ConversationMapper
}

func NewConversationRepository(db *gorm.DB) contract.ConversationRepository {
	return &ConversationRepositoryImpl{
		db:     db,
		mapper: mapper.NewConversationMapper(),
	}
}

func (r *ConversationRepositoryImpl) findOne(ctx context.Context, specs ...specification.Specification) (*entity.Conversation, error) {
	var m model.Conversation
	if err := specification.Apply(r.db.WithContext(ctx), specs...).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *ConversationRepositoryImpl) addParticipants(ctx context.Context, conversationId int64, participantIds []int64, joinedAt time.Time) error {
	if len(participantIds) == 0 {
		return nil
	}
	rows := make([]model.ConversationParticipant, len(participantIds))
	for i, userId := range participantIds {
		rows[i] = model.ConversationParticipant{
			ConversationId: conversationId,
			UserId:         userId,
			JoinedAt:       joinedAt,
		}
	}
	return r.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&rows).Error
}

func (r *ConversationRepositoryImpl) CreateForMatchIfAbsent(ctx context.Context, matchRequestId int64, participantIds []int64, now time.Time) (*entity.Conversation, bool, error) {
	m := &model.Conversation{
		MatchRequestId: &matchRequestId,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	res := r.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "match_request_id"}},
			DoNothing: true,
		}).
		Create(m)
	if res.Error != nil {
		return nil, false, translateError(res.Error)
	}

	created := res.RowsAffected > 0
	conversation := r.mapper.ToEntity(m)
	if !created {
		existing, err := r.FindByMatchRequestID(ctx, matchRequestId)
		if err != nil {
			return nil, false, err
		}
		if existing == nil {
			return nil, false, errors.New("conversation vanished after conflict")
		}
		conversation = existing
	}

	// Participants are inserted on both paths so a half-written conversation is repaired.
	if err := r.addParticipants(ctx, conversation.Id, participantIds, now); err != nil {
		return nil, false, err
	}
	return conversation, created, nil
}

func (r *ConversationRepositoryImpl) Create(ctx context.Context, conversation *entity.Conversation, participantIds []int64) error {
	m := r.mapper.ToModel(conversation)
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(m).Error; err != nil {
		return translateError(err)
	}
	*conversation = *r.mapper.ToEntity(m)
	return r.addParticipants(ctx, m.Id, participantIds, m.CreatedAt)
}

func (r *ConversationRepositoryImpl) FindByID(ctx context.Context, id int64) (*entity.Conversation, error) {
	return r.findOne(ctx, specification.ByID{ID: id})
}

func (r *ConversationRepositoryImpl) FindByMatchRequestID(ctx context.Context, matchRequestId int64) (*entity.Conversation, error) {
	return r.findOne(ctx, specification.Filter("match_request_id", matchRequestId))
}

func (r *ConversationRepositoryImpl) FindDirectBetween(ctx context.Context, userA, userB int64) (*entity.Conversation, error) {
	var m model.Conversation
	err := r.db.WithContext(ctx).
		Where("match_request_id IS NULL").
		Where("EXISTS (SELECT 1 FROM conversation_participants p WHERE p.conversation_id = conversations.id AND p.user_id = ?)", userA).
		Where("EXISTS (SELECT 1 FROM conversation_participants p WHERE p.conversation_id = conversations.id AND p.user_id = ?)", userB).
		Where("(SELECT COUNT(*) FROM conversation_participants p WHERE p.conversation_id = conversations.id) = 2").
		Order("id ASC").
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *ConversationRepositoryImpl) FindParticipant(ctx context.Context, conversationId, userId int64) (*entity.ConversationParticipant, error) {
	var m model.ConversationParticipant
	err := specification.Apply(r.db.WithContext(ctx),
		specification.ByConversation{ConversationID: conversationId},
		specification.UserOwnedBy{UserID: userId},
	).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ParticipantToEntity(&m), nil
}

func (r *ConversationRepositoryImpl) ListParticipantIDs(ctx context.Context, conversationId int64) ([]int64, error) {
	var ids []int64
	err := specification.Apply(r.db.WithContext(ctx).Model(&model.ConversationParticipant{}),
		specification.ByConversation{ConversationID: conversationId},
		specification.OrderBy{Field: "user_id"},
	).Pluck("user_id", &ids).Error
	return ids, err
}

func (r *ConversationRepositoryImpl) UpdateLastReadAt(ctx context.Context, conversationId, userId int64, at time.Time) error {
	return specification.Apply(r.db.WithContext(ctx).Model(&model.ConversationParticipant{}),
		specification.ByConversation{ConversationID: conversationId},
		specification.UserOwnedBy{UserID: userId},
	).Update("last_read_at", at).Error
}

func (r *ConversationRepositoryImpl) FindAllForUser(ctx context.Context, userId int64, limit, offset int) ([]*entity.Conversation, int64, error) {
	var total int64
	if err := specification.Apply(r.db.WithContext(ctx).Model(&model.Conversation{}),
		specification.ConversationsOf{UserID: userId},
	).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var models []*model.Conversation
	err := specification.Apply(r.db.WithContext(ctx),
		specification.ConversationsOf{UserID: userId},
		specification.Pagination{Limit: limit, Offset: offset},
	).
		Order("COALESCE((SELECT MAX(m.sent_at) FROM messages m WHERE m.conversation_id = conversations.id), conversations.created_at) DESC").
		Order("id DESC").
		Find(&models).Error
	if err != nil {
		return nil, 0, err
	}

	entities := make([]*entity.Conversation, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ToEntity(m)
	}
	return entities, total, nil
}

type MessageRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ConversationMapper
}

func NewMessageRepository(db *gorm.DB) contract.MessageRepository {
	return &MessageRepositoryImpl{
		db:     db,
		mapper: mapper.NewConversationMapper(),
	}
}

func (r *MessageRepositoryImpl) Create(ctx context.Context, message *entity.Message) error {
	m := r.mapper.MessageToModel(message)
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(m).Error; err != nil {
		return err
	}
	*message = *r.mapper.MessageToEntity(m)
	return nil
}

func (r *MessageRepositoryImpl) FindAllByConversation(ctx context.Context, conversationId int64, limit, offset int) ([]*entity.Message, int64, error) {
	var total int64
	if err := specification.Apply(r.db.WithContext(ctx).Model(&model.Message{}),
		specification.ByConversation{ConversationID: conversationId},
	).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var models []*model.Message
	err := specification.Apply(r.db.WithContext(ctx),
		specification.ByConversation{ConversationID: conversationId},
		specification.OrderBy{Field: "sent_at", Desc: true},
		specification.OrderBy{Field: "id", Desc: true},
		specification.Pagination{Limit: limit, Offset: offset},
	).Find(&models).Error
	if err != nil {
		return nil, 0, err
	}

	entities := make([]*entity.Message, len(models))
	for i, m := range models {
		entities[i] = r.mapper.MessageToEntity(m)
	}
	return entities, total, nil
}

func (r *MessageRepositoryImpl) FindLatest(ctx context.Context, conversationId int64) (*entity.Message, error) {
	var m model.Message
	err := specification.Apply(r.db.WithContext(ctx),
		specification.ByConversation{ConversationID: conversationId},
		specification.OrderBy{Field: "sent_at", Desc: true},
		specification.OrderBy{Field: "id", Desc: true},
	).Take(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.MessageToEntity(&m), nil
}

func (r *MessageRepositoryImpl) fromOthers(db *gorm.DB, conversationId, userId int64) *gorm.DB {
	return specification.Apply(db, specification.ByConversation{ConversationID: conversationId}).
		Where("(sender_id IS NULL OR sender_id <> ?)", userId)
}

func (r *MessageRepositoryImpl) MarkReadUpTo(ctx context.Context, conversationId, readerId int64, upto time.Time) (int64, error) {
	res := r.fromOthers(r.db.WithContext(ctx).Model(&model.Message{}), conversationId, readerId).
		Where("sent_at <= ? AND is_read = ?", upto, false).
		Update("is_read", true)
	return res.RowsAffected, res.Error
}

func (r *MessageRepositoryImpl) CountUnread(ctx context.Context, conversationId, userId int64, since *time.Time) (int64, error) {
	query := r.fromOthers(r.db.WithContext(ctx).Model(&model.Message{}), conversationId, userId)
	if since != nil {
		query = query.Where("sent_at > ?", *since)
	}
	var count int64
	err := query.Count(&count).Error
	return count, err
}
