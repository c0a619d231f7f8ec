package mapper

import (
	"carematch-be/internal/entity"
	"carematch-be/internal/model"
)

type ConversationMapper struct{}

func NewConversationMapper() *ConversationMapper {
	return &ConversationMapper{}
}

func (m *ConversationMapper) ToEntity(c *model.Conversation) *entity.Conversation {
	if c == nil {
		return nil
	}
	return &entity.Conversation{
		Id:             c.Id,
		MatchRequestId: c.MatchRequestId,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
}

func (m *ConversationMapper) ToModel(c *entity.Conversation) *model.Conversation {
	if c == nil {
		return nil
	}
	return &model.Conversation{
		Id:             c.Id,
		MatchRequestId: c.MatchRequestId,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
}

func (m *ConversationMapper) ParticipantToEntity(p *model.ConversationParticipant) *entity.ConversationParticipant {
	if p == nil {
		return nil
	}
	return &entity.ConversationParticipant{
		ConversationId: p.ConversationId,
		UserId:         p.UserId,
		JoinedAt:       p.JoinedAt,
		LastReadAt:     p.LastReadAt,
	}
}

func (m *ConversationMapper) ParticipantToModel(p *entity.ConversationParticipant) *model.ConversationParticipant {
	if p == nil {
		return nil
	}
	return &model.ConversationParticipant{
		ConversationId: p.ConversationId,
		UserId:         p.UserId,
		JoinedAt:       p.JoinedAt,
		LastReadAt:     p.LastReadAt,
	}
}

func (m *ConversationMapper) MessageToEntity(msg *model.Message) *entity.Message {
	if msg == nil {
		return nil
	}
	return &entity.Message{
		Id:             msg.Id,
		ConversationId: msg.ConversationId,
		SenderId:       msg.SenderId,
		Content:        msg.Content,
		SentAt:         msg.SentAt,
		IsRead:         msg.IsRead,
	}
}

func (m *ConversationMapper) MessageToModel(msg *entity.Message) *model.Message {
	if msg == nil {
		return nil
	}
	return &model.Message{
		Id:             msg.Id,
		ConversationId: msg.ConversationId,
		SenderId:       msg.SenderId,
		Content:        msg.Content,
		SentAt:         msg.SentAt,
		IsRead:         msg.IsRead,
	}
}
