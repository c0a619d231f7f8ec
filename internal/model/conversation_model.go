package model

import (
	"time"
)

type Conversation struct {
	Id             int64     `gorm:"primaryKey;autoIncrement"`
	MatchRequestId *int64    `gorm:"uniqueIndex:ux_conversations_match_request"`
	CreatedAt      time.Time `gorm:"autoCreateTime"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime"`

	MatchRequest *MatchRequest `gorm:"foreignKey:MatchRequestId;constraint:OnDelete:SET NULL"`
}

func (Conversation) TableName() string {
	return "conversations"
}

type ConversationParticipant struct {
	ConversationId int64     `gorm:"primaryKey"`
	UserId         int64     `gorm:"primaryKey;index"`
	JoinedAt       time.Time `gorm:"not null"`
	LastReadAt     *time.Time

	Conversation Conversation `gorm:"foreignKey:ConversationId;constraint:OnDelete:CASCADE"`
	User         User         `gorm:"foreignKey:UserId;constraint:OnDelete:CASCADE"`
}

func (ConversationParticipant) TableName() string {
	return "conversation_participants"
}

type Message struct {
	Id             int64     `gorm:"primaryKey;autoIncrement"`
	ConversationId int64     `gorm:"not null;index:idx_messages_conversation_sent,priority:1"`
	SenderId       *int64    `gorm:"index"`
	Content        string    `gorm:"type:text;not null"`
	SentAt         time.Time `gorm:"not null;index:idx_messages_conversation_sent,priority:2"`
	IsRead         bool      `gorm:"not null;default:false"`

	Conversation Conversation `gorm:"foreignKey:ConversationId;constraint:OnDelete:CASCADE"`
	Sender       *User        `gorm:"foreignKey:SenderId;constraint:OnDelete:SET NULL"`
}

func (Message) TableName() string {
	return "messages"
}
