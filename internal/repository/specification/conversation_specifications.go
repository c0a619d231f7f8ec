package specification

import (
	"gorm.io/gorm"
)

type ByConversation struct {
	ConversationID int64
}

func (s ByConversation) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("conversation_id = ?", s.ConversationID)
}

// ConversationsOf restricts conversations to those the user participates in.
type ConversationsOf struct {
	UserID int64
}

func (s ConversationsOf) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("id IN (?)",
		db.Session(&gorm.Session{NewDB: true}).
			Table("conversation_participants").
			Select("conversation_id").
			Where("user_id = ?", s.UserID))
}
