package entity

import (
	"time"
)

// Conversation.MatchRequestId is a weak reference: the conversation survives
// deletion of the match request.
type Conversation struct {
	Id             int64
	MatchRequestId *int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type ConversationParticipant struct {
	ConversationId int64
	UserId         int64
	JoinedAt       time.Time
	LastReadAt     *time.Time
}

type Message struct {
	Id             int64
	ConversationId int64
	SenderId       *int64
	Content        string
	SentAt         time.Time
	IsRead         bool
}

// ConversationSummary is the list view of a conversation for one user.
type ConversationSummary struct {
	Conversation   Conversation
	ParticipantIds []int64
	LastMessage    *Message
	UnreadCount    int64
}
