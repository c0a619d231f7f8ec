package dto

import (
	"time"
)

type CreateConversationRequest struct {
	ParticipantId int64 `json:"participant_id" validate:"required,gt=0"`
}

type SendMessageRequest struct {
	Content string `json:"content" validate:"required"`
}

type MarkReadRequest struct {
	// Upto defaults to now when omitted.
	Upto *time.Time `json:"upto"`
}

type MessageResponse struct {
	Id             int64     `json:"id"`
	ConversationId int64     `json:"conversation_id"`
	SenderId       *int64    `json:"sender_id"`
	Content        string    `json:"content"`
	SentAt         time.Time `json:"sent_at"`
	IsRead         bool      `json:"is_read"`
}

type ConversationResponse struct {
	Id             int64            `json:"id"`
	MatchRequestId *int64           `json:"match_request_id"`
	ParticipantIds []int64          `json:"participant_ids"`
	LastMessage    *MessageResponse `json:"last_message"`
	UnreadCount    int64            `json:"unread_count"`
	CreatedAt      time.Time        `json:"created_at"`
}

type UnreadCountResponse struct {
	ConversationId int64 `json:"conversation_id"`
	UnreadCount    int64 `json:"unread_count"`
}
