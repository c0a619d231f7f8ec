package entity

import (
	"time"
)

type MatchStatus string

const (
	MatchStatusPending   MatchStatus = "pending"
	MatchStatusAccepted  MatchStatus = "accepted"
	MatchStatusDeclined  MatchStatus = "declined"
	MatchStatusExpired   MatchStatus = "expired"
	MatchStatusCompleted MatchStatus = "completed"
)

var matchTransitions = map[MatchStatus][]MatchStatus{
	MatchStatusPending:  {MatchStatusAccepted, MatchStatusDeclined, MatchStatusExpired},
	MatchStatusAccepted: {MatchStatusCompleted},
}

// OpenMatchStatuses are the non-terminal statuses. At most one request per
// (family, caregiver) pair may be in one of them.
var OpenMatchStatuses = []MatchStatus{MatchStatusPending, MatchStatusAccepted}

func (s MatchStatus) Valid() bool {
	switch s {
	case MatchStatusPending, MatchStatusAccepted, MatchStatusDeclined, MatchStatusExpired, MatchStatusCompleted:
		return true
	}
	return false
}

func (s MatchStatus) IsOpen() bool {
	return s == MatchStatusPending || s == MatchStatusAccepted
}

func (s MatchStatus) IsTerminal() bool {
	return len(matchTransitions[s]) == 0
}

func (s MatchStatus) CanTransitionTo(next MatchStatus) bool {
	for _, allowed := range matchTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type MatchDecision string

const (
	MatchDecisionAccept  MatchDecision = "accept"
	MatchDecisionDecline MatchDecision = "decline"
)

type MatchRequest struct {
	Id                 int64
	FamilyProfileId    int64
	CaregiverProfileId int64
	Status             MatchStatus
	Message            string
	ProposedStart      *time.Time
	ProposedEnd        *time.Time
	RequestedHours     *int
	RespondedAt        *time.Time
	CompletedAt        *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// MatchParties resolves the two users behind a match request's profiles.
type MatchParties struct {
	Request         *MatchRequest
	FamilyUserId    int64
	CaregiverUserId int64
}

func (p *MatchParties) Involves(userId int64) bool {
	return userId == p.FamilyUserId || userId == p.CaregiverUserId
}
