package events

const (
	MatchRequestCreated  = "MATCH_REQUEST_CREATED"
	MatchRequestAccepted = "MATCH_REQUEST_ACCEPTED"
	MatchRequestDeclined = "MATCH_REQUEST_DECLINED"
	MatchRequestsExpired = "MATCH_REQUESTS_EXPIRED"
	MatchCompleted       = "MATCH_COMPLETED"
	MessageSent          = "MESSAGE_SENT"
	ReviewSubmitted      = "REVIEW_SUBMITTED"
	ReviewUpdated        = "REVIEW_UPDATED"
	ReviewDeleted        = "REVIEW_DELETED"
	PaymentInitiated     = "PAYMENT_INITIATED"
	PaymentCompleted     = "PAYMENT_COMPLETED"
	PaymentFailed        = "PAYMENT_FAILED"
	PaymentRefunded      = "PAYMENT_REFUNDED"
	PaymentsExpired      = "PAYMENTS_EXPIRED"
)
