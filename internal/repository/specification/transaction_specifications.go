package specification

import (
	"gorm.io/gorm"
)

type ByGatewayPaymentID struct {
	GatewayPaymentID string
}

func (s ByGatewayPaymentID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("gateway_payment_id = ?", s.GatewayPaymentID)
}

// TransactionInvolving matches rows where the user is either party.
type TransactionInvolving struct {
	UserID int64
}

func (s TransactionInvolving) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("(initiating_user_id = ? OR receiving_user_id = ?)", s.UserID, s.UserID)
}
