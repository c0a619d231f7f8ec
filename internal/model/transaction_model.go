package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type Transaction struct {
	Id                     int64           `gorm:"primaryKey;autoIncrement"`
	MatchRequestId         *int64          `gorm:"index"`
	InitiatingUserId       *int64          `gorm:"index"`
	ReceivingUserId        *int64          `gorm:"index"`
	Amount                 decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Currency               string          `gorm:"type:varchar(3);not null"`
	Status                 string          `gorm:"type:varchar(20);not null;default:'pending';index"`
	GatewayPaymentId       *string         `gorm:"type:varchar(255);uniqueIndex"`
	TransactionReferenceId string          `gorm:"type:varchar(64);uniqueIndex;not null"`
	ApprovalURL            *string         `gorm:"type:text"`
	FailureReason          *string         `gorm:"type:text"`
	LastCallback           datatypes.JSON  `gorm:"type:jsonb"`
	SettledAt              *time.Time
	RefundedAt             *time.Time
	CreatedAt              time.Time `gorm:"autoCreateTime;index"`
	UpdatedAt              time.Time `gorm:"autoUpdateTime"`

	MatchRequest   *MatchRequest `gorm:"foreignKey:MatchRequestId;constraint:OnDelete:SET NULL"`
	InitiatingUser *User         `gorm:"foreignKey:InitiatingUserId;constraint:OnDelete:SET NULL"`
	ReceivingUser  *User         `gorm:"foreignKey:ReceivingUserId;constraint:OnDelete:SET NULL"`
}

func (Transaction) TableName() string {
	return "transactions"
}
