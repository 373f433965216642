package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// RewardHistory is the append-only audit log of CCT awards. TxHash links a
// donation-driven award back to its donation; bonus awards may carry none.
type RewardHistory struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	UserAddress string          `gorm:"size:128;not null;index" json:"user_address"`
	TokenAmount decimal.Decimal `gorm:"type:numeric(32,18);not null" json:"token_amount"`
	Reason      string          `gorm:"size:64;not null" json:"reason"`
	TxHash      *string         `gorm:"size:66" json:"tx_hash"`
	CreatedAt   time.Time       `json:"created_at"`
}

func (RewardHistory) TableName() string { return "rewards_history" }
