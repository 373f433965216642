package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Donation mirrors one on-chain transfer. The transaction hash is the
// primary key and the idempotency token: a hash can be recorded exactly
// once, and rows are never updated or deleted.
type Donation struct {
	TxHash       string          `gorm:"primaryKey;size:66" json:"tx_hash"`
	DonorAddress string          `gorm:"size:128;not null;index" json:"donor_address"`
	CampaignID   string          `gorm:"size:64;index" json:"campaign_id"`
	CID          string          `gorm:"column:cid;size:255" json:"cid"`
	AmountWei    decimal.Decimal `gorm:"type:numeric(78,0);not null" json:"amount_wei"`
	Status       string          `gorm:"size:20" json:"status"`
	CreatedAt    time.Time       `json:"created_at"`
}

func (Donation) TableName() string { return "donations" }
