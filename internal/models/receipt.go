package models

import "time"

// Receipt is a content-addressed stored artifact. The CID is the primary
// key, so re-inserting the same receipt is a no-op.
type Receipt struct {
	CID        string    `gorm:"column:cid;primaryKey;size:255" json:"cid"`
	SizeBytes  int64     `json:"size_bytes"`
	PinStatus  string    `gorm:"size:20" json:"pin_status"`
	GatewayURL string    `gorm:"size:512" json:"gateway_url"`
	CreatedAt  time.Time `json:"created_at"`
}

func (Receipt) TableName() string { return "receipts" }
