package models

import "time"

// Referral is the append-only log of referrer/referee bindings: one row per
// successful bind, never updated.
type Referral struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	ReferrerAddress string    `gorm:"size:128;not null;index" json:"referrer_address"`
	RefereeAddress  string    `gorm:"size:128;not null;uniqueIndex" json:"referee_address"`
	CreatedAt       time.Time `json:"created_at"`
}

func (Referral) TableName() string { return "referrals" }
