package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// User is keyed by the normalized identity (wallet address, or lowercased
// email for users without a wallet). total_donated_wei, impact_score and
// reward_balance only ever grow; referral_code and referred_by are set at
// most once and never overwritten.
type User struct {
	Address         string          `gorm:"primaryKey;size:128" json:"address"`
	Name            string          `gorm:"size:255" json:"name"`
	Email           string          `gorm:"uniqueIndex;size:255" json:"email"`
	Phone           *string         `gorm:"size:32" json:"phone"`
	PasswordHash    string          `gorm:"size:255" json:"-"`
	TotalDonatedWei decimal.Decimal `gorm:"type:numeric(78,0);not null;default:0" json:"total_donated_wei"`
	ReferralCode    *string         `gorm:"uniqueIndex;size:20" json:"referral_code"`
	ReferredBy      *string         `gorm:"size:128" json:"referred_by"`
	ReferralCount   int             `gorm:"not null;default:0" json:"referral_count"`
	ImpactScore     decimal.Decimal `gorm:"type:numeric(32,18);not null;default:0" json:"impact_score"`
	RewardBalance   decimal.Decimal `gorm:"type:numeric(32,18);not null;default:0" json:"reward_balance"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

func (User) TableName() string { return "users" }
