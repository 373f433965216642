package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Campaign is a fundraising cause. BeneficiaryAddress falls back to the
// owner when not set explicitly (resolved at creation time).
type Campaign struct {
	ID                 string          `gorm:"primaryKey;size:64" json:"id"`
	Name               string          `gorm:"size:255;not null" json:"name"`
	Description        string          `gorm:"type:text" json:"description"`
	GoalEth            decimal.Decimal `gorm:"type:numeric(18,6);not null;default:0" json:"goal_eth"`
	OwnerAddress       string          `gorm:"size:128;index" json:"owner_address"`
	BeneficiaryAddress string          `gorm:"size:128" json:"beneficiary_address"`
	Category           string          `gorm:"size:64" json:"category"`
	Verified           bool            `gorm:"default:false" json:"verified"`
	CoverImageCID      string          `gorm:"column:cover_image_cid;size:255" json:"cover_image_cid"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

func (Campaign) TableName() string { return "campaigns" }
