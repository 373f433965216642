package repository

import (
	"charitychain/internal/models"

	"gorm.io/gorm"
)

type ReferralRepository struct {
	db *gorm.DB
}

func NewReferralRepository(db *gorm.DB) *ReferralRepository {
	return &ReferralRepository{db: db}
}

// CountByReferrer counts rows in the referral log, the authoritative source
// for how many users this referrer brought in.
func (r *ReferralRepository) CountByReferrer(address string) (int64, error) {
	var n int64
	err := r.db.Model(&models.Referral{}).Where("referrer_address = ?", address).Count(&n).Error
	return n, err
}

func (r *ReferralRepository) ListByReferrer(address string, limit, offset int) ([]models.Referral, error) {
	var list []models.Referral
	err := r.db.Where("referrer_address = ?", address).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&list).Error
	return list, err
}
