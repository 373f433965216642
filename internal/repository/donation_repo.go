package repository

import (
	"charitychain/internal/models"

	"gorm.io/gorm"
)

type DonationRepository struct {
	db *gorm.DB
}

func NewDonationRepository(db *gorm.DB) *DonationRepository {
	return &DonationRepository{db: db}
}

func (r *DonationRepository) GetByTxHash(txHash string) (*models.Donation, error) {
	var d models.Donation
	err := r.db.Where("tx_hash = ?", txHash).First(&d).Error
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *DonationRepository) ListByDonor(address string, limit, offset int) ([]models.Donation, error) {
	var list []models.Donation
	err := r.db.Where("donor_address = ?", address).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&list).Error
	return list, err
}
