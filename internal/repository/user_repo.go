package repository

import (
	"charitychain/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByAddress(address string) (*models.User, error) {
	var u models.User
	err := r.db.Where("address = ?", address).First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// DashboardStats are display aggregates computed from the donations table.
type DashboardStats struct {
	TotalWei           decimal.Decimal
	CharitiesSupported int64
	TotalDonations     int64
}

func (r *UserRepository) DashboardStats(address string) (*DashboardStats, error) {
	var row struct {
		TotalWei           decimal.Decimal
		CharitiesSupported int64
	}
	err := r.db.Model(&models.Donation{}).
		Select("COALESCE(SUM(amount_wei), 0) AS total_wei, COUNT(DISTINCT campaign_id) AS charities_supported").
		Where("donor_address = ?", address).
		Scan(&row).Error
	if err != nil {
		return nil, err
	}
	var count int64
	if err := r.db.Model(&models.Donation{}).Where("donor_address = ?", address).Count(&count).Error; err != nil {
		return nil, err
	}
	return &DashboardStats{
		TotalWei:           row.TotalWei,
		CharitiesSupported: row.CharitiesSupported,
		TotalDonations:     count,
	}, nil
}
