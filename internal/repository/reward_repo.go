package repository

import (
	"charitychain/internal/models"

	"gorm.io/gorm"
)

type RewardRepository struct {
	db *gorm.DB
}

func NewRewardRepository(db *gorm.DB) *RewardRepository {
	return &RewardRepository{db: db}
}

func (r *RewardRepository) ListByUser(address string, limit, offset int) ([]models.RewardHistory, error) {
	var list []models.RewardHistory
	err := r.db.Where("user_address = ?", address).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&list).Error
	return list, err
}
