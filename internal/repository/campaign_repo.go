package repository

import (
	"charitychain/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CampaignRepository struct {
	db *gorm.DB
}

func NewCampaignRepository(db *gorm.DB) *CampaignRepository {
	return &CampaignRepository{db: db}
}

// CampaignTotals is a campaign row joined with its donation aggregates.
type CampaignTotals struct {
	models.Campaign
	TotalWei       decimal.Decimal `json:"total_wei"`
	SupporterCount int64           `json:"supporter_count"`
}

const campaignSelect = `campaigns.id, campaigns.name, campaigns.description, campaigns.goal_eth,
campaigns.owner_address, campaigns.beneficiary_address, campaigns.category, campaigns.verified,
campaigns.cover_image_cid, campaigns.created_at,
COALESCE(SUM(donations.amount_wei), 0) AS total_wei,
COUNT(donations.tx_hash) AS supporter_count`

func (r *CampaignRepository) aggregated() *gorm.DB {
	return r.db.Model(&models.Campaign{}).
		Select(campaignSelect).
		Joins("LEFT JOIN donations ON donations.campaign_id = campaigns.id").
		Group("campaigns.id")
}

func (r *CampaignRepository) Create(c *models.Campaign) error {
	return r.db.Create(c).Error
}

func (r *CampaignRepository) List() ([]CampaignTotals, error) {
	var rows []CampaignTotals
	err := r.aggregated().Order("campaigns.created_at DESC").Scan(&rows).Error
	return rows, err
}

func (r *CampaignRepository) GetByID(id string) (*CampaignTotals, error) {
	var row CampaignTotals
	res := r.aggregated().Where("campaigns.id = ?", id).Scan(&row)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 || row.ID == "" {
		return nil, gorm.ErrRecordNotFound
	}
	return &row, nil
}

// Top returns the n campaigns that raised the most, for the chat assistant.
func (r *CampaignRepository) Top(n int) ([]CampaignTotals, error) {
	var rows []CampaignTotals
	err := r.aggregated().Order("total_wei DESC").Limit(n).Scan(&rows).Error
	return rows, err
}

// PlatformImpact aggregates every donation on the platform.
type PlatformImpact struct {
	TotalWei decimal.Decimal
	Donors   int64
}

func (r *CampaignRepository) Impact() (*PlatformImpact, error) {
	var row struct {
		TotalWei decimal.Decimal
		Donors   int64
	}
	err := r.db.Model(&models.Donation{}).
		Select("COALESCE(SUM(amount_wei), 0) AS total_wei, COUNT(DISTINCT donor_address) AS donors").
		Scan(&row).Error
	if err != nil {
		return nil, err
	}
	return &PlatformImpact{TotalWei: row.TotalWei, Donors: row.Donors}, nil
}
