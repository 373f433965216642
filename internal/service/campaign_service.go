package service

import (
	"errors"

	"charitychain/internal/domain"
	"charitychain/internal/identity"
	"charitychain/internal/models"
	"charitychain/internal/repository"
	"charitychain/pkg/ipfs"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var ErrCampaignNotFound = errors.New("campaign not found")

// CampaignService is the read-side projection over campaigns plus their
// donation totals, and campaign creation.
type CampaignService struct {
	repo     *repository.CampaignRepository
	resolver *ipfs.Resolver
}

func NewCampaignService(repo *repository.CampaignRepository, resolver *ipfs.Resolver) *CampaignService {
	return &CampaignService{repo: repo, resolver: resolver}
}

// CampaignView is the display shape: amounts in ETH at the presentation
// edge, progress capped at 100%.
type CampaignView struct {
	ID                 string          `json:"id"`
	Title              string          `json:"title"`
	Description        string          `json:"description"`
	GoalEth            decimal.Decimal `json:"goal_eth"`
	RaisedEth          string          `json:"raised_eth"`
	Backers            int64           `json:"backers"`
	Category           string          `json:"category"`
	Verified           bool            `json:"verified"`
	OwnerAddress       string          `json:"owner_address"`
	BeneficiaryAddress string          `json:"beneficiary_address"`
	ImageURL           string          `json:"image_url"`
	ProgressPercent    decimal.Decimal `json:"progress_percent"`
}

func (s *CampaignService) view(row repository.CampaignTotals) CampaignView {
	raised := row.TotalWei.Shift(-18)
	progress := decimal.Zero
	if row.GoalEth.IsPositive() {
		progress = raised.Div(row.GoalEth).Mul(decimal.NewFromInt(100)).Round(2)
		if progress.GreaterThan(decimal.NewFromInt(100)) {
			progress = decimal.NewFromInt(100)
		}
	}
	beneficiary := row.BeneficiaryAddress
	if beneficiary == "" {
		beneficiary = row.OwnerAddress
	}
	category := row.Category
	if category == "" {
		category = domain.DefaultCampaignCategory
	}
	return CampaignView{
		ID:                 row.ID,
		Title:              row.Name,
		Description:        row.Description,
		GoalEth:            row.GoalEth,
		RaisedEth:          raised.StringFixed(3),
		Backers:            row.SupporterCount,
		Category:           category,
		Verified:           row.Verified,
		OwnerAddress:       row.OwnerAddress,
		BeneficiaryAddress: beneficiary,
		ImageURL:           s.resolver.ResolveURL(row.CoverImageCID),
		ProgressPercent:    progress,
	}
}

type CreateCampaignInput struct {
	Name               string          `json:"name"`
	Description        string          `json:"description"`
	GoalEth            decimal.Decimal `json:"goal_eth"`
	OwnerAddress       string          `json:"owner_address"`
	CoverImageCID      string          `json:"cover_image_cid"`
	Category           string          `json:"category"`
	Verified           bool            `json:"verified"`
	BeneficiaryAddress string          `json:"beneficiary_address"`
}

func (s *CampaignService) Create(in CreateCampaignInput) (*CampaignView, error) {
	if in.Name == "" {
		return nil, ErrNameRequired
	}
	c := models.Campaign{
		ID:                 uuid.NewString(),
		Name:               in.Name,
		Description:        in.Description,
		GoalEth:            in.GoalEth,
		OwnerAddress:       identity.Normalize(in.OwnerAddress),
		CoverImageCID:      in.CoverImageCID,
		Category:           in.Category,
		Verified:           in.Verified,
		BeneficiaryAddress: identity.Normalize(in.BeneficiaryAddress),
	}
	if c.Category == "" {
		c.Category = domain.DefaultCampaignCategory
	}
	if c.BeneficiaryAddress == "" {
		c.BeneficiaryAddress = c.OwnerAddress
	}
	if err := s.repo.Create(&c); err != nil {
		return nil, err
	}
	return s.Get(c.ID)
}

func (s *CampaignService) List() ([]CampaignView, error) {
	rows, err := s.repo.List()
	if err != nil {
		return nil, err
	}
	views := make([]CampaignView, 0, len(rows))
	for _, row := range rows {
		views = append(views, s.view(row))
	}
	return views, nil
}

func (s *CampaignService) Get(id string) (*CampaignView, error) {
	row, err := s.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCampaignNotFound
		}
		return nil, err
	}
	v := s.view(*row)
	return &v, nil
}
