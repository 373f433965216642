package service

import (
	"context"
	"errors"

	"charitychain/internal/domain"
	"charitychain/internal/identity"
	"charitychain/internal/models"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrDuplicateDonation = errors.New("donation already recorded for this transaction hash")
	ErrInvalidTxHash     = errors.New("malformed transaction hash")
)

// DonationService records a donation, its receipt and the resulting score
// and token award as one all-or-nothing unit. The transaction hash primary
// key is the sole deduplication mechanism: a resubmitted hash fails with
// ErrDuplicateDonation before any counter is touched.
type DonationService struct {
	db     *gorm.DB
	impact *ImpactService
	log    zerolog.Logger
}

func NewDonationService(db *gorm.DB, impact *ImpactService, log zerolog.Logger) *DonationService {
	return &DonationService{db: db, impact: impact, log: log.With().Str("component", "donation").Logger()}
}

type DonationInput struct {
	TxHash       string          `json:"tx_hash"`
	DonorAddress string          `json:"donor_address"`
	CampaignID   string          `json:"campaign_id"`
	AmountWei    decimal.Decimal `json:"amount_wei"`
	CID          string          `json:"cid"`
	SizeBytes    int64           `json:"size_bytes"`
	GatewayURL   string          `json:"gateway_url"`
}

type DonationResult struct {
	Donation models.Donation   `json:"donation"`
	Award    DonationAward     `json:"award"`
	Bonus    RewardEligibility `json:"bonus"`
}

// Record runs the donation transaction: receipt upsert (no-op when the CID
// is already stored), donation insert keyed by tx hash, then the score and
// balance update via the impact engine. Any failure rolls back the whole
// unit, so there is never a receipt-only or donation-only row, and never a
// balance change without its donation. The bonus field of the result is
// advisory only; nothing here mints it.
func (s *DonationService) Record(ctx context.Context, in DonationInput) (*DonationResult, error) {
	if !identity.ValidTxHash(in.TxHash) {
		return nil, ErrInvalidTxHash
	}
	txHash := identity.Normalize(in.TxHash)
	donor := identity.Normalize(in.DonorAddress)
	if donor == "" {
		return nil, ErrUserNotFound
	}
	if !in.AmountWei.IsPositive() {
		return nil, ErrInvalidAmount
	}

	var (
		donation models.Donation
		award    *DonationAward
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if in.CID != "" {
			receipt := models.Receipt{
				CID:        in.CID,
				SizeBytes:  in.SizeBytes,
				PinStatus:  domain.PinStatusPinned,
				GatewayURL: in.GatewayURL,
			}
			err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "cid"}},
				DoNothing: true,
			}).Create(&receipt).Error
			if err != nil {
				return err
			}
		}

		donation = models.Donation{
			TxHash:       txHash,
			DonorAddress: donor,
			CampaignID:   in.CampaignID,
			CID:          in.CID,
			AmountWei:    in.AmountWei,
			Status:       domain.DonationStatusSuccess,
		}
		if err := tx.Create(&donation).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrDuplicateDonation
			}
			return err
		}

		var err error
		award, err = s.impact.ApplyDonationTx(tx, donor, in.AmountWei, txHash)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("donor", donor).
		Str("tx_hash", txHash).
		Str("amount_wei", in.AmountWei.String()).
		Str("tokens_awarded", award.TokensAwarded.String()).
		Str("impact_score", award.ImpactScore.String()).
		Msg("donation recorded")

	return &DonationResult{
		Donation: donation,
		Award:    *award,
		Bonus:    CheckRewardEligibility(award.ImpactScore, in.AmountWei),
	}, nil
}
