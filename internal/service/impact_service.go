package service

import (
	"context"
	"errors"
	"time"

	"charitychain/internal/domain"
	"charitychain/internal/models"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrUserNotFound        = errors.New("user not found")
	ErrInvalidAmount       = errors.New("donation amount must be positive")
	ErrDonationNotFound    = errors.New("donation not found")
	ErrBonusNotEligible    = errors.New("not eligible for bonus reward")
	ErrBonusAlreadyAwarded = errors.New("bonus already awarded for this donation")
)

// ImpactService derives the impact score from a user's authoritative
// counters (total donated, referral count) and converts score increases into
// CCT awards. It keeps no state between calls; every award re-reads the
// user row under a row lock and writes back in the same transaction.
type ImpactService struct {
	db  *gorm.DB
	log zerolog.Logger
}

func NewImpactService(db *gorm.DB, log zerolog.Logger) *ImpactService {
	return &ImpactService{db: db, log: log.With().Str("component", "impact").Logger()}
}

// ComputeImpactScore is the scoring formula:
//
//	score = ETH donated * 10 + referrals * 5
//
// The wei -> ETH conversion is an exact decimal shift, so repeated
// recomputation from the same counters always yields the same score.
func ComputeImpactScore(totalDonatedWei decimal.Decimal, referralCount int) decimal.Decimal {
	eth := totalDonatedWei.Shift(-18)
	return eth.Mul(domain.DonationWeight).
		Add(decimal.NewFromInt(int64(referralCount)).Mul(domain.ReferralWeight))
}

// DonationAward is the outcome of applying one donation to a user's counters.
type DonationAward struct {
	TotalDonatedWei decimal.Decimal `json:"total_donated_wei"`
	ImpactScore     decimal.Decimal `json:"impact_score"`
	TokensAwarded   decimal.Decimal `json:"tokens_awarded"`
	RewardBalance   decimal.Decimal `json:"reward_balance"`
}

// ApplyDonationTx credits one donation inside the caller's transaction: it
// locks the user row, bumps total_donated_wei, recomputes the score from the
// updated counters and awards 10 CCT per score point gained. The delta is
// clamped at zero so the score and balance can never move backwards, and a
// RewardHistory row is appended whenever tokens are minted.
func (s *ImpactService) ApplyDonationTx(tx *gorm.DB, address string, amountWei decimal.Decimal, txHash string) (*DonationAward, error) {
	if !amountWei.IsPositive() {
		return nil, ErrInvalidAmount
	}

	var u models.User
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("address = ?", address).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	newTotal := u.TotalDonatedWei.Add(amountWei)
	newScore := ComputeImpactScore(newTotal, u.ReferralCount)

	delta := newScore.Sub(u.ImpactScore)
	if delta.IsNegative() {
		delta = decimal.Zero
		newScore = u.ImpactScore
	}
	tokens := delta.Mul(domain.TokenRate)
	newBalance := u.RewardBalance.Add(tokens)

	err := tx.Model(&models.User{}).Where("address = ?", address).Updates(map[string]interface{}{
		"total_donated_wei": newTotal,
		"impact_score":      newScore,
		"reward_balance":    newBalance,
		"updated_at":        time.Now(),
	}).Error
	if err != nil {
		return nil, err
	}

	if tokens.IsPositive() {
		hash := txHash
		entry := models.RewardHistory{
			UserAddress: address,
			TokenAmount: tokens,
			Reason:      domain.RewardReasonDonation,
			TxHash:      &hash,
		}
		if err := tx.Create(&entry).Error; err != nil {
			return nil, err
		}
	}

	return &DonationAward{
		TotalDonatedWei: newTotal,
		ImpactScore:     newScore,
		TokensAwarded:   tokens,
		RewardBalance:   newBalance,
	}, nil
}

// ApplyDonation runs ApplyDonationTx in its own transaction for callers that
// are not already inside one.
func (s *ImpactService) ApplyDonation(ctx context.Context, address string, amountWei decimal.Decimal, txHash string) (*DonationAward, error) {
	var award *DonationAward
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		award, err = s.ApplyDonationTx(tx, address, amountWei, txHash)
		return err
	})
	if err != nil {
		return nil, err
	}
	return award, nil
}

// RewardEligibility is the advisory bonus check result. Callers decide
// whether to mint; the donation path itself never applies the bonus.
type RewardEligibility struct {
	Eligible    bool            `json:"eligible"`
	BonusTokens decimal.Decimal `json:"bonus_tokens"`
	Reason      string          `json:"reason"`
}

// CheckRewardEligibility applies the flat-bonus rule: an impact score above
// 100 plus a single donation above 0.5 ETH qualifies for 50 CCT.
func CheckRewardEligibility(impactScore, donationWei decimal.Decimal) RewardEligibility {
	meetsImpact := impactScore.GreaterThan(domain.ImpactThreshold)
	meetsDonation := donationWei.GreaterThan(domain.DonationThresholdWei)

	if meetsImpact && meetsDonation {
		return RewardEligibility{Eligible: true, BonusTokens: domain.BonusTokens, Reason: "Qualified for bonus reward"}
	}
	reason := "Impact score must be greater than 100"
	if meetsImpact {
		reason = "Donation must be greater than 0.5 ETH"
	}
	return RewardEligibility{Eligible: false, BonusTokens: decimal.Zero, Reason: reason}
}

// AwardBonus mints the flat bonus for a recorded donation. It is the
// explicitly invoked counterpart of CheckRewardEligibility: eligibility is
// re-checked against the locked current state, and a given donation can earn
// the bonus at most once.
func (s *ImpactService) AwardBonus(ctx context.Context, address, donationTxHash string) (*DonationAward, error) {
	var result *DonationAward
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var u models.User
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("address = ?", address).First(&u).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}

		var d models.Donation
		if err := tx.Where("tx_hash = ? AND donor_address = ?", donationTxHash, address).First(&d).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrDonationNotFound
			}
			return err
		}

		var prior int64
		if err := tx.Model(&models.RewardHistory{}).
			Where("user_address = ? AND reason = ? AND tx_hash = ?", address, domain.RewardReasonBonus, donationTxHash).
			Count(&prior).Error; err != nil {
			return err
		}
		if prior > 0 {
			return ErrBonusAlreadyAwarded
		}

		if e := CheckRewardEligibility(u.ImpactScore, d.AmountWei); !e.Eligible {
			return ErrBonusNotEligible
		}

		newBalance := u.RewardBalance.Add(domain.BonusTokens)
		err := tx.Model(&models.User{}).Where("address = ?", address).Updates(map[string]interface{}{
			"reward_balance": newBalance,
			"updated_at":     time.Now(),
		}).Error
		if err != nil {
			return err
		}

		hash := donationTxHash
		entry := models.RewardHistory{
			UserAddress: address,
			TokenAmount: domain.BonusTokens,
			Reason:      domain.RewardReasonBonus,
			TxHash:      &hash,
		}
		if err := tx.Create(&entry).Error; err != nil {
			return err
		}

		result = &DonationAward{
			TotalDonatedWei: u.TotalDonatedWei,
			ImpactScore:     u.ImpactScore,
			TokensAwarded:   domain.BonusTokens,
			RewardBalance:   newBalance,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("address", address).Str("tokens", result.TokensAwarded.String()).
		Str("tx_hash", donationTxHash).Msg("bonus awarded")
	return result, nil
}

// ImpactStats is the read-side view of a user's accrual state.
type ImpactStats struct {
	ImpactScore     decimal.Decimal `json:"impact_score"`
	TotalDonatedWei decimal.Decimal `json:"total_donated_wei"`
	TotalDonatedEth string          `json:"total_donated_eth"`
	ReferralCount   int             `json:"referral_count"`
	RewardBalance   decimal.Decimal `json:"reward_balance"`
	ReferralCode    *string         `json:"referral_code"`
	ReferredBy      *string         `json:"referred_by"`
}

// GetImpactStats returns a user's accrual state. Unknown identities get
// zero stats rather than an error, matching how the dashboard treats
// visitors who have not donated yet.
func (s *ImpactService) GetImpactStats(ctx context.Context, address string) (*ImpactStats, error) {
	var u models.User
	err := s.db.WithContext(ctx).Where("address = ?", address).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &ImpactStats{TotalDonatedEth: "0.000"}, nil
		}
		return nil, err
	}
	return &ImpactStats{
		ImpactScore:     u.ImpactScore,
		TotalDonatedWei: u.TotalDonatedWei,
		TotalDonatedEth: WeiToEthString(u.TotalDonatedWei),
		ReferralCount:   u.ReferralCount,
		RewardBalance:   u.RewardBalance,
		ReferralCode:    u.ReferralCode,
		ReferredBy:      u.ReferredBy,
	}, nil
}

// WeiToEthString renders a wei amount as ETH with 3 decimal places. Display
// only; stored amounts stay in wei.
func WeiToEthString(wei decimal.Decimal) string {
	return wei.Shift(-18).StringFixed(3)
}
