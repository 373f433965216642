package service

import (
	"context"
	"crypto/rand"
	"errors"
	"strings"
	"time"

	"charitychain/internal/domain"
	"charitychain/internal/models"
	"charitychain/internal/repository"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrInvalidReferralCode   = errors.New("invalid referral code")
	ErrAlreadyReferred       = errors.New("user already has a referrer")
	ErrSelfReferral          = errors.New("cannot refer yourself")
	ErrCodeGenerationExhaust = errors.New("failed to generate a unique referral code after retries")
)

// ReferralService issues referral codes and binds referrer/referee
// relationships. A user gets exactly one immutable code and can be referred
// at most once.
type ReferralService struct {
	db   *gorm.DB
	logs *repository.ReferralRepository
	log  zerolog.Logger
}

func NewReferralService(db *gorm.DB, log zerolog.Logger) *ReferralService {
	return &ReferralService{
		db:   db,
		logs: repository.NewReferralRepository(db),
		log:  log.With().Str("component", "referral").Logger(),
	}
}

// generateReferralCode draws 6 characters from the 32-char alphabet. The
// alphabet length divides 256, so the byte mapping is unbiased.
func generateReferralCode() (string, error) {
	b := make([]byte, domain.ReferralCodeLength)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	code := make([]byte, domain.ReferralCodeLength)
	for i, v := range b {
		code[i] = domain.ReferralCodeAlphabet[int(v)%len(domain.ReferralCodeAlphabet)]
	}
	return string(code), nil
}

// GetOrCreateCode returns the user's referral code, assigning one on first
// use. Uniqueness is enforced by the database: candidate codes that collide
// are retried up to the attempt bound.
func (s *ReferralService) GetOrCreateCode(ctx context.Context, address string) (string, error) {
	db := s.db.WithContext(ctx)

	var u models.User
	if err := db.Where("address = ?", address).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrUserNotFound
		}
		return "", err
	}
	if u.ReferralCode != nil && *u.ReferralCode != "" {
		return *u.ReferralCode, nil
	}

	for i := 0; i < domain.ReferralCodeAttempts; i++ {
		code, err := generateReferralCode()
		if err != nil {
			return "", err
		}
		res := db.Model(&models.User{}).
			Where("address = ? AND referral_code IS NULL", address).
			Update("referral_code", code)
		if res.Error != nil {
			if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
				continue // collision, try another code
			}
			return "", res.Error
		}
		if res.RowsAffected == 0 {
			// A concurrent request won the assignment; use its code.
			if err := db.Where("address = ?", address).First(&u).Error; err != nil {
				return "", err
			}
			if u.ReferralCode != nil {
				return *u.ReferralCode, nil
			}
			continue
		}
		return code, nil
	}
	return "", ErrCodeGenerationExhaust
}

// BindReferral links a new user to the owner of the given referral code.
// Binding is one-shot: referred_by is never overwritten, and self-referral
// is rejected regardless of identity casing. The referred_by update, the
// referrer's counter increment and the log row commit as one unit.
func (s *ReferralService) BindReferral(ctx context.Context, refereeAddress, code string) (string, error) {
	var referrer string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		referrer, err = s.BindReferralTx(tx, refereeAddress, code)
		return err
	})
	if err != nil {
		return "", err
	}
	s.log.Info().Str("referrer", referrer).Str("referee", refereeAddress).Msg("referral linked")
	return referrer, nil
}

// BindReferralTx is the in-transaction form, used directly by registration
// so the bind commits or rolls back with the new user row.
func (s *ReferralService) BindReferralTx(tx *gorm.DB, refereeAddress, code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return "", ErrInvalidReferralCode
	}

	var referrer models.User
	if err := tx.Where("referral_code = ?", code).First(&referrer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrInvalidReferralCode
		}
		return "", err
	}

	var referee models.User
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("address = ?", refereeAddress).First(&referee).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrUserNotFound
		}
		return "", err
	}
	if referee.ReferredBy != nil && *referee.ReferredBy != "" {
		return "", ErrAlreadyReferred
	}
	if strings.EqualFold(referrer.Address, referee.Address) {
		return "", ErrSelfReferral
	}

	err := tx.Model(&models.User{}).Where("address = ?", refereeAddress).Updates(map[string]interface{}{
		"referred_by": referrer.Address,
		"updated_at":  time.Now(),
	}).Error
	if err != nil {
		return "", err
	}
	err = tx.Model(&models.User{}).Where("address = ?", referrer.Address).
		UpdateColumn("referral_count", gorm.Expr("referral_count + 1")).Error
	if err != nil {
		return "", err
	}
	entry := models.Referral{ReferrerAddress: referrer.Address, RefereeAddress: referee.Address}
	if err := tx.Create(&entry).Error; err != nil {
		return "", err
	}
	return referrer.Address, nil
}

// ReferralStats is the read-side referral view. Count and the referred list
// come from the append-only log rather than the cached counter.
type ReferralStats struct {
	ReferralCode  *string           `json:"referral_code"`
	ReferredBy    *string           `json:"referred_by"`
	ReferralCount int64             `json:"referral_count"`
	Referred      []models.Referral `json:"referred"`
}

func (s *ReferralService) GetReferralStats(ctx context.Context, address string) (*ReferralStats, error) {
	var u models.User
	if err := s.db.WithContext(ctx).Where("address = ?", address).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &ReferralStats{Referred: []models.Referral{}}, nil
		}
		return nil, err
	}
	count, err := s.logs.CountByReferrer(u.Address)
	if err != nil {
		return nil, err
	}
	referred, err := s.logs.ListByReferrer(u.Address, 50, 0)
	if err != nil {
		return nil, err
	}
	return &ReferralStats{
		ReferralCode:  u.ReferralCode,
		ReferredBy:    u.ReferredBy,
		ReferralCount: count,
		Referred:      referred,
	}, nil
}
