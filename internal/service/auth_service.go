package service

import (
	"context"
	"errors"
	"regexp"

	"charitychain/config"
	"charitychain/internal/auth"
	"charitychain/internal/identity"
	"charitychain/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrInvalidEmail  = errors.New("email must be a valid @gmail.com address")
	ErrWeakPassword  = errors.New("password must be at least 8 characters with upper, lower, and special characters")
	ErrInvalidCreds  = errors.New("invalid email or password")
	ErrNameRequired  = errors.New("name is required")
	ErrEmailConflict = errors.New("email already registered to another identity")
)

var (
	gmailRe   = regexp.MustCompile(`^[a-zA-Z0-9](?:[a-zA-Z0-9._%+-]{0,62}[a-zA-Z0-9])?@gmail\.com$`)
	upperRe   = regexp.MustCompile(`[A-Z]`)
	lowerRe   = regexp.MustCompile(`[a-z]`)
	specialRe = regexp.MustCompile(`[^A-Za-z0-9]`)
)

// AuthService registers and authenticates users. The rest of the system
// only ever sees the resolved identity key; everything here is boundary
// plumbing around it.
type AuthService struct {
	cfg       *config.Config
	db        *gorm.DB
	referrals *ReferralService
}

func NewAuthService(cfg *config.Config, db *gorm.DB, referrals *ReferralService) *AuthService {
	return &AuthService{cfg: cfg, db: db, referrals: referrals}
}

type RegisterInput struct {
	Address      string `json:"address"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	Password     string `json:"password"`
	ReferralCode string `json:"referral_code"`
}

func validPassword(p string) bool {
	return len(p) >= 8 && upperRe.MatchString(p) && lowerRe.MatchString(p) && specialRe.MatchString(p)
}

// Register creates (or refreshes) the user row keyed by the resolved
// identity. When a referral code is supplied the bind runs in the same
// transaction, so an invalid code fails the whole registration.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, string, string, error) {
	if in.Name == "" {
		return nil, "", "", ErrNameRequired
	}
	if !gmailRe.MatchString(identity.Normalize(in.Email)) {
		return nil, "", "", ErrInvalidEmail
	}
	if !validPassword(in.Password) {
		return nil, "", "", ErrWeakPassword
	}

	key, err := identity.Resolve(in.Address, in.Email)
	if err != nil {
		return nil, "", "", err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", "", err
	}

	u := &models.User{
		Address:      key,
		Name:         in.Name,
		Email:        identity.Normalize(in.Email),
		PasswordHash: string(hash),
	}
	if in.Phone != "" {
		phone := in.Phone
		u.Phone = &phone
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "address"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "email", "phone", "password_hash", "updated_at"}),
		}).Create(u).Error
		if err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrEmailConflict
			}
			return err
		}
		if in.ReferralCode != "" {
			if _, err := s.referrals.BindReferralTx(tx, key, in.ReferralCode); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, "", "", err
	}

	if err := s.db.WithContext(ctx).Where("address = ?", key).First(u).Error; err != nil {
		return nil, "", "", err
	}
	access, err := auth.GenerateAccessToken(&s.cfg.JWT, u.Address, u.Email)
	if err != nil {
		return u, "", "", err
	}
	refresh, err := auth.GenerateRefreshToken(&s.cfg.JWT, u.Address)
	if err != nil {
		return u, access, "", err
	}
	return u, access, refresh, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, string, string, error) {
	var u models.User
	err := s.db.WithContext(ctx).Where("email = ?", identity.Normalize(email)).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", "", ErrInvalidCreds
		}
		return nil, "", "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, "", "", ErrInvalidCreds
	}
	access, _ := auth.GenerateAccessToken(&s.cfg.JWT, u.Address, u.Email)
	refresh, _ := auth.GenerateRefreshToken(&s.cfg.JWT, u.Address)
	return &u, access, refresh, nil
}
