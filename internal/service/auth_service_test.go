package service

import (
	"context"
	"testing"

	"charitychain/config"
	"charitychain/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestRegister(t *testing.T) {
	db := setupTestDB(t)
	cfg := config.Load()
	referrals := NewReferralService(db, zerolog.Nop())
	svc := NewAuthService(cfg, db, referrals)

	u, access, refresh, err := svc.Register(context.Background(), RegisterInput{
		Address:  "0x52908400098527886E0F7030069857D2E4169EE7",
		Name:     "Alice",
		Email:    "Alice.Donor@gmail.com",
		Password: "Str0ng!pass",
	})
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.NotEmpty(t, access)
	assert.NotEmpty(t, refresh)

	// Identity and email normalize to lowercase.
	assert.Equal(t, "0x52908400098527886e0f7030069857d2e4169ee7", u.Address)
	assert.Equal(t, "alice.donor@gmail.com", u.Email)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("Str0ng!pass")))
}

func TestRegisterWithoutWalletUsesEmailKey(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAuthService(config.Load(), db, NewReferralService(db, zerolog.Nop()))

	u, _, _, err := svc.Register(context.Background(), RegisterInput{
		Name:     "Bob",
		Email:    "bob.donor@gmail.com",
		Password: "Str0ng!pass",
	})
	require.NoError(t, err)
	assert.Equal(t, "bob.donor@gmail.com", u.Address)
}

func TestRegisterValidation(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAuthService(config.Load(), db, NewReferralService(db, zerolog.Nop()))

	_, _, _, err := svc.Register(context.Background(), RegisterInput{
		Name: "Eve", Email: "eve@example.com", Password: "Str0ng!pass",
	})
	assert.ErrorIs(t, err, ErrInvalidEmail)

	_, _, _, err = svc.Register(context.Background(), RegisterInput{
		Name: "Eve", Email: "eve@gmail.com", Password: "weak",
	})
	assert.ErrorIs(t, err, ErrWeakPassword)

	_, _, _, err = svc.Register(context.Background(), RegisterInput{
		Email: "eve@gmail.com", Password: "Str0ng!pass",
	})
	assert.ErrorIs(t, err, ErrNameRequired)
}

func TestRegisterBindsReferralAtomically(t *testing.T) {
	db := setupTestDB(t)
	referrals := NewReferralService(db, zerolog.Nop())
	svc := NewAuthService(config.Load(), db, referrals)
	createTestUser(t, db, "0xmentor", "mentor@gmail.com")
	code, err := referrals.GetOrCreateCode(context.Background(), "0xmentor")
	require.NoError(t, err)

	u, _, _, err := svc.Register(context.Background(), RegisterInput{
		Name:         "Carol",
		Email:        "carol.donor@gmail.com",
		Password:     "Str0ng!pass",
		ReferralCode: code,
	})
	require.NoError(t, err)
	require.NotNil(t, u.ReferredBy)
	assert.Equal(t, "0xmentor", *u.ReferredBy)

	var mentor models.User
	require.NoError(t, db.Where("address = ?", "0xmentor").First(&mentor).Error)
	assert.Equal(t, 1, mentor.ReferralCount)
}

func TestRegisterInvalidReferralRollsBack(t *testing.T) {
	db := setupTestDB(t)
	referrals := NewReferralService(db, zerolog.Nop())
	svc := NewAuthService(config.Load(), db, referrals)

	_, _, _, err := svc.Register(context.Background(), RegisterInput{
		Name:         "Dave",
		Email:        "dave.donor@gmail.com",
		Password:     "Str0ng!pass",
		ReferralCode: "BADCOD",
	})
	assert.ErrorIs(t, err, ErrInvalidReferralCode)

	// The user row must not have been finalized.
	var count int64
	db.Model(&models.User{}).Where("email = ?", "dave.donor@gmail.com").Count(&count)
	assert.Zero(t, count)
}

func TestLogin(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAuthService(config.Load(), db, NewReferralService(db, zerolog.Nop()))

	_, _, _, err := svc.Register(context.Background(), RegisterInput{
		Name: "Frank", Email: "frank.donor@gmail.com", Password: "Str0ng!pass",
	})
	require.NoError(t, err)

	u, access, _, err := svc.Login(context.Background(), "Frank.Donor@gmail.com", "Str0ng!pass")
	require.NoError(t, err)
	assert.Equal(t, "frank.donor@gmail.com", u.Email)
	assert.NotEmpty(t, access)

	_, _, _, err = svc.Login(context.Background(), "frank.donor@gmail.com", "wrong-pass")
	assert.ErrorIs(t, err, ErrInvalidCreds)

	_, _, _, err = svc.Login(context.Background(), "nobody@gmail.com", "Str0ng!pass")
	assert.ErrorIs(t, err, ErrInvalidCreds)
}
