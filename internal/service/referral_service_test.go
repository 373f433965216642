package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"charitychain/internal/domain"
	"charitychain/internal/models"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

func TestGenerateReferralCode(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		code, err := generateReferralCode()
		if err != nil {
			t.Fatalf("generate: %v", err)
		}
		if len(code) != domain.ReferralCodeLength {
			t.Fatalf("code %q length = %d, want %d", code, len(code), domain.ReferralCodeLength)
		}
		for _, ch := range code {
			if !strings.ContainsRune(domain.ReferralCodeAlphabet, ch) {
				t.Fatalf("code %q contains %q outside the alphabet", code, ch)
			}
		}
		seen[code] = true
	}
	// Not a uniqueness guarantee, but 100 draws from a 1e9 space colliding
	// down to a handful of values would mean a broken generator.
	if len(seen) < 90 {
		t.Fatalf("only %d distinct codes in 100 draws", len(seen))
	}
}

func TestGetOrCreateCode(t *testing.T) {
	db := setupTestDB(t)
	svc := NewReferralService(db, zerolog.Nop())
	createTestUser(t, db, "0xref1", "ref1@gmail.com")

	code, err := svc.GetOrCreateCode(context.Background(), "0xref1")
	if err != nil {
		t.Fatalf("get or create: %v", err)
	}
	if len(code) != domain.ReferralCodeLength {
		t.Fatalf("code %q has wrong length", code)
	}

	// Codes are immutable once assigned.
	again, err := svc.GetOrCreateCode(context.Background(), "0xref1")
	if err != nil {
		t.Fatalf("second get: %v", err)
	}
	if again != code {
		t.Fatalf("code changed from %q to %q", code, again)
	}

	if _, err := svc.GetOrCreateCode(context.Background(), "0xmissing"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("unknown user: got %v, want ErrUserNotFound", err)
	}
}

func TestBindReferral(t *testing.T) {
	db := setupTestDB(t)
	svc := NewReferralService(db, zerolog.Nop())
	createTestUser(t, db, "0xref2", "ref2@gmail.com")
	createTestUser(t, db, "0xref3", "ref3@gmail.com")

	code, err := svc.GetOrCreateCode(context.Background(), "0xref2")
	if err != nil {
		t.Fatalf("create code: %v", err)
	}

	// Lookup is case-insensitive on the code.
	referrer, err := svc.BindReferral(context.Background(), "0xref3", strings.ToLower(code))
	if err != nil {
		t.Fatalf("bind: %v", err)
	}
	if referrer != "0xref2" {
		t.Fatalf("referrer = %q, want 0xref2", referrer)
	}

	var referee models.User
	if err := db.Where("address = ?", "0xref3").First(&referee).Error; err != nil {
		t.Fatalf("reload referee: %v", err)
	}
	if referee.ReferredBy == nil || *referee.ReferredBy != "0xref2" {
		t.Fatalf("referred_by not set")
	}

	var referrerRow models.User
	if err := db.Where("address = ?", "0xref2").First(&referrerRow).Error; err != nil {
		t.Fatalf("reload referrer: %v", err)
	}
	if referrerRow.ReferralCount != 1 {
		t.Fatalf("referral_count = %d, want 1", referrerRow.ReferralCount)
	}

	var logs []models.Referral
	if err := db.Where("referrer_address = ?", "0xref2").Find(&logs).Error; err != nil {
		t.Fatalf("load log: %v", err)
	}
	if len(logs) != 1 || logs[0].RefereeAddress != "0xref3" {
		t.Fatalf("referral log rows = %+v, want one 0xref2 -> 0xref3 row", logs)
	}
}

func TestBindReferralOneShot(t *testing.T) {
	db := setupTestDB(t)
	svc := NewReferralService(db, zerolog.Nop())
	createTestUser(t, db, "0xref4", "ref4@gmail.com")
	createTestUser(t, db, "0xref5", "ref5@gmail.com")
	createTestUser(t, db, "0xref6", "ref6@gmail.com")

	code4, _ := svc.GetOrCreateCode(context.Background(), "0xref4")
	code5, _ := svc.GetOrCreateCode(context.Background(), "0xref5")

	if _, err := svc.BindReferral(context.Background(), "0xref6", code4); err != nil {
		t.Fatalf("first bind: %v", err)
	}
	// A second bind always fails, even with a different valid code.
	if _, err := svc.BindReferral(context.Background(), "0xref6", code5); !errors.Is(err, ErrAlreadyReferred) {
		t.Fatalf("second bind: got %v, want ErrAlreadyReferred", err)
	}

	var referrer models.User
	if err := db.Where("address = ?", "0xref4").First(&referrer).Error; err != nil {
		t.Fatalf("reload referrer: %v", err)
	}
	if referrer.ReferralCount != 1 {
		t.Fatalf("referral_count = %d after failed rebind, want 1", referrer.ReferralCount)
	}
}

func TestBindReferralRejectsSelfAndBadCodes(t *testing.T) {
	db := setupTestDB(t)
	svc := NewReferralService(db, zerolog.Nop())
	createTestUser(t, db, "0xref7", "ref7@gmail.com")
	createTestUser(t, db, "0xref8", "ref8@gmail.com")

	code, _ := svc.GetOrCreateCode(context.Background(), "0xref7")

	if _, err := svc.BindReferral(context.Background(), "0xref7", code); !errors.Is(err, ErrSelfReferral) {
		t.Fatalf("self referral: got %v, want ErrSelfReferral", err)
	}
	if _, err := svc.BindReferral(context.Background(), "0xref8", "NOPE99"); !errors.Is(err, ErrInvalidReferralCode) {
		t.Fatalf("bad code: got %v, want ErrInvalidReferralCode", err)
	}
	if _, err := svc.BindReferral(context.Background(), "0xref8", ""); !errors.Is(err, ErrInvalidReferralCode) {
		t.Fatalf("empty code: got %v, want ErrInvalidReferralCode", err)
	}
	if _, err := svc.BindReferral(context.Background(), "0xmissing", code); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("unknown referee: got %v, want ErrUserNotFound", err)
	}
}

func TestBindReferralSelfCheckIgnoresCase(t *testing.T) {
	db := setupTestDB(t)
	svc := NewReferralService(db, zerolog.Nop())
	// Two rows for the same wallet in different casings, as can happen when
	// an un-normalized writer slipped a row in.
	createTestUser(t, db, "0xABCDEF", "upper@gmail.com")
	createTestUser(t, db, "0xabcdef", "lower@gmail.com")

	code, err := svc.GetOrCreateCode(context.Background(), "0xABCDEF")
	if err != nil {
		t.Fatalf("create code: %v", err)
	}
	if _, err := svc.BindReferral(context.Background(), "0xabcdef", code); !errors.Is(err, ErrSelfReferral) {
		t.Fatalf("got %v, want ErrSelfReferral for case-variant self bind", err)
	}
}

func TestGetReferralStats(t *testing.T) {
	db := setupTestDB(t)
	svc := NewReferralService(db, zerolog.Nop())
	createTestUser(t, db, "0xref9", "ref9@gmail.com")
	createTestUser(t, db, "0xrefa", "refa@gmail.com")

	code, _ := svc.GetOrCreateCode(context.Background(), "0xref9")
	if _, err := svc.BindReferral(context.Background(), "0xrefa", code); err != nil {
		t.Fatalf("bind: %v", err)
	}

	stats, err := svc.GetReferralStats(context.Background(), "0xref9")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.ReferralCode == nil || *stats.ReferralCode != code {
		t.Fatalf("stats code = %v, want %q", stats.ReferralCode, code)
	}
	if stats.ReferralCount != 1 {
		t.Fatalf("stats count = %d, want 1", stats.ReferralCount)
	}
	if len(stats.Referred) != 1 || stats.Referred[0].RefereeAddress != "0xrefa" {
		t.Fatalf("referred list = %+v, want one 0xrefa entry", stats.Referred)
	}

	refStats, err := svc.GetReferralStats(context.Background(), "0xrefa")
	if err != nil {
		t.Fatalf("referee stats: %v", err)
	}
	if refStats.ReferredBy == nil || *refStats.ReferredBy != "0xref9" {
		t.Fatalf("referee referred_by = %v, want 0xref9", refStats.ReferredBy)
	}
}

func TestReferralFeedsImpactScore(t *testing.T) {
	db := setupTestDB(t)
	referrals := NewReferralService(db, zerolog.Nop())
	impact := NewImpactService(db, zerolog.Nop())
	createTestUser(t, db, "0xrefb", "refb@gmail.com")
	createTestUser(t, db, "0xrefc", "refc@gmail.com")

	code, _ := referrals.GetOrCreateCode(context.Background(), "0xrefb")
	if _, err := referrals.BindReferral(context.Background(), "0xrefc", code); err != nil {
		t.Fatalf("bind: %v", err)
	}

	// The referral feeds the next recomputation: 1 ETH + 1 referral = 15.
	award, err := impact.ApplyDonation(context.Background(), "0xrefb", eth("1"), "0xrh")
	if err != nil {
		t.Fatalf("apply donation: %v", err)
	}
	if !award.ImpactScore.Equal(decimal.NewFromInt(15)) {
		t.Fatalf("score = %s, want 15", award.ImpactScore)
	}
}
