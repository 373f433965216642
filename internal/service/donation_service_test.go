package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"charitychain/internal/domain"
	"charitychain/internal/models"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

func testTxHash(n int) string {
	return fmt.Sprintf("0x%064x", n)
}

func TestRecordDonation(t *testing.T) {
	db := setupTestDB(t)
	impact := NewImpactService(db, zerolog.Nop())
	svc := NewDonationService(db, impact, zerolog.Nop())
	createTestUser(t, db, "0xd0n1", "don1@gmail.com")

	result, err := svc.Record(context.Background(), DonationInput{
		TxHash:       testTxHash(1),
		DonorAddress: "0xD0N1", // mixed case normalizes to the stored key
		CampaignID:   "camp-1",
		AmountWei:    eth("1"),
		CID:          "bafyreceipt1",
		SizeBytes:    1024,
		GatewayURL:   "https://ipfs.io/ipfs/bafyreceipt1",
	})
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if result.Donation.Status != domain.DonationStatusSuccess {
		t.Fatalf("status = %q, want Success", result.Donation.Status)
	}
	if !result.Award.ImpactScore.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("score = %s, want 10", result.Award.ImpactScore)
	}
	if !result.Award.TokensAwarded.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("tokens = %s, want 100", result.Award.TokensAwarded)
	}
	if result.Bonus.Eligible {
		t.Fatalf("bonus should be advisory-ineligible at score 10")
	}

	var d models.Donation
	if err := db.Where("tx_hash = ?", testTxHash(1)).First(&d).Error; err != nil {
		t.Fatalf("load donation: %v", err)
	}
	if d.DonorAddress != "0xd0n1" {
		t.Fatalf("donor = %q, want normalized 0xd0n1", d.DonorAddress)
	}

	var r models.Receipt
	if err := db.Where("cid = ?", "bafyreceipt1").First(&r).Error; err != nil {
		t.Fatalf("load receipt: %v", err)
	}
	if r.PinStatus != domain.PinStatusPinned {
		t.Fatalf("pin status = %q, want pinned", r.PinStatus)
	}

	// The donation row links the receipt through the same cid column.
	var linked models.Donation
	if err := db.Where("cid = ?", "bafyreceipt1").First(&linked).Error; err != nil {
		t.Fatalf("load donation by cid: %v", err)
	}
	if linked.TxHash != testTxHash(1) {
		t.Fatalf("donation by cid = %q, want %q", linked.TxHash, testTxHash(1))
	}
}

func TestRecordDonationDuplicateHash(t *testing.T) {
	db := setupTestDB(t)
	impact := NewImpactService(db, zerolog.Nop())
	svc := NewDonationService(db, impact, zerolog.Nop())
	createTestUser(t, db, "0xd0n2", "don2@gmail.com")

	in := DonationInput{
		TxHash:       testTxHash(2),
		DonorAddress: "0xd0n2",
		CampaignID:   "camp-1",
		AmountWei:    eth("1"),
		CID:          "bafyreceipt2",
	}
	if _, err := svc.Record(context.Background(), in); err != nil {
		t.Fatalf("first record: %v", err)
	}
	if _, err := svc.Record(context.Background(), in); !errors.Is(err, ErrDuplicateDonation) {
		t.Fatalf("second record: got %v, want ErrDuplicateDonation", err)
	}

	// The retry must not have re-credited anything.
	var u models.User
	if err := db.Where("address = ?", "0xd0n2").First(&u).Error; err != nil {
		t.Fatalf("reload user: %v", err)
	}
	if !u.TotalDonatedWei.Equal(eth("1")) {
		t.Fatalf("total = %s after duplicate, want 1 ETH", u.TotalDonatedWei)
	}
	if !u.RewardBalance.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("balance = %s after duplicate, want 100", u.RewardBalance)
	}
	var count int64
	db.Model(&models.Donation{}).Where("donor_address = ?", "0xd0n2").Count(&count)
	if count != 1 {
		t.Fatalf("donation rows = %d, want 1", count)
	}
}

func TestRecordDonationReceiptIdempotent(t *testing.T) {
	db := setupTestDB(t)
	impact := NewImpactService(db, zerolog.Nop())
	svc := NewDonationService(db, impact, zerolog.Nop())
	createTestUser(t, db, "0xd0n3", "don3@gmail.com")

	for i := 10; i < 12; i++ {
		_, err := svc.Record(context.Background(), DonationInput{
			TxHash:       testTxHash(i),
			DonorAddress: "0xd0n3",
			AmountWei:    eth("0.5"),
			CID:          "bafyshared",
		})
		if err != nil {
			t.Fatalf("record %d: %v", i, err)
		}
	}
	var count int64
	db.Model(&models.Receipt{}).Where("cid = ?", "bafyshared").Count(&count)
	if count != 1 {
		t.Fatalf("receipt rows = %d, want 1", count)
	}
}

func TestRecordDonationRollsBackAsAUnit(t *testing.T) {
	db := setupTestDB(t)
	impact := NewImpactService(db, zerolog.Nop())
	svc := NewDonationService(db, impact, zerolog.Nop())

	// Unknown donor: the impact step fails, and neither the donation nor the
	// receipt survives the rollback.
	_, err := svc.Record(context.Background(), DonationInput{
		TxHash:       testTxHash(20),
		DonorAddress: "0xunknown",
		AmountWei:    eth("1"),
		CID:          "bafyorphan",
	})
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("got %v, want ErrUserNotFound", err)
	}

	var donations, receipts int64
	db.Model(&models.Donation{}).Count(&donations)
	db.Model(&models.Receipt{}).Count(&receipts)
	if donations != 0 || receipts != 0 {
		t.Fatalf("partial state survived rollback: %d donations, %d receipts", donations, receipts)
	}
}

func TestRecordDonationValidatesInput(t *testing.T) {
	db := setupTestDB(t)
	impact := NewImpactService(db, zerolog.Nop())
	svc := NewDonationService(db, impact, zerolog.Nop())
	createTestUser(t, db, "0xd0n4", "don4@gmail.com")

	if _, err := svc.Record(context.Background(), DonationInput{
		TxHash: "not-a-hash", DonorAddress: "0xd0n4", AmountWei: eth("1"),
	}); !errors.Is(err, ErrInvalidTxHash) {
		t.Fatalf("bad hash: got %v, want ErrInvalidTxHash", err)
	}
	if _, err := svc.Record(context.Background(), DonationInput{
		TxHash: testTxHash(30), DonorAddress: "0xd0n4", AmountWei: decimal.Zero,
	}); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("zero amount: got %v, want ErrInvalidAmount", err)
	}
}

func TestConcurrentDonationsSerialize(t *testing.T) {
	db := setupTestDB(t)
	impact := NewImpactService(db, zerolog.Nop())
	svc := NewDonationService(db, impact, zerolog.Nop())
	createTestUser(t, db, "0xd0n5", "don5@gmail.com")

	const n = 8
	amount := eth("1")

	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Record(context.Background(), DonationInput{
				TxHash:       testTxHash(100 + i),
				DonorAddress: "0xd0n5",
				CampaignID:   "camp-1",
				AmountWei:    amount,
				CID:          fmt.Sprintf("bafyconc%d", i),
			})
		}(i)
	}
	wg.Wait()
	for i, err := range errs {
		if err != nil {
			t.Fatalf("donation %d: %v", i, err)
		}
	}

	// Oracle: serial application of n donations of 1 ETH each.
	var u models.User
	if err := db.Where("address = ?", "0xd0n5").First(&u).Error; err != nil {
		t.Fatalf("reload user: %v", err)
	}
	if !u.TotalDonatedWei.Equal(amount.Mul(decimal.NewFromInt(n))) {
		t.Fatalf("total = %s, want %d ETH (lost update)", u.TotalDonatedWei, n)
	}
	if !u.ImpactScore.Equal(decimal.NewFromInt(n * 10)) {
		t.Fatalf("score = %s, want %d", u.ImpactScore, n*10)
	}
	if !u.RewardBalance.Equal(decimal.NewFromInt(n * 100)) {
		t.Fatalf("balance = %s, want %d (double award or undercount)", u.RewardBalance, n*100)
	}

	var history int64
	db.Model(&models.RewardHistory{}).Where("user_address = ?", "0xd0n5").Count(&history)
	if history != n {
		t.Fatalf("history rows = %d, want %d", history, n)
	}
}
