package domain

import "github.com/shopspring/decimal"

const (
	DonationStatusSuccess = "Success"
	DonationStatusPending = "Pending"
	DonationStatusFailed  = "Failed"
)

const (
	PinStatusPinned   = "pinned"
	PinStatusUnpinned = "unpinned"
)

// Reward history reasons.
const (
	RewardReasonDonation = "donation"
	RewardReasonBonus    = "bonus"
)

// Impact score formula: score = ETH donated * DonationWeight + referrals * ReferralWeight.
// Every score point mints TokenRate CCT.
var (
	DonationWeight = decimal.NewFromInt(10)
	ReferralWeight = decimal.NewFromInt(5)
	TokenRate      = decimal.NewFromInt(10)
)

// Bonus eligibility: impact score above ImpactThreshold plus a single donation
// above DonationThresholdWei qualifies for a flat BonusTokens mint.
var (
	ImpactThreshold      = decimal.NewFromInt(100)
	DonationThresholdWei = decimal.New(5, 17) // 0.5 ETH in wei
	BonusTokens          = decimal.NewFromInt(50)
)

// Referral codes: 6 chars from a 32-char alphabet that excludes look-alike
// glyphs (0/O, 1/I/L). Uniqueness is enforced by the database, not the generator.
const (
	ReferralCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	ReferralCodeLength   = 6
	ReferralCodeAttempts = 10
)

const DefaultCampaignCategory = "General"
