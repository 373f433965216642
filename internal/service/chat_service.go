package service

import (
	"fmt"
	"strings"

	"charitychain/internal/repository"
)

// ChatService is the FAQ assistant: keyword matching over a fixed answer
// table, plus two data-backed intents (top campaigns, platform impact).
type ChatService struct {
	campaigns *repository.CampaignRepository
}

func NewChatService(campaigns *repository.CampaignRepository) *ChatService {
	return &ChatService{campaigns: campaigns}
}

type faqEntry struct {
	keywords []string
	answer   string
}

var faqResponses = []faqEntry{
	{
		keywords: []string{"how do i donate", "make a donation", "donate now"},
		answer:   "Open any campaign, tap 'Donate Now', set your ETH amount, and confirm. We'll record the donation on-chain and email you a receipt immediately.",
	},
	{
		keywords: []string{"minimum donation", "least amount"},
		answer:   "We recommend at least 0.001 ETH so gas fees stay lower than your gift.",
	},
	{
		keywords: []string{"wallet", "metamask", "connect"},
		answer:   "Click Connect Wallet in the top right or from the donate drawer. We support MetaMask in the browser and will prompt you to approve the connection.",
	},
	{
		keywords: []string{"verified", "trust", "real charity"},
		answer:   "Each charity uploads registration docs and is manually reviewed before the campaign goes live. You can see the verified badge on campaigns that pass.",
	},
	{
		keywords: []string{"receipt", "history", "track donation"},
		answer:   "Every donation gets a blockchain transaction hash plus a downloadable receipt in your Donation History tab.",
	},
}

type ChatAnswer struct {
	Answer    string `json:"answer"`
	IsTrained bool   `json:"isTrained"`
	Strategy  string `json:"strategy,omitempty"`
}

func (s *ChatService) Answer(message string) (*ChatAnswer, error) {
	normalized := strings.ToLower(strings.TrimSpace(message))

	if strings.Contains(normalized, "top") && strings.Contains(normalized, "campaign") {
		answer, err := s.topCampaigns()
		if err != nil {
			return nil, err
		}
		return &ChatAnswer{Answer: answer, IsTrained: true, Strategy: "top_campaigns"}, nil
	}

	if strings.Contains(normalized, "stats") || strings.Contains(normalized, "impact") || strings.Contains(normalized, "transparent") {
		answer, err := s.platformImpact()
		if err != nil {
			return nil, err
		}
		return &ChatAnswer{Answer: answer, IsTrained: true, Strategy: "platform_impact"}, nil
	}

	for _, item := range faqResponses {
		for _, kw := range item.keywords {
			if strings.Contains(normalized, kw) {
				return &ChatAnswer{Answer: item.answer, IsTrained: true, Strategy: "faq"}, nil
			}
		}
	}

	stats, err := s.platformImpact()
	if err != nil {
		return nil, err
	}
	return &ChatAnswer{
		Answer: "I'm still learning, but here's something helpful: " + stats +
			` Ask me about donations, wallets, verification, or say "top campaigns" to discover where others are giving.`,
		IsTrained: false,
	}, nil
}

func (s *ChatService) topCampaigns() (string, error) {
	rows, err := s.campaigns.Top(3)
	if err != nil {
		return "", err
	}
	if len(rows) == 0 {
		return "We are still onboarding campaigns, so check back soon for featured causes.", nil
	}
	parts := make([]string, 0, len(rows))
	for _, row := range rows {
		parts = append(parts, fmt.Sprintf("%s (%s ETH raised • %d supporters)",
			row.Name, WeiToEthString(row.TotalWei), row.SupporterCount))
	}
	return fmt.Sprintf("Here are the campaigns the community is backing right now: %s. Pick one to see full details or donate instantly.",
		strings.Join(parts, "; ")), nil
}

func (s *ChatService) platformImpact() (string, error) {
	impact, err := s.campaigns.Impact()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("So far donors on CharityChain have contributed %s ETH across %d unique wallets. Every wei is traceable on-chain for full transparency.",
		WeiToEthString(impact.TotalWei), impact.Donors), nil
}
