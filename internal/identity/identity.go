// Package identity resolves the single ledger key used for every user lookup.
// A user is keyed by their wallet address when they have one, otherwise by
// lowercased email. All core components consume the normalized key; nothing
// downstream re-derives it.
package identity

import (
	"errors"
	"regexp"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

var (
	ErrMissingIdentity = errors.New("identity: address or email required")
	ErrInvalidAddress  = errors.New("identity: malformed wallet address")
)

var txHashRe = regexp.MustCompile(`^0x[0-9a-fA-F]{64}$`)

// Resolve returns the ledger key for an address/email pair. A non-empty
// address wins and must be a valid hex address; otherwise the email is used.
// Both forms are lowercased so downstream comparisons are plain equality.
func Resolve(address, email string) (string, error) {
	if addr := strings.TrimSpace(address); addr != "" {
		if !common.IsHexAddress(addr) {
			return "", ErrInvalidAddress
		}
		return strings.ToLower(addr), nil
	}
	if email := strings.TrimSpace(email); email != "" {
		return strings.ToLower(email), nil
	}
	return "", ErrMissingIdentity
}

// Normalize lowercases a key supplied on the wire (path params, JSON fields)
// so it matches stored identities.
func Normalize(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}

// ValidTxHash reports whether s looks like a 32-byte transaction hash.
func ValidTxHash(s string) bool {
	return txHashRe.MatchString(strings.TrimSpace(s))
}
