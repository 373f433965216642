// Package ipfs formats gateway URLs for content-addressed artifacts. The
// backend never talks to IPFS itself; receipts and images arrive already
// pinned and only need a browsable URL.
package ipfs

import "strings"

type Resolver struct {
	gateway      string
	defaultImage string
}

func NewResolver(gateway, defaultImage string) *Resolver {
	if !strings.HasSuffix(gateway, "/") {
		gateway += "/"
	}
	return &Resolver{gateway: gateway, defaultImage: defaultImage}
}

// ResolveURL turns a stored image reference into a browsable URL: http(s)
// URLs pass through, CIDs (with or without an ipfs:// prefix) are appended
// to the gateway, and empty values fall back to the default image.
func (r *Resolver) ResolveURL(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return r.defaultImage
	}
	if strings.HasPrefix(trimmed, "http://") || strings.HasPrefix(trimmed, "https://") {
		return trimmed
	}
	cid := trimmed
	if len(cid) >= 7 && strings.EqualFold(cid[:7], "ipfs://") {
		cid = cid[7:]
	}
	return r.gateway + cid
}
