// Package origins decides which value the router sends back in Access-Control-Allow-Origin.
//
// A Policy is an allow-list of exact origins and domain suffixes. An allowed origin is echoed
// unchanged; anything else, including a missing Origin header, gets the wildcard. Values are
// compared byte for byte: no case folding, punycode conversion or trailing-slash handling.
package origins

import (
	"slices"
	"strings"
)

// Wildcard is returned for origins outside the allow-list.
const Wildcard = "*"

// Policy is an immutable origin allow-list. Build it once and share it between requests.
type Policy struct {
	// Exact origins, compared with ==, e.g. "https://mcpcentral.io".
	Exact []string `yaml:"exact" validate:"dive,required,url,startswith=http"`
	// Suffixes matched with strings.HasSuffix. Each starts with "." so only subdomains match.
	Suffixes []string `yaml:"suffixes" validate:"dive,required,domain_suffix"`
}

// DefaultPolicy returns the built-in allow-list.
func DefaultPolicy() *Policy {
	return &Policy{
		Exact: []string{
			"https://mcpcentral.io",
			"https://buildaipod.com",
			"https://demos.build",
		},
		Suffixes: []string{
			".mcpcentral.io",
			".buildaipod.com",
			".demos.build",
		},
	}
}

// AllowedOrigin returns origin when the policy allows it and Wildcard otherwise.
func (p *Policy) AllowedOrigin(origin string) string {
	if p.Allows(origin) {
		return origin
	}
	return Wildcard
}

// Allows reports whether origin is on the allow-list. The empty origin is never allowed.
func (p *Policy) Allows(origin string) bool {
	if origin == "" {
		return false
	}
	for _, suffix := range p.Suffixes {
		if strings.HasSuffix(origin, suffix) {
			return true
		}
	}
	return slices.Contains(p.Exact, origin)
}
