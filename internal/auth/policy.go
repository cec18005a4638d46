package auth

import (
	"strings"

	"truthtracker/internal/ports"
)

// TokenPolicy authorizes principals against a fixed token list. It replaces
// a hard-coded admin list with an injected capability so request handlers
// and tests receive the policy rather than reaching for global state.
type TokenPolicy struct {
	tokens map[string]struct{}
}

var _ ports.AuthorizationPolicy = (*TokenPolicy)(nil)

// NewTokenPolicy builds a policy from the configured admin tokens.
func NewTokenPolicy(tokens []string) *TokenPolicy {
	set := make(map[string]struct{}, len(tokens))
	for _, token := range tokens {
		if token = strings.TrimSpace(token); token != "" {
			set[token] = struct{}{}
		}
	}
	return &TokenPolicy{tokens: set}
}

// IsAuthorized reports whether the principal carries a known admin token.
func (p *TokenPolicy) IsAuthorized(principal string) bool {
	if principal == "" {
		return false
	}
	_, ok := p.tokens[principal]
	return ok
}
