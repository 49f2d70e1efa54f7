// Package identity resolves externally-reported participant names to internal
// accounts.
package identity

import (
	"strings"

	"datasprint/leaderboard/internal/models"
)

// Matcher resolves external display names against a fixed account population.
// Build one per matching pass; matches are point-in-time snapshots, never
// re-resolved later.
//
// The external system's displayed name frequently differs from the account's
// canonical username (casing, spacing, or an alias entirely), so resolution
// falls back through progressively fuzzier lookups. Display name is tried
// before username, exact before normalized, to keep false positives from
// coincidental collisions to a minimum.
type Matcher struct {
	displayExact  map[string]int
	usernameExact map[string]int
	displayNorm   map[string]int
	usernameNorm  map[string]int
}

// NewMatcher builds the four lookup structures from the account population.
// When two accounts collide on a key, the lowest account ID wins; accounts are
// assigned IDs in registration order, so this is the first-registered account.
func NewMatcher(accounts []models.Account) *Matcher {
	m := &Matcher{
		displayExact:  make(map[string]int, len(accounts)),
		usernameExact: make(map[string]int, len(accounts)),
		displayNorm:   make(map[string]int, len(accounts)),
		usernameNorm:  make(map[string]int, len(accounts)),
	}

	put := func(lookup map[string]int, key string, id int) {
		if key == "" {
			return
		}
		if existing, ok := lookup[key]; ok && existing <= id {
			return
		}
		lookup[key] = id
	}

	for _, account := range accounts {
		if account.ExternalDisplayName.Valid {
			display := strings.ToLower(account.ExternalDisplayName.String)
			put(m.displayExact, display, account.ID)
			put(m.displayNorm, normalizeKey(display), account.ID)
		}

		username := strings.ToLower(account.ExternalUsername)
		put(m.usernameExact, username, account.ID)
		put(m.usernameNorm, normalizeKey(username), account.ID)
	}

	return m
}

// Resolve maps an external display name to an account ID, trying exact
// display name, exact username, normalized display name, then normalized
// username. The first hit wins.
func (m *Matcher) Resolve(name string) (int, bool) {
	lower := strings.ToLower(name)
	if lower == "" {
		return 0, false
	}

	if id, ok := m.displayExact[lower]; ok {
		return id, true
	}
	if id, ok := m.usernameExact[lower]; ok {
		return id, true
	}

	norm := normalizeKey(lower)
	if norm == "" {
		return 0, false
	}
	if id, ok := m.displayNorm[norm]; ok {
		return id, true
	}
	if id, ok := m.usernameNorm[norm]; ok {
		return id, true
	}

	return 0, false
}

// normalizeKey strips whitespace, hyphens, and underscores from an already
// lower-cased key.
func normalizeKey(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\n', '\r', '-', '_':
			return -1
		}
		return r
	}, s)
}
