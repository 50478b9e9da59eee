package relay

import (
	"sort"
	"strings"
	"time"
)

// Alias domains as reported by the backend.
const (
	DomainRelayFirefox = 1
	DomainMozmail      = 2
)

// AliasKind tells generated aliases from custom ones.
type AliasKind string

const (
	AliasRandom AliasKind = "random"
	AliasCustom AliasKind = "custom"
)

// Alias is an email address that forwards to the user's real inbox.
type Alias struct {
	ID           int       `json:"id"`
	Address      string    `json:"address"`
	Domain       int       `json:"domain"`
	FullAddress  string    `json:"full_address,omitempty"`
	Kind         AliasKind `json:"mask_type,omitempty"`
	Enabled      bool      `json:"enabled"`
	Description  string    `json:"description"`
	GeneratedFor string    `json:"generated_for,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	NumForwarded int       `json:"num_forwarded"`
	NumBlocked   int       `json:"num_blocked"`
}

// Email returns the full address of the alias. Random aliases on the
// mozmail domain are completed with Profile.MozmailDomain.
func (a Alias) Email(p Profile) string {
	if a.FullAddress != "" {
		return a.FullAddress
	}
	switch a.Domain {
	case DomainRelayFirefox:
		return a.Address + "@relay.firefox.com"
	default:
		return a.Address + "@" + p.MozmailDomain
	}
}

// AliasStatus filters aliases by their forwarding state.
type AliasStatus int

const (
	AliasStatusAny AliasStatus = iota
	AliasStatusEnabled
	AliasStatusDisabled
)

// AliasFilter selects aliases. The zero value matches everything.
type AliasFilter struct {
	// Query matches case-insensitively against the address, the full
	// address, the description and the site the alias was generated for.
	Query  string
	Kind   AliasKind
	Status AliasStatus
}

// Match reports whether a satisfies the filter.
func (f AliasFilter) Match(a Alias) bool {
	if f.Kind != "" && a.Kind != f.Kind {
		return false
	}
	switch f.Status {
	case AliasStatusEnabled:
		if !a.Enabled {
			return false
		}
	case AliasStatusDisabled:
		if a.Enabled {
			return false
		}
	}
	q := strings.ToLower(strings.TrimSpace(f.Query))
	if q == "" {
		return true
	}
	for _, field := range []string{a.Address, a.FullAddress, a.Description, a.GeneratedFor} {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}

// FilterAliases returns the aliases matching f, in their original order.
func FilterAliases(aliases []Alias, f AliasFilter) []Alias {
	matched := make([]Alias, 0, len(aliases))
	for _, a := range aliases {
		if f.Match(a) {
			matched = append(matched, a)
		}
	}
	return matched
}

// AliasSort is an ordering of the alias list.
type AliasSort int

const (
	// SortNewest puts the most recently created aliases first.
	SortNewest AliasSort = iota
	SortOldest
	SortMostForwarded
	SortMostBlocked
)

// SortAliases sorts aliases in place. The sort is stable, so aliases that
// compare equal keep their relative order.
func SortAliases(aliases []Alias, order AliasSort) {
	var less func(a, b Alias) bool
	switch order {
	case SortOldest:
		less = func(a, b Alias) bool { return a.CreatedAt.Before(b.CreatedAt) }
	case SortMostForwarded:
		less = func(a, b Alias) bool { return a.NumForwarded > b.NumForwarded }
	case SortMostBlocked:
		less = func(a, b Alias) bool { return a.NumBlocked > b.NumBlocked }
	default:
		less = func(a, b Alias) bool { return a.CreatedAt.After(b.CreatedAt) }
	}
	sort.SliceStable(aliases, func(i, j int) bool {
		return less(aliases[i], aliases[j])
	})
}

// CanCreateFreeAlias reports whether a free user holding count aliases may
// create another one.
func CanCreateFreeAlias(p Profile, count int) bool {
	return count < p.MaxFreeAliases
}
