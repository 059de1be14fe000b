package features

import (
	"golang.org/x/net/publicsuffix"
)

// DefaultRank is the rank given to domains missing from the reputation table
const DefaultRank = 10_000_000

// ReputationTable maps a domain to its popularity rank; lower is more reputable
type ReputationTable struct {
	ranks               map[string]int
	defaultRank         int
	registrableFallback bool
}

// ReputationOption customizes a ReputationTable
type ReputationOption func(*ReputationTable)

// WithDefaultRank overrides the rank used for unknown domains
func WithDefaultRank(rank int) ReputationOption {
	return func(t *ReputationTable) {
		t.defaultRank = rank
	}
}

// WithRegistrableFallback looks unknown hosts up by their eTLD+1 before
// giving them the default rank
func WithRegistrableFallback(enabled bool) ReputationOption {
	return func(t *ReputationTable) {
		t.registrableFallback = enabled
	}
}

// NewReputationTable wraps a domain → rank map
func NewReputationTable(ranks map[string]int, opts ...ReputationOption) *ReputationTable {
	if ranks == nil {
		ranks = map[string]int{}
	}
	t := &ReputationTable{
		ranks:       ranks,
		defaultRank: DefaultRank,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// DefaultRank returns the sentinel rank for unknown domains
func (t *ReputationTable) DefaultRank() int {
	return t.defaultRank
}

// Len returns the number of ranked domains
func (t *ReputationTable) Len() int {
	return len(t.ranks)
}

// Rank returns the rank of domain, or the default rank when unknown
func (t *ReputationTable) Rank(domain string) int {
	if rank, ok := t.ranks[domain]; ok {
		return rank
	}
	if t.registrableFallback {
		if registrable, err := publicsuffix.EffectiveTLDPlusOne(domain); err == nil && registrable != domain {
			if rank, ok := t.ranks[registrable]; ok {
				return rank
			}
		}
	}
	return t.defaultRank
}

// GlobalURLRank returns the best (lowest) rank over domains. No domains means
// the default rank.
func (t *ReputationTable) GlobalURLRank(domains []string) int {
	best := t.defaultRank
	for i, domain := range domains {
		rank := t.Rank(domain)
		if i == 0 || rank < best {
			best = rank
		}
	}
	return best
}
