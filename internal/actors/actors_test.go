package actors

import (
	"testing"

	"github.com/felixdelbarrio/Global-Overview-Radar-sub000/internal/domain"
	"github.com/stretchr/testify/assert"
)

func newTestResolver() *Resolver {
	return NewResolver("Acme Bank", []string{"AcmeBank", "Acme", ""})
}

func TestResolver_AliasMatching(t *testing.T) {
	r := newTestResolver()

	assert.True(t, r.IsPrincipalActor("acme bank"))
	assert.True(t, r.IsPrincipalActor("ACME-BANK"))
	assert.True(t, r.IsPrincipalActor("Acme"))
	assert.False(t, r.IsPrincipalActor("Rival Bank"))
	assert.False(t, r.IsPrincipalActor(""))
}

func TestResolver_SubstringFallbackWithoutActor(t *testing.T) {
	r := newTestResolver()

	// No actor attached: alias substring in title+text is enough.
	assert.True(t, r.IsPrincipalMention(domain.RawMention{Title: "Why I left Acme bank last week"}))
	assert.True(t, r.IsPrincipalMention(domain.RawMention{Text: "Switched to ACME, no regrets"}))
	assert.False(t, r.IsPrincipalMention(domain.RawMention{Title: "Generic banking rant"}))

	// Actor attached: the actor decides, the text does not.
	assert.False(t, r.IsPrincipalMention(domain.RawMention{
		Actor: "Rival Bank",
		Title: "Rival Bank beats Acme on fees",
	}))
}

func TestResolver_GroupClassification(t *testing.T) {
	r := newTestResolver()

	assert.True(t, r.IsPrincipalGroup(domain.MentionGroup{Actor: "acme"}))
	assert.True(t, r.IsPrincipalGroup(domain.MentionGroup{Text: "acme bank is fine"}))
	assert.False(t, r.IsPrincipalGroup(domain.MentionGroup{Actor: "Rival Bank", Text: "mentions acme too"}))
}

func TestComparisonCandidates(t *testing.T) {
	r := newTestResolver()
	catalog := domain.ActorCatalog{
		Global: []string{"Rival Bank", "Acme Bank", "Credit Union", "rival-bank"},
		ByGeo: map[string][]string{
			"ES": {"Banco Sur", "Acme"},
		},
	}

	global := r.ComparisonCandidates(catalog, "")
	assert.Equal(t, []string{"Rival Bank", "Credit Union"}, global, "principal and duplicates excluded")

	scoped := r.ComparisonCandidates(catalog, "ES")
	assert.Equal(t, []string{"Banco Sur"}, scoped)

	assert.Empty(t, r.ComparisonCandidates(catalog, "FR"), "unknown geo has no allow-list")
}

func TestComparisonCandidates_GeoCasing(t *testing.T) {
	r := newTestResolver()
	catalog := domain.ActorCatalog{ByGeo: map[string][]string{"es": {"Banco Sur"}}}

	assert.Equal(t, []string{"Banco Sur"}, r.ComparisonCandidates(catalog, "ES"))
}

func TestIsComparisonMention(t *testing.T) {
	r := newTestResolver()

	m := domain.RawMention{Actor: "Rival Bank"}
	assert.True(t, r.IsComparisonMention(m, "rival-bank"))
	assert.False(t, r.IsComparisonMention(m, "Credit Union"))
	assert.False(t, r.IsComparisonMention(m, ""))

	// Principal never qualifies as comparison, even if selected.
	assert.False(t, r.IsComparisonMention(domain.RawMention{Actor: "Acme"}, "acme"))

	// Unnamed mentions never qualify.
	assert.False(t, r.IsComparisonMention(domain.RawMention{Title: "rival bank is ok"}, "rival bank"))
}
