// Package actors classifies mentions as belonging to the principal tracked
// entity or to a named competing actor.
package actors

import (
	"strings"

	"github.com/felixdelbarrio/Global-Overview-Radar-sub000/internal/domain"
	"github.com/felixdelbarrio/Global-Overview-Radar-sub000/internal/mentions"
	"github.com/felixdelbarrio/Global-Overview-Radar-sub000/internal/normalize"
)

// Resolver answers "is this mention about the principal?" against an alias
// set built from the canonical name plus configured alternates.
type Resolver struct {
	principal string
	aliases   []string // normalized, non-empty
	aliasSet  map[string]struct{}
}

// NewResolver builds a resolver for the principal entity. Empty alternates
// are dropped; the canonical name itself is always an alias.
func NewResolver(name string, alternates []string) *Resolver {
	r := &Resolver{
		principal: name,
		aliasSet:  make(map[string]struct{}),
	}
	for _, alias := range append([]string{name}, alternates...) {
		key := normalize.Key(alias)
		if key == "" {
			continue
		}
		if _, seen := r.aliasSet[key]; seen {
			continue
		}
		r.aliasSet[key] = struct{}{}
		r.aliases = append(r.aliases, key)
	}
	return r
}

// Principal returns the canonical principal name.
func (r *Resolver) Principal() string {
	return r.principal
}

// IsPrincipalActor reports whether a resolved actor name is an alias of the
// principal.
func (r *Resolver) IsPrincipalActor(actor string) bool {
	_, ok := r.aliasSet[normalize.Key(actor)]
	return ok
}

// matchText reports whether any alias appears as a substring of the
// normalized text. Deliberately permissive: the principal is the entity
// being actively monitored, so false positives beat false negatives.
func (r *Resolver) matchText(text string) bool {
	key := normalize.Key(text)
	if key == "" {
		return false
	}
	for _, alias := range r.aliases {
		if strings.Contains(key, alias) {
			return true
		}
	}
	return false
}

// IsPrincipalMention classifies a raw item: alias match on the resolved
// actor, or - when no actor is attached - an alias substring anywhere in
// title+text.
func (r *Resolver) IsPrincipalMention(m domain.RawMention) bool {
	if actor := mentions.ActorOf(m); actor != "" {
		return r.IsPrincipalActor(actor)
	}
	return r.matchText(m.Title + " " + m.Text)
}

// IsPrincipalGroup classifies a merged group with the same rules.
func (r *Resolver) IsPrincipalGroup(g domain.MentionGroup) bool {
	if g.Actor != "" {
		return r.IsPrincipalActor(g.Actor)
	}
	return r.matchText(g.Title + " " + g.Text)
}

// ComparisonCandidates returns the actors eligible for side-by-side
// comparison: named, non-principal, and - when a geo filter is active -
// present in the geo-scoped allow-list from metadata. Without a geo filter
// any named non-principal actor qualifies.
func (r *Resolver) ComparisonCandidates(catalog domain.ActorCatalog, geo string) []string {
	pool := catalog.Global
	if geo != "" {
		pool = catalog.ByGeo[geo]
		if pool == nil {
			// Geo keys in metadata may not match the filter's casing.
			geoKey := normalize.Key(geo)
			for k, v := range catalog.ByGeo {
				if normalize.Key(k) == geoKey {
					pool = v
					break
				}
			}
		}
	}

	var out []string
	seen := make(map[string]struct{})
	for _, actor := range pool {
		key := normalize.Key(actor)
		if key == "" || r.IsPrincipalActor(actor) {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, actor)
	}
	return out
}

// IsComparisonMention reports whether a raw item belongs to the selected
// comparison actor: named, matching the selection, and not the principal.
func (r *Resolver) IsComparisonMention(m domain.RawMention, comparison string) bool {
	if comparison == "" {
		return false
	}
	actor := mentions.ActorOf(m)
	if actor == "" || r.IsPrincipalActor(actor) {
		return false
	}
	return normalize.Equal(actor, comparison)
}

// IsComparisonGroup mirrors IsComparisonMention for merged groups.
func (r *Resolver) IsComparisonGroup(g domain.MentionGroup, comparison string) bool {
	if comparison == "" || g.Actor == "" || r.IsPrincipalActor(g.Actor) {
		return false
	}
	return normalize.Equal(g.Actor, comparison)
}
