package domain

import "encoding/json"

// Principal is the tracked entity: a canonical name plus configured aliases.
type Principal struct {
	Name    string   `json:"name"`
	Aliases []string `json:"aliases,omitempty"`
}

// ActorCatalog lists the named non-principal actors observed in the data,
// globally and per geography.
type ActorCatalog struct {
	Global []string            `json:"global,omitempty"`
	ByGeo  map[string][]string `json:"by_geo,omitempty"`
}

// SourceCatalog describes which source platforms exist and which are enabled.
type SourceCatalog struct {
	Enabled   []string `json:"enabled,omitempty"`
	Available []string `json:"available,omitempty"`
}

// Meta is the backend's actor/geo/source metadata document.
// MarketRatings is relayed without interpretation.
type Meta struct {
	Principal     Principal       `json:"principal"`
	Geos          []string        `json:"geos,omitempty"`
	Actors        ActorCatalog    `json:"actors"`
	Sources       SourceCatalog   `json:"sources"`
	MarketRatings json.RawMessage `json:"market_ratings,omitempty"`
}

// ItemsResult is the payload of a /reputation/items read.
// Stats is relayed opaque; the core derives its own aggregates.
type ItemsResult struct {
	Items       []RawMention    `json:"items"`
	GeneratedAt string          `json:"generated_at,omitempty"`
	Stats       json.RawMessage `json:"stats,omitempty"`
}

// OverrideRequest is a manual correction applied to a set of raw item ids.
type OverrideRequest struct {
	IDs       []string  `json:"ids"`
	Geo       string    `json:"geo,omitempty"`
	Sentiment Sentiment `json:"sentiment,omitempty"`
	Note      string    `json:"note,omitempty"`
}

// OverrideResult reports how many upstream items a correction touched.
type OverrideResult struct {
	Updated int `json:"updated"`
}

// CompareResult is the payload of a /reputation/items/compare read: one item
// set per submitted filter plus the combined set.
type CompareResult struct {
	Groups   []ItemsResult `json:"groups"`
	Combined ItemsResult   `json:"combined"`
}
