package domain

// Sentiment is the backend-assigned polarity label of a mention.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

// MultiplePublishers is the sentinel publisher label a group takes when its
// folded items disagree on the publisher. Picking one silently would
// misattribute the mention.
const MultiplePublishers = "multiple publishers"

// ManualOverride is a prior manual correction attached to a raw item.
// When several corrections reach the same group, the latest UpdatedAt wins.
type ManualOverride struct {
	Sentiment Sentiment `json:"sentiment,omitempty"`
	Geo       string    `json:"geo,omitempty"`
	Note      string    `json:"note,omitempty"`
	UpdatedAt string    `json:"updated_at"`
}

// RawMention is one sentiment-tagged observation from a single source,
// exactly as the backend delivers it. It carries no identity across sources:
// the same real-world opinion may appear once per platform.
//
// Timestamps are ISO 8601 strings and are compared lexicographically
// throughout the pipeline, which equals chronological order for ISO dates.
type RawMention struct {
	ID             string          `json:"id,omitempty"`
	Source         string          `json:"source"`
	Geo            string          `json:"geo,omitempty"`
	Actor          string          `json:"actor,omitempty"`
	Author         string          `json:"author,omitempty"`
	Title          string          `json:"title,omitempty"`
	Text           string          `json:"text,omitempty"`
	URL            string          `json:"url,omitempty"`
	Sentiment      Sentiment       `json:"sentiment,omitempty"`
	PublishedAt    string          `json:"published_at,omitempty"`
	CollectedAt    string          `json:"collected_at,omitempty"`
	Signals        map[string]any  `json:"signals,omitempty"`
	ManualOverride *ManualOverride `json:"manual_override,omitempty"`
}

// EffectiveDate returns the timestamp used for all recency decisions:
// published_at when present, collected_at otherwise. May be empty.
func (m RawMention) EffectiveDate() string {
	if m.PublishedAt != "" {
		return m.PublishedAt
	}
	return m.CollectedAt
}

// SourceRef is one contributing platform of a mention group.
type SourceRef struct {
	Name string `json:"name"`
	URL  string `json:"url,omitempty"`
}

// MentionGroup is the deduplicated, displayable unit: a cluster of raw items
// judged to be the same underlying opinion. Groups are recomputed from
// scratch on every fetch; no incremental state is carried between fetches.
type MentionGroup struct {
	Key            string          `json:"key"`
	IDs            []string        `json:"ids"`
	Title          string          `json:"title,omitempty"`
	Text           string          `json:"text,omitempty"`
	Geo            string          `json:"geo,omitempty"`
	Actor          string          `json:"actor,omitempty"`
	Author         string          `json:"author,omitempty"`
	Publisher      string          `json:"publisher,omitempty"`
	Sentiment      Sentiment       `json:"sentiment,omitempty"`
	Rating         *float64        `json:"rating,omitempty"`
	RatingSource   string          `json:"rating_source,omitempty"`
	PublishedAt    string          `json:"published_at,omitempty"`
	CollectedAt    string          `json:"collected_at,omitempty"`
	Sources        []SourceRef     `json:"sources"`
	Count          int             `json:"count"`
	ManualOverride *ManualOverride `json:"manual_override,omitempty"`
	ReplyText      string          `json:"reply_text,omitempty"`
	ReplyAuthor    string          `json:"reply_author,omitempty"`
	RepliedAt      string          `json:"replied_at,omitempty"`
}

// EffectiveDate mirrors RawMention.EffectiveDate for the merged group.
func (g MentionGroup) EffectiveDate() string {
	if g.PublishedAt != "" {
		return g.PublishedAt
	}
	return g.CollectedAt
}

// HasReply reports whether the group carries any reply evidence.
func (g MentionGroup) HasReply() bool {
	return g.ReplyText != "" || g.ReplyAuthor != "" || g.RepliedAt != ""
}
