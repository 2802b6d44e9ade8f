package mentions

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/felixdelbarrio/Global-Overview-Radar-sub000/internal/domain"
	"github.com/felixdelbarrio/Global-Overview-Radar-sub000/internal/normalize"
)

// Extraction helpers over the open signals bag. Sources disagree wildly on
// where they put ratings, authors and replies, so every lookup tolerates
// missing keys, nested sub-objects and string-typed numbers. A failed
// extraction is never an error: the field is simply absent downstream.

// ActorOf resolves the actor a raw item talks about: the explicit actor
// field when present, otherwise the first entry of an actor-name array in
// the signals bag.
func ActorOf(m domain.RawMention) string {
	if m.Actor != "" {
		return m.Actor
	}
	for _, key := range []string{"actors", "actor_names"} {
		if arr, ok := m.Signals[key].([]any); ok {
			for _, v := range arr {
				if s, ok := v.(string); ok && s != "" {
					return s
				}
			}
		}
	}
	return ""
}

// AuthorOf resolves the author of a raw item, falling back to the signals
// bag for sources that nest it there.
func AuthorOf(m domain.RawMention) string {
	if m.Author != "" {
		return m.Author
	}
	for _, key := range []string{"author", "author_name", "user_name"} {
		if s, ok := m.Signals[key].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

// PublisherOf resolves the publishing outlet of a raw item from the signals
// bag. Press sources send a plain string, some send {name: ...}.
func PublisherOf(m domain.RawMention) string {
	for _, key := range []string{"publisher", "publisher_name", "site_name"} {
		switch v := m.Signals[key].(type) {
		case string:
			if v != "" {
				return v
			}
		case map[string]any:
			if s, ok := v["name"].(string); ok && s != "" {
				return s
			}
		}
	}
	return ""
}

// Reply is the response evidence attached to a raw item.
type Reply struct {
	Text   string
	Author string
	At     string
}

// IsZero reports whether no reply evidence was found.
func (r Reply) IsZero() bool {
	return r.Text == "" && r.Author == "" && r.At == ""
}

// ReplyOf extracts reply evidence from the signals bag. Accepts both a
// nested reply object and flat reply_* keys.
func ReplyOf(m domain.RawMention) Reply {
	if obj, ok := m.Signals["reply"].(map[string]any); ok {
		r := Reply{
			Text:   stringAt(obj, "text"),
			Author: stringAt(obj, "author"),
			At:     stringAt(obj, "replied_at"),
		}
		if r.At == "" {
			r.At = stringAt(obj, "date")
		}
		if !r.IsZero() {
			return r
		}
	}
	return Reply{
		Text:   stringAt(m.Signals, "reply_text"),
		Author: stringAt(m.Signals, "reply_author"),
		At:     stringAt(m.Signals, "replied_at"),
	}
}

// RatingOf searches the signals bag for a usable star rating. Candidates may
// sit in arbitrary sub-objects and may be numeric-looking strings with a
// comma decimal separator. The first candidate (in deterministic key order)
// that parses to a positive finite number wins, clamped to [0,5];
// non-positive or non-finite candidates are rejected and the search
// continues.
func RatingOf(m domain.RawMention) (float64, bool) {
	return searchRating(m.Signals)
}

func searchRating(bag map[string]any) (float64, bool) {
	if len(bag) == 0 {
		return 0, false
	}
	keys := make([]string, 0, len(bag))
	for k := range bag {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	// Direct candidates first, then one level at a time into sub-objects.
	for _, k := range keys {
		if !ratingKey(k) {
			continue
		}
		if v, ok := numericValue(bag[k]); ok && v > 0 && !math.IsInf(v, 0) {
			return math.Min(v, 5), true
		}
	}
	for _, k := range keys {
		if sub, ok := bag[k].(map[string]any); ok {
			if v, ok := searchRating(sub); ok {
				return v, true
			}
		}
	}
	return 0, false
}

func ratingKey(k string) bool {
	nk := normalize.Key(k)
	return strings.Contains(nk, "rating") || strings.Contains(nk, "stars")
}

// ScoreOf extracts the numeric sentiment score used by the time-series
// aggregator. Missing or non-numeric scores are excluded from daily means,
// not treated as zero.
func ScoreOf(m domain.RawMention) (float64, bool) {
	for _, key := range []string{"score", "sentiment_score"} {
		if v, ok := numericValue(m.Signals[key]); ok && !math.IsNaN(v) && !math.IsInf(v, 0) {
			return v, true
		}
	}
	return 0, false
}

func numericValue(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		if math.IsNaN(n) {
			return 0, false
		}
		return n, true
	case int:
		return float64(n), true
	case string:
		s := strings.TrimSpace(strings.ReplaceAll(n, ",", "."))
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

func stringAt(bag map[string]any, key string) string {
	s, _ := bag[key].(string)
	return s
}
