package mentions

import (
	"sort"
	"strings"

	"github.com/felixdelbarrio/Global-Overview-Radar-sub000/internal/domain"
	"github.com/felixdelbarrio/Global-Overview-Radar-sub000/internal/normalize"
)

// GroupKey derives the grouping key of a raw item. The content part is the
// markup/whitespace-cleaned title (falling back to text, URL, then id) and
// is compared byte-exact: "Great app" and "Great app!" intentionally stay
// distinct groups. Grouping is exact-key, not fuzzy-similarity. The context
// parts (geo, actor, author) are normalized keys.
func GroupKey(m domain.RawMention) string {
	content := normalize.CleanText(m.Title)
	if content == "" {
		content = normalize.CleanText(m.Text)
	}
	if content == "" {
		content = m.URL
	}
	if content == "" {
		content = m.ID
	}
	return strings.Join([]string{
		content,
		normalize.Key(m.Geo),
		normalize.Key(ActorOf(m)),
		normalize.Key(AuthorOf(m)),
	}, "|")
}

// accumulator carries the per-field resolution state a group needs while
// folding. Field dates record which item supplied the current value, so the
// outcome depends on timestamps, never on arrival order.
type accumulator struct {
	group domain.MentionGroup

	ids        map[string]bool
	sources    map[string]domain.SourceRef
	publishers map[string]bool

	datePair      string // published|collected of the item that set the group timestamps
	geoDate       string
	titleDate     string
	actorDate     string
	authorDate    string
	publisherDate string
	sentimentDate string
	replyDate     string
	ratingDate    string
	ratingSrcKey  string
}

// Cluster folds raw items into canonical mention groups and returns them
// sorted by most-recent timestamp descending. Clustering is deterministic
// and order-independent: cluster(items) == cluster(shuffle(items)).
func Cluster(items []domain.RawMention) []domain.MentionGroup {
	byKey := make(map[string]*accumulator, len(items))
	order := make([]string, 0, len(items))

	for _, item := range items {
		key := GroupKey(item)
		acc, ok := byKey[key]
		if !ok {
			acc = newAccumulator(key)
			byKey[key] = acc
			order = append(order, key)
		}
		acc.fold(item)
	}

	groups := make([]domain.MentionGroup, 0, len(order))
	for _, key := range order {
		groups = append(groups, byKey[key].finish())
	}

	// Insertion order is deterministic for deterministic input, but the
	// output contract is chronological: stable sort on the ISO date string,
	// descending lexicographic order equals most-recent first.
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].EffectiveDate() > groups[j].EffectiveDate()
	})
	return groups
}

func newAccumulator(key string) *accumulator {
	return &accumulator{
		group: domain.MentionGroup{
			Key: key,
		},
		ids:        make(map[string]bool),
		sources:    make(map[string]domain.SourceRef),
		publishers: make(map[string]bool),
	}
}

func (a *accumulator) fold(item domain.RawMention) {
	a.group.Count++
	if item.ID != "" && !a.ids[item.ID] {
		a.ids[item.ID] = true
		a.group.IDs = append(a.group.IDs, item.ID)
	}

	date := item.EffectiveDate()

	a.foldTimestamps(item, date)
	a.foldContent(item, date)
	a.foldAttribution(item, date)
	a.foldRating(item, date)
	a.foldReply(item, date)
	a.foldOverride(item)
	a.foldSource(item)
}

// foldTimestamps keeps the published/collected pair of the item with the
// greatest effective date. ISO 8601 strings compare correctly as strings;
// equal dates keep the lexicographically smaller pair, like every other
// equal-date resolution here.
func (a *accumulator) foldTimestamps(item domain.RawMention, date string) {
	if date == "" {
		return
	}
	pair := item.PublishedAt + "|" + item.CollectedAt
	current := a.group.EffectiveDate()
	if date > current || (date == current && pair < a.datePair) {
		a.group.PublishedAt = item.PublishedAt
		a.group.CollectedAt = item.CollectedAt
		a.datePair = pair
	}
}

func (a *accumulator) foldContent(item domain.RawMention, date string) {
	if title := normalize.CleanText(item.Title); title != "" {
		a.group.Title, a.titleDate = pickLatest(a.group.Title, a.titleDate, title, date)
	}

	// Longest cleaned text is the proxy for most complete content.
	// Equal-length conflicts resolve lexicographically for determinism.
	if text := normalize.CleanText(item.Text); text != "" {
		switch {
		case len(text) > len(a.group.Text):
			a.group.Text = text
		case len(text) == len(a.group.Text) && text < a.group.Text:
			a.group.Text = text
		}
	}
}

func (a *accumulator) foldAttribution(item domain.RawMention, date string) {
	// Items in one group share the normalized geo key but may differ in raw
	// casing; the displayed value resolves by recency like any other field.
	if item.Geo != "" {
		a.group.Geo, a.geoDate = pickLatest(a.group.Geo, a.geoDate, item.Geo, date)
	}
	if actor := ActorOf(item); actor != "" {
		a.group.Actor, a.actorDate = pickLatest(a.group.Actor, a.actorDate, actor, date)
	}
	if author := AuthorOf(item); author != "" {
		a.group.Author, a.authorDate = pickLatest(a.group.Author, a.authorDate, author, date)
	}
	if publisher := PublisherOf(item); publisher != "" {
		a.publishers[normalize.Key(publisher)] = true
		a.group.Publisher, a.publisherDate = pickLatest(a.group.Publisher, a.publisherDate, publisher, date)
	}
	if item.Sentiment != "" {
		s, d := pickLatest(string(a.group.Sentiment), a.sentimentDate, string(item.Sentiment), date)
		a.group.Sentiment, a.sentimentDate = domain.Sentiment(s), d
	}
}

// foldRating keeps the rating of the oldest contributing item that yields
// one and never overwrites it with a later value; same-date conflicts
// resolve by source name so the result is permutation-independent.
func (a *accumulator) foldRating(item domain.RawMention, date string) {
	value, ok := RatingOf(item)
	if !ok {
		return
	}
	srcKey := normalize.Key(item.Source)
	if a.group.Rating != nil {
		if date > a.ratingDate {
			return
		}
		if date == a.ratingDate && srcKey >= a.ratingSrcKey {
			return
		}
	}
	v := value
	a.group.Rating = &v
	a.group.RatingSource = item.Source
	a.ratingDate = date
	a.ratingSrcKey = srcKey
}

// foldReply adopts any reply evidence, then only replaces it when a more
// recent item carries a reply. Equal-date conflicts keep the
// lexicographically smaller reply record so permutations cannot change the
// outcome.
func (a *accumulator) foldReply(item domain.RawMention, date string) {
	reply := ReplyOf(item)
	if reply.IsZero() {
		return
	}
	if a.group.HasReply() {
		held := strings.Join([]string{a.group.ReplyText, a.group.ReplyAuthor, a.group.RepliedAt}, "|")
		candidate := strings.Join([]string{reply.Text, reply.Author, reply.At}, "|")
		if date < a.replyDate || (date == a.replyDate && candidate >= held) {
			return
		}
	}
	a.group.ReplyText = reply.Text
	a.group.ReplyAuthor = reply.Author
	a.group.RepliedAt = reply.At
	a.replyDate = date
}

// foldOverride keeps the most recently updated manual correction; equal
// update timestamps resolve by the lexicographically smaller record.
func (a *accumulator) foldOverride(item domain.RawMention) {
	o := item.ManualOverride
	if o == nil {
		return
	}
	if held := a.group.ManualOverride; held != nil {
		if o.UpdatedAt < held.UpdatedAt {
			return
		}
		if o.UpdatedAt == held.UpdatedAt && overrideKey(*o) >= overrideKey(*held) {
			return
		}
	}
	copied := *o
	a.group.ManualOverride = &copied
}

func overrideKey(o domain.ManualOverride) string {
	return strings.Join([]string{string(o.Sentiment), o.Geo, o.Note}, "|")
}

// foldSource records each distinct source name once. When the same source
// contributes twice the lexicographically smaller ref is kept, so the final
// set never depends on arrival order.
func (a *accumulator) foldSource(item domain.RawMention) {
	if item.Source == "" {
		return
	}
	key := normalize.Key(item.Source)
	ref := domain.SourceRef{Name: item.Source, URL: item.URL}
	held, ok := a.sources[key]
	if !ok || ref.Name < held.Name || (ref.Name == held.Name && ref.URL < held.URL) {
		a.sources[key] = ref
	}
}

func (a *accumulator) finish() domain.MentionGroup {
	if len(a.publishers) > 1 {
		a.group.Publisher = domain.MultiplePublishers
	}
	sort.Strings(a.group.IDs)
	a.group.Sources = make([]domain.SourceRef, 0, len(a.sources))
	for _, ref := range a.sources {
		a.group.Sources = append(a.group.Sources, ref)
	}
	sort.Slice(a.group.Sources, func(i, j int) bool {
		return a.group.Sources[i].Name < a.group.Sources[j].Name
	})
	return a.group
}

// pickLatest resolves a "most recent non-empty wins" field. The held value
// only yields to a strictly more recent one; equal-date conflicts keep the
// lexicographically smaller value so permutations cannot change the result.
func pickLatest(current, currentDate, candidate, candidateDate string) (string, string) {
	if current == "" {
		return candidate, candidateDate
	}
	if candidateDate > currentDate {
		return candidate, candidateDate
	}
	if candidateDate == currentDate && candidate < current {
		return candidate, candidateDate
	}
	return current, currentDate
}
