package answered

import (
	"testing"

	"github.com/felixdelbarrio/Global-Overview-Radar-sub000/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestSummarize_EmptyScope(t *testing.T) {
	totals := Summarize(nil)

	assert.Zero(t, totals.OpinionsTotal)
	assert.Zero(t, totals.AnsweredTotal)
	assert.Zero(t, totals.AnsweredRatio, "empty scope must not divide by zero")
}

func TestSummarize_CountsPerSentiment(t *testing.T) {
	groups := []domain.MentionGroup{
		{Sentiment: domain.SentimentPositive, ReplyText: "thanks!"},
		{Sentiment: domain.SentimentPositive},
		{Sentiment: domain.SentimentNegative, ReplyAuthor: "support"},
		{Sentiment: domain.SentimentNeutral},
		{Sentiment: ""}, // untagged still counts as an opinion
	}

	totals := Summarize(groups)

	assert.Equal(t, 5, totals.OpinionsTotal)
	assert.Equal(t, 2, totals.OpinionsPositive)
	assert.Equal(t, 1, totals.OpinionsNeutral)
	assert.Equal(t, 1, totals.OpinionsNegative)

	assert.Equal(t, 2, totals.AnsweredTotal)
	assert.Equal(t, 1, totals.AnsweredPositive)
	assert.Equal(t, 0, totals.AnsweredNeutral)
	assert.Equal(t, 1, totals.AnsweredNegative)

	assert.InDelta(t, 0.4, totals.AnsweredRatio, 1e-9)
}

func TestSummarize_RatioBounds(t *testing.T) {
	all := []domain.MentionGroup{
		{RepliedAt: "2025-01-01"},
		{ReplyText: "yes"},
	}
	totals := Summarize(all)
	assert.Equal(t, 1.0, totals.AnsweredRatio)

	none := []domain.MentionGroup{{}, {}}
	totals = Summarize(none)
	assert.Zero(t, totals.AnsweredRatio)

	assert.GreaterOrEqual(t, totals.AnsweredRatio, 0.0)
	assert.LessOrEqual(t, totals.AnsweredRatio, 1.0)
}
