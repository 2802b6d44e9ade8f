// Package answered computes response-coverage summaries over mention groups.
package answered

import "github.com/felixdelbarrio/Global-Overview-Radar-sub000/internal/domain"

// Summarize counts opinions and answered opinions per sentiment for one
// entity scope. A group is answered when it carries any reply evidence.
// AnsweredRatio is 0 for an empty scope; it never divides by zero.
func Summarize(groups []domain.MentionGroup) domain.AnsweredTotals {
	var t domain.AnsweredTotals

	for _, g := range groups {
		t.OpinionsTotal++
		answered := g.HasReply()
		if answered {
			t.AnsweredTotal++
		}

		switch g.Sentiment {
		case domain.SentimentPositive:
			t.OpinionsPositive++
			if answered {
				t.AnsweredPositive++
			}
		case domain.SentimentNeutral:
			t.OpinionsNeutral++
			if answered {
				t.AnsweredNeutral++
			}
		case domain.SentimentNegative:
			t.OpinionsNegative++
			if answered {
				t.AnsweredNegative++
			}
		}
	}

	if t.OpinionsTotal > 0 {
		t.AnsweredRatio = float64(t.AnsweredTotal) / float64(t.OpinionsTotal)
	}
	return t
}
