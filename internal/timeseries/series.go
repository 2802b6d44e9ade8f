// Package timeseries builds gap-filled, cumulative comparative sentiment
// trajectories.
//
// The emitted value per day is an accumulated reputation index (running sum
// of daily mean scores), not a raw daily average: carrying the total forward
// smooths sparse day-to-day samples into a readable trend.
package timeseries

import (
	"fmt"
	"time"

	"github.com/felixdelbarrio/Global-Overview-Radar-sub000/internal/domain"
	"github.com/felixdelbarrio/Global-Overview-Radar-sub000/internal/mentions"
)

const dayLayout = "2006-01-02"

// Classifier decides which entity a raw item belongs to.
type Classifier func(domain.RawMention) bool

type dayMean struct {
	sum   float64
	count int
}

func (d *dayMean) add(v float64) { d.sum += v; d.count++ }
func (d dayMean) mean() float64  { return d.sum / float64(d.count) }

// Build produces one TimeSeriesPoint per calendar day from "from" to "to"
// inclusive, ascending, with no gaps. Items are bucketed by the date part of
// published_at||collected_at; within a day the arithmetic mean of the
// numeric sentiment score is computed separately per entity (items without
// a numeric score are excluded from both numerator and denominator). Each
// emitted value is the cumulative running total up to and including that
// day; a day with no new data repeats the prior total unchanged.
//
// When from/to are empty they default to the first/last day present in the
// bucketed data. With no data and no range, the series is empty.
func Build(items []domain.RawMention, isPrincipal, isComparison Classifier, from, to string) ([]domain.TimeSeriesPoint, error) {
	principalDays := make(map[string]*dayMean)
	comparisonDays := make(map[string]*dayMean)
	var first, last string

	for _, item := range items {
		day := dayOf(item.EffectiveDate())
		if day == "" {
			continue
		}
		score, ok := mentions.ScoreOf(item)
		if !ok {
			continue
		}

		matched := false
		if isPrincipal != nil && isPrincipal(item) {
			bucket(principalDays, day).add(score)
			matched = true
		}
		if isComparison != nil && isComparison(item) {
			bucket(comparisonDays, day).add(score)
			matched = true
		}
		if !matched {
			continue
		}
		if first == "" || day < first {
			first = day
		}
		if last == "" || day > last {
			last = day
		}
	}

	if from == "" {
		from = first
	}
	if to == "" {
		to = last
	}
	if from == "" || to == "" {
		return []domain.TimeSeriesPoint{}, nil
	}

	start, err := time.Parse(dayLayout, from)
	if err != nil {
		return nil, fmt.Errorf("invalid from date %q: %w", from, err)
	}
	end, err := time.Parse(dayLayout, to)
	if err != nil {
		return nil, fmt.Errorf("invalid to date %q: %w", to, err)
	}
	if end.Before(start) {
		return nil, fmt.Errorf("to date %q before from date %q", to, from)
	}

	var points []domain.TimeSeriesPoint
	var principalTotal, comparisonTotal float64
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		day := d.Format(dayLayout)
		if m, ok := principalDays[day]; ok {
			principalTotal += m.mean()
		}
		if m, ok := comparisonDays[day]; ok {
			comparisonTotal += m.mean()
		}
		points = append(points, domain.TimeSeriesPoint{
			Date:       day,
			Principal:  principalTotal,
			Comparison: comparisonTotal,
		})
	}
	return points, nil
}

func bucket(days map[string]*dayMean, day string) *dayMean {
	m, ok := days[day]
	if !ok {
		m = &dayMean{}
		days[day] = m
	}
	return m
}

// dayOf truncates an ISO timestamp to its calendar day, rejecting values
// too short or malformed to carry one.
func dayOf(ts string) string {
	if len(ts) < len(dayLayout) {
		return ""
	}
	day := ts[:len(dayLayout)]
	if _, err := time.Parse(dayLayout, day); err != nil {
		return ""
	}
	return day
}
