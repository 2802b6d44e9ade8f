package timeseries

import (
	"testing"

	"github.com/felixdelbarrio/Global-Overview-Radar-sub000/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scored(day string, score any, actor string) domain.RawMention {
	return domain.RawMention{
		Actor:       actor,
		PublishedAt: day + "T10:00:00Z",
		Signals:     map[string]any{"score": score},
	}
}

func principalOnly(m domain.RawMention) bool  { return m.Actor == "principal" }
func comparisonOnly(m domain.RawMention) bool { return m.Actor == "rival" }

func TestBuild_CarryForward(t *testing.T) {
	items := []domain.RawMention{
		scored("2025-01-01", 0.5, "principal"),
	}

	points, err := Build(items, principalOnly, comparisonOnly, "2025-01-01", "2025-01-03")
	require.NoError(t, err)
	require.Len(t, points, 3)

	assert.Equal(t, domain.TimeSeriesPoint{Date: "2025-01-01", Principal: 0.5}, points[0])
	assert.Equal(t, domain.TimeSeriesPoint{Date: "2025-01-02", Principal: 0.5}, points[1])
	assert.Equal(t, domain.TimeSeriesPoint{Date: "2025-01-03", Principal: 0.5}, points[2])
}

func TestBuild_DailyMeanThenAccumulate(t *testing.T) {
	items := []domain.RawMention{
		scored("2025-01-01", 1.0, "principal"),
		scored("2025-01-01", 0.0, "principal"),
		scored("2025-01-02", -0.5, "principal"),
		scored("2025-01-02", 0.8, "rival"),
	}

	points, err := Build(items, principalOnly, comparisonOnly, "", "")
	require.NoError(t, err)
	require.Len(t, points, 2)

	// Day 1: mean(1.0, 0.0) = 0.5. Day 2: 0.5 + (-0.5) = 0.0.
	assert.InDelta(t, 0.5, points[0].Principal, 1e-9)
	assert.InDelta(t, 0.0, points[1].Principal, 1e-9)

	assert.InDelta(t, 0.0, points[0].Comparison, 1e-9)
	assert.InDelta(t, 0.8, points[1].Comparison, 1e-9)
}

func TestBuild_NonNumericScoresExcluded(t *testing.T) {
	items := []domain.RawMention{
		scored("2025-01-01", 1.0, "principal"),
		scored("2025-01-01", "n/a", "principal"), // excluded from numerator and denominator
	}

	points, err := Build(items, principalOnly, nil, "", "")
	require.NoError(t, err)
	require.Len(t, points, 1)
	assert.InDelta(t, 1.0, points[0].Principal, 1e-9)
}

func TestBuild_RangeDefaultsFromData(t *testing.T) {
	items := []domain.RawMention{
		scored("2025-02-03", 0.1, "principal"),
		scored("2025-02-01", 0.2, "principal"),
	}

	points, err := Build(items, principalOnly, nil, "", "")
	require.NoError(t, err)
	require.Len(t, points, 3)
	assert.Equal(t, "2025-02-01", points[0].Date)
	assert.Equal(t, "2025-02-02", points[1].Date)
	assert.Equal(t, "2025-02-03", points[2].Date)
}

func TestBuild_EmptyDataWithRangeStillEmitsDays(t *testing.T) {
	points, err := Build(nil, principalOnly, comparisonOnly, "2025-01-01", "2025-01-02")
	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.Equal(t, domain.TimeSeriesPoint{Date: "2025-01-01"}, points[0])
	assert.Equal(t, domain.TimeSeriesPoint{Date: "2025-01-02"}, points[1])
}

func TestBuild_EmptyDataNoRange(t *testing.T) {
	points, err := Build(nil, principalOnly, nil, "", "")
	require.NoError(t, err)
	assert.Empty(t, points)
}

func TestBuild_MonotonicCarryOnGapDays(t *testing.T) {
	items := []domain.RawMention{
		scored("2025-03-01", 0.4, "principal"),
		scored("2025-03-05", -0.1, "principal"),
	}

	points, err := Build(items, principalOnly, nil, "", "")
	require.NoError(t, err)
	require.Len(t, points, 5)

	for i := 1; i < len(points); i++ {
		if points[i].Date != "2025-03-05" {
			assert.Equal(t, points[i-1].Principal, points[i].Principal,
				"gap day %s must repeat the prior cumulative value", points[i].Date)
		}
	}
	assert.InDelta(t, 0.3, points[4].Principal, 1e-9)
}

func TestBuild_InvalidRange(t *testing.T) {
	_, err := Build(nil, principalOnly, nil, "2025-01-05", "2025-01-01")
	assert.Error(t, err)

	_, err = Build(nil, principalOnly, nil, "not-a-date", "2025-01-01")
	assert.Error(t, err)
}

func TestBuild_ItemsWithoutDatesIgnored(t *testing.T) {
	items := []domain.RawMention{
		{Actor: "principal", Signals: map[string]any{"score": 1.0}},
		scored("2025-01-01", 0.5, "principal"),
	}

	points, err := Build(items, principalOnly, nil, "", "")
	require.NoError(t, err)
	require.Len(t, points, 1)
	assert.InDelta(t, 0.5, points[0].Principal, 1e-9)
}
