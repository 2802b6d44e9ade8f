package domain

// TimeSeriesPoint is one calendar day of the comparative trajectory.
// Values are cumulative running totals, not daily means: a day with no new
// data repeats the prior value unchanged.
type TimeSeriesPoint struct {
	Date       string  `json:"date"` // YYYY-MM-DD
	Principal  float64 `json:"principal"`
	Comparison float64 `json:"comparison"`
}

// AnsweredTotals is the answered-coverage summary for one entity scope.
type AnsweredTotals struct {
	OpinionsTotal    int     `json:"opinions_total"`
	OpinionsPositive int     `json:"opinions_positive"`
	OpinionsNeutral  int     `json:"opinions_neutral"`
	OpinionsNegative int     `json:"opinions_negative"`
	AnsweredTotal    int     `json:"answered_total"`
	AnsweredPositive int     `json:"answered_positive"`
	AnsweredNeutral  int     `json:"answered_neutral"`
	AnsweredNegative int     `json:"answered_negative"`
	AnsweredRatio    float64 `json:"answered_ratio"`
}
