package market

import (
	"math"
	"sort"
)

// Row is one raw candle. Missing fields are NaN.
type Row struct {
	Time   float64
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// ClosePoint builds a row carrying only time and close.
func ClosePoint(ts, closePrice float64) Row {
	nan := math.NaN()
	return Row{Time: ts, Open: nan, High: nan, Low: nan, Close: closePrice, Volume: nan}
}

// Series is an ascending, filtered candle sequence where every row has a
// finite time and close.
type Series struct {
	rows []Row
}

// NewSeries drops rows with a non-finite time or close and orders the rest by
// time. Rows with equal times keep their input order.
func NewSeries(rows []Row) Series {
	kept := make([]Row, 0, len(rows))
	for _, r := range rows {
		if !Finite(r.Time) || !Finite(r.Close) {
			continue
		}
		r.Time = math.Floor(r.Time)
		kept = append(kept, r)
	}
	sort.SliceStable(kept, func(i, j int) bool { return kept[i].Time < kept[j].Time })
	return Series{rows: kept}
}

// Len returns the number of rows.
func (s Series) Len() int { return len(s.rows) }

// Tail keeps the last n rows.
func (s Series) Tail(n int) Series {
	if n <= 0 || n >= len(s.rows) {
		return s
	}
	return Series{rows: s.rows[len(s.rows)-n:]}
}

// Times returns Unix seconds.
func (s Series) Times() []int64 {
	out := make([]int64, len(s.rows))
	for i, r := range s.rows {
		out[i] = int64(r.Time)
	}
	return out
}

// Closes returns the close prices.
func (s Series) Closes() []float64 { return s.column(func(r Row) float64 { return r.Close }) }

// Opens returns open prices, NaN where unknown.
func (s Series) Opens() []float64 { return s.column(func(r Row) float64 { return r.Open }) }

// Highs returns high prices, NaN where unknown.
func (s Series) Highs() []float64 { return s.column(func(r Row) float64 { return r.High }) }

// Lows returns low prices, NaN where unknown.
func (s Series) Lows() []float64 { return s.column(func(r Row) float64 { return r.Low }) }

// Volumes returns volumes, NaN where unknown.
func (s Series) Volumes() []float64 { return s.column(func(r Row) float64 { return r.Volume }) }

func (s Series) column(pick func(Row) float64) []float64 {
	out := make([]float64, len(s.rows))
	for i, r := range s.rows {
		out[i] = pick(r)
	}
	return out
}

// ClampDays bounds a day count to [1, 365]. Zero means unset and yields 30.
func ClampDays(days int) int {
	switch {
	case days == 0:
		return 30
	case days < 1:
		return 1
	case days > 365:
		return 365
	default:
		return days
	}
}
