package logic

import (
	"math"
	"strconv"
	"strings"

	"marketdash-api/internal/types"
	"marketdash-api/pkg/market"
	"marketdash-api/pkg/market/aggregate"
)

const seriesStatusOK = "ok"

// parseDays reads a day count. Blank or malformed input is unset (0) so the
// caller applies its default. Any explicit number is rounded into [1, 365].
func parseDays(raw string) int {
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || !market.Finite(f) {
		return 0
	}
	return int(math.Max(1, math.Min(365, math.Round(f))))
}

// parseAmount reads an amount; anything unusable becomes 1.
func parseAmount(raw string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 1
	}
	return aggregate.NormalizeAmount(f)
}

func toSeriesResp(s market.Series) *types.SeriesResp {
	return &types.SeriesResp{
		S: seriesStatusOK,
		C: market.NullableSlice(s.Closes()),
		T: s.Times(),
		V: market.NullableSlice(s.Volumes()),
	}
}

func toMovers(rows []aggregate.Mover) []types.Mover {
	out := make([]types.Mover, 0, len(rows))
	for _, r := range rows {
		out = append(out, types.Mover{
			Symbol:        r.Symbol,
			Name:          r.Name,
			Price:         market.Nullable(r.Price),
			Change:        market.Nullable(r.Change),
			PercentChange: market.Nullable(r.PercentChange),
		})
	}
	return out
}

func toOverviewRows(rows []aggregate.OverviewRow) []types.OverviewRow {
	out := make([]types.OverviewRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, types.OverviewRow{
			Symbol:  r.Symbol,
			Name:    r.Name,
			Price:   market.Nullable(r.Price),
			Percent: market.Nullable(r.Percent),
		})
	}
	return out
}
