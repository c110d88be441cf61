package aggregate

import (
	"context"
	"strings"

	"marketdash-api/pkg/market"
)

// historyLimit caps the daily points returned for a symbol.
const historyLimit = 120

// HistoryPoint is one daily close.
type HistoryPoint struct {
	Date  string
	Close float64
}

// History returns up to the last historyLimit daily closes from the keyless
// Stooq export, oldest first.
func (s *Service) History(ctx context.Context, symbol string) ([]HistoryPoint, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, market.InputError("Missing symbol")
	}
	rows, err := s.stooq.Daily(ctx, symbol)
	if err != nil {
		return nil, err
	}
	if len(rows) > historyLimit {
		rows = rows[len(rows)-historyLimit:]
	}

	points := make([]HistoryPoint, 0, len(rows))
	for _, r := range rows {
		if !market.Finite(r.Close) {
			continue
		}
		points = append(points, HistoryPoint{Date: r.Date, Close: r.Close})
	}
	if len(points) == 0 {
		return nil, market.NotFoundError("No usable history", nil)
	}
	return points, nil
}
