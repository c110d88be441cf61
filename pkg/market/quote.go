package market

import "math"

// Quote is a normalized snapshot. Unknown numbers are NaN until serialization.
type Quote struct {
	Symbol        string
	Price         float64
	PrevClose     float64
	Change        float64
	PercentChange float64
	High          float64
	Low           float64
	Open          float64
	Source        string
}

// NewQuote builds a quote and derives change fields from price and prevClose.
func NewQuote(symbol, source string, price, prevClose float64) Quote {
	q := Quote{
		Symbol:    symbol,
		Price:     price,
		PrevClose: prevClose,
		High:      math.NaN(),
		Low:       math.NaN(),
		Open:      math.NaN(),
		Source:    source,
	}
	q.Change, q.PercentChange = Derive(price, prevClose)
	return q
}

// HasPrice reports whether the quote carries a usable price.
func (q Quote) HasPrice() bool {
	return Finite(q.Price)
}
