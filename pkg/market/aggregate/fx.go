package aggregate

import (
	"context"
	"math"
	"net/http"
	"regexp"
	"strings"

	"marketdash-api/pkg/market"
	"marketdash-api/pkg/market/fxrates"
)

const (
	defaultFXFrom = "USD"
	defaultFXTo   = "EUR"
	fxFetchFailed = "FX provider fetch failed"
	// FXSourceIdentity marks a same-currency conversion that needed no provider.
	FXSourceIdentity = "identity"
)

var currencyCode = regexp.MustCompile(`^[A-Z]{3}$`)

// fxMajors is the quote list for the USD overview board.
var fxMajors = []struct {
	Code string
	Name string
}{
	{"EUR", "Euro"},
	{"GBP", "British Pound"},
	{"JPY", "Japanese Yen"},
	{"INR", "Indian Rupee"},
	{"CAD", "Canadian Dollar"},
	{"AUD", "Australian Dollar"},
	{"CHF", "Swiss Franc"},
	{"CNY", "Chinese Yuan"},
	{"AED", "UAE Dirham"},
	{"MXN", "Mexican Peso"},
}

// Conversion is the result of an amount conversion between two currencies.
type Conversion struct {
	From      string
	To        string
	Amount    float64
	Rate      float64
	Converted float64
	AsOf      string
	Source    string
}

// NormalizeCurrency trims and uppercases code, applying def when blank.
func NormalizeCurrency(code, def string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		code = def
	}
	if !currencyCode.MatchString(code) {
		return "", market.InputError("Invalid currency code")
	}
	return code, nil
}

// NormalizeAmount falls back to 1 for missing, non-finite or non-positive input.
func NormalizeAmount(amount float64) float64 {
	if !market.Positive(amount) {
		return 1
	}
	return amount
}

// Convert converts amount from one currency to another, Frankfurter first.
func (s *Service) Convert(ctx context.Context, from, to string, amount float64) (Conversion, error) {
	from, err := NormalizeCurrency(from, defaultFXFrom)
	if err != nil {
		return Conversion{}, err
	}
	to, err = NormalizeCurrency(to, defaultFXTo)
	if err != nil {
		return Conversion{}, err
	}
	amount = NormalizeAmount(amount)

	table, err := s.fxTable(ctx, from, []string{to}, true)
	if err != nil {
		return Conversion{}, err
	}
	rate, ok := table.Rate(to)
	if !ok {
		return Conversion{}, market.NotFoundError("Rate not available for "+from+"/"+to, nil)
	}
	return Conversion{
		From:      from,
		To:        to,
		Amount:    amount,
		Rate:      rate,
		Converted: amount * rate,
		AsOf:      table.AsOf,
		Source:    table.Source,
	}, nil
}

// fxTable walks the FX providers until one answers. In strict mode a table
// missing any requested quote counts as a miss.
func (s *Service) fxTable(ctx context.Context, base string, quotes []string, strict bool) (fxrates.Table, error) {
	complete := func(t fxrates.Table) (fxrates.Table, error) {
		if !strict {
			return t, nil
		}
		for _, q := range quotes {
			if q == base {
				continue
			}
			if _, ok := t.Rate(q); !ok {
				return fxrates.Table{}, market.NotFoundError("Rate not available for "+base+"/"+q, nil)
			}
		}
		return t, nil
	}

	table, _, err := market.FirstSuccess(ctx,
		market.Strategy[fxrates.Table]{Name: market.ProviderFrankfurter, Attempt: func(ctx context.Context) (fxrates.Table, error) {
			var wanted []string
			for _, q := range quotes {
				if q != base {
					wanted = append(wanted, q)
				}
			}
			if len(wanted) == 0 {
				return fxrates.Table{Base: base, Rates: map[string]float64{}, Source: FXSourceIdentity}, nil
			}
			t, err := s.fx.Frankfurter(ctx, base, wanted)
			if err != nil {
				return fxrates.Table{}, err
			}
			return complete(t)
		}},
		market.Strategy[fxrates.Table]{Name: market.ProviderOpenER, Attempt: func(ctx context.Context) (fxrates.Table, error) {
			t, err := s.fx.OpenER(ctx, base)
			if err != nil {
				return fxrates.Table{}, err
			}
			return complete(t)
		}},
	)
	if err != nil {
		me := market.AsError("", err)
		if me.Kind == market.KindNotFound || me.Kind == market.KindNetwork {
			return fxrates.Table{}, me
		}
		return fxrates.Table{}, market.UpstreamError(me.Provider, http.StatusBadGateway, fxFetchFailed, me.Details)
	}
	if table.Rates == nil {
		table.Rates = map[string]float64{}
	}
	table.Rates[base] = 1
	return table, nil
}

// FXRow is one line of the USD overview board.
type FXRow struct {
	Symbol string
	Name   string
	Price  float64
}

// FXBoard is the USD overview with the provider timestamp.
type FXBoard struct {
	Rows   []FXRow
	AsOf   string
	Source string
}

// FXOverview quotes USD against the majors. Codes missing from the
// winning table are NaN.
func (s *Service) FXOverview(ctx context.Context) (FXBoard, error) {
	codes := make([]string, len(fxMajors))
	for i, m := range fxMajors {
		codes[i] = m.Code
	}
	table, err := s.fxTable(ctx, defaultFXFrom, codes, false)
	if err != nil {
		return FXBoard{}, err
	}
	rows := make([]FXRow, 0, len(fxMajors))
	for _, m := range fxMajors {
		price, ok := table.Rate(m.Code)
		if !ok {
			price = math.NaN()
		}
		rows = append(rows, FXRow{
			Symbol: defaultFXFrom + "/" + m.Code,
			Name:   "US Dollar to " + m.Name,
			Price:  price,
		})
	}
	return FXBoard{Rows: rows, AsOf: table.AsOf, Source: table.Source}, nil
}
