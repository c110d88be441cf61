package types

import "github.com/guregu/null/v6"

type ErrorResp struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

type SymbolReq struct {
	Symbol string `form:"symbol,optional"`
}

type QueryReq struct {
	Q     string `form:"q,optional"`
	Query string `form:"query,optional"`
}

// Text returns q, falling back to query.
func (r QueryReq) Text() string {
	if r.Q != "" {
		return r.Q
	}
	return r.Query
}

type QuoteResp struct {
	Symbol        string     `json:"symbol"`
	Price         null.Float `json:"price"`
	PriceSource   string     `json:"priceSource"`
	Change        null.Float `json:"change"`
	PercentChange null.Float `json:"percentChange"`
	High          null.Float `json:"high"`
	Low           null.Float `json:"low"`
	Open          null.Float `json:"open"`
	PreviousClose null.Float `json:"previousClose"`
}

type CandlesReq struct {
	Symbol     string `form:"symbol,optional"`
	Resolution string `form:"resolution,default=D"`
	Days       string `form:"days,optional"`
}

type CandlesResp struct {
	Symbol string       `json:"symbol"`
	T      []int64      `json:"t"`
	C      []null.Float `json:"c"`
	H      []null.Float `json:"h"`
	L      []null.Float `json:"l"`
	O      []null.Float `json:"o"`
	V      []null.Float `json:"v"`
}

type HistoryPoint struct {
	Date  string  `json:"date"`
	Close float64 `json:"close"`
}

type HistoryResp struct {
	Symbol string         `json:"symbol"`
	Points []HistoryPoint `json:"points"`
}

// SeriesResp is the close/volume series used by crypto and metal charts.
type SeriesResp struct {
	S string       `json:"s"`
	C []null.Float `json:"c"`
	T []int64      `json:"t"`
	V []null.Float `json:"v"`
}

type SearchMatch struct {
	Symbol        string `json:"symbol"`
	DisplaySymbol string `json:"displaySymbol"`
	Description   string `json:"description"`
	Type          string `json:"type"`
	Score         int    `json:"score"`
}

type SearchResp struct {
	Symbol  string        `json:"symbol"`
	Query   string        `json:"query"`
	Best    SearchMatch   `json:"best"`
	Matches []SearchMatch `json:"matches"`
}

type MetricsResp struct {
	Symbol        string     `json:"symbol"`
	PERatio       null.Float `json:"peRatio"`
	Week52High    null.Float `json:"week52High"`
	Week52Low     null.Float `json:"week52Low"`
	Beta          null.Float `json:"beta"`
	EPSTTM        null.Float `json:"epsTTM"`
	DividendYield null.Float `json:"dividendYield"`
}

type ProfileResp struct {
	Name                 null.String `json:"name"`
	Ticker               string      `json:"ticker"`
	Logo                 null.String `json:"logo"`
	Exchange             null.String `json:"exchange"`
	Sector               null.String `json:"sector"`
	FinnhubIndustry      null.String `json:"finnhubIndustry"`
	MarketCapitalization null.Float  `json:"marketCapitalization"`
	IPO                  null.String `json:"ipo"`
	Country              null.String `json:"country"`
	WebURL               null.String `json:"weburl"`
}

type Mover struct {
	Symbol        string     `json:"symbol"`
	Name          string     `json:"name,omitempty"`
	Price         null.Float `json:"price"`
	Change        null.Float `json:"change"`
	PercentChange null.Float `json:"percentChange"`
}

type MoversResp struct {
	Gainers       []Mover `json:"gainers"`
	Losers        []Mover `json:"losers"`
	UniverseCount *int    `json:"universeCount,omitempty"`
}

type CryptoQuoteReq struct {
	Id     string `form:"id,optional"`
	Symbol string `form:"symbol,optional"`
}

type CryptoQuoteResp struct {
	Id            string     `json:"id"`
	Symbol        string     `json:"symbol"`
	Name          string     `json:"name"`
	Logo          string     `json:"logo"`
	Category      string     `json:"category"`
	Price         null.Float `json:"price"`
	Change        null.Float `json:"change"`
	PercentChange null.Float `json:"percentChange"`
	High          null.Float `json:"high"`
	Low           null.Float `json:"low"`
	Volume        null.Float `json:"volume"`
	MarketCap     null.Float `json:"marketCap"`
}

type CryptoCandlesReq struct {
	Id   string `form:"id,optional"`
	Days string `form:"days,optional"`
}

type AssetMatch struct {
	Id          string `json:"id"`
	Symbol      string `json:"symbol"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// AssetSearchResp answers crypto and metal lookups.
type AssetSearchResp struct {
	Query   string       `json:"query"`
	Best    *AssetMatch  `json:"best"`
	Symbol  string       `json:"symbol"`
	Id      string       `json:"id"`
	Matches []AssetMatch `json:"matches"`
}

type CryptoOverviewReq struct {
	Ids string `form:"ids,optional"`
}

type OverviewRow struct {
	Symbol  string     `json:"symbol"`
	Name    string     `json:"name,omitempty"`
	Price   null.Float `json:"price"`
	Percent null.Float `json:"percent"`
}

type OverviewResp struct {
	Rows []OverviewRow `json:"rows"`
	AsOf *string       `json:"asOf,omitempty"`
}

type MetalReq struct {
	Id     string `form:"id,optional"`
	Symbol string `form:"symbol,optional"`
}

type MetalQuoteResp struct {
	Id            string     `json:"id"`
	Symbol        string     `json:"symbol"`
	Name          string     `json:"name"`
	Category      string     `json:"category"`
	Price         null.Float `json:"price"`
	PrevClose     null.Float `json:"prevClose"`
	Change        null.Float `json:"change"`
	PercentChange null.Float `json:"percentChange"`
	High          null.Float `json:"high"`
	Low           null.Float `json:"low"`
	Source        string     `json:"source"`
}

type MetalCandlesReq struct {
	Id     string `form:"id,optional"`
	Symbol string `form:"symbol,optional"`
	Days   string `form:"days,optional"`
}

type FXRateReq struct {
	From   string `form:"from,optional"`
	To     string `form:"to,optional"`
	Amount string `form:"amount,optional"`
}

type FXRateResp struct {
	From      string  `json:"from"`
	To        string  `json:"to"`
	Amount    float64 `json:"amount"`
	Rate      float64 `json:"rate"`
	Converted float64 `json:"converted"`
	AsOf      string  `json:"asOf"`
	Source    string  `json:"source"`
}

type StatusResp struct {
	Ok      bool            `json:"ok"`
	Env     map[string]bool `json:"env"`
	Runtime string          `json:"runtime"`
}

type AIReq struct {
	Mode   string `form:"mode,optional"`
	Symbol string `form:"symbol,optional"`
	Price  string `form:"price,optional"`
}

// AIResp carries the parsed analysis fields next to mode, modelUsed and raw.
type AIResp map[string]any
