package market

import "strings"

// Metal describes one supported precious metal and its provider codes.
type Metal struct {
	Symbol string
	Name   string
	// AlphaVantageCode is tried before Symbol on metal endpoints.
	AlphaVantageCode string
	YahooTicker      string
	// HasSpotFeed marks metals served by GOLD_SILVER_SPOT and GOLD_SILVER_HISTORY.
	HasSpotFeed bool
}

// DefaultMetal is used when no metal is requested.
const DefaultMetal = "XAU"

var metalCatalog = []Metal{
	{Symbol: "XAU", Name: "Gold (Spot USD)", AlphaVantageCode: "GOLD", YahooTicker: "GC=F", HasSpotFeed: true},
	{Symbol: "XAG", Name: "Silver (Spot USD)", AlphaVantageCode: "SILVER", YahooTicker: "SI=F", HasSpotFeed: true},
	{Symbol: "XPT", Name: "Platinum (Spot USD)", AlphaVantageCode: "XPT", YahooTicker: "PL=F"},
	{Symbol: "XPD", Name: "Palladium (Spot USD)", AlphaVantageCode: "XPD", YahooTicker: "PA=F"},
}

var metalAliases = map[string]string{
	"GOLD":      "XAU",
	"SILVER":    "XAG",
	"PLATINUM":  "XPT",
	"PALLADIUM": "XPD",
}

// Metals returns the catalog in display order.
func Metals() []Metal {
	out := make([]Metal, len(metalCatalog))
	copy(out, metalCatalog)
	return out
}

// LookupMetal resolves a symbol, id or common name such as "gold" or "XAUUSD=X".
func LookupMetal(input string) (Metal, bool) {
	code := strings.ToUpper(strings.TrimSpace(input))
	code = strings.TrimSuffix(code, "USD=X")
	if alias, ok := metalAliases[code]; ok {
		code = alias
	}
	for _, m := range metalCatalog {
		if m.Symbol == code {
			return m, true
		}
	}
	return Metal{}, false
}

// SearchMetals returns catalog entries whose symbol or name contains query.
func SearchMetals(query string) []Metal {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}
	var out []Metal
	for _, m := range metalCatalog {
		if strings.Contains(strings.ToLower(m.Symbol), q) || strings.Contains(strings.ToLower(m.Name), q) {
			out = append(out, m)
		}
	}
	return out
}
