package aggregate

import (
	"context"
	"regexp"
	"sort"
	"strings"

	"marketdash-api/pkg/market"
	"marketdash-api/pkg/market/finnhub"
)

const searchMatchLimit = 10

// Scoring weights for symbol search. Aliases dominate every other signal.
const (
	weightAlias          = 1000
	weightSymbolExact    = 400
	weightNameExact      = 300
	weightNamePrefix     = 150
	weightSymbolPrefix   = 120
	weightNameContains   = 60
	weightCommonStock    = 50
	weightSymbolContains = 40
	weightNoDot          = 25
	weightUSHint         = 20
	penaltyColon         = -150
	penaltyForeignSuffix = -200
)

// symbolAliases maps company names people type to their primary US ticker.
var symbolAliases = map[string]string{
	"GOOGLE":    "GOOGL",
	"ALPHABET":  "GOOGL",
	"FACEBOOK":  "META",
	"HONDA":     "HMC",
	"TOYOTA":    "TM",
	"MICROSOFT": "MSFT",
	"AMAZON":    "AMZN",
	"NVIDIA":    "NVDA",
	"TESLA":     "TSLA",
	"NETFLIX":   "NFLX",
}

// foreignSuffixes are exchange suffixes of non-US listings (7203.T, SHOP.TO).
var foreignSuffixes = map[string]bool{
	"AX": true, "T": true, "TO": true, "L": true, "HK": true, "AS": true,
	"PA": true, "MI": true, "SW": true, "F": true, "DE": true, "ST": true,
	"OL": true, "HE": true, "V": true, "KS": true, "KQ": true,
}

var companySuffixWords = map[string]bool{
	"inc": true, "incorporated": true, "corp": true, "corporation": true,
	"co": true, "company": true, "ltd": true, "limited": true, "plc": true,
	"holdings": true, "group": true, "sa": true, "ag": true, "nv": true,
	"llc": true, "the": true, "class": true,
}

var (
	usTicker    = regexp.MustCompile(`^[A-Z]{1,5}$`)
	nonAlnumRun = regexp.MustCompile(`[^a-z0-9]+`)
)

// ScoredCandidate is a search hit with its rank score.
type ScoredCandidate struct {
	finnhub.Candidate
	Score int
}

// SearchResult is the resolved symbol with ranked alternatives.
type SearchResult struct {
	Query   string
	Symbol  string
	Best    ScoredCandidate
	Matches []ScoredCandidate
}

// SearchSymbol resolves free text to a ticker.
func (s *Service) SearchSymbol(ctx context.Context, query string) (SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return SearchResult{}, market.InputError("Missing query")
	}
	candidates, err := s.finnhub.Search(ctx, query)
	if err != nil {
		return SearchResult{}, err
	}
	ranked := RankCandidates(query, candidates)
	if len(ranked) == 0 {
		return SearchResult{}, market.NotFoundError("No symbol found", nil)
	}
	if len(ranked) > searchMatchLimit {
		ranked = ranked[:searchMatchLimit]
	}
	return SearchResult{
		Query:   query,
		Symbol:  ranked[0].Symbol,
		Best:    ranked[0],
		Matches: ranked,
	}, nil
}

type searchTerms struct {
	symbol string
	name   string
	alias  string
}

func newSearchTerms(query string) searchTerms {
	name := normalizeName(query)
	return searchTerms{
		symbol: strings.ToUpper(strings.Join(strings.Fields(query), "")),
		name:   name,
		alias:  lookupAlias(query, name),
	}
}

// lookupAlias checks the raw query and its suffix-stripped form.
func lookupAlias(query, normalized string) string {
	for _, key := range []string{
		strings.ToUpper(strings.TrimSpace(query)),
		strings.ToUpper(normalized),
		strings.ToUpper(strings.ReplaceAll(normalized, " ", "")),
	} {
		if ticker, ok := symbolAliases[key]; ok {
			return ticker
		}
	}
	return ""
}

// RankCandidates scores every candidate and orders them best first. When the
// query names an aliased company whose ticker is missing from candidates, the
// ticker is added so the alias always resolves.
func RankCandidates(query string, candidates []finnhub.Candidate) []ScoredCandidate {
	terms := newSearchTerms(query)
	pool := append([]finnhub.Candidate(nil), candidates...)
	if terms.alias != "" && !containsSymbol(pool, terms.alias) {
		pool = append(pool, finnhub.Candidate{
			Symbol:        terms.alias,
			DisplaySymbol: terms.alias,
			Description:   strings.ToUpper(strings.TrimSpace(query)),
			Type:          "Common Stock",
		})
	}

	out := make([]ScoredCandidate, 0, len(pool))
	for _, c := range pool {
		out = append(out, ScoredCandidate{Candidate: c, Score: terms.score(c)})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}

// ScoreCandidate is the deterministic relevance of c for query.
func ScoreCandidate(query string, c finnhub.Candidate) int {
	return newSearchTerms(query).score(c)
}

func (t searchTerms) score(c finnhub.Candidate) int {
	symbol := strings.ToUpper(strings.TrimSpace(c.Symbol))
	display := strings.ToUpper(strings.TrimSpace(c.DisplaySymbol))
	score := 0

	if t.alias != "" && (symbol == t.alias || display == t.alias) {
		score += weightAlias
	}

	if t.symbol != "" {
		switch {
		case symbol == t.symbol:
			score += weightSymbolExact
		case strings.HasPrefix(symbol, t.symbol):
			score += weightSymbolPrefix
		case strings.Contains(symbol, t.symbol):
			score += weightSymbolContains
		}
	}

	if t.name != "" {
		name := normalizeName(c.Description)
		switch {
		case name == t.name:
			score += weightNameExact
		case strings.HasPrefix(name, t.name):
			score += weightNamePrefix
		case strings.Contains(name, t.name):
			score += weightNameContains
		}
	}

	if strings.EqualFold(strings.TrimSpace(c.Type), "Common Stock") {
		score += weightCommonStock
	}

	if dot := strings.LastIndex(symbol, "."); dot >= 0 {
		if foreignSuffixes[symbol[dot+1:]] {
			score += penaltyForeignSuffix
		}
	} else {
		score += weightNoDot
	}
	if strings.Contains(symbol, ":") {
		score += penaltyColon
	}
	if usTicker.MatchString(symbol) {
		score += weightUSHint
	}
	return score
}

// normalizeName lowercases, drops punctuation and strips company suffix words.
func normalizeName(s string) string {
	words := strings.Fields(nonAlnumRun.ReplaceAllString(strings.ToLower(s), " "))
	kept := words[:0]
	for _, w := range words {
		if !companySuffixWords[w] {
			kept = append(kept, w)
		}
	}
	return strings.Join(kept, " ")
}

func containsSymbol(candidates []finnhub.Candidate, symbol string) bool {
	for _, c := range candidates {
		if strings.EqualFold(c.Symbol, symbol) || strings.EqualFold(c.DisplaySymbol, symbol) {
			return true
		}
	}
	return false
}
