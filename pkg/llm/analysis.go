package llm

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"
)

// Parse strategies, in the order they are attempted.
const (
	ParsedStrict  = "strict"
	ParsedFenced  = "fenced"
	ParsedBraces  = "braces"
	ParsedFields  = "fields"
	ParsedRawOnly = "raw"
)

var (
	codeFence    = regexp.MustCompile("(?s)```[a-zA-Z]*\\s*(.*?)\\s*```")
	stringFields = []string{"ticker", "recommendation", "day_plan", "note"}
	listFields   = []string{"why", "risks"}
)

// Analysis is a model answer. Fields holds the decoded JSON keys and is nil
// when nothing could be recovered; Raw always carries the original text.
type Analysis struct {
	Fields   map[string]any
	Raw      string
	Strategy string
}

// Parsed reports whether any structured field was recovered.
func (a Analysis) Parsed() bool {
	return len(a.Fields) > 0
}

// ParseAnalysis recovers a JSON object from model output, trying a strict
// decode, then a fenced block, then the outermost brace span, then
// individual quoted fields.
func ParseAnalysis(raw string) Analysis {
	text := strings.TrimSpace(raw)
	out := Analysis{Raw: text, Strategy: ParsedRawOnly}
	if text == "" {
		return out
	}

	if fields, ok := decodeObject(text); ok {
		out.Fields, out.Strategy = fields, ParsedStrict
		return out
	}
	if m := codeFence.FindStringSubmatch(text); m != nil {
		if fields, ok := decodeObject(m[1]); ok {
			out.Fields, out.Strategy = fields, ParsedFenced
			return out
		}
	}
	if start, end := strings.Index(text, "{"), strings.LastIndex(text, "}"); start >= 0 && end > start {
		if fields, ok := decodeObject(text[start : end+1]); ok {
			out.Fields, out.Strategy = fields, ParsedBraces
			return out
		}
	}
	if fields := extractFields(text); len(fields) > 0 {
		out.Fields, out.Strategy = fields, ParsedFields
	}
	return out
}

func decodeObject(s string) (map[string]any, bool) {
	s = strings.TrimSpace(s)
	if !gjson.Valid(s) {
		return nil, false
	}
	r := gjson.Parse(s)
	if !r.IsObject() {
		return nil, false
	}
	obj, ok := r.Value().(map[string]any)
	return obj, ok && len(obj) > 0
}

// extractFields pulls known keys out of almost-JSON text, such as output
// truncated by the token limit.
func extractFields(text string) map[string]any {
	out := make(map[string]any)
	for _, key := range stringFields {
		re := regexp.MustCompile(`"` + key + `"\s*:\s*"((?:[^"\\]|\\.)*)"`)
		if m := re.FindStringSubmatch(text); m != nil {
			out[key] = unquote(m[1])
		}
	}
	for _, key := range listFields {
		re := regexp.MustCompile(`(?s)"` + key + `"\s*:\s*\[(.*?)(?:\]|$)`)
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		items := make([]any, 0, 4)
		for _, item := range regexp.MustCompile(`"((?:[^"\\]|\\.)*)"`).FindAllStringSubmatch(m[1], -1) {
			items = append(items, unquote(item[1]))
		}
		if len(items) > 0 {
			out[key] = items
		}
	}
	return out
}

func unquote(s string) string {
	r := gjson.Parse(`"` + s + `"`)
	if r.Type != gjson.String {
		return s
	}
	return r.String()
}

// ErrMissingSymbol is returned for a symbol analysis without a symbol.
var ErrMissingSymbol = errors.New("llm: symbol analysis requires a symbol")

// AnalysisRequest describes one analysis call.
type AnalysisRequest struct {
	Mode   string
	Symbol string
	Price  string
}

// Normalize uppercases the symbol and resolves the mode. Anything other than
// daily is a symbol analysis, which requires a symbol.
func (r AnalysisRequest) Normalize() (AnalysisRequest, error) {
	r.Symbol = strings.ToUpper(strings.TrimSpace(r.Symbol))
	r.Price = strings.TrimSpace(r.Price)
	if strings.EqualFold(strings.TrimSpace(r.Mode), ModeDaily) {
		r.Mode = ModeDaily
		return r, nil
	}
	r.Mode = ModeSymbol
	if r.Symbol == "" {
		return r, ErrMissingSymbol
	}
	return r, nil
}

// Analyst renders the analysis prompt and parses the answer.
type Analyst struct {
	chat     Chatter
	template *PromptTemplate
}

// NewAnalyst wires a chat client and prompt. A nil template selects the built-in one.
func NewAnalyst(chat Chatter, tmpl *PromptTemplate) *Analyst {
	if tmpl == nil {
		tmpl = DefaultAnalysisTemplate()
	}
	return &Analyst{chat: chat, template: tmpl}
}

// Model returns the model the analyst queries.
func (a *Analyst) Model() string {
	return a.chat.Model()
}

// Analyze sends one user turn and parses the reply. req must be normalized.
func (a *Analyst) Analyze(ctx context.Context, req AnalysisRequest) (Analysis, error) {
	prompt, err := a.template.Render(PromptInput{
		Daily:  req.Mode == ModeDaily,
		Symbol: req.Symbol,
		Price:  req.Price,
	})
	if err != nil {
		return Analysis{}, err
	}
	resp, err := a.chat.Chat(ctx, &ChatRequest{
		Messages: []Message{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return Analysis{}, err
	}
	return ParseAnalysis(resp.Content), nil
}
