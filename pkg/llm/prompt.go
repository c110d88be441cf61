package llm

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"text/template"
)

// PromptTemplate wraps a text/template parsed from disk or from a string.
type PromptTemplate struct {
	path  string
	file  bool
	funcs template.FuncMap

	mu   sync.RWMutex
	tmpl *template.Template
	hash string
}

// NewPromptTemplate parses the template at path using the provided template functions.
func NewPromptTemplate(path string, funcs template.FuncMap) (*PromptTemplate, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("prompt template path is empty")
	}
	t := &PromptTemplate{
		path:  path,
		file:  true,
		funcs: funcs,
	}
	if err := t.reload(); err != nil {
		return nil, err
	}
	return t, nil
}

// ParsePromptTemplate builds a template from text. Reload is a no-op for it.
func ParsePromptTemplate(name, text string, funcs template.FuncMap) (*PromptTemplate, error) {
	t := &PromptTemplate{path: name, funcs: funcs}
	if err := t.parse(name, []byte(text)); err != nil {
		return nil, err
	}
	return t, nil
}

// Render executes the template with the provided data and returns the rendered string.
func (t *PromptTemplate) Render(data any) (string, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.tmpl == nil {
		return "", fmt.Errorf("prompt template %q not parsed", t.path)
	}

	var buf bytes.Buffer
	if err := t.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("execute prompt template %q: %w", t.path, err)
	}
	return strings.TrimSpace(buf.String()), nil
}

// Reload reparses a file-backed template from disk.
func (t *PromptTemplate) Reload() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.file {
		return nil
	}
	return t.reload()
}

func (t *PromptTemplate) reload() error {
	data, err := os.ReadFile(t.path)
	if err != nil {
		return fmt.Errorf("read prompt template %q: %w", t.path, err)
	}
	return t.parse(filepath.Base(t.path), data)
}

func (t *PromptTemplate) parse(name string, data []byte) error {
	tmpl := template.New(name).Option("missingkey=error")
	if len(t.funcs) > 0 {
		tmpl = tmpl.Funcs(t.funcs)
	}
	if _, err := tmpl.Parse(string(data)); err != nil {
		return fmt.Errorf("parse prompt template %q: %w", t.path, err)
	}
	t.tmpl = tmpl
	t.hash = computeDigest(data)
	return nil
}

// Digest returns the sha256 hash of the template content.
func (t *PromptTemplate) Digest() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.hash
}

func computeDigest(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Analysis modes.
const (
	ModeDaily  = "daily"
	ModeSymbol = "symbol"
)

// analysisPrompt asks for one JSON object. Daily mode lets the model pick a
// ticker; symbol mode analyses the requested one.
const analysisPrompt = `Return ONLY valid JSON with these keys:
{
  "ticker": "{{if .Daily}}AAPL{{else}}{{.Symbol}}{{end}}",
  "recommendation": "BUY|HOLD|AVOID",
  "why": ["bullet1","bullet2","bullet3","bullet4"],
  "risks": ["risk1","risk2"],
  "day_plan": "1-2 sentences",
  "note": "Educational only. Not financial advice."
}
{{if .Daily}}
Pick ONE US stock for TODAY. Keep it simple and realistic.
{{else}}
Analyze {{.Symbol}}. Price (if provided): {{or .Price "unknown"}}.
Keep it beginner friendly.
{{end}}`

// PromptInput feeds the analysis template.
type PromptInput struct {
	Daily  bool
	Symbol string
	Price  string
}

// DefaultAnalysisTemplate returns the built-in analysis prompt.
func DefaultAnalysisTemplate() *PromptTemplate {
	t, err := ParsePromptTemplate("analysis", analysisPrompt, nil)
	if err != nil {
		panic(err)
	}
	return t
}

// LoadAnalysisTemplate reads path when set and falls back to the built-in prompt.
func LoadAnalysisTemplate(path string) (*PromptTemplate, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultAnalysisTemplate(), nil
	}
	return NewPromptTemplate(path, nil)
}
