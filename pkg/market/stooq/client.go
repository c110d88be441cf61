package stooq

import (
	"bytes"
	"context"
	"encoding/csv"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/zeromicro/go-zero/core/logx"

	"marketdash-api/pkg/market"
	"marketdash-api/pkg/market/transport"
)

const (
	providerName   = market.ProviderStooq
	defaultBaseURL = "https://stooq.com/q/d/l"
	// Stooq lists US equities under a ".us" suffix.
	usSuffix = ".us"
	// header plus at least two rows
	minLines = 3
)

// Row is one daily line of the CSV export. Close is NaN when unparsable.
type Row struct {
	Date   string
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Client downloads keyless daily history from Stooq.
type Client struct {
	baseURL string
	http    *transport.Client
}

// Option configures a new Client.
type Option func(*Client)

// WithBaseURL overrides the CSV download root.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.baseURL = strings.TrimRight(u, "/")
		}
	}
}

// WithTransport injects the HTTP transport.
func WithTransport(t *transport.Client) Option {
	return func(c *Client) {
		if t != nil {
			c.http = t
		}
	}
}

// NewClient constructs a Stooq client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL: defaultBaseURL,
		http:    transport.New(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Daily fetches the full daily export for a US symbol, oldest first. Rows
// without a date or close are skipped.
func (c *Client) Daily(ctx context.Context, symbol string) ([]Row, error) {
	params := url.Values{}
	params.Set("s", strings.ToLower(strings.TrimSpace(symbol))+usSuffix)
	params.Set("i", "d")
	endpoint := c.baseURL + "/?" + params.Encode()

	resp, err := c.http.Get(ctx, endpoint, http.Header{"Accept": {"text/csv"}})
	if err != nil {
		logx.WithContext(ctx).Errorf("stooq: daily symbol=%s err=%v", symbol, err)
		return nil, market.NetworkError(providerName, err)
	}
	if !resp.OK() {
		return nil, market.UpstreamError(providerName, http.StatusBadGateway, "History fetch failed",
			map[string]any{"status": resp.Status})
	}
	return ParseCSV(resp.Body)
}

// ParseCSV reads Date,Open,High,Low,Close,Volume lines. Exports with fewer
// than two data lines, such as the plain "No data" answer, are not found.
func ParseCSV(body []byte) ([]Row, error) {
	r := csv.NewReader(bytes.NewReader(bytes.TrimSpace(body)))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.TrimLeadingSpace = true

	var records [][]string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, market.UpstreamError(providerName, http.StatusBadGateway, "History fetch failed", err.Error())
		}
		records = append(records, rec)
	}
	if len(records) < minLines {
		return nil, market.NotFoundError("No history data", nil)
	}

	rows := make([]Row, 0, len(records)-1)
	for _, rec := range records[1:] {
		if len(rec) < 5 || rec[0] == "" || rec[4] == "" || rec[4] == "null" {
			continue
		}
		row := Row{
			Date:   rec[0],
			Open:   parseNum(rec[1]),
			High:   parseNum(rec[2]),
			Low:    parseNum(rec[3]),
			Close:  parseNum(rec[4]),
			Volume: math.NaN(),
		}
		if len(rec) > 5 {
			row.Volume = parseNum(rec[5])
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func parseNum(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || !market.Finite(f) {
		return math.NaN()
	}
	return f
}
