package yahoo

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/dnaeon/go-vcr/recorder"
	"github.com/stretchr/testify/assert"

	"marketdash-api/pkg/market/transport"
)

// Replays a gold futures chart call from testdata/cassettes. Delete the
// cassette and set RECORD_CASSETTES=1 to record a fresh one.
func TestClient_Chart_Recorded(t *testing.T) {
	cassette := filepath.Join("testdata", "cassettes", "yahoo_gold_chart")
	if _, err := os.Stat(cassette + ".yaml"); os.IsNotExist(err) {
		if os.Getenv("RECORD_CASSETTES") != "1" {
			t.Skipf("cassette missing; set RECORD_CASSETTES=1 to record: %s", cassette)
		}
		err := os.MkdirAll(filepath.Dir(cassette), 0o755)
		assert.NoError(t, err, "mkdir cassettes dir should succeed")
	}

	r, err := recorder.New(cassette)
	assert.NoError(t, err, "recorder.New should not error")
	defer func() { _ = r.Stop() }()

	client := NewClient(WithTransport(transport.New(
		transport.WithHTTPClient(&http.Client{Transport: r}),
		transport.WithUserAgent(userAgent),
	)))
	chart, err := client.Chart(context.Background(), "GC=F", "5d", "1d")
	assert.NoError(t, err, "Chart should not error")
	assert.False(t, chart.Empty(), "chart should carry a result")
	assert.Greater(t, chart.Meta.RegularMarketPrice, 0.0, "price should be positive")
	assert.Greater(t, chart.Series.Len(), 0, "series should not be empty")
	if r.Mode() == recorder.ModeReplaying {
		assert.Equal(t, 2095.7, chart.Meta.RegularMarketPrice)
		assert.Equal(t, 2054.7, chart.Meta.PreviousClose)
		assert.Equal(t, 5, chart.Series.Len())
	}
}
