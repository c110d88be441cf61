package market

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupMetal(t *testing.T) {
	for _, in := range []string{"XAU", "xau", "gold", " Gold ", "XAUUSD=X"} {
		m, ok := LookupMetal(in)
		require.True(t, ok, in)
		assert.Equal(t, "XAU", m.Symbol)
		assert.Equal(t, "GC=F", m.YahooTicker)
		assert.Equal(t, "GOLD", m.AlphaVantageCode)
	}

	pd, ok := LookupMetal("palladium")
	require.True(t, ok)
	assert.False(t, pd.HasSpotFeed)

	_, ok = LookupMetal("copper")
	assert.False(t, ok)
}

func TestSearchMetals(t *testing.T) {
	got := SearchMetals("pla")
	require.Len(t, got, 1)
	assert.Equal(t, "XPT", got[0].Symbol)

	assert.Len(t, SearchMetals("spot"), 4)
	assert.Empty(t, SearchMetals("  "))
}
