package market

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSeriesFiltersAndOrders(t *testing.T) {
	nan := math.NaN()
	series := NewSeries([]Row{
		ClosePoint(300, 3),
		ClosePoint(100, 1),
		ClosePoint(nan, 9),
		ClosePoint(200, nan),
		ClosePoint(200, 2),
		ClosePoint(math.Inf(1), 4),
	})

	require.Equal(t, 3, series.Len())
	assert.Equal(t, []int64{100, 200, 300}, series.Times())
	assert.Equal(t, []float64{1, 2, 3}, series.Closes())

	times := series.Times()
	for i := 1; i < len(times); i++ {
		assert.LessOrEqual(t, times[i-1], times[i])
	}
	for _, v := range series.Volumes() {
		assert.True(t, math.IsNaN(v))
	}
}

func TestSeriesTail(t *testing.T) {
	series := NewSeries([]Row{ClosePoint(1, 1), ClosePoint(2, 2), ClosePoint(3, 3)})

	assert.Equal(t, []float64{2, 3}, series.Tail(2).Closes())
	assert.Equal(t, 3, series.Tail(10).Len())
	assert.Equal(t, 3, series.Tail(0).Len())
}

func TestClampDays(t *testing.T) {
	assert.Equal(t, 30, ClampDays(0))
	assert.Equal(t, 1, ClampDays(-4))
	assert.Equal(t, 7, ClampDays(7))
	assert.Equal(t, 365, ClampDays(1000))
}
