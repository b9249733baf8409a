package indicator

import (
	"testing"

	"stock-insight/internal/dto"

	"github.com/stretchr/testify/assert"
)

func TestMovingAverage(t *testing.T) {
	tests := []struct {
		name   string
		series []float64
		period int
		want   float64
		wantOK bool
	}{
		{
			name:   "series shorter than period",
			series: []float64{1, 2, 3},
			period: 5,
			wantOK: false,
		},
		{
			name:   "exact window",
			series: []float64{10, 20, 30},
			period: 3,
			want:   20,
			wantOK: true,
		},
		{
			name:   "uses trailing window only",
			series: []float64{100, 100, 10, 20, 30},
			period: 3,
			want:   20,
			wantOK: true,
		},
		{
			name:   "zero period",
			series: []float64{1, 2, 3},
			period: 0,
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := MovingAverage(tt.series, tt.period)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.InDelta(t, tt.want, got, 1e-9)
			}
		})
	}
}

func TestRSI(t *testing.T) {
	t.Run("insufficient history returns neutral", func(t *testing.T) {
		assert.Equal(t, float64(50), RSI([]float64{100, 101}, 14))
	})

	t.Run("all gains returns 100", func(t *testing.T) {
		prices := make([]float64, 20)
		for i := range prices {
			prices[i] = 100 + float64(i)
		}
		assert.Equal(t, float64(100), RSI(prices, 14))
	})

	t.Run("stays inside bounds", func(t *testing.T) {
		prices := []float64{100, 98, 103, 99, 104, 101, 97, 105, 102, 100, 99, 106, 103, 101, 104, 98}
		got := RSI(prices, 14)
		assert.GreaterOrEqual(t, got, float64(0))
		assert.LessOrEqual(t, got, float64(100))
	})

	t.Run("all losses pushes toward zero", func(t *testing.T) {
		prices := make([]float64, 20)
		for i := range prices {
			prices[i] = 100 - float64(i)
		}
		assert.Equal(t, float64(0), RSI(prices, 14))
	})
}

func TestBollingerBands(t *testing.T) {
	t.Run("insufficient history returns zero struct", func(t *testing.T) {
		assert.Equal(t, dto.BollingerBands{}, BollingerBands([]float64{1, 2}, 20, 2))
	})

	t.Run("flat series collapses the bands", func(t *testing.T) {
		prices := make([]float64, 20)
		for i := range prices {
			prices[i] = 50
		}
		bb := BollingerBands(prices, 20, 2)
		assert.Equal(t, float64(50), bb.Mid)
		assert.Equal(t, float64(50), bb.Upper)
		assert.Equal(t, float64(50), bb.Lower)
		assert.Equal(t, float64(0), bb.Bandwidth)
	})

	t.Run("upper and lower straddle the mean", func(t *testing.T) {
		prices := []float64{10, 12, 11, 13, 12, 14, 13, 15, 14, 16, 15, 17, 16, 18, 17, 19, 18, 20, 19, 21}
		bb := BollingerBands(prices, 20, 2)
		assert.Greater(t, bb.Upper, bb.Mid)
		assert.Less(t, bb.Lower, bb.Mid)
		assert.Greater(t, bb.Bandwidth, float64(0))
	})
}

func makeDaily(n int) []dto.OHLCV {
	bars := make([]dto.OHLCV, n)
	for i := range bars {
		price := 100 + float64(i)
		bars[i] = dto.OHLCV{
			Open:   price - 0.5,
			High:   price + 1,
			Low:    price - 1,
			Close:  price,
			Volume: 1000 + float64(i)*10,
			Date:   "2025-01-02",
		}
	}
	return bars
}

func TestAggregateWeekly(t *testing.T) {
	t.Run("twelve daily bars become three weekly bars", func(t *testing.T) {
		daily := makeDaily(12)
		weekly := AggregateWeekly(daily)

		assert.Len(t, weekly, 3)

		// Chunks are cut from the newest end, so the oldest weekly bar
		// holds only the two leftover bars.
		assert.Equal(t, daily[0].Open, weekly[0].Open)
		assert.Equal(t, daily[1].Close, weekly[0].Close)
		assert.Equal(t, daily[0].Volume+daily[1].Volume, weekly[0].Volume)

		assert.Equal(t, daily[2].Open, weekly[1].Open)
		assert.Equal(t, daily[6].Close, weekly[1].Close)

		assert.Equal(t, daily[7].Open, weekly[2].Open)
		assert.Equal(t, daily[11].Close, weekly[2].Close)
		assert.Equal(t, daily[11].High, weekly[2].High)
		assert.Equal(t, daily[7].Low, weekly[2].Low)
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Empty(t, AggregateWeekly(nil))
	})
}

func TestWeeklyCloses(t *testing.T) {
	daily := makeDaily(12)
	closes := WeeklyCloses(daily)

	// One close per chunk, sampled at indexes 11, 6, 1 then reversed.
	assert.Equal(t, []float64{daily[1].Close, daily[6].Close, daily[11].Close}, closes)
}

func TestTrendStatus(t *testing.T) {
	tests := []struct {
		name              string
		price, ma20, ma60 float64
		want              dto.TrendStatus
	}{
		{"bullish alignment", 110, 105, 100, dto.TrendBullishAligned},
		{"bearish alignment", 90, 95, 100, dto.TrendBearishAligned},
		{"pullback between the averages", 102, 105, 100, dto.TrendPullback},
		{"rebound under the quarterly average", 98, 95, 100, dto.TrendRebound},
		{"choppy when averages cross", 100, 100, 100, dto.TrendChoppy},
		{"missing averages read as choppy", 100, 0, 0, dto.TrendChoppy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TrendStatus(tt.price, tt.ma20, tt.ma60))
		})
	}
}
