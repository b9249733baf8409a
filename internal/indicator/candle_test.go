package indicator

import (
	"strings"
	"testing"

	"stock-insight/internal/dto"

	"github.com/stretchr/testify/assert"
)

func TestClassifyCandle(t *testing.T) {
	tests := []struct {
		name      string
		bar       dto.OHLCV
		prevClose float64
		avgVol    float64
		want      []string
		notWant   []string
	}{
		{
			name:   "long red body",
			bar:    dto.OHLCV{Open: 100, High: 106, Low: 99.5, Close: 105, Volume: 1000},
			avgVol: 1000,
			want:   []string{"長紅"},
		},
		{
			name:   "long black body",
			bar:    dto.OHLCV{Open: 105, High: 105.5, Low: 99, Close: 100, Volume: 1000},
			avgVol: 1000,
			want:   []string{"長黑"},
		},
		{
			name:   "doji overrides body length",
			bar:    dto.OHLCV{Open: 100, High: 103, Low: 97, Close: 100.1, Volume: 1000},
			avgVol: 1000,
			want:   []string{"十字"},
		},
		{
			name:   "upper shadow tagged",
			bar:    dto.OHLCV{Open: 100, High: 104, Low: 99.9, Close: 100.8, Volume: 1000},
			avgVol: 1000,
			want:   []string{"上影"},
		},
		{
			name:   "volume explosion",
			bar:    dto.OHLCV{Open: 100, High: 106, Low: 100, Close: 105, Volume: 2000},
			avgVol: 1000,
			want:   []string{"爆量"},
		},
		{
			name:   "volume shrink",
			bar:    dto.OHLCV{Open: 100, High: 106, Low: 100, Close: 105, Volume: 400},
			avgVol: 1000,
			want:   []string{"量縮"},
		},
		{
			name:      "gap up against previous close",
			bar:       dto.OHLCV{Open: 103, High: 106, Low: 102, Close: 105, Volume: 1000},
			prevClose: 100,
			avgVol:    1000,
			want:      []string{"跳空漲"},
		},
		{
			name:      "gap down against previous close",
			bar:       dto.OHLCV{Open: 96, High: 97, Low: 94, Close: 95, Volume: 1000},
			prevClose: 100,
			avgVol:    1000,
			want:      []string{"跳空跌"},
			notWant:   []string{"跳空漲"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyCandle(tt.bar, tt.prevClose, tt.avgVol)
			for _, token := range tt.want {
				assert.Contains(t, got, token)
			}
			for _, token := range tt.notWant {
				assert.NotContains(t, got, token)
			}
		})
	}
}

func TestPatternStream(t *testing.T) {
	t.Run("empty input", func(t *testing.T) {
		assert.Equal(t, "無數據", PatternStream(nil, 12))
	})

	t.Run("deterministic for identical input", func(t *testing.T) {
		bars := makeDaily(30)
		assert.Equal(t, PatternStream(bars, 12), PatternStream(bars, 12))
	})

	t.Run("window is capped at limit", func(t *testing.T) {
		bars := makeDaily(30)
		stream := PatternStream(bars, 12)
		assert.Equal(t, 12, len(strings.Split(stream, " -> ")))
	})

	t.Run("short series keeps every bar", func(t *testing.T) {
		bars := makeDaily(4)
		stream := PatternStream(bars, 12)
		assert.Equal(t, 4, len(strings.Split(stream, " -> ")))
	})

	t.Run("date label drops the year", func(t *testing.T) {
		bars := []dto.OHLCV{{Open: 100, High: 101, Low: 99, Close: 100.5, Volume: 1000, Date: "2025-03-14"}}
		assert.Contains(t, PatternStream(bars, 12), "[03-14]")
	})

	t.Run("synthetic bar falls back to its index", func(t *testing.T) {
		bars := []dto.OHLCV{{Open: 100, High: 101, Low: 99, Close: 100.5, Volume: 1000, Date: "Today"}}
		assert.Contains(t, PatternStream(bars, 12), "[0]")
	})

	t.Run("window start pairs with the close just before it", func(t *testing.T) {
		bars := makeDaily(13)
		stream := PatternStream(bars, 12)
		first := strings.Split(stream, " -> ")[0]

		// bars[1] close 101 vs bars[0] close 100: +1.0%
		assert.Contains(t, first, "(1.0%)")
	})
}
