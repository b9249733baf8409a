package indicator

import (
	"math"

	"stock-insight/internal/dto"
)

// MovingAverage returns the arithmetic mean of the last period values.
// ok is false when the series is too short; the value is then 0 and must
// be treated as "no reading", not as a price of zero.
func MovingAverage(series []float64, period int) (float64, bool) {
	if period <= 0 || len(series) < period {
		return 0, false
	}
	sum := 0.0
	for _, v := range series[len(series)-period:] {
		sum += v
	}
	return sum / float64(period), true
}

// RSI computes a trailing average gain/loss ratio over the last period
// deltas. Returns 50 when there is not enough history and 100 when the
// window has no losses at all.
func RSI(prices []float64, period int) float64 {
	if len(prices) <= period {
		return 50
	}

	gains, losses := 0.0, 0.0
	for i := len(prices) - period; i < len(prices); i++ {
		diff := prices[i] - prices[i-1]
		if diff >= 0 {
			gains += diff
		} else {
			losses -= diff
		}
	}

	avgGain := gains / float64(period)
	avgLoss := losses / float64(period)

	if avgLoss == 0 {
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - (100 / (1 + rs))
}

// BollingerBands uses the population standard deviation over the trailing
// window. A zero struct means insufficient history.
func BollingerBands(prices []float64, period int, stdDevMultiplier float64) dto.BollingerBands {
	if len(prices) < period {
		return dto.BollingerBands{}
	}

	window := prices[len(prices)-period:]
	avg := 0.0
	for _, v := range window {
		avg += v
	}
	avg /= float64(period)

	variance := 0.0
	for _, v := range window {
		variance += (v - avg) * (v - avg)
	}
	variance /= float64(period)
	stdDev := math.Sqrt(variance)

	upper := avg + stdDevMultiplier*stdDev
	lower := avg - stdDevMultiplier*stdDev

	return dto.BollingerBands{
		Upper:     upper,
		Mid:       avg,
		Lower:     lower,
		Bandwidth: (upper - lower) / avg * 100,
	}
}

// WeeklyCloses reduces a daily series to one close per 5-bar chunk,
// newest chunk first during grouping, returned oldest-first.
func WeeklyCloses(daily []dto.OHLCV) []float64 {
	var closes []float64
	for i := len(daily) - 1; i >= 0; i -= 5 {
		closes = append(closes, daily[i].Close)
	}
	reverseFloats(closes)
	return closes
}

// AggregateWeekly groups daily bars into non-overlapping chunks of 5,
// most-recent-first, so the final partial chunk (if any) is the oldest
// week. Each chunk becomes one weekly bar: open from the chunk's oldest
// bar, close from its newest, high/low/volume aggregated. The result is
// oldest-first.
func AggregateWeekly(daily []dto.OHLCV) []dto.OHLCV {
	var weekly []dto.OHLCV

	for end := len(daily); end > 0; end -= 5 {
		start := end - 5
		if start < 0 {
			start = 0
		}
		chunk := daily[start:end]

		bar := dto.OHLCV{
			Open:  chunk[0].Open,
			Close: chunk[len(chunk)-1].Close,
			High:  chunk[0].High,
			Low:   chunk[0].Low,
			Date:  chunk[len(chunk)-1].Date,
		}
		for _, d := range chunk {
			if d.High > bar.High {
				bar.High = d.High
			}
			if d.Low < bar.Low {
				bar.Low = d.Low
			}
			bar.Volume += d.Volume
		}
		weekly = append(weekly, bar)
	}

	reverseBars(weekly)
	return weekly
}

// TrendStatus applies the literal four-branch MA alignment table. The
// rebound branch is kept as-is even though it cannot fire when ma20 is
// above ma60; downstream labels depend on the exact set.
func TrendStatus(price, ma20, ma60 float64) dto.TrendStatus {
	switch {
	case price > ma20 && ma20 > ma60:
		return dto.TrendBullishAligned
	case price < ma20 && ma20 < ma60:
		return dto.TrendBearishAligned
	case price > ma60 && price < ma20:
		return dto.TrendPullback
	case price < ma60 && price > ma20:
		return dto.TrendRebound
	default:
		return dto.TrendChoppy
	}
}

func reverseFloats(s []float64) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}

func reverseBars(s []dto.OHLCV) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
