package indicator

import (
	"fmt"
	"strconv"
	"strings"

	"stock-insight/internal/dto"
)

const (
	dojiBodyRatio     = 0.15
	longBodyRatio     = 0.025
	shadowBodyRatio   = 1.5
	volExplosionRatio = 1.8
	volShrinkRatio    = 0.6
	gapRatio          = 0.01
)

// ClassifyCandle renders one bar as a compact textual token: body type,
// shadow bias, volume anomaly and gap versus the previous close. Body
// classification is mutually exclusive (doji overrides long overrides a
// plain red/black bar); feature tags may co-occur.
func ClassifyCandle(cur dto.OHLCV, prevClose, avgVol float64) string {
	body := abs(cur.Close - cur.Open)
	barRange := cur.High - cur.Low
	upperShadow := cur.High - max(cur.Open, cur.Close)
	lowerShadow := min(cur.Open, cur.Close) - cur.Low

	isRed := cur.Close > cur.Open
	isDoji := body <= barRange*dojiBodyRatio
	isLong := body >= cur.Close*longBodyRatio

	desc := "黑"
	if isRed {
		desc = "紅"
	}
	if isDoji {
		desc = "十字"
	} else if isLong {
		if isRed {
			desc = "長紅"
		} else {
			desc = "長黑"
		}
	}

	var features []string
	if upperShadow > body*shadowBodyRatio && upperShadow > lowerShadow {
		features = append(features, "上影")
	}
	if lowerShadow > body*shadowBodyRatio && lowerShadow > upperShadow {
		features = append(features, "下影")
	}

	if avgVol > 0 && cur.Volume > avgVol*volExplosionRatio {
		features = append(features, "爆量")
	} else if avgVol > 0 && cur.Volume < avgVol*volShrinkRatio {
		features = append(features, "量縮")
	}

	if prevClose > 0 {
		if cur.Low > prevClose*(1+gapRatio) {
			features = append(features, "跳空漲")
		}
		if cur.High < prevClose*(1-gapRatio) {
			features = append(features, "跳空跌")
		}
	}

	if len(features) == 0 {
		return desc
	}
	return desc + "(" + strings.Join(features, ",") + ")"
}

// PatternStream maps the last limit bars through ClassifyCandle, pairing
// each with the previous close and a percent change, and joins them into
// an ordered human-readable trace. Deterministic for identical input.
func PatternStream(bars []dto.OHLCV, limit int) string {
	if len(bars) == 0 {
		return "無數據"
	}

	target := bars
	if len(bars) > limit {
		target = bars[len(bars)-limit:]
	}

	// 5-bar average volume as the anomaly baseline.
	volMA := bars[0].Volume
	if len(bars) >= 5 {
		sum := 0.0
		for _, b := range bars[len(bars)-5:] {
			sum += b.Volume
		}
		volMA = sum / 5
	}

	parts := make([]string, 0, len(target))
	for i, d := range target {
		prevClose := 0.0
		if i > 0 {
			prevClose = target[i-1].Close
		} else if len(bars) > limit {
			// First bar of the window pairs with the close just before it.
			prevClose = bars[len(bars)-limit-1].Close
		}

		tag := ClassifyCandle(d, prevClose, volMA)
		change := "0"
		if prevClose > 0 {
			change = strconv.FormatFloat((d.Close-prevClose)/prevClose*100, 'f', 1, 64)
		}

		// YYYY-MM-DD collapses to MM-DD; a synthetic bar falls back to
		// its index.
		label := strconv.Itoa(i)
		if len(d.Date) > 5 {
			label = d.Date[5:]
		}

		parts = append(parts, fmt.Sprintf("[%s] %s(%s%%): %s",
			label, strconv.FormatFloat(d.Close, 'f', -1, 64), change, tag))
	}

	return strings.Join(parts, " -> ")
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
