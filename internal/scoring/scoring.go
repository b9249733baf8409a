package scoring

import "math"

// Reason is a structured heuristic code. Rendering to display text happens
// at the presentation boundary via String.
type Reason int

const (
	ReasonHealthyMomentum Reason = iota
	ReasonStrongButExtended
	ReasonShortTermWeakness
	ReasonVolumeAttack
	ReasonAboveMA20
	ReasonBelowMA20
	ReasonBullishAlignment
	ReasonOverheated
	ReasonTrustAccumulating
	ReasonTrustBuyStreak
	ReasonTrustRetreating
	ReasonForeignBullish
	ReasonForeignBearish
	ReasonHighROE
	ReasonGrowthValuation
	ReasonWeakMarket
	ReasonInsufficientSignal
)

var reasonText = map[Reason]string{
	ReasonHealthyMomentum:    "健康拉抬區間",
	ReasonStrongButExtended:  "強勢但防回檔",
	ReasonShortTermWeakness:  "短線跌勢轉重",
	ReasonVolumeAttack:       "爆量攻擊訊號",
	ReasonAboveMA20:          "站上月線關鍵位",
	ReasonBelowMA20:          "跌破月線轉弱",
	ReasonBullishAlignment:   "多頭排列格局",
	ReasonOverheated:         "短線過熱警示",
	ReasonTrustAccumulating:  "投信大舉佈局",
	ReasonTrustBuyStreak:     "投信連續買超",
	ReasonTrustRetreating:    "投信連番撤出",
	ReasonForeignBullish:     "外資趨勢偏多",
	ReasonForeignBearish:     "外資趨勢偏空",
	ReasonHighROE:            "高ROE品質保證",
	ReasonGrowthValuation:    "估值仍在成長區",
	ReasonWeakMarket:         "大盤疲弱拖累",
	ReasonInsufficientSignal: "盤勢待確認",
}

func (r Reason) String() string {
	return reasonText[r]
}

// Action bands over the final score.
const (
	ActionStrongBuy = "強力買進"
	ActionLeanLong  = "偏多操作"
	ActionNeutral   = "中性觀望"
	ActionDefensive = "保守避險"
	ActionAvoid     = "建議觀望"
)

// Input is the feature bundle scored by Calculate. Pointer fields encode
// "unknown"; a nil MA or flow value never triggers its heuristics.
type Input struct {
	Price           float64
	ChangePercent   float64
	Volume          float64
	MA20            *float64
	MA60            *float64
	AvgVol5         *float64
	ROE             float64
	PE              *float64
	Trust5d         *float64
	Foreign5d       *float64
	TrustStreak     int
	MarketBelowMA20 bool
}

type Result struct {
	Score   int
	Action  string
	Reasons []Reason
}

// ReasonStrings renders the reason codes for the presentation layer.
func (r Result) ReasonStrings() []string {
	out := make([]string, 0, len(r.Reasons))
	for _, reason := range r.Reasons {
		out = append(out, reason.String())
	}
	return out
}

// Heuristic weights. Fixed constants; the bands and thresholds are part of
// the scoring contract.
const (
	baseline = 50

	momentumHealthyWeight  = 8
	momentumExtendedWeight = 5
	momentumWeakWeight     = -8
	volumeAttackWeight     = 5
	ma20Weight             = 10
	alignmentWeight        = 10
	overheatWeight         = -5
	trustStrongWeight      = 15
	trustStreakWeight      = 8
	trustWeakWeight        = -12
	foreignWeight          = 8
	roeWeight              = 8
	valuationWeight        = 7
	weakMarketWeight       = -5
)

// Calculate maps the feature bundle to a clamped 0-100 score, an action
// band and the list of triggered heuristics. The reasons list is never
// empty.
func Calculate(in Input) Result {
	score := float64(baseline)
	var reasons []Reason

	add := func(weight int, reason Reason) {
		score += float64(weight)
		reasons = append(reasons, reason)
	}

	switch {
	case in.ChangePercent > 3 && in.ChangePercent < 7:
		add(momentumHealthyWeight, ReasonHealthyMomentum)
	case in.ChangePercent >= 7:
		add(momentumExtendedWeight, ReasonStrongButExtended)
	case in.ChangePercent < -4:
		add(momentumWeakWeight, ReasonShortTermWeakness)
	}

	if in.AvgVol5 != nil && in.Volume > *in.AvgVol5*1.5 {
		add(volumeAttackWeight, ReasonVolumeAttack)
	}

	if in.MA20 != nil {
		ma20 := *in.MA20
		if in.Price > ma20 {
			add(ma20Weight, ReasonAboveMA20)
		} else {
			add(-ma20Weight, ReasonBelowMA20)
		}
		if in.MA60 != nil && in.Price > ma20 && ma20 > *in.MA60 {
			add(alignmentWeight, ReasonBullishAlignment)
		}
		if bias := (in.Price - ma20) / ma20 * 100; bias > 10 {
			add(overheatWeight, ReasonOverheated)
		}
	}

	trust := 0.0
	if in.Trust5d != nil {
		trust = *in.Trust5d
	}
	foreign := 0.0
	if in.Foreign5d != nil {
		foreign = *in.Foreign5d
	}

	switch {
	case trust > 500:
		add(trustStrongWeight, ReasonTrustAccumulating)
	case in.TrustStreak >= 3:
		add(trustStreakWeight, ReasonTrustBuyStreak)
	case trust < -500:
		add(trustWeakWeight, ReasonTrustRetreating)
	}

	if foreign > 2000 {
		add(foreignWeight, ReasonForeignBullish)
	} else if foreign < -2000 {
		add(-foreignWeight, ReasonForeignBearish)
	}

	if in.ROE >= 15 {
		add(roeWeight, ReasonHighROE)
	}
	if in.PE != nil && *in.PE > 0 && *in.PE < 20 {
		add(valuationWeight, ReasonGrowthValuation)
	}
	if in.MarketBelowMA20 {
		add(weakMarketWeight, ReasonWeakMarket)
	}

	final := int(math.Round(score))
	if final > 100 {
		final = 100
	}
	if final < 0 {
		final = 0
	}

	if len(reasons) == 0 {
		reasons = []Reason{ReasonInsufficientSignal}
	}

	return Result{Score: final, Action: actionFor(final), Reasons: reasons}
}

func actionFor(score int) string {
	switch {
	case score >= 80:
		return ActionStrongBuy
	case score >= 65:
		return ActionLeanLong
	case score >= 45:
		return ActionNeutral
	case score >= 25:
		return ActionDefensive
	default:
		return ActionAvoid
	}
}
