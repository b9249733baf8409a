package scoring

import (
	"testing"

	"stock-insight/pkg/utils"

	"github.com/stretchr/testify/assert"
)

func TestCalculateBounds(t *testing.T) {
	t.Run("everything bullish stays at or under 100", func(t *testing.T) {
		result := Calculate(Input{
			Price:         105,
			ChangePercent: 4,
			Volume:        5000,
			MA20:          utils.ToPointer(100.0),
			MA60:          utils.ToPointer(95.0),
			AvgVol5:       utils.ToPointer(1000.0),
			ROE:           20,
			PE:            utils.ToPointer(15.0),
			Trust5d:       utils.ToPointer(800.0),
			Foreign5d:     utils.ToPointer(3000.0),
			TrustStreak:   5,
		})
		assert.LessOrEqual(t, result.Score, 100)
		assert.GreaterOrEqual(t, result.Score, 80)
		assert.Equal(t, ActionStrongBuy, result.Action)
	})

	t.Run("everything bearish stays at or above 0", func(t *testing.T) {
		result := Calculate(Input{
			Price:           90,
			ChangePercent:   -6,
			Volume:          500,
			MA20:            utils.ToPointer(100.0),
			MA60:            utils.ToPointer(105.0),
			Trust5d:         utils.ToPointer(-900.0),
			Foreign5d:       utils.ToPointer(-3000.0),
			MarketBelowMA20: true,
		})
		assert.GreaterOrEqual(t, result.Score, 0)
		assert.LessOrEqual(t, result.Score, 25)
	})
}

func TestCalculateReasonsNeverEmpty(t *testing.T) {
	result := Calculate(Input{Price: 100})
	assert.NotEmpty(t, result.Reasons)
	assert.Equal(t, []Reason{ReasonInsufficientSignal}, result.Reasons)
	assert.Equal(t, baseline, result.Score)
	assert.Equal(t, ActionNeutral, result.Action)
}

func TestCalculateLeanLongScenario(t *testing.T) {
	// Healthy momentum (+8), above the monthly average (+10) and bullish
	// alignment (+10) on top of the 50 baseline.
	result := Calculate(Input{
		Price:         105,
		ChangePercent: 4,
		MA20:          utils.ToPointer(100.0),
		MA60:          utils.ToPointer(95.0),
	})

	assert.Equal(t, 78, result.Score)
	assert.Equal(t, ActionLeanLong, result.Action)
	assert.ElementsMatch(t, []Reason{
		ReasonHealthyMomentum,
		ReasonAboveMA20,
		ReasonBullishAlignment,
	}, result.Reasons)
}

func TestCalculateHeuristics(t *testing.T) {
	tests := []struct {
		name       string
		input      Input
		wantReason Reason
	}{
		{
			name:       "volume attack",
			input:      Input{Price: 100, Volume: 2000, AvgVol5: utils.ToPointer(1000.0)},
			wantReason: ReasonVolumeAttack,
		},
		{
			name:       "below monthly average",
			input:      Input{Price: 95, MA20: utils.ToPointer(100.0)},
			wantReason: ReasonBelowMA20,
		},
		{
			name:       "overheated bias",
			input:      Input{Price: 115, MA20: utils.ToPointer(100.0)},
			wantReason: ReasonOverheated,
		},
		{
			name:       "trust accumulation beats streak",
			input:      Input{Price: 100, Trust5d: utils.ToPointer(600.0), TrustStreak: 4},
			wantReason: ReasonTrustAccumulating,
		},
		{
			name:       "trust streak without big sum",
			input:      Input{Price: 100, Trust5d: utils.ToPointer(100.0), TrustStreak: 3},
			wantReason: ReasonTrustBuyStreak,
		},
		{
			name:       "trust retreat",
			input:      Input{Price: 100, Trust5d: utils.ToPointer(-700.0)},
			wantReason: ReasonTrustRetreating,
		},
		{
			name:       "foreign bearish",
			input:      Input{Price: 100, Foreign5d: utils.ToPointer(-2500.0)},
			wantReason: ReasonForeignBearish,
		},
		{
			name:       "weak market drag",
			input:      Input{Price: 100, MarketBelowMA20: true},
			wantReason: ReasonWeakMarket,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Calculate(tt.input)
			assert.Contains(t, result.Reasons, tt.wantReason)
		})
	}
}

func TestActionBands(t *testing.T) {
	tests := []struct {
		score int
		want  string
	}{
		{100, ActionStrongBuy},
		{80, ActionStrongBuy},
		{79, ActionLeanLong},
		{65, ActionLeanLong},
		{64, ActionNeutral},
		{45, ActionNeutral},
		{44, ActionDefensive},
		{25, ActionDefensive},
		{24, ActionAvoid},
		{0, ActionAvoid},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, actionFor(tt.score), "score %d", tt.score)
	}
}

func TestReasonString(t *testing.T) {
	assert.Equal(t, "投信大舉佈局", ReasonTrustAccumulating.String())
	assert.Equal(t, "盤勢待確認", ReasonInsufficientSignal.String())
}
