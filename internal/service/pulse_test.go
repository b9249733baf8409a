package service

import (
	"context"
	"testing"
	"time"

	"stock-insight/config"
	"stock-insight/internal/dto"
	"stock-insight/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scoredAnalyzer struct {
	scores map[string]int
	modes  map[dto.AnalyzeMode]int
}

func (s *scoredAnalyzer) GetAnalyze(_ context.Context, symbol string, mode dto.AnalyzeMode) dto.AnalysisDetail {
	if s.modes == nil {
		s.modes = map[dto.AnalyzeMode]int{}
	}
	s.modes[mode]++

	score := 50
	if v, ok := s.scores[symbol]; ok {
		score = v
	}
	return dto.AnalysisDetail{
		ID:   symbol,
		Name: symbol,
		Analysis: dto.AnalysisSummary{
			Score:  score,
			Action: "中性觀望",
		},
	}
}

func newTestPulseService(analyzer AnalyzerService, quote *dto.Quote) (PulseService, WatchlistService) {
	cfg := &config.Config{
		Scan: config.Scan{
			MaxSectors:         3,
			MaxStocksPerSector: 6,
		},
	}
	watchlist := NewWatchlistService()
	loc, _ := time.LoadLocation("Asia/Taipei")
	svc := NewPulseService(cfg, logger.NewNop(), &stubQuoteService{quote: quote}, analyzer, watchlist, loc)
	svc.(*pulseService).sleepFn = func(context.Context, time.Duration) {}
	return svc, watchlist
}

func TestGetMarketPulseScansCappedTaxonomy(t *testing.T) {
	analyzer := &scoredAnalyzer{scores: map[string]int{}}
	svc, _ := newTestPulseService(analyzer, &dto.Quote{Price: 22000, Change: 150, ChangePercent: 0.7})

	pulse, err := svc.GetMarketPulse(context.Background())
	require.NoError(t, err)

	require.Len(t, pulse.Sectors, 3)
	for i, name := range dto.SectorOrder[:3] {
		assert.Equal(t, name, pulse.Sectors[i].Name)
		assert.Len(t, pulse.Sectors[i].Stocks, 6)
		assert.Equal(t, 50, pulse.Sectors[i].Score)
	}

	// Every symbol goes through pulse mode only.
	assert.Equal(t, 18, analyzer.modes[dto.ModePulse])
	assert.Zero(t, analyzer.modes[dto.ModeFull])

	assert.Len(t, pulse.Trends, 3)
	assert.Equal(t, "加權指數", pulse.Trends[0].Name)
	assert.Equal(t, "市場運行穩健", pulse.Warning)
	assert.Empty(t, pulse.Recommendations)
}

func TestGetMarketPulseRecommendations(t *testing.T) {
	analyzer := &scoredAnalyzer{scores: map[string]int{
		"2330": 92,
		"2454": 80,
		"2317": 76,
		"2382": 75,
		"2603": 78,
		"2303": 40,
	}}
	svc, _ := newTestPulseService(analyzer, &dto.Quote{Price: 22000, ChangePercent: 0.2})

	pulse, err := svc.GetMarketPulse(context.Background())
	require.NoError(t, err)

	// Five symbols clear the bar; only the top four survive, best first.
	require.Len(t, pulse.Recommendations, 4)
	assert.Equal(t, "2330", pulse.Recommendations[0].ID)
	assert.Equal(t, 92, pulse.Recommendations[0].Score)
	for i := 1; i < len(pulse.Recommendations); i++ {
		assert.GreaterOrEqual(t,
			pulse.Recommendations[i-1].Score,
			pulse.Recommendations[i].Score)
	}
}

func TestGetMarketPulseWarning(t *testing.T) {
	analyzer := &scoredAnalyzer{}
	svc, _ := newTestPulseService(analyzer, &dto.Quote{Price: 21000, Change: -300, ChangePercent: -1.4})

	pulse, err := svc.GetMarketPulse(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "大盤修正風險，建議保守", pulse.Warning)
}

func TestGetMarketPulseStoresResult(t *testing.T) {
	analyzer := &scoredAnalyzer{}
	svc, watchlist := newTestPulseService(analyzer, &dto.Quote{Price: 22000})

	_, err := svc.GetMarketPulse(context.Background())
	require.NoError(t, err)

	stored, ok := watchlist.Pulse()
	assert.True(t, ok)
	assert.Len(t, stored.Sectors, 3)
}
