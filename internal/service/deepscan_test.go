package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"stock-insight/config"
	"stock-insight/internal/dto"
	"stock-insight/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAnalyzer struct {
	mu    sync.Mutex
	calls map[string]int
	modes []dto.AnalyzeMode
}

func newStubAnalyzer() *stubAnalyzer {
	return &stubAnalyzer{calls: map[string]int{}}
}

func (s *stubAnalyzer) GetAnalyze(_ context.Context, symbol string, mode dto.AnalyzeMode) dto.AnalysisDetail {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls[symbol]++
	s.modes = append(s.modes, mode)
	return dto.AnalysisDetail{
		ID:   symbol,
		Name: symbol,
		Analysis: dto.AnalysisSummary{
			Score:  72,
			Action: "偏多操作",
		},
	}
}

func (s *stubAnalyzer) callCount(symbol string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[symbol]
}

func scanConfig() *config.Config {
	return &config.Config{
		Scan: config.Scan{
			BatchSize:  2,
			BatchDelay: 0,
		},
	}
}

func waitForIdle(t *testing.T, s DeepScanService) dto.ScanStatus {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		status := s.Status()
		if !status.Running && status.Pending == 0 {
			return status
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("deep scan did not drain in time")
	return dto.ScanStatus{}
}

func TestDeepScanDeduplicates(t *testing.T) {
	analyzer := newStubAnalyzer()
	watchlist := NewWatchlistService()
	scanner := NewDeepScanService(scanConfig(), logger.NewNop(), analyzer, watchlist)
	defer scanner.Stop()

	scanner.Enqueue("2330", "2317", "2330", "2317", "2330")

	status := waitForIdle(t, scanner)

	assert.Equal(t, 1, analyzer.callCount("2330"))
	assert.Equal(t, 1, analyzer.callCount("2317"))
	assert.Equal(t, 2, status.Completed)
}

func TestDeepScanAllowsReenqueueAfterDrain(t *testing.T) {
	analyzer := newStubAnalyzer()
	watchlist := NewWatchlistService()
	scanner := NewDeepScanService(scanConfig(), logger.NewNop(), analyzer, watchlist)
	defer scanner.Stop()

	scanner.Enqueue("2330")
	waitForIdle(t, scanner)

	// A symbol already drained is no longer "queued"; a later sweep may
	// rescan it.
	scanner.Enqueue("2330")
	status := waitForIdle(t, scanner)

	assert.Equal(t, 2, analyzer.callCount("2330"))
	assert.Equal(t, 2, status.Completed)
}

func TestDeepScanRunsBatchesUntilDrained(t *testing.T) {
	analyzer := newStubAnalyzer()
	watchlist := NewWatchlistService()
	scanner := NewDeepScanService(scanConfig(), logger.NewNop(), analyzer, watchlist)
	defer scanner.Stop()

	symbols := []string{"2330", "2317", "2454", "2603", "2881"}
	scanner.Enqueue(symbols...)

	status := waitForIdle(t, scanner)
	require.Equal(t, len(symbols), status.Completed)

	for _, symbol := range symbols {
		assert.Equal(t, 1, analyzer.callCount(symbol), symbol)
	}
}

func TestDeepScanUsesFullMode(t *testing.T) {
	analyzer := newStubAnalyzer()
	watchlist := NewWatchlistService()
	scanner := NewDeepScanService(scanConfig(), logger.NewNop(), analyzer, watchlist)
	defer scanner.Stop()

	scanner.Enqueue("2330")
	waitForIdle(t, scanner)

	analyzer.mu.Lock()
	defer analyzer.mu.Unlock()
	require.Len(t, analyzer.modes, 1)
	assert.Equal(t, dto.ModeFull, analyzer.modes[0])
}

func TestDeepScanSyncsResults(t *testing.T) {
	analyzer := newStubAnalyzer()
	watchlist := NewWatchlistService()
	watchlist.Add(dto.StockSummary{ID: "2330", Name: "台積電", Score: 50})

	scanner := NewDeepScanService(scanConfig(), logger.NewNop(), analyzer, watchlist)
	defer scanner.Stop()

	scanner.Enqueue("2330")
	waitForIdle(t, scanner)

	entry := watchlist.Watchlist()[0]
	assert.Equal(t, 72, entry.Score)
	assert.True(t, entry.IsDetailed)
}
