package repository

import (
	"stock-insight/config"
	"stock-insight/pkg/logger"
	"stock-insight/pkg/throttle"

	"gorm.io/gorm"
)

type Repository struct {
	FugleQuoteRepo       FugleQuoteRepository
	YahooChartRepo       YahooChartRepository
	FinMindRepo          FinMindRepository
	StockNameRepo        StockNameRepository
	AnalysisSnapshotRepo AnalysisSnapshotRepository
}

// NewRepository wires the provider and persistence repositories. db may be
// nil; name resolution then runs in memory and snapshots are not kept.
func NewRepository(cfg *config.Config, db *gorm.DB, throttler *throttle.Scheduler, log *logger.Logger) *Repository {
	stockNameRepo := NewInMemoryStockNameRepository()
	snapshotRepo := NewNoopSnapshotRepository()
	if db != nil {
		stockNameRepo = NewStockNameRepository(db)
		snapshotRepo = NewAnalysisSnapshotRepository(db)
	}

	return &Repository{
		FugleQuoteRepo:       NewFugleQuoteRepository(cfg, throttler, log),
		YahooChartRepo:       NewYahooChartRepository(cfg, throttler, log),
		FinMindRepo:          NewFinMindRepository(cfg, throttler, log),
		StockNameRepo:        stockNameRepo,
		AnalysisSnapshotRepo: snapshotRepo,
	}
}
