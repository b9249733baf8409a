package service

import (
	"context"
	"time"

	"stock-insight/config"
	"stock-insight/internal/repository"
	"stock-insight/pkg/cache"
	"stock-insight/pkg/logger"
)

type Service struct {
	QuoteService      QuoteService
	StaticDataService StaticDataService
	AnalyzerService   AnalyzerService
	PulseService      PulseService
	WatchlistService  WatchlistService
	DeepScanService   DeepScanService
	SweepScheduler    *SweepScheduler
}

func NewService(
	cfg *config.Config,
	log *logger.Logger,
	repo *repository.Repository,
	quoteCache cache.Cache,
	staticCache cache.Cache,
	loc *time.Location,
) *Service {
	quoteSvc := NewQuoteService(cfg, log, quoteCache, repo)
	staticSvc := NewStaticDataService(cfg, log, staticCache, repo, quoteSvc, loc)
	analyzerSvc := NewAnalyzerService(cfg, log, quoteSvc, staticSvc, repo, loc)
	watchlistSvc := NewWatchlistService()
	pulseSvc := NewPulseService(cfg, log, quoteSvc, analyzerSvc, watchlistSvc, loc)
	deepScanSvc := NewDeepScanService(cfg, log, analyzerSvc, watchlistSvc)
	sweepScheduler := NewSweepScheduler(cfg, log, pulseSvc, deepScanSvc, watchlistSvc)

	return &Service{
		QuoteService:      quoteSvc,
		StaticDataService: staticSvc,
		AnalyzerService:   analyzerSvc,
		PulseService:      pulseSvc,
		WatchlistService:  watchlistSvc,
		DeepScanService:   deepScanSvc,
		SweepScheduler:    sweepScheduler,
	}
}

// Start brings up the background pieces: the cron sweep. The throttle
// scheduler is owned by the dependency container, not the service bundle.
func (s *Service) Start(ctx context.Context) error {
	return s.SweepScheduler.Start(ctx)
}

func (s *Service) Stop() {
	s.DeepScanService.Stop()
	s.SweepScheduler.Stop()
}
