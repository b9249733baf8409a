package service

import (
	"context"

	"stock-insight/config"
	"stock-insight/internal/dto"
	"stock-insight/pkg/logger"

	"github.com/robfig/cron/v3"
)

// SweepScheduler drives the periodic market sweep: refresh the pulse,
// then push every shallow non-ETF symbol into the deep-scan queue.
type SweepScheduler struct {
	cfg          *config.Config
	log          *logger.Logger
	pulseSvc     PulseService
	deepScanSvc  DeepScanService
	watchlistSvc WatchlistService
	cron         *cron.Cron
}

func NewSweepScheduler(
	cfg *config.Config,
	log *logger.Logger,
	pulseSvc PulseService,
	deepScanSvc DeepScanService,
	watchlistSvc WatchlistService,
) *SweepScheduler {
	return &SweepScheduler{
		cfg:          cfg,
		log:          log,
		pulseSvc:     pulseSvc,
		deepScanSvc:  deepScanSvc,
		watchlistSvc: watchlistSvc,
		cron:         cron.New(),
	}
}

// Start registers the sweep job when a cron spec is configured. An empty
// spec disables the scheduler; sweeps then only run via the API.
func (s *SweepScheduler) Start(ctx context.Context) error {
	if s.cfg.Scan.SweepCron == "" {
		s.log.Info("Market sweep scheduler disabled")
		return nil
	}

	_, err := s.cron.AddFunc(s.cfg.Scan.SweepCron, func() {
		s.Sweep(ctx)
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	s.log.Info("Market sweep scheduler started",
		logger.StringField("cron", s.cfg.Scan.SweepCron))
	return nil
}

func (s *SweepScheduler) Stop() {
	<-s.cron.Stop().Done()
}

// Sweep refreshes the pulse and queues every symbol still lacking a full
// analysis. ETF taxonomy entries never deep-scan.
func (s *SweepScheduler) Sweep(ctx context.Context) {
	pulse, err := s.pulseSvc.GetMarketPulse(ctx)
	if err != nil {
		s.log.ErrorContext(ctx, "Market sweep failed", logger.ErrorField(err))
		return
	}

	etf := map[string]struct{}{}
	for _, id := range dto.SectorMap[dto.SectorETF] {
		etf[id] = struct{}{}
	}

	seen := map[string]struct{}{}
	var pending []string
	for _, sector := range pulse.Sectors {
		for _, stock := range sector.Stocks {
			if _, dup := seen[stock.ID]; dup {
				continue
			}
			seen[stock.ID] = struct{}{}
			if _, isETF := etf[stock.ID]; isETF {
				continue
			}
			if stock.IsDetailed || s.watchlistSvc.IsDetailed(stock.ID) {
				continue
			}
			pending = append(pending, stock.ID)
		}
	}

	if len(pending) > 0 {
		s.log.InfoContext(ctx, "Queueing symbols for deep scan",
			logger.IntField("count", len(pending)))
		s.deepScanSvc.Enqueue(pending...)
	}
}
