package service

import (
	"context"
	"sync"
	"time"

	"stock-insight/config"
	"stock-insight/internal/dto"
	"stock-insight/pkg/logger"
	"stock-insight/pkg/utils"

	"golang.org/x/sync/errgroup"
)

// DeepScanService upgrades shallow pulse readings to full analyses in the
// background. Symbols are deduplicated on entry and drained in fixed-size
// batches; at most one run loop is active at a time.
type DeepScanService interface {
	// Enqueue adds unseen symbols and starts a run if none is active.
	Enqueue(symbols ...string)
	Status() dto.ScanStatus
	Stop()
}

type deepScanService struct {
	cfg          *config.Config
	log          *logger.Logger
	analyzerSvc  AnalyzerService
	watchlistSvc WatchlistService

	mu        sync.Mutex
	queue     []string
	enqueued  map[string]struct{}
	running   bool
	completed int

	ctx     context.Context
	cancel  context.CancelFunc
	sleepFn func(ctx context.Context, d time.Duration)
}

func NewDeepScanService(
	cfg *config.Config,
	log *logger.Logger,
	analyzerSvc AnalyzerService,
	watchlistSvc WatchlistService,
) DeepScanService {
	ctx, cancel := context.WithCancel(context.Background())
	return &deepScanService{
		cfg:          cfg,
		log:          log,
		analyzerSvc:  analyzerSvc,
		watchlistSvc: watchlistSvc,
		enqueued:     map[string]struct{}{},
		ctx:          ctx,
		cancel:       cancel,
		sleepFn:      sleepCtx,
	}
}

func (s *deepScanService) Enqueue(symbols ...string) {
	s.mu.Lock()
	for _, symbol := range symbols {
		if _, seen := s.enqueued[symbol]; seen {
			continue
		}
		s.enqueued[symbol] = struct{}{}
		s.queue = append(s.queue, symbol)
	}
	start := !s.running && len(s.queue) > 0
	if start {
		s.running = true
	}
	s.mu.Unlock()

	if start {
		utils.GoSafe(func() { s.run() })
	}
}

func (s *deepScanService) Status() dto.ScanStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return dto.ScanStatus{
		Running:   s.running,
		Pending:   len(s.queue),
		Completed: s.completed,
	}
}

func (s *deepScanService) Stop() {
	s.cancel()
}

func (s *deepScanService) run() {
	for {
		batch := s.popBatch()
		if len(batch) == 0 {
			s.log.Info("Deep scan drained", logger.IntField("completed", s.Status().Completed))
			return
		}
		if err := s.ctx.Err(); err != nil {
			s.finish()
			return
		}

		s.scanBatch(batch)
		s.sleepFn(s.ctx, s.cfg.Scan.BatchDelay)
	}
}

func (s *deepScanService) popBatch() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.queue) == 0 {
		s.running = false
		return nil
	}
	n := s.cfg.Scan.BatchSize
	if n <= 0 || n > len(s.queue) {
		n = len(s.queue)
	}
	batch := make([]string, n)
	copy(batch, s.queue[:n])
	s.queue = s.queue[n:]
	// Once a symbol leaves the queue it may be enqueued again; the dedup
	// set only guards symbols that are still waiting.
	for _, symbol := range batch {
		delete(s.enqueued, symbol)
	}
	return batch
}

func (s *deepScanService) finish() {
	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
}

func (s *deepScanService) scanBatch(batch []string) {
	g, gctx := errgroup.WithContext(s.ctx)

	for _, symbol := range batch {
		symbol := symbol
		g.Go(func() error {
			detail := s.analyzerSvc.GetAnalyze(gctx, symbol, dto.ModeFull)
			s.watchlistSvc.SyncStock(dto.StockSummary{
				ID:            symbol,
				Name:          detail.Name,
				Price:         detail.PriceInfo.Price,
				Change:        detail.PriceInfo.Change,
				ChangePercent: detail.PriceInfo.ChangePercent,
				Score:         detail.Analysis.Score,
				Action:        detail.Analysis.Action,
			})
			return nil
		})
	}
	_ = g.Wait()

	s.mu.Lock()
	s.completed += len(batch)
	s.mu.Unlock()

	s.log.Debug("Deep scan batch done",
		logger.IntField("batch", len(batch)),
		logger.IntField("pending", s.Status().Pending))
}
