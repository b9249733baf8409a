package service

import (
	"context"
	"fmt"
	"time"

	"stock-insight/config"
	"stock-insight/internal/dto"
	"stock-insight/internal/indicator"
	"stock-insight/internal/repository"
	"stock-insight/pkg/cache"
	"stock-insight/pkg/logger"

	"golang.org/x/sync/errgroup"
)

// StaticDataService owns the heavy per-symbol bundle: a year of history,
// valuation, chip flow, fundamentals, revenue, market breadth and sector
// context. Entries are fetched and replaced as one unit and validated
// against the market calendar, not just wall-clock age.
type StaticDataService interface {
	// Get returns the cached bundle and whether it is still valid.
	Get(ctx context.Context, symbol string) (dto.StaticAnalysisData, bool)
	// Fetch refetches the whole bundle and stores it.
	Fetch(ctx context.Context, symbol string) dto.StaticAnalysisData
}

type staticDataService struct {
	cfg         *config.Config
	log         *logger.Logger
	staticCache cache.Cache
	finmindRepo repository.FinMindRepository
	yahooRepo   repository.YahooChartRepository
	quoteSvc    QuoteService
	loc         *time.Location
	nowFn       func() time.Time
}

func NewStaticDataService(
	cfg *config.Config,
	log *logger.Logger,
	staticCache cache.Cache,
	repo *repository.Repository,
	quoteSvc QuoteService,
	loc *time.Location,
) StaticDataService {
	return &staticDataService{
		cfg:         cfg,
		log:         log,
		staticCache: staticCache,
		finmindRepo: repo.FinMindRepo,
		yahooRepo:   repo.YahooChartRepo,
		quoteSvc:    quoteSvc,
		loc:         loc,
		nowFn:       time.Now,
	}
}

func (s *staticDataService) Get(ctx context.Context, symbol string) (dto.StaticAnalysisData, bool) {
	key := fmt.Sprintf(dto.KeyStatic, symbol)
	entry, found := cache.GetTyped[dto.StaticAnalysisData](s.staticCache, key)
	if !found {
		return dto.StaticAnalysisData{}, false
	}
	if isStaticExpired(entry.Timestamp, s.nowFn(), s.loc, s.cfg.Cache.StaticMaxAge, s.cfg.Market.SettleHour) {
		return entry, false
	}
	return entry, true
}

func (s *staticDataService) Fetch(ctx context.Context, symbol string) dto.StaticAnalysisData {
	data := dto.DefaultStaticData()

	// All fetches funnel through the shared throttled queue; the group
	// only bounds how many are waiting in it at once.
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		history, err := s.finmindRepo.GetStockPrices(gctx, symbol, dateOffset(s.nowFn(), 365))
		if err == nil {
			data.History = history
		}
		return nil
	})
	g.Go(func() error {
		valuations, err := s.finmindRepo.GetValuations(gctx, symbol, dateOffset(s.nowFn(), 30))
		if err == nil {
			data.Valuations = valuations
		}
		return nil
	})
	g.Go(func() error {
		chipFlows, err := s.finmindRepo.GetChipFlows(gctx, symbol, dateOffset(s.nowFn(), 30))
		if err == nil {
			data.ChipFlows = chipFlows
		}
		return nil
	})
	g.Go(func() error {
		financials, err := s.finmindRepo.GetFinancials(gctx, symbol, dateOffset(s.nowFn(), 730))
		if err == nil {
			data.FinancialRows = financials
		}
		return nil
	})
	g.Go(func() error {
		revenues, err := s.finmindRepo.GetRevenues(gctx, symbol, dateOffset(s.nowFn(), 120))
		if err == nil {
			data.RevenueRows = revenues
		}
		return nil
	})
	g.Go(func() error {
		data.MarketBelowMA20 = s.marketBelowMA20(gctx)
		return nil
	})
	g.Go(func() error {
		data.MarketContext = s.fetchMarketContext(gctx, symbol)
		return nil
	})

	_ = g.Wait()

	data.Timestamp = s.nowFn()
	s.staticCache.Set(fmt.Sprintf(dto.KeyStatic, symbol), data, s.cfg.Cache.StaticMaxAge)

	s.log.DebugContext(ctx, "Static analysis data refreshed",
		logger.StringField("symbol", symbol),
		logger.IntField("history_bars", len(data.History)),
		logger.IntField("chip_rows", len(data.ChipFlows)))

	return data
}

// marketBelowMA20 reports whether the weighted index trades under its
// 20-day average. Any upstream failure reads as "not below".
func (s *staticDataService) marketBelowMA20(ctx context.Context) bool {
	closes, err := s.yahooRepo.GetCloses(ctx, dto.SymbolTWII, "2mo", "1d")
	if err != nil || len(closes) < 20 {
		return false
	}
	current := closes[len(closes)-1]
	ma20, ok := indicator.MovingAverage(closes, 20)
	if !ok {
		return false
	}
	return current < ma20
}

func (s *staticDataService) fetchMarketContext(ctx context.Context, symbol string) dto.MarketContext {
	mc := dto.DefaultStaticData().MarketContext

	twii := s.quoteSvc.GetIndexQuote(ctx, dto.SymbolTWII)
	nasdaq := s.quoteSvc.GetIndexQuote(ctx, dto.SymbolNasdaq)
	sox := s.quoteSvc.GetIndexQuote(ctx, dto.SymbolSOX)

	if twii != nil {
		mc.IndexPerformance.TwiiChange = twii.ChangePercent
	}
	if nasdaq != nil {
		mc.IndexPerformance.NasdaqChange = nasdaq.ChangePercent
	}
	if sox != nil {
		mc.IndexPerformance.SoxChange = sox.ChangePercent
	}

	sectorName := dto.SectorNameOf(symbol)
	mc.SectorPerformance.SectorName = sectorName

	// Only the first three sector peers are ever fetched; a failed quote
	// yields fewer peers rather than a fetch for the next candidate.
	var ids []string
	for _, id := range dto.SectorMap[sectorName] {
		if id == symbol {
			continue
		}
		ids = append(ids, id)
	}
	if len(ids) > 3 {
		ids = ids[:3]
	}

	var peers []dto.PeerChange
	for _, id := range ids {
		if quote := s.quoteSvc.GetFugleQuote(ctx, id); quote != nil {
			peers = append(peers, dto.PeerChange{Name: quote.Name, Change: quote.ChangePercent})
		}
	}

	if len(peers) > 0 {
		sum := 0.0
		for _, p := range peers {
			sum += p.Change
		}
		mc.SectorPerformance.AvgChange = sum / float64(len(peers))
		mc.SectorPerformance.Peers = peers
	}

	return mc
}

// isStaticExpired applies the three-part validity rule in one canonical
// local-time frame: absolute age, calendar-day rollover, and the daily
// settlement boundary after which post-market chip data supersedes
// anything built mid-session.
func isStaticExpired(entryTime, now time.Time, loc *time.Location, maxAge time.Duration, settleHour int) bool {
	if entryTime.IsZero() {
		return true
	}
	if now.Sub(entryTime) > maxAge {
		return true
	}

	localNow := now.In(loc)
	localEntry := entryTime.In(loc)

	if localNow.Year() != localEntry.Year() || localNow.YearDay() != localEntry.YearDay() {
		return true
	}

	if localNow.Hour() >= settleHour && localEntry.Hour() < settleHour {
		return true
	}

	return false
}

func dateOffset(now time.Time, days int) string {
	return now.AddDate(0, 0, -days).Format("2006-01-02")
}
