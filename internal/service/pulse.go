package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"stock-insight/config"
	"stock-insight/internal/dto"
	"stock-insight/pkg/logger"
)

// PulseService sweeps a capped slice of the sector taxonomy in pulse mode
// to produce the market overview. The sweep is deliberately slow: delays
// between symbols and sectors keep it from saturating the request queue.
type PulseService interface {
	GetMarketPulse(ctx context.Context) (dto.MarketPulse, error)
}

type pulseService struct {
	cfg          *config.Config
	log          *logger.Logger
	quoteSvc     QuoteService
	analyzerSvc  AnalyzerService
	watchlistSvc WatchlistService
	loc          *time.Location
	nowFn        func() time.Time
	sleepFn      func(ctx context.Context, d time.Duration)
}

func NewPulseService(
	cfg *config.Config,
	log *logger.Logger,
	quoteSvc QuoteService,
	analyzerSvc AnalyzerService,
	watchlistSvc WatchlistService,
	loc *time.Location,
) PulseService {
	return &pulseService{
		cfg:          cfg,
		log:          log,
		quoteSvc:     quoteSvc,
		analyzerSvc:  analyzerSvc,
		watchlistSvc: watchlistSvc,
		loc:          loc,
		nowFn:        time.Now,
		sleepFn:      sleepCtx,
	}
}

func (s *pulseService) GetMarketPulse(ctx context.Context) (dto.MarketPulse, error) {
	twii := s.quoteSvc.GetIndexQuote(ctx, dto.SymbolTWII)
	nasdaq := s.quoteSvc.GetIndexQuote(ctx, dto.SymbolNasdaq)
	sox := s.quoteSvc.GetIndexQuote(ctx, dto.SymbolSOX)

	trends := []dto.TrendItem{
		trendItem("加權指數", twii),
		trendItem("那斯達克", nasdaq),
		trendItem("費城半導體", sox),
	}

	sectorNames := dto.SectorOrder
	if len(sectorNames) > s.cfg.Scan.MaxSectors {
		sectorNames = sectorNames[:s.cfg.Scan.MaxSectors]
	}

	var sectors []dto.SectorSnapshot
	for _, name := range sectorNames {
		if err := ctx.Err(); err != nil {
			return dto.MarketPulse{}, err
		}
		sectors = append(sectors, s.scanSector(ctx, name))
		s.sleepFn(ctx, s.cfg.Scan.SectorDelay)
	}

	var recommendations []dto.StockSummary
	for _, sector := range sectors {
		for _, stock := range sector.Stocks {
			if stock.Score >= 75 {
				recommendations = append(recommendations, stock)
			}
		}
	}
	sortByScoreDesc(recommendations)
	if len(recommendations) > 4 {
		recommendations = recommendations[:4]
	}

	warning := "市場運行穩健"
	if twii != nil && twii.ChangePercent < -1 {
		warning = "大盤修正風險，建議保守"
	}

	pulse := dto.MarketPulse{
		Trends:          trends,
		Sectors:         sectors,
		Recommendations: recommendations,
		Warning:         warning,
		ScanStatus:      fmt.Sprintf("最後更新: %s", s.nowFn().In(s.loc).Format("15:04:05")),
	}

	s.watchlistSvc.SetPulse(pulse)

	merged, _ := s.watchlistSvc.Pulse()
	return merged, nil
}

func (s *pulseService) scanSector(ctx context.Context, name string) dto.SectorSnapshot {
	ids := dto.SectorMap[name]
	if len(ids) > s.cfg.Scan.MaxStocksPerSector {
		ids = ids[:s.cfg.Scan.MaxStocksPerSector]
	}

	stocks := make([]dto.StockSummary, 0, len(ids))
	for _, id := range ids {
		detail := s.analyzerSvc.GetAnalyze(ctx, id, dto.ModePulse)
		stocks = append(stocks, dto.StockSummary{
			ID:            id,
			Name:          detail.Name,
			Price:         detail.PriceInfo.Price,
			Change:        detail.PriceInfo.Change,
			ChangePercent: detail.PriceInfo.ChangePercent,
			Score:         detail.Analysis.Score,
			Action:        detail.Analysis.Action,
		})
		s.sleepFn(ctx, s.cfg.Scan.SymbolDelay)
	}

	return dto.SectorSnapshot{
		Name:   name,
		Score:  averageScore(stocks),
		Stocks: stocks,
	}
}

func trendItem(name string, quote *dto.Quote) dto.TrendItem {
	item := dto.TrendItem{Name: name, Val: "0", Color: dto.ChangeColor(0)}
	if quote != nil {
		item.Val = fmt.Sprintf("%.2f", quote.Price)
		item.Change = quote.ChangePercent
		item.Color = dto.ChangeColor(quote.Change)
	}
	return item
}

func sortByScoreDesc(stocks []dto.StockSummary) {
	sort.SliceStable(stocks, func(i, j int) bool {
		return stocks[i].Score > stocks[j].Score
	})
}

func sleepCtx(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
