package service

import (
	"context"
	"fmt"
	"unicode"

	"stock-insight/config"
	"stock-insight/internal/dto"
	"stock-insight/internal/repository"
	"stock-insight/pkg/cache"
	"stock-insight/pkg/logger"
)

// QuoteService resolves live quotes and display names. Lookups within the
// quote TTL are served from cache without touching the throttled queue.
type QuoteService interface {
	// GetLiveQuote tries Fugle first, then Yahoo TSE, then Yahoo OTC.
	// A nil result means every provider degraded; callers continue with
	// defaults.
	GetLiveQuote(ctx context.Context, symbol string) *dto.Quote
	// GetIndexQuote serves index symbols (^TWII and friends) via Yahoo.
	GetIndexQuote(ctx context.Context, symbol string) *dto.Quote
	GetFugleQuote(ctx context.Context, symbol string) *dto.Quote
	ResolveName(ctx context.Context, symbol, apiName string) string
	CheckStock(ctx context.Context, symbol string) dto.CheckStockResult
}

type quoteService struct {
	cfg           *config.Config
	log           *logger.Logger
	quoteCache    cache.Cache
	fugleRepo     repository.FugleQuoteRepository
	yahooRepo     repository.YahooChartRepository
	stockNameRepo repository.StockNameRepository
}

func NewQuoteService(
	cfg *config.Config,
	log *logger.Logger,
	quoteCache cache.Cache,
	repo *repository.Repository,
) QuoteService {
	return &quoteService{
		cfg:           cfg,
		log:           log,
		quoteCache:    quoteCache,
		fugleRepo:     repo.FugleQuoteRepo,
		yahooRepo:     repo.YahooChartRepo,
		stockNameRepo: repo.StockNameRepo,
	}
}

func (s *quoteService) GetLiveQuote(ctx context.Context, symbol string) *dto.Quote {
	live := s.GetFugleQuote(ctx, symbol)
	if live != nil && live.Price != 0 {
		return live
	}

	for _, market := range []string{dto.MarketTSE, dto.MarketOTC} {
		if yahoo := s.getYahooQuote(ctx, symbol, market); yahoo != nil && yahoo.Price != 0 {
			yahoo.Name = s.ResolveName(ctx, symbol, yahoo.Name)
			return yahoo
		}
	}

	return live
}

func (s *quoteService) GetIndexQuote(ctx context.Context, symbol string) *dto.Quote {
	return s.getYahooQuote(ctx, symbol, dto.MarketTSE)
}

func (s *quoteService) GetFugleQuote(ctx context.Context, symbol string) *dto.Quote {
	key := fmt.Sprintf(dto.KeyQuote, dto.ProviderFugle, symbol)
	if cached, ok := cache.GetTyped[*dto.Quote](s.quoteCache, key); ok {
		return cached
	}

	quote, err := s.fugleRepo.GetQuote(ctx, symbol)
	if err != nil || quote == nil {
		return nil
	}

	quote.Name = s.ResolveName(ctx, symbol, quote.Name)
	s.quoteCache.Set(key, quote, s.cfg.Cache.QuoteTTL)
	return quote
}

func (s *quoteService) getYahooQuote(ctx context.Context, symbol, market string) *dto.Quote {
	key := fmt.Sprintf(dto.KeyQuote, dto.ProviderYahoo, symbol)
	if cached, ok := cache.GetTyped[*dto.Quote](s.quoteCache, key); ok {
		return cached
	}

	quote, err := s.yahooRepo.GetQuote(ctx, symbol, market)
	if err != nil || quote == nil {
		return nil
	}

	quote.Name = s.ResolveName(ctx, symbol, quote.Name)
	s.quoteCache.Set(key, quote, s.cfg.Cache.QuoteTTL)
	return quote
}

// ResolveName walks the chain built-in map -> persisted table -> provider
// name -> raw symbol. A Chinese provider name is written back to the
// persisted table for the next restart.
func (s *quoteService) ResolveName(ctx context.Context, symbol, apiName string) string {
	if name, ok := dto.StockNameMap[symbol]; ok {
		return name
	}
	if name, ok := s.stockNameRepo.Get(ctx, symbol); ok {
		return name
	}
	if apiName != "" && isChinese(apiName) {
		if err := s.stockNameRepo.Save(ctx, symbol, apiName); err != nil {
			s.log.WarnContext(ctx, "Failed to persist stock name",
				logger.ErrorField(err), logger.StringField("symbol", symbol))
		}
		return apiName
	}
	if apiName != "" {
		return apiName
	}
	return symbol
}

func (s *quoteService) CheckStock(ctx context.Context, symbol string) dto.CheckStockResult {
	if name := s.ResolveName(ctx, symbol, ""); name != symbol {
		return dto.CheckStockResult{ID: symbol, Name: name}
	}

	if live := s.GetFugleQuote(ctx, symbol); live != nil && live.Name != "" {
		return dto.CheckStockResult{ID: symbol, Name: live.Name}
	}

	if yahoo := s.getYahooQuote(ctx, symbol, dto.MarketTSE); yahoo != nil && yahoo.Name != "" {
		return dto.CheckStockResult{ID: symbol, Name: yahoo.Name}
	}

	return dto.CheckStockResult{ID: symbol, Name: symbol}
}

func isChinese(str string) bool {
	for _, r := range str {
		if unicode.Is(unicode.Han, r) {
			return true
		}
	}
	return false
}
