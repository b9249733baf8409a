package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"stock-insight/config"
	"stock-insight/internal/dto"
	"stock-insight/internal/repository"
	"stock-insight/pkg/cache"
	"stock-insight/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubFugleRepo struct {
	quote *dto.Quote
	err   error
	calls int
}

func (s *stubFugleRepo) GetQuote(context.Context, string) (*dto.Quote, error) {
	s.calls++
	return s.quote, s.err
}

type stubYahooRepo struct {
	quote *dto.Quote
	err   error
	calls int
}

func (s *stubYahooRepo) GetQuote(context.Context, string, string) (*dto.Quote, error) {
	s.calls++
	return s.quote, s.err
}

func (s *stubYahooRepo) GetCloses(context.Context, string, string, string) ([]float64, error) {
	return nil, errors.New("not implemented")
}

func newTestQuoteService(fugle *stubFugleRepo, yahoo *stubYahooRepo) QuoteService {
	cfg := &config.Config{
		Cache: config.Cache{QuoteTTL: 30 * time.Second},
	}
	repo := &repository.Repository{
		FugleQuoteRepo: fugle,
		YahooChartRepo: yahoo,
		StockNameRepo:  repository.NewInMemoryStockNameRepository(),
	}
	return NewQuoteService(cfg, logger.NewNop(), cache.New(time.Minute, time.Minute), repo)
}

func TestGetFugleQuoteCachesHits(t *testing.T) {
	fugle := &stubFugleRepo{quote: &dto.Quote{Symbol: "2330", Price: 1000, Name: "台積電"}}
	svc := newTestQuoteService(fugle, &stubYahooRepo{})

	first := svc.GetFugleQuote(context.Background(), "2330")
	second := svc.GetFugleQuote(context.Background(), "2330")

	require.NotNil(t, first)
	require.NotNil(t, second)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, fugle.calls)
}

func TestGetFugleQuoteDoesNotCacheFailures(t *testing.T) {
	fugle := &stubFugleRepo{err: errors.New("upstream degraded")}
	svc := newTestQuoteService(fugle, &stubYahooRepo{})

	assert.Nil(t, svc.GetFugleQuote(context.Background(), "2330"))
	assert.Nil(t, svc.GetFugleQuote(context.Background(), "2330"))
	assert.Equal(t, 2, fugle.calls)
}

func TestGetLiveQuoteFallsBackToYahoo(t *testing.T) {
	fugle := &stubFugleRepo{err: errors.New("cooling down")}
	yahoo := &stubYahooRepo{quote: &dto.Quote{Symbol: "2330", Price: 995, Name: "TSMC"}}
	svc := newTestQuoteService(fugle, yahoo)

	quote := svc.GetLiveQuote(context.Background(), "2330")

	require.NotNil(t, quote)
	assert.Equal(t, 995.0, quote.Price)
	// Known symbols keep their built-in display name.
	assert.Equal(t, "台積電", quote.Name)
	assert.Equal(t, 1, fugle.calls)
	assert.Equal(t, 1, yahoo.calls)
}

func TestGetLiveQuoteAllProvidersDegraded(t *testing.T) {
	fugle := &stubFugleRepo{err: errors.New("down")}
	yahoo := &stubYahooRepo{err: errors.New("down")}
	svc := newTestQuoteService(fugle, yahoo)

	assert.Nil(t, svc.GetLiveQuote(context.Background(), "2330"))
	assert.Equal(t, 2, yahoo.calls) // TSE then OTC
}

func TestResolveName(t *testing.T) {
	svc := newTestQuoteService(&stubFugleRepo{}, &stubYahooRepo{})
	ctx := context.Background()

	t.Run("built-in map wins", func(t *testing.T) {
		assert.Equal(t, "台積電", svc.ResolveName(ctx, "2330", "whatever"))
	})

	t.Run("chinese provider name is persisted", func(t *testing.T) {
		assert.Equal(t, "測試公司", svc.ResolveName(ctx, "9999", "測試公司"))
		// Second lookup hits the persisted table without a provider name.
		assert.Equal(t, "測試公司", svc.ResolveName(ctx, "9999", ""))
	})

	t.Run("non-chinese name is used but not persisted", func(t *testing.T) {
		assert.Equal(t, "ACME", svc.ResolveName(ctx, "8888", "ACME"))
		assert.Equal(t, "8888", svc.ResolveName(ctx, "8888", ""))
	})

	t.Run("falls back to the symbol", func(t *testing.T) {
		assert.Equal(t, "7777", svc.ResolveName(ctx, "7777", ""))
	})
}

func TestCheckStock(t *testing.T) {
	t.Run("known symbol resolves offline", func(t *testing.T) {
		svc := newTestQuoteService(&stubFugleRepo{}, &stubYahooRepo{})
		result := svc.CheckStock(context.Background(), "2330")
		assert.Equal(t, dto.CheckStockResult{ID: "2330", Name: "台積電"}, result)
	})

	t.Run("unknown symbol falls through to providers", func(t *testing.T) {
		fugle := &stubFugleRepo{quote: &dto.Quote{Symbol: "4585", Price: 55, Name: "新標的"}}
		svc := newTestQuoteService(fugle, &stubYahooRepo{})

		result := svc.CheckStock(context.Background(), "4585")
		assert.Equal(t, "新標的", result.Name)
	})
}
