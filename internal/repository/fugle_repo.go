package repository

import (
	"context"
	"net/http"

	"stock-insight/config"
	"stock-insight/internal/dto"
	"stock-insight/pkg/httpclient"
	"stock-insight/pkg/logger"
	"stock-insight/pkg/throttle"
)

// FugleQuoteRepository serves live intraday quotes from the primary
// provider. A nil quote with a nil error is an ordinary soft failure.
type FugleQuoteRepository interface {
	GetQuote(ctx context.Context, symbol string) (*dto.Quote, error)
}

type fugleQuoteRepository struct {
	httpClient httpclient.HTTPClient
	throttler  *throttle.Scheduler
	cfg        *config.Config
	logger     *logger.Logger
}

func NewFugleQuoteRepository(cfg *config.Config, throttler *throttle.Scheduler, log *logger.Logger) FugleQuoteRepository {
	return &fugleQuoteRepository{
		httpClient: httpclient.New(cfg.Fugle.BaseURL, cfg.Fugle.Timeout, browserHeaders()),
		throttler:  throttler,
		cfg:        cfg,
		logger:     log,
	}
}

func (r *fugleQuoteRepository) GetQuote(ctx context.Context, symbol string) (*dto.Quote, error) {
	if !r.throttler.Available(dto.ProviderFugle) {
		r.logger.WarnContext(ctx, "Fugle is cooling down, skipping quote fetch",
			logger.StringField("symbol", symbol),
			logger.DurationField("remaining", r.throttler.CooldownRemaining(dto.ProviderFugle)))
		return nil, nil
	}

	var quote *dto.Quote
	err := r.throttler.Do(ctx, "fugle:"+symbol, func(ctx context.Context) error {
		var fugleResp dto.FugleQuoteResponse
		headers := map[string]string{"X-API-KEY": r.cfg.Fugle.APIKey}

		resp, err := r.httpClient.Get(ctx, "/stock/intraday/quote/"+symbol, nil, headers, &fugleResp)
		if err != nil {
			r.logger.WarnContext(ctx, "Fugle quote request failed", logger.ErrorField(err), logger.StringField("symbol", symbol))
			return nil
		}

		if resp.StatusCode != http.StatusOK {
			if resp.StatusCode == http.StatusTooManyRequests {
				r.logger.WarnContext(ctx, "Fugle rate limit hit, entering cooldown",
					logger.StringField("symbol", symbol),
					logger.DurationField("cooldown", r.cfg.Throttle.FugleCooldown))
				r.throttler.MarkCooldown(dto.ProviderFugle, r.cfg.Throttle.FugleCooldown)
			} else {
				r.logger.WarnContext(ctx, "Fugle returned non-OK status",
					logger.IntField("status_code", resp.StatusCode),
					logger.StringField("symbol", symbol))
			}
			return nil
		}

		quote = normalizeFugleQuote(symbol, fugleResp)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return quote, nil
}

func normalizeFugleQuote(symbol string, d dto.FugleQuoteResponse) *dto.Quote {
	price := d.LastTrade.Price
	if price == 0 {
		price = d.ClosePrice
	}

	prevClose := d.PreviousClose
	if prevClose == 0 {
		prevClose = price - d.Quote.Change
	}

	change := d.Quote.Change
	if change == 0 {
		change = price - prevClose
	}

	changePercent := 0.0
	if prevClose > 0 {
		changePercent = change / prevClose * 100
	}

	return &dto.Quote{
		Symbol:        symbol,
		Name:          d.NameZhTw,
		Price:         price,
		Change:        change,
		ChangePercent: changePercent,
		Volume:        d.Quote.TotalVolume,
		Market:        d.Market,
	}
}

func browserHeaders() map[string]string {
	return map[string]string{
		"User-Agent": "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 Chrome/120.0.0.0 Safari/537.36",
	}
}
