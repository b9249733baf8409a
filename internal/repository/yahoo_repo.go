package repository

import (
	"context"
	"net/http"
	"strings"

	"stock-insight/config"
	"stock-insight/internal/dto"
	"stock-insight/pkg/httpclient"
	"stock-insight/pkg/logger"
	"stock-insight/pkg/throttle"
)

// YahooChartRepository is the secondary chart-based quote provider, also
// used for the market-breadth index series.
type YahooChartRepository interface {
	GetQuote(ctx context.Context, symbol, market string) (*dto.Quote, error)
	GetCloses(ctx context.Context, symbol, dataRange, interval string) ([]float64, error)
}

type yahooChartRepository struct {
	httpClient httpclient.HTTPClient
	throttler  *throttle.Scheduler
	cfg        *config.Config
	logger     *logger.Logger
}

func NewYahooChartRepository(cfg *config.Config, throttler *throttle.Scheduler, log *logger.Logger) YahooChartRepository {
	return &yahooChartRepository{
		httpClient: httpclient.New(cfg.Yahoo.BaseURL, cfg.Yahoo.Timeout, browserHeaders()),
		throttler:  throttler,
		cfg:        cfg,
		logger:     log,
	}
}

// toYahooSymbol maps a TWSE/OTC code to the Yahoo suffix form. Index
// symbols (^TWII and friends) pass through untouched.
func toYahooSymbol(symbol, market string) string {
	if strings.Contains(symbol, "^") {
		return symbol
	}
	if market == dto.MarketOTC {
		return symbol + ".TWO"
	}
	return symbol + ".TW"
}

func (r *yahooChartRepository) GetQuote(ctx context.Context, symbol, market string) (*dto.Quote, error) {
	var quote *dto.Quote
	err := r.throttler.Do(ctx, "yahoo:"+symbol, func(ctx context.Context) error {
		yahooResp, ok := r.fetchChart(ctx, toYahooSymbol(symbol, market), "2d", "1d")
		if !ok || len(yahooResp.Chart.Result) == 0 {
			return nil
		}

		result := yahooResp.Chart.Result[0]
		price := result.Meta.RegularMarketPrice
		prevClose := result.Meta.ChartPreviousClose
		if prevClose == 0 {
			prevClose = price
		}
		change := price - prevClose

		changePercent := 0.0
		if prevClose != 0 {
			changePercent = change / prevClose * 100
		}

		volume := 0.0
		if len(result.Indicators.Quote) > 0 {
			for i := len(result.Indicators.Quote[0].Volume) - 1; i >= 0; i-- {
				if v := result.Indicators.Quote[0].Volume[i]; v != nil {
					volume = *v
					break
				}
			}
		}

		quote = &dto.Quote{
			Symbol:        symbol,
			Name:          result.Meta.ShortName,
			Price:         price,
			Change:        change,
			ChangePercent: changePercent,
			Volume:        volume,
			Market:        market,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return quote, nil
}

// GetCloses returns the non-null close series for a symbol, oldest-first.
func (r *yahooChartRepository) GetCloses(ctx context.Context, symbol, dataRange, interval string) ([]float64, error) {
	var closes []float64
	err := r.throttler.Do(ctx, "yahoo:"+symbol, func(ctx context.Context) error {
		yahooResp, ok := r.fetchChart(ctx, toYahooSymbol(symbol, dto.MarketTSE), dataRange, interval)
		if !ok || len(yahooResp.Chart.Result) == 0 || len(yahooResp.Chart.Result[0].Indicators.Quote) == 0 {
			return nil
		}
		for _, c := range yahooResp.Chart.Result[0].Indicators.Quote[0].Close {
			if c != nil {
				closes = append(closes, *c)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return closes, nil
}

func (r *yahooChartRepository) fetchChart(ctx context.Context, yahooSymbol, dataRange, interval string) (*dto.YahooChartResponse, bool) {
	queryParams := map[string]string{
		"range":    dataRange,
		"interval": interval,
	}

	var yahooResp dto.YahooChartResponse
	resp, err := r.httpClient.Get(ctx, "/"+yahooSymbol, queryParams, nil, &yahooResp)
	if err != nil {
		r.logger.WarnContext(ctx, "Yahoo chart request failed", logger.ErrorField(err), logger.StringField("symbol", yahooSymbol))
		return nil, false
	}

	if resp.StatusCode != http.StatusOK {
		r.logger.WarnContext(ctx, "Yahoo returned non-OK status",
			logger.IntField("status_code", resp.StatusCode),
			logger.StringField("symbol", yahooSymbol))
		return nil, false
	}

	if yahooResp.Chart.Error != nil {
		r.logger.WarnContext(ctx, "Yahoo chart API error",
			logger.Field("error", yahooResp.Chart.Error),
			logger.StringField("symbol", yahooSymbol))
		return nil, false
	}

	return &yahooResp, true
}
