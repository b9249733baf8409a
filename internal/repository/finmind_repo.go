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

// FinMind dataset identifiers.
const (
	datasetStockPrice        = "TaiwanStockPrice"
	datasetPER               = "TaiwanStockPER"
	datasetInstitutionalFlow = "TaiwanStockInstitutionalInvestorsBuySell"
	datasetFinancialAnalysis = "TaiwanStockFinancialAnalysis"
	datasetMonthRevenue      = "TaiwanStockMonthRevenue"
)

// FinMindRepository serves the heavy per-symbol datasets. Every method
// degrades to an empty slice on upstream failure; a 429 or 402 response
// puts the whole provider into cooldown.
type FinMindRepository interface {
	GetStockPrices(ctx context.Context, symbol, startDate string) ([]dto.OHLCV, error)
	GetValuations(ctx context.Context, symbol, startDate string) ([]dto.ValuationRow, error)
	GetChipFlows(ctx context.Context, symbol, startDate string) ([]dto.ChipFlowRow, error)
	GetFinancials(ctx context.Context, symbol, startDate string) ([]dto.FinancialRow, error)
	GetRevenues(ctx context.Context, symbol, startDate string) ([]dto.RevenueRow, error)
}

type finMindRepository struct {
	httpClient httpclient.HTTPClient
	throttler  *throttle.Scheduler
	cfg        *config.Config
	logger     *logger.Logger
}

func NewFinMindRepository(cfg *config.Config, throttler *throttle.Scheduler, log *logger.Logger) FinMindRepository {
	return &finMindRepository{
		httpClient: httpclient.New(cfg.FinMind.BaseURL, cfg.FinMind.Timeout, browserHeaders()),
		throttler:  throttler,
		cfg:        cfg,
		logger:     log,
	}
}

// cleanSymbol strips exchange suffixes and any non-numeric characters;
// FinMind only understands bare TWSE codes.
func cleanSymbol(symbol string) string {
	base, _, _ := strings.Cut(symbol, ".")
	var b strings.Builder
	for _, r := range base {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func (r *finMindRepository) GetStockPrices(ctx context.Context, symbol, startDate string) ([]dto.OHLCV, error) {
	rows, err := fetchFinMindDataset[dto.FinMindPriceRow](r, ctx, datasetStockPrice, symbol, startDate)
	if err != nil {
		return nil, err
	}

	bars := make([]dto.OHLCV, 0, len(rows))
	for _, row := range rows {
		bars = append(bars, dto.OHLCV{
			Open:   row.Open,
			High:   row.Max,
			Low:    row.Min,
			Close:  row.Close,
			Volume: row.TradingVolume,
			Date:   row.Date,
		})
	}
	return bars, nil
}

func (r *finMindRepository) GetValuations(ctx context.Context, symbol, startDate string) ([]dto.ValuationRow, error) {
	return fetchFinMindDataset[dto.ValuationRow](r, ctx, datasetPER, symbol, startDate)
}

func (r *finMindRepository) GetChipFlows(ctx context.Context, symbol, startDate string) ([]dto.ChipFlowRow, error) {
	return fetchFinMindDataset[dto.ChipFlowRow](r, ctx, datasetInstitutionalFlow, symbol, startDate)
}

func (r *finMindRepository) GetFinancials(ctx context.Context, symbol, startDate string) ([]dto.FinancialRow, error) {
	return fetchFinMindDataset[dto.FinancialRow](r, ctx, datasetFinancialAnalysis, symbol, startDate)
}

func (r *finMindRepository) GetRevenues(ctx context.Context, symbol, startDate string) ([]dto.RevenueRow, error) {
	return fetchFinMindDataset[dto.RevenueRow](r, ctx, datasetMonthRevenue, symbol, startDate)
}

func fetchFinMindDataset[T any](r *finMindRepository, ctx context.Context, dataset, symbol, startDate string) ([]T, error) {
	sid := cleanSymbol(symbol)
	if sid == "" {
		return nil, nil
	}

	if !r.throttler.Available(dto.ProviderFinMind) {
		r.logger.DebugContext(ctx, "FinMind is cooling down, skipping dataset fetch",
			logger.StringField("dataset", dataset),
			logger.StringField("symbol", sid))
		return nil, nil
	}

	var rows []T
	err := r.throttler.Do(ctx, "finmind:"+dataset+":"+sid, func(ctx context.Context) error {
		queryParams := map[string]string{
			"dataset":    dataset,
			"data_id":    sid,
			"start_date": startDate,
		}

		var finmindResp dto.FinMindResponse[T]
		resp, err := r.httpClient.Get(ctx, "/data", queryParams, nil, &finmindResp)
		if err != nil {
			r.logger.WarnContext(ctx, "FinMind request failed",
				logger.ErrorField(err),
				logger.StringField("dataset", dataset),
				logger.StringField("symbol", sid))
			return nil
		}

		switch resp.StatusCode {
		case http.StatusOK:
			rows = finmindResp.Data
		case http.StatusTooManyRequests, http.StatusPaymentRequired:
			r.logger.WarnContext(ctx, "FinMind rate limit hit, entering cooldown",
				logger.IntField("status_code", resp.StatusCode),
				logger.DurationField("cooldown", r.cfg.Throttle.FinMindCooldown))
			r.throttler.MarkCooldown(dto.ProviderFinMind, r.cfg.Throttle.FinMindCooldown)
		default:
			r.logger.WarnContext(ctx, "FinMind returned non-OK status",
				logger.IntField("status_code", resp.StatusCode),
				logger.StringField("dataset", dataset),
				logger.StringField("symbol", sid))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}
