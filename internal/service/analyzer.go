package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"stock-insight/config"
	"stock-insight/internal/dto"
	"stock-insight/internal/indicator"
	"stock-insight/internal/model"
	"stock-insight/internal/repository"
	"stock-insight/internal/scoring"
	"stock-insight/pkg/logger"
	"stock-insight/pkg/utils"
)

const (
	historyPoints   = 20
	keyLevelWindow  = 60
	syntheticBarTag = "Today"
	livePointLabel  = "即時"
)

// AnalyzerService composes the full per-symbol analysis from the live
// quote plus the static bundle. The composite is rebuilt on every call
// and never cached itself.
type AnalyzerService interface {
	GetAnalyze(ctx context.Context, symbol string, mode dto.AnalyzeMode) dto.AnalysisDetail
}

type analyzerService struct {
	cfg          *config.Config
	log          *logger.Logger
	quoteSvc     QuoteService
	staticSvc    StaticDataService
	snapshotRepo repository.AnalysisSnapshotRepository
	loc          *time.Location
	nowFn        func() time.Time
}

func NewAnalyzerService(
	cfg *config.Config,
	log *logger.Logger,
	quoteSvc QuoteService,
	staticSvc StaticDataService,
	repo *repository.Repository,
	loc *time.Location,
) AnalyzerService {
	return &analyzerService{
		cfg:          cfg,
		log:          log,
		quoteSvc:     quoteSvc,
		staticSvc:    staticSvc,
		snapshotRepo: repo.AnalysisSnapshotRepo,
		loc:          loc,
		nowFn:        time.Now,
	}
}

func (s *analyzerService) GetAnalyze(ctx context.Context, symbol string, mode dto.AnalyzeMode) dto.AnalysisDetail {
	live := s.quoteSvc.GetLiveQuote(ctx, symbol)

	staticData, valid := s.staticSvc.Get(ctx, symbol)
	switch {
	case mode == dto.ModeFull || (!valid && mode == dto.ModeFast):
		staticData = s.staticSvc.Fetch(ctx, symbol)
	case !valid && mode == dto.ModePulse:
		staticData = dto.DefaultStaticData()
	}

	detail := s.compute(ctx, symbol, live, staticData)

	if mode == dto.ModeFull {
		s.persistSnapshot(ctx, detail)
	}

	return detail
}

// compute is the pure synthesis step: static bundle plus live quote in,
// composite detail out. It performs no network I/O.
func (s *analyzerService) compute(ctx context.Context, symbol string, live *dto.Quote, staticData dto.StaticAnalysisData) dto.AnalysisDetail {
	hist := staticData.History

	currentPrice := 0.0
	currentVol := 0.0
	changePct := 0.0
	change := 0.0
	liveName := ""
	if live != nil {
		currentPrice = live.Price
		currentVol = live.Volume
		changePct = live.ChangePercent
		change = live.Change
		liveName = live.Name
	}
	if currentVol == 0 && len(hist) > 0 {
		currentVol = hist[len(hist)-1].Volume
	}

	// Splice a synthetic bar for today onto the stored history when the
	// last bar predates the current session.
	dailyBars := hist
	todayStr := utils.DateString(s.nowFn(), s.loc)
	if currentPrice > 0 && len(hist) > 0 && hist[len(hist)-1].Date != todayStr {
		dailyBars = append(append([]dto.OHLCV{}, hist...), dto.OHLCV{
			Open:   currentPrice,
			High:   currentPrice,
			Low:    currentPrice,
			Close:  currentPrice,
			Volume: currentVol,
			Date:   syntheticBarTag,
		})
	}

	dailyCloses := make([]float64, len(dailyBars))
	for i, b := range dailyBars {
		dailyCloses[i] = b.Close
	}

	dailyMA20 := maybeMA(dailyCloses, 20)
	dailyMA60 := maybeMA(dailyCloses, 60)

	weeklyCloses := indicator.WeeklyCloses(hist)
	weeklyBars := indicator.AggregateWeekly(hist)
	if currentPrice > 0 && len(weeklyCloses) > 0 {
		weeklyCloses[len(weeklyCloses)-1] = currentPrice
		weeklyBars[len(weeklyBars)-1].Close = currentPrice
	}

	weeklyMA20 := maybeMA(weeklyCloses, 20)
	weeklyMA60 := maybeMA(weeklyCloses, 60)

	advancedTech := dto.AdvancedTech{
		Daily: dto.TechIndicatorSet{
			RSI:         indicator.RSI(dailyCloses, 14),
			BBands:      indicator.BollingerBands(dailyCloses, 20, 2),
			MA20:        dailyMA20,
			MA60:        dailyMA60,
			TrendStatus: indicator.TrendStatus(currentPrice, deref(dailyMA20), deref(dailyMA60)),
		},
		Weekly: dto.TechIndicatorSet{
			RSI:         indicator.RSI(weeklyCloses, 14),
			BBands:      indicator.BollingerBands(weeklyCloses, 20, 2),
			MA20:        weeklyMA20,
			MA60:        weeklyMA60,
			TrendStatus: indicator.TrendStatus(currentPrice, deref(weeklyMA20), deref(weeklyMA60)),
		},
		KLineNarrative: dto.KLineNarrative{
			DailyStream:  indicator.PatternStream(dailyBars, 12),
			WeeklyStream: indicator.PatternStream(weeklyBars, 15),
		},
		KeyLevels: keyLevels(hist, live, currentPrice),
	}

	// Final MA readings gate on the raw history length so a synthetic bar
	// never fabricates a reading the stored series cannot support.
	var ma20Final, ma60Final, avgVol5 *float64
	if len(hist) >= 20 {
		ma20Final = dailyMA20
	}
	if len(hist) >= 60 {
		ma60Final = dailyMA60
	}
	if len(hist) >= 5 {
		sum := 0.0
		for _, b := range hist[len(hist)-5:] {
			sum += b.Volume
		}
		avgVol5 = utils.ToPointer(sum / 5)
	}

	history := buildHistory(hist)
	if currentPrice > 0 && (len(history) == 0 || history[len(history)-1].Date != todayStr) {
		history = append(history, dto.HistoryPoint{
			Date:  livePointLabel,
			Price: currentPrice,
			MA20:  ma20Final,
			MA60:  ma60Final,
		})
	}

	pe, pbr, dividend := latestValuation(staticData.Valuations)

	roeVal, roeDisplay := resolveROE(staticData.FinancialRows, pe, pbr)
	marginDisplay := "-"
	if margin, ok := latestFinancialValue(staticData.FinancialRows, "Net_Profit_Margin"); ok {
		marginDisplay = fmt.Sprintf("%.2f%%", margin)
	}

	forecasts := buildForecasts(staticData.RevenueRows, roeVal)

	chips := aggregateChips(staticData.ChipFlows)

	scoreResult := scoring.Calculate(scoring.Input{
		Price:           currentPrice,
		ChangePercent:   changePct,
		Volume:          currentVol,
		MA20:            ma20Final,
		MA60:            ma60Final,
		AvgVol5:         avgVol5,
		ROE:             roeVal,
		PE:              pe,
		Trust5d:         chips.Trust5d,
		Foreign5d:       chips.Foreign5d,
		TrustStreak:     chips.TrustStreak,
		MarketBelowMA20: staticData.MarketBelowMA20,
	})

	momDiscount := 0.96
	momDesc := "動能疲弱，建議縮小倉位或空倉觀望。"
	if scoreResult.Score >= 70 {
		momDiscount = 0.985
		momDesc = "趨勢明確，適合沿月線分批佈局。"
	}
	momEntry := utils.RoundToTaiwanTick(currentPrice * momDiscount)
	strategyMom := dto.Strategy{
		Entry:      momEntry,
		StopLoss:   dto.StopLossPrice(utils.RoundToTaiwanTick(momEntry * 0.93)),
		TakeProfit: utils.RoundToTaiwanTick(momEntry * 1.15),
		Desc:       momDesc,
	}

	valDiscount := 0.88
	valDesc := "估值偏高或效率不足，價值誘因較低。"
	if roeVal >= 12 {
		valDiscount = 0.94
		valDesc = "獲利效率穩定，價值面具支撐。"
	}
	valEntry := utils.RoundToTaiwanTick(currentPrice * valDiscount)
	strategyVal := dto.Strategy{
		Entry:      valEntry,
		StopLoss:   dto.StopLossLabel("長期持有"),
		TakeProfit: utils.RoundToTaiwanTick(valEntry * 1.3),
		Desc:       valDesc,
	}

	bias := 0.0
	if ma20Final != nil && *ma20Final > 0 {
		bias = math.Round((currentPrice-*ma20Final)/(*ma20Final)*100*100) / 100
	}

	dividendDisplay := "-"
	if dividend != 0 {
		dividendDisplay = fmt.Sprintf("%.2f%%", dividend)
	}

	return dto.AnalysisDetail{
		ID:   symbol,
		Name: s.quoteSvc.ResolveName(ctx, symbol, liveName),
		PriceInfo: dto.PriceInfo{
			Price:         currentPrice,
			Change:        change,
			ChangePercent: changePct,
		},
		Analysis: dto.AnalysisSummary{
			Score:       scoreResult.Score,
			Action:      scoreResult.Action,
			Reasons:     scoreResult.ReasonStrings(),
			StrategyMom: strategyMom,
			StrategyVal: strategyVal,
		},
		Fundamentals: dto.Fundamentals{
			PE:            pe,
			ROE:           roeDisplay,
			Dividend:      dividendDisplay,
			ProfitMargins: marginDisplay,
			Volume:        currentVol,
			MA20:          ma20Final,
			MA60:          ma60Final,
		},
		AdvancedTech:  advancedTech,
		MarketContext: staticData.MarketContext,
		Chips:         chips,
		Bias:          bias,
		History:       history,
		Forecasts:     forecasts,
	}
}

func (s *analyzerService) persistSnapshot(ctx context.Context, detail dto.AnalysisDetail) {
	payload, err := json.Marshal(detail)
	if err != nil {
		return
	}
	snapshot := &model.AnalysisSnapshot{
		Symbol: detail.ID,
		Score:  detail.Analysis.Score,
		Action: detail.Analysis.Action,
		Detail: payload,
	}
	if err := s.snapshotRepo.Save(ctx, snapshot); err != nil {
		s.log.WarnContext(ctx, "Failed to persist analysis snapshot",
			logger.ErrorField(err), logger.StringField("symbol", detail.ID))
	}
}

// keyLevels scans the trailing 60-bar window for the swing high, swing
// low and the close of the heaviest-volume bar. A live volume larger than
// every historical bar pulls the high-volume price to the live price.
func keyLevels(hist []dto.OHLCV, live *dto.Quote, currentPrice float64) dto.KeyLevels {
	levels := dto.KeyLevels{
		RecentHigh:      currentPrice,
		RecentLow:       currentPrice,
		HighVolumePrice: currentPrice,
	}

	window := hist
	if len(hist) > keyLevelWindow {
		window = hist[len(hist)-keyLevelWindow:]
	}
	if len(window) == 0 {
		return levels
	}

	high := window[0].Close
	low := window[0].Close
	maxVol := 0.0
	maxVolClose := 0.0
	for _, b := range window {
		if b.Close > high {
			high = b.Close
		}
		if b.Close < low {
			low = b.Close
		}
		if b.Volume > maxVol {
			maxVol = b.Volume
			maxVolClose = b.Close
		}
	}
	if live != nil && live.Price > 0 {
		if live.Price > high {
			high = live.Price
		}
		if live.Price < low {
			low = live.Price
		}
	}

	levels.RecentHigh = high
	levels.RecentLow = low
	if live != nil && live.Volume > maxVol {
		levels.HighVolumePrice = live.Price
	} else if maxVol > 0 {
		levels.HighVolumePrice = maxVolClose
	}
	return levels
}

// buildHistory emits the last 20 bars, each with moving averages computed
// over the prefix ending at that bar so early points honestly lack them.
func buildHistory(hist []dto.OHLCV) []dto.HistoryPoint {
	var points []dto.HistoryPoint
	for i := 0; i < historyPoints; i++ {
		idx := len(hist) - historyPoints + i
		if idx < 0 {
			continue
		}
		prefix := make([]float64, idx+1)
		for j := 0; j <= idx; j++ {
			prefix[j] = hist[j].Close
		}
		points = append(points, dto.HistoryPoint{
			Date:  hist[idx].Date,
			Price: hist[idx].Close,
			MA20:  maybeMA(prefix, 20),
			MA60:  maybeMA(prefix, 60),
		})
	}
	return points
}

// latestValuation picks the newest valuation row. Zero PER or PBR means
// the exchange published no figure and is reported as absent.
func latestValuation(rows []dto.ValuationRow) (pe *float64, pbr *float64, dividend float64) {
	if len(rows) == 0 {
		return nil, nil, 0
	}
	latest := rows[0]
	for _, r := range rows[1:] {
		if r.Date > latest.Date {
			latest = r
		}
	}
	if latest.PER != 0 {
		pe = utils.ToPointer(latest.PER)
	}
	if latest.PBR != 0 {
		pbr = utils.ToPointer(latest.PBR)
	}
	return pe, pbr, latest.DividendYield
}

func latestFinancialValue(rows []dto.FinancialRow, typ string) (float64, bool) {
	found := false
	var best dto.FinancialRow
	for _, r := range rows {
		if r.Type != typ {
			continue
		}
		if !found || r.Date > best.Date {
			best = r
			found = true
		}
	}
	return best.Value, found
}

// resolveROE prefers the official quarterly figure; otherwise estimates
// it from PBR/PER and marks the display value as an estimate.
func resolveROE(rows []dto.FinancialRow, pe, pbr *float64) (float64, string) {
	if official, ok := latestFinancialValue(rows, "Return_on_Equity_A_percent"); ok {
		return official, fmt.Sprintf("%.2f%%", official)
	}
	if pbr != nil && pe != nil && *pe > 0 {
		est := *pbr / *pe * 100
		return est, fmt.Sprintf("%.2f%% (估)", est)
	}
	return 0, "-"
}

// buildForecasts derives a revenue-growth outlook. With under two revenue
// rows everything stays at its placeholder value.
func buildForecasts(rows []dto.RevenueRow, roeVal float64) dto.Forecasts {
	forecasts := dto.Forecasts{
		EstMonthRev:     "資料計算中",
		EstEPS:          "-",
		EstAnnualReturn: "8~12%",
		MarketSentiment: 60,
		QuarterlyEPS:    []float64{},
	}
	if len(rows) < 2 {
		return forecasts
	}

	sorted := append([]dto.RevenueRow{}, rows...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Date > sorted[j].Date })
	latest := sorted[0]

	yoy := latest.RevenueYearGrowth
	if yoy == 0 && len(latest.Date) >= 7 {
		year, err := strconv.Atoi(latest.Date[:4])
		if err == nil {
			prevPrefix := strconv.Itoa(year-1) + latest.Date[4:7]
			for _, r := range sorted[1:] {
				if strings.HasPrefix(r.Date, prevPrefix) && r.Revenue > 0 {
					yoy = (latest.Revenue - r.Revenue) / r.Revenue * 100
					break
				}
			}
		}
	}

	forecasts.EstMonthRev = fmt.Sprintf("%.1f%% (YoY)", yoy)
	forecasts.MarketSentiment = int(math.Round(math.Min(98, math.Max(30, 60+yoy*0.5))))
	forecasts.EstAnnualReturn = fmt.Sprintf("%.1f%%", math.Max(2, roeVal*0.6+yoy*0.2))
	return forecasts
}

// aggregateChips sums the last five distinct trading days of trust and
// foreign net flow (reported in thousands of shares) and counts the
// trust buy streak over all available days.
func aggregateChips(rows []dto.ChipFlowRow) dto.Chips {
	chips := dto.Chips{}
	if len(rows) == 0 {
		return chips
	}

	dateSet := map[string]struct{}{}
	for _, r := range rows {
		dateSet[r.Date] = struct{}{}
	}
	dates := make([]string, 0, len(dateSet))
	for d := range dateSet {
		dates = append(dates, d)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))

	recent := dates
	if len(dates) > 5 {
		recent = dates[:5]
	}
	recentSet := map[string]struct{}{}
	for _, d := range recent {
		recentSet[d] = struct{}{}
	}

	trustSum, foreignSum := 0.0, 0.0
	hasValidData := false
	for _, r := range rows {
		if _, ok := recentSet[r.Date]; !ok {
			continue
		}
		net := r.Buy - r.Sell
		name := strings.ToLower(r.Name)
		if strings.Contains(name, "trust") {
			trustSum += net
			hasValidData = true
		}
		if strings.Contains(name, "foreign") {
			foreignSum += net
			hasValidData = true
		}
	}

	for _, d := range dates {
		dayNet := 0.0
		seen := false
		for _, r := range rows {
			if r.Date != d || !strings.Contains(strings.ToLower(r.Name), "trust") {
				continue
			}
			dayNet += r.Buy - r.Sell
			seen = true
		}
		if !seen || dayNet <= 0 {
			break
		}
		chips.TrustStreak++
	}

	if hasValidData {
		chips.Trust5d = utils.ToPointer(math.Round(trustSum / 1000))
		chips.Foreign5d = utils.ToPointer(math.Round(foreignSum / 1000))
	}
	return chips
}

func maybeMA(series []float64, period int) *float64 {
	if v, ok := indicator.MovingAverage(series, period); ok {
		return utils.ToPointer(v)
	}
	return nil
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
