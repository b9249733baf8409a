package dto

import "encoding/json"

// AnalyzeMode selects how much of the static bundle may come from cache.
type AnalyzeMode string

const (
	// ModeFull always refetches static data, seeding the cache.
	ModeFull AnalyzeMode = "full"
	// ModeFast reuses a valid cache entry, fetching once when stale.
	ModeFast AnalyzeMode = "fast"
	// ModePulse never fetches static data; stale or missing entries are
	// replaced with the zeroed default bundle.
	ModePulse AnalyzeMode = "pulse"
)

// TrendStatus is the literal four-branch MA alignment label.
type TrendStatus string

const (
	TrendBullishAligned TrendStatus = "多頭排列"
	TrendBearishAligned TrendStatus = "空頭排列"
	TrendPullback       TrendStatus = "回檔修正"
	TrendRebound        TrendStatus = "反彈格局"
	TrendChoppy         TrendStatus = "震盪整理"
)

type BollingerBands struct {
	Upper     float64 `json:"upper"`
	Mid       float64 `json:"mid"`
	Lower     float64 `json:"lower"`
	Bandwidth float64 `json:"bandwidth"`
}

// TechIndicatorSet holds one timeframe's indicator readings. MA fields are
// nil when the series is too short, so "no reading" is never confused with
// a true zero.
type TechIndicatorSet struct {
	RSI         float64        `json:"rsi"`
	BBands      BollingerBands `json:"bbands"`
	MA20        *float64       `json:"ma20"`
	MA60        *float64       `json:"ma60"`
	TrendStatus TrendStatus    `json:"trend_status"`
}

type KeyLevels struct {
	RecentHigh      float64 `json:"recent_high"`
	RecentLow       float64 `json:"recent_low"`
	HighVolumePrice float64 `json:"high_vol_price"`
}

type KLineNarrative struct {
	DailyStream  string `json:"daily_stream"`
	WeeklyStream string `json:"weekly_stream"`
}

type AdvancedTech struct {
	Daily          TechIndicatorSet `json:"daily"`
	Weekly         TechIndicatorSet `json:"weekly"`
	KLineNarrative KLineNarrative   `json:"k_line_narrative"`
	KeyLevels      KeyLevels        `json:"key_levels"`
}

type PriceInfo struct {
	Price         float64 `json:"price"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"changePercent"`
}

// StopLoss is either a price level or a holding instruction such as
// 長期持有. A price serializes as a JSON number, an instruction as a string.
type StopLoss struct {
	Price float64
	Label string
}

func StopLossPrice(price float64) StopLoss { return StopLoss{Price: price} }
func StopLossLabel(label string) StopLoss  { return StopLoss{Label: label} }

func (s StopLoss) MarshalJSON() ([]byte, error) {
	if s.Label != "" {
		return json.Marshal(s.Label)
	}
	return json.Marshal(s.Price)
}

func (s *StopLoss) UnmarshalJSON(data []byte) error {
	*s = StopLoss{}
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &s.Label)
	}
	return json.Unmarshal(data, &s.Price)
}

type Strategy struct {
	Entry      float64  `json:"entry"`
	StopLoss   StopLoss `json:"stop_loss"`
	TakeProfit float64  `json:"take_profit"`
	Desc       string   `json:"desc"`
}

type AnalysisSummary struct {
	Score       int      `json:"score"`
	Action      string   `json:"action"`
	Reasons     []string `json:"reasons"`
	StrategyMom Strategy `json:"strategy_mom"`
	StrategyVal Strategy `json:"strategy_val"`
	ReportText  string   `json:"report_text"`
}

type Fundamentals struct {
	PE            *float64 `json:"pe"`
	ROE           string   `json:"roe"`
	Dividend      string   `json:"dividend"`
	ProfitMargins string   `json:"profitMargins"`
	Volume        float64  `json:"vol"`
	MA20          *float64 `json:"ma20"`
	MA60          *float64 `json:"ma60"`
}

// Chips reports 5-day institutional net flow in thousands of shares. Nil
// means the dataset had no usable rows, which is distinct from a flat zero.
type Chips struct {
	Trust5d     *float64 `json:"trust_5d"`
	Foreign5d   *float64 `json:"foreign_5d"`
	TrustStreak int      `json:"trust_streak"`
}

type HistoryPoint struct {
	Date  string   `json:"date"`
	Price float64  `json:"price"`
	MA20  *float64 `json:"ma20,omitempty"`
	MA60  *float64 `json:"ma60,omitempty"`
}

type Forecasts struct {
	EstMonthRev     string    `json:"est_month_rev"`
	EstEPS          string    `json:"est_eps"`
	EstAnnualReturn string    `json:"est_annual_return"`
	MarketSentiment int       `json:"market_sentiment"`
	QuarterlyEPS    []float64 `json:"quarterly_eps"`
}

// AnalysisDetail is the composite read-only result assembled per request.
// It is never cached itself; it is rebuilt from the two cache tiers plus
// the current live quote.
type AnalysisDetail struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	PriceInfo     PriceInfo       `json:"price_info"`
	Analysis      AnalysisSummary `json:"analysis"`
	Fundamentals  Fundamentals    `json:"fundamentals"`
	AdvancedTech  AdvancedTech    `json:"advanced_tech"`
	MarketContext MarketContext   `json:"market_context"`
	Chips         Chips           `json:"chips"`
	Bias          float64         `json:"bias"`
	History       []HistoryPoint  `json:"history"`
	Forecasts     Forecasts       `json:"forecasts"`
}

// StockSummary is the lightweight row kept in watchlists and sector
// snapshots; deep scanning upgrades it in place.
type StockSummary struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Price         float64 `json:"price"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"changePercent"`
	Score         int     `json:"score"`
	Action        string  `json:"action"`
	IsDetailed    bool    `json:"isDetailed"`
}

type TrendItem struct {
	Name   string  `json:"name"`
	Val    string  `json:"val"`
	Change float64 `json:"change"`
	Color  string  `json:"color"`
}

type SectorSnapshot struct {
	Name   string         `json:"name"`
	Score  int            `json:"score"`
	Stocks []StockSummary `json:"stocks"`
}

type MarketPulse struct {
	Trends          []TrendItem      `json:"trends"`
	Sectors         []SectorSnapshot `json:"sectors"`
	Recommendations []StockSummary   `json:"recommendations"`
	Warning         string           `json:"warning"`
	ScanStatus      string           `json:"scanStatus"`
}

// ScanStatus reports deep-scan progress to the API layer.
type ScanStatus struct {
	Running   bool `json:"running"`
	Pending   int  `json:"pending"`
	Completed int  `json:"completed"`
}

type CheckStockResult struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
