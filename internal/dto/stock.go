package dto

import "time"

// OHLCV is one price bar, oldest-first when held in a slice. A transient
// "today" bar may be synthesized from the live quote during analysis; the
// stored history itself is never mutated.
type OHLCV struct {
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume float64 `json:"volume"`
	Date   string  `json:"date"`
}

// Quote is a normalized live quote from either provider.
type Quote struct {
	Symbol        string  `json:"symbol"`
	Name          string  `json:"name"`
	Price         float64 `json:"price"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"change_percent"`
	Volume        float64 `json:"volume"`
	Market        string  `json:"market"`
}

// Fugle intraday quote response (proxied).
type FugleQuoteResponse struct {
	Symbol        string  `json:"symbol"`
	NameZhTw      string  `json:"nameZhTw"`
	Market        string  `json:"market"`
	PreviousClose float64 `json:"previousClose"`
	ClosePrice    float64 `json:"closePrice"`
	LastTrade     struct {
		Price float64 `json:"price"`
	} `json:"lastTrade"`
	Quote struct {
		Change      float64 `json:"change"`
		TotalVolume float64 `json:"totalVolume"`
	} `json:"quote"`
}

// Yahoo Finance chart API response.
type YahooChartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol             string  `json:"symbol"`
				ShortName          string  `json:"shortName"`
				RegularMarketPrice float64 `json:"regularMarketPrice"`
				ChartPreviousClose float64 `json:"chartPreviousClose"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				// Pointer elements: Yahoo emits JSON nulls for halted bars.
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error interface{} `json:"error"`
	} `json:"chart"`
}

// FinMind dataset rows. Each dataset shares the envelope but carries its
// own row shape.
type FinMindResponse[T any] struct {
	Msg    string `json:"msg"`
	Status int    `json:"status"`
	Data   []T    `json:"data"`
}

type FinMindPriceRow struct {
	Date          string  `json:"date"`
	Open          float64 `json:"open"`
	Max           float64 `json:"max"`
	Min           float64 `json:"min"`
	Close         float64 `json:"close"`
	TradingVolume float64 `json:"Trading_Volume"`
}

type ValuationRow struct {
	Date          string  `json:"date"`
	PER           float64 `json:"PER"`
	PBR           float64 `json:"PBR"`
	DividendYield float64 `json:"dividend_yield"`
}

type ChipFlowRow struct {
	Date string  `json:"date"`
	Name string  `json:"name"`
	Buy  float64 `json:"buy"`
	Sell float64 `json:"sell"`
}

type FinancialRow struct {
	Date  string  `json:"date"`
	Type  string  `json:"type"`
	Value float64 `json:"value"`
}

type RevenueRow struct {
	Date              string  `json:"date"`
	Revenue           float64 `json:"revenue"`
	RevenueYearGrowth float64 `json:"revenue_year_growth"`
}

// MarketContext is the index/sector/peer backdrop fetched alongside the
// per-symbol datasets.
type MarketContext struct {
	IndexPerformance  IndexPerformance  `json:"index_performance"`
	SectorPerformance SectorPerformance `json:"sector_performance"`
}

type IndexPerformance struct {
	TwiiChange   float64 `json:"twii_change"`
	NasdaqChange float64 `json:"nasdaq_change"`
	SoxChange    float64 `json:"sox_change"`
}

type SectorPerformance struct {
	SectorName string       `json:"sector_name"`
	AvgChange  float64      `json:"avg_change"`
	Peers      []PeerChange `json:"peers"`
}

type PeerChange struct {
	Name   string  `json:"name"`
	Change float64 `json:"change"`
}

// StaticAnalysisData bundles everything that does not move intraday:
// history, valuation, chip flow, fundamentals, revenue, market breadth and
// sector context. It is fetched and replaced as one unit; never patched.
type StaticAnalysisData struct {
	History         []OHLCV        `json:"history"`
	Valuations      []ValuationRow `json:"valuations"`
	ChipFlows       []ChipFlowRow  `json:"chip_flows"`
	FinancialRows   []FinancialRow `json:"financial_rows"`
	RevenueRows     []RevenueRow   `json:"revenue_rows"`
	MarketBelowMA20 bool           `json:"market_below_ma20"`
	MarketContext   MarketContext  `json:"market_context"`
	Timestamp       time.Time      `json:"timestamp"`
}

// DefaultStaticData is the zeroed bundle substituted in pulse mode when no
// valid cache entry exists.
func DefaultStaticData() StaticAnalysisData {
	return StaticAnalysisData{
		MarketContext: MarketContext{
			SectorPerformance: SectorPerformance{SectorName: SectorNameFallback, Peers: []PeerChange{}},
		},
	}
}
