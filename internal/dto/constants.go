package dto

// Upstream provider identifiers, used for quote cache keys and throttle
// cooldown tracking.
const (
	ProviderFugle   = "fugle"
	ProviderFinMind = "finmind"
	ProviderYahoo   = "yahoo"
)

// Cache key formats.
const (
	KeyQuote  = "quote:%s:%s" // provider, symbol
	KeyStatic = "static:%s"   // symbol
)

// Index symbols tracked on the market pulse view.
const (
	SymbolTWII   = "^TWII"
	SymbolNasdaq = "^IXIC"
	SymbolSOX    = "^SOX"
)

const (
	MarketTSE = "TSE"
	MarketOTC = "OTC"
)

const SectorNameFallback = "市場標的"

// SectorETF entries are excluded from deep scanning.
const SectorETF = "ETF 戰略精選"

// SectorOrder fixes the sweep order; maps alone would randomize it.
var SectorOrder = []string{
	"半導體權值",
	"AI 伺服器",
	"航運雙雄",
	"金融存股",
	"電動車供應鏈",
	SectorETF,
}

var SectorMap = map[string][]string{
	"半導體權值":   {"2330", "2454", "2303", "3711", "2379", "3034"},
	"AI 伺服器":  {"2317", "2382", "3231", "2376", "6669", "2356"},
	"航運雙雄":    {"2603", "2609", "2615", "2637", "5608", "2606"},
	"金融存股":    {"2881", "2882", "2891", "2886", "2884", "2892"},
	"電動車供應鏈":  {"2308", "1536", "2371", "3533", "2360", "1519"},
	SectorETF:  {"0050", "0056", "00878", "00919", "00929", "006208"},
}

// StockNameMap resolves common symbols without a network round trip.
var StockNameMap = map[string]string{
	"2330":   "台積電",
	"2454":   "聯發科",
	"2303":   "聯電",
	"3711":   "日月光投控",
	"2379":   "瑞昱",
	"3034":   "聯詠",
	"2317":   "鴻海",
	"2382":   "廣達",
	"3231":   "緯創",
	"2376":   "技嘉",
	"6669":   "緯穎",
	"2356":   "英業達",
	"2603":   "長榮",
	"2609":   "陽明",
	"2615":   "萬海",
	"2637":   "慧洋-KY",
	"5608":   "四維航",
	"2606":   "裕民",
	"2881":   "富邦金",
	"2882":   "國泰金",
	"2891":   "中信金",
	"2886":   "兆豐金",
	"2884":   "玉山金",
	"2892":   "第一金",
	"2308":   "台達電",
	"1536":   "和大",
	"2371":   "大同",
	"3533":   "嘉澤",
	"2360":   "致茂",
	"1519":   "華城",
	"0050":   "元大台灣50",
	"0056":   "元大高股息",
	"00878":  "國泰永續高股息",
	"00919":  "群益台灣精選高息",
	"00929":  "復華台灣科技優息",
	"006208": "富邦台50",
	SymbolTWII:   "加權指數",
	SymbolNasdaq: "那斯達克",
	SymbolSOX:    "費城半導體",
}

// SectorNameOf returns the sector a symbol belongs to, or the fallback.
func SectorNameOf(symbol string) string {
	for _, name := range SectorOrder {
		for _, id := range SectorMap[name] {
			if id == symbol {
				return name
			}
		}
	}
	return SectorNameFallback
}

// ChangeColor maps a signed change to the Taiwan market color convention
// (red up, green down).
func ChangeColor(change float64) string {
	switch {
	case change > 0:
		return "red"
	case change < 0:
		return "green"
	default:
		return "gray"
	}
}
