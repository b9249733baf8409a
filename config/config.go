package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Log      Logger         `mapstructure:"logger"`
	DB       Database       `mapstructure:"database"`
	API      API            `mapstructure:"api"`
	Fugle    Fugle          `mapstructure:"fugle"`
	FinMind  FinMind        `mapstructure:"finmind"`
	Yahoo    Yahoo          `mapstructure:"yahoo"`
	Throttle Throttle       `mapstructure:"throttle"`
	Cache    Cache          `mapstructure:"cache"`
	Market   MarketCalendar `mapstructure:"market"`
	Scan     Scan           `mapstructure:"scan"`
}

type Logger struct {
	Level    string `mapstructure:"level"`
	Encoding string `mapstructure:"encoding"`
}

type Database struct {
	Enabled         bool   `mapstructure:"enabled"`
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	DBName          string `mapstructure:"name"`
	SSLMode         string `mapstructure:"ssl_mode"`
	TimeZone        string `mapstructure:"time_zone"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime string `mapstructure:"conn_max_lifetime"`
	LogLevel        string `mapstructure:"log_level"`
}

type API struct {
	Port int `mapstructure:"port"`
}

type Fugle struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
	APIKey  string        `mapstructure:"api_key"`
}

type FinMind struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type Yahoo struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// Throttle bounds the outbound request rate shared by every provider.
type Throttle struct {
	MinRequestGap   time.Duration `mapstructure:"min_request_gap"`
	QueueSize       int           `mapstructure:"queue_size"`
	FugleCooldown   time.Duration `mapstructure:"fugle_cooldown"`
	FinMindCooldown time.Duration `mapstructure:"finmind_cooldown"`
}

type Cache struct {
	QuoteTTL        time.Duration `mapstructure:"quote_ttl"`
	StaticMaxAge    time.Duration `mapstructure:"static_max_age"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

// MarketCalendar carries the local session parameters used by the
// static-cache expiry rule.
type MarketCalendar struct {
	TimeZone   string `mapstructure:"time_zone"`
	SettleHour int    `mapstructure:"settle_hour"`
}

type Scan struct {
	BatchSize          int           `mapstructure:"batch_size"`
	BatchDelay         time.Duration `mapstructure:"batch_delay"`
	SymbolDelay        time.Duration `mapstructure:"symbol_delay"`
	SectorDelay        time.Duration `mapstructure:"sector_delay"`
	SweepCron          string        `mapstructure:"sweep_cron"`
	MaxSectors         int           `mapstructure:"max_sectors"`
	MaxStocksPerSector int           `mapstructure:"max_stocks_per_sector"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	viper.SetConfigType("yaml")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		fmt.Println("No config file loaded:", err)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.encoding", "json")

	viper.SetDefault("api.port", 8080)

	viper.SetDefault("fugle.base_url", "https://api.fugle.tw/marketdata/v1.0")
	viper.SetDefault("fugle.timeout", 10*time.Second)
	viper.SetDefault("finmind.base_url", "https://api.finmindtrade.com/api/v4")
	viper.SetDefault("finmind.timeout", 15*time.Second)
	viper.SetDefault("yahoo.base_url", "https://query1.finance.yahoo.com/v8/finance/chart")
	viper.SetDefault("yahoo.timeout", 10*time.Second)

	viper.SetDefault("throttle.min_request_gap", time.Second)
	viper.SetDefault("throttle.queue_size", 256)
	viper.SetDefault("throttle.fugle_cooldown", time.Minute)
	viper.SetDefault("throttle.finmind_cooldown", 5*time.Minute)

	viper.SetDefault("cache.quote_ttl", 30*time.Second)
	viper.SetDefault("cache.static_max_age", 4*time.Hour)
	viper.SetDefault("cache.cleanup_interval", 10*time.Minute)

	viper.SetDefault("market.time_zone", "Asia/Taipei")
	viper.SetDefault("market.settle_hour", 15)

	viper.SetDefault("scan.batch_size", 15)
	viper.SetDefault("scan.batch_delay", 2500*time.Millisecond)
	viper.SetDefault("scan.symbol_delay", time.Second)
	viper.SetDefault("scan.sector_delay", 2*time.Second)
	viper.SetDefault("scan.sweep_cron", "")
	viper.SetDefault("scan.max_sectors", 3)
	viper.SetDefault("scan.max_stocks_per_sector", 6)
}
