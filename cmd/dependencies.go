package cmd

import (
	"context"
	"time"

	"stock-insight/config"
	"stock-insight/pkg/cache"
	"stock-insight/pkg/logger"
	"stock-insight/pkg/postgres"
	"stock-insight/pkg/throttle"

	goValidator "github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type AppDependency struct {
	cfg         *config.Config
	log         *logger.Logger
	db          *postgres.DB
	validator   *goValidator.Validate
	echo        *echo.Echo
	quoteCache  cache.Cache
	staticCache cache.Cache
	throttler   *throttle.Scheduler
	loc         *time.Location
}

func NewAppDependency(ctx context.Context) (*AppDependency, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Encoding)
	if err != nil {
		return nil, err
	}

	var db *postgres.DB
	if cfg.DB.Enabled {
		db, err = postgres.NewDB(cfg.DB, log)
		if err != nil {
			log.Error("Failed to connect to database", zap.Error(err))
			return nil, err
		}
	} else {
		log.Info("Database disabled, persistence runs in memory")
	}

	loc, err := time.LoadLocation(cfg.Market.TimeZone)
	if err != nil {
		return nil, err
	}

	return &AppDependency{
		cfg:         cfg,
		log:         log,
		db:          db,
		validator:   goValidator.New(),
		echo:        echo.New(),
		quoteCache:  cache.New(cfg.Cache.QuoteTTL, cfg.Cache.CleanupInterval),
		staticCache: cache.New(cfg.Cache.StaticMaxAge, cfg.Cache.CleanupInterval),
		throttler:   throttle.New(cfg.Throttle.MinRequestGap, cfg.Throttle.QueueSize, log),
		loc:         loc,
	}, nil
}

// dbHandle returns the raw gorm handle, or nil when persistence is off.
func (d *AppDependency) dbHandle() *gorm.DB {
	if d.db == nil {
		return nil
	}
	return d.db.DB
}

func (d *AppDependency) Close() error {
	d.log.Info("Closing app dependency")
	if d.db != nil {
		return d.db.Close()
	}
	return nil
}
