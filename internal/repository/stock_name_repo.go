package repository

import (
	"context"
	"sync"

	"stock-insight/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StockNameRepository is the persisted symbol -> name lookup table. The
// in-memory variant backs deployments without a database; the core must
// work against an empty store.
type StockNameRepository interface {
	Get(ctx context.Context, symbol string) (string, bool)
	Save(ctx context.Context, symbol, name string) error
}

type stockNameRepository struct {
	db *gorm.DB
}

func NewStockNameRepository(db *gorm.DB) StockNameRepository {
	return &stockNameRepository{db: db}
}

func (r *stockNameRepository) Get(ctx context.Context, symbol string) (string, bool) {
	var record model.StockName
	if err := r.db.WithContext(ctx).First(&record, "symbol = ?", symbol).Error; err != nil {
		return "", false
	}
	return record.Name, true
}

func (r *stockNameRepository) Save(ctx context.Context, symbol, name string) error {
	if symbol == "" || name == "" || symbol == name {
		return nil
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "symbol"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "updated_at"}),
		}).
		Create(&model.StockName{Symbol: symbol, Name: name}).Error
}

type inMemoryStockNameRepository struct {
	mu    sync.RWMutex
	names map[string]string
}

func NewInMemoryStockNameRepository() StockNameRepository {
	return &inMemoryStockNameRepository{names: make(map[string]string)}
}

func (r *inMemoryStockNameRepository) Get(_ context.Context, symbol string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	name, ok := r.names[symbol]
	return name, ok
}

func (r *inMemoryStockNameRepository) Save(_ context.Context, symbol, name string) error {
	if symbol == "" || name == "" || symbol == name {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.names[symbol] = name
	return nil
}
