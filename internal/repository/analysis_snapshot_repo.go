package repository

import (
	"context"

	"stock-insight/internal/model"

	"gorm.io/gorm"
)

// AnalysisSnapshotRepository archives full-mode analysis results. The noop
// variant stands in when no database is configured.
type AnalysisSnapshotRepository interface {
	Save(ctx context.Context, snapshot *model.AnalysisSnapshot) error
	Latest(ctx context.Context, symbol string, limit int) ([]model.AnalysisSnapshot, error)
}

type analysisSnapshotRepository struct {
	db *gorm.DB
}

func NewAnalysisSnapshotRepository(db *gorm.DB) AnalysisSnapshotRepository {
	return &analysisSnapshotRepository{db: db}
}

func (r *analysisSnapshotRepository) Save(ctx context.Context, snapshot *model.AnalysisSnapshot) error {
	return r.db.WithContext(ctx).Create(snapshot).Error
}

func (r *analysisSnapshotRepository) Latest(ctx context.Context, symbol string, limit int) ([]model.AnalysisSnapshot, error) {
	var snapshots []model.AnalysisSnapshot
	err := r.db.WithContext(ctx).
		Where("symbol = ?", symbol).
		Order("created_at DESC").
		Limit(limit).
		Find(&snapshots).Error
	return snapshots, err
}

type noopSnapshotRepository struct{}

func NewNoopSnapshotRepository() AnalysisSnapshotRepository {
	return noopSnapshotRepository{}
}

func (noopSnapshotRepository) Save(context.Context, *model.AnalysisSnapshot) error {
	return nil
}

func (noopSnapshotRepository) Latest(context.Context, string, int) ([]model.AnalysisSnapshot, error) {
	return nil, nil
}
