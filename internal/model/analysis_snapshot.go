package model

import (
	"time"

	"gorm.io/datatypes"
)

// AnalysisSnapshot records one full-mode composite analysis for later
// inspection. Detail holds the serialized AnalysisDetail.
type AnalysisSnapshot struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Symbol    string         `gorm:"size:16;index" json:"symbol"`
	Score     int            `json:"score"`
	Action    string         `gorm:"size:32" json:"action"`
	Detail    datatypes.JSON `json:"detail"`
	CreatedAt time.Time      `json:"created_at"`
}

func (AnalysisSnapshot) TableName() string {
	return "analysis_snapshots"
}
