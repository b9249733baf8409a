package model

import "time"

// StockName is the persisted symbol -> display-name resolution table.
type StockName struct {
	Symbol    string    `gorm:"primaryKey;size:16" json:"symbol"`
	Name      string    `gorm:"size:64;not null" json:"name"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (StockName) TableName() string {
	return "stock_names"
}
