package models

import "time"

// FeatureFlag toggles a product capability by name.
type FeatureFlag struct {
	Name      string    `gorm:"column:name;type:text;primaryKey"`
	Enabled   bool      `gorm:"column:enabled;not null;default:false"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
