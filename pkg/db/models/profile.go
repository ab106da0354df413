package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/meddot/meddot-backend/pkg/enums"
)

// Profile mirrors the auth provider's user with app-level role data.
type Profile struct {
	ID          uuid.UUID         `gorm:"type:uuid;primaryKey"`
	Email       string            `gorm:"type:text;not null;uniqueIndex"`
	DisplayName string            `gorm:"column:display_name;type:text;not null;default:''"`
	Role        enums.ProfileRole `gorm:"column:role;type:text;not null;default:'student'"`
	CreatedAt   time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
