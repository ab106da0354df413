package fixup

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/meddot/meddot-backend/pkg/db"
	"github.com/meddot/meddot-backend/pkg/db/models"
	"github.com/meddot/meddot-backend/pkg/enums"
	pkgerrors "github.com/meddot/meddot-backend/pkg/errors"
)

// Store performs the fix-up writes.
type Store struct {
	db  *gorm.DB
	now func() time.Time
}

func NewStore(conn *gorm.DB) *Store {
	return &Store{db: conn, now: time.Now}
}

// EnableFeatureFlag upserts the flag with enabled=true.
func (s *Store) EnableFeatureFlag(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "feature flag name is required")
	}
	now := s.now().UTC()
	flag := models.FeatureFlag{Name: name, Enabled: true, CreatedAt: now, UpdatedAt: now}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoUpdates: clause.Assignments(map[string]any{"enabled": true, "updated_at": now}),
		}).
		Create(&flag).Error
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upsert feature flag")
	}
	return nil
}

// PromoteUser grants the admin role to the profile with the given email.
func (s *Store) PromoteUser(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	res := s.db.WithContext(ctx).
		Model(&models.Profile{}).
		Where("lower(email) = lower(?)", email).
		Updates(map[string]any{"role": enums.ProfileRoleAdmin, "updated_at": s.now().UTC()})
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "promote user")
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("no profile with email %s", email))
	}
	return nil
}

// SeedChatRoom creates the room unless one with the slug exists. created reports
// whether a row was inserted.
func (s *Store) SeedChatRoom(ctx context.Context, slug, name, description string) (created bool, err error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "room slug is required")
	}
	if strings.TrimSpace(name) == "" {
		name = slug
	}

	id := uuid.New()
	var room models.ChatRoom
	err = s.db.WithContext(ctx).
		Where(models.ChatRoom{Slug: slug}).
		Attrs(models.ChatRoom{ID: id, Name: name, Description: description}).
		FirstOrCreate(&room).Error
	if err != nil {
		if !db.IsUniqueViolation(err, "") {
			return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "seed chat room")
		}
		// Lost an insert race; the row exists now.
		if findErr := s.db.WithContext(ctx).Where("slug = ?", slug).First(&room).Error; findErr != nil {
			if errors.Is(findErr, gorm.ErrRecordNotFound) {
				return false, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "seed chat room")
			}
			return false, pkgerrors.Wrap(pkgerrors.CodeDependency, findErr, "seed chat room")
		}
		return false, nil
	}
	return room.ID == id, nil
}
