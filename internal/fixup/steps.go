package fixup

import (
	"context"
	"fmt"

	"github.com/meddot/meddot-backend/pkg/config"
	"github.com/meddot/meddot-backend/pkg/logger"
)

const (
	StepEnableFeatureFlag = "enable-feature-flag"
	StepPromoteUser       = "promote-user"
	StepSeedRecord        = "seed-record"
)

type flagEnabler interface {
	EnableFeatureFlag(ctx context.Context, name string) error
}

type userPromoter interface {
	PromoteUser(ctx context.Context, email string) error
}

type roomSeeder interface {
	SeedChatRoom(ctx context.Context, slug, name, description string) (bool, error)
}

type enableFeatureFlagStep struct {
	store flagEnabler
	flag  string
}

func (s *enableFeatureFlagStep) Name() string { return StepEnableFeatureFlag }

func (s *enableFeatureFlagStep) Run(ctx context.Context) error {
	return s.store.EnableFeatureFlag(ctx, s.flag)
}

type promoteUserStep struct {
	store userPromoter
	email string
}

func (s *promoteUserStep) Name() string { return StepPromoteUser }

func (s *promoteUserStep) Run(ctx context.Context) error {
	return s.store.PromoteUser(ctx, s.email)
}

type seedRecordStep struct {
	store roomSeeder
	logg  *logger.Logger
	slug  string
	name  string
}

func (s *seedRecordStep) Name() string { return StepSeedRecord }

func (s *seedRecordStep) Run(ctx context.Context) error {
	created, err := s.store.SeedChatRoom(ctx, s.slug, s.name, fmt.Sprintf("Default %s room", s.name))
	if err != nil {
		return err
	}
	if s.logg != nil {
		s.logg.Info(s.logg.WithFields(ctx, map[string]any{"slug": s.slug, "created": created}), "chat room seeded")
	}
	return nil
}

// stepStore is what the default steps write through.
type stepStore interface {
	flagEnabler
	userPromoter
	roomSeeder
}

// DefaultSteps builds the three standard fix-up steps in run order.
func DefaultSteps(store stepStore, cfg config.FixupConfig, logg *logger.Logger) []Step {
	return []Step{
		&enableFeatureFlagStep{store: store, flag: cfg.FeatureFlag},
		&promoteUserStep{store: store, email: cfg.AdminEmail},
		&seedRecordStep{store: store, logg: logg, slug: cfg.SeedRoom, name: cfg.SeedRoomName},
	}
}
