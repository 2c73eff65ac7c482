package settingsRepo

import (
	"context"
	"fmt"
	"time"

	"clinicbook/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// SettingsRepository reads and writes the singleton booking configuration.
type SettingsRepository interface {
	// Load returns nil, nil when the singleton has never been written.
	Load(ctx context.Context) (*models.Settings, error)
	UpsertBookingConfig(ctx context.Context, cfg models.BookingConfig) (*models.Settings, error)
	// UpsertSpecialRestriction replaces the restriction for the same date and clinic, or appends it.
	UpsertSpecialRestriction(ctx context.Context, restriction models.SpecialSlotRestriction) (*models.Settings, error)
}

type mongoSettingsRepo struct {
	coll *mongo.Collection
}

func NewMongoSettingsRepo(db *mongo.Database) SettingsRepository {
	repo := &mongoSettingsRepo{coll: db.Collection("settings")}
	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("settingsRepo: failed to create indexes: %v\n", err)
	}
	return repo
}

func newContext(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return context.WithTimeout(parent, timeout)
}
