package settingsRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"clinicbook/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var singletonFilter = bson.M{"singleton": models.SettingsSingletonKey}

func (r *mongoSettingsRepo) Load(ctx context.Context) (*models.Settings, error) {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	var settings models.Settings
	if err := r.coll.FindOne(ctx, singletonFilter).Decode(&settings); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	return &settings, nil
}

func (r *mongoSettingsRepo) UpsertBookingConfig(ctx context.Context, cfg models.BookingConfig) (*models.Settings, error) {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	update := bson.M{
		"$set": bson.M{
			"booking_config": cfg,
			"updatedAt":      time.Now(),
		},
		"$setOnInsert": bson.M{
			"singleton":                 models.SettingsSingletonKey,
			"special_slot_restrictions": bson.A{},
		},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var settings models.Settings
	if err := r.coll.FindOneAndUpdate(ctx, singletonFilter, update, opts).Decode(&settings); err != nil {
		return nil, fmt.Errorf("failed to upsert booking config: %w", err)
	}
	return &settings, nil
}

func (r *mongoSettingsRepo) UpsertSpecialRestriction(ctx context.Context, restriction models.SpecialSlotRestriction) (*models.Settings, error) {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	if restriction.TimeWindows == nil {
		restriction.TimeWindows = []models.TimeWindow{}
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	pushOpts := options.FindOneAndUpdate().SetReturnDocument(options.After).SetUpsert(true)

	// Two attempts: a concurrent writer may insert the same element (or the
	// singleton itself) between the replace and the push.
	for attempt := 0; attempt < 2; attempt++ {
		var settings models.Settings
		err := r.coll.FindOneAndUpdate(ctx,
			restrictionMatchFilter(restriction),
			bson.M{"$set": bson.M{"special_slot_restrictions.$": restriction, "updatedAt": time.Now()}},
			opts,
		).Decode(&settings)
		if err == nil {
			return &settings, nil
		}
		if !errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("failed to replace special restriction: %w", err)
		}

		err = r.coll.FindOneAndUpdate(ctx,
			restrictionAbsentFilter(restriction),
			bson.M{
				"$push":        bson.M{"special_slot_restrictions": restriction},
				"$set":         bson.M{"updatedAt": time.Now()},
				"$setOnInsert": bson.M{"singleton": models.SettingsSingletonKey},
			},
			pushOpts,
		).Decode(&settings)
		if err == nil {
			return &settings, nil
		}
		if !mongo.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("failed to append special restriction: %w", err)
		}
	}
	return nil, fmt.Errorf("failed to upsert special restriction for %s: concurrent modification", restriction.Date)
}
