package settingsRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// The unique singleton key turns "exactly one settings document" into a storage constraint.
func (r *mongoSettingsRepo) ensureIndexes() error {
	ctx, cancel := newContext(context.Background(), 10*time.Second)
	defer cancel()

	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "singleton", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("unique_singleton"),
	})
	if err != nil {
		return fmt.Errorf("failed to create settings indexes: %w", err)
	}
	return nil
}
