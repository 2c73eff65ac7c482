package userRepo

import (
	"context"

	"clinicbook/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserRepository defines the patient lookups the booking backend needs.
type UserRepository interface {
	// GetByID returns nil, nil when no user matches.
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	// UpdateFCMToken stores the device token used for push notifications.
	UpdateFCMToken(ctx context.Context, id primitive.ObjectID, token string) error
}
