package clinicRepo

import (
	"context"
	"fmt"
	"time"

	"clinicbook/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// ClinicRepository defines data access for the clinic directory.
type ClinicRepository interface {
	Create(ctx context.Context, clinic *models.Clinic) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Clinic, error)
	GetAll(ctx context.Context) ([]models.Clinic, error)
	// UpdateBookingWindow replaces the window and archives the previous one.
	UpdateBookingWindow(ctx context.Context, id primitive.ObjectID, window models.BookingWindow) (*models.Clinic, error)
}

type mongoClinicRepo struct {
	coll *mongo.Collection
}

// NewMongoClinicRepo constructs a ClinicRepository backed by the clinics collection.
func NewMongoClinicRepo(db *mongo.Database) ClinicRepository {
	repo := &mongoClinicRepo{coll: db.Collection("clinics")}
	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("clinicRepo: failed to create indexes: %v\n", err)
	}
	return repo
}

func newContext(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return context.WithTimeout(parent, timeout)
}
