package clinicRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"clinicbook/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (r *mongoClinicRepo) Create(ctx context.Context, clinic *models.Clinic) error {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	now := time.Now()
	if clinic.ID.IsZero() {
		clinic.ID = primitive.NewObjectID()
	}
	if clinic.BookingWindowHistory == nil {
		clinic.BookingWindowHistory = []models.ArchivedBookingWindow{}
	}
	clinic.CreatedAt = now
	clinic.UpdatedAt = now

	if _, err := r.coll.InsertOne(ctx, clinic); err != nil {
		return fmt.Errorf("failed to create clinic: %w", err)
	}
	return nil
}

// GetByID returns nil, nil when no clinic matches.
func (r *mongoClinicRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Clinic, error) {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	var clinic models.Clinic
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&clinic); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch clinic %s: %w", id.Hex(), err)
	}
	return &clinic, nil
}

func (r *mongoClinicRepo) GetAll(ctx context.Context) ([]models.Clinic, error) {
	ctx, cancel := newContext(ctx, 10*time.Second)
	defer cancel()

	cursor, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve clinics: %w", err)
	}
	defer cursor.Close(ctx)

	clinics := []models.Clinic{}
	if err := cursor.All(ctx, &clinics); err != nil {
		return nil, fmt.Errorf("failed to decode clinics: %w", err)
	}
	return clinics, nil
}

func (r *mongoClinicRepo) UpdateBookingWindow(ctx context.Context, id primitive.ObjectID, window models.BookingWindow) (*models.Clinic, error) {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var clinic models.Clinic
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bookingWindowPipeline(window, time.Now()), opts).Decode(&clinic)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update booking window for clinic %s: %w", id.Hex(), err)
	}
	return &clinic, nil
}
