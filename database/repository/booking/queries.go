package bookingRepo

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

// clinicWindowFilter matches bookings for clinicID with a session, or a slot a
// session was rescheduled away from, dated inside the inclusive range. Dates
// are YYYY-MM-DD, so string order is date order.
func clinicWindowFilter(clinicID primitive.ObjectID, startDate, endDate string) bson.M {
	inRange := bson.M{"$gte": startDate, "$lte": endDate}
	return bson.M{
		"clinic": clinicID,
		"$or": bson.A{
			bson.M{"SessionDates": bson.M{"$elemMatch": bson.M{"date": inRange}}},
			bson.M{"SessionDates.rescheduleHistory.previousDate": inRange},
		},
	}
}

func (r *mongoBookingRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Booking, error) {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	var booking models.Booking
	if err := r.bookingColl.FindOne(ctx, bson.M{"_id": id}).Decode(&booking); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch booking %s: %w", id.Hex(), err)
	}
	return &booking, nil
}

func (r *mongoBookingRepo) List(ctx context.Context) ([]models.Booking, error) {
	return r.find(ctx, bson.M{})
}

func (r *mongoBookingRepo) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Booking, error) {
	return r.find(ctx, bson.M{"user": userID})
}

func (r *mongoBookingRepo) FindForClinicWindow(ctx context.Context, clinicID primitive.ObjectID, startDate, endDate string) ([]models.Booking, error) {
	return r.find(ctx, clinicWindowFilter(clinicID, startDate, endDate))
}

func (r *mongoBookingRepo) find(ctx context.Context, filter bson.M) ([]models.Booking, error) {
	ctx, cancel := newContext(ctx, 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.bookingColl.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query bookings: %w", err)
	}
	defer cursor.Close(ctx)

	bookings := []models.Booking{}
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}
	return bookings, nil
}
