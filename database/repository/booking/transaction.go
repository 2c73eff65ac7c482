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
)

// withTransaction runs txnFn in a session transaction, aborting on any error.
func (r *mongoBookingRepo) withTransaction(ctx context.Context, txnFn func(sc mongo.SessionContext) error) error {
	sess, err := r.client.StartSession()
	if err != nil {
		return fmt.Errorf("could not start mongo session: %w", err)
	}
	defer sess.EndSession(ctx)

	return mongo.WithSession(ctx, sess, func(sc mongo.SessionContext) error {
		if err := sc.StartTransaction(); err != nil {
			return err
		}
		if err := txnFn(sc); err != nil {
			_ = sc.AbortTransaction(sc)
			return err
		}
		return sc.CommitTransaction(sc)
	})
}

func (r *mongoBookingRepo) CreateWithPayment(ctx context.Context, booking *models.Booking, payment *models.Payment) error {
	ctx, cancel := newContext(ctx, 10*time.Second)
	defer cancel()

	now := time.Now()
	if payment.ID.IsZero() {
		payment.ID = primitive.NewObjectID()
	}
	if booking.ID.IsZero() {
		booking.ID = primitive.NewObjectID()
	}
	payment.CreatedAt = now
	booking.Payment = payment.ID
	booking.CreatedAt = now
	booking.UpdatedAt = now

	err := r.withTransaction(ctx, func(sc mongo.SessionContext) error {
		if _, err := r.paymentColl.InsertOne(sc, payment); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return ErrPaymentAlreadyRecorded
			}
			return fmt.Errorf("insert payment failed: %w", err)
		}
		if _, err := r.bookingColl.InsertOne(sc, booking); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return ErrDuplicateBookingNumber
			}
			return fmt.Errorf("insert booking failed: %w", err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrPaymentAlreadyRecorded) || errors.Is(err, ErrDuplicateBookingNumber) {
			return err
		}
		return fmt.Errorf("booking transaction failed: %w", err)
	}
	return nil
}

func (r *mongoBookingRepo) MutateBooking(ctx context.Context, id primitive.ObjectID, fn MutateFunc) (*models.Booking, error) {
	ctx, cancel := newContext(ctx, 10*time.Second)
	defer cancel()

	var updated models.Booking
	err := r.withTransaction(ctx, func(sc mongo.SessionContext) error {
		var booking models.Booking
		if err := r.bookingColl.FindOne(sc, bson.M{"_id": id}).Decode(&booking); err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return ErrBookingNotFound
			}
			return fmt.Errorf("load booking failed: %w", err)
		}

		if err := fn(&booking); err != nil {
			return err
		}
		booking.UpdatedAt = time.Now()

		res, err := r.bookingColl.ReplaceOne(sc, bson.M{"_id": id}, &booking)
		if err != nil {
			return fmt.Errorf("save booking failed: %w", err)
		}
		if res.MatchedCount == 0 {
			return ErrBookingNotFound
		}
		updated = booking
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}
