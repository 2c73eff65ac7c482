package bookingRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"clinicbook/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	ErrBookingNotFound        = errors.New("booking not found")
	ErrDuplicateBookingNumber = errors.New("booking number already exists")
	ErrPaymentAlreadyRecorded = errors.New("payment already recorded")
)

// MutateFunc edits a booking in place inside a transaction. Returning an
// error aborts the transaction and leaves the stored document untouched.
type MutateFunc func(b *models.Booking) error

// BookingRepository defines data access for booking aggregates and their payments.
type BookingRepository interface {
	// CreateWithPayment inserts the payment and the booking atomically.
	CreateWithPayment(ctx context.Context, booking *models.Booking, payment *models.Payment) error
	// FindByID returns nil, nil when no booking matches.
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Booking, error)
	List(ctx context.Context) ([]models.Booking, error)
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Booking, error)
	// FindForClinicWindow returns bookings of clinicID with any session dated in [startDate, endDate].
	FindForClinicWindow(ctx context.Context, clinicID primitive.ObjectID, startDate, endDate string) ([]models.Booking, error)
	// MutateBooking is the single read-modify-write entry point for session changes.
	MutateBooking(ctx context.Context, id primitive.ObjectID, fn MutateFunc) (*models.Booking, error)
}

type mongoBookingRepo struct {
	client      *mongo.Client
	bookingColl *mongo.Collection
	paymentColl *mongo.Collection
}

func NewMongoBookingRepo(db *mongo.Database) BookingRepository {
	repo := &mongoBookingRepo{
		client:      db.Client(),
		bookingColl: db.Collection("bookings"),
		paymentColl: db.Collection("payments"),
	}
	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("bookingRepo: failed to create indexes: %v\n", err)
	}
	return repo
}

func newContext(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return context.WithTimeout(parent, timeout)
}
