package booking

import (
	"context"
	"time"

	bookingRepo "clinicbook/database/repository/booking"
	"clinicbook/models"
	"clinicbook/services/availability"
	"clinicbook/services/payment"
	"clinicbook/services/storage"
	"clinicbook/services/tasks"
	"clinicbook/utils"

	"github.com/google/uuid"
)

// BookingService covers booking creation, slot holds and the session lifecycle.
type BookingService interface {
	CreateBooking(ctx context.Context, userID string, req models.CreateBookingRequest) (*models.Booking, error)
	ReserveSlot(ctx context.Context, userID string, req models.ReserveSlotRequest) (*models.SlotReservation, error)

	ListBookings(ctx context.Context) ([]models.Booking, error)
	GetBooking(ctx context.Context, id string) (*models.Booking, error)
	ListUserBookings(ctx context.Context, userID string) ([]models.Booking, error)

	// ChangeSessionInfo reschedules, completes or cancels one session.
	ChangeSessionInfo(ctx context.Context, req models.ChangeSessionInfoRequest) (*models.Booking, error)
	AddNextSession(ctx context.Context, req models.AddNextSessionRequest) (*models.Booking, error)
	ChangeSessionStatus(ctx context.Context, req models.ChangeSessionStatusRequest) (*models.Session, error)
	// DeleteSession returns the renumbered sessions.
	DeleteSession(ctx context.Context, req models.DeleteSessionRequest) ([]models.Session, error)
	AddOrUpdatePrescription(ctx context.Context, req models.PrescriptionUpload) (*models.Prescription, error)
}

// DefaultBookingService is the production BookingService. Reservations,
// Tasks and Metrics are optional.
type DefaultBookingService struct {
	Repo         bookingRepo.BookingRepository
	Clinics      availability.ClinicFinder
	Settings     availability.SettingsLoader
	Payments     payment.PaymentGateway
	Storage      storage.StorageService
	Reservations SlotReserver
	Tasks        tasks.Enqueuer
	Metrics      *utils.Metrics

	PrescriptionFolder string
	ReservationTTL     time.Duration

	// Overridable in tests.
	Now              func() time.Time
	NewSessionID     func() string
	NewBookingNumber func(now time.Time) (string, error)
}

func (s *DefaultBookingService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *DefaultBookingService) newSessionID() string {
	if s.NewSessionID != nil {
		return s.NewSessionID()
	}
	return uuid.NewString()
}

func (s *DefaultBookingService) bookingNumber(now time.Time) (string, error) {
	if s.NewBookingNumber != nil {
		return s.NewBookingNumber(now)
	}
	return GenerateBookingNumber(now)
}
