package booking

import (
	"context"
	"crypto/rand"
	"errors"
	"math"
	"math/big"
	"strings"
	"time"

	bookingRepo "clinicbook/database/repository/booking"
	"clinicbook/models"
	"clinicbook/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const (
	bookingNumberAttempts = 5
	bookingSuffixChars    = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// GenerateBookingNumber returns BK, the timestamp as YYMMDDHHMMSS and four
// random upper-case alphanumerics.
func GenerateBookingNumber(now time.Time) (string, error) {
	var sb strings.Builder
	sb.WriteString("BK")
	sb.WriteString(now.Format("060102150405"))
	size := big.NewInt(int64(len(bookingSuffixChars)))
	for i := 0; i < 4; i++ {
		n, err := rand.Int(rand.Reader, size)
		if err != nil {
			return "", err
		}
		sb.WriteByte(bookingSuffixChars[n.Int64()])
	}
	return sb.String(), nil
}

// CreateBooking records a paid booking with its first session. A reservation
// token, when given, must match the first session slot and is released once
// the booking is stored. Live holds of other users count against the slot
// either way.
func (s *DefaultBookingService) CreateBooking(ctx context.Context, userID string, req models.CreateBookingRequest) (*models.Booking, error) {
	b, err := s.createBooking(ctx, userID, req)
	s.Metrics.ObserveBookingCreated(err)
	return b, err
}

func (s *DefaultBookingService) createBooking(ctx context.Context, userID string, req models.CreateBookingRequest) (*models.Booking, error) {
	user, err := utils.ParseObjectID(userID, "user id")
	if err != nil {
		return nil, err
	}
	service, err := utils.ParseObjectID(req.Service, "service id")
	if err != nil {
		return nil, err
	}
	clinic, err := utils.ParseObjectID(req.Clinic, "clinic id")
	if err != nil {
		return nil, err
	}
	var doctor primitive.ObjectID
	if req.Doctor != "" {
		if doctor, err = utils.ParseObjectID(req.Doctor, "doctor id"); err != nil {
			return nil, err
		}
	}
	if req.NoOfSessionBook < 1 {
		return nil, utils.NewValidationError("no_of_session_book must be at least 1")
	}
	if req.TotalAmount < 0 {
		return nil, utils.NewValidationError("totalAmount must not be negative")
	}
	first := req.FirstSession
	if err := validateSlot(first.Date, first.Time); err != nil {
		return nil, err
	}

	hold, release, err := s.claimCapacity(ctx, user.Hex(), clinic, first, req.ReservationToken)
	if err != nil {
		return nil, err
	}
	defer release()

	verified, err := s.Payments.VerifyPayment(ctx, req.PaymentIntentID)
	if err != nil {
		return nil, err
	}
	if verified.Status != models.PaymentSucceeded {
		return nil, utils.NewValidationError("Payment has not succeeded (status %s)", verified.Status)
	}
	total := verified.Amount
	if req.TotalAmount > 0 && math.Abs(req.TotalAmount-total) > 0.005 {
		return nil, utils.NewValidationError("totalAmount does not match the payment")
	}

	now := s.now()
	pay := &models.Payment{
		User:             user,
		Amount:           total,
		Currency:         verified.Currency,
		Method:           verified.Method,
		GatewayPaymentID: verified.GatewayPaymentID,
		Status:           verified.Status,
	}
	booking := &models.Booking{
		Service:         service,
		Clinic:          clinic,
		Doctor:          doctor,
		User:            user,
		NoOfSessionBook: req.NoOfSessionBook,
		SessionDates: []models.Session{{
			SessionID:         s.newSessionID(),
			SessionNumber:     1,
			Date:              first.Date,
			Time:              first.Time,
			Status:            models.SessionPending,
			RescheduleHistory: []models.RescheduleEntry{},
		}},
		SessionStatus:        models.BookingPending,
		TotalAmount:          total,
		AmountPerSession:     math.Round(total/float64(req.NoOfSessionBook)*100) / 100,
		SessionPrescriptions: []models.Prescription{},
	}

	if err := s.insertWithUniqueNumber(ctx, booking, pay, now); err != nil {
		return nil, err
	}

	log := utils.GetLogger()
	log.Info("Booking created",
		zap.String("bookingId", booking.ID.Hex()),
		zap.String("bookingNumber", booking.BookingNumber),
		zap.String("clinic", clinic.Hex()),
	)
	if hold != nil {
		s.releaseHold(ctx, hold)
	}
	s.scheduleReminder(ctx, booking, booking.SessionDates[0])
	return booking, nil
}

func (s *DefaultBookingService) insertWithUniqueNumber(ctx context.Context, booking *models.Booking, pay *models.Payment, now time.Time) error {
	for attempt := 1; attempt <= bookingNumberAttempts; attempt++ {
		number, err := s.bookingNumber(now)
		if err != nil {
			return utils.NewServerError("Failed to generate booking number", err)
		}
		booking.BookingNumber = number

		err = s.Repo.CreateWithPayment(ctx, booking, pay)
		switch {
		case err == nil:
			return nil
		case errors.Is(err, bookingRepo.ErrDuplicateBookingNumber):
			utils.GetLogger().Warn("Booking number collision, regenerating",
				zap.String("bookingNumber", number), zap.Int("attempt", attempt))
			booking.ID = primitive.NilObjectID
			pay.ID = primitive.NilObjectID
		case errors.Is(err, bookingRepo.ErrPaymentAlreadyRecorded):
			return utils.NewConflictError("This payment has already been used for a booking")
		default:
			return utils.NewServerError("Failed to create booking", err)
		}
	}
	return utils.NewServerError("Failed to create booking",
		errors.New("could not generate a unique booking number"))
}

// claimCapacity makes sure the first session slot has room for one more
// booking. With a token the caller's hold must still be live and fit beside
// every other hold; without one a hold is taken for the length of the call
// and the returned release func drops it. Without a SlotReserver the check
// is advisory.
func (s *DefaultBookingService) claimCapacity(ctx context.Context, userID string, clinic primitive.ObjectID, first models.SessionSlot, token string) (*Hold, func(), error) {
	noop := func() {}
	if token == "" || s.Reservations == nil {
		booked, limit, err := s.slotLoad(ctx, clinic, first.Date, first.Time)
		if err != nil {
			return nil, noop, err
		}
		if booked >= limit {
			return nil, noop, utils.NewConflictError("Selected slot is full")
		}
		if s.Reservations == nil {
			return nil, noop, nil
		}
		h, err := s.Reservations.Reserve(ctx, Hold{
			UserID: userID,
			Clinic: clinic.Hex(),
			Date:   first.Date,
			Time:   first.Time,
		}, booked, limit, s.reservationTTL())
		if err != nil {
			if errors.Is(err, ErrSlotFull) {
				return nil, noop, utils.NewConflictError("Selected slot is full")
			}
			return nil, noop, utils.NewServerError("Failed to reserve slot", err)
		}
		return nil, func() { s.releaseHold(ctx, h) }, nil
	}

	h, err := s.Reservations.Get(ctx, token)
	if err != nil {
		if errors.Is(err, ErrReservationNotFound) {
			return nil, noop, utils.NewConflictError("Slot reservation has expired")
		}
		return nil, noop, utils.NewServerError("Failed to load slot reservation", err)
	}
	if h.UserID != userID || h.Clinic != clinic.Hex() || h.Date != first.Date || h.Time != first.Time {
		return nil, noop, utils.NewValidationError("Reservation does not match the selected slot")
	}

	booked, limit, err := s.slotLoad(ctx, clinic, first.Date, first.Time)
	if err != nil {
		return nil, noop, err
	}
	if err := s.Reservations.Confirm(ctx, h, booked, limit); err != nil {
		switch {
		case errors.Is(err, ErrReservationNotFound):
			return nil, noop, utils.NewConflictError("Slot reservation has expired")
		case errors.Is(err, ErrSlotFull):
			return nil, noop, utils.NewConflictError("Selected slot is full")
		}
		return nil, noop, utils.NewServerError("Failed to confirm slot reservation", err)
	}
	return h, noop, nil
}

func (s *DefaultBookingService) releaseHold(ctx context.Context, h *Hold) {
	if err := s.Reservations.Release(ctx, h); err != nil {
		utils.GetLogger().Warn("Failed to release slot reservation", zap.String("token", h.Token), zap.Error(err))
	}
}
