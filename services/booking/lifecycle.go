package booking

import (
	"context"
	"errors"

	bookingRepo "clinicbook/database/repository/booking"
	"clinicbook/models"
	"clinicbook/utils"

	"go.uber.org/zap"
)

// mutate runs fn against one booking inside a transaction and maps storage
// failures onto the error envelope kinds.
func (s *DefaultBookingService) mutate(ctx context.Context, op, bookingID string, fn bookingRepo.MutateFunc) (*models.Booking, error) {
	id, err := utils.ParseObjectID(bookingID, "booking id")
	if err != nil {
		return nil, err
	}

	b, err := s.Repo.MutateBooking(ctx, id, fn)
	s.Metrics.ObserveSessionOp(op, err)
	if err != nil {
		var appErr *utils.AppError
		switch {
		case errors.Is(err, bookingRepo.ErrBookingNotFound):
			return nil, utils.NewNotFoundError("Booking not found")
		case errors.As(err, &appErr):
			return nil, err
		default:
			return nil, utils.NewServerError("Failed to update booking", err)
		}
	}
	utils.GetLogger().Info("Booking updated",
		zap.String("operation", op),
		zap.String("bookingId", bookingID),
		zap.String("bookingStatus", b.SessionStatus),
	)
	return b, nil
}

func (s *DefaultBookingService) ChangeSessionInfo(ctx context.Context, req models.ChangeSessionInfoRequest) (*models.Booking, error) {
	var (
		op     string
		fn     bookingRepo.MutateFunc
		reason = req.Reason
		now    = s.now()
	)

	switch {
	case req.IsReschedule:
		if req.NewDate == "" || req.NewTime == "" {
			return nil, utils.NewValidationError("new_date and new_time are required to reschedule")
		}
		op = "reschedule"
		fn = func(b *models.Booking) error {
			_, err := RescheduleSession(b, req.SessionNumber, req.NewDate, req.NewTime, req.Reason, now)
			return err
		}
	case req.Status == models.SessionCompleted:
		op = "complete"
		reason = ""
		fn = func(b *models.Booking) error {
			_, err := CompleteSession(b, req.SessionNumber, now)
			return err
		}
	case req.Status == models.SessionCancelled:
		op = "cancel"
		fn = func(b *models.Booking) error {
			_, err := CancelSession(b, req.SessionNumber, req.Reason, now)
			return err
		}
	case req.Status == "":
		return nil, utils.NewValidationError("status or isReschedule is required")
	default:
		return nil, utils.NewValidationError("unsupported status %q, expected Completed or Cancelled", req.Status)
	}

	b, err := s.mutate(ctx, op, req.ID, fn)
	if err != nil {
		return nil, err
	}
	if sess := b.FindSession(req.SessionNumber); sess != nil {
		s.notifyStatus(ctx, b, *sess, reason)
		if req.IsReschedule {
			s.scheduleReminder(ctx, b, *sess)
		}
	}
	return b, nil
}

func (s *DefaultBookingService) AddNextSession(ctx context.Context, req models.AddNextSessionRequest) (*models.Booking, error) {
	sessionID := s.newSessionID()
	b, err := s.mutate(ctx, "add_next", req.BookingID, func(b *models.Booking) error {
		_, err := AddNextSession(b, req.NewDate, req.NewTime, sessionID)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.scheduleReminder(ctx, b, b.SessionDates[len(b.SessionDates)-1])
	return b, nil
}

func (s *DefaultBookingService) ChangeSessionStatus(ctx context.Context, req models.ChangeSessionStatusRequest) (*models.Session, error) {
	var updated models.Session
	b, err := s.mutate(ctx, "change_status", req.BookingID, func(b *models.Booking) error {
		sess, err := ChangeSessionStatus(b, req.SessionNumber, req.NewStatus, req.Reason)
		if err != nil {
			return err
		}
		updated = *sess
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.notifyStatus(ctx, b, updated, req.Reason)
	return &updated, nil
}

func (s *DefaultBookingService) DeleteSession(ctx context.Context, req models.DeleteSessionRequest) ([]models.Session, error) {
	var dropped *models.Prescription
	b, err := s.mutate(ctx, "delete", req.BookingID, func(b *models.Booking) error {
		var err error
		dropped, err = DeleteSession(b, req.SessionNumber)
		return err
	})
	if err != nil {
		return nil, err
	}
	if dropped != nil {
		s.deleteStoredFile(ctx, dropped.PublicID, dropped.ResourceType)
	}
	return b.SessionDates, nil
}

func (s *DefaultBookingService) notifyStatus(ctx context.Context, b *models.Booking, sess models.Session, reason string) {
	if s.Tasks == nil {
		return
	}
	err := s.Tasks.EnqueueSessionStatus(ctx, models.SessionStatusPayload{
		BookingID:     b.ID.Hex(),
		BookingNumber: b.BookingNumber,
		SessionID:     sess.SessionID,
		SessionNumber: sess.SessionNumber,
		UserID:        b.User.Hex(),
		Status:        sess.Status,
		Date:          sess.Date,
		Time:          sess.Time,
		Reason:        reason,
	})
	if err != nil {
		utils.GetLogger().Warn("Failed to enqueue session status notification",
			zap.String("bookingId", b.ID.Hex()), zap.Error(err))
	}
}

func (s *DefaultBookingService) scheduleReminder(ctx context.Context, b *models.Booking, sess models.Session) {
	if s.Tasks == nil {
		return
	}
	err := s.Tasks.ScheduleSessionReminder(ctx, models.SessionReminderPayload{
		BookingID:     b.ID.Hex(),
		BookingNumber: b.BookingNumber,
		SessionID:     sess.SessionID,
		UserID:        b.User.Hex(),
		Date:          sess.Date,
		Time:          sess.Time,
	})
	if err != nil {
		utils.GetLogger().Warn("Failed to schedule session reminder",
			zap.String("bookingId", b.ID.Hex()), zap.Error(err))
	}
}
