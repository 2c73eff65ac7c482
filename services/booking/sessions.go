package booking

import (
	"time"

	"clinicbook/models"
	"clinicbook/utils"
)

// The functions in this file mutate a loaded aggregate in memory. They run
// inside BookingRepository.MutateBooking and never touch storage themselves;
// an error return leaves the stored document unchanged.

func findSession(b *models.Booking, sessionNumber int) (*models.Session, error) {
	s := b.FindSession(sessionNumber)
	if s == nil {
		return nil, utils.NewNotFoundError("Session not found")
	}
	return s, nil
}

func validateSlot(date, clock string) error {
	if _, err := utils.ParseDate(date, "date"); err != nil {
		return err
	}
	return utils.ValidateClock(clock, "time")
}

// RescheduleSession moves a session to a new slot and records where it was.
// Completed and cancelled sessions are rejected before anything changes.
func RescheduleSession(b *models.Booking, sessionNumber int, newDate, newTime, reason string, now time.Time) (*models.Session, error) {
	if err := validateSlot(newDate, newTime); err != nil {
		return nil, err
	}
	s, err := findSession(b, sessionNumber)
	if err != nil {
		return nil, err
	}
	if models.IsTerminalStatus(s.Status) {
		return nil, utils.NewConflictError("Cannot reschedule a %s session", s.Status)
	}

	s.RescheduleHistory = append(s.RescheduleHistory, models.RescheduleEntry{
		PreviousDate: s.Date,
		PreviousTime: s.Time,
		Reason:       reason,
		Timestamp:    now,
	})
	s.Date = newDate
	s.Time = newTime
	s.Status = models.SessionConfirmed
	b.SessionStatus = RecomputeAggregateStatus(b.SessionDates, b.NoOfSessionBook)
	return s, nil
}

func CompleteSession(b *models.Booking, sessionNumber int, now time.Time) (*models.Session, error) {
	s, err := findSession(b, sessionNumber)
	if err != nil {
		return nil, err
	}
	s.Status = models.SessionCompleted
	s.CompletedAt = &now
	b.SessionStatus = RecomputeAggregateStatus(b.SessionDates, b.NoOfSessionBook)
	return s, nil
}

// CancelSession stamps completedAt as well; there is no separate cancellation time.
func CancelSession(b *models.Booking, sessionNumber int, reason string, now time.Time) (*models.Session, error) {
	s, err := findSession(b, sessionNumber)
	if err != nil {
		return nil, err
	}
	s.Status = models.SessionCancelled
	s.CancellationReason = reason
	s.CompletedAt = &now
	b.SessionStatus = RecomputeAggregateStatus(b.SessionDates, b.NoOfSessionBook)
	return s, nil
}

// ChangeSessionStatus overwrites the status without a transition table.
func ChangeSessionStatus(b *models.Booking, sessionNumber int, newStatus, reason string) (*models.Session, error) {
	if !models.IsSessionStatus(newStatus) {
		return nil, utils.NewValidationError("invalid session status %q", newStatus)
	}
	s, err := findSession(b, sessionNumber)
	if err != nil {
		return nil, err
	}
	s.Status = newStatus
	if reason != "" {
		s.StatusReason = reason
	}
	b.SessionStatus = RecomputeAggregateStatus(b.SessionDates, b.NoOfSessionBook)
	return s, nil
}

// DeleteSession removes a session, renumbers the rest from 1 and drops the
// prescription attached to the removed session. The dropped prescription is
// returned so its file can be removed once the change is stored.
func DeleteSession(b *models.Booking, sessionNumber int) (*models.Prescription, error) {
	idx := -1
	for i := range b.SessionDates {
		if b.SessionDates[i].SessionNumber == sessionNumber {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, utils.NewNotFoundError("Session not found")
	}
	removedID := b.SessionDates[idx].SessionID
	b.SessionDates = append(b.SessionDates[:idx], b.SessionDates[idx+1:]...)
	renumber(b)

	var dropped *models.Prescription
	kept := b.SessionPrescriptions[:0]
	for _, p := range b.SessionPrescriptions {
		if p.SessionID == removedID {
			p := p
			dropped = &p
			continue
		}
		kept = append(kept, p)
	}
	b.SessionPrescriptions = kept
	syncPrescriptionNumbers(b)

	b.SessionStatus = RecomputeAggregateStatus(b.SessionDates, b.NoOfSessionBook)
	return dropped, nil
}

func renumber(b *models.Booking) {
	for i := range b.SessionDates {
		b.SessionDates[i].SessionNumber = i + 1
	}
}

// syncPrescriptionNumbers refreshes the display number of every prescription
// from the session it belongs to.
func syncPrescriptionNumbers(b *models.Booking) {
	numbers := make(map[string]int, len(b.SessionDates))
	for _, s := range b.SessionDates {
		numbers[s.SessionID] = s.SessionNumber
	}
	for i := range b.SessionPrescriptions {
		if n, ok := numbers[b.SessionPrescriptions[i].SessionID]; ok {
			b.SessionPrescriptions[i].SessionNumber = n
		}
	}
}

// AddNextSession appends a pending session. The previous session must be
// finished and the purchased session count must not be reached.
func AddNextSession(b *models.Booking, newDate, newTime, sessionID string) (*models.Session, error) {
	if err := validateSlot(newDate, newTime); err != nil {
		return nil, err
	}
	if n := len(b.SessionDates); n > 0 {
		last := b.SessionDates[n-1]
		if !models.IsTerminalStatus(last.Status) {
			return nil, utils.NewValidationError("Session %d must be completed or cancelled before adding the next one", last.SessionNumber)
		}
	}
	if len(b.SessionDates) >= b.NoOfSessionBook {
		return nil, utils.NewValidationError("All %d booked sessions are already scheduled", b.NoOfSessionBook)
	}

	b.SessionDates = append(b.SessionDates, models.Session{
		SessionID:         sessionID,
		SessionNumber:     len(b.SessionDates) + 1,
		Date:              newDate,
		Time:              newTime,
		Status:            models.SessionPending,
		RescheduleHistory: []models.RescheduleEntry{},
	})
	b.SessionStatus = RecomputeAggregateStatus(b.SessionDates, b.NoOfSessionBook)
	return &b.SessionDates[len(b.SessionDates)-1], nil
}

// UpsertPrescription stores p for a completed session, replacing any earlier
// prescription of that session. It returns the replaced entry, if any.
func UpsertPrescription(b *models.Booking, sessionNumber int, p models.Prescription) (*models.Prescription, *models.Prescription, error) {
	s, err := findSession(b, sessionNumber)
	if err != nil {
		return nil, nil, err
	}
	if s.Status != models.SessionCompleted {
		return nil, nil, utils.NewValidationError("Prescriptions can only be added to completed sessions")
	}
	p.SessionID = s.SessionID
	p.SessionNumber = s.SessionNumber

	for i := range b.SessionPrescriptions {
		if b.SessionPrescriptions[i].SessionID == s.SessionID {
			old := b.SessionPrescriptions[i]
			b.SessionPrescriptions[i] = p
			return &b.SessionPrescriptions[i], &old, nil
		}
	}
	if len(b.SessionPrescriptions) >= b.NoOfSessionBook {
		return nil, nil, utils.NewValidationError("Prescription limit of %d reached for this booking", b.NoOfSessionBook)
	}
	b.SessionPrescriptions = append(b.SessionPrescriptions, p)
	return &b.SessionPrescriptions[len(b.SessionPrescriptions)-1], nil, nil
}

// RecomputeAggregateStatus derives the booking status from its sessions:
// Pending until any session moves, Completed or Cancelled once every purchased
// session exists and is finished, Ongoing otherwise.
func RecomputeAggregateStatus(sessions []models.Session, total int) string {
	allPending := true
	finished, completed := 0, 0
	for _, s := range sessions {
		if s.Status != models.SessionPending {
			allPending = false
		}
		if models.IsTerminalStatus(s.Status) {
			finished++
		}
		if s.Status == models.SessionCompleted {
			completed++
		}
	}

	switch {
	case allPending:
		return models.BookingPending
	case len(sessions) >= total && finished == len(sessions):
		if completed == 0 {
			return models.BookingCancelled
		}
		return models.BookingCompleted
	default:
		return models.BookingOngoing
	}
}
