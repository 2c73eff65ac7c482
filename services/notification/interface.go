package notification

import (
	"context"
	"fmt"
	"strconv"

	notificationRepo "clinicbook/database/repository/notification"
	userRepo "clinicbook/database/repository/user"
	"clinicbook/models"
	"clinicbook/utils"

	"firebase.google.com/go/v4/messaging"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// NotificationService records in-app notifications and pushes them over FCM.
type NotificationService interface {
	NotifySessionStatus(ctx context.Context, p models.SessionStatusPayload) error
	NotifySessionReminder(ctx context.Context, p models.SessionReminderPayload) error
	ListUserNotifications(ctx context.Context, userID string) ([]models.Notification, error)
	UpdateFCMToken(ctx context.Context, userID, token string) error
}

// PushSender is the part of *messaging.Client used here.
type PushSender interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// BookingLookup loads the booking a reminder refers to.
type BookingLookup interface {
	// FindByID returns nil, nil when no booking matches.
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Booking, error)
}

// DefaultNotificationService is the production implementation. A nil Push
// stores notifications without sending them.
type DefaultNotificationService struct {
	Users    userRepo.UserRepository
	Repo     notificationRepo.NotificationRepository
	Push     PushSender
	Bookings BookingLookup
}

func (s *DefaultNotificationService) NotifySessionStatus(ctx context.Context, p models.SessionStatusPayload) error {
	title := fmt.Sprintf("Session %d %s", p.SessionNumber, p.Status)
	body := fmt.Sprintf("Booking %s: your session on %s at %s is now %s.", p.BookingNumber, p.Date, p.Time, p.Status)
	if p.Reason != "" {
		body += " Reason: " + p.Reason
	}
	data := map[string]string{
		"bookingId":     p.BookingID,
		"sessionId":     p.SessionID,
		"sessionNumber": strconv.Itoa(p.SessionNumber),
		"status":        p.Status,
	}
	return s.deliver(ctx, p.UserID, models.NotificationSessionStatus, title, body, data)
}

// NotifySessionReminder re-reads the booking first. Reminders are queued once
// per slot and never withdrawn, so one whose session was deleted, finished or
// moved to another slot is dropped here.
func (s *DefaultNotificationService) NotifySessionReminder(ctx context.Context, p models.SessionReminderPayload) error {
	if s.Bookings != nil {
		due, err := s.reminderDue(ctx, p)
		if err != nil {
			return err
		}
		if !due {
			utils.GetLogger().Info("Dropping stale session reminder",
				zap.String("bookingId", p.BookingID), zap.String("sessionId", p.SessionID),
				zap.String("date", p.Date), zap.String("time", p.Time))
			return nil
		}
	}

	title := "Upcoming session"
	body := fmt.Sprintf("Booking %s: you have a session on %s at %s.", p.BookingNumber, p.Date, p.Time)
	data := map[string]string{
		"bookingId": p.BookingID,
		"sessionId": p.SessionID,
		"date":      p.Date,
		"time":      p.Time,
	}
	return s.deliver(ctx, p.UserID, models.NotificationSessionReminder, title, body, data)
}

func (s *DefaultNotificationService) reminderDue(ctx context.Context, p models.SessionReminderPayload) (bool, error) {
	id, err := primitive.ObjectIDFromHex(p.BookingID)
	if err != nil {
		return false, nil
	}
	b, err := s.Bookings.FindByID(ctx, id)
	if err != nil {
		return false, fmt.Errorf("load booking for reminder: %w", err)
	}
	return ReminderStillDue(b, p), nil
}

// ReminderStillDue reports whether the reminded session still exists, is
// still open and still sits in the reminded slot.
func ReminderStillDue(b *models.Booking, p models.SessionReminderPayload) bool {
	if b == nil {
		return false
	}
	for _, sess := range b.SessionDates {
		if sess.SessionID != p.SessionID {
			continue
		}
		if models.IsTerminalStatus(sess.Status) || sess.Status == models.SessionNoShow {
			return false
		}
		return sess.Date == p.Date && sess.Time == p.Time
	}
	return false
}

func (s *DefaultNotificationService) ListUserNotifications(ctx context.Context, userID string) ([]models.Notification, error) {
	uid, err := utils.ParseObjectID(userID, "user id")
	if err != nil {
		return nil, err
	}
	out, err := s.Repo.ListByUser(ctx, uid, 50)
	if err != nil {
		return nil, utils.NewServerError("Failed to load notifications", err)
	}
	return out, nil
}

func (s *DefaultNotificationService) UpdateFCMToken(ctx context.Context, userID, token string) error {
	uid, err := utils.ParseObjectID(userID, "user id")
	if err != nil {
		return err
	}
	if err := s.Users.UpdateFCMToken(ctx, uid, token); err != nil {
		return utils.NewServerError("Failed to update device token", err)
	}
	return nil
}

// deliver stores the notification first so it survives push failures.
func (s *DefaultNotificationService) deliver(ctx context.Context, userID, kind, title, body string, data map[string]string) error {
	uid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return fmt.Errorf("deliver: invalid user id %q: %w", userID, err)
	}

	n := &models.Notification{
		UserID: uid,
		Type:   kind,
		Title:  title,
		Body:   body,
		Data:   data,
	}
	if err := s.Repo.Create(ctx, n); err != nil {
		return fmt.Errorf("deliver: %w", err)
	}

	if s.Push == nil {
		return nil
	}
	// Past this point the notification is stored; retrying would duplicate it.
	u, err := s.Users.GetByID(ctx, uid)
	if err != nil {
		utils.GetLogger().Warn("Could not load user for push", zap.String("userId", userID), zap.Error(err))
		return nil
	}
	if u == nil || u.FCMToken == "" {
		utils.GetLogger().Debug("No FCM token, skipping push", zap.String("userId", userID))
		return nil
	}

	msg := &messaging.Message{
		Token:        u.FCMToken,
		Notification: &messaging.Notification{Title: title, Body: body},
		Data:         data,
	}
	if _, err := s.Push.Send(ctx, msg); err != nil {
		utils.GetLogger().Warn("Failed to send FCM message", zap.String("userId", userID), zap.Error(err))
		return nil
	}
	return s.Repo.MarkSent(ctx, n.ID)
}
