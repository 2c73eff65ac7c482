package notification

import (
	"context"
	"errors"
	"testing"

	"clinicbook/models"

	"firebase.google.com/go/v4/messaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type memNotifications struct {
	created []*models.Notification
	sent    []primitive.ObjectID
}

func (m *memNotifications) Create(_ context.Context, n *models.Notification) error {
	n.ID = primitive.NewObjectID()
	m.created = append(m.created, n)
	return nil
}

func (m *memNotifications) MarkSent(_ context.Context, id primitive.ObjectID) error {
	m.sent = append(m.sent, id)
	return nil
}

func (m *memNotifications) ListByUser(context.Context, primitive.ObjectID, int64) ([]models.Notification, error) {
	return nil, nil
}

type memUsers struct{ users map[primitive.ObjectID]*models.User }

func (m *memUsers) GetByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	return m.users[id], nil
}

func (m *memUsers) UpdateFCMToken(context.Context, primitive.ObjectID, string) error { return nil }

type memBookings struct {
	bookings map[primitive.ObjectID]*models.Booking
	err      error
}

func (m *memBookings) FindByID(_ context.Context, id primitive.ObjectID) (*models.Booking, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.bookings[id], nil
}

type recordingPush struct{ messages []*messaging.Message }

func (r *recordingPush) Send(_ context.Context, m *messaging.Message) (string, error) {
	r.messages = append(r.messages, m)
	return "msg-1", nil
}

type reminderFixture struct {
	svc     *DefaultNotificationService
	store   *memNotifications
	push    *recordingPush
	booking *models.Booking
	payload models.SessionReminderPayload
}

func newReminderFixture() *reminderFixture {
	user := &models.User{ID: primitive.NewObjectID(), FCMToken: "device-1"}
	b := &models.Booking{
		ID:            primitive.NewObjectID(),
		BookingNumber: "BK250110120000ABCD",
		User:          user.ID,
		SessionDates: []models.Session{
			{SessionID: "s1", SessionNumber: 1, Date: "2025-01-10", Time: "09:00", Status: models.SessionConfirmed},
			{SessionID: "s2", SessionNumber: 2, Date: "2025-01-17", Time: "09:00", Status: models.SessionPending},
		},
	}
	f := &reminderFixture{
		store:   &memNotifications{},
		push:    &recordingPush{},
		booking: b,
		payload: models.SessionReminderPayload{
			BookingID:     b.ID.Hex(),
			BookingNumber: b.BookingNumber,
			SessionID:     "s1",
			UserID:        user.ID.Hex(),
			Date:          "2025-01-10",
			Time:          "09:00",
		},
	}
	f.svc = &DefaultNotificationService{
		Users:    &memUsers{users: map[primitive.ObjectID]*models.User{user.ID: user}},
		Repo:     f.store,
		Push:     f.push,
		Bookings: &memBookings{bookings: map[primitive.ObjectID]*models.Booking{b.ID: b}},
	}
	return f
}

func TestNotifySessionReminderSendsForCurrentSlot(t *testing.T) {
	f := newReminderFixture()

	require.NoError(t, f.svc.NotifySessionReminder(context.Background(), f.payload))
	require.Len(t, f.store.created, 1)
	assert.Equal(t, models.NotificationSessionReminder, f.store.created[0].Type)
	require.Len(t, f.push.messages, 1)
	assert.Equal(t, "device-1", f.push.messages[0].Token)
	assert.Len(t, f.store.sent, 1)
}

func TestNotifySessionReminderDropsStaleReminders(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(b *models.Booking)
	}{
		{"rescheduled", func(b *models.Booking) {
			b.SessionDates[0].Date, b.SessionDates[0].Time = "2025-01-12", "10:00"
		}},
		{"cancelled", func(b *models.Booking) { b.SessionDates[0].Status = models.SessionCancelled }},
		{"completed", func(b *models.Booking) { b.SessionDates[0].Status = models.SessionCompleted }},
		{"no show", func(b *models.Booking) { b.SessionDates[0].Status = models.SessionNoShow }},
		{"deleted", func(b *models.Booking) {
			b.SessionDates = b.SessionDates[1:]
			b.SessionDates[0].SessionNumber = 1
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newReminderFixture()
			tc.mutate(f.booking)

			require.NoError(t, f.svc.NotifySessionReminder(context.Background(), f.payload))
			assert.Empty(t, f.store.created)
			assert.Empty(t, f.push.messages)
		})
	}
}

func TestNotifySessionReminderDropsWhenBookingGone(t *testing.T) {
	f := newReminderFixture()
	f.svc.Bookings = &memBookings{bookings: map[primitive.ObjectID]*models.Booking{}}

	require.NoError(t, f.svc.NotifySessionReminder(context.Background(), f.payload))
	assert.Empty(t, f.store.created)
}

func TestNotifySessionReminderRetriesOnLookupFailure(t *testing.T) {
	f := newReminderFixture()
	f.svc.Bookings = &memBookings{err: errors.New("mongo down")}

	assert.Error(t, f.svc.NotifySessionReminder(context.Background(), f.payload))
	assert.Empty(t, f.store.created)
}

func TestNotifySessionStatusStoresWithoutPush(t *testing.T) {
	f := newReminderFixture()
	f.svc.Push = nil

	err := f.svc.NotifySessionStatus(context.Background(), models.SessionStatusPayload{
		BookingID: f.booking.ID.Hex(), UserID: f.payload.UserID, SessionNumber: 1, Status: models.SessionCompleted,
	})
	require.NoError(t, err)
	require.Len(t, f.store.created, 1)
	assert.Equal(t, models.NotificationSessionStatus, f.store.created[0].Type)
	assert.Empty(t, f.store.sent)
}
