package booking

import (
	"testing"
	"time"

	"clinicbook/models"
	"clinicbook/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)

func sessionsWith(statuses ...string) []models.Session {
	out := make([]models.Session, len(statuses))
	for i, st := range statuses {
		out[i] = models.Session{
			SessionID:     "sess-" + string(rune('a'+i)),
			SessionNumber: i + 1,
			Date:          "2025-01-1" + string(rune('0'+i)),
			Time:          "09:00",
			Status:        st,
		}
	}
	return out
}

func testBooking(total int, statuses ...string) *models.Booking {
	return &models.Booking{
		BookingNumber:   "BK250110120000ABCD",
		NoOfSessionBook: total,
		SessionDates:    sessionsWith(statuses...),
		SessionStatus:   models.BookingPending,
	}
}

func sessionNumbers(b *models.Booking) []int {
	out := make([]int, 0, len(b.SessionDates))
	for _, s := range b.SessionDates {
		out = append(out, s.SessionNumber)
	}
	return out
}

func TestRescheduleSessionRecordsHistory(t *testing.T) {
	b := testBooking(3, models.SessionPending)

	s, err := RescheduleSession(b, 1, "2025-01-12", "10:30", "doctor away", fixedNow)
	require.NoError(t, err)

	assert.Equal(t, "2025-01-12", s.Date)
	assert.Equal(t, "10:30", s.Time)
	assert.Equal(t, models.SessionConfirmed, s.Status)
	require.Len(t, s.RescheduleHistory, 1)
	assert.Equal(t, models.RescheduleEntry{
		PreviousDate: "2025-01-10",
		PreviousTime: "09:00",
		Reason:       "doctor away",
		Timestamp:    fixedNow,
	}, s.RescheduleHistory[0])
	assert.Equal(t, models.BookingOngoing, b.SessionStatus)
}

func TestRescheduleSessionRejectsTerminalSessions(t *testing.T) {
	for _, status := range []string{models.SessionCompleted, models.SessionCancelled} {
		t.Run(status, func(t *testing.T) {
			b := testBooking(3, status)
			before := b.SessionDates[0]

			_, err := RescheduleSession(b, 1, "2025-01-12", "10:30", "", fixedNow)
			require.Error(t, err)
			assert.True(t, utils.IsKind(err, utils.KindConflict))
			assert.Equal(t, before, b.SessionDates[0])
		})
	}
}

func TestRescheduleSessionValidation(t *testing.T) {
	b := testBooking(1, models.SessionPending)

	_, err := RescheduleSession(b, 1, "12/01/2025", "10:30", "", fixedNow)
	assert.True(t, utils.IsKind(err, utils.KindValidation))

	_, err = RescheduleSession(b, 1, "2025-01-12", "25:00", "", fixedNow)
	assert.True(t, utils.IsKind(err, utils.KindValidation))

	_, err = RescheduleSession(b, 7, "2025-01-12", "10:30", "", fixedNow)
	assert.True(t, utils.IsKind(err, utils.KindNotFound))
}

func TestCompleteAndCancelSession(t *testing.T) {
	b := testBooking(2, models.SessionConfirmed, models.SessionPending)

	s, err := CompleteSession(b, 1, fixedNow)
	require.NoError(t, err)
	assert.Equal(t, models.SessionCompleted, s.Status)
	require.NotNil(t, s.CompletedAt)
	assert.True(t, fixedNow.Equal(*s.CompletedAt))
	assert.Equal(t, models.BookingOngoing, b.SessionStatus)

	s, err = CancelSession(b, 2, "patient moved", fixedNow)
	require.NoError(t, err)
	assert.Equal(t, models.SessionCancelled, s.Status)
	assert.Equal(t, "patient moved", s.CancellationReason)
	require.NotNil(t, s.CompletedAt)
	assert.Equal(t, models.BookingCompleted, b.SessionStatus)

	_, err = CompleteSession(b, 9, fixedNow)
	assert.True(t, utils.IsKind(err, utils.KindNotFound))
}

func TestChangeSessionStatusAcceptsAnyKnownStatus(t *testing.T) {
	b := testBooking(2, models.SessionCompleted)

	s, err := ChangeSessionStatus(b, 1, models.SessionNoShow, "did not arrive")
	require.NoError(t, err)
	assert.Equal(t, models.SessionNoShow, s.Status)
	assert.Equal(t, "did not arrive", s.StatusReason)

	s, err = ChangeSessionStatus(b, 1, models.SessionPending, "")
	require.NoError(t, err)
	assert.Equal(t, models.SessionPending, s.Status)
	assert.Equal(t, "did not arrive", s.StatusReason)

	_, err = ChangeSessionStatus(b, 1, "Lost", "")
	assert.True(t, utils.IsKind(err, utils.KindValidation))
}

func TestDeleteSessionRenumbersInOrder(t *testing.T) {
	b := testBooking(3, models.SessionCompleted, models.SessionCompleted, models.SessionPending)
	third := b.SessionDates[2].SessionID

	_, err := DeleteSession(b, 2)
	require.NoError(t, err)

	assert.Equal(t, []int{1, 2}, sessionNumbers(b))
	assert.Equal(t, "sess-a", b.SessionDates[0].SessionID)
	assert.Equal(t, third, b.SessionDates[1].SessionID)
}

func TestDeleteSessionDropsAndRekeysPrescriptions(t *testing.T) {
	b := testBooking(3, models.SessionCompleted, models.SessionCompleted, models.SessionCompleted)
	b.SessionPrescriptions = []models.Prescription{
		{SessionID: "sess-a", SessionNumber: 1, PublicID: "p1"},
		{SessionID: "sess-b", SessionNumber: 2, PublicID: "p2"},
		{SessionID: "sess-c", SessionNumber: 3, PublicID: "p3"},
	}

	dropped, err := DeleteSession(b, 2)
	require.NoError(t, err)
	require.NotNil(t, dropped)
	assert.Equal(t, "p2", dropped.PublicID)

	require.Len(t, b.SessionPrescriptions, 2)
	assert.Equal(t, "p1", b.SessionPrescriptions[0].PublicID)
	assert.Equal(t, 1, b.SessionPrescriptions[0].SessionNumber)
	assert.Equal(t, "p3", b.SessionPrescriptions[1].PublicID)
	assert.Equal(t, 2, b.SessionPrescriptions[1].SessionNumber)
}

func TestDeleteSessionMissing(t *testing.T) {
	b := testBooking(2, models.SessionPending)
	_, err := DeleteSession(b, 4)
	assert.True(t, utils.IsKind(err, utils.KindNotFound))
	assert.Len(t, b.SessionDates, 1)
}

func TestAddNextSession(t *testing.T) {
	b := testBooking(3, models.SessionCompleted)

	s, err := AddNextSession(b, "2025-01-20", "11:00", "sess-new")
	require.NoError(t, err)
	assert.Equal(t, 2, s.SessionNumber)
	assert.Equal(t, models.SessionPending, s.Status)
	assert.Equal(t, "sess-new", s.SessionID)
	assert.Len(t, b.SessionDates, 2)
}

func TestAddNextSessionPreconditions(t *testing.T) {
	t.Run("last session still open", func(t *testing.T) {
		b := testBooking(3, models.SessionCompleted, models.SessionConfirmed)
		_, err := AddNextSession(b, "2025-01-20", "11:00", "x")
		assert.True(t, utils.IsKind(err, utils.KindValidation))
		assert.Len(t, b.SessionDates, 2)
	})
	t.Run("all sessions scheduled", func(t *testing.T) {
		b := testBooking(2, models.SessionCompleted, models.SessionCancelled)
		_, err := AddNextSession(b, "2025-01-20", "11:00", "x")
		assert.True(t, utils.IsKind(err, utils.KindValidation))
		assert.Len(t, b.SessionDates, 2)
	})
}

func TestUpsertPrescription(t *testing.T) {
	b := testBooking(2, models.SessionCompleted, models.SessionCompleted)

	p, old, err := UpsertPrescription(b, 1, models.Prescription{PrescriptionType: "diet", PublicID: "v1"})
	require.NoError(t, err)
	assert.Nil(t, old)
	assert.Equal(t, "sess-a", p.SessionID)

	p, old, err = UpsertPrescription(b, 1, models.Prescription{PrescriptionType: "diet", PublicID: "v2"})
	require.NoError(t, err)
	require.NotNil(t, old)
	assert.Equal(t, "v1", old.PublicID)
	assert.Equal(t, "v2", p.PublicID)
	assert.Len(t, b.SessionPrescriptions, 1)
}

func TestUpsertPrescriptionRequiresCompletedSession(t *testing.T) {
	b := testBooking(2, models.SessionConfirmed)
	_, _, err := UpsertPrescription(b, 1, models.Prescription{PublicID: "v1"})
	assert.True(t, utils.IsKind(err, utils.KindValidation))
	assert.Empty(t, b.SessionPrescriptions)
}

func TestUpsertPrescriptionCap(t *testing.T) {
	b := testBooking(1, models.SessionCompleted, models.SessionCompleted)

	_, _, err := UpsertPrescription(b, 1, models.Prescription{PublicID: "v1"})
	require.NoError(t, err)

	_, _, err = UpsertPrescription(b, 2, models.Prescription{PublicID: "v2"})
	assert.True(t, utils.IsKind(err, utils.KindValidation))
	assert.Len(t, b.SessionPrescriptions, 1)

	// Updating the existing one is still allowed at the cap.
	_, old, err := UpsertPrescription(b, 1, models.Prescription{PublicID: "v3"})
	require.NoError(t, err)
	assert.Equal(t, "v1", old.PublicID)
}

func TestRecomputeAggregateStatus(t *testing.T) {
	cases := []struct {
		name     string
		sessions []models.Session
		total    int
		want     string
	}{
		{"no sessions", nil, 2, models.BookingPending},
		{"all pending", sessionsWith(models.SessionPending), 2, models.BookingPending},
		{"one confirmed", sessionsWith(models.SessionConfirmed), 2, models.BookingOngoing},
		{"finished but more purchased", sessionsWith(models.SessionCompleted), 2, models.BookingOngoing},
		{"all completed", sessionsWith(models.SessionCompleted, models.SessionCompleted), 2, models.BookingCompleted},
		{"mixed finish", sessionsWith(models.SessionCompleted, models.SessionCancelled), 2, models.BookingCompleted},
		{"all cancelled", sessionsWith(models.SessionCancelled, models.SessionCancelled), 2, models.BookingCancelled},
		{"last still open", sessionsWith(models.SessionCompleted, models.SessionNoShow), 2, models.BookingOngoing},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, RecomputeAggregateStatus(tc.sessions, tc.total))
		})
	}
}
