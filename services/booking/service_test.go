package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	bookingRepo "clinicbook/database/repository/booking"
	"clinicbook/models"
	"clinicbook/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeRepo struct {
	bookings       map[primitive.ObjectID]*models.Booking
	createErrs     []error
	createCalls    int
	windowBookings []models.Booking
}

func newFakeRepo(bookings ...*models.Booking) *fakeRepo {
	f := &fakeRepo{bookings: map[primitive.ObjectID]*models.Booking{}}
	for _, b := range bookings {
		if b.ID.IsZero() {
			b.ID = primitive.NewObjectID()
		}
		f.bookings[b.ID] = cloneBooking(b)
	}
	return f
}

func cloneBooking(b *models.Booking) *models.Booking {
	c := *b
	c.SessionDates = make([]models.Session, len(b.SessionDates))
	for i, s := range b.SessionDates {
		s.RescheduleHistory = append([]models.RescheduleEntry(nil), s.RescheduleHistory...)
		c.SessionDates[i] = s
	}
	c.SessionPrescriptions = append([]models.Prescription(nil), b.SessionPrescriptions...)
	return &c
}

func (f *fakeRepo) CreateWithPayment(_ context.Context, b *models.Booking, p *models.Payment) error {
	f.createCalls++
	if len(f.createErrs) > 0 {
		err := f.createErrs[0]
		f.createErrs = f.createErrs[1:]
		if err != nil {
			return err
		}
	}
	if b.ID.IsZero() {
		b.ID = primitive.NewObjectID()
	}
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	b.Payment = p.ID
	f.bookings[b.ID] = cloneBooking(b)
	return nil
}

func (f *fakeRepo) FindByID(_ context.Context, id primitive.ObjectID) (*models.Booking, error) {
	b, ok := f.bookings[id]
	if !ok {
		return nil, nil
	}
	return cloneBooking(b), nil
}

func (f *fakeRepo) List(context.Context) ([]models.Booking, error) {
	out := make([]models.Booking, 0, len(f.bookings))
	for _, b := range f.bookings {
		out = append(out, *cloneBooking(b))
	}
	return out, nil
}

func (f *fakeRepo) ListByUser(_ context.Context, user primitive.ObjectID) ([]models.Booking, error) {
	var out []models.Booking
	for _, b := range f.bookings {
		if b.User == user {
			out = append(out, *cloneBooking(b))
		}
	}
	return out, nil
}

func (f *fakeRepo) FindForClinicWindow(context.Context, primitive.ObjectID, string, string) ([]models.Booking, error) {
	return f.windowBookings, nil
}

func (f *fakeRepo) MutateBooking(_ context.Context, id primitive.ObjectID, fn bookingRepo.MutateFunc) (*models.Booking, error) {
	stored, ok := f.bookings[id]
	if !ok {
		return nil, bookingRepo.ErrBookingNotFound
	}
	working := cloneBooking(stored)
	if err := fn(working); err != nil {
		return nil, err
	}
	f.bookings[id] = cloneBooking(working)
	return working, nil
}

type fakeClinics struct{ clinic *models.Clinic }

func (f *fakeClinics) GetByID(_ context.Context, id primitive.ObjectID) (*models.Clinic, error) {
	if f.clinic == nil || f.clinic.ID != id {
		return nil, nil
	}
	return f.clinic, nil
}

type fakeSettings struct{ settings *models.Settings }

func (f *fakeSettings) Current(context.Context) (*models.Settings, error) {
	return f.settings, nil
}

type fakePayments struct {
	result *models.PaymentVerification
	err    error
}

func (f *fakePayments) VerifyPayment(context.Context, string) (*models.PaymentVerification, error) {
	return f.result, f.err
}

type fakeStorage struct {
	uploaded []string
	deleted  []string
	next     string
}

func (f *fakeStorage) UploadFile(_ context.Context, path, _ string) (*models.StoredFile, error) {
	f.uploaded = append(f.uploaded, path)
	return &models.StoredFile{PublicID: f.next, URL: "https://files.example/" + f.next, ResourceType: "image"}, nil
}

func (f *fakeStorage) DeleteFile(_ context.Context, publicID, _ string) error {
	f.deleted = append(f.deleted, publicID)
	return nil
}

type fakeTasks struct {
	statuses  []models.SessionStatusPayload
	reminders []models.SessionReminderPayload
}

func (f *fakeTasks) EnqueueSessionStatus(_ context.Context, p models.SessionStatusPayload) error {
	f.statuses = append(f.statuses, p)
	return nil
}

func (f *fakeTasks) ScheduleSessionReminder(_ context.Context, p models.SessionReminderPayload) error {
	f.reminders = append(f.reminders, p)
	return nil
}

type fixture struct {
	svc      *DefaultBookingService
	repo     *fakeRepo
	storage  *fakeStorage
	tasks    *fakeTasks
	payments *fakePayments
	clinic   *models.Clinic
}

func newFixture(bookings ...*models.Booking) *fixture {
	clinic := &models.Clinic{
		ID:            primitive.NewObjectID(),
		Name:          "Central",
		Timings:       models.ClinicTimings{OpenTime: "09:00", CloseTime: "11:00"},
		BookingWindow: &models.BookingWindow{StartDate: "2025-01-01", EndDate: "2025-01-31"},
	}
	f := &fixture{
		repo:    newFakeRepo(bookings...),
		storage: &fakeStorage{next: "new-file"},
		tasks:   &fakeTasks{},
		payments: &fakePayments{result: &models.PaymentVerification{
			GatewayPaymentID: "pi_123",
			Amount:           300,
			Currency:         "USD",
			Method:           "card",
			Status:           models.PaymentSucceeded,
		}},
		clinic: clinic,
	}
	f.svc = &DefaultBookingService{
		Repo:     f.repo,
		Clinics:  &fakeClinics{clinic: clinic},
		Settings: &fakeSettings{settings: &models.Settings{BookingConfig: &models.BookingConfig{SlotsPerHour: 1, BookingLimitPerSlot: 1}}},
		Payments: f.payments,
		Storage:  f.storage,
		Tasks:    f.tasks,
		Now:      func() time.Time { return fixedNow },
	}
	return f
}

func (f *fixture) createRequest() models.CreateBookingRequest {
	return models.CreateBookingRequest{
		Service:         primitive.NewObjectID().Hex(),
		Clinic:          f.clinic.ID.Hex(),
		NoOfSessionBook: 3,
		TotalAmount:     300,
		PaymentIntentID: "pi_123",
		FirstSession:    models.SessionSlot{Date: "2025-01-10", Time: "09:00"},
	}
}

func TestCreateBookingSeedsFirstSession(t *testing.T) {
	f := newFixture()
	user := primitive.NewObjectID()

	b, err := f.svc.CreateBooking(context.Background(), user.Hex(), f.createRequest())
	require.NoError(t, err)

	assert.Regexp(t, `^BK250110120000[A-Z0-9]{4}$`, b.BookingNumber)
	assert.Equal(t, models.BookingPending, b.SessionStatus)
	assert.Equal(t, 3, b.NoOfSessionBook)
	assert.Equal(t, 100.0, b.AmountPerSession)
	require.Len(t, b.SessionDates, 1)
	assert.Equal(t, 1, b.SessionDates[0].SessionNumber)
	assert.Equal(t, models.SessionPending, b.SessionDates[0].Status)
	assert.NotEmpty(t, b.SessionDates[0].SessionID)
	assert.Equal(t, user, b.User)

	require.Len(t, f.tasks.reminders, 1)
	assert.Equal(t, b.BookingNumber, f.tasks.reminders[0].BookingNumber)
}

func TestCreateBookingRetriesOnNumberCollision(t *testing.T) {
	f := newFixture()
	f.repo.createErrs = []error{bookingRepo.ErrDuplicateBookingNumber, bookingRepo.ErrDuplicateBookingNumber}
	numbers := []string{"BK-1", "BK-2", "BK-3"}
	f.svc.NewBookingNumber = func(time.Time) (string, error) {
		n := numbers[0]
		numbers = numbers[1:]
		return n, nil
	}

	b, err := f.svc.CreateBooking(context.Background(), primitive.NewObjectID().Hex(), f.createRequest())
	require.NoError(t, err)
	assert.Equal(t, "BK-3", b.BookingNumber)
	assert.Equal(t, 3, f.repo.createCalls)
}

func TestCreateBookingGivesUpAfterRepeatedCollisions(t *testing.T) {
	f := newFixture()
	for i := 0; i < bookingNumberAttempts; i++ {
		f.repo.createErrs = append(f.repo.createErrs, bookingRepo.ErrDuplicateBookingNumber)
	}

	_, err := f.svc.CreateBooking(context.Background(), primitive.NewObjectID().Hex(), f.createRequest())
	assert.True(t, utils.IsKind(err, utils.KindServer))
	assert.Equal(t, bookingNumberAttempts, f.repo.createCalls)
}

func TestCreateBookingFailures(t *testing.T) {
	user := primitive.NewObjectID().Hex()

	t.Run("no sessions purchased", func(t *testing.T) {
		f := newFixture()
		req := f.createRequest()
		req.NoOfSessionBook = 0
		_, err := f.svc.CreateBooking(context.Background(), user, req)
		assert.True(t, utils.IsKind(err, utils.KindValidation))
	})
	t.Run("payment not succeeded", func(t *testing.T) {
		f := newFixture()
		f.payments.result.Status = "requires_payment_method"
		_, err := f.svc.CreateBooking(context.Background(), user, f.createRequest())
		assert.True(t, utils.IsKind(err, utils.KindValidation))
		assert.Zero(t, f.repo.createCalls)
	})
	t.Run("amount mismatch", func(t *testing.T) {
		f := newFixture()
		req := f.createRequest()
		req.TotalAmount = 250
		_, err := f.svc.CreateBooking(context.Background(), user, req)
		assert.True(t, utils.IsKind(err, utils.KindValidation))
	})
	t.Run("payment reused", func(t *testing.T) {
		f := newFixture()
		f.repo.createErrs = []error{bookingRepo.ErrPaymentAlreadyRecorded}
		_, err := f.svc.CreateBooking(context.Background(), user, f.createRequest())
		assert.True(t, utils.IsKind(err, utils.KindConflict))
	})
	t.Run("slot full", func(t *testing.T) {
		f := newFixture()
		f.repo.windowBookings = []models.Booking{{
			Clinic:       f.clinic.ID,
			SessionDates: []models.Session{{SessionNumber: 1, Date: "2025-01-10", Time: "09:00"}},
		}}
		_, err := f.svc.CreateBooking(context.Background(), user, f.createRequest())
		assert.True(t, utils.IsKind(err, utils.KindConflict))
		assert.Zero(t, f.repo.createCalls)
	})
	t.Run("slot not offered", func(t *testing.T) {
		f := newFixture()
		req := f.createRequest()
		req.FirstSession.Time = "13:00"
		_, err := f.svc.CreateBooking(context.Background(), user, req)
		assert.True(t, utils.IsKind(err, utils.KindValidation))
	})
	t.Run("gateway error", func(t *testing.T) {
		f := newFixture()
		f.payments.err = utils.NewServerError("Failed to verify payment", errors.New("timeout"))
		_, err := f.svc.CreateBooking(context.Background(), user, f.createRequest())
		assert.True(t, utils.IsKind(err, utils.KindServer))
	})
}

func TestChangeSessionInfoRescheduleGuard(t *testing.T) {
	b := testBooking(2, models.SessionCompleted)
	f := newFixture(b)

	_, err := f.svc.ChangeSessionInfo(context.Background(), models.ChangeSessionInfoRequest{
		ID: b.ID.Hex(), SessionNumber: 1, IsReschedule: true, NewDate: "2025-01-15", NewTime: "10:00",
	})
	require.Error(t, err)
	assert.True(t, utils.IsKind(err, utils.KindConflict))

	stored := f.repo.bookings[b.ID]
	assert.Equal(t, "2025-01-10", stored.SessionDates[0].Date)
	assert.Empty(t, stored.SessionDates[0].RescheduleHistory)
	assert.Empty(t, f.tasks.statuses)
}

func TestChangeSessionInfoDispatch(t *testing.T) {
	b := testBooking(2, models.SessionConfirmed)
	f := newFixture(b)
	ctx := context.Background()

	got, err := f.svc.ChangeSessionInfo(ctx, models.ChangeSessionInfoRequest{
		ID: b.ID.Hex(), SessionNumber: 1, IsReschedule: true, NewDate: "2025-01-15", NewTime: "10:00", Reason: "clash",
	})
	require.NoError(t, err)
	assert.Equal(t, "2025-01-15", got.SessionDates[0].Date)
	assert.Len(t, f.tasks.reminders, 1)

	got, err = f.svc.ChangeSessionInfo(ctx, models.ChangeSessionInfoRequest{
		ID: b.ID.Hex(), SessionNumber: 1, Status: models.SessionCancelled, Reason: "sick",
	})
	require.NoError(t, err)
	assert.Equal(t, models.SessionCancelled, got.SessionDates[0].Status)
	assert.Equal(t, "sick", got.SessionDates[0].CancellationReason)

	require.Len(t, f.tasks.statuses, 2)
	assert.Equal(t, models.SessionCancelled, f.tasks.statuses[1].Status)
	assert.Equal(t, "sick", f.tasks.statuses[1].Reason)

	_, err = f.svc.ChangeSessionInfo(ctx, models.ChangeSessionInfoRequest{ID: b.ID.Hex(), SessionNumber: 1, Status: "Rescheduled"})
	assert.True(t, utils.IsKind(err, utils.KindValidation))
}

func TestSessionOperationsMapMissingBooking(t *testing.T) {
	f := newFixture()
	missing := primitive.NewObjectID().Hex()

	_, err := f.svc.ChangeSessionStatus(context.Background(), models.ChangeSessionStatusRequest{
		BookingID: missing, SessionNumber: 1, NewStatus: models.SessionConfirmed,
	})
	assert.True(t, utils.IsKind(err, utils.KindNotFound))

	_, err = f.svc.DeleteSession(context.Background(), models.DeleteSessionRequest{BookingID: "nope", SessionNumber: 1})
	assert.True(t, utils.IsKind(err, utils.KindValidation))
}

func TestAddNextSessionLeavesBookingUntouchedOnFailure(t *testing.T) {
	b := testBooking(2, models.SessionConfirmed)
	f := newFixture(b)

	_, err := f.svc.AddNextSession(context.Background(), models.AddNextSessionRequest{
		BookingID: b.ID.Hex(), NewDate: "2025-01-20", NewTime: "09:00",
	})
	assert.True(t, utils.IsKind(err, utils.KindValidation))
	assert.Len(t, f.repo.bookings[b.ID].SessionDates, 1)
	assert.Empty(t, f.tasks.reminders)
}

func TestDeleteSessionRemovesPrescriptionFileAfterCommit(t *testing.T) {
	b := testBooking(3, models.SessionCompleted, models.SessionCompleted)
	b.SessionPrescriptions = []models.Prescription{{SessionID: "sess-b", SessionNumber: 2, PublicID: "old-file"}}
	f := newFixture(b)

	sessions, err := f.svc.DeleteSession(context.Background(), models.DeleteSessionRequest{BookingID: b.ID.Hex(), SessionNumber: 2})
	require.NoError(t, err)
	assert.Len(t, sessions, 1)
	assert.Equal(t, []string{"old-file"}, f.storage.deleted)
	assert.Empty(t, f.repo.bookings[b.ID].SessionPrescriptions)
}

func TestAddOrUpdatePrescriptionReplacesFile(t *testing.T) {
	b := testBooking(2, models.SessionCompleted)
	b.SessionPrescriptions = []models.Prescription{{SessionID: "sess-a", SessionNumber: 1, PublicID: "old-file"}}
	f := newFixture(b)

	p, err := f.svc.AddOrUpdatePrescription(context.Background(), models.PrescriptionUpload{
		BookingID: b.ID.Hex(), SessionNumber: 1, PrescriptionType: "exercise", LocalFilePath: "/tmp/rx.pdf",
	})
	require.NoError(t, err)
	assert.Equal(t, "new-file", p.PublicID)
	assert.Equal(t, "exercise", p.PrescriptionType)
	assert.Equal(t, []string{"old-file"}, f.storage.deleted)
	require.Len(t, f.repo.bookings[b.ID].SessionPrescriptions, 1)
}

func TestAddOrUpdatePrescriptionCleansUpOnFailure(t *testing.T) {
	b := testBooking(2, models.SessionPending)
	f := newFixture(b)

	_, err := f.svc.AddOrUpdatePrescription(context.Background(), models.PrescriptionUpload{
		BookingID: b.ID.Hex(), SessionNumber: 1, PrescriptionType: "exercise", LocalFilePath: "/tmp/rx.pdf",
	})
	assert.True(t, utils.IsKind(err, utils.KindValidation))
	assert.Equal(t, []string{"new-file"}, f.storage.deleted)
	assert.Empty(t, f.repo.bookings[b.ID].SessionPrescriptions)
}

func TestAddOrUpdatePrescriptionValidatesBeforeUpload(t *testing.T) {
	f := newFixture()
	_, err := f.svc.AddOrUpdatePrescription(context.Background(), models.PrescriptionUpload{
		BookingID: primitive.NewObjectID().Hex(), SessionNumber: 1, LocalFilePath: "/tmp/rx.pdf",
	})
	assert.True(t, utils.IsKind(err, utils.KindValidation))
	assert.Empty(t, f.storage.uploaded)
}

func TestGetBooking(t *testing.T) {
	b := testBooking(1, models.SessionPending)
	f := newFixture(b)

	got, err := f.svc.GetBooking(context.Background(), b.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, b.BookingNumber, got.BookingNumber)

	_, err = f.svc.GetBooking(context.Background(), primitive.NewObjectID().Hex())
	assert.True(t, utils.IsKind(err, utils.KindNotFound))
}
