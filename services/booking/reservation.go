package booking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"clinicbook/models"
	"clinicbook/services/availability"
	"clinicbook/utils"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

var (
	ErrSlotFull            = errors.New("no capacity left in slot")
	ErrReservationNotFound = errors.New("reservation not found")
)

// Hold is one unit of slot capacity held for a user until it expires or a
// booking consumes it.
type Hold struct {
	Token  string `json:"token"`
	UserID string `json:"userId"`
	Clinic string `json:"clinic"`
	Date   string `json:"date"`
	Time   string `json:"time"`
}

// SlotReserver tracks live holds per (clinic, date, time). A slot has room
// while its booked count plus its live holds stays under the limit.
type SlotReserver interface {
	Reserve(ctx context.Context, h Hold, booked, limit int, ttl time.Duration) (*Hold, error)
	// Confirm checks that h is still live and that the slot has room for it
	// next to every other live hold.
	Confirm(ctx context.Context, h *Hold, booked, limit int) error
	Get(ctx context.Context, token string) (*Hold, error)
	Release(ctx context.Context, h *Hold) error
}

// Holds live in a sorted set per slot scored by their expiry in unix ms.
// Expired members are pruned before every count.
var reserveScript = redis.NewScript(`
redis.call('ZREMRANGEBYSCORE', KEYS[1], '-inf', ARGV[1])
local held = redis.call('ZCARD', KEYS[1])
if tonumber(ARGV[2]) + held >= tonumber(ARGV[3]) then
	return 0
end
redis.call('ZADD', KEYS[1], ARGV[4], ARGV[5])
if redis.call('PTTL', KEYS[1]) < tonumber(ARGV[6]) then
	redis.call('PEXPIRE', KEYS[1], ARGV[6])
end
redis.call('SET', KEYS[2], ARGV[7], 'PX', ARGV[6])
return 1
`)

var confirmScript = redis.NewScript(`
redis.call('ZREMRANGEBYSCORE', KEYS[1], '-inf', ARGV[1])
if not redis.call('ZSCORE', KEYS[1], ARGV[2]) then
	return -1
end
local others = redis.call('ZCARD', KEYS[1]) - 1
if tonumber(ARGV[3]) + others >= tonumber(ARGV[4]) then
	return 0
end
return 1
`)

type RedisReservationStore struct {
	client *redis.Client
	now    func() time.Time
}

func NewRedisReservationStore(client *redis.Client) *RedisReservationStore {
	return &RedisReservationStore{client: client, now: time.Now}
}

func slotKey(clinic, date, clock string) string {
	return fmt.Sprintf("%s%s:%s:%s", utils.ReservationPrefix, clinic, date, clock)
}

func tokenKey(token string) string {
	return utils.ReservationPrefix + "token:" + token
}

func (r *RedisReservationStore) Reserve(ctx context.Context, h Hold, booked, limit int, ttl time.Duration) (*Hold, error) {
	h.Token = uuid.NewString()
	raw, err := json.Marshal(h)
	if err != nil {
		return nil, fmt.Errorf("encode reservation: %w", err)
	}

	now := r.now()
	keys := []string{slotKey(h.Clinic, h.Date, h.Time), tokenKey(h.Token)}
	ok, err := reserveScript.Run(ctx, r.client, keys,
		now.UnixMilli(), booked, limit, now.Add(ttl).UnixMilli(), h.Token, ttl.Milliseconds(), raw,
	).Int()
	if err != nil {
		return nil, fmt.Errorf("reserve %s: %w", keys[0], err)
	}
	if ok == 0 {
		return nil, ErrSlotFull
	}
	return &h, nil
}

func (r *RedisReservationStore) Confirm(ctx context.Context, h *Hold, booked, limit int) error {
	key := slotKey(h.Clinic, h.Date, h.Time)
	res, err := confirmScript.Run(ctx, r.client, []string{key},
		r.now().UnixMilli(), h.Token, booked, limit).Int()
	if err != nil {
		return fmt.Errorf("confirm %s: %w", key, err)
	}
	switch res {
	case -1:
		return ErrReservationNotFound
	case 0:
		return ErrSlotFull
	}
	return nil
}

func (r *RedisReservationStore) Get(ctx context.Context, token string) (*Hold, error) {
	raw, err := r.client.Get(ctx, tokenKey(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrReservationNotFound
		}
		return nil, fmt.Errorf("load reservation: %w", err)
	}
	var h Hold
	if err := json.Unmarshal(raw, &h); err != nil {
		return nil, fmt.Errorf("decode reservation: %w", err)
	}
	return &h, nil
}

func (r *RedisReservationStore) Release(ctx context.Context, h *Hold) error {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZRem(ctx, slotKey(h.Clinic, h.Date, h.Time), h.Token)
		pipe.Del(ctx, tokenKey(h.Token))
		return nil
	})
	if err != nil {
		return fmt.Errorf("release reservation: %w", err)
	}
	return nil
}

// ReserveSlot holds one unit of capacity of a slot for the caller.
func (s *DefaultBookingService) ReserveSlot(ctx context.Context, userID string, req models.ReserveSlotRequest) (*models.SlotReservation, error) {
	if s.Reservations == nil {
		return nil, utils.NewServerError("Slot reservations are not enabled", nil)
	}
	if strings.TrimSpace(userID) == "" {
		return nil, utils.NewValidationError("user id is required")
	}
	clinicID, err := utils.ParseObjectID(req.Clinic, "clinic id")
	if err != nil {
		return nil, err
	}
	if err := validateSlot(req.Date, req.Time); err != nil {
		return nil, err
	}

	booked, limit, err := s.slotLoad(ctx, clinicID, req.Date, req.Time)
	if err != nil {
		return nil, err
	}
	if booked >= limit {
		s.Metrics.ObserveReservation(ErrSlotFull)
		return nil, utils.NewConflictError("Selected slot is full")
	}

	ttl := s.reservationTTL()
	h, err := s.Reservations.Reserve(ctx, Hold{
		UserID: userID,
		Clinic: clinicID.Hex(),
		Date:   req.Date,
		Time:   req.Time,
	}, booked, limit, ttl)
	s.Metrics.ObserveReservation(err)
	if err != nil {
		if errors.Is(err, ErrSlotFull) {
			return nil, utils.NewConflictError("Selected slot is full")
		}
		return nil, utils.NewServerError("Failed to reserve slot", err)
	}

	utils.GetLogger().Info("Slot reserved",
		zap.String("clinic", h.Clinic),
		zap.String("date", h.Date),
		zap.String("time", h.Time),
	)
	return &models.SlotReservation{
		Token:     h.Token,
		Clinic:    h.Clinic,
		Date:      h.Date,
		Time:      h.Time,
		ExpiresIn: int(ttl.Seconds()),
	}, nil
}

func (s *DefaultBookingService) reservationTTL() time.Duration {
	if s.ReservationTTL <= 0 {
		return 10 * time.Minute
	}
	return s.ReservationTTL
}

// slotLoad returns the booked count and capacity of one offered slot.
func (s *DefaultBookingService) slotLoad(ctx context.Context, clinicID primitive.ObjectID, date, clock string) (int, int, error) {
	clinic, err := s.Clinics.GetByID(ctx, clinicID)
	if err != nil {
		return 0, 0, utils.NewServerError("Failed to load clinic", err)
	}
	if clinic == nil {
		return 0, 0, utils.NewNotFoundError("Clinic not found")
	}
	w := clinic.BookingWindow
	if w == nil || w.StartDate == "" || w.EndDate == "" {
		return 0, 0, utils.NewValidationError("Booking window is not set for this clinic")
	}
	if date < w.StartDate || date > w.EndDate {
		return 0, 0, utils.NewValidationError("Date %s is outside the clinic booking window", date)
	}

	settings, err := s.Settings.Current(ctx)
	if err != nil {
		return 0, 0, err
	}
	bookings, err := s.Repo.FindForClinicWindow(ctx, clinicID, date, date)
	if err != nil {
		return 0, 0, utils.NewServerError("Failed to load bookings", err)
	}

	day := *clinic
	day.BookingWindow = &models.BookingWindow{StartDate: date, EndDate: date}
	days, err := availability.BuildAvailability(&day, settings, bookings)
	if err != nil {
		return 0, 0, err
	}
	for _, d := range days {
		for _, slot := range d.Slots {
			if slot.Time == clock {
				return slot.Booked, settings.BookingConfig.BookingLimitPerSlot, nil
			}
		}
	}
	return 0, 0, utils.NewValidationError("%s is not an available slot on %s", clock, date)
}
