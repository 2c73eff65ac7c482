package availability

import (
	"context"

	"clinicbook/models"
	"clinicbook/services/slots"
	"clinicbook/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AvailabilityService answers which slots of a clinic can still be booked.
type AvailabilityService interface {
	GetAvailableDates(ctx context.Context, clinicID string) (*models.AvailabilityResponse, error)
}

type ClinicFinder interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Clinic, error)
}

type SettingsLoader interface {
	Current(ctx context.Context) (*models.Settings, error)
}

type BookingFinder interface {
	FindForClinicWindow(ctx context.Context, clinicID primitive.ObjectID, startDate, endDate string) ([]models.Booking, error)
}

type DefaultAvailabilityService struct {
	Clinics  ClinicFinder
	Settings SettingsLoader
	Bookings BookingFinder
}

func (s *DefaultAvailabilityService) GetAvailableDates(ctx context.Context, clinicID string) (*models.AvailabilityResponse, error) {
	id, err := utils.ParseObjectID(clinicID, "clinic id")
	if err != nil {
		return nil, err
	}

	clinic, err := s.Clinics.GetByID(ctx, id)
	if err != nil {
		return nil, utils.NewServerError("Failed to load clinic", err)
	}
	if clinic == nil {
		return nil, utils.NewNotFoundError("Clinic not found")
	}
	w := clinic.BookingWindow
	if w == nil || w.StartDate == "" || w.EndDate == "" {
		return nil, utils.NewValidationError("Booking window is not set for this clinic")
	}

	settings, err := s.Settings.Current(ctx)
	if err != nil {
		return nil, err
	}

	bookings, err := s.Bookings.FindForClinicWindow(ctx, clinic.ID, w.StartDate, w.EndDate)
	if err != nil {
		return nil, utils.NewServerError("Failed to load bookings", err)
	}

	days, err := BuildAvailability(clinic, settings, bookings)
	if err != nil {
		return nil, err
	}
	return &models.AvailabilityResponse{Clinic: clinic, AvailableDates: days}, nil
}

// BookedCounts tallies bookings per "YYYY-MM-DD HH:MM". A session also counts
// against every slot it was rescheduled away from.
func BookedCounts(bookings []models.Booking) map[string]int {
	counts := make(map[string]int)
	for _, b := range bookings {
		for _, s := range b.SessionDates {
			counts[slotKey(s.Date, s.Time)]++
			for _, h := range s.RescheduleHistory {
				counts[slotKey(h.PreviousDate, h.PreviousTime)]++
			}
		}
	}
	return counts
}

// BuildAvailability lays out every day of the clinic's booking window with
// per-slot booked and remaining capacity. It performs no I/O.
func BuildAvailability(clinic *models.Clinic, settings *models.Settings, bookings []models.Booking) ([]models.DayAvailability, error) {
	if settings == nil || settings.BookingConfig == nil {
		return nil, utils.NewServerError("Booking settings are malformed", nil)
	}
	cfg := *settings.BookingConfig

	start, err := utils.ParseDate(clinic.BookingWindow.StartDate, "booking window start_date")
	if err != nil {
		return nil, err
	}
	end, err := utils.ParseDate(clinic.BookingWindow.EndDate, "booking window end_date")
	if err != nil {
		return nil, err
	}

	counts := BookedCounts(bookings)
	days := []models.DayAvailability{}

	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		date := d.Format(utils.DateLayout)

		times, err := daySlots(clinic, settings, date, cfg.SlotsPerHour)
		if err != nil {
			return nil, utils.NewServerError("Failed to generate slots for "+date, err)
		}

		day := models.DayAvailability{Date: date, Slots: make([]models.SlotAvailability, 0, len(times))}
		for _, t := range times {
			booked := counts[slotKey(date, t)]
			available := max(cfg.BookingLimitPerSlot-booked, 0)
			status := models.SlotAvailable
			if available == 0 {
				status = models.SlotFull
			}
			day.Slots = append(day.Slots, models.SlotAvailability{
				Time:      t,
				Booked:    booked,
				Available: available,
				Status:    status,
			})
		}
		days = append(days, day)
	}
	return days, nil
}

// daySlots prefers an active special restriction with windows over default hours.
func daySlots(clinic *models.Clinic, settings *models.Settings, date string, slotsPerHour int) ([]string, error) {
	if r := settings.ActiveRestriction(clinic.ID, date); r != nil && len(r.TimeWindows) > 0 {
		return slots.GenerateWindows(r.TimeWindows, slotsPerHour)
	}
	return slots.Generate(clinic.Timings.OpenTime, clinic.Timings.CloseTime, slotsPerHour)
}

func slotKey(date, t string) string {
	return date + " " + t
}

// BookedAt is the booked count of a single slot.
func BookedAt(bookings []models.Booking, date, t string) int {
	return BookedCounts(bookings)[slotKey(date, t)]
}
