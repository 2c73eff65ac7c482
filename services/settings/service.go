package settings

import (
	"context"

	clinicRepo "clinicbook/database/repository/clinic"
	settingsRepo "clinicbook/database/repository/settings"
	"clinicbook/models"
	"clinicbook/services/slots"
	"clinicbook/utils"

	"go.uber.org/zap"
)

// SettingsService manages the singleton booking configuration.
type SettingsService interface {
	// Current loads the configuration for one request and fails with a
	// server error when it is missing or malformed.
	Current(ctx context.Context) (*models.Settings, error)
	Get(ctx context.Context) (*models.Settings, error)
	UpdateBookingConfig(ctx context.Context, req models.UpdateSettingsRequest) (*models.Settings, error)
	UpsertSpecialRestriction(ctx context.Context, req models.SpecialRestrictionRequest) (*models.Settings, error)
}

type DefaultSettingsService struct {
	Repo    settingsRepo.SettingsRepository
	Clinics clinicRepo.ClinicRepository
}

func (s *DefaultSettingsService) Current(ctx context.Context) (*models.Settings, error) {
	st, err := s.Repo.Load(ctx)
	if err != nil {
		return nil, utils.NewServerError("Failed to load booking settings", err)
	}
	if st == nil {
		return nil, utils.NewServerError("Booking settings are not configured", nil)
	}
	if err := validateBookingConfig(st.BookingConfig); err != nil {
		utils.GetLogger().Error("Malformed booking settings", zap.Error(err))
		return nil, utils.NewServerError("Booking settings are malformed", err)
	}
	return st, nil
}

func (s *DefaultSettingsService) Get(ctx context.Context) (*models.Settings, error) {
	st, err := s.Repo.Load(ctx)
	if err != nil {
		return nil, utils.NewServerError("Failed to load booking settings", err)
	}
	if st == nil {
		return nil, utils.NewNotFoundError("Booking settings not found")
	}
	return st, nil
}

func (s *DefaultSettingsService) UpdateBookingConfig(ctx context.Context, req models.UpdateSettingsRequest) (*models.Settings, error) {
	cfg := models.BookingConfig{
		SlotsPerHour:        req.SlotsPerHour,
		BookingLimitPerSlot: req.BookingLimitPerSlot,
	}
	if err := validateBookingConfig(&cfg); err != nil {
		return nil, err
	}
	st, err := s.Repo.UpsertBookingConfig(ctx, cfg)
	if err != nil {
		return nil, utils.NewServerError("Failed to update booking settings", err)
	}
	return st, nil
}

func (s *DefaultSettingsService) UpsertSpecialRestriction(ctx context.Context, req models.SpecialRestrictionRequest) (*models.Settings, error) {
	clinicID, err := utils.ParseObjectID(req.Clinic, "clinic id")
	if err != nil {
		return nil, err
	}
	if _, err := utils.ParseDate(req.Date, "date"); err != nil {
		return nil, err
	}
	for _, w := range req.TimeWindows {
		if err := validateWindow(w); err != nil {
			return nil, err
		}
	}

	clinic, err := s.Clinics.GetByID(ctx, clinicID)
	if err != nil {
		return nil, utils.NewServerError("Failed to load clinic", err)
	}
	if clinic == nil {
		return nil, utils.NewNotFoundError("Clinic not found")
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}
	st, err := s.Repo.UpsertSpecialRestriction(ctx, models.SpecialSlotRestriction{
		Date:        req.Date,
		Clinic:      clinicID,
		TimeWindows: req.TimeWindows,
		Active:      active,
	})
	if err != nil {
		return nil, utils.NewServerError("Failed to save special restriction", err)
	}
	return st, nil
}

func validateBookingConfig(cfg *models.BookingConfig) error {
	if cfg == nil {
		return utils.NewValidationError("booking_config is required")
	}
	if _, err := slots.SlotDuration(cfg.SlotsPerHour); err != nil {
		return err
	}
	if cfg.BookingLimitPerSlot < 1 {
		return utils.NewValidationError("booking_limit_per_slot must be at least 1")
	}
	return nil
}

func validateWindow(w models.TimeWindow) error {
	start, err := slots.ParseClock(w.Start)
	if err != nil {
		return err
	}
	end, err := slots.ParseClock(w.End)
	if err != nil {
		return err
	}
	if end <= start {
		return utils.NewValidationError("time window end %s must be after start %s", w.End, w.Start)
	}
	return nil
}
