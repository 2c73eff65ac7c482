package clinic

import (
	"context"
	"strings"

	clinicRepo "clinicbook/database/repository/clinic"
	"clinicbook/models"
	"clinicbook/services/slots"
	"clinicbook/utils"

	"go.mongodb.org/mongo-driver/mongo"
)

// ClinicService manages the clinic directory.
type ClinicService interface {
	CreateClinic(ctx context.Context, req models.CreateClinicRequest) (*models.Clinic, error)
	GetClinic(ctx context.Context, id string) (*models.Clinic, error)
	ListClinics(ctx context.Context) ([]models.Clinic, error)
	UpdateBookingWindow(ctx context.Context, id string, req models.UpdateBookingWindowRequest) (*models.Clinic, error)
}

type DefaultClinicService struct {
	Repo clinicRepo.ClinicRepository
}

func (s *DefaultClinicService) CreateClinic(ctx context.Context, req models.CreateClinicRequest) (*models.Clinic, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, utils.NewValidationError("name is required")
	}
	if err := ValidateTimings(req.Timings); err != nil {
		return nil, err
	}
	if req.BookingWindow != nil {
		if err := ValidateBookingWindow(*req.BookingWindow); err != nil {
			return nil, err
		}
	}

	c := &models.Clinic{
		Name:          name,
		Address:       req.Address,
		Phone:         req.Phone,
		Timings:       req.Timings,
		BookingWindow: req.BookingWindow,
	}
	if err := s.Repo.Create(ctx, c); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, utils.NewConflictError("Clinic %q already exists", name)
		}
		return nil, utils.NewServerError("Failed to create clinic", err)
	}
	return c, nil
}

func (s *DefaultClinicService) GetClinic(ctx context.Context, id string) (*models.Clinic, error) {
	oid, err := utils.ParseObjectID(id, "clinic id")
	if err != nil {
		return nil, err
	}
	c, err := s.Repo.GetByID(ctx, oid)
	if err != nil {
		return nil, utils.NewServerError("Failed to load clinic", err)
	}
	if c == nil {
		return nil, utils.NewNotFoundError("Clinic not found")
	}
	return c, nil
}

func (s *DefaultClinicService) ListClinics(ctx context.Context) ([]models.Clinic, error) {
	clinics, err := s.Repo.GetAll(ctx)
	if err != nil {
		return nil, utils.NewServerError("Failed to list clinics", err)
	}
	return clinics, nil
}

func (s *DefaultClinicService) UpdateBookingWindow(ctx context.Context, id string, req models.UpdateBookingWindowRequest) (*models.Clinic, error) {
	oid, err := utils.ParseObjectID(id, "clinic id")
	if err != nil {
		return nil, err
	}
	window := models.BookingWindow{StartDate: req.StartDate, EndDate: req.EndDate}
	if err := ValidateBookingWindow(window); err != nil {
		return nil, err
	}

	c, err := s.Repo.UpdateBookingWindow(ctx, oid, window)
	if err != nil {
		return nil, utils.NewServerError("Failed to update booking window", err)
	}
	if c == nil {
		return nil, utils.NewNotFoundError("Clinic not found")
	}
	return c, nil
}

// ValidateTimings requires close_time strictly after open_time.
func ValidateTimings(t models.ClinicTimings) error {
	open, err := slots.ParseClock(t.OpenTime)
	if err != nil {
		return err
	}
	closing, err := slots.ParseClock(t.CloseTime)
	if err != nil {
		return err
	}
	if closing <= open {
		return utils.NewValidationError("close_time must be after open_time")
	}
	return nil
}

// ValidateBookingWindow requires start_date <= end_date.
func ValidateBookingWindow(w models.BookingWindow) error {
	start, err := utils.ParseDate(w.StartDate, "start_date")
	if err != nil {
		return err
	}
	end, err := utils.ParseDate(w.EndDate, "end_date")
	if err != nil {
		return err
	}
	if end.Before(start) {
		return utils.NewValidationError("start_date must not be after end_date")
	}
	return nil
}
