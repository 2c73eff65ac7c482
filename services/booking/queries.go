package booking

import (
	"context"

	"clinicbook/models"
	"clinicbook/utils"
)

func (s *DefaultBookingService) ListBookings(ctx context.Context) ([]models.Booking, error) {
	out, err := s.Repo.List(ctx)
	if err != nil {
		return nil, utils.NewServerError("Failed to load bookings", err)
	}
	return out, nil
}

func (s *DefaultBookingService) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	oid, err := utils.ParseObjectID(id, "booking id")
	if err != nil {
		return nil, err
	}
	b, err := s.Repo.FindByID(ctx, oid)
	if err != nil {
		return nil, utils.NewServerError("Failed to load booking", err)
	}
	if b == nil {
		return nil, utils.NewNotFoundError("Booking not found")
	}
	return b, nil
}

func (s *DefaultBookingService) ListUserBookings(ctx context.Context, userID string) ([]models.Booking, error) {
	uid, err := utils.ParseObjectID(userID, "user id")
	if err != nil {
		return nil, err
	}
	out, err := s.Repo.ListByUser(ctx, uid)
	if err != nil {
		return nil, utils.NewServerError("Failed to load bookings", err)
	}
	return out, nil
}
