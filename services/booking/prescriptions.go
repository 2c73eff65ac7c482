package booking

import (
	"context"
	"strings"

	"clinicbook/models"
	"clinicbook/utils"

	"go.uber.org/zap"
)

// AddOrUpdatePrescription uploads the file first and then stores the reference.
// A failed update destroys the new upload; a successful one destroys the file
// it replaced.
func (s *DefaultBookingService) AddOrUpdatePrescription(ctx context.Context, req models.PrescriptionUpload) (*models.Prescription, error) {
	if _, err := utils.ParseObjectID(req.BookingID, "booking id"); err != nil {
		return nil, err
	}
	if req.SessionNumber < 1 {
		return nil, utils.NewValidationError("sessionNumber is required")
	}
	if strings.TrimSpace(req.PrescriptionType) == "" {
		return nil, utils.NewValidationError("prescriptionType is required")
	}
	if req.LocalFilePath == "" {
		return nil, utils.NewValidationError("prescription file is required")
	}

	if s.Storage == nil {
		return nil, utils.NewServerError("Prescription storage is not configured", nil)
	}
	file, err := s.Storage.UploadFile(ctx, req.LocalFilePath, s.PrescriptionFolder)
	if err != nil {
		return nil, utils.NewServerError("Failed to upload prescription", err)
	}

	var (
		stored   models.Prescription
		replaced *models.Prescription
	)
	_, err = s.mutate(ctx, "prescription", req.BookingID, func(b *models.Booking) error {
		p, old, err := UpsertPrescription(b, req.SessionNumber, models.Prescription{
			PrescriptionType: req.PrescriptionType,
			FileURL:          file.URL,
			PublicID:         file.PublicID,
			ResourceType:     file.ResourceType,
			UploadedAt:       s.now(),
		})
		if err != nil {
			return err
		}
		stored, replaced = *p, old
		return nil
	})
	if err != nil {
		s.deleteStoredFile(ctx, file.PublicID, file.ResourceType)
		return nil, err
	}

	if replaced != nil && replaced.PublicID != "" && replaced.PublicID != file.PublicID {
		s.deleteStoredFile(ctx, replaced.PublicID, replaced.ResourceType)
	}
	return &stored, nil
}

// deleteStoredFile is best effort; a leftover file is logged, not surfaced.
func (s *DefaultBookingService) deleteStoredFile(ctx context.Context, publicID, resourceType string) {
	if publicID == "" || s.Storage == nil {
		return
	}
	if err := s.Storage.DeleteFile(ctx, publicID, resourceType); err != nil {
		utils.GetLogger().Warn("Failed to delete prescription file",
			zap.String("publicId", publicID), zap.Error(err))
	}
}
