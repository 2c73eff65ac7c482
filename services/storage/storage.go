package storage

import (
	"context"
	"fmt"

	"clinicbook/models"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// CloudinaryStorageService implements StorageService on Cloudinary.
type CloudinaryStorageService struct {
	cld *cloudinary.Cloudinary
}

// NewStorageService creates a new CloudinaryStorageService instance.
func NewStorageService(cld *cloudinary.Cloudinary) StorageService {
	return &CloudinaryStorageService{cld: cld}
}

// UploadFile uploads a file into the specified folder and returns its permanent identifier.
func (s *CloudinaryStorageService) UploadFile(ctx context.Context, localFilePath, destFolder string) (*models.StoredFile, error) {
	uploadParams := uploader.UploadParams{
		Folder:       destFolder,
		ResourceType: "auto",
	}
	result, err := s.cld.Upload.Upload(ctx, localFilePath, uploadParams)
	if err != nil {
		return nil, fmt.Errorf("CloudinaryStorageService: failed to upload file: %w", err)
	}
	if result.Error.Message != "" {
		return nil, fmt.Errorf("CloudinaryStorageService: upload rejected: %s", result.Error.Message)
	}
	if result.PublicID == "" {
		return nil, fmt.Errorf("CloudinaryStorageService: no public ID returned")
	}
	return &models.StoredFile{
		PublicID:     result.PublicID,
		URL:          result.SecureURL,
		ResourceType: result.ResourceType,
	}, nil
}

// DeleteFile deletes a file given its public ID.
func (s *CloudinaryStorageService) DeleteFile(ctx context.Context, publicID, resourceType string) error {
	if resourceType == "" {
		resourceType = "image"
	}
	result, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID:     publicID,
		ResourceType: resourceType,
	})
	if err != nil {
		return fmt.Errorf("CloudinaryStorageService: failed to delete file: %w", err)
	}
	if result.Error.Message != "" {
		return fmt.Errorf("CloudinaryStorageService: delete rejected: %s", result.Error.Message)
	}
	return nil
}
