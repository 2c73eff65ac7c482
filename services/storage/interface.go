package storage

import (
	"context"

	"clinicbook/models"
)

// StorageService defines the interface for storage operations.
type StorageService interface {
	// UploadFile stores the local file under destFolder.
	UploadFile(ctx context.Context, localFilePath, destFolder string) (*models.StoredFile, error)
	DeleteFile(ctx context.Context, publicID, resourceType string) error
}
