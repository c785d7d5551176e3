package storage

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"go.uber.org/zap"
)

// StorageServiceImpl uploads to Cloudinary.
type StorageServiceImpl struct {
	cld    *cloudinary.Cloudinary
	logger *zap.Logger
}

// NewStorageService creates a Cloudinary backed StorageService.
func NewStorageService(cloudName, apiKey, apiSecret string, logger *zap.Logger) (*StorageServiceImpl, error) {
	if cloudName == "" || apiKey == "" || apiSecret == "" {
		return nil, fmt.Errorf("cloudinary credentials not set in configuration")
	}
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Cloudinary: %w", err)
	}
	logger.Debug("initialized cloudinary storage", zap.String("cloudName", cloudName))
	return &StorageServiceImpl{cld: cld, logger: logger}, nil
}

func (s *StorageServiceImpl) UploadFile(ctx context.Context, localFilePath, destFolder string) (string, error) {
	name := strings.TrimSuffix(filepath.Base(localFilePath), filepath.Ext(localFilePath))
	return s.upload(ctx, localFilePath, name, destFolder)
}

func (s *StorageServiceImpl) UploadReader(ctx context.Context, r io.Reader, name, destFolder string) (string, error) {
	return s.upload(ctx, r, name, destFolder)
}

func (s *StorageServiceImpl) upload(ctx context.Context, file interface{}, name, destFolder string) (string, error) {
	params := uploader.UploadParams{
		Folder:   destFolder,
		PublicID: name,
	}
	result, err := s.cld.Upload.Upload(ctx, file, params)
	if err != nil {
		return "", fmt.Errorf("StorageServiceImpl: failed to upload file: %w", err)
	}
	if result.Error.Message != "" {
		return "", fmt.Errorf("StorageServiceImpl: upload rejected: %s", result.Error.Message)
	}
	if result.SecureURL == "" {
		return "", fmt.Errorf("StorageServiceImpl: no URL returned")
	}
	return result.SecureURL, nil
}

// DeleteFile deletes a file from Cloudinary given its public ID.
func (s *StorageServiceImpl) DeleteFile(ctx context.Context, publicID string) error {
	if _, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID}); err != nil {
		return fmt.Errorf("StorageServiceImpl: failed to delete file: %w", err)
	}
	return nil
}
