// Package storage uploads user files to Cloudinary and hands back permanent
// URLs. Nothing else in the system ever reads file contents.
package storage

import (
	"context"
	"fmt"
	"io"

	"trustwork/config"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// Service stores and removes uploaded files.
type Service interface {
	// UploadFile stores the stream and returns its public URL and public ID.
	UploadFile(ctx context.Context, r io.Reader, fileName string) (url, publicID string, err error)
	// DeleteFile removes a stored file by its public ID.
	DeleteFile(ctx context.Context, publicID string) error
}

// CloudinaryStorage is the production Service backed by Cloudinary.
type CloudinaryStorage struct {
	cld    *cloudinary.Cloudinary
	folder string
}

// NewCloudinaryStorage builds the storage service from the configured
// CLOUDINARY_URL credential string.
func NewCloudinaryStorage() (*CloudinaryStorage, error) {
	if config.AppConfig.CloudinaryURL == "" {
		return nil, fmt.Errorf("CLOUDINARY_URL is not configured")
	}
	cld, err := cloudinary.NewFromURL(config.AppConfig.CloudinaryURL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Cloudinary: %w", err)
	}
	return &CloudinaryStorage{cld: cld, folder: config.AppConfig.CloudinaryFolder}, nil
}

var _ Service = (*CloudinaryStorage)(nil)

func (s *CloudinaryStorage) UploadFile(ctx context.Context, r io.Reader, fileName string) (string, string, error) {
	result, err := s.cld.Upload.Upload(ctx, r, uploader.UploadParams{
		Folder:           s.folder,
		FilenameOverride: fileName,
	})
	if err != nil {
		return "", "", fmt.Errorf("failed to upload file: %w", err)
	}
	if result.PublicID == "" {
		return "", "", fmt.Errorf("upload returned no public ID")
	}
	return result.SecureURL, result.PublicID, nil
}

func (s *CloudinaryStorage) DeleteFile(ctx context.Context, publicID string) error {
	_, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
	if err != nil {
		return fmt.Errorf("failed to delete file %s: %w", publicID, err)
	}
	return nil
}
