// file: internal/services/file_service.go
package services

import (
	"context"
	"errors"
	"fmt"

	"letsconnect/internal/media"
	"letsconnect/internal/models"

	"go.uber.org/zap"
)

// fileService validates uploads and moves them in and out of the blob store
type fileService struct {
	store     media.Store
	validator *media.Validator
	logger    *zap.Logger
}

// newFileService creates the media helper shared by the content services
func newFileService(store media.Store, validator *media.Validator, logger *zap.Logger) *fileService {
	if validator == nil {
		validator = &media.Validator{}
	}
	return &fileService{store: store, validator: validator, logger: logger}
}

// upload validates up and stores it. When want is not empty the detected
// media category (image, video, document) must match it.
func (f *fileService) upload(ctx context.Context, up *Upload, want string) (*models.Media, error) {
	if up == nil {
		return nil, NewValidationError("Please Upload a File", nil)
	}

	contentType, err := f.validator.Validate(up.Data, up.Name)
	if err != nil {
		switch {
		case errors.Is(err, media.ErrEmptyFile):
			return nil, NewValidationError("Uploaded File Is Empty", err)
		case errors.Is(err, media.ErrFileTooLarge):
			return nil, NewValidationError("Uploaded File Is Too Large", err)
		default:
			return nil, NewValidationError(fmt.Sprintf("Unsupported File Type %s", media.DetectContentType(up.Data, up.Name)), err)
		}
	}
	if want != "" && media.Category(contentType) != want {
		return nil, NewValidationError(fmt.Sprintf("Please Upload a Valid %s File", want), nil)
	}

	m, err := f.store.Upload(ctx, up.Data, up.Name)
	if err != nil {
		f.logger.Error("Failed to upload file",
			zap.String("file_name", up.Name),
			zap.Int("size", len(up.Data)),
			zap.Error(err),
		)
		internal := NewInternalError("Failed to upload file")
		internal.Cause = err
		return nil, internal
	}
	return m, nil
}

// remove deletes a stored file. Failures are logged and otherwise ignored.
func (f *fileService) remove(ctx context.Context, m *models.Media) {
	if m == nil || m.FileID == "" {
		return
	}
	if !f.store.Delete(ctx, m.FileID, m.FileName) {
		f.logger.Warn("Failed to delete file from blob store",
			zap.String("file_id", m.FileID),
			zap.String("file_name", m.FileName),
		)
	}
}

// mediaCategory is the blob category a post media type must upload as.
func mediaCategory(mediaType string) string {
	switch mediaType {
	case "image":
		return "image"
	case "video":
		return "video"
	case "docs":
		return "document"
	}
	return ""
}
