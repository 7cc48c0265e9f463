// Package media stores uploaded files in an object store and hands back
// the Media reference persisted on content entities.
package media

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"letsconnect/internal/config"
	"letsconnect/internal/models"

	"go.uber.org/zap"
	"golang.org/x/exp/slices"
)

// DefaultFileID marks a placeholder media reference that was never uploaded.
const DefaultFileID = "default"

// Store is the blob store used by content services.
type Store interface {
	// Upload stores data and returns its reference.
	Upload(ctx context.Context, data []byte, originalName string) (*models.Media, error)

	// Delete removes a stored file. It reports whether the store confirmed
	// the removal; DefaultFileID is always a successful no-op.
	Delete(ctx context.Context, id, name string) bool
}

// Validation errors
var (
	ErrEmptyFile          = fmt.Errorf("file is empty")
	ErrFileTooLarge       = fmt.Errorf("file size exceeds limit")
	ErrInvalidContentType = fmt.Errorf("invalid content type")
	ErrUploadFailed       = fmt.Errorf("failed to upload file")
)

// Validator checks a file before upload.
type Validator struct {
	MaxFileSize  int64
	AllowedTypes []string
}

// NewValidator builds a validator from configuration.
func NewValidator(cfg *config.CloudinaryConfig) *Validator {
	return &Validator{MaxFileSize: cfg.MaxFileSize, AllowedTypes: cfg.AllowedTypes}
}

// Validate returns the detected content type of data or a validation error.
func (v *Validator) Validate(data []byte, name string) (string, error) {
	if len(data) == 0 {
		return "", ErrEmptyFile
	}
	if v.MaxFileSize > 0 && int64(len(data)) > v.MaxFileSize {
		return "", fmt.Errorf("%w: %d bytes exceeds %d bytes", ErrFileTooLarge, len(data), v.MaxFileSize)
	}

	contentType := DetectContentType(data, name)
	if len(v.AllowedTypes) > 0 && !slices.Contains(v.AllowedTypes, contentType) {
		return "", fmt.Errorf("%w: %s", ErrInvalidContentType, contentType)
	}
	return contentType, nil
}

// videoExtensions covers containers DetectContentType cannot sniff.
var videoExtensions = map[string]string{
	".mov":  "video/quicktime",
	".mp4":  "video/mp4",
	".webm": "video/webm",
}

// DetectContentType sniffs data, falling back to the file extension for video.
func DetectContentType(data []byte, name string) string {
	contentType := http.DetectContentType(data)
	if i := strings.Index(contentType, ";"); i >= 0 {
		contentType = contentType[:i]
	}
	if contentType == "application/octet-stream" {
		if ct, ok := videoExtensions[strings.ToLower(filepath.Ext(name))]; ok {
			return ct
		}
	}
	return contentType
}

// Category returns image, video or document for a content type.
func Category(contentType string) string {
	switch {
	case strings.HasPrefix(contentType, "image/"):
		return "image"
	case strings.HasPrefix(contentType, "video/"):
		return "video"
	default:
		return "document"
	}
}

// NewStore returns a Cloudinary store when credentials are configured and an
// in-process store otherwise.
func NewStore(cfg *config.CloudinaryConfig, logger *zap.Logger) (Store, error) {
	if cfg.CloudName == "" || cfg.APIKey == "" || cfg.APISecret == "" {
		logger.Warn("Cloudinary credentials missing, using in-memory media store")
		return NewMemoryStore(), nil
	}
	return NewCloudinaryStore(cfg, logger)
}
