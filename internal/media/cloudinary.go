package media

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"letsconnect/internal/config"
	"letsconnect/internal/models"

	"github.com/cenkalti/backoff/v4"
	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"go.uber.org/zap"
)

const (
	uploadTimeout = 60 * time.Second
	deleteTimeout = 10 * time.Second
)

// CloudinaryStore wraps the Cloudinary client
type CloudinaryStore struct {
	client     *cloudinary.Cloudinary
	folder     string
	maxRetries uint64
	logger     *zap.Logger
}

// NewCloudinaryStore creates a Cloudinary-backed store
func NewCloudinaryStore(cfg *config.CloudinaryConfig, logger *zap.Logger) (*CloudinaryStore, error) {
	cld, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cloudinary: %w", err)
	}

	logger.Info("Cloudinary media store initialized", zap.String("folder", cfg.Folder))
	return &CloudinaryStore{
		client:     cld,
		folder:     cfg.Folder,
		maxRetries: cfg.MaxRetries,
		logger:     logger,
	}, nil
}

func ptrBool(b bool) *bool {
	return &b
}

// Upload sends data to Cloudinary, retrying with exponential backoff
func (c *CloudinaryStore) Upload(ctx context.Context, data []byte, originalName string) (*models.Media, error) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, uploadTimeout)
	defer cancel()

	params := uploader.UploadParams{
		Folder:         c.folder,
		UseFilename:    ptrBool(true),
		UniqueFilename: ptrBool(true),
		ResourceType:   "auto",
	}

	var result *uploader.UploadResult
	operation := func() error {
		res, err := c.client.Upload.Upload(ctx, bytes.NewReader(data), params)
		if err != nil {
			return err
		}
		if res.Error.Message != "" {
			return fmt.Errorf("cloudinary: %s", res.Error.Message)
		}
		result = res
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = uploadTimeout / 2
	err := backoff.RetryNotify(
		operation,
		backoff.WithContext(backoff.WithMaxRetries(b, c.maxRetries), ctx),
		func(err error, d time.Duration) {
			c.logger.Warn("Upload attempt failed",
				zap.String("filename", originalName),
				zap.Error(err),
				zap.Duration("backoff", d))
		},
	)
	if err != nil {
		c.logger.Error("All upload attempts failed",
			zap.String("filename", originalName),
			zap.Uint64("max_retries", c.maxRetries),
			zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}

	c.logger.Info("File uploaded successfully",
		zap.String("filename", originalName),
		zap.Int("size", len(data)),
		zap.Duration("duration", time.Since(start)),
		zap.String("public_id", result.PublicID))

	return &models.Media{
		FileID:   result.PublicID,
		FileName: originalName,
		URL:      result.SecureURL,
	}, nil
}

// Delete destroys a file by public id. Failures are logged and reported as false.
func (c *CloudinaryStore) Delete(ctx context.Context, id, name string) bool {
	if id == "" || id == DefaultFileID {
		return true
	}

	ctx, cancel := context.WithTimeout(ctx, deleteTimeout)
	defer cancel()

	res, err := c.client.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID:     id,
		ResourceType: resourceType(name),
	})
	if err != nil {
		c.logger.Warn("Failed to delete file", zap.String("public_id", id), zap.Error(err))
		return false
	}
	if res.Result != "ok" {
		c.logger.Warn("Cloudinary refused delete",
			zap.String("public_id", id),
			zap.String("result", res.Result))
		return false
	}
	return true
}

func resourceType(name string) string {
	if _, ok := videoExtensions[strings.ToLower(filepath.Ext(name))]; ok {
		return "video"
	}
	return "image"
}
