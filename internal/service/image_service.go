package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/philiptitus/bridger/internal/repository/storage"
)

const (
	MaxImageSize   = 5 * 1024 * 1024 // 5MB
	MinImageWidth  = 50
	MinImageHeight = 50
	ThumbnailWidth = 200
	DisplayWidth   = 800
	JPEGQuality    = 85

	// PresignedURLExpiry bounds how long avatar links stay valid
	PresignedURLExpiry = 15 * time.Minute
)

var (
	ErrImageTooLarge             = errors.New("file too large. Maximum size is 5MB")
	ErrInvalidFormat             = errors.New("invalid format. Supported: JPEG, PNG, WebP")
	ErrImageTooSmall             = errors.New("image too small. Minimum 50x50 pixels")
	ErrInvalidImageData          = errors.New("invalid image data")
	ErrImageStorageNotConfigured = errors.New("image storage not configured")
)

// AllowedExtensions maps extensions to content types
var AllowedExtensions = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
}

var avatarVariants = []struct {
	name     string
	maxWidth int
}{
	{"thumb", ThumbnailWidth},
	{"display", DisplayWidth},
}

// AvatarURLs carries presigned links to the stored avatar variants
type AvatarURLs struct {
	ThumbnailURL string `json:"thumbnailUrl"`
	DisplayURL   string `json:"displayUrl"`
}

// ImageService handles avatar processing and storage
type ImageService struct {
	storage storage.ImageRepository
}

// NewImageService creates a new ImageService
func NewImageService(storage storage.ImageRepository) *ImageService {
	return &ImageService{storage: storage}
}

// IsEnabled indicates whether uploads/deletes are supported (storage configured).
func (s *ImageService) IsEnabled() bool {
	return s != nil && s.storage != nil
}

// validateAndDecode validates the image and returns the decoded image
func (s *ImageService) validateAndDecode(data []byte, filename string) (image.Image, error) {
	if len(data) > MaxImageSize {
		return nil, ErrImageTooLarge
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if _, ok := AllowedExtensions[ext]; !ok {
		return nil, ErrInvalidFormat
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, ErrInvalidImageData
	}

	bounds := img.Bounds()
	if bounds.Dx() < MinImageWidth || bounds.Dy() < MinImageHeight {
		return nil, ErrImageTooSmall
	}

	return img, nil
}

// UploadAvatar validates, resizes and stores the avatar variants for a
// user. It returns the base object path to persist on the user row.
func (s *ImageService) UploadAvatar(ctx context.Context, userID uuid.UUID, data []byte, filename string) (string, error) {
	if !s.IsEnabled() {
		return "", ErrImageStorageNotConfigured
	}

	img, err := s.validateAndDecode(data, filename)
	if err != nil {
		return "", err
	}

	basePath := fmt.Sprintf("avatars/%s/%s", userID, uuid.New())

	var uploaded []string
	for _, variant := range avatarVariants {
		processed := img
		if img.Bounds().Dx() > variant.maxWidth {
			processed = imaging.Resize(img, variant.maxWidth, 0, imaging.Lanczos)
		}

		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, processed, &jpeg.Options{Quality: JPEGQuality}); err != nil {
			return "", fmt.Errorf("failed to encode image: %w", err)
		}

		objectPath := fmt.Sprintf("%s_%s.jpg", basePath, variant.name)
		if _, err := s.storage.Upload(ctx, objectPath, bytes.NewReader(buf.Bytes()), "image/jpeg", int64(buf.Len())); err != nil {
			s.cleanupVariants(ctx, uploaded)
			return "", fmt.Errorf("failed to upload %s variant: %w", variant.name, err)
		}
		uploaded = append(uploaded, objectPath)
	}

	return basePath, nil
}

func (s *ImageService) cleanupVariants(ctx context.Context, paths []string) {
	for _, path := range paths {
		_ = s.storage.Delete(ctx, path)
	}
}

// DeleteAvatar removes all variants stored under a base path. Best effort;
// a missing variant is not an error.
func (s *ImageService) DeleteAvatar(ctx context.Context, basePath string) error {
	if basePath == "" {
		return nil
	}
	if !s.IsEnabled() {
		return ErrImageStorageNotConfigured
	}
	for _, variant := range avatarVariants {
		_ = s.storage.Delete(ctx, fmt.Sprintf("%s_%s.jpg", basePath, variant.name))
	}
	return nil
}

// AvatarURLs generates presigned links for the stored variants. Returns
// nil when storage is not configured or no avatar is stored.
func (s *ImageService) AvatarURLs(ctx context.Context, basePath string) (*AvatarURLs, error) {
	if basePath == "" || !s.IsEnabled() {
		return nil, nil
	}

	thumb, err := s.storage.GeneratePresignedURL(ctx, basePath+"_thumb.jpg", PresignedURLExpiry)
	if err != nil {
		return nil, fmt.Errorf("failed to presign thumbnail: %w", err)
	}
	display, err := s.storage.GeneratePresignedURL(ctx, basePath+"_display.jpg", PresignedURLExpiry)
	if err != nil {
		return nil, fmt.Errorf("failed to presign display image: %w", err)
	}

	return &AvatarURLs{ThumbnailURL: thumb, DisplayURL: display}, nil
}
