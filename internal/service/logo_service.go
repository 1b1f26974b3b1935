package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"path/filepath"
	"strings"
	"time"

	"github.com/dafibh/ledger/ledger-backend/internal/domain"
	"github.com/dafibh/ledger/ledger-backend/internal/repository/storage"
	"github.com/disintegration/imaging"
	"github.com/rs/zerolog"
)

const (
	MaxLogoSize      = 2 * 1024 * 1024 // 2MB
	MinLogoDimension = 32
	LogoWidth        = 256
	LogoURLExpiry    = 15 * time.Minute
	logoContentType  = "image/png"
)

var (
	ErrLogoTooLarge             = errors.New("file too large, maximum size is 2MB")
	ErrLogoInvalidFormat        = errors.New("invalid format, supported: PNG, JPEG, GIF, BMP")
	ErrLogoTooSmall             = errors.New("image too small, minimum 32x32 pixels")
	ErrLogoInvalidImageData     = errors.New("invalid image data")
	ErrLogoNotFound             = errors.New("logo not found")
	ErrLogoStorageNotConfigured = errors.New("logo storage not configured")
)

// AllowedLogoExtensions lists the accepted upload extensions
var AllowedLogoExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".bmp":  true,
}

// LogoInfo describes a stored bank logo
type LogoInfo struct {
	BankID    int32     `json:"bankId"`
	Path      string    `json:"path"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// LogoService normalizes bank logos and keeps them in object storage
type LogoService struct {
	storage storage.LogoRepository
	banks   domain.Repository[*domain.Bank]
	logger  zerolog.Logger
	now     func() time.Time
}

// NewLogoService creates a LogoService. A nil storage disables uploads.
func NewLogoService(store storage.LogoRepository, banks domain.Repository[*domain.Bank], logger zerolog.Logger) *LogoService {
	return &LogoService{
		storage: store,
		banks:   banks,
		logger:  logger.With().Str("component", "logo_service").Logger(),
		now:     time.Now,
	}
}

// IsEnabled indicates whether logo storage is configured
func (s *LogoService) IsEnabled() bool {
	return s != nil && s.storage != nil
}

// Upload validates the image, resizes it to LogoWidth pixels wide and stores it as PNG.
// A missing bank is reported as a domain rule error.
func (s *LogoService) Upload(ctx context.Context, bankID int32, data []byte, filename string) (*LogoInfo, error) {
	if !s.IsEnabled() {
		return nil, ErrLogoStorageNotConfigured
	}
	if _, err := s.banks.GetByID(ctx, bankID); err != nil {
		return nil, err
	}

	img, err := decodeLogo(data, filename)
	if err != nil {
		return nil, err
	}

	resized := imaging.Resize(img, LogoWidth, 0, imaging.Lanczos)
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, resized, imaging.PNG); err != nil {
		return nil, fmt.Errorf("failed to encode logo: %w", err)
	}

	objectPath := storage.BankLogoPath(bankID)
	if _, err := s.storage.Upload(ctx, objectPath, bytes.NewReader(buf.Bytes()), logoContentType, int64(buf.Len())); err != nil {
		return nil, fmt.Errorf("failed to upload logo for bank %d: %w", bankID, err)
	}

	s.logger.Info().Int32("bank_id", bankID).Int("bytes", buf.Len()).Msg("Bank logo uploaded")
	return s.info(ctx, bankID, objectPath)
}

// Get returns a presigned URL for the bank's logo
func (s *LogoService) Get(ctx context.Context, bankID int32) (*LogoInfo, error) {
	if !s.IsEnabled() {
		return nil, ErrLogoStorageNotConfigured
	}

	objectPath := storage.BankLogoPath(bankID)
	exists, err := s.storage.Exists(ctx, objectPath)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrLogoNotFound
	}
	return s.info(ctx, bankID, objectPath)
}

// Delete removes the bank's logo
func (s *LogoService) Delete(ctx context.Context, bankID int32) error {
	if !s.IsEnabled() {
		return ErrLogoStorageNotConfigured
	}

	objectPath := storage.BankLogoPath(bankID)
	exists, err := s.storage.Exists(ctx, objectPath)
	if err != nil {
		return err
	}
	if !exists {
		return ErrLogoNotFound
	}
	return s.storage.Delete(ctx, objectPath)
}

// RemoveForBank drops the logo of a deleted bank. Errors are logged, not returned.
func (s *LogoService) RemoveForBank(ctx context.Context, bankID int32) {
	if !s.IsEnabled() {
		return
	}
	if err := s.Delete(ctx, bankID); err != nil && !errors.Is(err, ErrLogoNotFound) {
		s.logger.Warn().Err(err).Int32("bank_id", bankID).Msg("Failed to remove logo of deleted bank")
	}
}

func (s *LogoService) info(ctx context.Context, bankID int32, objectPath string) (*LogoInfo, error) {
	url, err := s.storage.GeneratePresignedURL(ctx, objectPath, LogoURLExpiry)
	if err != nil {
		return nil, err
	}
	return &LogoInfo{
		BankID:    bankID,
		Path:      objectPath,
		URL:       url,
		ExpiresAt: s.now().Add(LogoURLExpiry).UTC(),
	}, nil
}

// decodeLogo checks size, extension and dimensions and returns the decoded image
func decodeLogo(data []byte, filename string) (image.Image, error) {
	if len(data) > MaxLogoSize {
		return nil, ErrLogoTooLarge
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if !AllowedLogoExtensions[ext] {
		return nil, ErrLogoInvalidFormat
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, ErrLogoInvalidImageData
	}

	bounds := img.Bounds()
	if bounds.Dx() < MinLogoDimension || bounds.Dy() < MinLogoDimension {
		return nil, ErrLogoTooSmall
	}

	return img, nil
}

// IsLogoValidationError reports whether err describes a rejected upload
func IsLogoValidationError(err error) bool {
	return errors.Is(err, ErrLogoTooLarge) ||
		errors.Is(err, ErrLogoInvalidFormat) ||
		errors.Is(err, ErrLogoTooSmall) ||
		errors.Is(err, ErrLogoInvalidImageData)
}
