package storage

import (
	"context"
	"fmt"
	"io"
	"time"
)

// LogoRepository defines the object storage operations used for bank logos
type LogoRepository interface {
	Upload(ctx context.Context, objectPath string, data io.Reader, contentType string, size int64) (string, error)
	Delete(ctx context.Context, objectPath string) error
	Exists(ctx context.Context, objectPath string) (bool, error)
	GeneratePresignedURL(ctx context.Context, objectPath string, expiry time.Duration) (string, error)
}

// BankLogoPath is the object key of a bank's logo
func BankLogoPath(bankID int32) string {
	return fmt.Sprintf("banks/%d/logo.png", bankID)
}
