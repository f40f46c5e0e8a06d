// Package repository contains data access layer abstractions.
// Implementations live in subpackages (e.g. postgres).
package repository

import (
	"context"
	"errors"

	"certapi/internal/model"
)

// ErrNotFound is returned when no certificate matches the lookup key.
var ErrNotFound = errors.New("certificate not found")

// CertificateRepository stores certificate metadata keyed by filename base.
// No business logic here, strictly persistence operations.
type CertificateRepository interface {
	// Create inserts a new certificate record.
	Create(ctx context.Context, rec *model.CertificateRecord) error

	// FindByFilenameBase returns the metadata of one certificate or ErrNotFound.
	FindByFilenameBase(ctx context.Context, filenameBase string) (*model.CertificateMeta, error)
}
