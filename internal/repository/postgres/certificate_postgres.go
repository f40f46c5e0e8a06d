package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"certapi/internal/model"
	"certapi/internal/repository"
)

// CertificatePostgres is a PostgreSQL implementation of repository.CertificateRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type CertificatePostgres struct {
	db *sql.DB
}

// NewCertificatePostgres creates a new CertificatePostgres repository.
func NewCertificatePostgres(db *sql.DB) *CertificatePostgres {
	return &CertificatePostgres{db: db}
}

var _ repository.CertificateRepository = (*CertificatePostgres)(nil)

// Create inserts a certificate row.
func (r *CertificatePostgres) Create(ctx context.Context, rec *model.CertificateRecord) error {
	const q = `
		INSERT INTO certificates (filename_base, email, email_sent, message_id, pdf_url, image_url, warnings, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	warnings := rec.Meta.Warnings
	if warnings == nil {
		warnings = []string{}
	}
	w, err := json.Marshal(warnings)
	if err != nil {
		return fmt.Errorf("encode warnings: %w", err)
	}

	_, err = r.db.ExecContext(ctx, q,
		rec.Meta.FilenameBase,
		rec.Email,
		rec.Meta.EmailSent,
		nullString(rec.Meta.MessageID),
		nullString(rec.Meta.PDFURL),
		nullString(rec.Meta.ImageURL),
		string(w),
		rec.Meta.CreatedAt,
	)
	return err
}

// FindByFilenameBase fetches the metadata of a single certificate.
func (r *CertificatePostgres) FindByFilenameBase(ctx context.Context, filenameBase string) (*model.CertificateMeta, error) {
	const q = `
		SELECT filename_base, email_sent, message_id, pdf_url, image_url, warnings, created_at
		FROM certificates
		WHERE filename_base = $1
	`
	var (
		m                         model.CertificateMeta
		messageID, pdfURL, imgURL sql.NullString
		warnings                  []byte
	)
	err := r.db.QueryRowContext(ctx, q, filenameBase).Scan(
		&m.FilenameBase,
		&m.EmailSent,
		&messageID,
		&pdfURL,
		&imgURL,
		&warnings,
		&m.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	if len(warnings) > 0 {
		if err := json.Unmarshal(warnings, &m.Warnings); err != nil {
			return nil, fmt.Errorf("decode warnings: %w", err)
		}
	}
	if len(m.Warnings) == 0 {
		m.Warnings = nil
	}
	m.MessageID = stringPtr(messageID)
	m.PDFURL = stringPtr(pdfURL)
	m.ImageURL = stringPtr(imgURL)
	m.CreatedAt = m.CreatedAt.UTC()
	return &m, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
