// Package model holds the request, artifact and metadata types of the certificate pipeline.
package model

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

const (
	// DefaultCertificateTitle is used when a request omits certificateTitle.
	DefaultCertificateTitle = "Certificate of Achievement"
	// DefaultDateLayout formats the default certificate date (e.g. 10/19/2026).
	DefaultDateLayout = "1/2/2006"

	// MaxSanitizedNameBytes keeps filenameBase plus timestamp and extension under
	// the 255-byte file name limit of common filesystems.
	MaxSanitizedNameBytes = 200
)

// CertificateRequest is the validated input of the certificate pipeline.
// It is treated as immutable once handed to the pipeline.
type CertificateRequest struct {
	Name             string `json:"name" validate:"required,min=2,max=100"`
	Email            string `json:"email" validate:"required,email"`
	GSTNumber        string `json:"gstNumber,omitempty" validate:"omitempty,max=32"`
	BusinessName     string `json:"businessName" validate:"required,min=1,max=200"`
	BusinessAddress  string `json:"businessAddress" validate:"required,min=1,max=400"`
	CertificateTitle string `json:"certificateTitle,omitempty"`
	Date             string `json:"date,omitempty"`
	UploadToSupabase bool   `json:"uploadToSupabase"`
}

// ApplyDefaults returns a copy of r with the optional fields filled in.
func (r CertificateRequest) ApplyDefaults(now time.Time) CertificateRequest {
	if r.CertificateTitle == "" {
		r.CertificateTitle = DefaultCertificateTitle
	}
	if r.Date == "" {
		r.Date = now.Format(DefaultDateLayout)
	}
	return r
}

// RenderContext is the view of a request consumed by the template renderer.
type RenderContext struct {
	Name             string
	GSTNumber        string
	BusinessName     string
	BusinessAddress  string
	CertificateTitle string
	Date             string
	IssuerName       string
	BaseURL          string
}

// NewRenderContext derives the template view from a defaulted request.
func NewRenderContext(r CertificateRequest, issuerName, baseURL string) RenderContext {
	return RenderContext{
		Name:             r.Name,
		GSTNumber:        r.GSTNumber,
		BusinessName:     r.BusinessName,
		BusinessAddress:  r.BusinessAddress,
		CertificateTitle: r.CertificateTitle,
		Date:             r.Date,
		IssuerName:       issuerName,
		BaseURL:          baseURL,
	}
}

// ConversionResult holds the rendered artifacts of a single request.
type ConversionResult struct {
	PDF   []byte
	Image []byte
}

// StagedFile is an artifact written to its own temporary directory.
type StagedFile struct {
	Path string
	Dir  string
}

// PublishResult holds the public URLs of uploaded artifacts.
// A nil URL means publishing was skipped or that upload failed.
type PublishResult struct {
	PDFURL   *string
	ImageURL *string
	Warnings []string
}

// CertificateMeta is the response payload of a generated certificate.
type CertificateMeta struct {
	EmailSent    bool      `json:"emailSent"`
	MessageID    *string   `json:"messageId"`
	PDFURL       *string   `json:"pdfUrl"`
	ImageURL     *string   `json:"imageUrl"`
	FilenameBase string    `json:"filenameBase"`
	CreatedAt    time.Time `json:"createdAt"`
	Warnings     []string  `json:"warnings,omitempty"`
}

// FilenameBase derives the identifier that namespaces staged files, storage
// keys and attachment names for one request.
func FilenameBase(name string, now time.Time) string {
	return SanitizeName(name) + "_" + strconv.FormatInt(now.UnixMilli(), 10)
}

// SanitizeName replaces whitespace runs with "_" and drops characters that are
// unsafe in file names and object keys. When characters are dropped or the
// result exceeds MaxSanitizedNameBytes, it is cut on a rune boundary and
// suffixed with "-" and a short hash of the raw name, so names differing only
// in unsafe characters stay distinct.
func SanitizeName(name string) string {
	var b strings.Builder
	b.Grow(len(name))

	lossy := false
	inSpace := false
	for _, r := range name {
		if unicode.IsSpace(r) {
			if !inSpace {
				b.WriteByte('_')
				inSpace = true
			}
			continue
		}
		inSpace = false
		if unicode.IsControl(r) || strings.ContainsRune(`/\:*?"<>|`, r) {
			lossy = true
			continue
		}
		b.WriteRune(r)
	}

	out := b.String()
	if !lossy && len(out) <= MaxSanitizedNameBytes {
		return out
	}
	sum := sha256.Sum256([]byte(name))
	suffix := "-" + hex.EncodeToString(sum[:4])
	return truncateUTF8(out, MaxSanitizedNameBytes-len(suffix)) + suffix
}

func truncateUTF8(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// CertificateRecord is the persisted form of a generated certificate.
type CertificateRecord struct {
	Email string
	Meta  CertificateMeta
}
