// Package convert turns rendered certificate HTML into a PDF and a JPEG
// snapshot using a headless Chromium driven by go-rod.
package convert

import (
	"context"
	"errors"
	"fmt"

	"certapi/internal/apperror"
	"certapi/internal/config"
	"certapi/internal/logging"
	"certapi/internal/model"
)

// Sentinel errors for conversion failures. They are wrapped in an
// apperror.KindConversion error and stay matchable with errors.Is.
var (
	ErrEmptyHTML      = errors.New("html content cannot be empty")
	ErrBrowserLaunch  = errors.New("failed to launch browser")
	ErrBrowserConnect = errors.New("failed to connect to browser")
	ErrPageCreate     = errors.New("failed to create browser page")
	ErrPageLoad       = errors.New("failed to load page")
	ErrPDFGeneration  = errors.New("PDF generation failed")
	ErrScreenshot     = errors.New("screenshot capture failed")
)

// Converter renders HTML into the two certificate artifacts.
type Converter interface {
	Convert(ctx context.Context, html string) (*model.ConversionResult, error)
}

// session is one browser process bound to a single conversion.
type session interface {
	render(ctx context.Context, html string) (*model.ConversionResult, error)
	close() error
}

type launchFunc func(ctx context.Context, cfg config.BrowserConfig) (session, error)

// RodConverter launches a fresh browser for every Convert call and always
// terminates it before returning.
type RodConverter struct {
	cfg    config.BrowserConfig
	launch launchFunc
	log    logging.Logger
}

var _ Converter = (*RodConverter)(nil)

// NewRodConverter creates a converter backed by a locally launched Chromium.
// Rod downloads a browser on first use when ROD_BROWSER_BIN is not set.
func NewRodConverter(cfg config.BrowserConfig, log logging.Logger) *RodConverter {
	if log == nil {
		log = logging.Nop()
	}
	return &RodConverter{cfg: cfg, launch: launchRod, log: log}
}

// Convert loads html into a fixed 2480x1754 page and returns an A4 landscape
// PDF plus a full-page JPEG.
func (c *RodConverter) Convert(ctx context.Context, html string) (*model.ConversionResult, error) {
	if html == "" {
		return nil, apperror.Wrap(apperror.KindConversion, "convert certificate", ErrEmptyHTML)
	}

	if c.cfg.ConvertTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.ConvertTimeout)
		defer cancel()
	}

	s, err := c.launch(ctx, c.cfg)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindConversion, "start browser", err)
	}
	defer func() {
		if cerr := s.close(); cerr != nil {
			c.log.Warn(ctx, "browser_close_failed", "error", cerr.Error())
		}
	}()

	res, err := s.render(ctx, html)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && !errors.Is(err, ctxErr) {
			err = fmt.Errorf("%w (%v)", err, ctxErr)
		}
		return nil, apperror.Wrap(apperror.KindConversion, "render certificate", err)
	}
	return res, nil
}
