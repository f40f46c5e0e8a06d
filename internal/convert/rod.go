package convert

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"certapi/internal/config"
	"certapi/internal/model"
)

// Page and output settings. The viewport is a print-resolution proxy for A4 landscape.
const (
	viewportWidth  = 2480
	viewportHeight = 1754

	a4WidthInches  = 8.27
	a4HeightInches = 11.69

	jpegQuality = 90

	// networkIdleWindow is how long the page must have no in-flight requests.
	networkIdleWindow = 500 * time.Millisecond
	defaultPageLoad   = 30 * time.Second
)

// rodSession owns one launched Chromium process.
type rodSession struct {
	launcher *launcher.Launcher
	browser  *rod.Browser
	pageLoad time.Duration

	closeOnce sync.Once
	closeErr  error
}

// launchRod starts Chromium and connects to it. On failure nothing is left running.
func launchRod(ctx context.Context, cfg config.BrowserConfig) (session, error) {
	l := launcher.New().Context(ctx).Headless(cfg.Headless)

	// Use pre-installed browser if specified (Docker/containerized environments)
	if cfg.Bin != "" {
		l = l.Bin(cfg.Bin)
	}
	if cfg.NoSandbox {
		l = l.NoSandbox(true).Set("disable-setuid-sandbox")
	}

	u, err := l.Launch()
	if err != nil {
		l.Kill()
		l.Cleanup()
		return nil, fmt.Errorf("%w: %v", ErrBrowserLaunch, err)
	}

	b := rod.New().ControlURL(u)
	if err := b.Connect(); err != nil {
		l.Kill()
		l.Cleanup()
		return nil, fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	pageLoad := cfg.PageLoadTimeout
	if pageLoad <= 0 {
		pageLoad = defaultPageLoad
	}
	return &rodSession{launcher: l, browser: b, pageLoad: pageLoad}, nil
}

func (s *rodSession) render(ctx context.Context, html string) (*model.ConversionResult, error) {
	page, err := s.browser.Context(ctx).Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageCreate, err)
	}

	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             viewportWidth,
		Height:            viewportHeight,
		DeviceScaleFactor: 1,
	}); err != nil {
		return nil, fmt.Errorf("%w: set viewport: %v", ErrPageCreate, err)
	}

	if err := s.load(page, html); err != nil {
		return nil, err
	}

	reader, err := page.PDF(&proto.PagePrintToPDF{
		Landscape:       true,
		PrintBackground: true,
		PaperWidth:      floatPtr(a4WidthInches),
		PaperHeight:     floatPtr(a4HeightInches),
		MarginTop:       floatPtr(0),
		MarginBottom:    floatPtr(0),
		MarginLeft:      floatPtr(0),
		MarginRight:     floatPtr(0),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPDFGeneration, err)
	}
	pdf, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: reading PDF stream: %v", ErrPDFGeneration, err)
	}

	img, err := page.Screenshot(true, &proto.PageCaptureScreenshot{
		Format:  proto.PageCaptureScreenshotFormatJpeg,
		Quality: intPtr(jpegQuality),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrScreenshot, err)
	}

	return &model.ConversionResult{PDF: pdf, Image: img}, nil
}

// load sets the document and waits for the load event and network idle,
// bounded by the page-load timeout.
func (s *rodSession) load(page *rod.Page, html string) error {
	p := page.Timeout(s.pageLoad)
	defer p.CancelTimeout()

	waitIdle := p.WaitRequestIdle(networkIdleWindow, nil, nil, nil)
	if err := p.SetDocumentContent(html); err != nil {
		return fmt.Errorf("%w: %v", ErrPageLoad, err)
	}
	if err := p.WaitLoad(); err != nil {
		return fmt.Errorf("%w: %v", ErrPageLoad, err)
	}
	waitIdle()

	if err := p.GetContext().Err(); err != nil {
		return fmt.Errorf("%w: waiting for network idle: %v", ErrPageLoad, err)
	}
	return nil
}

// close terminates the browser process and removes its profile directory.
// Safe to call more than once; only the first call does work.
func (s *rodSession) close() error {
	s.closeOnce.Do(func() {
		var errs []error
		if err := s.browser.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close browser: %w", err))
		}
		s.launcher.Kill()
		s.launcher.Cleanup()
		s.closeErr = errors.Join(errs...)
	})
	return s.closeErr
}

// pid returns the launched browser process id.
func (s *rodSession) pid() int {
	return s.launcher.PID()
}

func floatPtr(v float64) *float64 {
	return &v
}

func intPtr(v int) *int {
	return &v
}
