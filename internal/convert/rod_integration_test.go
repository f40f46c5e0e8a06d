//go:build integration

package convert

import (
	"bytes"
	"context"
	"errors"
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"certapi/internal/config"
)

func integrationConfig() config.BrowserConfig {
	return config.BrowserConfig{
		Headless:        true,
		Bin:             os.Getenv("ROD_BROWSER_BIN"),
		NoSandbox:       true,
		PageLoadTimeout: 30 * time.Second,
		ConvertTimeout:  60 * time.Second,
	}
}

// trackPID wraps the real launcher and records the browser process id.
func trackPID(c *RodConverter, pid *int) {
	c.launch = func(ctx context.Context, cfg config.BrowserConfig) (session, error) {
		s, err := launchRod(ctx, cfg)
		if err == nil {
			*pid = s.(*rodSession).pid()
		}
		return s, err
	}
}

func processGone(pid int) bool {
	err := syscall.Kill(pid, 0)
	return errors.Is(err, syscall.ESRCH)
}

func TestRodConverter_Integration_Convert(t *testing.T) {
	c := NewRodConverter(integrationConfig(), nil)
	var pid int
	trackPID(c, &pid)

	res, err := c.Convert(context.Background(), `<html><body style="background:#fff"><h1>Jane Doe</h1></body></html>`)
	require.NoError(t, err)

	assert.True(t, bytes.HasPrefix(res.PDF, []byte("%PDF")), "PDF magic")
	assert.True(t, bytes.HasPrefix(res.Image, []byte{0xFF, 0xD8, 0xFF}), "JPEG magic")

	require.NotZero(t, pid)
	assert.Eventually(t, func() bool { return processGone(pid) }, 5*time.Second, 50*time.Millisecond)
}

func TestRodConverter_Integration_LoadFailureTerminatesBrowser(t *testing.T) {
	cfg := integrationConfig()
	cfg.PageLoadTimeout = time.Nanosecond
	c := NewRodConverter(cfg, nil)
	var pid int
	trackPID(c, &pid)

	_, err := c.Convert(context.Background(), `<html><body><img src="http://10.255.255.1/never.png"></body></html>`)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPageLoad)

	require.NotZero(t, pid)
	assert.Eventually(t, func() bool { return processGone(pid) }, 5*time.Second, 50*time.Millisecond)
}
