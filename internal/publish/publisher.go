// Package publish uploads generated artifacts to object storage.
// Publishing is best-effort: failures come back as warnings, never as errors.
package publish

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"certapi/internal/logging"
	"certapi/internal/storage"
)

// KeyDateLayout prefixes every object key with the upload day.
const KeyDateLayout = "2006-01-02"

// Outcome is the result of one upload. URL is nil when the artifact was not
// published, Warning is set when an attempted upload failed.
type Outcome struct {
	URL     *string
	Warning error
}

// Publisher uploads artifacts through a Storage client.
// A Publisher without a store is disabled.
type Publisher struct {
	store   storage.Storage
	timeout time.Duration
	now     func() time.Time
	log     logging.Logger
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithClock overrides the clock used for the date prefix of object keys.
func WithClock(now func() time.Time) Option {
	return func(p *Publisher) { p.now = now }
}

// New returns a Publisher. store may be nil, which disables publishing.
func New(store storage.Storage, timeout time.Duration, log logging.Logger, opts ...Option) *Publisher {
	if log == nil {
		log = logging.Nop()
	}
	p := &Publisher{
		store:   store,
		timeout: timeout,
		now:     time.Now,
		log:     log,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Enabled reports whether uploads will be attempted.
func (p *Publisher) Enabled() bool {
	return p != nil && p.store != nil
}

// Key returns the object key used for filename.
func (p *Publisher) Key(filename string) string {
	return p.now().UTC().Format(KeyDateLayout) + "/" + filename
}

// Publish uploads data under a dated key and resolves its public URL.
func (p *Publisher) Publish(ctx context.Context, data []byte, filename, contentType string) Outcome {
	if !p.Enabled() {
		return Outcome{}
	}

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	key := p.Key(filename)
	_, err := p.store.Put(ctx, key, bytes.NewReader(data), storage.PutObjectOptions{
		Size:        int64(len(data)),
		ContentType: contentType,
	})
	if err != nil {
		p.log.Warn(ctx, "publish_upload_failed", "key", key, "error", err.Error())
		return Outcome{Warning: fmt.Errorf("upload %s: %w", key, err)}
	}

	u, err := p.store.PublicURL(ctx, key)
	if err != nil {
		p.log.Warn(ctx, "publish_url_failed", "key", key, "error", err.Error())
		return Outcome{Warning: fmt.Errorf("resolve url %s: %w", key, err)}
	}

	p.log.Info(ctx, "artifact_published", "key", key, "size", len(data))
	return Outcome{URL: &u}
}
