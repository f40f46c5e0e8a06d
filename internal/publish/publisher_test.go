package publish

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"certapi/internal/storage"
	"certapi/internal/storage/mocks"
)

var fixedNow = func() time.Time {
	return time.Date(2026, 10, 19, 23, 30, 0, 0, time.FixedZone("WIB", 7*3600))
}

func TestPublisher_Disabled(t *testing.T) {
	p := New(nil, time.Second, nil)

	assert.False(t, p.Enabled())
	out := p.Publish(context.Background(), []byte("x"), "a.pdf", "application/pdf")
	assert.Nil(t, out.URL)
	assert.NoError(t, out.Warning)

	var nilPub *Publisher
	assert.False(t, nilPub.Enabled())
}

func TestPublisher_Key_UsesUTCDate(t *testing.T) {
	p := New(&mocks.MockStorage{}, 0, nil, WithClock(fixedNow))
	// 23:30 at +07:00 is 16:30 UTC on the same day
	assert.Equal(t, "2026-10-19/Jane_Doe_1.pdf", p.Key("Jane_Doe_1.pdf"))

	late := func() time.Time { return time.Date(2026, 10, 20, 3, 0, 0, 0, time.FixedZone("WIB", 7*3600)) }
	p = New(&mocks.MockStorage{}, 0, nil, WithClock(late))
	assert.Equal(t, "2026-10-19/x.jpg", p.Key("x.jpg"))
}

func TestPublisher_Publish_Success(t *testing.T) {
	ms := &mocks.MockStorage{}
	p := New(ms, time.Second, nil, WithClock(fixedNow))

	ms.On("Put", mock.Anything, "2026-10-19/a.pdf", mock.Anything, mock.MatchedBy(func(o storage.PutObjectOptions) bool {
		return o.ContentType == "application/pdf" && o.Size == 3
	})).Run(func(args mock.Arguments) {
		b, err := io.ReadAll(args.Get(2).(io.Reader))
		require.NoError(t, err)
		assert.Equal(t, "pdf", string(b))
		ctx := args.Get(0).(context.Context)
		_, ok := ctx.Deadline()
		assert.True(t, ok, "upload must be bounded")
	}).Return(storage.ObjectInfo{Key: "2026-10-19/a.pdf"}, nil).Once()
	ms.On("PublicURL", mock.Anything, "2026-10-19/a.pdf").Return("https://cdn/certificates/2026-10-19/a.pdf", nil).Once()

	out := p.Publish(context.Background(), []byte("pdf"), "a.pdf", "application/pdf")

	require.NoError(t, out.Warning)
	require.NotNil(t, out.URL)
	assert.Equal(t, "https://cdn/certificates/2026-10-19/a.pdf", *out.URL)
	ms.AssertExpectations(t)
}

func TestPublisher_Publish_UploadFailureIsWarning(t *testing.T) {
	ms := &mocks.MockStorage{}
	p := New(ms, time.Second, nil, WithClock(fixedNow))

	ms.On("Put", mock.Anything, "2026-10-19/a.jpg", mock.Anything, mock.Anything).
		Return(storage.ObjectInfo{}, errors.New("access denied")).Once()

	out := p.Publish(context.Background(), []byte("img"), "a.jpg", "image/jpeg")

	assert.Nil(t, out.URL)
	require.Error(t, out.Warning)
	assert.Contains(t, out.Warning.Error(), "access denied")
	ms.AssertNotCalled(t, "PublicURL", mock.Anything, mock.Anything)
}

func TestPublisher_Publish_URLFailureIsWarning(t *testing.T) {
	ms := &mocks.MockStorage{}
	p := New(ms, 0, nil, WithClock(fixedNow))

	ms.On("Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(storage.ObjectInfo{}, nil).Once()
	ms.On("PublicURL", mock.Anything, "2026-10-19/a.pdf").Return("", errors.New("sign failed")).Once()

	out := p.Publish(context.Background(), []byte("pdf"), "a.pdf", "application/pdf")

	assert.Nil(t, out.URL)
	require.Error(t, out.Warning)
	assert.Contains(t, out.Warning.Error(), "sign failed")
	ms.AssertExpectations(t)
}
