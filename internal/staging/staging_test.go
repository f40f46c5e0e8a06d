package staging

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"certapi/internal/model"
)

func TestStager_Stage(t *testing.T) {
	s := New(t.TempDir())

	f, err := s.Stage([]byte("%PDF-1.4"), "Jane_Doe_1", "pdf")
	require.NoError(t, err)

	assert.Equal(t, "Jane_Doe_1.pdf", filepath.Base(f.Path))
	assert.Equal(t, f.Dir, filepath.Dir(f.Path))
	assert.Contains(t, filepath.Base(f.Dir), "cert-")

	data, err := os.ReadFile(f.Path)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(data))
}

func TestStager_Stage_NoCollision(t *testing.T) {
	s := New(t.TempDir())

	a, err := s.Stage([]byte("a"), "same", "bin")
	require.NoError(t, err)
	b, err := s.Stage([]byte("b"), "same", "bin")
	require.NoError(t, err)

	assert.NotEqual(t, a.Dir, b.Dir)
	assert.NotEqual(t, a.Path, b.Path)

	got, err := os.ReadFile(a.Path)
	require.NoError(t, err)
	assert.Equal(t, "a", string(got))
}

func TestStager_Stage_InvalidInput(t *testing.T) {
	s := New(t.TempDir())

	tests := []struct {
		name    string
		base    string
		ext     string
		wantErr error
	}{
		{name: "empty extension", base: "x", ext: "", wantErr: ErrExtensionEmpty},
		{name: "extension with slash", base: "x", ext: "../pdf", wantErr: ErrExtensionPathTraversal},
		{name: "extension with null", base: "x", ext: "pd\x00f", wantErr: ErrExtensionPathTraversal},
		{name: "empty base", base: "", ext: "pdf", wantErr: ErrBaseNameInvalid},
		{name: "base with separator", base: "a/b", ext: "pdf", wantErr: ErrBaseNameInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Stage([]byte("x"), tt.base, tt.ext)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestStager_Stage_LongMultibyteName(t *testing.T) {
	s := New(t.TempDir())
	base := model.FilenameBase(strings.Repeat("漢", 100), time.UnixMilli(1792432724201))

	for _, ext := range []string{"pdf", "jpg"} {
		f, err := s.Stage([]byte("x"), base, ext)
		require.NoError(t, err)
		assert.FileExists(t, f.Path)
	}
}

func TestStager_Stage_MissingRoot(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "does-not-exist"))

	_, err := s.Stage([]byte("x"), "base", "pdf")
	assert.Error(t, err)
}

func TestCleanup(t *testing.T) {
	s := New(t.TempDir())
	a, err := s.Stage([]byte("a"), "base", "pdf")
	require.NoError(t, err)
	b, err := s.Stage([]byte("b"), "base", "jpg")
	require.NoError(t, err)

	errs := Cleanup(a, nil, b, &model.StagedFile{})

	assert.Empty(t, errs)
	assert.NoDirExists(t, a.Dir)
	assert.NoDirExists(t, b.Dir)
}

func TestCleanup_FailureIsReturnedNotRaised(t *testing.T) {
	orig := removeAll
	t.Cleanup(func() { removeAll = orig })

	calls := 0
	removeAll = func(path string) error {
		calls++
		if calls == 1 {
			return errors.New("device busy")
		}
		return orig(path)
	}

	s := New(t.TempDir())
	a, err := s.Stage([]byte("a"), "base", "pdf")
	require.NoError(t, err)
	b, err := s.Stage([]byte("b"), "base", "jpg")
	require.NoError(t, err)

	errs := Cleanup(a, b)

	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "device busy")
	assert.NoDirExists(t, b.Dir, "second file still cleaned after first failure")
	assert.Equal(t, 2, calls)
}
