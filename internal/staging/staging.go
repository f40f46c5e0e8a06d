// Package staging writes conversion artifacts to per-file temporary
// directories so they can be attached to outgoing mail.
package staging

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"certapi/internal/model"
)

// Sentinel errors for staging operations.
var (
	ErrExtensionEmpty         = errors.New("extension cannot be empty")
	ErrExtensionPathTraversal = errors.New("extension contains path separator or null byte")
	ErrBaseNameInvalid        = errors.New("base name is empty or contains a path separator")
)

const dirPattern = "cert-*"

// Stager creates staged files under Root (os.TempDir when empty).
type Stager struct {
	Root string
}

// New returns a Stager rooted at root.
func New(root string) *Stager {
	return &Stager{Root: root}
}

// Stage writes data to <fresh dir>/<baseName>.<ext>. Every call gets its own
// directory, so two artifacts with the same base name never collide.
func (s *Stager) Stage(data []byte, baseName, ext string) (*model.StagedFile, error) {
	if err := ValidateExtension(ext); err != nil {
		return nil, err
	}
	if baseName == "" || strings.ContainsAny(baseName, "/\\\x00") {
		return nil, ErrBaseNameInvalid
	}

	dir, err := os.MkdirTemp(s.Root, dirPattern)
	if err != nil {
		return nil, fmt.Errorf("creating staging dir: %w", err)
	}

	path := filepath.Join(dir, baseName+"."+ext)
	// #nosec G306 -- attachments are read back by this process only
	if err := os.WriteFile(path, data, 0o600); err != nil {
		_ = os.RemoveAll(dir)
		return nil, fmt.Errorf("writing staged file: %w", err)
	}

	return &model.StagedFile{Path: path, Dir: dir}, nil
}

// Cleanup removes the directories of the given files. It never stops early
// and returns every failure instead of raising it. Nil entries are skipped.
func Cleanup(files ...*model.StagedFile) []error {
	var errs []error
	for _, f := range files {
		if f == nil || f.Dir == "" {
			continue
		}
		if err := removeAll(f.Dir); err != nil {
			errs = append(errs, fmt.Errorf("removing %s: %w", f.Dir, err))
		}
	}
	return errs
}

// removeAll is swapped in tests to simulate deletion failures.
var removeAll = os.RemoveAll

// ValidateExtension checks that the extension is safe for use in file names.
func ValidateExtension(extension string) error {
	if extension == "" {
		return ErrExtensionEmpty
	}
	if strings.ContainsAny(extension, "/\\\x00") {
		return ErrExtensionPathTraversal
	}
	return nil
}
