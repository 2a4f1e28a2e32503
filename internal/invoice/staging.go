package invoice

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// StagedFile is an upload written to disk for the duration of one request
type StagedFile struct {
	Path string
	Size int64
}

// Staging defines the interface for temporary upload storage
type Staging interface {
	// Save writes content under filename and returns where it landed
	Save(filename string, content io.Reader) (*StagedFile, error)

	// Delete removes a staged file and its request directory
	Delete(path string) error
}

// LocalStaging stages uploads in a per-request directory under basePath
type LocalStaging struct {
	basePath string
}

// NewLocalStaging creates a new LocalStaging instance
func NewLocalStaging(basePath string) (*LocalStaging, error) {
	abs, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("resolving upload directory: %w", err)
	}
	if err := os.MkdirAll(abs, 0755); err != nil {
		return nil, fmt.Errorf("creating upload directory: %w", err)
	}

	return &LocalStaging{
		basePath: abs,
	}, nil
}

// BasePath returns the absolute upload directory
func (l *LocalStaging) BasePath() string {
	return l.basePath
}

// Save streams content to <base>/<unique dir>/<filename>
func (l *LocalStaging) Save(filename string, content io.Reader) (*StagedFile, error) {
	if filename == "" || filename != filepath.Base(filename) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidFilename, filename)
	}

	// The directory may have been removed since startup
	if err := os.MkdirAll(l.basePath, 0755); err != nil {
		return nil, fmt.Errorf("creating upload directory: %w", err)
	}

	dir, err := os.MkdirTemp(l.basePath, "upload-")
	if err != nil {
		return nil, fmt.Errorf("creating request directory: %w", err)
	}

	path := filepath.Join(dir, filename)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		os.RemoveAll(dir)
		return nil, fmt.Errorf("creating file: %w", err)
	}

	size, err := io.Copy(f, content)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.RemoveAll(dir)
		return nil, fmt.Errorf("writing file: %w", err)
	}

	return &StagedFile{Path: path, Size: size}, nil
}

// Delete removes a staged file if it still exists, then its request directory
func (l *LocalStaging) Delete(path string) error {
	rel, err := filepath.Rel(l.basePath, path)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return fmt.Errorf("refusing to delete %s outside %s", path, l.basePath)
	}

	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("deleting file: %w", err)
	}

	dir := filepath.Dir(path)
	if dir == l.basePath {
		return nil
	}
	if err := os.Remove(dir); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("deleting request directory: %w", err)
	}
	return nil
}
