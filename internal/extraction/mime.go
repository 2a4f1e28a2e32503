package extraction

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrFileNotFound is returned when the staged file does not exist
var ErrFileNotFound = errors.New("could not find file")

// SupportedExtensions lists the accepted extensions in display order
var SupportedExtensions = []string{".pdf", ".png", ".jpg", ".jpeg"}

var mimeTypes = map[string]string{
	".pdf":  "application/pdf",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
}

// UnsupportedFormatError reports an extension outside the allow-list
type UnsupportedFormatError struct {
	Extension string
}

func (e *UnsupportedFormatError) Error() string {
	ext := e.Extension
	if ext == "" {
		ext = "(none)"
	}
	return fmt.Sprintf("unsupported file format: %s. Supported formats are: %s",
		ext, strings.Join(SupportedExtensions, ", "))
}

// Payload is the binary part of a prompt
type Payload struct {
	MIMEType string
	Data     []byte
}

// ResolveMIME maps a file path to its MIME type using the extension allow-list
func ResolveMIME(path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	mimeType, ok := mimeTypes[ext]
	if !ok {
		return "", &UnsupportedFormatError{Extension: ext}
	}
	return mimeType, nil
}

// LoadPayload checks the file exists, resolves its MIME type and reads it into memory
func LoadPayload(path string) (Payload, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Payload{}, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return Payload{}, fmt.Errorf("checking file: %w", err)
	}

	mimeType, err := ResolveMIME(path)
	if err != nil {
		return Payload{}, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Payload{}, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return Payload{}, fmt.Errorf("reading file: %w", err)
	}

	return Payload{MIMEType: mimeType, Data: data}, nil
}

// SniffMIME guesses the MIME type from magic bytes, returning "" when unknown
func SniffMIME(data []byte) string {
	switch {
	case len(data) >= 2 && data[0] == 0xFF && data[1] == 0xD8:
		return "image/jpeg"
	case bytes.HasPrefix(data, []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}):
		return "image/png"
	case bytes.HasPrefix(data, []byte("%PDF-")):
		return "application/pdf"
	}
	return ""
}
