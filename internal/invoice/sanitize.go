package invoice

import (
	"errors"
	"path/filepath"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ErrInvalidFilename is returned when nothing safe remains of an uploaded name
var ErrInvalidFilename = errors.New("invalid filename")

const maxBaseLength = 100

// SanitizeFilename reduces an untrusted upload name to a safe single path
// element. Only the last element is kept (both / and \ count as separators),
// accents are folded to ASCII, whitespace becomes '_', anything outside
// [A-Za-z0-9._-] is dropped and leading or trailing dots and underscores are
// trimmed.
func SanitizeFilename(name string) (string, error) {
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}

	fold := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))
	if folded, _, err := transform.String(fold, name); err == nil {
		name = folded
	}

	var b strings.Builder
	for _, r := range name {
		switch {
		case unicode.IsSpace(r):
			b.WriteByte('_')
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		}
	}

	clean := strings.Trim(b.String(), "._")
	if clean == "" {
		return "", ErrInvalidFilename
	}

	ext := filepath.Ext(clean)
	base := strings.TrimSuffix(clean, ext)
	if len(base) > maxBaseLength {
		base = base[:maxBaseLength]
	}
	if base == "" {
		return "", ErrInvalidFilename
	}

	return base + ext, nil
}
