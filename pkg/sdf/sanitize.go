package sdf

import (
	"errors"
	"fmt"
	"path"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ErrNameCollision is returned when two distinct object names sanitize to
// the same output name.
var ErrNameCollision = errors.New("sanitized name collision")

// reservedChars never appear in sanitized names: they are path separators or
// reserved on at least one supported filesystem.
const reservedChars = `<>:"/\|?*`

// Windows device names, compared case-insensitively without extension.
var reservedNames = map[string]bool{
	"CON": true, "PRN": true, "AUX": true, "NUL": true,
	"COM1": true, "COM2": true, "COM3": true, "COM4": true, "COM5": true,
	"COM6": true, "COM7": true, "COM8": true, "COM9": true,
	"LPT1": true, "LPT2": true, "LPT3": true, "LPT4": true, "LPT5": true,
	"LPT6": true, "LPT7": true, "LPT8": true, "LPT9": true,
}

// fallbackName is used when nothing printable survives sanitization.
const fallbackName = "model"

// SanitizeName maps an object name to a string that is safe as a directory
// name and as a model:// URI path segment.
//
// Accented letters are folded to their base letter, reserved characters,
// whitespace and control characters become '_', and leading or trailing dots
// and underscores are trimmed. The function is deterministic.
func SanitizeName(name string) string {
	folded, _, err := transform.String(transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), name)
	if err != nil {
		folded = name
	}

	var b strings.Builder
	for _, r := range folded {
		switch {
		case strings.ContainsRune(reservedChars, r):
			b.WriteByte('_')
		case unicode.IsSpace(r), unicode.IsControl(r):
			b.WriteByte('_')
		case r == '%' || r == '#':
			// Would be misread inside a URI.
			b.WriteByte('_')
		case unicode.IsPrint(r):
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}

	out := strings.Trim(b.String(), "._ ")
	if out == "" {
		return fallbackName
	}
	// Device names are reserved with any extension.
	stem, rest, _ := strings.Cut(out, ".")
	if reservedNames[strings.ToUpper(stem)] {
		if rest == "" {
			return stem + "_"
		}
		return stem + "_." + rest
	}
	return out
}

// SanitizeFileName sanitizes the stem of a file name and keeps a lower-case
// extension.
func SanitizeFileName(name string) string {
	base := path.Base(strings.ReplaceAll(name, `\`, "/"))
	ext := path.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	ext = strings.ToLower(SanitizeName(strings.TrimPrefix(ext, ".")))
	if ext == fallbackName {
		ext = ""
	}
	if ext != "" {
		ext = "." + ext
	}
	return SanitizeName(stem) + ext
}

// NameSet tracks the sanitized names claimed during one batch.
// Names are compared case-insensitively so that exports stay distinct on
// case-insensitive filesystems.
type NameSet struct {
	owners map[string]string
}

// NewNameSet returns an empty set.
func NewNameSet() *NameSet {
	return &NameSet{owners: make(map[string]string)}
}

// Claim reserves the sanitized form of original for one object. It fails
// with ErrNameCollision if any earlier object already holds it, including an
// object with the identical original name.
func (s *NameSet) Claim(original string) (string, error) {
	name := SanitizeName(original)
	key := strings.ToLower(name)
	if owner, ok := s.owners[key]; ok {
		return name, fmt.Errorf("%w: %q and %q both map to %q", ErrNameCollision, owner, original, name)
	}
	s.owners[key] = original
	return name, nil
}

// Release gives a name back, e.g. when the object that claimed it failed.
func (s *NameSet) Release(original string) {
	key := strings.ToLower(SanitizeName(original))
	if s.owners[key] == original {
		delete(s.owners, key)
	}
}
