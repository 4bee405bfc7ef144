package objectstore

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/google/uuid"
)

// SanitizeName keeps ASCII letters, digits, dot, dash and underscore, and maps
// every other rune to '_'.
func SanitizeName(name string) string {
	name = strings.TrimSpace(filepath.Base(strings.ReplaceAll(name, "\\", "/")))
	if name == "" || name == "." || name == "/" {
		return "file"
	}
	var b strings.Builder
	for _, r := range name {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(r)
		case r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

func shortID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

// UploadKey names a stored upload: <millis>-<random>-<sanitized name>.
func UploadKey(millis int64, filename string) string {
	return fmt.Sprintf("%d-%s-%s", millis, shortID(), SanitizeName(filename))
}

// PageKey names one page of a split upload: <millis>-<random>-<stem>_p<page>.pdf.
func PageKey(millis int64, filename string, page int) string {
	stem := SanitizeName(strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename)))
	return fmt.Sprintf("%d-%s-%s_p%d.pdf", millis, shortID(), stem, page)
}

// ThumbnailKey derives the preview key stored next to an object.
func ThumbnailKey(key string) string {
	return key + ".thumb.png"
}
