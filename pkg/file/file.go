package file

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
)

// DefaultMaxSize bounds how much is read from a single reference.
const DefaultMaxSize int64 = 20 << 20

// Blob is a loaded binary.
type Blob struct {
	Name     string // base name, sanitized
	Data     []byte
	MIMEType string
}

var imageMIMETypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
	"image/bmp":  true,
	"image/tiff": true,
	"image/heic": true,
	"image/heif": true,
	"image/avif": true,
}

// DetectMIME sniffs the content type from at most the first 512 bytes.
func DetectMIME(data []byte) string {
	return http.DetectContentType(data)
}

// IsImage reports whether mimeType is a supported raster image type.
func IsImage(mimeType string) bool {
	mt, _, _ := strings.Cut(mimeType, ";")
	return imageMIMETypes[strings.TrimSpace(strings.ToLower(mt))]
}

// ValidateSize checks 0 < size <= maxBytes.
func ValidateSize(size, maxBytes int64) error {
	if size == 0 {
		return ErrEmptyFile
	}
	if maxBytes > 0 && size > maxBytes {
		return fmt.Errorf("file size %d bytes exceeds %d bytes limit: %w", size, maxBytes, ErrFileTooLarge)
	}
	return nil
}

// ValidateImage checks the size and that the content sniffs as an image.
func ValidateImage(b *Blob, maxBytes int64) error {
	if err := ValidateSize(int64(len(b.Data)), maxBytes); err != nil {
		return err
	}
	if !IsImage(b.MIMEType) {
		return fmt.Errorf("%w: %s", ErrNotImage, b.MIMEType)
	}
	return nil
}

// SanitizeFilename strips directories and NUL bytes. Returns "unnamed" when
// nothing usable is left.
func SanitizeFilename(filename string) string {
	filename = strings.ReplaceAll(filename, "\\", "/")
	filename = filepath.Base(filename)
	filename = strings.ReplaceAll(filename, "\x00", "")

	if filename == "." || filename == ".." || filename == "" || filename == "/" {
		filename = "unnamed"
	}
	return filename
}

func newBlob(name string, data []byte) *Blob {
	return &Blob{
		Name:     SanitizeFilename(name),
		Data:     data,
		MIMEType: DetectMIME(data),
	}
}
