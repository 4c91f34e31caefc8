package validators

import (
	"errors"
	"fmt"
	"io"
	"path"
	"slices"
	"strings"
	"unicode"

	"github.com/gabriel-vasile/mimetype"
)

var (
	ErrNoFile              = errors.New("no file selected for uploading")
	ErrFileNameTooLong     = errors.New("file name is too long")
	ErrFileNameInvalid     = errors.New("file name is invalid")
	ErrFileTypeUnsupported = errors.New("unsupported file type")
)

const maxFileNameSize = 255

// FileNameValidator strips any directory components from name and checks the
// extension against allowed (lowercase, without the dot). It returns the
// name the file should be stored under.
func FileNameValidator(name string, allowed []string) (string, error) {
	if name == "" {
		return "", ErrNoFile
	}

	name = path.Base(strings.ReplaceAll(name, `\`, "/"))
	if name == "." || name == ".." || name == "/" {
		return "", ErrFileNameInvalid
	}

	if strings.ContainsFunc(name, unicode.IsControl) || strings.Contains(name, `"`) {
		return "", ErrFileNameInvalid
	}

	if len(name) > maxFileNameSize {
		return "", ErrFileNameTooLong
	}

	ext := strings.ToLower(strings.TrimPrefix(path.Ext(name), "."))
	if ext == "" || !slices.Contains(allowed, ext) {
		return "", fmt.Errorf("%w, allowed file types are %s", ErrFileTypeUnsupported, strings.Join(allowed, ", "))
	}

	return name, nil
}

// DetectContentType sniffs the content type of r and rewinds it
func DetectContentType(r io.ReadSeeker) (string, error) {
	mime, err := mimetype.DetectReader(r)
	if err != nil {
		return "", fmt.Errorf("failed to detect content type, %w", err)
	}

	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("failed to rewind file, %w", err)
	}

	return mime.String(), nil
}
