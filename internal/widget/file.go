package widget

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"

	"matchin/internal/models"

	"github.com/dustin/go-humanize"
)

// MaxFileSize is the client-side ceiling; the relay does not re-check it.
const MaxFileSize = 15 * 1024 * 1024

var (
	ErrMultipleFiles  = errors.New("single file at a time")
	ErrDisallowedType = errors.New("disallowed file type, only PDF and XLSX accepted")
	ErrFileTooLarge   = errors.New("file too large, 15 MB max")
)

// File is a candidate picked or dropped by the user. Open is called once per submit.
type File struct {
	Name     string
	Size     int64
	MIMEType string
	Open     func() (io.ReadCloser, error)
}

// FileFromBytes wraps in-memory content, declaring mimeType or guessing it from the name.
func FileFromBytes(name, mimeType string, content []byte) File {
	if mimeType == "" {
		mimeType = guessMIMEType(name)
	}
	return File{
		Name:     name,
		Size:     int64(len(content)),
		MIMEType: mimeType,
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(content)), nil
		},
	}
}

// FileFromPath stats path without reading it, so oversized files are rejected cheaply.
func FileFromPath(path string) (File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return File{}, err
	}
	if info.IsDir() {
		return File{}, fmt.Errorf("%s is a directory", path)
	}
	name := filepath.Base(path)
	return File{
		Name:     name,
		Size:     info.Size(),
		MIMEType: guessMIMEType(name),
		Open: func() (io.ReadCloser, error) {
			return os.Open(path)
		},
	}, nil
}

func guessMIMEType(name string) string {
	if category, ok := models.CategoryForFileName(name); ok {
		return models.MIMETypeForCategory(category)
	}
	if t := mime.TypeByExtension(filepath.Ext(name)); t != "" {
		return t
	}
	return "application/octet-stream"
}

// Validate checks the extension first, then the size.
func Validate(f File) (models.DocumentCategory, error) {
	category, ok := models.CategoryForFileName(f.Name)
	if !ok {
		return "", ErrDisallowedType
	}
	if f.Size > MaxFileSize {
		return "", ErrFileTooLarge
	}
	return category, nil
}

// SelectedFile is a validated File together with its inferred category.
type SelectedFile struct {
	File
	Category models.DocumentCategory
}

// Summary is the one-line description shown under the drop zone.
func (s SelectedFile) Summary() string {
	return fmt.Sprintf("%s (%s) - detected type: %s", s.Name, humanize.IBytes(uint64(s.Size)), s.Category.Label())
}
