// Package upload receives multipart image uploads under size and type
// constraints and stores them on disk under unique names.
package upload

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var (
	// ErrNoFile is returned when the form carries no file part.
	ErrNoFile = errors.New("no file provided")
	// ErrTooLarge is returned when the file exceeds the size limit.
	ErrTooLarge = errors.New("file too large")
	// ErrBadType is returned when extension or content type is not an image.
	ErrBadType = errors.New("only image files are allowed")
)

var imageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
}

// Asset is a stored upload addressed by its public reference.
type Asset struct {
	Ref string // public path, e.g. /uploads/<name>
}

// Saver validates and stores incoming image files.
type Saver struct {
	dir     string
	maxSize int64
}

// NewSaver creates a saver writing into dir. The directory is created if
// missing so a fresh deployment can accept uploads immediately.
func NewSaver(dir string, maxSize int64) (*Saver, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Saver{dir: dir, maxSize: maxSize}, nil
}

// ReceiveImage checks the constraints and stores the file. Both the file
// extension and the declared content type are checked; either failing
// rejects the upload.
func (s *Saver) ReceiveImage(fh *multipart.FileHeader) (*Asset, error) {
	if fh == nil {
		return nil, ErrNoFile
	}
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if err := checkImage(ext, fh.Header.Get("Content-Type"), fh.Size, s.maxSize); err != nil {
		return nil, err
	}

	src, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	name := uuid.New().String() + ext
	dst, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return nil, fmt.Errorf("create upload file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, io.LimitReader(src, s.maxSize)); err != nil {
		return nil, fmt.Errorf("write upload: %w", err)
	}
	return &Asset{Ref: "/uploads/" + name}, nil
}

func checkImage(ext, contentType string, size, maxSize int64) error {
	if maxSize > 0 && size > maxSize {
		return ErrTooLarge
	}
	if !imageExts[ext] {
		return ErrBadType
	}
	if !strings.HasPrefix(contentType, "image/") {
		return ErrBadType
	}
	return nil
}
