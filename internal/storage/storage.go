// Package storage keeps uploaded product images.
package storage

import (
	"context"
	"io"

	"github.com/gabriel-vasile/mimetype"
	"github.com/pkg/errors"
)

// Storage saves files under generated keys. Save never overwrites an existing file.
type Storage interface {
	Save(ctx context.Context, dir, ext string, r io.Reader) (string, error)
	Delete(ctx context.Context, key string) error
	URL(key string) string
}

var (
	ErrImageTooLarge    = errors.New("image is too large")
	ErrUnsupportedImage = errors.New("unsupported image type")
)

// imageTypes maps the accepted raster MIME types to the extension used on disk.
var imageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
}

// DetectImage sniffs the content of r and returns the file extension to store
// it with. r is rewound before returning.
func DetectImage(r io.ReadSeeker, size, maxSize int64) (string, error) {
	if maxSize > 0 && size > maxSize {
		return "", ErrImageTooLarge
	}

	mtype, err := mimetype.DetectReader(r)
	if err != nil {
		return "", errors.Wrap(err, "detect image type")
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return "", errors.Wrap(err, "rewind image")
	}

	for current := mtype; current != nil; current = current.Parent() {
		if ext, ok := imageTypes[current.String()]; ok {
			return ext, nil
		}
	}
	return "", ErrUnsupportedImage
}
