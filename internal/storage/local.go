package storage

import (
	"context"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Local stores files on disk below root. Files are published by the HTTP
// server under /storage.
type Local struct {
	root    string
	baseURL string
}

// NewLocal creates root when missing.
func NewLocal(root, baseURL string) (*Local, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, errors.Wrapf(err, "create storage dir %s", root)
	}
	return &Local{root: root, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Root is the directory files are written to.
func (l *Local) Root() string {
	return l.root
}

func (l *Local) Save(_ context.Context, dir, ext string, r io.Reader) (string, error) {
	key := path.Join(dir, uuid.NewString()+ext)
	full, err := l.resolve(key)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", errors.Wrap(err, "create image dir")
	}

	file, err := os.OpenFile(full, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", errors.Wrap(err, "create image file")
	}

	if _, err := io.Copy(file, r); err != nil {
		file.Close()
		os.Remove(full)
		return "", errors.Wrap(err, "write image file")
	}
	if err := file.Close(); err != nil {
		os.Remove(full)
		return "", errors.Wrap(err, "close image file")
	}

	return key, nil
}

func (l *Local) Delete(_ context.Context, key string) error {
	if key == "" {
		return nil
	}
	full, err := l.resolve(key)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "remove image %s", key)
	}
	return nil
}

func (l *Local) URL(key string) string {
	if key == "" {
		return ""
	}
	return l.baseURL + "/storage/" + key
}

func (l *Local) resolve(key string) (string, error) {
	clean := path.Clean("/" + key)
	if clean == "/" || strings.Contains(key, "..") {
		return "", errors.Errorf("invalid storage key %q", key)
	}
	return filepath.Join(l.root, filepath.FromSlash(strings.TrimPrefix(clean, "/"))), nil
}
