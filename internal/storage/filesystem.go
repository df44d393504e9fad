package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FileSystemBackend stores blobs under a media root on local disk.
type FileSystemBackend struct {
	root    string
	baseURL string
}

func NewFileSystemBackend(root, baseURL string) *FileSystemBackend {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &FileSystemBackend{root: root, baseURL: baseURL}
}

func (b *FileSystemBackend) Root() string {
	return b.root
}

func (b *FileSystemBackend) Save(ctx context.Context, name string, r io.Reader, contentType string) (string, error) {
	key, err := cleanKey(name)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Join(b.root, filepath.Dir(filepath.FromSlash(key))), 0o755); err != nil {
		return "", err
	}

	for attempt := 0; attempt < 100; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		f, err := os.OpenFile(b.path(key), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, fs.ErrExist) {
			key = alternativeName(name)
			if key, err = cleanKey(key); err != nil {
				return "", err
			}
			continue
		}
		if err != nil {
			return "", err
		}

		if _, err := io.Copy(f, r); err != nil {
			f.Close()
			os.Remove(b.path(key))
			return "", err
		}
		if err := f.Close(); err != nil {
			os.Remove(b.path(key))
			return "", err
		}
		return key, nil
	}
	return "", fmt.Errorf("no free name for %s", name)
}

func (b *FileSystemBackend) Exists(ctx context.Context, name string) (bool, error) {
	key, err := cleanKey(name)
	if err != nil {
		return false, err
	}
	_, err = os.Stat(b.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return err == nil, err
}

func (b *FileSystemBackend) Delete(ctx context.Context, name string) error {
	key, err := cleanKey(name)
	if err != nil {
		return err
	}
	if err := os.Remove(b.path(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func (b *FileSystemBackend) URL(name string) string {
	key, err := cleanKey(name)
	if err != nil {
		return ""
	}
	return b.baseURL + key
}

// Ping makes sure the media root exists and is a directory.
func (b *FileSystemBackend) Ping(ctx context.Context) error {
	if err := os.MkdirAll(b.root, 0o755); err != nil {
		return err
	}
	info, err := os.Stat(b.root)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("media root %s is not a directory", b.root)
	}
	return nil
}

func (b *FileSystemBackend) path(key string) string {
	return filepath.Join(b.root, filepath.FromSlash(key))
}
