// Package storage keeps uploaded file payloads on the local filesystem.
// Keys are random, the original filename only contributes its extension.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var allowedExtensions = map[string]bool{
	".jpeg": true,
	".jpg":  true,
	".png":  true,
	".svg":  true,
	".webp": true,
}

// A Dir stores blobs as files in one directory and serves them under a base
// URL.
type Dir struct {
	Path    string
	BaseURL string // e.g. "/files"
}

func NewDir(path, baseURL string) (*Dir, error) {
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, err
	}
	return &Dir{
		Path:    path,
		BaseURL: strings.TrimSuffix(baseURL, "/"),
	}, nil
}

// Put writes the payload under a fresh key. The extension of the original
// name must be on the allow-list.
func (dir *Dir) Put(name string, data []byte) (string, error) {
	var ext = strings.ToLower(filepath.Ext(name))
	if !allowedExtensions[ext] {
		return "", fmt.Errorf("file extension %q is not allowed", ext)
	}
	var key = uuid.NewString() + ext
	if err := os.WriteFile(filepath.Join(dir.Path, key), data, 0644); err != nil {
		return "", err
	}
	return key, nil
}

func (dir *Dir) Delete(key string) error {
	if key != filepath.Base(key) {
		return fmt.Errorf("invalid key %q", key)
	}
	return os.Remove(filepath.Join(dir.Path, key))
}

func (dir *Dir) ResolveURL(key string) string {
	return dir.BaseURL + "/" + key
}
