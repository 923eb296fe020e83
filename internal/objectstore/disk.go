package objectstore

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// DiskStore writes objects under a local directory that the server
// exposes at publicBaseURL.
type DiskStore struct {
	baseDir       string
	publicBaseURL string
}

// NewDiskStore creates a new disk store
func NewDiskStore(baseDir, publicBaseURL string) (*DiskStore, error) {
	// Create base directory if it doesn't exist
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, err
	}

	return &DiskStore{
		baseDir:       baseDir,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
	}, nil
}

// Put writes the object to disk
func (s *DiskStore) Put(ctx context.Context, key, contentType string, r io.Reader) (string, error) {
	if key == "" || key != filepath.Base(key) || strings.HasPrefix(key, ".") {
		return "", fmt.Errorf("invalid object key %q", key)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	// Write to a temp file first so readers never see a partial object
	tmp, err := os.CreateTemp(s.baseDir, ".upload-*")
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}
	if err := os.Rename(tmp.Name(), filepath.Join(s.baseDir, key)); err != nil {
		return "", err
	}

	return s.publicBaseURL + "/" + key, nil
}

// Handler serves stored objects. Mount it under the path of publicBaseURL.
func (s *DiskStore) Handler(prefix string) http.Handler {
	return http.StripPrefix(prefix, http.FileServer(http.Dir(s.baseDir)))
}
