// Package objectstore stores uploaded tour images and hands back public URLs.
package objectstore

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"GOTOURS_BACK-END/internal/config"
)

// Store accepts a blob with its content type and returns a public URL.
type Store interface {
	Put(ctx context.Context, key, contentType string, r io.Reader) (string, error)
}

var unsafeKeyChars = regexp.MustCompile(`[^a-zA-Z0-9.-]`)

// ObjectKey builds a unique object name: <unix-ms>-<random>-<sanitized name>.
func ObjectKey(filename string, now time.Time) string {
	name := unsafeKeyChars.ReplaceAllString(filename, "")
	name = strings.TrimLeft(name, ".")
	if name == "" {
		name = "image"
	}
	return fmt.Sprintf("%d-%s-%s", now.UnixMilli(), uuid.NewString()[:8], name)
}

// New creates the store selected by cfg.Storage.Driver.
func New(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.Storage.Driver {
	case config.StorageDriverDisk:
		return NewDiskStore(cfg.Storage.DiskDir, cfg.Storage.PublicBaseURL)
	case config.StorageDriverGCS:
		return NewGCSStore(ctx, cfg.Storage.GCSBucket, cfg.Storage.GCSCredentialsFile)
	default:
		return nil, fmt.Errorf("unsupported storage driver: %s", cfg.Storage.Driver)
	}
}
