package storage

import (
	"context"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ObjectInfo describes an uploaded object.
type ObjectInfo struct {
	Key  string
	Size int64
	URL  string
}

// ObjectStorage captures the S3-compatible operations export uploads need.
type ObjectStorage interface {
	UploadObject(ctx context.Context, key string, data []byte, contentType string) error
	PresignedURL(ctx context.Context, key string, expiry time.Duration) (string, error)
}

// ObjectKey places filename under prefix with a unique directory so that
// repeated exports of the same report never overwrite each other.
func ObjectKey(prefix, filename string, now time.Time) string {
	prefix = strings.Trim(strings.TrimSpace(prefix), "/")
	name := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	parts := []string{now.Format("2006/01/02"), uuid.NewString(), name}
	if prefix != "" {
		parts = append([]string{prefix}, parts...)
	}
	return strings.Join(parts, "/")
}
