// Package storage keeps document contents in S3-compatible object storage.
// The bucket is private; reads go through short-lived presigned URLs.
package storage

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"time"

	"github.com/dmitrijs2005/slothapp/internal/server/models"
)

type ObjectStore interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
	Delete(ctx context.Context, key string) error
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]`)

// SanitizeFileName replaces every character outside [A-Za-z0-9._-] with '_'.
func SanitizeFileName(name string) string {
	return unsafeChars.ReplaceAllString(name, "_")
}

// ObjectPath builds {contextType}/{contextID}/{unixMillis}_{sanitized}.
func ObjectPath(ref models.ContextRef, fileName string, now time.Time) string {
	return fmt.Sprintf("%s/%s/%d_%s", ref.Type, ref.ID, now.UnixMilli(), SanitizeFileName(fileName))
}
