// Package storage holds the object store backends used for uploaded media.
package storage

import (
	"context"
	"errors"
	"strings"
)

var ErrInvalidKey = errors.New("invalid object key")

// ObjectStore is the boundary to the hosted object storage.
type ObjectStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Remove(ctx context.Context, key string) error
	PublicURL(key string) string
	// Ping checks the store is reachable; it backs the health check.
	Ping(ctx context.Context) error
}

// PublicSegment is the path segment every public URL carries right before
// the object key. Deleting by URL relies on finding it.
func PublicSegment(bucket string) string {
	return "/public/" + bucket + "/"
}

func publicURL(baseURL, bucket, key string) string {
	return strings.TrimRight(baseURL, "/") + PublicSegment(bucket) + key
}

func validKey(key string) bool {
	if key == "" || strings.HasPrefix(key, "/") {
		return false
	}
	for _, part := range strings.Split(key, "/") {
		if part == "" || part == "." || part == ".." {
			return false
		}
	}
	return true
}
