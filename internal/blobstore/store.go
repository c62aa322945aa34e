// Package blobstore uploads and removes media objects in an object store and
// maps between object keys and their public URLs.
package blobstore

import (
	"context"
	"errors"
	"io"
	"net/url"
	"strings"
)

// ErrForeignURL is returned when a URL does not belong to the store.
var ErrForeignURL = errors.New("url does not belong to this store")

// Store is the media storage boundary.
type Store interface {
	// Upload writes size bytes from body under key and returns the public URL.
	Upload(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error)
	// Delete removes the object behind a URL previously returned by Upload.
	Delete(ctx context.Context, url string) error
}

// urlMapper converts object keys to public URLs under a base and back.
type urlMapper struct {
	base string
}

func newURLMapper(base string) urlMapper {
	return urlMapper{base: strings.TrimRight(base, "/")}
}

func (m urlMapper) publicURL(key string) string {
	segments := strings.Split(key, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return m.base + "/" + strings.Join(segments, "/")
}

func (m urlMapper) keyFor(raw string) (string, error) {
	if !strings.HasPrefix(raw, m.base+"/") {
		return "", ErrForeignURL
	}
	rest := strings.TrimPrefix(raw, m.base+"/")
	if i := strings.IndexAny(rest, "?#"); i >= 0 {
		rest = rest[:i]
	}
	key, err := url.PathUnescape(rest)
	if err != nil {
		return "", err
	}
	if key == "" {
		return "", ErrForeignURL
	}
	return key, nil
}
