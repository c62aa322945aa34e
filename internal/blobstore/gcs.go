package blobstore

import (
	"context"
	"errors"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
)

// GCSStore keeps objects in a Cloud Storage (Firebase Storage) bucket.
type GCSStore struct {
	bucket *storage.BucketHandle
	urls   urlMapper
	// newWriter opens the object writer. The object is finalized on Close
	// unless ctx was canceled first.
	newWriter func(ctx context.Context, key, contentType string) io.WriteCloser
}

// NewGCSStore wraps bucket. When publicBaseURL is empty the standard
// storage.googleapis.com URL of the bucket is used.
func NewGCSStore(bucket *storage.BucketHandle, bucketName, publicBaseURL string) *GCSStore {
	if publicBaseURL == "" {
		publicBaseURL = "https://storage.googleapis.com/" + bucketName
	}
	s := &GCSStore{bucket: bucket, urls: newURLMapper(publicBaseURL)}
	s.newWriter = func(ctx context.Context, key, contentType string) io.WriteCloser {
		w := s.bucket.Object(key).NewWriter(ctx)
		w.ContentType = contentType
		return w
	}
	return s
}

// Upload writes the object. A failed copy cancels the writer's context so
// the partial object is discarded instead of finalized.
func (s *GCSStore) Upload(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error) {
	wctx, cancel := context.WithCancel(ctx)
	defer cancel()

	w := s.newWriter(wctx, key, contentType)
	if _, err := io.CopyN(w, body, size); err != nil && !errors.Is(err, io.EOF) {
		cancel()
		_ = w.Close()
		return "", fmt.Errorf("write object %s: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("finalize object %s: %w", key, err)
	}
	return s.urls.publicURL(key), nil
}

// Delete removes the object. A missing object is not an error.
func (s *GCSStore) Delete(ctx context.Context, url string) error {
	key, err := s.urls.keyFor(url)
	if err != nil {
		return err
	}
	err = s.bucket.Object(key).Delete(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil
	}
	return err
}
