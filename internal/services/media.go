package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"mime"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/anonto42/nano-social/backend/internal/blobstore"
	"github.com/anonto42/nano-social/backend/internal/observability"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// MaxUploadSize is the largest accepted media file.
const MaxUploadSize = 5 << 20

const sniffLen = 3072

var allowedImageTypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}

// Upload kinds. The kind becomes the object key prefix.
const (
	UploadKindPost   = ""
	UploadKindAvatar = "avatar"
	UploadKindHeader = "header"
)

type UploadInput struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
	Kind        string
}

type MediaService struct {
	store   blobstore.Store
	metrics *observability.Metrics
	now     func() time.Time
}

func NewMediaService(store blobstore.Store, metrics *observability.Metrics) *MediaService {
	return &MediaService{store: store, metrics: metrics, now: time.Now}
}

// Upload validates an image and stores it under
// [kind/]<externalID>-<token>-<unix millis><ext>, returning its public URL.
func (s *MediaService) Upload(ctx context.Context, externalID string, in UploadInput) (string, error) {
	if externalID == "" {
		return "", ErrUnauthorized
	}
	url, err := s.upload(ctx, externalID, in)
	switch {
	case err == nil:
		s.metrics.Upload("ok")
	case IsValidation(err):
		s.metrics.Upload("rejected")
	default:
		s.metrics.Upload("failed")
	}
	return url, err
}

func (s *MediaService) upload(ctx context.Context, externalID string, in UploadInput) (string, error) {
	if in.Kind != UploadKindPost && in.Kind != UploadKindAvatar && in.Kind != UploadKindHeader {
		return "", invalid("unknown upload kind " + strconv.Quote(in.Kind))
	}
	if in.Size <= 0 || in.Body == nil {
		return "", invalid("file is empty")
	}
	if in.Size > MaxUploadSize {
		return "", invalid("file size must be 5MB or less")
	}

	declared, _, err := mime.ParseMediaType(in.ContentType)
	if err != nil || !isAllowedImage(declared) {
		return "", invalid("only JPEG, PNG, GIF and WebP images are allowed")
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(in.Body, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", err
	}
	head = head[:n]
	detected := mimetype.Detect(head)
	if !isAllowedImage(detected.String()) {
		return "", invalid("file content is not a supported image")
	}

	key := s.objectKey(externalID, in.Kind, extensionFor(in.Filename, detected))
	body := io.MultiReader(bytes.NewReader(head), in.Body)
	return s.store.Upload(ctx, key, declared, body, in.Size)
}

func (s *MediaService) objectKey(externalID, kind, ext string) string {
	token := strings.ReplaceAll(uuid.NewString(), "-", "")
	name := externalID + "-" + token + "-" + strconv.FormatInt(s.now().UnixMilli(), 10) + ext
	if kind != "" {
		return kind + "/" + name
	}
	return name
}

// DeleteURLs removes each object. Failures are logged and otherwise ignored.
func (s *MediaService) DeleteURLs(ctx context.Context, urls []string) {
	for _, u := range urls {
		if u == "" {
			continue
		}
		if err := s.store.Delete(ctx, u); err != nil {
			slog.WarnContext(ctx, "Failed to delete media object", "url", u, "error", err)
		}
	}
}

func isAllowedImage(t string) bool {
	for _, a := range allowedImageTypes {
		if t == a {
			return true
		}
	}
	return false
}

func extensionFor(filename string, detected *mimetype.MIME) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" || len(ext) > 6 {
		return detected.Extension()
	}
	return ext
}
