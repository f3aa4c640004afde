package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/url"
	"path"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
)

// GCSImageStore keeps product images in a Cloud Storage bucket. Objects are
// expected to be publicly readable through bucket IAM, so the stored URL is
// the plain public object URL.
type GCSImageStore struct {
	Client        *storage.Client
	Bucket        string
	Prefix        string
	PublicBaseURL string
}

func NewGCSImageStore(client *storage.Client, bucket, publicBaseURL string) *GCSImageStore {
	base := strings.TrimRight(strings.TrimSpace(publicBaseURL), "/")
	if base == "" {
		base = "https://storage.googleapis.com"
	}
	return &GCSImageStore{
		Client:        client,
		Bucket:        strings.TrimSpace(bucket),
		Prefix:        "products",
		PublicBaseURL: base,
	}
}

func (s *GCSImageStore) bucket() (*storage.BucketHandle, error) {
	if s == nil || s.Client == nil {
		return nil, errors.New("gcs image store: storage client is nil")
	}
	if s.Bucket == "" {
		return nil, errors.New("gcs image store: bucket is empty")
	}
	return s.Client.Bucket(s.Bucket), nil
}

// Upload writes the image and returns its public URL.
func (s *GCSImageStore) Upload(ctx context.Context, fileName, contentType string, data []byte) (string, error) {
	bh, err := s.bucket()
	if err != nil {
		return "", err
	}

	objectPath := ObjectPath(s.Prefix, fileName, contentType)
	w := bh.Object(objectPath).NewWriter(ctx)
	w.ContentType = contentType
	w.CacheControl = "public, max-age=31536000"

	if _, err := io.Copy(w, bytes.NewReader(data)); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("gcs image store: write %s: %w", objectPath, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("gcs image store: close %s: %w", objectPath, err)
	}

	return s.PublicURL(objectPath), nil
}

// Delete removes the object behind a URL produced by Upload. URLs that do
// not point into this bucket are ignored; a missing object is not an error.
func (s *GCSImageStore) Delete(ctx context.Context, imageURL string) error {
	bh, err := s.bucket()
	if err != nil {
		return err
	}
	objectPath, ok := ObjectPathFromURL(s.PublicBaseURL, s.Bucket, imageURL)
	if !ok {
		log.Printf("gcs image store: skip delete of foreign url %q", imageURL)
		return nil
	}
	if err := bh.Object(objectPath).Delete(ctx); err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return fmt.Errorf("gcs image store: delete %s: %w", objectPath, err)
	}
	return nil
}

func (s *GCSImageStore) PublicURL(objectPath string) string {
	return s.PublicBaseURL + "/" + s.Bucket + "/" + objectPath
}

// ObjectPath builds "<prefix>/<uuid>-<name>" with a sanitized name and an
// extension derived from contentType when the name has none.
func ObjectPath(prefix, fileName, contentType string) string {
	name := ensureExtensionByMIME(sanitizePathSegment(fileName), contentType)
	if name == "" {
		name = ensureExtensionByMIME("image", contentType)
	}
	return strings.Trim(prefix, "/") + "/" + uuid.NewString() + "-" + name
}

// ObjectPathFromURL extracts the object path from a public URL of bucket.
func ObjectPathFromURL(publicBaseURL, bucket, imageURL string) (string, bool) {
	u, err := url.Parse(imageURL)
	if err != nil {
		return "", false
	}
	base, err := url.Parse(strings.TrimRight(publicBaseURL, "/"))
	if err != nil || u.Host != base.Host {
		return "", false
	}

	prefix := strings.TrimRight(base.Path, "/") + "/" + bucket + "/"
	if !strings.HasPrefix(u.Path, prefix) {
		return "", false
	}
	objectPath := strings.TrimPrefix(u.Path, prefix)
	if objectPath == "" {
		return "", false
	}
	return objectPath, true
}

// sanitizePathSegment strips separators and surrounding dots or spaces.
func sanitizePathSegment(s string) string {
	s = strings.TrimSpace(path.Base(strings.ReplaceAll(s, "\\", "/")))
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.Trim(s, ". ")
	if s == "/" {
		return ""
	}
	return s
}

func ensureExtensionByMIME(fileName, mime string) string {
	if fileName == "" || strings.Contains(fileName, ".") {
		return fileName
	}
	switch mime {
	case "image/jpeg":
		return fileName + ".jpg"
	case "image/png":
		return fileName + ".png"
	case "image/webp":
		return fileName + ".webp"
	}
	return fileName
}
