package media

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"

	"github.com/gabriel-vasile/mimetype"
)

// MaxImageSize caps a single product image upload.
const MaxImageSize = 5 << 20

var (
	ErrImageTooLarge       = fmt.Errorf("image exceeds %d MiB", MaxImageSize>>20)
	ErrUnsupportedFileType = errors.New("unsupported file type")
)

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// DetectImageType sniffs the content and returns its MIME type when it is an
// accepted image format.
func DetectImageType(data []byte) (string, error) {
	mt := mimetype.Detect(data)
	for m := mt; m != nil; m = m.Parent() {
		if allowedImageTypes[m.String()] {
			return m.String(), nil
		}
	}
	return "", ErrUnsupportedFileType
}

// ReadImage reads an uploaded file, enforcing the size limit and the
// accepted formats. The declared Content-Type of the part is ignored.
func ReadImage(fh *multipart.FileHeader) ([]byte, string, error) {
	if fh.Size > MaxImageSize {
		return nil, "", ErrImageTooLarge
	}
	f, err := fh.Open()
	if err != nil {
		return nil, "", err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, MaxImageSize+1))
	if err != nil {
		return nil, "", err
	}
	if len(data) > MaxImageSize {
		return nil, "", ErrImageTooLarge
	}

	contentType, err := DetectImageType(data)
	if err != nil {
		return nil, "", err
	}
	return data, contentType, nil
}
