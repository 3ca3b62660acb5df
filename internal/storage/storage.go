// Package storage uploads post images and returns a URL they can be
// retrieved from.
package storage

import (
	"context"
	"encoding/base64"
	"strings"

	"github.com/sakif/bloom/internal/apperror"
)

// MaxImageBytes caps a decoded upload.
const MaxImageBytes = 5 << 20

// ImageStore stores an image and returns its public URL.
type ImageStore interface {
	Upload(ctx context.Context, name string, data []byte, contentType string) (string, error)
}

var extensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// ExtensionFor returns the file extension of a supported image type.
func ExtensionFor(contentType string) (string, bool) {
	ext, ok := extensions[contentType]
	return ext, ok
}

// DecodeDataURI decodes the "data:image/png;base64,...." payload the upload
// dialog sends. Unsupported types and oversized images are validation
// errors.
func DecodeDataURI(uri string) ([]byte, string, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return nil, "", apperror.ValidationFailed("image", "Image must be a data URI.")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, "", apperror.ValidationFailed("image", "Image must be a data URI.")
	}
	contentType, isBase64 := strings.CutSuffix(meta, ";base64")
	if !isBase64 {
		return nil, "", apperror.ValidationFailed("image", "Image must be base64 encoded.")
	}
	if _, ok := ExtensionFor(contentType); !ok {
		return nil, "", apperror.ValidationFailed("image", "Image must be a PNG, JPEG, GIF or WebP file.")
	}

	if base64.StdEncoding.DecodedLen(len(payload)) > MaxImageBytes+3 {
		return nil, "", apperror.ValidationFailed("image", "Image must be 5 MB or smaller.")
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", apperror.ValidationFailed("image", "Image data is not valid base64.")
	}
	if len(data) == 0 {
		return nil, "", apperror.ValidationFailed("image", "Image is empty.")
	}
	if len(data) > MaxImageBytes {
		return nil, "", apperror.ValidationFailed("image", "Image must be 5 MB or smaller.")
	}

	return data, contentType, nil
}
