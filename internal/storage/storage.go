// Package storage writes customization images to a local directory that the API serves
// under a public base URL.
package storage

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"storefront/internal/domain"

	"github.com/google/uuid"
)

// Image is decoded image content with the file extension it should be stored under.
type Image struct {
	Data []byte
	Ext  string
}

var extensions = map[string]string{
	"png":  "png",
	"jpeg": "jpg",
	"jpg":  "jpg",
	"webp": "webp",
}

// DecodeDataURL parses "data:image/<type>;base64,<payload>". Unknown image types are stored as png.
func DecodeDataURL(s string) (Image, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "data:image") {
		return Image{}, domain.Invalid("image", "expected a base64 image data URL")
	}
	header, payload, ok := strings.Cut(s, ";base64,")
	if !ok {
		return Image{}, domain.Invalid("image", "expected a base64 image data URL")
	}
	ext := "png"
	if _, mime, ok := strings.Cut(header, "/"); ok {
		if e, known := extensions[strings.ToLower(mime)]; known {
			ext = e
		}
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return Image{}, domain.Invalid("image", "invalid base64 payload")
	}
	if len(data) == 0 {
		return Image{}, domain.Invalid("image", "empty image")
	}
	return Image{Data: data, Ext: ext}, nil
}

// Local stores files below Dir and links them below BaseURL.
type Local struct {
	dir     string
	baseURL string
	maxSize int64
}

func NewLocal(dir, baseURL string, maxSize int64) (*Local, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Local{dir: dir, baseURL: strings.TrimRight(baseURL, "/"), maxSize: maxSize}, nil
}

// Dir is the directory served as the upload root.
func (l *Local) Dir() string { return l.dir }

// SaveCustomization writes img under products/custom_designs/<user>/<product> and returns its URL.
func (l *Local) SaveCustomization(ctx context.Context, userID, productID int64, kind string, img Image) (string, error) {
	key := path.Join(
		"products", "custom_designs",
		fmt.Sprint(userID), fmt.Sprint(productID),
		fmt.Sprintf("%s-%s.%s", uuid.NewString(), kind, img.Ext),
	)
	return l.Put(ctx, key, img.Data)
}

// Put writes data at key and returns the public URL.
func (l *Local) Put(ctx context.Context, key string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if l.maxSize > 0 && int64(len(data)) > l.maxSize {
		return "", domain.Invalid("image", fmt.Sprintf("larger than %d bytes", l.maxSize))
	}
	clean := path.Clean("/" + key)[1:]
	if clean == "" || strings.HasPrefix(clean, "..") {
		return "", fmt.Errorf("invalid storage key %q", key)
	}

	full := filepath.Join(l.dir, filepath.FromSlash(clean))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", err
	}
	tmp, err := os.CreateTemp(filepath.Dir(full), ".upload-*")
	if err != nil {
		return "", err
	}
	if _, err := bytes.NewReader(data).WriteTo(tmp); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	if err := os.Rename(tmp.Name(), full); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	return l.baseURL + "/" + clean, nil
}
