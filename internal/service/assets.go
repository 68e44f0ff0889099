// Package service holds the business operations behind the admin api.
package service

import (
	"context"
	"net/http"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/talkincode/toughpos/internal/domain"
	"github.com/talkincode/toughpos/internal/repository"
	"github.com/talkincode/toughpos/internal/storage"
)

// MaxImageSize is the largest accepted upload, 5 MB.
const MaxImageSize = 5 << 20

// Upload is an image received with a create or update request.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// checkImage validates an optional upload. required is true on create.
func checkImage(img *Upload, required bool) []domain.FieldError {
	if img == nil {
		if required {
			return []domain.FieldError{{Field: "image", Message: "Image is required"}}
		}
		return nil
	}
	var errs []domain.FieldError
	switch {
	case len(img.Data) == 0:
		errs = append(errs, domain.FieldError{Field: "image", Message: "Image is empty"})
	case len(img.Data) > MaxImageSize:
		errs = append(errs, domain.FieldError{Field: "image", Message: "Image exceeds capacity"})
	case !strings.HasPrefix(http.DetectContentType(img.Data), "image/"):
		errs = append(errs, domain.FieldError{Field: "image", Message: "File must be an image"})
	}
	return errs
}

// assetKeeper stores uploaded images and removes the ones no row holds anymore.
// Each upload gets its own path, so a blob belongs to exactly one row.
type assetKeeper struct {
	store storage.Store
	refs  repository.ImageRefs
}

func (k assetKeeper) put(ctx context.Context, img *Upload) (string, error) {
	p := storage.UploadPath(img.Filename)
	contentType := img.ContentType
	if contentType == "" {
		contentType = http.DetectContentType(img.Data)
	}
	if err := k.store.Put(ctx, p, img.Data, contentType); err != nil {
		return "", errors.Wrap(err, "store image")
	}
	return p, nil
}

// swap stores img under a new path and releases old.
// The caller's row still references old, hence the single holder.
func (k assetKeeper) swap(ctx context.Context, old string, img *Upload) (string, error) {
	p, err := k.put(ctx, img)
	if err != nil {
		return "", err
	}
	if old != "" && old != p {
		k.release(ctx, old, 1)
	}
	return p, nil
}

// release deletes path unless more than holders rows still reference it.
// Rows written outside this service may still share a path.
// Failures are logged; the orphan collector retries later.
func (k assetKeeper) release(ctx context.Context, path string, holders int64) {
	if path == "" {
		return
	}
	refs, err := k.refs.CountImageRefs(ctx, path)
	if err != nil {
		zap.L().Warn("count image references failed", zap.String("path", path), zap.Error(err))
		return
	}
	if refs > holders {
		return
	}
	if err := k.store.Delete(ctx, path); err != nil {
		zap.L().Warn("delete image failed", zap.String("path", path), zap.Error(err))
	}
}
