package video

import (
	"context"
	"time"

	"github.com/codecast/codecast/internal/geoip"
	"github.com/codecast/codecast/internal/store"
)

// ObjectStorage is the slice of blob storage the video handlers need. Nil
// storage disables the "upload" embed type.
type ObjectStorage interface {
	GenerateUploadURL(ctx context.Context, key string, contentType string, contentLength int64, expiry time.Duration) (string, error)
	GenerateDownloadURL(ctx context.Context, key string, expiry time.Duration) (string, error)
	DeleteObject(ctx context.Context, key string) error
}

type Handler struct {
	store          store.Store
	storage        ObjectStorage
	geoResolver    *geoip.Resolver
	maxUploadBytes int64
}

func NewHandler(st store.Store, objStorage ObjectStorage, maxUploadBytes int64) *Handler {
	return &Handler{
		store:          st,
		storage:        objStorage,
		maxUploadBytes: maxUploadBytes,
	}
}

func (h *Handler) SetGeoResolver(r *geoip.Resolver) {
	h.geoResolver = r
}
