package video

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/mssola/useragent"

	"github.com/codecast/codecast/internal/httputil"
	"github.com/codecast/codecast/internal/logger"
	"github.com/codecast/codecast/internal/model"
	"github.com/codecast/codecast/internal/store"
)

func viewerHash(ip, userAgent string) string {
	h := sha256.Sum256([]byte(ip + "|" + userAgent))
	return fmt.Sprintf("%x", h[:8])
}

func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		if first, _, ok := strings.Cut(forwarded, ","); ok {
			return strings.TrimSpace(first)
		}
		return strings.TrimSpace(forwarded)
	}
	host := r.RemoteAddr
	if i := strings.LastIndex(host, ":"); i > 0 {
		host = host[:i]
	}
	return host
}

func parseBrowser(uaString string) string {
	ua := useragent.New(uaString)
	name, _ := ua.Browser()
	return name
}

func parseDevice(uaString string) string {
	ua := useragent.New(uaString)
	switch {
	case ua.Bot():
		return "bot"
	case ua.Mobile():
		return "mobile"
	default:
		return "desktop"
	}
}

// recordView stores a per-viewer analytics row. It runs off the request
// goroutine so a slow insert or geo lookup never delays the response.
func (h *Handler) recordView(r *http.Request, videoID string) {
	ip := clientIP(r)
	uaString := r.UserAgent()

	view := model.VideoView{
		VideoID:    videoID,
		ViewerHash: viewerHash(ip, uaString),
		Browser:    parseBrowser(uaString),
		Device:     parseDevice(uaString),
	}
	view.Country, view.City = h.geoResolver.Lookup(ip)

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := h.store.RecordView(ctx, view); err != nil && !errors.Is(err, store.ErrNotFound) {
			logger.Log.Errorw("failed to record video view", "videoId", videoID, "error", err)
		}
	}()
}

func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	videoID := chi.URLParam(r, "id")

	video, err := h.store.GetVideo(r.Context(), videoID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			httputil.WriteError(w, http.StatusNotFound, "video not found")
			return
		}
		httputil.WriteError(w, http.StatusInternalServerError, "failed to load video")
		return
	}

	if !canManage(r, video) {
		httputil.WriteError(w, http.StatusForbidden, "you don't have permission to view stats for this video")
		return
	}

	stats, err := h.store.VideoStats(r.Context(), videoID)
	if err != nil {
		httputil.WriteError(w, http.StatusInternalServerError, "failed to load video stats")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, stats)
}
