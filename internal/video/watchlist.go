package video

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/codecast/codecast/internal/auth"
	"github.com/codecast/codecast/internal/httputil"
	"github.com/codecast/codecast/internal/model"
	"github.com/codecast/codecast/internal/store"
)

type watchHistoryRequest struct {
	VideoID   string `json:"videoId"`
	Progress  int    `json:"progress"` // seconds elapsed
	Completed bool   `json:"completed"`
}

type watchLaterRequest struct {
	VideoID string `json:"videoId"`
}

func (h *Handler) WatchHistoryList(w http.ResponseWriter, r *http.Request) {
	entries, err := h.store.ListWatchHistory(r.Context(), auth.UserIDFromContext(r.Context()))
	if err != nil {
		httputil.WriteError(w, http.StatusInternalServerError, "failed to list watch history")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, entries)
}

// WatchHistoryUpsert records playback progress. Repeated posts for the same
// video overwrite the previous entry instead of accumulating rows.
func (h *Handler) WatchHistoryUpsert(w http.ResponseWriter, r *http.Request) {
	var req watchHistoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	fields := map[string]string{}
	if req.VideoID == "" {
		fields["videoId"] = "videoId is required"
	}
	if req.Progress < 0 {
		fields["progress"] = "progress must be zero or more seconds"
	}
	if len(fields) > 0 {
		httputil.WriteFieldErrors(w, fields)
		return
	}

	if _, err := h.store.GetVideo(r.Context(), req.VideoID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			httputil.WriteError(w, http.StatusNotFound, "video not found")
			return
		}
		httputil.WriteError(w, http.StatusInternalServerError, "failed to load video")
		return
	}

	entry, err := h.store.UpsertWatchHistory(r.Context(), model.WatchHistoryUpsert{
		UserID:    auth.UserIDFromContext(r.Context()),
		VideoID:   req.VideoID,
		Progress:  req.Progress,
		Completed: req.Completed,
	})
	if err != nil {
		httputil.WriteError(w, http.StatusInternalServerError, "failed to save watch history")
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, entry)
}

func (h *Handler) WatchHistoryRemove(w http.ResponseWriter, r *http.Request) {
	videoID := chi.URLParam(r, "videoId")

	err := h.store.RemoveWatchHistory(r.Context(), auth.UserIDFromContext(r.Context()), videoID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			httputil.WriteError(w, http.StatusNotFound, "watch history entry not found")
			return
		}
		httputil.WriteError(w, http.StatusInternalServerError, "failed to remove watch history entry")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]string{"message": "removed from watch history"})
}

func (h *Handler) WatchLaterList(w http.ResponseWriter, r *http.Request) {
	entries, err := h.store.ListWatchLater(r.Context(), auth.UserIDFromContext(r.Context()))
	if err != nil {
		httputil.WriteError(w, http.StatusInternalServerError, "failed to list watch later")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, entries)
}

// WatchLaterAdd is idempotent: adding a video twice returns the existing
// entry with a 200 instead of erroring or duplicating.
func (h *Handler) WatchLaterAdd(w http.ResponseWriter, r *http.Request) {
	var req watchLaterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.VideoID == "" {
		httputil.WriteFieldErrors(w, map[string]string{"videoId": "videoId is required"})
		return
	}

	entry, err := h.store.AddWatchLater(r.Context(), auth.UserIDFromContext(r.Context()), req.VideoID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			httputil.WriteError(w, http.StatusNotFound, "video not found")
			return
		}
		httputil.WriteError(w, http.StatusInternalServerError, "failed to add to watch later")
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, entry)
}

func (h *Handler) WatchLaterRemove(w http.ResponseWriter, r *http.Request) {
	videoID := chi.URLParam(r, "videoId")

	err := h.store.RemoveWatchLater(r.Context(), auth.UserIDFromContext(r.Context()), videoID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			httputil.WriteError(w, http.StatusNotFound, "watch later entry not found")
			return
		}
		httputil.WriteError(w, http.StatusInternalServerError, "failed to remove watch later entry")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]string{"message": "removed from watch later"})
}
