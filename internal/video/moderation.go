package video

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/codecast/codecast/internal/httputil"
	"github.com/codecast/codecast/internal/model"
	"github.com/codecast/codecast/internal/store"
)

type statusRequest struct {
	Status string `json:"status"`
}

// AdminList gives platform-wide visibility. Like the public catalog, an
// omitted status filter means active only; pass pending/removed explicitly to
// review those queues.
func (h *Handler) AdminList(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	if status != "" && !model.ValidVideoStatus(status) {
		httputil.WriteFieldErrors(w, map[string]string{
			"status": "status must be active, pending, or removed",
		})
		return
	}

	videos, err := h.store.ListVideos(r.Context(), model.VideoFilter{Status: status})
	if err != nil {
		httputil.WriteError(w, http.StatusInternalServerError, "failed to list videos")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, videos)
}

// SetVideoStatus moves a video between moderation states. Any transition is
// allowed; the last admin write wins.
func (h *Handler) SetVideoStatus(w http.ResponseWriter, r *http.Request) {
	videoID := chi.URLParam(r, "id")

	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !model.ValidVideoStatus(req.Status) {
		httputil.WriteFieldErrors(w, map[string]string{
			"status": "status must be active, pending, or removed",
		})
		return
	}

	video, err := h.store.UpdateVideo(r.Context(), videoID, model.VideoUpdate{Status: &req.Status})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			httputil.WriteError(w, http.StatusNotFound, "video not found")
			return
		}
		httputil.WriteError(w, http.StatusInternalServerError, "failed to update status")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, video)
}

func (h *Handler) SetCommentStatus(w http.ResponseWriter, r *http.Request) {
	commentID := chi.URLParam(r, "id")

	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !model.ValidCommentStatus(req.Status) {
		httputil.WriteFieldErrors(w, map[string]string{
			"status": "status must be active, flagged, or removed",
		})
		return
	}

	if err := h.store.SetCommentStatus(r.Context(), commentID, req.Status); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			httputil.WriteError(w, http.StatusNotFound, "comment not found")
			return
		}
		httputil.WriteError(w, http.StatusInternalServerError, "failed to update status")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]string{"message": "comment status updated"})
}
