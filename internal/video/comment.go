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
	"github.com/codecast/codecast/internal/validate"
)

type postCommentRequest struct {
	Content  string  `json:"content"`
	ParentID *string `json:"parentId"`
}

func (h *Handler) ListComments(w http.ResponseWriter, r *http.Request) {
	videoID := chi.URLParam(r, "id")

	if _, err := h.store.GetVideo(r.Context(), videoID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			httputil.WriteError(w, http.StatusNotFound, "video not found")
			return
		}
		httputil.WriteError(w, http.StatusInternalServerError, "failed to load video")
		return
	}

	comments, err := h.store.ListComments(r.Context(), videoID)
	if err != nil {
		httputil.WriteError(w, http.StatusInternalServerError, "failed to list comments")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, comments)
}

func (h *Handler) PostComment(w http.ResponseWriter, r *http.Request) {
	videoID := chi.URLParam(r, "id")

	var req postCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if msg := validate.CommentContent(req.Content); msg != "" {
		httputil.WriteFieldErrors(w, map[string]string{"content": msg})
		return
	}

	comment, err := h.store.CreateComment(r.Context(), model.NewComment{
		VideoID:  videoID,
		UserID:   auth.UserIDFromContext(r.Context()),
		Content:  req.Content,
		ParentID: req.ParentID,
	})
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			httputil.WriteError(w, http.StatusNotFound, "video not found")
		case errors.Is(err, store.ErrInvalidParent):
			httputil.WriteFieldErrors(w, map[string]string{
				"parentId": "parent must be a top-level comment on the same video",
			})
		default:
			httputil.WriteError(w, http.StatusInternalServerError, "failed to create comment")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, comment)
}
