package video

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/codecast/codecast/internal/auth"
	"github.com/codecast/codecast/internal/httputil"
	"github.com/codecast/codecast/internal/logger"
	"github.com/codecast/codecast/internal/model"
	"github.com/codecast/codecast/internal/store"
	"github.com/codecast/codecast/internal/validate"
)

const defaultPageSize = 50
const maxPageSize = 100

type createVideoRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	URL         string   `json:"url"`
	EmbedType   string   `json:"embedType"`
	Thumbnail   *string  `json:"thumbnail"`
	Duration    *string  `json:"duration"`
	Category    string   `json:"category"`
	Difficulty  string   `json:"difficulty"`
	Tags        []string `json:"tags"`
	Status      string   `json:"status"`
}

type updateVideoRequest struct {
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	URL         *string   `json:"url"`
	EmbedType   *string   `json:"embedType"`
	Thumbnail   *string   `json:"thumbnail"`
	Duration    *string   `json:"duration"`
	Category    *string   `json:"category"`
	Difficulty  *string   `json:"difficulty"`
	Tags        *[]string `json:"tags"`
	Status      *string   `json:"status"`
}

// videoDetail wraps a video with a resolved playback URL for uploads.
type videoDetail struct {
	model.Video
	PlaybackURL string `json:"playbackUrl,omitempty"`
}

func parseListFilter(r *http.Request) model.VideoFilter {
	q := r.URL.Query()

	limit := defaultPageSize
	if l, err := strconv.Atoi(q.Get("limit")); err == nil && l > 0 {
		limit = l
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	offset := 0
	if o, err := strconv.Atoi(q.Get("offset")); err == nil && o > 0 {
		offset = o
	}

	return model.VideoFilter{
		Category:   q.Get("category"),
		Difficulty: q.Get("difficulty"),
		Tag:        q.Get("tag"),
		Search:     strings.TrimSpace(q.Get("search")),
		Limit:      limit,
		Offset:     offset,
	}
}

// List is the public catalog: active videos only, newest first.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	videos, err := h.store.ListVideos(r.Context(), parseListFilter(r))
	if err != nil {
		httputil.WriteError(w, http.StatusInternalServerError, "failed to list videos")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, videos)
}

// Get returns a single video and counts the view. Every fetch increments the
// counter by exactly one; there is no per-viewer dedup on the counter itself.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
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

	if err := h.store.IncrementViews(r.Context(), videoID); err != nil {
		logger.Log.Errorw("video: failed to increment views", "video_id", videoID, "error", err)
	}

	h.recordView(r, videoID)

	detail := videoDetail{Video: *video}
	if video.EmbedType == model.EmbedUpload && h.storage != nil {
		if u, err := h.storage.GenerateDownloadURL(r.Context(), video.URL, 1*time.Hour); err == nil {
			detail.PlaybackURL = u
		}
	}

	httputil.WriteJSON(w, http.StatusOK, detail)
}

func validateCreate(req createVideoRequest) map[string]string {
	fields := map[string]string{}
	if msg := validate.Title(req.Title); msg != "" {
		fields["title"] = msg
	}
	if msg := validate.Description(req.Description); msg != "" {
		fields["description"] = msg
	}
	if msg := validate.EmbedType(req.EmbedType); msg != "" {
		fields["embedType"] = msg
	}
	// Uploaded videos reference an object key, not a URL.
	if req.EmbedType != model.EmbedUpload {
		if msg := validate.URL(req.URL, "url"); msg != "" {
			fields["url"] = msg
		}
	} else if req.URL == "" {
		fields["url"] = "file key is required for uploads"
	}
	if req.Thumbnail != nil {
		if msg := validate.URL(*req.Thumbnail, "thumbnail"); msg != "" {
			fields["thumbnail"] = msg
		}
	}
	if req.Duration != nil {
		if msg := validate.Duration(*req.Duration); msg != "" {
			fields["duration"] = msg
		}
	}
	if msg := validate.Category(req.Category); msg != "" {
		fields["category"] = msg
	}
	if msg := validate.Difficulty(req.Difficulty); msg != "" {
		fields["difficulty"] = msg
	}
	if msg := validate.Tags(req.Tags); msg != "" {
		fields["tags"] = msg
	}
	if req.Status != "" && !model.ValidVideoStatus(req.Status) {
		fields["status"] = "status must be active, pending, or removed"
	}
	return fields
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createVideoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if fields := validateCreate(req); len(fields) > 0 {
		httputil.WriteFieldErrors(w, fields)
		return
	}

	status := req.Status
	if status == "" {
		status = model.VideoStatusActive
	}

	video, err := h.store.CreateVideo(r.Context(), model.NewVideo{
		CreatorID:   auth.UserIDFromContext(r.Context()),
		Title:       req.Title,
		Description: req.Description,
		URL:         req.URL,
		EmbedType:   req.EmbedType,
		Thumbnail:   req.Thumbnail,
		Duration:    req.Duration,
		Category:    req.Category,
		Difficulty:  req.Difficulty,
		Tags:        req.Tags,
		Status:      status,
	})
	if err != nil {
		httputil.WriteError(w, http.StatusInternalServerError, "failed to create video")
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, video)
}

// canManage reports whether the caller owns the video or is an admin.
func canManage(r *http.Request, v *model.Video) bool {
	return v.CreatorID == auth.UserIDFromContext(r.Context()) ||
		auth.RoleFromContext(r.Context()) == model.RoleAdmin
}

func validateUpdate(req updateVideoRequest) map[string]string {
	fields := map[string]string{}
	if req.Title != nil {
		if msg := validate.Title(*req.Title); msg != "" {
			fields["title"] = msg
		}
	}
	if req.Description != nil {
		if msg := validate.Description(*req.Description); msg != "" {
			fields["description"] = msg
		}
	}
	if req.EmbedType != nil {
		if msg := validate.EmbedType(*req.EmbedType); msg != "" {
			fields["embedType"] = msg
		}
	}
	if req.URL != nil {
		if msg := validate.URL(*req.URL, "url"); msg != "" {
			fields["url"] = msg
		}
	}
	if req.Thumbnail != nil {
		if msg := validate.URL(*req.Thumbnail, "thumbnail"); msg != "" {
			fields["thumbnail"] = msg
		}
	}
	if req.Duration != nil {
		if msg := validate.Duration(*req.Duration); msg != "" {
			fields["duration"] = msg
		}
	}
	if req.Category != nil {
		if msg := validate.Category(*req.Category); msg != "" {
			fields["category"] = msg
		}
	}
	if req.Difficulty != nil {
		if msg := validate.Difficulty(*req.Difficulty); msg != "" {
			fields["difficulty"] = msg
		}
	}
	if req.Tags != nil {
		if msg := validate.Tags(*req.Tags); msg != "" {
			fields["tags"] = msg
		}
	}
	if req.Status != nil && !model.ValidVideoStatus(*req.Status) {
		fields["status"] = "status must be active, pending, or removed"
	}
	return fields
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
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
		httputil.WriteError(w, http.StatusForbidden, "you don't have permission to update this video")
		return
	}

	var req updateVideoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if fields := validateUpdate(req); len(fields) > 0 {
		httputil.WriteFieldErrors(w, fields)
		return
	}

	updated, err := h.store.UpdateVideo(r.Context(), videoID, model.VideoUpdate{
		Title:       req.Title,
		Description: req.Description,
		URL:         req.URL,
		EmbedType:   req.EmbedType,
		Thumbnail:   req.Thumbnail,
		Duration:    req.Duration,
		Category:    req.Category,
		Difficulty:  req.Difficulty,
		Tags:        req.Tags,
		Status:      req.Status,
	})
	if err != nil {
		httputil.WriteError(w, http.StatusInternalServerError, "failed to update video")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, updated)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
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
		httputil.WriteError(w, http.StatusForbidden, "you don't have permission to delete this video")
		return
	}

	if err := h.store.DeleteVideo(r.Context(), videoID); err != nil {
		httputil.WriteError(w, http.StatusInternalServerError, "failed to delete video")
		return
	}

	if video.EmbedType == model.EmbedUpload && h.storage != nil {
		if err := h.storage.DeleteObject(r.Context(), video.URL); err != nil {
			logger.Log.Errorw("video: failed to delete object", "key", video.URL, "error", err)
		}
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]string{"message": "video deleted"})
}

type likeRequest struct {
	IsLike *bool `json:"isLike"`
}

// Like bumps the like or dislike counter. Calls are not deduplicated per user
// and there is no way to take a reaction back; this mirrors the product
// behavior rather than a missing feature.
func (h *Handler) Like(w http.ResponseWriter, r *http.Request) {
	videoID := chi.URLParam(r, "id")

	var req likeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.IsLike == nil {
		httputil.WriteFieldErrors(w, map[string]string{"isLike": "isLike must be a boolean"})
		return
	}

	video, err := h.store.AddReaction(r.Context(), videoID, *req.IsLike)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			httputil.WriteError(w, http.StatusNotFound, "video not found")
			return
		}
		httputil.WriteError(w, http.StatusInternalServerError, "failed to record reaction")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, video)
}

// CreatorList lists the caller's own videos across all moderation states, so
// the dashboard shows pending and removed uploads too.
func (h *Handler) CreatorList(w http.ResponseWriter, r *http.Request) {
	videos, err := h.store.ListVideos(r.Context(), model.VideoFilter{
		CreatorID: auth.UserIDFromContext(r.Context()),
		Status:    model.StatusAny,
	})
	if err != nil {
		httputil.WriteError(w, http.StatusInternalServerError, "failed to list videos")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, videos)
}
