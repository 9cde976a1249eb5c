package video

import (
	"encoding/json"
	"fmt"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/codecast/codecast/internal/httputil"
)

const uploadURLExpiry = 15 * time.Minute

type uploadURLRequest struct {
	FileName      string `json:"fileName"`
	ContentType   string `json:"contentType"`
	ContentLength int64  `json:"contentLength"`
}

type uploadURLResponse struct {
	UploadURL string `json:"uploadUrl"`
	FileKey   string `json:"fileKey"`
}

func allowedUploadType(contentType string) bool {
	return strings.HasPrefix(contentType, "video/") || strings.HasPrefix(contentType, "image/")
}

// UploadURL hands out a presigned PUT URL for direct-to-bucket uploads. The
// returned file key is what the client stores as the video URL when it
// creates an "upload" embed.
func (h *Handler) UploadURL(w http.ResponseWriter, r *http.Request) {
	if h.storage == nil {
		httputil.WriteError(w, http.StatusServiceUnavailable, "file uploads are not configured")
		return
	}

	var req uploadURLRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	fields := map[string]string{}
	if req.FileName == "" {
		fields["fileName"] = "fileName is required"
	}
	if !allowedUploadType(req.ContentType) {
		fields["contentType"] = "contentType must be a video or image type"
	}
	if req.ContentLength <= 0 {
		fields["contentLength"] = "contentLength must be greater than zero"
	} else if h.maxUploadBytes > 0 && req.ContentLength > h.maxUploadBytes {
		fields["contentLength"] = fmt.Sprintf("file exceeds the maximum upload size of %d bytes", h.maxUploadBytes)
	}
	if len(fields) > 0 {
		httputil.WriteFieldErrors(w, fields)
		return
	}

	key := "uploads/" + uuid.NewString() + strings.ToLower(path.Ext(req.FileName))
	uploadURL, err := h.storage.GenerateUploadURL(r.Context(), key, req.ContentType, req.ContentLength, uploadURLExpiry)
	if err != nil {
		httputil.WriteError(w, http.StatusInternalServerError, "failed to generate upload URL")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, uploadURLResponse{
		UploadURL: uploadURL,
		FileKey:   key,
	})
}
