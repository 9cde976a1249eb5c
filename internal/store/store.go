// Package store defines the persistence contract shared by the in-memory and
// postgres backends. Handlers depend only on this interface; the backend is
// picked once at process start.
package store

import (
	"context"
	"errors"

	"github.com/codecast/codecast/internal/model"
)

var (
	// ErrNotFound signals that a referenced entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict signals a unique-field collision (username, email).
	ErrConflict = errors.New("already exists")
	// ErrInvalidParent signals a reply whose parent is missing, belongs to a
	// different video, or is itself a reply. Nesting is one level deep.
	ErrInvalidParent = errors.New("invalid parent comment")
)

type Store interface {
	// Users
	GetUser(ctx context.Context, id string) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	CreateUser(ctx context.Context, u model.NewUser) (*model.User, error)

	// Videos
	ListVideos(ctx context.Context, f model.VideoFilter) ([]model.Video, error)
	GetVideo(ctx context.Context, id string) (*model.Video, error)
	CreateVideo(ctx context.Context, v model.NewVideo) (*model.Video, error)
	UpdateVideo(ctx context.Context, id string, upd model.VideoUpdate) (*model.Video, error)
	DeleteVideo(ctx context.Context, id string) error
	IncrementViews(ctx context.Context, id string) error
	AddReaction(ctx context.Context, id string, like bool) (*model.Video, error)

	// View analytics
	RecordView(ctx context.Context, view model.VideoView) error
	VideoStats(ctx context.Context, videoID string) (*model.VideoStats, error)

	// Comments
	ListComments(ctx context.Context, videoID string) ([]model.Comment, error)
	CreateComment(ctx context.Context, c model.NewComment) (*model.Comment, error)
	SetCommentStatus(ctx context.Context, id, status string) error

	// Watch history
	ListWatchHistory(ctx context.Context, userID string) ([]model.WatchHistoryEntry, error)
	UpsertWatchHistory(ctx context.Context, e model.WatchHistoryUpsert) (*model.WatchHistoryEntry, error)
	RemoveWatchHistory(ctx context.Context, userID, videoID string) error

	// Watch later
	ListWatchLater(ctx context.Context, userID string) ([]model.WatchLaterEntry, error)
	AddWatchLater(ctx context.Context, userID, videoID string) (*model.WatchLaterEntry, error)
	RemoveWatchLater(ctx context.Context, userID, videoID string) error
}
