package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codecast/codecast/internal/model"
	"github.com/codecast/codecast/internal/store"
)

func newVideo(creatorID, title string) model.NewVideo {
	return model.NewVideo{
		CreatorID:   creatorID,
		Title:       title,
		Description: "A walkthrough of building concurrent pipelines in Go.",
		URL:         "https://www.youtube.com/watch?v=abc123",
		EmbedType:   model.EmbedYouTube,
		Category:    "Backend",
		Difficulty:  model.DifficultyIntermediate,
		Tags:        []string{"go", "concurrency"},
		Status:      model.VideoStatusActive,
	}
}

func TestCreateUserConflicts(t *testing.T) {
	s := New()
	ctx := context.Background()

	_, err := s.CreateUser(ctx, model.NewUser{Username: "casey", Email: "casey@example.com", PasswordHash: "x", Role: model.RoleViewer})
	require.NoError(t, err)

	_, err = s.CreateUser(ctx, model.NewUser{Username: "casey", Email: "other@example.com", PasswordHash: "x", Role: model.RoleViewer})
	assert.ErrorIs(t, err, store.ErrConflict, "duplicate username")

	_, err = s.CreateUser(ctx, model.NewUser{Username: "other", Email: "casey@example.com", PasswordHash: "x", Role: model.RoleViewer})
	assert.ErrorIs(t, err, store.ErrConflict, "duplicate email")
}

func TestGetUserByUsername(t *testing.T) {
	s := New()
	ctx := context.Background()

	created, err := s.CreateUser(ctx, model.NewUser{Username: "casey", Email: "casey@example.com", PasswordHash: "x", Role: model.RoleCreator})
	require.NoError(t, err)

	got, err := s.GetUserByUsername(ctx, "casey")
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	_, err = s.GetUserByUsername(ctx, "ghost")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestListVideosDefaultsToActive(t *testing.T) {
	s := New()
	ctx := context.Background()

	active, err := s.CreateVideo(ctx, newVideo("creator-1", "Active video"))
	require.NoError(t, err)

	pending := newVideo("creator-1", "Pending video")
	pending.Status = model.VideoStatusPending
	_, err = s.CreateVideo(ctx, pending)
	require.NoError(t, err)

	removed := newVideo("creator-1", "Removed video")
	removed.Status = model.VideoStatusRemoved
	_, err = s.CreateVideo(ctx, removed)
	require.NoError(t, err)

	videos, err := s.ListVideos(ctx, model.VideoFilter{})
	require.NoError(t, err)
	require.Len(t, videos, 1)
	assert.Equal(t, active.ID, videos[0].ID)

	all, err := s.ListVideos(ctx, model.VideoFilter{Status: model.StatusAny})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	pendingOnly, err := s.ListVideos(ctx, model.VideoFilter{Status: model.VideoStatusPending})
	require.NoError(t, err)
	assert.Len(t, pendingOnly, 1)
}

func TestListVideosFilters(t *testing.T) {
	s := New()
	ctx := context.Background()

	v1 := newVideo("creator-1", "Goroutines deep dive")
	v1.Category = "Backend"
	v1.Tags = []string{"Go", "concurrency"}
	_, err := s.CreateVideo(ctx, v1)
	require.NoError(t, err)

	v2 := newVideo("creator-2", "React hooks explained")
	v2.Category = "Frontend"
	v2.Difficulty = model.DifficultyBeginner
	v2.Tags = []string{"react", "hooks"}
	v2.Description = "Everything about hooks, from useState to custom hooks."
	_, err = s.CreateVideo(ctx, v2)
	require.NoError(t, err)

	byCreator, err := s.ListVideos(ctx, model.VideoFilter{CreatorID: "creator-2"})
	require.NoError(t, err)
	require.Len(t, byCreator, 1)
	assert.Equal(t, "React hooks explained", byCreator[0].Title)

	byCategory, err := s.ListVideos(ctx, model.VideoFilter{Category: "Backend"})
	require.NoError(t, err)
	assert.Len(t, byCategory, 1)

	byDifficulty, err := s.ListVideos(ctx, model.VideoFilter{Difficulty: model.DifficultyBeginner})
	require.NoError(t, err)
	assert.Len(t, byDifficulty, 1)

	// Tag match is case-insensitive.
	byTag, err := s.ListVideos(ctx, model.VideoFilter{Tag: "go"})
	require.NoError(t, err)
	assert.Len(t, byTag, 1)

	// Search spans title and description.
	bySearch, err := s.ListVideos(ctx, model.VideoFilter{Search: "USESTATE"})
	require.NoError(t, err)
	require.Len(t, bySearch, 1)
	assert.Equal(t, "React hooks explained", bySearch[0].Title)

	none, err := s.ListVideos(ctx, model.VideoFilter{Search: "kubernetes"})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestListVideosPagination(t *testing.T) {
	s := New()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := s.CreateVideo(ctx, newVideo("creator-1", "Video number "+string(rune('A'+i))))
		require.NoError(t, err)
	}

	page, err := s.ListVideos(ctx, model.VideoFilter{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, page, 2)

	rest, err := s.ListVideos(ctx, model.VideoFilter{Offset: 3})
	require.NoError(t, err)
	assert.Len(t, rest, 2)

	past, err := s.ListVideos(ctx, model.VideoFilter{Offset: 10})
	require.NoError(t, err)
	assert.Empty(t, past)
}

func TestUpdateVideoPartial(t *testing.T) {
	s := New()
	ctx := context.Background()

	created, err := s.CreateVideo(ctx, newVideo("creator-1", "Original title"))
	require.NoError(t, err)

	title := "Updated title here"
	updated, err := s.UpdateVideo(ctx, created.ID, model.VideoUpdate{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, title, updated.Title)
	assert.Equal(t, created.Description, updated.Description, "untouched fields keep their values")
	assert.Equal(t, created.Tags, updated.Tags)

	_, err = s.UpdateVideo(ctx, "missing", model.VideoUpdate{Title: &title})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestDeleteVideoCascades(t *testing.T) {
	s := New()
	ctx := context.Background()

	v, err := s.CreateVideo(ctx, newVideo("creator-1", "Doomed video"))
	require.NoError(t, err)

	_, err = s.CreateComment(ctx, model.NewComment{VideoID: v.ID, UserID: "user-1", Content: "nice"})
	require.NoError(t, err)
	_, err = s.AddWatchLater(ctx, "user-1", v.ID)
	require.NoError(t, err)
	_, err = s.UpsertWatchHistory(ctx, model.WatchHistoryUpsert{UserID: "user-1", VideoID: v.ID, Progress: 30})
	require.NoError(t, err)

	require.NoError(t, s.DeleteVideo(ctx, v.ID))

	_, err = s.GetVideo(ctx, v.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	comments, err := s.ListComments(ctx, v.ID)
	require.NoError(t, err)
	assert.Empty(t, comments)

	later, err := s.ListWatchLater(ctx, "user-1")
	require.NoError(t, err)
	assert.Empty(t, later)

	history, err := s.ListWatchHistory(ctx, "user-1")
	require.NoError(t, err)
	assert.Empty(t, history)

	assert.ErrorIs(t, s.DeleteVideo(ctx, v.ID), store.ErrNotFound)
}

func TestCounters(t *testing.T) {
	s := New()
	ctx := context.Background()

	v, err := s.CreateVideo(ctx, newVideo("creator-1", "Counted video"))
	require.NoError(t, err)

	require.NoError(t, s.IncrementViews(ctx, v.ID))
	require.NoError(t, s.IncrementViews(ctx, v.ID))

	liked, err := s.AddReaction(ctx, v.ID, true)
	require.NoError(t, err)
	assert.Equal(t, int64(1), liked.Likes)

	disliked, err := s.AddReaction(ctx, v.ID, false)
	require.NoError(t, err)
	assert.Equal(t, int64(1), disliked.Dislikes)

	got, err := s.GetVideo(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.Views)

	assert.ErrorIs(t, s.IncrementViews(ctx, "missing"), store.ErrNotFound)
	_, err = s.AddReaction(ctx, "missing", true)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestCommentNesting(t *testing.T) {
	s := New()
	ctx := context.Background()

	v, err := s.CreateVideo(ctx, newVideo("creator-1", "Discussed video"))
	require.NoError(t, err)
	other, err := s.CreateVideo(ctx, newVideo("creator-1", "Another video"))
	require.NoError(t, err)

	top, err := s.CreateComment(ctx, model.NewComment{VideoID: v.ID, UserID: "user-1", Content: "first"})
	require.NoError(t, err)

	reply, err := s.CreateComment(ctx, model.NewComment{VideoID: v.ID, UserID: "user-2", Content: "reply", ParentID: &top.ID})
	require.NoError(t, err)
	require.NotNil(t, reply.ParentID)
	assert.Equal(t, top.ID, *reply.ParentID)

	// Replying to a reply is rejected, threads stay one level deep.
	_, err = s.CreateComment(ctx, model.NewComment{VideoID: v.ID, UserID: "user-3", Content: "nested", ParentID: &reply.ID})
	assert.ErrorIs(t, err, store.ErrInvalidParent)

	// Parent must belong to the same video.
	_, err = s.CreateComment(ctx, model.NewComment{VideoID: other.ID, UserID: "user-3", Content: "cross", ParentID: &top.ID})
	assert.ErrorIs(t, err, store.ErrInvalidParent)

	missing := "missing-comment"
	_, err = s.CreateComment(ctx, model.NewComment{VideoID: v.ID, UserID: "user-3", Content: "orphan", ParentID: &missing})
	assert.ErrorIs(t, err, store.ErrInvalidParent)

	_, err = s.CreateComment(ctx, model.NewComment{VideoID: "missing-video", UserID: "user-1", Content: "void"})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestCommentModeration(t *testing.T) {
	s := New()
	ctx := context.Background()

	v, err := s.CreateVideo(ctx, newVideo("creator-1", "Moderated video"))
	require.NoError(t, err)

	c, err := s.CreateComment(ctx, model.NewComment{VideoID: v.ID, UserID: "user-1", Content: "spam"})
	require.NoError(t, err)

	require.NoError(t, s.SetCommentStatus(ctx, c.ID, model.CommentStatusRemoved))

	comments, err := s.ListComments(ctx, v.ID)
	require.NoError(t, err)
	assert.Empty(t, comments, "removed comments are hidden from listings")

	require.NoError(t, s.SetCommentStatus(ctx, c.ID, model.CommentStatusActive))
	comments, err = s.ListComments(ctx, v.ID)
	require.NoError(t, err)
	assert.Len(t, comments, 1)

	assert.ErrorIs(t, s.SetCommentStatus(ctx, "missing", model.CommentStatusRemoved), store.ErrNotFound)
}

func TestWatchHistoryUpsert(t *testing.T) {
	s := New()
	ctx := context.Background()

	v, err := s.CreateVideo(ctx, newVideo("creator-1", "Watched video"))
	require.NoError(t, err)

	first, err := s.UpsertWatchHistory(ctx, model.WatchHistoryUpsert{UserID: "user-1", VideoID: v.ID, Progress: 30})
	require.NoError(t, err)

	second, err := s.UpsertWatchHistory(ctx, model.WatchHistoryUpsert{UserID: "user-1", VideoID: v.ID, Progress: 90, Completed: true})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID, "upsert reuses the original entry")
	assert.Equal(t, 90, second.Progress)
	assert.True(t, second.Completed)

	entries, err := s.ListWatchHistory(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 90, entries[0].Progress)

	require.NoError(t, s.RemoveWatchHistory(ctx, "user-1", v.ID))
	assert.ErrorIs(t, s.RemoveWatchHistory(ctx, "user-1", v.ID), store.ErrNotFound)
}

func TestWatchLaterIdempotent(t *testing.T) {
	s := New()
	ctx := context.Background()

	v, err := s.CreateVideo(ctx, newVideo("creator-1", "Saved video"))
	require.NoError(t, err)

	first, err := s.AddWatchLater(ctx, "user-1", v.ID)
	require.NoError(t, err)

	second, err := s.AddWatchLater(ctx, "user-1", v.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID, "re-adding returns the existing entry")

	entries, err := s.ListWatchLater(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	_, err = s.AddWatchLater(ctx, "user-1", "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, s.RemoveWatchLater(ctx, "user-1", v.ID))
	assert.ErrorIs(t, s.RemoveWatchLater(ctx, "user-1", v.ID), store.ErrNotFound)
}

func TestVideoStatsAggregation(t *testing.T) {
	s := New()
	ctx := context.Background()

	v, err := s.CreateVideo(ctx, newVideo("creator-1", "Analyzed video"))
	require.NoError(t, err)

	views := []model.VideoView{
		{VideoID: v.ID, ViewerHash: "aaaa", Browser: "Chrome", Device: "desktop", Country: "DE"},
		{VideoID: v.ID, ViewerHash: "aaaa", Browser: "Chrome", Device: "desktop", Country: "DE"},
		{VideoID: v.ID, ViewerHash: "bbbb", Browser: "Firefox", Device: "mobile", Country: ""},
	}
	for _, view := range views {
		require.NoError(t, s.RecordView(ctx, view))
	}

	stats, err := s.VideoStats(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.TotalViews)
	assert.Equal(t, int64(2), stats.UniqueViews)

	require.Len(t, stats.Browsers, 2)
	assert.Equal(t, model.BucketCount{Label: "Chrome", Count: 2}, stats.Browsers[0])

	require.Len(t, stats.Countries, 2)
	assert.Equal(t, model.BucketCount{Label: "DE", Count: 2}, stats.Countries[0])
	assert.Equal(t, model.BucketCount{Label: "unknown", Count: 1}, stats.Countries[1])

	require.Len(t, stats.Daily, 1)
	assert.Equal(t, int64(3), stats.Daily[0].Views)

	assert.ErrorIs(t, s.RecordView(ctx, model.VideoView{VideoID: "missing"}), store.ErrNotFound)
	_, err = s.VideoStats(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestVideoTagIsolation(t *testing.T) {
	s := New()
	ctx := context.Background()

	v, err := s.CreateVideo(ctx, newVideo("creator-1", "Isolated video"))
	require.NoError(t, err)

	v.Tags[0] = "mutated"

	got, err := s.GetVideo(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, "go", got.Tags[0], "caller mutations must not leak into the store")
}
