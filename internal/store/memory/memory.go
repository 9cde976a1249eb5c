// Package memory implements store.Store with in-process maps. It exists for
// local development and handler tests; the postgres backend is the reference
// implementation. All access is serialized on a single mutex, so counter
// increments and check-then-insert paths are atomic here.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/codecast/codecast/internal/model"
	"github.com/codecast/codecast/internal/store"
)

type Store struct {
	mu           sync.Mutex
	users        map[string]model.User
	videos       map[string]model.Video
	comments     map[string]model.Comment
	watchHistory map[string]model.WatchHistoryEntry
	watchLater   map[string]model.WatchLaterEntry
	views        []viewRecord
}

type viewRecord struct {
	model.VideoView
	createdAt time.Time
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		users:        make(map[string]model.User),
		videos:       make(map[string]model.Video),
		comments:     make(map[string]model.Comment),
		watchHistory: make(map[string]model.WatchHistoryEntry),
		watchLater:   make(map[string]model.WatchLaterEntry),
	}
}

func newID() string { return uuid.NewString() }

// Users

func (s *Store) GetUser(_ context.Context, id string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &u, nil
}

func (s *Store) GetUserByUsername(_ context.Context, username string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == username {
			u := u
			return &u, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			u := u
			return &u, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) CreateUser(_ context.Context, nu model.NewUser) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == nu.Username || u.Email == nu.Email {
			return nil, store.ErrConflict
		}
	}
	u := model.User{
		ID:           newID(),
		Username:     nu.Username,
		Email:        nu.Email,
		PasswordHash: nu.PasswordHash,
		Role:         nu.Role,
		CreatedAt:    time.Now().UTC(),
	}
	s.users[u.ID] = u
	return &u, nil
}

// Videos

func matchesFilter(v model.Video, f model.VideoFilter) bool {
	switch f.Status {
	case model.StatusAny:
	case "":
		if v.Status != model.VideoStatusActive {
			return false
		}
	default:
		if v.Status != f.Status {
			return false
		}
	}
	if f.CreatorID != "" && v.CreatorID != f.CreatorID {
		return false
	}
	if f.Category != "" && v.Category != f.Category {
		return false
	}
	if f.Difficulty != "" && v.Difficulty != f.Difficulty {
		return false
	}
	if f.Tag != "" {
		found := false
		for _, tag := range v.Tags {
			if strings.EqualFold(tag, f.Tag) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(v.Title), needle) &&
			!strings.Contains(strings.ToLower(v.Description), needle) {
			return false
		}
	}
	return true
}

func (s *Store) ListVideos(_ context.Context, f model.VideoFilter) ([]model.Video, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := []model.Video{}
	for _, v := range s.videos {
		if matchesFilter(v, f) {
			result = append(result, cloneVideo(v))
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	if f.Offset > 0 {
		if f.Offset >= len(result) {
			return []model.Video{}, nil
		}
		result = result[f.Offset:]
	}
	if f.Limit > 0 && f.Limit < len(result) {
		result = result[:f.Limit]
	}
	return result, nil
}

func (s *Store) GetVideo(_ context.Context, id string) (*model.Video, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.videos[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	c := cloneVideo(v)
	return &c, nil
}

func (s *Store) CreateVideo(_ context.Context, nv model.NewVideo) (*model.Video, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := model.Video{
		ID:          newID(),
		CreatorID:   nv.CreatorID,
		Title:       nv.Title,
		Description: nv.Description,
		URL:         nv.URL,
		EmbedType:   nv.EmbedType,
		Thumbnail:   nv.Thumbnail,
		Duration:    nv.Duration,
		Category:    nv.Category,
		Difficulty:  nv.Difficulty,
		Tags:        append([]string(nil), nv.Tags...),
		Status:      nv.Status,
		CreatedAt:   time.Now().UTC(),
	}
	s.videos[v.ID] = v
	c := cloneVideo(v)
	return &c, nil
}

func (s *Store) UpdateVideo(_ context.Context, id string, upd model.VideoUpdate) (*model.Video, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.videos[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	if upd.Title != nil {
		v.Title = *upd.Title
	}
	if upd.Description != nil {
		v.Description = *upd.Description
	}
	if upd.URL != nil {
		v.URL = *upd.URL
	}
	if upd.EmbedType != nil {
		v.EmbedType = *upd.EmbedType
	}
	if upd.Thumbnail != nil {
		v.Thumbnail = upd.Thumbnail
	}
	if upd.Duration != nil {
		v.Duration = upd.Duration
	}
	if upd.Category != nil {
		v.Category = *upd.Category
	}
	if upd.Difficulty != nil {
		v.Difficulty = *upd.Difficulty
	}
	if upd.Tags != nil {
		v.Tags = append([]string(nil), (*upd.Tags)...)
	}
	if upd.Status != nil {
		v.Status = *upd.Status
	}
	s.videos[id] = v
	c := cloneVideo(v)
	return &c, nil
}

func (s *Store) DeleteVideo(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.videos[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.videos, id)
	for cid, c := range s.comments {
		if c.VideoID == id {
			delete(s.comments, cid)
		}
	}
	for hid, h := range s.watchHistory {
		if h.VideoID == id {
			delete(s.watchHistory, hid)
		}
	}
	for wid, w := range s.watchLater {
		if w.VideoID == id {
			delete(s.watchLater, wid)
		}
	}
	return nil
}

func (s *Store) IncrementViews(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.videos[id]
	if !ok {
		return store.ErrNotFound
	}
	v.Views++
	s.videos[id] = v
	return nil
}

func (s *Store) AddReaction(_ context.Context, id string, like bool) (*model.Video, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.videos[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	if like {
		v.Likes++
	} else {
		v.Dislikes++
	}
	s.videos[id] = v
	c := cloneVideo(v)
	return &c, nil
}

// View analytics

func (s *Store) RecordView(_ context.Context, view model.VideoView) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.videos[view.VideoID]; !ok {
		return store.ErrNotFound
	}
	s.views = append(s.views, viewRecord{VideoView: view, createdAt: time.Now().UTC()})
	return nil
}

func (s *Store) VideoStats(_ context.Context, videoID string) (*model.VideoStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.videos[videoID]; !ok {
		return nil, store.ErrNotFound
	}

	stats := &model.VideoStats{
		Daily:     []model.DailyViews{},
		Browsers:  []model.BucketCount{},
		Devices:   []model.BucketCount{},
		Countries: []model.BucketCount{},
	}
	uniques := map[string]bool{}
	type dayAgg struct {
		views   int64
		uniques map[string]bool
	}
	days := map[string]*dayAgg{}
	browsers := map[string]int64{}
	devices := map[string]int64{}
	countries := map[string]int64{}

	for _, rec := range s.views {
		if rec.VideoID != videoID {
			continue
		}
		stats.TotalViews++
		uniques[rec.ViewerHash] = true
		day := rec.createdAt.Format("2006-01-02")
		agg, ok := days[day]
		if !ok {
			agg = &dayAgg{uniques: map[string]bool{}}
			days[day] = agg
		}
		agg.views++
		agg.uniques[rec.ViewerHash] = true
		browsers[labelOrUnknown(rec.Browser)]++
		devices[labelOrUnknown(rec.Device)]++
		countries[labelOrUnknown(rec.Country)]++
	}
	stats.UniqueViews = int64(len(uniques))
	for day, agg := range days {
		stats.Daily = append(stats.Daily, model.DailyViews{
			Date:        day,
			Views:       agg.views,
			UniqueViews: int64(len(agg.uniques)),
		})
	}
	sort.Slice(stats.Daily, func(i, j int) bool { return stats.Daily[i].Date < stats.Daily[j].Date })
	stats.Browsers = bucketCounts(browsers)
	stats.Devices = bucketCounts(devices)
	stats.Countries = bucketCounts(countries)
	return stats, nil
}

func labelOrUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}

func bucketCounts(m map[string]int64) []model.BucketCount {
	out := make([]model.BucketCount, 0, len(m))
	for label, count := range m {
		out = append(out, model.BucketCount{Label: label, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Label < out[j].Label
	})
	return out
}

// Comments

func (s *Store) ListComments(_ context.Context, videoID string) ([]model.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := []model.Comment{}
	for _, c := range s.comments {
		if c.VideoID == videoID && c.Status == model.CommentStatusActive {
			result = append(result, c)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (s *Store) CreateComment(_ context.Context, nc model.NewComment) (*model.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.videos[nc.VideoID]; !ok {
		return nil, store.ErrNotFound
	}
	if nc.ParentID != nil {
		parent, ok := s.comments[*nc.ParentID]
		if !ok || parent.VideoID != nc.VideoID || parent.ParentID != nil {
			return nil, store.ErrInvalidParent
		}
	}
	c := model.Comment{
		ID:        newID(),
		VideoID:   nc.VideoID,
		UserID:    nc.UserID,
		Content:   nc.Content,
		ParentID:  nc.ParentID,
		Status:    model.CommentStatusActive,
		CreatedAt: time.Now().UTC(),
	}
	s.comments[c.ID] = c
	return &c, nil
}

func (s *Store) SetCommentStatus(_ context.Context, id, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.comments[id]
	if !ok {
		return store.ErrNotFound
	}
	c.Status = status
	s.comments[id] = c
	return nil
}

// Watch history

func (s *Store) ListWatchHistory(_ context.Context, userID string) ([]model.WatchHistoryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := []model.WatchHistoryEntry{}
	for _, h := range s.watchHistory {
		if h.UserID == userID {
			result = append(result, h)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].UpdatedAt.After(result[j].UpdatedAt)
	})
	return result, nil
}

func (s *Store) UpsertWatchHistory(_ context.Context, e model.WatchHistoryUpsert) (*model.WatchHistoryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, h := range s.watchHistory {
		if h.UserID == e.UserID && h.VideoID == e.VideoID {
			h.Progress = e.Progress
			h.Completed = e.Completed
			h.UpdatedAt = time.Now().UTC()
			s.watchHistory[id] = h
			return &h, nil
		}
	}
	h := model.WatchHistoryEntry{
		ID:        newID(),
		UserID:    e.UserID,
		VideoID:   e.VideoID,
		Progress:  e.Progress,
		Completed: e.Completed,
		UpdatedAt: time.Now().UTC(),
	}
	s.watchHistory[h.ID] = h
	return &h, nil
}

func (s *Store) RemoveWatchHistory(_ context.Context, userID, videoID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, h := range s.watchHistory {
		if h.UserID == userID && h.VideoID == videoID {
			delete(s.watchHistory, id)
			return nil
		}
	}
	return store.ErrNotFound
}

// Watch later

func (s *Store) ListWatchLater(_ context.Context, userID string) ([]model.WatchLaterEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := []model.WatchLaterEntry{}
	for _, w := range s.watchLater {
		if w.UserID == userID {
			result = append(result, w)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].AddedAt.After(result[j].AddedAt)
	})
	return result, nil
}

func (s *Store) AddWatchLater(_ context.Context, userID, videoID string) (*model.WatchLaterEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.videos[videoID]; !ok {
		return nil, store.ErrNotFound
	}
	for _, w := range s.watchLater {
		if w.UserID == userID && w.VideoID == videoID {
			w := w
			return &w, nil
		}
	}
	w := model.WatchLaterEntry{
		ID:      newID(),
		UserID:  userID,
		VideoID: videoID,
		AddedAt: time.Now().UTC(),
	}
	s.watchLater[w.ID] = w
	return &w, nil
}

func (s *Store) RemoveWatchLater(_ context.Context, userID, videoID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, w := range s.watchLater {
		if w.UserID == userID && w.VideoID == videoID {
			delete(s.watchLater, id)
			return nil
		}
	}
	return store.ErrNotFound
}

func cloneVideo(v model.Video) model.Video {
	v.Tags = append([]string(nil), v.Tags...)
	return v
}
