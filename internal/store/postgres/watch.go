package postgres

import (
	"context"

	"github.com/codecast/codecast/internal/model"
	"github.com/codecast/codecast/internal/store"
)

func (s *Store) ListWatchHistory(ctx context.Context, userID string) ([]model.WatchHistoryEntry, error) {
	rows, err := s.db.Query(ctx,
		"SELECT id, user_id, video_id, progress, completed, updated_at FROM watch_history WHERE user_id = $1 ORDER BY updated_at DESC",
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []model.WatchHistoryEntry{}
	for rows.Next() {
		var e model.WatchHistoryEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.VideoID, &e.Progress, &e.Completed, &e.UpdatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// UpsertWatchHistory overwrites progress/completed for an existing
// (user, video) row or inserts a new one. The unique constraint makes this
// atomic under concurrent requests.
func (s *Store) UpsertWatchHistory(ctx context.Context, up model.WatchHistoryUpsert) (*model.WatchHistoryEntry, error) {
	e := model.WatchHistoryEntry{
		UserID:    up.UserID,
		VideoID:   up.VideoID,
		Progress:  up.Progress,
		Completed: up.Completed,
	}
	err := s.db.QueryRow(ctx,
		`INSERT INTO watch_history (user_id, video_id, progress, completed)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (user_id, video_id)
		 DO UPDATE SET progress = EXCLUDED.progress, completed = EXCLUDED.completed, updated_at = now()
		 RETURNING id, updated_at`,
		up.UserID, up.VideoID, up.Progress, up.Completed,
	).Scan(&e.ID, &e.UpdatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &e, nil
}

func (s *Store) RemoveWatchHistory(ctx context.Context, userID, videoID string) error {
	tag, err := s.db.Exec(ctx,
		"DELETE FROM watch_history WHERE user_id = $1 AND video_id = $2", userID, videoID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) ListWatchLater(ctx context.Context, userID string) ([]model.WatchLaterEntry, error) {
	rows, err := s.db.Query(ctx,
		"SELECT id, user_id, video_id, added_at FROM watch_later WHERE user_id = $1 ORDER BY added_at DESC",
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []model.WatchLaterEntry{}
	for rows.Next() {
		var e model.WatchLaterEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.VideoID, &e.AddedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// AddWatchLater is idempotent: on conflict the existing row is returned
// unchanged.
func (s *Store) AddWatchLater(ctx context.Context, userID, videoID string) (*model.WatchLaterEntry, error) {
	e := model.WatchLaterEntry{UserID: userID, VideoID: videoID}
	err := s.db.QueryRow(ctx,
		`INSERT INTO watch_later (user_id, video_id) VALUES ($1, $2)
		 ON CONFLICT (user_id, video_id) DO NOTHING
		 RETURNING id, added_at`,
		userID, videoID,
	).Scan(&e.ID, &e.AddedAt)
	if err == nil {
		return &e, nil
	}
	if isForeignKeyViolation(err) {
		return nil, store.ErrNotFound
	}
	if notFoundOr(err) != store.ErrNotFound {
		return nil, err
	}

	// Conflict: fetch the existing entry.
	err = s.db.QueryRow(ctx,
		"SELECT id, added_at FROM watch_later WHERE user_id = $1 AND video_id = $2",
		userID, videoID,
	).Scan(&e.ID, &e.AddedAt)
	if err != nil {
		return nil, notFoundOr(err)
	}
	return &e, nil
}

func (s *Store) RemoveWatchLater(ctx context.Context, userID, videoID string) error {
	tag, err := s.db.Exec(ctx,
		"DELETE FROM watch_later WHERE user_id = $1 AND video_id = $2", userID, videoID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}
