package postgres

import (
	"context"
	"fmt"

	"github.com/codecast/codecast/internal/model"
	"github.com/codecast/codecast/internal/store"
)

func (s *Store) RecordView(ctx context.Context, view model.VideoView) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO video_views (video_id, viewer_hash, browser, device, country, city)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		view.VideoID, view.ViewerHash, view.Browser, view.Device, view.Country, view.City)
	if isForeignKeyViolation(err) {
		return store.ErrNotFound
	}
	return err
}

func (s *Store) VideoStats(ctx context.Context, videoID string) (*model.VideoStats, error) {
	var exists bool
	if err := s.db.QueryRow(ctx,
		"SELECT EXISTS (SELECT 1 FROM videos WHERE id = $1)", videoID,
	).Scan(&exists); err != nil {
		return nil, err
	}
	if !exists {
		return nil, store.ErrNotFound
	}

	stats := &model.VideoStats{
		Daily:     []model.DailyViews{},
		Browsers:  []model.BucketCount{},
		Devices:   []model.BucketCount{},
		Countries: []model.BucketCount{},
	}

	err := s.db.QueryRow(ctx,
		"SELECT COUNT(*), COUNT(DISTINCT viewer_hash) FROM video_views WHERE video_id = $1",
		videoID,
	).Scan(&stats.TotalViews, &stats.UniqueViews)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Query(ctx,
		`SELECT to_char(created_at, 'YYYY-MM-DD') AS day, COUNT(*), COUNT(DISTINCT viewer_hash)
		 FROM video_views WHERE video_id = $1
		 GROUP BY day ORDER BY day`,
		videoID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var d model.DailyViews
		if err := rows.Scan(&d.Date, &d.Views, &d.UniqueViews); err != nil {
			return nil, err
		}
		stats.Daily = append(stats.Daily, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, bucket := range []struct {
		column string
		dest   *[]model.BucketCount
	}{
		{"browser", &stats.Browsers},
		{"device", &stats.Devices},
		{"country", &stats.Countries},
	} {
		counts, err := s.bucketCounts(ctx, videoID, bucket.column)
		if err != nil {
			return nil, err
		}
		*bucket.dest = counts
	}

	return stats, nil
}

func (s *Store) bucketCounts(ctx context.Context, videoID, column string) ([]model.BucketCount, error) {
	query := fmt.Sprintf(
		`SELECT COALESCE(NULLIF(%s, ''), 'unknown') AS label, COUNT(*)
		 FROM video_views WHERE video_id = $1
		 GROUP BY label ORDER BY COUNT(*) DESC, label`, column)
	rows, err := s.db.Query(ctx, query, videoID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := []model.BucketCount{}
	for rows.Next() {
		var c model.BucketCount
		if err := rows.Scan(&c.Label, &c.Count); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}
