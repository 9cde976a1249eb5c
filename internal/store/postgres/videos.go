package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/codecast/codecast/internal/model"
	"github.com/codecast/codecast/internal/store"
)

const videoColumns = "id, creator_id, title, description, url, embed_type, thumbnail, duration, category, difficulty, tags::text, views, likes, dislikes, status, created_at"

func scanVideo(row rowScanner) (*model.Video, error) {
	var v model.Video
	var tagsJSON string
	err := row.Scan(&v.ID, &v.CreatorID, &v.Title, &v.Description, &v.URL, &v.EmbedType,
		&v.Thumbnail, &v.Duration, &v.Category, &v.Difficulty, &tagsJSON,
		&v.Views, &v.Likes, &v.Dislikes, &v.Status, &v.CreatedAt)
	if err != nil {
		return nil, notFoundOr(err)
	}
	if err := json.Unmarshal([]byte(tagsJSON), &v.Tags); err != nil || v.Tags == nil {
		v.Tags = []string{}
	}
	return &v, nil
}

// ListVideos composes the filter set into a single query. All filters are
// ANDed; an empty Status means active only, model.StatusAny disables the
// status clause.
func (s *Store) ListVideos(ctx context.Context, f model.VideoFilter) ([]model.Video, error) {
	query := "SELECT " + videoColumns + " FROM videos WHERE 1=1"
	var args []any
	param := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	switch f.Status {
	case model.StatusAny:
	case "":
		query += " AND status = 'active'"
	default:
		query += " AND status = " + param(f.Status)
	}
	if f.CreatorID != "" {
		query += " AND creator_id = " + param(f.CreatorID)
	}
	if f.Category != "" {
		query += " AND category = " + param(f.Category)
	}
	if f.Difficulty != "" {
		query += " AND difficulty = " + param(f.Difficulty)
	}
	if f.Tag != "" {
		query += " AND EXISTS (SELECT 1 FROM jsonb_array_elements_text(tags) t(v) WHERE lower(t.v) = lower(" + param(f.Tag) + "))"
	}
	if f.Search != "" {
		p := param("%" + escapeLike(f.Search) + "%")
		query += " AND (title ILIKE " + p + " OR description ILIKE " + p + ")"
	}

	query += " ORDER BY created_at DESC"
	if f.Limit > 0 {
		query += " LIMIT " + param(f.Limit)
	}
	if f.Offset > 0 {
		query += " OFFSET " + param(f.Offset)
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	videos := []model.Video{}
	for rows.Next() {
		v, err := scanVideo(rows)
		if err != nil {
			return nil, err
		}
		videos = append(videos, *v)
	}
	return videos, rows.Err()
}

func (s *Store) GetVideo(ctx context.Context, id string) (*model.Video, error) {
	return scanVideo(s.db.QueryRow(ctx,
		"SELECT "+videoColumns+" FROM videos WHERE id = $1", id))
}

func (s *Store) CreateVideo(ctx context.Context, nv model.NewVideo) (*model.Video, error) {
	tagsJSON, err := json.Marshal(nv.Tags)
	if err != nil {
		return nil, err
	}
	v := model.Video{
		CreatorID:   nv.CreatorID,
		Title:       nv.Title,
		Description: nv.Description,
		URL:         nv.URL,
		EmbedType:   nv.EmbedType,
		Thumbnail:   nv.Thumbnail,
		Duration:    nv.Duration,
		Category:    nv.Category,
		Difficulty:  nv.Difficulty,
		Tags:        append([]string{}, nv.Tags...),
		Status:      nv.Status,
	}
	err = s.db.QueryRow(ctx,
		`INSERT INTO videos (creator_id, title, description, url, embed_type, thumbnail, duration, category, difficulty, tags, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10::jsonb, $11)
		 RETURNING id, created_at`,
		nv.CreatorID, nv.Title, nv.Description, nv.URL, nv.EmbedType, nv.Thumbnail,
		nv.Duration, nv.Category, nv.Difficulty, string(tagsJSON), nv.Status,
	).Scan(&v.ID, &v.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (s *Store) UpdateVideo(ctx context.Context, id string, upd model.VideoUpdate) (*model.Video, error) {
	var sets []string
	var args []any
	set := func(column string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if upd.Title != nil {
		set("title", *upd.Title)
	}
	if upd.Description != nil {
		set("description", *upd.Description)
	}
	if upd.URL != nil {
		set("url", *upd.URL)
	}
	if upd.EmbedType != nil {
		set("embed_type", *upd.EmbedType)
	}
	if upd.Thumbnail != nil {
		set("thumbnail", *upd.Thumbnail)
	}
	if upd.Duration != nil {
		set("duration", *upd.Duration)
	}
	if upd.Category != nil {
		set("category", *upd.Category)
	}
	if upd.Difficulty != nil {
		set("difficulty", *upd.Difficulty)
	}
	if upd.Tags != nil {
		tagsJSON, err := json.Marshal(*upd.Tags)
		if err != nil {
			return nil, err
		}
		args = append(args, string(tagsJSON))
		sets = append(sets, fmt.Sprintf("tags = $%d::jsonb", len(args)))
	}
	if upd.Status != nil {
		set("status", *upd.Status)
	}

	if len(sets) == 0 {
		return s.GetVideo(ctx, id)
	}

	args = append(args, id)
	query := fmt.Sprintf("UPDATE videos SET %s WHERE id = $%d RETURNING %s",
		strings.Join(sets, ", "), len(args), videoColumns)
	return scanVideo(s.db.QueryRow(ctx, query, args...))
}

func (s *Store) DeleteVideo(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, "DELETE FROM videos WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) IncrementViews(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, "UPDATE videos SET views = views + 1 WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) AddReaction(ctx context.Context, id string, like bool) (*model.Video, error) {
	column := "dislikes"
	if like {
		column = "likes"
	}
	query := fmt.Sprintf("UPDATE videos SET %s = %s + 1 WHERE id = $1 RETURNING %s",
		column, column, videoColumns)
	return scanVideo(s.db.QueryRow(ctx, query, id))
}
