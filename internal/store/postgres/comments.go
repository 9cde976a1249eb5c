package postgres

import (
	"context"

	"github.com/codecast/codecast/internal/model"
	"github.com/codecast/codecast/internal/store"
)

const commentColumns = "id, video_id, user_id, content, likes, parent_id, status, created_at"

func scanComment(row rowScanner) (*model.Comment, error) {
	var c model.Comment
	err := row.Scan(&c.ID, &c.VideoID, &c.UserID, &c.Content, &c.Likes, &c.ParentID, &c.Status, &c.CreatedAt)
	if err != nil {
		return nil, notFoundOr(err)
	}
	return &c, nil
}

func (s *Store) ListComments(ctx context.Context, videoID string) ([]model.Comment, error) {
	rows, err := s.db.Query(ctx,
		"SELECT "+commentColumns+" FROM comments WHERE video_id = $1 AND status = 'active' ORDER BY created_at DESC",
		videoID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	comments := []model.Comment{}
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		comments = append(comments, *c)
	}
	return comments, rows.Err()
}

// CreateComment inserts a comment. Replies are limited to one level: the
// parent must exist, belong to the same video, and be a top-level comment.
func (s *Store) CreateComment(ctx context.Context, nc model.NewComment) (*model.Comment, error) {
	if nc.ParentID != nil {
		var parentVideoID string
		var grandparentID *string
		err := s.db.QueryRow(ctx,
			"SELECT video_id, parent_id FROM comments WHERE id = $1", *nc.ParentID,
		).Scan(&parentVideoID, &grandparentID)
		if err != nil {
			if notFoundOr(err) == store.ErrNotFound {
				return nil, store.ErrInvalidParent
			}
			return nil, err
		}
		if parentVideoID != nc.VideoID || grandparentID != nil {
			return nil, store.ErrInvalidParent
		}
	}

	c := model.Comment{
		VideoID:  nc.VideoID,
		UserID:   nc.UserID,
		Content:  nc.Content,
		ParentID: nc.ParentID,
		Status:   model.CommentStatusActive,
	}
	err := s.db.QueryRow(ctx,
		"INSERT INTO comments (video_id, user_id, content, parent_id) VALUES ($1, $2, $3, $4) RETURNING id, created_at",
		nc.VideoID, nc.UserID, nc.Content, nc.ParentID,
	).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (s *Store) SetCommentStatus(ctx context.Context, id, status string) error {
	tag, err := s.db.Exec(ctx, "UPDATE comments SET status = $1 WHERE id = $2", status, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}
