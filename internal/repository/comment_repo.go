package repository

import (
	"context"

	"aura_avatar/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

type CommentRepository struct {
	db *pgxpool.Pool
}

func NewCommentRepository(db *pgxpool.Pool) *CommentRepository {
	return &CommentRepository{db: db}
}

// Create appends a comment and bumps the avatar counter in one transaction.
func (r *CommentRepository) Create(ctx context.Context, c *domain.Comment) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx,
		`INSERT INTO comments (id, avatar_id, user_id, body)
		 VALUES ($1, $2, $3, $4)
		 RETURNING created_at`,
		c.ID, c.AvatarID, c.UserID, c.Text,
	).Scan(&c.CreatedAt)
	if err != nil {
		return err
	}

	tag, err := tx.Exec(ctx,
		`UPDATE avatars SET comments = comments + 1 WHERE id = $1`, c.AvatarID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAvatarNotFound
	}

	return tx.Commit(ctx)
}

// ListByAvatar returns comments oldest first.
func (r *CommentRepository) ListByAvatar(ctx context.Context, avatarID string) ([]domain.Comment, error) {
	rows, err := r.db.Query(ctx, `
		SELECT c.id, c.avatar_id, c.user_id, COALESCE(u.display_name, ''), COALESCE(u.photo_url, ''), c.body, c.created_at
		FROM comments c
		JOIN users u ON u.id = c.user_id
		WHERE c.avatar_id = $1
		ORDER BY c.created_at ASC`, avatarID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []domain.Comment
	for rows.Next() {
		var c domain.Comment
		if err := rows.Scan(&c.ID, &c.AvatarID, &c.UserID, &c.UserName, &c.UserPhoto, &c.Text, &c.CreatedAt); err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}
