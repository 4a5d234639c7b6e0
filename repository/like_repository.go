package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"interaction-service/model"
)

type LikeRepository interface {
	SetLike(ctx context.Context, postID, userID uuid.UUID, liked bool) (*models.PostState, error)
	IsPostLikedByUser(ctx context.Context, postID, userID uuid.UUID) (bool, error)
	GetRecentLikersByPost(ctx context.Context, postID uuid.UUID, limit int32) ([]uuid.UUID, error)
}

type likeRepository struct {
	db *sqlx.DB
}

func NewLikeRepository(db *sqlx.DB) LikeRepository {
	return &likeRepository{db: db}
}

// SetLike moves the user's like on a post to the desired state. Repeating a
// call with the same state is a no-op that returns the current state.
func (r *likeRepository) SetLike(ctx context.Context, postID, userID uuid.UUID, liked bool) (*models.PostState, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	state, err := lockPostState(ctx, tx, postID, userID)
	if err != nil {
		return nil, err
	}

	if state.IsLiked == liked {
		if err := tx.Commit(); err != nil {
			return nil, fmt.Errorf("failed to commit transaction: %w", err)
		}
		return state, nil
	}

	delta := 1
	if liked {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO interaction_service_likes (id, post_id, user_id, created_at)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (post_id, user_id) DO NOTHING
		`, uuid.New(), postID, userID, time.Now())
		if err != nil {
			return nil, fmt.Errorf("failed to create like: %w", err)
		}
	} else {
		delta = -1
		_, err = tx.ExecContext(ctx, `
			DELETE FROM interaction_service_likes
			WHERE post_id = $1 AND user_id = $2
		`, postID, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to delete like: %w", err)
		}
	}

	err = tx.QueryRowxContext(ctx, `
		UPDATE interaction_service_posts
		SET likes_count = GREATEST(likes_count + $2, 0), ` + touchUpdatedAt + `
		WHERE id = $1
		RETURNING likes_count, comments_count, updated_at
	`, postID, delta).Scan(&state.LikesCount, &state.CommentsCount, &state.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to update like count: %w", err)
	}
	state.IsLiked = liked

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return state, nil
}

// IsPostLikedByUser checks if a user has liked a specific post
func (r *likeRepository) IsPostLikedByUser(ctx context.Context, postID, userID uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1
			FROM interaction_service_likes
			WHERE post_id = $1 AND user_id = $2
		)
	`

	var exists bool
	err := r.db.GetContext(ctx, &exists, query, postID, userID)
	if err != nil {
		return false, fmt.Errorf("failed to check if post is liked: %w", err)
	}

	return exists, nil
}

// GetRecentLikersByPost returns the most recent users who liked a post
func (r *likeRepository) GetRecentLikersByPost(ctx context.Context, postID uuid.UUID, limit int32) ([]uuid.UUID, error) {
	if limit <= 0 {
		limit = 5
	}

	query := `
		SELECT user_id
		FROM interaction_service_likes
		WHERE post_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	var userIDs []uuid.UUID
	err := r.db.SelectContext(ctx, &userIDs, query, postID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent likers: %w", err)
	}

	return userIDs, nil
}
