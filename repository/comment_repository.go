package repository

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"interaction-service/model"
)

type CommentRepository interface {
	AddComment(ctx context.Context, comment *models.Comment) (*models.PostState, error)
	GetPostComments(ctx context.Context, postID uuid.UUID, first int32, after *string) (*models.CommentConnection, error)
	GetCommentsByPosts(ctx context.Context, postIDs []uuid.UUID, perPost int) (map[uuid.UUID][]string, error)
}

type commentRepository struct {
	db *sqlx.DB
}

func NewCommentRepository(db *sqlx.DB) CommentRepository {
	return &commentRepository{db: db}
}

// AddComment inserts a comment and bumps the post's comment count in one
// transaction. The comment is filled in with the stored values.
func (r *commentRepository) AddComment(ctx context.Context, comment *models.Comment) (*models.PostState, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	state, err := lockPostState(ctx, tx, comment.PostID, comment.UserID)
	if err != nil {
		return nil, err
	}

	err = tx.QueryRowxContext(ctx, `
		INSERT INTO interaction_service_comments (id, post_id, user_id, content, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING id, post_id, user_id, content, created_at
	`, comment.ID, comment.PostID, comment.UserID, comment.Content).StructScan(comment)
	if err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}

	err = tx.QueryRowxContext(ctx, `
		UPDATE interaction_service_posts
		SET comments_count = comments_count + 1, ` + touchUpdatedAt + `
		WHERE id = $1
		RETURNING likes_count, comments_count, updated_at
	`, comment.PostID).Scan(&state.LikesCount, &state.CommentsCount, &state.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to update comment count: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return state, nil
}

// GetPostComments retrieves comments for a post with cursor-based pagination
func (r *commentRepository) GetPostComments(ctx context.Context, postID uuid.UUID, first int32, after *string) (*models.CommentConnection, error) {
	if first <= 0 || first > 100 {
		first = 10
	}

	var comments []models.Comment
	var query string
	var args []interface{}

	if after != nil && *after != "" {
		cursorTime, err := decodeCursor(*after)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidCursor, err)
		}

		query = `
			SELECT id, post_id, user_id, content, created_at
			FROM interaction_service_comments
			WHERE post_id = $1 AND created_at < $2
			ORDER BY created_at DESC
			LIMIT $3
		`
		args = []interface{}{postID, cursorTime, first + 1}
	} else {
		query = `
			SELECT id, post_id, user_id, content, created_at
			FROM interaction_service_comments
			WHERE post_id = $1
			ORDER BY created_at DESC
			LIMIT $2
		`
		args = []interface{}{postID, first + 1}
	}

	err := r.db.SelectContext(ctx, &comments, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get comments: %w", err)
	}

	hasNextPage := len(comments) > int(first)
	if hasNextPage {
		comments = comments[:first]
	}

	edges := make([]models.CommentEdge, len(comments))
	for i, comment := range comments {
		edges[i] = models.CommentEdge{
			Cursor: encodeCursor(comment.CreatedAt),
			Node:   comment,
		}
	}

	var totalCount int32
	err = r.db.GetContext(ctx, &totalCount, `SELECT COUNT(*) FROM interaction_service_comments WHERE post_id = $1`, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to get comment count: %w", err)
	}

	pageInfo := models.PageInfo{
		HasNextPage:     hasNextPage,
		HasPreviousPage: after != nil && *after != "",
	}

	if len(edges) > 0 {
		startCursor := edges[0].Cursor
		endCursor := edges[len(edges)-1].Cursor
		pageInfo.StartCursor = &startCursor
		pageInfo.EndCursor = &endCursor
	}

	return &models.CommentConnection{
		Edges:      edges,
		PageInfo:   pageInfo,
		TotalCount: totalCount,
	}, nil
}

// GetCommentsByPosts returns up to perPost of the latest comments of each
// post, oldest first, keyed by post id.
func (r *commentRepository) GetCommentsByPosts(ctx context.Context, postIDs []uuid.UUID, perPost int) (map[uuid.UUID][]string, error) {
	result := make(map[uuid.UUID][]string, len(postIDs))
	if len(postIDs) == 0 || perPost <= 0 {
		return result, nil
	}

	query := `
		SELECT post_id, content
		FROM (
			SELECT
				post_id,
				content,
				created_at,
				ROW_NUMBER() OVER (PARTITION BY post_id ORDER BY created_at DESC) AS rn
			FROM interaction_service_comments
			WHERE post_id = ANY($1)
		) recent
		WHERE rn <= $2
		ORDER BY post_id, created_at ASC
	`

	var rows []struct {
		PostID  uuid.UUID `db:"post_id"`
		Content string    `db:"content"`
	}
	err := r.db.SelectContext(ctx, &rows, query, pq.Array(postIDs), perPost)
	if err != nil {
		return nil, fmt.Errorf("failed to get comments by posts: %w", err)
	}

	for _, row := range rows {
		result[row.PostID] = append(result[row.PostID], row.Content)
	}

	return result, nil
}

// encodeCursor encodes a timestamp into a base64 cursor
func encodeCursor(t time.Time) string {
	return base64.StdEncoding.EncodeToString([]byte(t.Format(time.RFC3339Nano)))
}

// decodeCursor decodes a base64 cursor into a timestamp
func decodeCursor(cursor string) (time.Time, error) {
	decoded, err := base64.StdEncoding.DecodeString(cursor)
	if err != nil {
		return time.Time{}, err
	}

	t, err := time.Parse(time.RFC3339Nano, string(decoded))
	if err != nil {
		return time.Time{}, err
	}

	return t, nil
}
