package repository

import (
	"context"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"interaction-service/model"
)

// touchUpdatedAt advances a post's updated_at on every row write, even when
// concurrent transactions commit in a different order than they began.
const touchUpdatedAt = `updated_at = GREATEST(updated_at + interval '1 microsecond', clock_timestamp())`

var (
	ErrNotFound      = errors.New("post not found")
	ErrInvalidCursor = errors.New("invalid cursor")
)

type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetFeed(ctx context.Context, viewerID uuid.UUID, limit int, after *string) (*models.PostConnection, error)
	GetPostState(ctx context.Context, postID, viewerID uuid.UUID) (*models.PostState, error)
}

type postRepository struct {
	db *sqlx.DB
}

func NewPostRepository(db *sqlx.DB) PostRepository {
	return &postRepository{db: db}
}

// Create stores a new post with zero counters. CreatedAt and UpdatedAt are
// filled in from the database clock.
func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	query := `
		INSERT INTO interaction_service_posts (id, user_id, content, created_at, updated_at, likes_count, comments_count)
		VALUES ($1, $2, $3, clock_timestamp(), clock_timestamp(), 0, 0)
		RETURNING created_at, updated_at, likes_count, comments_count
	`
	err := r.db.QueryRowxContext(ctx, query, post.ID, post.UserID, post.Content).
		Scan(&post.CreatedAt, &post.UpdatedAt, &post.LikesCount, &post.CommentsCount)
	if err != nil {
		return fmt.Errorf("failed to create post: %w", err)
	}
	post.IsLiked = false
	return nil
}

// GetFeed returns a page of the feed, newest first, with the viewer's like status
func (r *postRepository) GetFeed(ctx context.Context, viewerID uuid.UUID, limit int, after *string) (*models.PostConnection, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	var offset int
	if after != nil && *after != "" {
		decoded, err := decodeOffsetCursor(*after)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidCursor, err)
		}
		offset = decoded
	}

	query := `
		SELECT
			p.id,
			p.user_id,
			p.content,
			p.created_at,
			p.updated_at,
			p.likes_count,
			p.comments_count,
			EXISTS(
				SELECT 1 FROM interaction_service_likes l
				WHERE l.post_id = p.id AND l.user_id = $1
			) AS is_liked
		FROM interaction_service_posts p
		ORDER BY p.created_at DESC, p.id
		LIMIT $2 OFFSET $3
	`

	var posts []models.Post
	err := r.db.SelectContext(ctx, &posts, query, viewerID, limit+1, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}

	return buildPostConnection(posts, limit, offset), nil
}

// GetPostState returns the authoritative counters of a post and whether viewerID likes it
func (r *postRepository) GetPostState(ctx context.Context, postID, viewerID uuid.UUID) (*models.PostState, error) {
	var state models.PostState
	err := r.db.GetContext(ctx, &state, selectPostState, postID, viewerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get post state: %w", err)
	}

	return &state, nil
}

const selectPostState = `
	SELECT
		p.id,
		p.user_id,
		p.likes_count,
		p.comments_count,
		p.updated_at,
		EXISTS(
			SELECT 1 FROM interaction_service_likes l
			WHERE l.post_id = p.id AND l.user_id = $2
		) AS is_liked
	FROM interaction_service_posts p
	WHERE p.id = $1
`

// lockPostState reads the post state inside tx and holds the row lock until
// the transaction ends.
func lockPostState(ctx context.Context, tx *sqlx.Tx, postID, viewerID uuid.UUID) (*models.PostState, error) {
	var state models.PostState
	err := tx.GetContext(ctx, &state, selectPostState+" FOR UPDATE OF p", postID, viewerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to lock post: %w", err)
	}
	return &state, nil
}

func buildPostConnection(posts []models.Post, limit int, offset int) *models.PostConnection {
	hasNextPage := len(posts) > limit
	if hasNextPage {
		posts = posts[:limit]
	}

	edges := make([]models.PostEdge, len(posts))
	for i, post := range posts {
		edges[i] = models.PostEdge{
			Cursor: encodeOffsetCursor(offset + i + 1),
			Node:   post,
		}
	}

	var endCursor, startCursor *string
	if len(edges) > 0 {
		ec := edges[len(edges)-1].Cursor
		sc := edges[0].Cursor
		endCursor = &ec
		startCursor = &sc
	}

	return &models.PostConnection{
		Edges: edges,
		PageInfo: models.PageInfo{
			EndCursor:       endCursor,
			HasNextPage:     hasNextPage,
			StartCursor:     startCursor,
			HasPreviousPage: offset > 0,
		},
	}
}

// encodeOffsetCursor encodes the offset of the next item to read
func encodeOffsetCursor(offset int) string {
	return base64.StdEncoding.EncodeToString([]byte(fmt.Sprintf("%d", offset)))
}

func decodeOffsetCursor(cursor string) (int, error) {
	decoded, err := base64.StdEncoding.DecodeString(cursor)
	if err != nil {
		return 0, err
	}
	var offset int
	if _, err := fmt.Sscanf(string(decoded), "%d", &offset); err != nil {
		return 0, err
	}
	if offset < 0 {
		return 0, fmt.Errorf("negative offset %d", offset)
	}
	return offset, nil
}
