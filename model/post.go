package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrEmptyPost = errors.New("post content is empty")

// Post is a feed item as stored by the record store, seen by one viewer.
type Post struct {
	ID            uuid.UUID `json:"id" db:"id"`
	UserID        uuid.UUID `json:"user_id" db:"user_id"`
	Content       string    `json:"content" db:"content"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
	LikesCount    int32     `json:"likes_count" db:"likes_count"`
	CommentsCount int32     `json:"comments_count" db:"comments_count"`
	IsLiked       bool      `json:"is_liked" db:"is_liked"`
}

type Like struct {
	ID        uuid.UUID `json:"id" db:"id"`
	PostID    uuid.UUID `json:"post_id" db:"post_id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// PostState is the authoritative interaction state of a post for one viewer.
type PostState struct {
	PostID        uuid.UUID `json:"post_id" db:"id"`
	OwnerID       uuid.UUID `json:"owner_id" db:"user_id"`
	LikesCount    int32     `json:"likes_count" db:"likes_count"`
	CommentsCount int32     `json:"comments_count" db:"comments_count"`
	IsLiked       bool      `json:"is_liked" db:"is_liked"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// Counters are the viewer independent part of PostState.
type Counters struct {
	LikesCount    int32     `json:"likes_count"`
	CommentsCount int32     `json:"comments_count"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (s PostState) Counters() Counters {
	return Counters{
		LikesCount:    s.LikesCount,
		CommentsCount: s.CommentsCount,
		UpdatedAt:     s.UpdatedAt,
	}
}

// Record converts a stored post into a viewer-local interaction record.
func (p Post) Record(comments []string) InteractionRecord {
	r := InteractionRecord{
		ID:            p.ID.String(),
		LikeCount:     p.LikesCount,
		LikedByViewer: p.IsLiked,
		CommentCount:  p.CommentsCount,
		Comments:      comments,
		SyncedAt:      p.UpdatedAt,
	}
	r.Normalize()
	return r
}

type PostEdge struct {
	Cursor string `json:"cursor"`
	Node   Post   `json:"node"`
}

type PostConnection struct {
	Edges    []PostEdge `json:"edges"`
	PageInfo PageInfo   `json:"page_info"`
}
