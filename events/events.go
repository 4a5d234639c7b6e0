package events

import (
	"time"

	"github.com/google/uuid"
)

// Event subjects (topics)
const (
	SubjectPostCreated   = "post.created"
	SubjectPostLiked     = "post.liked"
	SubjectPostUnliked   = "post.unliked"
	SubjectPostCommented = "post.commented"
	SubjectLikeGesture   = "post.like.gesture"
)

// StreamName is the JetStream stream carrying the interaction subjects.
const StreamName = "INTERACTIONS"

func Subjects() []string {
	return []string{SubjectPostCreated, SubjectPostLiked, SubjectPostUnliked, SubjectPostCommented, SubjectLikeGesture}
}

// PostCreatedEvent is published after a post was stored
type PostCreatedEvent struct {
	PostID    uuid.UUID `json:"post_id"`
	UserID    uuid.UUID `json:"user_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// LikeChangedEvent is published after a like or unlike reached the record store
type LikeChangedEvent struct {
	PostID        uuid.UUID `json:"post_id"`
	PostOwner     uuid.UUID `json:"post_owner"`
	UserID        uuid.UUID `json:"user_id"`
	Liked         bool      `json:"liked"`
	LikesCount    int32     `json:"likes_count"`
	CommentsCount int32     `json:"comments_count"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (e LikeChangedEvent) Subject() string {
	if e.Liked {
		return SubjectPostLiked
	}
	return SubjectPostUnliked
}

// PostCommentedEvent is published when a user comments on a post
type PostCommentedEvent struct {
	PostID        uuid.UUID `json:"post_id"`
	PostOwner     uuid.UUID `json:"post_owner"`
	CommentID     uuid.UUID `json:"comment_id"`
	CommentedBy   uuid.UUID `json:"commented_by"`
	Content       string    `json:"content"`
	LikesCount    int32     `json:"likes_count"`
	CommentsCount int32     `json:"comments_count"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// LikeGestureEvent records a double tap that toggled a like
type LikeGestureEvent struct {
	PostID    uuid.UUID `json:"post_id"`
	UserID    uuid.UUID `json:"user_id"`
	Liked     bool      `json:"liked"`
	TappedAt  int64     `json:"tapped_at"`
	Timestamp time.Time `json:"timestamp"`
}
