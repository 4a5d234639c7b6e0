// Package pb holds the wire messages and service descriptor of the
// interaction.InteractionService gRPC API. Messages travel with the JSON
// codec registered in codec.go.
package pb

import (
	"google.golang.org/protobuf/types/known/timestamppb"
)

type InteractionRecord struct {
	PostId        string                 `json:"post_id"`
	LikeCount     int32                  `json:"like_count"`
	LikedByViewer bool                   `json:"liked_by_viewer"`
	CommentCount  int32                  `json:"comment_count"`
	Comments      []string               `json:"comments,omitempty"`
	SyncedAt      *timestamppb.Timestamp `json:"synced_at,omitempty"`
	Provisional   bool                   `json:"provisional"`
}

type PageInfo struct {
	EndCursor       *string `json:"end_cursor,omitempty"`
	HasNextPage     bool    `json:"has_next_page"`
	StartCursor     *string `json:"start_cursor,omitempty"`
	HasPreviousPage bool    `json:"has_previous_page"`
}

type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type Post struct {
	Id            string                 `json:"id"`
	UserId        string                 `json:"user_id"`
	Content       string                 `json:"content"`
	CreatedAt     *timestamppb.Timestamp `json:"created_at"`
	UpdatedAt     *timestamppb.Timestamp `json:"updated_at"`
	LikesCount    int32                  `json:"likes_count"`
	CommentsCount int32                  `json:"comments_count"`
}

type CreatePostRequest struct {
	Content string `json:"content"`
}

type PostResponse struct {
	Post *Post `json:"post"`
}

type OpenFeedRequest struct {
	First int32   `json:"first"`
	After *string `json:"after,omitempty"`
}

type OpenFeedResponse struct {
	Records  []*InteractionRecord `json:"records"`
	PageInfo *PageInfo            `json:"page_info"`
	// Created is false when the viewer already had an open session.
	Created bool `json:"created"`
}

type CloseFeedRequest struct{}

type TapRequest struct {
	PostId          string `json:"post_id"`
	TimestampMillis int64  `json:"timestamp_millis"`
}

type TapResponse struct {
	Action     string             `json:"action"`
	HeartBurst bool               `json:"heart_burst"`
	Record     *InteractionRecord `json:"record"`
}

type PressLikeRequest struct {
	PostId string `json:"post_id"`
}

type AddCommentRequest struct {
	PostId  string `json:"post_id"`
	Content string `json:"content"`
}

type RecordResponse struct {
	Record *InteractionRecord `json:"record"`
}

type RefreshPostRequest struct {
	PostId string `json:"post_id"`
}

type RefreshPostResponse struct {
	Record         *InteractionRecord `json:"record"`
	RecentLikerIds []string           `json:"recent_liker_ids"`
}

type GetPostCommentsRequest struct {
	PostId string  `json:"post_id"`
	First  int32   `json:"first"`
	After  *string `json:"after,omitempty"`
}

type Comment struct {
	Id        string                 `json:"id"`
	PostId    string                 `json:"post_id"`
	UserId    string                 `json:"user_id"`
	Content   string                 `json:"content"`
	CreatedAt *timestamppb.Timestamp `json:"created_at"`
}

type CommentEdge struct {
	Cursor string   `json:"cursor"`
	Node   *Comment `json:"node"`
}

type CommentConnection struct {
	Edges      []*CommentEdge `json:"edges"`
	PageInfo   *PageInfo      `json:"page_info"`
	TotalCount int32          `json:"total_count"`
}
