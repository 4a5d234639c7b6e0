package handler

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/timestamppb"

	"interaction-service/feed"
	"interaction-service/interceptor"
	"interaction-service/model"
	pb "interaction-service/pb"
	"interaction-service/repository"
	"interaction-service/service"
)

// Interactions is the service the handler serves.
type Interactions interface {
	CreatePost(ctx context.Context, authorID uuid.UUID, content string) (*models.Post, error)
	OpenFeed(ctx context.Context, viewerID uuid.UUID, limit int, after *string) (*service.FeedPage, error)
	CloseFeed(viewerID uuid.UUID) bool
	Tap(ctx context.Context, viewerID, postID uuid.UUID, timestamp int64) (feed.TapResult, error)
	PressLike(ctx context.Context, viewerID, postID uuid.UUID) (models.InteractionRecord, error)
	AddComment(ctx context.Context, viewerID, postID uuid.UUID, text string) (models.InteractionRecord, error)
	Refresh(ctx context.Context, viewerID, postID uuid.UUID) (*service.PostSnapshot, error)
	GetPostComments(ctx context.Context, postID uuid.UUID, first int32, after *string) (*models.CommentConnection, error)
}

type InteractionHandler struct {
	pb.UnimplementedInteractionServiceServer
	svc      Interactions
	comments *limiterPool
	logger   *zap.Logger
}

func NewInteractionHandler(svc Interactions, commentRate float64, commentBurst int, logger *zap.Logger) *InteractionHandler {
	return &InteractionHandler{
		svc:      svc,
		comments: newLimiterPool(commentRate, commentBurst),
		logger:   logger,
	}
}

// maxContentLength caps posts and comments, counted in characters.
const maxContentLength = 2000

// ForgetViewer drops the comment rate limiter of a viewer whose feed session ended.
func (h *InteractionHandler) ForgetViewer(viewerID uuid.UUID) {
	h.comments.Forget(viewerID)
}

func (h *InteractionHandler) CreatePost(ctx context.Context, req *pb.CreatePostRequest) (*pb.PostResponse, error) {
	authorID, err := viewerFromContext(ctx)
	if err != nil {
		return nil, err
	}
	content, err := validateContent(req.Content)
	if err != nil {
		return nil, err
	}

	post, err := h.svc.CreatePost(ctx, authorID, content)
	if err != nil {
		return nil, h.toStatus(err, "failed to create post")
	}

	return &pb.PostResponse{Post: toProtoPost(post)}, nil
}

// OpenFeed loads a page of the caller's feed into their session
func (h *InteractionHandler) OpenFeed(ctx context.Context, req *pb.OpenFeedRequest) (*pb.OpenFeedResponse, error) {
	viewerID, err := viewerFromContext(ctx)
	if err != nil {
		return nil, err
	}

	page, err := h.svc.OpenFeed(ctx, viewerID, int(req.First), req.After)
	if err != nil {
		return nil, h.toStatus(err, "failed to open feed")
	}

	records := make([]*pb.InteractionRecord, len(page.Records))
	for i := range page.Records {
		records[i] = toProtoRecord(page.Records[i])
	}

	return &pb.OpenFeedResponse{
		Records:  records,
		PageInfo: toProtoPageInfo(page.PageInfo),
		Created:  page.Created,
	}, nil
}

func (h *InteractionHandler) CloseFeed(ctx context.Context, _ *pb.CloseFeedRequest) (*pb.Response, error) {
	viewerID, err := viewerFromContext(ctx)
	if err != nil {
		return nil, err
	}

	h.comments.Forget(viewerID)
	if !h.svc.CloseFeed(viewerID) {
		return &pb.Response{Success: true, Message: "Feed already closed"}, nil
	}
	return &pb.Response{Success: true, Message: "Feed closed"}, nil
}

// Tap reports one tap on a post. Two taps within the double tap window toggle the like.
func (h *InteractionHandler) Tap(ctx context.Context, req *pb.TapRequest) (*pb.TapResponse, error) {
	viewerID, err := viewerFromContext(ctx)
	if err != nil {
		return nil, err
	}
	postID, err := parsePostID(req.PostId)
	if err != nil {
		return nil, err
	}

	result, err := h.svc.Tap(ctx, viewerID, postID, req.TimestampMillis)
	if err != nil {
		return nil, h.toStatus(err, "failed to handle tap")
	}

	return &pb.TapResponse{
		Action:     result.Action.String(),
		HeartBurst: result.HeartBurst,
		Record:     toProtoRecord(result.Record),
	}, nil
}

func (h *InteractionHandler) PressLike(ctx context.Context, req *pb.PressLikeRequest) (*pb.RecordResponse, error) {
	viewerID, err := viewerFromContext(ctx)
	if err != nil {
		return nil, err
	}
	postID, err := parsePostID(req.PostId)
	if err != nil {
		return nil, err
	}

	rec, err := h.svc.PressLike(ctx, viewerID, postID)
	if err != nil {
		return nil, h.toStatus(err, "failed to toggle like")
	}
	return &pb.RecordResponse{Record: toProtoRecord(rec)}, nil
}

func (h *InteractionHandler) AddComment(ctx context.Context, req *pb.AddCommentRequest) (*pb.RecordResponse, error) {
	viewerID, err := viewerFromContext(ctx)
	if err != nil {
		return nil, err
	}
	postID, err := parsePostID(req.PostId)
	if err != nil {
		return nil, err
	}
	content, err := validateContent(req.Content)
	if err != nil {
		return nil, err
	}
	if !h.comments.Allow(viewerID) {
		return nil, status.Error(codes.ResourceExhausted, "commenting too fast")
	}

	rec, err := h.svc.AddComment(ctx, viewerID, postID, content)
	if err != nil {
		if errors.Is(err, feed.ErrSessionNotFound) {
			h.comments.Forget(viewerID)
		}
		return nil, h.toStatus(err, "failed to add comment")
	}
	return &pb.RecordResponse{Record: toProtoRecord(rec)}, nil
}

// RefreshPost reconciles the caller's record for a post with the stored state
func (h *InteractionHandler) RefreshPost(ctx context.Context, req *pb.RefreshPostRequest) (*pb.RefreshPostResponse, error) {
	viewerID, err := viewerFromContext(ctx)
	if err != nil {
		return nil, err
	}
	postID, err := parsePostID(req.PostId)
	if err != nil {
		return nil, err
	}

	snapshot, err := h.svc.Refresh(ctx, viewerID, postID)
	if err != nil {
		return nil, h.toStatus(err, "failed to refresh post")
	}

	likerIDs := make([]string, len(snapshot.RecentLikers))
	for i, id := range snapshot.RecentLikers {
		likerIDs[i] = id.String()
	}

	return &pb.RefreshPostResponse{
		Record:         toProtoRecord(snapshot.Record),
		RecentLikerIds: likerIDs,
	}, nil
}

func (h *InteractionHandler) GetPostComments(ctx context.Context, req *pb.GetPostCommentsRequest) (*pb.CommentConnection, error) {
	postID, err := parsePostID(req.PostId)
	if err != nil {
		return nil, err
	}

	first := req.First
	if first <= 0 {
		first = 10
	}
	if first > 100 {
		first = 100
	}

	conn, err := h.svc.GetPostComments(ctx, postID, first, req.After)
	if err != nil {
		return nil, h.toStatus(err, "failed to get comments")
	}

	edges := make([]*pb.CommentEdge, len(conn.Edges))
	for i, edge := range conn.Edges {
		edges[i] = &pb.CommentEdge{
			Cursor: edge.Cursor,
			Node: &pb.Comment{
				Id:        edge.Node.ID.String(),
				PostId:    edge.Node.PostID.String(),
				UserId:    edge.Node.UserID.String(),
				Content:   edge.Node.Content,
				CreatedAt: timestamppb.New(edge.Node.CreatedAt),
			},
		}
	}

	return &pb.CommentConnection{
		Edges:      edges,
		PageInfo:   toProtoPageInfo(conn.PageInfo),
		TotalCount: conn.TotalCount,
	}, nil
}

func (h *InteractionHandler) toStatus(err error, msg string) error {
	switch {
	case errors.Is(err, feed.ErrSessionNotFound):
		return status.Error(codes.FailedPrecondition, "feed is not open")
	case errors.Is(err, feed.ErrUnknownTarget):
		return status.Error(codes.NotFound, "post is not in the open feed")
	case errors.Is(err, repository.ErrNotFound):
		return status.Error(codes.NotFound, "post not found")
	case errors.Is(err, models.ErrEmptyComment), errors.Is(err, models.ErrEmptyPost):
		return status.Error(codes.InvalidArgument, "content is required")
	case errors.Is(err, repository.ErrInvalidCursor):
		return status.Error(codes.InvalidArgument, "invalid cursor")
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, msg)
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, msg)
	}

	h.logger.Error(msg, zap.Error(err))
	return status.Errorf(codes.Internal, "%s: %v", msg, err)
}

func viewerFromContext(ctx context.Context) (uuid.UUID, error) {
	userID, err := interceptor.GetUserIDFromContext(ctx)
	if err != nil {
		return uuid.Nil, status.Error(codes.Unauthenticated, "user not authenticated")
	}
	viewerID, err := uuid.Parse(userID)
	if err != nil {
		return uuid.Nil, status.Error(codes.Unauthenticated, "invalid user id in token")
	}
	return viewerID, nil
}

// validateContent trims text and checks it is neither blank nor too long.
func validateContent(raw string) (string, error) {
	content := strings.TrimSpace(raw)
	if content == "" {
		return "", status.Error(codes.InvalidArgument, "content is required")
	}
	if utf8.RuneCountInString(content) > maxContentLength {
		return "", status.Errorf(codes.InvalidArgument, "content exceeds maximum length of %d characters", maxContentLength)
	}
	return content, nil
}

func parsePostID(raw string) (uuid.UUID, error) {
	if raw == "" {
		return uuid.Nil, status.Error(codes.InvalidArgument, "post_id is required")
	}
	postID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, status.Error(codes.InvalidArgument, "invalid post_id format")
	}
	return postID, nil
}

func toProtoPost(post *models.Post) *pb.Post {
	return &pb.Post{
		Id:            post.ID.String(),
		UserId:        post.UserID.String(),
		Content:       post.Content,
		CreatedAt:     timestamppb.New(post.CreatedAt),
		UpdatedAt:     timestamppb.New(post.UpdatedAt),
		LikesCount:    post.LikesCount,
		CommentsCount: post.CommentsCount,
	}
}

func toProtoRecord(rec models.InteractionRecord) *pb.InteractionRecord {
	out := &pb.InteractionRecord{
		PostId:        rec.ID,
		LikeCount:     rec.LikeCount,
		LikedByViewer: rec.LikedByViewer,
		CommentCount:  rec.CommentCount,
		Comments:      rec.Comments,
		Provisional:   rec.Provisional,
	}
	if !rec.SyncedAt.IsZero() {
		out.SyncedAt = timestamppb.New(rec.SyncedAt)
	}
	return out
}

func toProtoPageInfo(info models.PageInfo) *pb.PageInfo {
	return &pb.PageInfo{
		EndCursor:       info.EndCursor,
		HasNextPage:     info.HasNextPage,
		StartCursor:     info.StartCursor,
		HasPreviousPage: info.HasPreviousPage,
	}
}
