package handler

import (
	"context"
	"errors"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"interaction-service/feed"
	"interaction-service/gesture"
	"interaction-service/interceptor"
	"interaction-service/model"
	pb "interaction-service/pb"
	"interaction-service/pkg/jwt"
	"interaction-service/repository"
	"interaction-service/service"
)

type stubInteractions struct {
	viewer   uuid.UUID
	post     uuid.UUID
	open     bool
	taps     []int64
	comments []string
	tapErr   error
	author   uuid.UUID
}

func (s *stubInteractions) record() models.InteractionRecord {
	return models.InteractionRecord{ID: s.post.String(), LikeCount: 3, Comments: s.comments, CommentCount: int32(len(s.comments))}
}

func (s *stubInteractions) CreatePost(_ context.Context, authorID uuid.UUID, content string) (*models.Post, error) {
	s.author = authorID
	now := time.Now()
	return &models.Post{ID: s.post, UserID: authorID, Content: content, CreatedAt: now, UpdatedAt: now}, nil
}

func (s *stubInteractions) OpenFeed(_ context.Context, viewerID uuid.UUID, _ int, after *string) (*service.FeedPage, error) {
	if after != nil && *after == "bad" {
		return nil, repository.ErrInvalidCursor
	}
	s.viewer = viewerID
	created := !s.open
	s.open = true
	return &service.FeedPage{
		Records: []models.InteractionRecord{s.record()},
		Created: created,
	}, nil
}

func (s *stubInteractions) CloseFeed(uuid.UUID) bool {
	was := s.open
	s.open = false
	return was
}

func (s *stubInteractions) Tap(_ context.Context, _, postID uuid.UUID, ts int64) (feed.TapResult, error) {
	if s.tapErr != nil {
		return feed.TapResult{}, s.tapErr
	}
	if !s.open {
		return feed.TapResult{}, feed.ErrSessionNotFound
	}
	if postID != s.post {
		return feed.TapResult{}, feed.ErrUnknownTarget
	}
	s.taps = append(s.taps, ts)
	if len(s.taps)%2 == 0 {
		rec := s.record()
		rec.LikedByViewer = true
		rec.LikeCount++
		return feed.TapResult{Action: gesture.ActionToggleLike, HeartBurst: true, Record: rec}, nil
	}
	return feed.TapResult{Action: gesture.ActionNone, Record: s.record()}, nil
}

func (s *stubInteractions) PressLike(context.Context, uuid.UUID, uuid.UUID) (models.InteractionRecord, error) {
	rec := s.record()
	rec.LikedByViewer = true
	rec.LikeCount++
	return rec, nil
}

func (s *stubInteractions) AddComment(_ context.Context, _, _ uuid.UUID, text string) (models.InteractionRecord, error) {
	if !s.open {
		return models.InteractionRecord{}, feed.ErrSessionNotFound
	}
	s.comments = append(s.comments, text)
	return s.record(), nil
}

func (s *stubInteractions) Refresh(context.Context, uuid.UUID, uuid.UUID) (*service.PostSnapshot, error) {
	return &service.PostSnapshot{Record: s.record(), RecentLikers: []uuid.UUID{s.viewer}}, nil
}

func (s *stubInteractions) GetPostComments(_ context.Context, postID uuid.UUID, first int32, _ *string) (*models.CommentConnection, error) {
	if postID != s.post {
		return nil, errors.New("connection reset")
	}
	return &models.CommentConnection{
		Edges: []models.CommentEdge{{
			Cursor: "c1",
			Node:   models.Comment{ID: uuid.New(), PostID: postID, Content: "hi", CreatedAt: time.Now()},
		}},
		TotalCount: first,
	}, nil
}

type harness struct {
	client  pb.InteractionServiceClient
	handler *InteractionHandler
	stub   *stubInteractions
	ctx    context.Context
	viewer uuid.UUID
}

func newHarness(t *testing.T, commentBurst int) *harness {
	t.Helper()

	manager := jwt.NewManager("test-secret", "test")
	viewer := uuid.New()
	token, err := manager.Generate(viewer.String(), nil, time.Hour)
	require.NoError(t, err)

	stub := &stubInteractions{post: uuid.New()}
	auth := interceptor.NewAuthInterceptor(manager, []string{pb.InteractionService_GetPostComments_FullMethodName})

	lis := bufconn.Listen(1 << 20)
	server := grpc.NewServer(grpc.ChainUnaryInterceptor(interceptor.Logging(zap.NewNop()), auth.Unary()))
	h := NewInteractionHandler(stub, 0.001, commentBurst, zap.NewNop())
	pb.RegisterInteractionServiceServer(server, h)
	go func() { _ = server.Serve(lis) }()
	t.Cleanup(server.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	ctx := metadata.AppendToOutgoingContext(context.Background(), "authorization", "Bearer "+token)
	return &harness{
		client:  pb.NewInteractionServiceClient(conn),
		handler: h,
		stub:    stub,
		ctx:     ctx,
		viewer:  viewer,
	}
}

func TestHandler_FeedLifecycle(t *testing.T) {
	h := newHarness(t, 5)

	opened, err := h.client.OpenFeed(h.ctx, &pb.OpenFeedRequest{First: 10})
	require.NoError(t, err)
	assert.True(t, opened.Created)
	require.Len(t, opened.Records, 1)
	assert.Equal(t, h.stub.post.String(), opened.Records[0].PostId)
	assert.Equal(t, h.viewer, h.stub.viewer, "viewer comes from the token")

	first, err := h.client.Tap(h.ctx, &pb.TapRequest{PostId: h.stub.post.String(), TimestampMillis: 1000})
	require.NoError(t, err)
	assert.Equal(t, "none", first.Action)
	assert.False(t, first.HeartBurst)

	second, err := h.client.Tap(h.ctx, &pb.TapRequest{PostId: h.stub.post.String(), TimestampMillis: 1200})
	require.NoError(t, err)
	assert.Equal(t, "toggle_like", second.Action)
	assert.True(t, second.HeartBurst)
	assert.True(t, second.Record.LikedByViewer)
	assert.Equal(t, []int64{1000, 1200}, h.stub.taps)

	refreshed, err := h.client.RefreshPost(h.ctx, &pb.RefreshPostRequest{PostId: h.stub.post.String()})
	require.NoError(t, err)
	assert.Equal(t, []string{h.viewer.String()}, refreshed.RecentLikerIds)

	closed, err := h.client.CloseFeed(h.ctx, &pb.CloseFeedRequest{})
	require.NoError(t, err)
	assert.Equal(t, "Feed closed", closed.Message)

	_, err = h.client.Tap(h.ctx, &pb.TapRequest{PostId: h.stub.post.String(), TimestampMillis: 2000})
	assert.Equal(t, codes.FailedPrecondition, status.Code(err))
}

func TestHandler_Validation(t *testing.T) {
	h := newHarness(t, 5)
	_, err := h.client.OpenFeed(h.ctx, &pb.OpenFeedRequest{})
	require.NoError(t, err)

	tests := []struct {
		name string
		call func() error
		code codes.Code
	}{
		{"missing post id", func() error {
			_, err := h.client.Tap(h.ctx, &pb.TapRequest{})
			return err
		}, codes.InvalidArgument},
		{"malformed post id", func() error {
			_, err := h.client.PressLike(h.ctx, &pb.PressLikeRequest{PostId: "nope"})
			return err
		}, codes.InvalidArgument},
		{"post outside feed", func() error {
			_, err := h.client.Tap(h.ctx, &pb.TapRequest{PostId: uuid.NewString()})
			return err
		}, codes.NotFound},
		{"empty comment", func() error {
			_, err := h.client.AddComment(h.ctx, &pb.AddCommentRequest{PostId: h.stub.post.String()})
			return err
		}, codes.InvalidArgument},
		{"bad cursor", func() error {
			after := "bad"
			_, err := h.client.OpenFeed(h.ctx, &pb.OpenFeedRequest{After: &after})
			return err
		}, codes.InvalidArgument},
		{"unauthenticated", func() error {
			_, err := h.client.PressLike(context.Background(), &pb.PressLikeRequest{PostId: h.stub.post.String()})
			return err
		}, codes.Unauthenticated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, status.Code(tt.call()))
		})
	}
}

func TestHandler_CommentRateLimit(t *testing.T) {
	h := newHarness(t, 2)
	_, err := h.client.OpenFeed(h.ctx, &pb.OpenFeedRequest{})
	require.NoError(t, err)

	req := &pb.AddCommentRequest{PostId: h.stub.post.String(), Content: "wow"}
	for i := 0; i < 2; i++ {
		resp, err := h.client.AddComment(h.ctx, req)
		require.NoError(t, err)
		assert.Equal(t, int32(i+1), resp.Record.CommentCount)
	}

	_, err = h.client.AddComment(h.ctx, req)
	assert.Equal(t, codes.ResourceExhausted, status.Code(err))
}

func TestHandler_BlankCommentKeepsRateToken(t *testing.T) {
	h := newHarness(t, 1)
	_, err := h.client.OpenFeed(h.ctx, &pb.OpenFeedRequest{})
	require.NoError(t, err)

	_, err = h.client.AddComment(h.ctx, &pb.AddCommentRequest{PostId: h.stub.post.String(), Content: " \n\t "})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	resp, err := h.client.AddComment(h.ctx, &pb.AddCommentRequest{PostId: h.stub.post.String(), Content: "  wow "})
	require.NoError(t, err)
	assert.Equal(t, []string{"wow"}, resp.Record.Comments)

	_, err = h.client.AddComment(h.ctx, &pb.AddCommentRequest{PostId: h.stub.post.String(), Content: "again"})
	assert.Equal(t, codes.ResourceExhausted, status.Code(err))
}

func TestHandler_CommentLengthCountsCharacters(t *testing.T) {
	h := newHarness(t, 5)
	_, err := h.client.OpenFeed(h.ctx, &pb.OpenFeedRequest{})
	require.NoError(t, err)

	longest := strings.Repeat("é", 2000)
	_, err = h.client.AddComment(h.ctx, &pb.AddCommentRequest{PostId: h.stub.post.String(), Content: longest})
	require.NoError(t, err)
	assert.Equal(t, []string{longest}, h.stub.comments)

	_, err = h.client.AddComment(h.ctx, &pb.AddCommentRequest{PostId: h.stub.post.String(), Content: longest + "é"})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestHandler_ForgetViewerResetsCommentLimit(t *testing.T) {
	h := newHarness(t, 1)
	_, err := h.client.OpenFeed(h.ctx, &pb.OpenFeedRequest{})
	require.NoError(t, err)

	req := &pb.AddCommentRequest{PostId: h.stub.post.String(), Content: "wow"}
	_, err = h.client.AddComment(h.ctx, req)
	require.NoError(t, err)
	assert.Equal(t, 1, h.handler.comments.Len())

	h.handler.ForgetViewer(h.viewer)
	assert.Equal(t, 0, h.handler.comments.Len())

	_, err = h.client.AddComment(h.ctx, req)
	assert.NoError(t, err)
}

func TestHandler_CommentWithoutSessionLeavesNoLimiter(t *testing.T) {
	h := newHarness(t, 5)

	_, err := h.client.AddComment(h.ctx, &pb.AddCommentRequest{PostId: h.stub.post.String(), Content: "wow"})
	assert.Equal(t, codes.FailedPrecondition, status.Code(err))
	assert.Equal(t, 0, h.handler.comments.Len())
}

func TestHandler_CreatePost(t *testing.T) {
	h := newHarness(t, 5)

	resp, err := h.client.CreatePost(h.ctx, &pb.CreatePostRequest{Content: "  golden hour "})
	require.NoError(t, err)
	assert.Equal(t, h.stub.post.String(), resp.Post.Id)
	assert.Equal(t, h.viewer.String(), resp.Post.UserId)
	assert.Equal(t, "golden hour", resp.Post.Content)
	assert.NotNil(t, resp.Post.CreatedAt)
	assert.Equal(t, h.viewer, h.stub.author, "author comes from the token")

	_, err = h.client.CreatePost(h.ctx, &pb.CreatePostRequest{Content: "   "})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = h.client.CreatePost(h.ctx, &pb.CreatePostRequest{Content: strings.Repeat("x", 2001)})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = h.client.CreatePost(context.Background(), &pb.CreatePostRequest{Content: "hi"})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
}

func TestHandler_GetPostCommentsIsPublic(t *testing.T) {
	h := newHarness(t, 5)

	conn, err := h.client.GetPostComments(context.Background(), &pb.GetPostCommentsRequest{PostId: h.stub.post.String(), First: 500})
	require.NoError(t, err)
	require.Len(t, conn.Edges, 1)
	assert.Equal(t, "hi", conn.Edges[0].Node.Content)
	assert.NotNil(t, conn.Edges[0].Node.CreatedAt)
	assert.Equal(t, int32(100), conn.TotalCount, "page size is capped")

	_, err = h.client.GetPostComments(context.Background(), &pb.GetPostCommentsRequest{PostId: uuid.NewString()})
	assert.Equal(t, codes.Internal, status.Code(err))
}
