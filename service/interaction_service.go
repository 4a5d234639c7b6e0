package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"interaction-service/cache"
	"interaction-service/events"
	"interaction-service/feed"
	"interaction-service/metrics"
	"interaction-service/model"
	"interaction-service/repository"
)

// Publisher fans interaction events out to other services.
type Publisher interface {
	PublishPostCreated(event events.PostCreatedEvent) error
	PublishLikeChanged(event events.LikeChangedEvent) error
	PublishCommentAdded(event events.PostCommentedEvent) error
	PublishLikeGesture(event events.LikeGestureEvent) error
}

type Dependencies struct {
	Registry  *feed.Registry
	Posts     repository.PostRepository
	Likes     repository.LikeRepository
	Comments  repository.CommentRepository
	Counters  cache.CounterCache
	Publisher Publisher
	Metrics   *metrics.Metrics
	Logger    *zap.Logger
}

type Config struct {
	FeedPageSize    int
	CommentsPerPost int
	RecentLikers    int32
}

// FeedPage is one page of a viewer's feed as held by their session.
type FeedPage struct {
	Records  []models.InteractionRecord
	Posts    []models.Post
	PageInfo models.PageInfo
	Created  bool
}

// PostSnapshot is a refreshed record plus who liked the post recently.
type PostSnapshot struct {
	Record       models.InteractionRecord
	RecentLikers []uuid.UUID
}

// InteractionService applies feed interactions optimistically to the
// viewer's session, then writes them to the record store and reconciles the
// session with what the store confirmed. A failed write leaves the
// optimistic value in place until the next authoritative read.
type InteractionService struct {
	registry  *feed.Registry
	posts     repository.PostRepository
	likes     repository.LikeRepository
	comments  repository.CommentRepository
	counters  cache.CounterCache
	publisher Publisher
	metrics   *metrics.Metrics
	logger    *zap.Logger
	cfg       Config
	now       func() time.Time
}

func NewInteractionService(deps Dependencies, cfg Config) *InteractionService {
	if cfg.FeedPageSize <= 0 {
		cfg.FeedPageSize = 20
	}
	if cfg.RecentLikers <= 0 {
		cfg.RecentLikers = 5
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Metrics == nil {
		deps.Metrics = metrics.NewNop()
	}

	return &InteractionService{
		registry:  deps.Registry,
		posts:     deps.Posts,
		likes:     deps.Likes,
		comments:  deps.Comments,
		counters:  deps.Counters,
		publisher: deps.Publisher,
		metrics:   deps.Metrics,
		logger:    deps.Logger,
		cfg:       cfg,
		now:       time.Now,
	}
}

// OpenFeed loads a page of the feed into the viewer's session, creating the
// session on first use.
func (s *InteractionService) OpenFeed(ctx context.Context, viewerID uuid.UUID, limit int, after *string) (*FeedPage, error) {
	if limit <= 0 {
		limit = s.cfg.FeedPageSize
	}

	conn, err := s.posts.GetFeed(ctx, viewerID, limit, after)
	if err != nil {
		return nil, err
	}

	postIDs := make([]uuid.UUID, len(conn.Edges))
	for i, edge := range conn.Edges {
		postIDs[i] = edge.Node.ID
	}

	recent, err := s.comments.GetCommentsByPosts(ctx, postIDs, s.cfg.CommentsPerPost)
	if err != nil {
		s.logger.Warn("Loading feed without recent comments", zap.Stringer("viewer_id", viewerID), zap.Error(err))
		recent = nil
	}

	records := make([]models.InteractionRecord, len(conn.Edges))
	posts := make([]models.Post, len(conn.Edges))
	for i, edge := range conn.Edges {
		records[i] = edge.Node.Record(recent[edge.Node.ID])
		posts[i] = edge.Node
	}

	session, created := s.registry.Open(viewerID)
	session.Load(records)

	page := &FeedPage{
		Posts:    posts,
		PageInfo: conn.PageInfo,
		Created:  created,
		Records:  make([]models.InteractionRecord, 0, len(records)),
	}
	for _, rec := range records {
		if current, ok := session.Record(rec.ID); ok {
			page.Records = append(page.Records, current)
		}
	}

	return page, nil
}

func (s *InteractionService) CloseFeed(viewerID uuid.UUID) bool {
	return s.registry.Close(viewerID)
}

// Tap feeds a tap on a post into the viewer's gesture classifier. A double
// tap toggles the like locally and then persists it.
func (s *InteractionService) Tap(ctx context.Context, viewerID, postID uuid.UUID, timestamp int64) (feed.TapResult, error) {
	session, err := s.registry.Get(viewerID)
	if err != nil {
		return feed.TapResult{}, err
	}

	result, err := session.Tap(postID.String(), timestamp)
	if err != nil {
		return feed.TapResult{}, err
	}
	s.metrics.Taps.WithLabelValues(result.Action.String()).Inc()

	if !result.HeartBurst {
		return result, nil
	}
	s.metrics.LikeToggles.WithLabelValues("gesture").Inc()

	liked := result.Record.LikedByViewer
	if err := s.publisher.PublishLikeGesture(events.LikeGestureEvent{
		PostID:    postID,
		UserID:    viewerID,
		Liked:     liked,
		TappedAt:  timestamp,
		Timestamp: s.now(),
	}); err != nil {
		s.logger.Warn("Failed to publish like gesture event", zap.Stringer("post_id", postID), zap.Error(err))
	}

	result.Record = s.persistLike(ctx, session, viewerID, postID, liked, result.Record)
	return result, nil
}

// PressLike toggles the like from the explicit like button.
func (s *InteractionService) PressLike(ctx context.Context, viewerID, postID uuid.UUID) (models.InteractionRecord, error) {
	session, err := s.registry.Get(viewerID)
	if err != nil {
		return models.InteractionRecord{}, err
	}

	rec, err := session.PressLike(postID.String())
	if err != nil {
		return models.InteractionRecord{}, err
	}
	s.metrics.LikeToggles.WithLabelValues("button").Inc()

	return s.persistLike(ctx, session, viewerID, postID, rec.LikedByViewer, rec), nil
}

func (s *InteractionService) persistLike(
	ctx context.Context,
	session *feed.Session,
	viewerID, postID uuid.UUID,
	liked bool,
	optimistic models.InteractionRecord,
) models.InteractionRecord {
	state, err := s.likes.SetLike(ctx, postID, viewerID, liked)
	if err != nil {
		s.metrics.PersistFailures.WithLabelValues("like").Inc()
		s.logger.Warn("Keeping optimistic like after store failure",
			zap.Stringer("post_id", postID),
			zap.Stringer("viewer_id", viewerID),
			zap.Bool("liked", liked),
			zap.Error(err))
		return optimistic
	}

	rec := s.reconcile(session, *state, optimistic)
	s.cacheCounters(ctx, postID, state.Counters())

	if err := s.publisher.PublishLikeChanged(events.LikeChangedEvent{
		PostID:        postID,
		PostOwner:     state.OwnerID,
		UserID:        viewerID,
		Liked:         state.IsLiked,
		LikesCount:    state.LikesCount,
		CommentsCount: state.CommentsCount,
		UpdatedAt:     state.UpdatedAt,
	}); err != nil {
		s.logger.Warn("Failed to publish like event", zap.Stringer("post_id", postID), zap.Error(err))
	}

	return rec
}

// AddComment appends a comment to the post locally, then stores it.
func (s *InteractionService) AddComment(ctx context.Context, viewerID, postID uuid.UUID, text string) (models.InteractionRecord, error) {
	session, err := s.registry.Get(viewerID)
	if err != nil {
		return models.InteractionRecord{}, err
	}

	rec, err := session.AddComment(postID.String(), text)
	if err != nil {
		return models.InteractionRecord{}, err
	}
	s.metrics.CommentsAdded.Inc()

	comment := &models.Comment{
		ID:      uuid.New(),
		PostID:  postID,
		UserID:  viewerID,
		Content: strings.TrimSpace(text),
	}

	state, err := s.comments.AddComment(ctx, comment)
	if err != nil {
		s.metrics.PersistFailures.WithLabelValues("comment").Inc()
		s.logger.Warn("Keeping optimistic comment after store failure",
			zap.Stringer("post_id", postID),
			zap.Stringer("viewer_id", viewerID),
			zap.Error(err))
		return rec, nil
	}

	rec = s.reconcile(session, *state, rec)
	s.cacheCounters(ctx, postID, state.Counters())

	if err := s.publisher.PublishCommentAdded(events.PostCommentedEvent{
		PostID:        postID,
		PostOwner:     state.OwnerID,
		CommentID:     comment.ID,
		CommentedBy:   viewerID,
		Content:       comment.Content,
		LikesCount:    state.LikesCount,
		CommentsCount: state.CommentsCount,
		UpdatedAt:     state.UpdatedAt,
	}); err != nil {
		s.logger.Warn("Failed to publish comment event", zap.Stringer("comment_id", comment.ID), zap.Error(err))
	}

	return rec, nil
}

// CreatePost stores a new post by authorID and announces it. Counters of the
// new post are cached at zero so the first refresh skips the store.
func (s *InteractionService) CreatePost(ctx context.Context, authorID uuid.UUID, content string) (*models.Post, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, models.ErrEmptyPost
	}

	post := &models.Post{
		ID:      uuid.New(),
		UserID:  authorID,
		Content: content,
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, err
	}

	s.cacheCounters(ctx, post.ID, models.Counters{
		LikesCount:    post.LikesCount,
		CommentsCount: post.CommentsCount,
		UpdatedAt:     post.UpdatedAt,
	})

	if err := s.publisher.PublishPostCreated(events.PostCreatedEvent{
		PostID:    post.ID,
		UserID:    post.UserID,
		Content:   post.Content,
		CreatedAt: post.CreatedAt,
	}); err != nil {
		s.logger.Warn("Failed to publish post created event", zap.Stringer("post_id", post.ID), zap.Error(err))
	}

	s.logger.Info("Post created", zap.Stringer("post_id", post.ID), zap.Stringer("user_id", authorID))
	return post, nil
}

// Refresh reads the authoritative state of a post, from the counter cache
// when possible, and reconciles the viewer's record with it.
func (s *InteractionService) Refresh(ctx context.Context, viewerID, postID uuid.UUID) (*PostSnapshot, error) {
	session, err := s.registry.Get(viewerID)
	if err != nil {
		return nil, err
	}
	current, ok := session.Record(postID.String())
	if !ok {
		return nil, feed.ErrUnknownTarget
	}

	state, err := s.authoritativeState(ctx, viewerID, postID)
	if err != nil {
		return nil, err
	}

	snapshot := &PostSnapshot{Record: s.reconcile(session, *state, current)}

	likers, err := s.likes.GetRecentLikersByPost(ctx, postID, s.cfg.RecentLikers)
	if err != nil {
		s.logger.Warn("Failed to load recent likers", zap.Stringer("post_id", postID), zap.Error(err))
	} else {
		snapshot.RecentLikers = likers
	}

	return snapshot, nil
}

func (s *InteractionService) authoritativeState(ctx context.Context, viewerID, postID uuid.UUID) (*models.PostState, error) {
	counters, err := s.counters.Get(ctx, postID)
	if err == nil {
		liked, err := s.likes.IsPostLikedByUser(ctx, postID, viewerID)
		if err != nil {
			return nil, err
		}
		return &models.PostState{
			PostID:        postID,
			LikesCount:    counters.LikesCount,
			CommentsCount: counters.CommentsCount,
			IsLiked:       liked,
			UpdatedAt:     counters.UpdatedAt,
		}, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.Warn("Counter cache unavailable", zap.Stringer("post_id", postID), zap.Error(err))
	}

	state, err := s.posts.GetPostState(ctx, postID, viewerID)
	if err != nil {
		return nil, err
	}
	s.cacheCounters(ctx, postID, state.Counters())
	return state, nil
}

// GetPostComments pages through the stored comments of a post.
func (s *InteractionService) GetPostComments(ctx context.Context, postID uuid.UUID, first int32, after *string) (*models.CommentConnection, error) {
	return s.comments.GetPostComments(ctx, postID, first, after)
}

func (s *InteractionService) reconcile(session *feed.Session, state models.PostState, fallback models.InteractionRecord) models.InteractionRecord {
	rec, applied, err := session.Reconcile(feed.Authoritative{
		ID:            state.PostID.String(),
		LikeCount:     state.LikesCount,
		LikedByViewer: state.IsLiked,
		CommentCount:  state.CommentsCount,
		UpdatedAt:     state.UpdatedAt,
	})
	if err != nil {
		// The post left the session while the store call was in flight.
		return fallback
	}
	if !applied {
		s.logger.Debug("Ignoring stale authoritative state",
			zap.Stringer("post_id", state.PostID),
			zap.Time("updated_at", state.UpdatedAt))
	}
	return rec
}

func (s *InteractionService) cacheCounters(ctx context.Context, postID uuid.UUID, counters models.Counters) {
	if _, err := s.counters.Put(ctx, postID, counters); err != nil {
		s.logger.Warn("Failed to cache counters", zap.Stringer("post_id", postID), zap.Error(err))
	}
}
