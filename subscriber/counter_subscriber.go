package subscriber

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"interaction-service/cache"
	"interaction-service/events"
	"interaction-service/metrics"
	"interaction-service/model"
)

// Source is the part of the NATS client the subscriber needs.
type Source interface {
	CreateStream(streamName string, subjects []string) error
	SubscribeDurable(subject, durableName, queueGroup string, handler nats.MsgHandler) (*nats.Subscription, error)
}

// CounterSubscriber keeps the post counter cache in step with like and
// comment events published by every service instance.
type CounterSubscriber struct {
	source  Source
	cache   cache.CounterCache
	metrics *metrics.Metrics
	logger  *zap.Logger
	ctx     context.Context
	subs    []*nats.Subscription
}

func NewCounterSubscriber(
	ctx context.Context,
	source Source,
	counters cache.CounterCache,
	m *metrics.Metrics,
	logger *zap.Logger,
) *CounterSubscriber {
	return &CounterSubscriber{
		source:  source,
		cache:   counters,
		metrics: m,
		logger:  logger,
		ctx:     ctx,
	}
}

func (s *CounterSubscriber) Start() error {
	if err := s.source.CreateStream(events.StreamName, events.Subjects()); err != nil {
		s.logger.Warn("Stream might already exist or error creating", zap.Error(err))
	}

	bindings := []struct {
		subject string
		durable string
		apply   func(data []byte) error
	}{
		{events.SubjectPostLiked, "interaction-counters-liked", s.applyLikeChanged},
		{events.SubjectPostUnliked, "interaction-counters-unliked", s.applyLikeChanged},
		{events.SubjectPostCommented, "interaction-counters-commented", s.applyPostCommented},
	}

	for _, b := range bindings {
		sub, err := s.source.SubscribeDurable(b.subject, b.durable, "interaction-counters", s.handler(b.subject, b.apply))
		if err != nil {
			return err
		}
		s.subs = append(s.subs, sub)
	}

	s.logger.Info("Counter subscriber started", zap.Int("subscriptions", len(s.subs)))
	return nil
}

func (s *CounterSubscriber) Stop() error {
	for _, sub := range s.subs {
		if err := sub.Drain(); err != nil {
			return fmt.Errorf("failed to drain subscription %s: %w", sub.Subject, err)
		}
	}
	s.subs = nil
	return nil
}

func (s *CounterSubscriber) handler(subject string, apply func([]byte) error) nats.MsgHandler {
	return func(msg *nats.Msg) {
		if err := apply(msg.Data); err != nil {
			s.logger.Error("Error applying event", zap.String("subject", subject), zap.Error(err))
			_ = msg.Nak()
			return
		}
		_ = msg.Ack()
	}
}

func (s *CounterSubscriber) applyLikeChanged(data []byte) error {
	var event events.LikeChangedEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return fmt.Errorf("failed to decode like event: %w", err)
	}
	return s.store(event.PostID, models.Counters{
		LikesCount:    event.LikesCount,
		CommentsCount: event.CommentsCount,
		UpdatedAt:     event.UpdatedAt,
	})
}

func (s *CounterSubscriber) applyPostCommented(data []byte) error {
	var event events.PostCommentedEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return fmt.Errorf("failed to decode comment event: %w", err)
	}
	return s.store(event.PostID, models.Counters{
		LikesCount:    event.LikesCount,
		CommentsCount: event.CommentsCount,
		UpdatedAt:     event.UpdatedAt,
	})
}

func (s *CounterSubscriber) store(postID uuid.UUID, counters models.Counters) error {
	if postID == uuid.Nil {
		return fmt.Errorf("event without post id")
	}

	written, err := s.cache.Put(s.ctx, postID, counters)
	if err != nil {
		return err
	}

	result := "stale"
	if written {
		result = "written"
	}
	s.metrics.CacheWrites.WithLabelValues(result).Inc()
	return nil
}
