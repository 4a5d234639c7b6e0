package publisher

import (
	"go.uber.org/zap"

	"interaction-service/events"
)

// Bus is the part of the NATS client the publisher needs.
type Bus interface {
	Publish(subject string, data interface{}) error
}

type EventPublisher struct {
	bus    Bus
	logger *zap.Logger
}

func NewEventPublisher(bus Bus, logger *zap.Logger) *EventPublisher {
	return &EventPublisher{bus: bus, logger: logger}
}

func (p *EventPublisher) PublishPostCreated(event events.PostCreatedEvent) error {
	if err := p.bus.Publish(events.SubjectPostCreated, event); err != nil {
		return err
	}

	p.logger.Debug("Published event", zap.String("subject", events.SubjectPostCreated), zap.Stringer("post_id", event.PostID))
	return nil
}

func (p *EventPublisher) PublishLikeChanged(event events.LikeChangedEvent) error {
	subject := event.Subject()
	if err := p.bus.Publish(subject, event); err != nil {
		return err
	}

	p.logger.Debug("Published event", zap.String("subject", subject), zap.Stringer("post_id", event.PostID))
	return nil
}

func (p *EventPublisher) PublishCommentAdded(event events.PostCommentedEvent) error {
	if err := p.bus.Publish(events.SubjectPostCommented, event); err != nil {
		return err
	}

	p.logger.Debug("Published event",
		zap.String("subject", events.SubjectPostCommented),
		zap.Stringer("comment_id", event.CommentID))
	return nil
}

func (p *EventPublisher) PublishLikeGesture(event events.LikeGestureEvent) error {
	return p.bus.Publish(events.SubjectLikeGesture, event)
}
