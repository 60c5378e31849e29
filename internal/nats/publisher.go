package nats

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go/jetstream"
)

// Publisher provides typed methods for publishing events to NATS JetStream.
// A nil *Publisher discards events, which is how the app runs without NATS.
type Publisher struct {
	js jetstream.JetStream
}

func NewPublisher(js jetstream.JetStream) *Publisher {
	return &Publisher{js: js}
}

func (p *Publisher) PublishSubmissionCreated(ctx context.Context, event SubmissionCreated) error {
	return p.publish(ctx, SubjectSubmissionCreated, event.SubmissionID.String(), event)
}

// PublishFeedbackCompleted emits what the external scorer sends once feedback
// is ready. The API never calls it; it pins the message format for the scorer
// and lets tests drive the profile consumer.
func (p *Publisher) PublishFeedbackCompleted(ctx context.Context, event FeedbackCompleted) error {
	return p.publish(ctx, SubjectFeedbackCompleted, "feedback-"+event.SubmissionID.String(), event)
}

func (p *Publisher) PublishStreakCompleted(ctx context.Context, event StreakCompleted) error {
	msgID := fmt.Sprintf("streak-%s-%s", event.UserID, event.WeekStart.Format("2006-01-02"))
	return p.publish(ctx, SubjectStreakCompleted, msgID, event)
}

// publish sets a message id so JetStream drops duplicates inside the stream's
// dedup window.
func (p *Publisher) publish(ctx context.Context, subject, msgID string, data any) error {
	if p == nil {
		return nil
	}
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshaling event for %s: %w", subject, err)
	}
	_, err = p.js.Publish(ctx, subject, payload, jetstream.WithMsgID(msgID))
	if err != nil {
		return fmt.Errorf("publishing to %s: %w", subject, err)
	}
	return nil
}
