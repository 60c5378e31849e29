package profile

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go/jetstream"

	inats "github.com/dailyink/dailyink/internal/nats"
	"github.com/dailyink/dailyink/internal/writemode"
)

const consumerName = "profile-updater"

// Consumer applies completed feedback from NATS to user profiles.
type Consumer struct {
	svc         *Service
	consumerMgr *inats.ConsumerManager
}

func NewConsumer(svc *Service, consumerMgr *inats.ConsumerManager) *Consumer {
	return &Consumer{svc: svc, consumerMgr: consumerMgr}
}

// Start runs the consume loop. Blocks until ctx is cancelled.
func (c *Consumer) Start(ctx context.Context) error {
	return c.consumerMgr.Consume(ctx, inats.ConsumerSpec{
		Durable: consumerName,
		Subject: inats.SubjectFeedbackCompleted,
	}, c.handle)
}

func (c *Consumer) handle(ctx context.Context, msg jetstream.Msg) {
	userID, sub, fb, err := decodeFeedback(msg.Data())
	if err != nil {
		// A malformed payload will never decode; drop it.
		slog.Error("profile consumer: decoding event", "error", err)
		_ = msg.Term()
		return
	}

	if _, err := c.svc.UpdateProfile(ctx, userID, sub, fb); err != nil {
		slog.Error("profile consumer: updating profile", "user_id", userID, "submission_id", sub.ID, "error", err)
		_ = msg.Nak()
		return
	}
	_ = msg.Ack()
}

func decodeFeedback(data []byte) (uuid.UUID, Submission, Feedback, error) {
	var event inats.FeedbackCompleted
	if err := json.Unmarshal(data, &event); err != nil {
		return uuid.Nil, Submission{}, Feedback{}, fmt.Errorf("unmarshaling feedback event: %w", err)
	}
	if event.UserID == uuid.Nil {
		return uuid.Nil, Submission{}, Feedback{}, fmt.Errorf("feedback event for submission %s has no user", event.SubmissionID)
	}
	mode, err := writemode.Parse(event.Mode)
	if err != nil {
		return uuid.Nil, Submission{}, Feedback{}, err
	}

	sub := Submission{
		ID:        event.SubmissionID,
		Mode:      mode,
		Title:     event.Title,
		Topic:     event.Topic,
		Text:      event.Text,
		WordCount: event.WordCount,
		CreatedAt: event.CreatedAt,
		Author:    UserInfo{DisplayName: event.AuthorName, Email: event.AuthorEmail},
	}
	fb := Feedback{Score: event.Score, Criteria: event.Criteria, Text: event.Feedback}
	return event.UserID, sub, fb, nil
}
