package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go/jetstream"
)

// Publisher enqueues avatar synthesis jobs on JetStream.
type Publisher struct {
	js jetstream.JetStream
}

func NewPublisher(client *Client) *Publisher {
	return &Publisher{js: client.JetStream()}
}

// PublishAvatarJob persists a job on the work-queue stream.
func (p *Publisher) PublishAvatarJob(ctx context.Context, msg AvatarJobMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshaling avatar job: %w", err)
	}

	ack, err := p.js.Publish(ctx, SubjectAvatarJob, data)
	if err != nil {
		return fmt.Errorf("publishing avatar job: %w", err)
	}

	slog.Debug("avatar job published",
		"job_id", msg.ID,
		"session_id", msg.SessionID,
		"stream_seq", ack.Sequence,
	)
	return nil
}

// Schedule enqueues a synthesis job for the given session and emotion.
func (p *Publisher) Schedule(ctx context.Context, sessionID, emotionDescription string) error {
	return p.PublishAvatarJob(ctx, NewAvatarJobMessage(sessionID, emotionDescription))
}
