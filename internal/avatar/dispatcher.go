package avatar

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/visage-chat/visage/internal/nats"
)

// Dispatcher pulls synthesis jobs off JetStream and feeds the worker
// pool. Jobs the pool cannot accept are Nak'd for redelivery once
// capacity frees up.
type Dispatcher struct {
	client *nats.Client
	pool   *Pool
}

func NewDispatcher(client *nats.Client, pool *Pool) *Dispatcher {
	return &Dispatcher{client: client, pool: pool}
}

// Start creates the durable consumer and begins the fetch loop in a
// goroutine. The loop exits when ctx is canceled.
func (d *Dispatcher) Start(ctx context.Context) error {
	cm := nats.NewConsumerManager(d.client.JetStream())
	consumer, err := cm.EnsureConsumer(ctx, nats.StreamJobs, nats.ConsumerAvatarJobs, nats.SubjectAvatarJob)
	if err != nil {
		return fmt.Errorf("creating consumer %s: %w", nats.ConsumerAvatarJobs, err)
	}

	go d.loop(ctx, consumer)
	slog.Info("avatar dispatcher started", "stream", nats.StreamJobs, "consumer", nats.ConsumerAvatarJobs)
	return nil
}

func (d *Dispatcher) loop(ctx context.Context, consumer jetstream.Consumer) {
	for {
		select {
		case <-ctx.Done():
			slog.Info("avatar dispatcher stopping")
			return
		default:
		}

		batch, err := consumer.Fetch(8, jetstream.FetchMaxWait(nats.FetchTimeout))
		if err != nil {
			slog.Warn("fetching avatar jobs", "error", err)
			continue
		}

		for msg := range batch.Messages() {
			d.handle(msg)
		}

		// An empty fetch window closes the batch without an error; anything
		// else is worth logging.
		if err := batch.Error(); err != nil && !errors.Is(err, context.DeadlineExceeded) {
			slog.Warn("avatar job batch ended", "error", err)
		}
	}
}

func (d *Dispatcher) handle(msg jetstream.Msg) {
	var jm nats.AvatarJobMessage
	if err := json.Unmarshal(msg.Data(), &jm); err != nil {
		slog.Error("malformed avatar job, terminating", "error", err)
		_ = msg.Term()
		return
	}

	job := Job{
		ID:                 jm.ID,
		SessionID:          jm.SessionID,
		EmotionDescription: jm.EmotionDescription,
	}

	if d.pool.Submit(job) {
		_ = msg.Ack()
		return
	}

	// Pool saturated: leave the job on the stream for redelivery.
	slog.Warn("avatar pool saturated, requeueing job", "job_id", jm.ID)
	if err := msg.Nak(); err != nil {
		slog.Warn("nak failed", "job_id", jm.ID, "error", err)
	}
}
