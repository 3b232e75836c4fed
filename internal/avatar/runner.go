package avatar

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/visage-chat/visage/internal/emotion"
	"github.com/visage-chat/visage/internal/metrics"
	"github.com/visage-chat/visage/internal/notify"
)

// Job is one unit of avatar synthesis work.
type Job struct {
	ID                 string
	SessionID          string
	EmotionDescription string
}

// NewJob assigns a fresh job ID for a session's synthesis request.
func NewJob(sessionID, emotionDescription string) Job {
	return Job{
		ID:                 uuid.NewString(),
		SessionID:          sessionID,
		EmotionDescription: emotionDescription,
	}
}

// Registrar records a finished avatar so future resolutions can reuse it.
type Registrar interface {
	Register(ctx context.Context, asset emotion.Asset) error
}

// Runner executes one job end to end: render, register, push.
type Runner struct {
	synth    *Synthesizer
	registry Registrar
	notifier notify.Notifier
	baseURL  string
}

func NewRunner(synth *Synthesizer, registry Registrar, notifier notify.Notifier, baseURL string) *Runner {
	return &Runner{
		synth:    synth,
		registry: registry,
		notifier: notifier,
		baseURL:  baseURL,
	}
}

// Run synthesizes the avatar, registers it as ai-generated, then pushes
// the URL to the session. A failed render or registration produces no
// push and no cache entry. A failed push is not an error: registration
// already succeeded, and the client picks the asset up on its next turn.
func (r *Runner) Run(ctx context.Context, job Job) error {
	started := time.Now()

	ref, err := r.synth.Execute(ctx, job.EmotionDescription)
	if err != nil {
		metrics.AvatarJobsTotal.WithLabelValues("failed").Inc()
		return fmt.Errorf("job %s: %w", job.ID, err)
	}

	asset := emotion.Asset{
		ID:          "gen_" + job.ID,
		Description: job.EmotionDescription,
		ImageRef:    ref,
		Provenance:  emotion.ProvenanceGenerated,
	}
	if err := r.registry.Register(ctx, asset); err != nil {
		metrics.AvatarJobsTotal.WithLabelValues("failed").Inc()
		return fmt.Errorf("job %s: %w", job.ID, err)
	}

	if err := r.notifier.Push(ctx, job.SessionID, notify.NewAvatarUpdate(r.baseURL+ref)); err != nil {
		if errors.Is(err, notify.ErrNoConnection) {
			slog.Debug("avatar push skipped, no connection", "job_id", job.ID, "session_id", job.SessionID)
		} else {
			slog.Warn("avatar push failed", "job_id", job.ID, "session_id", job.SessionID, "error", err)
		}
	}

	metrics.AvatarJobsTotal.WithLabelValues("completed").Inc()
	slog.Info("avatar job completed",
		"job_id", job.ID,
		"session_id", job.SessionID,
		"image_ref", ref,
		"duration", time.Since(started),
	)
	return nil
}
