package chat

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/visage-chat/visage/internal/ai"
	"github.com/visage-chat/visage/internal/emotion"
	"github.com/visage-chat/visage/internal/history"
	"github.com/visage-chat/visage/internal/metrics"
	"github.com/visage-chat/visage/internal/transcript"
)

// SessionStore is the slice of transcript persistence a turn needs.
type SessionStore interface {
	EnsureSession(ctx context.Context, id string) (*transcript.Session, error)
	AddMessage(ctx context.Context, sessionID, sender, content string) error
	UpdateTitle(ctx context.Context, id, title string) error
}

// ContextRetriever supplies and records conversational context.
type ContextRetriever interface {
	Append(ctx context.Context, sessionID, question, answer string) error
	RetrieveSemantic(ctx context.Context, sessionID, query string, topK int) (string, error)
	RetrieveRecent(ctx context.Context, sessionID string, n int) string
}

// Generator produces the structured reply for a turn.
type Generator interface {
	Generate(ctx context.Context, userMessage, conversationContext string) ai.Reply
}

// Resolver maps an emotion onto a cached avatar, or defers.
type Resolver interface {
	Resolve(ctx context.Context, category, description string) emotion.Resolution
}

// Scheduler enqueues asynchronous avatar synthesis.
type Scheduler interface {
	Schedule(ctx context.Context, sessionID, emotionDescription string) error
}

// Orchestrator runs one chat turn end to end: persist the user message,
// retrieve context, generate the reply, resolve the avatar, and either
// answer with a URL or schedule synthesis.
type Orchestrator struct {
	sessions  SessionStore
	retriever ContextRetriever
	generator Generator
	resolver  Resolver
	scheduler Scheduler
	baseURL   string
}

func NewOrchestrator(
	sessions SessionStore,
	retriever ContextRetriever,
	generator Generator,
	resolver Resolver,
	scheduler Scheduler,
	baseURL string,
) *Orchestrator {
	return &Orchestrator{
		sessions:  sessions,
		retriever: retriever,
		generator: generator,
		resolver:  resolver,
		scheduler: scheduler,
		baseURL:   baseURL,
	}
}

// Turn processes one user message. Only transcript persistence failures
// abort the turn; context retrieval, generation, history indexing, and
// avatar resolution all degrade instead of failing.
func (o *Orchestrator) Turn(ctx context.Context, sessionID, userMessage string) (TurnResult, error) {
	session, err := o.sessions.EnsureSession(ctx, sessionID)
	if err != nil {
		metrics.ChatTurnsTotal.WithLabelValues("failed").Inc()
		return TurnResult{}, fmt.Errorf("ensuring session %s: %w", sessionID, err)
	}

	if err := o.sessions.AddMessage(ctx, sessionID, transcript.SenderUser, userMessage); err != nil {
		metrics.ChatTurnsTotal.WithLabelValues("failed").Inc()
		return TurnResult{}, fmt.Errorf("recording user message: %w", err)
	}

	conversationContext := o.retrieveContext(ctx, sessionID, userMessage)

	reply := o.generator.Generate(ctx, userMessage, conversationContext)

	if err := o.sessions.AddMessage(ctx, sessionID, transcript.SenderBot, reply.Text); err != nil {
		metrics.ChatTurnsTotal.WithLabelValues("failed").Inc()
		return TurnResult{}, fmt.Errorf("recording reply: %w", err)
	}

	if session.Title == transcript.DefaultTitle {
		title := titleFromMessage(userMessage)
		if err := o.sessions.UpdateTitle(ctx, sessionID, title); err != nil {
			slog.Warn("updating session title", "error", err, "session_id", sessionID)
		}
	}

	// The exchange must be indexed after generation so the current turn
	// never retrieves itself as context.
	if err := o.retriever.Append(ctx, sessionID, userMessage, reply.Text); err != nil {
		slog.Error("indexing exchange", "error", err, "session_id", sessionID)
	}

	resolution := o.resolver.Resolve(ctx, reply.EmotionCategory, reply.EmotionDescription)
	if !resolution.Deferred {
		metrics.ChatTurnsTotal.WithLabelValues(StatusSuccess).Inc()
		return TurnResult{
			Status:    StatusSuccess,
			ReplyText: reply.Text,
			AvatarURL: o.baseURL + resolution.ImageRef,
		}, nil
	}

	if err := o.scheduler.Schedule(ctx, sessionID, reply.EmotionDescription); err != nil {
		// The reply still stands; the client re-resolves on its next turn.
		slog.Warn("scheduling avatar synthesis", "error", err, "session_id", sessionID)
	}

	metrics.ChatTurnsTotal.WithLabelValues(StatusGenerating).Inc()
	return TurnResult{
		Status:    StatusGenerating,
		ReplyText: reply.Text,
	}, nil
}

// retrieveContext prefers semantic matches for the current message and
// falls back to recency when the search fails or finds nothing.
func (o *Orchestrator) retrieveContext(ctx context.Context, sessionID, userMessage string) string {
	semantic, err := o.retriever.RetrieveSemantic(ctx, sessionID, userMessage, history.DefaultTopK)
	if err != nil {
		slog.Warn("semantic retrieval failed, falling back to recency", "error", err, "session_id", sessionID)
		return o.retriever.RetrieveRecent(ctx, sessionID, history.DefaultRecentN)
	}
	if semantic == "" {
		return o.retriever.RetrieveRecent(ctx, sessionID, history.DefaultRecentN)
	}
	return semantic
}

// titleFromMessage names a session after the first words of its first
// user message.
func titleFromMessage(message string) string {
	words := strings.Fields(message)
	if len(words) > 5 {
		words = words[:5]
	}
	title := strings.Join(words, " ")
	if title == "" {
		return transcript.DefaultTitle
	}
	return title
}
