package nats

import (
	"time"

	"github.com/google/uuid"
)

// Stream and subject names for avatar synthesis jobs.
const (
	StreamJobs       = "VISAGE_JOBS"
	SubjectAvatarJob = "visage.jobs.avatar"

	// ConsumerAvatarJobs is the durable pull consumer shared by dispatchers.
	ConsumerAvatarJobs = "avatar-workers"

	// FetchTimeout bounds each pull so shutdown is noticed promptly.
	FetchTimeout = 2 * time.Second
)

// AvatarJobMessage describes one avatar to synthesize. The emotion
// description is carried verbatim so the worker registers the finished
// image under the exact text that missed the cache.
type AvatarJobMessage struct {
	ID                 string    `json:"id"`
	SessionID          string    `json:"session_id"`
	EmotionDescription string    `json:"emotion_description"`
	RequestedAt        time.Time `json:"requested_at"`
}

// NewAvatarJobMessage builds a job with a fresh ID and timestamp.
func NewAvatarJobMessage(sessionID, emotionDescription string) AvatarJobMessage {
	return AvatarJobMessage{
		ID:                 uuid.NewString(),
		SessionID:          sessionID,
		EmotionDescription: emotionDescription,
		RequestedAt:        time.Now().UTC(),
	}
}
