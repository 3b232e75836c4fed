package transcript

import "time"

// Sender values recorded on messages.
const (
	SenderUser = "user"
	SenderBot  = "bot"
)

// DefaultTitle is given to sessions until the first user message names them.
const DefaultTitle = "New Chat"

// Session is one durable conversation.
type Session struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
}

// Message is one utterance in a session's transcript.
type Message struct {
	ID        int64     `json:"-"`
	SessionID string    `json:"-"`
	Sender    string    `json:"sender"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// CreateSessionRequest is the payload for creating a session.
type CreateSessionRequest struct {
	Title string `json:"title" validate:"max=120"`
}
