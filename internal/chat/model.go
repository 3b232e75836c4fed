package chat

// Turn statuses reported to the client. A "generating_avatar" turn carries
// the reply text immediately; the avatar URL arrives later over the
// session's push channel.
const (
	StatusSuccess    = "success"
	StatusGenerating = "generating_avatar"
)

// ChatRequest is the payload for one conversational turn.
type ChatRequest struct {
	SessionID   string `json:"session_id" validate:"required"`
	UserMessage string `json:"user_message" validate:"required"`
}

// TurnResult is the synchronous outcome of a turn.
type TurnResult struct {
	Status    string `json:"status"`
	ReplyText string `json:"reply_text"`
	AvatarURL string `json:"avatar_url,omitempty"`
}
