package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// Reply is the structured response produced for one chat turn.
type Reply struct {
	Text               string `json:"reply_text"`
	EmotionDescription string `json:"emotion_description"`
	EmotionCategory    string `json:"emotion_category"`
}

// FallbackReply is returned whenever the model cannot be reached or its
// output cannot be parsed. The turn still completes with it.
func FallbackReply() Reply {
	return Reply{
		Text:               "I'm having trouble thinking right now.",
		EmotionDescription: "confused",
		EmotionCategory:    "confused",
	}
}

const systemPrompt = `You are a helpful chatbot with an expressive visual avatar.
Respond to the user's message, taking the prior conversation context into account.
Also describe the emotion that best fits your response as a detailed visual description.
Classify the emotion into one of these categories: "happy", "sad", "angry", "confused", "neutral".
Return JSON with keys:
- "reply_text": your response
- "emotion_description": a detailed visual description of the emotion
- "emotion_category": one of ["happy", "sad", "angry", "confused", "neutral"]`

// Client produces chat replies through the OpenAI chat completions API.
type Client struct {
	client *openai.Client
	model  string
}

func NewClient(apiKey, model string) *Client {
	return &Client{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

// Generate returns the reply for a user message given retrieved conversation
// context. It never returns an error: any failure degrades to FallbackReply.
func (c *Client) Generate(ctx context.Context, userMessage, conversationContext string) Reply {
	prompt := fmt.Sprintf("Context from previous conversation:\n%s\n\nUser message: %s",
		conversationContext, userMessage)

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		slog.Warn("llm: chat completion failed, using fallback", "error", err)
		return FallbackReply()
	}
	if len(resp.Choices) == 0 {
		slog.Warn("llm: empty completion, using fallback")
		return FallbackReply()
	}

	return parseReply(resp.Choices[0].Message.Content)
}

// parseReply decodes the model's JSON output, falling back field by field so
// a partially valid payload still yields a usable reply.
func parseReply(raw string) Reply {
	var reply Reply
	if err := json.Unmarshal([]byte(raw), &reply); err != nil {
		slog.Warn("llm: unparseable completion, using fallback", "error", err)
		return FallbackReply()
	}
	if reply.Text == "" {
		return FallbackReply()
	}
	if reply.EmotionCategory == "" {
		reply.EmotionCategory = "neutral"
	}
	reply.EmotionCategory = strings.ToLower(reply.EmotionCategory)
	if reply.EmotionDescription == "" {
		reply.EmotionDescription = reply.EmotionCategory
	}
	return reply
}
