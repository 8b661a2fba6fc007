package ai

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"
)

type Client struct {
	client *openai.Client
	model  string
}

func New(apiKey, baseURL, model string) *Client {
	config := openai.DefaultConfig(apiKey)
	config.BaseURL = baseURL

	return &Client{
		client: openai.NewClientWithConfig(config),
		model:  model,
	}
}

const systemPrompt = `You are Tim, the Lifeline companion. You receive short chat
messages from people who may be tired or overwhelmed. Reply in one or two warm,
plain sentences. Never give medical advice. If the person seems to want a
reminder, gently suggest phrasing like "remind me to ... in 1 hour".`

// CompanionReply generates a short empathetic answer for a non-reminder
// message. Callers fall back to canned replies when this fails or when no
// client is configured.
func (c *Client) CompanionReply(ctx context.Context, message string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: message},
		},
		MaxTokens:   120,
		Temperature: 0.7,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty completion response")
	}
	return resp.Choices[0].Message.Content, nil
}
