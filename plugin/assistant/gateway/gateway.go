// Package gateway delegates unknown-intent questions to an external
// text-generation service. The gateway is an enhancement, never a hard
// dependency: every failure path falls back to the locally composed answer.
package gateway

import (
	"context"
	"log/slog"
	"time"

	"github.com/pkg/errors"
	"github.com/sashabaranov/go-openai"

	"github.com/edusphere/edusphere/plugin/assistant/timeout"
)

// Message is one entry of the bounded recent history handed to the service.
type Message struct {
	Role    string // "user" | "assistant"
	Content string
}

// Request carries one generation call.
type Request struct {
	Query   string
	History []Message
}

// Generator is the external text-generation service: text in, text or
// failure out. No richer wire contract is assumed.
type Generator interface {
	Generate(ctx context.Context, req *Request) (string, error)
}

// Config holds the generation client configuration.
type Config struct {
	Provider string // deepseek, openai, siliconflow
	APIKey   string
	BaseURL  string
	Model    string
	Timeout  time.Duration
}

// Client implements Generator on any OpenAI-compatible endpoint.
type Client struct {
	client *openai.Client
	model  string
	limit  time.Duration
}

const systemPrompt = "Tu es l'assistant de la plateforme éducative Edusphere. " +
	"Réponds en français, brièvement et précisément, aux questions des étudiants " +
	"sur leurs études. Si la question sort du cadre de la plateforme, réponds " +
	"poliment que tu ne peux pas aider sur ce sujet."

// NewClient creates a generation client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("api key is required")
	}
	if cfg.Model == "" {
		cfg.Model = "deepseek-chat"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = timeout.GenerateTimeout
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	} else if cfg.Provider == "deepseek" {
		clientConfig.BaseURL = "https://api.deepseek.com"
	}

	return &Client{
		client: openai.NewClientWithConfig(clientConfig),
		model:  cfg.Model,
		limit:  cfg.Timeout,
	}, nil
}

// Generate performs one chat completion with the bounded recent history as
// context.
func (c *Client) Generate(ctx context.Context, req *Request) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.limit)
	defer cancel()

	messages := make([]openai.ChatCompletionMessage, 0, len(req.History)+2)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: systemPrompt,
	})
	for _, m := range req.History {
		role := openai.ChatMessageRoleUser
		if m.Role == "assistant" {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: m.Content})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.Query,
	})

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    c.model,
		Messages: messages,
	})
	if err != nil {
		return "", errors.Wrap(err, "chat completion failed")
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("empty chat response")
	}

	slog.Debug("external generation completed",
		"model", c.model,
		"latency_ms", time.Since(start).Milliseconds())
	return resp.Choices[0].Message.Content, nil
}

var _ Generator = (*Client)(nil)
