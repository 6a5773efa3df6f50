package ai

import (
	"context"
	"errors"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/Vovarama1992/rental-support-bridge/internal/logger"
)

type OpenAIClient struct {
	client  *openai.Client
	model   string
	timeout time.Duration
	log     logger.Logger
}

type Options struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

func NewOpenAIClient(opts Options, log logger.Logger) (*OpenAIClient, error) {
	if opts.APIKey == "" {
		return nil, errors.New("openai api key not set")
	}

	cfg := openai.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		cfg.BaseURL = opts.BaseURL
	}

	model := opts.Model
	if model == "" {
		model = openai.GPT4oMini
	}

	return &OpenAIClient{
		client:  openai.NewClientWithConfig(cfg),
		model:   model,
		timeout: opts.Timeout,
		log:     log.WithFields(map[string]interface{}{"model": model}),
	}, nil
}

func (c *OpenAIClient) GetReply(ctx context.Context, history []Message) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	msgs := make([]openai.ChatCompletionMessage, 0, len(history)+1)
	for _, m := range history {
		msgs = append(msgs, openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Text,
		})
	}

	// format guard goes last
	msgs = append(msgs, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: jsonGuard,
	})

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    c.model,
		Messages: msgs,
	})
	if err != nil {
		c.log.WithError(err).Error("openai request failed", nil)
		return "", err
	}

	if len(resp.Choices) == 0 {
		c.log.Warn("openai returned no choices", nil)
		return "", nil
	}

	raw := resp.Choices[0].Message.Content
	c.log.Debug("openai raw response", map[string]interface{}{"raw": short(raw)})
	return raw, nil
}

func short(s string) string {
	if len(s) > 180 {
		return s[:180] + "..."
	}
	return s
}
