package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"project_aceRelay/internal/config"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

type chatClient interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// LLMClient asks an OpenAI-compatible chat completion endpoint (Groq by default) for one reply.
type LLMClient struct {
	client      chatClient
	model       string
	temperature float32
	maxTokens   int
	timeout     time.Duration
}

func NewLLMClient(cfg config.LLMConfig) *LLMClient {
	oc := openai.DefaultConfig(cfg.APIKey)
	oc.BaseURL = cfg.BaseURL
	oc.HTTPClient = &http.Client{}
	return newLLMClient(openai.NewClientWithConfig(oc), cfg)
}

func newLLMClient(client chatClient, cfg config.LLMConfig) *LLMClient {
	return &LLMClient{
		client:      client,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		timeout:     cfg.Timeout,
	}
}

func (l *LLMClient) GenerateResponse(ctx context.Context, systemPrompt, userText string) (string, error) {
	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}

	req := openai.ChatCompletionRequest{
		Model: l.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userText},
		},
		Temperature: l.temperature,
		MaxTokens:   l.maxTokens,
	}

	resp, err := l.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("chat completion (%s): %w", l.model, err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("chat completion returned no choices")
	}
	reply := strings.TrimSpace(resp.Choices[0].Message.Content)
	if reply == "" {
		return "", errors.New("chat completion returned empty content")
	}
	return reply, nil
}
