package interfaces

import "context"

// AIClient produces a completion for one system instruction and one user turn.
type AIClient interface {
	GenerateResponse(ctx context.Context, systemPrompt, userText string) (string, error)
}

// Messenger delivers a text reply to a recipient on one platform.
type Messenger interface {
	SendMessage(ctx context.Context, to, content string) error
}
