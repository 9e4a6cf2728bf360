package usecases

import (
	"context"
	"project_aceRelay/internal/entities"
	"project_aceRelay/internal/infrastructure"
	"sync"

	"go.uber.org/zap"
)

type aiCall struct {
	System string
	User   string
}

type fakeAI struct {
	mu    sync.Mutex
	reply string
	err   error
	calls []aiCall
}

func (f *fakeAI) GenerateResponse(_ context.Context, systemPrompt, userText string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, aiCall{System: systemPrompt, User: userText})
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

type sent struct {
	To   string
	Body string
}

type fakeMessenger struct {
	mu         sync.Mutex
	panicFirst bool // the first SendMessage call panics
	attempts   int
	err        error
	sent       []sent
}

func (f *fakeMessenger) SendMessage(_ context.Context, to, content string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.attempts++
	if f.panicFirst && f.attempts == 1 {
		panic("transport blew up")
	}
	f.sent = append(f.sent, sent{To: to, Body: content})
	return f.err
}

const testLink = "https://example.com/buy"

func testCatalog() entities.Catalog {
	return entities.Catalog{
		{ID: "price_expensive", TriggerKeywords: []string{"expensive", "cant afford", "price"}, Strategy: "Value Reframe", Response: "Is the price higher than the cost of staying where you are?"},
		{ID: "skeptical", TriggerKeywords: []string{"scam", "work", "sure"}, Strategy: "Risk Reversal", Response: "30-day 'Action Guarantee'."},
		{ID: "later", TriggerKeywords: []string{"later", "next week"}, Strategy: "Urgency Injection", Response: "The bonus bundle expires with this chat."},
	}
}

func testOptions() PromptOptions {
	return PromptOptions{AgentName: "Ace", ProductName: "Activate Your Dreams", OfferLink: testLink}
}

func newTestReplyService(ai *fakeAI) (*ReplyService, *infrastructure.Metrics) {
	m := infrastructure.NewMetrics("test")
	svc, err := NewReplyService(ai, testCatalog(), testOptions(), m, zap.NewNop())
	if err != nil {
		panic(err)
	}
	return svc, m
}
