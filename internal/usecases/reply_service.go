package usecases

import (
	"context"
	"fmt"
	"project_aceRelay/internal/entities"
	"project_aceRelay/internal/infrastructure"
	"project_aceRelay/internal/interfaces"
	"time"

	"go.uber.org/zap"
)

// FallbackReply is sent when the completion backend cannot be reached.
const FallbackReply = "I'm having a bit of trouble connecting. Could you say that again?"

// ReplyService turns one customer message into one reply using the cached system prompt.
type ReplyService struct {
	ai           interfaces.AIClient
	catalog      entities.Catalog
	systemPrompt string
	closing      string
	metrics      *infrastructure.Metrics
	logger       *zap.Logger
}

func NewReplyService(ai interfaces.AIClient, catalog entities.Catalog, opts PromptOptions, metrics *infrastructure.Metrics, logger *zap.Logger) (*ReplyService, error) {
	prompt, err := BuildSystemPrompt(catalog, opts)
	if err != nil {
		return nil, fmt.Errorf("build system prompt: %w", err)
	}
	return &ReplyService{
		ai:           ai,
		catalog:      catalog,
		systemPrompt: prompt,
		closing:      ClosingSentence(opts.OfferLink),
		metrics:      metrics,
		logger:       logger,
	}, nil
}

func (s *ReplyService) SystemPrompt() string {
	return s.systemPrompt
}

// Generate never fails: backend errors are logged and replaced with FallbackReply.
// An affirmative message gets the closing sentence verbatim, without asking the model.
func (s *ReplyService) Generate(ctx context.Context, userText string) string {
	for _, e := range MatchObjections(s.catalog, userText) {
		s.metrics.ObjectionMatches.WithLabelValues(e.ID).Inc()
	}

	if IsAffirmation(s.catalog, userText) {
		s.metrics.CompletionRequests.WithLabelValues("closing").Inc()
		return s.closing
	}

	start := time.Now()
	reply, err := s.ai.GenerateResponse(ctx, s.systemPrompt, userText)
	s.metrics.CompletionDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		s.metrics.CompletionRequests.WithLabelValues("error").Inc()
		s.logger.Error("completion failed, sending fallback", zap.Error(err))
		return FallbackReply
	}

	s.metrics.CompletionRequests.WithLabelValues("ok").Inc()
	return reply
}
