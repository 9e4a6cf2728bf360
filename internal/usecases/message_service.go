package usecases

import (
	"context"
	"errors"
	"fmt"
	"project_aceRelay/internal/entities"
	"project_aceRelay/internal/infrastructure"
	"project_aceRelay/internal/interfaces"

	"go.uber.org/zap"
)

// MessageService routes inbound messages through the reply pipeline and back to their platform.
type MessageService struct {
	replies    *ReplyService
	messengers map[string]interfaces.Messenger
	metrics    *infrastructure.Metrics
	logger     *zap.Logger
}

// NewMessageService wires the pipeline. messengers is keyed by platform and must not be modified afterwards.
func NewMessageService(replies *ReplyService, messengers map[string]interfaces.Messenger, metrics *infrastructure.Metrics, logger *zap.Logger) *MessageService {
	return &MessageService{
		replies:    replies,
		messengers: messengers,
		metrics:    metrics,
		logger:     logger,
	}
}

// HasPlatform reports whether replies can be dispatched to platform.
func (s *MessageService) HasPlatform(platform string) bool {
	_, ok := s.messengers[platform]
	return ok
}

// HandleWebhook processes every message in a WhatsApp envelope, one after another.
// A malformed or panicking message is skipped and reported in the returned error after the rest were handled.
func (s *MessageService) HandleWebhook(ctx context.Context, env entities.WebhookEnvelope) error {
	if !env.IsWhatsApp() {
		s.logger.Debug("ignoring webhook for foreign object type", zap.String("object", env.Object))
		return nil
	}

	var errs []error
	for _, entry := range env.Entry {
		for _, change := range entry.Changes {
			// Status-only updates (sent, delivered, read) carry no messages.
			if change.Value == nil {
				continue
			}
			for _, raw := range change.Value.Messages {
				msg, err := raw.ToMessage()
				if err != nil {
					s.logger.Warn("skipping malformed message", zap.String("entry", entry.ID), zap.Error(err))
					errs = append(errs, err)
					continue
				}
				if !msg.IsText() && msg.From == "" {
					s.logger.Debug("non-text message without sender",
						zap.String("entry", entry.ID),
						zap.String("message_id", msg.ID),
						zap.String("type", raw.Type))
				}
				if err := s.processIsolated(ctx, msg); err != nil {
					errs = append(errs, err)
				}
			}
		}
	}
	return errors.Join(errs...)
}

// processIsolated runs ProcessMessage and turns a panic into an error so the
// remaining messages of the payload still get processed.
func (s *MessageService) processIsolated(ctx context.Context, msg entities.Message) (err error) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("message processing panicked",
				zap.String("platform", msg.Platform),
				zap.String("message_id", msg.ID),
				zap.Any("panic", r))
			err = fmt.Errorf("message %q panicked: %v", msg.ID, r)
		}
	}()
	s.ProcessMessage(ctx, msg)
	return nil
}

// ProcessMessage replies to a single text message. Other message types are ignored.
// Dispatch failures are logged and swallowed.
func (s *MessageService) ProcessMessage(ctx context.Context, msg entities.Message) {
	s.metrics.MessagesProcessed.WithLabelValues(msg.Platform, string(msg.Type)).Inc()
	if !msg.IsText() {
		s.logger.Debug("ignoring non-text message", zap.String("platform", msg.Platform), zap.String("from", msg.From))
		return
	}

	s.logger.Info("message received",
		zap.String("platform", msg.Platform),
		zap.String("from", msg.From),
		zap.Int("text_len", len(msg.Content)))

	reply := s.replies.Generate(ctx, msg.Content)

	out := entities.OutboundMessage{To: msg.From, Body: reply, Platform: msg.Platform}
	if err := s.sendReply(ctx, out); err != nil {
		s.metrics.DispatchRequests.WithLabelValues(out.Platform, "error").Inc()
		s.logger.Error("reply dispatch failed", zap.String("platform", out.Platform), zap.String("to", out.To), zap.Error(err))
		return
	}
	s.metrics.DispatchRequests.WithLabelValues(out.Platform, "ok").Inc()
}

// sendReply sends message back to user based on platform
func (s *MessageService) sendReply(ctx context.Context, out entities.OutboundMessage) error {
	messenger, ok := s.messengers[out.Platform]
	if !ok {
		return fmt.Errorf("no messaging client for platform %q", out.Platform)
	}
	return messenger.SendMessage(ctx, out.To, out.Body)
}
