package entities

import (
	"encoding/json"
	"fmt"
)

// WhatsAppBusinessAccount is the only envelope object type the relay acts on.
const WhatsAppBusinessAccount = "whatsapp_business_account"

// WebhookEnvelope is the top level of a WhatsApp Cloud API webhook delivery.
// Every nested level is optional; absent levels decode to nil/empty and are no-ops.
type WebhookEnvelope struct {
	Object string         `json:"object"`
	Entry  []WebhookEntry `json:"entry"`
}

type WebhookEntry struct {
	ID      string          `json:"id"`
	Changes []WebhookChange `json:"changes"`
}

type WebhookChange struct {
	Field string       `json:"field"`
	Value *ChangeValue `json:"value"`
}

type ChangeValue struct {
	MessagingProduct string            `json:"messaging_product"`
	Messages         []InboundMessage  `json:"messages"`
	Statuses         []json.RawMessage `json:"statuses"` // delivery/read receipts, ignored
}

type InboundMessage struct {
	ID        string    `json:"id"`
	From      string    `json:"from"`
	Timestamp string    `json:"timestamp"`
	Type      string    `json:"type"`
	Text      *TextBody `json:"text"`
}

type TextBody struct {
	Body string `json:"body"`
}

// IsWhatsApp reports whether the envelope comes from a WhatsApp business account.
func (e WebhookEnvelope) IsWhatsApp() bool {
	return e.Object == WhatsAppBusinessAccount
}

// ToMessage converts a webhook message into a Message. Non-text messages convert
// without error; a text message missing its sender or body is malformed.
func (m InboundMessage) ToMessage() (Message, error) {
	msg := Message{
		ID:       m.ID,
		From:     m.From,
		Type:     MessageTypeOther,
		Platform: PlatformWhatsApp,
	}
	if m.Type != string(MessageTypeText) {
		return msg, nil
	}
	if m.From == "" {
		return msg, fmt.Errorf("text message %q has no sender", m.ID)
	}
	if m.Text == nil {
		return msg, fmt.Errorf("text message %q from %s has no body", m.ID, m.From)
	}
	msg.Type = MessageTypeText
	msg.Content = m.Text.Body
	return msg, nil
}
