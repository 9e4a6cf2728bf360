package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"project_aceRelay/internal/config"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// WhatsAppBusinessClient sends text replies through the WhatsApp Cloud API.
type WhatsAppBusinessClient struct {
	accessToken   string
	phoneNumberID string
	apiBase       string
	apiVersion    string
	timeout       time.Duration
	httpClient    *http.Client
}

func NewWhatsAppBusinessClient(cfg config.WhatsAppConfig, timeout time.Duration) *WhatsAppBusinessClient {
	return &WhatsAppBusinessClient{
		accessToken:   cfg.AccessToken,
		phoneNumberID: cfg.PhoneNumberID,
		apiBase:       strings.TrimRight(cfg.APIBase, "/"),
		apiVersion:    cfg.APIVersion,
		timeout:       timeout,
		httpClient:    &http.Client{},
	}
}

type waTextMessage struct {
	MessagingProduct string `json:"messaging_product"`
	To               string `json:"to"`
	Type             string `json:"type"`
	Text             struct {
		Body string `json:"body"`
	} `json:"text"`
}

func (w *WhatsAppBusinessClient) SendMessage(ctx context.Context, to, content string) error {
	if w.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.timeout)
		defer cancel()
	}

	url := fmt.Sprintf("%s/%s/%s/messages", w.apiBase, w.apiVersion, w.phoneNumberID)
	payload := waTextMessage{MessagingProduct: "whatsapp", To: to, Type: "text"}
	payload.Text.Body = content

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal whatsapp payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("build whatsapp request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+w.accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("call whatsapp: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return fmt.Errorf("whatsapp error: status=%d body=%s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}

// telegramSender is the part of *tgbotapi.BotAPI used for replies.
type telegramSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type TelegramClient struct {
	bot      telegramSender
	UserName string
}

// NewTelegramClient validates the token against the Bot API before returning.
func NewTelegramClient(token string, timeout time.Duration) (*TelegramClient, error) {
	bot, err := tgbotapi.NewBotAPIWithClient(token, tgbotapi.APIEndpoint, &http.Client{Timeout: timeout})
	if err != nil {
		return nil, fmt.Errorf("telegram bot token: %w", err)
	}
	return &TelegramClient{bot: bot, UserName: bot.Self.UserName}, nil
}

func (t *TelegramClient) SendMessage(ctx context.Context, to, content string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	chatID, err := strconv.ParseInt(to, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid telegram chat id %q: %w", to, err)
	}
	// Plain text: model output is not guaranteed to be valid Markdown.
	msg := tgbotapi.NewMessage(chatID, content)
	if _, err := t.bot.Send(msg); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	return nil
}
