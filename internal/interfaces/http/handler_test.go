package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"project_aceRelay/internal/config"
	"project_aceRelay/internal/entities"
	"project_aceRelay/internal/infrastructure"
	"project_aceRelay/internal/interfaces"
	"project_aceRelay/internal/repository"
	"project_aceRelay/internal/usecases"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	testSecret = "my_super_secret_password"
	testLink   = "https://yourwebsite.com/buy"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type aiCall struct{ System, User string }

type fakeAI struct {
	mu    sync.Mutex
	reply string
	err   error
	calls []aiCall
}

func (f *fakeAI) GenerateResponse(_ context.Context, system, user string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, aiCall{system, user})
	return f.reply, f.err
}

type sent struct{ To, Body string }

type fakeMessenger struct {
	mu      sync.Mutex
	err     error
	explode bool
	sent    []sent
}

func (f *fakeMessenger) SendMessage(_ context.Context, to, content string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.explode {
		panic("transport exploded")
	}
	f.sent = append(f.sent, sent{to, content})
	return f.err
}

type fixture struct {
	router  *gin.Engine
	ai      *fakeAI
	wa      *fakeMessenger
	tg      *fakeMessenger
	replies *usecases.ReplyService
}

func newFixture(t *testing.T, withTelegram bool) *fixture {
	t.Helper()

	catalog, err := repository.DefaultCatalog()
	require.NoError(t, err)

	cfg := &config.Config{
		WhatsApp: config.WhatsAppConfig{VerifyToken: testSecret},
		Telegram: config.TelegramConfig{WebhookSecret: "tg-secret"},
		Sales:    config.SalesConfig{AgentName: "Ace", ProductName: "Activate Your Dreams", OfferLink: testLink},
	}

	f := &fixture{ai: &fakeAI{reply: "model reply"}, wa: &fakeMessenger{}, tg: &fakeMessenger{}}
	messengers := map[string]interfaces.Messenger{entities.PlatformWhatsApp: f.wa}
	if withTelegram {
		messengers[entities.PlatformTelegram] = f.tg
	}

	metrics := infrastructure.NewMetrics("acerelay")
	logger := zap.NewNop()
	replies, err := usecases.NewReplyService(f.ai, catalog, usecases.PromptOptions{
		AgentName:   cfg.Sales.AgentName,
		ProductName: cfg.Sales.ProductName,
		OfferLink:   cfg.Sales.OfferLink,
	}, metrics, logger)
	require.NoError(t, err)
	f.replies = replies
	service := usecases.NewMessageService(f.replies, messengers, metrics, logger)

	f.router = gin.New()
	SetupRoutes(f.router, service, cfg, metrics, logger)
	return f
}

func (f *fixture) do(method, target, body string, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	f := newFixture(t, false)
	w := f.do(http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", w.Body.String())
}

func TestVerify(t *testing.T) {
	cases := []struct {
		name, mode, token string
		wantBody          string
		wantStatus        int
	}{
		{"valid", "subscribe", testSecret, "1158201444", http.StatusOK},
		{"wrong token", "subscribe", "guess", "Forbidden", http.StatusForbidden},
		{"wrong mode", "unsubscribe", testSecret, "Forbidden", http.StatusForbidden},
		{"token case differs", "subscribe", strings.ToUpper(testSecret), "Forbidden", http.StatusForbidden},
		{"empty", "", "", "Forbidden", http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			body, status := Verify(tc.mode, tc.token, "1158201444", testSecret)
			assert.Equal(t, tc.wantStatus, status)
			assert.Equal(t, tc.wantBody, body)
		})
	}
}

func TestVerifyWebhook(t *testing.T) {
	f := newFixture(t, false)

	w := f.do(http.MethodGet, "/webhook?hub.mode=subscribe&hub.verify_token="+testSecret+"&hub.challenge=abc123", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "abc123", w.Body.String())

	w = f.do(http.MethodGet, "/webhook?hub.mode=subscribe&hub.verify_token=nope&hub.challenge=abc123", "")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Forbidden", w.Body.String())

	w = f.do(http.MethodGet, "/webhook", "")
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestHandleWebhook_NoOpPayloads(t *testing.T) {
	bodies := map[string]string{
		"no entry":       `{"object":"whatsapp_business_account"}`,
		"empty changes":  `{"object":"whatsapp_business_account","entry":[{"changes":[]}]}`,
		"no value":       `{"object":"whatsapp_business_account","entry":[{"changes":[{"field":"messages"}]}]}`,
		"no messages":    `{"object":"whatsapp_business_account","entry":[{"changes":[{"value":{"messaging_product":"whatsapp"}}]}]}`,
		"status update":  `{"object":"whatsapp_business_account","entry":[{"changes":[{"value":{"statuses":[{"id":"wamid.1","status":"read"}]}}]}]}`,
		"foreign object": `{"object":"page","entry":[{"changes":[{"value":{"messages":[{"from":"123","type":"text","text":{"body":"hi"}}]}}]}]}`,
	}
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t, false)
			w := f.do(http.MethodPost, "/webhook", body)

			assert.Equal(t, http.StatusOK, w.Code)
			assert.JSONEq(t, `{"status":"success"}`, w.Body.String())
			assert.Empty(t, f.ai.calls)
			assert.Empty(t, f.wa.sent)
		})
	}
}

func TestHandleWebhook_NonTextIgnored(t *testing.T) {
	for _, typ := range []string{"image", "audio", "location", "document", "reaction"} {
		t.Run(typ, func(t *testing.T) {
			f := newFixture(t, false)
			body := `{"object":"whatsapp_business_account","entry":[{"changes":[{"value":{"messages":[{"from":"123","type":"` + typ + `"}]}}]}]}`
			w := f.do(http.MethodPost, "/webhook", body)

			assert.Equal(t, http.StatusOK, w.Code)
			assert.Empty(t, f.ai.calls)
			assert.Empty(t, f.wa.sent)
		})
	}
}

func TestHandleWebhook_PriceObjection(t *testing.T) {
	f := newFixture(t, false)
	f.ai.reply = "Is the price higher than the cost of staying stuck? Do you want the outcome?"

	body := `{"object":"whatsapp_business_account","entry":[{"changes":[{"value":{"messages":[{"from":"123","type":"text","text":{"body":"it's too expensive"}}]}}]}]}`
	w := f.do(http.MethodPost, "/webhook", body)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"success"}`, w.Body.String())

	require.Len(t, f.ai.calls, 1)
	assert.Equal(t, f.replies.SystemPrompt(), f.ai.calls[0].System)
	assert.Contains(t, f.ai.calls[0].System, "Value Reframe")
	assert.Equal(t, "it's too expensive", f.ai.calls[0].User)

	require.Len(t, f.wa.sent, 1)
	assert.Equal(t, sent{"123", f.ai.reply}, f.wa.sent[0])
}

func TestHandleWebhook_AffirmationGetsClosingSentence(t *testing.T) {
	f := newFixture(t, false)
	f.ai.reply = "Sure thing!"

	body := `{"object":"whatsapp_business_account","entry":[{"changes":[{"value":{"messages":[{"from":"123","type":"text","text":{"body":"yes I'll take it"}}]}}]}]}`
	w := f.do(http.MethodPost, "/webhook", body)

	assert.Equal(t, http.StatusOK, w.Code)
	require.Len(t, f.wa.sent, 1)
	assert.Equal(t, "Great choice. Here is your secure link: "+testLink, f.wa.sent[0].Body)
}

func TestHandleWebhook_CompletionFailureSendsFallback(t *testing.T) {
	f := newFixture(t, false)
	f.ai.err = errors.New("dial tcp: connection refused")

	body := `{"object":"whatsapp_business_account","entry":[{"changes":[{"value":{"messages":[{"from":"555","type":"text","text":{"body":"what is the book about?"}}]}}]}]}`
	w := f.do(http.MethodPost, "/webhook", body)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"success"}`, w.Body.String())
	require.Len(t, f.wa.sent, 1)
	assert.Equal(t, sent{"555", usecases.FallbackReply}, f.wa.sent[0])
}

func TestHandleWebhook_DispatchFailureStillAcknowledged(t *testing.T) {
	f := newFixture(t, false)
	f.wa.err = errors.New("whatsapp error: status=401")

	body := `{"object":"whatsapp_business_account","entry":[{"changes":[{"value":{"messages":[{"from":"555","type":"text","text":{"body":"hello"}}]}}]}]}`
	w := f.do(http.MethodPost, "/webhook", body)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"success"}`, w.Body.String())
	assert.Len(t, f.wa.sent, 1)
}

func TestHandleWebhook_TwoEntries(t *testing.T) {
	f := newFixture(t, false)

	body := `{"object":"whatsapp_business_account","entry":[
		{"changes":[{"value":{"messages":[{"from":"111","type":"text","text":{"body":"I'm too busy"}}]}}]},
		{"changes":[{"value":{"messages":[{"from":"222","type":"text","text":{"body":"is this a scam"}}]}}]}
	]}`
	w := f.do(http.MethodPost, "/webhook", body)

	assert.Equal(t, http.StatusOK, w.Code)
	require.Len(t, f.ai.calls, 2)
	assert.Equal(t, "I'm too busy", f.ai.calls[0].User)
	assert.Equal(t, "is this a scam", f.ai.calls[1].User)
	require.Len(t, f.wa.sent, 2)
	assert.Equal(t, "111", f.wa.sent[0].To)
	assert.Equal(t, "222", f.wa.sent[1].To)
}

func TestHandleWebhook_MalformedPayload(t *testing.T) {
	bodies := map[string]string{
		"not json":     `{"object":`,
		"empty body":   ``,
		"entry string": `{"object":"whatsapp_business_account","entry":"oops"}`,
		"bad message":  `{"object":"whatsapp_business_account","entry":[{"changes":[{"value":{"messages":[{"type":"text","text":{"body":"no sender"}}]}}]}]}`,
	}
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t, false)
			w := f.do(http.MethodPost, "/webhook", body)

			assert.Equal(t, http.StatusInternalServerError, w.Code)
			assert.JSONEq(t, `{"status":"error"}`, w.Body.String())
			assert.Empty(t, f.wa.sent)
		})
	}
}

func TestHandleWebhook_MalformedMessageDoesNotBlockOthers(t *testing.T) {
	f := newFixture(t, false)

	body := `{"object":"whatsapp_business_account","entry":[{"changes":[{"value":{"messages":[
		{"from":"111","type":"text"},
		{"from":"222","type":"text","text":{"body":"tell me more"}}
	]}}]}]}`
	w := f.do(http.MethodPost, "/webhook", body)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	require.Len(t, f.wa.sent, 1)
	assert.Equal(t, "222", f.wa.sent[0].To)
}

func TestHandleWebhook_PanicRecovered(t *testing.T) {
	f := newFixture(t, false)
	f.wa.explode = true

	body := `{"object":"whatsapp_business_account","entry":[{"changes":[{"value":{"messages":[{"from":"1","type":"text","text":{"body":"hello"}}]}}]}]}`
	w := f.do(http.MethodPost, "/webhook", body)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"status":"error"}`, w.Body.String())
}

func TestTelegramWebhook(t *testing.T) {
	f := newFixture(t, true)

	update := `{"update_id":1,"message":{"message_id":7,"date":0,"chat":{"id":424242,"type":"private"},"text":"I'll think about it"}}`

	w := f.do(http.MethodPost, "/telegram/webhook", update, telegramSecretHeader, "wrong")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Empty(t, f.ai.calls)

	w = f.do(http.MethodPost, "/telegram/webhook", update, telegramSecretHeader, "tg-secret")
	assert.Equal(t, http.StatusOK, w.Code)
	require.Len(t, f.ai.calls, 1)
	assert.Equal(t, "I'll think about it", f.ai.calls[0].User)
	require.Len(t, f.tg.sent, 1)
	assert.Equal(t, sent{"424242", "model reply"}, f.tg.sent[0])
	assert.Empty(t, f.wa.sent)

	w = f.do(http.MethodPost, "/telegram/webhook", `{"update_id":2,"edited_message":{"message_id":7,"date":0,"chat":{"id":1,"type":"private"},"text":"x"}}`, telegramSecretHeader, "tg-secret")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, f.ai.calls, 1)
}

func TestTelegramWebhook_DisabledWithoutMessenger(t *testing.T) {
	f := newFixture(t, false)
	w := f.do(http.MethodPost, "/telegram/webhook", `{"update_id":1}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	f := newFixture(t, false)
	f.do(http.MethodPost, "/webhook", `{"object":"whatsapp_business_account"}`)

	w := f.do(http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `acerelay_webhook_events_total{platform="whatsapp",result="success"} 1`)
}
