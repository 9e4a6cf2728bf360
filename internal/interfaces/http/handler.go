package http

import (
	"net/http"
	"project_aceRelay/internal/config"
	"project_aceRelay/internal/entities"
	"project_aceRelay/internal/infrastructure"
	"project_aceRelay/internal/usecases"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// MaxWebhookBody bounds inbound webhook payloads.
const MaxWebhookBody = 1 << 20

type Handler struct {
	messageService *usecases.MessageService
	verifyToken    string
	telegramSecret string
	metrics        *infrastructure.Metrics
	logger         *zap.Logger
}

func NewHandler(service *usecases.MessageService, cfg *config.Config, metrics *infrastructure.Metrics, logger *zap.Logger) *Handler {
	return &Handler{
		messageService: service,
		verifyToken:    cfg.WhatsApp.VerifyToken,
		telegramSecret: cfg.Telegram.WebhookSecret,
		metrics:        metrics,
		logger:         logger,
	}
}

func SetupRoutes(r *gin.Engine, service *usecases.MessageService, cfg *config.Config, metrics *infrastructure.Metrics, logger *zap.Logger) {
	h := NewHandler(service, cfg, metrics, logger)

	r.Use(Recovery(logger))
	r.Use(RequestLogger(logger))
	r.Use(SecurityHeaders())
	r.Use(RequestSizeLimiter(MaxWebhookBody))

	r.GET("/health", h.Health)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	// WhatsApp Cloud API webhook
	r.GET("/webhook", h.VerifyWebhook)
	r.POST("/webhook", h.HandleWebhook)

	if service.HasPlatform(entities.PlatformTelegram) {
		r.POST("/telegram/webhook", h.HandleTelegramUpdate)
	}
}

// Health is polled by uptime monitors.
func (h *Handler) Health(c *gin.Context) {
	c.String(http.StatusOK, "OK")
}
