package http

import (
	"net/http"
	"project_aceRelay/internal/entities"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const subscribeMode = "subscribe"

// Verify answers the platform's webhook registration handshake.
func Verify(mode, token, challenge, secret string) (string, int) {
	if mode == subscribeMode && token == secret {
		return challenge, http.StatusOK
	}
	return "Forbidden", http.StatusForbidden
}

// VerifyWebhook handles GET /webhook?hub.mode=&hub.verify_token=&hub.challenge=
func (h *Handler) VerifyWebhook(c *gin.Context) {
	body, status := Verify(c.Query("hub.mode"), c.Query("hub.verify_token"), c.Query("hub.challenge"), h.verifyToken)
	if status == http.StatusOK {
		h.logger.Info("webhook verified")
	} else {
		h.logger.Warn("webhook verification failed", zap.String("mode", c.Query("hub.mode")))
	}
	c.String(status, body)
}

// HandleWebhook handles POST /webhook. The platform always gets a definitive
// answer so it does not redeliver: 200 once every message was attempted, 500
// when the payload or one of its messages was malformed.
func (h *Handler) HandleWebhook(c *gin.Context) {
	var env entities.WebhookEnvelope
	if err := c.ShouldBindJSON(&env); err != nil {
		h.logger.Error("webhook payload rejected", zap.Error(err))
		h.metrics.WebhookEvents.WithLabelValues(entities.PlatformWhatsApp, "error").Inc()
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error"})
		return
	}

	if !env.IsWhatsApp() {
		h.metrics.WebhookEvents.WithLabelValues(entities.PlatformWhatsApp, "ignored").Inc()
		c.JSON(http.StatusOK, gin.H{"status": "success"})
		return
	}

	if err := h.messageService.HandleWebhook(c.Request.Context(), env); err != nil {
		h.logger.Error("webhook processing error", zap.Error(err))
		h.metrics.WebhookEvents.WithLabelValues(entities.PlatformWhatsApp, "error").Inc()
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error"})
		return
	}

	h.metrics.WebhookEvents.WithLabelValues(entities.PlatformWhatsApp, "success").Inc()
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}
