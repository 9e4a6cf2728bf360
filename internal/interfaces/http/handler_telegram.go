package http

import (
	"net/http"
	"project_aceRelay/internal/entities"
	"strconv"

	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

const telegramSecretHeader = "X-Telegram-Bot-Api-Secret-Token"

// HandleTelegramUpdate handles POST /telegram/webhook updates pushed by the Bot API.
func (h *Handler) HandleTelegramUpdate(c *gin.Context) {
	if h.telegramSecret != "" && c.GetHeader(telegramSecretHeader) != h.telegramSecret {
		h.logger.Warn("telegram webhook secret mismatch")
		c.JSON(http.StatusForbidden, gin.H{"status": "error"})
		return
	}

	var update tgbotapi.Update
	if err := c.ShouldBindJSON(&update); err != nil {
		h.logger.Error("telegram update rejected", zap.Error(err))
		h.metrics.WebhookEvents.WithLabelValues(entities.PlatformTelegram, "error").Inc()
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error"})
		return
	}

	// Edits, callbacks and channel posts are acknowledged without a reply.
	if update.Message == nil || update.Message.Chat == nil {
		h.metrics.WebhookEvents.WithLabelValues(entities.PlatformTelegram, "ignored").Inc()
		c.JSON(http.StatusOK, gin.H{"status": "success"})
		return
	}

	msg := entities.Message{
		ID:       strconv.Itoa(update.Message.MessageID),
		From:     strconv.FormatInt(update.Message.Chat.ID, 10),
		Type:     entities.MessageTypeOther,
		Platform: entities.PlatformTelegram,
	}
	if update.Message.Text != "" {
		msg.Type = entities.MessageTypeText
		msg.Content = update.Message.Text
	}

	h.messageService.ProcessMessage(c.Request.Context(), msg)

	h.metrics.WebhookEvents.WithLabelValues(entities.PlatformTelegram, "success").Inc()
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}
