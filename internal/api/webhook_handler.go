package api

import (
	"context"
	"crypto/subtle"
	"net/http"

	"MatchPublisher/internal/adapter/telegram"

	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
)

// UpdateReceiver webhook 模式下解析并分发 Telegram 更新
type UpdateReceiver interface {
	ParseWebhook(r *http.Request) (*tgbotapi.Update, error)
	Dispatch(ctx context.Context, update tgbotapi.Update, handler telegram.Handler)
}

// WebhookHandler Telegram webhook 入口
type WebhookHandler struct {
	receiver UpdateReceiver
	handler  telegram.Handler
	secret   string
	logger   *logrus.Logger
}

// NewWebhookHandler secret 为空时不校验路径密钥
func NewWebhookHandler(receiver UpdateReceiver, handler telegram.Handler, secret string, logger *logrus.Logger) *WebhookHandler {
	return &WebhookHandler{receiver: receiver, handler: handler, secret: secret, logger: logger}
}

// Receive 接收一条更新并同步处理；解析失败也返回 200，避免 Telegram 反复重投
// POST /telegram/webhook/:secret
func (h *WebhookHandler) Receive(c *gin.Context) {
	if h.secret != "" && subtle.ConstantTimeCompare([]byte(c.Param("secret")), []byte(h.secret)) != 1 {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	update, err := h.receiver.ParseWebhook(c.Request)
	if err != nil {
		h.logger.WithError(err).Warn("webhook 请求体解析失败")
		c.Status(http.StatusOK)
		return
	}
	// 客户端断开不应打断正在进行的站点写入
	h.receiver.Dispatch(context.WithoutCancel(c.Request.Context()), *update, h.handler)
	c.Status(http.StatusOK)
}
