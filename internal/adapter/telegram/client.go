package telegram

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"MatchPublisher/internal/config"
	"MatchPublisher/internal/interfaces"
	"MatchPublisher/internal/model"
	"MatchPublisher/internal/utils/httpclient"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
)

// Handler 处理一条归一化后的输入
type Handler func(ctx context.Context, in *model.Incoming) error

// Client Telegram Bot API 适配器（长轮询或 webhook 接收，发送消息/应答回调）
type Client struct {
	api    *tgbotapi.BotAPI
	cfg    *config.TelegramConfig
	logger *logrus.Logger
	// handleMu 保证更新逐条处理；webhook 模式下 gin 会并发调用 Dispatch
	handleMu sync.Mutex
}

var _ interfaces.Messenger = (*Client)(nil)

// NewClient 使用带代理/gzip 的 HTTP 客户端连接 Bot API，并校验 token
func NewClient(cfg *config.TelegramConfig, logger *logrus.Logger) (*Client, error) {
	if cfg.Token == "" {
		return nil, errors.New("telegram.token 未配置（或设置 TELEGRAM_BOT_TOKEN）")
	}
	api, err := tgbotapi.NewBotAPIWithClient(cfg.Token, tgbotapi.APIEndpoint, httpclient.NewHTTPClient(cfg, logger))
	if err != nil {
		return nil, fmt.Errorf("连接 Telegram Bot API 失败: %w", err)
	}
	api.Debug = cfg.Debug
	logger.WithField("bot", api.Self.UserName).Info("Telegram 机器人已连接")
	return &Client{api: api, cfg: cfg, logger: logger}, nil
}

// Username 机器人用户名
func (c *Client) Username() string { return c.api.Self.UserName }

// Send 发送或编辑消息；Markdown 解析失败时退回纯文本重发
func (c *Client) Send(_ context.Context, chatID int64, reply model.Reply) error {
	err := c.send(chatID, reply)
	if err != nil && reply.Markdown && isParseError(err) {
		c.logger.WithError(err).WithField("chat_id", chatID).Debug("Markdown 解析失败，改用纯文本")
		reply.Markdown = false
		err = c.send(chatID, reply)
	}
	return err
}

func (c *Client) send(chatID int64, reply model.Reply) error {
	_, err := c.api.Send(Chattable(chatID, reply))
	return err
}

// AnswerCallback 应答按钮回调，消除客户端的加载状态
func (c *Client) AnswerCallback(_ context.Context, callbackID, text string) error {
	_, err := c.api.Request(tgbotapi.NewCallback(callbackID, text))
	return err
}

// Run 长轮询接收更新，逐条交给 handler，直到 ctx 取消
func (c *Client) Run(ctx context.Context, handler Handler) error {
	// 轮询模式下必须先删除 webhook，否则 getUpdates 会报 409
	if _, err := c.api.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
		return fmt.Errorf("删除 webhook 失败: %w", err)
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = c.cfg.PollTimeout
	updates := c.api.GetUpdatesChan(u)
	c.logger.WithField("poll_timeout", c.cfg.PollTimeout).Info("开始长轮询接收消息")

	for {
		select {
		case <-ctx.Done():
			c.api.StopReceivingUpdates()
			c.logger.Info("长轮询已停止")
			return nil
		case update, ok := <-updates:
			if !ok {
				return errors.New("更新通道已关闭")
			}
			c.Dispatch(ctx, update, handler)
		}
	}
}

// Dispatch 处理单个 update（轮询与 webhook 共用），同一时刻只处理一条
func (c *Client) Dispatch(ctx context.Context, update tgbotapi.Update, handler Handler) {
	in := ToIncoming(update)
	if in == nil {
		return
	}
	c.handleMu.Lock()
	defer c.handleMu.Unlock()

	if c.cfg.HandleTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.HandleTimeout)
		defer cancel()
	}
	if err := handler(ctx, in); err != nil {
		c.logger.WithError(err).WithFields(logrus.Fields{
			"chat_id":   in.ChatID,
			"update_id": update.UpdateID,
		}).Warn("处理消息失败")
	}
}

// ParseWebhook 解析 webhook 请求体
func (c *Client) ParseWebhook(r *http.Request) (*tgbotapi.Update, error) {
	return c.api.HandleUpdate(r)
}

// SetWebhook 向 Telegram 注册 webhook 地址（地址末尾附加 secret 路径段）
func (c *Client) SetWebhook(url string) error {
	wh, err := tgbotapi.NewWebhook(url)
	if err != nil {
		return fmt.Errorf("webhook 地址无效: %w", err)
	}
	if _, err := c.api.Request(wh); err != nil {
		return fmt.Errorf("设置 webhook 失败: %w", err)
	}
	info, err := c.api.GetWebhookInfo()
	if err != nil {
		return fmt.Errorf("查询 webhook 状态失败: %w", err)
	}
	if info.LastErrorDate != 0 {
		c.logger.WithFields(logrus.Fields{
			"last_error":      info.LastErrorMessage,
			"last_error_time": time.Unix(int64(info.LastErrorDate), 0),
		}).Warn("Telegram 报告 webhook 最近一次投递失败")
	}
	c.logger.WithField("pending", info.PendingUpdateCount).Info("webhook 已设置")
	return nil
}

func isParseError(err error) bool {
	var tgErr *tgbotapi.Error
	if errors.As(err, &tgErr) {
		return strings.Contains(tgErr.Message, "parse entities")
	}
	return strings.Contains(err.Error(), "parse entities")
}
