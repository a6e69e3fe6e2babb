package interfaces

import (
	"context"

	"MatchPublisher/internal/model"
)

// Messenger 向聊天发送消息（Telegram 适配器实现，测试中可替换）
type Messenger interface {
	Send(ctx context.Context, chatID int64, reply model.Reply) error
	AnswerCallback(ctx context.Context, callbackID, text string) error
}
