package interfaces

import (
	"context"

	"MatchPublisher/internal/model"
)

// SessionStore 按聊天保存向导状态；Get 在没有会话时返回 (nil, nil)
type SessionStore interface {
	Get(ctx context.Context, chatID int64) (*model.Session, error)
	Save(ctx context.Context, s *model.Session) error
	Delete(ctx context.Context, chatID int64) error
}

// PublishLogRepository 站点变更审计记录
type PublishLogRepository interface {
	Append(ctx context.Context, log *model.PublishLog) error
	ListRecent(ctx context.Context, limit int) ([]*model.PublishLog, error)
}
