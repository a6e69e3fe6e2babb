package repository

import (
	"context"
	"time"

	"MatchPublisher/internal/interfaces"
	"MatchPublisher/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type publishLogRepository struct {
	db *gorm.DB
}

// NewPublishLogRepository 审计记录写入 publish_logs
func NewPublishLogRepository(db *gorm.DB) interfaces.PublishLogRepository {
	return &publishLogRepository{db: db}
}

func (r *publishLogRepository) Append(ctx context.Context, log *model.PublishLog) error {
	if log.LogUUID == "" {
		log.LogUUID = uuid.NewString() // 生成全局唯一ID
	}
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now()
	}
	return r.db.WithContext(ctx).Create(log).Error
}

func (r *publishLogRepository) ListRecent(ctx context.Context, limit int) ([]*model.PublishLog, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var list []*model.PublishLog
	if err := r.db.WithContext(ctx).Order("created_at DESC, id DESC").Limit(limit).Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}
