package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"MatchPublisher/internal/interfaces"
	"MatchPublisher/internal/model"

	jsoniter "github.com/json-iterator/go"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var stateJSON = jsoniter.ConfigCompatibleWithStandardLibrary

type sessionRepository struct {
	db *gorm.DB
}

// NewSessionRepository 会话存入 chat_sessions，进程重启后向导可继续
func NewSessionRepository(db *gorm.DB) interfaces.SessionStore {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) Get(ctx context.Context, chatID int64) (*model.Session, error) {
	var row model.ChatSession
	if err := r.db.WithContext(ctx).Where("chat_id = ?", chatID).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("查询会话失败: %w, chat_id: %d", err, chatID)
	}
	var s model.Session
	if err := stateJSON.Unmarshal(row.State, &s); err != nil {
		return nil, fmt.Errorf("解析会话状态失败: %w, chat_id: %d", err, chatID)
	}
	s.ChatID = row.ChatID
	s.UpdatedAt = row.UpdatedAt
	return &s, nil
}

func (r *sessionRepository) Save(ctx context.Context, s *model.Session) error {
	state, err := stateJSON.Marshal(s)
	if err != nil {
		return fmt.Errorf("序列化会话状态失败: %w", err)
	}
	row := &model.ChatSession{
		ChatID:    s.ChatID,
		Flow:      string(s.Flow),
		Step:      string(s.Step),
		State:     datatypes.JSON(state),
		UpdatedAt: s.UpdatedAt,
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "chat_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"flow", "step", "state", "updated_at"}),
	}).Create(row).Error
}

func (r *sessionRepository) Delete(ctx context.Context, chatID int64) error {
	return r.db.WithContext(ctx).Where("chat_id = ?", chatID).Delete(&model.ChatSession{}).Error
}

// DeleteExpiredSessions 清理超时未完成的会话，返回删除行数
func DeleteExpiredSessions(ctx context.Context, db *gorm.DB, before time.Time) (int64, error) {
	res := db.WithContext(ctx).Where("updated_at < ?", before).Delete(&model.ChatSession{})
	return res.RowsAffected, res.Error
}
