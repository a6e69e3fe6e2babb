package model

import (
	"time"

	"gorm.io/datatypes"
)

// ChatSession 会话临时状态的持久化行（配置了数据库时使用）
type ChatSession struct {
	ChatID    int64          `gorm:"column:chat_id;primaryKey;autoIncrement:false;comment:聊天ID"`
	Flow      string         `gorm:"column:flow;type:varchar(16);not null;comment:流程：add/update/delete"`
	Step      string         `gorm:"column:step;type:varchar(32);not null;comment:当前步骤"`
	State     datatypes.JSON `gorm:"column:state;type:jsonb;not null;comment:完整会话状态"`
	CreatedAt time.Time      `gorm:"column:created_at;type:timestamp;default:now();comment:创建时间"`
	UpdatedAt time.Time      `gorm:"column:updated_at;type:timestamp;default:now();index;comment:更新时间"`
}

// PublishAction 站点变更类型
type PublishAction string

const (
	ActionAdd        PublishAction = "add"
	ActionUpdate     PublishAction = "update"
	ActionDelete     PublishAction = "delete"
	ActionRegenerate PublishAction = "regenerate"
)

// PublishLog 每次站点文件变更的审计记录
type PublishLog struct {
	ID        uint64        `gorm:"column:id;primaryKey;autoIncrement;comment:自增主键ID" json:"-"`
	LogUUID   string        `gorm:"column:log_uuid;type:varchar(64);uniqueIndex;not null;comment:全局唯一ID" json:"id"`
	Action    PublishAction `gorm:"column:action;type:varchar(16);not null;index;comment:操作类型" json:"action"`
	Slug      string        `gorm:"column:slug;type:varchar(256);index;comment:比赛slug" json:"slug,omitempty"`
	ActorID   int64         `gorm:"column:actor_id;type:bigint;default:0;comment:操作人（聊天用户ID，0=管理接口/脚本）" json:"actor_id"`
	Detail    string        `gorm:"column:detail;type:text;comment:详情" json:"detail,omitempty"`
	CreatedAt time.Time     `gorm:"column:created_at;type:timestamp;default:now();comment:创建时间" json:"created_at"`
}

func (ChatSession) TableName() string { return "chat_sessions" }
func (PublishLog) TableName() string  { return "publish_logs" }
