package repository

import (
	"context"
	"sync"
	"time"

	"MatchPublisher/internal/interfaces"
	"MatchPublisher/internal/model"

	"github.com/google/uuid"
)

// memorySessionStore 未配置数据库时使用，进程重启后会话丢失
type memorySessionStore struct {
	mu       sync.RWMutex
	sessions map[int64]model.Session
}

// NewMemorySessionStore 内存会话存储
func NewMemorySessionStore() interfaces.SessionStore {
	return &memorySessionStore{sessions: make(map[int64]model.Session)}
}

func (m *memorySessionStore) Get(_ context.Context, chatID int64) (*model.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[chatID]
	if !ok {
		return nil, nil
	}
	// 返回副本，调用方修改不影响存储
	s.Draft.StreamURLs = append([]string(nil), s.Draft.StreamURLs...)
	return &s, nil
}

func (m *memorySessionStore) Save(_ context.Context, s *model.Session) error {
	cp := *s
	cp.Draft.StreamURLs = append([]string(nil), s.Draft.StreamURLs...)
	m.mu.Lock()
	m.sessions[s.ChatID] = cp
	m.mu.Unlock()
	return nil
}

func (m *memorySessionStore) Delete(_ context.Context, chatID int64) error {
	m.mu.Lock()
	delete(m.sessions, chatID)
	m.mu.Unlock()
	return nil
}

// memoryPublishLog 保留最近 capacity 条记录
type memoryPublishLog struct {
	mu       sync.RWMutex
	logs     []*model.PublishLog
	capacity int
	nextID   uint64
}

// NewMemoryPublishLog 内存审计记录，超出容量时丢弃最旧的
func NewMemoryPublishLog(capacity int) interfaces.PublishLogRepository {
	if capacity <= 0 {
		capacity = 500
	}
	return &memoryPublishLog{capacity: capacity}
}

func (m *memoryPublishLog) Append(_ context.Context, log *model.PublishLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	cp := *log
	cp.ID = m.nextID
	if cp.LogUUID == "" {
		cp.LogUUID = uuid.NewString()
	}
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now()
	}
	m.logs = append(m.logs, &cp)
	if len(m.logs) > m.capacity {
		m.logs = m.logs[len(m.logs)-m.capacity:]
	}
	log.ID, log.LogUUID, log.CreatedAt = cp.ID, cp.LogUUID, cp.CreatedAt
	return nil
}

func (m *memoryPublishLog) ListRecent(_ context.Context, limit int) ([]*model.PublishLog, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*model.PublishLog, 0, limit)
	for i := len(m.logs) - 1; i >= 0 && len(out) < limit; i-- {
		cp := *m.logs[i]
		out = append(out, &cp)
	}
	return out, nil
}
