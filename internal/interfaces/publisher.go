package interfaces

import (
	"context"

	"MatchPublisher/internal/model"
)

// MatchPublisher 比赛的增删改查，每个操作都会同步更新页面、events.json、首页卡片与 sitemap
type MatchPublisher interface {
	Publish(ctx context.Context, m *model.Match, actorID int64) (*model.PublishResult, error)
	Update(ctx context.Context, slug string, patch model.EntryPatch, actorID int64) (*model.PublishResult, error)
	Delete(ctx context.Context, slug string, actorID int64) (*model.DeleteResult, error)
	List(ctx context.Context, limit int) ([]model.EventEntry, error)
	Get(ctx context.Context, slug string) (*model.EventEntry, error)
}

// Reconciler 以 events.json 为准重建首页与页面，并检查漂移
type Reconciler interface {
	RegenerateCards(ctx context.Context) (int, error)
	RegeneratePages(ctx context.Context) (int, error)
	Check(ctx context.Context) (*model.DriftReport, error)
}
