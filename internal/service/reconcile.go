package service

import (
	"context"
	"fmt"
	"time"

	"MatchPublisher/internal/interfaces"
	"MatchPublisher/internal/model"
	"MatchPublisher/internal/render"
	"MatchPublisher/internal/site"

	"github.com/sirupsen/logrus"
)

// ReconcileService 以 events.json 为准重建首页卡片与比赛页面
type ReconcileService struct {
	site     *site.Site
	renderer *render.Renderer
	logs     interfaces.PublishLogRepository
	loc      *time.Location
	logger   *logrus.Logger
}

// NewReconcileService 创建 ReconcileService
func NewReconcileService(st *site.Site, renderer *render.Renderer, logs interfaces.PublishLogRepository, loc *time.Location, logger *logrus.Logger) *ReconcileService {
	if loc == nil {
		loc = time.UTC
	}
	return &ReconcileService{site: st, renderer: renderer, logs: logs, loc: loc, logger: logger}
}

// matches 目录中可解析的比赛，重复 slug 只保留第一条
func (s *ReconcileService) matches() ([]*model.Match, error) {
	entries, err := s.site.LoadCatalog()
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(entries))
	out := make([]*model.Match, 0, len(entries))
	for i := range entries {
		e := &entries[i]
		if seen[e.Slug] {
			s.logger.WithField("slug", e.Slug).Warn("目录中存在重复 slug，已跳过")
			continue
		}
		seen[e.Slug] = true
		if !site.ValidSlug(e.Slug) {
			s.logger.WithField("slug", e.Slug).Warn("slug 非法，已跳过")
			continue
		}
		m, err := model.MatchFromEntry(e, s.loc)
		if err != nil {
			s.logger.WithError(err).WithField("slug", e.Slug).Warn("条目日期无法解析，已跳过")
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

// RegenerateCards 用目录中的全部比赛重建首页卡片网格，返回卡片数量
func (s *ReconcileService) RegenerateCards(ctx context.Context) (int, error) {
	var n int
	err := s.site.WithLock(func() error {
		matches, err := s.matches()
		if err != nil {
			return err
		}
		cards := make([]string, 0, len(matches))
		for _, m := range matches {
			cards = append(cards, s.renderer.Card(m))
		}
		if err := s.site.ReplaceGrid(cards); err != nil {
			return err
		}
		n = len(cards)
		return nil
	})
	if err != nil {
		s.logger.WithError(err).Error("重建首页卡片失败")
		return 0, err
	}
	s.record(ctx, fmt.Sprintf("cards=%d", n))
	s.logger.WithField("cards", n).Info("首页卡片已重建")
	return n, nil
}

// RegeneratePages 重写目录中每场比赛的页面文件，返回写入数量
func (s *ReconcileService) RegeneratePages(ctx context.Context) (int, error) {
	var n int
	err := s.site.WithLock(func() error {
		matches, err := s.matches()
		if err != nil {
			return err
		}
		for _, m := range matches {
			if err := s.site.WritePage(m.Slug(), s.renderer.Page(m)); err != nil {
				return err
			}
			n++
		}
		return nil
	})
	if err != nil {
		s.logger.WithError(err).WithField("written", n).Error("重建比赛页面失败")
		return n, err
	}
	s.record(ctx, fmt.Sprintf("pages=%d", n))
	s.logger.WithField("pages", n).Info("比赛页面已重建")
	return n, nil
}

// Check 漂移检查
func (s *ReconcileService) Check(_ context.Context) (*model.DriftReport, error) {
	var report *model.DriftReport
	err := s.site.WithLock(func() error {
		var err error
		report, err = s.site.Audit()
		return err
	})
	return report, err
}

func (s *ReconcileService) record(ctx context.Context, detail string) {
	if s.logs == nil {
		return
	}
	if err := s.logs.Append(ctx, &model.PublishLog{Action: model.ActionRegenerate, Detail: detail}); err != nil {
		s.logger.WithError(err).Warn("写入发布日志失败")
	}
}
