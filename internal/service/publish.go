package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"MatchPublisher/internal/interfaces"
	"MatchPublisher/internal/model"
	"MatchPublisher/internal/render"
	"MatchPublisher/internal/site"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

// ErrInvalid 输入未通过校验
var ErrInvalid = errors.New("invalid input")

// PublishService 发布/更新/删除比赛，负责把渲染结果同步到站点各文件
type PublishService struct {
	site     *site.Site
	renderer *render.Renderer
	logs     interfaces.PublishLogRepository
	validate *validator.Validate
	loc      *time.Location
	now      func() time.Time
	logger   *logrus.Logger
}

// NewPublishService 创建 PublishService；loc 为开赛时间所在时区
func NewPublishService(st *site.Site, renderer *render.Renderer, logs interfaces.PublishLogRepository, loc *time.Location, logger *logrus.Logger) *PublishService {
	if loc == nil {
		loc = time.UTC
	}
	validate := validator.New()
	if err := model.RegisterValidations(validate); err != nil {
		logger.WithError(err).Error("注册校验规则失败")
	}
	return &PublishService{
		site:     st,
		renderer: renderer,
		logs:     logs,
		validate: validate,
		loc:      loc,
		now:      time.Now,
		logger:   logger,
	}
}

func (s *PublishService) check(m *model.Match) error {
	if err := s.validate.Struct(m); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fe.Field()+"("+fe.Tag()+")")
			}
			return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(fields, ", "))
		}
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if !site.ValidSlug(m.Slug()) {
		return fmt.Errorf("%w: slug %q", ErrInvalid, m.Slug())
	}
	return nil
}

// Publish 渲染并写入页面、目录条目、首页卡片与 sitemap
// 首页/sitemap 缺少锚点只记为警告，页面与目录写入失败则返回错误
func (s *PublishService) Publish(ctx context.Context, m *model.Match, actorID int64) (*model.PublishResult, error) {
	if m.EventID == "" {
		m.EventID = fmt.Sprintf("event-%d", s.now().Unix())
	}
	if err := s.check(m); err != nil {
		return nil, err
	}

	entry := m.ToEntry()
	entryJSON, err := s.renderer.EntryJSON(entry)
	if err != nil {
		return nil, err
	}
	res := &model.PublishResult{
		Entry:     entry,
		URL:       s.site.PageURL(entry.Slug),
		Page:      s.renderer.Page(m),
		Card:      s.renderer.Card(m),
		EntryJSON: entryJSON,
	}
	log := s.logger.WithFields(logrus.Fields{"slug": entry.Slug, "actor": actorID})

	// 目录条目最后写入：前面任一步失败时目录不变，重试不会产生重复条目
	err = s.site.WithLock(func() error {
		if err := s.site.WritePage(entry.Slug, res.Page); err != nil {
			return err
		}
		if err := s.site.SaveGenerated(entry.Slug, res.Page, res.EntryJSON, res.Card); err != nil {
			log.WithError(err).Warn("保存生成物副本失败")
			res.Warnings = append(res.Warnings, "generated copies not saved: "+err.Error())
		}
		replaced, err := s.site.InsertCard(entry.Slug, res.Card)
		warning, err := cardWarning(err, log)
		if err != nil {
			return err
		}
		if warning != "" {
			res.Warnings = append(res.Warnings, warning)
		}
		if replaced {
			res.Warnings = append(res.Warnings, "index.html already had a card for this match; it was replaced")
		}
		res.Warnings = append(res.Warnings, s.addSitemap(entry, log)...)
		return s.site.PrependEntry(entry)
	})
	if err != nil {
		log.WithError(err).Error("发布比赛失败")
		return nil, err
	}

	s.record(ctx, model.ActionAdd, entry.Slug, actorID, entry.Title)
	log.Info("比赛已发布")
	return res, nil
}

// cardWarning 首页缺少锚点或 index.html 不存在时降级为警告，其它错误原样返回
func cardWarning(err error, log *logrus.Entry) (string, error) {
	switch {
	case err == nil:
		return "", nil
	case errors.Is(err, site.ErrAnchorNotFound):
		log.WithError(err).Warn("首页卡片未写入")
		return "index.html: matches grid not found, card not written", nil
	case errors.Is(err, os.ErrNotExist):
		log.Warn("index.html 不存在，跳过首页卡片")
		return "index.html not found, card not written", nil
	default:
		return "", err
	}
}

func (s *PublishService) addSitemap(entry model.EventEntry, log *logrus.Entry) []string {
	_, err := s.site.AddSitemapURL(entry.Slug, entry.Date)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, os.ErrNotExist):
		log.Warn("sitemap.xml 不存在，跳过")
		return []string{"sitemap.xml not found, skipped"}
	case errors.Is(err, site.ErrAnchorNotFound):
		log.WithError(err).Warn("sitemap 未更新")
		return []string{"sitemap.xml: </urlset> not found, url not added"}
	default:
		log.WithError(err).Warn("sitemap 更新失败")
		return []string{"sitemap.xml not updated: " + err.Error()}
	}
}

// Update 按 patch 修改已发布的比赛，重新渲染页面并替换首页卡片；slug 与 sitemap 保持不变
func (s *PublishService) Update(ctx context.Context, slug string, patch model.EntryPatch, actorID int64) (*model.PublishResult, error) {
	if !site.ValidSlug(slug) {
		return nil, fmt.Errorf("%w: slug %q", ErrInvalid, slug)
	}
	if patch.Empty() {
		return nil, fmt.Errorf("%w: nothing to update", ErrInvalid)
	}
	log := s.logger.WithFields(logrus.Fields{"slug": slug, "actor": actorID})

	res := &model.PublishResult{}
	// 与 Publish 相同，目录条目在页面与卡片写入成功后才更新
	err := s.site.WithLock(func() error {
		current, err := s.site.FindEntry(slug)
		if err != nil {
			return err
		}
		match, err := model.MatchFromEntry(current, s.loc)
		if err != nil {
			return fmt.Errorf("解析条目%s失败: %w", slug, err)
		}
		if err := s.applyPatch(match, patch); err != nil {
			return err
		}
		if err := s.check(match); err != nil {
			return err
		}
		res.Entry = match.ToEntry()
		res.URL = s.site.PageURL(slug)
		res.Page = s.renderer.Page(match)
		res.Card = s.renderer.Card(match)
		if res.EntryJSON, err = s.renderer.EntryJSON(res.Entry); err != nil {
			return err
		}
		if err := s.site.WritePage(slug, res.Page); err != nil {
			return err
		}
		_, err = s.site.InsertCard(slug, res.Card)
		warning, err := cardWarning(err, log)
		if err != nil {
			return err
		}
		if warning != "" {
			res.Warnings = append(res.Warnings, warning)
		}
		if err := s.site.SaveGenerated(slug, res.Page, res.EntryJSON, res.Card); err != nil {
			log.WithError(err).Warn("保存生成物副本失败")
			res.Warnings = append(res.Warnings, "generated copies not saved: "+err.Error())
		}
		_, err = s.site.UpdateEntry(slug, func(e *model.EventEntry) error {
			*e = res.Entry
			return nil
		})
		return err
	})
	if err != nil {
		log.WithError(err).Warn("更新比赛失败")
		return nil, err
	}

	s.record(ctx, model.ActionUpdate, slug, actorID, describePatch(patch))
	log.Info("比赛已更新")
	return res, nil
}

func (s *PublishService) applyPatch(m *model.Match, p model.EntryPatch) error {
	if p.StreamURLs != nil {
		m.StreamURLs = append([]string(nil), (*p.StreamURLs)...)
	}
	if p.Preview != nil {
		m.Preview = strings.TrimSpace(*p.Preview)
	}
	if p.Stadium != nil {
		m.Stadium = strings.TrimSpace(*p.Stadium)
	}
	if p.Kickoff != nil {
		t, err := time.ParseInLocation(model.DateTimeLayout, strings.TrimSpace(*p.Kickoff), s.loc)
		if err != nil {
			return fmt.Errorf("%w: kickoff must be %s", ErrInvalid, model.DateTimeLayout)
		}
		m.Kickoff = t
	}
	if p.ImageFile != nil {
		m.ImageFile = strings.TrimSpace(*p.ImageFile)
	}
	if p.Status != nil {
		m.Status = strings.TrimSpace(*p.Status)
	}
	return nil
}

func describePatch(p model.EntryPatch) string {
	var fields []string
	if p.StreamURLs != nil {
		fields = append(fields, string(model.FieldStreams))
	}
	if p.Preview != nil {
		fields = append(fields, string(model.FieldPreview))
	}
	if p.Stadium != nil {
		fields = append(fields, string(model.FieldStadium))
	}
	if p.Kickoff != nil {
		fields = append(fields, string(model.FieldDateTime))
	}
	if p.ImageFile != nil {
		fields = append(fields, string(model.FieldImage))
	}
	if p.Status != nil {
		fields = append(fields, string(model.FieldStatus))
	}
	return strings.Join(fields, ",")
}

// Delete 删除页面、目录条目、首页卡片与 sitemap 记录（Publish 的逆操作）
// 什么都没找到时返回 site.ErrNotFound
func (s *PublishService) Delete(ctx context.Context, slug string, actorID int64) (*model.DeleteResult, error) {
	if !site.ValidSlug(slug) {
		return nil, fmt.Errorf("%w: slug %q", ErrInvalid, slug)
	}
	log := s.logger.WithFields(logrus.Fields{"slug": slug, "actor": actorID})
	res := &model.DeleteResult{Slug: slug}

	err := s.site.WithLock(func() error {
		var err error
		if res.PageRemoved, err = s.site.RemovePage(slug); err != nil {
			return err
		}
		if res.EntriesRemoved, err = s.site.RemoveEntries(slug); err != nil {
			return err
		}
		if res.CardsRemoved, err = s.site.RemoveCards(slug); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return err
			}
			res.Warnings = append(res.Warnings, "index.html not found")
		}
		if res.SitemapRemoved, err = s.site.RemoveSitemapURL(slug); err != nil {
			log.WithError(err).Warn("sitemap 更新失败")
			res.Warnings = append(res.Warnings, "sitemap.xml not updated: "+err.Error())
		}
		return nil
	})
	if err != nil {
		log.WithError(err).Error("删除比赛失败")
		return nil, err
	}
	if res.Nothing() {
		return res, fmt.Errorf("%s: %w", slug, site.ErrNotFound)
	}

	s.record(ctx, model.ActionDelete, slug, actorID,
		fmt.Sprintf("page=%t entries=%d cards=%d sitemap=%t", res.PageRemoved, res.EntriesRemoved, res.CardsRemoved, res.SitemapRemoved))
	log.Info("比赛已删除")
	return res, nil
}

// List 目录中最新的 limit 条（limit<=0 返回全部）
func (s *PublishService) List(_ context.Context, limit int) ([]model.EventEntry, error) {
	entries, err := s.site.LoadCatalog()
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

// Get 按 slug 查找
func (s *PublishService) Get(_ context.Context, slug string) (*model.EventEntry, error) {
	if !site.ValidSlug(slug) {
		return nil, fmt.Errorf("%w: slug %q", ErrInvalid, slug)
	}
	return s.site.FindEntry(slug)
}

// record 写审计日志；失败只记日志，不影响已完成的站点修改
func (s *PublishService) record(ctx context.Context, action model.PublishAction, slug string, actorID int64, detail string) {
	if s.logs == nil {
		return
	}
	entry := &model.PublishLog{Action: action, Slug: slug, ActorID: actorID, Detail: detail, CreatedAt: s.now()}
	if err := s.logs.Append(ctx, entry); err != nil {
		s.logger.WithError(err).WithField("action", action).Warn("写入发布日志失败")
	}
}
