package api

import (
	"errors"
	"net/http"
	"strconv"

	"MatchPublisher/internal/interfaces"
	"MatchPublisher/internal/model"
	"MatchPublisher/internal/service"
	"MatchPublisher/internal/site"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// MatchHandler 站点内容的管理接口（与机器人共用同一套服务）
type MatchHandler struct {
	publisher  interfaces.MatchPublisher
	reconciler interfaces.Reconciler
	logs       interfaces.PublishLogRepository
	logger     *logrus.Logger
}

// NewMatchHandler 创建 MatchHandler
func NewMatchHandler(publisher interfaces.MatchPublisher, reconciler interfaces.Reconciler,
	logs interfaces.PublishLogRepository, logger *logrus.Logger) *MatchHandler {
	return &MatchHandler{
		publisher:  publisher,
		reconciler: reconciler,
		logs:       logs,
		logger:     logger,
	}
}

// ListMatches 已发布比赛列表（最新在前）
// GET /api/matches?limit=20
func (h *MatchHandler) ListMatches(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	entries, err := h.publisher.List(c.Request.Context(), limit)
	if err != nil {
		h.fail(c, "ListMatches", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"total": len(entries), "list": entries})
}

// GetMatch 单场比赛的目录条目
// GET /api/matches/:slug
func (h *MatchHandler) GetMatch(c *gin.Context) {
	entry, err := h.publisher.Get(c.Request.Context(), c.Param("slug"))
	if err != nil {
		h.fail(c, "GetMatch", err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

// UpdateMatch 修改已发布比赛的部分字段
// PATCH /api/matches/:slug  body: EntryPatch
func (h *MatchHandler) UpdateMatch(c *gin.Context) {
	var patch model.EntryPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if patch.Empty() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no fields to update"})
		return
	}
	result, err := h.publisher.Update(c.Request.Context(), c.Param("slug"), patch, 0)
	if err != nil {
		h.fail(c, "UpdateMatch", err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// DeleteMatch 删除比赛页面、目录条目、首页卡片与 sitemap 地址
// DELETE /api/matches/:slug
func (h *MatchHandler) DeleteMatch(c *gin.Context) {
	result, err := h.publisher.Delete(c.Request.Context(), c.Param("slug"), 0)
	if err != nil {
		h.fail(c, "DeleteMatch", err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Regenerate 按目录重建首页卡片和/或比赛页面
// POST /api/regenerate/:target  target=cards|pages|all
func (h *MatchHandler) Regenerate(c *gin.Context) {
	target := c.Param("target")
	if target != "cards" && target != "pages" && target != "all" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "target must be cards, pages or all"})
		return
	}
	ctx := c.Request.Context()
	resp := gin.H{}
	if target == "cards" || target == "all" {
		n, err := h.reconciler.RegenerateCards(ctx)
		if err != nil {
			h.fail(c, "RegenerateCards", err)
			return
		}
		resp["cards"] = n
	}
	if target == "pages" || target == "all" {
		n, err := h.reconciler.RegeneratePages(ctx)
		if err != nil {
			h.fail(c, "RegeneratePages", err)
			return
		}
		resp["pages"] = n
	}
	c.JSON(http.StatusOK, resp)
}

// Check 目录、首页卡片与页面文件的一致性报告
// GET /api/check
func (h *MatchHandler) Check(c *gin.Context) {
	report, err := h.reconciler.Check(c.Request.Context())
	if err != nil {
		h.fail(c, "Check", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"clean": report.Clean(), "report": report})
}

// ListLogs 最近的发布记录
// GET /api/logs?limit=50
func (h *MatchHandler) ListLogs(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	logs, err := h.logs.ListRecent(c.Request.Context(), limit)
	if err != nil {
		h.fail(c, "ListLogs", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"total": len(logs), "list": logs})
}

func (h *MatchHandler) fail(c *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, site.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalid):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.logger.WithError(err).Errorf("%s failed", op)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
