package api

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"MatchPublisher/internal/model"

	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

// NewRouter 注册全部路由；webhook 为 nil 时（长轮询模式）不挂载 webhook 入口
func NewRouter(mode, adminToken string, matches *MatchHandler, webhook *WebhookHandler, logger *logrus.Logger) *gin.Engine {
	gin.SetMode(mode)
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := model.RegisterValidations(v); err != nil {
			logger.WithError(err).Error("注册请求校验规则失败")
		}
	}
	r := gin.New()
	r.Use(requestLogger(logger), gin.Recovery())

	// 性能分析
	pprof.Register(r)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if webhook != nil {
		r.POST("/telegram/webhook/:secret", webhook.Receive)
	}

	admin := r.Group("/api", bearerAuth(adminToken))
	admin.GET("/matches", matches.ListMatches)
	admin.GET("/matches/:slug", matches.GetMatch)
	admin.PATCH("/matches/:slug", matches.UpdateMatch)
	admin.DELETE("/matches/:slug", matches.DeleteMatch)
	admin.POST("/regenerate/:target", matches.Regenerate)
	admin.GET("/check", matches.Check)
	admin.GET("/logs", matches.ListLogs)
	return r
}

// bearerAuth token 为空时放行
func bearerAuth(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token == "" {
			c.Next()
			return
		}
		got, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !ok || subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Next()
	}
}

// requestLogger 用 logrus 记录请求（webhook 路径中的密钥不入日志）
func requestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		entry := logger.WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   path,
			"status": c.Writer.Status(),
		})
		if c.Writer.Status() >= http.StatusInternalServerError {
			entry.Warn("HTTP 请求失败")
			return
		}
		entry.Debug("HTTP 请求")
	}
}
