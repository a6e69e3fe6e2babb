package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"MatchPublisher/internal/adapter/telegram"
	"MatchPublisher/internal/api"
	"MatchPublisher/internal/bot"
	"MatchPublisher/internal/config"
	"MatchPublisher/internal/interfaces"
	"MatchPublisher/internal/render"
	"MatchPublisher/internal/repository"
	"MatchPublisher/internal/service"
	"MatchPublisher/internal/site"
	"MatchPublisher/internal/utils/logging"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	flag "github.com/spf13/pflag"
)

func main() {
	configPath := flag.StringP("config", "c", "", "配置文件路径（默认 ./config/config.yaml 或 CONFIG_PATH）")
	flag.Parse()

	// 1. 加载配置文件
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("加载配置文件失败: %v", err)
	}

	// 2. 初始化日志
	logger := logging.New(cfg.Log)
	logger.Info("配置文件加载成功")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 3. 会话与发布记录存储：配置了 DSN 用 PostgreSQL，否则用内存
	var (
		sessions interfaces.SessionStore
		logs     interfaces.PublishLogRepository
	)
	if cfg.Database.DSN != "" {
		db, err := repository.OpenPostgres(cfg.Database, cfg.Log.Level == "debug", logger)
		if err != nil {
			logger.Fatalf("初始化数据库失败: %v", err)
		}
		sessions = repository.NewSessionRepository(db)
		logs = repository.NewPublishLogRepository(db)
		if n, err := repository.DeleteExpiredSessions(ctx, db, time.Now().Add(-cfg.Telegram.SessionTTL)); err != nil {
			logger.WithError(err).Warn("清理过期会话失败")
		} else if n > 0 {
			logger.Infof("已清理%d个过期会话", n)
		}
	} else {
		sessions = repository.NewMemorySessionStore()
		logs = repository.NewMemoryPublishLog(0)
		logger.Warn("未配置 database.dsn，会话与发布记录仅保存在内存中")
	}

	// 4. 模板与站点目录
	renderer, err := render.Load(afero.NewOsFs(), cfg.Site.TemplatesDir, cfg.Site.BaseURL, logger)
	if err != nil {
		logger.Fatalf("加载模板失败: %v", err)
	}
	st := site.NewOS(cfg.Site.Root, cfg.Site.GeneratedDir, cfg.Site.BaseURL, logger)
	loc := cfg.Site.Location()
	logger.WithFields(logrus.Fields{"root": cfg.Site.Root, "timezone": loc.String()}).Info("站点目录已就绪")

	// 5. 发布与重建服务
	publisher := service.NewPublishService(st, renderer, logs, loc, logger)
	reconciler := service.NewReconcileService(st, renderer, logs, loc, logger)

	// 6. Telegram 客户端与对话机器人
	client, err := telegram.NewClient(&cfg.Telegram, logger)
	if err != nil {
		logger.Fatalf("初始化 Telegram 客户端失败: %v", err)
	}
	matchBot := bot.New(sessions, publisher, reconciler, client, bot.Options{
		AllowedUsers: cfg.Telegram.AllowedUsers,
		SessionTTL:   cfg.Telegram.SessionTTL,
		SendSources:  cfg.Telegram.SendSources,
		ListLimit:    cfg.Telegram.ListLimit,
		Location:     loc,
	}, logger)
	if len(cfg.Telegram.AllowedUsers) == 0 {
		logger.Warn("未配置 telegram.allowed_users，任何人都可以发布内容")
	}

	// 7. 注册API路由
	var webhook *api.WebhookHandler
	if cfg.Telegram.IsWebhook() {
		webhook = api.NewWebhookHandler(client, matchBot.Handle, cfg.Telegram.WebhookSecret, logger)
	}
	router := api.NewRouter(cfg.Server.Mode, cfg.Server.AdminToken,
		api.NewMatchHandler(publisher, reconciler, logs, logger), webhook, logger)
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// 8. 启动服务（从配置读取端口）
	go func() {
		logger.Infof("服务启动成功，端口：%d", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("启动服务失败: %v", err)
		}
	}()

	// 9. 接收消息：webhook 由 HTTP 服务接收，否则长轮询
	if cfg.Telegram.IsWebhook() {
		link, err := cfg.Telegram.WebhookLink()
		if err != nil {
			logger.Fatalf("webhook 配置错误: %v", err)
		}
		if err := client.SetWebhook(link); err != nil {
			logger.Fatalf("设置 webhook 失败: %v", err)
		}
		<-ctx.Done()
	} else {
		for ctx.Err() == nil {
			if err := client.Run(ctx, matchBot.Handle); err != nil {
				logger.WithError(err).Error("长轮询异常退出，5秒后重试")
				select {
				case <-ctx.Done():
				case <-time.After(5 * time.Second):
				}
			}
		}
	}

	// 10. 优雅退出
	logger.Info("收到退出信号，正在关闭服务…")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Warn("HTTP 服务关闭超时")
	}
	logger.Info("服务已退出")
}
