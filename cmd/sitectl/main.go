package main

import (
	"fmt"
	"os"

	"MatchPublisher/internal/config"
	"MatchPublisher/internal/interfaces"
	"MatchPublisher/internal/render"
	"MatchPublisher/internal/repository"
	"MatchPublisher/internal/service"
	"MatchPublisher/internal/site"
	"MatchPublisher/internal/utils/logging"

	"github.com/spf13/afero"
)

// app 命令行共用的服务
type app struct {
	publisher  interfaces.MatchPublisher
	reconciler interfaces.Reconciler
	logs       interfaces.PublishLogRepository
}

// openApp 按配置组装与机器人相同的服务（配置了数据库时发布记录写入同一张表）
func openApp(configPath string) (*app, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	logger := logging.New(cfg.Log)

	logs := repository.NewMemoryPublishLog(0)
	if cfg.Database.DSN != "" {
		db, err := repository.OpenPostgres(cfg.Database, false, logger)
		if err != nil {
			return nil, err
		}
		logs = repository.NewPublishLogRepository(db)
	}

	renderer, err := render.Load(afero.NewOsFs(), cfg.Site.TemplatesDir, cfg.Site.BaseURL, logger)
	if err != nil {
		return nil, err
	}
	st := site.NewOS(cfg.Site.Root, cfg.Site.GeneratedDir, cfg.Site.BaseURL, logger)
	loc := cfg.Site.Location()
	return &app{
		publisher:  service.NewPublishService(st, renderer, logs, loc, logger),
		reconciler: service.NewReconcileService(st, renderer, logs, loc, logger),
		logs:       logs,
	}, nil
}

func main() {
	if err := newRootCmd(openApp).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
