package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 全局配置结构体（完全匹配config.yaml）
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`   // HTTP 服务配置
	Telegram TelegramConfig `mapstructure:"telegram"` // 机器人配置
	Site     SiteConfig     `mapstructure:"site"`     // 静态站点配置
	Database DatabaseConfig `mapstructure:"database"` // 数据库配置（可选）
	Log      LogConfig      `mapstructure:"log"`      // 日志配置
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port       int    `mapstructure:"port"`        // 服务端口
	Mode       string `mapstructure:"mode"`        // Gin运行模式：debug/release/test
	AdminToken string `mapstructure:"admin_token"` // 管理接口 Bearer Token，空=不校验
}

// TelegramConfig 机器人配置
type TelegramConfig struct {
	Token         string        `mapstructure:"token"`          // Bot Token
	Mode          string        `mapstructure:"mode"`           // polling / webhook
	WebhookURL    string        `mapstructure:"webhook_url"`    // webhook 模式下对外地址（不含 secret）
	WebhookSecret string        `mapstructure:"webhook_secret"` // webhook 路径中的密钥段
	AllowedUsers  []int64       `mapstructure:"allowed_users"`  // 允许使用的用户ID，空=不限制
	PollTimeout   int           `mapstructure:"poll_timeout"`   // 长轮询超时（秒）
	Timeout       int           `mapstructure:"timeout"`        // HTTP请求超时（秒），须大于长轮询超时
	Proxy         string        `mapstructure:"proxy"`          // 代理地址
	SessionTTL    time.Duration `mapstructure:"session_ttl"`    // 会话超时
	SendSources   bool          `mapstructure:"send_sources"`   // 发布后是否把生成的代码发回聊天
	Debug         bool          `mapstructure:"debug"`          // 打印 Bot API 调试日志
	ListLimit     int           `mapstructure:"list_limit"`     // /list 与选择键盘展示条数
	HandleTimeout time.Duration `mapstructure:"handle_timeout"` // 单条消息处理超时
}

// SiteConfig 静态站点目录配置
type SiteConfig struct {
	Root         string `mapstructure:"root"`          // 站点源码根目录
	BaseURL      string `mapstructure:"base_url"`      // 站点对外地址（canonical/sitemap）
	TemplatesDir string `mapstructure:"templates_dir"` // 自定义模板目录（可选）
	GeneratedDir string `mapstructure:"generated_dir"` // 生成物副本目录，空=不保存
	Timezone     string `mapstructure:"timezone"`      // 开赛时间所在时区
}

// DatabaseConfig PostgreSQL配置
type DatabaseConfig struct {
	DSN             string        `mapstructure:"dsn"`               // 连接DSN，空=使用内存存储
	MaxOpenConns    int           `mapstructure:"max_open_conns"`    // 最大打开连接数
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`    // 最大空闲连接数
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"` // 连接最大存活时间
}

// LogConfig 日志配置
type LogConfig struct {
	Level      string `mapstructure:"level"`       // debug/info/warn/error
	Format     string `mapstructure:"format"`      // text/json
	File       string `mapstructure:"file"`        // 日志文件，空=只输出到stdout
	MaxSizeMB  int    `mapstructure:"max_size_mb"` // 单文件大小上限
	MaxBackups int    `mapstructure:"max_backups"` // 保留的旧文件数
}

// Location 解析站点时区，失败时回退 UTC
func (s *SiteConfig) Location() *time.Location {
	if s.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// IsWebhook 是否使用 webhook 接收更新
func (t *TelegramConfig) IsWebhook() bool {
	return strings.EqualFold(t.Mode, "webhook")
}

// WebhookLink 向 Telegram 注册的完整地址：webhook_url + "/" + webhook_secret
func (t *TelegramConfig) WebhookLink() (string, error) {
	if t.WebhookURL == "" || t.WebhookSecret == "" {
		return "", errors.New("webhook 模式需要同时配置 telegram.webhook_url 与 telegram.webhook_secret")
	}
	return strings.TrimRight(t.WebhookURL, "/") + "/" + t.WebhookSecret, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("telegram.mode", "polling")
	v.SetDefault("telegram.poll_timeout", 50)
	v.SetDefault("telegram.timeout", 90)
	v.SetDefault("telegram.session_ttl", 24*time.Hour)
	v.SetDefault("telegram.send_sources", true)
	v.SetDefault("telegram.list_limit", 10)
	v.SetDefault("telegram.handle_timeout", 30*time.Second)
	v.SetDefault("site.root", "..")
	v.SetDefault("site.base_url", "https://footholics.example")
	v.SetDefault("site.generated_dir", "generated")
	v.SetDefault("site.timezone", "UTC")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", time.Hour)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.max_size_mb", 20)
	v.SetDefault("log.max_backups", 5)
}

// LoadConfig 加载配置文件（默认 ./config/config.yaml），敏感项从 .env / 环境变量覆盖
// path 非空时必须存在；为空时找不到配置文件则全部使用默认值
func LoadConfig(path string) (*Config, error) {
	// 1. 加载 .env（若存在），env 中的值会覆盖 config.yaml 中同名字段
	_ = godotenv.Load() // 忽略错误（.env 可不存在）

	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}

	// 2. 读取 config.yaml
	v := viper.New()
	setDefaults(v)
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}

	// 3. 敏感字段：用 env 覆盖（优先级 env > yaml）
	if err := overrideFromEnv(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// overrideFromEnv 用环境变量覆盖敏感配置
func overrideFromEnv(cfg *Config) error {
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.Token = v
	}
	if v := os.Getenv("TELEGRAM_WEBHOOK_SECRET"); v != "" {
		cfg.Telegram.WebhookSecret = v
	}
	if v := os.Getenv("TELEGRAM_PROXY"); v != "" {
		cfg.Telegram.Proxy = v
	}
	if v := os.Getenv("TELEGRAM_ALLOWED_USERS"); v != "" {
		ids, err := parseIDs(v)
		if err != nil {
			return fmt.Errorf("TELEGRAM_ALLOWED_USERS 格式错误: %w", err)
		}
		cfg.Telegram.AllowedUsers = ids
	}
	if v := os.Getenv("DATABASE_DSN"); v != "" {
		cfg.Database.DSN = v
	}
	if v := os.Getenv("ADMIN_TOKEN"); v != "" {
		cfg.Server.AdminToken = v
	}
	if v := os.Getenv("SITE_ROOT"); v != "" {
		cfg.Site.Root = v
	}
	return nil
}

// parseIDs 逗号分隔的用户ID列表
func parseIDs(s string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
