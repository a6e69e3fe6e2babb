package site

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gofrs/flock"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

// 站点内固定文件位置（相对站点根目录）
const (
	CatalogFile = "data/events.json"
	LockFile    = "data/.lock"
	IndexFile   = "index.html"
	SitemapFile = "sitemap.xml"
)

var (
	// ErrAnchorNotFound 目标文件中找不到插入/替换所需的锚点，文件保持不变
	ErrAnchorNotFound = errors.New("anchor not found")
	// ErrNotFound 目录中没有该 slug
	ErrNotFound = errors.New("match not found")
)

// Site 静态站点源码树；所有读写都经过 afero，便于测试时换成内存文件系统
type Site struct {
	fs           afero.Fs
	generatedDir string
	baseURL      string
	logger       *logrus.Logger
	mu           sync.Mutex
	// fileLock 跨进程互斥（机器人服务与 sitectl 同时操作同一站点目录）；内存文件系统下为 nil
	fileLock *flock.Flock
}

// New root 为站点根目录；generatedDir 为空时不保存生成物副本
func New(fs afero.Fs, root, generatedDir, baseURL string, logger *logrus.Logger) *Site {
	if root != "" && root != "." {
		fs = afero.NewBasePathFs(fs, root)
	}
	return &Site{
		fs:           fs,
		generatedDir: generatedDir,
		baseURL:      strings.TrimRight(baseURL, "/"),
		logger:       logger,
	}
}

// NewOS 基于本地磁盘
func NewOS(root, generatedDir, baseURL string, logger *logrus.Logger) *Site {
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}
	s := New(afero.NewOsFs(), root, generatedDir, baseURL, logger)
	lockPath := filepath.Join(root, filepath.FromSlash(LockFile))
	if err := os.MkdirAll(filepath.Dir(lockPath), 0o755); err != nil {
		logger.WithError(err).Warn("无法创建锁文件目录，跨进程互斥不可用")
		return s
	}
	s.fileLock = flock.New(lockPath)
	return s
}

// WithLock 串行执行一组文件操作（发布/更新/删除/重建互斥）
// 本地磁盘上同时持有 data/.lock 文件锁
func (s *Site) WithLock(fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fileLock != nil {
		if err := s.fileLock.Lock(); err != nil {
			return fmt.Errorf("获取站点文件锁失败: %w", err)
		}
		defer func() {
			if err := s.fileLock.Unlock(); err != nil {
				s.logger.WithError(err).Warn("释放站点文件锁失败")
			}
		}()
	}
	return fn()
}

// PageURL 比赛页面的对外地址
func (s *Site) PageURL(slug string) string {
	return s.baseURL + "/" + slug + ".html"
}

func (s *Site) readFile(name string) (string, error) {
	data, err := afero.ReadFile(s.fs, name)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// writeFile 先写临时文件再改名，避免进程中断留下半截文件
func (s *Site) writeFile(name, content string) error {
	if dir := path.Dir(name); dir != "." && dir != "/" {
		if err := s.fs.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("创建目录%s失败: %w", dir, err)
		}
	}
	tmp := name + ".tmp"
	if err := afero.WriteFile(s.fs, tmp, []byte(content), 0o644); err != nil {
		return fmt.Errorf("写入%s失败: %w", tmp, err)
	}
	if err := s.fs.Rename(tmp, name); err != nil {
		_ = s.fs.Remove(tmp)
		return fmt.Errorf("替换%s失败: %w", name, err)
	}
	return nil
}

func (s *Site) exists(name string) (bool, error) {
	_, err := s.fs.Stat(name)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, err
}
