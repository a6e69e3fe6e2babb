package site

import (
	"errors"
	"fmt"
	"os"
	"path"
	"strings"
	"unicode"
)

// PageFile 比赛页面位于站点根目录
func PageFile(slug string) string {
	return slug + ".html"
}

// WritePage 写入（或覆盖）比赛页面
func (s *Site) WritePage(slug, html string) error {
	return s.writeFile(PageFile(slug), html)
}

// RemovePage 删除比赛页面；不存在时返回 false
func (s *Site) RemovePage(slug string) (bool, error) {
	err := s.fs.Remove(PageFile(slug))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("删除%s失败: %w", PageFile(slug), err)
}

// PageExists 比赛页面是否存在
func (s *Site) PageExists(slug string) (bool, error) {
	return s.exists(PageFile(slug))
}

// SaveGenerated 在 generated/ 下保留一份生成物副本，便于人工核对
func (s *Site) SaveGenerated(slug, page, entryJSON, card string) error {
	if s.generatedDir == "" {
		return nil
	}
	files := map[string]string{
		path.Join(s.generatedDir, "html_files", slug+".html"):   page,
		path.Join(s.generatedDir, "json_entries", slug+".json"): entryJSON,
		path.Join(s.generatedDir, "cards", slug+"-card.html"):   card,
	}
	for name, content := range files {
		if err := s.writeFile(name, content); err != nil {
			return err
		}
	}
	return nil
}

// ValidSlug slug 只允许字母、数字、下划线和连字符，防止路径穿越
func ValidSlug(slug string) bool {
	if slug == "" || strings.HasPrefix(slug, "-") {
		return false
	}
	for _, r := range slug {
		if !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '-') {
			return false
		}
	}
	return true
}
