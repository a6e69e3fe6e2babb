package site

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"MatchPublisher/internal/model"

	jsoniter "github.com/json-iterator/go"
)

var catalogJSON = jsoniter.Config{
	EscapeHTML:             false,
	SortMapKeys:            true,
	ValidateJsonRawMessage: true,
}.Froze()

// LoadCatalog 读取 events.json；文件不存在或为空时返回空列表
func (s *Site) LoadCatalog() ([]model.EventEntry, error) {
	raw, err := s.readFile(CatalogFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []model.EventEntry{}, nil
		}
		return nil, fmt.Errorf("读取%s失败: %w", CatalogFile, err)
	}
	if strings.TrimSpace(raw) == "" {
		return []model.EventEntry{}, nil
	}
	var entries []model.EventEntry
	if err := catalogJSON.UnmarshalFromString(raw, &entries); err != nil {
		return nil, fmt.Errorf("解析%s失败: %w", CatalogFile, err)
	}
	if entries == nil {
		entries = []model.EventEntry{}
	}
	return entries, nil
}

// SaveCatalog 两空格缩进写回 events.json
func (s *Site) SaveCatalog(entries []model.EventEntry) error {
	if entries == nil {
		entries = []model.EventEntry{}
	}
	data, err := catalogJSON.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("序列化%s失败: %w", CatalogFile, err)
	}
	return s.writeFile(CatalogFile, string(data)+"\n")
}

// PrependEntry 新比赛放在数组最前面；不做去重
func (s *Site) PrependEntry(e model.EventEntry) error {
	entries, err := s.LoadCatalog()
	if err != nil {
		return err
	}
	entries = append([]model.EventEntry{e}, entries...)
	return s.SaveCatalog(entries)
}

// FindEntry 按 slug 查找第一条记录
func (s *Site) FindEntry(slug string) (*model.EventEntry, error) {
	entries, err := s.LoadCatalog()
	if err != nil {
		return nil, err
	}
	for i := range entries {
		if entries[i].Slug == slug {
			return &entries[i], nil
		}
	}
	return nil, fmt.Errorf("%s: %w", slug, ErrNotFound)
}

// UpdateEntry 原地修改第一条匹配 slug 的记录，返回修改后的值
func (s *Site) UpdateEntry(slug string, mutate func(e *model.EventEntry) error) (*model.EventEntry, error) {
	entries, err := s.LoadCatalog()
	if err != nil {
		return nil, err
	}
	for i := range entries {
		if entries[i].Slug != slug {
			continue
		}
		if err := mutate(&entries[i]); err != nil {
			return nil, err
		}
		if err := s.SaveCatalog(entries); err != nil {
			return nil, err
		}
		updated := entries[i]
		return &updated, nil
	}
	return nil, fmt.Errorf("%s: %w", slug, ErrNotFound)
}

// RemoveEntries 删除所有匹配 slug 的记录（重复录入的也一并删除），返回删除条数
func (s *Site) RemoveEntries(slug string) (int, error) {
	entries, err := s.LoadCatalog()
	if err != nil {
		return 0, err
	}
	kept := entries[:0]
	for _, e := range entries {
		if e.Slug != slug {
			kept = append(kept, e)
		}
	}
	removed := len(entries) - len(kept)
	if removed == 0 {
		return 0, nil
	}
	return removed, s.SaveCatalog(kept)
}
