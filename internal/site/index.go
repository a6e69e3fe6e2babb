package site

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	gridAnchor       = `<div class="matches-grid"`
	paginationAnchor = `<!-- Pagination`
	gridClose        = "\n                </div>"
)

// cardBlock 一张完整卡片（含可选的 <!-- Match Card --> 注释、前导缩进与行尾换行）
var cardBlock = regexp.MustCompile(`(?s)[ \t]*(?:<!-- Match Card -->\s*)?<article class="glass-card match-card">.*?</article>[ \t]*\n?`)

func cardHref(slug string) string {
	return `href="` + slug + `.html"`
}

// InsertCard 把卡片插到首页卡片网格最前面；同一 slug 的卡片已存在时原地替换
// 返回 replaced=true 表示替换了旧卡片
func (s *Site) InsertCard(slug, card string) (replaced bool, err error) {
	content, err := s.readFile(IndexFile)
	if err != nil {
		return false, fmt.Errorf("读取%s失败: %w", IndexFile, err)
	}
	updated, replaced, err := insertCard(content, slug, card)
	if err != nil {
		return false, err
	}
	return replaced, s.writeFile(IndexFile, updated)
}

// RemoveCards 删除所有链接到 slug 页面的卡片，返回删除数量
func (s *Site) RemoveCards(slug string) (int, error) {
	content, err := s.readFile(IndexFile)
	if err != nil {
		return 0, fmt.Errorf("读取%s失败: %w", IndexFile, err)
	}
	updated, n := removeCards(content, slug)
	if n == 0 {
		return 0, nil
	}
	return n, s.writeFile(IndexFile, updated)
}

// ReplaceGrid 用给定卡片整体替换卡片网格内容（批量重建）
func (s *Site) ReplaceGrid(cards []string) error {
	content, err := s.readFile(IndexFile)
	if err != nil {
		return fmt.Errorf("读取%s失败: %w", IndexFile, err)
	}
	updated, err := replaceGrid(content, cards)
	if err != nil {
		return err
	}
	return s.writeFile(IndexFile, updated)
}

func insertCard(content, slug, card string) (string, bool, error) {
	// 已有卡片：替换第一张，删除其余重复
	href := cardHref(slug)
	locs := cardBlock.FindAllStringIndex(content, -1)
	for _, loc := range locs {
		block := content[loc[0]:loc[1]]
		if !strings.Contains(block, href) {
			continue
		}
		tail := ""
		if strings.HasSuffix(block, "\n") {
			tail = "\n"
		}
		rest, _ := removeCards(content[loc[1]:], slug)
		return content[:loc[0]] + card + tail + rest, true, nil
	}

	start := strings.Index(content, gridAnchor)
	if start < 0 {
		return content, false, fmt.Errorf("%s 缺少 %s: %w", IndexFile, gridAnchor, ErrAnchorNotFound)
	}
	end := strings.Index(content[start:], ">")
	if end < 0 {
		return content, false, fmt.Errorf("%s 卡片网格标签未闭合: %w", IndexFile, ErrAnchorNotFound)
	}
	at := start + end + 1
	return content[:at] + "\n" + card + content[at:], false, nil
}

func removeCards(content, slug string) (string, int) {
	href := cardHref(slug)
	removed := 0
	out := cardBlock.ReplaceAllStringFunc(content, func(block string) string {
		if strings.Contains(block, href) {
			removed++
			return ""
		}
		return block
	})
	return out, removed
}

func replaceGrid(content string, cards []string) (string, error) {
	start := strings.Index(content, gridAnchor)
	if start < 0 {
		return content, fmt.Errorf("%s 缺少 %s: %w", IndexFile, gridAnchor, ErrAnchorNotFound)
	}
	pagination := strings.Index(content[start:], paginationAnchor)
	if pagination < 0 {
		return content, fmt.Errorf("%s 缺少 %s: %w", IndexFile, paginationAnchor, ErrAnchorNotFound)
	}
	pagination += start
	closing := strings.LastIndex(content[start:pagination], "</div>")
	if closing < 0 {
		return content, fmt.Errorf("%s 卡片网格缺少 </div>: %w", IndexFile, ErrAnchorNotFound)
	}
	closing += start
	openEnd := strings.Index(content[start:], ">") + start

	var b strings.Builder
	b.WriteString(content[:openEnd+1])
	b.WriteString("\n")
	b.WriteString(strings.Join(cards, "\n"))
	b.WriteString(gridClose)
	b.WriteString(content[closing+len("</div>"):])
	return b.String(), nil
}
