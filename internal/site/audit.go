package site

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"MatchPublisher/internal/model"

	"golang.org/x/net/html"
)

// GridLinks 解析 index.html，返回卡片网格中每张卡片链接到的 slug（按出现顺序）
func (s *Site) GridLinks() ([]string, error) {
	f, err := s.fs.Open(IndexFile)
	if err != nil {
		return nil, fmt.Errorf("打开%s失败: %w", IndexFile, err)
	}
	defer f.Close()
	return gridLinks(f)
}

func gridLinks(r io.Reader) ([]string, error) {
	z := html.NewTokenizer(r)
	var (
		links  []string
		depth  int // 进入网格后的 div 嵌套深度，0 表示不在网格内
		inCard bool
	)
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			if errors.Is(z.Err(), io.EOF) {
				return links, nil
			}
			return nil, fmt.Errorf("解析%s失败: %w", IndexFile, z.Err())
		case html.StartTagToken:
			tok := z.Token()
			switch tok.Data {
			case "div":
				if depth > 0 {
					depth++
				} else if hasClass(tok, "matches-grid") {
					depth = 1
				}
			case "article":
				if depth > 0 && hasClass(tok, "match-card") {
					inCard = true
				}
			case "a":
				if inCard && hasClass(tok, "match-link") {
					if href := attr(tok, "href"); href != "" {
						links = append(links, strings.TrimSuffix(href, ".html"))
					}
				}
			}
		case html.EndTagToken:
			tok := z.Token()
			switch tok.Data {
			case "div":
				if depth > 0 {
					depth--
				}
			case "article":
				inCard = false
			}
		}
	}
}

func attr(tok html.Token, name string) string {
	for _, a := range tok.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}

func hasClass(tok html.Token, class string) bool {
	for _, c := range strings.Fields(attr(tok, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

// Audit 对比 events.json、首页卡片与页面文件，找出漂移
func (s *Site) Audit() (*model.DriftReport, error) {
	entries, err := s.LoadCatalog()
	if err != nil {
		return nil, err
	}
	links, err := s.GridLinks()
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	report := &model.DriftReport{CatalogCount: len(entries), CardCount: len(links)}

	inCatalog := make(map[string]int, len(entries))
	for _, e := range entries {
		inCatalog[e.Slug]++
	}
	inGrid := make(map[string]bool, len(links))
	for _, l := range links {
		inGrid[l] = true
	}

	seen := make(map[string]bool, len(entries))
	for _, e := range entries {
		if seen[e.Slug] {
			continue
		}
		seen[e.Slug] = true
		if inCatalog[e.Slug] > 1 {
			report.DuplicateSlugs = append(report.DuplicateSlugs, e.Slug)
		}
		if !inGrid[e.Slug] {
			report.MissingCards = append(report.MissingCards, e.Slug)
		}
		ok, err := s.PageExists(e.Slug)
		if err != nil {
			return nil, err
		}
		if !ok {
			report.MissingPages = append(report.MissingPages, e.Slug)
		}
	}
	for l := range inGrid {
		if inCatalog[l] == 0 {
			report.OrphanCards = append(report.OrphanCards, l)
		}
	}
	sort.Strings(report.OrphanCards)
	return report, nil
}
