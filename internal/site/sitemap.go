package site

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
)

const (
	urlsetClose       = "</urlset>"
	sitemapChangefreq = "daily"
	sitemapPriority   = "0.8"
)

// AddSitemapURL 在 </urlset> 前追加比赛页面；已存在时不做修改
// sitemap.xml 不存在时返回 os.ErrNotExist
func (s *Site) AddSitemapURL(slug, lastmod string) (bool, error) {
	content, err := s.readFile(SitemapFile)
	if err != nil {
		return false, fmt.Errorf("读取%s失败: %w", SitemapFile, err)
	}
	updated, added, err := addSitemapURL(content, s.PageURL(slug), lastmod)
	if err != nil || !added {
		return false, err
	}
	return true, s.writeFile(SitemapFile, updated)
}

// RemoveSitemapURL 删除比赛页面对应的 <url>；sitemap 不存在视为无需删除
func (s *Site) RemoveSitemapURL(slug string) (bool, error) {
	content, err := s.readFile(SitemapFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("读取%s失败: %w", SitemapFile, err)
	}
	updated, removed := removeSitemapURL(content, s.PageURL(slug))
	if !removed {
		return false, nil
	}
	return true, s.writeFile(SitemapFile, updated)
}

func sitemapLoc(loc string) string {
	return "<loc>" + loc + "</loc>"
}

func addSitemapURL(content, loc, lastmod string) (string, bool, error) {
	if strings.Contains(content, sitemapLoc(loc)) {
		return content, false, nil
	}
	at := strings.LastIndex(content, urlsetClose)
	if at < 0 {
		return content, false, fmt.Errorf("%s 缺少 %s: %w", SitemapFile, urlsetClose, ErrAnchorNotFound)
	}
	entry := "  <url>\n" +
		"    " + sitemapLoc(loc) + "\n" +
		"    <lastmod>" + lastmod + "</lastmod>\n" +
		"    <changefreq>" + sitemapChangefreq + "</changefreq>\n" +
		"    <priority>" + sitemapPriority + "</priority>\n" +
		"  </url>\n"
	return content[:at] + entry + content[at:], true, nil
}

func removeSitemapURL(content, loc string) (string, bool) {
	re := regexp.MustCompile(`(?s)[ \t]*<url>\s*` + regexp.QuoteMeta(sitemapLoc(loc)) + `.*?</url>[ \t]*\n?`)
	if !re.MatchString(content) {
		return content, false
	}
	return re.ReplaceAllString(content, ""), true
}
