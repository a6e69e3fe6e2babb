package model

// EventEntry data/events.json 数组中的一条记录（字段名与前端脚本约定一致）
type EventEntry struct {
	ID         string      `json:"id"`
	Date       string      `json:"date"`
	Time       string      `json:"time"`
	Slug       string      `json:"slug"`
	Title      string      `json:"title"`
	HomeTeam   string      `json:"homeTeam"`
	AwayTeam   string      `json:"awayTeam"`
	League     string      `json:"league"`
	LeagueSlug string      `json:"leagueSlug"`
	Stadium    string      `json:"stadium"`
	Poster     string      `json:"poster"`
	Excerpt    string      `json:"excerpt"`
	Preview    string      `json:"preview,omitempty"` // 完整简介，重建页面时优先使用
	Status     string      `json:"status"`
	Broadcast  []Broadcast `json:"broadcast"`
	Streams    int         `json:"streams"`
}

// Broadcast 单路直播源
type Broadcast struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// StreamURLs 真实可用的直播地址（跳过 "#" 占位）
func (e *EventEntry) StreamURLs() []string {
	var urls []string
	for _, b := range e.Broadcast {
		if b.URL == "" || b.URL == "#" {
			continue
		}
		urls = append(urls, b.URL)
		if len(urls) == MaxStreamURLs {
			break
		}
	}
	return urls
}

// EntryPatch 更新流程对已发布条目的局部修改，nil 字段保持不变
type EntryPatch struct {
	StreamURLs *[]string `json:"stream_urls,omitempty" binding:"omitempty,max=4,dive,streamurl"`
	Preview    *string   `json:"preview,omitempty" binding:"omitempty,min=50"`
	Stadium    *string   `json:"stadium,omitempty" binding:"omitempty,min=3"`
	Kickoff    *string   `json:"kickoff,omitempty"` // YYYY-MM-DD HH:MM
	ImageFile  *string   `json:"image_file,omitempty"`
	Status     *string   `json:"status,omitempty" binding:"omitempty,oneof=upcoming live finished"`
}

// Empty 是否没有任何修改
func (p *EntryPatch) Empty() bool {
	return p.StreamURLs == nil && p.Preview == nil && p.Stadium == nil &&
		p.Kickoff == nil && p.ImageFile == nil && p.Status == nil
}

// PublishResult 发布流程的产物
type PublishResult struct {
	Entry     EventEntry `json:"entry"`
	URL       string     `json:"url"`
	Page      string     `json:"-"`
	Card      string     `json:"-"`
	EntryJSON string     `json:"-"`
	Warnings  []string   `json:"warnings,omitempty"`
}

// DeleteResult 删除流程对各文件的影响
type DeleteResult struct {
	Slug           string   `json:"slug"`
	PageRemoved    bool     `json:"page_removed"`
	EntriesRemoved int      `json:"entries_removed"`
	CardsRemoved   int      `json:"cards_removed"`
	SitemapRemoved bool     `json:"sitemap_removed"`
	Warnings       []string `json:"warnings,omitempty"`
}

// Nothing 没有找到任何相关内容
func (r *DeleteResult) Nothing() bool {
	return !r.PageRemoved && r.EntriesRemoved == 0 && r.CardsRemoved == 0 && !r.SitemapRemoved
}

// DriftReport index.html / 页面文件与 events.json 的差异
type DriftReport struct {
	CatalogCount   int      `json:"catalog_count"`
	CardCount      int      `json:"card_count"`
	MissingCards   []string `json:"missing_cards,omitempty"`   // 目录中有、首页没有
	OrphanCards    []string `json:"orphan_cards,omitempty"`    // 首页有、目录中没有
	MissingPages   []string `json:"missing_pages,omitempty"`   // 目录中有、页面文件不存在
	DuplicateSlugs []string `json:"duplicate_slugs,omitempty"` // 目录中重复的 slug
}

// Clean 没有任何漂移
func (r *DriftReport) Clean() bool {
	return len(r.MissingCards) == 0 && len(r.OrphanCards) == 0 &&
		len(r.MissingPages) == 0 && len(r.DuplicateSlugs) == 0
}
