package model

import (
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"MatchPublisher/internal/utils/slug"
)

// 日期/时间格式（与 events.json 中保持一致）
const (
	DateLayout     = "2006-01-02"
	TimeLayout     = "15:04"
	DateTimeLayout = "2006-01-02 15:04"
	ImagePrefix    = "assets/img/"
	StatusUpcoming = "upcoming"
	StatusLive     = "live"
	StatusFinished = "finished"
	MaxStreamURLs  = 4
	EntryExcerpt   = 150
	CardExcerpt    = 120
)

// Match 对话收集到的一场比赛，页面/卡片/JSON 条目都由它渲染
type Match struct {
	Name       string    // 用户输入的原始标题，如 "Chelsea vs Manchester United"
	HomeTeam   string    `validate:"required"`
	AwayTeam   string    `validate:"required"`
	Kickoff    time.Time `validate:"required"`
	League     string    `validate:"required"`
	LeagueSlug string    `validate:"required"`
	Stadium    string    `validate:"required,min=3"`
	Preview    string    `validate:"required,min=50"`
	StreamURLs []string  `validate:"max=4,dive,streamurl"`
	ImageFile  string    `validate:"required"`
	Status     string    `validate:"omitempty,oneof=upcoming live finished"`
	EventID    string
	// SlugOverride 已发布条目的 slug 固定不变（改期不改链接）
	SlugOverride string
}

// Title 页面标题；未记录原始输入时用 "主队 vs 客队"
func (m *Match) Title() string {
	if m.Name != "" {
		return m.Name
	}
	return m.HomeTeam + " vs " + m.AwayTeam
}

func (m *Match) Date() string { return m.Kickoff.Format(DateLayout) }

func (m *Match) Time() string { return m.Kickoff.Format(TimeLayout) }

// Slug 站点内唯一标识：date-home-vs-away
func (m *Match) Slug() string {
	if m.SlugOverride != "" {
		return m.SlugOverride
	}
	return m.Date() + "-" + slug.Pair(m.HomeTeam, m.AwayTeam)
}

// PairSlug 播放页 ?match= 参数使用的 home-vs-away
func (m *Match) PairSlug() string { return slug.Pair(m.HomeTeam, m.AwayTeam) }

// FileName 根目录下的比赛页面文件名
func (m *Match) FileName() string { return m.Slug() + ".html" }

// SuggestedImage 默认海报文件名
func (m *Match) SuggestedImage() string {
	return SuggestedImage(m.HomeTeam, m.AwayTeam)
}

// SuggestedImage home-away-poster.jpg
func SuggestedImage(home, away string) string {
	return slug.Make(home) + "-" + slug.Make(away) + "-poster.jpg"
}

// ToEntry 转换为 events.json 条目
func (m *Match) ToEntry() EventEntry {
	status := m.Status
	if status == "" {
		status = StatusUpcoming
	}
	broadcast := make([]Broadcast, 0, MaxStreamURLs)
	for i, u := range m.StreamURLs {
		broadcast = append(broadcast, Broadcast{Name: streamName(i), URL: u})
	}
	// 前端脚本至少读取两路，不足用 "#" 占位
	for i := len(broadcast); i < 2; i++ {
		broadcast = append(broadcast, Broadcast{Name: streamName(i), URL: "#"})
	}
	return EventEntry{
		ID:         m.EventID,
		Date:       m.Date(),
		Time:       m.Time(),
		Slug:       m.Slug(),
		Title:      m.Title(),
		HomeTeam:   m.HomeTeam,
		AwayTeam:   m.AwayTeam,
		League:     m.League,
		LeagueSlug: m.LeagueSlug,
		Stadium:    m.Stadium,
		Poster:     ImagePrefix + m.ImageFile,
		Excerpt:    Truncate(m.Preview, EntryExcerpt),
		Preview:    m.Preview,
		Status:     status,
		Broadcast:  broadcast,
		Streams:    len(m.StreamURLs),
	}
}

// MatchFromEntry 从 events.json 条目还原 Match（用于批量重建）
func MatchFromEntry(e *EventEntry, loc *time.Location) (*Match, error) {
	if loc == nil {
		loc = time.UTC
	}
	clock := e.Time
	if clock == "" {
		clock = "00:00"
	}
	kickoff, err := time.ParseInLocation(DateTimeLayout, e.Date+" "+clock, loc)
	if err != nil {
		return nil, err
	}
	preview := e.Preview
	if preview == "" {
		preview = e.Excerpt
	}
	return &Match{
		Name:         e.Title,
		HomeTeam:     e.HomeTeam,
		AwayTeam:     e.AwayTeam,
		Kickoff:      kickoff,
		League:       e.League,
		LeagueSlug:   e.LeagueSlug,
		Stadium:      e.Stadium,
		Preview:      preview,
		StreamURLs:   e.StreamURLs(),
		ImageFile:    strings.TrimPrefix(e.Poster, ImagePrefix),
		Status:       e.Status,
		EventID:      e.ID,
		SlugOverride: e.Slug,
	}, nil
}

// Truncate 按字符截断，超出部分以 "..." 结尾
func Truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}

func streamName(i int) string {
	return "Stream " + strconv.Itoa(i+1)
}
