package render

import (
	_ "embed"
	"errors"
	"fmt"
	"html"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"MatchPublisher/internal/model"

	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

// 自定义模板文件名（位于 site.templates_dir 下）
const (
	EventTemplateFile = "event_template.html"
	CardTemplateFile  = "card_template.html"
	NoStreamsHTML     = "<p>Stream links will be added soon.</p>"
	defaultEmoji      = "⚽"
)

//go:embed templates/event_template.html
var defaultEventTemplate string

//go:embed templates/card_template.html
var defaultCardTemplate string

// entryJSON 与 Python json.dumps(indent=2) 输出风格一致，不转义 HTML 字符
var entryJSON = jsoniter.Config{
	EscapeHTML:             false,
	SortMapKeys:            true,
	ValidateJsonRawMessage: true,
}.Froze()

// Renderer 把比赛数据代入固定模板，纯字符串替换，结果只取决于输入
type Renderer struct {
	eventTpl string
	cardTpl  string
	baseURL  string
}

// New 使用内置模板
func New(baseURL string) *Renderer {
	return &Renderer{
		eventTpl: defaultEventTemplate,
		cardTpl:  defaultCardTemplate,
		baseURL:  strings.TrimRight(baseURL, "/"),
	}
}

// Load 优先使用 dir 下的自定义模板，不存在的用内置模板
func Load(fs afero.Fs, dir, baseURL string, logger *logrus.Logger) (*Renderer, error) {
	r := New(baseURL)
	if dir == "" {
		return r, nil
	}
	for name, dst := range map[string]*string{
		EventTemplateFile: &r.eventTpl,
		CardTemplateFile:  &r.cardTpl,
	} {
		path := filepath.Join(dir, name)
		data, err := afero.ReadFile(fs, path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("读取模板%s失败: %w", path, err)
		}
		*dst = strings.TrimRight(string(data), "\n")
		logger.WithField("template", path).Info("使用自定义模板")
	}
	return r, nil
}

// scriptJSON JSON-LD 块中的字符串值：< > & 转为 \u 形式，不能用 HTML 实体
var scriptJSON = jsoniter.ConfigCompatibleWithStandardLibrary

func jsonString(s string) string {
	data, err := scriptJSON.Marshal(s)
	if err != nil {
		return ""
	}
	return string(data[1 : len(data)-1])
}

// queryEscape 分享链接 text 参数：除字母数字与 -_.~/ 外全部百分号编码，空格为 %20
func queryEscape(s string) string {
	return strings.NewReplacer("+", "%20", "%2F", "/").Replace(url.QueryEscape(s))
}

// Page 完整比赛页面
func (r *Renderer) Page(m *model.Match) string {
	urls := playerURLs(m.StreamURLs)
	esc := html.EscapeString
	return strings.NewReplacer(
		"{{MATCH_NAME}}", esc(m.Title()),
		"{{HOME_TEAM}}", esc(m.HomeTeam),
		"{{AWAY_TEAM}}", esc(m.AwayTeam),
		"{{HOME_EMOJI}}", defaultEmoji,
		"{{AWAY_EMOJI}}", defaultEmoji,
		"{{DATE}}", m.Kickoff.Format("January 02, 2006"),
		"{{DATE_SHORT}}", m.Kickoff.Format("Jan 02, 2006"),
		"{{ISO_DATE}}", m.Kickoff.Format("2006-01-02T15:04:05Z"),
		"{{TIME}}", m.Time(),
		"{{LEAGUE}}", esc(m.League),
		"{{LEAGUE_SLUG}}", esc(m.LeagueSlug),
		"{{STADIUM}}", esc(m.Stadium),
		"{{PREVIEW}}", esc(m.Preview),
		"{{IMAGE_FILE}}", esc(m.ImageFile),
		"{{STREAM_LINKS}}", StreamLinks(m.StreamURLs),
		"{{STREAM_URL_1}}", urls[0],
		"{{STREAM_URL_2}}", urls[1],
		"{{STREAM_URL_3}}", urls[2],
		"{{STREAM_URL_4}}", urls[3],
		"{{FILE_NAME}}", m.FileName(),
		"{{SLUG}}", m.PairSlug(),
		"{{MATCH_NAME_ENCODED}}", queryEscape(m.Title()),
		"{{MATCH_NAME_JSON}}", jsonString(m.Title()),
		"{{HOME_TEAM_JSON}}", jsonString(m.HomeTeam),
		"{{AWAY_TEAM_JSON}}", jsonString(m.AwayTeam),
		"{{STADIUM_JSON}}", jsonString(m.Stadium),
		"{{BASE_URL}}", r.baseURL,
	).Replace(r.eventTpl)
}

// Card 首页卡片片段
func (r *Renderer) Card(m *model.Match) string {
	esc := html.EscapeString
	return strings.NewReplacer(
		"{{MATCH_NAME}}", esc(m.Title()),
		"{{IMAGE_FILE}}", esc(m.ImageFile),
		"{{LEAGUE}}", esc(m.League),
		"{{LEAGUE_SLUG}}", esc(m.LeagueSlug),
		"{{DATE_SHORT}}", m.Kickoff.Format("Jan 02, 2006"),
		"{{TIME}}", m.Time(),
		"{{STADIUM}}", esc(m.Stadium),
		"{{EXCERPT}}", esc(model.Truncate(m.Preview, model.CardExcerpt)),
		"{{FILE_NAME}}", m.FileName(),
	).Replace(r.cardTpl)
}

// EntryJSON events.json 条目（两空格缩进）
func (r *Renderer) EntryJSON(e model.EventEntry) (string, error) {
	data, err := entryJSON.MarshalIndent(e, "", "  ")
	if err != nil {
		return "", fmt.Errorf("序列化条目失败: %w", err)
	}
	return string(data), nil
}

// PlayerURL 第 n 路（从 1 开始）播放页地址；无效地址或 Telegram 频道链接返回 "#"
func PlayerURL(n int, raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "#" || strings.HasPrefix(raw, "https://t.me/") {
		return "#"
	}
	return "p/" + strconv.Itoa(n) + "-live.html?url=" + url.QueryEscape(raw)
}

func playerURLs(raw []string) [model.MaxStreamURLs]string {
	var out [model.MaxStreamURLs]string
	for i := range out {
		u := ""
		if i < len(raw) {
			u = raw[i]
		}
		out[i] = PlayerURL(i+1, u)
	}
	return out
}

// StreamLinks "Stream Option N" 列表片段
func StreamLinks(urls []string) string {
	if len(urls) == 0 {
		return NoStreamsHTML
	}
	parts := make([]string, 0, len(urls))
	for i := range urls {
		n := strconv.Itoa(i + 1)
		parts = append(parts, `
                    <div class="stream-option">
                        <div class="stream-info">
                            <h4>🎥 Stream Option `+n+`</h4>
                            <p>HD Quality • Multiple Languages</p>
                        </div>
                        <a href="p/`+n+`-live.html" class="btn btn-primary">
                            Watch Stream `+n+`
                        </a>
                    </div>`)
	}
	return strings.Join(parts, "\n")
}
