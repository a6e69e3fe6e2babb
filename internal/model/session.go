package model

import "time"

// Flow 会话所处的业务流程
type Flow string

const (
	FlowAdd    Flow = "add"
	FlowUpdate Flow = "update"
	FlowDelete Flow = "delete"
)

// Step 线性向导的当前步骤
type Step string

const (
	StepMatchName     Step = "match_name"
	StepDateTime      Step = "date_time"
	StepLeague        Step = "league"
	StepStadium       Step = "stadium"
	StepPreview       Step = "preview"
	StepStreamURLs    Step = "stream_urls"
	StepImageName     Step = "image_name"
	StepConfirm       Step = "confirm"
	StepPickMatch     Step = "pick_match"
	StepPickField     Step = "pick_field"
	StepFieldValue    Step = "field_value"
	StepDeleteConfirm Step = "delete_confirm"
)

// UpdateField 更新流程可修改的字段
type UpdateField string

const (
	FieldStreams  UpdateField = "streams"
	FieldPreview  UpdateField = "preview"
	FieldStadium  UpdateField = "stadium"
	FieldDateTime UpdateField = "datetime"
	FieldImage    UpdateField = "image"
	FieldStatus   UpdateField = "status"
)

// UpdateFields 按键盘展示顺序
var UpdateFields = []UpdateField{FieldStreams, FieldPreview, FieldStadium, FieldDateTime, FieldImage, FieldStatus}

// Draft 添加流程逐步收集的字段
type Draft struct {
	MatchName      string   `json:"match_name,omitempty"`
	HomeTeam       string   `json:"home_team,omitempty"`
	AwayTeam       string   `json:"away_team,omitempty"`
	Kickoff        string   `json:"kickoff,omitempty"` // YYYY-MM-DD HH:MM
	League         string   `json:"league,omitempty"`
	LeagueSlug     string   `json:"league_slug,omitempty"`
	LeagueEmoji    string   `json:"league_emoji,omitempty"`
	Stadium        string   `json:"stadium,omitempty"`
	Preview        string   `json:"preview,omitempty"`
	StreamURLs     []string `json:"stream_urls,omitempty"`
	SuggestedImage string   `json:"suggested_image,omitempty"`
	ImageFile      string   `json:"image_file,omitempty"`
}

// Session 单个聊天的临时状态
type Session struct {
	ChatID    int64       `json:"chat_id"`
	Flow      Flow        `json:"flow"`
	Step      Step        `json:"step"`
	Draft     Draft       `json:"draft"`
	Target    string      `json:"target,omitempty"` // 更新/删除的目标 slug
	Field     UpdateField `json:"field,omitempty"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// Expired 超过 ttl 未操作的会话视为失效；ttl<=0 表示永不过期
func (s *Session) Expired(now time.Time, ttl time.Duration) bool {
	return ttl > 0 && now.Sub(s.UpdatedAt) > ttl
}
