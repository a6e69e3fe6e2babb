package model

import "strings"

// League 联赛展示信息（仅用于标签/slug 替换，运行期不修改）
type League struct {
	Name  string
	Emoji string
	Slug  string
	Color string
}

// LeagueOthers 未知联赛的兜底
const LeagueOthers = "Others"

var leagues = []League{
	{Name: "Premier League", Emoji: "⚽", Slug: "premier-league", Color: "#37003C"},
	{Name: "La Liga", Emoji: "⚽", Slug: "laliga", Color: "#FF6B00"},
	{Name: "Serie A", Emoji: "⚽", Slug: "serie-a", Color: "#024494"},
	{Name: "Bundesliga", Emoji: "⚽", Slug: "bundesliga", Color: "#D3010C"},
	{Name: "Ligue 1", Emoji: "⚽", Slug: "ligue-1", Color: "#002395"},
	{Name: "Champions League", Emoji: "🏆", Slug: "champions-league", Color: "#00285E"},
	{Name: LeagueOthers, Emoji: "⚽", Slug: "others", Color: "#8B5CF6"},
}

// Leagues 按键盘展示顺序返回全部联赛
func Leagues() []League {
	out := make([]League, len(leagues))
	copy(out, leagues)
	return out
}

// FindLeague 按名称查找（忽略大小写与首尾空白）
func FindLeague(name string) (League, bool) {
	name = strings.TrimSpace(name)
	for _, l := range leagues {
		if strings.EqualFold(l.Name, name) {
			return l, true
		}
	}
	return League{}, false
}

// LookupLeague 查找联赛，未知名称归入 Others
func LookupLeague(name string) League {
	if l, ok := FindLeague(name); ok {
		return l
	}
	l, _ := FindLeague(LeagueOthers)
	return l
}
