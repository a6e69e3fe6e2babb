package bot

import (
	"errors"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"MatchPublisher/internal/model"
)

var (
	errNoVs          = errors.New("match name must contain ' vs '")
	errTeams         = errors.New("exactly two teams required")
	errDateFormat    = errors.New("date must be YYYY-MM-DD HH:MM")
	errStadiumShort  = errors.New("stadium name too short")
	errPreviewShort  = errors.New("preview too short")
	errUnknownLeague = errors.New("unknown league")
	errUnknownStatus = errors.New("unknown status")
)

const (
	minStadium = 3
	minPreview = 50
)

var (
	vsSplit       = regexp.MustCompile(`(?i)\s+vs\s+`)
	imageExts     = []string{".jpg", ".jpeg", ".png", ".webp"}
	acceptWords   = map[string]bool{"ok": true, "yes": true, "confirm": true, "-": true}
	skipWord      = "skip"
	statusChoices = []string{model.StatusUpcoming, model.StatusLive, model.StatusFinished}
)

// ParseMatchName "Home vs Away" 拆成主客队
func ParseMatchName(text string) (home, away string, err error) {
	text = strings.TrimSpace(text)
	if !strings.Contains(strings.ToLower(text), " vs ") {
		return "", "", errNoVs
	}
	teams := vsSplit.Split(text, -1)
	if len(teams) != 2 {
		return "", "", errTeams
	}
	home, away = strings.TrimSpace(teams[0]), strings.TrimSpace(teams[1])
	if home == "" || away == "" {
		return "", "", errTeams
	}
	return home, away, nil
}

// ParseKickoff YYYY-MM-DD HH:MM，按站点时区解析
func ParseKickoff(text string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(model.DateTimeLayout, strings.TrimSpace(text), loc)
	if err != nil {
		return time.Time{}, errDateFormat
	}
	return t, nil
}

func ValidateStadium(text string) (string, error) {
	text = strings.TrimSpace(text)
	if utf8.RuneCountInString(text) < minStadium {
		return "", errStadiumShort
	}
	return text, nil
}

func ValidatePreview(text string) (string, error) {
	text = strings.TrimSpace(text)
	if utf8.RuneCountInString(text) < minPreview {
		return "", errPreviewShort
	}
	return text, nil
}

// ParseStreamURLs 每行一个地址；"skip" 表示暂不提供
// invalid 非空时调用方应要求重新输入；truncated 表示超过上限只保留了前几个
func ParseStreamURLs(text string) (urls, invalid []string, truncated bool) {
	text = strings.TrimSpace(text)
	if strings.EqualFold(text, skipWord) {
		return []string{}, nil, false
	}
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if !model.ValidStreamURL(line) {
			invalid = append(invalid, line)
			continue
		}
		urls = append(urls, line)
	}
	if len(invalid) > 0 {
		return nil, invalid, false
	}
	if len(urls) > model.MaxStreamURLs {
		return urls[:model.MaxStreamURLs], nil, true
	}
	if urls == nil {
		urls = []string{}
	}
	return urls, nil, false
}

// ResolveImageName 空输入或确认词使用建议名；没有图片扩展名时补 .jpg
func ResolveImageName(text, suggested string) string {
	text = strings.TrimSpace(text)
	if text == "" || acceptWords[strings.ToLower(text)] {
		return suggested
	}
	text = strings.TrimPrefix(text, model.ImagePrefix)
	lower := strings.ToLower(text)
	for _, ext := range imageExts {
		if strings.HasSuffix(lower, ext) {
			return text
		}
	}
	return text + ".jpg"
}

// ParseStatus upcoming/live/finished（忽略大小写）
func ParseStatus(text string) (string, error) {
	text = strings.ToLower(strings.TrimSpace(text))
	for _, s := range statusChoices {
		if text == s {
			return s, nil
		}
	}
	return "", errUnknownStatus
}
