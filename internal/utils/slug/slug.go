package slug

import (
	"strings"
	"unicode"
)

// Make 将任意文本转换为 URL 友好的 slug
// 规则：转小写 → 去掉字母/数字/下划线/空白/连字符以外的字符 → 空白与连字符连续段合并为单个 "-" → 去掉首尾 "-"
func Make(text string) string {
	var b strings.Builder
	b.Grow(len(text))

	pendingDash := false
	for _, r := range strings.ToLower(text) {
		switch {
		case unicode.IsSpace(r) || r == '-':
			pendingDash = true
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_':
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
		default:
			// 标点等字符直接丢弃，不打断连字符合并
		}
	}
	return b.String()
}

// Pair 主客队组合 slug：home-vs-away
func Pair(home, away string) string {
	return Make(home) + "-vs-" + Make(away)
}
