package bot

import (
	"fmt"
	"strconv"
	"strings"

	"MatchPublisher/internal/model"
)

// Telegram 单条消息上限 4096 字符，代码块外壳需要预留余量
const (
	firstChunk = 3800
	nextChunk  = 3900
	// callback_data 上限 64 字节
	maxCallbackData = 64
)

// 回调数据前缀
const (
	cbLeague        = "league_"
	cbPick          = "pick_"
	cbField         = "field_"
	cbValue         = "value_"
	cbConfirmPub    = "confirm_publish"
	cbConfirmCancel = "confirm_cancel"
	cbDeleteConfirm = "delete_confirm"
	cbDeleteCancel  = "delete_cancel"
)

const msgHelp = `🤖 *Foot Holics Match Manager*

/add - add a new match (also /start)
/update - change a published match
/delete - remove a published match
/list - latest published matches
/regenerate - rebuild homepage cards and match pages from events.json
/check - compare events.json with index.html and the page files
/cancel - stop the current operation
/help - this message`

const (
	msgNoSession     = "No operation in progress. Type /add to add a match or /help for all commands."
	msgCancelled     = "❌ Operation cancelled. Type /add to begin again."
	msgUnauthorized  = "⛔ You are not allowed to use this bot."
	msgBadName       = "❌ Invalid format! Match name must contain ' vs '\n\nExample: `Chelsea vs Manchester United`"
	msgBadTeams      = "❌ Please provide exactly two teams separated by 'vs'"
	msgBadDate       = "❌ Invalid format! Use: `YYYY-MM-DD HH:MM`\n\nExample: `2025-11-05 20:00`"
	msgPastDate      = "⚠️ Warning: this date is in the past. Send /cancel to stop or keep going."
	msgBadLeague     = "❌ Unknown league. Please pick one of the buttons."
	msgShortStadium  = "❌ Stadium name too short. Please try again."
	msgShortPreview  = "⚠️ Preview seems too short. Please provide a more detailed description (at least 50 characters)."
	msgTooManyURLs   = "⚠️ Maximum 4 URLs allowed. I'll use the first 4 URLs."
	msgBadStatus     = "❌ Status must be one of: upcoming, live, finished."
	msgNoMatches     = "No matches published yet. Type /add to add one."
	msgMatchNotFound = "❌ Match not found. Pick one of the buttons or send a slug from /list."
	msgMatchGone     = "❌ That match no longer exists. See /list."
	msgUnknownField  = "❌ Unknown field. Please pick one of the buttons."
	msgConfirmAgain  = "Please press *Publish* or *Cancel*."
	msgGenerating    = "⏳ Publishing match... Please wait."
	msgUnknownInput  = "I didn't understand that. Please use the buttons or send /cancel."
)

// mdEscaper 转义 Markdown（legacy）实体之外的特殊字符
var mdEscaper = strings.NewReplacer(`_`, `\_`, `*`, `\*`, "`", "\\`", `[`, `\[`)

func escapeMarkdown(s string) string { return mdEscaper.Replace(s) }

func welcome(firstName string) string {
	name := escapeMarkdown(firstName)
	if name == "" {
		name = "there"
	}
	return "🤖 *Welcome to Foot Holics Match Manager!*\n\n" +
		"Hi " + name + "! I'll help you add a new match to your website.\n\n" +
		"📝 *Step 1/7:* Please send the match name in this format:\n" +
		"`Home Team vs Away Team`\n\n" +
		"Example: `Chelsea vs Manchester United`\n\n" +
		"_Type /cancel anytime to stop_"
}

func promptDate(matchName string) string {
	return "✅ Match: " + escapeMarkdown(matchName) + "\n\n" +
		"📅 *Step 2/7:* Please send the date and time:\n" +
		"`YYYY-MM-DD HH:MM`\n\n" +
		"Example: `2025-11-05 20:00`"
}

func promptLeague(kickoff string) string {
	return "✅ Date & Time: " + escapeMarkdown(kickoff) + "\n\n🏆 *Step 3/7:* Select the league:"
}

func promptStadium(l model.League) string {
	return "✅ League: " + escapeMarkdown(l.Name) + " " + l.Emoji + "\n\n" +
		"🏟️ *Step 4/7:* Please send the stadium name:\n\n" +
		"Example: `Old Trafford` or `Santiago Bernabéu`"
}

func promptPreview(stadium string) string {
	return "✅ Stadium: " + escapeMarkdown(stadium) + "\n\n" +
		"📰 *Step 5/7:* Please send a match preview (1-2 paragraphs):\n\n" +
		"This will be displayed on the match page. Include key details about the match, " +
		"team form, key players, or rivalry context."
}

const promptStreams = "🎥 *Step 6/7:* Please send stream URLs (one per line):\n\n" +
	"You can send 1-4 URLs. Each URL should be on a separate line.\n\n" +
	"Example:\n" +
	"`https://example.com/stream1\n" +
	"https://example.com/stream2`\n\n" +
	"Send `skip` if you want to add URLs later."

func promptImage(count int, suggested string) string {
	return "✅ " + strconv.Itoa(count) + " stream URL(s) saved!\n\n" +
		"🖼️ *Step 7/7:* Image file name:\n\n" +
		"Suggested: `" + suggested + "`\n\n" +
		"Send `ok` to accept or type a custom name.\n" +
		"(Just the filename, it will be served from `" + model.ImagePrefix + "`)"
}

func invalidURLs(invalid []string) string {
	return "❌ Invalid URL(s) detected:\n" + escapeMarkdown(strings.Join(invalid, "\n")) +
		"\n\nPlease send valid URLs starting with http:// or https://"
}

func summary(d *model.Draft) string {
	var b strings.Builder
	b.WriteString("📋 *Please confirm:*\n\n")
	fmt.Fprintf(&b, "⚽ %s\n", escapeMarkdown(d.MatchName))
	fmt.Fprintf(&b, "📅 %s\n", escapeMarkdown(d.Kickoff))
	fmt.Fprintf(&b, "🏆 %s %s\n", escapeMarkdown(d.League), d.LeagueEmoji)
	fmt.Fprintf(&b, "🏟️ %s\n", escapeMarkdown(d.Stadium))
	fmt.Fprintf(&b, "🎥 %d stream URL(s)\n", len(d.StreamURLs))
	fmt.Fprintf(&b, "🖼️ %s\n\n", escapeMarkdown(d.ImageFile))
	b.WriteString("📰 " + escapeMarkdown(model.Truncate(d.Preview, model.CardExcerpt)))
	return b.String()
}

func published(res *model.PublishResult) string {
	var b strings.Builder
	b.WriteString("🎉 *MATCH PUBLISHED SUCCESSFULLY!*\n\n")
	b.WriteString("🔗 " + escapeMarkdown(res.URL) + "\n")
	b.WriteString("🖼️ Upload the poster to `" + res.Entry.Poster + "` (recommended 1200x630px).\n")
	b.WriteString(warnings(res.Warnings))
	return b.String()
}

func warnings(ws []string) string {
	if len(ws) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("\n⚠️ *Warnings:*\n")
	for _, w := range ws {
		b.WriteString("• " + escapeMarkdown(w) + "\n")
	}
	return b.String()
}

func entryLine(e *model.EventEntry) string {
	return fmt.Sprintf("• `%s` %s (%s)", e.Slug, escapeMarkdown(e.Title), e.Status)
}

func listing(entries []model.EventEntry) string {
	var b strings.Builder
	b.WriteString("📋 *Latest matches:*\n\n")
	for i := range entries {
		b.WriteString(entryLine(&entries[i]) + "\n")
	}
	return b.String()
}

func entryDetails(e *model.EventEntry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "⚽ `%s`\n%s\n", e.Slug, escapeMarkdown(e.Title))
	fmt.Fprintf(&b, "📅 %s %s\n", e.Date, e.Time)
	fmt.Fprintf(&b, "🏆 %s\n", escapeMarkdown(e.League))
	fmt.Fprintf(&b, "🏟️ %s\n", escapeMarkdown(e.Stadium))
	fmt.Fprintf(&b, "🎥 %d stream URL(s)\n", e.Streams)
	fmt.Fprintf(&b, "🖼️ %s\n", escapeMarkdown(e.Poster))
	fmt.Fprintf(&b, "📌 %s\n", e.Status)
	return b.String()
}

func promptField(f model.UpdateField, e *model.EventEntry) string {
	switch f {
	case model.FieldStreams:
		return promptStreams
	case model.FieldPreview:
		return "📰 Send the new match preview (at least 50 characters)."
	case model.FieldStadium:
		return "🏟️ Send the new stadium name."
	case model.FieldDateTime:
		return "📅 Send the new date and time: `YYYY-MM-DD HH:MM`\n\nThe page address stays the same."
	case model.FieldImage:
		return "🖼️ Send the new image file name.\n\nSuggested: `" +
			model.SuggestedImage(e.HomeTeam, e.AwayTeam) + "`"
	case model.FieldStatus:
		return "📌 Pick the new status:"
	}
	return ""
}

func deleted(r *model.DeleteResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🗑️ *Deleted* `%s`\n\n", r.Slug)
	fmt.Fprintf(&b, "page removed: %t\n", r.PageRemoved)
	fmt.Fprintf(&b, "events.json entries removed: %d\n", r.EntriesRemoved)
	fmt.Fprintf(&b, "homepage cards removed: %d\n", r.CardsRemoved)
	fmt.Fprintf(&b, "sitemap url removed: %t\n", r.SitemapRemoved)
	b.WriteString(warnings(r.Warnings))
	return b.String()
}

func drift(r *model.DriftReport) string {
	if r.Clean() {
		return fmt.Sprintf("✅ In sync: %d catalog entries, %d homepage cards.", r.CatalogCount, r.CardCount)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "⚠️ *Drift detected* (%d catalog entries, %d homepage cards)\n", r.CatalogCount, r.CardCount)
	section := func(title string, slugs []string) {
		if len(slugs) == 0 {
			return
		}
		b.WriteString("\n" + title + ":\n")
		for _, s := range slugs {
			b.WriteString("• `" + s + "`\n")
		}
	}
	section("Missing cards", r.MissingCards)
	section("Cards without entry", r.OrphanCards)
	section("Missing pages", r.MissingPages)
	section("Duplicate slugs", r.DuplicateSlugs)
	b.WriteString("\nRun /regenerate to rebuild from events.json.")
	return b.String()
}

// chunkText 按字符切分：第一段 first 个字符，其后每段 rest 个
func chunkText(s string, first, rest int) []string {
	runes := []rune(s)
	if len(runes) == 0 {
		return nil
	}
	var chunks []string
	size := first
	for len(runes) > 0 {
		if size > len(runes) {
			size = len(runes)
		}
		chunks = append(chunks, string(runes[:size]))
		runes = runes[size:]
		size = rest
	}
	return chunks
}

func leagueKeyboard() [][]model.Button {
	leagues := model.Leagues()
	var rows [][]model.Button
	for i := 0; i < len(leagues); i += 2 {
		var row []model.Button
		for _, l := range leagues[i:min(i+2, len(leagues))] {
			label := l.Emoji + " " + l.Name
			if l.Name == model.LeagueOthers {
				label += " (ISL, etc.)"
			}
			row = append(row, model.Button{Text: label, Data: cbLeague + l.Name})
		}
		rows = append(rows, row)
	}
	return rows
}

func matchKeyboard(entries []model.EventEntry) [][]model.Button {
	var rows [][]model.Button
	for _, e := range entries {
		data := cbPick + e.Slug
		if len(data) > maxCallbackData {
			continue // 只能手动输入 slug
		}
		rows = append(rows, []model.Button{{Text: e.Date + " · " + e.Title, Data: data}})
	}
	return rows
}

func fieldKeyboard() [][]model.Button {
	labels := map[model.UpdateField]string{
		model.FieldStreams:  "🎥 Streams",
		model.FieldPreview:  "📰 Preview",
		model.FieldStadium:  "🏟️ Stadium",
		model.FieldDateTime: "📅 Date & time",
		model.FieldImage:    "🖼️ Image",
		model.FieldStatus:   "📌 Status",
	}
	var rows [][]model.Button
	for i := 0; i < len(model.UpdateFields); i += 2 {
		var row []model.Button
		for _, f := range model.UpdateFields[i:min(i+2, len(model.UpdateFields))] {
			row = append(row, model.Button{Text: labels[f], Data: cbField + string(f)})
		}
		rows = append(rows, row)
	}
	return rows
}

func statusKeyboard() [][]model.Button {
	row := make([]model.Button, 0, len(statusChoices))
	for _, s := range statusChoices {
		row = append(row, model.Button{Text: s, Data: cbValue + s})
	}
	return [][]model.Button{row}
}

func confirmKeyboard(yes, no string) [][]model.Button {
	return [][]model.Button{{{Text: "✅ Publish", Data: yes}, {Text: "❌ Cancel", Data: no}}}
}

func deleteKeyboard() [][]model.Button {
	return [][]model.Button{{{Text: "🗑️ Delete", Data: cbDeleteConfirm}, {Text: "❌ Cancel", Data: cbDeleteCancel}}}
}
