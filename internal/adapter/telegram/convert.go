package telegram

import (
	"MatchPublisher/internal/model"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// ToIncoming 取出文本消息或按钮回调；其它类型的更新返回 nil
func ToIncoming(u tgbotapi.Update) *model.Incoming {
	switch {
	case u.CallbackQuery != nil:
		q := u.CallbackQuery
		in := &model.Incoming{CallbackID: q.ID, CallbackData: q.Data}
		if q.From != nil {
			in.UserID = q.From.ID
			in.FirstName = q.From.FirstName
		}
		if q.Message != nil {
			in.MessageID = q.Message.MessageID
			if q.Message.Chat != nil {
				in.ChatID = q.Message.Chat.ID
			}
		}
		if in.ChatID == 0 {
			in.ChatID = in.UserID
		}
		return in
	case u.Message != nil && u.Message.Chat != nil:
		m := u.Message
		in := &model.Incoming{ChatID: m.Chat.ID, Text: m.Text, MessageID: m.MessageID}
		if m.From != nil {
			in.UserID = m.From.ID
			in.FirstName = m.From.FirstName
		}
		return in
	}
	return nil
}

// Chattable 把 Reply 转为 Bot API 请求：EditMessageID 非 0 时编辑原消息
func Chattable(chatID int64, r model.Reply) tgbotapi.Chattable {
	parseMode := ""
	if r.Markdown {
		parseMode = tgbotapi.ModeMarkdown
	}
	markup := keyboard(r.Buttons)

	if r.EditMessageID != 0 {
		edit := tgbotapi.NewEditMessageText(chatID, r.EditMessageID, r.Text)
		edit.ParseMode = parseMode
		edit.DisableWebPagePreview = true
		if markup != nil {
			edit.ReplyMarkup = markup
		}
		return edit
	}

	msg := tgbotapi.NewMessage(chatID, r.Text)
	msg.ParseMode = parseMode
	msg.DisableWebPagePreview = true
	if markup != nil {
		msg.ReplyMarkup = *markup
	}
	return msg
}

func keyboard(rows [][]model.Button) *tgbotapi.InlineKeyboardMarkup {
	if len(rows) == 0 {
		return nil
	}
	out := make([][]tgbotapi.InlineKeyboardButton, 0, len(rows))
	for _, row := range rows {
		buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, b := range row {
			buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(b.Text, b.Data))
		}
		out = append(out, tgbotapi.NewInlineKeyboardRow(buttons...))
	}
	markup := tgbotapi.NewInlineKeyboardMarkup(out...)
	return &markup
}
