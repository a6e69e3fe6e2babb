package bot

import (
	"context"
	"errors"
	"strings"

	"MatchPublisher/internal/model"
	"MatchPublisher/internal/service"
	"MatchPublisher/internal/site"
)

// startPick 更新/删除流程的第一步：选择比赛
func (b *Bot) startPick(ctx context.Context, in *model.Incoming, flow model.Flow) error {
	entries, err := b.publisher.List(ctx, b.opts.ListLimit)
	if err != nil {
		return b.failure(ctx, in.ChatID, "list matches", err)
	}
	if len(entries) == 0 {
		return b.end(ctx, in.ChatID, msgNoMatches)
	}
	verb := "update"
	if flow == model.FlowDelete {
		verb = "delete"
	}
	sess := &model.Session{ChatID: in.ChatID, Flow: flow}
	return b.advance(ctx, sess, model.StepPickMatch, model.Reply{
		Text:    "Which match do you want to " + verb + "? Pick one or send its slug.",
		Buttons: matchKeyboard(entries),
	})
}

func (b *Bot) onPickMatch(ctx context.Context, sess *model.Session, in *model.Incoming) error {
	slug := strings.TrimPrefix(input(in), cbPick)
	if !site.ValidSlug(slug) {
		return b.say(ctx, sess.ChatID, msgMatchNotFound)
	}
	entry, err := b.publisher.Get(ctx, slug)
	if errors.Is(err, site.ErrNotFound) {
		return b.say(ctx, sess.ChatID, msgMatchNotFound)
	}
	if err != nil {
		return b.failure(ctx, sess.ChatID, "load the match", err)
	}
	sess.Target = entry.Slug

	if sess.Flow == model.FlowDelete {
		return b.advance(ctx, sess, model.StepDeleteConfirm, model.Reply{
			Text:     entryDetails(entry) + "\n🗑️ Delete this match from the site?",
			Markdown: true,
			Buttons:  deleteKeyboard(),
		})
	}
	return b.advance(ctx, sess, model.StepPickField, model.Reply{
		Text:     entryDetails(entry) + "\nWhat do you want to change?",
		Markdown: true,
		Buttons:  fieldKeyboard(),
	})
}

func (b *Bot) onPickField(ctx context.Context, sess *model.Session, in *model.Incoming) error {
	name := strings.ToLower(strings.TrimPrefix(input(in), cbField))
	var field model.UpdateField
	for _, f := range model.UpdateFields {
		if string(f) == name {
			field = f
		}
	}
	if field == "" {
		return b.send(ctx, sess.ChatID, model.Reply{Text: msgUnknownField, Buttons: fieldKeyboard()})
	}
	entry, err := b.publisher.Get(ctx, sess.Target)
	if err != nil {
		return b.endWith(ctx, sess.ChatID, "load the match", err)
	}
	sess.Field = field
	reply := model.Reply{Text: promptField(field, entry), Markdown: true}
	if field == model.FieldStatus {
		reply.Buttons = statusKeyboard()
	}
	return b.advance(ctx, sess, model.StepFieldValue, reply)
}

func (b *Bot) onFieldValue(ctx context.Context, sess *model.Session, in *model.Incoming) error {
	value := strings.TrimPrefix(input(in), cbValue)
	var patch model.EntryPatch

	switch sess.Field {
	case model.FieldStreams:
		urls, invalid, truncated := ParseStreamURLs(value)
		if len(invalid) > 0 {
			return b.say(ctx, sess.ChatID, invalidURLs(invalid))
		}
		if truncated {
			if err := b.say(ctx, sess.ChatID, msgTooManyURLs); err != nil {
				return err
			}
		}
		patch.StreamURLs = &urls
	case model.FieldPreview:
		preview, err := ValidatePreview(value)
		if err != nil {
			return b.say(ctx, sess.ChatID, msgShortPreview)
		}
		patch.Preview = &preview
	case model.FieldStadium:
		stadium, err := ValidateStadium(value)
		if err != nil {
			return b.say(ctx, sess.ChatID, msgShortStadium)
		}
		patch.Stadium = &stadium
	case model.FieldDateTime:
		kickoff, err := ParseKickoff(value, b.opts.Location)
		if err != nil {
			return b.say(ctx, sess.ChatID, msgBadDate)
		}
		formatted := kickoff.Format(model.DateTimeLayout)
		patch.Kickoff = &formatted
	case model.FieldImage:
		entry, err := b.publisher.Get(ctx, sess.Target)
		if err != nil {
			return b.endWith(ctx, sess.ChatID, "load the match", err)
		}
		image := ResolveImageName(value, model.SuggestedImage(entry.HomeTeam, entry.AwayTeam))
		patch.ImageFile = &image
	case model.FieldStatus:
		status, err := ParseStatus(value)
		if err != nil {
			return b.send(ctx, sess.ChatID, model.Reply{Text: msgBadStatus, Buttons: statusKeyboard()})
		}
		patch.Status = &status
	default:
		return b.end(ctx, sess.ChatID, msgNoSession)
	}

	if err := b.store.Delete(ctx, sess.ChatID); err != nil {
		return err
	}
	res, err := b.publisher.Update(ctx, sess.Target, patch, in.UserID)
	if err != nil {
		if errors.Is(err, service.ErrInvalid) || errors.Is(err, site.ErrNotFound) {
			return b.send(ctx, sess.ChatID, model.Reply{Text: "❌ " + err.Error()})
		}
		return b.failure(ctx, sess.ChatID, "update the match", err)
	}
	return b.say(ctx, sess.ChatID, "✅ Updated "+string(sess.Field)+" of `"+res.Entry.Slug+"`\n🔗 "+
		escapeMarkdown(res.URL)+"\n"+warnings(res.Warnings))
}

func (b *Bot) onDeleteConfirm(ctx context.Context, sess *model.Session, in *model.Incoming) error {
	switch strings.ToLower(input(in)) {
	case cbDeleteConfirm, "yes", "delete":
	case cbDeleteCancel, "no", "cancel":
		return b.end(ctx, sess.ChatID, msgCancelled)
	default:
		return b.send(ctx, sess.ChatID, model.Reply{Text: "Please press Delete or Cancel.", Buttons: deleteKeyboard()})
	}

	if err := b.store.Delete(ctx, sess.ChatID); err != nil {
		return err
	}
	res, err := b.publisher.Delete(ctx, sess.Target, in.UserID)
	if errors.Is(err, site.ErrNotFound) {
		return b.say(ctx, sess.ChatID, msgMatchGone)
	}
	if err != nil {
		return b.failure(ctx, sess.ChatID, "delete the match", err)
	}
	return b.say(ctx, sess.ChatID, deleted(res))
}

// endWith 目标比赛已不可用时结束会话
func (b *Bot) endWith(ctx context.Context, chatID int64, action string, err error) error {
	if delErr := b.store.Delete(ctx, chatID); delErr != nil {
		return delErr
	}
	if errors.Is(err, site.ErrNotFound) {
		return b.say(ctx, chatID, msgMatchGone)
	}
	return b.failure(ctx, chatID, action, err)
}
