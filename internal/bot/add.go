package bot

import (
	"context"
	"errors"
	"strings"

	"MatchPublisher/internal/model"
	"MatchPublisher/internal/service"
)

func (b *Bot) startAdd(ctx context.Context, in *model.Incoming) error {
	sess := &model.Session{ChatID: in.ChatID, Flow: model.FlowAdd}
	return b.advance(ctx, sess, model.StepMatchName, model.Reply{Text: welcome(in.FirstName), Markdown: true})
}

func (b *Bot) onMatchName(ctx context.Context, sess *model.Session, in *model.Incoming) error {
	text := input(in)
	home, away, err := ParseMatchName(text)
	switch {
	case errors.Is(err, errNoVs):
		return b.say(ctx, sess.ChatID, msgBadName)
	case err != nil:
		return b.say(ctx, sess.ChatID, msgBadTeams)
	}
	sess.Draft.MatchName = text
	sess.Draft.HomeTeam = home
	sess.Draft.AwayTeam = away
	return b.advance(ctx, sess, model.StepDateTime, model.Reply{Text: promptDate(text), Markdown: true})
}

func (b *Bot) onDateTime(ctx context.Context, sess *model.Session, in *model.Incoming) error {
	kickoff, err := ParseKickoff(input(in), b.opts.Location)
	if err != nil {
		return b.say(ctx, sess.ChatID, msgBadDate)
	}
	if kickoff.Before(b.now()) {
		if err := b.say(ctx, sess.ChatID, msgPastDate); err != nil {
			return err
		}
	}
	sess.Draft.Kickoff = kickoff.Format(model.DateTimeLayout)
	return b.advance(ctx, sess, model.StepLeague, model.Reply{
		Text:     promptLeague(sess.Draft.Kickoff),
		Markdown: true,
		Buttons:  leagueKeyboard(),
	})
}

func (b *Bot) onLeague(ctx context.Context, sess *model.Session, in *model.Incoming) error {
	var league model.League
	reply := model.Reply{Markdown: true}
	if in.IsCallback() {
		if !strings.HasPrefix(in.CallbackData, cbLeague) {
			return b.say(ctx, sess.ChatID, msgBadLeague)
		}
		league = model.LookupLeague(strings.TrimPrefix(in.CallbackData, cbLeague))
		reply.EditMessageID = in.MessageID
	} else {
		l, ok := model.FindLeague(in.Text)
		if !ok {
			return b.send(ctx, sess.ChatID, model.Reply{Text: msgBadLeague, Buttons: leagueKeyboard()})
		}
		league = l
	}
	sess.Draft.League = league.Name
	sess.Draft.LeagueSlug = league.Slug
	sess.Draft.LeagueEmoji = league.Emoji
	reply.Text = promptStadium(league)
	return b.advance(ctx, sess, model.StepStadium, reply)
}

func (b *Bot) onStadium(ctx context.Context, sess *model.Session, in *model.Incoming) error {
	stadium, err := ValidateStadium(input(in))
	if err != nil {
		return b.say(ctx, sess.ChatID, msgShortStadium)
	}
	sess.Draft.Stadium = stadium
	return b.advance(ctx, sess, model.StepPreview, model.Reply{Text: promptPreview(stadium), Markdown: true})
}

func (b *Bot) onPreview(ctx context.Context, sess *model.Session, in *model.Incoming) error {
	preview, err := ValidatePreview(input(in))
	if err != nil {
		return b.say(ctx, sess.ChatID, msgShortPreview)
	}
	sess.Draft.Preview = preview
	return b.advance(ctx, sess, model.StepStreamURLs, model.Reply{Text: "✅ Preview saved!\n\n" + promptStreams, Markdown: true})
}

func (b *Bot) onStreamURLs(ctx context.Context, sess *model.Session, in *model.Incoming) error {
	urls, invalid, truncated := ParseStreamURLs(input(in))
	if len(invalid) > 0 {
		return b.say(ctx, sess.ChatID, invalidURLs(invalid))
	}
	if truncated {
		if err := b.say(ctx, sess.ChatID, msgTooManyURLs); err != nil {
			return err
		}
	}
	sess.Draft.StreamURLs = urls
	sess.Draft.SuggestedImage = model.SuggestedImage(sess.Draft.HomeTeam, sess.Draft.AwayTeam)
	return b.advance(ctx, sess, model.StepImageName, model.Reply{
		Text:     promptImage(len(urls), sess.Draft.SuggestedImage),
		Markdown: true,
	})
}

func (b *Bot) onImageName(ctx context.Context, sess *model.Session, in *model.Incoming) error {
	sess.Draft.ImageFile = ResolveImageName(input(in), sess.Draft.SuggestedImage)
	return b.advance(ctx, sess, model.StepConfirm, model.Reply{
		Text:     summary(&sess.Draft),
		Markdown: true,
		Buttons:  confirmKeyboard(cbConfirmPub, cbConfirmCancel),
	})
}

func (b *Bot) onConfirm(ctx context.Context, sess *model.Session, in *model.Incoming) error {
	switch strings.ToLower(input(in)) {
	case cbConfirmPub, "yes", "publish":
	case cbConfirmCancel, "no", "cancel":
		return b.end(ctx, sess.ChatID, msgCancelled)
	default:
		return b.send(ctx, sess.ChatID, model.Reply{
			Text:     msgConfirmAgain,
			Markdown: true,
			Buttons:  confirmKeyboard(cbConfirmPub, cbConfirmCancel),
		})
	}

	m, err := draftMatch(&sess.Draft, b.opts)
	if err != nil {
		return b.end(ctx, sess.ChatID, "❌ "+err.Error()+"\n\nType /add to start again.")
	}
	if err := b.say(ctx, sess.ChatID, msgGenerating); err != nil {
		return err
	}
	// 无论成功与否都结束会话，避免重复发布
	if err := b.store.Delete(ctx, sess.ChatID); err != nil {
		return err
	}
	res, err := b.publisher.Publish(ctx, m, in.UserID)
	if err != nil {
		if errors.Is(err, service.ErrInvalid) {
			return b.send(ctx, sess.ChatID, model.Reply{Text: "❌ " + err.Error() + "\n\nType /add to start again."})
		}
		return b.failure(ctx, sess.ChatID, "publish the match", err)
	}
	if err := b.say(ctx, sess.ChatID, published(res)); err != nil {
		return err
	}
	if b.opts.SendSources {
		return b.sendSources(ctx, sess.ChatID, res)
	}
	return nil
}

func draftMatch(d *model.Draft, opts Options) (*model.Match, error) {
	kickoff, err := ParseKickoff(d.Kickoff, opts.Location)
	if err != nil {
		return nil, err
	}
	return &model.Match{
		Name:       d.MatchName,
		HomeTeam:   d.HomeTeam,
		AwayTeam:   d.AwayTeam,
		Kickoff:    kickoff,
		League:     d.League,
		LeagueSlug: d.LeagueSlug,
		Stadium:    d.Stadium,
		Preview:    d.Preview,
		StreamURLs: d.StreamURLs,
		ImageFile:  d.ImageFile,
		Status:     model.StatusUpcoming,
	}, nil
}

// sendSources 把生成的页面、条目与卡片发回聊天，长内容分段
func (b *Bot) sendSources(ctx context.Context, chatID int64, res *model.PublishResult) error {
	var msgs []string
	for i, chunk := range chunkText(res.Page, firstChunk, nextChunk) {
		block := "```html\n" + chunk + "\n```"
		if i == 0 {
			block = "📄 *1. HTML FILE:* `" + res.Entry.Slug + ".html`\n\n" + block
		}
		msgs = append(msgs, block)
	}
	for i, chunk := range chunkText(res.EntryJSON, firstChunk, nextChunk) {
		block := "```json\n" + chunk + "\n```"
		if i == 0 {
			block = "📊 *2. JSON ENTRY* (top of events.json):\n\n" + block
		}
		msgs = append(msgs, block)
	}
	if card := chunkText(res.Card, firstChunk, nextChunk); len(card) > 0 {
		msgs = append(msgs, "🏠 *3. HOMEPAGE CARD:*\n\n```html\n"+card[0]+"\n```")
	}
	for _, m := range msgs {
		if err := b.say(ctx, chatID, m); err != nil {
			return err
		}
	}
	return nil
}
