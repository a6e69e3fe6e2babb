package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"MatchPublisher/internal/interfaces"
	"MatchPublisher/internal/model"

	"github.com/sirupsen/logrus"
)

// ErrUnauthorized 发消息的用户不在 allowed_users 中
var ErrUnauthorized = errors.New("user not allowed")

// buttonSteps 接受按钮回调的步骤；其余步骤只接受文本，旧键盘的回调会被忽略
var buttonSteps = map[model.Step]bool{
	model.StepLeague:        true,
	model.StepConfirm:       true,
	model.StepPickMatch:     true,
	model.StepPickField:     true,
	model.StepFieldValue:    true,
	model.StepDeleteConfirm: true,
}

// Options 机器人行为配置
type Options struct {
	AllowedUsers []int64
	SessionTTL   time.Duration
	SendSources  bool // 发布后把页面/条目/卡片代码发回聊天
	ListLimit    int
	Location     *time.Location
}

// Bot 对话式录入：按聊天保存会话，逐步收集字段后调用发布服务
type Bot struct {
	store      interfaces.SessionStore
	publisher  interfaces.MatchPublisher
	reconciler interfaces.Reconciler
	out        interfaces.Messenger
	allowed    map[int64]bool
	opts       Options
	now        func() time.Time
	logger     *logrus.Logger
}

// New 创建 Bot
func New(store interfaces.SessionStore, publisher interfaces.MatchPublisher, reconciler interfaces.Reconciler,
	out interfaces.Messenger, opts Options, logger *logrus.Logger) *Bot {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.ListLimit <= 0 {
		opts.ListLimit = 10
	}
	allowed := make(map[int64]bool, len(opts.AllowedUsers))
	for _, id := range opts.AllowedUsers {
		allowed[id] = true
	}
	return &Bot{
		store:      store,
		publisher:  publisher,
		reconciler: reconciler,
		out:        out,
		allowed:    allowed,
		opts:       opts,
		now:        time.Now,
		logger:     logger,
	}
}

// Handle 处理一条消息或按钮回调
func (b *Bot) Handle(ctx context.Context, in *model.Incoming) error {
	log := b.logger.WithFields(logrus.Fields{"chat_id": in.ChatID, "user_id": in.UserID})

	if in.IsCallback() {
		if err := b.out.AnswerCallback(ctx, in.CallbackID, ""); err != nil {
			log.WithError(err).Debug("应答回调失败")
		}
	}
	if len(b.allowed) > 0 && !b.allowed[in.UserID] {
		log.Warn("拒绝未授权用户")
		if err := b.say(ctx, in.ChatID, msgUnauthorized); err != nil {
			return err
		}
		return ErrUnauthorized
	}

	text := strings.TrimSpace(in.Text)
	if !in.IsCallback() && strings.HasPrefix(text, "/") {
		return b.command(ctx, in, text)
	}

	sess, err := b.session(ctx, in.ChatID)
	if err != nil {
		return err
	}
	if sess == nil {
		return b.say(ctx, in.ChatID, msgNoSession)
	}
	log.WithFields(logrus.Fields{"flow": sess.Flow, "step": sess.Step}).Debug("处理会话输入")
	if in.IsCallback() && !buttonSteps[sess.Step] {
		return b.say(ctx, in.ChatID, msgUnknownInput)
	}

	switch sess.Step {
	case model.StepMatchName:
		return b.onMatchName(ctx, sess, in)
	case model.StepDateTime:
		return b.onDateTime(ctx, sess, in)
	case model.StepLeague:
		return b.onLeague(ctx, sess, in)
	case model.StepStadium:
		return b.onStadium(ctx, sess, in)
	case model.StepPreview:
		return b.onPreview(ctx, sess, in)
	case model.StepStreamURLs:
		return b.onStreamURLs(ctx, sess, in)
	case model.StepImageName:
		return b.onImageName(ctx, sess, in)
	case model.StepConfirm:
		return b.onConfirm(ctx, sess, in)
	case model.StepPickMatch:
		return b.onPickMatch(ctx, sess, in)
	case model.StepPickField:
		return b.onPickField(ctx, sess, in)
	case model.StepFieldValue:
		return b.onFieldValue(ctx, sess, in)
	case model.StepDeleteConfirm:
		return b.onDeleteConfirm(ctx, sess, in)
	}
	log.WithField("step", sess.Step).Warn("未知步骤，清除会话")
	return b.end(ctx, in.ChatID, msgNoSession)
}

func (b *Bot) command(ctx context.Context, in *model.Incoming, text string) error {
	cmd := strings.Fields(text)[0]
	if at := strings.Index(cmd, "@"); at > 0 {
		cmd = cmd[:at] // /add@SomeBot
	}
	switch strings.ToLower(cmd) {
	case "/start", "/add":
		return b.startAdd(ctx, in)
	case "/update":
		return b.startPick(ctx, in, model.FlowUpdate)
	case "/delete":
		return b.startPick(ctx, in, model.FlowDelete)
	case "/list":
		return b.list(ctx, in.ChatID)
	case "/regenerate":
		return b.regenerate(ctx, in)
	case "/check":
		return b.check(ctx, in.ChatID)
	case "/cancel":
		return b.end(ctx, in.ChatID, msgCancelled)
	default:
		return b.send(ctx, in.ChatID, model.Reply{Text: msgHelp, Markdown: true})
	}
}

// session 读取会话；超时的会话直接删除并视为不存在
func (b *Bot) session(ctx context.Context, chatID int64) (*model.Session, error) {
	sess, err := b.store.Get(ctx, chatID)
	if err != nil {
		return nil, fmt.Errorf("读取会话失败: %w", err)
	}
	if sess == nil {
		return nil, nil
	}
	if sess.Expired(b.now(), b.opts.SessionTTL) {
		b.logger.WithField("chat_id", chatID).Info("会话已超时")
		if err := b.store.Delete(ctx, chatID); err != nil {
			return nil, fmt.Errorf("删除会话失败: %w", err)
		}
		return nil, nil
	}
	return sess, nil
}

func (b *Bot) save(ctx context.Context, sess *model.Session) error {
	sess.UpdatedAt = b.now()
	if err := b.store.Save(ctx, sess); err != nil {
		return fmt.Errorf("保存会话失败: %w", err)
	}
	return nil
}

// advance 保存会话并发出下一步提示
func (b *Bot) advance(ctx context.Context, sess *model.Session, step model.Step, reply model.Reply) error {
	sess.Step = step
	if err := b.save(ctx, sess); err != nil {
		return err
	}
	return b.send(ctx, sess.ChatID, reply)
}

// end 清除会话并回复
func (b *Bot) end(ctx context.Context, chatID int64, text string) error {
	if err := b.store.Delete(ctx, chatID); err != nil {
		return fmt.Errorf("删除会话失败: %w", err)
	}
	return b.say(ctx, chatID, text)
}

func (b *Bot) say(ctx context.Context, chatID int64, text string) error {
	return b.send(ctx, chatID, model.Reply{Text: text, Markdown: true})
}

func (b *Bot) send(ctx context.Context, chatID int64, reply model.Reply) error {
	if err := b.out.Send(ctx, chatID, reply); err != nil {
		return fmt.Errorf("发送消息失败: %w", err)
	}
	return nil
}

// input 回调取按钮数据，否则取文本
func input(in *model.Incoming) string {
	if in.IsCallback() {
		return in.CallbackData
	}
	return strings.TrimSpace(in.Text)
}

func (b *Bot) list(ctx context.Context, chatID int64) error {
	entries, err := b.publisher.List(ctx, b.opts.ListLimit)
	if err != nil {
		return b.failure(ctx, chatID, "list matches", err)
	}
	if len(entries) == 0 {
		return b.say(ctx, chatID, msgNoMatches)
	}
	return b.say(ctx, chatID, listing(entries))
}

func (b *Bot) regenerate(ctx context.Context, in *model.Incoming) error {
	if err := b.say(ctx, in.ChatID, "⏳ Rebuilding from events.json..."); err != nil {
		return err
	}
	cards, err := b.reconciler.RegenerateCards(ctx)
	if err != nil {
		return b.failure(ctx, in.ChatID, "regenerate cards", err)
	}
	pages, err := b.reconciler.RegeneratePages(ctx)
	if err != nil {
		return b.failure(ctx, in.ChatID, "regenerate pages", err)
	}
	b.logger.WithFields(logrus.Fields{"user_id": in.UserID, "cards": cards, "pages": pages}).Info("聊天触发重建")
	return b.say(ctx, in.ChatID, fmt.Sprintf("✅ Regenerated %d homepage cards and %d match pages.", cards, pages))
}

func (b *Bot) check(ctx context.Context, chatID int64) error {
	report, err := b.reconciler.Check(ctx)
	if err != nil {
		return b.failure(ctx, chatID, "check", err)
	}
	return b.say(ctx, chatID, drift(report))
}

// failure 把服务错误告知用户；返回值只反映发送是否成功
func (b *Bot) failure(ctx context.Context, chatID int64, action string, err error) error {
	b.logger.WithError(err).WithField("chat_id", chatID).WithField("action", action).Error("操作失败")
	return b.send(ctx, chatID, model.Reply{Text: "❌ Could not " + action + ": " + err.Error()})
}
