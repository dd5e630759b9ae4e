package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/helpcar/quotechat/internal/logging"
	"github.com/helpcar/quotechat/pkg/adapters/geo"
	"github.com/helpcar/quotechat/pkg/domain"
	"github.com/helpcar/quotechat/pkg/locale"
	"github.com/helpcar/quotechat/pkg/session"
)

// DefaultSendTimeout bounds each outgoing API call made for a paced reveal.
const DefaultSendTimeout = 10 * time.Second

// Chat commands.
const (
	CommandStart  = "/start"
	CommandCancel = "/cancel"
)

// Sender is the part of the Bot API the front end uses. *bot.Bot implements it.
type Sender interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
	AnswerCallbackQuery(ctx context.Context, params *bot.AnswerCallbackQueryParams) (bool, error)
}

// Bot runs one wizard session per Telegram chat.
type Bot struct {
	sessions *session.Manager
	bundle   *locale.Bundle
	logger   *slog.Logger
	timeout  time.Duration

	mu    sync.Mutex
	chats map[int64]*chat
}

type chat struct {
	id        int64
	sessionID string
	out       Sender
	detach    func()

	mu         sync.Mutex
	transcript Transcript
}

type Option func(*Bot)

func WithLogger(logger *slog.Logger) Option {
	return func(b *Bot) { b.logger = logger }
}

// WithSendTimeout bounds the API calls made when a paced reveal fires.
func WithSendTimeout(d time.Duration) Option {
	return func(b *Bot) { b.timeout = d }
}

func New(mgr *session.Manager, bundle *locale.Bundle, opts ...Option) *Bot {
	b := &Bot{
		sessions: mgr,
		bundle:   bundle,
		logger:   logging.NewNop(),
		timeout:  DefaultSendTimeout,
		chats:    make(map[int64]*chat),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Run polls Telegram for updates until ctx is cancelled.
func (b *Bot) Run(ctx context.Context, token string) error {
	if token == "" {
		return errors.New("telegram: bot token is required")
	}
	tb, err := bot.New(token, bot.WithDefaultHandler(b.Handle))
	if err != nil {
		return fmt.Errorf("telegram: %w", err)
	}
	b.logger.Info("Telegram bot polling")
	tb.Start(ctx)
	b.Shutdown()
	return nil
}

// Handle is a bot.HandlerFunc.
func (b *Bot) Handle(ctx context.Context, tb *bot.Bot, update *models.Update) {
	b.HandleUpdate(ctx, tb, update)
}

// HandleUpdate routes one update: commands, typed answers, shared locations and
// inline button presses.
func (b *Bot) HandleUpdate(ctx context.Context, out Sender, update *models.Update) {
	switch {
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, out, update.CallbackQuery)
	case update.Message != nil:
		b.handleMessage(ctx, out, update.Message)
	}
}

// Shutdown detaches every chat from its session.
func (b *Bot) Shutdown() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, c := range b.chats {
		c.detach()
		delete(b.chats, id)
	}
}

// SessionID returns the session bound to a chat.
func (b *Bot) SessionID(chatID int64) (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	c, ok := b.chats[chatID]
	if !ok {
		return "", false
	}
	return c.sessionID, true
}

func (b *Bot) handleMessage(ctx context.Context, out Sender, msg *models.Message) {
	chatID := msg.Chat.ID
	lang := ""
	if msg.From != nil {
		lang = msg.From.LanguageCode
	}

	text := strings.TrimSpace(msg.Text)
	switch {
	case strings.HasPrefix(text, CommandStart):
		b.start(ctx, out, chatID, lang)
		return
	case strings.HasPrefix(text, CommandCancel):
		b.cancel(ctx, chatID)
		return
	}

	c := b.chat(chatID)
	if c == nil {
		b.start(ctx, out, chatID, lang)
		return
	}

	if msg.Location != nil {
		report := geo.Report{Lat: &msg.Location.Latitude, Lng: &msg.Location.Longitude}
		b.act(ctx, c, func(ctx context.Context, s *session.Session) error {
			return s.LocateWith(ctx, report)
		})
		return
	}
	if text == "" {
		return
	}
	b.act(ctx, c, func(ctx context.Context, s *session.Session) error {
		return s.Dispatch(ctx, ResolveInput(s.View().Affordance, text))
	})
}

func (b *Bot) handleCallback(ctx context.Context, out Sender, q *models.CallbackQuery) {
	if _, err := out.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{CallbackQueryID: q.ID}); err != nil {
		b.logger.Warn("Telegram: failed to answer callback", "err", err)
	}
	if q.Message.Message == nil {
		return
	}
	c := b.chat(q.Message.Message.Chat.ID)
	if c == nil {
		return
	}
	b.act(ctx, c, func(ctx context.Context, s *session.Session) error {
		return s.Dispatch(ctx, q.Data)
	})
}

// act runs fn on the chat's session. Rejected answers resend the current prompt;
// actions during a pending reveal are dropped.
func (b *Bot) act(ctx context.Context, c *chat, fn func(context.Context, *session.Session) error) {
	err := b.sessions.Do(ctx, c.sessionID, fn)
	switch {
	case err == nil:
	case errors.Is(err, session.ErrBusy):
		b.logger.Debug("Telegram: input while busy", "chat_id", c.id, "session_id", c.sessionID)
	case errors.Is(err, domain.ErrSessionNotFound), errors.Is(err, session.ErrClosed):
		b.logger.Info("Telegram: session gone, detaching chat", "chat_id", c.id, "err", err)
		b.forget(c.id)
	default:
		b.logger.Debug("Telegram: input rejected", "chat_id", c.id, "err", err)
		s, gerr := b.sessions.Get(ctx, c.sessionID)
		if gerr != nil {
			return
		}
		c.mu.Lock()
		c.transcript.Reprompt()
		c.mu.Unlock()
		b.deliver(ctx, c, s.View())
	}
}

func (b *Bot) start(ctx context.Context, out Sender, chatID int64, lang string) {
	b.cancel(ctx, chatID)

	s, err := b.sessions.Create(ctx, b.bundle.Match(lang))
	if err != nil {
		b.logger.Error("Telegram: failed to create session", "chat_id", chatID, "err", err)
		return
	}
	c := &chat{id: chatID, sessionID: s.ID(), out: out}
	c.detach = s.Subscribe(func(v domain.ConversationView) {
		ctx, cancel := context.WithTimeout(context.Background(), b.timeout)
		defer cancel()
		b.deliver(ctx, c, v)
	})

	b.mu.Lock()
	b.chats[chatID] = c
	b.mu.Unlock()

	b.logger.Info("Telegram: chat started", "chat_id", chatID, "session_id", s.ID())
	b.deliver(ctx, c, s.View())
}

func (b *Bot) cancel(ctx context.Context, chatID int64) {
	c := b.forget(chatID)
	if c == nil {
		return
	}
	if err := b.sessions.Delete(ctx, c.sessionID); err != nil && !errors.Is(err, domain.ErrSessionNotFound) {
		b.logger.Warn("Telegram: failed to delete session", "session_id", c.sessionID, "err", err)
	}
}

func (b *Bot) forget(chatID int64) *chat {
	b.mu.Lock()
	defer b.mu.Unlock()
	c, ok := b.chats[chatID]
	if !ok {
		return nil
	}
	c.detach()
	delete(b.chats, chatID)
	return c
}

func (b *Bot) chat(chatID int64) *chat {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.chats[chatID]
}

func (b *Bot) deliver(ctx context.Context, c *chat, v domain.ConversationView) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, m := range c.transcript.Next(v) {
		params := &bot.SendMessageParams{ChatID: c.id, Text: m.Text, ReplyMarkup: m.ReplyMarkup}
		if _, err := c.out.SendMessage(ctx, params); err != nil {
			b.logger.Warn("Telegram: failed to send message", "chat_id", c.id, "err", err)
			return
		}
	}
}
