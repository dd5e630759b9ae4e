package telegram_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/helpcar/quotechat/internal/testutils"
	"github.com/helpcar/quotechat/pkg/adapters/memory"
	"github.com/helpcar/quotechat/pkg/adapters/telegram"
	"github.com/helpcar/quotechat/pkg/domain"
	"github.com/helpcar/quotechat/pkg/locale"
	"github.com/helpcar/quotechat/pkg/ports"
	"github.com/helpcar/quotechat/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const chatID int64 = 42

type fakeSender struct {
	mu        sync.Mutex
	sent      []*bot.SendMessageParams
	callbacks []string
}

func (f *fakeSender) SendMessage(_ context.Context, params *bot.SendMessageParams) (*models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, params)
	return &models.Message{}, nil
}

func (f *fakeSender) AnswerCallbackQuery(_ context.Context, params *bot.AnswerCallbackQueryParams) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.callbacks = append(f.callbacks, params.CallbackQueryID)
	return true, nil
}

func (f *fakeSender) texts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.sent))
	for _, p := range f.sent {
		out = append(out, p.Text)
	}
	return out
}

func (f *fakeSender) last() *bot.SendMessageParams {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.sent) == 0 {
		return nil
	}
	return f.sent[len(f.sent)-1]
}

type harness struct {
	bot    *telegram.Bot
	mgr    *session.Manager
	clock  *testutils.FakeClock
	pacing session.Pacing
	out    *fakeSender
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	bundle, err := locale.NewBundle()
	require.NoError(t, err)
	clock := testutils.NewFakeClock()
	n := 0
	mgr := session.NewManager(memory.NewStore(),
		func(lang string) ports.Translator { return bundle.Translator(lang) },
		session.WithSessionOptions(session.WithClock(clock)),
		session.WithIDGenerator(func() string { n++; return fmt.Sprintf("chat-%d", n) }),
	)
	t.Cleanup(mgr.Shutdown)
	b := telegram.New(mgr, bundle)
	t.Cleanup(b.Shutdown)
	return &harness{bot: b, mgr: mgr, clock: clock, pacing: session.DefaultPacing(), out: &fakeSender{}}
}

func (h *harness) text(text string) {
	h.bot.HandleUpdate(context.Background(), h.out, &models.Update{Message: &models.Message{
		Chat: models.Chat{ID: chatID},
		From: &models.User{ID: 7, LanguageCode: "en"},
		Text: text,
	}})
}

func (h *harness) press(value string) {
	h.bot.HandleUpdate(context.Background(), h.out, &models.Update{CallbackQuery: &models.CallbackQuery{
		ID:      "cb-" + value,
		Data:    value,
		Message: models.MaybeInaccessibleMessage{Message: &models.Message{Chat: models.Chat{ID: chatID}}},
	}})
}

func (h *harness) share(lat, lng float64) {
	h.bot.HandleUpdate(context.Background(), h.out, &models.Update{Message: &models.Message{
		Chat:     models.Chat{ID: chatID},
		Location: &models.Location{Latitude: lat, Longitude: lng},
	}})
}

func (h *harness) view(t *testing.T) domain.ConversationView {
	t.Helper()
	id, ok := h.bot.SessionID(chatID)
	require.True(t, ok)
	s, err := h.mgr.Get(context.Background(), id)
	require.NoError(t, err)
	return s.View()
}

func TestBot_StartRevealsGreetingAfterPacing(t *testing.T) {
	h := newHarness(t)
	h.text("/start")
	assert.Empty(t, h.out.texts(), "nothing before the initial delay")

	h.clock.Advance(h.pacing.Initial)
	assert.Equal(t, []string{
		"Hello! We're here to help you.",
		"Describe your problem and get a quote, no commitment.",
	}, h.out.texts())

	kb, ok := h.out.last().ReplyMarkup.(*models.InlineKeyboardMarkup)
	require.True(t, ok)
	assert.Len(t, kb.InlineKeyboard, len(domain.Problems))
	assert.Equal(t, "battery", kb.InlineKeyboard[0][0].CallbackData)
}

func TestBot_CompletesLead(t *testing.T) {
	h := newHarness(t)
	h.text("/start")
	h.clock.Advance(h.pacing.Initial)

	h.press("battery")
	assert.Equal(t, []string{"cb-battery"}, h.out.callbacks)
	h.clock.Advance(h.pacing.Answer)
	assert.Contains(t, h.out.texts(), "What type of vehicle?")

	h.press("sedan")
	h.clock.Advance(h.pacing.Answer)
	h.text("Manual")
	h.clock.Advance(h.pacing.Answer)
	h.press("no")
	h.clock.Advance(h.pacing.Answer)

	loc, ok := h.out.last().ReplyMarkup.(*models.ReplyKeyboardMarkup)
	require.True(t, ok, "location step offers a reply keyboard")
	assert.True(t, loc.Keyboard[0][0].RequestLocation)

	h.share(50.85, 4.35)
	assert.Equal(t, domain.StepFinal, h.view(t).Step)
	h.clock.Advance(h.pacing.Answer)
	h.clock.Advance(h.pacing.Summary)

	last := h.out.last()
	assert.Contains(t, last.Text, "Dead battery")
	kb, ok := last.ReplyMarkup.(*models.InlineKeyboardMarkup)
	require.True(t, ok)
	assert.Contains(t, kb.InlineKeyboard[0][0].URL, "https://wa.me/32479890089?text=")
}

func TestBot_InvalidAnswerRepromptsAndBusyIsDropped(t *testing.T) {
	h := newHarness(t)
	h.text("/start")
	h.text("something odd")
	assert.Empty(t, h.out.texts(), "input during the initial delay is dropped")

	h.clock.Advance(h.pacing.Initial)
	before := len(h.out.texts())
	h.text("something odd")
	texts := h.out.texts()
	require.Len(t, texts, before+1)
	assert.Equal(t, "Describe your problem and get a quote, no commitment.", texts[len(texts)-1])
	assert.NotNil(t, h.out.last().ReplyMarkup)
}

func TestBot_MessageBeforeStartOpensSession(t *testing.T) {
	h := newHarness(t)
	_, ok := h.bot.SessionID(chatID)
	require.False(t, ok)

	h.text("hello")
	_, ok = h.bot.SessionID(chatID)
	assert.True(t, ok)
}

func TestBot_CancelDeletesSession(t *testing.T) {
	h := newHarness(t)
	h.text("/start")
	id, ok := h.bot.SessionID(chatID)
	require.True(t, ok)

	h.text("/cancel")
	_, ok = h.bot.SessionID(chatID)
	assert.False(t, ok)
	_, err := h.mgr.Get(context.Background(), id)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	h.clock.RunAll()
	assert.Empty(t, h.out.texts(), "timers of a cancelled chat never reveal")
}

func TestBot_RestartReplacesSession(t *testing.T) {
	h := newHarness(t)
	h.text("/start")
	first, _ := h.bot.SessionID(chatID)
	h.text("/start")
	second, _ := h.bot.SessionID(chatID)
	assert.NotEqual(t, first, second)
}

func TestBot_CallbackFromUnknownChatIsAcknowledged(t *testing.T) {
	h := newHarness(t)
	h.press("battery")
	assert.Equal(t, []string{"cb-battery"}, h.out.callbacks)
	assert.Empty(t, h.out.texts())
}
