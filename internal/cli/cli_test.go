package cli_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/helpcar/quotechat/internal/cli"
	"github.com/helpcar/quotechat/internal/config"
	"github.com/helpcar/quotechat/internal/logging"
	"github.com/helpcar/quotechat/internal/presentation/tui"
	"github.com/helpcar/quotechat/pkg/domain"
	"github.com/helpcar/quotechat/pkg/locale"
	"github.com/helpcar/quotechat/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fast = session.Pacing{Initial: time.Millisecond, Answer: time.Millisecond, Summary: time.Millisecond}

func loadConfig(t *testing.T) *config.Config {
	t.Helper()
	l, err := config.Load("")
	require.NoError(t, err)
	cfg, err := l.Config()
	require.NoError(t, err)
	cfg.Pacing = fast
	return cfg
}

func newSession(t *testing.T) *session.Session {
	t.Helper()
	bundle, err := locale.NewBundle()
	require.NoError(t, err)
	s := session.New("lines", bundle.Translator("en"), session.WithPacing(fast))
	s.Open(context.Background())
	t.Cleanup(func() { s.Close(context.Background()) })
	return s
}

func withTimeout(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestNewEngine_MemoryByDefault(t *testing.T) {
	cfg := loadConfig(t)
	engine, cleanup, err := cli.NewEngine(context.Background(), cfg, logging.NewNop())
	require.NoError(t, err)
	defer cleanup()

	s, err := engine.Sessions.Create(context.Background(), "en")
	require.NoError(t, err)
	assert.Equal(t, "en", s.View().Language)
	assert.Nil(t, engine.Maps)
}

func TestNewEngine_Redis(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := loadConfig(t)
	cfg.Redis.Addr = mr.Addr()
	cfg.Redis.Prefix = "test:"

	engine, cleanup, err := cli.NewEngine(context.Background(), cfg, logging.NewNop())
	require.NoError(t, err)
	defer cleanup()

	s, err := engine.Sessions.Create(context.Background(), "nl")
	require.NoError(t, err)
	assert.True(t, mr.Exists("test:"+s.ID()))
}

func TestNewEngine_EncryptedRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := loadConfig(t)
	cfg.Redis.Addr = mr.Addr()
	cfg.Redis.Prefix = "sealed:"
	cfg.Store.EncryptionKey = base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{1}, 32))

	engine, cleanup, err := cli.NewEngine(context.Background(), cfg, logging.NewNop())
	require.NoError(t, err)
	defer cleanup()

	s, err := engine.Sessions.Create(context.Background(), "nl")
	require.NoError(t, err)
	raw, err := mr.Get("sealed:" + s.ID())
	require.NoError(t, err)
	assert.Contains(t, raw, `"sealed"`)
	assert.NotContains(t, raw, `"language":"nl"`)

	engine.Sessions.Shutdown()
	restored, err := engine.Sessions.Get(context.Background(), s.ID())
	require.NoError(t, err)
	assert.Equal(t, "nl", restored.View().Language)
}

func TestNewEngine_InvalidEncryptionKey(t *testing.T) {
	cfg := loadConfig(t)
	cfg.Store.EncryptionKey = "c2hvcnQ="
	_, _, err := cli.NewEngine(context.Background(), cfg, logging.NewNop())
	assert.ErrorContains(t, err, "invalid store encryption")
}

func TestNewEngine_RedisUnavailable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	cfg := loadConfig(t)
	cfg.Redis.Addr = addr
	_, _, err := cli.NewEngine(context.Background(), cfg, logging.NewNop())
	assert.ErrorContains(t, err, "redis unavailable")
}

func TestReconfigure_AppliesPacingToNewSessions(t *testing.T) {
	cfg := loadConfig(t)
	cfg.Pacing = session.Pacing{Initial: time.Hour, Answer: time.Hour, Summary: time.Hour}
	engine, cleanup, err := cli.NewEngine(context.Background(), cfg, logging.NewNop())
	require.NoError(t, err)
	defer cleanup()

	cfg.Pacing = fast
	cli.Reconfigure(engine, cfg)
	s, err := engine.Sessions.Create(context.Background(), "en")
	require.NoError(t, err)
	assert.Eventually(t, func() bool { return !s.View().Pending }, time.Second, 5*time.Millisecond)
}

func TestLineRunner_CompletesLead(t *testing.T) {
	s := newSession(t)
	in := strings.NewReader("1\n2\n1\nno\n2\nRue Neuve 1, Bruxelles\n")
	var out bytes.Buffer

	done, err := cli.NewLineRunner(in, &out, tui.PlainRenderer).Run(withTimeout(t), s)
	require.NoError(t, err)
	assert.True(t, done)

	text := out.String()
	assert.Contains(t, text, "1. Dead battery")
	assert.Contains(t, text, "Rue Neuve 1, Bruxelles")
	assert.Contains(t, text, "(https://wa.me/32479890089?text=")
	assert.Equal(t, domain.ProblemBattery, s.Answers().Problem)
}

func TestLineRunner_WaitsForSummaryAfterInputEnds(t *testing.T) {
	bundle, err := locale.NewBundle()
	require.NoError(t, err)
	slowSummary := fast
	slowSummary.Summary = 150 * time.Millisecond
	s := session.New("slow-summary", bundle.Translator("en"), session.WithPacing(slowSummary))
	s.Open(context.Background())
	t.Cleanup(func() { s.Close(context.Background()) })

	var out bytes.Buffer
	in := strings.NewReader("battery\ncity\nmanual\nno\n2\nRue Neuve 1, Bruxelles\n")
	done, err := cli.NewLineRunner(in, &out, nil).Run(withTimeout(t), s)
	require.NoError(t, err)
	assert.True(t, done)
	assert.Equal(t, domain.StepSummaryReveal, s.View().Step)
	assert.Contains(t, out.String(), "https://wa.me/32479890089?text=")
}

func TestLineRunner_InvalidInputReprompts(t *testing.T) {
	s := newSession(t)
	in := strings.NewReader("banana\nq\n")
	var out bytes.Buffer

	done, err := cli.NewLineRunner(in, &out, nil).Run(withTimeout(t), s)
	require.NoError(t, err)
	assert.False(t, done)
	assert.Contains(t, out.String(), "! ")
	assert.Equal(t, 2, strings.Count(out.String(), "1. Dead battery"))
}

func TestLineRunner_EndOfInput(t *testing.T) {
	s := newSession(t)
	_, err := cli.NewLineRunner(strings.NewReader(""), io.Discard, nil).Run(withTimeout(t), s)
	assert.ErrorIs(t, err, io.EOF)
	assert.NoError(t, cli.HandleExecutionError(err))
}

func TestResolveLine(t *testing.T) {
	a := &domain.Affordance{
		Kind: domain.AffordanceOptions,
		Options: []domain.Option{
			{Value: "battery", Label: "Dead battery"},
			{Value: "flat", Label: "Flat tire"},
		},
	}
	tests := []struct {
		name string
		aff  *domain.Affordance
		line string
		want string
	}{
		{"number", a, "2", "flat"},
		{"label", a, " dead BATTERY ", "battery"},
		{"value", a, "FLAT", "flat"},
		{"out of range", a, "3", "3"},
		{"free text", a, "Peugeot 208", "Peugeot 208"},
		{"no affordance", nil, " x ", "x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cli.ResolveLine(tt.aff, tt.line))
		})
	}
}

func TestExecute_LineMode(t *testing.T) {
	cfg := loadConfig(t)
	var out bytes.Buffer
	err := cli.Execute(withTimeout(t), cfg, cli.RunOptions{
		Language: "en",
		Position: &domain.Coordinates{Lat: 50.85, Lng: 4.35},
		In:       strings.NewReader("battery\n2\n1\nno\n1\n"),
		Out:      &out,
	}, logging.NewNop())
	require.NoError(t, err)

	text := out.String()
	assert.Contains(t, text, "Problem: Dead battery")
	assert.Contains(t, text, ">>> Send it: https://wa.me/32479890089?text=")
}

func TestExecute_QuitBeforeSummary(t *testing.T) {
	cfg := loadConfig(t)
	var out bytes.Buffer
	err := cli.Execute(withTimeout(t), cfg, cli.RunOptions{
		Language: "en",
		In:       strings.NewReader("quit\n"),
		Out:      &out,
	}, logging.NewNop())
	require.NoError(t, err)
	assert.Contains(t, out.String(), ">>> Session ended before the summary.")
}

func TestHandleExecutionError(t *testing.T) {
	assert.NoError(t, cli.HandleExecutionError(nil))
	assert.NoError(t, cli.HandleExecutionError(context.Canceled))
	assert.Error(t, cli.HandleExecutionError(io.ErrUnexpectedEOF))
}
