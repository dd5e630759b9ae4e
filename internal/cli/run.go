package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/helpcar/quotechat"
	"github.com/helpcar/quotechat/internal/config"
	"github.com/helpcar/quotechat/internal/presentation/tui"
	"github.com/helpcar/quotechat/pkg/adapters/geo"
	"github.com/helpcar/quotechat/pkg/domain"
	"github.com/helpcar/quotechat/pkg/locale"
	"github.com/helpcar/quotechat/pkg/session"
)

// RunOptions configures an interactive terminal session.
type RunOptions struct {
	// Language overrides the configured language for this session.
	Language string
	// Position answers "use my location"; without it the wizard falls back to address entry.
	Position *domain.Coordinates
	// Plain forces line mode even on a terminal.
	Plain bool
	Debug bool

	In  io.Reader
	Out io.Writer
}

// Execute runs one wizard session in the terminal: the full-screen wizard on a TTY,
// line mode otherwise. The composed message and link are printed once the summary
// is reached.
func Execute(ctx context.Context, cfg *config.Config, opts RunOptions, logger *slog.Logger) error {
	if opts.In == nil {
		opts.In = os.Stdin
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}

	var extra []quotechat.Option
	if opts.Position != nil {
		extra = append(extra, quotechat.WithSessionOptions(session.WithLocator(geo.Static{Coordinates: *opts.Position})))
	}
	engine, cleanup, err := NewEngine(ctx, cfg, logger, extra...)
	if err != nil {
		return err
	}
	defer cleanup()

	lang := opts.Language
	if lang == "" {
		lang = engine.Bundle.Match(envLanguage(), cfg.Language)
	}
	sess, err := engine.Sessions.Create(ctx, lang)
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	logger.Debug("Session started", "session_id", sess.ID(), "language", sess.View().Language)
	defer func() {
		if err := engine.Sessions.Delete(context.Background(), sess.ID()); err != nil {
			logger.Warn("Failed to delete session", "session_id", sess.ID(), "err", err)
		}
	}()

	tty := opts.In == os.Stdin && opts.Out == os.Stdout && IsTerminal(os.Stdin) && IsTerminal(os.Stdout)
	var done bool
	switch {
	case tty && !opts.Plain:
		done, err = runFullScreen(ctx, engine, sess)
	case tty:
		done, err = NewLineRunner(opts.In, opts.Out, tui.NewRenderer(76)).Run(ctx, sess)
	default:
		done, err = NewLineRunner(opts.In, opts.Out, tui.PlainRenderer).Run(ctx, sess)
	}
	if err != nil {
		return err
	}
	if !done {
		printSystemMessage(opts.Out, "Session ended before the summary.")
		return nil
	}
	fmt.Fprintf(opts.Out, "\n%s\n\n", sess.Message())
	printSystemMessage(opts.Out, "Send it: %s", sess.Link())
	return nil
}

func runFullScreen(ctx context.Context, engine *quotechat.Engine, sess *session.Session) (bool, error) {
	tr := engine.Bundle.Translator(sess.View().Language)
	return tui.Run(ctx, sess, []tui.ModelOption{
		tui.WithHeader(tr.Translate(locale.KeyHeaderTitle), tr.Translate(locale.KeyHeaderStatus)),
		tui.WithRenderer(tui.NewRenderer(76)),
	})
}

// envLanguage reads the POSIX locale ("nl_BE.UTF-8") as a language tag ("nl-BE").
func envLanguage() string {
	for _, key := range []string{"LC_ALL", "LC_MESSAGES", "LANG"} {
		v := os.Getenv(key)
		if v == "" || v == "C" || v == "POSIX" {
			continue
		}
		if i := strings.IndexAny(v, ".@"); i >= 0 {
			v = v[:i]
		}
		return strings.ReplaceAll(v, "_", "-")
	}
	return ""
}
