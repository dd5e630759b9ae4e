package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/helpcar/quotechat/internal/presentation/tui"
	"github.com/helpcar/quotechat/pkg/domain"
)

// LineRunner plays a conversation over plain lines of text, for pipes and dumb
// terminals. Options are numbered; a number, a label or free text answers them.
type LineRunner struct {
	in     io.Reader
	out    io.Writer
	render tui.Renderer

	printed  []string
	prompted string
}

func NewLineRunner(in io.Reader, out io.Writer, render tui.Renderer) *LineRunner {
	if render == nil {
		render = tui.PlainRenderer
	}
	return &LineRunner{in: in, out: out, render: render}
}

// Run drives conv until the summary is shown, the session closes, the input ends while
// an answer is expected, or the visitor types q. It reports whether the summary was
// reached.
func (r *LineRunner) Run(ctx context.Context, conv tui.Conversation) (bool, error) {
	changed := make(chan struct{}, 1)
	detach := conv.Subscribe(func(domain.ConversationView) {
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	defer detach()

	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		sc := bufio.NewScanner(r.in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
		if err := sc.Err(); err != nil {
			readErr <- err
			return
		}
		readErr <- io.EOF
	}()

	v := conv.View()
	for {
		r.show(v)
		if v.Status == domain.StatusClosed {
			return false, nil
		}
		if v.Affordance != nil && v.Affordance.Summary != nil {
			return true, nil
		}
		// Nothing to answer: a prompt is pending or the final message waits for the
		// summary timer. Queued input and end of input wait too.
		if v.Pending || v.Affordance == nil {
			select {
			case <-changed:
				v = conv.View()
			case <-ctx.Done():
				return false, ctx.Err()
			}
			continue
		}

		select {
		case <-changed:
			v = conv.View()
		case <-ctx.Done():
			return false, ctx.Err()
		case err := <-readErr:
			return false, err
		case line := <-lines:
			if isQuit(line) {
				return false, nil
			}
			if strings.TrimSpace(line) == "" {
				r.prompted = ""
				v = conv.View()
				continue
			}
			if err := conv.Dispatch(ctx, ResolveLine(v.Affordance, line)); err != nil {
				fmt.Fprintf(r.out, "! %v\n", err)
				r.prompted = ""
			}
			v = conv.View()
		}
	}
}

// show prints bot messages not printed yet, then the controls when they changed.
func (r *LineRunner) show(v domain.ConversationView) {
	texts := v.BotTexts()
	common := 0
	for common < len(r.printed) && common < len(texts) && r.printed[common] == texts[common] {
		common++
	}
	for _, t := range texts[common:] {
		fmt.Fprintln(r.out, t)
	}
	r.printed = texts

	a := v.Affordance
	if a == nil || v.Pending {
		return
	}
	sig := fmt.Sprintf("%s/%s/%d", v.Step, a.Kind, len(a.Options))
	if sig == r.prompted {
		return
	}
	r.prompted = sig
	r.controls(a)
}

func (r *LineRunner) controls(a *domain.Affordance) {
	if a.Summary != nil {
		md := tui.SummaryMarkdown(a.Summary)
		out, err := r.render(md)
		if err != nil {
			out = md
		}
		fmt.Fprintln(r.out, out)
		return
	}
	for i, o := range a.Options {
		line := fmt.Sprintf("  %d. %s", i+1, o.Label)
		if o.Hint != "" {
			line += " (" + o.Hint + ")"
		}
		fmt.Fprintln(r.out, line)
	}
	if a.Placeholder != "" {
		fmt.Fprintf(r.out, "  [%s]\n", a.Placeholder)
	}
	for _, note := range []string{a.Privacy, a.Hint} {
		if note != "" {
			fmt.Fprintf(r.out, "  %s\n", note)
		}
	}
	fmt.Fprint(r.out, "> ")
}

// ResolveLine maps a typed line to a dispatchable input: an option number, an option
// label (case-insensitive), or the trimmed text itself.
func ResolveLine(a *domain.Affordance, line string) string {
	line = strings.TrimSpace(line)
	if a == nil {
		return line
	}
	if n, err := strconv.Atoi(line); err == nil && n >= 1 && n <= len(a.Options) {
		return a.Options[n-1].Value
	}
	for _, o := range a.Options {
		if strings.EqualFold(o.Label, line) || strings.EqualFold(o.Value, line) {
			return o.Value
		}
	}
	return line
}

func isQuit(line string) bool {
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "q", "quit", "exit":
		return true
	}
	return false
}
