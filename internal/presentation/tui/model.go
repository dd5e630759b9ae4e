// Package tui draws a wizard session in the terminal with bubbletea.
package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/helpcar/quotechat/pkg/domain"
	"github.com/helpcar/quotechat/pkg/session"
)

// Conversation is the session surface the terminal wizard drives.
type Conversation interface {
	View() domain.ConversationView
	Dispatch(ctx context.Context, raw string) error
	Subscribe(l session.Listener) func()
}

// ViewMsg carries a fresh view into the model.
type ViewMsg domain.ConversationView

type dispatchedMsg struct{ err error }

// Model is the bubbletea model of one conversation.
type Model struct {
	ctx    context.Context
	conv   Conversation
	views  chan domain.ConversationView
	render Renderer

	title  string
	status string

	view   domain.ConversationView
	cursor int
	input  textinput.Model
	spin   spinner.Model
	err    error
	width  int
	done   bool
}

type ModelOption func(*Model)

// WithHeader sets the title and availability line drawn above the conversation.
func WithHeader(title, status string) ModelOption {
	return func(m *Model) { m.title, m.status = title, status }
}

// WithRenderer replaces the markdown renderer used for the summary card.
func WithRenderer(r Renderer) ModelOption {
	return func(m *Model) { m.render = r }
}

// NewModel builds the model. Call Listen before starting the program so that views
// published by conv reach it.
func NewModel(ctx context.Context, conv Conversation, opts ...ModelOption) *Model {
	in := textinput.New()
	in.CharLimit = 256
	in.Prompt = "> "

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(accent)

	m := &Model{
		ctx:    ctx,
		conv:   conv,
		views:  make(chan domain.ConversationView, 16),
		render: PlainRenderer,
		input:  in,
		spin:   s,
		width:  80,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.setView(conv.View())
	return m
}

// Listen subscribes the model to its conversation and returns the detach function.
func (m *Model) Listen() func() {
	return m.conv.Subscribe(func(v domain.ConversationView) {
		select {
		case m.views <- v:
		default:
		}
	})
}

// Done reports whether the summary has been reached or the session closed.
func (m *Model) Done() bool { return m.done }

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, m.wait())
}

func (m *Model) wait() tea.Cmd {
	return func() tea.Msg {
		select {
		case v := <-m.views:
			return ViewMsg(v)
		case <-m.ctx.Done():
			return tea.Quit()
		}
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = max(msg.Width-4, 10)
		return m, nil

	case ViewMsg:
		m.setView(domain.ConversationView(msg))
		return m, m.wait()

	case dispatchedMsg:
		m.err = msg.err
		m.setView(m.conv.View())
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		return m, tea.Quit
	}
	if m.done {
		if msg.Type == tea.KeyEnter || msg.String() == "q" {
			return m, tea.Quit
		}
		return m, nil
	}

	a := m.view.Affordance
	if a == nil || m.view.Pending {
		return m, nil
	}
	opts := a.Options
	typing := acceptsText(a.Kind)

	switch msg.Type {
	case tea.KeyUp:
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	case tea.KeyDown:
		if m.cursor < len(opts)-1 {
			m.cursor++
		}
		return m, nil
	case tea.KeyEnter:
		if typing && strings.TrimSpace(m.input.Value()) != "" {
			value := m.input.Value()
			m.input.Reset()
			return m, m.dispatch(value)
		}
		if len(opts) > 0 {
			return m, m.dispatch(opts[m.cursor].Value)
		}
		return m, nil
	}

	if !typing {
		if n, err := strconv.Atoi(msg.String()); err == nil && n >= 1 && n <= len(opts) {
			m.cursor = n - 1
			return m, m.dispatch(opts[n-1].Value)
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) dispatch(value string) tea.Cmd {
	conv, ctx := m.conv, m.ctx
	return func() tea.Msg {
		return dispatchedMsg{err: conv.Dispatch(ctx, value)}
	}
}

func (m *Model) setView(v domain.ConversationView) {
	if v.Step != m.view.Step || affordanceKind(v.Affordance) != affordanceKind(m.view.Affordance) {
		m.cursor = 0
		m.input.Reset()
	}
	m.view = v
	if v.Affordance != nil && acceptsText(v.Affordance.Kind) {
		m.input.Placeholder = v.Affordance.Placeholder
		m.input.Focus()
	} else {
		m.input.Blur()
	}
	if v.Status == domain.StatusClosed || (v.Affordance != nil && v.Affordance.Summary != nil) {
		m.done = true
	}
}

func (m *Model) View() string {
	var b strings.Builder
	if m.title != "" {
		b.WriteString(headerStyle.Render(m.title))
		if m.status != "" {
			b.WriteString("  " + statusStyle.Render("● "+m.status))
		}
		b.WriteString("\n")
	}
	if m.view.Index >= 0 && m.view.Index < m.view.Total {
		b.WriteString(progressStyle.Render(fmt.Sprintf("%d / %d", m.view.Index+1, m.view.Total)))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	width := max(m.width-4, 20)
	for _, t := range m.view.Turns {
		switch {
		case t.Typing:
			b.WriteString(m.spin.View() + "\n")
		case t.Speaker == domain.SpeakerUser:
			line := userStyle.Render(t.Text)
			b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Right, line) + "\n")
		default:
			b.WriteString(botStyle.Width(min(width, 60)).Render(t.Text) + "\n")
		}
	}

	if a := m.view.Affordance; a != nil && !m.view.Pending {
		b.WriteString("\n")
		b.WriteString(m.affordanceView(a))
	}
	if m.err != nil {
		b.WriteString("\n" + errorStyle.Render(m.err.Error()) + "\n")
	}
	return b.String()
}

func (m *Model) affordanceView(a *domain.Affordance) string {
	var b strings.Builder
	if a.Kind == domain.AffordanceSummary && a.Summary != nil {
		out, err := m.render(SummaryMarkdown(a.Summary))
		if err != nil {
			out = SummaryMarkdown(a.Summary)
		}
		b.WriteString(out)
		b.WriteString("\n" + hintStyle.Render("enter to quit") + "\n")
		return b.String()
	}
	if acceptsText(a.Kind) {
		b.WriteString(m.input.View() + "\n")
		if len(a.Options) > 0 && a.Separator != "" {
			b.WriteString(hintStyle.Render(a.Separator) + "\n")
		}
	}
	for i, o := range a.Options {
		label := fmt.Sprintf("%d. %s", i+1, o.Label)
		if o.Hint != "" {
			label += " " + hintStyle.Render(o.Hint)
		}
		if i == m.cursor {
			b.WriteString(selectedStyle.Render("› "+label) + "\n")
		} else {
			b.WriteString(optionStyle.Render(label) + "\n")
		}
	}
	for _, note := range []string{a.Privacy, a.Hint} {
		if note != "" {
			b.WriteString(hintStyle.Render(note) + "\n")
		}
	}
	return b.String()
}

func acceptsText(k domain.AffordanceKind) bool {
	switch k {
	case domain.AffordanceText, domain.AffordanceAddressEntry, domain.AffordanceDestinationChooser:
		return true
	}
	return false
}

func affordanceKind(a *domain.Affordance) domain.AffordanceKind {
	if a == nil {
		return ""
	}
	return a.Kind
}
