package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// Run draws conv until the visitor quits or ctx is done. It reports whether the
// conversation reached its summary.
func Run(ctx context.Context, conv Conversation, opts []ModelOption, progOpts ...tea.ProgramOption) (bool, error) {
	m := NewModel(ctx, conv, opts...)
	detach := m.Listen()
	defer detach()

	progOpts = append([]tea.ProgramOption{tea.WithContext(ctx)}, progOpts...)
	final, err := tea.NewProgram(m, progOpts...).Run()
	if err != nil && ctx.Err() == nil {
		return false, fmt.Errorf("terminal wizard failed: %w", err)
	}
	if fm, ok := final.(*Model); ok {
		return fm.Done(), nil
	}
	return m.Done(), nil
}
