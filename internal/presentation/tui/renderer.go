package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/helpcar/quotechat/pkg/domain"
)

// Renderer turns markdown into terminal output.
type Renderer func(string) (string, error)

// NewRenderer returns a glamour renderer wrapped at width. It falls back to the raw
// markdown when glamour cannot be initialised.
func NewRenderer(width int) Renderer {
	opts := []glamour.TermRendererOption{glamour.WithAutoStyle()}
	if width > 0 {
		opts = append(opts, glamour.WithWordWrap(width))
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return PlainRenderer
	}
	return r.Render
}

// PlainRenderer returns markdown unchanged.
func PlainRenderer(md string) (string, error) { return md, nil }

// SummaryMarkdown renders the summary card as markdown.
func SummaryMarkdown(s *domain.Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## %s\n\n", s.Title)
	if s.Company != "" {
		fmt.Fprintf(&b, "_%s_\n\n", s.Company)
	}
	rows := append(append([]domain.SummaryRow{}, s.Rows...), s.Metrics...)
	if len(rows) > 0 {
		b.WriteString("| | |\n|---|---|\n")
		for _, r := range rows {
			fmt.Fprintf(&b, "| **%s** | %s |\n", escapeCell(r.Label), escapeCell(r.Value))
		}
		b.WriteString("\n")
	}
	if s.TrustTitle != "" {
		fmt.Fprintf(&b, "> **%s** %s\n\n", s.TrustTitle, s.TrustMessage)
	}
	if s.Link != "" {
		fmt.Fprintf(&b, "[%s](%s)\n", s.CTA, s.Link)
	}
	return b.String()
}

func escapeCell(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, "|", `\|`), "\n", " ")
}
