package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the quotechat banner and version to w.
func PrintBanner(w io.Writer, version string) {
	out := termenv.NewOutput(w)
	p := out.ColorProfile()
	lines := []struct {
		text  string
		color string
	}{
		{`   ___              _        ___ _         _   `, "#fbbf24"},
		{`  / _ \ _  _ ___ __| |_ ___ / __| |_  __ _| |_ `, "#f59e0b"},
		{` | (_) | || / _ \ _|  _/ -_) (__| ' \/ _' |  _|`, "#f97316"},
		{`  \__\_\\_,_\___\__|\__\___|\___|_||_\__,_|\__|`, "#ef4444"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, out.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w, out.String("  roadside assistance quotes  "+version).Faint())
	fmt.Fprintln(w)
}
