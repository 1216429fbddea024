// Package styles provides Lip Gloss styles for bundlecheck's terminal output.
package styles

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Color palette.
var (
	Warning = lipgloss.Color("#F59E0B") // Amber
	Error   = lipgloss.Color("#EF4444") // Red
)

// Printer writes styled text to a single output. It owns a renderer bound to
// that output, so colour is only emitted when the output is a terminal and
// NO_COLOR is unset.
type Printer struct {
	out      io.Writer
	warning  lipgloss.Style
	errStyle lipgloss.Style
}

// NewPrinter creates a Printer for out.
func NewPrinter(out io.Writer) *Printer {
	r := lipgloss.NewRenderer(out)
	return &Printer{
		out:      out,
		warning:  r.NewStyle().Foreground(Warning),
		errStyle: r.NewStyle().Foreground(Error).Bold(true),
	}
}

// Println writes an unstyled line.
func (p *Printer) Println(a ...any) {
	fmt.Fprintln(p.out, a...)
}

// Warn writes text in the warning colour without a trailing newline.
func (p *Printer) Warn(text string) {
	fmt.Fprint(p.out, p.warning.Render(text))
}

// Warnln writes text in the warning colour followed by a newline.
func (p *Printer) Warnln(text string) {
	fmt.Fprintln(p.out, renderLines(p.warning, text))
}

// Errorln writes text in the error colour followed by a newline.
func (p *Printer) Errorln(text string) {
	fmt.Fprintln(p.out, renderLines(p.errStyle, text))
}

// renderLines styles each line on its own; Render pads multi-line blocks to
// a common width.
func renderLines(style lipgloss.Style, text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = style.Render(line)
		}
	}
	return strings.Join(lines, "\n")
}
