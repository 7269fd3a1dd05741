package report

import (
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true)

	locationStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#BD93F9"))

	missingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFB86C"))

	unexpectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF5555"))

	mismatchStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8BE9FD"))

	passStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#50FA7B"))
)

// ColorAuto reports whether stdout is a terminal.
func ColorAuto() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}

// Styled renders the outcome for humans. It is the plain report when color is off.
func Styled(o Outcome, color bool) string {
	if o.Passed {
		return apply(color, passStyle, "verification passed")
	}

	var buf strings.Builder
	buf.WriteString(apply(color, headerStyle, o.Header()))
	for _, d := range o.Discrepancies {
		loc, _ := strings.CutSuffix(d.String(), d.Text)

		var style lipgloss.Style
		switch d.Kind {
		case KindMissing:
			style = missingStyle
		case KindUnexpected:
			style = unexpectedStyle
		default:
			style = mismatchStyle
		}

		buf.WriteByte('\n')
		buf.WriteString(apply(color, locationStyle, strings.TrimSuffix(loc, " ")))
		buf.WriteByte(' ')
		buf.WriteString(apply(color, style, d.Text))
	}

	return buf.String()
}

func apply(color bool, style lipgloss.Style, text string) string {
	if color {
		return style.Render(text)
	}
	return text
}
