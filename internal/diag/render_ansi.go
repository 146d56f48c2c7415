package diag

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	errorStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	warningStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	hintStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	locStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Bold(true)
	codeStyle    = lipgloss.NewStyle().Faint(true)
	noteStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Italic(true)
)

func styleFor(sev Severity) lipgloss.Style {
	switch sev {
	case Error:
		return errorStyle
	case Warning:
		return warningStyle
	case Info:
		return infoStyle
	default:
		return hintStyle
	}
}

// RenderANSI renders one diagnostic as ANSI-colored text for a terminal.
func RenderANSI(d Diagnostic) string {
	var b strings.Builder
	loc := locStyle.Render(withFileLoc(d))
	sev := styleFor(d.Severity).Render(d.Severity.String())
	b.WriteString(loc)
	b.WriteString(": ")
	b.WriteString(sev)
	if d.Code != "" {
		b.WriteString(codeStyle.Render("[" + d.Code + "]"))
	}
	b.WriteString(": ")
	b.WriteString(d.Message)
	for _, r := range d.Related {
		b.WriteString("\n  ")
		b.WriteString(noteStyle.Render("note: " + r.Message))
	}
	if d.Fix != nil {
		b.WriteString("\n  ")
		b.WriteString(noteStyle.Render("fix: " + d.Fix.Description))
	}
	return b.String()
}

// RenderAllANSI renders a full diagnostic list, joining the rendered
// blocks with single newlines.
func RenderAllANSI(diagnostics []Diagnostic) string {
	parts := make([]string, len(diagnostics))
	for i, d := range diagnostics {
		parts[i] = RenderANSI(d)
	}
	return strings.Join(parts, "\n")
}

func withFileLoc(d Diagnostic) string {
	return d.File + ":" + strconv.Itoa(int(d.Location.Line)) + ":" + strconv.Itoa(int(d.Location.Column))
}
