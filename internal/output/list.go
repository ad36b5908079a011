// Package output renders human-facing listings.
package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/specialistvlad/prune/internal/config"
	"github.com/specialistvlad/prune/internal/taskname"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("244"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	defaultStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("34")).Bold(true)

	kindStyles = map[taskname.Kind]lipgloss.Style{
		taskname.Virtual:  lipgloss.NewStyle().Foreground(lipgloss.Color("33")),
		taskname.Template: lipgloss.NewStyle().Foreground(lipgloss.Color("62")),
	}
)

// DisableColor strips all styling from listing output.
func DisableColor() {
	headerStyle = lipgloss.NewStyle()
	dimStyle = lipgloss.NewStyle()
	defaultStyle = lipgloss.NewStyle()
	kindStyles = map[taskname.Kind]lipgloss.Style{}
}

// TaskList renders the declared tasks of m, in declaration order. The
// default task, if any, is marked with '*'. defaultTask is the normalized
// name the session resolved, which may differ from the declared spelling.
func TaskList(w io.Writer, m *config.Model, defaultTask string) {
	if len(m.Tasks) == 0 {
		fmt.Fprintln(w, dimStyle.Render("No tasks declared."))
		return
	}

	const pad = 2
	nameW, kindW, needsW := 6, 6, 7
	for _, t := range m.Tasks {
		nameW = max(nameW, len(t.Name)+pad+2)
		kindW = max(kindW, len(taskname.KindOf(t.Name).String())+pad)
		needsW = max(needsW, min(len(strings.Join(t.Needs, " "))+pad, 40)) //nolint:mnd // max needs column width
	}

	header := fmt.Sprintf("%-*s %-*s %-*s %s", nameW, "TASK", kindW, "KIND", needsW, "NEEDS", "DESCRIPTION")
	fmt.Fprintln(w, headerStyle.Render(strings.TrimRight(header, " ")))

	for _, t := range m.Tasks {
		kind := taskname.KindOf(t.Name)

		marker := "  "
		if t.Name == defaultTask || t.Default {
			marker = "* "
		}
		name := fmt.Sprintf("%-*s", nameW, marker+t.Name)
		if marker != "  " {
			name = defaultStyle.Render(name)
		}

		kindCol := fmt.Sprintf("%-*s", kindW, kind.String())
		if style, ok := kindStyles[kind]; ok {
			kindCol = style.Render(kindCol)
		}

		needs := strings.Join(t.Needs, " ")
		if len(needs) > needsW-pad {
			needs = needs[:needsW-pad-3] + "..."
		}
		needsCol := fmt.Sprintf("%-*s", needsW, needs)

		line := fmt.Sprintf("%s %s %s %s", name, kindCol, needsCol, dimStyle.Render(t.Description))
		fmt.Fprintln(w, strings.TrimRight(line, " "))
	}
}
