package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"quicktui/internal/inspect"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	logBox      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder(), true, false, false, false).BorderForeground(lipgloss.Color("240"))
)

// View implements tea.Model.
func (m *Model) View() string {
	if m.phase == phaseExiting {
		return ""
	}
	var b strings.Builder

	b.WriteString(headerStyle.Render("quicktui"))
	b.WriteString(dimStyle.Render("  " + m.opts.Dir))
	if m.action != nil {
		b.WriteString("  " + m.spinner.View() + fmt.Sprintf(" %s %s", m.action.kind, m.action.id))
	}
	b.WriteByte('\n')

	switch {
	case m.loadErr != nil:
		b.WriteString(errStyle.Render(fmt.Sprintf("Cannot read %s: %v", m.opts.Dir, m.loadErr)))
		b.WriteString("\n" + dimStyle.Render("Press R to rescan.") + "\n")
	case len(m.vms) == 0:
		b.WriteString(fmt.Sprintf("No VMs found in %s\n", m.opts.Dir))
	default:
		b.WriteString(m.list.View())
		b.WriteByte('\n')
		b.WriteString(m.detail())
		b.WriteByte('\n')
	}

	if m.notice != "" {
		if m.noticeErr {
			b.WriteString(errStyle.Render("Error: " + m.notice))
		} else {
			b.WriteString(warnStyle.Render(m.notice))
		}
	}
	b.WriteByte('\n')

	b.WriteString(logBox.Render(dimStyle.Render("Logs") + "\n" + m.logs.View()))
	b.WriteByte('\n')
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m *Model) detail() string {
	vm, ok := m.selected()
	if !ok {
		return ""
	}
	st, _ := m.tracker.Get(vm.ID)

	status := st.Status.String()
	switch st.Status {
	case inspect.StatusRunning:
		status = okStyle.Render(status)
	case inspect.StatusUnknown:
		status = errStyle.Render(status)
	case inspect.StatusStarting, inspect.StatusStopping:
		status = warnStyle.Render(status)
	}

	parts := []string{vm.ID, status}
	if st.Conn != nil {
		parts = append(parts, fmt.Sprintf("%s (%s)", st.Conn.URL(), st.Conn.Source))
	}
	if len(st.PIDs) > 0 {
		pids := make([]string, 0, len(st.PIDs))
		for _, p := range st.PIDs {
			pids = append(pids, fmt.Sprint(p))
		}
		parts = append(parts, "pid "+strings.Join(pids, ","))
	}
	if !st.Since.IsZero() {
		parts = append(parts, "since "+st.Since.Format(time.Kitchen))
	}
	if st.Err != nil {
		parts = append(parts, errStyle.Render(st.Err.Error()))
	}
	return dimStyle.Render(strings.Join(parts, " · "))
}
