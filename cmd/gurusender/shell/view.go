package shell

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

func (m Model) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	if m.dialog != nil {
		return m.renderDialog()
	}

	switch m.mode {
	case pickerView:
		title := m.styles.Header.Render(" Select a spreadsheet ")
		hint := m.styles.Muted.Render(" enter: choose  esc: back")
		return lipgloss.JoinVertical(lipgloss.Left, title, hint, "", m.picker.View())
	case settingsView:
		return m.renderSettings()
	case helpView:
		footer := m.styles.Footer.Render("↑/↓ scroll  esc: back")
		return lipgloss.JoinVertical(lipgloss.Left, m.helpView.View(), footer)
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.renderHeader(),
		m.renderInputs(),
		m.renderProgress(),
		m.styles.Panel.Render(m.logView.View()),
		m.renderFooter(),
	)
}

func (m Model) renderHeader() string {
	title := m.styles.Header.Render(" gurusender ")

	var status string
	switch {
	case m.running || m.preparing:
		status = lipgloss.JoinHorizontal(lipgloss.Center, m.spinner.View(), " ", m.styles.Badge.Render(m.status))
	case m.status == "failed":
		status = m.styles.Error.Render(m.status)
	default:
		status = m.styles.Success.Render(m.status)
	}

	line := lipgloss.JoinHorizontal(lipgloss.Center, title, "  ", status)
	return lipgloss.JoinVertical(lipgloss.Left, line, m.styles.RenderDivider(m.width))
}

func (m Model) renderInputs() string {
	fileBox, msgBox := m.styles.Blurred, m.styles.Blurred
	if m.focus == focusFile {
		fileBox = m.styles.Focused
	} else {
		msgBox = m.styles.Focused
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.styles.Label.Render("Contacts file"),
		fileBox.Render(m.fileInput.View()),
		m.styles.Label.Render("Message"),
		msgBox.Render(m.message.View()),
	)
}

func (m Model) renderProgress() string {
	p := m.last
	counts := fmt.Sprintf("Total %d  Sent %d  Failed %d  Skipped %d", p.Total, p.Sent, p.Failed, p.Skipped)
	if m.cancelling {
		counts += "  " + m.styles.Warning.Render("cancelling")
	}
	return lipgloss.JoinHorizontal(
		lipgloss.Center,
		m.progress.ViewAs(p.Fraction()),
		"  ",
		m.styles.Muted.Render(counts),
	)
}

func (m Model) renderFooter() string {
	keys := []struct{ key, desc string }{
		{"tab", "switch"},
		{"ctrl+o", "open"},
		{"ctrl+r", "run"},
		{"ctrl+x", "cancel"},
		{"ctrl+s", "words"},
		{"f1", "help"},
		{"ctrl+c", "quit"},
	}
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = m.styles.KeyHint.Render(k.key) + " " + m.styles.Muted.Render(k.desc)
	}
	return m.styles.Footer.Render(strings.Join(parts, "  "))
}

func (m Model) renderSettings() string {
	s := m.settings
	rows := []string{m.settings.list.View()}
	if s.adding {
		rows = append(rows, m.styles.Focused.Render(s.input.View()))
	}
	if s.status != "" {
		rows = append(rows, m.styles.Info.Render(s.status))
	}
	hint := "a add  d delete  w save  esc back"
	if s.adding {
		hint = "enter confirm  esc cancel"
	}
	rows = append(rows, m.styles.Footer.Render(hint))
	return m.styles.Panel.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (m Model) renderDialog() string {
	title := m.styles.Title
	if m.dialog.isError {
		title = m.styles.Error
	}
	content := lipgloss.JoinVertical(
		lipgloss.Left,
		title.Render(m.dialog.title),
		"",
		m.styles.Body.Render(m.dialog.body),
		"",
		m.styles.Muted.Render("enter to continue"),
	)
	return lipgloss.Place(
		m.width,
		m.height,
		lipgloss.Center,
		lipgloss.Center,
		m.styles.Dialog.Render(content),
	)
}
