package shell

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"gurusender/internal/sender"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.opts.Runner.Cancel()
			return m, tea.Quit
		}
		if m.dialog != nil {
			switch msg.String() {
			case "enter", "esc", " ":
				m.dialog = nil
			}
			return m, nil
		}
		switch m.mode {
		case pickerView:
			return m.updatePicker(msg)
		case settingsView:
			return m.updateSettings(msg)
		case helpView:
			switch msg.String() {
			case "esc", "q", "f1":
				m.mode = mainView
				return m, nil
			}
			var cmd tea.Cmd
			m.helpView, cmd = m.helpView.Update(msg)
			return m, cmd
		}
		return m.handleMainKey(msg)

	case preparedMsg:
		return m.startRun(msg)

	case eventMsg:
		m.applyEvent(sender.Event(msg))
		return m, m.listenEvents()

	case eventsClosedMsg:
		m.events = nil
		return m, nil

	case runDoneMsg:
		m.finishRun(msg)
		return m, nil

	case logLineMsg:
		m.appendLog(string(msg))
		return m, m.listenLogs()

	case WordsReloadedMsg:
		if m.mode == settingsView {
			return m, m.refreshWords()
		}
		return m, nil

	case spinner.TickMsg:
		if !m.running && !m.preparing {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	// Directory listings and cursor blinks.
	var cmd tea.Cmd
	switch {
	case m.mode == pickerView:
		m.picker, cmd = m.picker.Update(msg)
	case m.focus == focusFile:
		m.fileInput, cmd = m.fileInput.Update(msg)
	default:
		m.message, cmd = m.message.Update(msg)
	}
	return m, cmd
}

func (m *Model) resize(w, h int) {
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	m.width, m.height = w, h

	inner := max(w-6, 10)
	m.fileInput.Width = inner
	m.message.SetWidth(inner)
	m.progress.Width = max(w-40, 10)
	m.logView.Width = max(w-4, 10)
	m.logView.Height = max(h-22, 3)
	m.helpView.Width = max(w-4, 10)
	m.helpView.Height = max(h-4, 5)
	m.picker.Height = max(h-8, 5)
	m.settings.list.SetSize(max(w-8, 20), max(h-12, 5))
}

func (m Model) handleMainKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+o":
		return m.openPicker()
	case "ctrl+r":
		if m.running || m.preparing {
			m.status = "a run is already in progress"
			return m, nil
		}
		return m.prepare()
	case "ctrl+x":
		if m.running {
			m.cancelling = true
			m.status = "cancelling..."
			m.opts.Runner.Cancel()
		}
		return m, nil
	case "ctrl+s":
		return m.openSettings()
	case "f1":
		m.mode = helpView
		m.helpView.GotoTop()
		return m, nil
	case "tab", "shift+tab":
		return m.toggleFocus()
	case "enter":
		if m.focus == focusFile {
			return m.openPicker()
		}
	}

	var cmd tea.Cmd
	if m.focus == focusFile {
		m.fileInput, cmd = m.fileInput.Update(msg)
	} else {
		m.message, cmd = m.message.Update(msg)
	}
	return m, cmd
}

func (m Model) toggleFocus() (tea.Model, tea.Cmd) {
	if m.focus == focusFile {
		m.focus = focusMessage
		m.fileInput.Blur()
		return m, m.message.Focus()
	}
	m.focus = focusFile
	m.message.Blur()
	return m, m.fileInput.Focus()
}

func (m Model) openPicker() (tea.Model, tea.Cmd) {
	m.mode = pickerView
	m.picker = newPicker()
	m.picker.Height = max(m.height-8, 5)
	return m, m.picker.Init()
}

func (m Model) updatePicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "esc" {
		m.mode = mainView
		return m, nil
	}

	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)

	if ok, path := m.picker.DidSelectFile(msg); ok {
		m.fileInput.SetValue(path)
		m.mode = mainView
		m.focus = focusMessage
		m.fileInput.Blur()
		return m, m.message.Focus()
	}
	if ok, path := m.picker.DidSelectDisabledFile(msg); ok {
		m.dialog = &dialog{
			title:   "Unsupported file",
			body:    fmt.Sprintf("%s is not a spreadsheet gurusender can read.", path),
			isError: true,
		}
		return m, cmd
	}
	return m, cmd
}

// prepare parses the template and loads the file off the update loop.
func (m Model) prepare() (tea.Model, tea.Cmd) {
	path := strings.TrimSpace(m.fileInput.Value())
	text := m.message.Value()
	cfg := m.opts.Config

	m.preparing = true
	m.status = "loading contacts..."
	return m, tea.Batch(m.spinner.Tick, func() tea.Msg {
		plan, err := sender.Prepare(path, text, cfg.ContactOptions(), cfg.Message.Placeholder)
		return preparedMsg{plan: plan, err: err}
	})
}

func (m Model) startRun(msg preparedMsg) (tea.Model, tea.Cmd) {
	m.preparing = false
	if msg.err != nil {
		m.status = "idle"
		m.dialog = abortDialog(msg.err)
		return m, nil
	}

	if m.opts.Prefs != nil && msg.plan.Book != nil && msg.plan.Template != nil {
		m.opts.Prefs.SetDraft(msg.plan.Book.Path, msg.plan.Template.Source())
	}

	events := make(chan sender.Event, 16)
	m.events = events
	m.running = true
	m.cancelling = false
	m.last = sender.Progress{Total: msg.plan.Total()}
	m.status = fmt.Sprintf("sending to %d contacts", msg.plan.Total())

	runner, ctx, plan := m.opts.Runner, m.ctx, msg.plan
	run := func() tea.Msg {
		sum, err := runner.Run(ctx, plan, events)
		return runDoneMsg{summary: sum, err: err}
	}
	return m, tea.Batch(run, m.listenEvents(), m.spinner.Tick)
}

func (m *Model) applyEvent(ev sender.Event) {
	if m.opts.Feed == nil {
		// Without a feed the log pane mirrors events directly.
		m.appendLog(describeEvent(ev))
	}
	if !m.running {
		// Late event after runDoneMsg; the summary is already final.
		return
	}
	m.last = ev.Progress
	switch ev.Kind {
	case sender.EventSent:
		m.status = fmt.Sprintf("sent to %s (%s)", ev.Name, ev.Phone)
	case sender.EventFailed:
		m.status = fmt.Sprintf("row %d skipped: %s", ev.Row, ev.Reason)
	case sender.EventWaiting:
		m.status = fmt.Sprintf("waiting %s before the next send", ev.Delay)
	}
}

func (m *Model) finishRun(msg runDoneMsg) {
	m.running = false
	m.cancelling = false
	sum := msg.summary
	m.last = sender.Progress{Total: sum.Total, Sent: sum.Sent, Failed: sum.Failed, Skipped: sum.Skipped}

	switch {
	case errors.Is(msg.err, context.Canceled):
		m.status = "cancelled"
		m.dialog = &dialog{title: "Run cancelled", body: summaryBody(sum)}
	case msg.err != nil:
		m.status = "failed"
		m.dialog = &dialog{title: "Run failed", body: msg.err.Error(), isError: true}
	default:
		m.status = "done"
		m.dialog = &dialog{title: "Run finished", body: summaryBody(sum)}
	}
	m.log.Debug("run closed in shell", zap.String("run_id", sum.RunID), zap.String("status", m.status))
}

func (m *Model) appendLog(line string) {
	m.logLines = append(m.logLines, line)
	if len(m.logLines) > maxLogLines {
		m.logLines = m.logLines[len(m.logLines)-maxLogLines:]
	}
	m.logView.SetContent(strings.Join(m.logLines, "\n"))
	m.logView.GotoBottom()
}

func abortDialog(err error) *dialog {
	title := "Cannot start"
	var ae *sender.AbortError
	if errors.As(err, &ae) {
		switch ae.Stage {
		case sender.StageInput:
			title = "Nothing to send"
		case sender.StageTemplate:
			title = "Invalid message"
		case sender.StageLoad:
			title = "Cannot read contacts"
		}
		err = ae.Err
	}
	return &dialog{title: title, body: err.Error(), isError: true}
}

func summaryBody(s sender.Summary) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Total:   %d\n", s.Total)
	fmt.Fprintf(&sb, "Sent:    %d\n", s.Sent)
	fmt.Fprintf(&sb, "Failed:  %d\n", s.Failed)
	fmt.Fprintf(&sb, "Skipped: %d", s.Skipped)
	reasons := make([]sender.Reason, 0, len(s.Failures))
	for r := range s.Failures {
		reasons = append(reasons, r)
	}
	slices.Sort(reasons)
	for _, r := range reasons {
		fmt.Fprintf(&sb, "\n  %s: %d", r, s.Failures[r])
	}
	return sb.String()
}

func describeEvent(ev sender.Event) string {
	ts := ev.Time.Format("15:04:05")
	switch ev.Kind {
	case sender.EventSent:
		return fmt.Sprintf("%s  sent    row %d  %s (%s)", ts, ev.Row, ev.Name, ev.Phone)
	case sender.EventFailed:
		return fmt.Sprintf("%s  failed  row %d  %s: %v", ts, ev.Row, ev.Reason, ev.Err)
	case sender.EventWaiting:
		return fmt.Sprintf("%s  waiting %s", ts, ev.Delay)
	}
	return fmt.Sprintf("%s  %s", ts, ev.Kind)
}
