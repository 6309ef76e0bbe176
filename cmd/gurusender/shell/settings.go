package shell

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"gurusender/internal/config"
)

type wordItem string

func (w wordItem) FilterValue() string { return string(w) }
func (w wordItem) Title() string       { return string(w) }
func (w wordItem) Description() string { return "" }

func newSettings() settingsState {
	d := list.NewDefaultDelegate()
	d.ShowDescription = false
	d.SetSpacing(0)

	l := list.New(nil, d, 40, 12)
	l.Title = "Banned words"
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()

	in := textinput.New()
	in.Placeholder = "new word"
	in.CharLimit = 64

	return settingsState{list: l, input: in}
}

func wordItems(words []string) []list.Item {
	items := make([]list.Item, len(words))
	for i, w := range words {
		items[i] = wordItem(w)
	}
	return items
}

func (m Model) openSettings() (tea.Model, tea.Cmd) {
	m.mode = settingsView
	m.settings.adding = false
	m.settings.status = ""
	cmd := m.settings.list.SetItems(wordItems(m.opts.Words.Words()))
	return m, cmd
}

func (m Model) refreshWords() tea.Cmd {
	return m.settings.list.SetItems(wordItems(m.opts.Words.Words()))
}

func (m Model) updateSettings(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	s := &m.settings

	if s.adding {
		switch msg.String() {
		case "enter":
			word := s.input.Value()
			added, err := m.opts.Words.Add(word)
			switch {
			case err != nil:
				s.status = err.Error()
			case !added:
				s.status = fmt.Sprintf("%q is already banned", word)
			default:
				s.status = fmt.Sprintf("added %q", word)
				m.log.Info("banned word added", zap.String("word", word))
			}
			s.adding = false
			s.input.Reset()
			s.input.Blur()
			return m, m.refreshWords()
		case "esc":
			s.adding = false
			s.input.Reset()
			s.input.Blur()
			return m, nil
		}
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "esc":
		m.mode = mainView
		return m, nil
	case "a":
		s.adding = true
		s.status = ""
		return m, s.input.Focus()
	case "d", "delete":
		item, ok := s.list.SelectedItem().(wordItem)
		if !ok {
			return m, nil
		}
		if m.opts.Words.Remove(string(item)) {
			s.status = fmt.Sprintf("removed %q", string(item))
			m.log.Info("banned word removed", zap.String("word", string(item)))
		}
		return m, m.refreshWords()
	case "w":
		if err := config.SaveWords(m.opts.ConfigPath, m.opts.Words.Words()); err != nil {
			s.status = "save failed: " + err.Error()
			m.log.Error("failed to save banned words", zap.Error(err))
			return m, nil
		}
		s.status = "saved to " + m.opts.ConfigPath
		m.log.Info("banned words saved", zap.String("path", m.opts.ConfigPath), zap.Int("count", m.opts.Words.Len()))
		return m, nil
	}

	var cmd tea.Cmd
	s.list, cmd = s.list.Update(msg)
	return m, cmd
}
