// Package shell implements the interactive gurusender terminal UI.
package shell

import (
	"context"
	"os"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"go.uber.org/zap"

	"gurusender/cmd/gurusender/ui"
	"gurusender/internal/compliance"
	"gurusender/internal/config"
	"gurusender/internal/contacts"
	"gurusender/internal/logging"
	"gurusender/internal/sender"
	"gurusender/internal/ux"
)

const maxLogLines = 500

// Options wires the shell to the rest of the program.
type Options struct {
	Runner     *sender.Runner
	Words      *compliance.List
	Config     *config.Config
	ConfigPath string
	Feed       *logging.Feed          // optional; log lines shown in the log pane
	Prefs      *ux.PreferencesManager // optional; restores the last draft
	Logger     *zap.Logger            // settings category
	Styles     ui.Styles
	Context    context.Context
}

type viewMode int

const (
	mainView viewMode = iota
	pickerView
	settingsView
	helpView
)

type focusField int

const (
	focusFile focusField = iota
	focusMessage
)

// dialog is a blocking message box dismissed with enter or esc.
type dialog struct {
	title   string
	body    string
	isError bool
}

// Messages
type (
	preparedMsg struct {
		plan *sender.Plan
		err  error
	}
	eventMsg        sender.Event
	eventsClosedMsg struct{}
	runDoneMsg      struct {
		summary sender.Summary
		err     error
	}
	logLineMsg string
)

// WordsReloadedMsg tells the shell the banned-word list changed outside it.
type WordsReloadedMsg struct{}

// Model is the root bubbletea model.
type Model struct {
	opts   Options
	ctx    context.Context
	styles ui.Styles
	log    *zap.Logger

	width  int
	height int
	mode   viewMode
	focus  focusField

	fileInput textinput.Model
	message   textarea.Model
	picker    filepicker.Model
	progress  progress.Model
	spinner   spinner.Model
	logView   viewport.Model
	helpView  viewport.Model
	settings  settingsState

	logLines []string
	dialog   *dialog
	helpText string

	preparing  bool
	running    bool
	cancelling bool
	events     <-chan sender.Event
	last       sender.Progress
	status     string
}

// New builds the shell model.
func New(opts Options) Model {
	if opts.Context == nil {
		opts.Context = context.Background()
	}
	if opts.Config == nil {
		opts.Config = config.DefaultConfig()
	}
	if opts.Words == nil {
		opts.Words = opts.Runner.Words()
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	fi := textinput.New()
	fi.Placeholder = "path to .xlsx or .csv (enter to browse)"
	fi.Prompt = ""
	fi.Focus()

	ta := textarea.New()
	ta.Placeholder = "Olá {" + opts.Config.Message.Placeholder + "}, ..."
	ta.ShowLineNumbers = false
	ta.SetHeight(5)

	sp := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(opts.Styles.Spinner),
	)

	m := Model{
		opts:      opts,
		ctx:       opts.Context,
		styles:    opts.Styles,
		log:       log,
		fileInput: fi,
		message:   ta,
		picker:    newPicker(),
		progress:  progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
		spinner:   sp,
		logView:   viewport.New(80, 8),
		helpView:  viewport.New(80, 20),
		settings:  newSettings(),
		status:    "idle",
	}
	m.helpText = renderHelp(opts.Styles.GlamourStyle(), 76)
	m.helpView.SetContent(m.helpText)

	if opts.Prefs != nil {
		p := opts.Prefs.Get()
		m.fileInput.SetValue(p.Draft.File)
		m.message.SetValue(p.Draft.Message)
		if !p.HelpSeen {
			m.mode = helpView
			opts.Prefs.MarkHelpSeen()
		}
	}
	return m
}

func newPicker() filepicker.Model {
	fp := filepicker.New()
	fp.AllowedTypes = contacts.Extensions()
	if wd, err := os.Getwd(); err == nil {
		fp.CurrentDirectory = wd
	}
	return fp
}

// Init starts the cursor blink and the log listener.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.listenLogs())
}

// listenLogs waits for the next line from the log feed.
func (m Model) listenLogs() tea.Cmd {
	if m.opts.Feed == nil {
		return nil
	}
	lines := m.opts.Feed.Lines()
	return func() tea.Msg {
		line, ok := <-lines
		if !ok {
			return nil
		}
		return logLineMsg(line)
	}
}

// listenEvents waits for the next runner event.
func (m Model) listenEvents() tea.Cmd {
	if m.events == nil {
		return nil
	}
	events := m.events
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return eventsClosedMsg{}
		}
		return eventMsg(ev)
	}
}

// renderHelp renders the help markdown, falling back to plain text.
func renderHelp(style string, width int) (out string) {
	defer func() {
		if r := recover(); r != nil {
			out = helpMarkdown
		}
	}()
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return helpMarkdown
	}
	rendered, err := r.Render(helpMarkdown)
	if err != nil {
		return helpMarkdown
	}
	return rendered
}

// settingsState backs the banned-word dialog.
type settingsState struct {
	list   list.Model
	input  textinput.Model
	adding bool
	status string
}

const helpMarkdown = `# gurusender

Sends a personalised chat message to every contact of a spreadsheet,
one at a time, with a random pause between sends.

## Main screen

| Key | Action |
|-----|--------|
| tab | switch between file and message |
| enter (file) | browse for a spreadsheet |
| ctrl+o | browse for a spreadsheet |
| ctrl+r | start sending |
| ctrl+x | cancel the current run |
| ctrl+s | banned words |
| f1 | this help |
| ctrl+c | quit |

## Message

Write placeholders with single braces, e.g. ` + "`{nome}`" + `. Any column
of the spreadsheet can be used. ` + "`{{`" + ` and ` + "`}}`" + ` produce literal braces.

## Banned words

Messages containing a banned word are skipped. Edits apply from the
next contact of a running batch.

| Key | Action |
|-----|--------|
| a | add a word |
| d | delete the selected word |
| w | save the list to the config file |
| esc | close |
`
