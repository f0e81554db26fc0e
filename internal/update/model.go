package update

import (
	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/log"
	"github.com/sandeepkv93/taskmaster/internal/editor"
	"github.com/sandeepkv93/taskmaster/internal/logging"
	"github.com/sandeepkv93/taskmaster/internal/model"
	"github.com/sandeepkv93/taskmaster/internal/tasks"
)

type Screen string

const (
	ScreenLogin Screen = "Login"
	ScreenHome  Screen = "Home"
)

const LoginRequiredText = "Please enter both username and password."

type StatusBar struct {
	Text    string
	IsError bool
}

type GlobalKeyMap struct {
	NewTask string
	Reload  string
	Copy    string
	Logout  string
	Help    string
	Quit    string
}

type CommandPaletteState struct {
	Active bool
	Input  string
}

// ConfirmState is the pending yes/no question for a delete.
type ConfirmState struct {
	Active bool
	TaskID model.ID
	Title  string
}

type loginField int

const (
	loginUsername loginField = iota
	loginPassword
)

type LoginState struct {
	username textinput.Model
	password textinput.Model
	focus    loginField
	Err      string
}

type formField int

const (
	formTitle formField = iota
	formDescription
)

// FormState is the new-task form on the Home screen.
type FormState struct {
	Active      bool
	Hint        string
	title       textinput.Model
	description textinput.Model
	focus       formField
}

type Model struct {
	Screen      Screen
	Username    string
	Cursor      int
	Palette     CommandPaletteState
	Confirm     ConfirmState
	Login       LoginState
	Form        FormState
	HelpVisible bool
	Status      StatusBar
	Keys        GlobalKeyMap
	Quitting    bool
	LastError   error

	remote     tasks.Remote
	logger     *log.Logger
	controller *tasks.Controller
	editors    map[model.ID]editor.Editor
	copyText   func(string) error

	commandInput textinput.Model
	spinner      spinner.Model
	helpModel    help.Model
	detail       viewport.Model
	detailKey    string
	width        int
	height       int
}

type SetStatusMsg struct {
	Text    string
	IsError bool
}

// ClearStatusMsg empties the status bar. A non-empty Text clears only if
// the bar still shows that text.
type ClearStatusMsg struct {
	Text string
}

type AppErrorMsg struct {
	Err error
}

type Option func(*Model)

func WithLogger(logger *log.Logger) Option {
	return func(m *Model) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithClipboard replaces the system clipboard writer.
func WithClipboard(write func(string) error) Option {
	return func(m *Model) {
		if write != nil {
			m.copyText = write
		}
	}
}

func NewModel(remote tasks.Remote, opts ...Option) Model {
	m := Model{
		Screen: ScreenLogin,
		Keys: GlobalKeyMap{
			NewTask: "a",
			Reload:  "r",
			Copy:    "y",
			Logout:  "L",
			Help:    "?",
			Quit:    "q",
		},
		remote:   remote,
		logger:   logging.Discard(),
		editors:  make(map[model.ID]editor.Editor),
		copyText: clipboard.WriteAll,
	}
	for _, opt := range opts {
		opt(&m)
	}
	m.initBubbleComponents()
	return m
}

func (m *Model) initBubbleComponents() {
	m.Login.username = textinput.New()
	m.Login.username.Placeholder = "Enter your username"
	m.Login.username.Prompt = "> "
	m.Login.username.CharLimit = 64
	m.Login.username.Focus()

	m.Login.password = textinput.New()
	m.Login.password.Placeholder = "Enter your password"
	m.Login.password.Prompt = "> "
	m.Login.password.CharLimit = 128
	m.Login.password.EchoMode = textinput.EchoPassword
	m.Login.password.EchoCharacter = '•'

	m.Form.title = textinput.New()
	m.Form.title.Placeholder = "What needs to be done?"
	m.Form.title.Prompt = "title> "
	m.Form.title.CharLimit = 200

	m.Form.description = textinput.New()
	m.Form.description.Placeholder = "Add a description (optional)"
	m.Form.description.Prompt = "desc>  "
	m.Form.description.CharLimit = 1000

	m.commandInput = textinput.New()
	m.commandInput.Prompt = "/"
	m.commandInput.CharLimit = 256
	m.commandInput.Width = 48

	m.spinner = spinner.New()
	m.spinner.Spinner = spinner.Dot

	m.helpModel = help.New()
	m.detail = viewport.New(56, 12)
}

// Controller is the task controller owned by the current Home session, or
// nil outside Home.
func (m Model) Controller() *tasks.Controller { return m.controller }

func (m Model) Tasks() []model.Task {
	if m.controller == nil {
		return nil
	}
	return m.controller.Tasks()
}

func (m Model) SelectedTask() (model.Task, bool) {
	list := m.Tasks()
	if m.Cursor < 0 || m.Cursor >= len(list) {
		return model.Task{}, false
	}
	return list[m.Cursor], true
}

func (m Model) Editor(id model.ID) (editor.Editor, bool) {
	ed, ok := m.editors[id]
	return ed, ok
}

func (m Model) FormDraft() (string, string) {
	return m.Form.title.Value(), m.Form.description.Value()
}
