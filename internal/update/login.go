package update

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandeepkv93/taskmaster/internal/editor"
	"github.com/sandeepkv93/taskmaster/internal/model"
	"github.com/sandeepkv93/taskmaster/internal/tasks"
)

func (m Model) handleLoginKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "tab", "shift+tab", "up", "down":
		if m.Login.focus == loginUsername {
			return m.focusLogin(loginPassword)
		}
		return m.focusLogin(loginUsername)
	case "enter":
		if m.Login.focus == loginUsername && strings.TrimSpace(m.Login.password.Value()) == "" {
			return m.focusLogin(loginPassword)
		}
		return m.submitLogin()
	case "esc":
		m.Login.Err = ""
		return m, nil
	}

	var cmd tea.Cmd
	if m.Login.focus == loginUsername {
		m.Login.username, cmd = m.Login.username.Update(msg)
	} else {
		m.Login.password, cmd = m.Login.password.Update(msg)
	}
	return m, cmd
}

func (m Model) focusLogin(f loginField) (Model, tea.Cmd) {
	m.Login.focus = f
	if f == loginUsername {
		m.Login.password.Blur()
		return m, m.Login.username.Focus()
	}
	m.Login.username.Blur()
	return m, m.Login.password.Focus()
}

// submitLogin is a mock sign-in: any non-empty username and password pair
// is accepted.
func (m Model) submitLogin() (Model, tea.Cmd) {
	username := strings.TrimSpace(m.Login.username.Value())
	password := strings.TrimSpace(m.Login.password.Value())
	if username == "" || password == "" {
		m.Login.Err = LoginRequiredText
		return m, nil
	}
	m.Username = username
	return m.enterHome()
}

// enterHome starts a Home session with a fresh controller and requests the
// task list once.
func (m Model) enterHome() (Model, tea.Cmd) {
	m.Screen = ScreenHome
	m.Login.Err = ""
	m.Login.password.SetValue("")
	m.Login.username.Blur()
	m.Login.password.Blur()

	m.controller = tasks.New(m.remote, tasks.WithLogger(m.logger))
	m.editors = make(map[model.ID]editor.Editor)
	m.Cursor = 0
	m.Confirm = ConfirmState{}
	m.Status = StatusBar{Text: "signed in as " + m.Username}
	m.logger.Info("signed in", "user", m.Username)
	return m, tea.Batch(m.controller.Load(), m.spinner.Tick)
}

// logout ends the Home session. Responses still in flight for the closed
// controller are dropped when they arrive.
func (m Model) logout() (Model, tea.Cmd) {
	if m.controller != nil {
		m.controller.Close()
	}
	m.logger.Info("signed out", "user", m.Username)
	m.controller = nil
	m.editors = make(map[model.ID]editor.Editor)
	m.Screen = ScreenLogin
	m.Username = ""
	m.Cursor = 0
	m.Confirm = ConfirmState{}
	m.Palette = CommandPaletteState{}
	m.commandInput.SetValue("")
	m.commandInput.Blur()
	m.HelpVisible = false
	m = m.resetForm()
	m.Form.Active = false
	m.Form.title.Blur()
	m.Form.description.Blur()
	m.Login.username.SetValue("")
	m.Status = StatusBar{Text: "signed out"}
	return m.focusLogin(loginUsername)
}
