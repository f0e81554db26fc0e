package update

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/sandeepkv93/taskmaster/internal/views"
)

type KeyBinding struct {
	Key    string
	Action string
}

type helpKeyMap struct {
	short []key.Binding
	full  [][]key.Binding
}

func (k helpKeyMap) ShortHelp() []key.Binding  { return k.short }
func (k helpKeyMap) FullHelp() [][]key.Binding { return k.full }

func (m Model) renderHelpIfVisible() string {
	if !m.HelpVisible {
		return ""
	}
	return "\n\n" + m.renderHelpView()
}

func (m Model) renderHelpView() string {
	bindings := m.helpBindings()
	var plain []string
	for _, kb := range m.contextBindings() {
		plain = append(plain, fmt.Sprintf("- %s: %s", kb.Key, kb.Action))
	}
	return views.RenderHelpPanel(views.HelpPanelData{
		Screen:   m.helpContext(),
		Bindings: plain,
		HelpView: m.helpModel.View(helpKeyMap{
			short: bindings,
			full:  [][]key.Binding{bindings},
		}),
	})
}

func (m Model) helpContext() string {
	switch {
	case m.Palette.Active:
		return "palette"
	case m.Form.Active:
		return "new task"
	case m.editingSelected():
		return "editing"
	default:
		return string(m.Screen)
	}
}

func (m Model) editingSelected() bool {
	task, ok := m.SelectedTask()
	if !ok {
		return false
	}
	ed, ok := m.editors[task.ID]
	return ok && ed.Editing()
}

func (m Model) globalBindings() []KeyBinding {
	return []KeyBinding{
		{Key: m.Keys.NewTask, Action: "add a task"},
		{Key: m.Keys.Reload, Action: "reload tasks"},
		{Key: m.Keys.Copy, Action: "copy selected title"},
		{Key: "/", Action: "open command palette"},
		{Key: m.Keys.Logout, Action: "log out"},
		{Key: m.Keys.Help, Action: "toggle help panel"},
		{Key: m.Keys.Quit, Action: "quit app"},
	}
}

func (m Model) contextBindings() []KeyBinding {
	switch {
	case m.Palette.Active:
		return []KeyBinding{
			{Key: "add <title> | <desc>", Action: "create a task"},
			{Key: "edit <n> <title>", Action: "rename task n"},
			{Key: "done <n>", Action: "complete task n"},
			{Key: "delete <n>", Action: "delete task n"},
			{Key: "reload / logout", Action: "reload list / sign out"},
		}
	case m.Form.Active:
		return []KeyBinding{
			{Key: "enter", Action: "add task"},
			{Key: "tab", Action: "switch field"},
			{Key: "esc", Action: "leave form"},
		}
	case m.editingSelected():
		return []KeyBinding{
			{Key: "enter", Action: "save"},
			{Key: "alt+enter", Action: "newline in description"},
			{Key: "tab", Action: "switch field"},
			{Key: "esc", Action: "cancel"},
		}
	default:
		return []KeyBinding{
			{Key: "j/k", Action: "move selection"},
			{Key: "e", Action: "edit selected"},
			{Key: "x/space", Action: "toggle complete"},
			{Key: "d", Action: "delete selected"},
			{Key: "pgup/pgdown", Action: "scroll details"},
		}
	}
}

func (m Model) helpBindings() []key.Binding {
	out := make([]key.Binding, 0, len(m.globalBindings())+len(m.contextBindings()))
	for _, kb := range m.globalBindings() {
		out = append(out, key.NewBinding(key.WithKeys(kb.Key), key.WithHelp(kb.Key, kb.Action)))
	}
	for _, kb := range m.contextBindings() {
		out = append(out, key.NewBinding(key.WithKeys(kb.Key), key.WithHelp(kb.Key, kb.Action)))
	}
	return out
}
